package ocr

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// IsPDF reports whether data starts with the PDF header.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF"))
}

// PDFPageImage returns the largest image embedded on the first page of a
// scanned PDF. PDFs without a decodable page image fail with ErrPDFInput.
func PDFPageImage(data []byte) (img image.Image, err error) {
	// pdfcpu panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			img, err = nil, fmt.Errorf("%w: %v", ErrPDFInput, r)
		}
	}()

	conf := model.NewDefaultConfiguration()
	pages, err := api.ExtractImagesRaw(bytes.NewReader(data), []string{"1"}, conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFInput, err)
	}

	var best model.Image
	found := false
	for _, page := range pages {
		for _, im := range page {
			if !found || im.Width*im.Height > best.Width*best.Height {
				best, found = im, true
			}
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: no scanned page image found", ErrPDFInput)
	}

	img, err = imaging.Decode(best, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: page image %s: %v", ErrPDFInput, best.FileType, err)
	}
	return img, nil
}

package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// ErrPDFInput is returned for PDF uploads that carry no scanned page image.
var ErrPDFInput = errors.New("pdf documents must contain a scanned page image")

// Variant is one preprocessed rendition of the source image
type Variant struct {
	Name  string
	Image image.Image
}

// Preprocessor produces the binarized renditions that are fed to OCR
type Preprocessor struct {
	useImageMagick bool
	logger         *slog.Logger
}

// NewPreprocessor creates a new image preprocessor
func NewPreprocessor(useImageMagick bool, logger *slog.Logger) *Preprocessor {
	return &Preprocessor{
		useImageMagick: useImageMagick,
		logger:         logger,
	}
}

// DecodeImage decodes jpeg, png, bmp and tiff scans, honouring EXIF orientation.
// For a scanned PDF it decodes the page image of the first page.
func DecodeImage(data []byte) (image.Image, error) {
	if IsPDF(data) {
		return PDFPageImage(data)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("could not decode image: %w", err)
	}
	return img, nil
}

// LoadImage reads and decodes an image file
func LoadImage(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read image from path %s: %w", path, err)
	}
	return DecodeImage(data)
}

// Variants returns the processed renditions of img, in a fixed order:
// otsu, adaptive, morph, denoise and, when ImageMagick is enabled and installed, magick.
func (p *Preprocessor) Variants(ctx context.Context, img image.Image) []Variant {
	gray := imaging.Grayscale(img)

	// blur + contrast stretch + Otsu
	blurred := blur.Gaussian(gray, 1.0)
	enhanced := adjust.Contrast(blurred, 0.3)
	otsu := binarize(enhanced)

	variants := []Variant{
		{Name: "otsu", Image: otsu},
		{Name: "adaptive", Image: adaptiveThreshold(gray, 2.0, 2)},
		{Name: "morph", Image: morphCloseOpen(otsu)},
		{Name: "denoise", Image: binarize(effect.Median(gray, 1.5))},
	}

	if p.useImageMagick {
		if stamped, err := p.magickVariant(ctx, img); err != nil {
			p.logger.Warn("imagemagick variant skipped", "error", err)
		} else {
			variants = append(variants, Variant{Name: "magick", Image: stamped})
		}
	}
	return variants
}

// binarize thresholds img at its Otsu level
func binarize(img image.Image) *image.Gray {
	gray := toGray(img)
	return segment.Threshold(gray, otsuLevel(gray))
}

// morphCloseOpen closes small gaps in strokes and then removes speckles.
func morphCloseOpen(img image.Image) *image.Gray {
	closed := effect.Erode(effect.Dilate(img, 1), 1)
	opened := effect.Dilate(effect.Erode(closed, 1), 1)
	return toGray(opened)
}

// adaptiveThreshold compares each pixel with a gaussian weighted local mean minus c.
func adaptiveThreshold(img image.Image, radius float64, c int) *image.Gray {
	src := toGray(img)
	mean := toGray(blur.Gaussian(src, radius))

	b := src.Bounds()
	out := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := int(src.GrayAt(x, y).Y)
			m := int(mean.GrayAt(x, y).Y)
			if v > m-c {
				out.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return out
}

// otsuLevel returns the threshold maximising between-class variance.
func otsuLevel(img *image.Gray) uint8 {
	var hist [256]int
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			hist[img.GrayAt(x, y).Y]++
		}
	}
	total := b.Dx() * b.Dy()
	if total == 0 {
		return 128
	}

	var sum float64
	for i, n := range hist {
		sum += float64(i * n)
	}

	var sumB, best float64
	var wB int
	level := 0
	for t := 0; t < 256; t++ {
		wB += hist[t]
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(t * hist[t])
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)
		between := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			level = t
		}
	}
	// segment.Threshold keeps pixels >= level, Otsu keeps pixels > t
	if level < 255 {
		level++
	}
	return uint8(level)
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	out := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(x, y, img.At(x, y))
		}
	}
	return out
}

// magickVariant runs ImageMagick's local adaptive threshold, which copes with
// stamps and uneven lighting better than a global threshold.
func (p *Preprocessor) magickVariant(ctx context.Context, img image.Image) (image.Image, error) {
	binary := "magick"
	if _, err := exec.LookPath(binary); err != nil {
		binary = "convert"
		if _, err := exec.LookPath(binary); err != nil {
			return nil, errors.New("imagemagick not installed")
		}
	}

	tmpDir, err := os.MkdirTemp("", "fra-variant-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	inputFile := filepath.Join(tmpDir, "in.png")
	outputFile := filepath.Join(tmpDir, "out.png")
	if err := imaging.Save(img, inputFile); err != nil {
		return nil, err
	}

	args := []string{
		inputFile,
		"-resize", "2500x2500>",
		"-colorspace", "Gray",
		"-lat", "50x50+10%",
		"-contrast-stretch", "5%x2%",
		"-despeckle",
		"-despeckle",
		outputFile,
	}
	cmd := exec.CommandContext(ctx, binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s failed: %w - %s", binary, err, stderr.String())
	}

	return imaging.Open(outputFile)
}

// SaveVariant writes a variant to disk (for debugging)
func (p *Preprocessor) SaveVariant(v Variant, dir string) (string, error) {
	path := filepath.Join(dir, "variant_"+v.Name+".png")
	return path, imaging.Save(v.Image, path)
}

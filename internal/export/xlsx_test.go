package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/banrakshak/fra-ocr-service/internal/models"
)

func TestFieldHeader(t *testing.T) {
	assert.Equal(t, "Holder Name", FieldHeader("holder_name"))
	assert.Equal(t, "District", FieldHeader("district"))
	assert.Equal(t, "Village Gram", FieldHeader("village_gram"))
}

func TestAnalysesXLSX(t *testing.T) {
	rows := []Row{
		{
			File: "title.png",
			Analysis: &models.DocumentAnalysis{
				DocumentTitle:    "Title for Forest Land under Occupation",
				ExtractedFields:  map[string]string{"holder_name": "Ram Lal", "district": "Solan"},
				OCRConfidence:    91.5,
				BestVariant:      "adaptive",
				ProcessingStatus: models.StatusSuccess,
			},
			Classification: &models.DocumentClassification{DocumentType: "FRA Title Deed"},
		},
		{File: "broken.png"},
	}

	data, err := AnalysesXLSX(rows, []string{"holder_name", "district", "tehsil"})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{
		"File", "Status", "Document Title", "Document Type", "OCR Confidence", "Best Variant",
		"Holder Name", "District", "Tehsil",
	}, got[0])
	assert.Equal(t, []string{
		"title.png", "success", "Title for Forest Land under Occupation", "FRA Title Deed", "91.5", "adaptive",
		"Ram Lal", "Solan",
	}, got[1])
	assert.Equal(t, []string{"broken.png", "error"}, got[2])
}

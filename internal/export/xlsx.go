// Package export writes batch parse results to spreadsheets.
package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/banrakshak/fra-ocr-service/internal/models"
)

// SheetName is the worksheet holding one row per document
const SheetName = "Analyses"

// Row is one parsed document
type Row struct {
	File           string
	Analysis       *models.DocumentAnalysis
	Classification *models.DocumentClassification
}

var fixedHeaders = []string{
	"File",
	"Status",
	"Document Title",
	"Document Type",
	"OCR Confidence",
	"Best Variant",
}

// FieldHeader turns a field name like "holder_name" into "Holder Name".
func FieldHeader(field string) string {
	words := strings.Split(field, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// AnalysesXLSX returns a workbook with the fixed columns followed by one column per field.
func AnalysesXLSX(rows []Row, fields []string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, err
	}

	headers := append(append([]string{}, fixedHeaders...), make([]string, len(fields))...)
	for i, field := range fields {
		headers[len(fixedHeaders)+i] = FieldHeader(field)
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return nil, err
		}
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(SheetName, "A1", last, style)
	}

	for r, row := range rows {
		line := r + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, line)
			_ = f.SetCellValue(SheetName, cell, v)
		}

		write(1, row.File)
		a := row.Analysis
		if a == nil {
			write(2, models.StatusError)
			continue
		}
		write(2, a.ProcessingStatus)
		write(3, a.DocumentTitle)
		if row.Classification != nil {
			write(4, row.Classification.DocumentType)
		}
		write(5, a.OCRConfidence)
		write(6, a.BestVariant)
		for i, field := range fields {
			write(len(fixedHeaders)+i+1, a.ExtractedFields[field])
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 32)
	_ = f.SetColWidth(SheetName, "B", "B", 14)
	_ = f.SetColWidth(SheetName, "C", "C", 44)
	_ = f.SetColWidth(SheetName, "D", "D", 28)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

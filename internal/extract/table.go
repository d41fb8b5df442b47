package extract

import (
	"sort"
	"strings"

	"github.com/banrakshak/fra-ocr-service/internal/models"
	"github.com/banrakshak/fra-ocr-service/internal/ocr"
)

// DefaultRowThreshold is the vertical distance, in pixels, under which two
// words are considered to sit on the same table row.
const DefaultRowThreshold = 20

// GroupRows clusters words into rows by their top coordinate. A word joins the
// current row while it is within threshold of the previous word's top.
// Each returned row is ordered left to right.
func GroupRows(words []ocr.WordInfo, threshold int) [][]ocr.WordInfo {
	if threshold <= 0 {
		threshold = DefaultRowThreshold
	}
	sorted := make([]ocr.WordInfo, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Box.Y < sorted[j].Box.Y })

	var rows [][]ocr.WordInfo
	var current []ocr.WordInfo
	lastTop := 0
	for _, w := range sorted {
		if len(current) > 0 && abs(w.Box.Y-lastTop) >= threshold {
			rows = append(rows, current)
			current = nil
		}
		current = append(current, w)
		lastTop = w.Box.Y
	}
	if len(current) > 0 {
		rows = append(rows, current)
	}

	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].Box.X < row[j].Box.X })
	}
	return rows
}

// RowTexts joins every row of at least two words into a line of text.
func RowTexts(words []ocr.WordInfo, threshold int) []string {
	var texts []string
	for _, row := range GroupRows(words, threshold) {
		if len(row) < 2 {
			continue
		}
		parts := make([]string, len(row))
		for i, w := range row {
			parts[i] = w.Text
		}
		texts = append(texts, strings.Join(parts, " "))
	}
	return texts
}

// ExtractTableDetails applies the catalogue row by row. The first row that
// yields a value for a field wins.
func ExtractTableDetails(words []ocr.WordInfo, threshold int, catalogue Catalogue) []models.ExtractedField {
	rows := RowTexts(words, threshold)
	var found []models.ExtractedField
	for _, field := range catalogue {
		for _, row := range rows {
			if ef, ok := field.Extract(strings.ToLower(row)); ok {
				ef.Source = SourceTable
				found = append(found, ef)
				break
			}
		}
	}
	return found
}

// ExtractTable is ExtractTableDetails as a name -> value map.
func ExtractTable(words []ocr.WordInfo, threshold int, catalogue Catalogue) map[string]string {
	return toMap(ExtractTableDetails(words, threshold, catalogue))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

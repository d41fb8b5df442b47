package ocr

import (
	"sort"
	"strings"
)

// DefaultMinConfidence is the confidence a word must exceed to be kept.
const DefaultMinConfidence = 30

// PageText is the text reconstructed from one OCR pass.
type PageText struct {
	Variant       string     `json:"variant"`
	FullText      string     `json:"full_text"`
	LineTexts     []string   `json:"line_texts"`
	Words         []WordInfo `json:"words"`
	AvgConfidence float64    `json:"avg_confidence"`
}

// FilterWords drops blank words and words whose confidence is not above minConfidence.
func FilterWords(words []WordInfo, minConfidence float64) []WordInfo {
	kept := make([]WordInfo, 0, len(words))
	for _, w := range words {
		if w.Confidence > minConfidence && strings.TrimSpace(w.Text) != "" {
			kept = append(kept, w)
		}
	}
	return kept
}

type lineKey struct{ block, par, line int }

// BuildPage filters the words and rebuilds the page text line by line.
// Words sharing a block/paragraph/line number form a line, ordered left to right.
func BuildPage(variant string, words []WordInfo, minConfidence float64) PageText {
	kept := FilterWords(words, minConfidence)

	lines := make(map[lineKey][]WordInfo)
	for _, w := range kept {
		k := lineKey{w.BlockNum, w.ParNum, w.LineNum}
		lines[k] = append(lines[k], w)
	}

	keys := make([]lineKey, 0, len(lines))
	for k := range lines {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.block != b.block {
			return a.block < b.block
		}
		if a.par != b.par {
			return a.par < b.par
		}
		return a.line < b.line
	})

	var full strings.Builder
	lineTexts := make([]string, 0, len(keys))
	for _, k := range keys {
		ws := lines[k]
		sort.SliceStable(ws, func(i, j int) bool { return ws[i].Box.X < ws[j].Box.X })
		parts := make([]string, len(ws))
		for i, w := range ws {
			parts[i] = w.Text
		}
		text := strings.Join(parts, " ")
		lineTexts = append(lineTexts, text)
		full.WriteString(text)
		full.WriteString("\n")
	}

	var avg float64
	if len(kept) > 0 {
		var sum float64
		for _, w := range kept {
			sum += w.Confidence
		}
		avg = sum / float64(len(kept))
	}

	return PageText{
		Variant:       variant,
		FullText:      full.String(),
		LineTexts:     lineTexts,
		Words:         kept,
		AvgConfidence: avg,
	}
}

// BestPage returns the page with the highest average confidence; the earliest wins ties.
// Pages with no confident words never win, so ok is false when every page is blank.
func BestPage(pages []PageText) (best PageText, ok bool) {
	for _, p := range pages {
		if p.AvgConfidence > best.AvgConfidence {
			best, ok = p, true
		}
	}
	return best, ok
}

package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// NoTitle is returned when the document has no non-blank line at all.
const NoTitle = "No title found"

var titlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(title\s*for\s*forest\s*land.*)`),
	regexp.MustCompile(`(?i)(annexure.*)`),
	regexp.MustCompile(`(?i)(certificate.*)`),
	regexp.MustCompile(`(?i)(प्रमाण\s*पत्र.*)`),
	regexp.MustCompile(`(?i)(forest\s*rights.*)`),
	regexp.MustCompile(`(?i)(occupation.*right.*)`),
	regexp.MustCompile(`(?i)([A-Z\s]{10,}(?:CERTIFICATE|TITLE|FORM|APPLICATION).*)`),
}

var titleKeywords = []string{
	"title", "certificate", "form", "application", "annexure",
	"प्रमाण", "पत्र", "फॉर्म", "आवेदन",
	"forest", "land", "occupation",
}

const (
	titlePatternLines = 10
	titleScoreLines   = 8
)

// ExtractTitle picks the document title from the first lines of text.
//
// Known title patterns are tried first, pattern by pattern over the first ten
// lines. Otherwise the first eight lines are scored by title keywords, upper
// case and position. Failing that, the first line longer than 15 characters
// that is not a number, then the first line.
func ExtractTitle(text string) string {
	lines := nonBlankLines(text)
	if len(lines) == 0 {
		return NoTitle
	}

	head := lines[:min(len(lines), titlePatternLines)]
	for _, re := range titlePatterns {
		for _, line := range head {
			if m := re.FindStringSubmatch(line); m != nil {
				return strings.TrimSpace(m[1])
			}
		}
	}

	best, bestScore := "", 0
	for i, line := range lines[:min(len(lines), titleScoreLines)] {
		if utf8.RuneCountInString(line) <= 10 {
			continue
		}
		lower := strings.ToLower(line)
		hits := 0
		for _, kw := range titleKeywords {
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		score := hits
		if isUpper(line) {
			score++
		}
		if i < 3 {
			score++
		}
		if score > bestScore {
			best, bestScore = line, score
		}
	}
	if best != "" {
		return best
	}

	for _, line := range lines {
		if utf8.RuneCountInString(line) > 15 && !isDigits(line) {
			return line
		}
	}
	return lines[0]
}

func nonBlankLines(text string) []string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// isUpper reports whether s has a cased letter and no lower case letters.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			cased = true
		}
	}
	return cased
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

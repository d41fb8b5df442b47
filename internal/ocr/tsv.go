package ocr

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

// CLIEngine shells out to the tesseract binary in TSV mode.
type CLIEngine struct {
	binary         string
	language       string
	tessdataPrefix string
}

// NewCLIEngine creates an engine backed by the tesseract executable on PATH.
func NewCLIEngine(language, tessdataPrefix string) *CLIEngine {
	if language == "" {
		language = "eng"
	}
	return &CLIEngine{binary: "tesseract", language: language, tessdataPrefix: tessdataPrefix}
}

func (e *CLIEngine) Name() string { return "tesseract-cli" }

// Recognize pipes the image through `tesseract stdin stdout tsv`.
func (e *CLIEngine) Recognize(ctx context.Context, img image.Image) ([]WordInfo, error) {
	var in bytes.Buffer
	if err := png.Encode(&in, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	args := []string{"stdin", "stdout", "-l", e.language}
	if e.tessdataPrefix != "" {
		args = append(args, "--tessdata-dir", e.tessdataPrefix)
	}
	args = append(args, "tsv")

	cmd := exec.CommandContext(ctx, e.binary, args...)
	cmd.Stdin = &in
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("tesseract TSV: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return ParseTSV(&stdout)
}

// ParseTSV reads tesseract TSV output and returns the word level rows.
// Columns: level page block par line word left top width height conf text.
func ParseTSV(r io.Reader) ([]WordInfo, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var words []WordInfo
	first := true
	for sc.Scan() {
		line := sc.Text()
		if first {
			first = false
			if strings.HasPrefix(line, "level") {
				continue
			}
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 12 {
			continue
		}
		// level 5 is a word
		if cols[0] != "5" {
			continue
		}
		conf, err := strconv.ParseFloat(strings.TrimSpace(cols[10]), 64)
		if err != nil || conf < 0 {
			continue
		}
		nums := make([]int, 0, 9)
		ok := true
		for _, c := range cols[1:10] {
			n, err := strconv.Atoi(strings.TrimSpace(c))
			if err != nil {
				ok = false
				break
			}
			nums = append(nums, n)
		}
		if !ok {
			continue
		}
		words = append(words, WordInfo{
			Text:       strings.Join(cols[11:], "\t"),
			Confidence: conf,
			BlockNum:   nums[1],
			ParNum:     nums[2],
			LineNum:    nums[3],
			WordNum:    nums[4],
			Box: BoundingBox{
				X:      nums[5],
				Y:      nums[6],
				Width:  nums[7],
				Height: nums[8],
			},
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read tsv: %w", err)
	}
	return words, nil
}

// Available reports whether the tesseract binary can be run, with its version line.
func (e *CLIEngine) Available() (string, error) {
	out, err := exec.Command(e.binary, "--version").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("tesseract not found or not executable: %w", err)
	}
	version := strings.TrimSpace(strings.SplitN(string(out), "\n", 2)[0])
	if version == "" {
		version = "unknown"
	}
	return version, nil
}

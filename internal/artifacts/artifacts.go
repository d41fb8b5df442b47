// Package artifacts reads and writes the JSON and text files the pipeline
// leaves under the output directory.
package artifacts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/banrakshak/fra-ocr-service/internal/ai"
	"github.com/banrakshak/fra-ocr-service/internal/models"
)

// Version is stamped into every analysis artifact
const Version = "1.0"

// Fixed artifact names under the output directory
const (
	ProfileFile       = "fra_profile_output.json"
	LandCoverDir      = "landcover"
	schemeGlobPattern = "scheme_analysis_*.json"
)

// ErrNotFound is returned when a pre-computed artifact does not exist.
var ErrNotFound = errors.New("artifact not found")

// SaveJSON writes v as indented JSON to dir/name. Objects get
// processing_timestamp and version added. It returns the written path.
func SaveJSON(dir, name string, v any) (string, error) {
	raw, err := marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", name, err)
	}

	var doc any = json.RawMessage(raw)
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil && obj != nil {
		obj["processing_timestamp"], _ = json.Marshal(time.Now().Format(time.RFC3339))
		obj["version"], _ = json.Marshal(Version)
		doc = obj
	}
	return writeJSON(dir, name, doc)
}

// marshal is json.Marshal without HTML escaping, so "&" in OCR text stays readable.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func writeJSON(dir, name string, v any) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("encode %s: %w", name, err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// LoadJSON decodes the file at path into v.
func LoadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// NewRunDir creates <base>_<YYYYMMDD_HHMMSS> and returns its path.
func NewRunDir(base string) (string, error) {
	dir := fmt.Sprintf("%s_%s", base, time.Now().Format("20060102_150405"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// Store gives access to the artifacts of one output directory
type Store struct {
	dir string
}

// NewStore opens the output directory dir. It is created on first write.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir is the output directory.
func (s *Store) Dir() string { return s.dir }

// SaveProfile writes the claimant profile as the current profile artifact.
func (s *Store) SaveProfile(p *models.FRAClaimantProfile) (string, error) {
	return SaveJSON(s.dir, ProfileFile, p)
}

// LatestProfile reads the current profile artifact.
func (s *Store) LatestProfile() (*models.FRAClaimantProfile, error) {
	var p models.FRAClaimantProfile
	if err := LoadJSON(filepath.Join(s.dir, ProfileFile), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveSchemeReport writes the report under its claimant and timestamp name.
func (s *Store) SaveSchemeReport(r *models.SchemeReport, ts time.Time) (string, error) {
	return writeJSON(s.dir, ai.ReportFileName(r.ClaimantName, ts), r)
}

// LatestSchemeAnalysis reads the most recently written scheme analysis.
func (s *Store) LatestSchemeAnalysis() (*models.SchemeReport, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, schemeGlobPattern))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("scheme analysis: %w", ErrNotFound)
	}

	type candidate struct {
		path string
		mod  time.Time
	}
	candidates := make([]candidate, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		candidates = append(candidates, candidate{m, info.ModTime()})
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("scheme analysis: %w", ErrNotFound)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].mod.Equal(candidates[j].mod) {
			return candidates[i].path > candidates[j].path
		}
		return candidates[i].mod.After(candidates[j].mod)
	})

	var r models.SchemeReport
	if err := LoadJSON(candidates[0].path, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// SaveLandCoverText stores a LAND_COVER_DATA block as landcover/<name>.txt.
func (s *Store) SaveLandCoverText(name, text string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	dir := filepath.Join(s.dir, LandCoverDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name+".txt")
	return path, os.WriteFile(path, []byte(text), 0o644)
}

// LandCoverText reads landcover/<name>.txt.
func (s *Store) LandCoverText(name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, LandCoverDir, name+".txt"))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("land cover %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// checkName rejects names that would escape the artifact directory.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid artifact name %q", name)
	}
	return nil
}

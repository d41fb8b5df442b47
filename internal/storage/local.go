package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// AllowedContentTypes are the upload types the service accepts.
var AllowedContentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/bmp":       true,
	"image/tiff":      true,
	"application/pdf": true,
}

// SafeFilename drops any directory part of a client supplied name.
func SafeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == "/" || name == ".." || name == "" {
		return "upload"
	}
	return name
}

// SaveUpload writes r to {dir}/{taskID}_{filename} and returns the path.
func SaveUpload(dir, taskID, filename string, r io.Reader) (string, int64, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create upload dir: %w", err)
	}
	path := filepath.Join(dir, taskID+"_"+SafeFilename(filename))
	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("create upload: %w", err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("write upload: %w", err)
	}
	return path, n, nil
}

// DeleteTaskFiles removes every {dir}/{taskID}_* file and returns how many went.
func DeleteTaskFiles(dir, taskID string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, escapeGlob(taskID)+"_*"))
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func escapeGlob(s string) string {
	r := strings.NewReplacer(`*`, `\*`, `?`, `\?`, `[`, `\[`, `\`, `\\`)
	return r.Replace(s)
}

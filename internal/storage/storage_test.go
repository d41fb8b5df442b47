package storage

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeFilename(t *testing.T) {
	tests := map[string]string{
		"scan.png":            "scan.png",
		"../../etc/passwd":    "passwd",
		`C:\scans\title.tiff`: "title.tiff",
		"":                    "upload",
		"..":                  "upload",
	}
	for in, want := range tests {
		assert.Equal(t, want, SafeFilename(in), in)
	}
}

func TestSaveUploadAndDelete(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")

	path, n, err := SaveUpload(dir, "abc", "title.png", strings.NewReader("image-bytes"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "abc_title.png"), path)
	assert.EqualValues(t, 11, n)

	_, _, err = SaveUpload(dir, "abcd", "other.png", strings.NewReader("x"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(data))

	removed, err := DeleteTaskFiles(dir, "abc")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.NoFileExists(t, path)
	assert.FileExists(t, filepath.Join(dir, "abcd_other.png"))

	removed, err = DeleteTaskFiles(dir, "missing")
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestGetFileExtension(t *testing.T) {
	tests := map[string]string{
		"image/jpeg":      ".jpg",
		"image/png":       ".png",
		"image/bmp":       ".bmp",
		"image/tiff":      ".tiff",
		"application/pdf": ".pdf",
		"text/plain":      ".bin",
	}
	for ct, want := range tests {
		assert.Equal(t, want, GetFileExtension(ct), ct)
	}
}

func TestObjectName(t *testing.T) {
	now := time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "documents/2025/03/t1_scan.png", ObjectName(now, "t1", "../scan.png"))
}

func TestInitWithoutConfig(t *testing.T) {
	t.Setenv("MINIO_ENDPOINT", "")
	t.Setenv("MINIO_ACCESS_KEY", "")
	t.Setenv("MINIO_SECRET_KEY", "")
	Client = nil

	err := Init(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.ErrorIs(t, err, ErrNoObjectStorage)
	assert.False(t, Available())

	_, err = UploadDocument(context.Background(), "t", "a.png", strings.NewReader(""), 0, "image/png")
	assert.ErrorIs(t, err, ErrNoObjectStorage)
	_, err = GetPresignedURL(context.Background(), "fra/a.png")
	assert.ErrorIs(t, err, ErrNoObjectStorage)
	assert.ErrorIs(t, DeleteDocument(context.Background(), "fra/a.png"), ErrNoObjectStorage)
	assert.ErrorIs(t, Ping(context.Background()), ErrNoObjectStorage)
}

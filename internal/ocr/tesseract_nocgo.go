//go:build !cgo

package ocr

import "github.com/banrakshak/fra-ocr-service/internal/models"

func newNativeEngine(models.OCRConfig) (Engine, error) {
	return nil, errNoNativeEngine
}

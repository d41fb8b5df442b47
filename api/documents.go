package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/banrakshak/fra-ocr-service/internal/db"
	"github.com/banrakshak/fra-ocr-service/internal/storage"
)

const (
	defaultDocumentLimit = 50
	maxDocumentLimit     = 500
)

// sendDBError maps persistence errors to a response
func (h *Handler) sendDBError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, db.ErrNoDatabase):
		h.sendError(w, http.StatusServiceUnavailable, "Database not available")
	case errors.Is(err, db.ErrNotFound):
		h.sendError(w, http.StatusNotFound, "Document not found")
	default:
		h.logger.Error("database query failed", "error", err)
		h.sendError(w, http.StatusInternalServerError, "Failed to query documents")
	}
}

// GetDocuments lists persisted analyses, newest first
func (h *Handler) GetDocuments(w http.ResponseWriter, r *http.Request) {
	limit := defaultDocumentLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			h.sendError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxDocumentLimit)
	}

	docs, err := db.GetDocuments(r.Context(), limit)
	if err != nil {
		h.sendDBError(w, err)
		return
	}
	h.sendJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"documents": docs,
		"total":     len(docs),
	})
}

// GetDocument returns one analysis with its classification
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := db.GetDocumentByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if !errors.Is(err, db.ErrNoDatabase) && !errors.Is(err, db.ErrNotFound) {
			h.sendError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.sendDBError(w, err)
		return
	}
	h.sendJSON(w, http.StatusOK, map[string]any{"success": true, "document": doc})
}

// GetDocumentImage returns a presigned link to the stored scan
func (h *Handler) GetDocumentImage(w http.ResponseWriter, r *http.Request) {
	doc, err := db.GetDocumentByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.sendDBError(w, err)
		return
	}
	if doc.StorageURL == "" {
		h.sendError(w, http.StatusNotFound, "Document has no stored image")
		return
	}
	url, err := storage.GetPresignedURL(r.Context(), doc.StorageURL)
	if errors.Is(err, storage.ErrNoObjectStorage) {
		h.sendError(w, http.StatusServiceUnavailable, "Storage not available")
		return
	}
	if err != nil {
		h.logger.Error("failed to presign image", "document_id", doc.ID, "error", err)
		h.sendError(w, http.StatusInternalServerError, "Failed to generate image URL")
		return
	}
	h.sendJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"url":        url,
		"expires_in": int(storage.PresignExpiry.Seconds()),
	})
}

// DeleteDocument removes a persisted analysis and its stored scan
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := db.GetDocumentByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.sendDBError(w, err)
		return
	}
	if err := db.DeleteDocument(r.Context(), doc.ID.String()); err != nil {
		h.sendDBError(w, err)
		return
	}
	if doc.StorageURL != "" && storage.Available() {
		if err := storage.DeleteDocument(r.Context(), doc.StorageURL); err != nil {
			h.logger.Warn("could not delete stored scan", "document_id", doc.ID, "error", err)
		}
	}
	h.sendJSON(w, http.StatusOK, map[string]string{"message": "Document deleted successfully"})
}

// GetDocumentStats counts persisted documents per type
func (h *Handler) GetDocumentStats(w http.ResponseWriter, r *http.Request) {
	stats, err := db.GetDocumentStats(r.Context())
	if err != nil {
		h.sendDBError(w, err)
		return
	}
	total := 0
	for _, s := range stats {
		total += s.Count
	}
	h.sendJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"by_type": stats,
		"total":   total,
	})
}

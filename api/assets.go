package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/banrakshak/fra-ocr-service/internal/apperr"
	"github.com/banrakshak/fra-ocr-service/internal/artifacts"
	"github.com/banrakshak/fra-ocr-service/internal/landcover"
	"github.com/banrakshak/fra-ocr-service/internal/ocr"
)

// AssetsHealth reports whether land-cover analysis can run
func (h *Handler) AssetsHealth(w http.ResponseWriter, r *http.Request) {
	status, message := "available", "Asset mapping functionality ready"
	if h.Segmenter == nil {
		status, message = "limited", "Segmentation model not configured, pre-computed land cover only"
	}
	h.sendJSON(w, http.StatusOK, map[string]any{
		"status":   status,
		"message":  message,
		"endpoint": h.config.LandCover.Endpoint,
		"features": []string{"Land cover segmentation", "Land use distribution", "Water access inference"},
	})
}

// LandCoverResponse describes one analysed image or artifact
type LandCoverResponse struct {
	Success             bool              `json:"success"`
	Source              string            `json:"source"`
	PrimaryClass        string            `json:"primary_class,omitempty"`
	LandUseDistribution map[string]string `json:"land_use_distribution"`
	WaterAccess         string            `json:"water_access"`
	LandCoverData       string            `json:"land_cover_data"`
	TotalPixels         int               `json:"total_pixels,omitempty"`
	Artifact            string            `json:"artifact,omitempty"`
}

func landCoverView(source string, dist *landcover.Distribution) LandCoverResponse {
	resp := LandCoverResponse{
		Success:             true,
		Source:              source,
		LandUseDistribution: dist.LandUse(),
		WaterAccess:         dist.WaterAccess(),
		LandCoverData:       dist.Text(),
		TotalPixels:         dist.Total,
	}
	if c, ok := dist.Primary(); ok {
		resp.PrimaryClass = c.Label()
	}
	return resp
}

// AnalyzeAssets segments an uploaded satellite image, or reads back a
// pre-computed land-cover artifact when the body is {"artifact": name}.
func (h *Handler) AnalyzeAssets(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		h.segmentUpload(w, r)
		return
	}

	var req struct {
		Artifact string `json:"artifact"`
	}
	if err := decodeBody(r, &req); err != nil {
		h.sendAppError(w, err)
		return
	}
	if req.Artifact == "" {
		h.sendError(w, http.StatusBadRequest, "Upload an image in 'file' or name a pre-computed 'artifact'")
		return
	}

	text, err := h.Artifacts.LandCoverText(req.Artifact)
	if errors.Is(err, artifacts.ErrNotFound) {
		h.sendError(w, http.StatusNotFound, "Land cover data not found: "+req.Artifact)
		return
	}
	if err != nil {
		h.sendError(w, http.StatusBadRequest, err.Error())
		return
	}
	dist, err := landcover.ParseText(text)
	if err != nil {
		h.sendError(w, http.StatusUnprocessableEntity, "Invalid land cover data: "+err.Error())
		return
	}
	resp := landCoverView("artifact", dist)
	resp.Artifact = req.Artifact
	h.sendJSON(w, http.StatusOK, resp)
}

func (h *Handler) segmentUpload(w http.ResponseWriter, r *http.Request) {
	if h.Segmenter == nil {
		h.sendAppError(w, apperr.Unavailable("Segmentation model not configured"))
		return
	}

	maxSize := int64(h.config.Storage.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		h.sendError(w, http.StatusBadRequest, "File too large or invalid form data")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "No file provided (use the 'file' field)")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}
	img, err := ocr.DecodeImage(data)
	if err != nil {
		h.sendError(w, http.StatusBadRequest, err.Error())
		return
	}

	dist, err := h.Segmenter.Segment(r.Context(), img)
	if err != nil {
		h.sendAppError(w, apperr.Upstream("land cover segmentation failed", err))
		return
	}

	resp := landCoverView("segmenter", dist)
	if name := r.FormValue("name"); name != "" {
		if _, err := h.Artifacts.SaveLandCoverText(name, dist.Text()); err != nil {
			h.logger.Warn("failed to save land cover artifact", "name", name, "error", err)
		} else {
			resp.Artifact = name
		}
	}
	h.logger.Info("land cover analysed", "primary", resp.PrimaryClass, "pixels", dist.Total)
	h.sendJSON(w, http.StatusOK, resp)
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/banrakshak/fra-ocr-service/internal/ai"
	"github.com/banrakshak/fra-ocr-service/internal/apperr"
	"github.com/banrakshak/fra-ocr-service/internal/artifacts"
	"github.com/banrakshak/fra-ocr-service/internal/db"
	"github.com/banrakshak/fra-ocr-service/internal/landcover"
	"github.com/banrakshak/fra-ocr-service/internal/models"
	"github.com/banrakshak/fra-ocr-service/internal/services"
	"github.com/banrakshak/fra-ocr-service/internal/tasks"
)

// ProfileRequest names the document and land-cover data a profile is built from.
// Either task_id or document_analysis is required.
type ProfileRequest struct {
	TaskID            string          `json:"task_id,omitempty"`
	DocumentAnalysis  json.RawMessage `json:"document_analysis,omitempty"`
	LandCoverData     string          `json:"land_cover_data,omitempty"`
	LandCoverArtifact string          `json:"land_cover_artifact,omitempty"`
}

// ProfileResponse is the synthesized profile with its validation
type ProfileResponse struct {
	Success    bool                       `json:"success"`
	Profile    *models.FRAClaimantProfile `json:"profile"`
	Validation *services.ValidationResult `json:"validation"`
	Artifact   string                     `json:"artifact,omitempty"`
	ProfileID  string                     `json:"profile_id,omitempty"`
}

// BuildProfile synthesizes a claimant profile from a processed document and land-cover data
func (h *Handler) BuildProfile(w http.ResponseWriter, r *http.Request) {
	if h.Synthesizer == nil {
		h.sendAppError(w, apperr.Unavailable("Profile synthesis requires an AI provider"))
		return
	}

	var req ProfileRequest
	if err := decodeBody(r, &req); err != nil {
		h.sendAppError(w, err)
		return
	}

	docJSON, documentID, err := h.documentAnalysisFor(req)
	if err != nil {
		h.sendAppError(w, err)
		return
	}

	landCoverText := req.LandCoverData
	if landCoverText == "" && req.LandCoverArtifact != "" {
		landCoverText, err = h.Artifacts.LandCoverText(req.LandCoverArtifact)
		if errors.Is(err, artifacts.ErrNotFound) {
			h.sendAppError(w, apperr.NotFound("Land cover data not found: "+req.LandCoverArtifact))
			return
		}
		if err != nil {
			h.sendAppError(w, apperr.InvalidInput(err.Error()))
			return
		}
	}

	profile, _, err := h.Synthesizer.Synthesize(r.Context(), docJSON, landCoverText)
	if errors.Is(err, ai.ErrNoProvider) || errors.Is(err, ai.ErrNoAPIKey) {
		h.sendAppError(w, apperr.Unavailable(err.Error()))
		return
	}
	if err != nil {
		h.sendAppError(w, apperr.Upstream("profile synthesis failed", err))
		return
	}

	var dist *landcover.Distribution
	if landCoverText != "" {
		dist, _ = landcover.ParseText(landCoverText)
	}
	validation := h.Validator.Validate(profile, dist)

	resp := ProfileResponse{Success: true, Profile: profile, Validation: validation}
	if path, err := h.Artifacts.SaveProfile(profile); err != nil {
		h.logger.Warn("failed to save profile artifact", "error", err)
	} else {
		resp.Artifact = path
	}
	if db.Available() {
		if rec, err := db.SaveProfile(r.Context(), documentID, profile, validation.NeedsReview); err != nil {
			h.logger.Warn("failed to persist profile", "error", err)
		} else {
			resp.ProfileID = rec.ID.String()
		}
	}

	h.logger.Info("profile synthesized", "holder", profile.HolderName, "needs_review", validation.NeedsReview)
	h.sendJSON(w, http.StatusOK, resp)
}

// documentAnalysisFor renders the analysis JSON for the synthesizer and
// returns the persisted document id when the task has one.
func (h *Handler) documentAnalysisFor(req ProfileRequest) (string, string, error) {
	if req.TaskID != "" {
		task, err := h.Tasks.Get(req.TaskID)
		if errors.Is(err, tasks.ErrTaskNotFound) {
			return "", "", apperr.NotFound("Task not found")
		}
		if task.Status != models.TaskCompleted || task.Result == nil {
			return "", "", apperr.InvalidInput("Task is not completed. Current status: " + string(task.Status))
		}
		doc, err := ai.DocumentAnalysisJSON(task.Result.Extraction, task.Result.Classification)
		if err != nil {
			return "", "", err
		}
		return doc, task.Result.DocumentID, nil
	}

	if len(req.DocumentAnalysis) == 0 || string(req.DocumentAnalysis) == "null" {
		return "", "", apperr.InvalidInput("task_id or document_analysis is required")
	}
	var probe map[string]any
	if err := json.Unmarshal(req.DocumentAnalysis, &probe); err != nil {
		return "", "", apperr.InvalidInput("document_analysis must be a JSON object")
	}
	return string(req.DocumentAnalysis), "", nil
}

// AnalyzeSchemes recommends schemes for the posted profile, or for the
// latest pre-computed profile when none is posted.
func (h *Handler) AnalyzeSchemes(w http.ResponseWriter, r *http.Request) {
	if h.Recommender == nil {
		h.sendAppError(w, apperr.Unavailable("Scheme analysis requires an AI provider"))
		return
	}

	var req struct {
		Profile *models.FRAClaimantProfile `json:"profile"`
	}
	if err := decodeBody(r, &req); err != nil {
		h.sendAppError(w, err)
		return
	}

	profile := req.Profile
	if profile == nil {
		var err error
		profile, err = h.Artifacts.LatestProfile()
		if errors.Is(err, artifacts.ErrNotFound) {
			h.sendError(w, http.StatusNotFound, "No claimant profile posted and no pre-computed profile found")
			return
		}
		if err != nil {
			h.sendAppError(w, err)
			return
		}
	} else if err := profile.Validate(); err != nil {
		h.sendError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.Recommender.Recommend(r.Context(), profile)
	if err != nil {
		h.logger.Error("scheme analysis failed", "claimant", profile.HolderName, "error", err)
		status := http.StatusBadGateway
		if errors.Is(err, ai.ErrNoProvider) {
			status = http.StatusServiceUnavailable
		}
		h.sendJSON(w, status, report)
		return
	}

	if _, err := h.Artifacts.SaveSchemeReport(report, h.now()); err != nil {
		h.logger.Warn("failed to save scheme analysis", "error", err)
	}
	h.sendJSON(w, http.StatusOK, report)
}

// LatestSchemeAnalysis returns the most recent saved scheme report
func (h *Handler) LatestSchemeAnalysis(w http.ResponseWriter, r *http.Request) {
	report, err := h.Artifacts.LatestSchemeAnalysis()
	if errors.Is(err, artifacts.ErrNotFound) {
		h.sendError(w, http.StatusNotFound, "No scheme analysis found")
		return
	}
	if err != nil {
		h.sendAppError(w, err)
		return
	}
	h.sendJSON(w, http.StatusOK, report)
}

// ListSchemes returns the scheme database
func (h *Handler) ListSchemes(w http.ResponseWriter, r *http.Request) {
	schemes := ai.Schemes()
	h.sendJSON(w, http.StatusOK, map[string]any{
		"schemes": schemes,
		"total":   len(schemes),
	})
}

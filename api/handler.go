// Package api exposes document upload, task tracking, land-cover analysis and
// scheme recommendation over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/banrakshak/fra-ocr-service/internal/apperr"
	"github.com/banrakshak/fra-ocr-service/internal/artifacts"
	"github.com/banrakshak/fra-ocr-service/internal/auth"
	"github.com/banrakshak/fra-ocr-service/internal/db"
	"github.com/banrakshak/fra-ocr-service/internal/landcover"
	"github.com/banrakshak/fra-ocr-service/internal/models"
	"github.com/banrakshak/fra-ocr-service/internal/services"
	"github.com/banrakshak/fra-ocr-service/internal/storage"
	"github.com/banrakshak/fra-ocr-service/internal/tasks"
)

const Version = "1.0.0"

// Enqueuer hands a task to the background workers.
type Enqueuer interface {
	Enqueue(ctx context.Context, job tasks.Job) error
}

// OCR is the document parser as seen by the handlers.
type OCR interface {
	EngineName() string
}

// ProfileSynthesizer builds a claimant profile from an analysis and land-cover text.
type ProfileSynthesizer interface {
	Synthesize(ctx context.Context, documentAnalysis, landCoverText string) (*models.FRAClaimantProfile, string, error)
}

// SchemeRecommender turns a profile into a scheme report.
type SchemeRecommender interface {
	Recommend(ctx context.Context, profile *models.FRAClaimantProfile) (*models.SchemeReport, error)
}

// Deps are the collaborators of the handler. Parser, Classifier, Synthesizer,
// Recommender, Segmenter and Auth may be nil; the matching endpoints then
// report the feature as unavailable.
type Deps struct {
	Tasks       *tasks.Store
	Queue       Enqueuer
	Parser      OCR
	Classifier  tasks.Classifier
	Synthesizer ProfileSynthesizer
	Recommender SchemeRecommender
	Segmenter   landcover.Segmenter
	Artifacts   *artifacts.Store
	Validator   *services.ProfileValidator
	Auth        *auth.Service
}

// Handler handles HTTP requests for FRA document processing
type Handler struct {
	config *models.Config
	Deps
	logger *slog.Logger

	// probe runs a command-line tool and returns the first line of its version output
	probe func(ctx context.Context, name string, args ...string) (string, error)
	now   func() time.Time
}

// NewHandler creates a new API handler
func NewHandler(config *models.Config, deps Deps, logger *slog.Logger) *Handler {
	if deps.Validator == nil {
		deps.Validator = services.NewProfileValidator()
	}
	return &Handler{
		config: config,
		Deps:   deps,
		logger: logger,
		probe:  probeCommand,
		now:    time.Now,
	}
}

// SetupRoutes configures the HTTP routes
func (h *Handler) SetupRoutes() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/", h.Root).Methods("GET")
	router.HandleFunc("/api/health", h.Health).Methods("GET")

	// Document OCR
	router.HandleFunc("/api/ocr/upload", h.UploadDocument).Methods("POST")
	router.HandleFunc("/api/ocr/status/{id}", h.GetTaskStatus).Methods("GET")
	router.HandleFunc("/api/ocr/result/{id}", h.GetTaskResult).Methods("GET")
	router.HandleFunc("/api/ocr/tasks", h.ListTasks).Methods("GET")
	router.HandleFunc("/api/ocr/task/{id}", h.DeleteTask).Methods("DELETE")

	// Land cover
	router.HandleFunc("/api/assets/health", h.AssetsHealth).Methods("GET")
	router.HandleFunc("/api/assets/analyze", h.AnalyzeAssets).Methods("POST")

	// Decision support
	router.HandleFunc("/api/dss/profile", h.BuildProfile).Methods("POST")
	router.HandleFunc("/api/dss/analyze", h.AnalyzeSchemes).Methods("POST")
	router.HandleFunc("/api/dss/analysis/latest", h.LatestSchemeAnalysis).Methods("GET")
	router.HandleFunc("/api/dss/schemes", h.ListSchemes).Methods("GET")

	// Persisted documents
	router.HandleFunc("/api/documents", h.GetDocuments).Methods("GET")
	router.HandleFunc("/api/documents/stats", h.GetDocumentStats).Methods("GET")
	router.HandleFunc("/api/documents/{id}/image", h.GetDocumentImage).Methods("GET")
	router.HandleFunc("/api/documents/{id}", h.GetDocument).Methods("GET")
	router.HandleFunc("/api/documents/{id}", h.DeleteDocument).Methods("DELETE")

	if h.Auth != nil {
		router.HandleFunc("/api/login", h.Auth.LoginHandler).Methods("POST")
	}
	return router
}

// Router returns the routes wrapped in the JWT and CORS middleware.
func (h *Handler) Router() http.Handler {
	var next http.Handler = h.SetupRoutes()
	if h.Auth != nil {
		next = h.Auth.JWTMiddleware(next)
	}
	return handlers.CORS(
		handlers.AllowedOrigins(h.config.CORSOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
		handlers.AllowCredentials(),
	)(next)
}

func (h *Handler) ocrAvailable() bool {
	return h.Parser != nil && h.Classifier != nil
}

// Root is the service banner
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, http.StatusOK, map[string]any{
		"message":       "BanRakshak Backend API is running",
		"version":       Version,
		"status":        "healthy",
		"ocr_available": h.ocrAvailable(),
	})
}

// HealthResponse represents the health check response structure
type HealthResponse struct {
	Status      string            `json:"status"`
	Version     string            `json:"version"`
	Timestamp   string            `json:"timestamp"`
	Uptime      string            `json:"uptime"`
	Memory      MemoryStats       `json:"memory"`
	Services    map[string]bool   `json:"services"`
	Tesseract   ServiceStatus     `json:"tesseract"`
	ImageMagick ServiceStatus     `json:"imageMagick"`
	Database    ServiceStatus     `json:"database"`
	Storage     ServiceStatus     `json:"storage"`
	Segmenter   ServiceStatus     `json:"segmenter"`
	AI          map[string]string `json:"ai"`
}

// MemoryStats represents memory usage statistics
type MemoryStats struct {
	Allocated string `json:"allocated"`
	Total     string `json:"total"`
	System    string `json:"system"`
}

// ServiceStatus represents the status of a service dependency
type ServiceStatus struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
}

var startTime = time.Now()

// Health reports dependencies. OCR being unavailable marks the service degraded.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	tesseractStatus := h.checkTool(ctx, "tesseract", "--version")
	imageMagickStatus := ServiceStatus{Available: false, Error: "disabled"}
	if h.config.OCR.UseImageMagick {
		imageMagickStatus = h.checkTool(ctx, "convert", "-version")
	}

	_, uploadErr := os.Stat(h.config.Storage.UploadDir)

	response := HealthResponse{
		Status:    "healthy",
		Version:   Version,
		Timestamp: h.now().Format(time.RFC3339),
		Uptime:    time.Since(startTime).String(),
		Memory: MemoryStats{
			Allocated: fmt.Sprintf("%.2f MB", float64(m.Alloc)/1024/1024),
			Total:     fmt.Sprintf("%.2f MB", float64(m.TotalAlloc)/1024/1024),
			System:    fmt.Sprintf("%.2f MB", float64(m.Sys)/1024/1024),
		},
		Services: map[string]bool{
			"ocr_parser":          h.Parser != nil,
			"document_classifier": h.Classifier != nil,
			"upload_directory":    uploadErr == nil,
		},
		Tesseract:   tesseractStatus,
		ImageMagick: imageMagickStatus,
		Database:    h.checkDatabase(ctx),
		Storage:     h.checkStorage(ctx),
		Segmenter:   h.checkSegmenter(),
		AI: map[string]string{
			"defaultProvider": h.config.AI.DefaultProvider,
			"ocrEngine":       h.config.OCR.Engine,
		},
	}

	status := http.StatusOK
	if !h.ocrAvailable() || !tesseractStatus.Available {
		response.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	h.sendJSON(w, status, response)
}

func probeCommand(ctx context.Context, name string, args ...string) (string, error) {
	output, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return "", err
	}
	first, _, _ := strings.Cut(string(output), "\n")
	return strings.TrimSpace(first), nil
}

// checkTool verifies a command-line dependency is installed
func (h *Handler) checkTool(ctx context.Context, name string, args ...string) ServiceStatus {
	version, err := h.probe(ctx, name, args...)
	if err != nil {
		return ServiceStatus{
			Available: false,
			Error:     name + " not found or not executable",
		}
	}
	if version == "" {
		version = "unknown"
	}
	return ServiceStatus{Available: true, Version: version}
}

func (h *Handler) checkDatabase(ctx context.Context) ServiceStatus {
	if err := db.Ping(ctx); err != nil {
		return ServiceStatus{Available: false, Error: err.Error()}
	}
	return ServiceStatus{Available: true, Version: "PostgreSQL"}
}

func (h *Handler) checkStorage(ctx context.Context) ServiceStatus {
	if err := storage.Ping(ctx); err != nil {
		return ServiceStatus{Available: false, Error: err.Error()}
	}
	return ServiceStatus{Available: true, Version: "MinIO S3"}
}

func (h *Handler) checkSegmenter() ServiceStatus {
	if h.Segmenter == nil {
		return ServiceStatus{Available: false, Error: "segmenter not configured"}
	}
	return ServiceStatus{Available: true, Version: h.config.LandCover.Endpoint}
}

func (h *Handler) sendJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("failed to write response", "error", err)
	}
}

func (h *Handler) sendError(w http.ResponseWriter, statusCode int, message string) {
	h.sendJSON(w, statusCode, map[string]any{
		"success": false,
		"error":   message,
	})
}

// sendAppError picks the status from an apperr code.
func (h *Handler) sendAppError(w http.ResponseWriter, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "status", status, "error", err)
	}
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Code != apperr.CodeUpstream && ae.Code != apperr.CodeInternal {
		h.sendError(w, status, ae.Message)
		return
	}
	h.sendError(w, status, err.Error())
}

// decodeBody decodes an optional JSON body; an empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperr.InvalidInput("invalid JSON body: " + err.Error())
	}
	return nil
}

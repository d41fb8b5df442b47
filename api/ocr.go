package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/banrakshak/fra-ocr-service/internal/models"
	"github.com/banrakshak/fra-ocr-service/internal/storage"
	"github.com/banrakshak/fra-ocr-service/internal/tasks"
)

// enqueueTimeout bounds how long an upload waits for room in a full queue
const enqueueTimeout = 5 * time.Second

// UploadResponse is returned when a document is accepted
type UploadResponse struct {
	TaskID   string `json:"task_id"`
	Filename string `json:"filename"`
	Status   string `json:"status"`
	Message  string `json:"message"`
}

// UploadDocument stores the scan and queues it for processing
func (h *Handler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	maxSize := int64(h.config.Storage.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		h.sendError(w, http.StatusBadRequest, "File too large or invalid form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "No file provided (use the 'file' field)")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !storage.AllowedContentTypes[contentType] {
		allowed := make([]string, 0, len(storage.AllowedContentTypes))
		for ct := range storage.AllowedContentTypes {
			allowed = append(allowed, ct)
		}
		sort.Strings(allowed)
		h.sendError(w, http.StatusBadRequest, fmt.Sprintf("Unsupported file type: %s. Supported types: %s",
			contentType, strings.Join(allowed, ", ")))
		return
	}

	taskID := tasks.NewID()
	path, size, err := storage.SaveUpload(h.config.Storage.UploadDir, taskID, header.Filename, file)
	if err != nil {
		h.logger.Error("failed to save upload", "task_id", taskID, "error", err)
		h.sendError(w, http.StatusInternalServerError, "Failed to save file: "+err.Error())
		return
	}

	task := h.Tasks.Create(taskID, header.Filename, path)

	if storage.Available() {
		if url, err := h.mirrorUpload(r.Context(), taskID, header.Filename, path, size, contentType); err != nil {
			h.logger.Warn("failed to mirror upload", "task_id", taskID, "error", err)
		} else {
			task, _ = h.Tasks.Update(taskID, func(t *models.Task) { t.StorageURL = url })
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), enqueueTimeout)
	defer cancel()
	if err := h.Queue.Enqueue(ctx, tasks.Job{TaskID: taskID, SubmittedAt: h.now()}); err != nil {
		h.logger.Error("failed to queue task", "task_id", taskID, "error", err)
		h.Tasks.Delete(taskID)
		storage.DeleteTaskFiles(h.config.Storage.UploadDir, taskID)
		h.sendError(w, http.StatusServiceUnavailable, "Processing queue is unavailable, try again later")
		return
	}

	h.logger.Info("document uploaded", "task_id", taskID, "filename", header.Filename, "bytes", size)
	h.sendJSON(w, http.StatusOK, UploadResponse{
		TaskID:   task.ID,
		Filename: task.Filename,
		Status:   string(models.TaskQueued),
		Message:  "Document uploaded successfully. Processing started.",
	})
}

func (h *Handler) mirrorUpload(ctx context.Context, taskID, filename, path string, size int64, contentType string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return storage.UploadDocument(ctx, taskID, filename, f, size, contentType)
}

// TaskStatusResponse is the progress view of a task
type TaskStatusResponse struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	Status       string `json:"status"`
	Progress     int    `json:"progress"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
	ErrorMessage string `json:"error_message,omitempty"`
	HasResult    *bool  `json:"has_result,omitempty"`
}

func statusView(t models.Task) TaskStatusResponse {
	return TaskStatusResponse{
		ID:           t.ID,
		Filename:     t.Filename,
		Status:       string(t.Status),
		Progress:     t.Progress,
		CreatedAt:    t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    t.UpdatedAt.Format(time.RFC3339),
		ErrorMessage: t.ErrorMessage,
	}
}

func (h *Handler) lookupTask(w http.ResponseWriter, r *http.Request) (models.Task, bool) {
	task, err := h.Tasks.Get(mux.Vars(r)["id"])
	if errors.Is(err, tasks.ErrTaskNotFound) {
		h.sendError(w, http.StatusNotFound, "Task not found")
		return task, false
	}
	return task, true
}

// GetTaskStatus returns the progress of a task
func (h *Handler) GetTaskStatus(w http.ResponseWriter, r *http.Request) {
	task, ok := h.lookupTask(w, r)
	if !ok {
		return
	}
	h.sendJSON(w, http.StatusOK, statusView(task))
}

// TaskResultResponse carries the result of a completed task
type TaskResultResponse struct {
	ID         string             `json:"id"`
	Filename   string             `json:"filename"`
	Status     string             `json:"status"`
	Result     *models.TaskResult `json:"result"`
	StorageURL string             `json:"storage_url,omitempty"`
	CreatedAt  string             `json:"created_at"`
	UpdatedAt  string             `json:"updated_at"`
}

// GetTaskResult returns the extraction and classification of a completed task
func (h *Handler) GetTaskResult(w http.ResponseWriter, r *http.Request) {
	task, ok := h.lookupTask(w, r)
	if !ok {
		return
	}
	if task.Status != models.TaskCompleted {
		h.sendError(w, http.StatusBadRequest, "Task is not completed. Current status: "+string(task.Status))
		return
	}
	h.sendJSON(w, http.StatusOK, TaskResultResponse{
		ID:         task.ID,
		Filename:   task.Filename,
		Status:     string(task.Status),
		Result:     task.Result,
		StorageURL: task.StorageURL,
		CreatedAt:  task.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  task.UpdatedAt.Format(time.RFC3339),
	})
}

// ListTasks returns every task, newest first
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	all := h.Tasks.List()
	views := make([]TaskStatusResponse, len(all))
	for i, t := range all {
		views[i] = statusView(t)
		hasResult := t.Result != nil
		views[i].HasResult = &hasResult
	}
	h.sendJSON(w, http.StatusOK, map[string]any{
		"tasks": views,
		"total": len(views),
	})
}

// DeleteTask removes a task and its uploaded files
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.lookupTask(w, r)
	if !ok {
		return
	}

	if _, err := storage.DeleteTaskFiles(h.config.Storage.UploadDir, task.ID); err != nil {
		h.logger.Warn("could not delete upload", "task_id", task.ID, "error", err)
	}
	if task.StorageURL != "" && storage.Available() {
		if err := storage.DeleteDocument(r.Context(), task.StorageURL); err != nil {
			h.logger.Warn("could not delete stored scan", "task_id", task.ID, "error", err)
		}
	}
	h.Tasks.Delete(task.ID)

	h.sendJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}

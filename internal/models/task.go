package models

import "time"

// TaskStatus is the lifecycle state of an upload task
type TaskStatus string

const (
	TaskQueued     TaskStatus = "queued"
	TaskProcessing TaskStatus = "processing"
	TaskCompleted  TaskStatus = "completed"
	TaskError      TaskStatus = "error"
)

// Task tracks the background processing of one uploaded document
type Task struct {
	ID           string      `json:"id"`
	Filename     string      `json:"filename"`
	FilePath     string      `json:"-"`
	StorageURL   string      `json:"storage_url,omitempty"`
	Status       TaskStatus  `json:"status"`
	Progress     int         `json:"progress"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	Result       *TaskResult `json:"result,omitempty"`
	ErrorMessage string      `json:"error_message,omitempty"`
}

// TaskResult is what a completed task hands back to the client
type TaskResult struct {
	Extraction     *DocumentAnalysis       `json:"extraction"`
	Classification *DocumentClassification `json:"classification"`
	ProcessedAt    string                  `json:"processed_at"`
	Filename       string                  `json:"filename"`
	DocumentID     string                  `json:"document_id,omitempty"`
	StorageURL     string                  `json:"storage_url,omitempty"`
}

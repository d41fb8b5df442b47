package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/banrakshak/fra-ocr-service/internal/models"
)

// Progress checkpoints of a processing task
const (
	ProgressStarted    = 10
	ProgressExtracting = 30
	ProgressClassify   = 60
	ProgressFinishing  = 90
	ProgressDone       = 100
)

// ErrNoParser is returned when the OCR pipeline could not be initialised.
var ErrNoParser = errors.New("OCR components not available")

// Parser turns a stored scan into a document analysis
type Parser interface {
	ParseFile(ctx context.Context, path string) *models.DocumentAnalysis
}

// Classifier decides the document type from its text
type Classifier interface {
	Classify(ctx context.Context, text string) (*models.DocumentClassification, error)
}

// ResultSink persists a finished result and returns its document id.
type ResultSink interface {
	SaveResult(ctx context.Context, task models.Task, result *models.TaskResult) (string, error)
}

// Processor runs the parse and classify steps for one task and records progress in the store.
type Processor struct {
	store      *Store
	parser     Parser
	classifier Classifier
	sink       ResultSink
	logger     *slog.Logger
}

// NewProcessor creates a task processor. classifier and sink may be nil.
func NewProcessor(store *Store, parser Parser, classifier Classifier, sink ResultSink, logger *slog.Logger) *Processor {
	return &Processor{
		store:      store,
		parser:     parser,
		classifier: classifier,
		sink:       sink,
		logger:     logger,
	}
}

// Process runs the task to completion. Failures end in the error status with
// the message recorded on the task; the error is returned as well.
func (p *Processor) Process(ctx context.Context, taskID string) error {
	task, err := p.store.Update(taskID, func(t *models.Task) {
		t.Status = models.TaskProcessing
		t.Progress = ProgressStarted
	})
	if err != nil {
		return err
	}

	result, err := p.run(ctx, task)
	if err != nil {
		p.logger.Error("task failed", "task_id", taskID, "error", err)
		p.store.Update(taskID, func(t *models.Task) {
			t.Status = models.TaskError
			t.ErrorMessage = err.Error()
		})
		return err
	}

	p.store.Update(taskID, func(t *models.Task) {
		t.Status = models.TaskCompleted
		t.Progress = ProgressDone
		t.Result = result
	})
	p.logger.Info("task completed", "task_id", taskID, "filename", task.Filename)
	return nil
}

func (p *Processor) run(ctx context.Context, task models.Task) (*models.TaskResult, error) {
	if p.parser == nil {
		return nil, ErrNoParser
	}

	p.setProgress(task.ID, ProgressExtracting)
	analysis := p.parser.ParseFile(ctx, task.FilePath)
	if !analysis.Succeeded() {
		return nil, fmt.Errorf("text extraction failed: %s", analysis.ProcessingStatus)
	}

	p.setProgress(task.ID, ProgressClassify)
	var classification *models.DocumentClassification
	if p.classifier != nil && analysis.FullText != "" {
		c, err := p.classifier.Classify(ctx, analysis.FullText)
		if err != nil {
			return nil, fmt.Errorf("classification failed: %w", err)
		}
		classification = c
	}

	p.setProgress(task.ID, ProgressFinishing)
	result := &models.TaskResult{
		Extraction:     analysis,
		Classification: classification,
		ProcessedAt:    time.Now().Format(time.RFC3339),
		Filename:       task.Filename,
		StorageURL:     task.StorageURL,
	}

	if p.sink != nil {
		id, err := p.sink.SaveResult(ctx, task, result)
		if err != nil {
			// persistence is optional
			p.logger.Warn("failed to persist result", "task_id", task.ID, "error", err)
		} else {
			result.DocumentID = id
		}
	}
	return result, nil
}

func (p *Processor) setProgress(id string, progress int) {
	p.store.Update(id, func(t *models.Task) { t.Progress = progress })
}

package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/banrakshak/fra-ocr-service/internal/extract"
	"github.com/banrakshak/fra-ocr-service/internal/models"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// Document is a persisted analysis of one uploaded scan
type Document struct {
	ID             uuid.UUID       `json:"id"`
	TaskID         string          `json:"task_id"`
	Filename       string          `json:"filename"`
	DocumentType   string          `json:"document_type"`
	HolderName     string          `json:"holder_name"`
	District       string          `json:"district"`
	StorageURL     string          `json:"storage_url,omitempty"`
	Analysis       json.RawMessage `json:"analysis,omitempty"`
	Classification json.RawMessage `json:"classification,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// NewDocument flattens a task result into a row. The searchable columns come
// from the classification and the merged fields.
func NewDocument(task models.Task, result *models.TaskResult) (*Document, error) {
	doc := &Document{
		TaskID:     task.ID,
		Filename:   result.Filename,
		StorageURL: result.StorageURL,
	}
	if result.Extraction != nil {
		doc.HolderName = result.Extraction.ExtractedFields[extract.FieldHolderName]
		doc.District = result.Extraction.ExtractedFields[extract.FieldDistrict]
	}
	if result.Classification != nil {
		doc.DocumentType = result.Classification.DocumentType
	}

	var err error
	if doc.Analysis, err = json.Marshal(result.Extraction); err != nil {
		return nil, fmt.Errorf("marshal analysis: %w", err)
	}
	if result.Classification != nil {
		if doc.Classification, err = json.Marshal(result.Classification); err != nil {
			return nil, fmt.Errorf("marshal classification: %w", err)
		}
	}
	return doc, nil
}

// SaveDocument inserts doc and sets its id and creation time.
func SaveDocument(ctx context.Context, doc *Document) error {
	if Pool == nil {
		return ErrNoDatabase
	}
	query := `
		INSERT INTO fra_documents (
			task_id, filename, document_type, holder_name, district,
			storage_url, analysis, classification
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	var classification any
	if len(doc.Classification) > 0 {
		classification = doc.Classification
	}
	return Pool.QueryRow(ctx, query,
		doc.TaskID, doc.Filename, doc.DocumentType, doc.HolderName, doc.District,
		doc.StorageURL, doc.Analysis, classification,
	).Scan(&doc.ID, &doc.CreatedAt)
}

// GetDocuments lists the most recent documents without their JSON payloads.
func GetDocuments(ctx context.Context, limit int) ([]Document, error) {
	if Pool == nil {
		return nil, ErrNoDatabase
	}
	query := `
		SELECT id, task_id, filename, document_type, holder_name, district,
		       storage_url, created_at
		FROM fra_documents
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var d Document
		if err := rows.Scan(
			&d.ID, &d.TaskID, &d.Filename, &d.DocumentType, &d.HolderName,
			&d.District, &d.StorageURL, &d.CreatedAt,
		); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// GetDocumentByID returns one document with its analysis and classification.
func GetDocumentByID(ctx context.Context, id string) (*Document, error) {
	if Pool == nil {
		return nil, ErrNoDatabase
	}
	docID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid document id: %w", err)
	}

	query := `
		SELECT id, task_id, filename, document_type, holder_name, district,
		       storage_url, analysis, classification, created_at
		FROM fra_documents
		WHERE id = $1
	`
	var d Document
	var classification []byte
	err = Pool.QueryRow(ctx, query, docID).Scan(
		&d.ID, &d.TaskID, &d.Filename, &d.DocumentType, &d.HolderName,
		&d.District, &d.StorageURL, &d.Analysis, &classification, &d.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	d.Classification = classification
	return &d, nil
}

// DeleteDocument removes a document; its profiles keep a NULL reference.
func DeleteDocument(ctx context.Context, id string) error {
	if Pool == nil {
		return ErrNoDatabase
	}
	tag, err := Pool.Exec(ctx, "DELETE FROM fra_documents WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// TypeCount is the number of documents of one type
type TypeCount struct {
	DocumentType string `json:"document_type"`
	Count        int    `json:"count"`
}

// GetDocumentStats counts documents per classified type, most frequent first.
func GetDocumentStats(ctx context.Context) ([]TypeCount, error) {
	if Pool == nil {
		return nil, ErrNoDatabase
	}
	rows, err := Pool.Query(ctx, `
		SELECT COALESCE(NULLIF(document_type, ''), 'Unclassified'), COUNT(*)
		FROM fra_documents
		GROUP BY 1
		ORDER BY 2 DESC, 1
	`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (TypeCount, error) {
		var tc TypeCount
		err := row.Scan(&tc.DocumentType, &tc.Count)
		return tc, err
	})
}

// ResultSink stores finished task results in fra_documents.
type ResultSink struct{}

// SaveResult implements the task processor's sink.
func (ResultSink) SaveResult(ctx context.Context, task models.Task, result *models.TaskResult) (string, error) {
	doc, err := NewDocument(task, result)
	if err != nil {
		return "", err
	}
	if err := SaveDocument(ctx, doc); err != nil {
		return "", err
	}
	return doc.ID.String(), nil
}

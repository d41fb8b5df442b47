package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banrakshak/fra-ocr-service/internal/models"
)

// ProfileRecord is a stored claimant profile
type ProfileRecord struct {
	ID          uuid.UUID                  `json:"id"`
	DocumentID  *uuid.UUID                 `json:"document_id,omitempty"`
	HolderName  string                     `json:"holder_name"`
	Profile     *models.FRAClaimantProfile `json:"profile"`
	NeedsReview bool                       `json:"needs_review"`
	CreatedAt   time.Time                  `json:"created_at"`
}

// SaveProfile stores a synthesized profile. documentID may be empty.
func SaveProfile(ctx context.Context, documentID string, p *models.FRAClaimantProfile, needsReview bool) (*ProfileRecord, error) {
	if Pool == nil {
		return nil, ErrNoDatabase
	}
	rec := &ProfileRecord{HolderName: p.HolderName, Profile: p, NeedsReview: needsReview}
	if documentID != "" {
		id, err := uuid.Parse(documentID)
		if err != nil {
			return nil, fmt.Errorf("invalid document id: %w", err)
		}
		rec.DocumentID = &id
	}

	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal profile: %w", err)
	}
	err = Pool.QueryRow(ctx, `
		INSERT INTO fra_profiles (document_id, holder_name, profile, needs_review)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, rec.DocumentID, rec.HolderName, body, needsReview).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// GetProfilesByHolder returns the profiles stored for a claimant, newest first.
func GetProfilesByHolder(ctx context.Context, holderName string, limit int) ([]ProfileRecord, error) {
	if Pool == nil {
		return nil, ErrNoDatabase
	}
	rows, err := Pool.Query(ctx, `
		SELECT id, document_id, holder_name, profile, needs_review, created_at
		FROM fra_profiles
		WHERE lower(holder_name) = lower($1)
		ORDER BY created_at DESC
		LIMIT $2
	`, holderName, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []ProfileRecord{}
	for rows.Next() {
		var rec ProfileRecord
		var body []byte
		if err := rows.Scan(&rec.ID, &rec.DocumentID, &rec.HolderName, &body, &rec.NeedsReview, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Profile = &models.FRAClaimantProfile{}
		if err := json.Unmarshal(body, rec.Profile); err != nil {
			return nil, fmt.Errorf("profile %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

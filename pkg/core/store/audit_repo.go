package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ppm_extraction/pkg/core/section"
)

// AuditRepo stores the raw model answers produced for each deal so a
// reviewer can trace any sheet cell back to the text the model returned.
// It is a hybrid vault: Postgres when a pool is available, flat JSON
// files under fileDir otherwise.
type AuditRepo struct {
	pool    *pgxpool.Pool
	fileDir string
}

// NewAuditRepo creates a repository. If pool is nil, answers are kept in
// files under dir; an empty dir defaults to .cache/raw_answers.
func NewAuditRepo(pool *pgxpool.Pool, dir string) *AuditRepo {
	if pool == nil && dir == "" {
		dir = filepath.Join(".cache", "raw_answers")
	}
	return &AuditRepo{pool: pool, fileDir: dir}
}

// auditRecord is the stored shape, one JSON document per deal.
type auditRecord struct {
	DealID    string            `json:"deal_id"`
	Answers   map[string]string `json:"answers"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Save upserts the per-section raw answers for a deal.
//
// Schema assumption:
// CREATE TABLE IF NOT EXISTS raw_answers (
//   deal_id TEXT PRIMARY KEY,
//   answers_json JSONB,
//   updated_at TIMESTAMPTZ
// );
func (r *AuditRepo) Save(ctx context.Context, dealID string, answers map[section.Name]string) error {
	if dealID == "" {
		return fmt.Errorf("deal ID is empty")
	}

	rec := auditRecord{
		DealID:    dealID,
		Answers:   make(map[string]string, len(answers)),
		UpdatedAt: time.Now(),
	}
	for name, raw := range answers {
		rec.Answers[string(name)] = raw
	}

	jsonData, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal raw answers: %w", err)
	}

	if r.pool == nil {
		return r.saveFile(dealID, jsonData)
	}

	query := `
		INSERT INTO raw_answers (deal_id, answers_json, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (deal_id)
		DO UPDATE SET
			answers_json = EXCLUDED.answers_json,
			updated_at = EXCLUDED.updated_at;
	`
	if _, err := r.pool.Exec(ctx, query, dealID, jsonData, rec.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save raw answers: %w", err)
	}
	return nil
}

// Load retrieves the raw answers previously stored for a deal.
func (r *AuditRepo) Load(ctx context.Context, dealID string) (map[section.Name]string, error) {
	var jsonData []byte

	if r.pool == nil {
		data, err := os.ReadFile(r.filePath(dealID))
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("no raw answers found for deal %s", dealID)
			}
			return nil, fmt.Errorf("failed to read raw answers: %w", err)
		}
		jsonData = data
	} else {
		query := `SELECT answers_json FROM raw_answers WHERE deal_id = $1`
		err := r.pool.QueryRow(ctx, query, dealID).Scan(&jsonData)
		if err != nil {
			if err == pgx.ErrNoRows {
				return nil, fmt.Errorf("no raw answers found for deal %s", dealID)
			}
			return nil, fmt.Errorf("failed to load raw answers: %w", err)
		}
	}

	var rec auditRecord
	if err := json.Unmarshal(jsonData, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal raw answers: %w", err)
	}

	out := make(map[section.Name]string, len(rec.Answers))
	for name, raw := range rec.Answers {
		out[section.Name(name)] = raw
	}
	return out, nil
}

func (r *AuditRepo) saveFile(dealID string, data []byte) error {
	if err := os.MkdirAll(r.fileDir, 0o755); err != nil {
		return fmt.Errorf("failed to create audit directory: %w", err)
	}
	if err := os.WriteFile(r.filePath(dealID), data, 0o644); err != nil {
		return fmt.Errorf("failed to write raw answers: %w", err)
	}
	return nil
}

func (r *AuditRepo) filePath(dealID string) string {
	return filepath.Join(r.fileDir, dealID+".json")
}

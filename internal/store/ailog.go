// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// ailog.go records every regeneration attempt that reached a provider.
// Rows are never updated or deleted, and survive deletion of the page.
package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"pagecraft/internal/models"
)

// GenerationLogStore handles the AI generation audit log.
type GenerationLogStore struct {
	db DBTX
}

// NewGenerationLogStore creates a new GenerationLogStore.
func NewGenerationLogStore(db DBTX) *GenerationLogStore {
	return &GenerationLogStore{db: db}
}

// Record appends one audit row and returns it with its ID and timestamp.
func (s *GenerationLogStore) Record(ctx context.Context, l *models.AiGenerationLog) (*models.AiGenerationLog, error) {
	var out models.AiGenerationLog
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO ai_generation_logs
			(page_id, model_used, prompt_used, tokens_used, response_status, error_message)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, page_id, model_used, prompt_used, tokens_used, response_status, error_message, created_at
	`, l.PageID, l.ModelUsed, l.PromptUsed, l.TokensUsed, l.ResponseStatus, l.ErrorMessage,
	).Scan(&out.ID, &out.PageID, &out.ModelUsed, &out.PromptUsed, &out.TokensUsed,
		&out.ResponseStatus, &out.ErrorMessage, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("record generation log: %w", err)
	}
	return &out, nil
}

// ListByPage returns the most recent attempts for a page, newest first.
func (s *GenerationLogStore) ListByPage(ctx context.Context, pageID uuid.UUID, limit int) ([]models.AiGenerationLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, page_id, model_used, prompt_used, tokens_used, response_status, error_message, created_at
		FROM ai_generation_logs
		WHERE page_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2
	`, pageID, limit)
	if err != nil {
		return nil, fmt.Errorf("list generation logs: %w", err)
	}
	defer rows.Close()

	logs := []models.AiGenerationLog{}
	for rows.Next() {
		var l models.AiGenerationLog
		if err := rows.Scan(&l.ID, &l.PageID, &l.ModelUsed, &l.PromptUsed, &l.TokensUsed,
			&l.ResponseStatus, &l.ErrorMessage, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan generation log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

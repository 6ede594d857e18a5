// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ContentVersion is an immutable snapshot of a page's composed state.
// VersionNumber starts at 1 per page and is never reused.
type ContentVersion struct {
	ID            uuid.UUID       `json:"id"`
	PageID        uuid.UUID       `json:"page_id"`
	VersionNumber int             `json:"version_number"`
	Snapshot      json.RawMessage `json:"snapshot"`
	CreatedBy     *uuid.UUID      `json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
}

// GenerationStatus is the outcome recorded for one regeneration attempt.
type GenerationStatus string

const (
	GenerationSuccess     GenerationStatus = "success"
	GenerationInvalidJSON GenerationStatus = "invalid_json"
	GenerationFailed      GenerationStatus = "failed"
)

// AiGenerationLog is an append-only audit row, one per regeneration attempt.
type AiGenerationLog struct {
	ID             uuid.UUID        `json:"id"`
	PageID         uuid.UUID        `json:"page_id"`
	ModelUsed      string           `json:"model_used"`
	PromptUsed     string           `json:"prompt_used"`
	TokensUsed     int              `json:"tokens_used"`
	ResponseStatus GenerationStatus `json:"response_status"`
	ErrorMessage   *string          `json:"error_message,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

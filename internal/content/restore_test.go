// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagecraft/internal/models"
)

func TestRestoredStatus(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name       string
		current    models.PageStatus
		snap       models.PageStatus
		publishAt  *time.Time
		wantStatus models.PageStatus
		wantAt     *time.Time
	}{
		{"draft snapshot unpublishes", models.PageStatusPublished, models.PageStatusDraft, nil, models.PageStatusDraft, nil},
		{"published snapshot", models.PageStatusDraft, models.PageStatusPublished, nil, models.PageStatusPublished, nil},
		{"stray publish_at dropped", models.PageStatusDraft, models.PageStatusArchived, &future, models.PageStatusArchived, nil},
		{"future schedule kept", models.PageStatusDraft, models.PageStatusScheduled, &future, models.PageStatusScheduled, &future},
		{"lapsed schedule becomes draft", models.PageStatusPublished, models.PageStatusScheduled, &past, models.PageStatusDraft, nil},
		{"schedule without date becomes draft", models.PageStatusDraft, models.PageStatusScheduled, nil, models.PageStatusDraft, nil},
		{"unknown snapshot status keeps current", models.PageStatusArchived, models.PageStatus(""), nil, models.PageStatusArchived, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, at := restoredStatus(tt.current, tt.snap, tt.publishAt, now)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantAt, at)
		})
	}
}

func TestRestoreCauseClassifiesForeignKeys(t *testing.T) {
	fk := fmt.Errorf("attach industries: %w", &pgconn.PgError{Code: "23503"})

	var ve *ValidationError
	require.True(t, errors.As(restoreCause(fk), &ve))
	assert.Equal(t, "snapshot", ve.Field)
	assert.ErrorIs(t, restoreCause(fk), fk)

	other := errors.New("connection reset")
	assert.Same(t, other, restoreCause(other))
}

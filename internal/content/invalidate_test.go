// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingInvalidator captures the context state of every eviction.
type recordingInvalidator struct {
	ids          []uuid.UUID
	errs         []error
	hasDeadlines []bool
}

func (r *recordingInvalidator) InvalidatePage(ctx context.Context, pageID uuid.UUID) {
	r.ids = append(r.ids, pageID)
	r.errs = append(r.errs, ctx.Err())
	_, ok := ctx.Deadline()
	r.hasDeadlines = append(r.hasDeadlines, ok)
}

func TestInvalidateSurvivesCancelledRequest(t *testing.T) {
	inv := &recordingInvalidator{}
	svc := NewService(nil)
	svc.SetInvalidator(inv)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a, b := uuid.New(), uuid.New()
	svc.invalidate(ctx, a, b)

	require.Equal(t, []uuid.UUID{a, b}, inv.ids)
	for i := range inv.errs {
		assert.NoError(t, inv.errs[i], "eviction must not inherit the request's cancellation")
		assert.True(t, inv.hasDeadlines[i], "eviction is bounded")
	}
}

func TestInvalidateWithoutCache(t *testing.T) {
	svc := NewService(nil)
	assert.NotPanics(t, func() { svc.invalidate(context.Background(), uuid.New()) })
}

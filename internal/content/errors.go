// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NotFoundError reports a missing page, version, section, template or
// related entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ValidationError reports caller input that cannot be applied. Field is a
// path into the request ("sections[2].blocks[0].block_type", "slug").
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ConfirmationRequiredError is returned when a destructive operation needs
// an explicit overwrite flag. It is an expected flow state, not a failure.
type ConfirmationRequiredError struct {
	Flag string
}

func (e *ConfirmationRequiredError) Error() string {
	return fmt.Sprintf("page already has content; resubmit with %q set to true", e.Flag)
}

// ProviderError wraps a failed or timed-out content generation call.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// RestoreError wraps any failure while applying a snapshot. The whole
// restore transaction has been rolled back when it is returned.
type RestoreError struct {
	VersionID uuid.UUID
	Err       error
}

func (e *RestoreError) Error() string {
	return fmt.Sprintf("restore version %s: %v", e.VersionID, e.Err)
}

func (e *RestoreError) Unwrap() error { return e.Err }

// PageViolations groups the publish gate violations of one page.
type PageViolations struct {
	PageID     uuid.UUID   `json:"page_id"`
	Violations []Violation `json:"violations"`
}

// PublishBlockedError is returned when a transition into "published" is
// refused because at least one page fails the publish gate. No page of the
// batch changed status.
type PublishBlockedError struct {
	Pages []PageViolations
}

func (e *PublishBlockedError) Error() string {
	ids := make([]string, len(e.Pages))
	for i, p := range e.Pages {
		ids[i] = p.PageID.String()
	}
	return "publish blocked by images without alt text on pages " + strings.Join(ids, ", ")
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"pagecraft/internal/models"
)

// gateViolations runs the publish gate against the stored tree of a page.
func gateViolations(ctx context.Context, st stores, pageID uuid.UUID) ([]Violation, error) {
	sections, err := st.tree.Sections(ctx, pageID)
	if err != nil {
		return nil, err
	}
	alts, err := st.media.AltTexts(ctx, referencedMedia(sections))
	if err != nil {
		return nil, err
	}
	return publishViolations(sections, alts), nil
}

// CheckPublishGate lists the image blocks of a page that have neither
// inline alt text nor a referenced asset with alt text. An empty list
// means the page may be published.
func (s *Service) CheckPublishGate(ctx context.Context, pageID uuid.UUID) ([]Violation, error) {
	st := newStores(s.db)
	p, err := st.pages.FindByID(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, &NotFoundError{Entity: "page", ID: pageID.String()}
	}
	return gateViolations(ctx, st, pageID)
}

// TransitionStatus moves every listed page to status. A move into
// "published" is refused for the whole batch if any page fails the publish
// gate; "scheduled" needs a publishAt in the future.
func (s *Service) TransitionStatus(ctx context.Context, ids []uuid.UUID, status models.PageStatus, publishAt *time.Time) ([]models.Page, error) {
	if len(ids) == 0 {
		return nil, &ValidationError{Field: "page_ids", Message: "must not be empty"}
	}
	if !status.Valid() {
		return nil, &ValidationError{Field: "status", Message: "must be one of draft, published, scheduled, archived"}
	}
	if status == models.PageStatusScheduled && (publishAt == nil || !publishAt.After(time.Now())) {
		return nil, &ValidationError{Field: "publish_at", Message: "must be in the future when scheduling"}
	}

	unique := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	var pages []models.Page
	err := s.inTx(ctx, func(st stores) error {
		for _, id := range unique {
			if _, err := lockPage(ctx, st, id); err != nil {
				return err
			}
		}

		if status == models.PageStatusPublished {
			var blocked []PageViolations
			for _, id := range unique {
				v, err := gateViolations(ctx, st, id)
				if err != nil {
					return err
				}
				if len(v) > 0 {
					blocked = append(blocked, PageViolations{PageID: id, Violations: v})
				}
			}
			if len(blocked) > 0 {
				return &PublishBlockedError{Pages: blocked}
			}
		}

		if err := st.pages.UpdateStatus(ctx, unique, status, publishAt); err != nil {
			return err
		}
		for _, id := range unique {
			p, err := st.pages.FindByID(ctx, id)
			if err != nil {
				return err
			}
			pages = append(pages, *p)
		}
		return nil
	})
	if err != nil {
		var blocked *PublishBlockedError
		if errors.As(err, &blocked) {
			publishBlockedTotal.Inc()
		}
		return nil, err
	}

	slog.Info("page status changed", "pages", len(unique), "status", status)
	s.invalidate(ctx, unique...)
	return pages, nil
}

// PublishDue publishes every scheduled page whose publish_at has passed.
// Pages are handled one by one so a page blocked by the gate stays
// scheduled without holding back the others. It returns the ids published.
func (s *Service) PublishDue(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	due, err := newStores(s.db).pages.ListDueScheduled(ctx, now)
	if err != nil {
		return nil, err
	}

	var published []uuid.UUID
	for _, p := range due {
		if _, err := s.TransitionStatus(ctx, []uuid.UUID{p.ID}, models.PageStatusPublished, nil); err != nil {
			slog.Warn("scheduled page not published", "page_id", p.ID, "slug", p.Slug, "error", err)
			continue
		}
		published = append(published, p.ID)
	}
	return published, nil
}

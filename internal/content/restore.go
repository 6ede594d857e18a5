// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"pagecraft/internal/models"
	"pagecraft/internal/store"
)

// RestoreVersion rewrites the live state of the version's page to match
// its snapshot: scalars, the whole section tree, SEO, every captured
// relation, CTAs and keywords. Either all of it applies or none of it.
func (s *Service) RestoreVersion(ctx context.Context, versionID uuid.UUID) (*models.Page, error) {
	var (
		page    *models.Page
		missing *NotFoundError
	)
	err := s.inTx(ctx, func(st stores) error {
		v, err := st.versions.FindByID(ctx, versionID)
		if err != nil {
			return err
		}
		if v == nil {
			missing = &NotFoundError{Entity: "version", ID: versionID.String()}
			return missing
		}
		p, err := st.pages.FindByIDForUpdate(ctx, v.PageID)
		if err != nil {
			return err
		}
		if p == nil {
			missing = &NotFoundError{Entity: "page", ID: v.PageID.String()}
			return missing
		}

		doc, err := DecodeDocument(v)
		if err != nil {
			return err
		}
		if err := applyDocument(ctx, st, p, doc); err != nil {
			return err
		}
		page = p
		return loadTree(ctx, st, p)
	})
	if missing != nil {
		return nil, missing
	}
	if err != nil {
		restoreTotal.WithLabelValues("failed").Inc()
		slog.Error("restore failed", "version_id", versionID, "error", err)
		return nil, &RestoreError{VersionID: versionID, Err: restoreCause(err)}
	}

	restoreTotal.WithLabelValues("ok").Inc()
	slog.Info("version restored", "version_id", versionID, "page_id", page.ID)
	s.invalidate(ctx, page.ID)
	return page, nil
}

// restoreCause turns a foreign key violation, a related row deleted after
// the pre-checks ran, into the same ValidationError the pre-checks return.
func restoreCause(err error) error {
	if store.IsForeignKeyViolation(err) {
		return &ValidationError{
			Field:   "snapshot",
			Message: "references an entity that no longer exists",
			Err:     err,
		}
	}
	return err
}

// restoredStatus returns the lifecycle state a snapshot brings back. A
// scheduled snapshot whose publish_at is no longer in the future comes
// back as a draft, so a restore never publishes through the scheduler.
func restoredStatus(current, snap models.PageStatus, publishAt *time.Time, now time.Time) (models.PageStatus, *time.Time) {
	status := current
	if snap.Valid() {
		status = snap
	}
	if status != models.PageStatusScheduled {
		return status, nil
	}
	if publishAt == nil || !publishAt.After(now) {
		return models.PageStatusDraft, nil
	}
	return status, publishAt
}

// applyDocument writes a snapshot over a locked page. The page's status
// is a scalar like its title: restoring a draft snapshot unpublishes the
// page, and restoring a published one passes through the publish gate.
func applyDocument(ctx context.Context, st stores, p *models.Page, doc *Document) error {
	if strings.TrimSpace(doc.Page.Slug) == "" || strings.TrimSpace(doc.Page.Title) == "" {
		return errors.New("snapshot has no page title or slug")
	}

	p.Title = doc.Page.Title
	p.Slug = doc.Page.Slug
	p.Type = doc.Page.Type
	p.Template = doc.Page.Template
	p.TemplateSlug = doc.Page.TemplateSlug
	p.Status, p.PublishAt = restoredStatus(p.Status, doc.Page.Status, doc.Page.PublishAt, time.Now())
	if err := st.pages.Update(ctx, p); err != nil {
		return err
	}

	if err := compose(ctx, st.tree, p.ID, specsFromSections(doc.Sections), ReplaceMode); err != nil {
		return err
	}

	if p.Status == models.PageStatusPublished {
		violations, err := gateViolations(ctx, st, p.ID)
		if err != nil {
			return err
		}
		if len(violations) > 0 {
			return &PublishBlockedError{Pages: []PageViolations{{PageID: p.ID, Violations: violations}}}
		}
	}

	if doc.Seo != nil {
		seo := *doc.Seo
		seo.PageID = p.ID
		if _, err := st.seo.Upsert(ctx, &seo); err != nil {
			return err
		}
	} else if err := st.seo.DeleteByPage(ctx, p.ID); err != nil {
		return err
	}

	if err := syncRelations(ctx, st.relations, p.ID, relationIDs(doc.Relations)); err != nil {
		return err
	}
	if err := syncCtas(ctx, st.relations, p.ID, ctaSpecs(doc.Ctas)); err != nil {
		return err
	}
	return st.keywords.Replace(ctx, p.ID, doc.Keywords)
}

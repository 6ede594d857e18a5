// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"pagecraft/internal/models"
)

// DefaultLogLimit is the number of audit rows ListGenerationLogs returns
// when the caller does not ask for a specific amount.
const DefaultLogLimit = 50

// Generated is validated, normalized provider output ready to replace a
// page's tree. Sections already include any synthetic trailing sections.
type Generated struct {
	Title           *string
	MetaTitle       string
	MetaDescription string
	Sections        []SectionSpec
}

// OverwriteFlag is the request field that confirms replacing existing
// content with generated content.
const OverwriteFlag = "overwrite"

// ApplyGenerated replaces the page's sections and SEO with generated
// content and records the successful attempt, all in one transaction.
// Unless overwrite is set, a page that has sections or SEO once locked is
// left alone and ConfirmationRequiredError is returned.
func (s *Service) ApplyGenerated(ctx context.Context, pageID uuid.UUID, g Generated, attempt models.AiGenerationLog, overwrite bool) (*models.Page, error) {
	var page *models.Page
	err := s.inTx(ctx, func(st stores) error {
		p, err := lockPage(ctx, st, pageID)
		if err != nil {
			return err
		}
		if !overwrite {
			filled, err := hasContent(ctx, st, p.ID)
			if err != nil {
				return err
			}
			if filled {
				return &ConfirmationRequiredError{Flag: OverwriteFlag}
			}
		}

		if err := st.seo.DeleteByPage(ctx, p.ID); err != nil {
			return err
		}
		if err := compose(ctx, st.tree, p.ID, g.Sections, ReplaceMode); err != nil {
			return err
		}

		if g.Title != nil && strings.TrimSpace(*g.Title) != "" {
			p.Title = strings.TrimSpace(*g.Title)
			if err := st.pages.Update(ctx, p); err != nil {
				return err
			}
		} else if err := st.pages.Touch(ctx, p.ID); err != nil {
			return err
		}

		metaTitle, metaDescription := g.MetaTitle, g.MetaDescription
		if _, err := st.seo.Upsert(ctx, &models.SeoMeta{
			PageID:          p.ID,
			MetaTitle:       &metaTitle,
			MetaDescription: &metaDescription,
		}); err != nil {
			return err
		}

		attempt.PageID = p.ID
		attempt.ResponseStatus = models.GenerationSuccess
		attempt.ErrorMessage = nil
		if _, err := st.logs.Record(ctx, &attempt); err != nil {
			return err
		}

		page = p
		return loadTree(ctx, st, p)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("generated content applied", "page_id", pageID, "model", attempt.ModelUsed, "sections", len(g.Sections))
	s.invalidate(ctx, pageID)
	return page, nil
}

// hasContent reports whether the page has any section or SEO row.
func hasContent(ctx context.Context, st stores, pageID uuid.UUID) (bool, error) {
	ids, err := st.tree.SectionIDs(ctx, pageID)
	if err != nil {
		return false, err
	}
	if len(ids) > 0 {
		return true, nil
	}
	seo, err := st.seo.FindByPage(ctx, pageID)
	if err != nil {
		return false, err
	}
	return seo != nil, nil
}

// RecordGenerationAttempt appends an audit row for an attempt that did not
// end in ApplyGenerated.
func (s *Service) RecordGenerationAttempt(ctx context.Context, attempt models.AiGenerationLog) error {
	_, err := newStores(s.db).logs.Record(ctx, &attempt)
	return err
}

// ListGenerationLogs returns the latest regeneration attempts of a page.
// Logs outlive their page, so a deleted page still lists its history.
func (s *Service) ListGenerationLogs(ctx context.Context, pageID uuid.UUID, limit int) ([]models.AiGenerationLog, error) {
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	return newStores(s.db).logs.ListByPage(ctx, pageID, limit)
}

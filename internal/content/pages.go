// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"pagecraft/internal/models"
	"pagecraft/internal/slug"
	"pagecraft/internal/store"
)

// maxSlugAttempts bounds the "-copy-N" suffix search when duplicating.
const maxSlugAttempts = 100

// SeoInput carries the SEO fields of a page write.
type SeoInput struct {
	MetaTitle       *string         `json:"meta_title" validate:"omitempty,max=255"`
	MetaDescription *string         `json:"meta_description" validate:"omitempty,max=1000"`
	MetaKeywords    *string         `json:"meta_keywords"`
	CanonicalURL    *string         `json:"canonical_url" validate:"omitempty,url"`
	SchemaMarkup    json.RawMessage `json:"schema_markup"`
	Noindex         bool            `json:"noindex"`
	Nofollow        bool            `json:"nofollow"`
}

func (in *SeoInput) toModel(pageID uuid.UUID) *models.SeoMeta {
	return &models.SeoMeta{
		PageID:          pageID,
		MetaTitle:       in.MetaTitle,
		MetaDescription: in.MetaDescription,
		MetaKeywords:    in.MetaKeywords,
		CanonicalURL:    in.CanonicalURL,
		SchemaMarkup:    in.SchemaMarkup,
		Noindex:         in.Noindex,
		Nofollow:        in.Nofollow,
	}
}

// KeywordSpec requests one target keyword; list order becomes position.
type KeywordSpec struct {
	Keyword   string `json:"keyword" validate:"required,max=255"`
	IsPrimary bool   `json:"is_primary"`
}

func keywordModels(specs []KeywordSpec) []models.Keyword {
	out := make([]models.Keyword, len(specs))
	for i, k := range specs {
		out[i] = models.Keyword{Keyword: strings.TrimSpace(k.Keyword), IsPrimary: k.IsPrimary}
	}
	return out
}

// CreatePageInput is a new page with an optional initial tree and facets.
type CreatePageInput struct {
	Title        string                           `json:"title" validate:"required,max=255"`
	Slug         string                           `json:"slug" validate:"omitempty,max=255"`
	Type         string                           `json:"type" validate:"omitempty,max=50"`
	Template     *string                          `json:"template"`
	TemplateSlug *string                          `json:"template_slug"`
	Sections     []SectionSpec                    `json:"sections"`
	Seo          *SeoInput                        `json:"seo"`
	Relations    map[models.Relation][]uuid.UUID  `json:"relations"`
	Ctas         []CtaSpec                        `json:"ctas"`
	Keywords     []KeywordSpec                    `json:"keywords" validate:"dive"`
}

// UpdatePageInput is a partial page edit. Nil fields are left unchanged;
// a relation absent from Relations is left unchanged while an empty list
// clears it. Status changes go through TransitionStatus.
type UpdatePageInput struct {
	Title        *string                          `json:"title" validate:"omitempty,min=1,max=255"`
	Slug         *string                          `json:"slug" validate:"omitempty,min=1,max=255"`
	Type         *string                          `json:"type" validate:"omitempty,max=50"`
	Template     *string                          `json:"template"`
	TemplateSlug *string                          `json:"template_slug"`
	Sections     *[]SectionSpec                   `json:"sections"`
	Seo          *SeoInput                        `json:"seo"`
	Relations    map[models.Relation][]uuid.UUID  `json:"relations"`
	Ctas         *[]CtaSpec                       `json:"ctas"`
	Keywords     *[]KeywordSpec                   `json:"keywords"`
}

// normalizeSlug derives the stored slug from an explicit value or the title.
func normalizeSlug(explicit, title string) (string, error) {
	source := strings.TrimSpace(explicit)
	if source == "" {
		source = title
	}
	s := slug.Generate(source)
	if s == "" {
		return "", &ValidationError{Field: "slug", Message: "must contain at least one letter or digit"}
	}
	return s, nil
}

// CreatePage inserts a draft page together with its initial tree, SEO,
// relations, CTAs and keywords.
func (s *Service) CreatePage(ctx context.Context, in CreatePageInput, actor *uuid.UUID) (*models.Page, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, &ValidationError{Field: "title", Message: "is required"}
	}
	pageSlug, err := normalizeSlug(in.Slug, in.Title)
	if err != nil {
		return nil, err
	}
	pageType := strings.TrimSpace(in.Type)
	if pageType == "" {
		pageType = "page"
	}

	var page *models.Page
	err = s.inTx(ctx, func(st stores) error {
		taken, err := st.pages.SlugExists(ctx, pageSlug)
		if err != nil {
			return err
		}
		if taken {
			return &ValidationError{Field: "slug", Message: fmt.Sprintf("%q is already in use", pageSlug)}
		}

		p, err := st.pages.Create(ctx, &models.Page{
			Title:        strings.TrimSpace(in.Title),
			Slug:         pageSlug,
			Type:         pageType,
			Status:       models.PageStatusDraft,
			Template:     in.Template,
			TemplateSlug: in.TemplateSlug,
			CreatedBy:    actor,
		})
		if err != nil {
			if store.IsUniqueViolation(err) {
				return &ValidationError{Field: "slug", Message: fmt.Sprintf("%q is already in use", pageSlug), Err: err}
			}
			return err
		}

		if len(in.Sections) > 0 {
			if err := compose(ctx, st.tree, p.ID, in.Sections, ReplaceMode); err != nil {
				return err
			}
		}
		if in.Seo != nil {
			if _, err := st.seo.Upsert(ctx, in.Seo.toModel(p.ID)); err != nil {
				return err
			}
		}
		if err := syncRelations(ctx, st.relations, p.ID, in.Relations); err != nil {
			return err
		}
		if len(in.Ctas) > 0 {
			if err := syncCtas(ctx, st.relations, p.ID, in.Ctas); err != nil {
				return err
			}
		}
		if len(in.Keywords) > 0 {
			if err := st.keywords.Replace(ctx, p.ID, keywordModels(in.Keywords)); err != nil {
				return err
			}
		}
		page = p
		return loadTree(ctx, st, p)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("page created", "page_id", page.ID, "slug", page.Slug)
	return page, nil
}

// UpdatePage applies a partial edit: scalars, a sync-mode tree, SEO,
// relations, CTAs and keywords, each only when present in the input.
func (s *Service) UpdatePage(ctx context.Context, id uuid.UUID, in UpdatePageInput) (*models.Page, error) {
	var page *models.Page
	err := s.inTx(ctx, func(st stores) error {
		p, err := lockPage(ctx, st, id)
		if err != nil {
			return err
		}

		if in.Title != nil {
			title := strings.TrimSpace(*in.Title)
			if title == "" {
				return &ValidationError{Field: "title", Message: "must not be blank"}
			}
			p.Title = title
		}
		if in.Slug != nil {
			newSlug, err := normalizeSlug(*in.Slug, p.Title)
			if err != nil {
				return err
			}
			if newSlug != p.Slug {
				taken, err := st.pages.SlugExists(ctx, newSlug)
				if err != nil {
					return err
				}
				if taken {
					return &ValidationError{Field: "slug", Message: fmt.Sprintf("%q is already in use", newSlug)}
				}
				p.Slug = newSlug
			}
		}
		if in.Type != nil && strings.TrimSpace(*in.Type) != "" {
			p.Type = strings.TrimSpace(*in.Type)
		}
		if in.Template != nil {
			p.Template = in.Template
		}
		if in.TemplateSlug != nil {
			p.TemplateSlug = in.TemplateSlug
		}
		if err := st.pages.Update(ctx, p); err != nil {
			if store.IsUniqueViolation(err) {
				return &ValidationError{Field: "slug", Message: "is already in use", Err: err}
			}
			return err
		}

		if in.Sections != nil {
			if err := compose(ctx, st.tree, p.ID, *in.Sections, SyncMode); err != nil {
				return err
			}
		}
		if in.Seo != nil {
			if _, err := st.seo.Upsert(ctx, in.Seo.toModel(p.ID)); err != nil {
				return err
			}
		}
		if err := syncRelations(ctx, st.relations, p.ID, in.Relations); err != nil {
			return err
		}
		if in.Ctas != nil {
			if err := syncCtas(ctx, st.relations, p.ID, *in.Ctas); err != nil {
				return err
			}
		}
		if in.Keywords != nil {
			if err := st.keywords.Replace(ctx, p.ID, keywordModels(*in.Keywords)); err != nil {
				return err
			}
		}
		page = p
		return loadTree(ctx, st, p)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("page updated", "page_id", id, "relations", describeRelations(in.Relations))
	s.invalidate(ctx, id)
	return page, nil
}

// DuplicatePage copies a page with its whole tree and facets into a new
// draft whose slug is "<slug>-copy", or "<slug>-copy-N" when taken.
func (s *Service) DuplicatePage(ctx context.Context, id uuid.UUID, actor *uuid.UUID) (*models.Page, error) {
	var page *models.Page
	err := s.inTx(ctx, func(st stores) error {
		src, err := st.pages.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if src == nil {
			return &NotFoundError{Entity: "page", ID: id.String()}
		}
		if err := loadTree(ctx, st, src); err != nil {
			return err
		}

		copySlug, err := uniqueSlug(ctx, st.pages, slug.WithSuffix(src.Slug, "copy"))
		if err != nil {
			return err
		}
		p, err := st.pages.Create(ctx, &models.Page{
			Title:        src.Title,
			Slug:         copySlug,
			Type:         src.Type,
			Status:       models.PageStatusDraft,
			Template:     src.Template,
			TemplateSlug: src.TemplateSlug,
			CreatedBy:    actor,
		})
		if err != nil {
			return err
		}

		if err := compose(ctx, st.tree, p.ID, specsFromSections(src.Sections), ReplaceMode); err != nil {
			return err
		}
		if src.Seo != nil {
			seo := *src.Seo
			seo.PageID = p.ID
			if _, err := st.seo.Upsert(ctx, &seo); err != nil {
				return err
			}
		}
		if err := syncRelations(ctx, st.relations, p.ID, relationIDs(src.Relations)); err != nil {
			return err
		}
		if err := syncCtas(ctx, st.relations, p.ID, ctaSpecs(src.Ctas)); err != nil {
			return err
		}
		if err := st.keywords.Replace(ctx, p.ID, src.Keywords); err != nil {
			return err
		}
		page = p
		return loadTree(ctx, st, p)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("page duplicated", "source_id", id, "page_id", page.ID, "slug", page.Slug)
	return page, nil
}

// uniqueSlug returns base, or base-2, base-3... whichever is free first.
func uniqueSlug(ctx context.Context, pages *store.PageStore, base string) (string, error) {
	candidate := base
	for n := 2; n <= maxSlugAttempts+1; n++ {
		taken, err := pages.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = slug.WithSuffix(base, strconv.Itoa(n))
	}
	return "", &ValidationError{Field: "slug", Message: fmt.Sprintf("no free slug for %q", base)}
}

// specsFromSections turns a composed tree back into replace-mode specs.
func specsFromSections(sections []models.PageSection) []SectionSpec {
	specs := make([]SectionSpec, len(sections))
	for i, sec := range sections {
		blocks := make([]BlockSpec, len(sec.Blocks))
		for j, b := range sec.Blocks {
			blocks[j] = BlockSpec{BlockType: b.BlockType, Content: b.Content, Order: b.Order}
		}
		specs[i] = SectionSpec{SectionKey: sec.SectionKey, Order: sec.Order, Blocks: blocks}
	}
	return specs
}

// templateSpecs decodes the stored section layout of a template.
func templateSpecs(t *models.PageTemplate) ([]SectionSpec, error) {
	var specs []SectionSpec
	if len(t.Sections) == 0 {
		return specs, nil
	}
	if err := json.Unmarshal(t.Sections, &specs); err != nil {
		return nil, &ValidationError{Field: "template.sections", Message: "is not a section list", Err: err}
	}
	for i := range specs {
		specs[i].ID = nil
	}
	return specs, nil
}

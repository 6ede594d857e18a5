// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package content is the page content tree lifecycle engine. It composes
// section/block trees, snapshots them into immutable versions, restores
// versions, applies generated content and guards publication. Every write
// runs in one transaction; callers never observe a partial tree.
package content

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"pagecraft/internal/database"
	"pagecraft/internal/models"
	"pagecraft/internal/store"
)

// Invalidator drops cached renditions of a page after it changed.
type Invalidator interface {
	InvalidatePage(ctx context.Context, pageID uuid.UUID)
}

// Service exposes the engine operations over a PostgreSQL pool.
type Service struct {
	db    *sql.DB
	cache Invalidator
}

// NewService creates a Service backed by db.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// SetInvalidator registers the page cache to clear after writes.
func (s *Service) SetInvalidator(inv Invalidator) {
	s.cache = inv
}

// stores bundles the per-table stores bound to one handle.
type stores struct {
	pages     *store.PageStore
	tree      *store.TreeStore
	seo       *store.SeoStore
	keywords  *store.KeywordStore
	relations *store.RelationStore
	versions  *store.VersionStore
	logs      *store.GenerationLogStore
	media     *store.MediaStore
	templates *store.TemplateStore
}

func newStores(db store.DBTX) stores {
	return stores{
		pages:     store.NewPageStore(db),
		tree:      store.NewTreeStore(db),
		seo:       store.NewSeoStore(db),
		keywords:  store.NewKeywordStore(db),
		relations: store.NewRelationStore(db),
		versions:  store.NewVersionStore(db),
		logs:      store.NewGenerationLogStore(db),
		media:     store.NewMediaStore(db),
		templates: store.NewTemplateStore(db),
	}
}

// inTx runs fn with stores bound to a fresh transaction.
func (s *Service) inTx(ctx context.Context, fn func(st stores) error) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return fn(newStores(tx))
	})
}

// invalidateTimeout bounds cache eviction after a commit.
const invalidateTimeout = 2 * time.Second

// invalidate evicts committed pages from the cache. Eviction is not tied
// to the request's cancellation.
func (s *Service) invalidate(ctx context.Context, ids ...uuid.UUID) {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), invalidateTimeout)
	defer cancel()
	for _, id := range ids {
		s.cache.InvalidatePage(ctx, id)
	}
}

// lockPage loads and row-locks a page for the rest of the transaction.
func lockPage(ctx context.Context, st stores, id uuid.UUID) (*models.Page, error) {
	p, err := st.pages.FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, &NotFoundError{Entity: "page", ID: id.String()}
	}
	return p, nil
}

// loadTree fills the composed fields of p: ordered sections with blocks,
// SEO, every taxonomy relation (empty ones included), CTAs and keywords.
func loadTree(ctx context.Context, st stores, p *models.Page) error {
	sections, err := st.tree.Sections(ctx, p.ID)
	if err != nil {
		return err
	}
	if sections == nil {
		sections = []models.PageSection{}
	}
	p.Sections = sections

	if p.Seo, err = st.seo.FindByPage(ctx, p.ID); err != nil {
		return err
	}

	p.Relations = make(map[models.Relation][]models.RelatedEntity, len(models.TaxonomyRelations))
	for _, rel := range models.TaxonomyRelations {
		related, err := st.relations.Related(ctx, p.ID, rel)
		if err != nil {
			return err
		}
		p.Relations[rel] = related
	}

	if p.Ctas, err = st.relations.Ctas(ctx, p.ID); err != nil {
		return err
	}
	if p.Keywords, err = st.keywords.ListByPage(ctx, p.ID); err != nil {
		return err
	}
	return nil
}

// GetPage loads the composed tree of a page.
func (s *Service) GetPage(ctx context.Context, id uuid.UUID) (*models.Page, error) {
	st := newStores(s.db)
	p, err := st.pages.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, &NotFoundError{Entity: "page", ID: id.String()}
	}
	if err := loadTree(ctx, st, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetPageBySlug loads the composed tree of the page using slug.
func (s *Service) GetPageBySlug(ctx context.Context, slug string) (*models.Page, error) {
	st := newStores(s.db)
	p, err := st.pages.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, &NotFoundError{Entity: "page", ID: slug}
	}
	if err := loadTree(ctx, st, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeletePage removes a page with its whole tree, associations and
// versions. Generation logs are kept.
func (s *Service) DeletePage(ctx context.Context, id uuid.UUID) error {
	err := s.inTx(ctx, func(st stores) error {
		if _, err := lockPage(ctx, st, id); err != nil {
			return err
		}
		return st.pages.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	slog.Info("page deleted", "page_id", id)
	s.invalidate(ctx, id)
	return nil
}

// ComposeSections reconciles a page's section tree with specs in the given
// mode and returns the composed page.
func (s *Service) ComposeSections(ctx context.Context, pageID uuid.UUID, specs []SectionSpec, mode Mode) (*models.Page, error) {
	var page *models.Page
	err := s.inTx(ctx, func(st stores) error {
		p, err := lockPage(ctx, st, pageID)
		if err != nil {
			return err
		}
		if err := compose(ctx, st.tree, p.ID, specs, mode); err != nil {
			return err
		}
		if err := st.pages.Touch(ctx, p.ID); err != nil {
			return err
		}
		page = p
		return loadTree(ctx, st, p)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("sections composed", "page_id", pageID, "mode", mode.String(), "sections", len(specs))
	s.invalidate(ctx, pageID)
	return page, nil
}

// ApplyTemplate replaces a page's tree with a stored template's sections
// and records the template on the page.
func (s *Service) ApplyTemplate(ctx context.Context, pageID uuid.UUID, templateSlug string) (*models.Page, error) {
	tmpl, err := newStores(s.db).templates.FindBySlug(ctx, templateSlug)
	if err != nil {
		return nil, err
	}
	if tmpl == nil {
		return nil, &NotFoundError{Entity: "template", ID: templateSlug}
	}
	specs, err := templateSpecs(tmpl)
	if err != nil {
		return nil, err
	}

	var page *models.Page
	err = s.inTx(ctx, func(st stores) error {
		p, err := lockPage(ctx, st, pageID)
		if err != nil {
			return err
		}
		if err := compose(ctx, st.tree, p.ID, specs, ReplaceMode); err != nil {
			return err
		}
		p.Template = &tmpl.Name
		p.TemplateSlug = &tmpl.Slug
		if err := st.pages.Update(ctx, p); err != nil {
			return err
		}
		page = p
		return loadTree(ctx, st, p)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("template applied", "page_id", pageID, "template", tmpl.Slug)
	s.invalidate(ctx, pageID)
	return page, nil
}

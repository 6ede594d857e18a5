// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pagecraft/internal/models"
)

// pageColumns lists all columns for pages SELECTs.
const pageColumns = `id, title, slug, type, status, template, template_slug,
	publish_at, published_at, created_by, created_at, updated_at`

// PageStore handles the scalar page rows.
type PageStore struct {
	db DBTX
}

// NewPageStore creates a new PageStore with the given database handle.
func NewPageStore(db DBTX) *PageStore {
	return &PageStore{db: db}
}

// scanPage scans a single pages row into a Page.
func scanPage(scanner interface{ Scan(...any) error }) (*models.Page, error) {
	var p models.Page
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Type, &p.Status, &p.Template, &p.TemplateSlug,
		&p.PublishAt, &p.PublishedAt, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new page and returns it with the generated ID.
func (s *PageStore) Create(ctx context.Context, p *models.Page) (*models.Page, error) {
	if p.Status == "" {
		p.Status = models.PageStatusDraft
	}
	if p.Status == models.PageStatusPublished && p.PublishedAt == nil {
		now := time.Now()
		p.PublishedAt = &now
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO pages (title, slug, type, status, template, template_slug,
		                   publish_at, published_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+pageColumns,
		p.Title, p.Slug, p.Type, p.Status, p.Template, p.TemplateSlug,
		p.PublishAt, p.PublishedAt, p.CreatedBy,
	)
	created, err := scanPage(row)
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	return created, nil
}

// FindByID retrieves a page by its UUID. Returns nil if not found.
func (s *PageStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Page, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE id = $1`, id)
	p, err := scanPage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find page by id: %w", err)
	}
	return p, nil
}

// FindByIDForUpdate is FindByID with a row lock, so concurrent writers of
// the same page queue behind each other inside their transactions.
func (s *PageStore) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Page, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE id = $1 FOR UPDATE`, id)
	p, err := scanPage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lock page: %w", err)
	}
	return p, nil
}

// FindBySlug retrieves a page by its slug regardless of status.
func (s *PageStore) FindBySlug(ctx context.Context, slug string) (*models.Page, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE slug = $1`, slug)
	p, err := scanPage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find page by slug: %w", err)
	}
	return p, nil
}

// SlugExists reports whether any page already uses slug.
func (s *PageStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM pages WHERE slug = $1)`, slug,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return exists, nil
}

// Update overwrites the scalar attributes of a page. Identity and
// timestamps other than updated_at are left alone.
func (s *PageStore) Update(ctx context.Context, p *models.Page) error {
	if p.Status == models.PageStatusPublished && p.PublishedAt == nil {
		now := time.Now()
		p.PublishedAt = &now
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE pages SET
			title = $1, slug = $2, type = $3, status = $4, template = $5,
			template_slug = $6, publish_at = $7, published_at = $8,
			updated_at = NOW()
		WHERE id = $9
	`, p.Title, p.Slug, p.Type, p.Status, p.Template, p.TemplateSlug,
		p.PublishAt, p.PublishedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update page: %w", err)
	}
	return nil
}

// Touch bumps updated_at after a change to the page's children.
func (s *PageStore) Touch(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE pages SET updated_at = NOW() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("touch page: %w", err)
	}
	return nil
}

// UpdateStatus sets the status of every listed page. Entering "published"
// stamps published_at once; publishAt is stored for scheduled pages and
// cleared otherwise.
func (s *PageStore) UpdateStatus(ctx context.Context, ids []uuid.UUID, status models.PageStatus, publishAt *time.Time) error {
	if status != models.PageStatusScheduled {
		publishAt = nil
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE pages SET
			status = $1,
			publish_at = $2,
			published_at = CASE WHEN $1 = 'published' THEN COALESCE(published_at, NOW()) ELSE published_at END,
			updated_at = NOW()
		WHERE id = ANY($3::uuid[])
	`, status, publishAt, uuidStrings(ids))
	if err != nil {
		return fmt.Errorf("update page status: %w", err)
	}
	return nil
}

// ListDueScheduled returns scheduled pages whose publish_at is at or before now.
func (s *PageStore) ListDueScheduled(ctx context.Context, now time.Time) ([]models.Page, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+pageColumns+`
		FROM pages
		WHERE status = 'scheduled' AND publish_at IS NOT NULL AND publish_at <= $1
		ORDER BY publish_at
	`, now)
	if err != nil {
		return nil, fmt.Errorf("list due scheduled pages: %w", err)
	}
	defer rows.Close()

	var pages []models.Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		pages = append(pages, *p)
	}
	return pages, rows.Err()
}

// Delete removes a page; sections, blocks, SEO, keywords, associations and
// versions cascade.
func (s *PageStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pages WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	return nil
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"pagecraft/internal/models"
)

const seoColumns = `id, page_id, meta_title, meta_description, meta_keywords,
	canonical_url, schema_markup, noindex, nofollow, created_at, updated_at`

// SeoStore handles the 1:1 SEO metadata row of a page.
type SeoStore struct {
	db DBTX
}

// NewSeoStore creates a new SeoStore with the given database handle.
func NewSeoStore(db DBTX) *SeoStore {
	return &SeoStore{db: db}
}

func scanSeo(scanner interface{ Scan(...any) error }) (*models.SeoMeta, error) {
	var (
		m      models.SeoMeta
		schema []byte
	)
	err := scanner.Scan(
		&m.ID, &m.PageID, &m.MetaTitle, &m.MetaDescription, &m.MetaKeywords,
		&m.CanonicalURL, &schema, &m.Noindex, &m.Nofollow, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(schema) > 0 {
		m.SchemaMarkup = json.RawMessage(schema)
	}
	return &m, nil
}

// FindByPage returns the SEO row of a page, or nil if it has none.
func (s *SeoStore) FindByPage(ctx context.Context, pageID uuid.UUID) (*models.SeoMeta, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+seoColumns+` FROM seo_meta WHERE page_id = $1`, pageID)
	m, err := scanSeo(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find seo meta: %w", err)
	}
	return m, nil
}

// Upsert creates or fully overwrites the SEO row of m.PageID.
func (s *SeoStore) Upsert(ctx context.Context, m *models.SeoMeta) (*models.SeoMeta, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO seo_meta (page_id, meta_title, meta_description, meta_keywords,
		                      canonical_url, schema_markup, noindex, nofollow)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (page_id) DO UPDATE SET
			meta_title = EXCLUDED.meta_title,
			meta_description = EXCLUDED.meta_description,
			meta_keywords = EXCLUDED.meta_keywords,
			canonical_url = EXCLUDED.canonical_url,
			schema_markup = EXCLUDED.schema_markup,
			noindex = EXCLUDED.noindex,
			nofollow = EXCLUDED.nofollow,
			updated_at = NOW()
		RETURNING `+seoColumns,
		m.PageID, m.MetaTitle, m.MetaDescription, m.MetaKeywords,
		m.CanonicalURL, nullJSON(m.SchemaMarkup), m.Noindex, m.Nofollow,
	)
	saved, err := scanSeo(row)
	if err != nil {
		return nil, fmt.Errorf("upsert seo meta: %w", err)
	}
	return saved, nil
}

// DeleteByPage removes the SEO row of a page if present.
func (s *SeoStore) DeleteByPage(ctx context.Context, pageID uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM seo_meta WHERE page_id = $1`, pageID); err != nil {
		return fmt.Errorf("delete seo meta: %w", err)
	}
	return nil
}

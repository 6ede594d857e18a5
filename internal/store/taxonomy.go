// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"fmt"

	"pagecraft/internal/models"
)

// TaxonomyStore registers taxonomy terms and CTAs. Their editorial CRUD
// lives elsewhere; this is what seeding, fixtures and the API lookups need.
type TaxonomyStore struct {
	db DBTX
}

// NewTaxonomyStore creates a new TaxonomyStore with the given database handle.
func NewTaxonomyStore(db DBTX) *TaxonomyStore {
	return &TaxonomyStore{db: db}
}

// CreateTerm inserts a taxonomy term of the given kind.
func (s *TaxonomyStore) CreateTerm(ctx context.Context, kind, name, slug string) (*models.TaxonomyTerm, error) {
	var t models.TaxonomyTerm
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO taxonomy_terms (kind, name, slug)
		VALUES ($1, $2, $3)
		RETURNING id, kind, name, slug, created_at, updated_at
	`, kind, name, slug).Scan(&t.ID, &t.Kind, &t.Name, &t.Slug, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create taxonomy term: %w", err)
	}
	return &t, nil
}

// ListTerms returns the terms of one kind ordered by name.
func (s *TaxonomyStore) ListTerms(ctx context.Context, kind string) ([]models.TaxonomyTerm, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, name, slug, created_at, updated_at
		FROM taxonomy_terms
		WHERE kind = $1
		ORDER BY name
	`, kind)
	if err != nil {
		return nil, fmt.Errorf("list taxonomy terms: %w", err)
	}
	defer rows.Close()

	terms := []models.TaxonomyTerm{}
	for rows.Next() {
		var t models.TaxonomyTerm
		if err := rows.Scan(&t.ID, &t.Kind, &t.Name, &t.Slug, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan taxonomy term: %w", err)
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

// CreateCta inserts a call-to-action.
func (s *TaxonomyStore) CreateCta(ctx context.Context, title, url, style string) (*models.Cta, error) {
	if style == "" {
		style = "primary"
	}
	var c models.Cta
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO ctas (title, url, style)
		VALUES ($1, $2, $3)
		RETURNING id, title, url, style, created_at, updated_at
	`, title, url, style).Scan(&c.ID, &c.Title, &c.URL, &c.Style, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create cta: %w", err)
	}
	return &c, nil
}

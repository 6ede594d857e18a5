// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"pagecraft/internal/models"
)

const templateColumns = `id, name, slug, sections, created_at, updated_at`

// TemplateStore handles page templates.
type TemplateStore struct {
	db DBTX
}

// NewTemplateStore creates a new TemplateStore with the given database handle.
func NewTemplateStore(db DBTX) *TemplateStore {
	return &TemplateStore{db: db}
}

func scanTemplate(scanner interface{ Scan(...any) error }) (*models.PageTemplate, error) {
	var (
		t        models.PageTemplate
		sections []byte
	)
	if err := scanner.Scan(&t.ID, &t.Name, &t.Slug, &sections, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Sections = json.RawMessage(sections)
	return &t, nil
}

// Create inserts a template.
func (s *TemplateStore) Create(ctx context.Context, t *models.PageTemplate) (*models.PageTemplate, error) {
	sections := t.Sections
	if len(sections) == 0 {
		sections = json.RawMessage("[]")
	}
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO page_templates (name, slug, sections)
		VALUES ($1, $2, $3)
		RETURNING `+templateColumns,
		t.Name, t.Slug, string(sections),
	)
	created, err := scanTemplate(row)
	if err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	return created, nil
}

// FindBySlug retrieves a template by slug. Returns nil if not found.
func (s *TemplateStore) FindBySlug(ctx context.Context, slug string) (*models.PageTemplate, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM page_templates WHERE slug = $1`, slug)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find template: %w", err)
	}
	return t, nil
}

// List returns all templates ordered by name.
func (s *TemplateStore) List(ctx context.Context) ([]models.PageTemplate, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+templateColumns+` FROM page_templates ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	templates := []models.PageTemplate{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

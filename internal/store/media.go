// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"pagecraft/internal/models"
)

// mediaColumns lists all columns for media SELECTs.
const mediaColumns = `id, filename, original_name, content_type, size_bytes, url, alt_text, created_at`

// MediaStore reads and registers media metadata.
type MediaStore struct {
	db DBTX
}

// NewMediaStore creates a new MediaStore with the given database handle.
func NewMediaStore(db DBTX) *MediaStore {
	return &MediaStore{db: db}
}

func scanMedia(scanner interface{ Scan(...any) error }) (*models.Media, error) {
	var m models.Media
	err := scanner.Scan(&m.ID, &m.Filename, &m.OriginalName, &m.ContentType,
		&m.SizeBytes, &m.URL, &m.AltText, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create registers a media item and returns it with the generated ID.
func (s *MediaStore) Create(ctx context.Context, m *models.Media) (*models.Media, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO media (filename, original_name, content_type, size_bytes, url, alt_text)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+mediaColumns,
		m.Filename, m.OriginalName, m.ContentType, m.SizeBytes, m.URL, m.AltText,
	)
	created, err := scanMedia(row)
	if err != nil {
		return nil, fmt.Errorf("create media: %w", err)
	}
	return created, nil
}

// FindByID retrieves a media item by its UUID. Returns nil if not found.
func (s *MediaStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media WHERE id = $1`, id)
	m, err := scanMedia(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find media: %w", err)
	}
	return m, nil
}

// UpdateAltText sets the alt text of a media item.
func (s *MediaStore) UpdateAltText(ctx context.Context, id uuid.UUID, alt *string) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE media SET alt_text = $1 WHERE id = $2`, alt, id); err != nil {
		return fmt.Errorf("update media alt text: %w", err)
	}
	return nil
}

// AltTexts returns the alt text of every listed media item that exists.
// Items without alt text map to the empty string.
func (s *MediaStore) AltTexts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, COALESCE(alt_text, '') FROM media WHERE id = ANY($1::uuid[])`,
		uuidStrings(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("list media alt texts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id  uuid.UUID
			alt string
		)
		if err := rows.Scan(&id, &alt); err != nil {
			return nil, fmt.Errorf("scan media alt text: %w", err)
		}
		out[id] = alt
	}
	return out, rows.Err()
}

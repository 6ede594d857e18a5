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

// versionColumns lists all columns for content_versions SELECTs.
const versionColumns = `id, page_id, version_number, snapshot, created_by, created_at`

// VersionStore provides access to content version snapshots.
type VersionStore struct {
	db DBTX
}

// NewVersionStore creates a new VersionStore with the given database handle.
func NewVersionStore(db DBTX) *VersionStore {
	return &VersionStore{db: db}
}

// scanVersion scans a single content_versions row into a ContentVersion.
func scanVersion(scanner interface{ Scan(...any) error }) (*models.ContentVersion, error) {
	var (
		v        models.ContentVersion
		snapshot []byte
	)
	err := scanner.Scan(&v.ID, &v.PageID, &v.VersionNumber, &snapshot, &v.CreatedBy, &v.CreatedAt)
	if err != nil {
		return nil, err
	}
	v.Snapshot = json.RawMessage(snapshot)
	return &v, nil
}

// NextNumber issues the next version number of a page. The counter row is
// locked until the surrounding transaction ends, so concurrent snapshots of
// one page are numbered one after the other.
func (s *VersionStore) NextNumber(ctx context.Context, pageID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO page_version_counters (page_id, last_number)
		VALUES ($1, 1 + COALESCE((SELECT MAX(version_number) FROM content_versions WHERE page_id = $1), 0))
		ON CONFLICT (page_id) DO UPDATE
			SET last_number = page_version_counters.last_number + 1
		RETURNING last_number
	`, pageID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("next version number: %w", err)
	}
	return n, nil
}

// Create inserts a version row and returns it with the generated ID.
func (s *VersionStore) Create(ctx context.Context, v *models.ContentVersion) (*models.ContentVersion, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO content_versions (page_id, version_number, snapshot, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING `+versionColumns,
		v.PageID, v.VersionNumber, string(v.Snapshot), v.CreatedBy,
	)
	created, err := scanVersion(row)
	if err != nil {
		return nil, fmt.Errorf("create version: %w", err)
	}
	return created, nil
}

// ListByPage returns all versions of a page, newest first.
func (s *VersionStore) ListByPage(ctx context.Context, pageID uuid.UUID) ([]models.ContentVersion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+versionColumns+`
		FROM content_versions
		WHERE page_id = $1
		ORDER BY version_number DESC
	`, pageID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	versions := []models.ContentVersion{}
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, *v)
	}
	return versions, rows.Err()
}

// FindByID retrieves a single version. Returns nil if not found.
func (s *VersionStore) FindByID(ctx context.Context, id uuid.UUID) (*models.ContentVersion, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+versionColumns+` FROM content_versions WHERE id = $1`, id)
	v, err := scanVersion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find version: %w", err)
	}
	return v, nil
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"pagecraft/internal/models"
)

const sectionColumns = `id, page_id, section_key, "order", created_at, updated_at`

const blockColumns = `id, section_id, block_type, content, "order", created_at, updated_at`

// TreeStore handles page sections and their content blocks.
type TreeStore struct {
	db DBTX
}

// NewTreeStore creates a new TreeStore with the given database handle.
func NewTreeStore(db DBTX) *TreeStore {
	return &TreeStore{db: db}
}

func scanSection(scanner interface{ Scan(...any) error }) (*models.PageSection, error) {
	var s models.PageSection
	err := scanner.Scan(&s.ID, &s.PageID, &s.SectionKey, &s.Order, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanBlock(scanner interface{ Scan(...any) error }) (*models.ContentBlock, error) {
	var (
		b       models.ContentBlock
		content []byte
	)
	err := scanner.Scan(&b.ID, &b.SectionID, &b.BlockType, &content, &b.Order, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.Content = json.RawMessage(content)
	return &b, nil
}

// blockContent renders block content for the JSONB column. Absent content
// is stored as JSON null because the column is NOT NULL.
func blockContent(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "null"
	}
	return string(raw)
}

// Sections returns the sections of a page ordered by ("order", created_at,
// id), each with its blocks in the same ordering.
func (s *TreeStore) Sections(ctx context.Context, pageID uuid.UUID) ([]models.PageSection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+sectionColumns+`
		FROM page_sections
		WHERE page_id = $1
		ORDER BY "order", created_at, id
	`, pageID)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	defer rows.Close()

	var sections []models.PageSection
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		sec, err := scanSection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		sec.Blocks = []models.ContentBlock{}
		index[sec.ID] = len(sections)
		sections = append(sections, *sec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sections: %w", err)
	}
	if len(sections) == 0 {
		return sections, nil
	}

	blockRows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.section_id, b.block_type, b.content, b."order", b.created_at, b.updated_at
		FROM content_blocks b
		JOIN page_sections s ON s.id = b.section_id
		WHERE s.page_id = $1
		ORDER BY b."order", b.created_at, b.id
	`, pageID)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	defer blockRows.Close()

	for blockRows.Next() {
		b, err := scanBlock(blockRows)
		if err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		if i, ok := index[b.SectionID]; ok {
			sections[i].Blocks = append(sections[i].Blocks, *b)
		}
	}
	if err := blockRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blocks: %w", err)
	}
	return sections, nil
}

// CreateSection inserts a section under a page.
func (s *TreeStore) CreateSection(ctx context.Context, pageID uuid.UUID, key string, order int) (*models.PageSection, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO page_sections (page_id, section_key, "order")
		VALUES ($1, $2, $3)
		RETURNING `+sectionColumns,
		pageID, key, order,
	)
	sec, err := scanSection(row)
	if err != nil {
		return nil, fmt.Errorf("create section: %w", err)
	}
	sec.Blocks = []models.ContentBlock{}
	return sec, nil
}

// UpdateSection overwrites key and order of a section that belongs to
// pageID. It reports false when no such section exists on the page.
func (s *TreeStore) UpdateSection(ctx context.Context, pageID, id uuid.UUID, key string, order int) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE page_sections SET section_key = $1, "order" = $2, updated_at = clock_timestamp()
		WHERE id = $3 AND page_id = $4
	`, key, order, id, pageID)
	if err != nil {
		return false, fmt.Errorf("update section: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update section rows: %w", err)
	}
	return n > 0, nil
}

// SectionIDs returns the ids of all sections currently on a page.
func (s *TreeStore) SectionIDs(ctx context.Context, pageID uuid.UUID) ([]uuid.UUID, error) {
	return s.ids(ctx, `SELECT id FROM page_sections WHERE page_id = $1`, pageID)
}

// DeleteSections removes the listed sections of a page; their blocks cascade.
func (s *TreeStore) DeleteSections(ctx context.Context, pageID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM page_sections WHERE page_id = $1 AND id = ANY($2::uuid[])`,
		pageID, uuidStrings(ids),
	)
	if err != nil {
		return fmt.Errorf("delete sections: %w", err)
	}
	return nil
}

// DeleteAllSections removes every section of a page and, by cascade, every block.
func (s *TreeStore) DeleteAllSections(ctx context.Context, pageID uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM page_sections WHERE page_id = $1`, pageID); err != nil {
		return fmt.Errorf("delete all sections: %w", err)
	}
	return nil
}

// CreateBlock inserts a block under a section.
func (s *TreeStore) CreateBlock(ctx context.Context, sectionID uuid.UUID, blockType string, content json.RawMessage, order int) (*models.ContentBlock, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO content_blocks (section_id, block_type, content, "order")
		VALUES ($1, $2, $3, $4)
		RETURNING `+blockColumns,
		sectionID, blockType, blockContent(content), order,
	)
	b, err := scanBlock(row)
	if err != nil {
		return nil, fmt.Errorf("create block: %w", err)
	}
	return b, nil
}

// UpdateBlock overwrites a block that belongs to sectionID. It reports
// false when no such block exists in the section.
func (s *TreeStore) UpdateBlock(ctx context.Context, sectionID, id uuid.UUID, blockType string, content json.RawMessage, order int) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE content_blocks SET
			block_type = $1, content = $2, "order" = $3, updated_at = clock_timestamp()
		WHERE id = $4 AND section_id = $5
	`, blockType, blockContent(content), order, id, sectionID)
	if err != nil {
		return false, fmt.Errorf("update block: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update block rows: %w", err)
	}
	return n > 0, nil
}

// BlockIDs returns the ids of all blocks currently in a section.
func (s *TreeStore) BlockIDs(ctx context.Context, sectionID uuid.UUID) ([]uuid.UUID, error) {
	return s.ids(ctx, `SELECT id FROM content_blocks WHERE section_id = $1`, sectionID)
}

// DeleteBlocks removes the listed blocks of a section.
func (s *TreeStore) DeleteBlocks(ctx context.Context, sectionID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM content_blocks WHERE section_id = $1 AND id = ANY($2::uuid[])`,
		sectionID, uuidStrings(ids),
	)
	if err != nil {
		return fmt.Errorf("delete blocks: %w", err)
	}
	return nil
}

func (s *TreeStore) ids(ctx context.Context, query string, arg any) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"pagecraft/internal/models"
)

// KeywordStore handles the ordered target keywords of a page.
type KeywordStore struct {
	db DBTX
}

// NewKeywordStore creates a new KeywordStore with the given database handle.
func NewKeywordStore(db DBTX) *KeywordStore {
	return &KeywordStore{db: db}
}

// ListByPage returns a page's keywords by position.
func (s *KeywordStore) ListByPage(ctx context.Context, pageID uuid.UUID) ([]models.Keyword, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, page_id, keyword, is_primary, position
		FROM page_keywords
		WHERE page_id = $1
		ORDER BY position, created_at, id
	`, pageID)
	if err != nil {
		return nil, fmt.Errorf("list keywords: %w", err)
	}
	defer rows.Close()

	keywords := []models.Keyword{}
	for rows.Next() {
		var k models.Keyword
		if err := rows.Scan(&k.ID, &k.PageID, &k.Keyword, &k.IsPrimary, &k.Position); err != nil {
			return nil, fmt.Errorf("scan keyword: %w", err)
		}
		keywords = append(keywords, k)
	}
	return keywords, rows.Err()
}

// Replace deletes every keyword of a page and inserts the given list,
// renumbering positions from 0 in list order.
func (s *KeywordStore) Replace(ctx context.Context, pageID uuid.UUID, keywords []models.Keyword) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM page_keywords WHERE page_id = $1`, pageID); err != nil {
		return fmt.Errorf("clear keywords: %w", err)
	}
	for i, k := range keywords {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO page_keywords (page_id, keyword, is_primary, position)
			VALUES ($1, $2, $3, $4)
		`, pageID, k.Keyword, k.IsPrimary, i)
		if err != nil {
			return fmt.Errorf("insert keyword %q: %w", k.Keyword, err)
		}
	}
	return nil
}

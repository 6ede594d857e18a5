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

// pivot describes the join table behind a taxonomy relation.
type pivot struct {
	table  string
	column string
	kind   string
}

// relationPivots maps each taxonomy relation to its join table, the column
// holding the related id, and the taxonomy_terms.kind it must point at.
var relationPivots = map[models.Relation]pivot{
	models.RelationServices:       {"page_services", "service_id", "service"},
	models.RelationIndustries:     {"page_industries", "industry_id", "industry"},
	models.RelationUseCases:       {"page_use_cases", "use_case_id", "use_case"},
	models.RelationSolutions:      {"page_solutions", "solution_id", "solution"},
	models.RelationIntegrations:   {"page_integrations", "integration_id", "integration"},
	models.RelationBlogCategories: {"page_blog_categories", "blog_category_id", "blog_category"},
	models.RelationBlogTags:       {"page_blog_tags", "blog_tag_id", "blog_tag"},
}

// TermKind returns the taxonomy kind a relation points at.
func TermKind(rel models.Relation) (string, bool) {
	p, ok := relationPivots[rel]
	return p.kind, ok
}

// RelationStore handles page associations: the taxonomy pivots and the
// placement-carrying CTA pivot.
type RelationStore struct {
	db DBTX
}

// NewRelationStore creates a new RelationStore with the given database handle.
func NewRelationStore(db DBTX) *RelationStore {
	return &RelationStore{db: db}
}

func lookupPivot(rel models.Relation) (pivot, error) {
	p, ok := relationPivots[rel]
	if !ok {
		return pivot{}, fmt.Errorf("unknown relation %q", rel)
	}
	return p, nil
}

// IDs returns the ids currently associated with a page under rel.
func (s *RelationStore) IDs(ctx context.Context, pageID uuid.UUID, rel models.Relation) ([]uuid.UUID, error) {
	p, err := lookupPivot(rel)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+p.column+` FROM `+p.table+` WHERE page_id = $1 ORDER BY created_at, `+p.column,
		pageID,
	)
	if err != nil {
		return nil, fmt.Errorf("list %s ids: %w", rel, err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan %s id: %w", rel, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Related returns the associated terms of a page under rel with their
// display fields.
func (s *RelationStore) Related(ctx context.Context, pageID uuid.UUID, rel models.Relation) ([]models.RelatedEntity, error) {
	p, err := lookupPivot(rel)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.slug
		FROM `+p.table+` j
		JOIN taxonomy_terms t ON t.id = j.`+p.column+`
		WHERE j.page_id = $1
		ORDER BY j.created_at, t.id
	`, pageID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", rel, err)
	}
	defer rows.Close()

	related := []models.RelatedEntity{}
	for rows.Next() {
		var e models.RelatedEntity
		if err := rows.Scan(&e.ID, &e.Name, &e.Slug); err != nil {
			return nil, fmt.Errorf("scan %s: %w", rel, err)
		}
		related = append(related, e)
	}
	return related, rows.Err()
}

// MissingTargets returns the ids in ids that do not name a term of the
// relation's kind.
func (s *RelationStore) MissingTargets(ctx context.Context, rel models.Relation, ids []uuid.UUID) ([]uuid.UUID, error) {
	p, err := lookupPivot(rel)
	if err != nil {
		return nil, err
	}
	return s.missing(ctx,
		`SELECT id FROM taxonomy_terms WHERE kind = $1 AND id = ANY($2::uuid[])`,
		ids, p.kind,
	)
}

// Attach associates ids with a page under rel. Existing pairs are kept.
func (s *RelationStore) Attach(ctx context.Context, pageID uuid.UUID, rel models.Relation, ids []uuid.UUID) error {
	p, err := lookupPivot(rel)
	if err != nil {
		return err
	}
	for _, id := range ids {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO `+p.table+` (page_id, `+p.column+`) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			pageID, id,
		)
		if err != nil {
			return fmt.Errorf("attach %s: %w", rel, err)
		}
	}
	return nil
}

// Detach removes the association of ids with a page under rel.
func (s *RelationStore) Detach(ctx context.Context, pageID uuid.UUID, rel models.Relation, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	p, err := lookupPivot(rel)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`DELETE FROM `+p.table+` WHERE page_id = $1 AND `+p.column+` = ANY($2::uuid[])`,
		pageID, uuidStrings(ids),
	)
	if err != nil {
		return fmt.Errorf("detach %s: %w", rel, err)
	}
	return nil
}

// Ctas returns the CTA associations of a page with their placements.
func (s *RelationStore) Ctas(ctx context.Context, pageID uuid.UUID) ([]models.PageCta, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.title, c.url, pc.placement
		FROM page_ctas pc
		JOIN ctas c ON c.id = pc.cta_id
		WHERE pc.page_id = $1
		ORDER BY pc.created_at, c.id
	`, pageID)
	if err != nil {
		return nil, fmt.Errorf("list ctas: %w", err)
	}
	defer rows.Close()

	ctas := []models.PageCta{}
	for rows.Next() {
		var c models.PageCta
		if err := rows.Scan(&c.CtaID, &c.Title, &c.URL, &c.Placement); err != nil {
			return nil, fmt.Errorf("scan cta: %w", err)
		}
		ctas = append(ctas, c)
	}
	return ctas, rows.Err()
}

// MissingCtas returns the ids in ids that do not name an existing CTA.
func (s *RelationStore) MissingCtas(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	return s.missing(ctx, `SELECT id FROM ctas WHERE id = ANY($1::uuid[])`, ids)
}

// AttachCta associates a CTA with a page at placement.
func (s *RelationStore) AttachCta(ctx context.Context, pageID, ctaID uuid.UUID, placement string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO page_ctas (page_id, cta_id, placement) VALUES ($1, $2, $3)`,
		pageID, ctaID, placement,
	)
	if err != nil {
		return fmt.Errorf("attach cta: %w", err)
	}
	return nil
}

// UpdateCtaPlacement changes the placement of an existing CTA association.
func (s *RelationStore) UpdateCtaPlacement(ctx context.Context, pageID, ctaID uuid.UUID, placement string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE page_ctas SET placement = $1 WHERE page_id = $2 AND cta_id = $3`,
		placement, pageID, ctaID,
	)
	if err != nil {
		return fmt.Errorf("update cta placement: %w", err)
	}
	return nil
}

// DetachCtas removes the listed CTA associations of a page.
func (s *RelationStore) DetachCtas(ctx context.Context, pageID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM page_ctas WHERE page_id = $1 AND cta_id = ANY($2::uuid[])`,
		pageID, uuidStrings(ids),
	)
	if err != nil {
		return fmt.Errorf("detach ctas: %w", err)
	}
	return nil
}

// missing runs an existence query over ids and returns those not found,
// in input order. The ids array is always the last placeholder.
func (s *RelationStore) missing(ctx context.Context, query string, ids []uuid.UUID, leading ...any) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := append(leading, uuidStrings(ids))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("check targets: %w", err)
	}
	defer rows.Close()

	found := make(map[uuid.UUID]bool, len(ids))
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan target: %w", err)
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var missing []uuid.UUID
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

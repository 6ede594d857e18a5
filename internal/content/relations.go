// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"pagecraft/internal/models"
	"pagecraft/internal/store"
)

// DefaultCtaPlacement is used when a CTA spec leaves placement empty.
const DefaultCtaPlacement = "inline"

// CtaSpec requests one CTA association.
type CtaSpec struct {
	CtaID     uuid.UUID `json:"cta_id"`
	Placement string    `json:"placement"`
}

// diffIDs returns the ids to attach (in target order) and detach (in
// current order) to turn current into target. Ids in both are untouched.
func diffIDs(current, target []uuid.UUID) (attach, detach []uuid.UUID) {
	have := make(map[uuid.UUID]bool, len(current))
	for _, id := range current {
		have[id] = true
	}
	want := make(map[uuid.UUID]bool, len(target))
	for _, id := range target {
		if want[id] {
			continue
		}
		want[id] = true
		if !have[id] {
			attach = append(attach, id)
		}
	}
	for _, id := range current {
		if !want[id] {
			detach = append(detach, id)
		}
	}
	return attach, detach
}

// syncRelations reconciles every relation present in requested. A relation
// missing from the map is left alone; an empty list clears it. Every
// target id is checked before anything is written.
func syncRelations(ctx context.Context, rel *store.RelationStore, pageID uuid.UUID, requested map[models.Relation][]uuid.UUID) error {
	for name, ids := range requested {
		if !name.Valid() || name == models.RelationCtas {
			return &ValidationError{Field: "relations." + string(name), Message: "unknown relation"}
		}
		missing, err := rel.MissingTargets(ctx, name, ids)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			kind, _ := store.TermKind(name)
			return &ValidationError{
				Field:   "relations." + string(name),
				Message: "unknown ids " + joinIDs(missing),
				Err:     &NotFoundError{Entity: kind, ID: missing[0].String()},
			}
		}
	}

	// Canonical order keeps the statement sequence deterministic.
	for _, name := range models.TaxonomyRelations {
		ids, ok := requested[name]
		if !ok {
			continue
		}
		current, err := rel.IDs(ctx, pageID, name)
		if err != nil {
			return err
		}
		attach, detach := diffIDs(current, ids)
		if err := rel.Detach(ctx, pageID, name, detach); err != nil {
			return err
		}
		if err := rel.Attach(ctx, pageID, name, attach); err != nil {
			return err
		}
	}
	return nil
}

// syncCtas makes the page's CTA associations equal to specs. Kept CTAs
// have their placement updated in place.
func syncCtas(ctx context.Context, rel *store.RelationStore, pageID uuid.UUID, specs []CtaSpec) error {
	target := make([]uuid.UUID, 0, len(specs))
	placement := make(map[uuid.UUID]string, len(specs))
	for _, s := range specs {
		p := strings.TrimSpace(s.Placement)
		if p == "" {
			p = DefaultCtaPlacement
		}
		if _, dup := placement[s.CtaID]; !dup {
			target = append(target, s.CtaID)
		}
		placement[s.CtaID] = p
	}

	missing, err := rel.MissingCtas(ctx, target)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return &ValidationError{
			Field:   "ctas",
			Message: "unknown ids " + joinIDs(missing),
			Err:     &NotFoundError{Entity: "cta", ID: missing[0].String()},
		}
	}

	current, err := rel.Ctas(ctx, pageID)
	if err != nil {
		return err
	}
	currentIDs := make([]uuid.UUID, len(current))
	for i, c := range current {
		currentIDs[i] = c.CtaID
	}

	attach, detach := diffIDs(currentIDs, target)
	if err := rel.DetachCtas(ctx, pageID, detach); err != nil {
		return err
	}
	for _, c := range current {
		p, kept := placement[c.CtaID]
		if kept && p != c.Placement {
			if err := rel.UpdateCtaPlacement(ctx, pageID, c.CtaID, p); err != nil {
				return err
			}
		}
	}
	for _, id := range attach {
		if err := rel.AttachCta(ctx, pageID, id, placement[id]); err != nil {
			return err
		}
	}
	return nil
}

func joinIDs(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ", ")
}

// relationIDs flattens captured related entities back to id sets.
func relationIDs(captured map[models.Relation][]models.RelatedEntity) map[models.Relation][]uuid.UUID {
	out := make(map[models.Relation][]uuid.UUID, len(captured))
	for name, entities := range captured {
		ids := make([]uuid.UUID, len(entities))
		for i, e := range entities {
			ids[i] = e.ID
		}
		out[name] = ids
	}
	return out
}

func ctaSpecs(ctas []models.PageCta) []CtaSpec {
	specs := make([]CtaSpec, len(ctas))
	for i, c := range ctas {
		specs[i] = CtaSpec{CtaID: c.CtaID, Placement: c.Placement}
	}
	return specs
}

// describeRelations is used in log lines.
func describeRelations(requested map[models.Relation][]uuid.UUID) string {
	parts := make([]string, 0, len(requested))
	for _, name := range models.TaxonomyRelations {
		if ids, ok := requested[name]; ok {
			parts = append(parts, fmt.Sprintf("%s=%d", name, len(ids)))
		}
	}
	return strings.Join(parts, " ")
}

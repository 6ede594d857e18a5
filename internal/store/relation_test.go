// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"pagecraft/internal/models"
)

func TestTermKindCoversTaxonomyRelations(t *testing.T) {
	for _, rel := range models.TaxonomyRelations {
		if _, ok := TermKind(rel); !ok {
			t.Errorf("relation %q has no pivot", rel)
		}
	}
	if _, ok := TermKind(models.RelationCtas); ok {
		t.Error("ctas use their own pivot")
	}
}

func TestRelationStoreAttachDetach(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	p := testPage(t, db)
	s := NewRelationStore(db)

	a := testTerm(t, db, "service")
	b := testTerm(t, db, "service")

	if err := s.Attach(ctx, p.ID, models.RelationServices, []uuid.UUID{a.ID, b.ID}); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	// Re-attaching is a no-op.
	if err := s.Attach(ctx, p.ID, models.RelationServices, []uuid.UUID{a.ID}); err != nil {
		t.Fatalf("Attach again: %v", err)
	}

	related, err := s.Related(ctx, p.ID, models.RelationServices)
	if err != nil {
		t.Fatalf("Related: %v", err)
	}
	if len(related) != 2 {
		t.Fatalf("got %d related, want 2", len(related))
	}

	if err := s.Detach(ctx, p.ID, models.RelationServices, []uuid.UUID{a.ID}); err != nil {
		t.Fatalf("Detach: %v", err)
	}
	ids, _ := s.IDs(ctx, p.ID, models.RelationServices)
	if len(ids) != 1 || ids[0] != b.ID {
		t.Errorf("after detach: %v", ids)
	}
}

func TestRelationStoreMissingTargetsChecksKind(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	s := NewRelationStore(db)

	service := testTerm(t, db, "service")
	industry := testTerm(t, db, "industry")
	unknown := uuid.New()

	missing, err := s.MissingTargets(ctx, models.RelationServices, []uuid.UUID{service.ID, industry.ID, unknown})
	if err != nil {
		t.Fatalf("MissingTargets: %v", err)
	}
	if len(missing) != 2 || missing[0] != industry.ID || missing[1] != unknown {
		t.Errorf("missing: got %v", missing)
	}
}

func TestRelationStoreCtas(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	p := testPage(t, db)
	s := NewRelationStore(db)

	cta, err := NewTaxonomyStore(db).CreateCta(ctx, "Book a call", "/contact", "")
	if err != nil {
		t.Fatalf("CreateCta: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM ctas WHERE id = $1", cta.ID) })

	if err := s.AttachCta(ctx, p.ID, cta.ID, "hero"); err != nil {
		t.Fatalf("AttachCta: %v", err)
	}
	if err := s.UpdateCtaPlacement(ctx, p.ID, cta.ID, "footer"); err != nil {
		t.Fatalf("UpdateCtaPlacement: %v", err)
	}
	ctas, err := s.Ctas(ctx, p.ID)
	if err != nil {
		t.Fatalf("Ctas: %v", err)
	}
	if len(ctas) != 1 || ctas[0].Placement != "footer" || ctas[0].Title != "Book a call" {
		t.Errorf("unexpected ctas %+v", ctas)
	}

	missing, err := s.MissingCtas(ctx, []uuid.UUID{cta.ID, uuid.New()})
	if err != nil || len(missing) != 1 {
		t.Errorf("MissingCtas: %v %v", missing, err)
	}
}

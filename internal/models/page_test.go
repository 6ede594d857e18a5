// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "testing"

func TestPageStatusValid(t *testing.T) {
	tests := []struct {
		status PageStatus
		want   bool
	}{
		{PageStatusDraft, true},
		{PageStatusPublished, true},
		{PageStatusScheduled, true},
		{PageStatusArchived, true},
		{PageStatus(""), false},
		{PageStatus("PUBLISHED"), false},
		{PageStatus("deleted"), false},
	}
	for _, tt := range tests {
		if got := tt.status.Valid(); got != tt.want {
			t.Errorf("PageStatus(%q).Valid() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestPageIsPublished(t *testing.T) {
	if !(&Page{Status: PageStatusPublished}).IsPublished() {
		t.Error("published page should report IsPublished")
	}
	if (&Page{Status: PageStatusScheduled}).IsPublished() {
		t.Error("scheduled page should not report IsPublished")
	}
}

func TestRelationValid(t *testing.T) {
	for _, r := range TaxonomyRelations {
		if !r.Valid() {
			t.Errorf("relation %q should be valid", r)
		}
	}
	if !RelationCtas.Valid() {
		t.Error("ctas relation should be valid")
	}
	if Relation("authors").Valid() {
		t.Error("unknown relation should be invalid")
	}
}

// TestTaxonomyRelationsDistinct ensures the canonical relation list has no
// duplicates and excludes CTAs.
func TestTaxonomyRelationsDistinct(t *testing.T) {
	seen := make(map[Relation]bool)
	for _, r := range TaxonomyRelations {
		if seen[r] {
			t.Errorf("duplicate relation %q", r)
		}
		if r == RelationCtas {
			t.Error("TaxonomyRelations must not include ctas")
		}
		seen[r] = true
	}
}

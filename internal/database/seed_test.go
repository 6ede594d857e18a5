// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"encoding/json"
	"testing"
)

func TestSeedIdempotent(t *testing.T) {
	db, err := Connect(testDSN())
	if err != nil {
		t.Skipf("skipping: DB not available: %v", err)
	}
	defer db.Close()

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	// Seed creates data only when the terms table is empty, so calling it
	// twice must succeed without duplicating anything.
	if err := Seed(db); err != nil {
		t.Fatalf("first Seed: %v", err)
	}
	if err := Seed(db); err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	var termCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM taxonomy_terms").Scan(&termCount); err != nil {
		t.Fatalf("count terms: %v", err)
	}
	if termCount < 1 {
		t.Errorf("expected seeded taxonomy terms, got %d", termCount)
	}

	var tmplCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM page_templates WHERE slug = 'landing'").Scan(&tmplCount); err != nil {
		t.Fatalf("count templates: %v", err)
	}
	if tmplCount != 1 {
		t.Errorf("expected landing template, got %d", tmplCount)
	}
}

func TestSeedTemplateSectionsIsValidJSON(t *testing.T) {
	var sections []map[string]any
	if err := json.Unmarshal([]byte(seedTemplateSections), &sections); err != nil {
		t.Fatalf("seed template sections: %v", err)
	}
	if len(sections) != 3 {
		t.Errorf("sections: got %d, want 3", len(sections))
	}
}

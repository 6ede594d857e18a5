// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// seedTerms are the development taxonomy terms, keyed by kind.
var seedTerms = map[string][]string{
	"service":       {"SEO Audits", "Content Strategy", "Link Building"},
	"industry":      {"SaaS", "Healthcare", "E-commerce"},
	"use_case":      {"Lead Generation", "Brand Awareness"},
	"solution":      {"Organic Growth"},
	"integration":   {"Google Search Console", "HubSpot"},
	"blog_category": {"Guides", "Case Studies"},
	"blog_tag":      {"technical-seo", "content"},
}

// seedTemplateSections is the section layout of the default landing template.
const seedTemplateSections = `[
	{"section_key": "hero", "order": 0, "blocks": [
		{"block_type": "heading", "order": 0, "content": {"text": "Headline", "level": 1}},
		{"block_type": "paragraph", "order": 1, "content": {"text": "Supporting copy."}},
		{"block_type": "button", "order": 2, "content": {"label": "Get started", "url": "/contact"}}
	]},
	{"section_key": "features", "order": 1, "blocks": [
		{"block_type": "list", "order": 0, "content": {"items": ["Feature one", "Feature two", "Feature three"]}}
	]},
	{"section_key": "faqs", "order": 2, "blocks": [
		{"block_type": "faq_list", "order": 0, "content": []}
	]}
]`

// Seed populates the database with initial development data: taxonomy
// terms, a CTA and a landing page template. It is a no-op once any
// taxonomy term exists.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM taxonomy_terms").Scan(&count); err != nil {
		return fmt.Errorf("seed check terms: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	for kind, names := range seedTerms {
		for _, name := range names {
			_, err := tx.Exec(`
				INSERT INTO taxonomy_terms (kind, name, slug)
				VALUES ($1, $2, lower(regexp_replace($2, '[^a-zA-Z0-9]+', '-', 'g')))
			`, kind, name)
			if err != nil {
				return fmt.Errorf("seed insert term %q: %w", name, err)
			}
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO ctas (title, url, style) VALUES ($1, $2, $3)
	`, "Book a free audit", "/contact", "primary"); err != nil {
		return fmt.Errorf("seed insert cta: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT INTO page_templates (name, slug, sections) VALUES ($1, $2, $3)
		ON CONFLICT (slug) DO NOTHING
	`, "Landing page", "landing", seedTemplateSections); err != nil {
		return fmt.Errorf("seed insert template: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with taxonomy terms, cta and landing template")
	return nil
}

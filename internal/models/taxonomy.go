// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Relation names a many-to-many association between a page and another
// entity. The names double as JSON keys in API payloads and snapshots.
type Relation string

const (
	RelationServices       Relation = "services"
	RelationIndustries     Relation = "industries"
	RelationUseCases       Relation = "use_cases"
	RelationSolutions      Relation = "solutions"
	RelationIntegrations   Relation = "integrations"
	RelationBlogCategories Relation = "blog_categories"
	RelationBlogTags       Relation = "blog_tags"
	RelationCtas           Relation = "ctas"
)

// TaxonomyRelations lists the plain id-set relations in canonical order.
// CTAs are handled separately because their pivot carries a placement.
var TaxonomyRelations = []Relation{
	RelationServices,
	RelationIndustries,
	RelationUseCases,
	RelationSolutions,
	RelationIntegrations,
	RelationBlogCategories,
	RelationBlogTags,
}

// Valid reports whether r is a known relation.
func (r Relation) Valid() bool {
	if r == RelationCtas {
		return true
	}
	for _, known := range TaxonomyRelations {
		if r == known {
			return true
		}
	}
	return false
}

// TaxonomyTerm is a service, industry, use case, solution, integration,
// blog category or blog tag. Kind tells which.
type TaxonomyTerm struct {
	ID        uuid.UUID `json:"id"`
	Kind      string    `json:"kind"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RelatedEntity is the captured form of an associated term: enough to show
// it in a version diff, while restore only relies on ID.
type RelatedEntity struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// Cta is a call-to-action that pages can attach at a placement.
type Cta struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Style     string    `json:"style"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PageCta is one CTA association with its pivot placement.
type PageCta struct {
	CtaID     uuid.UUID `json:"cta_id"`
	Title     string    `json:"title,omitempty"`
	URL       string    `json:"url,omitempty"`
	Placement string    `json:"placement"`
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PageStatus represents the publishing state of a page.
type PageStatus string

const (
	PageStatusDraft     PageStatus = "draft"
	PageStatusPublished PageStatus = "published"
	PageStatusScheduled PageStatus = "scheduled"
	PageStatusArchived  PageStatus = "archived"
)

// Valid reports whether s is one of the known page statuses.
func (s PageStatus) Valid() bool {
	switch s {
	case PageStatusDraft, PageStatusPublished, PageStatusScheduled, PageStatusArchived:
		return true
	}
	return false
}

// Block types understood by the engine. The list is open: unknown types are
// stored verbatim, only "image" carries engine-level rules (alt text).
const (
	BlockTypeHeading       = "heading"
	BlockTypeParagraph     = "paragraph"
	BlockTypeList          = "list"
	BlockTypeButton        = "button"
	BlockTypeImage         = "image"
	BlockTypeFAQList       = "faq_list"
	BlockTypeInternalLinks = "internal_links"
)

// Page is the root of a content tree. The scalar columns live in the pages
// table; Sections, Seo, Relations, Ctas and Keywords are populated only when
// the page is loaded as a composed tree.
type Page struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Slug         string     `json:"slug"`
	Type         string     `json:"type"`
	Status       PageStatus `json:"status"`
	Template     *string    `json:"template"`
	TemplateSlug *string    `json:"template_slug"`
	PublishAt    *time.Time `json:"publish_at"`
	PublishedAt  *time.Time `json:"published_at"`
	CreatedBy    *uuid.UUID `json:"created_by"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Sections  []PageSection                `json:"sections,omitempty"`
	Seo       *SeoMeta                     `json:"seo,omitempty"`
	Relations map[Relation][]RelatedEntity `json:"relations,omitempty"`
	Ctas      []PageCta                    `json:"ctas,omitempty"`
	Keywords  []Keyword                    `json:"keywords,omitempty"`
}

// IsPublished returns true if the page is in published status.
func (p *Page) IsPublished() bool {
	return p.Status == PageStatusPublished
}

// PageSection is an ordered slot of a page holding ordered blocks.
// SectionKey is a semantic name ("hero", "faqs") and is not unique.
type PageSection struct {
	ID         uuid.UUID      `json:"id"`
	PageID     uuid.UUID      `json:"page_id"`
	SectionKey string         `json:"section_key"`
	Order      int            `json:"order"`
	Blocks     []ContentBlock `json:"blocks"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// ContentBlock is the smallest unit of content. The shape of Content
// depends on BlockType.
type ContentBlock struct {
	ID        uuid.UUID       `json:"id"`
	SectionID uuid.UUID       `json:"section_id"`
	BlockType string          `json:"block_type"`
	Content   json.RawMessage `json:"content"`
	Order     int             `json:"order"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// SeoMeta holds the search-engine metadata of a page (1:1).
type SeoMeta struct {
	ID              uuid.UUID       `json:"id"`
	PageID          uuid.UUID       `json:"page_id"`
	MetaTitle       *string         `json:"meta_title"`
	MetaDescription *string         `json:"meta_description"`
	MetaKeywords    *string         `json:"meta_keywords"`
	CanonicalURL    *string         `json:"canonical_url"`
	SchemaMarkup    json.RawMessage `json:"schema_markup,omitempty"`
	Noindex         bool            `json:"noindex"`
	Nofollow        bool            `json:"nofollow"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Keyword is a target search keyword of a page, kept in Position order.
type Keyword struct {
	ID        uuid.UUID `json:"id"`
	PageID    uuid.UUID `json:"page_id"`
	Keyword   string    `json:"keyword"`
	IsPrimary bool      `json:"is_primary"`
	Position  int       `json:"position"`
}

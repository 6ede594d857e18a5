// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package regen

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"pagecraft/internal/content"
)

// Synthetic trailing sections hold the FAQ and internal link arrays after
// all generated sections.
const (
	FaqsSectionKey          = "faqs"
	FaqsSectionOrder        = 1000
	InternalLinksSectionKey = "internal_links"
	InternalLinksOrder      = 1001
)

// documentValidate checks decoded generator documents.
var documentValidate *validator.Validate

func init() {
	documentValidate = validator.New()
	_ = documentValidate.RegisterValidation("json_value", validateJSONValue)
}

// validateJSONValue rejects empty and null raw JSON.
func validateJSONValue(fl validator.FieldLevel) bool {
	raw := bytes.TrimSpace(fl.Field().Bytes())
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

// Document is the structure every generator must produce.
type Document struct {
	Title           string            `json:"title" validate:"required"`
	MetaTitle       string            `json:"meta_title" validate:"required"`
	MetaDescription string            `json:"meta_description" validate:"required"`
	Sections        []DocumentSection `json:"sections" validate:"required,dive"`
	Faqs            []FAQ             `json:"faqs" validate:"required,dive"`
	InternalLinks   []json.RawMessage `json:"internal_links" validate:"required"`
}

// DocumentSection is one generated section with its blocks.
type DocumentSection struct {
	SectionKey    string          `json:"section_key" validate:"required"`
	ContentBlocks []DocumentBlock `json:"content_blocks" validate:"dive"`
}

// DocumentBlock carries a block type and its content verbatim.
type DocumentBlock struct {
	Type    string          `json:"type" validate:"required"`
	Content json.RawMessage `json:"content" validate:"json_value"`
}

// FAQ is a question and answer pair.
type FAQ struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
}

// DecodeDocument parses raw generator output, normalizes it and validates
// it. Markdown code fences around the JSON are tolerated; any other text
// around the object is not.
func DecodeDocument(raw []byte) (*Document, error) {
	raw = stripFences(raw)

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	doc.Normalize()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Normalize defaults the optional top-level arrays to empty.
func (d *Document) Normalize() {
	if d.Sections == nil {
		d.Sections = []DocumentSection{}
	}
	if d.Faqs == nil {
		d.Faqs = []FAQ{}
	}
	if d.InternalLinks == nil {
		d.InternalLinks = []json.RawMessage{}
	}
}

// Validate reports the first schema violation as a field path.
func (d *Document) Validate() error {
	err := documentValidate.Struct(d)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("%s: failed %q check", fieldPath(fe.Namespace()), fe.Tag())
	}
	return err
}

// Generated converts a valid document into the tree replacement applied to
// the page: one section per generated section with its blocks, then the
// synthetic faqs and internal_links sections when they are non-empty.
func (d *Document) Generated() (content.Generated, error) {
	specs := make([]content.SectionSpec, 0, len(d.Sections)+2)
	for i, sec := range d.Sections {
		blocks := make([]content.BlockSpec, 0, len(sec.ContentBlocks))
		for j, b := range sec.ContentBlocks {
			blocks = append(blocks, content.BlockSpec{BlockType: b.Type, Content: b.Content, Order: j})
		}
		specs = append(specs, content.SectionSpec{SectionKey: sec.SectionKey, Order: i, Blocks: blocks})
	}

	if len(d.Faqs) > 0 {
		raw, err := json.Marshal(d.Faqs)
		if err != nil {
			return content.Generated{}, fmt.Errorf("marshal faqs: %w", err)
		}
		specs = append(specs, content.SectionSpec{
			SectionKey: FaqsSectionKey,
			Order:      FaqsSectionOrder,
			Blocks:     []content.BlockSpec{{BlockType: FaqsSectionKey, Content: raw}},
		})
	}
	if len(d.InternalLinks) > 0 {
		raw, err := json.Marshal(d.InternalLinks)
		if err != nil {
			return content.Generated{}, fmt.Errorf("marshal internal links: %w", err)
		}
		specs = append(specs, content.SectionSpec{
			SectionKey: InternalLinksSectionKey,
			Order:      InternalLinksOrder,
			Blocks:     []content.BlockSpec{{BlockType: InternalLinksSectionKey, Content: raw}},
		})
	}

	g := content.Generated{
		MetaTitle:       strings.TrimSpace(d.MetaTitle),
		MetaDescription: strings.TrimSpace(d.MetaDescription),
		Sections:        specs,
	}
	if title := strings.TrimSpace(d.Title); title != "" {
		g.Title = &title
	}
	return g, nil
}

// stripFences removes a surrounding ```json ... ``` fence if present.
func stripFences(raw []byte) []byte {
	s := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(s, "```") {
		return []byte(s)
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return []byte(strings.TrimSpace(s))
}

// fieldPath turns a validator namespace like "Document.Sections[0].SectionKey"
// into the JSON path "sections[0].section_key".
func fieldPath(ns string) string {
	ns = strings.TrimPrefix(ns, "Document.")
	parts := strings.Split(ns, ".")
	for i, p := range parts {
		name, index, _ := strings.Cut(p, "[")
		if index != "" {
			index = "[" + index
		}
		parts[i] = jsonNames[name] + index
		if jsonNames[name] == "" {
			parts[i] = strings.ToLower(name) + index
		}
	}
	return strings.Join(parts, ".")
}

var jsonNames = map[string]string{
	"Title":           "title",
	"MetaTitle":       "meta_title",
	"MetaDescription": "meta_description",
	"Sections":        "sections",
	"Faqs":            "faqs",
	"InternalLinks":   "internal_links",
	"SectionKey":      "section_key",
	"ContentBlocks":   "content_blocks",
	"Type":            "type",
	"Content":         "content",
	"Question":        "question",
	"Answer":          "answer",
}

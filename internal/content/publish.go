// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"pagecraft/internal/models"
)

// Violation is an image block with no resolvable alt text.
type Violation struct {
	BlockID uuid.UUID  `json:"block_id"`
	MediaID *uuid.UUID `json:"media_id,omitempty"`
}

// parseImage reads the alt text and media reference of an image block.
// Each field is decoded on its own, so a malformed media_id does not hide
// a valid alt and vice versa. Content that is not an object yields no alt,
// so the block is reported rather than skipped.
func parseImage(raw json.RawMessage) (string, *uuid.UUID) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return "", nil
	}

	var alt string
	if v, ok := fields["alt"]; ok {
		if err := json.Unmarshal(v, &alt); err != nil {
			alt = ""
		}
	}

	var ref string
	if v, ok := fields["media_id"]; !ok || json.Unmarshal(v, &ref) != nil || ref == "" {
		return alt, nil
	}
	id, err := uuid.Parse(ref)
	if err != nil {
		return alt, nil
	}
	return alt, &id
}

// referencedMedia returns the media ids referenced by image blocks without
// inline alt text, i.e. the assets whose alt text the gate must look up.
func referencedMedia(sections []models.PageSection) []uuid.UUID {
	var ids []uuid.UUID
	seen := make(map[uuid.UUID]bool)
	for _, s := range sections {
		for _, b := range s.Blocks {
			if b.BlockType != models.BlockTypeImage {
				continue
			}
			alt, mediaID := parseImage(b.Content)
			if strings.TrimSpace(alt) != "" || mediaID == nil || seen[*mediaID] {
				continue
			}
			seen[*mediaID] = true
			ids = append(ids, *mediaID)
		}
	}
	return ids
}

// publishViolations lists image blocks whose inline alt is blank and whose
// referenced asset (if any) has no alt text in mediaAlt.
func publishViolations(sections []models.PageSection, mediaAlt map[uuid.UUID]string) []Violation {
	violations := []Violation{}
	for _, s := range sections {
		for _, b := range s.Blocks {
			if b.BlockType != models.BlockTypeImage {
				continue
			}
			alt, mediaID := parseImage(b.Content)
			if strings.TrimSpace(alt) != "" {
				continue
			}
			if mediaID != nil && strings.TrimSpace(mediaAlt[*mediaID]) != "" {
				continue
			}
			violations = append(violations, Violation{BlockID: b.ID, MediaID: mediaID})
		}
	}
	return violations
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"pagecraft/internal/store"
)

// Mode selects how ComposeSections reconciles the requested tree with the
// live one.
type Mode int

const (
	// SyncMode diffs by id: matched sections and blocks are updated in
	// place, unmatched specs are created and everything not listed is
	// deleted. Used by manual edits.
	SyncMode Mode = iota
	// ReplaceMode deletes the whole subtree and recreates it from the
	// specs. Used by template apply, restore and regeneration.
	ReplaceMode
)

func (m Mode) String() string {
	if m == ReplaceMode {
		return "replace"
	}
	return "sync"
}

// SectionSpec describes one section of a requested tree. ID is honoured
// only in SyncMode. The field names match the composed page JSON, so
// snapshots and templates decode straight into specs.
type SectionSpec struct {
	ID         *uuid.UUID  `json:"id,omitempty"`
	SectionKey string      `json:"section_key"`
	Order      int         `json:"order"`
	Blocks     []BlockSpec `json:"blocks"`
}

// BlockSpec describes one block of a requested section.
type BlockSpec struct {
	ID        *uuid.UUID      `json:"id,omitempty"`
	BlockType string          `json:"block_type"`
	Content   json.RawMessage `json:"content"`
	Order     int             `json:"order"`
}

// validateSpecs checks the parts of a tree spec the store cannot default.
func validateSpecs(specs []SectionSpec) error {
	for i, s := range specs {
		if strings.TrimSpace(s.SectionKey) == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("sections[%d].section_key", i),
				Message: "is required",
			}
		}
		for j, b := range s.Blocks {
			if strings.TrimSpace(b.BlockType) == "" {
				return &ValidationError{
					Field:   fmt.Sprintf("sections[%d].blocks[%d].block_type", i, j),
					Message: "is required",
				}
			}
			if len(b.Content) > 0 && !json.Valid(b.Content) {
				return &ValidationError{
					Field:   fmt.Sprintf("sections[%d].blocks[%d].content", i, j),
					Message: "is not valid JSON",
				}
			}
		}
	}
	return nil
}

// matchIDs pairs requested ids with existing ones. matched[i] reports
// whether requested[i] names an existing row not already claimed by an
// earlier spec; stale lists the existing ids no spec claimed.
func matchIDs(existing []uuid.UUID, requested []*uuid.UUID) (matched []bool, stale []uuid.UUID) {
	owned := make(map[uuid.UUID]bool, len(existing))
	for _, id := range existing {
		owned[id] = true
	}

	claimed := make(map[uuid.UUID]bool, len(requested))
	matched = make([]bool, len(requested))
	for i, id := range requested {
		if id == nil || !owned[*id] || claimed[*id] {
			continue
		}
		claimed[*id] = true
		matched[i] = true
	}

	for _, id := range existing {
		if !claimed[id] {
			stale = append(stale, id)
		}
	}
	return matched, stale
}

func sectionIDs(specs []SectionSpec) []*uuid.UUID {
	ids := make([]*uuid.UUID, len(specs))
	for i := range specs {
		ids[i] = specs[i].ID
	}
	return ids
}

func blockIDs(specs []BlockSpec) []*uuid.UUID {
	ids := make([]*uuid.UUID, len(specs))
	for i := range specs {
		ids[i] = specs[i].ID
	}
	return ids
}

// compose makes the page's section/block subtree match specs. It must run
// inside the transaction that owns tree.
func compose(ctx context.Context, tree *store.TreeStore, pageID uuid.UUID, specs []SectionSpec, mode Mode) error {
	if err := validateSpecs(specs); err != nil {
		return err
	}
	composeTotal.WithLabelValues(mode.String()).Inc()

	if mode == ReplaceMode {
		if err := tree.DeleteAllSections(ctx, pageID); err != nil {
			return err
		}
		for _, spec := range specs {
			if err := createSection(ctx, tree, pageID, spec); err != nil {
				return err
			}
		}
		return nil
	}

	existing, err := tree.SectionIDs(ctx, pageID)
	if err != nil {
		return err
	}
	matched, stale := matchIDs(existing, sectionIDs(specs))

	// Deleting first keeps stale rows from interleaving with the new order.
	if err := tree.DeleteSections(ctx, pageID, stale); err != nil {
		return err
	}

	for i, spec := range specs {
		if !matched[i] {
			if err := createSection(ctx, tree, pageID, spec); err != nil {
				return err
			}
			continue
		}
		sectionID := *spec.ID
		if _, err := tree.UpdateSection(ctx, pageID, sectionID, spec.SectionKey, spec.Order); err != nil {
			return err
		}
		if err := syncBlocks(ctx, tree, sectionID, spec.Blocks); err != nil {
			return err
		}
	}
	return nil
}

func createSection(ctx context.Context, tree *store.TreeStore, pageID uuid.UUID, spec SectionSpec) error {
	sec, err := tree.CreateSection(ctx, pageID, spec.SectionKey, spec.Order)
	if err != nil {
		return err
	}
	for _, b := range spec.Blocks {
		if _, err := tree.CreateBlock(ctx, sec.ID, b.BlockType, b.Content, b.Order); err != nil {
			return err
		}
	}
	return nil
}

func syncBlocks(ctx context.Context, tree *store.TreeStore, sectionID uuid.UUID, specs []BlockSpec) error {
	existing, err := tree.BlockIDs(ctx, sectionID)
	if err != nil {
		return err
	}
	matched, stale := matchIDs(existing, blockIDs(specs))

	if err := tree.DeleteBlocks(ctx, sectionID, stale); err != nil {
		return err
	}
	for i, b := range specs {
		if matched[i] {
			if _, err := tree.UpdateBlock(ctx, sectionID, *b.ID, b.BlockType, b.Content, b.Order); err != nil {
				return err
			}
			continue
		}
		if _, err := tree.CreateBlock(ctx, sectionID, b.BlockType, b.Content, b.Order); err != nil {
			return err
		}
	}
	return nil
}

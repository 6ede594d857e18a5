// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"pagecraft/internal/models"
	"pagecraft/internal/store"
)

// maxVersionAttempts bounds retries after a version number collision.
const maxVersionAttempts = 3

// Document is the stored form of a snapshot. Its field names are those of
// the live entities, so a restore decodes it without translation.
type Document struct {
	Page      models.Page                                `json:"page"`
	Sections  []models.PageSection                       `json:"sections"`
	Seo       *models.SeoMeta                            `json:"seo"`
	Relations map[models.Relation][]models.RelatedEntity `json:"relations"`
	Ctas      []models.PageCta                           `json:"ctas"`
	Keywords  []models.Keyword                           `json:"keywords"`
}

// newDocument captures a composed page. The page scalars are copied without
// their composed fields so nothing is stored twice.
func newDocument(p *models.Page) Document {
	scalars := *p
	scalars.Sections = nil
	scalars.Seo = nil
	scalars.Relations = nil
	scalars.Ctas = nil
	scalars.Keywords = nil

	doc := Document{
		Page:      scalars,
		Sections:  p.Sections,
		Seo:       p.Seo,
		Relations: make(map[models.Relation][]models.RelatedEntity, len(models.TaxonomyRelations)),
		Ctas:      p.Ctas,
		Keywords:  p.Keywords,
	}
	for _, rel := range models.TaxonomyRelations {
		related := p.Relations[rel]
		if related == nil {
			related = []models.RelatedEntity{}
		}
		doc.Relations[rel] = related
	}
	if doc.Sections == nil {
		doc.Sections = []models.PageSection{}
	}
	if doc.Ctas == nil {
		doc.Ctas = []models.PageCta{}
	}
	if doc.Keywords == nil {
		doc.Keywords = []models.Keyword{}
	}
	return doc
}

// DecodeDocument parses the snapshot of a version.
func DecodeDocument(v *models.ContentVersion) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(v.Snapshot, &doc); err != nil {
		return nil, fmt.Errorf("decode snapshot of version %s: %w", v.ID, err)
	}
	return &doc, nil
}

// CreateSnapshot captures the composed state of a page as a new immutable
// version numbered one above the highest number ever issued for the page.
// The live page is only read.
func (s *Service) CreateSnapshot(ctx context.Context, pageID uuid.UUID, actor *uuid.UUID) (*models.ContentVersion, error) {
	for attempt := 1; ; attempt++ {
		v, err := s.createSnapshot(ctx, pageID, actor)
		if err == nil {
			snapshotTotal.Inc()
			slog.Info("snapshot created", "page_id", pageID, "version", v.VersionNumber)
			return v, nil
		}
		if !store.IsUniqueViolation(err) || attempt == maxVersionAttempts {
			return nil, err
		}
		slog.Warn("version number collision, retrying", "page_id", pageID, "attempt", attempt)
	}
}

func (s *Service) createSnapshot(ctx context.Context, pageID uuid.UUID, actor *uuid.UUID) (*models.ContentVersion, error) {
	var version *models.ContentVersion
	err := s.inTx(ctx, func(st stores) error {
		p, err := st.pages.FindByID(ctx, pageID)
		if err != nil {
			return err
		}
		if p == nil {
			return &NotFoundError{Entity: "page", ID: pageID.String()}
		}
		if err := loadTree(ctx, st, p); err != nil {
			return err
		}

		raw, err := json.Marshal(newDocument(p))
		if err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
		n, err := st.versions.NextNumber(ctx, pageID)
		if err != nil {
			return err
		}
		version, err = st.versions.Create(ctx, &models.ContentVersion{
			PageID:        pageID,
			VersionNumber: n,
			Snapshot:      raw,
			CreatedBy:     actor,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return version, nil
}

// ListVersions returns the versions of a page, newest first.
func (s *Service) ListVersions(ctx context.Context, pageID uuid.UUID) ([]models.ContentVersion, error) {
	st := newStores(s.db)
	p, err := st.pages.FindByID(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, &NotFoundError{Entity: "page", ID: pageID.String()}
	}
	return st.versions.ListByPage(ctx, pageID)
}

// GetVersion returns a single version.
func (s *Service) GetVersion(ctx context.Context, id uuid.UUID) (*models.ContentVersion, error) {
	v, err := newStores(s.db).versions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, &NotFoundError{Entity: "version", ID: id.String()}
	}
	return v, nil
}

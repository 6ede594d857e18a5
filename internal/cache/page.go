// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// page.go provides a Valkey-backed cache of composed pages.
// A composed page (tree, SEO, relations, CTAs, keywords) is stored as JSON
// under its id so reads skip the seven queries that assemble it. Every
// content write invalidates the entry.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"pagecraft/internal/models"
)

const (
	// pageKeyPrefix is the Valkey key prefix for cached pages.
	pageKeyPrefix = "pagecraft:page:"

	// DefaultPageTTL is how long a composed page stays cached.
	DefaultPageTTL = 5 * time.Minute
)

// PageCache manages composed page caching in Valkey.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache creates a new page cache backed by the given Valkey client.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if ttl == 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl}
}

// PageKey returns the cache key for a page id.
func PageKey(id uuid.UUID) string {
	return pageKeyPrefix + id.String()
}

// Get retrieves a cached page. Errors and undecodable entries count as
// misses.
func (pc *PageCache) Get(ctx context.Context, id uuid.UUID) (*models.Page, bool) {
	val, err := pc.client.Get(ctx, PageKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("page cache get error", "page_id", id, "error", err)
		return nil, false
	}

	var p models.Page
	if err := json.Unmarshal(val, &p); err != nil {
		slog.Warn("page cache decode error", "page_id", id, "error", err)
		return nil, false
	}
	slog.Debug("page cache hit", "page_id", id)
	return &p, true
}

// Set stores a composed page with the configured TTL.
func (pc *PageCache) Set(ctx context.Context, p *models.Page) {
	b, err := json.Marshal(p)
	if err != nil {
		slog.Warn("page cache encode error", "page_id", p.ID, "error", err)
		return
	}
	if err := pc.client.Set(ctx, PageKey(p.ID), b, pc.ttl).Err(); err != nil {
		slog.Warn("page cache set error", "page_id", p.ID, "error", err)
	}
}

// Fetch returns the cached page or loads and caches it.
func (pc *PageCache) Fetch(ctx context.Context, id uuid.UUID, load func(context.Context, uuid.UUID) (*models.Page, error)) (*models.Page, error) {
	if p, ok := pc.Get(ctx, id); ok {
		return p, nil
	}
	p, err := load(ctx, id)
	if err != nil {
		return nil, err
	}
	pc.Set(ctx, p)
	return p, nil
}

// InvalidatePage removes a single page from the cache.
func (pc *PageCache) InvalidatePage(ctx context.Context, id uuid.UUID) {
	if err := pc.client.Del(ctx, PageKey(id)).Err(); err != nil {
		slog.Warn("page cache invalidate error", "page_id", id, "error", err)
		return
	}
	slog.Debug("page cache invalidated", "page_id", id)
}

// InvalidateAll removes all cached pages by scanning for the prefix.
// Used after migrations and seeding, since any page could be affected.
func (pc *PageCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := pc.client.Scan(ctx, cursor, pageKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("page cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := pc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("page cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("page cache fully cleared", "deleted", deleted)
	}
}

// Package cache stores rendered pages in Redis under cache tags.
//
// Every tag has a version counter. A cached page remembers the version
// of each of its tags at write time and is served only while all of
// them are still current, so invalidating a tag instantly expires every
// page carrying it without scanning for keys.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Well-known tags. Slug-specific tags come from PostTag/CategoryTag.
const (
	TagPosts      = "posts"
	TagCategories = "categories"
)

// PostTag is the tag attached to one post's detail page.
func PostTag(slug string) string { return "post:" + slug }

// CategoryTag is the tag attached to one category's listing page.
func CategoryTag(slug string) string { return "category:" + slug }

const (
	pageKeyPrefix = "page:"
	tagKeyPrefix  = "tag:"
)

// Entry is one cached response body.
type Entry struct {
	Body        string           `json:"body"`
	ContentType string           `json:"contentType"`
	Tags        map[string]int64 `json:"tags"` // tag -> version at write time
}

// Store is the tag-versioned page cache. A nil Store (or one built on a
// nil client) is a valid no-op cache, which is how the service runs
// when Redis is not configured.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

// New wraps an already connected Redis client. ttl bounds how long an
// entry may live even if none of its tags change.
func New(rdb *redis.Client, ttl time.Duration, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{rdb: rdb, ttl: ttl, log: log}
}

// Enabled reports whether the cache is actually backed by Redis.
func (s *Store) Enabled() bool {
	return s != nil && s.rdb != nil
}

// Get returns the cached entry for key if every tag version it was
// stored under is still current.
func (s *Store) Get(ctx context.Context, key string) (*Entry, bool) {
	if !s.Enabled() {
		return nil, false
	}
	raw, err := s.rdb.Get(ctx, pageKeyPrefix+key).Result()
	if err != nil {
		if err != redis.Nil {
			s.log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var e Entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return nil, false
	}
	for tag, version := range e.Tags {
		if s.tagVersion(ctx, tag) != version {
			return nil, false
		}
	}
	return &e, true
}

// Set stores a rendered page under the given tags. Failures are logged
// and swallowed; a broken cache must never break a page render.
func (s *Store) Set(ctx context.Context, key, contentType, body string, tags []string) {
	if !s.Enabled() {
		return
	}
	e := Entry{Body: body, ContentType: contentType, Tags: make(map[string]int64, len(tags))}
	for _, tag := range tags {
		e.Tags[tag] = s.tagVersion(ctx, tag)
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, pageKeyPrefix+key, raw, s.ttl).Err(); err != nil {
		s.log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate bumps the version of each tag, expiring every entry that
// was stored under it.
func (s *Store) Invalidate(ctx context.Context, tags ...string) error {
	if !s.Enabled() {
		return nil
	}
	for _, tag := range tags {
		if err := s.rdb.Incr(ctx, tagKeyPrefix+tag).Err(); err != nil {
			return fmt.Errorf("cache: invalidate tag %s: %w", tag, err)
		}
		s.log.Info("cache tag invalidated", zap.String("tag", tag))
	}
	return nil
}

// tagVersion returns the current version of a tag; a tag that was never
// invalidated is version 0.
func (s *Store) tagVersion(ctx context.Context, tag string) int64 {
	v, err := s.rdb.Get(ctx, tagKeyPrefix+tag).Int64()
	if err != nil {
		return 0
	}
	return v
}

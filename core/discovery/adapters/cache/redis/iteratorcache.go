// Copyright 2025 Nhat-Nguyen Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package redis adapts domain.IteratorStateCache onto Rueidis, reusing
// modules/db/redis's RedisKV for the get/set round trip and adding a
// delete (Clear) that drops a viewer's saved state.
package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/redis/rueidis"

	"app/core/discovery/domain"
	"app/internal/geoindex"
	"app/modules/db"
	redisdb "app/modules/db/redis"
)

var _ domain.IteratorStateCache = (*IteratorStateCache)(nil)

// IteratorStateCache stores each viewer's geoindex.IteratorState keyed by
// account id, so NextPage can resume a scan across requests without
// re-walking cells it already visited (spec §3 "viewer location state").
type IteratorStateCache struct {
	client rueidis.Client
	kv     db.JSONKV[geoindex.IteratorState]
	prefix string
	ttl    time.Duration
}

// NewIteratorStateCache wraps an existing rueidis.Client. keyPrefix scopes
// all keys (e.g. "discovery:iter"); ttl bounds how long an idle viewer's
// scan position survives. Once the entry expires, NextPage returns an
// empty page until ResetIterator seeds a new origin.
func NewIteratorStateCache(client rueidis.Client, keyPrefix string, ttl time.Duration) *IteratorStateCache {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix != "" && !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	redisKV := redisdb.NewRedisKV(client, redisdb.WithKeyPrefix(prefix), redisdb.WithDefaultTTL(ttl))
	return &IteratorStateCache{
		client: client,
		kv:     db.NewJSONKV[geoindex.IteratorState](redisKV),
		prefix: prefix,
		ttl:    ttl,
	}
}

func (c *IteratorStateCache) key(accountID uuid.UUID) string {
	return accountID.String()
}

// Load implements domain.IteratorStateCache.
func (c *IteratorStateCache) Load(ctx context.Context, accountID uuid.UUID) (geoindex.IteratorState, bool, error) {
	state, err := c.kv.Get(ctx, c.key(accountID))
	if err != nil {
		return geoindex.IteratorState{}, false, fmt.Errorf("redis iterator cache: load: %w", err)
	}
	if state == nil {
		return geoindex.IteratorState{}, false, nil
	}
	return *state, true, nil
}

// Save implements domain.IteratorStateCache.
func (c *IteratorStateCache) Save(ctx context.Context, accountID uuid.UUID, state geoindex.IteratorState) error {
	if _, err := c.kv.Set(ctx, c.key(accountID), state); err != nil {
		return fmt.Errorf("redis iterator cache: save: %w", err)
	}
	return nil
}

// Clear implements domain.IteratorStateCache, dropping a viewer's saved
// scan position. domain.ResetIterator does not call it; it overwrites the
// entry through Save.
func (c *IteratorStateCache) Clear(ctx context.Context, accountID uuid.UUID) error {
	fullKey := c.prefix + c.key(accountID)

	if err := c.client.Do(ctx, c.client.B().Del().Key(fullKey).Build()).Error(); err != nil {
		return fmt.Errorf("redis iterator cache: clear: %w", err)
	}
	return nil
}

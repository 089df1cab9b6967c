/*
Copyright 2026 The Vitess Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package distribution

import (
	"context"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"google.golang.org/grpc/codes"

	"vitess.io/distexchange/go/vt/log"
	"vitess.io/distexchange/go/vt/vterrors"
)

// Loader fetches the distribution of a relation from the catalog.
type Loader interface {
	LoadDistribution(ctx context.Context, id RelationID) (*Descriptor, error)
}

// LoaderFunc adapts a function to a Loader.
type LoaderFunc func(ctx context.Context, id RelationID) (*Descriptor, error)

// LoadDistribution implements Loader.
func (f LoaderFunc) LoadDistribution(ctx context.Context, id RelationID) (*Descriptor, error) {
	return f(ctx, id)
}

// CacheConfig controls entry lifetime of a Cache.
type CacheConfig struct {
	// DefaultExpiration is how long an entry lives. Zero or
	// cache.NoExpiration keeps entries until invalidated.
	DefaultExpiration time.Duration
	// CleanupInterval is how often expired entries are purged.
	CleanupInterval time.Duration
}

// entry is what the cache stores per relation. The descriptor is
// immutable once stored; the cursor is guarded by mu.
type entry struct {
	desc *Descriptor

	mu     sync.Mutex
	cursor *RoundRobinCursor
}

// Cache holds the distribution descriptors of relations, keyed by
// relation id, along with the round robin position of each relation.
//
// A new entry starts its round robin walk at a random node so that
// concurrent sessions do not all hit the first node.
type Cache struct {
	cache  *cache.Cache
	loader Loader

	// fillMu serializes loads so two callers do not both fill the same key.
	fillMu sync.Mutex

	// intN picks the starting offset of a new entry.
	intN func(n int) int
}

// NewCache returns a cache filled through loader.
func NewCache(loader Loader, cfg CacheConfig) *Cache {
	exp := cfg.DefaultExpiration
	if exp == 0 {
		exp = cache.NoExpiration
	}
	return &Cache{
		cache:  cache.New(exp, cfg.CleanupInterval),
		loader: loader,
		intN:   rand.IntN,
	}
}

func cacheKey(id RelationID) string {
	return strconv.FormatUint(uint64(id), 10)
}

func (c *Cache) newEntry(desc *Descriptor) *entry {
	start := -1
	if n := len(desc.Nodes); n > 0 {
		start = c.intN(n) - 1
	}
	return &entry{desc: desc.Copy(), cursor: NewRoundRobinCursor(start)}
}

func (c *Cache) lookup(ctx context.Context, id RelationID) (*entry, error) {
	if v, ok := c.cache.Get(cacheKey(id)); ok {
		return v.(*entry), nil
	}

	c.fillMu.Lock()
	defer c.fillMu.Unlock()
	if v, ok := c.cache.Get(cacheKey(id)); ok {
		return v.(*entry), nil
	}
	return c.fill(ctx, id)
}

// fill loads id and stores a fresh entry. Callers hold fillMu.
func (c *Cache) fill(ctx context.Context, id RelationID) (*entry, error) {
	if c.loader == nil {
		return nil, vterrors.Errorf(codes.FailedPrecondition, "relation %d: no distribution loader", id)
	}
	desc, err := c.loader.LoadDistribution(ctx, id)
	if err != nil {
		return nil, vterrors.Wrapf(err, "relation %d: load distribution", id)
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	e := c.newEntry(desc)
	c.cache.SetDefault(cacheKey(id), e)
	log.V(2).Infof("distribution cache: loaded %v", desc)
	return e, nil
}

// Get returns a copy of the descriptor of relation id, loading it when it
// is not cached.
func (c *Cache) Get(ctx context.Context, id RelationID) (*Descriptor, error) {
	e, err := c.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.desc.Copy(), nil
}

// Put stores desc, replacing any cached entry and resetting its cursor.
func (c *Cache) Put(desc *Descriptor) error {
	if err := desc.Validate(); err != nil {
		return err
	}
	c.cache.SetDefault(cacheKey(desc.RelationID), c.newEntry(desc))
	return nil
}

// Rebuild reloads relation id from the loader. The round robin cursor
// starts over from a new random node.
func (c *Cache) Rebuild(ctx context.Context, id RelationID) (*Descriptor, error) {
	c.fillMu.Lock()
	defer c.fillMu.Unlock()
	e, err := c.fill(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.desc.Copy(), nil
}

// Invalidate drops relation id. The next Get reloads it.
func (c *Cache) Invalidate(id RelationID) {
	c.cache.Delete(cacheKey(id))
}

// Len returns the number of cached relations.
func (c *Cache) Len() int {
	return c.cache.ItemCount()
}

// NextRoundRobinNode returns the next node of the round robin walk of
// relation id. Only RoundRobin and Replicated relations have one.
func (c *Cache) NextRoundRobinNode(ctx context.Context, id RelationID) (NodeID, error) {
	e, err := c.lookup(ctx, id)
	if err != nil {
		return 0, err
	}
	switch e.desc.Strategy {
	case RoundRobin, Replicated:
	default:
		return 0, vterrors.NewState(vterrors.UnsupportedDistributionType, "relation %d: %v distribution has no round robin node", id, e.desc.Strategy)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.desc.Nodes[e.cursor.Next(len(e.desc.Nodes))], nil
}

// Package state holds the latest cluster snapshots. The cache implements
// cluster.Source without blocking, so refreshes that run under the UI lock
// never wait on a subprocess.
package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/atomicstack/sview/internal/cluster"
)

var ErrNotLoaded = errors.New("no data received yet")

type snapshot[T any] struct {
	items  []T
	loaded bool
	at     time.Time
	err    error
}

func (s *snapshot[T]) set(items []T, now time.Time) {
	s.items = append([]T(nil), items...)
	s.loaded = true
	s.at = now
	s.err = nil
}

func (s *snapshot[T]) get(what string) ([]T, error) {
	if !s.loaded {
		if s.err != nil {
			return nil, fmt.Errorf("%s: %w", what, s.err)
		}
		return nil, fmt.Errorf("%s: %w", what, ErrNotLoaded)
	}
	return append([]T(nil), s.items...), nil
}

// Cache is the most recent data of every kind.
type Cache struct {
	mu         sync.RWMutex
	now        func() time.Time
	partitions snapshot[cluster.Partition]
	jobs       snapshot[cluster.Job]
	nodes      snapshot[cluster.Node]
	blocks     snapshot[cluster.Block]
	lastErr    error
}

var _ cluster.Source = (*Cache)(nil)

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{now: time.Now}
}

func (c *Cache) SetPartitions(items []cluster.Partition) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.partitions.set(items, c.now())
}

func (c *Cache) SetJobs(items []cluster.Job) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.jobs.set(items, c.now())
}

func (c *Cache) SetNodes(items []cluster.Node) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nodes.set(items, c.now())
}

func (c *Cache) SetBlocks(items []cluster.Block) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blocks.set(items, c.now())
}

// SetError records a failed fetch. Data already cached stays served.
func (c *Cache) SetError(kind string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	wrapped := fmt.Errorf("%s: %w", kind, err)
	c.lastErr = wrapped
	switch kind {
	case "partitions":
		c.partitions.err = err
	case "jobs":
		c.jobs.err = err
	case "nodes":
		c.nodes.err = err
	case "blocks":
		c.blocks.err = err
	}
}

// ClearError forgets the last fetch error.
func (c *Cache) ClearError() {
	c.mu.Lock()
	c.lastErr = nil
	c.mu.Unlock()
}

// LastError returns the most recent fetch error, or nil.
func (c *Cache) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// Updated reports when kind was last stored.
func (c *Cache) Updated(kind string) time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch kind {
	case "partitions":
		return c.partitions.at
	case "jobs":
		return c.jobs.at
	case "nodes":
		return c.nodes.at
	case "blocks":
		return c.blocks.at
	}
	return time.Time{}
}

func (c *Cache) Partitions(context.Context) ([]cluster.Partition, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.partitions.get("partitions")
}

func (c *Cache) Jobs(context.Context) ([]cluster.Job, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.jobs.get("jobs")
}

func (c *Cache) Nodes(context.Context) ([]cluster.Node, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nodes.get("nodes")
}

func (c *Cache) Blocks(context.Context) ([]cluster.Block, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.blocks.get("blocks")
}

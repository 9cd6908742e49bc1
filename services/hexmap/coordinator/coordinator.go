// Copyright (C) 2026 Hexframe
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package coordinator orchestrates optimistic map mutations.
//
// Each edit operation follows the same pipeline: acquire the tile's
// pending-operation slot, apply the mutation to the local cache store
// immediately, call the remote authority, then either finalize with the
// authoritative result or roll the cache back to its exact pre-edit shape
// and return the original error. Persistence writes along the way are
// best-effort and never escalate.
//
// The source system ran these operations on a single cooperative thread;
// here every guard is a mutex-protected check-and-insert so the same
// fail-fast contract holds under real parallelism (see pending.go).
//
// Thread Safety: Coordinator is safe for concurrent use. Operations on
// distinct coordinates proceed in parallel; a second operation on a busy
// coordinate fails immediately with ErrConcurrentOperation, before any
// network I/O and without touching the cache.
package coordinator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/Diplow/hexframe-sub004/services/hexmap/cache"
	"github.com/Diplow/hexframe-sub004/services/hexmap/change"
	"github.com/Diplow/hexframe-sub004/services/hexmap/coords"
	"github.com/Diplow/hexframe-sub004/services/hexmap/events"
	"github.com/Diplow/hexframe-sub004/services/hexmap/remote"
)

// Persistence is the best-effort key-value store contract.
//
// Keys are "item:{remoteId}". Failures from either method are logged and
// swallowed by the coordinator; they never affect the in-memory cache.
type Persistence interface {
	Save(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// Config wires a Coordinator's collaborators.
type Config struct {
	// Store is the single-writer cache. Required.
	Store *cache.Store

	// Remote holds the injected remote-call functions. Any nil function
	// makes the corresponding operation fail with ErrMutationNotConfigured.
	Remote remote.Mutations

	// Tracker is the in-flight change ledger. Defaults to a fresh one.
	Tracker *change.Tracker

	// Emitter is the notification bus. Defaults to a fresh one.
	Emitter *events.Emitter

	// Persistence is optional; nil disables local persistence entirely.
	Persistence Persistence

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Coordinator applies optimistic edits to the tile cache and reconciles
// them against the remote authority.
type Coordinator struct {
	store   *cache.Store
	remote  remote.Mutations
	tracker *change.Tracker
	emitter *events.Emitter
	persist Persistence
	logger  *slog.Logger

	mu      sync.Mutex
	pending map[coords.CoordID]pendingOp

	// flight dedupes composed-view refreshes triggered by concurrent
	// creates under the same parent.
	flight singleflight.Group

	arena idArena
}

// New creates a Coordinator.
func New(cfg Config) (*Coordinator, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("coordinator: store is required")
	}
	if cfg.Tracker == nil {
		cfg.Tracker = change.NewTracker()
	}
	if cfg.Emitter == nil {
		cfg.Emitter = events.NewEmitter()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Coordinator{
		store:   cfg.Store,
		remote:  cfg.Remote,
		tracker: cfg.Tracker,
		emitter: cfg.Emitter,
		persist: cfg.Persistence,
		logger:  cfg.Logger,
		pending: make(map[coords.CoordID]pendingOp),
	}, nil
}

// Store returns the cache this coordinator mutates.
func (c *Coordinator) Store() *cache.Store { return c.store }

// Tracker returns the in-flight change ledger.
func (c *Coordinator) Tracker() *change.Tracker { return c.tracker }

// Emitter returns the notification bus.
func (c *Coordinator) Emitter() *events.Emitter { return c.emitter }

// persistKey is the persistence key for a remote item id.
func persistKey(itemID int64) string {
	return fmt.Sprintf("item:%d", itemID)
}

// persistTile saves t best-effort. Failure is logged, never returned.
func (c *Coordinator) persistTile(ctx context.Context, t cache.Tile) {
	if c.persist == nil {
		return
	}
	buf, err := json.Marshal(t)
	if err != nil {
		c.logger.Warn("persistence encode failed", "coord", t.CoordID, "error", err)
		return
	}
	if err := c.persist.Save(ctx, persistKey(t.ID), buf); err != nil {
		c.logger.Warn("persistence save failed", "coord", t.CoordID, "item_id", t.ID, "error", err)
	}
}

// unpersistItem removes an item's persisted copy best-effort.
func (c *Coordinator) unpersistItem(ctx context.Context, itemID int64) {
	if c.persist == nil {
		return
	}
	if err := c.persist.Remove(ctx, persistKey(itemID)); err != nil {
		c.logger.Warn("persistence remove failed", "item_id", itemID, "error", err)
	}
}

// normalizeTile fills in the address-derived fields of an authoritative
// tile the API may omit.
func normalizeTile(t cache.Tile, at coords.Coord) cache.Tile {
	t.CoordID = at.ID()
	t.Depth = at.Depth()
	if t.OwnerID == 0 {
		t.OwnerID = at.UserID
	}
	return t
}

// idArena hands out provisional tile ids.
//
// Provisional ids are negative so they can never collide with
// authoritative ids, which the map API allocates from 1 upward, and so
// the copy remapper can recognize them without extra bookkeeping.
type idArena struct {
	mu   sync.Mutex
	next int64
}

func (a *idArena) nextID() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.next--
	return a.next
}

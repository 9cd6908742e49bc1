// Copyright (C) 2026 Hexframe
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package change is the in-memory ledger of in-flight optimistic edits.
//
// Every optimistic dispatch that has not yet been finalized owns exactly
// one tracked Change holding enough data to undo it: a previous snapshot
// for update/delete/swap legs, or nothing for creates, which are undone by
// removal. Removing the entry is the sole signal that an edit has settled,
// whether by success or by rollback.
//
// The ledger never touches the cache store or the network.
package change

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/Diplow/hexframe-sub004/services/hexmap/cache"
	"github.com/Diplow/hexframe-sub004/services/hexmap/coords"
)

// Kind classifies a tracked edit.
type Kind string

const (
	KindCreate Kind = "create"
	KindUpdate Kind = "update"
	KindDelete Kind = "delete"
)

// Change is one undoable in-flight edit.
//
// Exactly one shape is valid per kind: a create carries coord ids only
// (possibly a whole copied subtree) and no snapshot; an update or delete
// carries a single coord id and the previous tile. Use the constructors
// rather than building the struct by hand.
type Change struct {
	Kind     Kind
	CoordIDs []coords.CoordID
	Prev     *cache.Tile
	TrackedA time.Time
}

// NewCreate returns a create change covering ids, undone by removal.
func NewCreate(ids ...coords.CoordID) Change {
	return Change{Kind: KindCreate, CoordIDs: ids, TrackedA: time.Now()}
}

// NewUpdate returns an update change restoring prev on rollback.
func NewUpdate(id coords.CoordID, prev cache.Tile) Change {
	return Change{Kind: KindUpdate, CoordIDs: []coords.CoordID{id}, Prev: &prev, TrackedA: time.Now()}
}

// NewDelete returns a delete change restoring prev on rollback.
func NewDelete(id coords.CoordID, prev cache.Tile) Change {
	return Change{Kind: KindDelete, CoordIDs: []coords.CoordID{id}, Prev: &prev, TrackedA: time.Now()}
}

// NewID generates a change id.
//
// Ids are ULIDs: millisecond timestamp plus monotonic randomness, so ids
// generated by overlapping calls within a process cannot collide and sort
// in generation order. A collision here would corrupt the ledger, which is
// why this does not fall back to bare timestamps.
func NewID() string {
	idMu.Lock()
	defer idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

var (
	idMu    sync.Mutex
	entropy = ulid.Monotonic(ulid.DefaultEntropy(), 0)
)

// Tracker holds the in-flight changes, keyed by change id.
//
// Thread Safety: Tracker is safe for concurrent use.
type Tracker struct {
	mu      sync.RWMutex
	changes map[string]Change
}

// NewTracker returns an empty ledger.
func NewTracker() *Tracker {
	return &Tracker{changes: make(map[string]Change)}
}

// Track records ch under id, replacing any previous entry with that id.
func (t *Tracker) Track(id string, ch Change) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.changes[id] = ch
}

// Get returns the change tracked under id.
func (t *Tracker) Get(id string) (Change, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ch, ok := t.changes[id]
	return ch, ok
}

// Remove settles the change tracked under id.
func (t *Tracker) Remove(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.changes, id)
}

// All returns every in-flight change id with its change.
func (t *Tracker) All() map[string]Change {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]Change, len(t.changes))
	for id, ch := range t.changes {
		out[id] = ch
	}
	return out
}

// Len returns the number of unsettled changes.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.changes)
}

// Copyright (C) 2026 Hexframe
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package cache implements the single-writer tile store.
//
// The store holds the client's view of the map, keyed by coordinate. Every
// mutation, from any coordinator operation, passes through one Dispatch
// call, so concurrent operations on different tiles never race on shared
// state even while their remote calls are outstanding. Readers take
// snapshots via GetState and never see a half-applied action.
package cache

import (
	"sync"

	"github.com/Diplow/hexframe-sub004/services/hexmap/coords"
)

// Content is the user-visible bundle carried by a tile.
type Content struct {
	Title   string `json:"title"`
	Body    string `json:"body,omitempty"`
	Preview string `json:"preview,omitempty"`
	Link    string `json:"link,omitempty"`
}

// Tile is a cache-resident map node.
//
// Identity is the CoordID: the cache is keyed by coordinate, not by the
// remote numeric id, which is why address changes (moves, swaps) must
// explicitly remove stale keys. ID is the remote authority's numeric id;
// a provisional (optimistic) tile carries a negative ID until the
// authority confirms it.
type Tile struct {
	CoordID  coords.CoordID `json:"coordId"`
	ID       int64          `json:"id"`
	ParentID int64          `json:"parentId,omitempty"`
	OwnerID  int64          `json:"ownerId"`
	Depth    int            `json:"depth"`
	Content  Content        `json:"content"`
}

// IsProvisional reports whether t still carries an optimistic id.
func (t Tile) IsProvisional() bool { return t.ID < 0 }

// Action is a store mutation. Exactly the two shapes of the cache
// contract exist: load a region of authoritative (or optimistic) tiles,
// or remove a single tile.
type Action interface {
	isAction()
}

// LoadRegion inserts or replaces a set of tiles, recorded as centered on
// Center at MaxDepth. Tiles already present at the same coordinates are
// overwritten.
type LoadRegion struct {
	Tiles    []Tile
	Center   coords.CoordID
	MaxDepth int
}

// RemoveTile deletes the tile at CoordID, if present.
type RemoveTile struct {
	CoordID coords.CoordID
}

func (LoadRegion) isAction() {}
func (RemoveTile) isAction() {}

// State is a point-in-time snapshot of the store.
type State struct {
	TilesByID map[coords.CoordID]Tile
}

// Store is the single-writer cache.
//
// Thread Safety: Store is safe for concurrent use. Dispatch serializes
// writers; GetState and Get take read locks and return copies.
type Store struct {
	mu    sync.RWMutex
	tiles map[coords.CoordID]Tile
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{tiles: make(map[coords.CoordID]Tile)}
}

// Dispatch applies one action to the store.
func (s *Store) Dispatch(action Action) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch a := action.(type) {
	case LoadRegion:
		for _, t := range a.Tiles {
			s.tiles[t.CoordID] = t
		}
	case RemoveTile:
		delete(s.tiles, a.CoordID)
	}
}

// GetState returns a snapshot copy of the store.
func (s *Store) GetState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[coords.CoordID]Tile, len(s.tiles))
	for id, t := range s.tiles {
		out[id] = t
	}
	return State{TilesByID: out}
}

// Get returns the tile at id, if present.
func (s *Store) Get(id coords.CoordID) (Tile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tiles[id]
	return t, ok
}

// Len returns the number of cached tiles.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tiles)
}

// Descendants returns the cached tiles strictly below ancestorID.
func (s *Store) Descendants(ancestorID coords.CoordID) []Tile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Tile
	for id, t := range s.tiles {
		if coords.IsDescendant(id, ancestorID) {
			out = append(out, t)
		}
	}
	return out
}

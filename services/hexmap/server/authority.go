// Copyright (C) 2026 Hexframe
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/Diplow/hexframe-sub004/services/hexmap/cache"
	"github.com/Diplow/hexframe-sub004/services/hexmap/coords"
	"github.com/Diplow/hexframe-sub004/services/hexmap/remote"
)

// Authority is an in-memory map authority implementing the remote
// mutation contract. It backs standalone serving and integration tests,
// where no upstream map API exists.
//
// Thread Safety: safe for concurrent use.
type Authority struct {
	mu     sync.Mutex
	nextID int64
	items  map[coords.CoordID]authorityItem
}

type authorityItem struct {
	id       int64
	parentID int64
	content  cache.Content
}

// NewAuthority creates an empty authority. Assigned item ids start at 1.
func NewAuthority() *Authority {
	return &Authority{
		nextID: 1,
		items:  make(map[coords.CoordID]authorityItem),
	}
}

// Mutations returns the injected-function bundle backed by this
// authority.
func (a *Authority) Mutations() remote.Mutations {
	return remote.Mutations{
		Create:         a.Create,
		Update:         a.Update,
		Delete:         a.Delete,
		Move:           a.Move,
		Copy:           a.Copy,
		DeleteChildren: a.DeleteChildren,
		FetchComposed:  a.FetchComposed,
	}
}

// Len reports how many items the authority holds.
func (a *Authority) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.items)
}

// Create implements remote.CreateFunc.
func (a *Authority) Create(_ context.Context, req remote.CreateRequest) (*cache.Tile, error) {
	c, err := coords.Parse(req.CoordID)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.items[req.CoordID]; exists {
		return nil, fmt.Errorf("coordinate %s already occupied", req.CoordID)
	}

	item := authorityItem{
		id:       a.nextID,
		parentID: req.ParentID,
		content:  req.Content,
	}
	a.nextID++
	a.items[req.CoordID] = item
	tile := a.tileAt(req.CoordID, c, item)
	return &tile, nil
}

// Update implements remote.UpdateFunc.
func (a *Authority) Update(_ context.Context, req remote.UpdateRequest) (*cache.Tile, error) {
	c, err := coords.Parse(req.CoordID)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	item, ok := a.items[req.CoordID]
	if !ok {
		return nil, fmt.Errorf("no item at %s", req.CoordID)
	}
	item.content = req.Content
	a.items[req.CoordID] = item
	tile := a.tileAt(req.CoordID, c, item)
	return &tile, nil
}

// Delete implements remote.DeleteFunc. The item's whole subtree goes
// with it.
func (a *Authority) Delete(_ context.Context, id coords.CoordID) error {
	if _, err := coords.Parse(id); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.items[id]; !ok {
		return fmt.Errorf("no item at %s", id)
	}
	delete(a.items, id)
	for key := range a.items {
		if coords.IsDescendant(key, id) {
			delete(a.items, key)
		}
	}
	return nil
}

// Move implements remote.MoveFunc. If the target coordinate is occupied
// the two subtrees are swapped, otherwise the source subtree relocates.
// The result carries every item whose coordinate changed.
func (a *Authority) Move(_ context.Context, req remote.MoveRequest) (*remote.MoveResult, error) {
	srcCoord, err := coords.Parse(req.SourceID)
	if err != nil {
		return nil, err
	}
	tgtCoord, err := coords.Parse(req.TargetID)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	source, ok := a.items[req.SourceID]
	if !ok {
		return nil, fmt.Errorf("no item at %s", req.SourceID)
	}

	moved := a.collectSubtree(req.SourceID)
	var displaced map[coords.CoordID]authorityItem
	if _, swap := a.items[req.TargetID]; swap {
		displaced = a.collectSubtree(req.TargetID)
	}

	for key := range moved {
		delete(a.items, key)
	}
	for key := range displaced {
		delete(a.items, key)
	}

	next := make(map[coords.CoordID]authorityItem, len(moved)+len(displaced))
	a.rebase(next, moved, srcCoord, tgtCoord)
	a.rebase(next, displaced, tgtCoord, srcCoord)
	for key, item := range next {
		a.items[key] = item
	}

	result := &remote.MoveResult{MovedItemID: source.id}
	for key, item := range next {
		c, err := coords.Parse(key)
		if err != nil {
			continue
		}
		result.ModifiedItems = append(result.ModifiedItems, a.tileAt(key, c, item))
	}
	return result, nil
}

// Copy implements remote.CopyFunc. The copied subtree gets fresh ids;
// only the new root is returned, matching the map API contract.
func (a *Authority) Copy(_ context.Context, req remote.CopyRequest) (*cache.Tile, error) {
	srcCoord, err := coords.Parse(req.SourceID)
	if err != nil {
		return nil, err
	}
	destCoord, err := coords.Parse(req.DestID)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.items[req.SourceID]; !ok {
		return nil, fmt.Errorf("no item at %s", req.SourceID)
	}
	if _, occupied := a.items[req.DestID]; occupied {
		return nil, fmt.Errorf("coordinate %s already occupied", req.DestID)
	}

	idByOld := make(map[int64]int64)
	var rootTile *cache.Tile
	for key, item := range a.collectSubtree(req.SourceID) {
		c, err := coords.Parse(key)
		if err != nil {
			continue
		}
		rebased, ok := coords.RebasePath(c, srcCoord, destCoord)
		if !ok {
			continue
		}

		clone := item
		clone.id = a.nextID
		a.nextID++
		idByOld[item.id] = clone.id
		if key == req.SourceID {
			clone.parentID = req.DestParentID
		}
		a.items[rebased.ID()] = clone
		if key == req.SourceID {
			t := a.tileAt(rebased.ID(), rebased, clone)
			rootTile = &t
		}
	}

	// Second pass heals parent links between copied items.
	for key, item := range a.collectSubtree(req.DestID) {
		if key == req.DestID {
			continue
		}
		if newParent, ok := idByOld[item.parentID]; ok {
			item.parentID = newParent
			a.items[key] = item
		}
	}
	return rootTile, nil
}

// DeleteChildren implements remote.DeleteChildrenFunc.
func (a *Authority) DeleteChildren(_ context.Context, req remote.DeleteChildrenRequest) error {
	parent, err := coords.Parse(req.ParentID)
	if err != nil {
		return err
	}
	if !req.Category.Valid() {
		return fmt.Errorf("unknown category %q", req.Category)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for key := range a.items {
		if !coords.IsDescendant(key, req.ParentID) {
			continue
		}
		c, err := coords.Parse(key)
		if err != nil {
			continue
		}
		if categoryContains(c.Path[len(parent.Path):], req.Category) {
			delete(a.items, key)
		}
	}
	return nil
}

// FetchComposed implements remote.FetchComposedFunc, returning the
// composed-side subtrees under parent.
func (a *Authority) FetchComposed(_ context.Context, parentID coords.CoordID) ([]cache.Tile, error) {
	parent, err := coords.Parse(parentID)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	var out []cache.Tile
	for key, item := range a.items {
		if !coords.IsDescendant(key, parentID) {
			continue
		}
		c, err := coords.Parse(key)
		if err != nil {
			continue
		}
		suffix := c.Path[len(parent.Path):]
		if len(suffix) > 0 && suffix[0].IsComposed() {
			out = append(out, a.tileAt(key, c, item))
		}
	}
	return out, nil
}

// collectSubtree gathers the item at root and all its descendants.
// Callers hold a.mu.
func (a *Authority) collectSubtree(root coords.CoordID) map[coords.CoordID]authorityItem {
	out := make(map[coords.CoordID]authorityItem)
	if item, ok := a.items[root]; ok {
		out[root] = item
	}
	for key, item := range a.items {
		if coords.IsDescendant(key, root) {
			out[key] = item
		}
	}
	return out
}

// rebase writes items onto the destination prefix. Relocated roots get
// their parent id refreshed from whatever sits at the new parent
// coordinate. Callers hold a.mu.
func (a *Authority) rebase(dst map[coords.CoordID]authorityItem, items map[coords.CoordID]authorityItem, from, to coords.Coord) {
	for key, item := range items {
		c, err := coords.Parse(key)
		if err != nil {
			continue
		}
		rebased, ok := coords.RebasePath(c, from, to)
		if !ok {
			continue
		}
		if key == from.ID() {
			if parentCoord, hasParent := rebased.Parent(); hasParent {
				if parentItem, cached := a.items[parentCoord.ID()]; cached {
					item.parentID = parentItem.id
				}
			} else {
				item.parentID = 0
			}
		}
		dst[rebased.ID()] = item
	}
}

func (a *Authority) tileAt(id coords.CoordID, c coords.Coord, item authorityItem) cache.Tile {
	return cache.Tile{
		CoordID:  id,
		ID:       item.id,
		ParentID: item.parentID,
		OwnerID:  c.UserID,
		Depth:    c.Depth(),
		Content:  item.content,
	}
}

func categoryContains(suffix []coords.Direction, category remote.Category) bool {
	if len(suffix) == 0 {
		return false
	}
	switch category {
	case remote.CategoryStructural:
		return suffix[0].IsStructural()
	case remote.CategoryComposed:
		return suffix[0].IsComposed()
	case remote.CategoryExecutionHistory:
		for _, d := range suffix {
			if d == coords.Anchor {
				return true
			}
		}
	}
	return false
}

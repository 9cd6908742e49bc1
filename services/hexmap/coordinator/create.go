// Copyright (C) 2026 Hexframe
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package coordinator

import (
	"context"
	"fmt"

	"github.com/Diplow/hexframe-sub004/services/hexmap/cache"
	"github.com/Diplow/hexframe-sub004/services/hexmap/change"
	"github.com/Diplow/hexframe-sub004/services/hexmap/coords"
	"github.com/Diplow/hexframe-sub004/services/hexmap/events"
	"github.com/Diplow/hexframe-sub004/services/hexmap/remote"
)

// CreateData is the user input for a new tile.
type CreateData struct {
	Content cache.Content

	// ParentID is the optional explicit parent item id. When zero, the
	// parent is derived from the coordinate's parent tile in the cache.
	ParentID int64
}

// CreateItem creates a tile at coordID: optimistic provisional tile in
// the cache, remote create, then the authoritative tile replaces the
// provisional one at the same coordinate. On failure the provisional
// tile is removed and the original error returned. A coordinate that
// already holds a cached tile is rejected with ErrCoordOccupied.
//
// If the new tile occupies a composed-child address, a refresh of the
// parent's composed-children view is triggered after finalization.
func (c *Coordinator) CreateItem(ctx context.Context, coordID coords.CoordID, data CreateData) (*cache.Tile, error) {
	coord, err := coords.Parse(coordID)
	if err != nil {
		return nil, err
	}

	var created *cache.Tile
	err = c.trackOperation(coordID, OpCreate, func() error {
		if c.remote.Create == nil {
			return &NotConfiguredError{Kind: OpCreate}
		}
		if _, ok := c.store.Get(coordID); ok {
			return fmt.Errorf("create %s: %w", coordID, ErrCoordOccupied)
		}

		parentID, err := c.resolveParent(coord, data.ParentID)
		if err != nil {
			return err
		}

		provisional := cache.Tile{
			CoordID:  coordID,
			ID:       c.arena.nextID(),
			ParentID: parentID,
			OwnerID:  coord.UserID,
			Depth:    coord.Depth(),
			Content:  data.Content,
		}
		c.store.Dispatch(cache.LoadRegion{Tiles: []cache.Tile{provisional}, Center: coordID})

		changeID := change.NewID()
		c.tracker.Track(changeID, change.NewCreate(coordID))

		authoritative, err := c.remote.Create(ctx, remote.CreateRequest{
			CoordID:  coordID,
			ParentID: parentID,
			Content:  data.Content,
		})
		if err != nil {
			c.rollbackChanges([]string{changeID})
			return fmt.Errorf("remote create %s: %w", coordID, err)
		}

		final := normalizeTile(*authoritative, coord)
		c.store.Dispatch(cache.LoadRegion{Tiles: []cache.Tile{final}, Center: coordID})
		c.tracker.Remove(changeID)
		c.persistTile(ctx, final)

		if last, ok := lastDirection(coord); ok && last.IsComposed() {
			c.refreshComposedView(ctx, coord)
		}

		c.emitter.Emit(events.TypeTileCreated, events.TileData{
			CoordID: coordID, ItemID: final.ID, Title: final.Content.Title,
		})
		created = &final
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// resolveParent returns the remote parent id for a tile created at coord.
//
// An explicit id wins; otherwise the cached parent tile supplies it. The
// root needs no parent. A provisional (negative) cached parent cannot be
// referenced remotely yet and is rejected the same as a missing one.
func (c *Coordinator) resolveParent(coord coords.Coord, explicit int64) (int64, error) {
	if explicit != 0 {
		if explicit < 0 {
			return 0, fmt.Errorf("parent id %d: %w", explicit, ErrInvalidParentID)
		}
		return explicit, nil
	}
	parent, ok := coord.Parent()
	if !ok {
		return 0, nil
	}
	parentTile, ok := c.store.Get(parent.ID())
	if !ok || parentTile.IsProvisional() {
		return 0, fmt.Errorf("no usable parent at %s: %w", parent.ID(), ErrInvalidParentID)
	}
	return parentTile.ID, nil
}

// refreshComposedView reloads the parent's composed children from the
// authority. Concurrent creates under the same parent share one fetch.
// The refresh is advisory: a failure is logged, never propagated, since
// the create itself already finalized.
func (c *Coordinator) refreshComposedView(ctx context.Context, coord coords.Coord) {
	if c.remote.FetchComposed == nil {
		return
	}
	parent, ok := coord.Parent()
	if !ok {
		return
	}
	parentID := parent.ID()

	_, err, _ := c.flight.Do(string(parentID), func() (any, error) {
		tiles, err := c.remote.FetchComposed(ctx, parentID)
		if err != nil {
			return nil, err
		}
		if len(tiles) > 0 {
			c.store.Dispatch(cache.LoadRegion{Tiles: tiles, Center: parentID, MaxDepth: 1})
		}
		return nil, nil
	})
	if err != nil {
		c.logger.Warn("composed view refresh failed", "parent", parentID, "error", err)
	}
}

// lastDirection returns the final path segment of coord.
func lastDirection(coord coords.Coord) (coords.Direction, bool) {
	if len(coord.Path) == 0 {
		return 0, false
	}
	return coord.Path[len(coord.Path)-1], true
}

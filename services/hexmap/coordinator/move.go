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

// relocation is one tile leaving its old key for a new one.
type relocation struct {
	old cache.Tile
	new cache.Tile
}

// MoveItem relocates the tile at sourceID to targetID, or swaps the two
// tiles if targetID is already occupied.
//
// A move relocates the single source tile. A swap exchanges both tiles
// and re-roots each tile's direct (one-generation) children under the
// other prefix; every touched tile's snapshot is captured for rollback.
//
// The authority answers with the full set of modified items addressed by
// their new coordinates. Because the cache is keyed by coordinate, each
// item's old key is recomputed by rebasing the new coordinate across the
// source/target prefixes and removed before the new tiles load; skipping
// that would leave orphaned entries for descendants the optimistic step
// never touched.
//
// On failure every captured snapshot is restored and the original error
// returned.
func (c *Coordinator) MoveItem(ctx context.Context, sourceID, targetID coords.CoordID) error {
	srcCoord, err := coords.Parse(sourceID)
	if err != nil {
		return err
	}
	tgtCoord, err := coords.Parse(targetID)
	if err != nil {
		return err
	}
	if sourceID == targetID {
		return nil
	}

	return c.trackMoveOperation(sourceID, targetID, func() error {
		if c.remote.Move == nil {
			return &NotConfiguredError{Kind: OpMove}
		}

		sourceTile, ok := c.store.Get(sourceID)
		if !ok {
			return &NotFoundError{CoordID: sourceID}
		}
		targetTile, swap := c.store.Get(targetID)

		var relocations []relocation
		if swap {
			relocations = c.swapRelocations(sourceTile, targetTile, srcCoord, tgtCoord)
		} else {
			relocations = []relocation{c.moveRelocation(sourceTile, tgtCoord)}
		}

		// Two phases: vacate every old key, then occupy every new key.
		// Tracked in that order so reverse rollback restores exactly.
		changeIDs := make([]string, 0, 2*len(relocations))
		newTiles := make([]cache.Tile, 0, len(relocations))
		for _, r := range relocations {
			id := change.NewID()
			c.tracker.Track(id, change.NewDelete(r.old.CoordID, r.old))
			changeIDs = append(changeIDs, id)
			c.store.Dispatch(cache.RemoveTile{CoordID: r.old.CoordID})
		}
		for _, r := range relocations {
			id := change.NewID()
			c.tracker.Track(id, change.NewCreate(r.new.CoordID))
			changeIDs = append(changeIDs, id)
			newTiles = append(newTiles, r.new)
		}
		c.store.Dispatch(cache.LoadRegion{Tiles: newTiles, Center: targetID, MaxDepth: 1})

		result, err := c.remote.Move(ctx, remote.MoveRequest{SourceID: sourceID, TargetID: targetID})
		if err != nil {
			c.rollbackChanges(changeIDs)
			return fmt.Errorf("remote move %s -> %s: %w", sourceID, targetID, err)
		}

		c.finalizeMove(ctx, result, srcCoord, tgtCoord, swap)
		c.settleChanges(changeIDs)

		eventType := events.TypeTileMoved
		if swap {
			eventType = events.TypeTilesSwapped
		}
		c.emitter.Emit(eventType, events.MoveData{
			SourceID: sourceID,
			TargetID: targetID,
			ItemID:   result.MovedItemID,
			Swapped:  swap,
		})
		return nil
	})
}

// moveRelocation relocates the lone source tile onto the empty target.
func (c *Coordinator) moveRelocation(sourceTile cache.Tile, tgtCoord coords.Coord) relocation {
	moved := sourceTile
	moved.CoordID = tgtCoord.ID()
	moved.Depth = tgtCoord.Depth()
	if parent, ok := tgtCoord.Parent(); ok {
		if parentTile, ok := c.store.Get(parent.ID()); ok && !parentTile.IsProvisional() {
			moved.ParentID = parentTile.ID
		}
	}
	return relocation{old: sourceTile, new: moved}
}

// swapRelocations exchanges the two root tiles and re-roots each root's
// direct children under the other prefix: a child at source.path+[d]
// lands at target.path+[d], and vice versa.
func (c *Coordinator) swapRelocations(sourceTile, targetTile cache.Tile, srcCoord, tgtCoord coords.Coord) []relocation {
	srcAtTarget := sourceTile
	srcAtTarget.CoordID = tgtCoord.ID()
	srcAtTarget.Depth = tgtCoord.Depth()
	srcAtTarget.ParentID = targetTile.ParentID

	tgtAtSource := targetTile
	tgtAtSource.CoordID = srcCoord.ID()
	tgtAtSource.Depth = srcCoord.Depth()
	tgtAtSource.ParentID = sourceTile.ParentID

	relocations := []relocation{
		{old: sourceTile, new: srcAtTarget},
		{old: targetTile, new: tgtAtSource},
	}
	relocations = append(relocations, c.childRelocations(srcCoord, tgtCoord)...)
	relocations = append(relocations, c.childRelocations(tgtCoord, srcCoord)...)
	return relocations
}

// childRelocations rebases the direct children of from onto to.
func (c *Coordinator) childRelocations(from, to coords.Coord) []relocation {
	var out []relocation
	fromID := from.ID()
	for _, child := range c.store.Descendants(fromID) {
		childCoord, err := coords.Parse(child.CoordID)
		if err != nil || childCoord.Depth() != from.Depth()+1 {
			continue
		}
		rebased, ok := coords.RebasePath(childCoord, from, to)
		if !ok {
			continue
		}
		moved := child
		moved.CoordID = rebased.ID()
		moved.Depth = rebased.Depth()
		out = append(out, relocation{old: child, new: moved})
	}
	return out
}

// finalizeMove applies the authority's answer: stale keys out, new tiles
// in, modified items persisted best-effort.
func (c *Coordinator) finalizeMove(ctx context.Context, result *remote.MoveResult, srcCoord, tgtCoord coords.Coord, swap bool) {
	for _, item := range result.ModifiedItems {
		newCoord, err := coords.Parse(item.CoordID)
		if err != nil {
			c.logger.Warn("authority returned unparseable coordinate", "coord", item.CoordID, "error", err)
			continue
		}
		if old, ok := coords.RebasePath(newCoord, tgtCoord, srcCoord); ok {
			c.store.Dispatch(cache.RemoveTile{CoordID: old.ID()})
		} else if swap {
			if old, ok := coords.RebasePath(newCoord, srcCoord, tgtCoord); ok {
				c.store.Dispatch(cache.RemoveTile{CoordID: old.ID()})
			}
		}
	}
	if len(result.ModifiedItems) > 0 {
		c.store.Dispatch(cache.LoadRegion{
			Tiles:  result.ModifiedItems,
			Center: tgtCoord.ID(),
		})
		for _, item := range result.ModifiedItems {
			c.persistTile(ctx, item)
		}
	}
}

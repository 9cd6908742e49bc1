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
	"sort"

	"github.com/Diplow/hexframe-sub004/services/hexmap/cache"
	"github.com/Diplow/hexframe-sub004/services/hexmap/change"
	"github.com/Diplow/hexframe-sub004/services/hexmap/coords"
	"github.com/Diplow/hexframe-sub004/services/hexmap/events"
	"github.com/Diplow/hexframe-sub004/services/hexmap/remote"
)

// CopyItem deep-copies the subtree rooted at sourceID to destID.
//
// The whole optimistic subtree is built under provisional ids, with each
// copied child's parent reference pointing at its copied parent's
// provisional id via a coordinate-to-id arena, and dispatched at once.
// One create change covers every generated coordinate, so rollback is a
// plain removal sweep. Any destination coordinate already holding a
// cached tile makes the copy fail with ErrCoordOccupied before the
// optimistic dispatch.
//
// The authority echoes back only the authoritative root: children keep
// their provisional ids, but every child whose parent was the provisional
// root is remapped to the authoritative root id so no dangling parent
// reference survives finalization.
func (c *Coordinator) CopyItem(ctx context.Context, sourceID, destID coords.CoordID, destParentID int64) (*cache.Tile, error) {
	if sourceID == destID {
		return nil, fmt.Errorf("copy %s: %w", sourceID, ErrSelfCopy)
	}
	srcCoord, err := coords.Parse(sourceID)
	if err != nil {
		return nil, err
	}
	destCoord, err := coords.Parse(destID)
	if err != nil {
		return nil, err
	}

	var root *cache.Tile
	err = c.trackOperation(destID, OpCopy, func() error {
		if c.remote.Copy == nil {
			return &NotConfiguredError{Kind: OpCopy}
		}

		sourceTile, ok := c.store.Get(sourceID)
		if !ok {
			return &NotFoundError{CoordID: sourceID}
		}

		parentID, err := c.resolveDestParent(destCoord, destParentID)
		if err != nil {
			return err
		}

		subtree, rootProvisionalID, err := c.buildCopySubtree(sourceTile, srcCoord, destCoord, parentID)
		if err != nil {
			return err
		}

		coordIDs := make([]coords.CoordID, len(subtree))
		for i, t := range subtree {
			if _, occupied := c.store.Get(t.CoordID); occupied {
				return fmt.Errorf("copy %s -> %s: destination %s: %w", sourceID, destID, t.CoordID, ErrCoordOccupied)
			}
			coordIDs[i] = t.CoordID
		}
		c.store.Dispatch(cache.LoadRegion{Tiles: subtree, Center: destID})
		changeID := change.NewID()
		c.tracker.Track(changeID, change.NewCreate(coordIDs...))

		authoritative, err := c.remote.Copy(ctx, remote.CopyRequest{
			SourceID:     sourceID,
			DestID:       destID,
			DestParentID: parentID,
		})
		if err != nil {
			c.rollbackChanges([]string{changeID})
			return fmt.Errorf("remote copy %s -> %s: %w", sourceID, destID, err)
		}

		finalRoot := normalizeTile(*authoritative, destCoord)
		finalRoot.ParentID = parentID

		// The authority does not echo the copied descendants back, so
		// only parent references to the provisional root can be healed.
		final := make([]cache.Tile, 0, len(subtree))
		final = append(final, finalRoot)
		for _, t := range subtree[1:] {
			if t.ParentID == rootProvisionalID {
				t.ParentID = finalRoot.ID
			}
			final = append(final, t)
		}
		c.store.Dispatch(cache.LoadRegion{Tiles: final, Center: destID})
		c.tracker.Remove(changeID)
		for _, t := range final {
			c.persistTile(ctx, t)
		}

		c.emitter.Emit(events.TypeItemCopied, events.CopyData{
			SourceID: sourceID,
			DestID:   destID,
			ItemID:   finalRoot.ID,
			Copied:   len(final),
		})
		root = &finalRoot
		return nil
	})
	if err != nil {
		return nil, err
	}
	return root, nil
}

// resolveDestParent resolves the copied root's parent id at destCoord.
func (c *Coordinator) resolveDestParent(destCoord coords.Coord, explicit int64) (int64, error) {
	if explicit != 0 {
		if explicit < 0 {
			return 0, fmt.Errorf("destination parent id %d: %w", explicit, ErrInvalidDestinationParentID)
		}
		return explicit, nil
	}
	parent, ok := destCoord.Parent()
	if !ok {
		return 0, nil
	}
	parentTile, ok := c.store.Get(parent.ID())
	if !ok || parentTile.IsProvisional() {
		return 0, fmt.Errorf("no usable parent at %s: %w", parent.ID(), ErrInvalidDestinationParentID)
	}
	return parentTile.ID, nil
}

// buildCopySubtree clones the cached source subtree onto the destination
// prefix. The returned slice is ordered parents-first with the root at
// index 0, and every clone's parent reference resolves inside the clone
// set (or to rootParentID for the root itself).
func (c *Coordinator) buildCopySubtree(sourceTile cache.Tile, srcCoord, destCoord coords.Coord, rootParentID int64) ([]cache.Tile, int64, error) {
	sources := append([]cache.Tile{sourceTile}, c.store.Descendants(sourceTile.CoordID)...)
	sort.Slice(sources, func(i, j int) bool {
		return sources[i].Depth < sources[j].Depth
	})

	// Coordinate-to-provisional-id arena keyed by source coordinate, so
	// a child links to its copied parent rather than the original.
	provisionalBySource := make(map[coords.CoordID]int64, len(sources))
	out := make([]cache.Tile, 0, len(sources))
	var rootProvisionalID int64

	for _, src := range sources {
		srcTileCoord, err := coords.Parse(src.CoordID)
		if err != nil {
			return nil, 0, fmt.Errorf("cached tile has bad coordinate %q: %w", src.CoordID, err)
		}
		rebased, ok := coords.RebasePath(srcTileCoord, srcCoord, destCoord)
		if !ok {
			continue
		}

		clone := src
		clone.ID = c.arena.nextID()
		clone.CoordID = rebased.ID()
		clone.Depth = rebased.Depth()
		clone.OwnerID = destCoord.UserID
		provisionalBySource[src.CoordID] = clone.ID

		if src.CoordID == sourceTile.CoordID {
			clone.ParentID = rootParentID
			rootProvisionalID = clone.ID
		} else {
			parentCoord, _ := srcTileCoord.Parent()
			parentProvisional, ok := provisionalBySource[parentCoord.ID()]
			if !ok {
				// Parent tile absent from cache: link to the nearest
				// materialized ancestor, ultimately the copied root.
				parentProvisional = rootProvisionalID
			}
			clone.ParentID = parentProvisional
		}
		out = append(out, clone)
	}
	return out, rootProvisionalID, nil
}

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

// DeleteChildrenByType bulk-deletes one category of the tile's cached
// descendants.
//
// Classification is by the path beyond the parent: structural and
// composed use the sign of the first step, executionHistory matches any
// descendant whose suffix contains the composition anchor (direction 0)
// anywhere. All matched tiles are snapshotted and removed as one batch;
// failure restores the entire batch.
func (c *Coordinator) DeleteChildrenByType(ctx context.Context, coordID coords.CoordID, category remote.Category) (int, error) {
	parentCoord, err := coords.Parse(coordID)
	if err != nil {
		return 0, err
	}
	if !category.Valid() {
		return 0, fmt.Errorf("unknown category %q", category)
	}

	var deleted int
	err = c.trackOperation(coordID, OpDelete, func() error {
		if c.remote.DeleteChildren == nil {
			return &NotConfiguredError{Kind: OpDelete}
		}

		matched := c.matchCategory(parentCoord, category)
		if len(matched) == 0 {
			c.emitter.Emit(events.TypeChildrenDeleted, events.ChildrenDeletedData{
				ParentID: coordID, Category: string(category), Deleted: 0,
			})
			return nil
		}

		changeIDs := make([]string, 0, len(matched))
		for _, t := range matched {
			id := change.NewID()
			c.tracker.Track(id, change.NewDelete(t.CoordID, t))
			changeIDs = append(changeIDs, id)
			c.store.Dispatch(cache.RemoveTile{CoordID: t.CoordID})
		}

		err := c.remote.DeleteChildren(ctx, remote.DeleteChildrenRequest{
			ParentID: coordID,
			Category: category,
		})
		if err != nil {
			c.rollbackChanges(changeIDs)
			return fmt.Errorf("remote delete children of %s (%s): %w", coordID, category, err)
		}

		for _, t := range matched {
			c.unpersistItem(ctx, t.ID)
		}
		c.settleChanges(changeIDs)
		deleted = len(matched)

		c.emitter.Emit(events.TypeChildrenDeleted, events.ChildrenDeletedData{
			ParentID: coordID, Category: string(category), Deleted: deleted,
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// matchCategory selects the cached descendants of parent that fall in
// the category.
func (c *Coordinator) matchCategory(parent coords.Coord, category remote.Category) []cache.Tile {
	var out []cache.Tile
	for _, t := range c.store.Descendants(parent.ID()) {
		childCoord, err := coords.Parse(t.CoordID)
		if err != nil {
			continue
		}
		suffix := childCoord.Path[len(parent.Path):]
		if len(suffix) == 0 {
			continue
		}
		if categoryMatches(suffix, category) {
			out = append(out, t)
		}
	}
	return out
}

func categoryMatches(suffix []coords.Direction, category remote.Category) bool {
	switch category {
	case remote.CategoryStructural:
		return suffix[0] > 0
	case remote.CategoryComposed:
		return suffix[0] < 0
	case remote.CategoryExecutionHistory:
		for _, d := range suffix {
			if d == coords.Anchor {
				return true
			}
		}
	}
	return false
}

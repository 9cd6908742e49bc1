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
)

// DeleteItem removes the tile at coordID: optimistic removal with the
// previous snapshot tracked, then the remote delete. On success the
// item's persisted copy is dropped; on failure the snapshot is restored
// and the original error returned.
func (c *Coordinator) DeleteItem(ctx context.Context, coordID coords.CoordID) error {
	if _, err := coords.Parse(coordID); err != nil {
		return err
	}

	return c.trackOperation(coordID, OpDelete, func() error {
		if c.remote.Delete == nil {
			return &NotConfiguredError{Kind: OpDelete}
		}

		prev, ok := c.store.Get(coordID)
		if !ok {
			return &NotFoundError{CoordID: coordID}
		}

		changeID := change.NewID()
		c.tracker.Track(changeID, change.NewDelete(coordID, prev))
		c.store.Dispatch(cache.RemoveTile{CoordID: coordID})

		if err := c.remote.Delete(ctx, coordID); err != nil {
			c.rollbackChanges([]string{changeID})
			return fmt.Errorf("remote delete %s: %w", coordID, err)
		}

		c.unpersistItem(ctx, prev.ID)
		c.tracker.Remove(changeID)

		c.emitter.Emit(events.TypeTileDeleted, events.TileData{
			CoordID: coordID, ItemID: prev.ID, Title: prev.Content.Title,
		})
		return nil
	})
}

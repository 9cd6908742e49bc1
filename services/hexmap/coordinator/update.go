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

// UpdateData is a partial content edit; nil fields keep their value.
type UpdateData struct {
	Title   *string
	Body    *string
	Preview *string
	Link    *string
}

// apply merges d onto content.
func (d UpdateData) apply(content cache.Content) cache.Content {
	if d.Title != nil {
		content.Title = *d.Title
	}
	if d.Body != nil {
		content.Body = *d.Body
	}
	if d.Preview != nil {
		content.Preview = *d.Preview
	}
	if d.Link != nil {
		content.Link = *d.Link
	}
	return content
}

// UpdateItem edits the tile at coordID: the merged tile is dispatched
// optimistically with the previous snapshot tracked, then the remote
// result finalizes it. On failure the snapshot is re-dispatched and the
// original error returned.
func (c *Coordinator) UpdateItem(ctx context.Context, coordID coords.CoordID, data UpdateData) (*cache.Tile, error) {
	coord, err := coords.Parse(coordID)
	if err != nil {
		return nil, err
	}

	var updated *cache.Tile
	err = c.trackOperation(coordID, OpUpdate, func() error {
		if c.remote.Update == nil {
			return &NotConfiguredError{Kind: OpUpdate}
		}

		prev, ok := c.store.Get(coordID)
		if !ok {
			return &NotFoundError{CoordID: coordID}
		}

		optimistic := prev
		optimistic.Content = data.apply(prev.Content)
		c.store.Dispatch(cache.LoadRegion{Tiles: []cache.Tile{optimistic}, Center: coordID})

		changeID := change.NewID()
		c.tracker.Track(changeID, change.NewUpdate(coordID, prev))

		authoritative, err := c.remote.Update(ctx, remote.UpdateRequest{
			CoordID: coordID,
			Content: optimistic.Content,
		})
		if err != nil {
			c.rollbackChanges([]string{changeID})
			return fmt.Errorf("remote update %s: %w", coordID, err)
		}

		final := normalizeTile(*authoritative, coord)
		c.store.Dispatch(cache.LoadRegion{Tiles: []cache.Tile{final}, Center: coordID})
		c.tracker.Remove(changeID)
		c.persistTile(ctx, final)

		c.emitter.Emit(events.TypeTileUpdated, events.TileData{
			CoordID: coordID, ItemID: final.ID, Title: final.Content.Title,
		})
		updated = &final
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

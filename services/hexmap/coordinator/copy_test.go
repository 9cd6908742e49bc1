// Copyright (C) 2026 Hexframe
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package coordinator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Diplow/hexframe-sub004/services/hexmap/cache"
	"github.com/Diplow/hexframe-sub004/services/hexmap/coords"
	"github.com/Diplow/hexframe-sub004/services/hexmap/remote"
)

func TestCopyItem(t *testing.T) {
	ctx := context.Background()

	seedSubtree := func(f *fixture) {
		f.seed(
			seedTile("1,0", 1, 0, "root"),
			seedTile("1,0:1", 5, 1, "src"),
			seedTile("1,0:1,2", 6, 5, "child"),
			seedTile("1,0:1,2,3", 7, 6, "grandchild"),
		)
	}

	t.Run("remaps parent ids so no reference dangles", func(t *testing.T) {
		f := newFixture(t, remote.Mutations{
			Copy: func(_ context.Context, req remote.CopyRequest) (*cache.Tile, error) {
				return &cache.Tile{ID: 100}, nil
			},
		})
		seedSubtree(f)

		root, err := f.co.CopyItem(ctx, "1,0:1", "1,0:4", 0)
		require.NoError(t, err)
		assert.Equal(t, int64(100), root.ID)
		assert.Equal(t, int64(1), root.ParentID, "dest parent derived from cached root")

		state := f.store.GetState().TilesByID
		copied := map[coords.CoordID]cache.Tile{}
		ids := map[int64]bool{1: true} // dest parent counts as resolvable
		for id, tile := range state {
			if id == "1,0:4" || coords.IsDescendant(id, "1,0:4") {
				copied[id] = tile
				ids[tile.ID] = true
			}
		}
		require.Len(t, copied, 3)

		// Every copied tile's parent reference resolves inside the
		// copied result (or to the destination parent).
		for id, tile := range copied {
			assert.True(t, ids[tile.ParentID],
				"tile %s has dangling parent id %d", id, tile.ParentID)
		}
		assert.Equal(t, int64(100), copied["1,0:4,2"].ParentID,
			"direct child remapped to the authoritative root id")

		// The source subtree is untouched.
		assert.Equal(t, int64(5), state["1,0:1"].ID)
		assert.Equal(t, int64(6), state["1,0:1,2"].ID)
		assert.Equal(t, 0, f.co.Tracker().Len())
	})

	t.Run("rejects copying onto itself", func(t *testing.T) {
		f := newFixture(t, remote.Mutations{})
		seedSubtree(f)

		_, err := f.co.CopyItem(ctx, "1,0:1", "1,0:1", 0)
		assert.ErrorIs(t, err, ErrSelfCopy)
	})

	t.Run("leaves occupied destination coordinates untouched", func(t *testing.T) {
		f := newFixture(t, remote.Mutations{
			Copy: func(context.Context, remote.CopyRequest) (*cache.Tile, error) {
				t.Fatal("remote copy must not run")
				return nil, nil
			},
		})
		seedSubtree(f)
		// Occupies the coordinate the copied child would land on.
		f.seed(seedTile("1,0:4,2", 9, 1, "bystander"))
		before := f.store.GetState().TilesByID

		_, err := f.co.CopyItem(ctx, "1,0:1", "1,0:4", 0)
		assert.ErrorIs(t, err, ErrCoordOccupied)

		assert.Equal(t, before, f.store.GetState().TilesByID)
		assert.Equal(t, 0, f.co.Tracker().Len())
	})

	t.Run("removes every optimistic tile on remote failure", func(t *testing.T) {
		f := newFixture(t, remote.Mutations{
			Copy: func(context.Context, remote.CopyRequest) (*cache.Tile, error) {
				return nil, errors.New("boom")
			},
		})
		seedSubtree(f)
		before := f.store.GetState().TilesByID

		_, err := f.co.CopyItem(ctx, "1,0:1", "1,0:4", 0)
		require.Error(t, err)

		assert.Equal(t, before, f.store.GetState().TilesByID)
		assert.Equal(t, 0, f.co.Tracker().Len())
	})

	t.Run("requires a resolvable destination parent", func(t *testing.T) {
		f := newFixture(t, remote.Mutations{
			Copy: func(context.Context, remote.CopyRequest) (*cache.Tile, error) {
				t.Fatal("remote copy must not run")
				return nil, nil
			},
		})
		f.seed(seedTile("1,0:1", 5, 1, "src"))

		// Parent of 2,0:3 is the uncached root 2,0.
		_, err := f.co.CopyItem(ctx, "1,0:1", "2,0:3", 0)
		assert.ErrorIs(t, err, ErrInvalidDestinationParentID)
	})

	t.Run("explicit destination parent wins", func(t *testing.T) {
		var gotReq remote.CopyRequest
		f := newFixture(t, remote.Mutations{
			Copy: func(_ context.Context, req remote.CopyRequest) (*cache.Tile, error) {
				gotReq = req
				return &cache.Tile{ID: 100}, nil
			},
		})
		f.seed(seedTile("1,0:1", 5, 1, "src"))

		_, err := f.co.CopyItem(ctx, "1,0:1", "2,0:3", 77)
		require.NoError(t, err)
		assert.Equal(t, int64(77), gotReq.DestParentID)
	})
}

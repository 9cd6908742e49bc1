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

	"github.com/Diplow/hexframe-sub004/services/hexmap/coords"
	"github.com/Diplow/hexframe-sub004/services/hexmap/remote"
)

func TestDeleteChildrenByType(t *testing.T) {
	ctx := context.Background()

	okDelete := func(context.Context, remote.DeleteChildrenRequest) error { return nil }

	// Parent with a structural child, a composed child, and an
	// execution-history tile under the structural child.
	seedFamily := func(f *fixture) {
		f.seed(
			seedTile("1,0", 1, 0, "root"),
			seedTile("1,0:1", 2, 1, "structural"),
			seedTile("1,0:-2", 3, 1, "composed"),
			seedTile("1,0:1,0", 4, 2, "history"),
		)
	}

	t.Run("executionHistory matches only anchor-bearing paths", func(t *testing.T) {
		f := newFixture(t, remote.Mutations{DeleteChildren: okDelete})
		seedFamily(f)

		n, err := f.co.DeleteChildrenByType(ctx, "1,0", remote.CategoryExecutionHistory)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		state := f.store.GetState().TilesByID
		assert.NotContains(t, state, coords.CoordID("1,0:1,0"))
		assert.Contains(t, state, coords.CoordID("1,0:1"))
		assert.Contains(t, state, coords.CoordID("1,0:-2"))
	})

	t.Run("structural matches positive first steps", func(t *testing.T) {
		f := newFixture(t, remote.Mutations{DeleteChildren: okDelete})
		seedFamily(f)

		n, err := f.co.DeleteChildrenByType(ctx, "1,0", remote.CategoryStructural)
		require.NoError(t, err)
		assert.Equal(t, 2, n, "structural child and its subtree both start with a positive step")

		state := f.store.GetState().TilesByID
		assert.NotContains(t, state, coords.CoordID("1,0:1"))
		assert.NotContains(t, state, coords.CoordID("1,0:1,0"))
		assert.Contains(t, state, coords.CoordID("1,0:-2"))
	})

	t.Run("composed matches negative first steps", func(t *testing.T) {
		f := newFixture(t, remote.Mutations{DeleteChildren: okDelete})
		seedFamily(f)

		n, err := f.co.DeleteChildrenByType(ctx, "1,0", remote.CategoryComposed)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.NotContains(t, f.store.GetState().TilesByID, coords.CoordID("1,0:-2"))
	})

	t.Run("failure restores the whole batch", func(t *testing.T) {
		f := newFixture(t, remote.Mutations{
			DeleteChildren: func(context.Context, remote.DeleteChildrenRequest) error {
				return errors.New("boom")
			},
		})
		seedFamily(f)
		before := f.store.GetState().TilesByID

		_, err := f.co.DeleteChildrenByType(ctx, "1,0", remote.CategoryStructural)
		require.Error(t, err)

		assert.Equal(t, before, f.store.GetState().TilesByID)
		assert.Equal(t, 0, f.co.Tracker().Len())
	})

	t.Run("no matches skips the remote", func(t *testing.T) {
		f := newFixture(t, remote.Mutations{
			DeleteChildren: func(context.Context, remote.DeleteChildrenRequest) error {
				t.Fatal("remote must not run with nothing to delete")
				return nil
			},
		})
		f.seed(seedTile("1,0", 1, 0, "root"))

		n, err := f.co.DeleteChildrenByType(ctx, "1,0", remote.CategoryComposed)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("rejects unknown categories", func(t *testing.T) {
		f := newFixture(t, remote.Mutations{DeleteChildren: okDelete})
		_, err := f.co.DeleteChildrenByType(ctx, "1,0", remote.Category("mystery"))
		assert.Error(t, err)
	})
}

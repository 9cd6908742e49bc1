// Copyright (C) 2026 Hexframe
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cache

import (
	"sync"
	"testing"

	"github.com/Diplow/hexframe-sub004/services/hexmap/coords"
)

func tile(id coords.CoordID, remoteID int64) Tile {
	c := coords.MustParse(id)
	return Tile{
		CoordID: id,
		ID:      remoteID,
		OwnerID: c.UserID,
		Depth:   c.Depth(),
		Content: Content{Title: string(id)},
	}
}

func TestStore_Dispatch(t *testing.T) {
	t.Run("load region inserts and overwrites", func(t *testing.T) {
		s := NewStore()
		s.Dispatch(LoadRegion{Tiles: []Tile{tile("1,0", 10), tile("1,0:1", 11)}, Center: "1,0", MaxDepth: 1})

		if s.Len() != 2 {
			t.Fatalf("expected 2 tiles, got %d", s.Len())
		}

		updated := tile("1,0:1", 11)
		updated.Content.Title = "renamed"
		s.Dispatch(LoadRegion{Tiles: []Tile{updated}, Center: "1,0:1"})

		got, ok := s.Get("1,0:1")
		if !ok {
			t.Fatal("tile missing after overwrite")
		}
		if got.Content.Title != "renamed" {
			t.Errorf("expected overwrite, got title %q", got.Content.Title)
		}
	})

	t.Run("remove tile deletes only that key", func(t *testing.T) {
		s := NewStore()
		s.Dispatch(LoadRegion{Tiles: []Tile{tile("1,0", 10), tile("1,0:1", 11)}, Center: "1,0"})
		s.Dispatch(RemoveTile{CoordID: "1,0:1"})

		if _, ok := s.Get("1,0:1"); ok {
			t.Error("removed tile still present")
		}
		if _, ok := s.Get("1,0"); !ok {
			t.Error("unrelated tile removed")
		}
	})

	t.Run("remove of absent key is a no-op", func(t *testing.T) {
		s := NewStore()
		s.Dispatch(RemoveTile{CoordID: "1,0:5"})
		if s.Len() != 0 {
			t.Errorf("expected empty store, got %d tiles", s.Len())
		}
	})
}

func TestStore_GetStateIsSnapshot(t *testing.T) {
	s := NewStore()
	s.Dispatch(LoadRegion{Tiles: []Tile{tile("1,0", 10)}, Center: "1,0"})

	state := s.GetState()
	s.Dispatch(RemoveTile{CoordID: "1,0"})

	if _, ok := state.TilesByID["1,0"]; !ok {
		t.Error("snapshot mutated by later dispatch")
	}
}

func TestStore_Descendants(t *testing.T) {
	s := NewStore()
	s.Dispatch(LoadRegion{Tiles: []Tile{
		tile("1,0", 1),
		tile("1,0:1", 2),
		tile("1,0:1,3", 3),
		tile("1,0:2", 4),
	}, Center: "1,0"})

	got := s.Descendants("1,0:1")
	if len(got) != 1 || got[0].CoordID != "1,0:1,3" {
		t.Errorf("expected only 1,0:1,3, got %v", got)
	}
}

func TestStore_ConcurrentDispatch(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func(d int) {
			defer wg.Done()
			id := coords.New(1, 0, coords.Direction(d+1)).ID()
			for j := 0; j < 100; j++ {
				s.Dispatch(LoadRegion{Tiles: []Tile{tile(id, int64(d))}, Center: id})
				s.GetState()
			}
		}(i)
	}
	wg.Wait()

	if s.Len() != 6 {
		t.Errorf("expected 6 tiles, got %d", s.Len())
	}
}

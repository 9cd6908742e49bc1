// Copyright (C) 2026 Hexframe
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package change

import (
	"sync"
	"testing"

	"github.com/Diplow/hexframe-sub004/services/hexmap/cache"
)

func TestNewID_UniqueUnderConcurrency(t *testing.T) {
	const n = 2000
	ids := make(chan string, n)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < n/8; j++ {
				ids <- NewID()
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool, n)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate change id %q", id)
		}
		seen[id] = true
	}
}

func TestTracker(t *testing.T) {
	prev := cache.Tile{CoordID: "1,0:1", ID: 7}

	t.Run("track get remove", func(t *testing.T) {
		tr := NewTracker()
		id := NewID()
		tr.Track(id, NewUpdate("1,0:1", prev))

		ch, ok := tr.Get(id)
		if !ok {
			t.Fatal("tracked change not found")
		}
		if ch.Kind != KindUpdate || ch.Prev == nil || ch.Prev.ID != 7 {
			t.Errorf("unexpected change %+v", ch)
		}

		tr.Remove(id)
		if _, ok := tr.Get(id); ok {
			t.Error("removed change still present")
		}
		if tr.Len() != 0 {
			t.Errorf("expected empty tracker, got %d", tr.Len())
		}
	})

	t.Run("create changes carry no snapshot", func(t *testing.T) {
		ch := NewCreate("1,0:1", "1,0:1,2")
		if ch.Prev != nil {
			t.Error("create change should not carry a snapshot")
		}
		if len(ch.CoordIDs) != 2 {
			t.Errorf("expected 2 coord ids, got %d", len(ch.CoordIDs))
		}
	})

	t.Run("all returns a copy", func(t *testing.T) {
		tr := NewTracker()
		id := NewID()
		tr.Track(id, NewDelete("1,0:1", prev))

		all := tr.All()
		delete(all, id)
		if tr.Len() != 1 {
			t.Error("All exposed internal map")
		}
	})
}

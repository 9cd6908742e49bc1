// Copyright (C) 2026 Hexframe
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package events

import (
	"testing"
)

func TestEmitter_SubscribeAndEmit(t *testing.T) {
	t.Run("delivers to matching subscribers only", func(t *testing.T) {
		e := NewEmitter()

		var created, all []Type
		e.Subscribe(func(ev *Event) { created = append(created, ev.Type) }, TypeTileCreated)
		e.Subscribe(func(ev *Event) { all = append(all, ev.Type) })

		e.Emit(TypeTileCreated, TileData{CoordID: "1,0:1", ItemID: 1})
		e.Emit(TypeTileDeleted, TileData{CoordID: "1,0:1", ItemID: 1})

		if len(created) != 1 || created[0] != TypeTileCreated {
			t.Errorf("filtered subscriber got %v", created)
		}
		if len(all) != 2 {
			t.Errorf("unfiltered subscriber got %v", all)
		}
	})

	t.Run("unsubscribe stops delivery", func(t *testing.T) {
		e := NewEmitter()

		var n int
		id := e.Subscribe(func(ev *Event) { n++ })
		e.Emit(TypeTileCreated, nil)

		if !e.Unsubscribe(id) {
			t.Fatal("Unsubscribe reported missing subscription")
		}
		e.Emit(TypeTileCreated, nil)

		if n != 1 {
			t.Errorf("expected 1 delivery, got %d", n)
		}
		if e.Unsubscribe(id) {
			t.Error("second Unsubscribe should report false")
		}
	})

	t.Run("panicking handler does not block others", func(t *testing.T) {
		e := NewEmitter()

		e.Subscribe(func(ev *Event) { panic("bad listener") })
		var ok bool
		e.Subscribe(func(ev *Event) { ok = true })

		e.Emit(TypeOperationStarted, OperationData{CoordID: "1,0", Kind: "update"})

		if !ok {
			t.Error("second handler not invoked after panic in first")
		}
	})
}

func TestEmitter_ReplayBuffer(t *testing.T) {
	e := NewEmitter(WithBufferSize(2))

	e.Emit(TypeTileCreated, nil)
	e.Emit(TypeTileUpdated, nil)
	e.Emit(TypeTileDeleted, nil)

	recent := e.Recent(0)
	if len(recent) != 2 {
		t.Fatalf("expected buffer capped at 2, got %d", len(recent))
	}
	if recent[0].Type != TypeTileUpdated || recent[1].Type != TypeTileDeleted {
		t.Errorf("unexpected replay order: %v, %v", recent[0].Type, recent[1].Type)
	}

	one := e.Recent(1)
	if len(one) != 1 || one[0].Type != TypeTileDeleted {
		t.Errorf("Recent(1) returned %v", one)
	}
}

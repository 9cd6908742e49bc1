// Copyright (C) 2026 Hexframe
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package coordinator

import (
	"github.com/Diplow/hexframe-sub004/services/hexmap/cache"
	"github.com/Diplow/hexframe-sub004/services/hexmap/change"
)

// RollbackChange undoes one tracked change by kind: a create is undone by
// removing its coordinates, an update or delete by restoring the previous
// snapshot. The change record is always removed afterward, settling the
// edit.
func (c *Coordinator) RollbackChange(changeID string) {
	ch, ok := c.tracker.Get(changeID)
	if !ok {
		return
	}
	c.applyRollback(ch)
	c.tracker.Remove(changeID)
	rollbacksTotal.Inc()
}

// RollbackAll undoes every in-flight change. Used when the client needs
// to abandon all optimistic state at once, e.g. on session teardown.
func (c *Coordinator) RollbackAll() {
	for id := range c.tracker.All() {
		c.RollbackChange(id)
	}
}

// rollbackChanges undoes changes in reverse tracking order. Undoing
// newest-first matters when one coordinate appears in two changes, as in
// a swap where a relocated child lands on a key another child vacated:
// the create must be removed before the delete's snapshot is restored.
func (c *Coordinator) rollbackChanges(changeIDs []string) {
	for i := len(changeIDs) - 1; i >= 0; i-- {
		c.RollbackChange(changeIDs[i])
	}
}

func (c *Coordinator) applyRollback(ch change.Change) {
	switch ch.Kind {
	case change.KindCreate:
		for _, id := range ch.CoordIDs {
			c.store.Dispatch(cache.RemoveTile{CoordID: id})
		}
	case change.KindUpdate, change.KindDelete:
		if ch.Prev != nil {
			c.store.Dispatch(cache.LoadRegion{
				Tiles:  []cache.Tile{*ch.Prev},
				Center: ch.Prev.CoordID,
			})
		}
	}
	c.logger.Debug("rolled back change", "kind", ch.Kind, "coords", ch.CoordIDs)
}

// settleChanges removes change records after a successful finalize.
func (c *Coordinator) settleChanges(changeIDs []string) {
	for _, id := range changeIDs {
		c.tracker.Remove(id)
	}
}

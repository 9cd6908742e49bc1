// Copyright (C) 2026 Hexframe
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package events provides the notification bus for map mutations.
//
// Events let the UI layer observe operation lifecycles and domain changes
// without coupling to the coordinator. The bus is fire-and-forget: the
// absence of a listener is never an error, and a misbehaving listener
// cannot affect the mutation pipeline.
//
// Thread Safety:
//
//	All types in this package are designed for concurrent use.
package events

import (
	"time"

	"github.com/Diplow/hexframe-sub004/services/hexmap/coords"
)

// Type identifies the kind of event.
type Type string

const (
	// TypeOperationStarted is emitted when a mutation acquires its
	// pending-operation slot, before any optimistic dispatch.
	TypeOperationStarted Type = "operation.started"

	// TypeOperationCompleted is emitted when a mutation releases its
	// slot, on success and on failure alike.
	TypeOperationCompleted Type = "operation.completed"

	// TypeTileCreated is emitted after a create finalizes.
	TypeTileCreated Type = "tile.created"

	// TypeTileUpdated is emitted after an update finalizes.
	TypeTileUpdated Type = "tile.updated"

	// TypeTileDeleted is emitted after a delete finalizes.
	TypeTileDeleted Type = "tile.deleted"

	// TypeTileMoved is emitted after a move (unoccupied target) finalizes.
	TypeTileMoved Type = "tile.moved"

	// TypeTilesSwapped is emitted after a swap (occupied target) finalizes.
	TypeTilesSwapped Type = "tiles.swapped"

	// TypeItemCopied is emitted after a deep copy finalizes.
	TypeItemCopied Type = "item.copied"

	// TypeChildrenDeleted is emitted after a bulk category delete finalizes.
	TypeChildrenDeleted Type = "children.deleted"
)

// Event is one bus notification.
//
// Events are immutable after creation. Data holds one of the typed data
// structs below, matching the event's Type.
type Event struct {
	// ID is a unique identifier for this event.
	ID string `json:"id"`

	// Type identifies the kind of event.
	Type Type `json:"type"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Data contains event-specific data: OperationData for lifecycle
	// events, or one of the domain data structs.
	Data any `json:"data,omitempty"`
}

// OperationData is the data for operation lifecycle events.
type OperationData struct {
	// CoordID is the tile the operation holds (moves emit one event per
	// held coordinate).
	CoordID coords.CoordID `json:"coordId"`

	// Kind is the mutation kind: create, update, delete, move or copy.
	Kind string `json:"kind"`

	// OperationID disambiguates overlapping move legs.
	OperationID string `json:"operationId"`

	// Success is set on completion events only.
	Success bool `json:"success,omitempty"`
}

// TileData is the data for tile.created, tile.updated and tile.deleted.
type TileData struct {
	CoordID coords.CoordID `json:"coordId"`
	ItemID  int64          `json:"itemId"`
	Title   string         `json:"title,omitempty"`
}

// MoveData is the data for tile.moved and tiles.swapped.
type MoveData struct {
	SourceID coords.CoordID `json:"sourceId"`
	TargetID coords.CoordID `json:"targetId"`
	ItemID   int64          `json:"itemId,omitempty"`
	Swapped  bool           `json:"swapped"`
}

// CopyData is the data for item.copied.
type CopyData struct {
	SourceID coords.CoordID `json:"sourceId"`
	DestID   coords.CoordID `json:"destId"`
	ItemID   int64          `json:"itemId"`
	Copied   int            `json:"copied"`
}

// ChildrenDeletedData is the data for children.deleted.
type ChildrenDeletedData struct {
	ParentID coords.CoordID `json:"parentId"`
	Category string         `json:"category"`
	Deleted  int            `json:"deleted"`
}

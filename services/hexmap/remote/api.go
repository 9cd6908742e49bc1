// Copyright (C) 2026 Hexframe
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package remote defines the contract with the asynchronous map authority.
//
// The coordinator never talks to a server directly; it is handed a
// Mutations value, one injected async function per edit kind. Any field
// may be left nil, in which case the corresponding coordinator operation
// fails with its not-configured error before touching the cache. Client
// (http.go) is the standard HTTP implementation of every function.
//
// There is no cancellation or timeout support in the coordinator itself;
// callers wanting timeouts wrap these functions.
package remote

import (
	"context"

	"github.com/Diplow/hexframe-sub004/services/hexmap/cache"
	"github.com/Diplow/hexframe-sub004/services/hexmap/coords"
)

// Category selects which children a bulk delete targets.
type Category string

const (
	// CategoryStructural matches descendants whose first step below the
	// parent is a positive direction.
	CategoryStructural Category = "structural"

	// CategoryComposed matches descendants whose first step below the
	// parent is a negative direction.
	CategoryComposed Category = "composed"

	// CategoryExecutionHistory matches descendants whose path below the
	// parent contains the composition anchor (direction 0) anywhere.
	CategoryExecutionHistory Category = "executionHistory"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryStructural, CategoryComposed, CategoryExecutionHistory:
		return true
	}
	return false
}

// CreateRequest asks the authority to create one item.
type CreateRequest struct {
	CoordID  coords.CoordID `json:"coordId"`
	ParentID int64          `json:"parentId,omitempty"`
	Content  cache.Content  `json:"content"`
}

// UpdateRequest replaces an item's content.
type UpdateRequest struct {
	CoordID coords.CoordID `json:"coordId"`
	Content cache.Content  `json:"content"`
}

// MoveRequest relocates (or swaps) items between two coordinates.
type MoveRequest struct {
	SourceID coords.CoordID `json:"sourceId"`
	TargetID coords.CoordID `json:"targetId"`
}

// MoveResult is the authority's answer to a move or swap.
//
// ModifiedItems are addressed by their new coordinates; recovering the
// stale cache keys from them is the coordinator's job.
type MoveResult struct {
	MovedItemID   int64        `json:"movedItemId"`
	ModifiedItems []cache.Tile `json:"modifiedItems"`
}

// CopyRequest deep-copies the subtree at SourceID to DestID.
type CopyRequest struct {
	SourceID     coords.CoordID `json:"sourceId"`
	DestID       coords.CoordID `json:"destId"`
	DestParentID int64          `json:"destParentId,omitempty"`
}

// DeleteChildrenRequest bulk-deletes one category of children.
type DeleteChildrenRequest struct {
	ParentID coords.CoordID `json:"parentId"`
	Category Category       `json:"category"`
}

// CreateFunc creates an item and returns the authoritative tile.
type CreateFunc func(ctx context.Context, req CreateRequest) (*cache.Tile, error)

// UpdateFunc updates an item and returns the authoritative tile.
type UpdateFunc func(ctx context.Context, req UpdateRequest) (*cache.Tile, error)

// DeleteFunc deletes the item at the coordinate.
type DeleteFunc func(ctx context.Context, id coords.CoordID) error

// MoveFunc moves or swaps between two coordinates.
type MoveFunc func(ctx context.Context, req MoveRequest) (*MoveResult, error)

// CopyFunc deep-copies a subtree and returns the authoritative root only;
// copied descendants are not echoed back.
type CopyFunc func(ctx context.Context, req CopyRequest) (*cache.Tile, error)

// DeleteChildrenFunc bulk-deletes one category of a tile's children.
type DeleteChildrenFunc func(ctx context.Context, req DeleteChildrenRequest) error

// FetchComposedFunc fetches the authoritative composed-children view of a
// parent tile, used to refresh the cache after a composed-address create.
type FetchComposedFunc func(ctx context.Context, parent coords.CoordID) ([]cache.Tile, error)

// Mutations bundles the injected remote-call functions.
type Mutations struct {
	Create         CreateFunc
	Update         UpdateFunc
	Delete         DeleteFunc
	Move           MoveFunc
	Copy           CopyFunc
	DeleteChildren DeleteChildrenFunc
	FetchComposed  FetchComposedFunc
}

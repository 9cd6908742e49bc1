// Copyright (C) 2026 Hexframe
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package coordinator

import (
	"errors"
	"fmt"

	"github.com/Diplow/hexframe-sub004/services/hexmap/coords"
)

// Sentinel errors for the mutation coordinator.
var (
	// ErrConcurrentOperation indicates the tile already has a pending
	// edit. Recoverable; the caller should retry after it settles.
	ErrConcurrentOperation = errors.New("operation already in progress")

	// ErrMutationNotConfigured indicates the remote function for this
	// edit kind was not injected. Fatal to the call.
	ErrMutationNotConfigured = errors.New("mutation not configured")

	// ErrItemNotFound indicates the coordinate is absent from the cache
	// where the edit expected a tile.
	ErrItemNotFound = errors.New("item not found in cache")

	// ErrInvalidParentID indicates a missing or non-authoritative parent
	// reference on create.
	ErrInvalidParentID = errors.New("invalid parent id")

	// ErrInvalidDestinationParentID indicates a missing or
	// non-authoritative parent reference on copy.
	ErrInvalidDestinationParentID = errors.New("invalid destination parent id")

	// ErrSelfCopy indicates a copy whose source equals its destination.
	ErrSelfCopy = errors.New("cannot copy item onto itself")

	// ErrCoordOccupied indicates a create or copy target coordinate that
	// already holds a cached tile. Dispatching over it would make the
	// pre-existing tile unrecoverable on rollback, so the edit is
	// rejected before anything optimistic happens.
	ErrCoordOccupied = errors.New("coordinate already occupied")
)

// ConcurrentOperationError names the busy tile and its in-progress kind.
type ConcurrentOperationError struct {
	CoordID    coords.CoordID
	InProgress OpKind
}

func (e *ConcurrentOperationError) Error() string {
	return fmt.Sprintf("tile %s already has a pending %s operation", e.CoordID, e.InProgress)
}

func (e *ConcurrentOperationError) Unwrap() error { return ErrConcurrentOperation }

// NotConfiguredError names the missing remote function.
type NotConfiguredError struct {
	Kind OpKind
}

func (e *NotConfiguredError) Error() string {
	return fmt.Sprintf("no remote %s function configured", e.Kind)
}

func (e *NotConfiguredError) Unwrap() error { return ErrMutationNotConfigured }

// NotFoundError names the missing coordinate.
type NotFoundError struct {
	CoordID coords.CoordID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no tile cached at %s", e.CoordID)
}

func (e *NotFoundError) Unwrap() error { return ErrItemNotFound }

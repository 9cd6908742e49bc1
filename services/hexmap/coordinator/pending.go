// Copyright (C) 2026 Hexframe
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package coordinator

import (
	"time"

	"github.com/google/uuid"

	"github.com/Diplow/hexframe-sub004/services/hexmap/coords"
	"github.com/Diplow/hexframe-sub004/services/hexmap/events"
)

// OpKind classifies a pending mutation.
type OpKind string

const (
	OpCreate OpKind = "create"
	OpUpdate OpKind = "update"
	OpDelete OpKind = "delete"
	OpMove   OpKind = "move"
	OpCopy   OpKind = "copy"
)

// pendingOp records one in-flight operation on a coordinate.
//
// Invariant: at most one pendingOp per coordinate at any instant. A move
// or swap registers under both coordinates with the same operation id.
type pendingOp struct {
	kind      OpKind
	opID      string
	startedAt time.Time
}

// PendingOperation is the read-only view returned by Pending.
type PendingOperation struct {
	CoordID     coords.CoordID
	Kind        OpKind
	OperationID string
	StartedAt   time.Time
}

// Pending returns the operations currently holding coordinates.
func (c *Coordinator) Pending() []PendingOperation {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]PendingOperation, 0, len(c.pending))
	for id, op := range c.pending {
		out = append(out, PendingOperation{
			CoordID:     id,
			Kind:        op.kind,
			OperationID: op.opID,
			StartedAt:   op.startedAt,
		})
	}
	return out
}

// trackOperation runs fn while holding coordID's pending-operation slot.
//
// If the coordinate already has a pending operation, the call fails
// immediately with a ConcurrentOperationError naming the in-progress
// kind: fn is never started and nothing is mutated. Otherwise the slot
// is registered, an operation.started event is emitted, fn runs, and a
// deferred cleanup releases the slot and emits operation.completed with
// the success flag, on success and failure alike.
//
// The check and registration are one atomic step under the coordinator's
// mutex, so the fail-fast contract holds under parallel callers.
func (c *Coordinator) trackOperation(coordID coords.CoordID, kind OpKind, fn func() error) error {
	opID := uuid.NewString()

	c.mu.Lock()
	if existing, ok := c.pending[coordID]; ok {
		c.mu.Unlock()
		concurrentRejections.Inc()
		return &ConcurrentOperationError{CoordID: coordID, InProgress: existing.kind}
	}
	start := time.Now()
	c.pending[coordID] = pendingOp{kind: kind, opID: opID, startedAt: start}
	c.mu.Unlock()
	pendingOperations.Inc()

	c.emitter.Emit(events.TypeOperationStarted, events.OperationData{
		CoordID: coordID, Kind: string(kind), OperationID: opID,
	})

	var err error
	defer func() {
		c.release(coordID, opID)
		c.recordOutcome(kind, start, err)
		c.emitCompleted(coordID, kind, opID, err)
	}()

	err = fn()
	return err
}

// trackMoveOperation runs fn while holding both coordinates of a move
// under one shared operation id.
//
// Both slots are checked and registered atomically; if either coordinate
// is busy, neither is registered. On cleanup each slot is released only
// if its stored operation id still matches. The mutex already prevents a
// newer operation from slipping in between, but the id match keeps the
// release correct even if the guard is ever loosened.
func (c *Coordinator) trackMoveOperation(sourceID, targetID coords.CoordID, fn func() error) error {
	opID := uuid.NewString()

	c.mu.Lock()
	for _, id := range []coords.CoordID{sourceID, targetID} {
		if existing, ok := c.pending[id]; ok {
			c.mu.Unlock()
			concurrentRejections.Inc()
			return &ConcurrentOperationError{CoordID: id, InProgress: existing.kind}
		}
	}
	start := time.Now()
	op := pendingOp{kind: OpMove, opID: opID, startedAt: start}
	c.pending[sourceID] = op
	c.pending[targetID] = op
	c.mu.Unlock()
	pendingOperations.Add(2)

	for _, id := range []coords.CoordID{sourceID, targetID} {
		c.emitter.Emit(events.TypeOperationStarted, events.OperationData{
			CoordID: id, Kind: string(OpMove), OperationID: opID,
		})
	}

	var err error
	defer func() {
		c.release(sourceID, opID)
		c.release(targetID, opID)
		c.recordOutcome(OpMove, start, err)
		c.emitCompleted(sourceID, OpMove, opID, err)
		c.emitCompleted(targetID, OpMove, opID, err)
	}()

	err = fn()
	return err
}

// release removes the slot only if the operation id still matches.
func (c *Coordinator) release(coordID coords.CoordID, opID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.pending[coordID]; ok && cur.opID == opID {
		delete(c.pending, coordID)
		pendingOperations.Dec()
	}
}

// recordOutcome records metrics once per operation.
func (c *Coordinator) recordOutcome(kind OpKind, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	mutationsTotal.WithLabelValues(string(kind), outcome).Inc()
	mutationDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
}

// emitCompleted emits the completion event for one held coordinate.
func (c *Coordinator) emitCompleted(coordID coords.CoordID, kind OpKind, opID string, err error) {
	c.emitter.Emit(events.TypeOperationCompleted, events.OperationData{
		CoordID: coordID, Kind: string(kind), OperationID: opID, Success: err == nil,
	})
}

// Copyright (C) 2026 Hexframe
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Diplow/hexframe-sub004/services/hexmap/cache"
	"github.com/Diplow/hexframe-sub004/services/hexmap/coordinator"
	"github.com/Diplow/hexframe-sub004/services/hexmap/coords"
	"github.com/Diplow/hexframe-sub004/services/hexmap/remote"
)

// ServiceVersion is the hexmap service version.
const ServiceVersion = "0.1.0"

// Handlers contains the HTTP handlers for the hexmap service.
type Handlers struct {
	co     *coordinator.Coordinator
	logger *slog.Logger
}

// NewHandlers creates handlers backed by the given coordinator.
func NewHandlers(co *coordinator.Coordinator, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{co: co, logger: logger}
}

// ErrorResponse is the JSON error body for all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// CreateItemRequest is the body for POST /v1/items.
type CreateItemRequest struct {
	CoordID  string        `json:"coordId" binding:"required"`
	ParentID int64         `json:"parentId"`
	Content  cache.Content `json:"content"`
}

// UpdateItemRequest is the body for PUT /v1/items. Nil fields keep
// their current value.
type UpdateItemRequest struct {
	Title   *string `json:"title"`
	Body    *string `json:"body"`
	Preview *string `json:"preview"`
	Link    *string `json:"link"`
}

// MoveItemRequest is the body for POST /v1/items/move.
type MoveItemRequest struct {
	SourceID string `json:"sourceId" binding:"required"`
	TargetID string `json:"targetId" binding:"required"`
}

// CopyItemRequest is the body for POST /v1/items/copy.
type CopyItemRequest struct {
	SourceID     string `json:"sourceId" binding:"required"`
	DestID       string `json:"destId" binding:"required"`
	DestParentID int64  `json:"destParentId"`
}

// DeleteChildrenResponse reports a bulk category deletion.
type DeleteChildrenResponse struct {
	Deleted int `json:"deleted"`
}

// StateResponse is the cache snapshot returned by GET /v1/state.
type StateResponse struct {
	Tiles map[coords.CoordID]cache.Tile `json:"tiles"`
}

// HandleCreateItem handles POST /v1/items.
func (h *Handlers) HandleCreateItem(c *gin.Context) {
	logger := h.requestLogger(c, "HandleCreateItem")

	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "INVALID_REQUEST"})
		return
	}

	tile, err := h.co.CreateItem(c.Request.Context(), coords.CoordID(req.CoordID), coordinator.CreateData{
		Content:  req.Content,
		ParentID: req.ParentID,
	})
	if err != nil {
		h.respondError(c, logger, err, "CREATE_FAILED")
		return
	}

	logger.Info("item created", "coord_id", req.CoordID, "item_id", tile.ID)
	c.JSON(http.StatusCreated, tile)
}

// HandleUpdateItem handles PUT /v1/items?coord=.
func (h *Handlers) HandleUpdateItem(c *gin.Context) {
	logger := h.requestLogger(c, "HandleUpdateItem")

	coordID, ok := requireCoord(c)
	if !ok {
		return
	}
	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "INVALID_REQUEST"})
		return
	}

	tile, err := h.co.UpdateItem(c.Request.Context(), coordID, coordinator.UpdateData{
		Title:   req.Title,
		Body:    req.Body,
		Preview: req.Preview,
		Link:    req.Link,
	})
	if err != nil {
		h.respondError(c, logger, err, "UPDATE_FAILED")
		return
	}

	logger.Info("item updated", "coord_id", coordID)
	c.JSON(http.StatusOK, tile)
}

// HandleDeleteItem handles DELETE /v1/items?coord=.
func (h *Handlers) HandleDeleteItem(c *gin.Context) {
	logger := h.requestLogger(c, "HandleDeleteItem")

	coordID, ok := requireCoord(c)
	if !ok {
		return
	}
	if err := h.co.DeleteItem(c.Request.Context(), coordID); err != nil {
		h.respondError(c, logger, err, "DELETE_FAILED")
		return
	}

	logger.Info("item deleted", "coord_id", coordID)
	c.Status(http.StatusNoContent)
}

// HandleMoveItem handles POST /v1/items/move.
func (h *Handlers) HandleMoveItem(c *gin.Context) {
	logger := h.requestLogger(c, "HandleMoveItem")

	var req MoveItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "INVALID_REQUEST"})
		return
	}

	err := h.co.MoveItem(c.Request.Context(), coords.CoordID(req.SourceID), coords.CoordID(req.TargetID))
	if err != nil {
		h.respondError(c, logger, err, "MOVE_FAILED")
		return
	}

	logger.Info("item moved", "source_id", req.SourceID, "target_id", req.TargetID)
	c.Status(http.StatusNoContent)
}

// HandleCopyItem handles POST /v1/items/copy.
func (h *Handlers) HandleCopyItem(c *gin.Context) {
	logger := h.requestLogger(c, "HandleCopyItem")

	var req CopyItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "INVALID_REQUEST"})
		return
	}

	tile, err := h.co.CopyItem(c.Request.Context(),
		coords.CoordID(req.SourceID), coords.CoordID(req.DestID), req.DestParentID)
	if err != nil {
		h.respondError(c, logger, err, "COPY_FAILED")
		return
	}

	logger.Info("item copied", "source_id", req.SourceID, "dest_id", req.DestID)
	c.JSON(http.StatusCreated, tile)
}

// HandleDeleteChildren handles DELETE /v1/items/children?coord=&category=.
func (h *Handlers) HandleDeleteChildren(c *gin.Context) {
	logger := h.requestLogger(c, "HandleDeleteChildren")

	coordID, ok := requireCoord(c)
	if !ok {
		return
	}
	category := remote.Category(c.Query("category"))
	if !category.Valid() {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unknown category", Code: "INVALID_CATEGORY"})
		return
	}

	deleted, err := h.co.DeleteChildrenByType(c.Request.Context(), coordID, category)
	if err != nil {
		h.respondError(c, logger, err, "DELETE_CHILDREN_FAILED")
		return
	}

	logger.Info("children deleted", "coord_id", coordID, "category", category, "deleted", deleted)
	c.JSON(http.StatusOK, DeleteChildrenResponse{Deleted: deleted})
}

// HandleState handles GET /v1/state.
func (h *Handlers) HandleState(c *gin.Context) {
	state := h.co.Store().GetState()
	c.JSON(http.StatusOK, StateResponse{Tiles: state.TilesByID})
}

// HandlePending handles GET /v1/pending.
func (h *Handlers) HandlePending(c *gin.Context) {
	pending := h.co.Pending()
	if pending == nil {
		pending = []coordinator.PendingOperation{}
	}
	c.JSON(http.StatusOK, pending)
}

// HandleRollbackAll handles POST /v1/rollback.
func (h *Handlers) HandleRollbackAll(c *gin.Context) {
	h.requestLogger(c, "HandleRollbackAll").Info("rolling back all in-flight changes")
	h.co.RollbackAll()
	c.Status(http.StatusNoContent)
}

// HandleHealth handles GET /v1/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": ServiceVersion,
		"tiles":   h.co.Store().Len(),
	})
}

// respondError maps coordinator errors to HTTP statuses.
func (h *Handlers) respondError(c *gin.Context, logger *slog.Logger, err error, fallbackCode string) {
	status := http.StatusInternalServerError
	code := fallbackCode

	var apiErr *remote.APIError
	switch {
	case errors.Is(err, coords.ErrMalformedCoordID):
		status, code = http.StatusBadRequest, "MALFORMED_COORD"
	case errors.Is(err, coordinator.ErrConcurrentOperation):
		status, code = http.StatusConflict, "OPERATION_IN_PROGRESS"
	case errors.Is(err, coordinator.ErrCoordOccupied):
		status, code = http.StatusConflict, "COORD_OCCUPIED"
	case errors.Is(err, coordinator.ErrItemNotFound):
		status, code = http.StatusNotFound, "ITEM_NOT_FOUND"
	case errors.Is(err, coordinator.ErrInvalidParentID),
		errors.Is(err, coordinator.ErrInvalidDestinationParentID),
		errors.Is(err, coordinator.ErrSelfCopy):
		status, code = http.StatusBadRequest, "INVALID_MUTATION"
	case errors.Is(err, coordinator.ErrMutationNotConfigured):
		status, code = http.StatusServiceUnavailable, "MUTATION_NOT_CONFIGURED"
	case errors.As(err, &apiErr):
		status, code = http.StatusBadGateway, "REMOTE_FAILED"
	}

	logger.Error("mutation failed", "error", err, "status", status)
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
}

func (h *Handlers) requestLogger(c *gin.Context, handler string) *slog.Logger {
	return h.logger.With("request_id", getOrCreateRequestID(c), "handler", handler)
}

// getOrCreateRequestID reads X-Request-ID or generates one.
func getOrCreateRequestID(c *gin.Context) string {
	if id := c.GetHeader("X-Request-ID"); id != "" {
		return id
	}
	id := uuid.NewString()
	c.Header("X-Request-ID", id)
	return id
}

func requireCoord(c *gin.Context) (coords.CoordID, bool) {
	coordID := c.Query("coord")
	if coordID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "coord query parameter required", Code: "MISSING_COORD"})
		return "", false
	}
	return coords.CoordID(coordID), true
}

// Copyright (C) 2026 Hexframe
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Diplow/hexframe-sub004/services/hexmap/cache"
	"github.com/Diplow/hexframe-sub004/services/hexmap/coordinator"
	"github.com/Diplow/hexframe-sub004/services/hexmap/coords"
)

// newTestEngine wires a coordinator against the in-memory authority
// and returns the full HTTP surface.
func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	authority := NewAuthority()
	co, err := coordinator.New(coordinator.Config{
		Store:  cache.NewStore(),
		Remote: authority.Mutations(),
	})
	require.NoError(t, err)
	return NewEngine(co, nil)
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestServerMutationFlow(t *testing.T) {
	engine := newTestEngine(t)

	// Create a root and a child.
	w := doJSON(t, engine, http.MethodPost, "/v1/items", CreateItemRequest{
		CoordID: "1,0",
		Content: cache.Content{Title: "root"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, engine, http.MethodPost, "/v1/items", CreateItemRequest{
		CoordID: "1,0:1",
		Content: cache.Content{Title: "child"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var child cache.Tile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &child))
	assert.False(t, child.IsProvisional(), "response carries the authoritative id")

	// Update the child.
	w = doJSON(t, engine, http.MethodPut, "/v1/items?coord=1,0:1", UpdateItemRequest{
		Title: strPtr("renamed"),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Move it.
	w = doJSON(t, engine, http.MethodPost, "/v1/items/move", MoveItemRequest{
		SourceID: "1,0:1",
		TargetID: "1,0:2",
	})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	// The state snapshot reflects all of it.
	w = doJSON(t, engine, http.MethodGet, "/v1/state", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var state StateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.NotContains(t, state.Tiles, coords.CoordID("1,0:1"))
	require.Contains(t, state.Tiles, coords.CoordID("1,0:2"))
	assert.Equal(t, "renamed", state.Tiles["1,0:2"].Content.Title)

	// Delete it.
	w = doJSON(t, engine, http.MethodDelete, "/v1/items?coord=1,0:2", nil)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
}

func TestServerErrorMapping(t *testing.T) {
	engine := newTestEngine(t)

	t.Run("malformed coordinate is a 400", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPost, "/v1/items", CreateItemRequest{
			CoordID: "not-a-coord",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "MALFORMED_COORD", resp.Code)
	})

	t.Run("missing item is a 404", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPut, "/v1/items?coord=1,0:5", UpdateItemRequest{
			Title: strPtr("x"),
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("missing coord query is a 400", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodDelete, "/v1/items", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("self copy is a 400", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPost, "/v1/items/copy", CopyItemRequest{
			SourceID: "1,0:1",
			DestID:   "1,0:1",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "INVALID_MUTATION", resp.Code)
	})

	t.Run("unknown category is a 400", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodDelete, "/v1/items/children?coord=1,0&category=bogus", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("occupied coordinate is a 409", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPost, "/v1/items", CreateItemRequest{
			CoordID: "1,0", Content: cache.Content{Title: "root"},
		})
		require.Equal(t, http.StatusCreated, w.Code)

		w = doJSON(t, engine, http.MethodPost, "/v1/items", CreateItemRequest{
			CoordID: "1,0", Content: cache.Content{Title: "again"},
		})
		assert.Equal(t, http.StatusConflict, w.Code)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "COORD_OCCUPIED", resp.Code)
	})
}

func TestServerCopyAndBulkDelete(t *testing.T) {
	engine := newTestEngine(t)

	for _, req := range []CreateItemRequest{
		{CoordID: "1,0", Content: cache.Content{Title: "root"}},
		{CoordID: "1,0:1", Content: cache.Content{Title: "src"}},
		{CoordID: "1,0:1,2", Content: cache.Content{Title: "leaf"}},
	} {
		w := doJSON(t, engine, http.MethodPost, "/v1/items", req)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := doJSON(t, engine, http.MethodPost, "/v1/items/copy", CopyItemRequest{
		SourceID: "1,0:1",
		DestID:   "1,0:4",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, engine, http.MethodGet, "/v1/state", nil)
	var state StateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Contains(t, state.Tiles, coords.CoordID("1,0:4"))
	assert.Contains(t, state.Tiles, coords.CoordID("1,0:4,2"))

	w = doJSON(t, engine, http.MethodDelete, "/v1/items/children?coord=1,0&category=structural", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp DeleteChildrenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.Deleted)
}

func TestServerHealthAndPending(t *testing.T) {
	engine := newTestEngine(t)

	w := doJSON(t, engine, http.MethodGet, "/v1/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/v1/pending", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func strPtr(s string) *string { return &s }

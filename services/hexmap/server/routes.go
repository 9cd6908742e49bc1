// Copyright (C) 2026 Hexframe
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package server

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the hexmap endpoints with the router group.
//
// Mutation endpoints:
//
//	POST   /v1/items               - create an item at a coordinate
//	PUT    /v1/items?coord=        - update an item's content
//	DELETE /v1/items?coord=        - delete an item
//	POST   /v1/items/move          - move or swap items
//	POST   /v1/items/copy          - deep-copy a subtree
//	DELETE /v1/items/children      - bulk-delete children by category
//
// State endpoints:
//
//	GET  /v1/state    - cache snapshot
//	GET  /v1/pending  - in-flight operations
//	POST /v1/rollback - abandon all optimistic state
//	GET  /v1/health   - health check
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	items := rg.Group("/items")
	{
		items.POST("", handlers.HandleCreateItem)
		items.PUT("", handlers.HandleUpdateItem)
		items.DELETE("", handlers.HandleDeleteItem)
		items.POST("/move", handlers.HandleMoveItem)
		items.POST("/copy", handlers.HandleCopyItem)
		items.DELETE("/children", handlers.HandleDeleteChildren)
	}

	rg.GET("/state", handlers.HandleState)
	rg.GET("/pending", handlers.HandlePending)
	rg.POST("/rollback", handlers.HandleRollbackAll)
	rg.GET("/health", handlers.HandleHealth)
}

// Copyright (C) 2026 Hexframe
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Diplow/hexframe-sub004/services/hexmap/cache"
	"github.com/Diplow/hexframe-sub004/services/hexmap/coords"
)

// maxErrorBody caps how much of an error response is read back.
const maxErrorBody = 4 * 1024

// APIError is a non-2xx answer from the map API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("map api: status %d: %s", e.Status, e.Message)
}

// Client talks JSON to the map API.
//
// Thread Safety: Client is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

// NewClient creates a client for the map API at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mutations returns the injected-function bundle backed by this client.
func (c *Client) Mutations() Mutations {
	return Mutations{
		Create:         c.CreateItem,
		Update:         c.UpdateItem,
		Delete:         c.DeleteItem,
		Move:           c.MoveItem,
		Copy:           c.CopyItem,
		DeleteChildren: c.DeleteChildren,
		FetchComposed:  c.FetchComposed,
	}
}

// CreateItem implements CreateFunc.
func (c *Client) CreateItem(ctx context.Context, req CreateRequest) (*cache.Tile, error) {
	var out cache.Tile
	if err := c.do(ctx, http.MethodPost, "/v1/items", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateItem implements UpdateFunc.
func (c *Client) UpdateItem(ctx context.Context, req UpdateRequest) (*cache.Tile, error) {
	var out cache.Tile
	q := url.Values{"coord": {string(req.CoordID)}}
	if err := c.do(ctx, http.MethodPut, "/v1/items", q, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteItem implements DeleteFunc.
func (c *Client) DeleteItem(ctx context.Context, id coords.CoordID) error {
	q := url.Values{"coord": {string(id)}}
	return c.do(ctx, http.MethodDelete, "/v1/items", q, nil, nil)
}

// MoveItem implements MoveFunc.
func (c *Client) MoveItem(ctx context.Context, req MoveRequest) (*MoveResult, error) {
	var out MoveResult
	if err := c.do(ctx, http.MethodPost, "/v1/items/move", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CopyItem implements CopyFunc.
func (c *Client) CopyItem(ctx context.Context, req CopyRequest) (*cache.Tile, error) {
	var out cache.Tile
	if err := c.do(ctx, http.MethodPost, "/v1/items/copy", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteChildren implements DeleteChildrenFunc.
func (c *Client) DeleteChildren(ctx context.Context, req DeleteChildrenRequest) error {
	q := url.Values{
		"coord":    {string(req.ParentID)},
		"category": {string(req.Category)},
	}
	return c.do(ctx, http.MethodDelete, "/v1/items/children", q, nil, nil)
}

// FetchComposed implements FetchComposedFunc.
func (c *Client) FetchComposed(ctx context.Context, parent coords.CoordID) ([]cache.Tile, error) {
	var out []cache.Tile
	q := url.Values{"coord": {string(parent)}}
	if err := c.do(ctx, http.MethodGet, "/v1/items/composed", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// do runs one JSON round trip. A nil out discards the response body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

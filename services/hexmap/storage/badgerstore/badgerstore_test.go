// Copyright (C) 2026 Hexframe
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package badgerstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(InMemoryConfig())
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_SaveLoadRemove(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.Save(ctx, "item:42", []byte(`{"id":42}`)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := s.Load(ctx, "item:42")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(got) != `{"id":42}` {
		t.Errorf("Load returned %q", got)
	}

	if err := s.Remove(ctx, "item:42"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := s.Load(ctx, "item:42"); !errors.Is(err, badger.ErrKeyNotFound) {
		t.Errorf("expected key-not-found after Remove, got %v", err)
	}
}

func TestStore_RemoveAbsentKey(t *testing.T) {
	s := newTestStore(t)
	if err := s.Remove(context.Background(), "item:999"); err != nil {
		t.Errorf("Remove of absent key should succeed, got %v", err)
	}
}

func TestStore_CancelledContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Save(ctx, "item:1", []byte("x")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestOpen_RequiresPath(t *testing.T) {
	if _, err := Open(DefaultConfig()); err == nil {
		t.Error("expected error for persistent config without path")
	}
}

func TestOpen_ExpandsTildePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	db, err := Open(Config{Path: "~/hexdb"})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	db.Close()

	if _, err := os.Stat(filepath.Join(home, "hexdb")); err != nil {
		t.Errorf("expected database directory under home, got %v", err)
	}
	if _, err := os.Stat("~"); !os.IsNotExist(err) {
		t.Error("a literal ~ directory must not be created")
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if got := expandPath("~/data"); got != filepath.Join(home, "data") {
		t.Errorf("expandPath(~/data) = %q", got)
	}
	if got := expandPath("/var/lib/hexframe"); got != "/var/lib/hexframe" {
		t.Errorf("absolute path must pass through, got %q", got)
	}
}

// Copyright (C) 2026 Hexframe
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Diplow/hexframe-sub004/pkg/logging"
	"github.com/Diplow/hexframe-sub004/services/hexmap/cache"
	"github.com/Diplow/hexframe-sub004/services/hexmap/config"
	"github.com/Diplow/hexframe-sub004/services/hexmap/coordinator"
	"github.com/Diplow/hexframe-sub004/services/hexmap/events"
	"github.com/Diplow/hexframe-sub004/services/hexmap/remote"
	"github.com/Diplow/hexframe-sub004/services/hexmap/server"
	"github.com/Diplow/hexframe-sub004/services/hexmap/storage/badgerstore"
)

func runServeCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.Server.ListenAddr = listenAddr
	}
	if remoteURL != "" {
		cfg.Remote.BaseURL = remoteURL
	}

	logger := logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.Logging.Level),
		LogDir:  cfg.Logging.Dir,
		Service: "hexmap",
		JSON:    cfg.Logging.JSON,
		Quiet:   cfg.Logging.Quiet,
	})
	defer logger.Close()
	slogger := logger.Slog()

	store, err := badgerstore.OpenStore(badgerstore.Config{
		Path:       cfg.Storage.Path,
		InMemory:   cfg.Storage.InMemory,
		SyncWrites: cfg.Storage.SyncWrites,
		Logger:     slogger,
	})
	if err != nil {
		return fmt.Errorf("open local storage: %w", err)
	}
	defer store.Close()

	var mutations remote.Mutations
	if cfg.Remote.BaseURL != "" {
		logger.Info("using upstream map API",
			"base_url", cfg.Remote.BaseURL, "timeout", cfg.Remote.Timeout)
		client := remote.NewClient(cfg.Remote.BaseURL,
			remote.WithHTTPClient(&http.Client{Timeout: cfg.Remote.Timeout}))
		mutations = client.Mutations()
	} else {
		logger.Info("using embedded map authority")
		mutations = server.NewAuthority().Mutations()
	}

	co, err := coordinator.New(coordinator.Config{
		Store:       cache.NewStore(),
		Remote:      mutations,
		Emitter:     events.NewEmitter(events.WithBufferSize(cfg.Events.BufferSize)),
		Persistence: store,
		Logger:      slogger,
	})
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		ListenAddr:      cfg.Server.ListenAddr,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Coordinator:     co,
		Logger:          slogger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}

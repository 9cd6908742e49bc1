// Copyright (C) 2026 Hexframe
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "hexframe",
		Short: "A CLI for the Hexframe tile map engine",
		Long: `Hexframe manages a hexagonal, path-addressed tile map:
inspect the coordinate algebra and run the standalone map service.`,
	}

	// --- Coordinate algebra commands ---
	coordCmd = &cobra.Command{
		Use:   "coord",
		Short: "Inspect the hexagonal coordinate algebra",
	}
	encodeCmd = &cobra.Command{
		Use:   "encode [user] [group] [direction...]",
		Short: "Encode owner, group, and path steps into a coordinate id",
		Long: `Builds a coordinate id from its parts. Directions are 1..6 for
structural children, -1..-6 for composed children, and 0 for the
composition anchor.`,
		Args: cobra.MinimumNArgs(2),
		RunE: runEncodeCommand,
	}
	decodeCmd = &cobra.Command{
		Use:   "decode [coord-id]",
		Short: "Decode a coordinate id into owner, group, path, and depth",
		Args:  cobra.ExactArgs(1),
		RunE:  runDecodeCommand,
	}
	childrenCmd = &cobra.Command{
		Use:   "children [coord-id]",
		Short: "List the six structural or composed children of a coordinate",
		Args:  cobra.ExactArgs(1),
		RunE:  runChildrenCommand,
	}
	composedChildren bool

	siblingsCmd = &cobra.Command{
		Use:   "siblings [coord-id]",
		Short: "List the sibling coordinates sharing a parent and side",
		Args:  cobra.ExactArgs(1),
		RunE:  runSiblingsCommand,
	}

	// --- Serve command ---
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the standalone map service",
		Long: `Starts the hexmap HTTP service wired end to end: configuration,
logging, local persistence, the map authority, and the mutation
coordinator. With --remote the service uses an upstream map API as its
authority instead of the embedded in-memory one.`,
		RunE: runServeCommand,
	}
	configPath string
	listenAddr string
	remoteURL  string
)

func init() {
	// Stop flag parsing at the first positional argument so negative
	// directions like -2 reach runEncodeCommand instead of being read
	// as shorthand flags.
	encodeCmd.Flags().SetInterspersed(false)

	childrenCmd.Flags().BoolVar(&composedChildren, "composed", false,
		"list composed children instead of structural ones")

	serveCmd.Flags().StringVar(&configPath, "config", "hexframe.yaml",
		"path to the configuration file")
	serveCmd.Flags().StringVar(&listenAddr, "listen", "",
		"listen address override, e.g. :8470")
	serveCmd.Flags().StringVar(&remoteURL, "remote", "",
		"upstream map API base URL (empty runs the embedded authority)")

	coordCmd.AddCommand(encodeCmd, decodeCmd, childrenCmd, siblingsCmd)
	rootCmd.AddCommand(coordCmd, serveCmd)
}

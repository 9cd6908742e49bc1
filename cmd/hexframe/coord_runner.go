// Copyright (C) 2026 Hexframe
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Diplow/hexframe-sub004/services/hexmap/coords"
)

func runEncodeCommand(cmd *cobra.Command, args []string) error {
	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("user id %q is not a number", args[0])
	}
	groupID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("group id %q is not a number", args[1])
	}

	path := make([]coords.Direction, 0, len(args)-2)
	for _, arg := range args[2:] {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("direction %q is not a number", arg)
		}
		d := coords.Direction(n)
		if !d.Valid() {
			return fmt.Errorf("direction %d out of range [-6, 6]", n)
		}
		path = append(path, d)
	}

	fmt.Fprintln(cmd.OutOrStdout(), coords.New(userID, groupID, path...).ID())
	return nil
}

func runDecodeCommand(cmd *cobra.Command, args []string) error {
	c, err := coords.Parse(coords.CoordID(args[0]))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "user:  %d\n", c.UserID)
	fmt.Fprintf(out, "group: %d\n", c.GroupID)
	fmt.Fprintf(out, "depth: %d\n", c.Depth())
	fmt.Fprintf(out, "path:  %v\n", c.Path)
	if parent, ok := c.Parent(); ok {
		fmt.Fprintf(out, "parent: %s\n", parent.ID())
	}
	if c.IsComposed() {
		fmt.Fprintln(out, "side:  composed")
	} else {
		fmt.Fprintln(out, "side:  structural")
	}
	return nil
}

func runChildrenCommand(cmd *cobra.Command, args []string) error {
	c, err := coords.Parse(coords.CoordID(args[0]))
	if err != nil {
		return err
	}

	var children [6]coords.Coord
	if composedChildren {
		children = c.ComposedChildren()
	} else {
		children = c.StructuralChildren()
	}
	for _, child := range children {
		fmt.Fprintln(cmd.OutOrStdout(), child.ID())
	}
	return nil
}

func runSiblingsCommand(cmd *cobra.Command, args []string) error {
	siblings, err := coords.Siblings(coords.CoordID(args[0]))
	if err != nil {
		return err
	}
	if len(siblings) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "(no siblings)")
		return nil
	}
	for _, sibling := range siblings {
		fmt.Fprintln(cmd.OutOrStdout(), sibling)
	}
	return nil
}

// Copyright (C) 2026 Hexframe
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package coords implements the coordinate algebra for the hexagonal tile
// tree.
//
// Every tile is addressed by a Coord: the owning user, a group, and a path
// of directional steps from the root tile. Directions are signed small
// integers:
//
//	 1..6  structural children (the six hex neighbors)
//	-1..-6 composed children (a parallel child space for context content)
//	 0     the composition anchor
//
// The canonical string form (CoordID) doubles as the cache key and as the
// wire argument to the map API:
//
//	"{userId},{groupId}"             root tile
//	"{userId},{groupId}:{d1,d2,..}"  tile at depth n
//
// All functions in this package are pure and allocate only their results.
//
// Thread Safety: Coord values are immutable once constructed; everything
// here is safe for concurrent use.
package coords

import (
	"fmt"
	"strconv"
	"strings"
)

// Direction identifies a child slot relative to a tile.
//
// Positive directions address structural children, negative directions
// address composed children, and zero addresses the composition anchor.
type Direction int

// The six structural child slots.
const (
	NorthWest Direction = 1
	NorthEast Direction = 2
	East      Direction = 3
	SouthEast Direction = 4
	SouthWest Direction = 5
	West      Direction = 6
)

// Anchor is the composition-anchor direction.
const Anchor Direction = 0

// IsStructural reports whether d addresses a structural child.
func (d Direction) IsStructural() bool { return d >= 1 && d <= 6 }

// IsComposed reports whether d addresses a composed child.
func (d Direction) IsComposed() bool { return d <= -1 && d >= -6 }

// Valid reports whether d is a legal path segment.
func (d Direction) Valid() bool {
	return d == Anchor || d.IsStructural() || d.IsComposed()
}

// CoordID is the canonical string encoding of a Coord.
//
// It is used as the cache key for tiles and as the coordinate argument of
// the remote authority, so two Coords are the same address iff their
// CoordIDs are equal.
type CoordID string

// Coord is a tile position: owner, group, and the directional path from
// the root tile. Path length equals depth; an empty path is the root.
type Coord struct {
	UserID  int64
	GroupID int64
	Path    []Direction
}

// New constructs a Coord for the given owner, group, and path.
func New(userID, groupID int64, path ...Direction) Coord {
	return Coord{UserID: userID, GroupID: groupID, Path: path}
}

// ID returns the canonical encoding of c.
//
// A root coordinate (empty path) encodes with no ":" suffix; this is the
// canonical no-path form. Parse accepts both that form and a trailing ":"
// with nothing after it.
func (c Coord) ID() CoordID {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(c.UserID, 10))
	b.WriteByte(',')
	b.WriteString(strconv.FormatInt(c.GroupID, 10))
	if len(c.Path) > 0 {
		b.WriteByte(':')
		for i, d := range c.Path {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Itoa(int(d)))
		}
	}
	return CoordID(b.String())
}

// String implements fmt.Stringer.
func (c Coord) String() string { return string(c.ID()) }

// Depth returns the tree depth of c (0 for the root).
func (c Coord) Depth() int { return len(c.Path) }

// IsRoot reports whether c is the root/center tile of its group.
func (c Coord) IsRoot() bool { return len(c.Path) == 0 }

// Root returns the root coordinate of c's group.
func (c Coord) Root() Coord {
	return Coord{UserID: c.UserID, GroupID: c.GroupID}
}

// IsComposed reports whether any path segment is negative, i.e. whether c
// lives in a composed child space somewhere along its path.
func (c Coord) IsComposed() bool {
	for _, d := range c.Path {
		if d < 0 {
			return true
		}
	}
	return false
}

// Parent returns the coordinate one step up, or false at the root.
func (c Coord) Parent() (Coord, bool) {
	if len(c.Path) == 0 {
		return Coord{}, false
	}
	parent := Coord{
		UserID:  c.UserID,
		GroupID: c.GroupID,
		Path:    append([]Direction(nil), c.Path[:len(c.Path)-1]...),
	}
	return parent, true
}

// Child returns the coordinate one step down in direction d.
func (c Coord) Child(d Direction) Coord {
	path := make([]Direction, len(c.Path)+1)
	copy(path, c.Path)
	path[len(c.Path)] = d
	return Coord{UserID: c.UserID, GroupID: c.GroupID, Path: path}
}

// StructuralChildren returns the six structural child coordinates of c,
// in direction order 1..6.
func (c Coord) StructuralChildren() [6]Coord {
	var out [6]Coord
	for i := 0; i < 6; i++ {
		out[i] = c.Child(Direction(i + 1))
	}
	return out
}

// ComposedChildren returns the six composed child coordinates of c, in
// direction order -1..-6.
func (c Coord) ComposedChildren() [6]Coord {
	var out [6]Coord
	for i := 0; i < 6; i++ {
		out[i] = c.Child(Direction(-(i + 1)))
	}
	return out
}

// CompositionAnchor returns the direction-0 child of c.
func (c Coord) CompositionAnchor() Coord { return c.Child(Anchor) }

// Parse decodes a CoordID.
//
// The owner and group segments must be numeric; every path segment must be
// a valid signed direction. A trailing ":" with no path segments decodes
// to the root form, the same as no ":" at all. See IsRootID for why that
// tolerance exists.
func Parse(id CoordID) (Coord, error) {
	s := string(id)
	base := s
	var suffix string
	if i := strings.IndexByte(s, ':'); i >= 0 {
		base, suffix = s[:i], s[i+1:]
	}

	userStr, groupStr, ok := strings.Cut(base, ",")
	if !ok {
		return Coord{}, &ParseError{ID: id, Reason: "missing group segment"}
	}
	userID, err := strconv.ParseInt(userStr, 10, 64)
	if err != nil {
		return Coord{}, &ParseError{ID: id, Reason: fmt.Sprintf("non-numeric user segment %q", userStr)}
	}
	groupID, err := strconv.ParseInt(groupStr, 10, 64)
	if err != nil {
		return Coord{}, &ParseError{ID: id, Reason: fmt.Sprintf("non-numeric group segment %q", groupStr)}
	}

	c := Coord{UserID: userID, GroupID: groupID}
	if suffix == "" {
		// Covers both "u,g" and the tolerated "u,g:" form.
		return c, nil
	}
	parts := strings.Split(suffix, ",")
	c.Path = make([]Direction, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Coord{}, &ParseError{ID: id, Reason: fmt.Sprintf("non-numeric direction %q", p)}
		}
		d := Direction(n)
		if !d.Valid() {
			return Coord{}, &ParseError{ID: id, Reason: fmt.Sprintf("direction %d out of range", n)}
		}
		c.Path[i] = d
	}
	return c, nil
}

// MustParse is Parse that panics on error. For tests and literals.
func MustParse(id CoordID) Coord {
	c, err := Parse(id)
	if err != nil {
		panic(err)
	}
	return c
}

// IsRootID reports whether id denotes a root/center tile without fully
// parsing it.
//
// An id with no ":" is a root; so is one whose ":" is the final byte.
// The trailing-colon form should not appear in well-formed data but has
// always been accepted as equivalent to the no-suffix form, and callers
// depend on that, so it is preserved here rather than rejected.
func IsRootID(id CoordID) bool {
	s := string(id)
	i := strings.IndexByte(s, ':')
	return i < 0 || i == len(s)-1
}

// IsDescendant reports whether childID addresses a proper descendant of
// ancestorID.
//
// The test is purely on the encoded forms: a non-root ancestor's
// descendants extend its encoding with ",{d}..."; a root ancestor's
// descendants are its base followed by ":" and a non-empty path.
func IsDescendant(childID, ancestorID CoordID) bool {
	child, ancestor := string(childID), string(ancestorID)
	if child == ancestor {
		return false
	}
	if IsRootID(ancestorID) {
		base := strings.TrimSuffix(ancestor, ":")
		return strings.HasPrefix(child, base+":") && len(child) > len(base)+1
	}
	return strings.HasPrefix(child, ancestor+",")
}

// Siblings returns the coordinates sharing id's parent and sign class.
//
// Structural children have only the other five structural children as
// siblings; composed children have only the other composed children. The
// root and composition anchors have no siblings.
func Siblings(id CoordID) ([]CoordID, error) {
	c, err := Parse(id)
	if err != nil {
		return nil, err
	}
	if c.IsRoot() {
		return nil, nil
	}
	last := c.Path[len(c.Path)-1]
	if last == Anchor {
		return nil, nil
	}
	parent, _ := c.Parent()

	var out []CoordID
	for i := 1; i <= 6; i++ {
		d := Direction(i)
		if last < 0 {
			d = -d
		}
		if d == last {
			continue
		}
		out = append(out, parent.Child(d).ID())
	}
	return out, nil
}

// RebasePath rewrites c from oldPrefix to newPrefix: c must be oldPrefix
// or a descendant of it, and the returned coordinate is newPrefix with
// c's path suffix appended.
//
// This is the stale-key computation used after a move: the authority
// reports modified tiles at their new addresses, and the old address is
// recovered by rebasing from the move target back onto the move source.
func RebasePath(c, oldPrefix, newPrefix Coord) (Coord, bool) {
	if c.UserID != oldPrefix.UserID || c.GroupID != oldPrefix.GroupID {
		return Coord{}, false
	}
	if len(c.Path) < len(oldPrefix.Path) {
		return Coord{}, false
	}
	for i, d := range oldPrefix.Path {
		if c.Path[i] != d {
			return Coord{}, false
		}
	}
	suffix := c.Path[len(oldPrefix.Path):]
	path := make([]Direction, 0, len(newPrefix.Path)+len(suffix))
	path = append(path, newPrefix.Path...)
	path = append(path, suffix...)
	out := Coord{UserID: newPrefix.UserID, GroupID: newPrefix.GroupID}
	if len(path) > 0 {
		out.Path = path
	}
	return out, true
}

// Copyright (C) 2026 Hexframe
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package coords

import (
	"errors"
	"fmt"
)

// ErrMalformedCoordID is the sentinel wrapped by every ParseError.
var ErrMalformedCoordID = errors.New("malformed coord id")

// ParseError reports a CoordID that could not be decoded.
type ParseError struct {
	ID     CoordID
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing coord id %q: %s", e.ID, e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrMalformedCoordID }

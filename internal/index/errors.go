// SPDX-License-Identifier: MIT
package index

import "fmt"

// NotFoundError reports that the index document could not be located.
type NotFoundError struct {
	Document string
	Searched []string
}

func (e *NotFoundError) Error() string {
	if len(e.Searched) == 1 {
		return fmt.Sprintf("could not find %s in %s", e.Document, e.Searched[0])
	}
	return fmt.Sprintf("could not find %s in the current directory or any parent", e.Document)
}

// FormatError reports a missing or malformed index block.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid projects index: %s: %v", e.Reason, e.Err)
	}
	return "invalid projects index: " + e.Reason
}

func (e *FormatError) Unwrap() error { return e.Err }

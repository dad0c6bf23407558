// Package store reads and writes the flat JSON documents the tool works
// with: question banks and wrong-question books.
package store

import (
	"errors"
	"fmt"
)

// ErrNothingToExport is returned instead of writing an empty document.
var ErrNothingToExport = errors.New("nothing to export")

// LoadReason tells why a bank document could not be loaded.
type LoadReason string

const (
	NotFound         LoadReason = "not_found"
	PermissionDenied LoadReason = "permission_denied"
	InvalidFormat    LoadReason = "invalid_format"
)

// LoadError is returned by every bank load failure.
type LoadError struct {
	Reason LoadReason
	Path   string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("load %s: %s", e.Path, e.Reason)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// PathSecurityError rejects a requested path that leaves the base directory
// or does not name a JSON document.
type PathSecurityError struct {
	Path   string
	Reason string
}

func (e *PathSecurityError) Error() string {
	return fmt.Sprintf("path %q rejected: %s", e.Path, e.Reason)
}

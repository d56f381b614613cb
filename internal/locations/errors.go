// Package locations builds and serves the country/state/city/venue hierarchy
// from a venue table.
package locations

import "fmt"

// NotFoundError represents a request for a venue that is not in the index.
type NotFoundError struct {
	Venue string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("venue not found: %s", e.Venue)
}

// LoadError represents a failure reading or parsing the venue table.
type LoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("venue table error (%s): %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("venue table error (%s): %s", e.Path, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

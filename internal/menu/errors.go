// Package menu resolves a venue's current beer menu from a live source with
// a local static fallback.
package menu

import "fmt"

// FetchError represents a live-source failure. It is always absorbed into a
// fallback path by the provider and never surfaced to callers.
type FetchError struct {
	Venue   string
	Message string
	Cause   error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("menu fetch error for %s: %s: %v", e.Venue, e.Message, e.Cause)
	}
	return fmt.Sprintf("menu fetch error for %s: %s", e.Venue, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

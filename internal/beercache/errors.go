// Package beercache provides a durable, TTL-aware cache of canonical beer
// metadata with coalesced concurrent fetching.
package beercache

import "fmt"

// NotFoundError represents a beer with no cached record and no successful
// fetch to fall back on.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("beer not found: %s", e.Name)
}

// CorruptionError represents an unreadable persisted cache. It is recovered
// from by resetting to an empty store and is never fatal.
type CorruptionError struct {
	Path  string
	Cause error
}

func (e *CorruptionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("beer cache store corrupted at %s: %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("beer cache store corrupted at %s", e.Path)
}

func (e *CorruptionError) Unwrap() error {
	return e.Cause
}

// StoreError represents a failure reading or writing the backing store.
type StoreError struct {
	Message string
	Cause   error
}

func (e *StoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("beer cache store error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("beer cache store error: %s", e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

// Package profile builds weighted taste profiles from raw rating history
// and persists them as one JSON document per named profile.
package profile

import "fmt"

// ValidationError represents malformed or empty profile input.
// It is user-correctable and surfaced to the caller.
type ValidationError struct {
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("validation error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// NotFoundError represents a request for a profile that does not exist.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("profile not found: %s", e.Name)
}

// StoreError represents a failure reading or writing the profile store.
type StoreError struct {
	Message string
	Cause   error
}

func (e *StoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("profile store error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("profile store error: %s", e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

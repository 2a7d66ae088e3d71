package wellspring

import (
	"errors"
	"fmt"
)

// Common errors returned by the wellspring client and engine.
var (
	// ErrNotFound is returned when an entry or stored value does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidEntry is returned when an entry violates a data-model invariant.
	// *EntryError unwraps to it.
	ErrInvalidEntry = errors.New("invalid entry")

	// ErrInvalidTimeOfDay is returned when a time-of-day bucket is unknown.
	ErrInvalidTimeOfDay = errors.New("invalid time of day")

	// ErrNonFinite is returned when a numeric field is NaN or infinite.
	ErrNonFinite = errors.New("value is not a finite number")

	// ErrStoreClosed is returned when operating on a closed store.
	ErrStoreClosed = errors.New("store is closed")

	// ErrUnknownTip is returned when a tip id is not in the catalog.
	ErrUnknownTip = errors.New("unknown tip")

	// ErrNoEntries is returned when an operation needs at least one entry.
	ErrNoEntries = errors.New("no entries recorded")

	// ErrEntryExists is returned when inserting an entry whose ID is taken.
	ErrEntryExists = errors.New("entry already exists")

	// ErrSessionRefNotFound is returned when a session reference cannot be resolved.
	ErrSessionRefNotFound = errors.New("session reference not found")
)

// ValidationError is returned when configuration validation fails.
// Extractable via errors.As().
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// EntryError describes the invariant an entry broke.
// Extractable via errors.As(); errors.Is(err, ErrInvalidEntry) holds.
type EntryError struct {
	EntryID string
	Field   string
	Message string
	Err     error
}

func (e *EntryError) Error() string {
	id := e.EntryID
	if id == "" {
		id = "<new>"
	}
	return fmt.Sprintf("entry %s: %s: %s", id, e.Field, e.Message)
}

func (e *EntryError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidEntry}
	}
	return []error{ErrInvalidEntry, e.Err}
}

// StoreErrorReason classifies a persistence failure.
type StoreErrorReason string

const (
	ReasonQuotaExceeded   StoreErrorReason = "quota_exceeded"
	ReasonInvalidData     StoreErrorReason = "invalid_data"
	ReasonMigrationFailed StoreErrorReason = "migration_failed"
	ReasonUnavailable     StoreErrorReason = "unavailable"
)

// StoreError is returned by persistence operations with a typed reason.
// Extractable via errors.As(). Supports Unwrap().
type StoreError struct {
	Op     string
	Key    string
	Reason StoreErrorReason
	Err    error
}

func (e *StoreError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("store: %s %q failed (%s): %v", e.Op, e.Key, e.Reason, e.Err)
	}
	return fmt.Sprintf("store: %s failed (%s): %v", e.Op, e.Reason, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IsQuotaExceeded reports whether err is a capacity failure from the store.
func IsQuotaExceeded(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Reason == ReasonQuotaExceeded
}

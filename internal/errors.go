package internal

import (
	"errors"
	"fmt"
)

// errEmptyMessage flags input with no usable text after normalization.
var errEmptyMessage = errors.New("message text is empty")

// StorageError represents errors talking to the key-value store.
// Callers treat it as a soft failure: log and continue with defaults,
// the next trigger naturally retries.
type StorageError struct {
	Scope string
	Key   string
	Op    string // "get", "set", "delete"
	Err   error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s/%s: %v", e.Op, e.Scope, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ModelError represents a failed or malformed model service response.
type ModelError struct {
	Status int // HTTP status, 0 when the request never completed
	Msg    string
	Err    error
}

func (e *ModelError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("model error (%d): %s", e.Status, e.Msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("model error: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("model error: %s", e.Msg)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// ExtractError represents a failure reading the page snapshot. An empty
// candidate set is not an ExtractError; it means "nothing to do yet".
type ExtractError struct {
	Source string
	Err    error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extract error [%s]: %v", e.Source, e.Err)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

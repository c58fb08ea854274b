// Package errors provides custom error types for the resdesk system.
// These errors enable better error handling, programmatic error checking,
// and improved debugging throughout the application.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the resdesk system
var (
	// ErrNotFound indicates that a requested draft or reservation was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that a resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidState indicates an operation on a draft in the wrong lifecycle state
	ErrInvalidState = errors.New("invalid lifecycle state")

	// ErrAlreadyCommitted indicates a commit attempt on an already-committed draft
	ErrAlreadyCommitted = errors.New("already committed")

	// ErrOracleUnavailable indicates that the extraction oracle failed or timed out
	ErrOracleUnavailable = errors.New("extraction oracle unavailable")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// NotFoundError represents an error when a draft or reservation is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// LifecycleError represents an operation applied to a draft whose status does
// not allow it, such as editing a rejected draft or committing twice
type LifecycleError struct {
	DraftID   string
	Status    string
	Operation string
}

// Error implements the error interface
func (e *LifecycleError) Error() string {
	return fmt.Sprintf("cannot %s draft %s in status %q", e.Operation, e.DraftID, e.Status)
}

// Is implements errors.Is support
func (e *LifecycleError) Is(target error) bool {
	if target == ErrAlreadyCommitted {
		return e.Operation == "commit" && e.Status == "committed"
	}
	return target == ErrInvalidState
}

// NewLifecycleError creates a new LifecycleError
func NewLifecycleError(draftID, status, operation string) *LifecycleError {
	return &LifecycleError{DraftID: draftID, Status: status, Operation: operation}
}

// PatchError represents a manual edit that cannot be applied
type PatchError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *PatchError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid patch field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid patch: %s", e.Message)
}

// Is implements errors.Is support
func (e *PatchError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewPatchError creates a new PatchError
func NewPatchError(field, message string) *PatchError {
	return &PatchError{Field: field, Message: message}
}

// OracleError represents a failure of the external extraction oracle
type OracleError struct {
	Model   string
	Message string
	Err     error
}

// Error implements the error interface
func (e *OracleError) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("extraction oracle %s: %s", e.Model, e.Message)
	}
	return fmt.Sprintf("extraction oracle: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *OracleError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *OracleError) Is(target error) bool {
	return target == ErrOracleUnavailable
}

// NewOracleError creates a new OracleError
func NewOracleError(model, message string, err error) *OracleError {
	return &OracleError{Model: model, Message: message, Err: err}
}

// StoreError represents a persistence-layer failure
type StoreError struct {
	Backend   string
	Operation string
	Err       error
}

// Error implements the error interface
func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %s: %v", e.Backend, e.Operation, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError
func NewStoreError(backend, operation string, err error) *StoreError {
	return &StoreError{Backend: backend, Operation: operation, Err: err}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsLifecycle checks if an error is a lifecycle violation
func IsLifecycle(err error) bool {
	return errors.Is(err, ErrInvalidState) || errors.Is(err, ErrAlreadyCommitted)
}

// IsInvalidInput checks if an error is an invalid input error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsOracleUnavailable checks if an error came from the extraction oracle
func IsOracleUnavailable(err error) bool {
	return errors.Is(err, ErrOracleUnavailable)
}

// Wrap wraps an error with additional context
// Returns nil if err is nil
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted additional context
// Returns nil if err is nil
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
// It's an alias for the standard library errors.Is for convenience.
var Is = errors.Is

// As finds the first error in err's chain that matches target.
// It's an alias for the standard library errors.As for convenience.
var As = errors.As

// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrAlertNotFound         = errors.New("alert not found")
	ErrFeedUnavailable       = errors.New("price feed unavailable")
	ErrEnrichmentUnavailable = errors.New("market context unavailable")
	ErrCompletionUnavailable = errors.New("completion service unavailable")
	ErrConfigInvalid         = errors.New("invalid configuration")
	ErrInputValidation       = errors.New("input validation failed")
)

// ValidationError represents malformed alert input. Nothing is committed
// when it is returned.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// Is lets errors.Is match ErrInputValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInputValidation
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// PersistenceError represents a failed store write or read.
type PersistenceError struct {
	Op      string
	AlertID string
	Err     error
}

func (e *PersistenceError) Error() string {
	if e.AlertID != "" {
		return fmt.Sprintf("persistence error [%s] %s: %v", e.Op, e.AlertID, e.Err)
	}
	return fmt.Sprintf("persistence error [%s]: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NewPersistenceError creates a new PersistenceError.
func NewPersistenceError(op, alertID string, err error) *PersistenceError {
	return &PersistenceError{
		Op:      op,
		AlertID: alertID,
		Err:     err,
	}
}

// FeedError represents a failed live price fetch. It never leaves the feed
// adapter.
type FeedError struct {
	Source string
	Err    error
}

func (e *FeedError) Error() string {
	return fmt.Sprintf("feed error [%s]: %v", e.Source, e.Err)
}

func (e *FeedError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match ErrFeedUnavailable.
func (e *FeedError) Is(target error) bool {
	return target == ErrFeedUnavailable
}

// NewFeedError creates a new FeedError.
func NewFeedError(source string, err error) *FeedError {
	return &FeedError{Source: source, Err: err}
}

// EnrichmentError represents a failed sentiment or positioning fetch.
type EnrichmentError struct {
	Kind   string
	Symbol string
	Err    error
}

func (e *EnrichmentError) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("enrichment error [%s] %s: %v", e.Kind, e.Symbol, e.Err)
	}
	return fmt.Sprintf("enrichment error [%s]: %v", e.Kind, e.Err)
}

func (e *EnrichmentError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match ErrEnrichmentUnavailable.
func (e *EnrichmentError) Is(target error) bool {
	return target == ErrEnrichmentUnavailable
}

// NewEnrichmentError creates a new EnrichmentError.
func NewEnrichmentError(kind, symbol string, err error) *EnrichmentError {
	return &EnrichmentError{Kind: kind, Symbol: symbol, Err: err}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsPersistence reports whether err is a PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

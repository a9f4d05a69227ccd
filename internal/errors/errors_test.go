package errors

import (
	"fmt"
	"testing"
)

func TestValidationErrorMatching(t *testing.T) {
	err := Wrap(NewValidationError("label", "", "must not be empty"), "create alert")

	if !IsValidation(err) {
		t.Fatal("wrapped ValidationError not detected")
	}
	if !Is(err, ErrInputValidation) {
		t.Error("ValidationError should match ErrInputValidation")
	}
	if IsPersistence(err) {
		t.Error("ValidationError should not be a PersistenceError")
	}
}

func TestPersistenceErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := NewPersistenceError("create", "abc", cause)

	if !Is(err, cause) {
		t.Error("PersistenceError should unwrap to its cause")
	}
	if got, want := err.Error(), "persistence error [create] abc: disk full"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestInternalErrorsMatchSentinels(t *testing.T) {
	if !Is(NewFeedError("yahoo", fmt.Errorf("timeout")), ErrFeedUnavailable) {
		t.Error("FeedError should match ErrFeedUnavailable")
	}
	if !Is(NewEnrichmentError("cot", "EURUSD", fmt.Errorf("404")), ErrEnrichmentUnavailable) {
		t.Error("EnrichmentError should match ErrEnrichmentUnavailable")
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, "x") != nil || Wrapf(nil, "x %d", 1) != nil {
		t.Error("wrapping nil must return nil")
	}
}

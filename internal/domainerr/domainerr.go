// Package domainerr defines the typed failures returned by the core services.
// Every failure carries a machine-readable Kind plus a human-readable message;
// nothing is swallowed into a generic error at this layer. Handlers translate
// kinds into HTTP statuses.
package domainerr

import (
	"errors"
	"fmt"
)

// Kind is the machine-readable error classification.
type Kind string

const (
	KindValidation          Kind = "VALIDATION_ERROR"
	KindInvalidWeight       Kind = "INVALID_WEIGHT"
	KindEntryNotFound       Kind = "ENTRY_NOT_FOUND"
	KindReadingNotFound     Kind = "READING_NOT_FOUND"
	KindNoteNotFound        Kind = "NOTE_NOT_FOUND"
	KindTraderNotFound      Kind = "TRADER_NOT_FOUND"
	KindEntryAlreadyWeighed Kind = "ENTRY_ALREADY_WEIGHED"
	KindReadingConverted    Kind = "READING_ALREADY_CONVERTED"
	KindTraderNotEligible   Kind = "TRADER_NOT_ELIGIBLE"
	KindIllegalTransition   Kind = "ILLEGAL_TRANSITION"
	KindNoteLocked          Kind = "NOTE_LOCKED"
	KindConcurrencyConflict Kind = "CONCURRENCY_CONFLICT"
)

// Error is the concrete typed failure.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IllegalTransition reports a state machine violation, naming both the
// current and the attempted state.
func IllegalTransition(from, to string) *Error {
	return Newf(KindIllegalTransition, "illegal transition from %s to %s", from, to)
}

// KindOf extracts the Kind from err, or "" when err is not a domain error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// Is lets callers match errors by kind with errors.Is semantics.
func Is(err error, kind Kind) bool { return KindOf(err) == kind }

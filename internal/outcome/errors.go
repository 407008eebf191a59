// Package outcome classifies pipeline failures. Every stage reports failures as *Error so the
// serving boundary can map them to transport codes without inspecting messages.
package outcome

import (
	"errors"
	"fmt"
)

// Kind is the class of a pipeline failure.
type Kind int

const (
	// KindInternal is any failure that matches no other kind.
	KindInternal Kind = iota
	// KindInvalidInput is a caller error, such as an empty question.
	KindInvalidInput
	// KindNoMatchingIndex means no collection's keywords matched the question.
	KindNoMatchingIndex
	// KindCollectionUnavailable means the selected tag has no configured collection.
	KindCollectionUnavailable
	// KindNoResults means the search service matched zero documents.
	KindNoResults
	// KindRetrievalService is a transport or service failure of the search service.
	KindRetrievalService
	// KindGenerationService is a transport or model failure of the completion service.
	KindGenerationService
)

var kindNames = map[Kind]string{
	KindInternal:              "internal",
	KindInvalidInput:          "invalid_input",
	KindNoMatchingIndex:       "no_matching_index",
	KindCollectionUnavailable: "collection_unavailable",
	KindNoResults:             "no_results",
	KindRetrievalService:      "retrieval_service_error",
	KindGenerationService:     "generation_service_error",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// NotFound reports whether the kind is a "nothing found" outcome rather than a fault.
func (k Kind) NotFound() bool {
	return k == KindNoMatchingIndex || k == KindNoResults || k == KindCollectionUnavailable
}

// Error is a classified failure. Message is safe to show to callers; Err is the
// underlying cause and is only logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, outcome.New(KindNoResults, ""))
// checks the class rather than the message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// New returns a classified error with no underlying cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies err under kind. A nil err yields nil.
func Wrap(kind Kind, message string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// PublicMessage returns the caller-facing detail for err. Unclassified errors get a generic
// message carrying the original text for diagnostics.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return fmt.Sprintf("An unexpected error occurred: %v", err)
}

// Sentinel values for errors.Is checks.
var (
	ErrInvalidInput          = New(KindInvalidInput, "invalid input")
	ErrNoMatchingIndex       = New(KindNoMatchingIndex, "no matching index")
	ErrCollectionUnavailable = New(KindCollectionUnavailable, "collection unavailable")
	ErrNoResults             = New(KindNoResults, "no results")
	ErrRetrievalService      = New(KindRetrievalService, "retrieval service error")
	ErrGenerationService     = New(KindGenerationService, "generation service error")
)

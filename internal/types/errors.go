package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ValidationError reports a TripRequest (or other inbound payload) that failed validation.
// No provider is called when one is returned.
type ValidationError struct {
	Fields []FieldError
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// ProviderError is returned by an external adapter call.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s failed with status %d: %s", e.Provider, e.StatusCode, e.Message)
}

type InvalidDateRangeError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidDateRangeError) Error() string {
	return fmt.Sprintf("invalid date range: end %s is before start %s",
		e.End.Format(DateLayout), e.Start.Format(DateLayout))
}

// GenerationError ends the itinerary pipeline. Err is usually a *ProviderError.
type GenerationError struct {
	Model string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("itinerary generation with model %s failed: %v", e.Model, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// PersistenceError wraps a failed write. It is logged, never shown to the user when
// generation succeeded.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

var ErrEmptyGeneration = errors.New("generation returned no content")

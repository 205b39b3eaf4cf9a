package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

const maxBodyBytes = 1_048_576

// ErrorResponse writes a standard JSON error response including request ID.
func ErrorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	WriteJSONResponse(w, r, status, map[string]any{
		"success":    false,
		"error":      message,
		"request_id": middleware.GetReqID(r.Context()),
	})
}

// WriteError maps a pipeline error onto its HTTP status. Only user-facing error kinds get a
// specific status; anything else is a 500 with a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *types.ValidationError
		dateErr       *types.InvalidDateRangeError
		genErr        *types.GenerationError
	)
	switch {
	case errors.As(err, &validationErr):
		WriteJSONResponse(w, r, http.StatusBadRequest, map[string]any{
			"success":    false,
			"error":      validationErr.Error(),
			"fields":     validationErr.Fields,
			"request_id": middleware.GetReqID(r.Context()),
		})
	case errors.As(err, &dateErr):
		ErrorResponse(w, r, http.StatusBadRequest, dateErr.Error())
	case errors.As(err, &genErr):
		ErrorResponse(w, r, http.StatusBadGateway, "Failed to generate itinerary, please try again")
	default:
		ErrorResponse(w, r, http.StatusInternalServerError, "Internal Server Error")
	}
}

// WriteJSONResponse encodes the data to JSON and writes the response header and body.
func WriteJSONResponse(w http.ResponseWriter, r *http.Request, status int, data any) {
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}

	js, err := json.Marshal(data)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to marshal JSON response",
			slog.Any("error", err),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err = w.Write(js); err != nil {
		// status is already on the wire
		slog.ErrorContext(r.Context(), "Failed to write response body",
			slog.Any("error", err),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	}
}

// DecodeJSONBody reads and decodes a JSON request body safely. Decoding problems come back
// as *types.ValidationError so handlers can pass them straight to WriteError.
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return bodyError(decodeMessage(err))
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return bodyError("body must only contain a single JSON value")
	}
	return nil
}

func bodyError(msg string) error {
	return &types.ValidationError{Fields: []types.FieldError{{Field: "body", Message: msg}}}
}

func decodeMessage(err error) string {
	var (
		syntaxError        *json.SyntaxError
		unmarshalTypeError *json.UnmarshalTypeError
		maxBytesError      *http.MaxBytesError
	)

	switch {
	case errors.As(err, &syntaxError):
		return fmt.Sprintf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
	case errors.Is(err, io.ErrUnexpectedEOF):
		return "body contains badly-formed JSON"
	case errors.As(err, &unmarshalTypeError):
		if unmarshalTypeError.Field != "" {
			return fmt.Sprintf("body contains incorrect JSON type for field %q (wanted %s)", unmarshalTypeError.Field, unmarshalTypeError.Type)
		}
		return fmt.Sprintf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
	case errors.Is(err, io.EOF):
		return "body must not be empty"
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		fieldName := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return fmt.Sprintf("body contains unknown key %q", fieldName)
	case errors.As(err, &maxBytesError):
		return fmt.Sprintf("body must not be larger than %d bytes", maxBytesError.Limit)
	default:
		return fmt.Sprintf("error decoding JSON body: %v", err)
	}
}

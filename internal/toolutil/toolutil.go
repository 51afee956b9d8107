// Package toolutil provides helpers shared by the MCP tools and the web handlers:
// mapping run errors to statuses and writing JSON responses.
package toolutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/anatolykoptev/go_notes/internal/engine/notes"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 64 * 1024

// ErrorBody is the JSON shape of every API error.
type ErrorBody struct {
	Error string `json:"error"`
	Step  string `json:"step,omitempty"`
}

// Classify maps a run error to an HTTP status and response body.
//
//	bad input        400
//	busy             409
//	transcript step  422
//	export step      500
//	other step       502
func Classify(err error) (int, ErrorBody) {
	body := ErrorBody{Error: err.Error(), Step: string(notes.FailedStep(err))}
	switch {
	case errors.Is(err, notes.ErrBusy):
		return http.StatusConflict, body
	case errors.Is(err, notes.ErrUnknownSubject), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, body
	}
	switch notes.FailedStep(err) {
	case notes.StepTranscript:
		return http.StatusUnprocessableEntity, body
	case notes.StepExport:
		return http.StatusInternalServerError, body
	case notes.StepNotes, notes.StepQuestions:
		return http.StatusBadGateway, body
	}
	return http.StatusInternalServerError, body
}

// ErrBadRequest marks malformed client input.
var ErrBadRequest = errors.New("bad request")

// BadRequest wraps a message as ErrBadRequest.
func BadRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, fmt.Sprintf(format, args...))
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("write json", slog.Any("error", err))
	}
}

// WriteError classifies err and writes it as an ErrorBody.
func WriteError(w http.ResponseWriter, err error) {
	status, body := Classify(err)
	WriteJSON(w, status, body)
}

// DecodeJSON reads a single JSON object of at most MaxBodyBytes into v.
func DecodeJSON(r io.Reader, v any) error {
	dec := json.NewDecoder(io.LimitReader(r, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return BadRequest("decode body: %v", err)
	}
	return nil
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors matched with errors.Is against *Error
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrServer       = errors.New("server error")
	ErrUnreachable  = errors.New("server unreachable")
)

// Error is a failed API call. Status is 0 when the server could not be
// reached; Detail holds the server's human-readable message, if it sent one.
type Error struct {
	Op     string
	Status int
	Detail string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Status == 0:
		return fmt.Sprintf("%s: failed to connect: %v", e.Op, e.Err)
	case e.Detail != "":
		return fmt.Sprintf("%s: %d %s", e.Op, e.Status, e.Detail)
	default:
		return fmt.Sprintf("%s: %d %s", e.Op, e.Status, http.StatusText(e.Status))
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is maps the HTTP status onto the sentinel errors
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnreachable:
		return e.Status == 0
	case ErrBadRequest:
		return e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrServer:
		return e.Status >= 500
	}
	return false
}

// Message returns the server's detail, or fallback when there is none
func (e *Error) Message(fallback string) string {
	if e.Detail != "" {
		return e.Detail
	}
	return fallback
}

// Message extracts a user-facing message from any error returned by the
// client: the server detail when present, fallback otherwise.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message(fallback)
	}
	return fallback
}

// parseDetail pulls the "detail" field out of an error body. It is either a
// string or a list of validation problems each carrying a "msg".
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		return text
	}

	var problems []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &problems); err == nil {
		msgs := make([]string, 0, len(problems))
		for _, p := range problems {
			if p.Msg != "" {
				msgs = append(msgs, p.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return ""
}

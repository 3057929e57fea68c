package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Kind classifies a backend failure for presentation purposes. Read errors
// are rendered persistently until the next successful fetch; write errors
// are transient notifications.
type Kind string

const (
	// KindNetwork is a transport or connectivity failure. Never retried
	// automatically; the user may refresh manually.
	KindNetwork Kind = "network"
	// KindValidation is malformed or rejected input, e.g. a duplicate
	// username. Rendered inline next to the offending field.
	KindValidation Kind = "validation"
	// KindConflict means the action is invalid for the current remote
	// state, e.g. retrying a job that is not failed.
	KindConflict Kind = "conflict"
	// KindNotFound means the referenced entity is unknown to the backend.
	KindNotFound Kind = "not_found"
	// KindUnknown is the fallback; a generic message is shown and the
	// error is logged for diagnostics.
	KindUnknown Kind = "unknown"
)

// Error is a classified backend failure.
type Error struct {
	Kind       Kind
	StatusCode int
	// Message is surfaced verbatim to the user.
	Message string
	// Field names the offending input for validation errors, when the
	// backend identifies one.
	Field string
	// Err is the underlying transport error, if any.
	Err error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("backend %s error (%d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend %s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the classification of err, or KindUnknown for errors that
// did not come from this package.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// networkError wraps a transport failure.
func networkError(err error) *Error {
	return &Error{
		Kind:    KindNetwork,
		Message: err.Error(),
		Err:     err,
	}
}

// errorBody is the backend's JSON error envelope.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field"`
}

// classifyResponse turns a non-2xx response into a classified error. The
// body is consumed; the backend's message is preserved verbatim.
func classifyResponse(resp *http.Response) *Error {
	var msg, field string

	if body, err := io.ReadAll(resp.Body); err == nil && len(body) > 0 {
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil {
			msg = eb.Error
			if msg == "" {
				msg = eb.Message
			}
			field = eb.Field
		}
		if msg == "" {
			msg = string(body)
		}
	}
	if msg == "" {
		msg = resp.Status
	}

	kind := KindUnknown
	switch {
	case resp.StatusCode == http.StatusNotFound:
		kind = KindNotFound
	case resp.StatusCode == http.StatusConflict:
		kind = KindConflict
	case resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusUnprocessableEntity:
		kind = KindValidation
	}

	return &Error{
		Kind:       kind,
		StatusCode: resp.StatusCode,
		Message:    msg,
		Field:      field,
	}
}

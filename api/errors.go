package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

var (
	// ErrUnauthorized matches gateway errors caused by an HTTP 401 response.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrOperationFailed matches every other gateway failure.
	ErrOperationFailed = errors.New("operation failed")
)

// Error is returned by every gateway call that did not succeed.
type Error struct {
	Op string
	// Status is the HTTP status code, or 0 when no response was received.
	Status int
	// Message is the server-provided message, or the operation's default.
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether e is an ErrUnauthorized or ErrOperationFailed failure.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrOperationFailed:
		return e.Status != http.StatusUnauthorized
	}
	return false
}

// serverMessage extracts a human message from an error body: a JSON string, an
// object with "message" or "error", or plain text.
func serverMessage(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return ""
	}

	switch body[0] {
	case '"':
		var s string
		if err := json.Unmarshal(body, &s); err == nil {
			return strings.TrimSpace(s)
		}
	case '{':
		var obj struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal(body, &obj); err == nil {
			if obj.Message != "" {
				return obj.Message
			}
			return obj.Error
		}
		return ""
	}
	return string(body)
}

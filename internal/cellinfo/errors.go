package cellinfo

import (
	"errors"

	"github.com/couchcryptid/cell-telemetry-etl/internal/domain"
)

// Error is the caller-facing form of a failed call: a stable code plus a
// human-readable message.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

// ErrorFor maps err to its caller-facing form. Internal failures keep their
// detail out of the message.
func ErrorFor(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, ErrNotImplemented) {
		return &Error{Code: CodeNotImplemented, Message: err.Error()}
	}

	switch code := domain.ErrorCode(err); code {
	case domain.CodePermissionDenied:
		return &Error{Code: code, Message: "Location access permission not granted."}
	case domain.CodeNoDataAvailable:
		return &Error{Code: code, Message: "Cell information not available."}
	case domain.CodeInternal:
		return &Error{Code: code, Message: "Internal error."}
	default:
		return &Error{Code: code, Message: err.Error()}
	}
}

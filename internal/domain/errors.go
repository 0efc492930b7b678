package domain

import "errors"

var (
	// ErrPermissionDenied means the caller does not hold a location-access grant.
	ErrPermissionDenied = errors.New("location access permission not granted")

	// ErrNoDataAvailable means no cell observations were available.
	ErrNoDataAvailable = errors.New("cell information not available")

	// ErrUnsupportedTechnology means the primary cell's technology has no
	// normalization rule.
	ErrUnsupportedTechnology = errors.New("unsupported radio technology")
)

// Stable error codes reported to callers.
const (
	CodePermissionDenied      = "PERMISSION_DENIED"
	CodeNoDataAvailable       = "UNAVAILABLE"
	CodeUnsupportedTechnology = "UNSUPPORTED_TECHNOLOGY"
	CodeInvalidArgument       = "INVALID_ARGUMENT"
	CodeInternal              = "INTERNAL"
)

// ErrorCode returns the stable code for err. Errors outside the domain
// taxonomy map to CodeInternal.
func ErrorCode(err error) string {
	var invalid *InvalidSnapshotError
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return CodePermissionDenied
	case errors.Is(err, ErrNoDataAvailable):
		return CodeNoDataAvailable
	case errors.Is(err, ErrUnsupportedTechnology):
		return CodeUnsupportedTechnology
	case errors.As(err, &invalid):
		return CodeInvalidArgument
	default:
		return CodeInternal
	}
}

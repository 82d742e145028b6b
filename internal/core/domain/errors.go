package domain

import (
	"errors"
	"fmt"
)

// Kind groups error codes into the categories the browse core reports.
type Kind string

const (
	KindIO             Kind = "io"
	KindConfig         Kind = "config"
	KindNoSnapshots    Kind = "no_snapshots"
	KindTimestampParse Kind = "timestamp_parse"
	KindFilter         Kind = "filter"
	KindTransport      Kind = "transport"
)

// DomainError represents a browse error with a structured error code.
type DomainError struct {
	Code    string // Error code (e.g., "SB-SNAP-4040")
	Kind    Kind
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support. Two DomainErrors match when their codes match.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code, kind and message.
func NewDomainError(code string, kind Kind, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Kind:    kind,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Kind:    e.Kind,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Kind:    e.Kind,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// Wrap is shorthand for WithDetails followed by WithCause.
func (e *DomainError) Wrap(details string, cause error) *DomainError {
	return e.WithDetails(details).WithCause(cause)
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// KindOf returns the kind of the outermost DomainError in err's chain,
// or KindIO when err is not a DomainError.
func KindOf(err error) Kind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindIO
}

// ============================================================================
// Filesystem Errors (IO)
// ============================================================================

var (
	// ErrIO indicates a filesystem read or metadata failure.
	ErrIO = NewDomainError("SB-IO-5000", KindIO, "filesystem error")
)

// ============================================================================
// Configuration Errors (CONF)
// ============================================================================

var (
	// ErrUnknownRoot indicates the requested root name is not configured.
	ErrUnknownRoot = NewDomainError("SB-CONF-4040", KindConfig, "snapshot root not configured")

	// ErrInvalidPath indicates the resolved path is neither a file nor a directory,
	// or a requested segment could escape the snapshot directory.
	ErrInvalidPath = NewDomainError("SB-CONF-4001", KindConfig, "invalid path")

	// ErrInvalidName indicates a filesystem entry name is not valid UTF-8 text.
	ErrInvalidName = NewDomainError("SB-CONF-4002", KindConfig, "entry name is not valid text")
)

// ============================================================================
// Snapshot Errors (SNAP)
// ============================================================================

var (
	// ErrNoSnapshots indicates a configured root has no matching snapshot directory.
	ErrNoSnapshots = NewDomainError("SB-SNAP-4040", KindNoSnapshots, "no snapshot found")

	// ErrTimestampParse indicates a snapshot-shaped name carries a malformed timestamp.
	ErrTimestampParse = NewDomainError("SB-SNAP-4220", KindTimestampParse, "failed to parse snapshot timestamp")
)

// ============================================================================
// Filter Errors (FILT)
// ============================================================================

var (
	// ErrFilteredPath indicates the requested entry is hidden by filter settings.
	ErrFilteredPath = NewDomainError("SB-FILT-4030", KindFilter, "path hidden by filter settings")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrInternal is the opaque error reported to clients.
	ErrInternal = NewDomainError("SB-SYS-5000", KindTransport, "internal server error")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError("SB-SYS-4290", KindTransport, "too many requests")
)

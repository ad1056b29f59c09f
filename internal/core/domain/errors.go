package domain

import (
	"errors"
	"fmt"
)

// DomainError is a business error with a stable machine-readable code.
// Codes survive across releases; message wording does not.
type DomainError struct {
	Code    string
	Message string
	Details string
	Cause   error
}

func (e *DomainError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
}

func (e *DomainError) Unwrap() error { return e.Cause }

// Is matches two DomainErrors on Code, so errors.Is(err, ErrPeerNotFound)
// works on copies carrying details or a cause.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && e.Code == t.Code
}

// NewDomainError builds a sentinel error for the given code.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

func (e *DomainError) clone() *DomainError {
	c := *e
	return &c
}

// WithDetails returns a copy of the sentinel annotated with details.
func (e *DomainError) WithDetails(details string) *DomainError {
	c := e.clone()
	c.Details = details
	return c
}

// WithCause returns a copy of the sentinel wrapping cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	c := e.clone()
	c.Cause = cause
	return c
}

// IsDomainError reports whether err is a DomainError with the given
// code. An empty code matches any DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if !errors.As(err, &de) {
		return false
	}
	return code == "" || de.Code == code
}

// GetErrorCode returns the code carried by err, or "" for plain errors.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Peer Errors (PEER)
// ============================================================================

var (
	// ErrPeerValidation indicates a register request failed field validation.
	ErrPeerValidation = NewDomainError("PM-PEER-4001", "peer validation failed")

	// ErrPeerNotFound indicates the referenced peer is absent from the
	// addressed group. A heartbeat racing its own expiry hits this.
	ErrPeerNotFound = NewDomainError("PM-PEER-4040", "peer not found")

	// ErrGroupNotFound indicates the group key has no live members.
	ErrGroupNotFound = NewDomainError("PM-GRP-4040", "group not found")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrInternalServer indicates an internal server error.
	ErrInternalServer = NewDomainError("PM-SYS-5000", "internal server error")

	// ErrStorageError indicates a storage layer error.
	ErrStorageError = NewDomainError("PM-SYS-5001", "storage error")

	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = NewDomainError("PM-SYS-4000", "bad request")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError("PM-SYS-4290", "too many requests")
)

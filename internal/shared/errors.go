package shared

import (
	"context"
	"errors"
	"fmt"
)

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// Authentication errors
	ErrAuthRequired     = fmt.Errorf("authentication required")
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")
	ErrPlaylistChanged    = fmt.Errorf("playlist changed while it was being read")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")

	// Storage errors
	ErrRecordNotFound = fmt.Errorf("record not found")
)

// ErrorKind groups errors by how a caller should react to them.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindUnexpected
	KindInvalidArgument
	KindAuthRequired
	KindExternalService
	KindCancelled
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInvalidArgument:
		return "invalid argument"
	case KindAuthRequired:
		return "authentication required"
	case KindExternalService:
		return "external service error"
	case KindCancelled:
		return "cancelled"
	default:
		return "unexpected"
	}
}

// ExitCode maps the kind onto a process exit status.
func (k ErrorKind) ExitCode() int {
	switch k {
	case KindNone:
		return 0
	case KindInvalidArgument:
		return 2
	case KindAuthRequired:
		return 3
	case KindExternalService:
		return 4
	case KindCancelled:
		return 5
	default:
		return 1
	}
}

// Classify maps err onto an [ErrorKind].
//
// Any failure answered by the remote API is an external service error, a 401 included. Only a failed
// connectivity probe ([ErrAuthRequired]) or a local credential problem asks the user to authenticate.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, ErrMissingArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrAuthRequired):
		return KindAuthRequired
	case errors.Is(err, ErrAPIRequest), errors.Is(err, ErrServiceUnavailable), errors.Is(err, ErrPlaylistNotFound),
		errors.Is(err, ErrPlaylistChanged):
		return KindExternalService
	case errors.Is(err, ErrNotAuthenticated), errors.Is(err, ErrAuthFailed), errors.Is(err, ErrMissingCredentials),
		errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrTokenExpired):
		return KindAuthRequired
	default:
		return KindUnexpected
	}
}

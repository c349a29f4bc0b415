package gateway

import (
	"context"
	"errors"
	"net"
)

// Common error codes
// server-supplied codes from ErrorResponse bodies take precedence
const (
	ErrCodeNetwork  = "network_error"
	ErrCodeTimeout  = "timeout"
	ErrCodeDecode   = "invalid_response"
	ErrCodeHTTP     = "http_error"
	ErrCodeNoToken  = "token_expired"
	ErrCodeInternal = "internal_error"
)

// Error represents a failed backend call.
type Error struct {
	Op      string
	Code    string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Op + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Op + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Timeout reports whether the call failed on the client-side deadline.
func (e *Error) Timeout() bool {
	return e.Code == ErrCodeTimeout
}

// transportCode classifies a transport-level failure.
func transportCode(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrCodeTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrCodeTimeout
	}
	return ErrCodeNetwork
}

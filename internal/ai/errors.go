package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

var (
	// ErrNoCredential means no API key was available when a call was made.
	ErrNoCredential = errors.New("no inference credential configured")
	// ErrEmbedUnavailable is returned after embed retries are exhausted.
	ErrEmbedUnavailable = errors.New("embedding unavailable")
	// ErrCompleteUnavailable is returned after completion retries are
	// exhausted across the whole fallback model list.
	ErrCompleteUnavailable = errors.New("completion unavailable")
)

type FailureClass int

const (
	FailureOther FailureClass = iota
	FailureTimeout
	FailureConnection
)

func (c FailureClass) String() string {
	switch c {
	case FailureTimeout:
		return "timeout"
	case FailureConnection:
		return "connection"
	default:
		return "other"
	}
}

// Classify maps a transport error onto the retry taxonomy. Anything that is
// neither a timeout nor a connection-level failure counts as Other, which
// includes model-unavailable responses from the upstream API.
func Classify(err error) FailureClass {
	if err == nil {
		return FailureOther
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.EHOSTUNREACH) {
		return FailureConnection
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return FailureConnection
	}
	return FailureOther
}

// CompletionError carries the failure class of the last attempt so the
// orchestrator can produce a tailored user-facing message.
type CompletionError struct {
	Class FailureClass
	Last  error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("completion unavailable (%s): %v", e.Class, e.Last)
}

func (e *CompletionError) Unwrap() []error {
	return []error{ErrCompleteUnavailable, e.Last}
}

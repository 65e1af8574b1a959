package errors

import "errors"

var (
	ErrNotFound              = errors.New("not found")
	ErrInvalid               = errors.New("invalid")
	ErrTooMany               = errors.New("too many requests")
	ErrInternal              = errors.New("internal")
	ErrMisconfigured         = errors.New("inference credential missing")
	ErrNoEvidence            = errors.New("no evidence available")
	ErrGenerationUnavailable = errors.New("generation unavailable")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsNoEvidence(err error) bool {
	return errors.Is(err, ErrNoEvidence)
}

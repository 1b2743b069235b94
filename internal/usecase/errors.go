package usecase

import "errors"

// Sentinels returned by the services. Callers match them with errors.Is; the
// HTTP layer maps each one to a status code.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("resource not found")
	// ErrUnauthorized means the league rejected the supplied ESPN cookies.
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrUnsupported           = errors.New("unsupported")
)

// IsPermanent reports whether retrying the same request cannot succeed
// without a change from the caller.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrUnsupported)
}

package links

import (
	"errors"
	"fmt"
)

// Lookup failure causes. A *LookupError wraps one of these, or the
// underlying transport error.
var (
	// ErrPageNotFound indicates the requested page does not exist
	ErrPageNotFound = errors.New("page not found")

	// ErrMalformedResponse indicates the service answered with something
	// that could not be parsed
	ErrMalformedResponse = errors.New("malformed response")

	// ErrRequestFailed indicates the request could not be completed
	ErrRequestFailed = errors.New("request failed")
)

// LookupError reports a failed external query for one title.
type LookupError struct {
	Op    string // "links" or "resolve"
	Title string
	Err   error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s lookup for %q: %v", e.Op, e.Title, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support for LookupError.
// This allows errors.Is(err, &LookupError{}) to work with wrapped errors.
func (e *LookupError) Is(target error) bool {
	_, ok := target.(*LookupError)
	return ok
}

// NewLookupError creates a LookupError.
func NewLookupError(op, title string, err error) *LookupError {
	return &LookupError{Op: op, Title: title, Err: err}
}

// IsLookupError reports whether err is, or wraps, a *LookupError.
func IsLookupError(err error) bool {
	var le *LookupError
	return errors.As(err, &le)
}

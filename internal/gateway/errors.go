package gateway

import (
	"errors"
	"fmt"
)

// Common gateway errors.
var (
	ErrNilSource      = errors.New("gateway source cannot be nil")
	ErrEmptyBaseURL   = errors.New("source base URL cannot be empty")
	ErrUnexpectedCode = errors.New("unexpected status code")
)

// FetchError describes a transport or decoding failure against the remote source.
type FetchError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Op, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

package domain

import (
	"errors"
	"fmt"
)

// ErrNonSuccessStatus is the cause recorded when the remote service answers
// with a status outside the 2xx range.
var ErrNonSuccessStatus = errors.New("remote service returned non-success status")

// FetchError covers every way the feed fetch can fail: the network is
// unreachable, the status is not a success, or the body is malformed.
type FetchError struct {
	// Status is the HTTP status code when a response was received, 0 otherwise.
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch repositories (status %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("fetch repositories: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

package fetcher

import (
	"errors"
	"fmt"
)

// ErrorKind classifies fetch failures for retry and skip decisions.
type ErrorKind int

// Fetch failure classes.
const (
	// Transient covers timeouts, 5xx responses, and rate-limit signals.
	// The pipeline logs and skips the resource after retries exhaust.
	Transient ErrorKind = iota
	// Permanent covers 4xx responses other than 429. Never retried.
	Permanent
)

// FetchError is returned when a resource could not be retrieved.
type FetchError struct {
	Kind   ErrorKind
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	kind := "transient"
	if e.Kind == Permanent {
		kind = "permanent"
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s fetch failure for %s (status %d): %v", kind, e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("%s fetch failure for %s: %v", kind, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsTransient reports whether err is a transient fetch failure.
func IsTransient(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == Transient
}

// IsPermanent reports whether err is a permanent fetch failure.
func IsPermanent(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == Permanent
}

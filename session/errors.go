package session

import "errors"

var (
	// ErrAuthentication is returned when the login does not land on the
	// home page. It's fatal to a sync run and never retried.
	ErrAuthentication = errors.New("authentication failed")

	// ErrConnectivity is returned when the portal can't be reached, either
	// directly or after the retries of a timed out request are exhausted.
	ErrConnectivity = errors.New("portal unreachable")

	// ErrTimeout marks a request that exceeded the configured timeout.
	ErrTimeout = errors.New("request timed out")

	// ErrUnexpectedStatus is returned for responses outside the 2xx range.
	ErrUnexpectedStatus = errors.New("unexpected status code")
)

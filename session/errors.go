package session

import "errors"

var (
	// ErrLoginRequired signals the caller must redirect to the provider login:
	// there is no session, or the session could not be renewed.
	ErrLoginRequired = errors.New("login required")

	// ErrAuthenticationDenied is the terminal state for a callback whose state
	// token mismatched or that carried a provider error parameter.
	ErrAuthenticationDenied = errors.New("authentication denied")

	// ErrTokenStillExpired reports a resource call that kept signalling token
	// expiry after the single refresh-and-retry sequence.
	ErrTokenStillExpired = errors.New("access token still expired after refresh")
)

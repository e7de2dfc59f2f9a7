package session

import "errors"

var (
	// ErrStaleSession is returned when the credentials handed to Store or
	// Login expire at or before the current time. Any stored session has been
	// purged by the time the caller sees it.
	ErrStaleSession = errors.New("session already expired")
	// ErrMissingCredentials is returned when the token or the user is missing.
	ErrMissingCredentials = errors.New("token and user are required")
	// ErrClosed is returned by operations on a controller after Close.
	ErrClosed = errors.New("session controller closed")
)

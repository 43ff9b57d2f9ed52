package session

import "errors"

var (
	// ErrNoAuthenticator is returned by Login and Signup when the store was
	// built without a backend to authenticate against.
	ErrNoAuthenticator = errors.New("session: no authenticator configured")

	// ErrIncompleteSession is returned when the backend answers a login or
	// signup without a token or with an unusable user record.
	ErrIncompleteSession = errors.New("session: backend returned an incomplete session")

	// ErrCorruptStorage is returned by a Storage whose persisted document
	// cannot be decoded. The store treats it as no session.
	ErrCorruptStorage = errors.New("session: stored session is corrupt")
)

// ErrNoSession is returned by operations that need an active session.
var ErrNoSession = errors.New("session: not signed in")

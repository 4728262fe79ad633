package session

import "errors"

var (
	// ErrInvalidSession indicates a session violating the credential/identity
	// invariant: a token without an identity or an identity without a token.
	ErrInvalidSession = errors.New("session.invalid")

	// ErrNoPersistence indicates the store was constructed without a
	// persistence adapter.
	ErrNoPersistence = errors.New("session.no_persistence")

	// ErrHydrationFailed indicates the persisted record could not be read at
	// store construction.
	ErrHydrationFailed = errors.New("session.hydration_failed")

	// ErrPersistFailed indicates the in-memory session was updated but
	// mirroring it to durable storage failed.
	ErrPersistFailed = errors.New("session.persist_failed")
)

package session

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrymomot/shopclient/pkg/broadcast"
)

// Store owns the process-wide session value. Reads are served from an
// in-memory mirror; Set and Clear write the mirror first and then persist,
// so callers observe the new value the moment the call returns even when the
// durable side lags or fails.
//
// Writes are reserved for the login/logout flow and for credential-rejection
// handling; controllers consume sessions read-only.
type Store struct {
	mu          sync.RWMutex
	current     Session
	persistence Persistence
	changes     *broadcast.MemoryBroadcaster[Session]
}

// NewStore creates a store hydrated from p. A missing or malformed persisted
// record hydrates as the anonymous session rather than failing; only a
// persistence read error is surfaced.
func NewStore(ctx context.Context, p Persistence) (*Store, error) {
	if p == nil {
		return nil, ErrNoPersistence
	}

	entries, err := p.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrHydrationFailed, err)
	}

	return &Store{
		current:     sessionFromEntries(entries),
		persistence: p,
		changes:     broadcast.NewMemoryBroadcaster[Session](8),
	}, nil
}

// Get returns the current session. Anonymous when nobody is logged in.
func (st *Store) Get() Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.current
}

// Token returns the current credential, if any. Satisfies the token source
// contract of the API client.
func (st *Store) Token() (string, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.current.Token, st.current.Token != ""
}

// Set replaces the session wholesale and mirrors it to persistence. The
// in-memory value is updated even when persisting fails; the returned error
// then reports the persistence failure.
func (st *Store) Set(ctx context.Context, s Session) error {
	if !s.valid() {
		return ErrInvalidSession
	}

	st.mu.Lock()
	st.current = s
	st.mu.Unlock()

	_ = st.changes.Broadcast(ctx, broadcast.Message[Session]{Data: s})

	if s.IsAnonymous() {
		if err := st.persistence.Clear(ctx); err != nil {
			return errors.Join(ErrPersistFailed, err)
		}
		return nil
	}
	if err := st.persistence.Save(ctx, s.entries()); err != nil {
		return errors.Join(ErrPersistFailed, err)
	}
	return nil
}

// Clear resets to the anonymous session and removes the persisted record.
func (st *Store) Clear(ctx context.Context) error {
	return st.Set(ctx, Session{})
}

// Changes returns a subscription that receives the new session after every
// Set or Clear. The recommendation controller uses it to refresh on
// login/logout; the presentation layer uses it to re-render the header.
func (st *Store) Changes(ctx context.Context) broadcast.Subscriber[Session] {
	return st.changes.Subscribe(ctx)
}

// Close releases the change feed. The store remains readable.
func (st *Store) Close() error {
	return st.changes.Close()
}

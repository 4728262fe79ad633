// Package session owns the client's authenticated-session state.
//
// Exactly one Store exists per process. It keeps the current Session in
// memory and mirrors every change to a Persistence adapter: a JSON file by
// default, Redis when several processes share a login. At construction the
// store hydrates once from persistence; afterwards the mirror is the only
// thing anyone reads.
//
// The writable surface (Set, Clear) is deliberately narrow and whole-value:
// the login flow replaces the session, logout and credential rejection clear
// it, nothing else touches it. Controllers receive the store read-only and a
// change feed lets interested parties (recommendations, the presentation
// header) react to login/logout without polling.
//
//	p, _ := session.NewFilePersistence(path)
//	store, err := session.NewStore(ctx, p)
//	if err != nil { ... }
//	defer store.Close()
//
//	current := store.Get()
//	if current.IsAuthenticated() { ... }
package session

// Package broadcast provides a minimal type-safe pub/sub primitive used to
// decouple the session and controller layer from the presentation layer.
//
// The client core publishes three kinds of feeds over it: session snapshots
// on every login/logout, the session-invalidated signal emitted when the
// remote API rejects the credential, and user-visible notices. The
// presentation layer subscribes and reacts (re-render, navigate to login,
// show a toast); the core never drives navigation itself.
//
// Delivery is best-effort and non-blocking: a subscriber that stops draining
// its channel is dropped rather than allowed to stall publishers.
//
// Usage:
//
//	signals := broadcast.NewMemoryBroadcaster[authguard.Invalidated](8)
//	sub := signals.Subscribe(ctx)
//	go func() {
//	    for range sub.Receive() {
//	        // navigate to the login view
//	    }
//	}()
package broadcast

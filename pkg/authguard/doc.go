// Package authguard centralizes the handling of authorization failures.
//
// Any controller that receives an error from the API client passes it to
// Guard.Handle before running its own error path. A 401 or 403 means the
// remote API rejected the credential; the guard then clears the session
// store, tells the user why (using the server's message when it sent one),
// and emits a single session-invalidated signal for the presentation layer
// to act on. The controller sees "handled" and shows nothing of its own, so
// an auth failure surfaces exactly once no matter where it happened.
//
// There is no silent token renewal: once the credential is rejected the only
// way back is a full re-login.
package authguard

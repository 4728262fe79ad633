// Package account handles authentication flows against the remote API:
// login, registration, and logout. It owns the only legitimate path by which
// a session comes into existence; everything else in the module either reads
// the session or (in the auth guard's case) destroys it.
package account

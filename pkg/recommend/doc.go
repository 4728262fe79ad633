// Package recommend fetches per-user product recommendations.
//
// The controller reads identity from the session store and refreshes on
// login and logout. It degrades silently: fetch failures are logged and
// never shown, never treated as auth failures, and never interfere with the
// catalog. The remote API computes the recommendations; this side only asks.
package recommend

// Package apiclient wraps every outbound request to the remote catalog API.
//
// The client attaches the JSON content type on every request and a bearer
// Authorization header whenever its TokenSource yields a credential, then
// classifies the outcome into exactly three cases: success with a decoded
// JSON payload, *NetworkError when no response was received, and *HTTPError
// when the server answered outside the 2xx range. Nothing here retries or
// interprets status codes; the auth guard decides what a 401/403 means and
// controllers decide what to show for the rest.
//
//	client, err := apiclient.New(cfg.BaseURL, sessionStore,
//	    apiclient.WithTimeout(cfg.Timeout),
//	    apiclient.WithLogger(log),
//	)
package apiclient

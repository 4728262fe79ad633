package admin

import "errors"

var (
	// ErrNotAuthenticated indicates an admin operation was attempted on an
	// anonymous session. Authorization is ultimately the remote API's call;
	// this is the controller's defensive local check.
	ErrNotAuthenticated = errors.New("admin.not_authenticated")

	// ErrNotAdmin indicates the session lacks the admin privilege.
	ErrNotAdmin = errors.New("admin.admin_required")

	// ErrSessionInvalidated indicates the operation failed because the
	// remote API rejected the credential. The failure was already handled
	// centrally; callers must not surface it again.
	ErrSessionInvalidated = errors.New("admin.session_invalidated")

	// ErrNoDraft indicates SubmitEdit was called with no edit in progress.
	ErrNoDraft = errors.New("admin.no_draft")
)

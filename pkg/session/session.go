package session

import "strconv"

// Session is the client-held record of the current authenticated identity.
// The zero value is the anonymous session.
//
// Invariant: Token is present if and only if UserID is present. IsAdmin is
// meaningful only for authenticated sessions. Sessions are replaced
// wholesale on login and cleared wholesale on logout or credential
// rejection; there are no partial updates.
type Session struct {
	UserID   *int64 `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
	IsAdmin  bool   `json:"is_admin"`
	Token    string `json:"access_token,omitempty"`
}

// Authenticated builds a session for a logged-in user.
func Authenticated(userID int64, username string, isAdmin bool, token string) Session {
	return Session{
		UserID:   &userID,
		Username: username,
		IsAdmin:  isAdmin,
		Token:    token,
	}
}

// IsAuthenticated reports whether the session carries an identity.
func (s Session) IsAuthenticated() bool {
	return s.UserID != nil
}

// IsAnonymous reports whether the session carries no identity.
func (s Session) IsAnonymous() bool {
	return s.UserID == nil
}

// valid reports whether the credential/identity invariant holds.
func (s Session) valid() bool {
	return (s.UserID != nil) == (s.Token != "")
}

// entries flattens the session into the persisted key-value layout.
func (s Session) entries() map[string]string {
	if s.IsAnonymous() {
		return nil
	}
	return map[string]string{
		KeyUserID:   strconv.FormatInt(*s.UserID, 10),
		KeyUsername: s.Username,
		KeyIsAdmin:  strconv.FormatBool(s.IsAdmin),
		KeyToken:    s.Token,
	}
}

// sessionFromEntries rebuilds a session from persisted entries. Returns the
// anonymous session when the entries are absent, incomplete, or violate the
// credential/identity invariant, so a damaged persisted record can never
// hydrate into a half-authenticated state.
func sessionFromEntries(entries map[string]string) Session {
	if len(entries) == 0 {
		return Session{}
	}

	userID, err := strconv.ParseInt(entries[KeyUserID], 10, 64)
	if err != nil {
		return Session{}
	}
	token := entries[KeyToken]
	if token == "" {
		return Session{}
	}

	return Session{
		UserID:   &userID,
		Username: entries[KeyUsername],
		IsAdmin:  entries[KeyIsAdmin] == "true",
		Token:    token,
	}
}

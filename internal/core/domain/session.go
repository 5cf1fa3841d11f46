package domain

// Session is the persisted client state. An empty token means logged out.
type Session struct {
	// Token is the bearer credential.
	Token string

	// Email is the last-used account email.
	Email string

	// Organization is the active organization ID.
	Organization string
}

// IsAuthenticated reports whether a credential is present.
func (s Session) IsAuthenticated() bool {
	return s.Token != ""
}

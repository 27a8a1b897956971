package domain

// Session is the authenticated state of the client. It is also the exact
// subset persisted across restarts.
type Session struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	Token           string `json:"token,omitempty"`
	User            *User  `json:"user,omitempty"`
}

// Normalize enforces the session invariants: authenticated iff a token is
// held, and a user is present iff authenticated.
func (s Session) Normalize() Session {
	if !s.IsAuthenticated || s.Token == "" || s.User == nil {
		return Session{}
	}
	u := *s.User
	return Session{IsAuthenticated: true, Token: s.Token, User: &u}
}

// Identity returns the user's email and name, or empty strings.
func (s Session) Identity() (email, name string) {
	if s.User == nil {
		return "", ""
	}
	return s.User.Email, s.User.Name
}

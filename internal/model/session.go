package model

import "time"

// Session is an authenticated login. The token is what the client holds.
type Session struct {
	Token     string
	AccountID AccountID
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer valid at now
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

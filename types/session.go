package types

import "time"

// Session is a web UI login. It lives server-side; the browser only holds its ID.
type Session struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	// AdminPassword is kept after a successful admin fetch so the dashboard,
	// CSV download and chart frames can refetch without asking again.
	AdminPassword string `json:"admin_password,omitempty"`
}

// IsAdmin reports whether the session has passed the admin check.
func (s *Session) IsAdmin() bool {
	return s.AdminPassword != ""
}

// Expired reports whether the session lifetime has elapsed at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

package entities

import "time"

// User is the authenticated clinician profile as reported by the
// auth gateway. The id is opaque; no claims beyond identity are used.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session holds the server-side state for one authenticated browser.
// The token is the cookie value handed to the client; the gateway
// access token never leaves the server.
type Session struct {
	Token        string    `json:"token"`
	User         User      `json:"user"`
	GatewayToken string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Expired reports whether the session has passed its expiry.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

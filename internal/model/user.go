package model

import "time"

// User represents an account in the `users` table.  Accounts are created
// by sign-up and are the identity behind every console session.
type User struct {
	ID           string    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	CreatedAt    time.Time // users.created_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA‑256 hash of the raw token is stored.
type RefreshToken struct {
	UserID    string     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
}

// SessionUser is the identity part of a session.
type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is the authenticated-identity record that gates the console.
// It carries the token material needed to keep itself alive: a
// short-lived access token and the raw refresh token it was issued with.
type Session struct {
	ID               string      `json:"id"`
	User             SessionUser `json:"user"`
	AccessToken      string      `json:"access_token"`
	AccessExpiresAt  time.Time   `json:"access_expires_at"`
	RefreshToken     string      `json:"refresh_token"`
	RefreshExpiresAt time.Time   `json:"refresh_expires_at"`
}

// AccessExpired reports whether the access token has expired at now.
func (s *Session) AccessExpired(now time.Time) bool {
	return !now.Before(s.AccessExpiresAt)
}

// Package session implements the session lifecycle: login, registration,
// token refresh, logout, and reconstruction of a persisted session at
// startup. All state flows through one resource container; the persisted
// credential slots live behind the local store port.
package session

import "time"

// Storage keys for the persisted credential slots. Fixed: a session is
// only Ready once all of them are written.
const (
	KeyAccessToken  = "olympus.access_token"
	KeyRefreshToken = "olympus.refresh_token"
	KeyUser         = "olympus.user"
)

// UserProfile is the authenticated user's profile as the backend reports it.
type UserProfile struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	BusinessName string `json:"business_name,omitempty"`
	BusinessType string `json:"business_type,omitempty"`
}

// Session is the authenticated credential and profile bundle. Whenever the
// session container is Ready, both tokens are non-empty and persisted.
type Session struct {
	User         UserProfile
	AccessToken  string
	RefreshToken string
}

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	BusinessName string `json:"business_name"`
	BusinessType string `json:"business_type"`
}

// tokenResponse is the wire shape of login and register responses.
type tokenResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         UserProfile `json:"user"`
}

// refreshResponse is the wire shape of refresh responses; the refresh
// token itself is not rotated.
type refreshResponse struct {
	AccessToken string      `json:"access_token"`
	User        UserProfile `json:"user"`
}

// userResponse is the wire shape of profile update responses.
type userResponse struct {
	User UserProfile `json:"user"`
}

// DefaultRefreshLeeway is how long before token expiry the background
// refresher renews the session.
const DefaultRefreshLeeway = 2 * time.Minute

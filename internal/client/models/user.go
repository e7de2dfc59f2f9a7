// Package models holds the client-side data types shared by the API client,
// the session subsystem and the CLI.
package models

import (
	"time"

	"github.com/dmitrijs2005/littlex/internal/tokenx"
)

// DefaultAvatarURL is shown for users without an avatar of their own.
const DefaultAvatarURL = "https://icons.veryicon.com/png/o/miscellaneous/two-color-icon-library/user-286.png"

// User is the identity snapshot returned by the login/registration endpoints
// and persisted alongside the token.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	RootID      string `json:"root_id"`
	IsActivated bool   `json:"is_activated"`
	IsAdmin     bool   `json:"is_admin"`
	// Expiration is an expiry hint in epoch seconds or milliseconds; 0 is unset.
	Expiration      int64   `json:"expiration"`
	State           string  `json:"state"`
	Avatar          string  `json:"avatar"`
	ProfileUsername *string `json:"profile_username,omitempty"`
}

// ExpiresAt normalizes Expiration to an instant.
func (u *User) ExpiresAt() (time.Time, bool) {
	if u == nil {
		return time.Time{}, false
	}
	return tokenx.NormalizeEpoch(u.Expiration)
}

// DisplayName prefers the profile username over the email.
func (u *User) DisplayName() string {
	if u.ProfileUsername != nil && *u.ProfileUsername != "" {
		return *u.ProfileUsername
	}
	return u.Email
}

// WithDefaults returns a copy with presentation defaults applied.
func (u User) WithDefaults() User {
	if u.Avatar == "" {
		u.Avatar = DefaultAvatarURL
	}
	return u
}

// AuthPayload is what the login and registration endpoints hand back.
// Either field may be missing, in which case no session is established.
type AuthPayload struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Complete reports whether both the token and the user are present.
func (p *AuthPayload) Complete() bool {
	return p != nil && p.Token != "" && p.User != nil
}

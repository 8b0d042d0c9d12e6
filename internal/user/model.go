package user

import "time"

// Account status values. Only active accounts may authenticate.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusBanned   = "banned"
)

// RoleUser is the default role assigned at signup.
const RoleUser = "user"

// User is the credential anchor for an account. At least one of Email and
// PhoneNumber is present. PasswordHash is empty for SSO-only accounts, which
// instead carry a provider linkage. At most one session token and one OTP are
// live at a time; issuing a new one replaces the previous pair.
type User struct {
	ID           string
	Email        string
	PhoneNumber  string
	Role         string
	Status       string
	PasswordHash []byte

	SSOProvider string
	SSOUID      string

	SessionToken     string
	SessionExpiresAt time.Time

	OTPCode      string
	OTPExpiresAt time.Time

	LastLoginAt time.Time
	CreatedAt   time.Time
}

// HasLiveSession reports whether the stored session pair is present and
// unexpired at the given instant.
func (u User) HasLiveSession(now time.Time) bool {
	return u.SessionToken != "" && now.Before(u.SessionExpiresAt)
}

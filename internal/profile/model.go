package profile

import "time"

// Profile holds the presentation data attached to a user. The credential core
// treats it as an opaque record keyed by user identifier.
type Profile struct {
	UserID        string            `json:"user_id"`
	FullName      string            `json:"full_name,omitempty"`
	Gender        string            `json:"gender,omitempty"`
	DOB           string            `json:"dob,omitempty"`
	Bio           string            `json:"bio,omitempty"`
	AvatarURL     string            `json:"avatar_url,omitempty"`
	SocialLinks   map[string]string `json:"social_links,omitempty"`
	EmailVerified bool              `json:"email_verified"`
	PhoneVerified bool              `json:"phone_verified"`
	CreatedAt     time.Time         `json:"created_at,omitempty"`
}

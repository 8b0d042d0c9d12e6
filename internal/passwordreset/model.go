package passwordreset

import "time"

// ResetRequest is a single password-reset grant. A token is redeemable while
// Used is false and the expiry has not passed; redemption flips Used exactly
// once. Multiple outstanding requests may coexist for one user.
type ResetRequest struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// Redeemable reports whether the request can still be consumed at now.
func (r ResetRequest) Redeemable(now time.Time) bool {
	return !r.Used && now.Before(r.ExpiresAt)
}

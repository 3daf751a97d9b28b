package auth

import (
	"time"

	"github.com/google/uuid"
)

// ResetTokenTTL is how long a password reset token stays valid.
const ResetTokenTTL = time.Hour

// NewResetToken returns a fresh reset token and its expiry time.
func NewResetToken() (token string, expiresAt time.Time) {
	return uuid.NewString(), time.Now().Add(ResetTokenTTL)
}

// TokenUsable reports whether a reset token can still redeem a password
// change: not yet used and not past its expiry.
func TokenUsable(used bool, expiresAt, now time.Time) bool {
	return !used && now.Before(expiresAt)
}

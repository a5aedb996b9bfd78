package models

import "time"

// RefreshToken is a ledger row; its existence is what makes a refresh token usable.
type RefreshToken struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Token     string    `db:"token" json:"-"`
	UserRole  UserRole  `db:"user_role" json:"user_role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
}

// Expired reports whether the row's recorded expiry is before now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

package domain

import (
	"strings"
	"time"
)

// User is the sole persisted entity: a registered health-authority member.
type User struct {
	ID              string    `json:"id"`
	Firstname       string    `json:"firstname"`
	Lastname        string    `json:"lastname"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	HealthAuthority string    `json:"healthAuthority"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Claims is the identity asserted by an issued token.
type Claims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
}

// NormalizeEmail returns the canonical form used as the login key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

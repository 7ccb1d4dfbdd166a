package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents the canonical identity entity. A user exists from sign-up;
// the tenant account is only created once the email address is verified.
type User struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email           string     `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash    string     `gorm:"column:password_hash;not null"`
	Name            string     `gorm:"column:name;not null"`
	EmailVerifiedAt *time.Time `gorm:"column:email_verified_at"`
	LastLoginAt     *time.Time `gorm:"column:last_login_at"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// EmailVerified reports whether the user completed email confirmation.
func (u User) EmailVerified() bool {
	return u.EmailVerifiedAt != nil
}

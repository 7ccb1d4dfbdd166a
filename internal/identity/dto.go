package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/vitrinehub/vitrine-backend/pkg/db/models"
)

// UserDTO is the API-facing shape of a user identity.
type UserDTO struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

// SessionDTO carries the freshly minted token pair plus the signed-in user.
type SessionDTO struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	User         UserDTO `json:"user"`
}

// SignUpInput carries the registration fields.
type SignUpInput struct {
	Name           string
	Email          string
	Password       string
	TurnstileToken string
	RemoteIP       string
}

// SignInInput carries the credential pair.
type SignInInput struct {
	Email    string
	Password string
}

// ResendConfirmationInput carries the resend request fields.
type ResendConfirmationInput struct {
	Email          string
	TurnstileToken string
	RemoteIP       string
}

// FromUserModel maps a persisted user onto its DTO.
func FromUserModel(m *models.User) *UserDTO {
	if m == nil {
		return nil
	}
	return &UserDTO{
		ID:            m.ID,
		Email:         m.Email,
		Name:          m.Name,
		EmailVerified: m.EmailVerified(),
		CreatedAt:     m.CreatedAt,
	}
}

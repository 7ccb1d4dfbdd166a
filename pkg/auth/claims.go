package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vitrinehub/vitrine-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
// AccountID/TenantID/AccountStatus are nil/empty for users that verified
// their email but have not completed account provisioning yet.
type AccessTokenPayload struct {
	UserID        uuid.UUID
	AccountID     *uuid.UUID
	TenantID      *uuid.UUID
	AccountStatus *enums.AccountStatus
	EmailVerified bool
	JTI           string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID        uuid.UUID            `json:"user_id"`
	AccountID     *uuid.UUID           `json:"account_id,omitempty"`
	TenantID      *uuid.UUID           `json:"tenant_id,omitempty"`
	AccountStatus *enums.AccountStatus `json:"account_status,omitempty"`
	EmailVerified bool                 `json:"email_verified"`
	jwt.RegisteredClaims
}

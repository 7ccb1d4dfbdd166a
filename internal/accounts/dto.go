package accounts

import (
	"time"

	"github.com/google/uuid"

	"github.com/vitrinehub/vitrine-backend/pkg/db/models"
	"github.com/vitrinehub/vitrine-backend/pkg/enums"
)

// AccountDTO is the API-facing shape of an account.
type AccountDTO struct {
	ID        uuid.UUID           `json:"id"`
	UserID    uuid.UUID           `json:"user_id"`
	TenantID  uuid.UUID           `json:"tenant_id"`
	Email     string              `json:"email"`
	Name      string              `json:"name"`
	Phone     *string             `json:"phone,omitempty"`
	Status    enums.AccountStatus `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// StatusEventDTO is one audit entry in an account's status history.
type StatusEventDTO struct {
	ID         uuid.UUID           `json:"id"`
	AccountID  uuid.UUID           `json:"account_id"`
	FromStatus enums.AccountStatus `json:"from_status"`
	ToStatus   enums.AccountStatus `json:"to_status"`
	Reason     string              `json:"reason"`
	ActorType  enums.ActorType     `json:"actor_type"`
	ActorID    *uuid.UUID          `json:"actor_id,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
}

// StatusEventListDTO is one page of an account's status history.
type StatusEventListDTO struct {
	Events     []StatusEventDTO `json:"events"`
	NextCursor *string          `json:"next_cursor,omitempty"`
}

// CreateAccountDTO carries the fields required to provision an account.
type CreateAccountDTO struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Email    string
	Name     string
}

// ToModel maps the DTO onto a fresh account row.
func (d CreateAccountDTO) ToModel() *models.Account {
	return &models.Account{
		UserID:   d.UserID,
		TenantID: d.TenantID,
		Email:    d.Email,
		Name:     d.Name,
		Status:   enums.AccountStatusActive,
	}
}

// FromModel maps a persisted account onto its DTO.
func FromModel(m *models.Account) *AccountDTO {
	if m == nil {
		return nil
	}
	return &AccountDTO{
		ID:        m.ID,
		UserID:    m.UserID,
		TenantID:  m.TenantID,
		Email:     m.Email,
		Name:      m.Name,
		Phone:     m.Phone,
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func eventFromModel(m *models.AccountStatusEvent) StatusEventDTO {
	return StatusEventDTO{
		ID:         m.ID,
		AccountID:  m.AccountID,
		FromStatus: m.FromStatus,
		ToStatus:   m.ToStatus,
		Reason:     m.Reason,
		ActorType:  m.ActorType,
		ActorID:    m.ActorID,
		CreatedAt:  m.CreatedAt,
	}
}

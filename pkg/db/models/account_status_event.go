package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vitrinehub/vitrine-backend/pkg/enums"
)

// AccountStatusEvent is an append-only audit row recorded in the same
// transaction as the status change it describes.
type AccountStatusEvent struct {
	ID         uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID  uuid.UUID           `gorm:"column:account_id;type:uuid;not null;index:account_status_events_account_id_idx"`
	FromStatus enums.AccountStatus `gorm:"column:from_status;type:account_status;not null"`
	ToStatus   enums.AccountStatus `gorm:"column:to_status;type:account_status;not null"`
	Reason     string              `gorm:"column:reason;not null"`
	ActorType  enums.ActorType     `gorm:"column:actor_type;not null"`
	ActorID    *uuid.UUID          `gorm:"column:actor_id;type:uuid"`
	CreatedAt  time.Time           `gorm:"column:created_at;autoCreateTime"`
}

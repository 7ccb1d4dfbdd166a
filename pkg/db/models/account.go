package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vitrinehub/vitrine-backend/pkg/enums"
)

// Account joins a verified user to exactly one tenant. Created at most once
// per user (unique index on user_id) and never hard-deleted; "deleted" is a
// terminal status value.
type Account struct {
	ID        uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID           `gorm:"column:user_id;type:uuid;not null;uniqueIndex:accounts_user_id_key"`
	TenantID  uuid.UUID           `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:accounts_tenant_id_key"`
	Email     string              `gorm:"column:email;not null"`
	Name      string              `gorm:"column:name;not null"`
	Phone     *string             `gorm:"column:phone"`
	Status    enums.AccountStatus `gorm:"column:status;type:account_status;not null;default:'active'"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

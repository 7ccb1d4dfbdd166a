package accounts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vitrinehub/vitrine-backend/pkg/db/models"
	"github.com/vitrinehub/vitrine-backend/pkg/enums"
	"github.com/vitrinehub/vitrine-backend/pkg/pagination"
)

// Repository exposes account persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an accounts repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new account row. The unique index on user_id makes the
// insert at-most-once per user.
func (r *Repository) Create(ctx context.Context, dto CreateAccountDTO) (*models.Account, error) {
	account := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return nil, err
	}
	return account, nil
}

// FindByID loads an account by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// FindByUserID loads the account owned by the given user.
func (r *Repository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// FindByTenantID loads the account bound to the given tenant.
func (r *Repository) FindByTenantID(ctx context.Context, tenantID uuid.UUID) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, "tenant_id = ?", tenantID).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// UpdateStatusWithTx writes the new status inside the provided transaction.
func (r *Repository) UpdateStatusWithTx(tx *gorm.DB, id uuid.UUID, status enums.AccountStatus) error {
	return tx.
		Model(&models.Account{}).
		Where("id = ?", id).
		UpdateColumn("status", status).Error
}

// CreateEventWithTx appends one audit event inside the provided transaction.
func (r *Repository) CreateEventWithTx(tx *gorm.DB, event *models.AccountStatusEvent) error {
	return tx.Create(event).Error
}

// ListEvents returns a page of the status history for an account, newest
// first. The cursor is the (created_at, id) pair of the last row seen.
func (r *Repository) ListEvents(ctx context.Context, accountID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.AccountStatusEvent, error) {
	query := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var events []models.AccountStatusEvent
	if err := query.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

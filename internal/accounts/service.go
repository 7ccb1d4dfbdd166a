package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vitrinehub/vitrine-backend/pkg/db"
	"github.com/vitrinehub/vitrine-backend/pkg/db/models"
	"github.com/vitrinehub/vitrine-backend/pkg/enums"
	pkgerrors "github.com/vitrinehub/vitrine-backend/pkg/errors"
	"github.com/vitrinehub/vitrine-backend/pkg/pagination"
)

type accountsRepository interface {
	Create(ctx context.Context, dto CreateAccountDTO) (*models.Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Account, error)
	FindByTenantID(ctx context.Context, tenantID uuid.UUID) (*models.Account, error)
	UpdateStatusWithTx(tx *gorm.DB, id uuid.UUID, status enums.AccountStatus) error
	CreateEventWithTx(tx *gorm.DB, event *models.AccountStatusEvent) error
	ListEvents(ctx context.Context, accountID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.AccountStatusEvent, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ChangeStatusInput carries one requested status transition.
type ChangeStatusInput struct {
	AccountID uuid.UUID
	ToStatus  enums.AccountStatus
	Reason    string
	ActorType enums.ActorType
	ActorID   *uuid.UUID
}

// Service exposes account lifecycle operations.
type Service interface {
	Provision(ctx context.Context, userID uuid.UUID, email, name string) (*AccountDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*AccountDTO, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*AccountDTO, error)
	GetByTenantID(ctx context.Context, tenantID uuid.UUID) (*AccountDTO, error)
	ChangeStatus(ctx context.Context, input ChangeStatusInput) (*AccountDTO, error)
	ListStatusEvents(ctx context.Context, accountID uuid.UUID, page pagination.Params) (*StatusEventListDTO, error)
}

type service struct {
	repo accountsRepository
	tx   txRunner
}

// NewService builds an accounts service with the provided repository and tx runner.
func NewService(repo accountsRepository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("accounts repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// Provision creates the account and its tenant for a freshly verified user.
// A concurrent duplicate insert loses the unique-index race and re-reads the
// winner's row instead of failing.
func (s *service) Provision(ctx context.Context, userID uuid.UUID, email, name string) (*AccountDTO, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	existing, err := s.repo.FindByUserID(ctx, userID)
	if err == nil {
		return FromModel(existing), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup account")
	}

	account, err := s.repo.Create(ctx, CreateAccountDTO{
		UserID:   userID,
		TenantID: uuid.New(),
		Email:    email,
		Name:     strings.TrimSpace(name),
	})
	if err != nil {
		if db.IsUniqueViolation(err, "accounts_user_id_key") {
			winner, readErr := s.repo.FindByUserID(ctx, userID)
			if readErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, readErr, "re-read account after race")
			}
			return FromModel(winner), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create account")
	}
	return FromModel(account), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*AccountDTO, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}
	return FromModel(account), nil
}

func (s *service) GetByUserID(ctx context.Context, userID uuid.UUID) (*AccountDTO, error) {
	account, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}
	return FromModel(account), nil
}

func (s *service) GetByTenantID(ctx context.Context, tenantID uuid.UUID) (*AccountDTO, error) {
	account, err := s.repo.FindByTenantID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}
	return FromModel(account), nil
}

// ChangeStatus applies one transition of the status machine. The status write
// and its audit event commit in the same transaction; a rejected transition
// touches no rows.
func (s *service) ChangeStatus(ctx context.Context, input ChangeStatusInput) (*AccountDTO, error) {
	if strings.TrimSpace(input.Reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason is required")
	}
	if !input.ActorType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid actor type")
	}
	if input.ActorType != enums.ActorTypeSystem && input.ActorID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor id is required for non-system actors")
	}

	account, err := s.repo.FindByID(ctx, input.AccountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}

	if err := ValidateTransition(account.Status, input.ToStatus); err != nil {
		return nil, err
	}

	event := &models.AccountStatusEvent{
		AccountID:  account.ID,
		FromStatus: account.Status,
		ToStatus:   input.ToStatus,
		Reason:     strings.TrimSpace(input.Reason),
		ActorType:  input.ActorType,
		ActorID:    input.ActorID,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.UpdateStatusWithTx(tx, account.ID, input.ToStatus); err != nil {
			return err
		}
		return s.repo.CreateEventWithTx(tx, event)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply status transition")
	}

	account.Status = input.ToStatus
	return FromModel(account), nil
}

func (s *service) ListStatusEvents(ctx context.Context, accountID uuid.UUID, page pagination.Params) (*StatusEventListDTO, error) {
	cursor, err := pagination.ParseCursor(page.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(page.Limit)

	events, err := s.repo.ListEvents(ctx, accountID, pagination.LimitWithBuffer(page.Limit), cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list status events")
	}

	list := &StatusEventListDTO{Events: make([]StatusEventDTO, 0, len(events))}
	if len(events) > limit {
		events = events[:limit]
		last := events[len(events)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		list.NextCursor = &next
	}
	for i := range events {
		list.Events = append(list.Events, eventFromModel(&events[i]))
	}
	return list, nil
}

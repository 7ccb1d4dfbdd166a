package products

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vitrinehub/vitrine-backend/pkg/db/models"
	"github.com/vitrinehub/vitrine-backend/pkg/enums"
	pkgerrors "github.com/vitrinehub/vitrine-backend/pkg/errors"
)

// maxPublishedProducts caps the live catalog per business.
const maxPublishedProducts = 3

// defaultDraftTitle is the placeholder title for freshly created drafts.
const defaultDraftTitle = "Novo produto"

type productsRepository interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, businessID, productID uuid.UUID) (*models.Product, error)
	FindByIDWithTx(tx *gorm.DB, businessID, productID uuid.UUID) (*models.Product, error)
	LockBusinessWithTx(tx *gorm.DB, businessID uuid.UUID) error
	ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]models.Product, error)
	CountPublishedWithTx(tx *gorm.DB, businessID uuid.UUID) (int64, error)
	NextPosition(ctx context.Context, businessID uuid.UUID) (int, error)
	UpdateWithTx(tx *gorm.DB, product *models.Product) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ProductStatus) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CreateProductInput carries the optional fields accepted at draft creation.
type CreateProductInput struct {
	Type *enums.ProductType
}

// UpdateProductInput captures the mutable product fields. Nil means
// "leave unchanged".
type UpdateProductInput struct {
	Type             *enums.ProductType
	Title            *string
	ShortDescription *string
	Description      *string
	PriceCents       *int64
	Currency         *string
	CTALabel         *string
	ImageURL         *string
	Position         *int
}

// Service exposes product lifecycle operations.
type Service interface {
	CreateDraft(ctx context.Context, businessID uuid.UUID, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, businessID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	Publish(ctx context.Context, businessID, productID uuid.UUID) (*ProductDTO, error)
	Archive(ctx context.Context, businessID, productID uuid.UUID) (*ProductDTO, error)
	List(ctx context.Context, businessID uuid.UUID) ([]ProductDTO, error)
}

type service struct {
	repo productsRepository
	tx   txRunner
	now  func() time.Time
}

// NewService builds a products service with the provided repository and tx runner.
func NewService(repo productsRepository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{repo: repo, tx: tx, now: time.Now}, nil
}

// CreateDraft appends a placeholder draft to the end of the catalog.
func (s *service) CreateDraft(ctx context.Context, businessID uuid.UUID, input CreateProductInput) (*ProductDTO, error) {
	productType := enums.ProductTypeService
	if input.Type != nil {
		if !input.Type.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product type").
				WithDetails(map[string]any{"type": string(*input.Type)})
		}
		productType = *input.Type
	}

	position, err := s.repo.NextPosition(ctx, businessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "compute product position")
	}

	product := &models.Product{
		BusinessID: businessID,
		Status:     enums.ProductStatusDraft,
		Type:       productType,
		Title:      defaultDraftTitle,
		Position:   position,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product draft")
	}
	return FromModel(product), nil
}

// Update edits product fields. Editing a published product demotes it to
// draft in the same transaction as the field write; archived products reject
// all edits.
func (s *service) Update(ctx context.Context, businessID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	if err := validateUpdateInput(input); err != nil {
		return nil, err
	}

	var updated *models.Product
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		product, err := s.repo.FindByIDWithTx(tx, businessID, productID)
		if err != nil {
			return err
		}
		if product.Status == enums.ProductStatusArchived {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "archived products cannot be edited")
		}

		applyUpdate(product, input)
		if product.Status == enums.ProductStatusPublished {
			// demotion rides the same transaction as the edit
			product.Status = enums.ProductStatusDraft
		}

		if err := s.repo.UpdateWithTx(tx, product); err != nil {
			return err
		}
		updated = product
		return nil
	})
	if err != nil {
		return nil, classifyProductErr(err, "update product")
	}
	return FromModel(updated), nil
}

// Publish promotes a draft while re-checking the published quota inside the
// transaction. Publishing an already-published product is a no-op success.
func (s *service) Publish(ctx context.Context, businessID, productID uuid.UUID) (*ProductDTO, error) {
	var published *models.Product
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		product, err := s.repo.FindByIDWithTx(tx, businessID, productID)
		if err != nil {
			return err
		}
		switch product.Status {
		case enums.ProductStatusArchived:
			return pkgerrors.New(pkgerrors.CodeStateConflict, "archived products cannot be published")
		case enums.ProductStatusPublished:
			published = product
			return nil
		}

		// publishes for the same business serialize on the parent row
		if err := s.repo.LockBusinessWithTx(tx, businessID); err != nil {
			return err
		}

		count, err := s.repo.CountPublishedWithTx(tx, businessID)
		if err != nil {
			return err
		}
		if count >= maxPublishedProducts {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "published product limit reached").
				WithDetails(map[string]any{"limit": maxPublishedProducts})
		}

		product.Status = enums.ProductStatusPublished
		now := s.now()
		product.PublishedAt = &now
		if err := s.repo.UpdateWithTx(tx, product); err != nil {
			return err
		}
		published = product
		return nil
	})
	if err != nil {
		return nil, classifyProductErr(err, "publish product")
	}
	return FromModel(published), nil
}

// Archive retires a product permanently. Archiving twice is a no-op success.
func (s *service) Archive(ctx context.Context, businessID, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, businessID, productID)
	if err != nil {
		return nil, classifyProductErr(err, "load product")
	}
	if product.Status == enums.ProductStatusArchived {
		return FromModel(product), nil
	}
	if err := s.repo.UpdateStatus(ctx, product.ID, enums.ProductStatusArchived); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "archive product")
	}
	product.Status = enums.ProductStatusArchived
	return FromModel(product), nil
}

// List returns the business's full catalog in display order.
func (s *service) List(ctx context.Context, businessID uuid.UUID) ([]ProductDTO, error) {
	items, err := s.repo.ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return FromModels(items), nil
}

func validateUpdateInput(input UpdateProductInput) error {
	if input.Type != nil && !input.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid product type").
			WithDetails(map[string]any{"type": string(*input.Type)})
	}
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
	}
	if input.PriceCents != nil && *input.PriceCents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.Position != nil && *input.Position < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "position cannot be negative")
	}
	return nil
}

func applyUpdate(product *models.Product, input UpdateProductInput) {
	if input.Type != nil {
		product.Type = *input.Type
	}
	if input.Title != nil {
		product.Title = strings.TrimSpace(*input.Title)
	}
	if input.ShortDescription != nil {
		product.ShortDescription = cloneStringPtr(input.ShortDescription)
	}
	if input.Description != nil {
		product.Description = cloneStringPtr(input.Description)
	}
	if input.PriceCents != nil {
		price := *input.PriceCents
		product.PriceCents = &price
	}
	if input.Currency != nil {
		product.Currency = cloneStringPtr(input.Currency)
	}
	if input.CTALabel != nil {
		product.CTALabel = cloneStringPtr(input.CTALabel)
	}
	if input.ImageURL != nil {
		product.ImageURL = cloneStringPtr(input.ImageURL)
	}
	if input.Position != nil {
		product.Position = *input.Position
	}
}

func classifyProductErr(err error, action string) error {
	var typed *pkgerrors.Error
	if errors.As(err, &typed) {
		return typed
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}

func cloneStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	cpy := *value
	return &cpy
}

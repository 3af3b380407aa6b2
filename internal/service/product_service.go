package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/opdexport/quotation-api/internal/auth"
	"github.com/opdexport/quotation-api/internal/domain"
	"github.com/opdexport/quotation-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProductService manages company catalogs. Sellers only see catalogs of
// companies they actively represent.
type ProductService struct {
	repo           *repository.ProductRepository
	companyRepo    *repository.CompanyRepository
	representation *RepresentationService
	logger         *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	repo *repository.ProductRepository,
	companyRepo *repository.CompanyRepository,
	representation *RepresentationService,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		repo:           repo,
		companyRepo:    companyRepo,
		representation: representation,
		logger:         logger,
	}
}

// Create adds a catalog item to a company. SKUs are unique per company.
func (s *ProductService) Create(ctx context.Context, principal *auth.Principal, in *domain.CreateProductRequest) (*domain.Product, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}

	if _, err := s.companyRepo.GetByID(ctx, in.CompanyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to load company: %w", err)
	}

	product := &domain.Product{
		CompanyID:   in.CompanyID,
		SKU:         in.SKU,
		Name:        in.Name,
		Description: in.Description,
		UnitPrice:   in.UnitPrice,
		IsActive:    true,
	}
	if in.Unit != "" {
		product.Unit = in.Unit
	}

	if err := s.repo.Create(ctx, product); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateSKU
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("product created",
		zap.String("product_id", product.ID.String()),
		zap.String("company_id", in.CompanyID.String()),
		zap.String("sku", product.SKU))

	return product, nil
}

// GetByID loads a product the principal may see
func (s *ProductService) GetByID(ctx context.Context, principal *auth.Principal, id uuid.UUID) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	representing, err := s.representation.IsRepresenting(ctx, principal, product.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to check representation: %w", err)
	}
	if !representing {
		return nil, ErrForbidden
	}

	return product, nil
}

// Update overwrites mutable product fields
func (s *ProductService) Update(ctx context.Context, principal *auth.Principal, id uuid.UUID, in *domain.CreateProductRequest) (*domain.Product, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	product.SKU = in.SKU
	product.Name = in.Name
	product.Description = in.Description
	product.UnitPrice = in.UnitPrice
	if in.Unit != "" {
		product.Unit = in.Unit
	}

	if err := s.repo.Update(ctx, product); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateSKU
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.logger.Info("product updated", zap.String("product_id", id.String()))

	return product, nil
}

// Delete removes a product that no quotation references
func (s *ProductService) Delete(ctx context.Context, principal *auth.Principal, id uuid.UUID) error {
	if !principal.IsAdmin() {
		return ErrForbidden
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to load product: %w", err)
	}

	count, err := s.repo.CountQuotationItems(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count quotation items: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: product is referenced by quotations", ErrInvalidState)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.logger.Info("product deleted", zap.String("product_id", id.String()))

	return nil
}

// List returns products within the caller's company scope. Admins see
// everything; sellers see the catalogs they represent; clients see nothing.
func (s *ProductService) List(ctx context.Context, principal *auth.Principal, page, pageSize int, search string) ([]domain.Product, int64, error) {
	switch {
	case principal.IsAdmin():
		return s.repo.ListAll(ctx, page, pageSize, search)
	case principal.IsSeller():
		if principal.SellerID == nil {
			return nil, 0, ErrForbidden
		}
		companyIDs, err := s.representation.CompanyIDsForSeller(ctx, *principal.SellerID)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to resolve company scope: %w", err)
		}
		return s.repo.List(ctx, companyIDs, page, pageSize, search)
	}
	return nil, 0, ErrForbidden
}

// ListByCompany returns a company's catalog if the principal may see it
func (s *ProductService) ListByCompany(ctx context.Context, principal *auth.Principal, companyID uuid.UUID, page, pageSize int, search string) ([]domain.Product, int64, error) {
	representing, err := s.representation.IsRepresenting(ctx, principal, companyID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to check representation: %w", err)
	}
	if !representing {
		return nil, 0, ErrForbidden
	}
	return s.repo.List(ctx, []uuid.UUID{companyID}, page, pageSize, search)
}

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

// CompanyService manages exporter companies
type CompanyService struct {
	repo   *repository.CompanyRepository
	logger *zap.Logger
}

// NewCompanyService creates a new CompanyService
func NewCompanyService(repo *repository.CompanyRepository, logger *zap.Logger) *CompanyService {
	return &CompanyService{repo: repo, logger: logger}
}

// Create registers a company. Tax ids are unique across the platform.
func (s *CompanyService) Create(ctx context.Context, principal *auth.Principal, in *domain.CreateCompanyRequest) (*domain.Company, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}

	if _, err := s.repo.GetByTaxID(ctx, in.TaxID); err == nil {
		return nil, ErrDuplicateTaxID
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check tax id: %w", err)
	}

	company := &domain.Company{
		LegalName:   in.LegalName,
		TradeName:   in.TradeName,
		TaxID:       in.TaxID,
		Email:       in.Email,
		Phone:       in.Phone,
		Address:     in.Address,
		City:        in.City,
		State:       in.State,
		PostalCode:  in.PostalCode,
		IsActive:    true,
	}
	if in.Country != "" {
		company.Country = in.Country
	}
	if in.BankName != "" {
		company.BankName = in.BankName
		company.BankBranch = in.BankBranch
		company.BankAccount = in.BankAccount
	}
	if in.BrandColor != "" {
		company.BrandColor = in.BrandColor
	}
	if in.BaseCurrency != "" {
		company.BaseCurrency = in.BaseCurrency
	}

	if err := s.repo.Create(ctx, company); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateTaxID
		}
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	s.logger.Info("company created",
		zap.String("company_id", company.ID.String()),
		zap.String("legal_name", company.LegalName))

	return company, nil
}

// GetByID loads a company
func (s *CompanyService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Company, error) {
	company, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to load company: %w", err)
	}
	return company, nil
}

// Update applies a partial update to a company
func (s *CompanyService) Update(ctx context.Context, principal *auth.Principal, id uuid.UUID, in *domain.UpdateCompanyRequest) (*domain.Company, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}

	company, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.LegalName != nil {
		company.LegalName = *in.LegalName
	}
	if in.TradeName != nil {
		company.TradeName = *in.TradeName
	}
	if in.Email != nil {
		company.Email = *in.Email
	}
	if in.Phone != nil {
		company.Phone = *in.Phone
	}
	if in.Address != nil {
		company.Address = *in.Address
	}
	if in.City != nil {
		company.City = *in.City
	}
	if in.State != nil {
		company.State = *in.State
	}
	if in.PostalCode != nil {
		company.PostalCode = *in.PostalCode
	}
	if in.BankName != nil {
		company.BankName = *in.BankName
	}
	if in.BankBranch != nil {
		company.BankBranch = *in.BankBranch
	}
	if in.BankAccount != nil {
		company.BankAccount = *in.BankAccount
	}
	if in.BrandColor != nil {
		company.BrandColor = *in.BrandColor
	}
	if in.IsActive != nil {
		company.IsActive = *in.IsActive
	}

	if err := s.repo.Update(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to update company: %w", err)
	}

	s.logger.Info("company updated", zap.String("company_id", id.String()))

	return company, nil
}

// Delete removes a company that nothing references. Companies with
// representations, products or quotations must be deactivated instead.
func (s *CompanyService) Delete(ctx context.Context, principal *auth.Principal, id uuid.UUID) error {
	if !principal.IsAdmin() {
		return ErrForbidden
	}

	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	refs, err := s.repo.CountReferences(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count references: %w", err)
	}
	if refs > 0 {
		return ErrCompanyInUse
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete company: %w", err)
	}

	s.logger.Info("company deleted", zap.String("company_id", id.String()))

	return nil
}

// List returns a page of companies
func (s *CompanyService) List(ctx context.Context, page, pageSize int, search string, activeOnly bool) ([]domain.Company, int64, error) {
	return s.repo.List(ctx, page, pageSize, search, activeOnly)
}

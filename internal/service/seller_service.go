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

// SellerService manages seller profiles
type SellerService struct {
	repo   *repository.SellerRepository
	logger *zap.Logger
}

// NewSellerService creates a new SellerService
func NewSellerService(repo *repository.SellerRepository, logger *zap.Logger) *SellerService {
	return &SellerService{repo: repo, logger: logger}
}

// Create registers a seller profile
func (s *SellerService) Create(ctx context.Context, principal *auth.Principal, in *domain.CreateSellerRequest) (*domain.Seller, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}

	if _, err := s.repo.GetByEmail(ctx, in.Email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	seller := &domain.Seller{
		Name:                     in.Name,
		Email:                    in.Email,
		Phone:                    in.Phone,
		DefaultCommissionPercent: in.DefaultCommissionPercent,
		MonthlyTarget:            in.MonthlyTarget,
		IsActive:                 true,
	}

	if err := s.repo.Create(ctx, seller); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create seller: %w", err)
	}

	s.logger.Info("seller created",
		zap.String("seller_id", seller.ID.String()),
		zap.String("email", seller.Email))

	return seller, nil
}

// GetByID loads a seller
func (s *SellerService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Seller, error) {
	seller, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSellerNotFound
		}
		return nil, fmt.Errorf("failed to load seller: %w", err)
	}
	return seller, nil
}

// Update overwrites mutable seller fields
func (s *SellerService) Update(ctx context.Context, principal *auth.Principal, id uuid.UUID, in *domain.CreateSellerRequest) (*domain.Seller, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}

	seller, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	seller.Name = in.Name
	seller.Email = in.Email
	seller.Phone = in.Phone
	seller.DefaultCommissionPercent = in.DefaultCommissionPercent
	seller.MonthlyTarget = in.MonthlyTarget

	if err := s.repo.Update(ctx, seller); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to update seller: %w", err)
	}

	s.logger.Info("seller updated", zap.String("seller_id", id.String()))

	return seller, nil
}

// SetActive flips a seller's active flag. Inactive sellers keep their
// representations but cannot issue quotations.
func (s *SellerService) SetActive(ctx context.Context, principal *auth.Principal, id uuid.UUID, active bool) (*domain.Seller, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}

	seller, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	seller.IsActive = active
	if err := s.repo.Update(ctx, seller); err != nil {
		return nil, fmt.Errorf("failed to update seller: %w", err)
	}

	s.logger.Info("seller active flag changed",
		zap.String("seller_id", id.String()),
		zap.Bool("active", active))

	return seller, nil
}

// Delete removes a seller without quotation history
func (s *SellerService) Delete(ctx context.Context, principal *auth.Principal, id uuid.UUID) error {
	if !principal.IsAdmin() {
		return ErrForbidden
	}

	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	count, err := s.repo.CountQuotations(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count quotations: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: seller has quotation history", ErrInvalidState)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete seller: %w", err)
	}

	s.logger.Info("seller deleted", zap.String("seller_id", id.String()))

	return nil
}

// List returns a page of sellers
func (s *SellerService) List(ctx context.Context, page, pageSize int, search string, activeOnly bool) ([]domain.Seller, int64, error) {
	return s.repo.List(ctx, page, pageSize, search, activeOnly)
}

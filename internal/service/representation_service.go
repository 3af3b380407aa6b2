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

// RepresentationService manages the seller-company representation registry:
// who may see and sell which catalog. It owns the request/approve/reject
// workflow and answers the scoping questions the rest of the platform asks.
type RepresentationService struct {
	repRepo     *repository.RepresentationRepository
	requestRepo *repository.RepresentationRequestRepository
	companyRepo *repository.CompanyRepository
	sellerRepo  *repository.SellerRepository
	logger      *zap.Logger
}

// NewRepresentationService creates a new RepresentationService
func NewRepresentationService(
	repRepo *repository.RepresentationRepository,
	requestRepo *repository.RepresentationRequestRepository,
	companyRepo *repository.CompanyRepository,
	sellerRepo *repository.SellerRepository,
	logger *zap.Logger,
) *RepresentationService {
	return &RepresentationService{
		repRepo:     repRepo,
		requestRepo: requestRepo,
		companyRepo: companyRepo,
		sellerRepo:  sellerRepo,
		logger:      logger,
	}
}

// RequestResult is the outcome of a representation request. Exactly one of
// Request and Reactivated is set: a fresh pair produces a pending request,
// a previously deactivated pair is reactivated directly.
type RequestResult struct {
	Request     *domain.RepresentationRequest
	Reactivated *domain.Representation
}

// Request records a seller's ask to represent a company. Duplicate pending
// requests and already-active pairs are rejected.
func (s *RepresentationService) Request(ctx context.Context, principal *auth.Principal, in *domain.CreateRepresentationRequestRequest) (*RequestResult, error) {
	sellerID, ok := principal.EffectiveSellerID(nil)
	if !ok {
		return nil, ErrForbidden
	}

	if _, err := s.sellerRepo.GetByID(ctx, sellerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSellerNotFound
		}
		return nil, fmt.Errorf("failed to load seller: %w", err)
	}

	company, err := s.companyRepo.GetByID(ctx, in.CompanyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to load company: %w", err)
	}
	if !company.IsActive {
		return nil, fmt.Errorf("%w: company is inactive", ErrInvalidState)
	}

	pending, err := s.requestRepo.HasPendingPair(ctx, sellerID, in.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending requests: %w", err)
	}
	if pending {
		return nil, ErrDuplicateRepresentation
	}

	existing, err := s.repRepo.GetByPair(ctx, sellerID, in.CompanyID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check representation: %w", err)
	}
	if existing != nil {
		if existing.Active {
			return nil, ErrDuplicateRepresentation
		}
		// The pair was approved before and later deactivated; a new
		// request reactivates it without another admin round-trip.
		if err := s.repRepo.SetActive(ctx, existing.ID, true); err != nil {
			return nil, fmt.Errorf("failed to reactivate representation: %w", err)
		}
		existing.Active = true

		s.logger.Info("representation reactivated on re-request",
			zap.String("seller_id", sellerID.String()),
			zap.String("company_id", in.CompanyID.String()))

		return &RequestResult{Reactivated: existing}, nil
	}

	req := &domain.RepresentationRequest{
		SellerID:  sellerID,
		CompanyID: in.CompanyID,
		Message:   in.Message,
		State:     domain.RequestStatePending,
	}
	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create representation request: %w", err)
	}

	s.logger.Info("representation requested",
		zap.String("request_id", req.ID.String()),
		zap.String("seller_id", sellerID.String()),
		zap.String("company_id", in.CompanyID.String()))

	return &RequestResult{Request: req}, nil
}

// Resolve applies an admin decision to a pending request. Approval upserts
// the representation and marks the request in one transaction; resolving a
// request twice fails with ErrInvalidState.
func (s *RepresentationService) Resolve(ctx context.Context, principal *auth.Principal, requestID uuid.UUID, decision domain.RequestDecision) (*domain.RepresentationRequest, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}
	if !decision.IsValid() {
		return nil, fmt.Errorf("%w: decision %q", ErrInvalidInput, decision)
	}

	var (
		req *domain.RepresentationRequest
		err error
	)
	switch decision {
	case domain.DecisionApprove:
		req, _, err = s.requestRepo.Approve(ctx, requestID, principal.UserID)
	case domain.DecisionReject:
		req, err = s.requestRepo.Reject(ctx, requestID, principal.UserID)
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		if errors.Is(err, repository.ErrRequestAlreadyResolved) {
			return nil, fmt.Errorf("%w: request already resolved", ErrInvalidState)
		}
		return nil, fmt.Errorf("failed to resolve request: %w", err)
	}

	s.logger.Info("representation request resolved",
		zap.String("request_id", requestID.String()),
		zap.String("decision", string(decision)),
		zap.String("resolved_by", principal.UserID.String()))

	return req, nil
}

// Toggle flips a representation's active flag. Deactivation revokes the
// seller's visibility into the company without deleting history.
func (s *RepresentationService) Toggle(ctx context.Context, principal *auth.Principal, id uuid.UUID, active bool) (*domain.Representation, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}

	if err := s.repRepo.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to toggle representation: %w", err)
	}

	rep, err := s.repRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload representation: %w", err)
	}

	s.logger.Info("representation toggled",
		zap.String("representation_id", id.String()),
		zap.Bool("active", active))

	return rep, nil
}

// IsRepresenting reports whether the seller actively represents the company.
// Admins are always authorized regardless of representations.
func (s *RepresentationService) IsRepresenting(ctx context.Context, principal *auth.Principal, companyID uuid.UUID) (bool, error) {
	if principal.IsAdmin() {
		return true, nil
	}
	if principal.SellerID == nil {
		return false, nil
	}
	return s.repRepo.IsActivePair(ctx, *principal.SellerID, companyID)
}

// CompanyIDsForSeller returns the ids of companies the seller actively
// represents. An empty slice is a valid answer and scopes queries to nothing.
func (s *RepresentationService) CompanyIDsForSeller(ctx context.Context, sellerID uuid.UUID) ([]uuid.UUID, error) {
	return s.repRepo.ActiveCompanyIDs(ctx, sellerID)
}

// ListPending returns pending requests for the admin resolution queue
func (s *RepresentationService) ListPending(ctx context.Context, page, pageSize int) ([]domain.RepresentationRequest, int64, error) {
	return s.requestRepo.ListPending(ctx, page, pageSize)
}

// ListRequestsBySeller returns a seller's own requests, newest first
func (s *RepresentationService) ListRequestsBySeller(ctx context.Context, sellerID uuid.UUID) ([]domain.RepresentationRequest, error) {
	return s.requestRepo.ListBySeller(ctx, sellerID)
}

// ListBySeller returns a seller's representations
func (s *RepresentationService) ListBySeller(ctx context.Context, sellerID uuid.UUID, activeOnly bool) ([]domain.Representation, error) {
	return s.repRepo.ListBySeller(ctx, sellerID, activeOnly)
}

// ListByCompany returns a company's representations
func (s *RepresentationService) ListByCompany(ctx context.Context, companyID uuid.UUID, activeOnly bool) ([]domain.Representation, error) {
	return s.repRepo.ListByCompany(ctx, companyID, activeOnly)
}

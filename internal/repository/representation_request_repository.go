package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/opdexport/quotation-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrRequestAlreadyResolved is returned when resolving a request that is no
// longer pending
var ErrRequestAlreadyResolved = errors.New("representation request already resolved")

type RepresentationRequestRepository struct {
	db *gorm.DB
}

func NewRepresentationRequestRepository(db *gorm.DB) *RepresentationRequestRepository {
	return &RepresentationRequestRepository{db: db}
}

func (r *RepresentationRequestRepository) Create(ctx context.Context, req *domain.RepresentationRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *RepresentationRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.RepresentationRequest, error) {
	var req domain.RepresentationRequest
	err := r.db.WithContext(ctx).
		Preload("Seller").
		Preload("Company").
		Where("id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// HasPendingPair reports whether a pending request exists for the pair
func (r *RepresentationRequestRepository) HasPendingPair(ctx context.Context, sellerID, companyID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.RepresentationRequest{}).
		Where("seller_id = ? AND company_id = ? AND state = ?", sellerID, companyID, domain.RequestStatePending).
		Count(&count).Error
	return count > 0, err
}

func (r *RepresentationRequestRepository) ListPending(ctx context.Context, page, pageSize int) ([]domain.RepresentationRequest, int64, error) {
	var requests []domain.RepresentationRequest
	var total int64

	page, pageSize = NormalizePage(page, pageSize)
	query := r.db.WithContext(ctx).Model(&domain.RepresentationRequest{}).
		Where("state = ?", domain.RequestStatePending)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := r.db.WithContext(ctx).
		Preload("Seller").
		Preload("Company").
		Where("state = ?", domain.RequestStatePending).
		Offset(offset).Limit(pageSize).
		Order("created_at ASC").
		Find(&requests).Error

	return requests, total, err
}

func (r *RepresentationRequestRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]domain.RepresentationRequest, error) {
	var requests []domain.RepresentationRequest
	err := r.db.WithContext(ctx).
		Preload("Company").
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

// Approve atomically marks a pending request approved and upserts the
// representation for its pair. The request row is locked so concurrent
// resolutions serialize; only the first one finds the row pending.
func (r *RepresentationRequestRepository) Approve(ctx context.Context, requestID, resolvedBy uuid.UUID) (*domain.RepresentationRequest, *domain.Representation, error) {
	var req domain.RepresentationRequest
	var rep domain.Representation

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", requestID).
			First(&req).Error; err != nil {
			return err
		}

		if req.State != domain.RequestStatePending {
			return ErrRequestAlreadyResolved
		}

		result := tx.Where("seller_id = ? AND company_id = ?", req.SellerID, req.CompanyID).
			First(&rep)
		switch {
		case result.Error == nil:
			if err := tx.Model(&rep).Update("active", true).Error; err != nil {
				return fmt.Errorf("failed to reactivate representation: %w", err)
			}
			rep.Active = true
		case errors.Is(result.Error, gorm.ErrRecordNotFound):
			rep = domain.Representation{
				SellerID:  req.SellerID,
				CompanyID: req.CompanyID,
				Active:    true,
			}
			if err := tx.Create(&rep).Error; err != nil {
				return fmt.Errorf("failed to create representation: %w", err)
			}
		default:
			return fmt.Errorf("failed to load representation: %w", result.Error)
		}

		now := time.Now().UTC()
		if err := tx.Model(&req).Updates(map[string]interface{}{
			"state":       domain.RequestStateApproved,
			"resolved_by": resolvedBy,
			"resolved_at": now,
		}).Error; err != nil {
			return fmt.Errorf("failed to mark request approved: %w", err)
		}
		req.State = domain.RequestStateApproved
		req.ResolvedBy = &resolvedBy
		req.ResolvedAt = &now

		return nil
	})

	if err != nil {
		return nil, nil, err
	}
	return &req, &rep, nil
}

// Reject atomically marks a pending request rejected. No representation row
// is touched.
func (r *RepresentationRequestRepository) Reject(ctx context.Context, requestID, resolvedBy uuid.UUID) (*domain.RepresentationRequest, error) {
	var req domain.RepresentationRequest

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", requestID).
			First(&req).Error; err != nil {
			return err
		}

		if req.State != domain.RequestStatePending {
			return ErrRequestAlreadyResolved
		}

		now := time.Now().UTC()
		if err := tx.Model(&req).Updates(map[string]interface{}{
			"state":       domain.RequestStateRejected,
			"resolved_by": resolvedBy,
			"resolved_at": now,
		}).Error; err != nil {
			return fmt.Errorf("failed to mark request rejected: %w", err)
		}
		req.State = domain.RequestStateRejected
		req.ResolvedBy = &resolvedBy
		req.ResolvedAt = &now

		return nil
	})

	if err != nil {
		return nil, err
	}
	return &req, nil
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/opdexport/quotation-api/internal/domain"
	"gorm.io/gorm"
)

type RepresentationRepository struct {
	db *gorm.DB
}

func NewRepresentationRepository(db *gorm.DB) *RepresentationRepository {
	return &RepresentationRepository{db: db}
}

func (r *RepresentationRepository) Create(ctx context.Context, rep *domain.Representation) error {
	return r.db.WithContext(ctx).Create(rep).Error
}

func (r *RepresentationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Representation, error) {
	var rep domain.Representation
	err := r.db.WithContext(ctx).
		Preload("Seller").
		Preload("Company").
		Where("id = ?", id).
		First(&rep).Error
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// GetByPair returns the representation row for a (seller, company) pair
// regardless of its active flag. At most one row exists per pair.
func (r *RepresentationRepository) GetByPair(ctx context.Context, sellerID, companyID uuid.UUID) (*domain.Representation, error) {
	var rep domain.Representation
	err := r.db.WithContext(ctx).
		Where("seller_id = ? AND company_id = ?", sellerID, companyID).
		First(&rep).Error
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *RepresentationRepository) Update(ctx context.Context, rep *domain.Representation) error {
	return r.db.WithContext(ctx).Save(rep).Error
}

// SetActive flips the active flag on a representation
func (r *RepresentationRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	result := r.db.WithContext(ctx).Model(&domain.Representation{}).
		Where("id = ?", id).
		Update("active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *RepresentationRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID, activeOnly bool) ([]domain.Representation, error) {
	var reps []domain.Representation
	query := r.db.WithContext(ctx).
		Preload("Company").
		Where("seller_id = ?", sellerID)
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	err := query.Order("created_at DESC").Find(&reps).Error
	return reps, err
}

func (r *RepresentationRepository) ListByCompany(ctx context.Context, companyID uuid.UUID, activeOnly bool) ([]domain.Representation, error) {
	var reps []domain.Representation
	query := r.db.WithContext(ctx).
		Preload("Seller").
		Where("company_id = ?", companyID)
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	err := query.Order("created_at DESC").Find(&reps).Error
	return reps, err
}

// IsActivePair reports whether the seller actively represents the company
func (r *RepresentationRepository) IsActivePair(ctx context.Context, sellerID, companyID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Representation{}).
		Where("seller_id = ? AND company_id = ? AND active = ?", sellerID, companyID, true).
		Count(&count).Error
	return count > 0, err
}

// ActiveCompanyIDs returns the ids of companies the seller actively represents
func (r *RepresentationRepository) ActiveCompanyIDs(ctx context.Context, sellerID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&domain.Representation{}).
		Where("seller_id = ? AND active = ?", sellerID, true).
		Pluck("company_id", &ids).Error
	return ids, err
}

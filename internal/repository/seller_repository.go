package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/opdexport/quotation-api/internal/domain"
	"gorm.io/gorm"
)

type SellerRepository struct {
	db *gorm.DB
}

func NewSellerRepository(db *gorm.DB) *SellerRepository {
	return &SellerRepository{db: db}
}

func (r *SellerRepository) Create(ctx context.Context, seller *domain.Seller) error {
	return r.db.WithContext(ctx).Create(seller).Error
}

func (r *SellerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Seller, error) {
	var seller domain.Seller
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&seller).Error
	if err != nil {
		return nil, err
	}
	return &seller, nil
}

func (r *SellerRepository) GetByEmail(ctx context.Context, email string) (*domain.Seller, error) {
	var seller domain.Seller
	err := r.db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(email)).First(&seller).Error
	if err != nil {
		return nil, err
	}
	return &seller, nil
}

func (r *SellerRepository) Update(ctx context.Context, seller *domain.Seller) error {
	return r.db.WithContext(ctx).Save(seller).Error
}

func (r *SellerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Seller{}, "id = ?", id).Error
}

func (r *SellerRepository) List(ctx context.Context, page, pageSize int, search string, activeOnly bool) ([]domain.Seller, int64, error) {
	var sellers []domain.Seller
	var total int64

	page, pageSize = NormalizePage(page, pageSize)
	query := r.db.WithContext(ctx).Model(&domain.Seller{})

	if search != "" {
		searchPattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", searchPattern, searchPattern)
	}
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("name ASC").Find(&sellers).Error

	return sellers, total, err
}

// CountQuotations counts quotations issued by the seller
func (r *SellerRepository) CountQuotations(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Quotation{}).
		Where("seller_id = ?", sellerID).
		Count(&count).Error
	return count, err
}

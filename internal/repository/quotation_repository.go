package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/opdexport/quotation-api/internal/domain"
	"gorm.io/gorm"
)

// QuotationFilter narrows quotation listings. CompanyIDs nil means no
// company scoping (admin); an empty non-nil slice matches nothing.
type QuotationFilter struct {
	CompanyIDs []uuid.UUID
	ScopeByIDs bool
	ClientID   *uuid.UUID
	SellerID   *uuid.UUID
	Status     domain.QuotationStatus
	Search     string
}

type QuotationRepository struct {
	db *gorm.DB
}

func NewQuotationRepository(db *gorm.DB) *QuotationRepository {
	return &QuotationRepository{db: db}
}

// Create inserts the quotation and its items in one transaction
func (r *QuotationRepository) Create(ctx context.Context, quotation *domain.Quotation) error {
	return r.db.WithContext(ctx).Create(quotation).Error
}

// IsDuplicateNumber reports whether an insert failed on the unique
// quotation number index
func IsDuplicateNumber(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func (r *QuotationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quotation, error) {
	var quotation domain.Quotation
	err := r.db.WithContext(ctx).
		Preload("Company").
		Preload("Seller").
		Preload("Client").
		Preload("Items").
		Preload("Items.Product").
		Where("id = ?", id).
		First(&quotation).Error
	if err != nil {
		return nil, err
	}
	return &quotation, nil
}

func (r *QuotationRepository) GetByNumber(ctx context.Context, number string) (*domain.Quotation, error) {
	var quotation domain.Quotation
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("number = ?", number).
		First(&quotation).Error
	if err != nil {
		return nil, err
	}
	return &quotation, nil
}

func (r *QuotationRepository) List(ctx context.Context, filter QuotationFilter, page, pageSize int, sort SortConfig) ([]domain.Quotation, int64, error) {
	var quotations []domain.Quotation
	var total int64

	page, pageSize = NormalizePage(page, pageSize)

	buildQuery := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&domain.Quotation{})
		if filter.ScopeByIDs {
			query = ApplyCompanyScope(query, filter.CompanyIDs)
		}
		if filter.ClientID != nil {
			query = query.Where("client_id = ?", *filter.ClientID)
		}
		if filter.SellerID != nil {
			query = query.Where("seller_id = ?", *filter.SellerID)
		}
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
		if filter.Search != "" {
			query = query.Where("number LIKE ?", "%"+filter.Search+"%")
		}
		return query
	}

	if err := buildQuery().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderClause := BuildOrderClause(sort, map[string]string{
		"number":    "number",
		"status":    "status",
		"total":     "total",
		"createdAt": "created_at",
		"updatedAt": "updated_at",
	}, "created_at")

	offset := (page - 1) * pageSize
	err := buildQuery().
		Preload("Company").
		Preload("Seller").
		Preload("Client").
		Offset(offset).Limit(pageSize).
		Order(orderClause).
		Find(&quotations).Error

	return quotations, total, err
}

// UpdateStatus moves a quotation to a new status
func (r *QuotationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.QuotationStatus) error {
	result := r.db.WithContext(ctx).Model(&domain.Quotation{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *QuotationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Select("Items").Delete(&domain.Quotation{BaseModel: domain.BaseModel{ID: id}}).Error
}

// CountByStatus returns quotation counts grouped by status for dashboards
func (r *QuotationRepository) CountByStatus(ctx context.Context, companyIDs []uuid.UUID, scopeByIDs bool) (map[domain.QuotationStatus]int64, error) {
	type row struct {
		Status domain.QuotationStatus
		Count  int64
	}
	var rows []row

	query := r.db.WithContext(ctx).Model(&domain.Quotation{}).
		Select("status, COUNT(*) as count").
		Group("status")
	if scopeByIDs {
		query = ApplyCompanyScope(query, companyIDs)
	}

	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[domain.QuotationStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

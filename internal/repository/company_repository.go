package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/opdexport/quotation-api/internal/domain"
	"gorm.io/gorm"
)

type CompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) Create(ctx context.Context, company *domain.Company) error {
	return r.db.WithContext(ctx).Create(company).Error
}

func (r *CompanyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Company, error) {
	var company domain.Company
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&company).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *CompanyRepository) GetByTaxID(ctx context.Context, taxID string) (*domain.Company, error) {
	var company domain.Company
	err := r.db.WithContext(ctx).Where("tax_id = ?", taxID).First(&company).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *CompanyRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Company, error) {
	var companies []domain.Company
	if len(ids) == 0 {
		return companies, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&companies).Error
	return companies, err
}

func (r *CompanyRepository) Update(ctx context.Context, company *domain.Company) error {
	return r.db.WithContext(ctx).Save(company).Error
}

func (r *CompanyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Company{}, "id = ?", id).Error
}

func (r *CompanyRepository) List(ctx context.Context, page, pageSize int, search string, activeOnly bool) ([]domain.Company, int64, error) {
	var companies []domain.Company
	var total int64

	page, pageSize = NormalizePage(page, pageSize)
	query := r.db.WithContext(ctx).Model(&domain.Company{})

	if search != "" {
		searchPattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(legal_name) LIKE ? OR LOWER(trade_name) LIKE ? OR tax_id LIKE ?",
			searchPattern, searchPattern, searchPattern)
	}
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("legal_name ASC").Find(&companies).Error

	return companies, total, err
}

// CountReferences counts rows in dependent tables that reference the company.
// A company with references must not be deleted.
func (r *CompanyRepository) CountReferences(ctx context.Context, companyID uuid.UUID) (int64, error) {
	var total int64

	for _, model := range []interface{}{
		&domain.Representation{},
		&domain.Product{},
		&domain.Quotation{},
	} {
		var count int64
		if err := r.db.WithContext(ctx).Model(model).
			Where("company_id = ?", companyID).
			Count(&count).Error; err != nil {
			return 0, err
		}
		total += count
	}

	return total, nil
}

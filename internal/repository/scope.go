package repository

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxPageSize is the maximum allowed page size for paginated queries
const MaxPageSize = 200

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// SortConfig holds sorting configuration for list queries
type SortConfig struct {
	Field string    // The field to sort by (API field name)
	Order SortOrder // asc or desc
}

// DefaultSortConfig returns a default sort configuration (created_at DESC)
func DefaultSortConfig() SortConfig {
	return SortConfig{
		Field: "createdAt",
		Order: SortOrderDesc,
	}
}

// ParseSortOrder parses a string into SortOrder, defaulting to desc
func ParseSortOrder(s string) SortOrder {
	if strings.ToLower(s) == "asc" {
		return SortOrderAsc
	}
	return SortOrderDesc
}

// BuildOrderClause builds the SQL ORDER BY clause from field mapping and sort config.
// fieldMap maps API field names to database column names; unknown fields fall
// back to the default column to keep the clause whitelisted.
func BuildOrderClause(config SortConfig, fieldMap map[string]string, defaultColumn string) string {
	column, ok := fieldMap[config.Field]
	if !ok {
		column = defaultColumn
	}

	order := "DESC"
	if config.Order == SortOrderAsc {
		order = "ASC"
	}

	return column + " " + order
}

// NormalizePage clamps page and pageSize to sane bounds
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// ApplyCompanyScope restricts a query to the given company ids. An empty
// slice yields a query that matches nothing, which is the correct answer for
// a seller with no active representations.
func ApplyCompanyScope(query *gorm.DB, companyIDs []uuid.UUID) *gorm.DB {
	if len(companyIDs) == 0 {
		return query.Where("1 = 0")
	}
	return query.Where("company_id IN ?", companyIDs)
}

// ApplyCompanyScopeWithColumn restricts a query to the given company ids
// using a qualified column name
func ApplyCompanyScopeWithColumn(query *gorm.DB, columnName string, companyIDs []uuid.UUID) *gorm.DB {
	if len(companyIDs) == 0 {
		return query.Where("1 = 0")
	}
	return query.Where(columnName+" IN ?", companyIDs)
}

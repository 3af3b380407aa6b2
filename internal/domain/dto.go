package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaginatedResponse wraps list results with pagination metadata
type PaginatedResponse struct {
	Items      interface{} `json:"items"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// ErrorResponse is the generic error payload used in swagger annotations
type ErrorResponse struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// CreateCompanyRequest is the payload for registering a company
type CreateCompanyRequest struct {
	LegalName    string `json:"legalName" validate:"required,max=200"`
	TradeName    string `json:"tradeName" validate:"max=200"`
	TaxID        string `json:"taxId" validate:"required,min=11,max=20"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phone" validate:"max=50"`
	Address      string `json:"address" validate:"max=500"`
	City         string `json:"city" validate:"max=100"`
	State        string `json:"state" validate:"max=50"`
	PostalCode   string `json:"postalCode" validate:"max=20"`
	Country      string `json:"country" validate:"max=100"`
	BankName     string `json:"bankName" validate:"max=200"`
	BankBranch   string `json:"bankBranch" validate:"max=20"`
	BankAccount  string `json:"bankAccount" validate:"max=30"`
	BrandColor   string `json:"brandColor" validate:"omitempty,hexcolor"`
	BaseCurrency string `json:"baseCurrency" validate:"omitempty,len=3"`
}

// UpdateCompanyRequest is the payload for updating a company
type UpdateCompanyRequest struct {
	LegalName   *string `json:"legalName" validate:"omitempty,max=200"`
	TradeName   *string `json:"tradeName" validate:"omitempty,max=200"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Phone       *string `json:"phone" validate:"omitempty,max=50"`
	Address     *string `json:"address" validate:"omitempty,max=500"`
	City        *string `json:"city" validate:"omitempty,max=100"`
	State       *string `json:"state" validate:"omitempty,max=50"`
	PostalCode  *string `json:"postalCode" validate:"omitempty,max=20"`
	BankName    *string `json:"bankName" validate:"omitempty,max=200"`
	BankBranch  *string `json:"bankBranch" validate:"omitempty,max=20"`
	BankAccount *string `json:"bankAccount" validate:"omitempty,max=30"`
	BrandColor  *string `json:"brandColor" validate:"omitempty,hexcolor"`
	IsActive    *bool   `json:"isActive"`
}

// CreateSellerRequest is the payload for registering a seller
type CreateSellerRequest struct {
	Name                     string  `json:"name" validate:"required,max=200"`
	Email                    string  `json:"email" validate:"required,email"`
	Phone                    string  `json:"phone" validate:"max=50"`
	DefaultCommissionPercent float64 `json:"defaultCommissionPercent" validate:"gte=0,lte=100"`
	MonthlyTarget            float64 `json:"monthlyTarget" validate:"gte=0"`
}

// CreateClientRequest is the payload for registering a client
type CreateClientRequest struct {
	Name          string `json:"name" validate:"required,max=200"`
	TaxID         string `json:"taxId" validate:"required,min=11,max=20"`
	Email         string `json:"email" validate:"omitempty,email"`
	Phone         string `json:"phone" validate:"max=50"`
	ContactPerson string `json:"contactPerson" validate:"max=200"`
	Address       string `json:"address" validate:"max=500"`
	City          string `json:"city" validate:"max=100"`
	Country       string `json:"country" validate:"max=100"`
}

// CreateProductRequest is the payload for adding a catalog item
type CreateProductRequest struct {
	CompanyID   uuid.UUID `json:"companyId" validate:"required"`
	SKU         string    `json:"sku" validate:"required,max=50"`
	Name        string    `json:"name" validate:"required,max=200"`
	Description string    `json:"description"`
	Unit        string    `json:"unit" validate:"max=20"`
	UnitPrice   float64   `json:"unitPrice" validate:"required,gt=0"`
}

// QuotationItemRequest is a line item in a quotation creation payload
type QuotationItemRequest struct {
	ProductID   uuid.UUID `json:"productId" validate:"required"`
	Description string    `json:"description" validate:"max=500"`
	Quantity    float64   `json:"quantity" validate:"required,gt=0"`
	// UnitPrice overrides the catalog price when set; zero means
	// "use the product's current unit price"
	UnitPrice float64 `json:"unitPrice" validate:"gte=0"`
}

// CreateQuotationRequest is the payload for creating a quotation.
// SellerID is required for admin callers and ignored for seller callers,
// whose own profile is always used.
type CreateQuotationRequest struct {
	CompanyID      uuid.UUID              `json:"companyId" validate:"required"`
	SellerID       *uuid.UUID             `json:"sellerId"`
	ClientID       uuid.UUID              `json:"clientId" validate:"required"`
	Items          []QuotationItemRequest `json:"items" validate:"required,min=1,dive"`
	DiscountAmount float64                `json:"discountAmount" validate:"gte=0"`
	Notes          string                 `json:"notes"`
	ValidUntil     *time.Time             `json:"validUntil"`
}

// QuotationItemDTO is the API representation of a quotation line item
type QuotationItemDTO struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"productId"`
	ProductName string    `json:"productName,omitempty"`
	Description string    `json:"description,omitempty"`
	Quantity    float64   `json:"quantity"`
	UnitPrice   float64   `json:"unitPrice"`
	LineTotal   float64   `json:"lineTotal"`
}

// ConvertedTotalDTO is a read-time converted view of a quotation total.
// It never replaces the stored base-currency amounts.
type ConvertedTotalDTO struct {
	Currency     string  `json:"currency"`
	Total        float64 `json:"total"`
	ExchangeRate float64 `json:"exchangeRate"`
	Source       string  `json:"source"`
}

// QuotationDTO is the API representation of a quotation
type QuotationDTO struct {
	ID             uuid.UUID          `json:"id"`
	Number         string             `json:"number"`
	CompanyID      uuid.UUID          `json:"companyId"`
	CompanyName    string             `json:"companyName,omitempty"`
	SellerID       uuid.UUID          `json:"sellerId"`
	SellerName     string             `json:"sellerName,omitempty"`
	ClientID       uuid.UUID          `json:"clientId"`
	ClientName     string             `json:"clientName,omitempty"`
	Status         QuotationStatus    `json:"status"`
	Currency       string             `json:"currency"`
	Subtotal       float64            `json:"subtotal"`
	DiscountAmount float64            `json:"discountAmount"`
	Total          float64            `json:"total"`
	Notes          string             `json:"notes,omitempty"`
	ValidUntil     *time.Time         `json:"validUntil,omitempty"`
	CreatedAt      string             `json:"createdAt"`
	UpdatedAt      string             `json:"updatedAt"`
	Items          []QuotationItemDTO `json:"items,omitempty"`
	ConvertedTotal *ConvertedTotalDTO `json:"convertedTotal,omitempty"`
}

// CreateRepresentationRequestRequest is a seller's ask to represent a company
type CreateRepresentationRequestRequest struct {
	CompanyID uuid.UUID `json:"companyId" validate:"required"`
	Message   string    `json:"message" validate:"max=2000"`
}

// ResolveRepresentationRequestRequest is the admin approve/reject payload
type ResolveRepresentationRequestRequest struct {
	RequestID uuid.UUID       `json:"requestId" validate:"required"`
	Decision  RequestDecision `json:"decision" validate:"required,oneof=approve reject"`
}

// ToggleRepresentationRequest flips a representation's active flag
type ToggleRepresentationRequest struct {
	Active bool `json:"active"`
}

// RepresentationDTO is the API representation of a representation edge
type RepresentationDTO struct {
	ID                 uuid.UUID `json:"id"`
	SellerID           uuid.UUID `json:"sellerId"`
	SellerName         string    `json:"sellerName,omitempty"`
	CompanyID          uuid.UUID `json:"companyId"`
	CompanyName        string    `json:"companyName,omitempty"`
	Active             bool      `json:"active"`
	CommissionOverride *float64  `json:"commissionOverride,omitempty"`
	TargetOverride     *float64  `json:"targetOverride,omitempty"`
	CreatedAt          string    `json:"createdAt"`
	UpdatedAt          string    `json:"updatedAt"`
}

// RepresentationRequestDTO is the API representation of a pending/resolved request
type RepresentationRequestDTO struct {
	ID          uuid.UUID                  `json:"id"`
	SellerID    uuid.UUID                  `json:"sellerId"`
	SellerName  string                     `json:"sellerName,omitempty"`
	CompanyID   uuid.UUID                  `json:"companyId"`
	CompanyName string                     `json:"companyName,omitempty"`
	Message     string                     `json:"message,omitempty"`
	State       RepresentationRequestState `json:"state"`
	ResolvedBy  *uuid.UUID                 `json:"resolvedBy,omitempty"`
	ResolvedAt  *time.Time                 `json:"resolvedAt,omitempty"`
	CreatedAt   string                     `json:"createdAt"`
}

// RateQueryResponse answers GET /exchange/rate
type RateQueryResponse struct {
	ConvertedAmount float64 `json:"convertedAmount"`
	ExchangeRate    float64 `json:"exchangeRate"`
	Source          string  `json:"source"`
	IsCustom        bool    `json:"isCustom"`
}

// UpdateExchangeConfigRequest updates the admin rate override
type UpdateExchangeConfigRequest struct {
	FixedRate    *float64 `json:"cotacaoDolar" validate:"omitempty,gt=0"`
	UseFixedRate bool     `json:"usarCotacaoCustomizada"`
}

package domain

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// Role represents the role of an authenticated principal
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleSeller Role = "seller"
	RoleClient Role = "client"
)

// IsValid checks if the Role is a valid enum value
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleSeller, RoleClient:
		return true
	}
	return false
}

// Company represents a tenant: an exporter whose catalog is sold by sellers
type Company struct {
	BaseModel
	LegalName   string `gorm:"type:varchar(200);not null;index;column:legal_name"`
	TradeName   string `gorm:"type:varchar(200);column:trade_name"`
	TaxID       string `gorm:"type:varchar(20);not null;uniqueIndex;column:tax_id"`
	Email       string `gorm:"type:varchar(255)"`
	Phone       string `gorm:"type:varchar(50)"`
	Address     string `gorm:"type:varchar(500)"`
	City        string `gorm:"type:varchar(100)"`
	State       string `gorm:"type:varchar(50)"`
	PostalCode  string `gorm:"type:varchar(20);column:postal_code"`
	Country     string `gorm:"type:varchar(100);not null;default:'Brazil'"`
	BankName    string `gorm:"type:varchar(200);column:bank_name"`
	BankBranch  string `gorm:"type:varchar(20);column:bank_branch"`
	BankAccount string `gorm:"type:varchar(30);column:bank_account"`
	BrandColor  string `gorm:"type:varchar(20);not null;default:'#000000';column:brand_color"`
	// BaseCurrency is the currency in which all monetary fields owned by
	// this company are canonically stored. Conversion is read-time only.
	BaseCurrency string `gorm:"type:varchar(3);not null;default:'BRL';column:base_currency"`
	IsActive     bool   `gorm:"not null;default:true;column:is_active"`

	Products   []Product   `gorm:"foreignKey:CompanyID"`
	Quotations []Quotation `gorm:"foreignKey:CompanyID"`
}

// Seller represents a sales agent who may represent one or more companies
type Seller struct {
	BaseModel
	Name                     string  `gorm:"type:varchar(200);not null;index"`
	Email                    string  `gorm:"type:varchar(255);not null;uniqueIndex"`
	Phone                    string  `gorm:"type:varchar(50)"`
	DefaultCommissionPercent float64 `gorm:"type:decimal(5,2);not null;default:5;column:default_commission_percent"`
	MonthlyTarget            float64 `gorm:"type:decimal(15,2);not null;default:0;column:monthly_target"`
	IsActive                 bool    `gorm:"not null;default:true;column:is_active"`

	Representations []Representation `gorm:"foreignKey:SellerID"`
}

// Client represents a buyer organization quotations are issued to
type Client struct {
	BaseModel
	Name          string `gorm:"type:varchar(200);not null;index"`
	TaxID         string `gorm:"type:varchar(20);not null;uniqueIndex;column:tax_id"`
	Email         string `gorm:"type:varchar(255)"`
	Phone         string `gorm:"type:varchar(50)"`
	ContactPerson string `gorm:"type:varchar(200);column:contact_person"`
	Address       string `gorm:"type:varchar(500)"`
	City          string `gorm:"type:varchar(100)"`
	Country       string `gorm:"type:varchar(100);not null;default:'Brazil'"`
	IsActive      bool   `gorm:"not null;default:true;column:is_active"`
}

// Product represents a catalog item owned by exactly one company
type Product struct {
	BaseModel
	CompanyID   uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_products_company_sku;column:company_id"`
	Company     *Company  `gorm:"foreignKey:CompanyID"`
	SKU         string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_products_company_sku;column:sku"`
	Name        string    `gorm:"type:varchar(200);not null;index"`
	Description string    `gorm:"type:text"`
	Unit        string    `gorm:"type:varchar(20);not null;default:'un'"`
	UnitPrice   float64   `gorm:"type:decimal(15,2);not null;column:unit_price"`
	IsActive    bool      `gorm:"not null;default:true;column:is_active"`
}

// Representation is the active link granting a seller visibility and sell
// rights over a company's catalog. At most one row exists per
// (seller, company) pair; reactivation reuses the row.
type Representation struct {
	BaseModel
	SellerID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_representations_pair;column:seller_id"`
	Seller    *Seller   `gorm:"foreignKey:SellerID"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_representations_pair;column:company_id"`
	Company   *Company  `gorm:"foreignKey:CompanyID"`
	Active    bool      `gorm:"not null;default:true"`
	// Overrides replace the seller's defaults for this company when set
	CommissionOverride *float64 `gorm:"type:decimal(5,2);column:commission_override"`
	TargetOverride     *float64 `gorm:"type:decimal(15,2);column:target_override"`
}

// RepresentationRequestState represents the state of a representation request
type RepresentationRequestState string

const (
	RequestStatePending  RepresentationRequestState = "pending"
	RequestStateApproved RepresentationRequestState = "approved"
	RequestStateRejected RepresentationRequestState = "rejected"
)

// IsTerminal reports whether the state admits no further transitions
func (s RepresentationRequestState) IsTerminal() bool {
	return s == RequestStateApproved || s == RequestStateRejected
}

// RepresentationRequest records a seller's ask to represent a company.
// Only pending requests may be resolved; resolution is terminal.
type RepresentationRequest struct {
	BaseModel
	SellerID   uuid.UUID                  `gorm:"type:uuid;not null;index;column:seller_id"`
	Seller     *Seller                    `gorm:"foreignKey:SellerID"`
	CompanyID  uuid.UUID                  `gorm:"type:uuid;not null;index;column:company_id"`
	Company    *Company                   `gorm:"foreignKey:CompanyID"`
	Message    string                     `gorm:"type:text"`
	State      RepresentationRequestState `gorm:"type:varchar(20);not null;default:'pending';index"`
	ResolvedBy *uuid.UUID                 `gorm:"type:uuid;column:resolved_by"`
	ResolvedAt *time.Time                 `gorm:"column:resolved_at"`
}

// RequestDecision represents an admin decision on a representation request
type RequestDecision string

const (
	DecisionApprove RequestDecision = "approve"
	DecisionReject  RequestDecision = "reject"
)

// IsValid checks if the RequestDecision is a valid enum value
func (d RequestDecision) IsValid() bool {
	return d == DecisionApprove || d == DecisionReject
}

// QuotationStatus represents the lifecycle status of a quotation
type QuotationStatus string

const (
	QuotationStatusDraft    QuotationStatus = "draft"
	QuotationStatusSent     QuotationStatus = "sent"
	QuotationStatusApproved QuotationStatus = "approved"
	QuotationStatusRejected QuotationStatus = "rejected"
	QuotationStatusExpired  QuotationStatus = "expired"
)

// IsValid checks if the QuotationStatus is a valid enum value
func (s QuotationStatus) IsValid() bool {
	switch s {
	case QuotationStatusDraft, QuotationStatusSent, QuotationStatusApproved,
		QuotationStatusRejected, QuotationStatusExpired:
		return true
	}
	return false
}

// CanTransitionTo reports whether the status may move to the target status
func (s QuotationStatus) CanTransitionTo(target QuotationStatus) bool {
	switch s {
	case QuotationStatusDraft:
		return target == QuotationStatusSent
	case QuotationStatusSent:
		return target == QuotationStatusApproved ||
			target == QuotationStatusRejected ||
			target == QuotationStatusExpired
	}
	return false
}

// Quotation represents a priced offer from a company to a client, issued
// by a seller. Monetary fields are stored in the company's base currency;
// converted views are computed at read time and never persisted.
type Quotation struct {
	BaseModel
	Number         string          `gorm:"type:varchar(30);not null;uniqueIndex"`
	CompanyID      uuid.UUID       `gorm:"type:uuid;not null;index;column:company_id"`
	Company        *Company        `gorm:"foreignKey:CompanyID"`
	SellerID       uuid.UUID       `gorm:"type:uuid;not null;index;column:seller_id"`
	Seller         *Seller         `gorm:"foreignKey:SellerID"`
	ClientID       uuid.UUID       `gorm:"type:uuid;not null;index;column:client_id"`
	Client         *Client         `gorm:"foreignKey:ClientID"`
	Status         QuotationStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	Currency       string          `gorm:"type:varchar(3);not null;default:'BRL'"`
	Subtotal       float64         `gorm:"type:decimal(15,2);not null;default:0"`
	DiscountAmount float64         `gorm:"type:decimal(15,2);not null;default:0;column:discount_amount"`
	Total          float64         `gorm:"type:decimal(15,2);not null;default:0"`
	Notes          string          `gorm:"type:text"`
	ValidUntil     *time.Time      `gorm:"type:date;column:valid_until"`

	Items []QuotationItem `gorm:"foreignKey:QuotationID;constraint:OnDelete:CASCADE"`
}

// QuotationItem represents a line item in a quotation
type QuotationItem struct {
	BaseModel
	QuotationID uuid.UUID `gorm:"type:uuid;not null;index;column:quotation_id"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index;column:product_id"`
	Product     *Product  `gorm:"foreignKey:ProductID"`
	Description string    `gorm:"type:varchar(500)"`
	Quantity    float64   `gorm:"type:decimal(10,2);not null"`
	UnitPrice   float64   `gorm:"type:decimal(15,2);not null;column:unit_price"`
	LineTotal   float64   `gorm:"type:decimal(15,2);not null;column:line_total"`
}

// DocumentSequence holds the daily counter backing quotation numbers.
// One row per calendar day, shared by all companies; the row is read and
// incremented under a row lock so concurrent allocations never collide.
type DocumentSequence struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Day          string    `gorm:"type:varchar(8);not null;uniqueIndex"`
	LastSequence int       `gorm:"not null;default:0;column:last_sequence"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// AppSetting is a generic key/value configuration row with a JSON payload
type AppSetting struct {
	Key       string    `gorm:"type:varchar(100);primaryKey"`
	Value     string    `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// ExchangeRateConfigKey is the settings row holding the admin rate override
const ExchangeRateConfigKey = "cotacao_dolar_config"

// ExchangeRateConfig is the typed form of the admin exchange rate override.
// JSON field names match the persisted settings payload.
type ExchangeRateConfig struct {
	FixedRate    *float64  `json:"cotacaoDolar"`
	UseFixedRate bool      `json:"usarCotacaoCustomizada"`
	LastUpdated  time.Time `json:"ultimaAtualizacao"`
}

// DocumentNumberPrefix is the constant prefix of every quotation number
const DocumentNumberPrefix = "OPDEXPORT"

// documentNumberPattern validates PREFIX + YYYYMMDD + NNN
var documentNumberPattern = regexp.MustCompile(`^OPDEXPORT\d{8}\d{3}$`)

// IsValidDocumentNumber checks a quotation number against the canonical format
func IsValidDocumentNumber(number string) bool {
	return documentNumberPattern.MatchString(number)
}

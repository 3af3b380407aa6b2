package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/opdexport/quotation-api/internal/auth"
	"github.com/opdexport/quotation-api/internal/domain"
	"github.com/opdexport/quotation-api/internal/exchange"
	"github.com/opdexport/quotation-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxNumberAttempts bounds the retry loop around quotation insert when the
// allocated number collides with a concurrent writer.
const maxNumberAttempts = 5

// QuotationService creates and manages quotations. Monetary fields are
// stored in the company's base currency; converted views are computed at
// read time through the rate resolver and never persisted.
type QuotationService struct {
	quotationRepo  *repository.QuotationRepository
	companyRepo    *repository.CompanyRepository
	sellerRepo     *repository.SellerRepository
	clientRepo     *repository.ClientRepository
	productRepo    *repository.ProductRepository
	numbers        *DocumentNumberService
	representation *RepresentationService
	resolver       *exchange.Resolver
	logger         *zap.Logger
}

// NewQuotationService creates a new QuotationService
func NewQuotationService(
	quotationRepo *repository.QuotationRepository,
	companyRepo *repository.CompanyRepository,
	sellerRepo *repository.SellerRepository,
	clientRepo *repository.ClientRepository,
	productRepo *repository.ProductRepository,
	numbers *DocumentNumberService,
	representation *RepresentationService,
	resolver *exchange.Resolver,
	logger *zap.Logger,
) *QuotationService {
	return &QuotationService{
		quotationRepo:  quotationRepo,
		companyRepo:    companyRepo,
		sellerRepo:     sellerRepo,
		clientRepo:     clientRepo,
		productRepo:    productRepo,
		numbers:        numbers,
		representation: representation,
		resolver:       resolver,
		logger:         logger,
	}
}

// Create builds, numbers and persists a quotation. The caller must be an
// admin or a seller actively representing the company; every product must
// belong to the quotation's company.
func (s *QuotationService) Create(ctx context.Context, principal *auth.Principal, in *domain.CreateQuotationRequest) (*domain.Quotation, error) {
	sellerID, ok := principal.EffectiveSellerID(in.SellerID)
	if !ok {
		return nil, ErrForbidden
	}

	if !principal.IsAdmin() {
		representing, err := s.representation.IsRepresenting(ctx, principal, in.CompanyID)
		if err != nil {
			return nil, fmt.Errorf("failed to check representation: %w", err)
		}
		if !representing {
			return nil, ErrForbidden
		}
	}

	seller, err := s.sellerRepo.GetByID(ctx, sellerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSellerNotFound
		}
		return nil, fmt.Errorf("failed to load seller: %w", err)
	}
	if !seller.IsActive {
		return nil, fmt.Errorf("%w: seller is inactive", ErrInvalidState)
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

	if _, err := s.clientRepo.GetByID(ctx, in.ClientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to load client: %w", err)
	}

	items, subtotal, err := s.buildItems(ctx, company.ID, in.Items)
	if err != nil {
		return nil, err
	}

	if in.DiscountAmount > subtotal {
		return nil, fmt.Errorf("%w: discount exceeds subtotal", ErrInvalidInput)
	}
	total := round2(subtotal - in.DiscountAmount)

	quotation := &domain.Quotation{
		CompanyID:      company.ID,
		SellerID:       sellerID,
		ClientID:       in.ClientID,
		Status:         domain.QuotationStatusDraft,
		Currency:       company.BaseCurrency,
		Subtotal:       subtotal,
		DiscountAmount: round2(in.DiscountAmount),
		Total:          total,
		Notes:          in.Notes,
		ValidUntil:     in.ValidUntil,
		Items:          items,
	}

	// The counter increment is atomic, but an imported quotation may already
	// hold the produced number. Retry allocation a bounded number of times
	// before giving up.
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		number, err := s.numbers.NextNumber(ctx)
		if err != nil {
			return nil, err
		}
		quotation.Number = number

		err = s.quotationRepo.Create(ctx, quotation)
		if err == nil {
			s.logger.Info("quotation created",
				zap.String("quotation_id", quotation.ID.String()),
				zap.String("number", quotation.Number),
				zap.String("company_id", company.ID.String()),
				zap.String("seller_id", sellerID.String()),
				zap.Int("attempt", attempt))
			return quotation, nil
		}
		if !repository.IsDuplicateNumber(err) {
			return nil, fmt.Errorf("failed to create quotation: %w", err)
		}

		s.logger.Warn("quotation number collision, retrying",
			zap.String("number", number),
			zap.Int("attempt", attempt))
	}

	return nil, ErrSequenceExhausted
}

func (s *QuotationService) buildItems(ctx context.Context, companyID uuid.UUID, in []domain.QuotationItemRequest) ([]domain.QuotationItem, float64, error) {
	ids := make([]uuid.UUID, 0, len(in))
	for _, item := range in {
		ids = append(ids, item.ProductID)
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load products: %w", err)
	}

	byID := make(map[uuid.UUID]*domain.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	var items []domain.QuotationItem
	var subtotal float64

	for _, req := range in {
		product, ok := byID[req.ProductID]
		if !ok {
			return nil, 0, fmt.Errorf("%w: product %s", ErrProductNotFound, req.ProductID)
		}
		if product.CompanyID != companyID {
			return nil, 0, fmt.Errorf("%w: product %s", ErrProductCompanyMismatch, req.ProductID)
		}
		if !product.IsActive {
			return nil, 0, fmt.Errorf("%w: product %s is inactive", ErrInvalidState, req.ProductID)
		}

		unitPrice := product.UnitPrice
		if req.UnitPrice > 0 {
			unitPrice = req.UnitPrice
		}

		lineTotal := round2(req.Quantity * unitPrice)
		subtotal += lineTotal

		description := req.Description
		if description == "" {
			description = product.Name
		}

		items = append(items, domain.QuotationItem{
			ProductID:   product.ID,
			Description: description,
			Quantity:    req.Quantity,
			UnitPrice:   unitPrice,
			LineTotal:   lineTotal,
		})
	}

	return items, round2(subtotal), nil
}

// GetByID loads a quotation the principal is allowed to see. When convertTo
// is USD and differs from the stored currency, a read-time converted total
// is returned alongside; the stored amounts are never touched. Other
// conversion currencies are rejected.
func (s *QuotationService) GetByID(ctx context.Context, principal *auth.Principal, id uuid.UUID, convertTo string) (*domain.Quotation, *exchange.Rate, error) {
	quotation, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to load quotation: %w", err)
	}

	if err := s.authorizeRead(ctx, principal, quotation); err != nil {
		return nil, nil, err
	}

	var rate *exchange.Rate
	convertTo = strings.ToUpper(strings.TrimSpace(convertTo))
	if convertTo != "" && convertTo != quotation.Currency {
		if convertTo != "USD" {
			return nil, nil, fmt.Errorf("%w: unsupported conversion currency %s", ErrInvalidInput, convertTo)
		}
		resolved := s.resolver.Resolve(ctx)
		rate = &resolved
	}

	return quotation, rate, nil
}

func (s *QuotationService) authorizeRead(ctx context.Context, principal *auth.Principal, quotation *domain.Quotation) error {
	switch {
	case principal.IsAdmin():
		return nil
	case principal.IsSeller():
		representing, err := s.representation.IsRepresenting(ctx, principal, quotation.CompanyID)
		if err != nil {
			return fmt.Errorf("failed to check representation: %w", err)
		}
		if !representing {
			return ErrForbidden
		}
		return nil
	case principal.IsClient():
		if principal.ClientID == nil || *principal.ClientID != quotation.ClientID {
			return ErrForbidden
		}
		return nil
	}
	return ErrForbidden
}

// List returns quotations scoped by the caller's role: admins see all,
// sellers see their represented companies, clients see their own.
func (s *QuotationService) List(ctx context.Context, principal *auth.Principal, status domain.QuotationStatus, search string, page, pageSize int, sort repository.SortConfig) ([]domain.Quotation, int64, error) {
	filter := repository.QuotationFilter{
		Status: status,
		Search: search,
	}

	switch {
	case principal.IsAdmin():
		// no scoping
	case principal.IsSeller():
		if principal.SellerID == nil {
			return nil, 0, ErrForbidden
		}
		companyIDs, err := s.representation.CompanyIDsForSeller(ctx, *principal.SellerID)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to resolve company scope: %w", err)
		}
		filter.CompanyIDs = companyIDs
		filter.ScopeByIDs = true
	case principal.IsClient():
		if principal.ClientID == nil {
			return nil, 0, ErrForbidden
		}
		filter.ClientID = principal.ClientID
	default:
		return nil, 0, ErrForbidden
	}

	return s.quotationRepo.List(ctx, filter, page, pageSize, sort)
}

// Transition moves a quotation through its lifecycle. Draft quotations can
// only be sent; sent quotations can be approved, rejected or expired.
// Clients may only decide quotations addressed to them.
func (s *QuotationService) Transition(ctx context.Context, principal *auth.Principal, id uuid.UUID, target domain.QuotationStatus) (*domain.Quotation, error) {
	if !target.IsValid() {
		return nil, fmt.Errorf("%w: status %q", ErrInvalidInput, target)
	}

	quotation, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load quotation: %w", err)
	}

	if err := s.authorizeTransition(ctx, principal, quotation, target); err != nil {
		return nil, err
	}

	if !quotation.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidState, quotation.Status, target)
	}

	if err := s.quotationRepo.UpdateStatus(ctx, id, target); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}
	quotation.Status = target

	s.logger.Info("quotation status changed",
		zap.String("quotation_id", id.String()),
		zap.String("number", quotation.Number),
		zap.String("status", string(target)))

	return quotation, nil
}

func (s *QuotationService) authorizeTransition(ctx context.Context, principal *auth.Principal, quotation *domain.Quotation, target domain.QuotationStatus) error {
	if principal.IsAdmin() {
		return nil
	}

	switch target {
	case domain.QuotationStatusSent:
		if !principal.IsSeller() {
			return ErrForbidden
		}
		representing, err := s.representation.IsRepresenting(ctx, principal, quotation.CompanyID)
		if err != nil {
			return fmt.Errorf("failed to check representation: %w", err)
		}
		if !representing {
			return ErrForbidden
		}
		return nil
	case domain.QuotationStatusApproved, domain.QuotationStatusRejected:
		if !principal.IsClient() || principal.ClientID == nil || *principal.ClientID != quotation.ClientID {
			return ErrForbidden
		}
		return nil
	}

	// Expiry is reserved for admins and the background job
	return ErrForbidden
}

// Delete removes a draft quotation. Numbered history must survive, so only
// drafts may be deleted, by admins or the issuing seller.
func (s *QuotationService) Delete(ctx context.Context, principal *auth.Principal, id uuid.UUID) error {
	quotation, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load quotation: %w", err)
	}

	if !principal.IsAdmin() {
		if !principal.IsSeller() || principal.SellerID == nil || *principal.SellerID != quotation.SellerID {
			return ErrForbidden
		}
	}

	if quotation.Status != domain.QuotationStatusDraft {
		return fmt.Errorf("%w: only draft quotations can be deleted", ErrInvalidState)
	}

	if err := s.quotationRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete quotation: %w", err)
	}

	s.logger.Info("quotation deleted",
		zap.String("quotation_id", id.String()),
		zap.String("number", quotation.Number))

	return nil
}

// StatusCounts returns quotation counts by status within the caller's scope
func (s *QuotationService) StatusCounts(ctx context.Context, principal *auth.Principal) (map[domain.QuotationStatus]int64, error) {
	switch {
	case principal.IsAdmin():
		return s.quotationRepo.CountByStatus(ctx, nil, false)
	case principal.IsSeller():
		if principal.SellerID == nil {
			return nil, ErrForbidden
		}
		companyIDs, err := s.representation.CompanyIDsForSeller(ctx, *principal.SellerID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve company scope: %w", err)
		}
		return s.quotationRepo.CountByStatus(ctx, companyIDs, true)
	}
	return nil, ErrForbidden
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

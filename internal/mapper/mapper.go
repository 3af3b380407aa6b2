package mapper

import (
	"github.com/opdexport/quotation-api/internal/domain"
	"github.com/opdexport/quotation-api/internal/exchange"
)

const timeFormat = "2006-01-02T15:04:05Z"

// ToQuotationDTO converts a Quotation to its API representation. rate is
// the resolved exchange rate for a converted view, or nil for none.
func ToQuotationDTO(q *domain.Quotation, rate *exchange.Rate) domain.QuotationDTO {
	dto := domain.QuotationDTO{
		ID:             q.ID,
		Number:         q.Number,
		CompanyID:      q.CompanyID,
		SellerID:       q.SellerID,
		ClientID:       q.ClientID,
		Status:         q.Status,
		Currency:       q.Currency,
		Subtotal:       q.Subtotal,
		DiscountAmount: q.DiscountAmount,
		Total:          q.Total,
		Notes:          q.Notes,
		ValidUntil:     q.ValidUntil,
		CreatedAt:      q.CreatedAt.Format(timeFormat),
		UpdatedAt:      q.UpdatedAt.Format(timeFormat),
	}

	if q.Company != nil {
		dto.CompanyName = q.Company.LegalName
	}
	if q.Seller != nil {
		dto.SellerName = q.Seller.Name
	}
	if q.Client != nil {
		dto.ClientName = q.Client.Name
	}

	for i := range q.Items {
		dto.Items = append(dto.Items, ToQuotationItemDTO(&q.Items[i]))
	}

	if rate != nil {
		dto.ConvertedTotal = &domain.ConvertedTotalDTO{
			Currency:     "USD",
			Total:        exchange.ToUSD(q.Total, rate.Value),
			ExchangeRate: rate.Value,
			Source:       string(rate.Source),
		}
	}

	return dto
}

// ToQuotationItemDTO converts a QuotationItem to its API representation
func ToQuotationItemDTO(item *domain.QuotationItem) domain.QuotationItemDTO {
	dto := domain.QuotationItemDTO{
		ID:          item.ID,
		ProductID:   item.ProductID,
		Description: item.Description,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		LineTotal:   item.LineTotal,
	}
	if item.Product != nil {
		dto.ProductName = item.Product.Name
	}
	return dto
}

// ToRepresentationDTO converts a Representation to its API representation
func ToRepresentationDTO(rep *domain.Representation) domain.RepresentationDTO {
	dto := domain.RepresentationDTO{
		ID:                 rep.ID,
		SellerID:           rep.SellerID,
		CompanyID:          rep.CompanyID,
		Active:             rep.Active,
		CommissionOverride: rep.CommissionOverride,
		TargetOverride:     rep.TargetOverride,
		CreatedAt:          rep.CreatedAt.Format(timeFormat),
		UpdatedAt:          rep.UpdatedAt.Format(timeFormat),
	}
	if rep.Seller != nil {
		dto.SellerName = rep.Seller.Name
	}
	if rep.Company != nil {
		dto.CompanyName = rep.Company.LegalName
	}
	return dto
}

// ToRepresentationRequestDTO converts a RepresentationRequest to its API
// representation
func ToRepresentationRequestDTO(req *domain.RepresentationRequest) domain.RepresentationRequestDTO {
	dto := domain.RepresentationRequestDTO{
		ID:         req.ID,
		SellerID:   req.SellerID,
		CompanyID:  req.CompanyID,
		Message:    req.Message,
		State:      req.State,
		ResolvedBy: req.ResolvedBy,
		ResolvedAt: req.ResolvedAt,
		CreatedAt:  req.CreatedAt.Format(timeFormat),
	}
	if req.Seller != nil {
		dto.SellerName = req.Seller.Name
	}
	if req.Company != nil {
		dto.CompanyName = req.Company.LegalName
	}
	return dto
}

// ToPaginatedResponse wraps a list payload with pagination metadata
func ToPaginatedResponse(items interface{}, total int64, page, pageSize int) domain.PaginatedResponse {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return domain.PaginatedResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

package mapper_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/opdexport/quotation-api/internal/domain"
	"github.com/opdexport/quotation-api/internal/exchange"
	"github.com/opdexport/quotation-api/internal/mapper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleQuotation() *domain.Quotation {
	created := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	return &domain.Quotation{
		BaseModel: domain.BaseModel{
			ID:        uuid.New(),
			CreatedAt: created,
			UpdatedAt: created,
		},
		Number:    "OPDEXPORT20260828001",
		CompanyID: uuid.New(),
		SellerID:  uuid.New(),
		ClientID:  uuid.New(),
		Status:    domain.QuotationStatusDraft,
		Currency:  "BRL",
		Subtotal:  1000.00,
		Total:     1000.00,
		Company:   &domain.Company{LegalName: "Cafeeira Sul Ltda"},
		Seller:    &domain.Seller{Name: "Marcos"},
		Client:    &domain.Client{Name: "Import GmbH"},
		Items: []domain.QuotationItem{
			{
				ProductID:   uuid.New(),
				Description: "Arabica 60kg",
				Quantity:    2,
				UnitPrice:   500.00,
				LineTotal:   1000.00,
				Product:     &domain.Product{Name: "Arabica 60kg"},
			},
		},
	}
}

func TestToQuotationDTO(t *testing.T) {
	q := sampleQuotation()

	dto := mapper.ToQuotationDTO(q, nil)

	assert.Equal(t, q.ID, dto.ID)
	assert.Equal(t, "OPDEXPORT20260828001", dto.Number)
	assert.Equal(t, "Cafeeira Sul Ltda", dto.CompanyName)
	assert.Equal(t, "Marcos", dto.SellerName)
	assert.Equal(t, "Import GmbH", dto.ClientName)
	assert.Equal(t, "2026-08-28T10:00:00Z", dto.CreatedAt)
	assert.Nil(t, dto.ConvertedTotal)

	require.Len(t, dto.Items, 1)
	assert.Equal(t, "Arabica 60kg", dto.Items[0].ProductName)
	assert.Equal(t, 1000.00, dto.Items[0].LineTotal)
}

func TestToQuotationDTO_ConvertedView(t *testing.T) {
	q := sampleQuotation()

	dto := mapper.ToQuotationDTO(q, &exchange.Rate{Value: 5.00, Source: exchange.SourceCustom})

	require.NotNil(t, dto.ConvertedTotal)
	assert.Equal(t, "USD", dto.ConvertedTotal.Currency)
	assert.Equal(t, 200.00, dto.ConvertedTotal.Total)
	assert.Equal(t, 5.00, dto.ConvertedTotal.ExchangeRate)
	assert.Equal(t, "custom", dto.ConvertedTotal.Source)
	// Base-currency figures are untouched
	assert.Equal(t, 1000.00, dto.Total)
}

func TestToQuotationDTO_WithoutPreloads(t *testing.T) {
	q := sampleQuotation()
	q.Company = nil
	q.Seller = nil
	q.Client = nil
	q.Items = nil

	dto := mapper.ToQuotationDTO(q, nil)

	assert.Empty(t, dto.CompanyName)
	assert.Empty(t, dto.SellerName)
	assert.Empty(t, dto.ClientName)
	assert.Empty(t, dto.Items)
}

func TestToRepresentationDTO(t *testing.T) {
	commission := 7.5
	rep := &domain.Representation{
		BaseModel: domain.BaseModel{
			ID:        uuid.New(),
			CreatedAt: time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC),
			UpdatedAt: time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC),
		},
		SellerID:           uuid.New(),
		CompanyID:          uuid.New(),
		Active:             true,
		CommissionOverride: &commission,
		Seller:             &domain.Seller{Name: "Marcos"},
		Company:            &domain.Company{LegalName: "Cafeeira Sul Ltda"},
	}

	dto := mapper.ToRepresentationDTO(rep)

	assert.Equal(t, rep.ID, dto.ID)
	assert.True(t, dto.Active)
	assert.Equal(t, "Marcos", dto.SellerName)
	assert.Equal(t, "Cafeeira Sul Ltda", dto.CompanyName)
	require.NotNil(t, dto.CommissionOverride)
	assert.Equal(t, 7.5, *dto.CommissionOverride)
	assert.Nil(t, dto.TargetOverride)
}

func TestToPaginatedResponse(t *testing.T) {
	tests := []struct {
		total          int64
		pageSize       int
		wantTotalPages int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{100, 7, 15},
		{5, 0, 0},
	}

	for _, tc := range tests {
		resp := mapper.ToPaginatedResponse([]string{}, tc.total, 1, tc.pageSize)
		assert.Equal(t, tc.wantTotalPages, resp.TotalPages, "total=%d pageSize=%d", tc.total, tc.pageSize)
	}
}

package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/opdexport/quotation-api/internal/domain"
	"github.com/opdexport/quotation-api/internal/exchange"
	"github.com/opdexport/quotation-api/internal/repository"
	"github.com/opdexport/quotation-api/internal/service"
	"github.com/opdexport/quotation-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createExchangeService(db *gorm.DB) *service.ExchangeService {
	return service.NewExchangeService(
		offlineResolver(db),
		repository.NewSettingRepository(db),
		zap.NewNop(),
	)
}

func TestExchangeService_QueryWithCustomRate(t *testing.T) {
	db := setupQuotationServiceTestDB(t)
	svc := createExchangeService(db)
	ctx := context.Background()

	custom := 5.00
	resp, err := svc.Query(ctx, "BRL", "USD", 500.00, &custom)
	require.NoError(t, err)

	assert.Equal(t, 100.00, resp.ConvertedAmount)
	assert.Equal(t, 5.00, resp.ExchangeRate)
	assert.Equal(t, string(exchange.SourceRequestOverride), resp.Source)
	assert.True(t, resp.IsCustom)
}

func TestExchangeService_QueryFallsBackToDefault(t *testing.T) {
	db := setupQuotationServiceTestDB(t)
	svc := createExchangeService(db)
	ctx := context.Background()

	// No override persisted and no provider reachable
	resp, err := svc.Query(ctx, "USD", "BRL", 100.00, nil)
	require.NoError(t, err)

	assert.Equal(t, 542.00, resp.ConvertedAmount)
	assert.Equal(t, 5.42, resp.ExchangeRate)
	assert.Equal(t, string(exchange.SourceDefault), resp.Source)
	assert.False(t, resp.IsCustom)
}

func TestExchangeService_QueryUsesPersistedOverride(t *testing.T) {
	db := setupQuotationServiceTestDB(t)
	svc := createExchangeService(db)
	ctx := context.Background()

	fixed := 5.10
	require.NoError(t, repository.NewSettingRepository(db).SaveExchangeConfig(ctx, &domain.ExchangeRateConfig{
		FixedRate:    &fixed,
		UseFixedRate: true,
		LastUpdated:  time.Now().UTC(),
	}))

	resp, err := svc.Query(ctx, "BRL", "USD", 51.00, nil)
	require.NoError(t, err)

	assert.Equal(t, 10.00, resp.ConvertedAmount)
	assert.Equal(t, string(exchange.SourceCustom), resp.Source)
	assert.True(t, resp.IsCustom)
}

func TestExchangeService_QueryValidation(t *testing.T) {
	db := setupQuotationServiceTestDB(t)
	svc := createExchangeService(db)
	ctx := context.Background()

	_, err := svc.Query(ctx, "BRL", "EUR", 100.00, nil)
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = svc.Query(ctx, "BRL", "USD", -1.00, nil)
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	// Blank currencies default to the BRL/USD pair
	custom := 5.00
	resp, err := svc.Query(ctx, "", "", 10.00, &custom)
	require.NoError(t, err)
	assert.Equal(t, 2.00, resp.ConvertedAmount)
}

func TestExchangeService_QuerySameCurrency(t *testing.T) {
	db := setupQuotationServiceTestDB(t)
	svc := createExchangeService(db)
	ctx := context.Background()

	custom := 5.00
	resp, err := svc.Query(ctx, "USD", "USD", 123.45, &custom)
	require.NoError(t, err)
	assert.Equal(t, 123.45, resp.ConvertedAmount)
}

func TestExchangeService_RefreshFailsWithoutProvider(t *testing.T) {
	db := setupQuotationServiceTestDB(t)
	svc := createExchangeService(db)

	_, err := svc.Refresh(context.Background())
	assert.Error(t, err)
}

func TestExchangeService_ConfigRequiresAdmin(t *testing.T) {
	db := setupQuotationServiceTestDB(t)
	svc := createExchangeService(db)
	ctx := context.Background()

	seller := testutil.CreateTestSeller(t, db, "Marcos")

	_, err := svc.GetConfig(ctx, testutil.SellerPrincipal(seller.ID))
	assert.ErrorIs(t, err, service.ErrForbidden)

	fixed := 5.00
	_, err = svc.UpdateConfig(ctx, testutil.SellerPrincipal(seller.ID), &domain.UpdateExchangeConfigRequest{
		FixedRate:    &fixed,
		UseFixedRate: true,
	})
	assert.ErrorIs(t, err, service.ErrForbidden)
}

func TestExchangeService_UpdateConfigRoundTrip(t *testing.T) {
	db := setupQuotationServiceTestDB(t)
	svc := createExchangeService(db)
	ctx := context.Background()
	admin := testutil.AdminPrincipal()

	fixed := 5.25
	saved, err := svc.UpdateConfig(ctx, admin, &domain.UpdateExchangeConfigRequest{
		FixedRate:    &fixed,
		UseFixedRate: true,
	})
	require.NoError(t, err)
	assert.True(t, saved.UseFixedRate)

	got, err := svc.GetConfig(ctx, admin)
	require.NoError(t, err)
	require.NotNil(t, got.FixedRate)
	assert.Equal(t, 5.25, *got.FixedRate)
	assert.True(t, got.UseFixedRate)

	// Disabling keeps the stored rate for later re-enabling
	saved, err = svc.UpdateConfig(ctx, admin, &domain.UpdateExchangeConfigRequest{
		FixedRate:    &fixed,
		UseFixedRate: false,
	})
	require.NoError(t, err)
	assert.False(t, saved.UseFixedRate)
}

func TestExchangeService_UpdateConfigRejectsNonPositiveRate(t *testing.T) {
	db := setupQuotationServiceTestDB(t)
	svc := createExchangeService(db)
	ctx := context.Background()

	_, err := svc.UpdateConfig(ctx, testutil.AdminPrincipal(), &domain.UpdateExchangeConfigRequest{
		UseFixedRate: true,
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	zero := 0.0
	_, err = svc.UpdateConfig(ctx, testutil.AdminPrincipal(), &domain.UpdateExchangeConfigRequest{
		FixedRate:    &zero,
		UseFixedRate: true,
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

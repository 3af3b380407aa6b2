package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
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

func setupQuotationServiceTestDB(t *testing.T) *gorm.DB {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestData(t, db)
	})
	return db
}

// offlineResolver resolves through unreachable providers, so reads land on
// the admin override or the static default.
func offlineResolver(db *gorm.DB) *exchange.Resolver {
	return exchange.NewResolver(
		repository.NewSettingRepository(db),
		exchange.NewRateCache(5*time.Minute, exchange.SystemClock()),
		exchange.NewAwesomeAPIProvider("http://127.0.0.1:1", time.Second),
		exchange.NewOpenERAPIProvider("http://127.0.0.1:1", time.Second),
		5.42,
		zap.NewNop(),
	)
}

func createQuotationService(db *gorm.DB) *service.QuotationService {
	logger := zap.NewNop()
	representation := service.NewRepresentationService(
		repository.NewRepresentationRepository(db),
		repository.NewRepresentationRequestRepository(db),
		repository.NewCompanyRepository(db),
		repository.NewSellerRepository(db),
		logger,
	)
	numbers := service.NewDocumentNumberService(repository.NewDocumentSequenceRepository(db), logger)

	return service.NewQuotationService(
		repository.NewQuotationRepository(db),
		repository.NewCompanyRepository(db),
		repository.NewSellerRepository(db),
		repository.NewClientRepository(db),
		repository.NewProductRepository(db),
		numbers,
		representation,
		offlineResolver(db),
		logger,
	)
}

type quotationFixture struct {
	company *domain.Company
	seller  *domain.Seller
	client  *domain.Client
	product *domain.Product
}

func newQuotationFixture(t *testing.T, db *gorm.DB) quotationFixture {
	company := testutil.CreateTestCompany(t, db, "Cafeeira Sul")
	seller := testutil.CreateTestSeller(t, db, "Marcos")
	testutil.CreateTestRepresentation(t, db, seller.ID, company.ID)
	return quotationFixture{
		company: company,
		seller:  seller,
		client:  testutil.CreateTestClient(t, db, "Import GmbH"),
		product: testutil.CreateTestProduct(t, db, company.ID, "Arabica 60kg", 900.00),
	}
}

func TestQuotationService_Create(t *testing.T) {
	db := setupQuotationServiceTestDB(t)
	svc := createQuotationService(db)
	ctx := context.Background()
	fx := newQuotationFixture(t, db)

	quotation, err := svc.Create(ctx, testutil.SellerPrincipal(fx.seller.ID), &domain.CreateQuotationRequest{
		CompanyID: fx.company.ID,
		ClientID:  fx.client.ID,
		Items: []domain.QuotationItemRequest{
			{ProductID: fx.product.ID, Quantity: 3},
			{ProductID: fx.product.ID, Quantity: 1, UnitPrice: 850.00, Description: "Negotiated lot"},
		},
		DiscountAmount: 50.00,
		Notes:          "FOB Santos",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.QuotationStatusDraft, quotation.Status)
	assert.Equal(t, fx.seller.ID, quotation.SellerID)
	assert.Equal(t, "BRL", quotation.Currency)
	assert.True(t, domain.IsValidDocumentNumber(quotation.Number))

	// 3 * 900 + 1 * 850 = 3550, minus 50 discount
	assert.Equal(t, 3550.00, quotation.Subtotal)
	assert.Equal(t, 3500.00, quotation.Total)

	require.Len(t, quotation.Items, 2)
	assert.Equal(t, "Arabica 60kg", quotation.Items[0].Description)
	assert.Equal(t, 900.00, quotation.Items[0].UnitPrice)
	assert.Equal(t, 2700.00, quotation.Items[0].LineTotal)
	assert.Equal(t, "Negotiated lot", quotation.Items[1].Description)
	assert.Equal(t, 850.00, quotation.Items[1].UnitPrice)
}

func TestQuotationService_CreateNumbersAreSequential(t *testing.T) {
	db := setupQuotationServiceTestDB(t)
	svc := createQuotationService(db)
	ctx := context.Background()
	fx := newQuotationFixture(t, db)

	req := &domain.CreateQuotationRequest{
		CompanyID: fx.company.ID,
		ClientID:  fx.client.ID,
		Items:     []domain.QuotationItemRequest{{ProductID: fx.product.ID, Quantity: 1}},
	}

	first, err := svc.Create(ctx, testutil.SellerPrincipal(fx.seller.ID), req)
	require.NoError(t, err)
	second, err := svc.Create(ctx, testutil.SellerPrincipal(fx.seller.ID), req)
	require.NoError(t, err)

	assert.NotEqual(t, first.Number, second.Number)
	assert.Equal(t, first.Number[:len(first.Number)-3], second.Number[:len(second.Number)-3])
}

func TestQuotationService_CreateRequiresRepresentation(t *testing.T) {
	db := setupQuotationServiceTestDB(t)
	svc := createQuotationService(db)
	ctx := context.Background()
	fx := newQuotationFixture(t, db)

	outsider := testutil.CreateTestSeller(t, db, "Outsider")

	_, err := svc.Create(ctx, testutil.SellerPrincipal(outsider.ID), &domain.CreateQuotationRequest{
		CompanyID: fx.company.ID,
		ClientID:  fx.client.ID,
		Items:     []domain.QuotationItemRequest{{ProductID: fx.product.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, service.ErrForbidden)
}

func TestQuotationService_AdminCreatesOnBehalfOfSeller(t *testing.T) {
	db := setupQuotationServiceTestDB(t)
	svc := createQuotationService(db)
	ctx := context.Background()
	fx := newQuotationFixture(t, db)

	quotation, err := svc.Create(ctx, testutil.AdminPrincipal(), &domain.CreateQuotationRequest{
		CompanyID: fx.company.ID,
		SellerID:  &fx.seller.ID,
		ClientID:  fx.client.ID,
		Items:     []domain.QuotationItemRequest{{ProductID: fx.product.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, fx.seller.ID, quotation.SellerID)

	// Admin without a seller to act as cannot issue
	_, err = svc.Create(ctx, testutil.AdminPrincipal(), &domain.CreateQuotationRequest{
		CompanyID: fx.company.ID,
		ClientID:  fx.client.ID,
		Items:     []domain.QuotationItemRequest{{ProductID: fx.product.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, service.ErrForbidden)
}

func TestQuotationService_CreateRejectsForeignProduct(t *testing.T) {
	db := setupQuotationServiceTestDB(t)
	svc := createQuotationService(db)
	ctx := context.Background()
	fx := newQuotationFixture(t, db)

	otherCompany := testutil.CreateTestCompany(t, db, "Graos Norte")
	foreignProduct := testutil.CreateTestProduct(t, db, otherCompany.ID, "Robusta 60kg", 500.00)

	_, err := svc.Create(ctx, testutil.SellerPrincipal(fx.seller.ID), &domain.CreateQuotationRequest{
		CompanyID: fx.company.ID,
		ClientID:  fx.client.ID,
		Items:     []domain.QuotationItemRequest{{ProductID: foreignProduct.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, service.ErrProductCompanyMismatch)

	_, err = svc.Create(ctx, testutil.SellerPrincipal(fx.seller.ID), &domain.CreateQuotationRequest{
		CompanyID: fx.company.ID,
		ClientID:  fx.client.ID,
		Items:     []domain.QuotationItemRequest{{ProductID: uuid.New(), Quantity: 1}},
	})
	assert.ErrorIs(t, err, service.ErrProductNotFound)
}

func TestQuotationService_CreateRejectsExcessiveDiscount(t *testing.T) {
	db := setupQuotationServiceTestDB(t)
	svc := createQuotationService(db)
	ctx := context.Background()
	fx := newQuotationFixture(t, db)

	_, err := svc.Create(ctx, testutil.SellerPrincipal(fx.seller.ID), &domain.CreateQuotationRequest{
		CompanyID:      fx.company.ID,
		ClientID:       fx.client.ID,
		Items:          []domain.QuotationItemRequest{{ProductID: fx.product.ID, Quantity: 1}},
		DiscountAmount: 1000.00,
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestQuotationService_GetByIDAuthorization(t *testing.T) {
	db := setupQuotationServiceTestDB(t)
	svc := createQuotationService(db)
	ctx := context.Background()
	fx := newQuotationFixture(t, db)

	quotation, err := svc.Create(ctx, testutil.SellerPrincipal(fx.seller.ID), &domain.CreateQuotationRequest{
		CompanyID: fx.company.ID,
		ClientID:  fx.client.ID,
		Items:     []domain.QuotationItemRequest{{ProductID: fx.product.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	// Issuing seller and addressed client can read
	_, _, err = svc.GetByID(ctx, testutil.SellerPrincipal(fx.seller.ID), quotation.ID, "")
	assert.NoError(t, err)
	_, _, err = svc.GetByID(ctx, testutil.ClientPrincipal(fx.client.ID), quotation.ID, "")
	assert.NoError(t, err)

	// Unrelated seller and client cannot
	outsider := testutil.CreateTestSeller(t, db, "Outsider")
	_, _, err = svc.GetByID(ctx, testutil.SellerPrincipal(outsider.ID), quotation.ID, "")
	assert.ErrorIs(t, err, service.ErrForbidden)

	otherClient := testutil.CreateTestClient(t, db, "Other Buyer")
	_, _, err = svc.GetByID(ctx, testutil.ClientPrincipal(otherClient.ID), quotation.ID, "")
	assert.ErrorIs(t, err, service.ErrForbidden)
}

func TestQuotationService_GetByIDConvertedView(t *testing.T) {
	db := setupQuotationServiceTestDB(t)
	svc := createQuotationService(db)
	ctx := context.Background()
	fx := newQuotationFixture(t, db)

	// Pin the rate via the admin override so the assertion is deterministic
	settingRepo := repository.NewSettingRepository(db)
	fixed := 5.00
	require.NoError(t, settingRepo.SaveExchangeConfig(ctx, &domain.ExchangeRateConfig{
		FixedRate:    &fixed,
		UseFixedRate: true,
		LastUpdated:  time.Now().UTC(),
	}))

	quotation, err := svc.Create(ctx, testutil.SellerPrincipal(fx.seller.ID), &domain.CreateQuotationRequest{
		CompanyID: fx.company.ID,
		ClientID:  fx.client.ID,
		Items:     []domain.QuotationItemRequest{{ProductID: fx.product.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	got, rate, err := svc.GetByID(ctx, testutil.AdminPrincipal(), quotation.ID, "USD")
	require.NoError(t, err)
	require.NotNil(t, rate)
	assert.Equal(t, 5.00, rate.Value)
	assert.Equal(t, exchange.SourceCustom, rate.Source)
	// Stored amounts stay in the base currency
	assert.Equal(t, 900.00, got.Total)
	assert.Equal(t, 180.00, exchange.ToUSD(got.Total, rate.Value))

	// Same currency asks for no conversion
	_, rate, err = svc.GetByID(ctx, testutil.AdminPrincipal(), quotation.ID, "BRL")
	require.NoError(t, err)
	assert.Nil(t, rate)

	// Lower case is accepted
	_, rate, err = svc.GetByID(ctx, testutil.AdminPrincipal(), quotation.ID, "usd")
	require.NoError(t, err)
	require.NotNil(t, rate)

	// Only the USD view is supported
	_, _, err = svc.GetByID(ctx, testutil.AdminPrincipal(), quotation.ID, "EUR")
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestQuotationService_ListScoping(t *testing.T) {
	db := setupQuotationServiceTestDB(t)
	svc := createQuotationService(db)
	ctx := context.Background()
	fx := newQuotationFixture(t, db)

	otherCompany := testutil.CreateTestCompany(t, db, "Graos Norte")
	otherSeller := testutil.CreateTestSeller(t, db, "Nina")
	testutil.CreateTestRepresentation(t, db, otherSeller.ID, otherCompany.ID)
	otherProduct := testutil.CreateTestProduct(t, db, otherCompany.ID, "Robusta 60kg", 500.00)
	otherClient := testutil.CreateTestClient(t, db, "Other Buyer")

	_, err := svc.Create(ctx, testutil.SellerPrincipal(fx.seller.ID), &domain.CreateQuotationRequest{
		CompanyID: fx.company.ID,
		ClientID:  fx.client.ID,
		Items:     []domain.QuotationItemRequest{{ProductID: fx.product.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, testutil.SellerPrincipal(otherSeller.ID), &domain.CreateQuotationRequest{
		CompanyID: otherCompany.ID,
		ClientID:  otherClient.ID,
		Items:     []domain.QuotationItemRequest{{ProductID: otherProduct.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	sort := repository.DefaultSortConfig()

	// Admin sees everything
	_, total, err := svc.List(ctx, testutil.AdminPrincipal(), "", "", 1, 20, sort)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	// Each seller sees only their represented company's quotations
	quotations, total, err := svc.List(ctx, testutil.SellerPrincipal(fx.seller.ID), "", "", 1, 20, sort)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, quotations, 1)
	assert.Equal(t, fx.company.ID, quotations[0].CompanyID)

	// Clients see only quotations addressed to them
	quotations, total, err = svc.List(ctx, testutil.ClientPrincipal(otherClient.ID), "", "", 1, 20, sort)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, quotations, 1)
	assert.Equal(t, otherClient.ID, quotations[0].ClientID)

	// A seller with no representations sees nothing
	lonely := testutil.CreateTestSeller(t, db, "Lonely")
	_, total, err = svc.List(ctx, testutil.SellerPrincipal(lonely.ID), "", "", 1, 20, sort)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

func TestQuotationService_Lifecycle(t *testing.T) {
	db := setupQuotationServiceTestDB(t)
	svc := createQuotationService(db)
	ctx := context.Background()
	fx := newQuotationFixture(t, db)

	sellerPrincipal := testutil.SellerPrincipal(fx.seller.ID)
	clientPrincipal := testutil.ClientPrincipal(fx.client.ID)

	quotation, err := svc.Create(ctx, sellerPrincipal, &domain.CreateQuotationRequest{
		CompanyID: fx.company.ID,
		ClientID:  fx.client.ID,
		Items:     []domain.QuotationItemRequest{{ProductID: fx.product.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	// A draft cannot be decided
	_, err = svc.Transition(ctx, clientPrincipal, quotation.ID, domain.QuotationStatusApproved)
	assert.ErrorIs(t, err, service.ErrInvalidState)

	// The client cannot send
	_, err = svc.Transition(ctx, clientPrincipal, quotation.ID, domain.QuotationStatusSent)
	assert.ErrorIs(t, err, service.ErrForbidden)

	sent, err := svc.Transition(ctx, sellerPrincipal, quotation.ID, domain.QuotationStatusSent)
	require.NoError(t, err)
	assert.Equal(t, domain.QuotationStatusSent, sent.Status)

	// The seller cannot decide for the client
	_, err = svc.Transition(ctx, sellerPrincipal, quotation.ID, domain.QuotationStatusApproved)
	assert.ErrorIs(t, err, service.ErrForbidden)

	// Expiry is reserved for admins
	_, err = svc.Transition(ctx, sellerPrincipal, quotation.ID, domain.QuotationStatusExpired)
	assert.ErrorIs(t, err, service.ErrForbidden)
	_, err = svc.Transition(ctx, clientPrincipal, quotation.ID, domain.QuotationStatusExpired)
	assert.ErrorIs(t, err, service.ErrForbidden)

	approved, err := svc.Transition(ctx, clientPrincipal, quotation.ID, domain.QuotationStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, domain.QuotationStatusApproved, approved.Status)

	// Approved is terminal
	_, err = svc.Transition(ctx, testutil.AdminPrincipal(), quotation.ID, domain.QuotationStatusExpired)
	assert.ErrorIs(t, err, service.ErrInvalidState)
}

func TestQuotationService_AdminExpiresSentQuotation(t *testing.T) {
	db := setupQuotationServiceTestDB(t)
	svc := createQuotationService(db)
	ctx := context.Background()
	fx := newQuotationFixture(t, db)

	quotation, err := svc.Create(ctx, testutil.SellerPrincipal(fx.seller.ID), &domain.CreateQuotationRequest{
		CompanyID: fx.company.ID,
		ClientID:  fx.client.ID,
		Items:     []domain.QuotationItemRequest{{ProductID: fx.product.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = svc.Transition(ctx, testutil.SellerPrincipal(fx.seller.ID), quotation.ID, domain.QuotationStatusSent)
	require.NoError(t, err)

	expired, err := svc.Transition(ctx, testutil.AdminPrincipal(), quotation.ID, domain.QuotationStatusExpired)
	require.NoError(t, err)
	assert.Equal(t, domain.QuotationStatusExpired, expired.Status)
}

func TestQuotationService_DeleteOnlyDrafts(t *testing.T) {
	db := setupQuotationServiceTestDB(t)
	svc := createQuotationService(db)
	ctx := context.Background()
	fx := newQuotationFixture(t, db)

	sellerPrincipal := testutil.SellerPrincipal(fx.seller.ID)

	quotation, err := svc.Create(ctx, sellerPrincipal, &domain.CreateQuotationRequest{
		CompanyID: fx.company.ID,
		ClientID:  fx.client.ID,
		Items:     []domain.QuotationItemRequest{{ProductID: fx.product.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	// Another seller cannot delete the draft
	outsider := testutil.CreateTestSeller(t, db, "Outsider")
	err = svc.Delete(ctx, testutil.SellerPrincipal(outsider.ID), quotation.ID)
	assert.ErrorIs(t, err, service.ErrForbidden)

	// The issuing seller can
	require.NoError(t, svc.Delete(ctx, sellerPrincipal, quotation.ID))
	_, _, err = svc.GetByID(ctx, testutil.AdminPrincipal(), quotation.ID, "")
	assert.ErrorIs(t, err, service.ErrNotFound)

	// Sent quotations are history and cannot be deleted
	sent, err := svc.Create(ctx, sellerPrincipal, &domain.CreateQuotationRequest{
		CompanyID: fx.company.ID,
		ClientID:  fx.client.ID,
		Items:     []domain.QuotationItemRequest{{ProductID: fx.product.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = svc.Transition(ctx, sellerPrincipal, sent.ID, domain.QuotationStatusSent)
	require.NoError(t, err)

	err = svc.Delete(ctx, testutil.AdminPrincipal(), sent.ID)
	assert.ErrorIs(t, err, service.ErrInvalidState)
}

func TestQuotationService_StatusCounts(t *testing.T) {
	db := setupQuotationServiceTestDB(t)
	svc := createQuotationService(db)
	ctx := context.Background()
	fx := newQuotationFixture(t, db)

	sellerPrincipal := testutil.SellerPrincipal(fx.seller.ID)

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, sellerPrincipal, &domain.CreateQuotationRequest{
			CompanyID: fx.company.ID,
			ClientID:  fx.client.ID,
			Items:     []domain.QuotationItemRequest{{ProductID: fx.product.ID, Quantity: 1}},
		})
		require.NoError(t, err)
	}

	counts, err := svc.StatusCounts(ctx, sellerPrincipal)
	require.NoError(t, err)
	assert.EqualValues(t, 3, counts[domain.QuotationStatusDraft])

	// Clients have no dashboard
	_, err = svc.StatusCounts(ctx, testutil.ClientPrincipal(fx.client.ID))
	assert.ErrorIs(t, err, service.ErrForbidden)
}

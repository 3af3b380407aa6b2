package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/opdexport/quotation-api/internal/domain"
	"github.com/opdexport/quotation-api/internal/repository"
	"github.com/opdexport/quotation-api/internal/service"
	"github.com/opdexport/quotation-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupRepresentationServiceTestDB(t *testing.T) *gorm.DB {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestData(t, db)
	})
	return db
}

func createRepresentationService(db *gorm.DB) *service.RepresentationService {
	return service.NewRepresentationService(
		repository.NewRepresentationRepository(db),
		repository.NewRepresentationRequestRepository(db),
		repository.NewCompanyRepository(db),
		repository.NewSellerRepository(db),
		zap.NewNop(),
	)
}

func TestRepresentationService_RequestCreatesPending(t *testing.T) {
	db := setupRepresentationServiceTestDB(t)
	svc := createRepresentationService(db)
	ctx := context.Background()

	company := testutil.CreateTestCompany(t, db, "Cafeeira Sul")
	seller := testutil.CreateTestSeller(t, db, "Marcos")
	principal := testutil.SellerPrincipal(seller.ID)

	result, err := svc.Request(ctx, principal, &domain.CreateRepresentationRequestRequest{
		CompanyID: company.ID,
		Message:   "I cover the southern region",
	})
	require.NoError(t, err)
	require.NotNil(t, result.Request)
	assert.Nil(t, result.Reactivated)
	assert.Equal(t, domain.RequestStatePending, result.Request.State)
	assert.Equal(t, seller.ID, result.Request.SellerID)
	assert.Equal(t, company.ID, result.Request.CompanyID)

	// A pending request does not grant visibility yet
	representing, err := svc.IsRepresenting(ctx, principal, company.ID)
	require.NoError(t, err)
	assert.False(t, representing)
}

func TestRepresentationService_DuplicatePendingRequestRejected(t *testing.T) {
	db := setupRepresentationServiceTestDB(t)
	svc := createRepresentationService(db)
	ctx := context.Background()

	company := testutil.CreateTestCompany(t, db, "Cafeeira Sul")
	seller := testutil.CreateTestSeller(t, db, "Marcos")
	principal := testutil.SellerPrincipal(seller.ID)

	_, err := svc.Request(ctx, principal, &domain.CreateRepresentationRequestRequest{CompanyID: company.ID})
	require.NoError(t, err)

	_, err = svc.Request(ctx, principal, &domain.CreateRepresentationRequestRequest{CompanyID: company.ID})
	assert.ErrorIs(t, err, service.ErrDuplicateRepresentation)
}

func TestRepresentationService_RequestAgainstActivePairRejected(t *testing.T) {
	db := setupRepresentationServiceTestDB(t)
	svc := createRepresentationService(db)
	ctx := context.Background()

	company := testutil.CreateTestCompany(t, db, "Cafeeira Sul")
	seller := testutil.CreateTestSeller(t, db, "Marcos")
	testutil.CreateTestRepresentation(t, db, seller.ID, company.ID)

	_, err := svc.Request(ctx, testutil.SellerPrincipal(seller.ID), &domain.CreateRepresentationRequestRequest{CompanyID: company.ID})
	assert.ErrorIs(t, err, service.ErrDuplicateRepresentation)
}

func TestRepresentationService_RequestReactivatesDeactivatedPair(t *testing.T) {
	db := setupRepresentationServiceTestDB(t)
	svc := createRepresentationService(db)
	ctx := context.Background()

	company := testutil.CreateTestCompany(t, db, "Cafeeira Sul")
	seller := testutil.CreateTestSeller(t, db, "Marcos")
	rep := testutil.CreateTestRepresentation(t, db, seller.ID, company.ID)

	admin := testutil.AdminPrincipal()
	_, err := svc.Toggle(ctx, admin, rep.ID, false)
	require.NoError(t, err)

	result, err := svc.Request(ctx, testutil.SellerPrincipal(seller.ID), &domain.CreateRepresentationRequestRequest{CompanyID: company.ID})
	require.NoError(t, err)
	assert.Nil(t, result.Request, "reactivation must not open a new request")
	require.NotNil(t, result.Reactivated)
	assert.Equal(t, rep.ID, result.Reactivated.ID)
	assert.True(t, result.Reactivated.Active)

	representing, err := svc.IsRepresenting(ctx, testutil.SellerPrincipal(seller.ID), company.ID)
	require.NoError(t, err)
	assert.True(t, representing)
}

func TestRepresentationService_RequestInactiveCompanyRejected(t *testing.T) {
	db := setupRepresentationServiceTestDB(t)
	svc := createRepresentationService(db)
	ctx := context.Background()

	company := testutil.CreateTestCompany(t, db, "Cafeeira Sul")
	require.NoError(t, db.Model(company).Update("is_active", false).Error)
	seller := testutil.CreateTestSeller(t, db, "Marcos")

	_, err := svc.Request(ctx, testutil.SellerPrincipal(seller.ID), &domain.CreateRepresentationRequestRequest{CompanyID: company.ID})
	assert.ErrorIs(t, err, service.ErrInvalidState)
}

func TestRepresentationService_ApproveActivatesRepresentation(t *testing.T) {
	db := setupRepresentationServiceTestDB(t)
	svc := createRepresentationService(db)
	ctx := context.Background()

	company := testutil.CreateTestCompany(t, db, "Cafeeira Sul")
	seller := testutil.CreateTestSeller(t, db, "Marcos")
	sellerPrincipal := testutil.SellerPrincipal(seller.ID)

	result, err := svc.Request(ctx, sellerPrincipal, &domain.CreateRepresentationRequestRequest{CompanyID: company.ID})
	require.NoError(t, err)

	admin := testutil.AdminPrincipal()
	resolved, err := svc.Resolve(ctx, admin, result.Request.ID, domain.DecisionApprove)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStateApproved, resolved.State)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, admin.UserID, *resolved.ResolvedBy)
	assert.NotNil(t, resolved.ResolvedAt)

	representing, err := svc.IsRepresenting(ctx, sellerPrincipal, company.ID)
	require.NoError(t, err)
	assert.True(t, representing)

	companyIDs, err := svc.CompanyIDsForSeller(ctx, seller.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{company.ID}, companyIDs)
}

func TestRepresentationService_RejectLeavesNoRepresentation(t *testing.T) {
	db := setupRepresentationServiceTestDB(t)
	svc := createRepresentationService(db)
	ctx := context.Background()

	company := testutil.CreateTestCompany(t, db, "Cafeeira Sul")
	seller := testutil.CreateTestSeller(t, db, "Marcos")

	result, err := svc.Request(ctx, testutil.SellerPrincipal(seller.ID), &domain.CreateRepresentationRequestRequest{CompanyID: company.ID})
	require.NoError(t, err)

	resolved, err := svc.Resolve(ctx, testutil.AdminPrincipal(), result.Request.ID, domain.DecisionReject)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStateRejected, resolved.State)

	representing, err := svc.IsRepresenting(ctx, testutil.SellerPrincipal(seller.ID), company.ID)
	require.NoError(t, err)
	assert.False(t, representing)
}

func TestRepresentationService_ResolveTwiceFails(t *testing.T) {
	db := setupRepresentationServiceTestDB(t)
	svc := createRepresentationService(db)
	ctx := context.Background()

	company := testutil.CreateTestCompany(t, db, "Cafeeira Sul")
	seller := testutil.CreateTestSeller(t, db, "Marcos")

	result, err := svc.Request(ctx, testutil.SellerPrincipal(seller.ID), &domain.CreateRepresentationRequestRequest{CompanyID: company.ID})
	require.NoError(t, err)

	admin := testutil.AdminPrincipal()
	_, err = svc.Resolve(ctx, admin, result.Request.ID, domain.DecisionApprove)
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, admin, result.Request.ID, domain.DecisionReject)
	assert.ErrorIs(t, err, service.ErrInvalidState)
}

func TestRepresentationService_ResolveAuthorization(t *testing.T) {
	db := setupRepresentationServiceTestDB(t)
	svc := createRepresentationService(db)
	ctx := context.Background()

	company := testutil.CreateTestCompany(t, db, "Cafeeira Sul")
	seller := testutil.CreateTestSeller(t, db, "Marcos")

	result, err := svc.Request(ctx, testutil.SellerPrincipal(seller.ID), &domain.CreateRepresentationRequestRequest{CompanyID: company.ID})
	require.NoError(t, err)

	// Sellers cannot resolve their own requests
	_, err = svc.Resolve(ctx, testutil.SellerPrincipal(seller.ID), result.Request.ID, domain.DecisionApprove)
	assert.ErrorIs(t, err, service.ErrForbidden)

	// Unknown request ids surface as not found
	_, err = svc.Resolve(ctx, testutil.AdminPrincipal(), uuid.New(), domain.DecisionApprove)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestRepresentationService_ToggleRevokesVisibility(t *testing.T) {
	db := setupRepresentationServiceTestDB(t)
	svc := createRepresentationService(db)
	ctx := context.Background()

	company := testutil.CreateTestCompany(t, db, "Cafeeira Sul")
	seller := testutil.CreateTestSeller(t, db, "Marcos")
	rep := testutil.CreateTestRepresentation(t, db, seller.ID, company.ID)

	_, err := svc.Toggle(ctx, testutil.SellerPrincipal(seller.ID), rep.ID, false)
	assert.ErrorIs(t, err, service.ErrForbidden)

	toggled, err := svc.Toggle(ctx, testutil.AdminPrincipal(), rep.ID, false)
	require.NoError(t, err)
	assert.False(t, toggled.Active)

	representing, err := svc.IsRepresenting(ctx, testutil.SellerPrincipal(seller.ID), company.ID)
	require.NoError(t, err)
	assert.False(t, representing)

	companyIDs, err := svc.CompanyIDsForSeller(ctx, seller.ID)
	require.NoError(t, err)
	assert.Empty(t, companyIDs)
}

func TestRepresentationService_AdminAlwaysRepresenting(t *testing.T) {
	db := setupRepresentationServiceTestDB(t)
	svc := createRepresentationService(db)
	ctx := context.Background()

	company := testutil.CreateTestCompany(t, db, "Cafeeira Sul")

	representing, err := svc.IsRepresenting(ctx, testutil.AdminPrincipal(), company.ID)
	require.NoError(t, err)
	assert.True(t, representing)
}

func TestRepresentationService_ListPending(t *testing.T) {
	db := setupRepresentationServiceTestDB(t)
	svc := createRepresentationService(db)
	ctx := context.Background()

	company := testutil.CreateTestCompany(t, db, "Cafeeira Sul")
	other := testutil.CreateTestCompany(t, db, "Graos Norte")
	seller := testutil.CreateTestSeller(t, db, "Marcos")
	principal := testutil.SellerPrincipal(seller.ID)

	first, err := svc.Request(ctx, principal, &domain.CreateRepresentationRequestRequest{CompanyID: company.ID})
	require.NoError(t, err)
	_, err = svc.Request(ctx, principal, &domain.CreateRepresentationRequestRequest{CompanyID: other.ID})
	require.NoError(t, err)

	pending, total, err := svc.ListPending(ctx, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, pending, 2)
	// Oldest first so the queue is worked in arrival order
	assert.Equal(t, first.Request.ID, pending[0].ID)

	_, err = svc.Resolve(ctx, testutil.AdminPrincipal(), first.Request.ID, domain.DecisionApprove)
	require.NoError(t, err)

	_, total, err = svc.ListPending(ctx, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

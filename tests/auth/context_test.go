package auth_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/opdexport/quotation-api/internal/auth"
	"github.com/opdexport/quotation-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrincipalContextRoundTrip(t *testing.T) {
	p := &auth.Principal{
		UserID: uuid.New(),
		Role:   domain.RoleAdmin,
	}

	ctx := auth.WithPrincipal(context.Background(), p)
	got, ok := auth.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, p, got)
}

func TestFromContext_Missing(t *testing.T) {
	_, ok := auth.FromContext(context.Background())
	assert.False(t, ok)
}

func TestMustFromContext_Panics(t *testing.T) {
	assert.Panics(t, func() {
		auth.MustFromContext(context.Background())
	})
}

func TestPrincipal_RoleChecks(t *testing.T) {
	sellerID := uuid.New()
	clientID := uuid.New()

	admin := &auth.Principal{Role: domain.RoleAdmin}
	seller := &auth.Principal{Role: domain.RoleSeller, SellerID: &sellerID}
	client := &auth.Principal{Role: domain.RoleClient, ClientID: &clientID}

	assert.True(t, admin.IsAdmin())
	assert.True(t, seller.IsSeller())
	assert.True(t, client.IsClient())

	assert.True(t, admin.CanActAsSeller())
	assert.True(t, seller.CanActAsSeller())
	assert.False(t, client.CanActAsSeller())

	// A seller token without a profile claim never passes validation,
	// but the helper still guards against it
	orphan := &auth.Principal{Role: domain.RoleSeller}
	assert.False(t, orphan.CanActAsSeller())

	assert.True(t, admin.HasRole(domain.RoleAdmin, domain.RoleSeller))
	assert.False(t, client.HasRole(domain.RoleAdmin, domain.RoleSeller))
}

func TestEffectiveSellerID(t *testing.T) {
	ownID := uuid.New()
	requestedID := uuid.New()

	t.Run("seller always acts as self", func(t *testing.T) {
		p := &auth.Principal{Role: domain.RoleSeller, SellerID: &ownID}

		got, ok := p.EffectiveSellerID(&requestedID)
		require.True(t, ok)
		assert.Equal(t, ownID, got, "sellers must not impersonate other sellers")

		got, ok = p.EffectiveSellerID(nil)
		require.True(t, ok)
		assert.Equal(t, ownID, got)
	})

	t.Run("admin acts as requested seller", func(t *testing.T) {
		p := &auth.Principal{Role: domain.RoleAdmin}

		got, ok := p.EffectiveSellerID(&requestedID)
		require.True(t, ok)
		assert.Equal(t, requestedID, got)
	})

	t.Run("admin falls back to own profile", func(t *testing.T) {
		p := &auth.Principal{Role: domain.RoleAdmin, SellerID: &ownID}

		got, ok := p.EffectiveSellerID(nil)
		require.True(t, ok)
		assert.Equal(t, ownID, got)
	})

	t.Run("admin without profile or request resolves nothing", func(t *testing.T) {
		p := &auth.Principal{Role: domain.RoleAdmin}

		_, ok := p.EffectiveSellerID(nil)
		assert.False(t, ok)
	})

	t.Run("client never resolves a seller", func(t *testing.T) {
		clientID := uuid.New()
		p := &auth.Principal{Role: domain.RoleClient, ClientID: &clientID}

		_, ok := p.EffectiveSellerID(&requestedID)
		assert.False(t, ok)
	})
}

package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/opdexport/quotation-api/internal/domain"
)

// Principal holds authenticated caller information. SellerID and ClientID
// are set only when the token carries the matching profile claim; an admin
// may carry a seller profile as well.
type Principal struct {
	UserID      uuid.UUID
	DisplayName string
	Email       string
	Role        domain.Role
	SellerID    *uuid.UUID
	ClientID    *uuid.UUID
}

type contextKey string

const principalKey contextKey = "principal"

// WithPrincipal adds the authenticated principal to the context
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// FromContext extracts the principal from the context
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok
}

// MustFromContext extracts the principal or panics
func MustFromContext(ctx context.Context) *Principal {
	p, ok := FromContext(ctx)
	if !ok {
		panic("principal not found in context")
	}
	return p
}

// IsAdmin checks if the principal carries the admin role
func (p *Principal) IsAdmin() bool {
	return p.Role == domain.RoleAdmin
}

// IsSeller checks if the principal carries the seller role
func (p *Principal) IsSeller() bool {
	return p.Role == domain.RoleSeller
}

// IsClient checks if the principal carries the client role
func (p *Principal) IsClient() bool {
	return p.Role == domain.RoleClient
}

// CanActAsSeller reports whether seller-scoped operations are open to the
// principal. Admins always qualify, with or without a seller profile.
func (p *Principal) CanActAsSeller() bool {
	return p.IsAdmin() || (p.IsSeller() && p.SellerID != nil)
}

// EffectiveSellerID resolves the seller profile an operation should run as.
// Sellers always act as themselves. Admins act as the explicitly requested
// seller, falling back to their own profile when they carry one.
func (p *Principal) EffectiveSellerID(requested *uuid.UUID) (uuid.UUID, bool) {
	if p.IsSeller() && p.SellerID != nil {
		return *p.SellerID, true
	}
	if p.IsAdmin() {
		if requested != nil {
			return *requested, true
		}
		if p.SellerID != nil {
			return *p.SellerID, true
		}
	}
	return uuid.Nil, false
}

// HasRole checks if the principal has one of the specified roles
func (p *Principal) HasRole(roles ...domain.Role) bool {
	for _, role := range roles {
		if p.Role == role {
			return true
		}
	}
	return false
}

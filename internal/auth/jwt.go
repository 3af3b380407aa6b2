package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/opdexport/quotation-api/internal/config"
	"github.com/opdexport/quotation-api/internal/domain"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrInvalidRole  = errors.New("token carries no valid role")
)

// JWTValidator validates HMAC-signed access tokens issued by the identity
// service and maps their claims onto a Principal.
type JWTValidator struct {
	secret   []byte
	issuer   string
	audience string
}

// NewJWTValidator creates a new JWT validator
func NewJWTValidator(cfg *config.AuthConfig) *JWTValidator {
	return &JWTValidator{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
	}
}

// ValidateToken validates a token string and returns the principal it encodes
func (v *JWTValidator) ValidateToken(tokenString string) (*Principal, error) {
	claims := jwt.MapClaims{}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	parsedToken, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !parsedToken.Valid {
		return nil, ErrInvalidToken
	}

	role := domain.Role(extractString(claims, "role"))
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}

	p := &Principal{
		DisplayName: extractString(claims, "name", "preferred_username"),
		Email:       extractString(claims, "email"),
		Role:        role,
	}

	if subStr := extractString(claims, "sub"); subStr != "" {
		if uid, err := uuid.Parse(subStr); err == nil {
			p.UserID = uid
		}
	}
	if p.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	if sellerStr := extractString(claims, "seller_id"); sellerStr != "" {
		if sid, err := uuid.Parse(sellerStr); err == nil {
			p.SellerID = &sid
		}
	}
	if clientStr := extractString(claims, "client_id"); clientStr != "" {
		if cid, err := uuid.Parse(clientStr); err == nil {
			p.ClientID = &cid
		}
	}

	if p.Role == domain.RoleSeller && p.SellerID == nil {
		return nil, fmt.Errorf("%w: seller token missing seller_id", ErrInvalidToken)
	}
	if p.Role == domain.RoleClient && p.ClientID == nil {
		return nil, fmt.Errorf("%w: client token missing client_id", ErrInvalidToken)
	}

	return p, nil
}

func extractString(claims jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		if val, ok := claims[key]; ok {
			if str, ok := val.(string); ok && str != "" {
				return str
			}
		}
	}
	return ""
}

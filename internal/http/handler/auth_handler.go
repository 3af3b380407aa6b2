package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/opdexport/quotation-api/internal/auth"
	"go.uber.org/zap"
)

type AuthHandler struct {
	logger *zap.Logger
}

func NewAuthHandler(logger *zap.Logger) *AuthHandler {
	return &AuthHandler{logger: logger}
}

type meResponse struct {
	UserID      uuid.UUID  `json:"userId"`
	DisplayName string     `json:"displayName,omitempty"`
	Email       string     `json:"email,omitempty"`
	Role        string     `json:"role"`
	SellerID    *uuid.UUID `json:"sellerId,omitempty"`
	ClientID    *uuid.UUID `json:"clientId,omitempty"`
}

// Me godoc
// @Summary Current principal
// @Description Echo the authenticated principal extracted from the token
// @Tags Auth
// @Produce json
// @Success 200 {object} meResponse
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "no principal")
		return
	}

	respondJSON(w, http.StatusOK, meResponse{
		UserID:      principal.UserID,
		DisplayName: principal.DisplayName,
		Email:       principal.Email,
		Role:        string(principal.Role),
		SellerID:    principal.SellerID,
		ClientID:    principal.ClientID,
	})
}

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/opdexport/quotation-api/internal/auth"
	"github.com/opdexport/quotation-api/internal/domain"
	"github.com/opdexport/quotation-api/internal/mapper"
	"github.com/opdexport/quotation-api/internal/service"
	"go.uber.org/zap"
)

type SellerHandler struct {
	sellerService         *service.SellerService
	representationService *service.RepresentationService
	logger                *zap.Logger
}

func NewSellerHandler(
	sellerService *service.SellerService,
	representationService *service.RepresentationService,
	logger *zap.Logger,
) *SellerHandler {
	return &SellerHandler{
		sellerService:         sellerService,
		representationService: representationService,
		logger:                logger,
	}
}

// List godoc
// @Summary List sellers
// @Tags Sellers
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by name or email"
// @Param active query bool false "Only active sellers"
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Router /sellers [get]
func (h *SellerHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	search := r.URL.Query().Get("search")
	activeOnly := r.URL.Query().Get("active") == "true"

	sellers, total, err := h.sellerService.List(r.Context(), page, pageSize, search, activeOnly)
	if err != nil {
		h.logger.Error("failed to list sellers", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToPaginatedResponse(sellers, total, page, pageSize))
}

// Create godoc
// @Summary Register a seller
// @Tags Sellers
// @Accept json
// @Produce json
// @Param request body domain.CreateSellerRequest true "Seller payload"
// @Success 201 {object} domain.Seller
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /sellers [post]
func (h *SellerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateSellerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	principal := auth.MustFromContext(r.Context())
	seller, err := h.sellerService.Create(r.Context(), principal, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, seller)
}

// Get godoc
// @Summary Get a seller
// @Tags Sellers
// @Produce json
// @Param id path string true "Seller ID"
// @Success 200 {object} domain.Seller
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /sellers/{id} [get]
func (h *SellerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid seller id")
		return
	}

	seller, err := h.sellerService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, seller)
}

// Update godoc
// @Summary Update a seller
// @Tags Sellers
// @Accept json
// @Produce json
// @Param id path string true "Seller ID"
// @Param request body domain.CreateSellerRequest true "Update payload"
// @Success 200 {object} domain.Seller
// @Security BearerAuth
// @Router /sellers/{id} [put]
func (h *SellerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid seller id")
		return
	}

	var req domain.CreateSellerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	principal := auth.MustFromContext(r.Context())
	seller, err := h.sellerService.Update(r.Context(), principal, id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, seller)
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

// SetActive godoc
// @Summary Activate or deactivate a seller
// @Tags Sellers
// @Accept json
// @Produce json
// @Param id path string true "Seller ID"
// @Param request body setActiveRequest true "Active flag"
// @Success 200 {object} domain.Seller
// @Security BearerAuth
// @Router /sellers/{id}/active [patch]
func (h *SellerHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid seller id")
		return
	}

	var req setActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	principal := auth.MustFromContext(r.Context())
	seller, err := h.sellerService.SetActive(r.Context(), principal, id, req.Active)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, seller)
}

// Delete godoc
// @Summary Delete a seller
// @Description Delete a seller without quotation history
// @Tags Sellers
// @Param id path string true "Seller ID"
// @Success 204
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /sellers/{id} [delete]
func (h *SellerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid seller id")
		return
	}

	principal := auth.MustFromContext(r.Context())
	if err := h.sellerService.Delete(r.Context(), principal, id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// Representations godoc
// @Summary List a seller's representations
// @Tags Sellers
// @Produce json
// @Param id path string true "Seller ID"
// @Param active query bool false "Only active representations"
// @Success 200 {array} domain.RepresentationDTO
// @Security BearerAuth
// @Router /sellers/{id}/representations [get]
func (h *SellerHandler) Representations(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid seller id")
		return
	}

	activeOnly := r.URL.Query().Get("active") == "true"
	reps, err := h.representationService.ListBySeller(r.Context(), id, activeOnly)
	if err != nil {
		h.logger.Error("failed to list representations", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	dtos := make([]domain.RepresentationDTO, 0, len(reps))
	for i := range reps {
		dtos = append(dtos, mapper.ToRepresentationDTO(&reps[i]))
	}
	respondJSON(w, http.StatusOK, dtos)
}

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

type CompanyHandler struct {
	companyService        *service.CompanyService
	representationService *service.RepresentationService
	logger                *zap.Logger
}

func NewCompanyHandler(
	companyService *service.CompanyService,
	representationService *service.RepresentationService,
	logger *zap.Logger,
) *CompanyHandler {
	return &CompanyHandler{
		companyService:        companyService,
		representationService: representationService,
		logger:                logger,
	}
}

// List godoc
// @Summary List companies
// @Tags Companies
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by name or tax id"
// @Param active query bool false "Only active companies"
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Router /companies [get]
func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	search := r.URL.Query().Get("search")
	activeOnly := r.URL.Query().Get("active") == "true"

	companies, total, err := h.companyService.List(r.Context(), page, pageSize, search, activeOnly)
	if err != nil {
		h.logger.Error("failed to list companies", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToPaginatedResponse(companies, total, page, pageSize))
}

// Create godoc
// @Summary Register a company
// @Tags Companies
// @Accept json
// @Produce json
// @Param request body domain.CreateCompanyRequest true "Company payload"
// @Success 201 {object} domain.Company
// @Failure 400 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /companies [post]
func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	principal := auth.MustFromContext(r.Context())
	company, err := h.companyService.Create(r.Context(), principal, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, company)
}

// Get godoc
// @Summary Get a company
// @Tags Companies
// @Produce json
// @Param id path string true "Company ID"
// @Success 200 {object} domain.Company
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /companies/{id} [get]
func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid company id")
		return
	}

	company, err := h.companyService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, company)
}

// Update godoc
// @Summary Update a company
// @Tags Companies
// @Accept json
// @Produce json
// @Param id path string true "Company ID"
// @Param request body domain.UpdateCompanyRequest true "Update payload"
// @Success 200 {object} domain.Company
// @Security BearerAuth
// @Router /companies/{id} [put]
func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid company id")
		return
	}

	var req domain.UpdateCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	principal := auth.MustFromContext(r.Context())
	company, err := h.companyService.Update(r.Context(), principal, id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, company)
}

// Delete godoc
// @Summary Delete a company
// @Description Delete a company with no representations, products or quotations
// @Tags Companies
// @Param id path string true "Company ID"
// @Success 204
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /companies/{id} [delete]
func (h *CompanyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid company id")
		return
	}

	principal := auth.MustFromContext(r.Context())
	if err := h.companyService.Delete(r.Context(), principal, id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// Representations godoc
// @Summary List a company's representations
// @Tags Companies
// @Produce json
// @Param id path string true "Company ID"
// @Param active query bool false "Only active representations"
// @Success 200 {array} domain.RepresentationDTO
// @Security BearerAuth
// @Router /companies/{id}/representations [get]
func (h *CompanyHandler) Representations(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid company id")
		return
	}

	activeOnly := r.URL.Query().Get("active") == "true"
	reps, err := h.representationService.ListByCompany(r.Context(), id, activeOnly)
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

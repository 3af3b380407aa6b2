package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/opdexport/quotation-api/internal/auth"
	"github.com/opdexport/quotation-api/internal/domain"
	"github.com/opdexport/quotation-api/internal/mapper"
	"github.com/opdexport/quotation-api/internal/repository"
	"github.com/opdexport/quotation-api/internal/service"
	"go.uber.org/zap"
)

type QuotationHandler struct {
	quotationService *service.QuotationService
	logger           *zap.Logger
}

func NewQuotationHandler(quotationService *service.QuotationService, logger *zap.Logger) *QuotationHandler {
	return &QuotationHandler{quotationService: quotationService, logger: logger}
}

// Create godoc
// @Summary Create a quotation
// @Description Create a draft quotation with an allocated document number
// @Tags Quotations
// @Accept json
// @Produce json
// @Param request body domain.CreateQuotationRequest true "Quotation payload"
// @Success 201 {object} domain.QuotationDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 403 {object} domain.ErrorResponse
// @Failure 503 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /quotations [post]
func (h *QuotationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateQuotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	principal := auth.MustFromContext(r.Context())
	quotation, err := h.quotationService.Create(r.Context(), principal, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	h.logger.Info("quotation created",
		zap.String("quotation_id", quotation.ID.String()),
		zap.String("number", quotation.Number),
		zap.String("user_id", principal.UserID.String()),
	)

	respondJSON(w, http.StatusCreated, mapper.ToQuotationDTO(quotation, nil))
}

// List godoc
// @Summary List quotations
// @Description Admins see all quotations, sellers their represented companies' own, clients their own
// @Tags Quotations
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param status query string false "Filter by status" Enums(draft, sent, approved, rejected, expired)
// @Param search query string false "Search by number or notes"
// @Param sortBy query string false "Sort field" Enums(number, status, total, createdAt, updatedAt)
// @Param sortOrder query string false "Sort order" Enums(asc, desc)
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Router /quotations [get]
func (h *QuotationHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	q := r.URL.Query()

	sort := repository.DefaultSortConfig()
	if sortBy := q.Get("sortBy"); sortBy != "" {
		sort.Field = sortBy
	}
	if sortOrder := q.Get("sortOrder"); sortOrder != "" {
		sort.Order = repository.ParseSortOrder(sortOrder)
	}

	principal := auth.MustFromContext(r.Context())
	quotations, total, err := h.quotationService.List(
		r.Context(),
		principal,
		domain.QuotationStatus(q.Get("status")),
		q.Get("search"),
		page, pageSize,
		sort,
	)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	dtos := make([]domain.QuotationDTO, 0, len(quotations))
	for i := range quotations {
		dtos = append(dtos, mapper.ToQuotationDTO(&quotations[i], nil))
	}
	respondJSON(w, http.StatusOK, mapper.ToPaginatedResponse(dtos, total, page, pageSize))
}

// Get godoc
// @Summary Get a quotation
// @Description Get a quotation, optionally with a read-time converted total
// @Tags Quotations
// @Produce json
// @Param id path string true "Quotation ID"
// @Param convertTo query string false "Currency to convert the total into" Enums(USD)
// @Success 200 {object} domain.QuotationDTO
// @Failure 403 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /quotations/{id} [get]
func (h *QuotationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid quotation id")
		return
	}

	principal := auth.MustFromContext(r.Context())
	quotation, rate, err := h.quotationService.GetByID(r.Context(), principal, id, r.URL.Query().Get("convertTo"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToQuotationDTO(quotation, rate))
}

// Send godoc
// @Summary Send a quotation
// @Description Transition a draft quotation to sent
// @Tags Quotations
// @Produce json
// @Param id path string true "Quotation ID"
// @Success 200 {object} domain.QuotationDTO
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /quotations/{id}/send [post]
func (h *QuotationHandler) Send(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, domain.QuotationStatusSent)
}

// Approve godoc
// @Summary Approve a quotation
// @Description Transition a sent quotation to approved
// @Tags Quotations
// @Produce json
// @Param id path string true "Quotation ID"
// @Success 200 {object} domain.QuotationDTO
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /quotations/{id}/approve [post]
func (h *QuotationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, domain.QuotationStatusApproved)
}

// Reject godoc
// @Summary Reject a quotation
// @Description Transition a sent quotation to rejected
// @Tags Quotations
// @Produce json
// @Param id path string true "Quotation ID"
// @Success 200 {object} domain.QuotationDTO
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /quotations/{id}/reject [post]
func (h *QuotationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, domain.QuotationStatusRejected)
}

// Expire godoc
// @Summary Expire a quotation
// @Description Transition a sent quotation to expired
// @Tags Quotations
// @Produce json
// @Param id path string true "Quotation ID"
// @Success 200 {object} domain.QuotationDTO
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /quotations/{id}/expire [post]
func (h *QuotationHandler) Expire(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, domain.QuotationStatusExpired)
}

func (h *QuotationHandler) transition(w http.ResponseWriter, r *http.Request, target domain.QuotationStatus) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid quotation id")
		return
	}

	principal := auth.MustFromContext(r.Context())
	quotation, err := h.quotationService.Transition(r.Context(), principal, id, target)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	h.logger.Info("quotation status changed",
		zap.String("quotation_id", quotation.ID.String()),
		zap.String("status", string(target)),
		zap.String("user_id", principal.UserID.String()),
	)

	respondJSON(w, http.StatusOK, mapper.ToQuotationDTO(quotation, nil))
}

// Delete godoc
// @Summary Delete a quotation
// @Description Delete a draft quotation
// @Tags Quotations
// @Param id path string true "Quotation ID"
// @Success 204
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /quotations/{id} [delete]
func (h *QuotationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid quotation id")
		return
	}

	principal := auth.MustFromContext(r.Context())
	if err := h.quotationService.Delete(r.Context(), principal, id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// Stats godoc
// @Summary Quotation counts by status
// @Tags Quotations
// @Produce json
// @Success 200 {object} map[string]int64
// @Security BearerAuth
// @Router /quotations/stats [get]
func (h *QuotationHandler) Stats(w http.ResponseWriter, r *http.Request) {
	principal := auth.MustFromContext(r.Context())
	counts, err := h.quotationService.StatusCounts(r.Context(), principal)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	out := make(map[string]int64, len(counts))
	for status, count := range counts {
		out[string(status)] = count
	}
	respondJSON(w, http.StatusOK, out)
}

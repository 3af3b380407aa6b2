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

type RepresentationHandler struct {
	representationService *service.RepresentationService
	logger                *zap.Logger
}

func NewRepresentationHandler(representationService *service.RepresentationService, logger *zap.Logger) *RepresentationHandler {
	return &RepresentationHandler{representationService: representationService, logger: logger}
}

// Request godoc
// @Summary Request to represent a company
// @Description Sellers ask for representation; a deactivated pair is reactivated directly
// @Tags Representations
// @Accept json
// @Produce json
// @Param request body domain.CreateRepresentationRequestRequest true "Request payload"
// @Success 201 {object} domain.RepresentationRequestDTO
// @Success 200 {object} domain.RepresentationDTO
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /representations/requests [post]
func (h *RepresentationHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateRepresentationRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	principal := auth.MustFromContext(r.Context())
	result, err := h.representationService.Request(r.Context(), principal, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if result.Reactivated != nil {
		respondJSON(w, http.StatusOK, mapper.ToRepresentationDTO(result.Reactivated))
		return
	}

	respondJSON(w, http.StatusCreated, mapper.ToRepresentationRequestDTO(result.Request))
}

// ListPending godoc
// @Summary List pending representation requests
// @Tags Representations
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Router /representations/requests [get]
func (h *RepresentationHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	requests, total, err := h.representationService.ListPending(r.Context(), page, pageSize)
	if err != nil {
		h.logger.Error("failed to list pending requests", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	dtos := make([]domain.RepresentationRequestDTO, 0, len(requests))
	for i := range requests {
		dtos = append(dtos, mapper.ToRepresentationRequestDTO(&requests[i]))
	}
	respondJSON(w, http.StatusOK, mapper.ToPaginatedResponse(dtos, total, page, pageSize))
}

// Resolve godoc
// @Summary Approve or reject a representation request
// @Description Atomically resolves a pending request; approval activates the representation
// @Tags Representations
// @Accept json
// @Produce json
// @Param request body domain.ResolveRepresentationRequestRequest true "Decision payload"
// @Success 200 {object} domain.RepresentationRequestDTO
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /representations/requests/resolve [post]
func (h *RepresentationHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req domain.ResolveRepresentationRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	principal := auth.MustFromContext(r.Context())
	resolved, err := h.representationService.Resolve(r.Context(), principal, req.RequestID, req.Decision)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	h.logger.Info("representation request resolved",
		zap.String("request_id", req.RequestID.String()),
		zap.String("decision", string(req.Decision)),
		zap.String("resolved_by", principal.UserID.String()),
	)

	respondJSON(w, http.StatusOK, mapper.ToRepresentationRequestDTO(resolved))
}

// Toggle godoc
// @Summary Activate or deactivate a representation
// @Tags Representations
// @Accept json
// @Produce json
// @Param id path string true "Representation ID"
// @Param request body domain.ToggleRepresentationRequest true "Active flag"
// @Success 200 {object} domain.RepresentationDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /representations/{id}/active [patch]
func (h *RepresentationHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid representation id")
		return
	}

	var req domain.ToggleRepresentationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	principal := auth.MustFromContext(r.Context())
	rep, err := h.representationService.Toggle(r.Context(), principal, id, req.Active)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToRepresentationDTO(rep))
}

// MyRequests godoc
// @Summary List the caller's representation requests
// @Tags Representations
// @Produce json
// @Success 200 {array} domain.RepresentationRequestDTO
// @Failure 403 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /representations/requests/mine [get]
func (h *RepresentationHandler) MyRequests(w http.ResponseWriter, r *http.Request) {
	principal := auth.MustFromContext(r.Context())
	sellerID, ok := principal.EffectiveSellerID(nil)
	if !ok {
		respondServiceError(w, service.ErrForbidden)
		return
	}

	requests, err := h.representationService.ListRequestsBySeller(r.Context(), sellerID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	dtos := make([]domain.RepresentationRequestDTO, 0, len(requests))
	for i := range requests {
		dtos = append(dtos, mapper.ToRepresentationRequestDTO(&requests[i]))
	}
	respondJSON(w, http.StatusOK, dtos)
}

// Mine godoc
// @Summary List the caller's representations
// @Tags Representations
// @Produce json
// @Param active query bool false "Only active representations"
// @Success 200 {array} domain.RepresentationDTO
// @Failure 403 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /representations/mine [get]
func (h *RepresentationHandler) Mine(w http.ResponseWriter, r *http.Request) {
	principal := auth.MustFromContext(r.Context())
	sellerID, ok := principal.EffectiveSellerID(nil)
	if !ok {
		respondServiceError(w, service.ErrForbidden)
		return
	}

	activeOnly := r.URL.Query().Get("active") == "true"
	reps, err := h.representationService.ListBySeller(r.Context(), sellerID, activeOnly)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	dtos := make([]domain.RepresentationDTO, 0, len(reps))
	for i := range reps {
		dtos = append(dtos, mapper.ToRepresentationDTO(&reps[i]))
	}
	respondJSON(w, http.StatusOK, dtos)
}

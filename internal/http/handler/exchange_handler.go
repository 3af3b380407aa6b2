package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/opdexport/quotation-api/internal/auth"
	"github.com/opdexport/quotation-api/internal/domain"
	"github.com/opdexport/quotation-api/internal/service"
	"go.uber.org/zap"
)

type ExchangeHandler struct {
	exchangeService *service.ExchangeService
	logger          *zap.Logger
}

func NewExchangeHandler(exchangeService *service.ExchangeService, logger *zap.Logger) *ExchangeHandler {
	return &ExchangeHandler{exchangeService: exchangeService, logger: logger}
}

// Rate godoc
// @Summary Convert an amount between BRL and USD
// @Description Resolves the effective exchange rate and converts the given amount
// @Tags Exchange
// @Produce json
// @Param from query string false "Source currency" default(BRL)
// @Param to query string false "Target currency" default(USD)
// @Param amount query number false "Amount to convert" default(1)
// @Param customRate query number false "Per-request rate override"
// @Success 200 {object} domain.RateQueryResponse
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /exchange/rate [get]
func (h *ExchangeHandler) Rate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	amount := 1.0
	if raw := q.Get("amount"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid amount")
			return
		}
		amount = parsed
	}

	var customRate *float64
	if raw := q.Get("customRate"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			respondWithError(w, http.StatusBadRequest, "invalid customRate")
			return
		}
		customRate = &parsed
	}

	resp, err := h.exchangeService.Query(r.Context(), q.Get("from"), q.Get("to"), amount, customRate)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Refresh godoc
// @Summary Force a rate refresh
// @Description Bypasses the cache and re-queries the providers
// @Tags Exchange
// @Produce json
// @Success 200 {object} domain.RateQueryResponse
// @Failure 503 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /exchange/rate/refresh [post]
func (h *ExchangeHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	resp, err := h.exchangeService.Refresh(r.Context())
	if err != nil {
		h.logger.Warn("rate refresh failed", zap.Error(err))
		respondWithError(w, http.StatusServiceUnavailable, "no exchange rate provider available")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// GetConfig godoc
// @Summary Get the exchange rate configuration
// @Tags Exchange
// @Produce json
// @Success 200 {object} domain.ExchangeRateConfig
// @Failure 403 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /exchange/config [get]
func (h *ExchangeHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	principal := auth.MustFromContext(r.Context())
	cfg, err := h.exchangeService.GetConfig(r.Context(), principal)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cfg)
}

// UpdateConfig godoc
// @Summary Update the exchange rate configuration
// @Description Set or clear the fixed administrative rate
// @Tags Exchange
// @Accept json
// @Produce json
// @Param request body domain.UpdateExchangeConfigRequest true "Config payload"
// @Success 200 {object} domain.ExchangeRateConfig
// @Failure 400 {object} domain.ErrorResponse
// @Failure 403 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /exchange/config [put]
func (h *ExchangeHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateExchangeConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	principal := auth.MustFromContext(r.Context())
	cfg, err := h.exchangeService.UpdateConfig(r.Context(), principal, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	h.logger.Info("exchange config updated",
		zap.Bool("use_fixed_rate", cfg.UseFixedRate),
		zap.String("user_id", principal.UserID.String()),
	)

	respondJSON(w, http.StatusOK, cfg)
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/opdexport/quotation-api/internal/auth"
	"github.com/opdexport/quotation-api/internal/domain"
	"github.com/opdexport/quotation-api/internal/exchange"
	"github.com/opdexport/quotation-api/internal/repository"
	"go.uber.org/zap"
)

// ExchangeService exposes the rate resolution chain to the API surface and
// manages the persisted admin rate override.
type ExchangeService struct {
	resolver    *exchange.Resolver
	settingRepo *repository.SettingRepository
	logger      *zap.Logger
}

// NewExchangeService creates a new ExchangeService
func NewExchangeService(
	resolver *exchange.Resolver,
	settingRepo *repository.SettingRepository,
	logger *zap.Logger,
) *ExchangeService {
	return &ExchangeService{
		resolver:    resolver,
		settingRepo: settingRepo,
		logger:      logger,
	}
}

// Query resolves the effective rate and converts an amount between BRL and
// USD. A positive customRate short-circuits the whole chain for this request
// only and is never persisted.
func (s *ExchangeService) Query(ctx context.Context, from, to string, amount float64, customRate *float64) (*domain.RateQueryResponse, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == "" {
		from = "BRL"
	}
	if to == "" {
		to = "USD"
	}

	if (from != "BRL" && from != "USD") || (to != "BRL" && to != "USD") {
		return nil, fmt.Errorf("%w: unsupported currency pair %s/%s", ErrInvalidInput, from, to)
	}
	if amount < 0 {
		return nil, fmt.Errorf("%w: negative amount", ErrInvalidInput)
	}

	var rate exchange.Rate
	if customRate != nil && *customRate > 0 {
		rate = exchange.Rate{Value: *customRate, Source: exchange.SourceRequestOverride}
	} else {
		rate = s.resolver.Resolve(ctx)
	}

	var converted float64
	switch {
	case from == to:
		converted = amount
	case from == "BRL" && to == "USD":
		converted = exchange.ToUSD(amount, rate.Value)
	default:
		converted = exchange.ToLocal(amount, rate.Value)
	}

	return &domain.RateQueryResponse{
		ConvertedAmount: converted,
		ExchangeRate:    rate.Value,
		Source:          string(rate.Source),
		IsCustom:        rate.Source == exchange.SourceCustom || rate.Source == exchange.SourceRequestOverride,
	}, nil
}

// Refresh forces a primary provider fetch, repopulating the cache
func (s *ExchangeService) Refresh(ctx context.Context) (*domain.RateQueryResponse, error) {
	rate, err := s.resolver.Refresh(ctx)
	if err != nil {
		return nil, fmt.Errorf("rate refresh failed: %w", err)
	}

	s.logger.Info("rate cache refreshed", zap.Float64("rate", rate.Value))

	return &domain.RateQueryResponse{
		ConvertedAmount: 0,
		ExchangeRate:    rate.Value,
		Source:          string(rate.Source),
		IsCustom:        false,
	}, nil
}

// GetConfig returns the persisted admin rate override
func (s *ExchangeService) GetConfig(ctx context.Context, principal *auth.Principal) (*domain.ExchangeRateConfig, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.settingRepo.GetExchangeConfig(ctx)
}

// UpdateConfig persists the admin rate override. Enabling the override
// requires a positive rate.
func (s *ExchangeService) UpdateConfig(ctx context.Context, principal *auth.Principal, in *domain.UpdateExchangeConfigRequest) (*domain.ExchangeRateConfig, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}

	if in.UseFixedRate && (in.FixedRate == nil || *in.FixedRate <= 0) {
		return nil, fmt.Errorf("%w: fixed rate must be positive when enabled", ErrInvalidInput)
	}

	cfg := &domain.ExchangeRateConfig{
		FixedRate:    in.FixedRate,
		UseFixedRate: in.UseFixedRate,
		LastUpdated:  time.Now().UTC(),
	}

	if err := s.settingRepo.SaveExchangeConfig(ctx, cfg); err != nil {
		return nil, err
	}

	s.logger.Info("exchange rate config updated",
		zap.Bool("use_fixed_rate", cfg.UseFixedRate),
		zap.String("updated_by", principal.UserID.String()))

	return cfg, nil
}

package exchange

import (
	"context"
	"math"
	"time"

	"github.com/opdexport/quotation-api/internal/domain"
	"go.uber.org/zap"
)

// RateSource identifies which step of the resolution chain produced a rate
type RateSource string

const (
	SourceCustom          RateSource = "custom"
	SourceCache           RateSource = "cache"
	SourcePrimary         RateSource = "provider_primary"
	SourceFallback        RateSource = "provider_fallback"
	SourceDefault         RateSource = "default"
	SourceRequestOverride RateSource = "request_override"
)

// Rate is a resolved exchange rate with its provenance
type Rate struct {
	Value  float64
	Source RateSource
}

// ConfigStore reads the persisted admin rate override
type ConfigStore interface {
	GetExchangeConfig(ctx context.Context) (*domain.ExchangeRateConfig, error)
}

// Resolver resolves the effective BRL-per-USD rate through a fixed chain:
// admin override, cache, primary provider, fallback provider, static
// default. Resolution never fails and never yields a non-positive rate.
type Resolver struct {
	configStore ConfigStore
	cache       *RateCache
	primary     Provider
	fallback    Provider
	defaultRate float64
	logger      *zap.Logger
}

// NewResolver creates a rate resolver
func NewResolver(
	configStore ConfigStore,
	cache *RateCache,
	primary Provider,
	fallback Provider,
	defaultRate float64,
	logger *zap.Logger,
) *Resolver {
	if defaultRate <= 0 {
		defaultRate = 5.42
	}
	return &Resolver{
		configStore: configStore,
		cache:       cache,
		primary:     primary,
		fallback:    fallback,
		defaultRate: defaultRate,
		logger:      logger,
	}
}

// Resolve walks the resolution chain and returns the effective rate.
// Provider failures are logged and absorbed; callers always get a usable rate.
func (r *Resolver) Resolve(ctx context.Context) Rate {
	if r.configStore != nil {
		cfg, err := r.configStore.GetExchangeConfig(ctx)
		if err != nil {
			r.logger.Warn("failed to load exchange rate config, continuing down the chain",
				zap.Error(err),
			)
		} else if cfg != nil && cfg.UseFixedRate && cfg.FixedRate != nil && *cfg.FixedRate > 0 {
			return Rate{Value: *cfg.FixedRate, Source: SourceCustom}
		}
	}

	if rate, ok := r.cache.Get(); ok {
		return Rate{Value: rate, Source: SourceCache}
	}

	if rate, err := r.primary.FetchRate(ctx); err == nil {
		r.cache.Set(rate)
		return Rate{Value: rate, Source: SourcePrimary}
	} else {
		r.logger.Warn("primary rate provider failed",
			zap.String("provider", r.primary.Name()),
			zap.Error(err),
		)
	}

	// Fallback successes are intentionally not cached: the fallback feed
	// updates daily and caching it would mask primary recovery.
	if rate, err := r.fallback.FetchRate(ctx); err == nil {
		return Rate{Value: rate, Source: SourceFallback}
	} else {
		r.logger.Warn("fallback rate provider failed",
			zap.String("provider", r.fallback.Name()),
			zap.Error(err),
		)
	}

	r.logger.Warn("all rate sources failed, using static default",
		zap.Float64("default_rate", r.defaultRate),
	)
	return Rate{Value: r.defaultRate, Source: SourceDefault}
}

// Refresh forces a primary provider fetch and repopulates the cache,
// bypassing both the admin override and any cached value.
func (r *Resolver) Refresh(ctx context.Context) (Rate, error) {
	rate, err := r.primary.FetchRate(ctx)
	if err != nil {
		return Rate{}, err
	}
	r.cache.Set(rate)
	return Rate{Value: rate, Source: SourcePrimary}, nil
}

// Warm fetches the primary rate in the background so reads rarely block on
// a provider call. Failures are logged and ignored.
func (r *Resolver) Warm(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := r.Refresh(ctx); err != nil {
		r.logger.Debug("rate cache warm failed", zap.Error(err))
	}
}

// ToUSD converts a local-currency amount using the rate, rounding to two
// decimals at the boundary only
func ToUSD(localAmount, rate float64) float64 {
	return round2(localAmount / rate)
}

// ToLocal converts a USD amount using the rate, rounding to two decimals
// at the boundary only
func ToLocal(usdAmount, rate float64) float64 {
	return round2(usdAmount * rate)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

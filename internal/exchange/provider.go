package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

var (
	ErrProviderUnavailable = errors.New("rate provider unavailable")
	ErrProviderBadPayload  = errors.New("rate provider returned unusable payload")
)

// Provider fetches the current BRL-per-USD rate from an external source.
// Implementations must bound each call with the request context.
type Provider interface {
	Name() string
	FetchRate(ctx context.Context) (float64, error)
}

// AwesomeAPIProvider queries the AwesomeAPI currency endpoint.
// Payload shape: {"USDBRL": {"bid": "5.4169", ...}}
type AwesomeAPIProvider struct {
	url    string
	client *http.Client
}

// NewAwesomeAPIProvider creates the primary rate provider
func NewAwesomeAPIProvider(url string, timeout time.Duration) *AwesomeAPIProvider {
	return &AwesomeAPIProvider{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Name identifies the provider in logs and responses
func (p *AwesomeAPIProvider) Name() string { return "awesomeapi" }

// FetchRate fetches the current USD-BRL bid price
func (p *AwesomeAPIProvider) FetchRate(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	var payload map[string]struct {
		Bid string `json:"bid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrProviderBadPayload, err)
	}

	pair, ok := payload["USDBRL"]
	if !ok {
		return 0, fmt.Errorf("%w: missing USDBRL pair", ErrProviderBadPayload)
	}

	rate, err := strconv.ParseFloat(pair.Bid, 64)
	if err != nil || rate <= 0 {
		return 0, fmt.Errorf("%w: bid %q", ErrProviderBadPayload, pair.Bid)
	}

	return rate, nil
}

// OpenERAPIProvider queries the open.er-api.com latest-rates endpoint.
// Payload shape: {"result": "success", "rates": {"BRL": 5.41, ...}}
type OpenERAPIProvider struct {
	url    string
	client *http.Client
}

// NewOpenERAPIProvider creates the fallback rate provider
func NewOpenERAPIProvider(url string, timeout time.Duration) *OpenERAPIProvider {
	return &OpenERAPIProvider{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Name identifies the provider in logs and responses
func (p *OpenERAPIProvider) Name() string { return "open-er-api" }

// FetchRate fetches the current USD to BRL rate
func (p *OpenERAPIProvider) FetchRate(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	var payload struct {
		Result string             `json:"result"`
		Rates  map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrProviderBadPayload, err)
	}

	if payload.Result != "success" {
		return 0, fmt.Errorf("%w: result %q", ErrProviderBadPayload, payload.Result)
	}

	rate, ok := payload.Rates["BRL"]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("%w: missing BRL rate", ErrProviderBadPayload)
	}

	return rate, nil
}

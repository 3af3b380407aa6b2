package exchange_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/opdexport/quotation-api/internal/exchange"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonServer(body string, status int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func TestAwesomeAPIProvider_FetchRate(t *testing.T) {
	srv := jsonServer(`{"USDBRL":{"code":"USD","codein":"BRL","bid":"5.4169","ask":"5.4175"}}`, http.StatusOK)
	defer srv.Close()

	provider := exchange.NewAwesomeAPIProvider(srv.URL, 2*time.Second)
	rate, err := provider.FetchRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5.4169, rate)
	assert.Equal(t, "awesomeapi", provider.Name())
}

func TestAwesomeAPIProvider_BadPayload(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		errIs  error
	}{
		{
			name:   "non-200 status",
			body:   `{}`,
			status: http.StatusBadGateway,
			errIs:  exchange.ErrProviderUnavailable,
		},
		{
			name:   "missing pair",
			body:   `{"EURBRL":{"bid":"6.10"}}`,
			status: http.StatusOK,
			errIs:  exchange.ErrProviderBadPayload,
		},
		{
			name:   "non-numeric bid",
			body:   `{"USDBRL":{"bid":"n/a"}}`,
			status: http.StatusOK,
			errIs:  exchange.ErrProviderBadPayload,
		},
		{
			name:   "zero bid",
			body:   `{"USDBRL":{"bid":"0"}}`,
			status: http.StatusOK,
			errIs:  exchange.ErrProviderBadPayload,
		},
		{
			name:   "invalid json",
			body:   `not json`,
			status: http.StatusOK,
			errIs:  exchange.ErrProviderBadPayload,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := jsonServer(tc.body, tc.status)
			defer srv.Close()

			provider := exchange.NewAwesomeAPIProvider(srv.URL, 2*time.Second)
			_, err := provider.FetchRate(context.Background())
			assert.ErrorIs(t, err, tc.errIs)
		})
	}
}

func TestOpenERAPIProvider_FetchRate(t *testing.T) {
	srv := jsonServer(`{"result":"success","rates":{"BRL":5.3012,"EUR":0.92}}`, http.StatusOK)
	defer srv.Close()

	provider := exchange.NewOpenERAPIProvider(srv.URL, 2*time.Second)
	rate, err := provider.FetchRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5.3012, rate)
	assert.Equal(t, "open-er-api", provider.Name())
}

func TestOpenERAPIProvider_BadPayload(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		errIs  error
	}{
		{
			name:   "non-200 status",
			body:   `{}`,
			status: http.StatusServiceUnavailable,
			errIs:  exchange.ErrProviderUnavailable,
		},
		{
			name:   "error result",
			body:   `{"result":"error","error-type":"invalid-key"}`,
			status: http.StatusOK,
			errIs:  exchange.ErrProviderBadPayload,
		},
		{
			name:   "missing BRL rate",
			body:   `{"result":"success","rates":{"EUR":0.92}}`,
			status: http.StatusOK,
			errIs:  exchange.ErrProviderBadPayload,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := jsonServer(tc.body, tc.status)
			defer srv.Close()

			provider := exchange.NewOpenERAPIProvider(srv.URL, 2*time.Second)
			_, err := provider.FetchRate(context.Background())
			assert.ErrorIs(t, err, tc.errIs)
		})
	}
}

func TestProvider_ContextCancellation(t *testing.T) {
	blocked := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	defer srv.Close()
	defer close(blocked)

	provider := exchange.NewAwesomeAPIProvider(srv.URL, 10*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := provider.FetchRate(ctx)
	assert.ErrorIs(t, err, exchange.ErrProviderUnavailable)
}

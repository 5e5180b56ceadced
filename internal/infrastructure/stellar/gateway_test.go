package stellar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/halo/backend/internal/domain/circle"
	"github.com/halo/backend/internal/domain/shared"
	"github.com/halo/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T, handler http.Handler) *Gateway {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewGateway(config.StellarConfig{
		GatewayURL: server.URL,
		Timeout:    2 * time.Second,
	})
}

func TestGateway_IsVerified(t *testing.T) {
	userID := uuid.New()

	gateway := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/identity/"+userID.String(), r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"verified":     true,
			"unique_token": "passport-42",
		})
	}))

	verified, err := gateway.IsVerified(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, verified)

	token, err := gateway.UniqueToken(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "passport-42", token)
}

func TestGateway_BalanceOf(t *testing.T) {
	tests := []struct {
		name    string
		balance string
		want    int64
	}{
		{name: "whole units", balance: "125", want: 1_250_000_000},
		{name: "fractional units", balance: "12.5", want: 125_000_000},
		{name: "sub-stroop precision truncated", balance: "0.00000019", want: 1},
		{name: "zero", balance: "0", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/wallets/wallet-1/balances/USDC", r.URL.Path)
				json.NewEncoder(w).Encode(map[string]any{"balance": tt.balance, "asset_id": "USDC"})
			}))

			got, err := gateway.BalanceOf(context.Background(), "wallet-1", "USDC")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("malformed balance is an error", func(t *testing.T) {
		gateway := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"balance": "not-a-number"})
		}))

		_, err := gateway.BalanceOf(context.Background(), "wallet-1", "USDC")
		assert.Error(t, err)
	})
}

func TestGateway_BuildTransfer(t *testing.T) {
	circleID := uuid.New()
	recipientID := uuid.New()

	t.Run("returns handle from gateway", func(t *testing.T) {
		gateway := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1/transfers", r.URL.Path)

			var req map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, circleID.String(), req["circle_id"])
			assert.Equal(t, recipientID.String(), req["recipient_user_id"])
			assert.Equal(t, "USDC", req["asset_id"])
			assert.Equal(t, float64(1_500_000_000), req["amount"])

			json.NewEncoder(w).Encode(map[string]any{"xdr": "AAAA...", "hash": "deadbeef"})
		}))

		handle, err := gateway.BuildTransfer(context.Background(), circleID, recipientID, "USDC", 1_500_000_000)
		require.NoError(t, err)
		assert.Equal(t, "AAAA...", handle.XDR)
		assert.Equal(t, "deadbeef", handle.Hash)
	})

	t.Run("missing hash is an error", func(t *testing.T) {
		gateway := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"xdr": "AAAA..."})
		}))

		_, err := gateway.BuildTransfer(context.Background(), circleID, recipientID, "USDC", 1)
		assert.Error(t, err)
	})
}

func TestGateway_ErrorMapping(t *testing.T) {
	t.Run("404 maps to ErrNotFound", func(t *testing.T) {
		gateway := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		_, err := gateway.IsVerified(context.Background(), uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("identity conflict maps to ErrDuplicateIdentity", func(t *testing.T) {
		gateway := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]any{"error": "token bound to another user"})
		}))

		_, err := gateway.UniqueToken(context.Background(), uuid.New())
		assert.ErrorIs(t, err, circle.ErrDuplicateIdentity)
	})

	t.Run("5xx maps to ErrGatewayUnavailable", func(t *testing.T) {
		gateway := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))

		_, err := gateway.BalanceOf(context.Background(), "wallet-1", "USDC")
		assert.ErrorIs(t, err, shared.ErrGatewayUnavailable)
	})

	t.Run("connection failure maps to ErrGatewayUnavailable", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		server.Close()

		gateway := NewGateway(config.StellarConfig{
			GatewayURL: server.URL,
			Timeout:    250 * time.Millisecond,
		})

		_, err := gateway.IsVerified(context.Background(), uuid.New())
		assert.ErrorIs(t, err, shared.ErrGatewayUnavailable)
	})

	t.Run("4xx surfaces the gateway error message", func(t *testing.T) {
		gateway := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(map[string]any{"error": "asset not supported"})
		}))

		_, err := gateway.BalanceOf(context.Background(), "wallet-1", "DOGE")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "asset not supported")
	})
}

package stellar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/halo/backend/internal/domain/circle"
	"github.com/halo/backend/internal/domain/shared"
	"github.com/shopspring/decimal"

	"github.com/halo/backend/internal/infrastructure/config"
)

const (
	identityPath = "/v1/identity/%s"
	balancePath  = "/v1/wallets/%s/balances/%s"
	transferPath = "/v1/transfers"
)

// stroopsPerUnit converts gateway decimal amounts to stroops (7 decimals)
var stroopsPerUnit = decimal.New(1, 7)

// Gateway is the HTTP client for the Stellar contract gateway, the
// service that fronts the Soroban contracts. It implements the identity,
// custody and transfer ports the circle domain depends on.
type Gateway struct {
	baseURL    string
	httpClient *http.Client
}

var (
	_ circle.IdentityGate    = (*Gateway)(nil)
	_ circle.AssetCustody    = (*Gateway)(nil)
	_ circle.TransferBuilder = (*Gateway)(nil)
)

// NewGateway creates a gateway client from configuration
func NewGateway(cfg config.StellarConfig) *Gateway {
	return &Gateway{
		baseURL: strings.TrimRight(cfg.GatewayURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type identityResponse struct {
	Verified    bool   `json:"verified"`
	UniqueToken string `json:"unique_token"`
}

type balanceResponse struct {
	Balance string `json:"balance"`
	AssetID string `json:"asset_id"`
}

type transferRequest struct {
	CircleID        string `json:"circle_id"`
	RecipientUserID string `json:"recipient_user_id"`
	AssetID         string `json:"asset_id"`
	Amount          int64  `json:"amount"`
}

type transferResponse struct {
	XDR  string `json:"xdr"`
	Hash string `json:"hash"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// IsVerified reports whether the user's identity has been verified
func (g *Gateway) IsVerified(ctx context.Context, userID uuid.UUID) (bool, error) {
	var resp identityResponse
	if err := g.get(ctx, fmt.Sprintf(identityPath, userID), &resp); err != nil {
		return false, err
	}
	return resp.Verified, nil
}

// UniqueToken returns the user's sybil-resistance token. A conflict from the
// gateway means the token is already bound to another user, which is fatal
// for the caller.
func (g *Gateway) UniqueToken(ctx context.Context, userID uuid.UUID) (string, error) {
	var resp identityResponse
	if err := g.get(ctx, fmt.Sprintf(identityPath, userID), &resp); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return "", circle.ErrDuplicateIdentity
		}
		return "", err
	}
	return resp.UniqueToken, nil
}

// BalanceOf returns the wallet's balance of the asset in stroops. The
// gateway reports decimal units; anything past 7 decimal places is
// truncated.
func (g *Gateway) BalanceOf(ctx context.Context, walletID, assetID string) (int64, error) {
	var resp balanceResponse
	if err := g.get(ctx, fmt.Sprintf(balancePath, walletID, assetID), &resp); err != nil {
		return 0, err
	}

	balance, err := decimal.NewFromString(resp.Balance)
	if err != nil {
		return 0, fmt.Errorf("stellar: invalid balance %q: %w", resp.Balance, err)
	}
	return balance.Mul(stroopsPerUnit).Truncate(0).IntPart(), nil
}

// BuildTransfer asks the gateway to build an unsigned transfer from the
// circle pool to the recipient wallet
func (g *Gateway) BuildTransfer(ctx context.Context, circleID, recipientUserID uuid.UUID, assetID string, amount int64) (*circle.TransferHandle, error) {
	body, err := json.Marshal(transferRequest{
		CircleID:        circleID.String(),
		RecipientUserID: recipientUserID.String(),
		AssetID:         assetID,
		Amount:          amount,
	})
	if err != nil {
		return nil, fmt.Errorf("stellar: failed to marshal transfer request: %w", err)
	}

	var resp transferResponse
	if err := g.do(ctx, http.MethodPost, transferPath, body, &resp); err != nil {
		return nil, err
	}
	if resp.Hash == "" {
		return nil, fmt.Errorf("stellar: gateway returned transfer without hash")
	}

	return &circle.TransferHandle{XDR: resp.XDR, Hash: resp.Hash}, nil
}

func (g *Gateway) get(ctx context.Context, path string, out any) error {
	return g.do(ctx, http.MethodGet, path, nil, out)
}

func (g *Gateway) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("stellar: failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", shared.ErrGatewayUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return shared.ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		return shared.ErrAlreadyExists
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: gateway returned %d", shared.ErrGatewayUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		var apiErr errorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("stellar: gateway rejected request: %s", apiErr.Error)
		}
		return fmt.Errorf("stellar: gateway returned %d", resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("stellar: failed to parse response: %w", err)
	}
	return nil
}

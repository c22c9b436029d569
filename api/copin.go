package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Athena-GenAI/api-testing/config"
	"github.com/Athena-GenAI/api-testing/models"

	"github.com/ethereum/go-ethereum/common"
)

// protocolEndpoints translates protocol identifiers to the path segment the
// source API expects. Anything not listed falls back to lowercase.
var protocolEndpoints = map[string]string{
	"GMX":         "gmx-arbitrum",
	"GMX_V2":      "gmx-v2",
	"GMXV2":       "gmx-v2",
	"GMX_V2_AVAX": "gmx-v2-avax",
	"GNS":         "gns-polygon",
	"SYNTHETIX":   "synthetix-v3",
	"DYDX":        "dydx",
}

// dydxAddressPrefix marks wallets on the dYdX chain; every other protocol here
// expects an EVM hex address.
const dydxAddressPrefix = "dydx1"

// Client queries the Copin positions API for one (wallet, protocol) pair at a
// time.
type Client struct {
	baseURL    string
	httpClient *http.Client

	pageLimit     int
	pageDelay     time.Duration
	retryAttempts int
	retryBase     time.Duration
	retryFactor   float64
}

// NewClient creates a Copin API client from source configuration.
func NewClient(cfg config.SourceConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.RequestTimeout) * time.Millisecond,
		},
		pageLimit:     cfg.PageLimit,
		pageDelay:     time.Duration(cfg.PageDelayMS) * time.Millisecond,
		retryAttempts: cfg.RetryAttempts,
		retryBase:     time.Duration(cfg.RetryBaseMS) * time.Millisecond,
		retryFactor:   cfg.RetryFactor,
	}
}

// FetchPositions returns every OPEN position for a wallet on a protocol,
// paginating until the source's own total is exhausted. A non-nil error means
// the source could not be reached or answered garbage; whatever pages were
// collected before the failure are still returned. Callers are expected to
// tolerate the error — one flaky venue never aborts a refresh.
func (c *Client) FetchPositions(ctx context.Context, wallet, protocol string) ([]models.Position, error) {
	if !WalletMatchesProtocol(wallet, protocol) {
		// Wrong address family for this venue; the call would only 404.
		return nil, nil
	}

	var out []models.Position
	offset := 0

	for {
		page, err := c.fetchPage(ctx, wallet, protocol, offset)
		if err != nil {
			return out, fmt.Errorf("fetch %s/%s offset=%d: %w", protocol, wallet, offset, err)
		}

		for _, raw := range page.Data {
			pos, ok := normalizePosition(raw, protocol)
			if !ok {
				continue
			}
			out = append(out, pos)
		}

		limit := page.Meta.Limit
		if limit <= 0 {
			limit = c.pageLimit
		}
		offset += limit
		if offset >= page.Meta.Total {
			break
		}

		select {
		case <-time.After(c.pageDelay):
		case <-ctx.Done():
			return out, ctx.Err()
		}
	}

	return out, nil
}

func (c *Client) fetchPage(ctx context.Context, wallet, protocol string, offset int) (*filterResponse, error) {
	body := filterRequest{
		Pagination: pagination{Limit: c.pageLimit, Offset: offset},
		Queries: []filterQuery{
			{FieldName: "status", Value: "OPEN"},
			{FieldName: "account", Value: wallet},
		},
		SortBy:   "openBlockTime",
		SortType: "desc",
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s/position/filter", c.baseURL, EndpointForProtocol(protocol))

	var lastErr error
	for attempt := 0; attempt < c.retryAttempts; attempt++ {
		if attempt > 0 {
			backoff := c.retryBase
			for i := 1; i < attempt; i++ {
				backoff = time.Duration(float64(backoff) * c.retryFactor)
			}
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		resp, err := c.doPage(ctx, url, payload)
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("after %d attempts: %w", c.retryAttempts, lastErr)
}

func (c *Client) doPage(ctx context.Context, url string, payload []byte) (*filterResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
	}

	var page filterResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}

	return &page, nil
}

// normalizePosition converts a raw wire record into a Position with the
// direction resolved exactly once. Records that are not OPEN, or that lack a
// token, are dropped.
func normalizePosition(raw rawPosition, protocol string) (models.Position, bool) {
	if raw.Status != "" && raw.Status != "OPEN" {
		return models.Position{}, false
	}
	if strings.TrimSpace(raw.IndexToken) == "" {
		return models.Position{}, false
	}

	return models.Position{
		Account:       raw.Account,
		Protocol:      protocol,
		IndexToken:    raw.IndexToken,
		Size:          float64(raw.Size),
		Leverage:      float64(raw.Leverage),
		PnL:           float64(raw.PnL),
		IsLong:        resolveDirection(raw),
		OpenBlockTime: raw.OpenBlockTime,
		Status:        "OPEN",
	}, true
}

// resolveDirection derives the single boolean side from the three redundant
// wire fields. Precedence: type, then side, then isLong. When every field is
// absent the record counts as SHORT — an explicit default, not a guess made
// downstream.
func resolveDirection(raw rawPosition) bool {
	switch strings.ToUpper(raw.Type) {
	case "LONG":
		return true
	case "SHORT":
		return false
	}
	switch strings.ToUpper(raw.Side) {
	case "LONG":
		return true
	case "SHORT":
		return false
	}
	if raw.IsLong != nil {
		return *raw.IsLong
	}
	return false
}

// EndpointForProtocol maps a protocol identifier to its API path segment.
func EndpointForProtocol(protocol string) string {
	if mapped, ok := protocolEndpoints[strings.ToUpper(protocol)]; ok {
		return mapped
	}
	return strings.ToLower(protocol)
}

// WalletMatchesProtocol reports whether a wallet's address family matches the
// protocol's chain, so we can skip requests that could never succeed.
func WalletMatchesProtocol(wallet, protocol string) bool {
	isDydxProtocol := strings.HasPrefix(strings.ToUpper(protocol), "DYDX")
	isDydxWallet := strings.HasPrefix(strings.ToLower(wallet), dydxAddressPrefix)

	if isDydxProtocol {
		return isDydxWallet
	}
	return !isDydxWallet && common.IsHexAddress(wallet)
}

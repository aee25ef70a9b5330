package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2/common"

	"futures-testnet-bot/internal/config"
	"futures-testnet-bot/internal/logger"
	"futures-testnet-bot/internal/model"
)

const (
	BaseURL = "https://demo-fapi.binance.com"

	pingEndpoint  = "/fapi/v1/ping"
	timeEndpoint  = "/fapi/v1/time"
	orderEndpoint = "/fapi/v1/order"

	apiKeyHeader = "X-MBX-APIKEY"
	weightHeader = "X-MBX-USED-WEIGHT-1M"

	// Keep at most this much of a response body in logs and errors.
	maxBodyLog = 2000
)

type ClientConfig struct {
	BaseURL string
	APIKey  string
	Signer  *Signer
	Timeout time.Duration
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

type BinanceClient struct {
	apiKey  string
	baseURL string
	signer  *Signer
	client  *http.Client
}

func NewBinanceClient(cfg ClientConfig) (*BinanceClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &config.ConfigurationError{Key: "BINANCE_API_KEY", Reason: "is required"}
	}
	if cfg.Signer == nil {
		return nil, &SigningError{Reason: "signer is required"}
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = BaseURL
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	return &BinanceClient{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		signer:  cfg.Signer,
		client:  client,
	}, nil
}

// Ping checks connectivity to the REST API. The endpoint answers 200 with {}.
func (c *BinanceClient) Ping(ctx context.Context) error {
	var out map[string]any
	if err := c.do(ctx, http.MethodGet, pingEndpoint, "", &out); err != nil {
		return err
	}
	logger.Info("Ping successful", "base_url", c.baseURL)
	return nil
}

// ServerTime returns the exchange clock in epoch milliseconds.
func (c *BinanceClient) ServerTime(ctx context.Context) (int64, error) {
	var out struct {
		ServerTime int64 `json:"serverTime"`
	}
	if err := c.do(ctx, http.MethodGet, timeEndpoint, "", &out); err != nil {
		return 0, err
	}
	return out.ServerTime, nil
}

// PlaceOrder signs params and submits them to POST /fapi/v1/order.
// params must not already contain a signature.
func (c *BinanceClient) PlaceOrder(ctx context.Context, params Params) (*model.OrderResponse, error) {
	if c.signer.wiped {
		return nil, &SigningError{Reason: "client is closed"}
	}
	query, signature := c.signer.SignParams(params)

	var order model.OrderResponse
	if err := c.do(ctx, http.MethodPost, orderEndpoint, query+"&signature="+signature, &order); err != nil {
		return nil, err
	}
	if order.OrderID == 0 && order.Status == "" {
		return nil, &TransportError{Status: http.StatusOK, Err: errors.New("order response has no orderId or status")}
	}
	return &order, nil
}

// Close wipes the API secret. Signed calls fail afterwards; Ping still works.
func (c *BinanceClient) Close() error {
	c.signer.Wipe()
	return nil
}

// do sends rawQuery untouched so the bytes on the wire match the signed ones.
func (c *BinanceClient) do(ctx context.Context, method, endpoint, rawQuery string, out any) error {
	reqURL := c.baseURL + endpoint

	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.URL.RawQuery = rawQuery
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	logger.Debug("REQUEST", "method", method, "url", reqURL, "params", redactSignature(rawQuery))

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return &ConnectivityError{Op: method + " " + endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ConnectivityError{Op: "read " + endpoint, Err: err}
	}

	if weight := resp.Header.Get(weightHeader); weight != "" {
		logger.Debug("Binance API Weight", "used_1m", weight)
	}
	logger.Debug("RESPONSE",
		"method", method,
		"url", reqURL,
		"status", resp.StatusCode,
		"elapsed", time.Since(start),
		"body", truncate(string(body)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, body)
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &TransportError{Status: resp.StatusCode, Body: truncate(string(body)), Err: err}
	}
	return nil
}

func decodeError(status int, body []byte) error {
	var apiErr common.APIError
	if err := json.Unmarshal(body, &apiErr); err != nil || (apiErr.Code == 0 && apiErr.Message == "") {
		logger.Error("Binance API Error", "status", status, "body", truncate(string(body)))
		return &TransportError{Status: status, Body: truncate(string(body)), Err: err}
	}
	logger.Error("Binance API Error", "status", status, "code", apiErr.Code, "msg", apiErr.Message)
	return &ExchangeError{Status: status, API: &apiErr}
}

func redactSignature(rawQuery string) string {
	if i := strings.Index(rawQuery, "signature="); i >= 0 {
		return rawQuery[:i] + "signature=REDACTED"
	}
	return rawQuery
}

func truncate(s string) string {
	if len(s) > maxBodyLog {
		return s[:maxBodyLog]
	}
	return s
}

// Package execution assembles order payloads, selects the signing scheme,
// and drives the bridge to submit orders to the CLOB.
package execution

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/GoPolymarket/polyexec/internal/bridge"
	"github.com/GoPolymarket/polyexec/internal/market"
	"github.com/GoPolymarket/polyexec/internal/model"
	"github.com/GoPolymarket/polyexec/internal/pkg/apperrors"
	"github.com/GoPolymarket/polyexec/internal/pkg/metrics"
	"github.com/shopspring/decimal"
)

// Config is the immutable execution identity. It is copied at construction
// and never mutated; credential changes produce a new Client.
type Config struct {
	Host          string
	ChainID       int64
	SignatureType model.SignatureType
	ProxyWallet   string // funder address, meaningful only for POLY_PROXY
	PrivateKey    string
	Creds         model.APICredentials
}

type Client struct {
	cfg    Config
	bridge bridge.Invoker
	http   *http.Client
	books  *market.Service // optional live book cache
	maxAge time.Duration
}

type Option func(*Client)

// WithMarketCache serves book reads from the websocket cache when the
// cached book is younger than maxAge.
func WithMarketCache(svc *market.Service, maxAge time.Duration) Option {
	return func(c *Client) {
		c.books = svc
		c.maxAge = maxAge
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.http = httpClient
	}
}

func NewClient(cfg Config, invoker bridge.Invoker, opts ...Option) *Client {
	cfg.Host = strings.TrimSuffix(cfg.Host, "/")
	c := &Client{
		cfg:    cfg,
		bridge: invoker,
		http: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithCredentials returns a new Client carrying creds; the receiver is
// untouched.
func (c *Client) WithCredentials(creds model.APICredentials) *Client {
	next := *c
	next.cfg.Creds = creds
	return &next
}

func (c *Client) Config() Config {
	return c.cfg
}

// PostOrder forwards a loosely-shaped order to the bridge with action
// "post_order" and returns the bridge response unchanged. Field validation
// belongs to the external signer, not this layer.
func (c *Client) PostOrder(ctx context.Context, raw map[string]any, orderType string) bridge.Response {
	order := NormalizeOrder(raw)

	// The signing key crosses a trust boundary here, not a network one:
	// the payload travels only over local process pipes and must never be
	// logged or journaled.
	payload := map[string]any{
		"host":          c.cfg.Host,
		"chainId":       c.cfg.ChainID,
		"signatureType": string(c.cfg.SignatureType),
		"privateKey":    c.cfg.PrivateKey,
		"orderType":     orderType,
		"order":         order,
	}
	if c.cfg.SignatureType == model.SignatureProxy {
		payload["funderAddress"] = c.cfg.ProxyWallet
	}

	resp := c.bridge.Invoke(ctx, "post_order", payload)

	side := "unknown"
	if order.Side != nil {
		side = strings.ToUpper(*order.Side)
	}
	status := "ok"
	if !resp.Success {
		status = "error"
	}
	metrics.OrdersTotal.WithLabelValues(status, side).Inc()
	return resp
}

// NormalizeOrder extracts the four order fields, accepting both historical
// spellings of the token identifier. Missing fields stay nil.
func NormalizeOrder(raw map[string]any) model.OrderArgs {
	var args model.OrderArgs
	if raw == nil {
		return args
	}
	if s, ok := asString(raw["side"]); ok {
		args.Side = &s
	}
	if s, ok := asString(raw["tokenID"]); ok {
		args.TokenID = &s
	} else if s, ok := asString(raw["tokenId"]); ok {
		args.TokenID = &s
	}
	if d, ok := asDecimal(raw["amount"]); ok {
		args.Amount = &d
	}
	if d, ok := asDecimal(raw["price"]); ok {
		args.Price = &d
	}
	return args
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func asDecimal(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case float64:
		return decimal.NewFromFloat(x), true
	case string:
		d, err := decimal.NewFromString(x)
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	default:
		return decimal.Decimal{}, false
	}
}

// OrderBook fetches the venue book for a token. A fresh cached book from
// the websocket stream short-circuits the HTTP call; upstream failures are
// surfaced to the caller, there is no safe default for an explicit read.
func (c *Client) OrderBook(ctx context.Context, tokenID string) (*model.BookSnapshot, error) {
	if c.books != nil {
		if book := c.books.GetBook(tokenID); book != nil && book.Age() <= c.maxAge {
			return book.ToSnapshot(), nil
		}
		c.books.Subscribe([]string{tokenID})
	}

	u := fmt.Sprintf("%s/book?token_id=%s", c.cfg.Host, url.QueryEscape(tokenID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.NewUpstream("failed to fetch order book", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, apperrors.NewUpstream(
			fmt.Sprintf("order book request failed: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	var snap model.BookSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, apperrors.NewUpstream("invalid order book response", err)
	}
	return &snap, nil
}

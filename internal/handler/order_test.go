package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GoPolymarket/polyexec/internal/bridge"
	"github.com/GoPolymarket/polyexec/internal/execution"
	"github.com/GoPolymarket/polyexec/internal/middleware"
	"github.com/GoPolymarket/polyexec/internal/model"
	"github.com/GoPolymarket/polyexec/internal/service"
	"github.com/gin-gonic/gin"
)

type cannedInvoker struct {
	resp bridge.Response
}

func (c *cannedInvoker) Invoke(context.Context, string, map[string]any) bridge.Response {
	return c.resp
}

func newTestRouter(t *testing.T, inv bridge.Invoker) (*gin.Engine, *service.JournalService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	journal, err := service.NewJournalService(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("journal init: %v", err)
	}
	t.Cleanup(journal.Close)

	exec := execution.NewClient(execution.Config{
		Host:          "https://clob.example",
		ChainID:       137,
		SignatureType: model.SignatureEOA,
		PrivateKey:    "0xkey",
	}, inv)

	h := NewOrderHandler(exec, journal)

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.POST("/v1/orders", h.PlaceOrder)
	r.GET("/v1/submissions", h.ListSubmissions)
	return r, journal
}

func TestPlaceOrderSuccess(t *testing.T) {
	inv := &cannedInvoker{resp: bridge.Response{
		Success: true,
		Data:    map[string]any{"success": true, "orderID": "0xabc"},
	}}
	r, _ := newTestRouter(t, inv)

	body, _ := json.Marshal(map[string]any{
		"order": map[string]any{"side": "BUY", "tokenID": "1", "amount": 5, "price": 0.4},
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/orders", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json response: %v", err)
	}
	if resp["success"] != true || resp["orderID"] != "0xabc" {
		t.Fatalf("unexpected response: %v", resp)
	}
}

func TestPlaceOrderBridgeFailureStillHTTP200(t *testing.T) {
	inv := &cannedInvoker{resp: bridge.Failure("CLOB bridge failed")}
	r, _ := newTestRouter(t, inv)

	body, _ := json.Marshal(map[string]any{"order": map[string]any{"side": "BUY"}})
	req := httptest.NewRequest(http.MethodPost, "/v1/orders", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("bridge failures are data, expected 200, got %d", w.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json response: %v", err)
	}
	if resp["success"] != false || resp["error"] != "CLOB bridge failed" {
		t.Fatalf("unexpected response: %v", resp)
	}
}

func TestPlaceOrderMissingOrderRejected(t *testing.T) {
	r, _ := newTestRouter(t, &cannedInvoker{})

	req := httptest.NewRequest(http.MethodPost, "/v1/orders", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestPlaceOrderJournalsOutcome(t *testing.T) {
	inv := &cannedInvoker{resp: bridge.Response{Success: true, Data: map[string]any{"success": true}}}
	r, journal := newTestRouter(t, inv)

	body, _ := json.Marshal(map[string]any{
		"order":      map[string]any{"side": "SELL", "tokenID": "77"},
		"order_type": "FOK",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/orders", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	entries, err := journal.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("journal list: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 journal entry, got %d", len(entries))
	}
	e := entries[0]
	if e.TokenID != "77" || e.Side != "SELL" || e.OrderType != "FOK" || !e.Success {
		t.Fatalf("unexpected journal entry: %+v", e)
	}
}

func TestListSubmissions(t *testing.T) {
	r, journal := newTestRouter(t, &cannedInvoker{})
	journal.Record(&model.Submission{ID: "s1", TokenID: "1", Success: true})

	req := httptest.NewRequest(http.MethodGet, "/v1/submissions?limit=5", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Submissions []model.Submission `json:"submissions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Submissions) != 1 || resp.Submissions[0].ID != "s1" {
		t.Fatalf("unexpected submissions: %+v", resp.Submissions)
	}
}

func TestGetAccount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	exec := execution.NewClient(execution.Config{
		SignatureType: model.SignatureProxy,
		ProxyWallet:   "0xFunder",
		Creds:         model.APICredentials{Key: "k"},
	}, &cannedInvoker{})
	h := NewAccountHandler(exec, "0xSigner")

	r := gin.New()
	r.GET("/v1/account", h.GetAccount)

	req := httptest.NewRequest(http.MethodGet, "/v1/account", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp model.AccountResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.SignatureType != "POLY_PROXY" || resp.FunderAddress != "0xFunder" || !resp.HasCredentials {
		t.Fatalf("unexpected account response: %+v", resp)
	}
	if resp.Address != "0xSigner" {
		t.Fatalf("unexpected address: %s", resp.Address)
	}
}

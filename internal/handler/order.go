package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/GoPolymarket/polyexec/internal/execution"
	"github.com/GoPolymarket/polyexec/internal/model"
	"github.com/GoPolymarket/polyexec/internal/pkg/apperrors"
	"github.com/GoPolymarket/polyexec/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderHandler struct {
	exec    *execution.Client
	journal *service.JournalService
}

func NewOrderHandler(exec *execution.Client, journal *service.JournalService) *OrderHandler {
	return &OrderHandler{exec: exec, journal: journal}
}

// PlaceOrder submits an order through the bridge. The bridge outcome is
// returned with HTTP 200 whether or not the submission succeeded; the body
// says which, so callers branch on `success` and not on status codes.
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req model.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	orderType := req.OrderType
	if orderType == "" {
		orderType = "GTC"
	}

	start := time.Now()
	resp := h.exec.PostOrder(c.Request.Context(), req.Order, orderType)

	if h.journal != nil {
		order := execution.NormalizeOrder(req.Order)
		entry := &model.Submission{
			ID:            uuid.NewString(),
			OrderType:     orderType,
			SignatureType: string(h.exec.Config().SignatureType),
			Success:       resp.Success,
			Error:         resp.Err,
			LatencyMs:     time.Since(start).Milliseconds(),
			CreatedAt:     time.Now(),
		}
		if order.TokenID != nil {
			entry.TokenID = *order.TokenID
		}
		if order.Side != nil {
			entry.Side = *order.Side
		}
		h.journal.Record(entry)
	}

	c.JSON(http.StatusOK, resp)
}

// GetBook reads the venue order book for a token.
func (h *OrderHandler) GetBook(c *gin.Context) {
	tokenID := c.Query("token_id")
	if tokenID == "" {
		tokenID = c.Param("token_id")
	}
	if tokenID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token_id is required"})
		return
	}

	snap, err := h.exec.OrderBook(c.Request.Context(), tokenID)
	if err != nil {
		c.Error(apperrors.Wrap(err))
		return
	}
	c.JSON(http.StatusOK, snap)
}

// ListSubmissions returns the most recent journaled submissions.
func (h *OrderHandler) ListSubmissions(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	entries, err := h.journal.List(c.Request.Context(), limit)
	if err != nil {
		c.Error(apperrors.Wrap(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": entries})
}

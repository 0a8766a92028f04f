package handler

import (
	"net/http"

	"github.com/GoPolymarket/polyexec/internal/execution"
	"github.com/GoPolymarket/polyexec/internal/model"
	"github.com/gin-gonic/gin"
)

type AccountHandler struct {
	exec    *execution.Client
	address string
}

func NewAccountHandler(exec *execution.Client, address string) *AccountHandler {
	return &AccountHandler{exec: exec, address: address}
}

// GetAccount reports the resolved execution identity: which signing scheme
// was selected, the funder if any, and whether API credentials are loaded.
// Secrets themselves are never returned.
func (h *AccountHandler) GetAccount(c *gin.Context) {
	cfg := h.exec.Config()
	c.JSON(http.StatusOK, model.AccountResponse{
		Address:        h.address,
		SignatureType:  string(cfg.SignatureType),
		FunderAddress:  cfg.ProxyWallet,
		HasCredentials: !cfg.Creds.Empty(),
	})
}

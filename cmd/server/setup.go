package main

import (
	"context"
	"strings"
	"time"

	"github.com/GoPolymarket/polyexec/internal/config"
	"github.com/GoPolymarket/polyexec/internal/creds"
	"github.com/GoPolymarket/polyexec/internal/model"
	"github.com/GoPolymarket/polyexec/internal/pkg/logger"
	"github.com/GoPolymarket/polyexec/internal/wallet"
	"github.com/ethereum/go-ethereum/crypto"
)

// newClassifier always returns a usable classifier. An empty RPC URL makes
// every probe fail closed to the EOA assumption.
func newClassifier(cfg *config.Config) *wallet.Classifier {
	return wallet.NewClassifier(cfg.Chain.RPCURL,
		time.Duration(cfg.Chain.ClassifyTimeoutMs)*time.Millisecond)
}

// loadCredentials acquires CLOB API credentials over L1 auth. Failure is
// not fatal: order submission signs L1 inside the bridge and works without
// API credentials.
func loadCredentials(cfg *config.Config) model.APICredentials {
	provider, err := creds.NewHTTPProvider(cfg.Clob.Host, cfg.Chain.ChainID, cfg.Clob.PrivateKey)
	if err != nil {
		logger.Warn("⚠️ Skipping API credential acquisition", "error", err)
		return model.APICredentials{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return creds.Acquire(ctx, provider)
}

func signerAddress(cfg *config.Config) string {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.Clob.PrivateKey, "0x"))
	if err != nil {
		return ""
	}
	return crypto.PubkeyToAddress(key.PublicKey).Hex()
}

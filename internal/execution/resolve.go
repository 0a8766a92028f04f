package execution

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GoPolymarket/polyexec/internal/model"
	"github.com/GoPolymarket/polyexec/internal/pkg/logger"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/auth"
)

// walletClassifier answers whether an address is a deployed contract.
// Lookup failures have already been folded to false by the implementation.
type walletClassifier interface {
	IsContractWallet(ctx context.Context, address string) bool
}

// ResolveInput carries the knobs that drive signature-type selection.
type ResolveInput struct {
	// Override, when set, is taken at face value and skips classification.
	Override    string
	PrivateKey  string
	ProxyWallet string
}

// Resolution is the selected signing scheme plus the funder that goes with
// it. Funder is empty for EOA.
type Resolution struct {
	SignatureType model.SignatureType
	Funder        string
}

// ResolveSignatureType picks the signing scheme for an execution identity.
// An explicit override always wins; otherwise the configured proxy wallet
// is classified on chain and a contract wallet selects POLY_PROXY with
// that wallet as funder.
func ResolveSignatureType(ctx context.Context, in ResolveInput, classifier walletClassifier) (Resolution, error) {
	if in.Override != "" {
		st, ok := model.ParseSignatureType(in.Override)
		if !ok {
			logger.Warn("⚠️ Unknown signature type override, falling back to classification",
				slog.String("override", in.Override))
		} else {
			res := Resolution{SignatureType: st}
			if st == model.SignatureProxy {
				funder, err := resolveFunder(in)
				if err != nil {
					return Resolution{}, err
				}
				res.Funder = funder
			}
			logger.Info("Signature type set by override", slog.String("signature_type", string(st)))
			return res, nil
		}
	}

	// Without a configured proxy wallet, probe the address a Safe for this
	// key would live at.
	target := in.ProxyWallet
	if target == "" {
		derived, err := resolveFunder(in)
		if err != nil {
			logger.Warn("⚠️ Could not derive proxy wallet, assuming EOA", slog.String("error", err.Error()))
			return Resolution{SignatureType: model.SignatureEOA}, nil
		}
		target = derived
	}

	if classifier != nil && classifier.IsContractWallet(ctx, target) {
		logger.Info("✅ Contract wallet detected, using proxy signing",
			slog.String("funder", target))
		return Resolution{SignatureType: model.SignatureProxy, Funder: target}, nil
	}

	logger.Info("Using EOA signing")
	return Resolution{SignatureType: model.SignatureEOA}, nil
}

// resolveFunder prefers the configured proxy wallet and otherwise derives
// the Safe address from the signer key.
func resolveFunder(in ResolveInput) (string, error) {
	if in.ProxyWallet != "" {
		return in.ProxyWallet, nil
	}
	signer, err := auth.NewPrivateKeySigner(in.PrivateKey, 137)
	if err != nil {
		return "", fmt.Errorf("invalid private key: %w", err)
	}
	proxy, err := auth.DeriveProxyWallet(signer.Address())
	if err != nil {
		return "", fmt.Errorf("failed to derive proxy wallet: %w", err)
	}
	return proxy.Hex(), nil
}

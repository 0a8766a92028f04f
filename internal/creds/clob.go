package creds

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/GoPolymarket/polyexec/internal/model"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

const (
	clobAuthDomain  = "ClobAuthDomain"
	clobAuthVersion = "1"
	clobAuthMessage = "This message attests that I control the given wallet"

	createAPIKeyPath = "/auth/api-key"
	deriveAPIKeyPath = "/auth/derive-api-key"
)

// HTTPProvider acquires credentials from the CLOB REST API using L1 auth
// headers (an EIP-712 ClobAuth signature over the account address). This is
// authentication-challenge signing, not order signing.
type HTTPProvider struct {
	host    string
	chainID int64
	key     *ecdsa.PrivateKey
	client  *http.Client
}

func NewHTTPProvider(host string, chainID int64, privateKeyHex string) (*HTTPProvider, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return &HTTPProvider{
		host:    strings.TrimSuffix(host, "/"),
		chainID: chainID,
		key:     key,
		client:  &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (p *HTTPProvider) Create(ctx context.Context) (model.APICredentials, error) {
	return p.request(ctx, http.MethodPost, createAPIKeyPath)
}

func (p *HTTPProvider) Derive(ctx context.Context) (model.APICredentials, error) {
	return p.request(ctx, http.MethodGet, deriveAPIKeyPath)
}

func (p *HTTPProvider) request(ctx context.Context, method, path string) (model.APICredentials, error) {
	req, err := http.NewRequestWithContext(ctx, method, p.host+path, nil)
	if err != nil {
		return model.APICredentials{}, err
	}
	if err := p.setL1Headers(req); err != nil {
		return model.APICredentials{}, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return model.APICredentials{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return model.APICredentials{}, fmt.Errorf("%s %s: http %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	// The venue spells the key field apiKey on this endpoint family.
	var raw struct {
		ApiKey     string `json:"apiKey"`
		Secret     string `json:"secret"`
		Passphrase string `json:"passphrase"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return model.APICredentials{}, fmt.Errorf("decode credentials response: %w", err)
	}
	return model.APICredentials{
		Key:        raw.ApiKey,
		Secret:     raw.Secret,
		Passphrase: raw.Passphrase,
	}, nil
}

func (p *HTTPProvider) setL1Headers(req *http.Request) error {
	ts := time.Now().Unix()
	nonce := int64(0)
	address := crypto.PubkeyToAddress(p.key.PublicKey)

	sig, err := p.signClobAuth(ts, nonce)
	if err != nil {
		return err
	}
	req.Header.Set("POLY_ADDRESS", address.Hex())
	req.Header.Set("POLY_SIGNATURE", sig)
	req.Header.Set("POLY_TIMESTAMP", strconv.FormatInt(ts, 10))
	req.Header.Set("POLY_NONCE", strconv.FormatInt(nonce, 10))
	return nil
}

func (p *HTTPProvider) signClobAuth(timestamp, nonce int64) (string, error) {
	typedData := apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
			},
			"ClobAuth": {
				{Name: "address", Type: "address"},
				{Name: "timestamp", Type: "string"},
				{Name: "nonce", Type: "uint256"},
				{Name: "message", Type: "string"},
			},
		},
		PrimaryType: "ClobAuth",
		Domain: apitypes.TypedDataDomain{
			Name:    clobAuthDomain,
			Version: clobAuthVersion,
			ChainId: (*math.HexOrDecimal256)(big.NewInt(p.chainID)),
		},
		Message: apitypes.TypedDataMessage{
			"address":   crypto.PubkeyToAddress(p.key.PublicKey).Hex(),
			"timestamp": strconv.FormatInt(timestamp, 10),
			"nonce":     (*math.HexOrDecimal256)(big.NewInt(nonce)),
			"message":   clobAuthMessage,
		},
	}

	hash, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return "", fmt.Errorf("failed to hash auth payload: %w", err)
	}
	sig, err := crypto.Sign(hash, p.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign auth payload: %w", err)
	}
	// The venue expects V in {27,28}.
	if sig[64] < 27 {
		sig[64] += 27
	}
	return hexutil.Encode(sig), nil
}

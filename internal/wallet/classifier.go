package wallet

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/GoPolymarket/polyexec/internal/pkg/logger"
	"github.com/GoPolymarket/polyexec/internal/pkg/metrics"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Classification is the three-state result of a code-at-address probe.
// Unknown means the chain could not be consulted, not that the account is
// an EOA.
type Classification int

const (
	ClassificationUnknown Classification = iota
	ClassificationEOA
	ClassificationContract
)

func (c Classification) String() string {
	switch c {
	case ClassificationEOA:
		return "eoa"
	case ClassificationContract:
		return "contract"
	default:
		return "unknown"
	}
}

// Classifier answers "does this address carry on-chain code" against a
// single RPC endpoint. The ethclient is dialed lazily and cached.
type Classifier struct {
	rpcURL  string
	timeout time.Duration

	mu     sync.Mutex
	client *ethclient.Client
}

func NewClassifier(rpcURL string, timeout time.Duration) *Classifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Classifier{
		rpcURL:  strings.TrimSpace(rpcURL),
		timeout: timeout,
	}
}

// Classify performs one read-only eth_getCode call. No retries.
func (c *Classifier) Classify(ctx context.Context, address string) (Classification, error) {
	if c.rpcURL == "" {
		return ClassificationUnknown, fmt.Errorf("rpc url not configured")
	}
	if !common.IsHexAddress(address) {
		return ClassificationUnknown, fmt.Errorf("invalid wallet address %q", address)
	}
	checksummed := common.HexToAddress(address)

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	client, err := c.getClient(callCtx)
	if err != nil {
		return ClassificationUnknown, err
	}
	code, err := client.CodeAt(callCtx, checksummed, nil)
	if err != nil {
		return ClassificationUnknown, fmt.Errorf("rpc call failed: %w", err)
	}
	if len(code) > 0 {
		return ClassificationContract, nil
	}
	return ClassificationEOA, nil
}

// IsContractWallet folds the Unknown state into the conservative EOA
// default so signing-scheme selection never blocks startup on a flaky
// node. Callers that must distinguish "confirmed EOA" from "assumed EOA"
// use Classify directly.
func (c *Classifier) IsContractWallet(ctx context.Context, address string) bool {
	cls, err := c.Classify(ctx, address)
	if err != nil {
		logger.Warn("Wallet classification failed, assuming EOA",
			"address", address, "error", err)
		metrics.ClassifierFallbacks.Inc()
		return false
	}
	return cls == ClassificationContract
}

func (c *Classifier) getClient(ctx context.Context) (*ethclient.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		return c.client, nil
	}
	client, err := ethclient.DialContext(ctx, c.rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect rpc: %w", err)
	}
	c.client = client
	return c.client, nil
}

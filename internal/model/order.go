package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SignatureType selects the signing scheme the bridge must apply. The wire
// values are the ones the venue expects verbatim.
type SignatureType string

const (
	SignatureEOA   SignatureType = "EOA"
	SignatureProxy SignatureType = "POLY_PROXY"
)

// ParseSignatureType accepts the venue spellings plus the short "PROXY"
// alias used by older configs.
func ParseSignatureType(raw string) (SignatureType, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "EOA":
		return SignatureEOA, true
	case "POLY_PROXY", "PROXY":
		return SignatureProxy, true
	default:
		return "", false
	}
}

// OrderArgs is the loosely-shaped order forwarded to the bridge. Absent
// fields stay nil and marshal as JSON null; the bridge owns validation.
type OrderArgs struct {
	Side    *string          `json:"side"`
	TokenID *string          `json:"tokenID"`
	Amount  *decimal.Decimal `json:"amount"`
	Price   *decimal.Decimal `json:"price"`
}

// APICredentials are L2 trading credentials for the CLOB.
type APICredentials struct {
	Key        string `json:"key"`
	Secret     string `json:"secret"`
	Passphrase string `json:"passphrase"`
}

// Empty reports whether no usable key is present.
func (c APICredentials) Empty() bool {
	return c.Key == ""
}

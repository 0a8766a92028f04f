package model

// PlaceOrderRequest represents the incoming JSON body. The order object is
// passed through to the bridge after field normalization; it is not
// validated here on purpose.
type PlaceOrderRequest struct {
	Order     map[string]any `json:"order" binding:"required"`
	OrderType string         `json:"order_type,omitempty"` // GTC/GTD/FAK/FOK, defaults to GTC
}

// AccountResponse describes the resolved execution identity.
type AccountResponse struct {
	Address        string `json:"address,omitempty"`
	SignatureType  string `json:"signature_type"`
	FunderAddress  string `json:"funder_address,omitempty"`
	HasCredentials bool   `json:"has_credentials"`
}

// BookLevel is one price level as the venue reports it (decimal strings).
type BookLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// BookSnapshot is the venue order-book document for one token.
type BookSnapshot struct {
	Market    string      `json:"market,omitempty"`
	AssetID   string      `json:"asset_id,omitempty"`
	Timestamp string      `json:"timestamp,omitempty"`
	Hash      string      `json:"hash,omitempty"`
	Bids      []BookLevel `json:"bids"`
	Asks      []BookLevel `json:"asks"`
}

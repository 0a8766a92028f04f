package market

import (
	"sort"
	"sync"
	"time"

	"github.com/GoPolymarket/polyexec/internal/model"
	"github.com/shopspring/decimal"
)

// Level is a single price level in the book
type Level struct {
	Price decimal.Decimal
	Size  decimal.Decimal
}

// Orderbook is the in-memory book state for one token
type Orderbook struct {
	TokenID     string
	Bids        []Level // Sorted High to Low
	Asks        []Level // Sorted Low to High
	LastUpdated time.Time
	mu          sync.RWMutex
}

func NewOrderbook(tokenID string) *Orderbook {
	return &Orderbook{
		TokenID: tokenID,
		Bids:    make([]Level, 0),
		Asks:    make([]Level, 0),
	}
}

// Snapshot replaces the entire book state
func (ob *Orderbook) Snapshot(bids, asks []Level) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	ob.Bids = bids
	ob.Asks = asks
	ob.LastUpdated = time.Now()
}

// Update processes one price/size update; size 0 removes the level
func (ob *Orderbook) Update(side string, priceStr, sizeStr string) error {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return err
	}
	size, err := decimal.NewFromString(sizeStr)
	if err != nil {
		return err
	}

	if side == "BUY" {
		ob.updateLevel(&ob.Bids, price, size, true)
	} else {
		ob.updateLevel(&ob.Asks, price, size, false)
	}
	ob.LastUpdated = time.Now()
	return nil
}

func (ob *Orderbook) updateLevel(levels *[]Level, price, size decimal.Decimal, descending bool) {
	// Linear scan. Polymarket books are sparse; slices stay cache-friendly
	// at these sizes.
	idx := -1
	for i, l := range *levels {
		if l.Price.Equal(price) {
			idx = i
			break
		}
	}

	if size.IsZero() {
		if idx != -1 {
			*levels = append((*levels)[:idx], (*levels)[idx+1:]...)
		}
		return
	}

	if idx != -1 {
		(*levels)[idx].Size = size
		return
	}

	*levels = append(*levels, Level{Price: price, Size: size})
	if descending {
		sort.Slice(*levels, func(i, j int) bool {
			return (*levels)[i].Price.GreaterThan((*levels)[j].Price)
		})
	} else {
		sort.Slice(*levels, func(i, j int) bool {
			return (*levels)[i].Price.LessThan((*levels)[j].Price)
		})
	}
}

// Age reports how long ago the book last changed.
func (ob *Orderbook) Age() time.Duration {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	if ob.LastUpdated.IsZero() {
		return time.Duration(1<<63 - 1)
	}
	return time.Since(ob.LastUpdated)
}

// ToSnapshot renders the book in the venue's wire shape.
func (ob *Orderbook) ToSnapshot() *model.BookSnapshot {
	ob.mu.RLock()
	defer ob.mu.RUnlock()

	snap := &model.BookSnapshot{
		AssetID: ob.TokenID,
		Bids:    make([]model.BookLevel, 0, len(ob.Bids)),
		Asks:    make([]model.BookLevel, 0, len(ob.Asks)),
	}
	for _, l := range ob.Bids {
		snap.Bids = append(snap.Bids, model.BookLevel{Price: l.Price.String(), Size: l.Size.String()})
	}
	for _, l := range ob.Asks {
		snap.Asks = append(snap.Asks, model.BookLevel{Price: l.Price.String(), Size: l.Size.String()})
	}
	return snap
}

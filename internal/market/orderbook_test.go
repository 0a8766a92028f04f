package market

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lvl(price, size string) Level {
	p, _ := decimal.NewFromString(price)
	s, _ := decimal.NewFromString(size)
	return Level{Price: p, Size: s}
}

func TestOrderbookSnapshotAndRender(t *testing.T) {
	ob := NewOrderbook("tok")
	ob.Snapshot(
		[]Level{lvl("0.45", "100"), lvl("0.40", "50")},
		[]Level{lvl("0.55", "80")},
	)

	snap := ob.ToSnapshot()
	assert.Equal(t, "tok", snap.AssetID)
	require.Len(t, snap.Bids, 2)
	assert.Equal(t, "0.45", snap.Bids[0].Price)
	assert.Equal(t, "100", snap.Bids[0].Size)
	require.Len(t, snap.Asks, 1)
	assert.Equal(t, "0.55", snap.Asks[0].Price)
}

func TestOrderbookUpdateKeepsBidOrdering(t *testing.T) {
	ob := NewOrderbook("tok")
	require.NoError(t, ob.Update("BUY", "0.40", "10"))
	require.NoError(t, ob.Update("BUY", "0.50", "20"))
	require.NoError(t, ob.Update("BUY", "0.45", "15"))

	assert.Equal(t, "0.5", ob.Bids[0].Price.String())
	assert.Equal(t, "0.45", ob.Bids[1].Price.String())
	assert.Equal(t, "0.4", ob.Bids[2].Price.String())
}

func TestOrderbookUpdateKeepsAskOrdering(t *testing.T) {
	ob := NewOrderbook("tok")
	require.NoError(t, ob.Update("SELL", "0.60", "10"))
	require.NoError(t, ob.Update("SELL", "0.55", "20"))

	assert.Equal(t, "0.55", ob.Asks[0].Price.String())
	assert.Equal(t, "0.6", ob.Asks[1].Price.String())
}

func TestOrderbookUpdateReplacesSize(t *testing.T) {
	ob := NewOrderbook("tok")
	require.NoError(t, ob.Update("BUY", "0.40", "10"))
	require.NoError(t, ob.Update("BUY", "0.40", "99"))

	require.Len(t, ob.Bids, 1)
	assert.Equal(t, "99", ob.Bids[0].Size.String())
}

func TestOrderbookZeroSizeRemovesLevel(t *testing.T) {
	ob := NewOrderbook("tok")
	require.NoError(t, ob.Update("SELL", "0.60", "10"))
	require.NoError(t, ob.Update("SELL", "0.60", "0"))

	assert.Empty(t, ob.Asks)
}

func TestOrderbookUpdateBadNumber(t *testing.T) {
	ob := NewOrderbook("tok")
	assert.Error(t, ob.Update("BUY", "xx", "10"))
}

func TestOrderbookAge(t *testing.T) {
	ob := NewOrderbook("tok")
	assert.Greater(t, ob.Age(), time.Hour, "never-updated book reads as stale")

	ob.Snapshot(nil, nil)
	assert.Less(t, ob.Age(), time.Second)
}

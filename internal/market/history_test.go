package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func appendN(h *HistoryStore, poolID string, n int, startPrice float64) {
	base := time.Now().Add(-time.Duration(n) * time.Minute)
	for i := 0; i < n; i++ {
		h.Append(poolID, PricePoint{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Price:     startPrice + float64(i),
			Volume:    1440, // one unit per minute over 24h
		})
	}
}

func TestAppendEvictsOldestBeyondCap(t *testing.T) {
	h := NewHistoryStore(zap.NewNop())
	appendN(h, "pool-1", MaxHistoryPoints+10, 100)

	assert.Equal(t, MaxHistoryPoints, h.Len("pool-1"))

	series := h.Series("pool-1")
	assert.Len(t, series.Points, MaxHistoryPoints)
	// the first 10 points were evicted
	assert.Equal(t, 110.0, series.Points[0].Price)
	assert.Equal(t, 100.0+float64(MaxHistoryPoints+9), series.Last().Price)
}

func TestSeriesPadsThinHistory(t *testing.T) {
	for _, n := range []int{3, 4} {
		h := NewHistoryStore(zap.NewNop())
		appendN(h, "pool-1", n, 100)

		series := h.Series("pool-1")
		assert.True(t, series.WarmedUp, "%d real points", n)
		assert.Len(t, series.Points, n+warmupSyntheticN)

		latest := 100.0 + float64(n-1)
		for _, pt := range series.Points[:warmupSyntheticN] {
			assert.InDelta(t, latest, pt.Price, latest*0.011)
			assert.InDelta(t, 1.0, pt.Volume, 1e-9)
		}
		// real points come last, in order
		assert.Equal(t, latest, series.Last().Price)

		// synthetic points never land in the store
		assert.Equal(t, n, h.Len("pool-1"))
	}
}

func TestSeriesDoesNotPadOutsideWarmupWindow(t *testing.T) {
	for _, n := range []int{0, 1, 2, 5, 6, 50} {
		h := NewHistoryStore(zap.NewNop())
		appendN(h, "pool-1", n, 100)

		series := h.Series("pool-1")
		assert.False(t, series.WarmedUp, "%d real points", n)
		assert.Len(t, series.Points, n)
	}
}

func TestSeriesReturnsCopy(t *testing.T) {
	h := NewHistoryStore(zap.NewNop())
	appendN(h, "pool-1", 10, 100)

	series := h.Series("pool-1")
	series.Points[0].Price = -1

	assert.Equal(t, 100.0, h.Series("pool-1").Points[0].Price)
}

func TestResetDropsHistory(t *testing.T) {
	h := NewHistoryStore(zap.NewNop())
	appendN(h, "pool-1", 10, 100)
	appendN(h, "pool-2", 10, 200)

	h.Reset("pool-1")

	assert.Zero(t, h.Len("pool-1"))
	assert.Equal(t, 10, h.Len("pool-2"))
}

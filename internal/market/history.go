// internal/market/history.go
package market

import (
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// MaxHistoryPoints bounds the per-pool buffer; oldest points are evicted.
	MaxHistoryPoints = 100

	// warmup synthesis pads series with at least warmupRealMin but fewer
	// than warmupRealThreshold real points; below the minimum there is not
	// even a trend to extrapolate and strategies hold anyway
	warmupRealMin       = 3
	warmupRealThreshold = 5
	warmupSyntheticN    = 20
)

// PricePoint is one observation of a pool's price and trailing volume.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
	Volume    float64   `json:"volume"`
}

// Series is what strategies consume: the points in chronological order plus
// a flag marking that most of them were synthesized during warm-up. Signals
// derived from a warmed-up series must say so in their reason.
type Series struct {
	Points   []PricePoint
	WarmedUp bool
}

// Last returns the most recent point.
func (s Series) Last() PricePoint {
	return s.Points[len(s.Points)-1]
}

// HistoryStore keeps a bounded price history per pool.
type HistoryStore struct {
	mu      sync.RWMutex
	history map[string][]PricePoint
	logger  *zap.Logger
	rng     *rand.Rand
}

// NewHistoryStore creates an empty store.
func NewHistoryStore(logger *zap.Logger) *HistoryStore {
	return &HistoryStore{
		history: make(map[string][]PricePoint),
		logger:  logger.Named("history"),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Append records a new observation for a pool, evicting the oldest point
// once the buffer is full.
func (h *HistoryStore) Append(poolID string, point PricePoint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	points := h.history[poolID]
	if len(points) >= MaxHistoryPoints {
		points = points[1:]
	}
	h.history[poolID] = append(points, point)
}

// Len returns the number of real points recorded for a pool.
func (h *HistoryStore) Len(poolID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.history[poolID])
}

// Series returns the pool's history for strategy evaluation. When the pool
// has some history but fewer than five real points, the series is padded
// with ~20 synthetic points derived from the latest price (±1% random walk,
// 24h volume spread per minute) so strategies have something to chew on
// during warm-up. Synthetic points are never written back to the store.
func (h *HistoryStore) Series(poolID string) Series {
	h.mu.RLock()
	real := h.history[poolID]
	points := make([]PricePoint, len(real))
	copy(points, real)
	h.mu.RUnlock()

	if len(points) < warmupRealMin || len(points) >= warmupRealThreshold {
		return Series{Points: points}
	}

	latest := points[len(points)-1]
	perMinuteVolume := latest.Volume / (24 * 60)

	h.mu.Lock()
	synthetic := make([]PricePoint, 0, warmupSyntheticN)
	for i := warmupSyntheticN; i > 0; i-- {
		jitter := 1 + (h.rng.Float64()*2-1)*0.01
		synthetic = append(synthetic, PricePoint{
			Timestamp: latest.Timestamp.Add(-time.Duration(i) * time.Minute),
			Price:     latest.Price * jitter,
			Volume:    perMinuteVolume,
		})
	}
	h.mu.Unlock()

	h.logger.Debug("Padded thin history with synthetic points",
		zap.String("pool", poolID),
		zap.Int("real_points", len(points)),
		zap.Int("synthetic_points", len(synthetic)))

	return Series{Points: append(synthetic, points...), WarmedUp: true}
}

// Reset drops all history for a pool.
func (h *HistoryStore) Reset(poolID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.history, poolID)
}

// internal/market/pool.go
package market

import (
	"errors"

	"github.com/galatrade/swapbot/internal/token"
)

var ErrEmptyReserves = errors.New("pool has empty reserves")

// LiquidityPool is a snapshot of an on-chain constant-product pool.
type LiquidityPool struct {
	ID          string       `json:"id"`
	TokenA      token.Symbol `json:"token_a"`
	TokenB      token.Symbol `json:"token_b"`
	ReserveA    float64      `json:"reserve_a"`
	ReserveB    float64      `json:"reserve_b"`
	Fee         float64      `json:"fee"` // fraction, e.g. 0.003
	Volume24h   float64      `json:"volume_24h"`
	PriceTokenA float64      `json:"price_token_a,omitempty"` // optional oracle prices
	PriceTokenB float64      `json:"price_token_b,omitempty"`
}

// SpotPrice returns the price of tokenA denominated in tokenB. Oracle prices
// are preferred when the snapshot carries them; otherwise it falls back to
// the reserve ratio.
func (p *LiquidityPool) SpotPrice() (float64, error) {
	if p.PriceTokenA > 0 && p.PriceTokenB > 0 {
		return p.PriceTokenA / p.PriceTokenB, nil
	}
	if p.ReserveA <= 0 || p.ReserveB <= 0 {
		return 0, ErrEmptyReserves
	}
	return p.ReserveB / p.ReserveA, nil
}

// reserves returns (reserveIn, reserveOut) for a swap spending tokenIn.
func (p *LiquidityPool) reserves(tokenIn token.Symbol) (float64, float64, bool) {
	switch tokenIn {
	case p.TokenA:
		return p.ReserveA, p.ReserveB, true
	case p.TokenB:
		return p.ReserveB, p.ReserveA, true
	default:
		return 0, 0, false
	}
}

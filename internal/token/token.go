// internal/token/token.go
package token

import (
	"fmt"
	"strings"
)

// Symbol is a canonical GalaChain token symbol. All external symbol strings
// must pass through Canonical before they reach pricing or ledger code.
type Symbol string

const (
	GALA  Symbol = "GALA"
	GUSDC Symbol = "GUSDC"
	GUSDT Symbol = "GUSDT"
	GWETH Symbol = "GWETH"
	GWBTC Symbol = "GWBTC"
)

// aliases maps the symbol spellings seen on explorers and wallet APIs to
// their canonical form. Wrapped-asset aliases collapse onto the G-prefixed
// bridge token.
var aliases = map[string]Symbol{
	"GALA":  GALA,
	"GUSDC": GUSDC,
	"USDC":  GUSDC,
	"GUSDT": GUSDT,
	"USDT":  GUSDT,
	"GWETH": GWETH,
	"WETH":  GWETH,
	"ETH":   GWETH,
	"GWBTC": GWBTC,
	"WBTC":  GWBTC,
	"BTC":   GWBTC,
}

// Canonical resolves a raw symbol string to its canonical Symbol.
// Unknown symbols are an error; defaulting them silently would let a
// zero price leak into position sizing.
func Canonical(raw string) (Symbol, error) {
	s, ok := aliases[strings.ToUpper(strings.TrimSpace(raw))]
	if !ok {
		return "", fmt.Errorf("unknown token symbol %q", raw)
	}
	return s, nil
}

// MustCanonical is Canonical for compile-time-known symbols.
func MustCanonical(raw string) Symbol {
	s, err := Canonical(raw)
	if err != nil {
		panic(err)
	}
	return s
}

// ReferencePrices returns the static USD reference prices used to seed the
// paper ledger. Live pricing always comes from pool reserves; these values
// only anchor the initial balance split.
func ReferencePrices() map[Symbol]float64 {
	return map[Symbol]float64{
		GALA:  0.02,
		GUSDC: 1.0,
		GUSDT: 1.0,
		GWETH: 2500.0,
		GWBTC: 65000.0,
	}
}

// DefaultBasket is the seed allocation for new paper sessions: fraction of
// the initial notional held in each token.
func DefaultBasket() map[Symbol]float64 {
	return map[Symbol]float64{
		GUSDC: 0.40,
		GALA:  0.20,
		GWETH: 0.20,
		GUSDT: 0.10,
		GWBTC: 0.10,
	}
}

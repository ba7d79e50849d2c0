package exchange

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Market is one selectable trading pair. Every view the engine derives is
// scoped to a single pair; the same order can classify differently under a
// different selected pair, which is intentional.
type Market struct {
	BaseSymbol  string
	QuoteSymbol string
	Base        common.Address
	Quote       common.Address
}

// Pair returns the "BASE/QUOTE" display name, e.g. "DAPP/mETH".
func (m Market) Pair() string {
	return m.BaseSymbol + "/" + m.QuoteSymbol
}

// Valid reports whether both pair tokens are set. Market-scoped derivations
// short-circuit to an empty result on an invalid market rather than filter
// with partial data.
func (m Market) Valid() bool {
	return m.Base != (common.Address{}) && m.Quote != (common.Address{})
}

// Includes reports whether both legs of the order reference pair tokens.
// Orders touching a third token are excluded even if one leg matches.
func (m Market) Includes(ev OrderEvent) bool {
	return m.hasToken(ev.TokenGet) && m.hasToken(ev.TokenGive)
}

func (m Market) hasToken(a common.Address) bool {
	return a == m.Base || a == m.Quote
}

// Registry holds the configured trading pairs, keyed by Pair().
type Registry struct {
	mu      sync.RWMutex
	markets map[string]Market
}

func NewRegistry() *Registry {
	return &Registry{markets: make(map[string]Market)}
}

// Register adds a pair. Returns an error for incomplete pairs or duplicates.
func (r *Registry) Register(m Market) error {
	if !m.Valid() {
		return fmt.Errorf("market %s: both token addresses required", m.Pair())
	}
	if m.BaseSymbol == "" || m.QuoteSymbol == "" {
		return fmt.Errorf("market: both token symbols required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.markets[m.Pair()]; exists {
		return fmt.Errorf("market %s already registered", m.Pair())
	}
	r.markets[m.Pair()] = m
	return nil
}

// Get looks a pair up by its "BASE/QUOTE" name.
func (r *Registry) Get(pair string) (Market, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.markets[pair]
	return m, ok
}

// List returns all registered pairs sorted by name.
func (r *Registry) List() []Market {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Market, 0, len(r.markets))
	for _, m := range r.markets {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pair() < out[j].Pair() })
	return out
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.markets)
}

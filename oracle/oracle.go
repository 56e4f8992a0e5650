// Package oracle defines the price feed consumed by the barrier
// calculator. The core reads a single current price per symbol and does
// not validate freshness; that is the feed operator's responsibility.
package oracle

import (
	"errors"
	"fmt"
	"sync"

	"github.com/brcfi/libbrc-go/ledger"
)

var (
	// ErrUnauthorized indicates a price update by a caller other than
	// the feed authority.
	ErrUnauthorized = errors.New("oracle: unauthorized")

	// ErrUnknownSymbol indicates no quote exists for the symbol.
	ErrUnknownSymbol = errors.New("oracle: unknown symbol")
)

// Feed supplies the current price of an underlying asset.
type Feed interface {
	CurrentPrice(symbol string) (uint64, error)
}

// Quote is one published price observation.
type Quote struct {
	Price      uint64
	Decimals   uint8
	LastUpdate int64 // unix seconds
}

// StaticFeed is an operator-updated in-memory feed, the stand-in for an
// external oracle in tests and closed deployments.
type StaticFeed struct {
	mu        sync.RWMutex
	authority ledger.Key
	quotes    map[string]Quote
}

// Compile-time interface check.
var _ Feed = (*StaticFeed)(nil)

// NewStaticFeed creates an empty feed owned by authority.
func NewStaticFeed(authority ledger.Key) *StaticFeed {
	return &StaticFeed{
		authority: authority,
		quotes:    make(map[string]Quote),
	}
}

// UpdatePrice publishes a new quote for symbol. Only the feed authority
// may publish.
func (f *StaticFeed) UpdatePrice(caller ledger.Key, symbol string, price uint64, decimals uint8, now int64) error {
	if caller != f.authority {
		return fmt.Errorf("%w: %s", ErrUnauthorized, caller)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quotes[symbol] = Quote{Price: price, Decimals: decimals, LastUpdate: now}
	return nil
}

// CurrentPrice returns the latest published price for symbol.
func (f *StaticFeed) CurrentPrice(symbol string) (uint64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	q, ok := f.quotes[symbol]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownSymbol, symbol)
	}
	return q.Price, nil
}

// Quote returns the full quote for symbol, including its update stamp.
func (f *StaticFeed) Quote(symbol string) (Quote, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	q, ok := f.quotes[symbol]
	if !ok {
		return Quote{}, fmt.Errorf("%w: %q", ErrUnknownSymbol, symbol)
	}
	return q, nil
}

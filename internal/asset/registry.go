package asset

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Registry is a thread-safe registry of known tokens.
type Registry struct {
	byID     map[TokenID]*Token
	bySymbol map[string][]*Token // symbol -> tokens (can exist on multiple chains)
	mu       sync.RWMutex
}

// NewRegistry creates an empty token registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:     make(map[TokenID]*Token),
		bySymbol: make(map[string][]*Token),
	}
}

// Register adds a token to the registry.
// Panics if a token with the same ID is already registered.
func (r *Registry) Register(t *Token) {
	if t == nil {
		panic("asset: cannot register nil token")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := t.ID()
	if _, exists := r.byID[id]; exists {
		panic(fmt.Sprintf("asset: %s already registered", id))
	}

	r.byID[id] = t
	r.bySymbol[t.Symbol()] = append(r.bySymbol[t.Symbol()], t)
}

// Get retrieves a token by its ID.
func (r *Registry) Get(id TokenID) (*Token, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byID[id]
	return t, ok
}

// GetBySymbolAndChain retrieves a token by symbol and chain ID.
func (r *Registry) GetBySymbolAndChain(symbol string, chainID uint64) (*Token, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.bySymbol[symbol] {
		if t.ChainID() == chainID {
			return t, true
		}
	}
	return nil, false
}

// GetNative retrieves the native coin for a chain.
func (r *Registry) GetNative(chainID uint64) (*Token, bool) {
	return r.Get(NewNativeTokenID(chainID))
}

// GetByAddress retrieves a token by chain and contract address.
func (r *Registry) GetByAddress(chainID uint64, address common.Address) (*Token, bool) {
	if address == (common.Address{}) {
		return r.GetNative(chainID)
	}
	return r.Get(NewTokenID(chainID, address))
}

// All returns all registered tokens.
func (r *Registry) All() []*Token {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Token, 0, len(r.byID))
	for _, t := range r.byID {
		result = append(result, t)
	}
	return result
}

// Count returns the number of registered tokens.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

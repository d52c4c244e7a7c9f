package asset

import (
	"fmt"
	"sync"
)

// Registry is a thread-safe registry of known assets.
type Registry struct {
	byID     map[AssetID]*Asset
	bySymbol map[string]*Asset // UI symbol -> asset (one chain per process)
	byName   map[string]*Asset // contract token name -> asset
	mu       sync.RWMutex
}

// NewRegistry creates a new empty asset registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:     make(map[AssetID]*Asset),
		bySymbol: make(map[string]*Asset),
		byName:   make(map[string]*Asset),
	}
}

// Register adds an asset to the registry.
// Panics if an asset with the same ID is already registered.
func (r *Registry) Register(a *Asset) {
	if a == nil {
		panic("asset: cannot register nil asset")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := a.ID()
	if _, exists := r.byID[id]; exists {
		panic(fmt.Sprintf("asset: %s already registered", id))
	}

	r.byID[id] = a
	r.bySymbol[a.Symbol()] = a
	if a.ContractName() != "" {
		r.byName[a.ContractName()] = a
	}
}

// Alias registers an additional UI symbol for an already-registered asset
// (e.g. "USDC" resolving to the fUSD token).
func (r *Registry) Alias(symbol string, a *Asset) {
	if a == nil {
		panic("asset: cannot alias nil asset")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bySymbol[symbol]; exists {
		panic(fmt.Sprintf("asset: symbol %s already registered", symbol))
	}
	r.bySymbol[symbol] = a
}

// Get retrieves an asset by its ID.
func (r *Registry) Get(id AssetID) (*Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	return a, ok
}

// GetBySymbol retrieves an asset by its UI symbol ("EUR", "USDC", ...).
func (r *Registry) GetBySymbol(symbol string) (*Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.bySymbol[symbol]
	return a, ok
}

// GetByContractName retrieves an asset by its on-contract name ("fEUR", ...).
func (r *Registry) GetByContractName(name string) (*Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byName[name]
	return a, ok
}

// GetNative retrieves the native coin for a chain.
func (r *Registry) GetNative(chainID uint64) (*Asset, bool) {
	return r.Get(NewNativeAssetID(chainID))
}

// Tokens returns all registered basket tokens (excludes the native coin).
func (r *Registry) Tokens() []*Asset {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Asset, 0, len(r.byID))
	for _, a := range r.byID {
		if !a.IsNative() {
			result = append(result, a)
		}
	}
	return result
}

// Count returns the number of registered assets.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

package checkout

import (
	"sync"

	"kart-pay/internal/model"
)

// OrderCache is the checkout state collaborator the reconciliation
// controller depends on. The controller reads it as a fallback item source
// and writes it on stock-conflict responses; it never assumes exclusive
// ownership.
type OrderCache interface {
	// UpdateOrder replaces the fresh order state for a checkout token.
	UpdateOrder(token string, order *model.OrderSnapshot)

	// FreshOrder returns the latest order state, nil when none is known.
	FreshOrder(token string) *model.OrderSnapshot

	// Snapshot returns the order snapshot taken when checkout began,
	// nil when none is known.
	Snapshot(token string) *model.OrderSnapshot

	// Discard drops all state once a checkout completes or is abandoned.
	Discard(token string)
}

// StateCache is the process-wide in-memory OrderCache, keyed by checkout
// token. It is safe for concurrent use: other checkout steps update it
// while a payment attempt is in flight.
type StateCache struct {
	mu       sync.RWMutex
	fresh    map[string]*model.OrderSnapshot
	snapshot map[string]*model.OrderSnapshot
}

// NewStateCache creates an empty checkout state cache.
func NewStateCache() *StateCache {
	return &StateCache{
		fresh:    make(map[string]*model.OrderSnapshot),
		snapshot: make(map[string]*model.OrderSnapshot),
	}
}

// Begin records the order snapshot for a starting checkout. The snapshot
// doubles as the initial fresh state.
func (c *StateCache) Begin(token string, order *model.OrderSnapshot) {
	if token == "" || order == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot[token] = order
	c.fresh[token] = order
}

// UpdateOrder replaces the fresh order state, typically with the
// authoritative representation returned on a stock conflict.
func (c *StateCache) UpdateOrder(token string, order *model.OrderSnapshot) {
	if token == "" || order == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fresh[token] = order
}

// FreshOrder returns the latest order state for a token.
func (c *StateCache) FreshOrder(token string) *model.OrderSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fresh[token]
}

// Snapshot returns the snapshot taken when checkout began.
func (c *StateCache) Snapshot(token string) *model.OrderSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot[token]
}

// Discard drops all state for a completed or abandoned checkout.
func (c *StateCache) Discard(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.fresh, token)
	delete(c.snapshot, token)
}

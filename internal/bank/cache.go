package bank

import (
	"sync"
	"time"

	"github.com/meridianhr/assess-engine/internal/profile"
)

// #region catalogue

// Catalogue is a read-through cache over the store's item bank and
// archetype tables. Both change rarely (administrator loads), so a TTL
// refresh keeps concurrent assessments off the database without a
// separate invalidation protocol.
type Catalogue struct {
	store *Store
	ttl   time.Duration
	now   func() time.Time

	mu         sync.Mutex
	items      []profile.Item
	archetypes []profile.ArchetypeProfile
	loadedAt   time.Time
}

// NewCatalogue wraps a store with a TTL cache.
func NewCatalogue(store *Store, ttl time.Duration) *Catalogue {
	return &Catalogue{store: store, ttl: ttl, now: time.Now}
}

// Items returns the cached item bank, refreshing it from the store when
// the TTL has lapsed.
func (c *Catalogue) Items() ([]profile.Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.refreshLocked(); err != nil {
		return nil, err
	}
	return c.items, nil
}

// ItemsByID returns the cached bank indexed by item id.
func (c *Catalogue) ItemsByID() (map[string]profile.Item, error) {
	items, err := c.Items()
	if err != nil {
		return nil, err
	}
	byID := make(map[string]profile.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	return byID, nil
}

// EligibleItems returns the cached items eligible for a tier.
func (c *Catalogue) EligibleItems(tier profile.Tier) ([]profile.Item, error) {
	items, err := c.Items()
	if err != nil {
		return nil, err
	}
	var out []profile.Item
	for _, it := range items {
		if it.EligibleFor(tier) {
			out = append(out, it)
		}
	}
	return out, nil
}

// Archetypes returns the cached archetype catalogue.
func (c *Catalogue) Archetypes() ([]profile.ArchetypeProfile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.refreshLocked(); err != nil {
		return nil, err
	}
	return c.archetypes, nil
}

// Invalidate forces the next read to hit the store. Called after a bank
// load.
func (c *Catalogue) Invalidate() {
	c.mu.Lock()
	c.loadedAt = time.Time{}
	c.mu.Unlock()
}

func (c *Catalogue) refreshLocked() error {
	if !c.loadedAt.IsZero() && c.now().Sub(c.loadedAt) < c.ttl {
		return nil
	}
	items, err := c.store.Items()
	if err != nil {
		return err
	}
	archetypes, err := c.store.Archetypes()
	if err != nil {
		return err
	}
	c.items = items
	c.archetypes = archetypes
	c.loadedAt = c.now()
	return nil
}

// #endregion catalogue

package pricecache

import (
	"strings"
	"sync"
	"time"

	"TrendPull/internal/domain/models"
)

// Cache holds the most recent traded price per symbol. The feed dispatch
// path is the only writer; query paths read concurrently, so all access goes
// through the mutex.
type Cache struct {
	mu     sync.RWMutex
	prices map[string]models.LivePrice
}

// New creates an empty price cache.
func New() *Cache {
	return &Cache{prices: make(map[string]models.LivePrice)}
}

// Set records the latest price for a symbol. Keys are lower-cased.
func (c *Cache) Set(symbol string, price float64) {
	symbol = strings.ToLower(symbol)
	c.mu.Lock()
	c.prices[symbol] = models.LivePrice{
		Symbol:     symbol,
		Price:      price,
		ObservedAt: time.Now().UTC(),
	}
	c.mu.Unlock()
}

// Get returns the latest price for a symbol, if one has been observed.
func (c *Cache) Get(symbol string) (models.LivePrice, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	lp, ok := c.prices[strings.ToLower(symbol)]
	return lp, ok
}

// Snapshot returns a copy of all current prices.
func (c *Cache) Snapshot() map[string]models.LivePrice {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]models.LivePrice, len(c.prices))
	for k, v := range c.prices {
		out[k] = v
	}
	return out
}

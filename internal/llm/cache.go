package llm

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"reagent/internal/observability"
)

const defaultCacheSize = 8

// Cache holds generator instances keyed by model name so concurrent requests
// for the same model share one client. Instantiation is collapsed through
// singleflight; the LRU bounds how many distinct models stay warm. Caching
// lives here in the serving layer on purpose: the orchestration core holds
// no shared mutable state.
type Cache struct {
	clients *lru.Cache[string, *Client]
	group   singleflight.Group
	config  Config
	logger  *observability.Logger
}

// NewCache creates a generator cache. maxModels <= 0 falls back to a small
// default; evicted clients need no teardown beyond garbage collection.
func NewCache(maxModels int, config Config, logger *observability.Logger) (*Cache, error) {
	if maxModels <= 0 {
		maxModels = defaultCacheSize
	}
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	clients, err := lru.New[string, *Client](maxModels)
	if err != nil {
		return nil, fmt.Errorf("create model cache: %w", err)
	}
	return &Cache{clients: clients, config: config, logger: logger}, nil
}

// Get returns the cached client for model, creating it on first use. Safe
// for concurrent callers.
func (c *Cache) Get(model string) (*Client, error) {
	if client, ok := c.clients.Get(model); ok {
		return client, nil
	}

	v, err, _ := c.group.Do(model, func() (any, error) {
		if client, ok := c.clients.Get(model); ok {
			return client, nil
		}
		c.logger.Info("initializing generator", "model", model)
		client := NewClient(model, c.config, c.logger)
		c.clients.Add(model, client)
		return client, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Client), nil
}

// Len reports how many generator instances are currently cached.
func (c *Cache) Len() int { return c.clients.Len() }

// Keys lists the model names currently cached, oldest first.
func (c *Cache) Keys() []string { return c.clients.Keys() }

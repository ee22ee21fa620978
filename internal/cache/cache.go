// Package cache is the process-wide read-path cache for player lists,
// scenario comparisons, and projection ranges. It is explicitly not a
// source of truth: every write path in the engine must call one of the
// Invalidate* methods after it commits, the way internal/draft's Service
// writes through to Redis with a TTL and never treats the cache as
// authoritative.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"

	"github.com/fantasyprojections/engine/pkg/logger"
)

// Cache is the interface handlers depend on for cached read paths (player
// lists, scenario comparisons, projection ranges).
type Cache interface {
	Get(ctx context.Context, key string) (any, bool)
	Set(ctx context.Context, key string, v any, ttl time.Duration)
	InvalidateScenario(ctx context.Context, scenarioID string)
	InvalidatePlayer(ctx context.Context, playerID string)
}

type entry struct {
	value     any
	expiresAt time.Time
}

// LRUCache wraps a hashicorp/golang-lru Cache with a TTL check on read and
// an optional Redis pub/sub fan-out so a second API process's local LRU
// also drops the key: per-process coverage comes from the LRU, cross-process
// coverage from the Redis broadcast.
type LRUCache struct {
	mu      sync.Mutex
	lru     *lru.Cache[string, entry]
	redis   *redis.Client
	channel string
	log     *logger.Logger

	// keysByScenario/keysByPlayer index which cache keys mention a given
	// scenario or player id, so InvalidateScenario/InvalidatePlayer can
	// drop every matching key without scanning the whole LRU.
	keysByScenario map[string]map[string]struct{}
	keysByPlayer   map[string]map[string]struct{}
}

type invalidateMessage struct {
	ScenarioID string `json:"scenario_id,omitempty"`
	PlayerID   string `json:"player_id,omitempty"`
}

// NewLRUCache builds a cache of the given size. redisClient and log may be
// nil — without a Redis client, invalidation only covers this process.
func NewLRUCache(size int, redisClient *redis.Client, channel string, log *logger.Logger) (*LRUCache, error) {
	l, err := lru.New[string, entry](size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	if log != nil {
		log = log.With("channel", channel)
	}
	c := &LRUCache{
		lru:            l,
		redis:          redisClient,
		channel:        channel,
		log:            log,
		keysByScenario: make(map[string]map[string]struct{}),
		keysByPlayer:   make(map[string]map[string]struct{}),
	}
	if redisClient != nil && channel != "" {
		go c.subscribeLoop()
	}
	return c, nil
}

func (c *LRUCache) Get(ctx context.Context, key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		c.lru.Remove(key)
		return nil, false
	}
	return e.value, true
}

func (c *LRUCache) Set(ctx context.Context, key string, v any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, entry{value: v, expiresAt: time.Now().Add(ttl)})
}

// IndexKey associates key with a scenario and/or player id so a later
// invalidation call evicts it. Handlers call this right after Set for any
// cache entry whose content depends on a scenario or player.
func (c *LRUCache) IndexKey(key string, scenarioID, playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if scenarioID != "" {
		if c.keysByScenario[scenarioID] == nil {
			c.keysByScenario[scenarioID] = make(map[string]struct{})
		}
		c.keysByScenario[scenarioID][key] = struct{}{}
	}
	if playerID != "" {
		if c.keysByPlayer[playerID] == nil {
			c.keysByPlayer[playerID] = make(map[string]struct{})
		}
		c.keysByPlayer[playerID][key] = struct{}{}
	}
}

func (c *LRUCache) InvalidateScenario(ctx context.Context, scenarioID string) {
	c.evictLocal(c.keysByScenario, scenarioID)
	c.publish(ctx, invalidateMessage{ScenarioID: scenarioID})
}

func (c *LRUCache) InvalidatePlayer(ctx context.Context, playerID string) {
	c.evictLocal(c.keysByPlayer, playerID)
	c.publish(ctx, invalidateMessage{PlayerID: playerID})
}

func (c *LRUCache) evictLocal(index map[string]map[string]struct{}, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range index[id] {
		c.lru.Remove(key)
	}
	delete(index, id)
}

func (c *LRUCache) publish(ctx context.Context, msg invalidateMessage) {
	if c.redis == nil || c.channel == "" {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := c.redis.Publish(ctx, c.channel, data).Err(); err != nil && c.log != nil {
		c.log.Warn("cache invalidation publish failed", "error", err)
	}
}

func (c *LRUCache) subscribeLoop() {
	sub := c.redis.Subscribe(context.Background(), c.channel)
	defer sub.Close()

	ch := sub.Channel()
	for msg := range ch {
		var m invalidateMessage
		if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
			continue
		}
		if m.ScenarioID != "" {
			c.evictLocal(c.keysByScenario, m.ScenarioID)
		}
		if m.PlayerID != "" {
			c.evictLocal(c.keysByPlayer, m.PlayerID)
		}
	}
}

// Key builds a deterministic cache key from a prefix and ordered parts, the
// way internal/draft's saveState builds "draft:state:<id>" keys.
func Key(prefix string, parts ...string) string {
	if len(parts) == 0 {
		return prefix
	}
	return prefix + ":" + strings.Join(parts, ":")
}

package infrastructure

import (
	"context"
	"strings"
	"sync"
	"time"
)

type cacheEntry[V any] struct {
	value      V
	expiration time.Time
}

// cacheShard un segment du cache protégé par son propre verrou
type cacheShard[V any] struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry[V]
}

// TTLCache cache en mémoire avec expiration et sharding (moins de contention
// entre requêtes HTTP concurrentes). L'expiration est paresseuse: une entrée
// expirée n'est plus visible et disparaît au prochain Sweep.
type TTLCache[V any] struct {
	shards    []*cacheShard[V]
	shardMask uint32
	ttl       time.Duration
	now       func() time.Time
}

// NewTTLCache crée un cache; shardCount doit être une puissance de 2
func NewTTLCache[V any](shardCount int, ttl time.Duration) *TTLCache[V] {
	if shardCount <= 0 || (shardCount&(shardCount-1)) != 0 {
		panic("shardCount must be a power of 2")
	}

	shards := make([]*cacheShard[V], shardCount)
	for i := range shards {
		shards[i] = &cacheShard[V]{entries: make(map[string]cacheEntry[V])}
	}
	return &TTLCache[V]{
		shards:    shards,
		shardMask: uint32(shardCount - 1),
		ttl:       ttl,
		now:       time.Now,
	}
}

func (c *TTLCache[V]) shard(key string) *cacheShard[V] {
	return c.shards[fnv32(key)&c.shardMask]
}

// Get récupère une valeur non expirée
func (c *TTLCache[V]) Get(key string) (V, bool) {
	s := c.shard(key)
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok || c.now().After(entry.expiration) {
		var zero V
		return zero, false
	}
	return entry.value, true
}

// Set ajoute ou remplace une valeur avec le TTL du cache
func (c *TTLCache[V]) Set(key string, value V) {
	s := c.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = cacheEntry[V]{value: value, expiration: c.now().Add(c.ttl)}
}

// Delete supprime une entrée
func (c *TTLCache[V]) Delete(key string) {
	s := c.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
}

// DeletePrefix supprime toutes les entrées dont la clé commence par prefix
func (c *TTLCache[V]) DeletePrefix(prefix string) int {
	removed := 0
	for _, s := range c.shards {
		s.mu.Lock()
		for key := range s.entries {
			if strings.HasPrefix(key, prefix) {
				delete(s.entries, key)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}

// Clear vide tous les shards
func (c *TTLCache[V]) Clear() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.entries = make(map[string]cacheEntry[V])
		s.mu.Unlock()
	}
}

// Sweep supprime les entrées expirées et retourne leur nombre
func (c *TTLCache[V]) Sweep() int {
	now := c.now()
	removed := 0
	for _, s := range c.shards {
		s.mu.Lock()
		for key, entry := range s.entries {
			if now.After(entry.expiration) {
				delete(s.entries, key)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}

// RunSweeper appelle Sweep toutes les interval jusqu'à l'annulation de ctx.
// onSweep (optionnel) reçoit le nombre d'entrées supprimées quand il est non nul.
func (c *TTLCache[V]) RunSweeper(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := c.Sweep(); removed > 0 && onSweep != nil {
				onSweep(removed)
			}
		}
	}
}

// Len nombre d'entrées stockées (expirées comprises tant que Sweep n'est pas passé)
func (c *TTLCache[V]) Len() int {
	n := 0
	for _, s := range c.shards {
		s.mu.RLock()
		n += len(s.entries)
		s.mu.RUnlock()
	}
	return n
}

// fnv32 calcule un hash FNV-1a 32-bit pour le sharding
func fnv32(key string) uint32 {
	hash := uint32(2166136261)
	const prime32 = uint32(16777619)
	for i := 0; i < len(key); i++ {
		hash ^= uint32(key[i])
		hash *= prime32
	}
	return hash
}

// CacheKeyBuilder aide à construire des clés de cache cohérentes ("summary:2025-10-23")
type CacheKeyBuilder struct {
	parts []string
}

// NewCacheKeyBuilder crée un nouveau builder de clé
func NewCacheKeyBuilder(namespace string) *CacheKeyBuilder {
	return &CacheKeyBuilder{parts: []string{namespace}}
}

// Add ajoute une partie à la clé
func (b *CacheKeyBuilder) Add(part string) *CacheKeyBuilder {
	b.parts = append(b.parts, part)
	return b
}

// AddDate ajoute une date au format YYYY-MM-DD
func (b *CacheKeyBuilder) AddDate(t time.Time) *CacheKeyBuilder {
	b.parts = append(b.parts, t.Format("2006-01-02"))
	return b
}

// Build construit la clé finale
func (b *CacheKeyBuilder) Build() string {
	return strings.Join(b.parts, ":")
}

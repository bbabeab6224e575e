package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Limiter decides whether one more request for key fits in the budget.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type Config struct {
	Name   string // namespaces keys, e.g. "auth" or "api"
	Limit  int    // requests per window
	Window time.Duration
}

// Memory is a per-key token bucket held in process. Each key may burst up to
// Limit and refills at Limit per Window. A bucket idle for a whole Window is
// full again, so it is dropped on the next sweep and recreated on demand.
type Memory struct {
	cfg       Config
	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
	now       func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewMemory(cfg Config) *Memory {
	return &Memory{cfg: cfg, buckets: make(map[string]*bucket), now: time.Now}
}

func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.Sub(m.lastSweep) >= m.cfg.Window {
		m.sweep(now)
	}

	b, ok := m.buckets[key]
	if !ok {
		every := m.cfg.Window / time.Duration(m.cfg.Limit)
		b = &bucket{limiter: rate.NewLimiter(rate.Every(every), m.cfg.Limit)}
		m.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1), nil
}

func (m *Memory) sweep(now time.Time) {
	for key, b := range m.buckets {
		if now.Sub(b.lastSeen) >= m.cfg.Window {
			delete(m.buckets, key)
		}
	}
	m.lastSweep = now
}

// Len reports how many keys currently hold a bucket.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buckets)
}

// Redis is a fixed-window counter shared by every instance using the same
// redis. now is injectable for tests.
type Redis struct {
	cfg    Config
	client *redis.Client
	now    func() time.Time
}

func NewRedis(client *redis.Client, cfg Config) *Redis {
	return &Redis{cfg: cfg, client: client, now: time.Now}
}

func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	window := r.now().UnixNano() / int64(r.cfg.Window)
	k := fmt.Sprintf("ratelimit:%s:%s:%d", r.cfg.Name, key, window)

	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, k)
		p.Expire(ctx, k, r.cfg.Window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit %s: %w", r.cfg.Name, err)
	}
	return incr.Val() <= int64(r.cfg.Limit), nil
}

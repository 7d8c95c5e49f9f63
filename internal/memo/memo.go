// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package memo

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/apex/log"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is used when neither the call nor the Cache specify a ttl.
const DefaultTTL = 300 * time.Second

// Observer receives cache events. Implementations must not block.
type Observer interface {
	Hit(op string)
	Miss(op string)
	Failure(op string)
}

// Stats is a snapshot of a Cache's counters.
type Stats struct {
	Hits     uint64 `json:"hits"`
	Misses   uint64 `json:"misses"`
	Failures uint64 `json:"failures"`
	Entries  int    `json:"entries"`
}

// Cache memoizes operation results for one session. The zero value is ready
// to use; its store is created on first write.
type Cache struct {
	mu       sync.Mutex
	store    Store
	ttl      time.Duration
	now      func() time.Time
	observer Observer

	sf singleflight.Group
	// gen is bumped by Clear and Invalidate, under mu, so that a fetch
	// started before the clear neither joins nor repopulates after it.
	gen atomic.Uint64

	hits     atomic.Uint64
	misses   atomic.Uint64
	failures atomic.Uint64
}

// Option customizes a Cache.
type Option func(*Cache)

// WithTTL sets the ttl applied when a call passes ttl <= 0.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// WithClock replaces time.Now. Tests use it to step time.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithStore backs the Cache with s instead of a MapStore.
func WithStore(s Store) Option {
	return func(c *Cache) { c.store = s }
}

// WithObserver forwards hit/miss/failure events to o.
func WithObserver(o Observer) Option {
	return func(c *Cache) { c.observer = o }
}

// New returns a Cache configured by opts.
func New(opts ...Option) *Cache {
	c := &Cache{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the default ttl of the cache.
func (c *Cache) TTL() time.Duration {
	if c.ttl <= 0 {
		return DefaultTTL
	}
	return c.ttl
}

// Clear discards every entry. Clearing an empty or never used cache is a
// no-op.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.gen.Add(1)
	if c.store != nil {
		c.store.Clear()
	}
	c.mu.Unlock()
	log.Debug("memo: cleared")
}

// Invalidate discards the entry for call, if any.
func (c *Cache) Invalidate(call Call) {
	key, err := call.Key()
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen.Add(1)
	if c.store != nil {
		c.store.Delete(key)
	}
}

// Len returns the number of stored entries, fresh or stale.
func (c *Cache) Len() int {
	if s := c.getStore(); s != nil {
		return s.Len()
	}
	return 0
}

// Stats returns the current counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Failures: c.failures.Load(),
		Entries:  c.Len(),
	}
}

func (c *Cache) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

func (c *Cache) getStore() Store {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store
}

func (c *Cache) hit(op string) {
	c.hits.Add(1)
	if c.observer != nil {
		c.observer.Hit(op)
	}
}

func (c *Cache) miss(op string) {
	c.misses.Add(1)
	if c.observer != nil {
		c.observer.Miss(op)
	}
}

func (c *Cache) failure(op string) {
	c.failures.Add(1)
	if c.observer != nil {
		c.observer.Failure(op)
	}
}

// lookup returns the stored value for key if it is fresh and of type T.
func lookup[T any](c *Cache, key string, ttl time.Duration) (T, bool) {
	var zero T
	s := c.getStore()
	if s == nil {
		return zero, false
	}
	e, ok := s.Get(key)
	if !ok || !e.Fresh(c.clock(), ttl) {
		return zero, false
	}
	v, ok := e.Value.(T)
	if !ok && e.Value != nil {
		return zero, false
	}
	return v, true
}

// GetOrCompute returns the memoized result of call when a fresh one exists,
// otherwise it runs fn and remembers its result for ttl. A ttl <= 0 uses
// the cache default.
//
// Errors from fn are returned unchanged and nothing is stored; an older
// stale entry for the same call is left as it was. Concurrent callers of the
// same call share a single fn invocation, which does not see their
// cancellation. A caller whose ctx is done returns ctx.Err() at once while
// the shared fetch runs on and may still fill the entry. Calls whose
// arguments cannot be encoded skip the cache entirely.
func GetOrCompute[T any](
	ctx context.Context,
	c *Cache,
	call Call,
	ttl time.Duration,
	fn func(context.Context) (T, error),
) (T, error) {
	key, err := call.Key()
	if err != nil {
		log.WithError(err).Debugf("memo: not caching %s", call.Op)
		return fn(ctx)
	}
	if ttl <= 0 {
		ttl = c.TTL()
	}

	if v, ok := lookup[T](c, key, ttl); ok {
		c.hit(call.Op)
		log.Debugf("memo: hit %s %.8s", call.Op, key)
		return v, nil
	}

	gen := c.gen.Load()
	flight := strconv.FormatUint(gen, 10) + ":" + key

	fetchCtx := context.WithoutCancel(ctx)
	ch := c.sf.DoChan(flight, func() (any, error) {
		// The key may have been filled between the lookup above and joining
		// the flight.
		if v, ok := lookup[T](c, key, ttl); ok {
			c.hit(call.Op)
			return v, nil
		}

		c.miss(call.Op)
		log.Debugf("memo: miss %s %.8s", call.Op, key)

		v, err := fn(fetchCtx)
		if err != nil {
			c.failure(call.Op)
			return nil, err
		}

		c.mu.Lock()
		if c.gen.Load() == gen {
			if c.store == nil {
				c.store = NewMapStore()
			}
			c.store.Set(key, Entry{
				Key:       key,
				Op:        call.Op,
				Value:     v,
				Timestamp: c.clock(),
			})
		}
		c.mu.Unlock()
		return v, nil
	})

	var zero T
	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v, _ := res.Val.(T)
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Memoize wraps fn so that every call goes through GetOrCompute with the
// argument as the single positional argument.
func Memoize[A, T any](
	c *Cache,
	op string,
	ttl time.Duration,
	fn func(context.Context, A) (T, error),
) func(context.Context, A) (T, error) {
	return func(ctx context.Context, arg A) (T, error) {
		return GetOrCompute(ctx, c, Call{Op: op, Args: []any{arg}}, ttl,
			func(ctx context.Context) (T, error) {
				return fn(ctx, arg)
			})
	}
}

// Memoize0 is Memoize for operations without arguments.
func Memoize0[T any](
	c *Cache,
	op string,
	ttl time.Duration,
	fn func(context.Context) (T, error),
) func(context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		return GetOrCompute(ctx, c, Call{Op: op}, ttl, fn)
	}
}

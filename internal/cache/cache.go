// Package cache is the keyed, time-stale read-through cache serving all list
// and detail queries. Concurrent reads of one key share a single in-flight
// fetch; mutations invalidate key prefixes to force the next read to refetch.
package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/barberpro/barberpro-mobile/internal/api"
	"github.com/barberpro/barberpro-mobile/internal/observability/metrics"
	"github.com/barberpro/barberpro-mobile/pkg/logging"
)

// Default staleness windows. Appointment lists change often and refetch on
// every mount; reference data is kept for longer.
const (
	StaleAppointments = 0
	StaleSlots        = 2 * time.Minute
	StalePromotion    = 5 * time.Minute
	StaleDefault      = 5 * time.Minute
	StaleCatalog      = 10 * time.Minute
)

// Fetcher loads fresh data for a key, going through the API gateway.
type Fetcher func(ctx context.Context) (any, error)

type entry struct {
	data      any
	fetchedAt time.Time
	stale     bool
	staleTime time.Duration
	fetcher   Fetcher
}

// flight is one shared in-flight fetch. Waiters beyond the initiator attach
// to the same flight instead of fetching again.
type flight struct {
	done    chan struct{}
	data    any
	err     error
	waiters int
}

// Store is the in-memory cache.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	flights map[string]*flight
	subs    map[string]int
	retries int
	logger  *logging.Logger
	metrics *metrics.CacheMetrics
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithRetries bounds how often a failed read fetch is retried. Applies to
// transport failures only; mutations are never retried here.
func WithRetries(n int) Option {
	return func(s *Store) { s.retries = n }
}

// WithMetrics enables hit/miss instrumentation.
func WithMetrics(m *metrics.CacheMetrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithClock overrides the staleness clock. Tests use this.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an empty cache.
func New(logger *logging.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	s := &Store{
		entries: make(map[string]*entry),
		flights: make(map[string]*flight),
		subs:    make(map[string]int),
		retries: 2,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key builds the composite cache key for a logical query and its parameters.
func Key(name string, params ...string) string {
	if len(params) == 0 {
		return name
	}
	return name + ":" + strings.Join(params, ":")
}

// Read returns cached data younger than staleTime, or fetches through fetch
// and stores the result. Concurrent reads of the same key share one fetch. A
// caller whose context ends abandons the read; the underlying fetch is not
// cancelled and still populates the cache.
func (s *Store) Read(ctx context.Context, key string, staleTime time.Duration, fetch Fetcher) (any, error) {
	s.mu.Lock()
	if e, ok := s.entries[key]; ok {
		e.fetcher = fetch
		e.staleTime = staleTime
		if !e.stale && s.now().Sub(e.fetchedAt) < staleTime {
			data := e.data
			s.mu.Unlock()
			s.metrics.ObserveHit(queryName(key))
			return data, nil
		}
	}
	if f, ok := s.flights[key]; ok {
		f.waiters++
		s.mu.Unlock()
		return s.wait(ctx, f)
	}
	f := &flight{done: make(chan struct{}), waiters: 1}
	s.flights[key] = f
	s.mu.Unlock()

	s.metrics.ObserveMiss(queryName(key))
	go s.run(context.WithoutCancel(ctx), key, staleTime, f, fetch)
	return s.wait(ctx, f)
}

// Invalidate marks every entry under prefix stale, forcing the next read to
// refetch even inside the staleness window. Idempotent and commutative, so
// races between mutations invalidating the same prefix are safe.
func (s *Store) Invalidate(prefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, e := range s.entries {
		if strings.HasPrefix(key, prefix) {
			e.stale = true
		}
	}
}

// Subscribe marks a key as mounted, making it eligible for foreground
// refresh. The returned func releases the subscription.
func (s *Store) Subscribe(key string) func() {
	s.mu.Lock()
	s.subs[key]++
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.subs[key] <= 1 {
				delete(s.subs, key)
			} else {
				s.subs[key]--
			}
		})
	}
}

// RefreshStale refetches every mounted, stale entry in the background. It is
// invoked on the background-to-foreground transition and never blocks the
// currently-displayed data; a failed refresh is dropped because cached data
// can still be served.
func (s *Store) RefreshStale(ctx context.Context) {
	s.mu.Lock()
	type job struct {
		key       string
		staleTime time.Duration
		fetch     Fetcher
	}
	var jobs []job
	now := s.now()
	for key := range s.subs {
		e, ok := s.entries[key]
		if !ok || e.fetcher == nil {
			continue
		}
		if e.stale || now.Sub(e.fetchedAt) >= e.staleTime {
			jobs = append(jobs, job{key: key, staleTime: e.staleTime, fetch: e.fetcher})
		}
	}
	s.mu.Unlock()

	for _, j := range jobs {
		s.metrics.ObserveRefresh(queryName(j.key))
		go func(j job) {
			s.mu.Lock()
			if e, ok := s.entries[j.key]; ok {
				e.stale = true
			}
			s.mu.Unlock()
			if _, err := s.Read(context.WithoutCancel(ctx), j.key, j.staleTime, j.fetch); err != nil {
				s.logger.Debug("foreground refresh failed", "key", j.key, "error", err)
			}
		}(j)
	}
}

// ReadAs is the typed wrapper over Store.Read.
func ReadAs[T any](ctx context.Context, s *Store, key string, staleTime time.Duration, fetch func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	v, err := s.Read(ctx, key, staleTime, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cache: key %q holds %T", key, v)
	}
	return out, nil
}

func (s *Store) run(ctx context.Context, key string, staleTime time.Duration, f *flight, fetch Fetcher) {
	var (
		data any
		err  error
	)
	for attempt := 0; attempt <= s.retries; attempt++ {
		data, err = fetch(ctx)
		if err == nil || !api.IsNetwork(err) {
			break
		}
		s.logger.Debug("read fetch failed, retrying", "key", key, "attempt", attempt, "error", err)
	}

	s.mu.Lock()
	if err == nil {
		s.entries[key] = &entry{
			data:      data,
			fetchedAt: s.now(),
			staleTime: staleTime,
			fetcher:   fetch,
		}
	}
	delete(s.flights, key)
	f.data, f.err = data, err
	s.mu.Unlock()
	close(f.done)
}

func (s *Store) wait(ctx context.Context, f *flight) (any, error) {
	select {
	case <-f.done:
		return f.data, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func queryName(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i]
	}
	return key
}

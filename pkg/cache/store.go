package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrMiss indicates no fresh entry exists for the signature.
	ErrMiss = errors.New("cache miss")
)

// FetchFunc loads the value for a signature from the backend and returns it
// together with the tags the value provides. The store calls it on miss, on
// stale reads, and for background refreshes after invalidation.
type FetchFunc func(ctx context.Context) (json.RawMessage, []Tag, error)

// Store is the single source of truth for server-derived data: a tag-indexed
// read-through cache with subscription bookkeeping. All mutation of cached
// state goes through Write and Invalidate; values returned from the store
// must be treated as read-only.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	byTag   map[Tag]map[string]*entry

	// group collapses concurrent fetches of the same signature into one
	// backend call shared by all waiters.
	group singleflight.Group

	cfg    Config
	logger zerolog.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// Config holds the store configuration.
type Config struct {
	// KeepUnusedFor is how long an entry with zero subscribers is retained
	// before the janitor evicts it.
	KeepUnusedFor time.Duration

	// JanitorInterval is how often eviction runs.
	JanitorInterval time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		KeepUnusedFor:   60 * time.Second,
		JanitorInterval: 15 * time.Second,
	}
}

// NewStore creates a store and starts its eviction janitor.
func NewStore(cfg Config) *Store {
	if cfg.KeepUnusedFor <= 0 {
		cfg.KeepUnusedFor = DefaultConfig().KeepUnusedFor
	}
	if cfg.JanitorInterval <= 0 {
		cfg.JanitorInterval = DefaultConfig().JanitorInterval
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Store{
		entries: make(map[string]*entry),
		byTag:   make(map[Tag]map[string]*entry),
		cfg:     cfg,
		logger:  log.With().Str("component", "cache").Logger(),
		ctx:     ctx,
		cancel:  cancel,
	}

	go s.janitor()

	return s
}

// Read returns the cached value for sig if it is fresh; otherwise it runs
// fetch (deduplicated across concurrent callers) and stores the result with
// the tags it provides.
//
// When a refetch fails and a previous value exists, Read returns the previous
// value together with the error, so callers can keep rendering last good
// state. The fetch itself runs detached from ctx: a caller that goes away
// mid-flight stops waiting, but the request still completes and populates
// the cache for other subscribers.
func (s *Store) Read(ctx context.Context, sig Signature, fetch FetchFunc) (json.RawMessage, error) {
	key := sig.String()

	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		// The entry must exist and carry the fetch before the first request
		// completes, so a subscriber gained in the meantime (or an
		// invalidation right after) can already trigger background refreshes.
		e = &entry{sig: sig}
		s.entries[key] = e
	}
	e.refetch = fetch
	e.lastAccess = time.Now()
	if e.fresh && e.data != nil {
		data := e.data
		s.mu.Unlock()
		storeHits.Inc()
		return data, nil
	}
	s.mu.Unlock()

	storeMisses.Inc()
	return s.fetchShared(ctx, sig, fetch)
}

// Get returns the cached value for sig without triggering a fetch.
// Returns ErrMiss if no fresh entry exists.
func (s *Store) Get(sig Signature) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[sig.String()]
	if !ok || !e.fresh || e.data == nil {
		return nil, ErrMiss
	}
	e.lastAccess = time.Now()
	return e.data, nil
}

// Write stores a successful result, re-indexes its tags and marks it fresh.
func (s *Store) Write(sig Signature, data json.RawMessage, tags []Tag) {
	key := sig.String()
	now := time.Now()

	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		e = &entry{sig: sig}
		s.entries[key] = e
	}
	s.unindex(key, e.tags)
	e.data = data
	e.tags = append([]Tag(nil), tags...)
	e.fresh = true
	e.lastErr = nil
	e.storedAt = now
	e.lastAccess = now
	s.index(key, e)
	total := len(s.entries)
	s.mu.Unlock()

	storeEntries.Set(float64(total))
}

// Invalidate marks every entry whose provided tags intersect tags as stale
// and returns the number of entries marked. Marking happens before Invalidate
// returns, so a caller that invalidates after a mutation and then reads the
// cache never observes pre-mutation state as fresh.
//
// Entries with at least one subscriber are refetched in the background;
// entries without subscribers stay stale until the next Read.
func (s *Store) Invalidate(tags []Tag) int {
	if len(tags) == 0 {
		return 0
	}

	type refetchJob struct {
		sig   Signature
		fetch FetchFunc
	}

	s.mu.Lock()
	marked := make(map[string]*entry)
	for _, tag := range tags {
		for key, e := range s.byTag[tag] {
			marked[key] = e
		}
	}

	var jobs []refetchJob
	for _, e := range marked {
		e.fresh = false
		if e.refs > 0 && e.refetch != nil {
			jobs = append(jobs, refetchJob{sig: e.sig, fetch: e.refetch})
		}
	}
	s.mu.Unlock()

	invalidationsTotal.Inc()
	entriesInvalidated.Add(float64(len(marked)))

	for _, j := range jobs {
		s.refetchAsync(j.sig, j.fetch, "invalidate")
	}

	if len(marked) > 0 {
		s.logger.Debug().
			Int("entries", len(marked)).
			Int("refetching", len(jobs)).
			Msg("Invalidated cache entries")
	}

	return len(marked)
}

// Subscribe registers a live consumer of sig and returns its unsubscribe
// function. Subscribing to a stale entry triggers an immediate background
// refetch. Unsubscribe is idempotent; when the last subscriber goes away the
// eviction clock starts.
func (s *Store) Subscribe(sig Signature) (unsubscribe func()) {
	key := sig.String()
	now := time.Now()

	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		// Placeholder so the refcount exists before the first Read.
		e = &entry{sig: sig, lastAccess: now}
		s.entries[key] = e
	}
	e.refs++
	e.lastAccess = now
	needsRefetch := !e.fresh && e.refetch != nil
	fetch := e.refetch
	subscribers := e.refs
	s.mu.Unlock()

	subscriptionsActive.Inc()
	s.logger.Debug().
		Str("signature", key).
		Int("subscribers", subscribers).
		Msg("Subscribed")

	if needsRefetch {
		s.refetchAsync(sig, fetch, "subscribe")
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if e, ok := s.entries[key]; ok && e.refs > 0 {
				e.refs--
				if e.refs == 0 {
					e.lastAccess = time.Now()
				}
			}
			s.mu.Unlock()
			subscriptionsActive.Dec()
		})
	}
}

// Peek returns a snapshot of the entry's bookkeeping state without
// triggering a fetch.
func (s *Store) Peek(sig Signature) (EntryInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[sig.String()]
	if !ok {
		return EntryInfo{}, false
	}
	return e.snapshot(), true
}

// Len returns the number of entries currently held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close stops the janitor and any pending background refetches.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
	})
}

// fetchShared runs fetch through the singleflight group so concurrent reads
// of one signature share a single backend call. The inner fetch uses the
// store's context, not the caller's: waiters can give up individually while
// the shared request still completes.
func (s *Store) fetchShared(ctx context.Context, sig Signature, fetch FetchFunc) (json.RawMessage, error) {
	key := sig.String()

	ch := s.group.DoChan(key, func() (interface{}, error) {
		data, tags, err := fetch(s.ctx)
		if err != nil {
			s.recordFailure(sig, err)
			return nil, err
		}
		s.Write(sig, data, tags)
		return data, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			if last, ok := s.lastGood(sig); ok {
				return last, res.Err
			}
			return nil, res.Err
		}
		return res.Val.(json.RawMessage), nil
	}
}

// refetchAsync refreshes sig in the background. Failures keep the previous
// value and are recorded on the entry.
func (s *Store) refetchAsync(sig Signature, fetch FetchFunc, trigger string) {
	refetchesTotal.WithLabelValues(trigger).Inc()

	go func() {
		if _, err := s.fetchShared(s.ctx, sig, fetch); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn().
				Err(err).
				Str("signature", sig.String()).
				Str("trigger", trigger).
				Msg("Background refetch failed, keeping last good data")
		}
	}()
}

// recordFailure notes a failed fetch on the entry without touching its data.
func (s *Store) recordFailure(sig Signature, err error) {
	key := sig.String()

	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		e = &entry{sig: sig, lastAccess: time.Now()}
		s.entries[key] = e
	}
	e.lastErr = err
	e.fresh = false
	s.mu.Unlock()

	fetchErrorsTotal.Inc()
}

// lastGood returns the previous value for sig if one exists.
func (s *Store) lastGood(sig Signature) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[sig.String()]
	if !ok || e.data == nil {
		return nil, false
	}
	return e.data, true
}

func (s *Store) index(key string, e *entry) {
	for _, tag := range e.tags {
		set, ok := s.byTag[tag]
		if !ok {
			set = make(map[string]*entry)
			s.byTag[tag] = set
		}
		set[key] = e
	}
}

func (s *Store) unindex(key string, tags []Tag) {
	for _, tag := range tags {
		if set, ok := s.byTag[tag]; ok {
			delete(set, key)
			if len(set) == 0 {
				delete(s.byTag, tag)
			}
		}
	}
}

// janitor evicts entries that have had zero subscribers for longer than the
// retention window.
func (s *Store) janitor() {
	ticker := time.NewTicker(s.cfg.JanitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.evictIdle()
		}
	}
}

func (s *Store) evictIdle() {
	now := time.Now()

	s.mu.Lock()
	var evicted int
	for key, e := range s.entries {
		if e.evictable(now, s.cfg.KeepUnusedFor) {
			s.unindex(key, e.tags)
			delete(s.entries, key)
			evicted++
		}
	}
	total := len(s.entries)
	s.mu.Unlock()

	if evicted > 0 {
		entriesEvicted.Add(float64(evicted))
		storeEntries.Set(float64(total))
		s.logger.Debug().
			Int("evicted", evicted).
			Int("remaining", total).
			Msg("Evicted idle cache entries")
	}
}

// DecodeInto unmarshals a stored value into v. Helper for callers that work
// with typed results on top of the raw store.
func DecodeInto(data json.RawMessage, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode cached value: %w", err)
	}
	return nil
}

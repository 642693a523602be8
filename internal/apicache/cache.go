// Package apicache deduplicates and caches backend reads and coordinates
// writes with tag-based invalidation.
//
// Reads are held as entries keyed by (endpoint, argument). Handlers subscribe
// to an entry for as long as they need its data; an entry with no subscribers
// is collected after KeepUnusedDataFor. A mutation names the tags it
// invalidates and every entry provided under those tags is marked stale:
// subscribed entries refetch at once, the rest refetch on next subscription.
package apicache

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultKeepUnusedDataFor matches the usual client cache default of one minute.
const DefaultKeepUnusedDataFor = 60 * time.Second

// Tag labels cached reads so writes can invalidate them.
type Tag string

// Key identifies a cache entry. Scope separates reads made under different
// credentials so one caller never receives another's payload.
type Key struct {
	Endpoint string
	Arg      string
	Scope    string
}

func (k Key) String() string {
	s := k.Endpoint + "(" + k.Arg + ")"
	if k.Scope != "" {
		s += "@" + k.Scope
	}

	return s
}

// Fetcher performs the network read of an entry and returns the unwrapped payload.
type Fetcher func(ctx context.Context) (json.RawMessage, error)

// Status is the outcome of the most recent settled fetch of an entry.
type Status int

const (
	StatusUninitialized Status = iota
	StatusFulfilled
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusFulfilled:
		return "fulfilled"
	case StatusRejected:
		return "rejected"
	default:
		return "uninitialized"
	}
}

// State is a snapshot of an entry as seen by a subscriber.
type State struct {
	Data        json.RawMessage
	Err         error
	Status      Status
	IsLoading   bool // fetching with nothing to show yet
	IsFetching  bool
	IsSuccess   bool
	IsError     bool
	IsStale     bool
	FulfilledAt time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithKeepUnusedDataFor sets how long an entry outlives its last subscriber.
// Zero or less collects it immediately.
func WithKeepUnusedDataFor(d time.Duration) Option {
	return func(c *Cache) {
		c.keepUnused = d
	}
}

// WithResponseStore installs a shared second-level store.
func WithResponseStore(store ResponseStore) Option {
	return func(c *Cache) {
		if store != nil {
			c.store = store
		}
	}
}

// WithLogger sets the cache logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Cache is the process-wide query cache. It is safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	entries  map[Key]*entry
	tagIndex map[Tag]map[Key]struct{}
	seq      uint64
	// tagGen counts invalidations per tag. A fetch started under an older
	// generation of any of its tags must not be saved or reported fresh.
	tagGen  map[Tag]uint64
	flights map[uint64]flight
	// storeMu orders shared store writes against invalidation: Save holds it
	// shared, Invalidate exclusively.
	storeMu sync.RWMutex

	group      singleflight.Group
	store      ResponseStore
	keepUnused time.Duration
	logger     *slog.Logger
}

// flight is a network read that has not settled yet. It outlives its entry
// when the entry is collected mid-request.
type flight struct {
	key  Key
	tags []Tag
}

type entry struct {
	key   Key
	tags  []Tag
	fetch Fetcher
	ctx   context.Context

	data        json.RawMessage
	err         error
	status      Status
	fulfilledAt time.Time
	stale       bool

	inflight bool
	fetchID  uint64
	done     chan struct{}

	subscribers int
	gcTimer     *time.Timer
}

// New returns an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:    make(map[Key]*entry),
		tagIndex:   make(map[Tag]map[Key]struct{}),
		tagGen:     make(map[Tag]uint64),
		flights:    make(map[uint64]flight),
		store:      NoopStore{},
		keepUnused: DefaultKeepUnusedDataFor,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Subscribe registers interest in key, starting a fetch when the entry is new,
// stale or last failed. Concurrent subscribers of one key share a single
// in-flight request. The caller must Unsubscribe.
func (c *Cache) Subscribe(ctx context.Context, key Key, tags []Tag, fetch Fetcher) *Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		e = c.addEntryLocked(key, tags)
	}
	e.fetch = fetch
	e.ctx = context.WithoutCancel(ctx)
	e.subscribers++
	if e.gcTimer != nil {
		e.gcTimer.Stop()
		e.gcTimer = nil
	}

	if !e.inflight && (e.status != StatusFulfilled || e.stale) {
		c.startFetchLocked(e, e.stale)
	}

	return &Subscription{cache: c, entry: e}
}

// Invalidate marks every entry provided under tags as stale. Reads still in
// flight for those tags, including ones whose entry was already collected,
// are detached so later subscribers issue a new request.
func (c *Cache) Invalidate(ctx context.Context, tags ...Tag) {
	if len(tags) == 0 {
		return
	}

	c.storeMu.Lock()
	defer c.storeMu.Unlock()

	c.mu.Lock()
	for _, tag := range tags {
		c.tagGen[tag]++
	}
	for _, f := range c.flights {
		if sharesTag(f.tags, tags) {
			c.group.Forget(f.key.String())
		}
	}
	for _, tag := range tags {
		for key := range c.tagIndex[tag] {
			e := c.entries[key]
			if e == nil {
				continue
			}

			e.stale = true
			// An in-flight read settles against the new generation and refetches then.
			if !e.inflight && e.subscribers > 0 {
				c.startFetchLocked(e, true)
			}
		}
	}
	c.mu.Unlock()

	if err := c.store.Invalidate(ctx, tags); err != nil {
		c.logger.Warn("Failed to invalidate shared response store", slog.Any("tags", tags), slog.Any("error", err))
	}

	c.logger.Debug("Invalidated cache tags", slog.Any("tags", tags))
}

func sharesTag(a, b []Tag) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}

	return false
}

func (c *Cache) genLocked(tags []Tag) uint64 {
	var gen uint64
	for _, tag := range tags {
		gen += c.tagGen[tag]
	}

	return gen
}

func (c *Cache) isCurrent(tags []Tag, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.genLocked(tags) == gen
}

// Mutate runs a write and, when it succeeds, invalidates tags. Writes are
// never cached or deduplicated.
func (c *Cache) Mutate(ctx context.Context, tags []Tag, do Fetcher) (json.RawMessage, error) {
	data, err := do(ctx)
	if err != nil {
		return nil, err
	}

	c.Invalidate(ctx, tags...)

	return data, nil
}

// Snapshot returns the state of key without subscribing.
func (c *Cache) Snapshot(key Key) (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return State{}, false
	}

	return e.stateLocked(), true
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

func (c *Cache) addEntryLocked(key Key, tags []Tag) *entry {
	e := &entry{key: key, tags: tags}
	c.entries[key] = e
	for _, tag := range tags {
		keys, ok := c.tagIndex[tag]
		if !ok {
			keys = make(map[Key]struct{})
			c.tagIndex[tag] = keys
		}
		keys[key] = struct{}{}
	}

	return e
}

func (c *Cache) removeEntryLocked(e *entry) {
	if c.entries[e.key] != e {
		return
	}
	delete(c.entries, e.key)

	for _, tag := range e.tags {
		keys := c.tagIndex[tag]
		delete(keys, e.key)
		if len(keys) == 0 {
			delete(c.tagIndex, tag)
		}
	}
	if e.gcTimer != nil {
		e.gcTimer.Stop()
		e.gcTimer = nil
	}
}

func (c *Cache) scheduleCollectLocked(e *entry) {
	if e.subscribers > 0 || e.gcTimer != nil {
		return
	}
	if c.keepUnused <= 0 {
		c.removeEntryLocked(e)

		return
	}

	e.gcTimer = time.AfterFunc(c.keepUnused, func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		if e.subscribers == 0 {
			e.gcTimer = nil
			c.removeEntryLocked(e)
		}
	})
}

// startFetchLocked issues the entry's fetch. The transport call is detached
// from subscriber cancellation so a result arriving after the last subscriber
// left still populates the cache.
func (c *Cache) startFetchLocked(e *entry, bypassStore bool) {
	c.seq++
	id := c.seq
	done := make(chan struct{})

	e.inflight = true
	e.fetchID = id
	e.done = done

	key, tags, fetch, ctx := e.key, e.tags, e.fetch, e.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	gen := c.genLocked(tags)
	c.flights[id] = flight{key: key, tags: tags}

	ch := c.group.DoChan(key.String(), func() (any, error) {
		return c.load(ctx, key, tags, gen, fetch, bypassStore)
	})

	go c.settle(key, tags, id, gen, done, ch)
}

func (c *Cache) load(ctx context.Context, key Key, tags []Tag, gen uint64, fetch Fetcher, bypassStore bool) (json.RawMessage, error) {
	if !bypassStore {
		data, ok, err := c.store.Load(ctx, key)
		if err != nil {
			c.logger.Warn("Shared response store read failed", slog.String("key", key.String()), slog.Any("error", err))
		} else if ok {
			return data, nil
		}
	}

	data, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	c.storeMu.RLock()
	defer c.storeMu.RUnlock()

	if !c.isCurrent(tags, gen) {
		c.logger.Debug("Dropping superseded response", slog.String("key", key.String()))

		return data, nil
	}
	if err := c.store.Save(ctx, key, tags, data); err != nil {
		c.logger.Warn("Shared response store write failed", slog.String("key", key.String()), slog.Any("error", err))
	}

	return data, nil
}

func (c *Cache) settle(key Key, tags []Tag, id, gen uint64, done chan struct{}, ch <-chan singleflight.Result) {
	res := <-ch

	c.mu.Lock()
	defer c.mu.Unlock()
	defer close(done)

	delete(c.flights, id)
	current := c.genLocked(tags) == gen

	e, ok := c.entries[key]
	if !ok {
		// Collected while in flight: keep a successful, still current result
		// for later subscribers.
		if res.Err != nil || !current {
			return
		}
		e = c.addEntryLocked(key, tags)
		e.data, _ = res.Val.(json.RawMessage)
		e.status = StatusFulfilled
		e.fulfilledAt = time.Now()
		c.scheduleCollectLocked(e)

		return
	}

	if e.fetchID != id {
		return
	}

	e.inflight = false
	if res.Err != nil {
		e.err = res.Err
		e.status = StatusRejected
		c.logger.Debug("Cache fetch failed", slog.String("key", key.String()), slog.Any("error", res.Err))
	} else {
		e.data, _ = res.Val.(json.RawMessage)
		e.err = nil
		e.status = StatusFulfilled
		e.fulfilledAt = time.Now()
	}

	switch {
	case !current:
		e.stale = true
		if e.subscribers > 0 {
			c.startFetchLocked(e, true)
		}
	case res.Err == nil:
		e.stale = false
	}

	c.scheduleCollectLocked(e)
}

func (e *entry) stateLocked() State {
	return State{
		Data:        e.data,
		Err:         e.err,
		Status:      e.status,
		IsLoading:   e.inflight && e.data == nil,
		IsFetching:  e.inflight,
		IsSuccess:   e.status == StatusFulfilled,
		IsError:     e.status == StatusRejected,
		IsStale:     e.stale,
		FulfilledAt: e.fulfilledAt,
	}
}

// Subscription is one subscriber's hold on an entry.
type Subscription struct {
	cache *Cache
	entry *entry
	once  sync.Once
}

// Key returns the subscribed key.
func (s *Subscription) Key() Key {
	return s.entry.key
}

// State returns the current snapshot without waiting.
func (s *Subscription) State() State {
	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()

	return s.entry.stateLocked()
}

// Wait blocks until no fetch is in flight for the entry and returns its state.
// The returned error is only ever the context's; fetch failures are in State.Err.
func (s *Subscription) Wait(ctx context.Context) (State, error) {
	for {
		s.cache.mu.Lock()
		if !s.entry.inflight {
			st := s.entry.stateLocked()
			s.cache.mu.Unlock()

			return st, nil
		}
		done := s.entry.done
		s.cache.mu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return s.State(), ctx.Err()
		}
	}
}

// Refetch forces a network read that skips the shared store. It is a no-op
// while a fetch is already in flight.
func (s *Subscription) Refetch() {
	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()

	if s.entry.inflight {
		return
	}
	s.cache.group.Forget(s.entry.key.String())
	s.cache.startFetchLocked(s.entry, true)
}

// Unsubscribe releases the hold. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.cache.mu.Lock()
		defer s.cache.mu.Unlock()

		s.entry.subscribers--
		s.cache.scheduleCollectLocked(s.entry)
	})
}

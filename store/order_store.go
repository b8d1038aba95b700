package store

import (
	"sort"
	"sync"
	"time"

	"resto-pos/models"
)

// OrderStore is the single shared order cache. It is copy-on-write: every
// update replaces whole records and rebuilds the snapshot slice, so a
// snapshot handed to a reader is never mutated by a later write. It owns no
// durable state; it starts empty and is fully replaced on reconciliation.
type OrderStore struct {
	mu          sync.RWMutex
	orders      map[int]models.Order
	snapshot    []models.Order
	lastRefresh time.Time
	refreshing  bool
	subs        map[int]chan struct{}
	nextSub     int
}

func NewOrderStore() *OrderStore {
	return &OrderStore{
		orders:   make(map[int]models.Order),
		snapshot: []models.Order{},
		subs:     make(map[int]chan struct{}),
	}
}

// ReplaceAll atomically swaps the entire collection. Readers iterating a
// previously returned snapshot are unaffected.
func (s *OrderStore) ReplaceAll(orders []models.Order) {
	next := make(map[int]models.Order, len(orders))
	for _, o := range orders {
		next[o.ID] = o
	}

	s.mu.Lock()
	s.orders = next
	s.rebuildSnapshot()
	s.mu.Unlock()

	s.notify()
}

// UpsertOne replaces or inserts a single order by id, used when a narrower
// fetch (scan-by-code) returns fresher data than the bulk cache.
func (s *OrderStore) UpsertOne(o models.Order) {
	s.mu.Lock()
	s.orders[o.ID] = o
	s.rebuildSnapshot()
	s.mu.Unlock()

	s.notify()
}

// Snapshot returns the current point-in-time view, newest first. The slice
// is never written again by the store; callers must treat it as read-only.
func (s *OrderStore) Snapshot() []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

func (s *OrderStore) Get(id int) (models.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	return o, ok
}

func (s *OrderStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}

// MarkRefreshing sets the in-flight flag for a running pull.
func (s *OrderStore) MarkRefreshing(v bool) {
	s.mu.Lock()
	s.refreshing = v
	s.mu.Unlock()
}

// RecordRefresh stamps a completed pull and clears the in-flight flag.
func (s *OrderStore) RecordRefresh(t time.Time) {
	s.mu.Lock()
	s.lastRefresh = t
	s.refreshing = false
	s.mu.Unlock()
}

// LastRefresh returns the completion time of the most recent successful
// pull and whether a pull is currently in flight.
func (s *OrderStore) LastRefresh() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRefresh, s.refreshing
}

// Subscribe registers a change listener. The channel carries coalesced
// signals: a notification may cover several writes, and a slow consumer
// never blocks a writer.
func (s *OrderStore) Subscribe() (int, <-chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan struct{}, 1)
	s.subs[id] = ch
	return id, ch
}

func (s *OrderStore) Unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

// rebuildSnapshot must be called with the write lock held.
func (s *OrderStore) rebuildSnapshot() {
	snap := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		snap = append(snap, o)
	}
	sort.Slice(snap, func(i, j int) bool {
		if !snap[i].CreatedAt.Equal(snap[j].CreatedAt) {
			return snap[i].CreatedAt.After(snap[j].CreatedAt)
		}
		return snap[i].ID > snap[j].ID
	})
	s.snapshot = snap
}

func (s *OrderStore) notify() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

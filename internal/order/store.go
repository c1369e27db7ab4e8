package order

import (
	"sort"
	"sync"
)

// Store holds pending orders in process memory, keyed by order code.
// All accessors work on copies so callers can never mutate shared state
// outside the lock; use Update for in-place changes.
type Store struct {
	mu     sync.RWMutex
	orders map[string]*PendingOrder
}

func NewStore() *Store {
	return &Store{orders: make(map[string]*PendingOrder)}
}

func (s *Store) Save(o *PendingOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.OrderCode] = o.clone()
}

// Get returns a copy of the order, or nil when absent.
func (s *Store) Get(code string) *PendingOrder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[code]
	if !ok {
		return nil
	}
	return o.clone()
}

func (s *Store) Has(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.orders[code]
	return ok
}

// Update applies mutate to the stored order under the write lock and
// returns a copy of the result, or nil when the order is gone.
func (s *Store) Update(code string, mutate func(*PendingOrder)) *PendingOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[code]
	if !ok {
		return nil
	}
	mutate(o)
	return o.clone()
}

// Remove deletes the order and returns a copy of what was removed, or
// nil when nothing was there.
func (s *Store) Remove(code string) *PendingOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[code]
	if !ok {
		return nil
	}
	delete(s.orders, code)
	return o.clone()
}

// ListAll returns copies of every pending order, newest first.
func (s *Store) ListAll() []*PendingOrder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*PendingOrder, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}

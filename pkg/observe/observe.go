// Package observe provides a minimal publish/subscribe subject used by the
// stores to notify views of state changes.
package observe

import "sync"

// Subject fans out values to subscribers in registration order.
type Subject[T any] struct {
	// pub orders Update calls so subscribers see states in mutation order.
	pub sync.Mutex

	mu     sync.RWMutex
	nextID int
	order  []int
	subs   map[int]func(T)
}

// Subscribe registers fn and returns a function that removes it.
func (s *Subject[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subs == nil {
		s.subs = make(map[int]func(T))
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.order = append(s.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			for i, v := range s.order {
				if v == id {
					s.order = append(s.order[:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Publish delivers v to every current subscriber. Subscribers run outside
// the lock so they may subscribe or unsubscribe.
func (s *Subject[T]) Publish(v T) {
	s.mu.RLock()
	fns := make([]func(T), 0, len(s.order))
	for _, id := range s.order {
		fns = append(fns, s.subs[id])
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Update runs apply and publishes its result before any later Update can
// apply. Stores call it with a function that mutates their state under their
// own lock and returns a copy. A subscriber must not call back into an
// Update of the same subject.
func (s *Subject[T]) Update(apply func() T) T {
	v, _ := s.UpdateIf(func() (T, bool) { return apply(), true })
	return v
}

// UpdateIf is Update for mutations that may turn out to be no-ops. Nothing is
// published when apply reports no change.
func (s *Subject[T]) UpdateIf(apply func() (T, bool)) (T, bool) {
	s.pub.Lock()
	defer s.pub.Unlock()
	v, changed := apply()
	if changed {
		s.Publish(v)
	}
	return v, changed
}

// Len returns the number of subscribers.
func (s *Subject[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// Package notify holds triggered alerts for the session and delivers them
// to outbound channels.
package notify

import (
	"sync"

	"market-alerts/internal/models"
)

// Sink is the in-memory queue of triggered alerts. Records are unique by ID
// and kept in append order.
type Sink struct {
	mu    sync.RWMutex
	items []models.TriggeredAlert
}

// NewSink creates an empty sink.
func NewSink() *Sink {
	return &Sink{}
}

// Append adds t unless a record with the same ID is already held.
// It reports whether t was added.
func (s *Sink) Append(t models.TriggeredAlert) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexLocked(t.ID) >= 0 {
		return false
	}
	s.items = append(s.items, t)
	return true
}

// Dismiss removes the record with id. It reports whether one was removed.
func (s *Sink) Dismiss(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return true
}

// ClearAll empties the sink and returns how many records were dropped.
func (s *Sink) ClearAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.items)
	s.items = nil
	return n
}

// List returns a copy of the held records in append order.
func (s *Sink) List() []models.TriggeredAlert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.TriggeredAlert, len(s.items))
	copy(out, s.items)
	return out
}

// Get returns the record with id.
func (s *Sink) Get(id string) (models.TriggeredAlert, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexLocked(id); i >= 0 {
		return s.items[i], true
	}
	return models.TriggeredAlert{}, false
}

// Contains reports whether a record with id is held.
func (s *Sink) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexLocked(id) >= 0
}

// Len returns the number of held records.
func (s *Sink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Sink) indexLocked(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

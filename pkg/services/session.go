package services

import (
	"sort"
	"sync"
)

// Session is an in-memory session bag.
type Session struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewSession creates a session seeded with values.
func NewSession(values map[string]any) *Session {
	s := &Session{values: make(map[string]any, len(values))}
	for key, value := range values {
		s.values[key] = value
	}
	return s
}

// Get returns the value stored under key, or the first default.
func (s *Session) Get(key string, defaults ...any) any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if value, ok := s.values[key]; ok {
		return value
	}
	if len(defaults) > 0 {
		return defaults[0]
	}
	return nil
}

func (s *Session) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
}

func (s *Session) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.values[key]
	return ok
}

func (s *Session) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
}

// Keys returns the sorted stored keys.
func (s *Session) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.values))
	for key := range s.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

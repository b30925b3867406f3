package world

import "sync"

// Sessions indexes live sessions by connection id. The listener adds and
// removes entries; everything else only reads.
type Sessions struct {
	mu   sync.RWMutex
	byID map[string]*Session
}

func NewSessions() *Sessions {
	return &Sessions{byID: make(map[string]*Session)}
}

func (s *Sessions) Add(sess *Session) {
	s.mu.Lock()
	s.byID[sess.ID()] = sess
	s.mu.Unlock()
}

func (s *Sessions) Remove(connID string) {
	s.mu.Lock()
	delete(s.byID, connID)
	s.mu.Unlock()
}

// Get returns the session for a connection id, or nil.
func (s *Sessions) Get(connID string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byID[connID]
}

func (s *Sessions) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

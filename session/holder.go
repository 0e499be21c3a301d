package session

import "sync"

// Holder is the single owner of the current session. The zero value holds no session.
type Holder struct {
	mu      sync.RWMutex
	current *Session
}

// Load returns a copy of the current session and whether one is set.
func (h *Holder) Load() (Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.current == nil {
		return Session{}, false
	}
	return *h.current, true
}

// Store replaces the current session.
func (h *Holder) Store(s Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	cp := s
	h.current = &cp
}

// Clear drops the current session. It reports whether a session was set.
func (h *Holder) Clear() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	had := h.current != nil
	h.current = nil
	return had
}

// Active reports whether a session with a user identifier is set.
func (h *Holder) Active() bool {
	s, ok := h.Load()
	return ok && s.HasID()
}

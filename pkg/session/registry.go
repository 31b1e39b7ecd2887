package session

import "sync"

type RegistryError string

func (e RegistryError) Error() string { return string(e) }

// ErrSessionExists is returned by Create when the key already has a live
// session. Callers check before constructing an engine instance.
const ErrSessionExists RegistryError = "session already exists for key"

// Registry is the process-wide keyed store of live sessions. Commands are
// handled to completion one at a time, so check-then-create is race-free;
// the mutex covers the timer and reaper goroutines that also read it.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Create registers a session under its key. Fails with ErrSessionExists if
// the key already maps to a live session.
func (r *Registry) Create(key string, s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessions[key] != nil {
		return ErrSessionExists
	}
	r.sessions[key] = s
	return nil
}

// Get returns the session for key, or nil.
func (r *Registry) Get(key string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[key]
}

// Clear removes the mapping for key. Idempotent.
func (r *Registry) Clear(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, key)
}

// All returns a snapshot of the live sessions.
func (r *Registry) All() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

package session

import (
	"sync"

	"github.com/pkg/errors"
)

// ErrDuplicateConnect is returned by Registry.Create when hostname:service
// already names a live session (spec.md section 7 "DuplicateConnect").
var ErrDuplicateConnect = errors.New("session: host:service already bound to a live session")

// Registry is the process-wide, coarsely-locked session table (spec.md
// section 5: "a short coarse lock over the top-level session registry
// during session creation, destruction, and lookup"), grounded on the
// teacher's static sessions array + counter idiom generalized to a map.
type Registry struct {
	mu      sync.Mutex
	byID    map[uint16]*Session
	byAddr  map[string]*Session
	counter uint16
}

// NewRegistry returns an empty session registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:   make(map[uint16]*Session),
		byAddr: make(map[string]*Session),
	}
}

func addrKey(hostname, service string) string { return hostname + ":" + service }

// Create allocates a new session id and registers s under it and under
// its hostname:service key, failing with ErrDuplicateConnect if that
// key is already bound.
func (r *Registry) Create(hostname, service string, build func(id uint16) *Session) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := addrKey(hostname, service)
	if _, ok := r.byAddr[key]; ok {
		return nil, ErrDuplicateConnect
	}
	r.counter++
	id := r.counter
	s := build(id)
	r.byID[id] = s
	r.byAddr[key] = s
	return s, nil
}

// Lookup finds a session by id.
func (r *Registry) Lookup(id uint16) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	return s, ok
}

// LookupAddr finds a session by hostname:service.
func (r *Registry) LookupAddr(hostname, service string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byAddr[addrKey(hostname, service)]
	return s, ok
}

// Remove destroys a session's registry entries. The session's own
// queues/history are the caller's responsibility to drain first
// (spec.md section 5: "both queues are destroyed... atomically").
func (r *Registry) Remove(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, s.ID)
	delete(r.byAddr, addrKey(s.Hostname, s.Service))
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// Package session implements the per-peer Session and its process-wide
// Registry (spec.md section 3 "Session", section 5 "Concurrency").
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/versenet/verse/internal/history"
	"github.com/versenet/verse/internal/queue"
)

// State is the lifecycle state of a Session.
type State int

const (
	StateConnecting State = iota
	StateActive
	StateTerminating
	StateTerminated
)

// Transport flags negotiated at connect time (spec.md section 6).
type TransportFlags uint8

const (
	FlagTCP TransportFlags = 1 << iota
	FlagTLS
	FlagUDP
	FlagDTLS
)

// FPS holds the three-way frame-rate negotiation state described in
// spec.md section 4.5 ("Negotiation for FPS").
type FPS struct {
	Self          float32
	Peer          float32
	HostDesired   float32
	ConfirmPending bool
}

// Session owns one peer's inbound/outbound queues, sent-packet
// history, connection parameters, and lifecycle state. All mutable
// fields are guarded by mu; the acquisition order is always session
// mutex first, per spec.md section 5.
type Session struct {
	mu sync.Mutex

	ID       uint16
	UserID   uint16
	AvatarID uint32

	// TraceID correlates this session's log lines and metrics across a
	// process restart, since the wire-level uint16 ID is reused once a
	// session closes (spec.md section 6's session id is a small counter,
	// not a globally unique value).
	TraceID uuid.UUID

	Hostname string
	Service  string
	Flags    TransportFlags

	Inbound  *queue.Inbound
	Outbound *queue.Outbound
	History  *history.History

	FPSState FPS

	state        State
	lastActivity time.Time

	// MaxOutboundBytes optionally bounds the outbound queue's
	// aggregate size (spec.md section 6's "in/out queue max/free"
	// session parameter); 0 disables enforcement.
	MaxOutboundBytes int

	// clientInfoSet resolves the open question of whether
	// set_client_info may be called more than once: it may not — the
	// first call wins and later calls are rejected (see api.Client).
	clientInfoSet bool
}

// MarkClientInfoSet records that set_client_info has been applied to
// this session, and reports whether it was already set (the caller
// should treat true as a rejected, no-op second call).
func (s *Session) MarkClientInfoSet() (alreadySet bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clientInfoSet {
		return true
	}
	s.clientInfoSet = true
	return false
}

// New creates a Session in the Connecting state.
func New(id, userID uint16, avatarID uint32, hostname, service string, flags TransportFlags, maxOutboundBytes int) *Session {
	return &Session{
		ID:               id,
		UserID:           userID,
		AvatarID:         avatarID,
		TraceID:          uuid.New(),
		Hostname:         hostname,
		Service:          service,
		Flags:            flags,
		Inbound:          queue.NewInbound(),
		Outbound:         queue.NewOutbound(maxOutboundBytes),
		History:          history.New(),
		state:            StateConnecting,
		lastActivity:     time.Now(),
		MaxOutboundBytes: maxOutboundBytes,
	}
}

// Touch records traffic activity, resetting the inactivity timer used
// for the 30-second timeout (spec.md section 5 "Cancellation and
// timeouts").
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = time.Now()
}

// Idle reports how long it has been since the last recorded activity.
func (s *Session) Idle() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.lastActivity)
}

// State reports the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetState transitions the session's lifecycle state.
func (s *Session) SetState(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
}

// SetFPS records a peer FPS change and arms the confirm-pending flag,
// per spec.md section 4.5's negotiation rules.
func (s *Session) SetFPS(peer float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FPSState.Peer = peer
	s.FPSState.ConfirmPending = true
}

// ConfirmFPS clears the confirm-pending flag once the peer's desired
// rate matches the host's and the confirmation has been sent.
func (s *Session) ConfirmFPS() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FPSState.Peer == s.FPSState.HostDesired {
		s.FPSState.ConfirmPending = false
	}
}

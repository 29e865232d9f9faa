// Package api is the producer-facing surface: Client, Dispatcher, and
// the typed constructors for the create/destroy/subscribe/set command
// families (spec.md section 6 "Producer API (abstract)").
package api

import (
	"github.com/versenet/verse/internal/protocol"
	"github.com/versenet/verse/internal/session"
)

// Handler receives one decoded inbound command for a given opcode.
type Handler func(cmd protocol.Command)

// Dispatcher is the explicit, application-driven callback registry
// named in spec.md section 9: "an explicit Dispatcher the application
// drives with an update() call that drains the inbound queue
// synchronously. No hidden threads call user code." It generalizes the
// teacher's EventManager from per-game-event types to per-opcode
// commands.
type Dispatcher struct {
	handlers map[protocol.Opcode][]Handler
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[protocol.Opcode][]Handler)}
}

// RegisterCallback attaches h as a callback for commands of opcode op.
// Multiple callbacks for the same opcode are all invoked, in
// registration order.
func (d *Dispatcher) RegisterCallback(op protocol.Opcode, h Handler) {
	d.handlers[op] = append(d.handlers[op], h)
}

// Update drains sess's inbound queue synchronously, invoking every
// registered callback for each command's opcode on the calling
// goroutine. The session's worker never calls this itself (spec.md
// section 5 "Suspension points").
func (d *Dispatcher) Update(sess *session.Session) {
	for {
		cmd, ok := sess.Inbound.Pop()
		if !ok {
			return
		}
		for _, h := range d.handlers[cmd.Opcode] {
			h(cmd)
		}
	}
}

package history

import (
	"sync"

	"github.com/versenet/verse/internal/protocol"
	"github.com/versenet/verse/internal/queue"
)

// entry is one command's position in per-opcode sent-command history,
// keyed by (opcode, address). It is the "hashed linked list" node of
// v_history.c's cmd_hist table.
type entry struct {
	cmd  protocol.Command
	prio byte
	sc   *SentCommand
}

// SentCommand is one command transmitted as part of a SentPacket. Once
// entry is nil the command has been obsoleted by a newer equi-
// addressed send and must not be resent (spec.md section 3
// "SentCommand / SentPacket").
type SentCommand struct {
	entry *entry
}

// SentPacket records one transmitted wire packet and the commands it
// carried.
type SentPacket struct {
	id   uint32
	cmds []*SentCommand
}

// History is the per-session sent-packet/sent-command ledger (spec.md
// sections 3 and 4.4).
type History struct {
	mu          sync.Mutex
	packets     map[uint32]*SentPacket
	index       map[protocol.Opcode]map[string]*entry
	outstanding int
}

// New returns an empty packet history.
func New() *History {
	return &History{
		packets: make(map[uint32]*SentPacket),
		index:   make(map[protocol.Opcode]map[string]*entry),
	}
}

// OutstandingBytes reports the aggregate payload size of commands
// currently live in history (transmitted but neither acked nor NAK'd
// away), used by invariant 6.
func (h *History) OutstandingBytes() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.outstanding
}

// AddPacket appends an empty SentPacket with the given wire id.
func (h *History) AddPacket(id uint32) *SentPacket {
	h.mu.Lock()
	defer h.mu.Unlock()
	p := &SentPacket{id: id}
	h.packets[id] = p
	return p
}

// AddCmd records one command as transmitted within packet p. If the
// opcode requests REM_DUP and an address-equal command is already
// live in history, that older command is obsoleted: its SentCommand's
// back-reference is nulled so it will not be resent, and it is
// dropped from the address index (spec.md section 4.4 "add_cmd").
func (h *History) AddCmd(p *SentPacket, cmd protocol.Command, prio byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	desc := cmd.Descriptor()
	if desc != nil && desc.RemDup() {
		if by, ok := h.index[cmd.Opcode]; ok {
			if old, ok := by[string(cmd.Address())]; ok {
				old.sc.entry = nil
				h.outstanding -= len(old.cmd.Data)
				delete(by, string(cmd.Address()))
			}
		}
	}

	e := &entry{cmd: cmd, prio: prio}
	sc := &SentCommand{entry: e}
	e.sc = sc

	by, ok := h.index[cmd.Opcode]
	if !ok {
		by = make(map[string]*entry)
		h.index[cmd.Opcode] = by
	}
	by[string(cmd.Address())] = e

	p.cmds = append(p.cmds, sc)
	h.outstanding += len(cmd.Data)
}

// detachLive removes a still-live entry's bookkeeping. Must be called
// with h.mu held.
func (h *History) detachLive(e *entry) {
	h.outstanding -= len(e.cmd.Data)
	if by, ok := h.index[e.cmd.Opcode]; ok {
		delete(by, string(e.cmd.Address()))
		if len(by) == 0 {
			delete(h.index, e.cmd.Opcode)
		}
	}
}

// RemovePacket processes an ACK for packet id: every SentCommand still
// backed by a live history entry has its bytes released and, for
// opcodes marked NeedsAck, a synthetic ack command delivered via
// ackSink (the server's own inbound queue, per spec.md section 4.4).
// Returns false if id is not present in history (a pure keep-alive
// ack, not an error).
func (h *History) RemovePacket(id uint32, ackSink func(protocol.Command)) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	p, ok := h.packets[id]
	if !ok {
		return false
	}
	for _, sc := range p.cmds {
		e := sc.entry
		if e == nil {
			continue
		}
		h.detachLive(e)
		desc := e.cmd.Descriptor()
		if ackSink != nil && desc != nil && desc.NeedsAck {
			ackSink(protocol.Command{Opcode: desc.AckFake, Data: append([]byte(nil), desc.AckPayload(e.cmd.Data)...)})
		}
		sc.entry = nil
	}
	delete(h.packets, id)
	return true
}

// ResendPacket processes a NAK for packet id: every SentCommand still
// backed by a live history entry is pushed to the head of the
// outbound queue at its original priority. push_head silently drops a
// stale resend if a newer equi-addressed command is already enqueued
// (spec.md section 4.4 "resend_packet"). The history bytes for these
// commands are released; they become outstanding again only once
// re-transmitted and re-added via a future AddCmd.
func (h *History) ResendPacket(id uint32, out *queue.Outbound) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	p, ok := h.packets[id]
	if !ok {
		return false
	}
	for _, sc := range p.cmds {
		e := sc.entry
		if e == nil {
			continue
		}
		h.detachLive(e)
		out.PushHead(e.prio, e.cmd)
		sc.entry = nil
	}
	delete(h.packets, id)
	return true
}

// PacketCount reports how many packets are currently tracked, for
// tests and diagnostics.
func (h *History) PacketCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.packets)
}

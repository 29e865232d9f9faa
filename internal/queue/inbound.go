package queue

import (
	"container/list"
	"sync"

	"github.com/versenet/verse/internal/protocol"
)

// Inbound is the per-session inbound command queue (spec.md section
// 4.2). It is a plain FIFO except for RemDup opcodes, where pushing a
// command whose (opcode, address) matches a still-resident command
// replaces that command's payload in place instead of appending —
// "at most one duplicate per address" (invariant 1).
//
// Inbound implements protocol.Pusher so it can be handed directly to
// protocol.UnpackInto.
type Inbound struct {
	mu    sync.Mutex
	items list.List
	dup   map[protocol.Opcode]map[string]*list.Element
	size  int
}

// NewInbound returns an empty inbound queue.
func NewInbound() *Inbound {
	q := &Inbound{dup: make(map[protocol.Opcode]map[string]*list.Element)}
	return q
}

// Push appends cmd to the queue, or replaces an existing same-address
// resident if cmd's opcode requests RemDup semantics.
func (q *Inbound) Push(cmd protocol.Command) {
	q.mu.Lock()
	defer q.mu.Unlock()

	desc := cmd.Descriptor()
	if desc != nil && desc.RemDup() {
		if by, ok := q.dup[cmd.Opcode]; ok {
			if elem, ok := by[string(cmd.Address())]; ok {
				old := elem.Value.(protocol.Command)
				q.size += len(cmd.Data) - len(old.Data)
				elem.Value = cmd
				return
			}
		}
	}

	elem := q.items.PushBack(cmd)
	q.size += len(cmd.Data)
	if desc != nil && desc.RemDup() {
		by, ok := q.dup[cmd.Opcode]
		if !ok {
			by = make(map[string]*list.Element)
			q.dup[cmd.Opcode] = by
		}
		by[string(cmd.Address())] = elem
	}
}

// Pop removes and returns the oldest command, or ok=false if empty.
func (q *Inbound) Pop() (cmd protocol.Command, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	front := q.items.Front()
	if front == nil {
		return protocol.Command{}, false
	}
	cmd = front.Value.(protocol.Command)
	q.items.Remove(front)
	q.size -= len(cmd.Data)

	desc := cmd.Descriptor()
	if desc != nil && desc.RemDup() {
		if by, ok := q.dup[cmd.Opcode]; ok {
			delete(by, string(cmd.Address()))
			if len(by) == 0 {
				delete(q.dup, cmd.Opcode)
			}
		}
	}
	return cmd, true
}

// Stats reports the current command count and aggregate payload bytes
// resident in the queue (spec.md section 4.2).
func (q *Inbound) Stats() (count, bytes int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len(), q.size
}

// Len reports the number of resident commands.
func (q *Inbound) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}

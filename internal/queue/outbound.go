package queue

import (
	"container/list"
	"sync"

	"github.com/versenet/verse/internal/protocol"
)

// outEntry is one resident command in a priority bucket.
type outEntry struct {
	cmd  protocol.Command
	prio byte
	run  *run // nil when this entry is not part of a share run
}

// bucket is the FIFO owned by one priority slot (spec.md section 4.3).
type bucket struct {
	list list.List
}

// Outbound is the per-session outbound command queue: an array of 256
// priority buckets plus a per-opcode address index, as described in
// spec.md section 3/4.3.
type Outbound struct {
	mu      sync.Mutex
	buckets [256]bucket
	index   map[protocol.Opcode]map[string]*list.Element
	maxSize int // 0 = unlimited
	size    int
	count   int
}

// NewOutbound returns an empty outbound queue. maxSize of 0 disables
// the optional push_tail size enforcement.
func NewOutbound(maxSize int) *Outbound {
	return &Outbound{
		index:   make(map[protocol.Opcode]map[string]*list.Element),
		maxSize: maxSize,
	}
}

// Stats reports aggregate resident command count and payload bytes.
func (q *Outbound) Stats() (count, bytes int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count, q.size
}

// nonEmptyPriorities returns, split at DefaultPriority, the
// non-empty priority slots at or above and strictly below the
// default, per spec.md section 4.3's "Priority scheduling".
func (q *Outbound) nonEmptyPriorities() (high, low []int) {
	for p := 0; p < 256; p++ {
		if q.buckets[p].list.Len() == 0 {
			continue
		}
		if p >= int(DefaultPriority) {
			high = append(high, p)
		} else {
			low = append(low, p)
		}
	}
	return high, low
}

func (q *Outbound) findResident(op protocol.Opcode, addr []byte) *list.Element {
	by, ok := q.index[op]
	if !ok {
		return nil
	}
	return by[string(addr)]
}

func (q *Outbound) indexInsert(op protocol.Opcode, addr []byte, elem *list.Element) {
	by, ok := q.index[op]
	if !ok {
		by = make(map[string]*list.Element)
		q.index[op] = by
	}
	by[string(addr)] = elem
}

func (q *Outbound) indexDelete(op protocol.Opcode, addr []byte) {
	if by, ok := q.index[op]; ok {
		delete(by, string(addr))
		if len(by) == 0 {
			delete(q.index, op)
		}
	}
}

// detach removes elem from its bucket's list and the address index,
// updating the run it belonged to (if any) and aggregate counters.
// Does not take q.mu.
func (q *Outbound) detach(b *bucket, elem *list.Element) {
	e := elem.Value.(*outEntry)
	b.list.Remove(elem)
	q.indexDelete(e.cmd.Opcode, e.cmd.Address())
	q.size -= len(e.cmd.Data)
	q.count--
	if e.run != nil {
		r := e.run
		r.count--
		r.sumDataLen -= len(e.cmd.Data)
		if r.count == 1 {
			// Free the shared record; the sole remaining member
			// degenerates back into a solo entry.
			for el := b.list.Front(); el != nil; el = el.Next() {
				if fe := el.Value.(*outEntry); fe.run == r {
					fe.run = nil
					break
				}
			}
		}
	}
}

// appendTail appends a freshly built entry to bucket b's tail, wiring
// up run metadata per spec.md section 4.3's "Run metadata maintenance".
func appendTail(b *bucket, e *outEntry) *list.Element {
	desc := e.cmd.Descriptor()
	if back := b.list.Back(); back != nil && desc != nil && desc.ShareAddr() {
		prev := back.Value.(*outEntry)
		if prev.cmd.Opcode == e.cmd.Opcode {
			if prev.run == nil {
				share := protocol.SharedPrefixLen(prev.cmd, e.cmd, desc.KeySize)
				r := &run{
					share:      share,
					count:      2,
					sumDataLen: len(prev.cmd.Data) + len(e.cmd.Data),
				}
				prev.run = r
				e.run = r
			} else {
				r := prev.run
				newShare := protocol.SharedPrefixLen(prev.cmd, e.cmd, r.share)
				if newShare < r.share {
					r.share = newShare
				}
				r.count++
				r.sumDataLen += len(e.cmd.Data)
				e.run = r
			}
		}
	}
	return b.list.PushBack(e)
}

// PushTail appends cmd to priority prio's bucket. If respectMaxSize is
// true and the queue's maxSize would be exceeded, the push is rejected
// with ErrQueueFull and cmd is dropped.
func (q *Outbound) PushTail(prio byte, cmd protocol.Command, respectMaxSize bool) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	desc := cmd.Descriptor()
	if desc == nil {
		return ErrUnknownOpcode
	}

	if desc.RemDup() {
		if elem := q.findResident(cmd.Opcode, cmd.Address()); elem != nil {
			e := elem.Value.(*outEntry)
			if e.prio == prio {
				diff := len(cmd.Data) - len(e.cmd.Data)
				if e.run != nil {
					e.run.sumDataLen += diff
				}
				q.size += diff
				e.cmd = cmd
				return nil
			}
			q.detach(&q.buckets[e.prio], elem)
		}
	}

	if respectMaxSize && q.maxSize > 0 && q.size+len(cmd.Data) > q.maxSize {
		return ErrQueueFull
	}

	e := &outEntry{cmd: cmd, prio: prio}
	elem := appendTail(&q.buckets[prio], e)
	q.indexInsert(cmd.Opcode, cmd.Address(), elem)
	q.size += len(cmd.Data)
	q.count++
	return nil
}

// PushHead pushes cmd to the front of priority prio's bucket, used for
// NAK-triggered resends (spec.md section 4.4). If a newer equi-
// addressed command is already enqueued, the resend is silently
// dropped (the live command is strictly newer on the wire already).
func (q *Outbound) PushHead(prio byte, cmd protocol.Command) {
	q.mu.Lock()
	defer q.mu.Unlock()

	desc := cmd.Descriptor()
	if desc != nil && desc.RemDup() {
		if elem := q.findResident(cmd.Opcode, cmd.Address()); elem != nil {
			return
		}
	}

	e := &outEntry{cmd: cmd, prio: prio}
	elem := q.buckets[prio].list.PushFront(e)
	q.indexInsert(cmd.Opcode, cmd.Address(), elem)
	q.size += len(cmd.Data)
	q.count++
}

// runContrib returns the non-shared byte contribution of e within its
// run (len(data) minus the run's shared prefix), or the full payload
// length when e has no run.
func runContrib(e *outEntry) int {
	if e.run == nil {
		return len(e.cmd.Data)
	}
	return len(e.cmd.Data) - e.run.share
}

// Pop removes and returns the head of priority prio's bucket along
// with run accounting, per spec.md section 4.3's pop-with-budget
// semantics. lenIn of 0 means "no budget limit". ok is false if the
// bucket is empty, or if a budget was given that cannot fit even one
// command's run-accounted share (the caller should move to the next
// priority).
func (q *Outbound) Pop(prio byte, lenIn int) (cmd protocol.Command, count, share, lenOut int, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	b := &q.buckets[prio]
	front := b.list.Front()
	if front == nil {
		return protocol.Command{}, 0, 0, 0, false
	}
	e := front.Value.(*outEntry)

	if e.run == nil {
		full := len(e.cmd.Data)
		if lenIn > 0 && lenIn < full {
			return protocol.Command{}, 0, 0, 0, false
		}
		q.detach(b, front)
		return e.cmd, 1, 0, full, true
	}

	r := e.run
	full := r.len()
	if lenIn == 0 || lenIn >= full {
		reportCount, reportShare, reportLen := r.count, r.share, full
		out := e.cmd
		q.detach(b, front)
		return out, reportCount, reportShare, reportLen, true
	}

	// Walk up to r.count members from the front, summing their run
	// contribution, to find the largest K that fits lenIn.
	overhead := 1 + r.share
	k := 0
	total := overhead
	for el := front; el != nil && k < r.count; el = el.Next() {
		ee := el.Value.(*outEntry)
		next := total + runContrib(ee)
		if next > lenIn {
			break
		}
		total = next
		k++
	}
	if k == 0 {
		return protocol.Command{}, 0, 0, 0, false
	}
	out := e.cmd
	q.detach(b, front)
	return out, k, r.share, total, true
}

// Window describes the byte allocation computed for one non-empty
// priority during a pack cycle (spec.md section 4.3, invariant 7).
type Window struct {
	Priority int
	Bytes    int
}

// AllocateWindows splits budget W across every non-empty priority,
// high and low groups separately, weighted by realPriority, per
// spec.md section 4.3's "Priority scheduling" and invariant 7.
func (q *Outbound) AllocateWindows(w int) []Window {
	q.mu.Lock()
	defer q.mu.Unlock()

	high, low := q.nonEmptyPriorities()
	var windows []Window
	windows = append(windows, allocateGroup(w, high)...)
	windows = append(windows, allocateGroup(w, low)...)
	return windows
}

func allocateGroup(w int, prios []int) []Window {
	if len(prios) == 0 {
		return nil
	}
	sum := 0.0
	for _, p := range prios {
		sum += realPriority(p)
	}
	out := make([]Window, 0, len(prios))
	for _, p := range prios {
		bytes := int(float64(w)*realPriority(p)/sum + 0.999999999)
		out = append(out, Window{Priority: p, Bytes: bytes})
	}
	return out
}

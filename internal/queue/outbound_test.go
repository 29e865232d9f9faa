package queue

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/versenet/verse/internal/protocol"
)

func nodeCreate(userID uint16, parentID, nodeID uint32, typ uint16) protocol.Command {
	w := make([]byte, 0, 12)
	put16 := func(v uint16) { w = append(w, byte(v>>8), byte(v)) }
	put32 := func(v uint32) { w = append(w, byte(v>>24), byte(v>>16), byte(v>>8), byte(v)) }
	put16(userID)
	put32(parentID)
	put32(nodeID)
	put16(typ)
	return protocol.New(protocol.NodeCreate, w)
}

// S2: four sibling node_create commands from the same user under the
// same parent share their 6-byte (user, parent) address prefix.
func TestOutboundRunSharing(t *testing.T) {
	q := NewOutbound(0)
	require.NoError(t, q.PushTail(128, nodeCreate(1001, 1, 501, 301), false))
	require.NoError(t, q.PushTail(128, nodeCreate(1001, 1, 502, 302), false))
	require.NoError(t, q.PushTail(128, nodeCreate(1001, 1, 503, 303), false))
	require.NoError(t, q.PushTail(128, nodeCreate(1001, 1, 504, 304), false))

	_, count, share, _, ok := q.Pop(128, 0)
	require.True(t, ok)
	require.Equal(t, 4, count)
	require.Equal(t, 6, share)

	for i := 0; i < 3; i++ {
		_, _, _, _, ok := q.Pop(128, 0)
		require.True(t, ok)
	}
	_, _, _, _, ok = q.Pop(128, 0)
	require.False(t, ok)
}

// S6: with commands only at priorities 129 (high group, >= default) and
// 127 (low group, < default), AllocateWindows computes each group's
// share independently against the full window budget, each group alone
// in its own split (spec.md section 4.3, invariant 7). With a single
// priority resident in each group, that priority's window is the whole
// budget: allocateGroup's denominator is the sum of realPriority over
// just that group's non-empty priorities, not a cross-group combined
// sum.
func TestOutboundPriorityWeighting(t *testing.T) {
	q := NewOutbound(0)
	require.NoError(t, q.PushTail(129, protocol.New(protocol.NodeLock, []byte{0, 0, 0, 1}), false))
	require.NoError(t, q.PushTail(127, protocol.New(protocol.NodeLock, []byte{0, 0, 0, 2}), false))

	windows := q.AllocateWindows(1024)
	require.Len(t, windows, 2)

	var w129, w127 int
	for _, w := range windows {
		switch w.Priority {
		case 129:
			w129 = w.Bytes
		case 127:
			w127 = w.Bytes
		}
	}

	require.Equal(t, 1024, w129)
	require.Equal(t, 1024, w127)
}

// With two priorities sharing the same high/low group, the group's
// budget is split proportionally to realPriority between them.
func TestOutboundPriorityWeightingWithinGroup(t *testing.T) {
	q := NewOutbound(0)
	require.NoError(t, q.PushTail(200, protocol.New(protocol.NodeLock, []byte{0, 0, 0, 1}), false))
	require.NoError(t, q.PushTail(129, protocol.New(protocol.NodeLock, []byte{0, 0, 0, 2}), false))

	windows := q.AllocateWindows(1024)
	require.Len(t, windows, 2)

	var w200, w129 int
	for _, w := range windows {
		switch w.Priority {
		case 200:
			w200 = w.Bytes
		case 129:
			w129 = w.Bytes
		}
	}

	total := realPriority(200) + realPriority(129)
	expected200 := int(1024*realPriority(200)/total + 0.999999999)
	expected129 := int(1024*realPriority(129)/total + 0.999999999)
	require.Equal(t, expected200, w200)
	require.Equal(t, expected129, w129)
}

func TestOutboundDedupSamePriorityReplacesInPlace(t *testing.T) {
	q := NewOutbound(0)
	require.NoError(t, q.PushTail(128, protocol.New(protocol.NodePriority, []byte{0, 0, 0, 1, 10}), false))
	require.NoError(t, q.PushTail(128, protocol.New(protocol.NodePriority, []byte{0, 0, 0, 1, 20}), false))

	count, _ := q.Stats()
	require.Equal(t, 1, count)

	cmd, n, _, _, ok := q.Pop(128, 0)
	require.True(t, ok)
	require.Equal(t, 1, n)
	require.Equal(t, byte(20), cmd.Data[4])
}

func TestOutboundDedupDifferentPriorityMoves(t *testing.T) {
	q := NewOutbound(0)
	require.NoError(t, q.PushTail(128, protocol.New(protocol.NodePriority, []byte{0, 0, 0, 1, 10}), false))
	require.NoError(t, q.PushTail(200, protocol.New(protocol.NodePriority, []byte{0, 0, 0, 1, 20}), false))

	_, _, _, _, ok := q.Pop(128, 0)
	require.False(t, ok)

	cmd, _, _, _, ok := q.Pop(200, 0)
	require.True(t, ok)
	require.Equal(t, byte(20), cmd.Data[4])
}

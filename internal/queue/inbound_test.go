package queue

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/versenet/verse/internal/protocol"
)

func nodeDestroy(nodeID uint32) protocol.Command {
	w := make([]byte, 4)
	w[0] = byte(nodeID >> 24)
	w[1] = byte(nodeID >> 16)
	w[2] = byte(nodeID >> 8)
	w[3] = byte(nodeID)
	return protocol.New(protocol.NodeDestroy, w)
}

// S1: repeated REM_DUP pushes collapse to one resident command.
func TestInboundDedup(t *testing.T) {
	q := NewInbound()
	q.Push(nodeDestroy(10000))
	q.Push(nodeDestroy(10000))
	q.Push(nodeDestroy(10000))

	count, _ := q.Stats()
	require.Equal(t, 1, count)

	cmd, ok := q.Pop()
	require.True(t, ok)
	require.Equal(t, protocol.NodeDestroy, cmd.Opcode)
	require.Equal(t, nodeDestroy(10000).Data, cmd.Data)

	_, ok = q.Pop()
	require.False(t, ok)
}

func TestInboundFIFOOrderWithoutDedup(t *testing.T) {
	q := NewInbound()
	first := protocol.New(protocol.NodeSubscribe, []byte{0, 0, 0, 1, 0, 0, 0, 1})
	second := protocol.New(protocol.NodeSubscribe, []byte{0, 0, 0, 2, 0, 0, 0, 1})
	q.Push(first)
	q.Push(second)

	got1, ok := q.Pop()
	require.True(t, ok)
	require.Equal(t, first.Data, got1.Data)

	got2, ok := q.Pop()
	require.True(t, ok)
	require.Equal(t, second.Data, got2.Data)
}

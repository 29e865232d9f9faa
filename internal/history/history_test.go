package history

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/versenet/verse/internal/protocol"
	"github.com/versenet/verse/internal/queue"
)

func nodePriorityCmd(nodeID uint32, prio byte) protocol.Command {
	data := []byte{byte(nodeID >> 24), byte(nodeID >> 16), byte(nodeID >> 8), byte(nodeID), prio}
	return protocol.New(protocol.NodePriority, data)
}

// S4: a NAK on a packet whose commands were obsoleted by a later,
// address-equal send must not queue a stale resend.
func TestResendObsoletedByNewerSend(t *testing.T) {
	h := New()
	out := queue.NewOutbound(0)

	p1 := h.AddPacket(1)
	h.AddCmd(p1, nodePriorityCmd(1, 10), 128)
	require.Equal(t, 5, h.OutstandingBytes())

	p2 := h.AddPacket(2)
	h.AddCmd(p2, nodePriorityCmd(1, 20), 128)
	// The node_priority(1, 10) entry was obsoleted; only the newer send's
	// 5 bytes remain outstanding.
	require.Equal(t, 5, h.OutstandingBytes())

	resent := h.ResendPacket(1, out)
	require.True(t, resent)

	count, _ := out.Stats()
	require.Equal(t, 0, count, "obsoleted command must not be resent")
	require.Equal(t, 1, h.PacketCount())

	require.True(t, h.RemovePacket(2, nil))
	require.Equal(t, 0, h.OutstandingBytes())
	require.Equal(t, 0, h.PacketCount())
}

// A NAK on a packet whose command is still live pushes it back onto the
// outbound queue at its original priority, released from history.
func TestResendStillLivePushesHead(t *testing.T) {
	h := New()
	out := queue.NewOutbound(0)

	p1 := h.AddPacket(1)
	cmd := nodePriorityCmd(7, 42)
	h.AddCmd(p1, cmd, 128)
	require.Equal(t, 5, h.OutstandingBytes())

	require.True(t, h.ResendPacket(1, out))
	require.Equal(t, 0, h.OutstandingBytes())
	require.Equal(t, 0, h.PacketCount())

	count, _ := out.Stats()
	require.Equal(t, 1, count)
	got, _, _, _, ok := out.Pop(128, 0)
	require.True(t, ok)
	require.Equal(t, cmd.Data, got.Data)
}

// An ACK for an unknown packet id is a no-op keep-alive, not an error.
func TestRemoveUnknownPacketIsNoop(t *testing.T) {
	h := New()
	require.False(t, h.RemovePacket(999, nil))
	require.False(t, h.ResendPacket(999, queue.NewOutbound(0)))
}

// RemovePacket delivers a synthetic ack command for opcodes that need
// one, carrying the descriptor's configured ack payload slice.
func TestRemovePacketDeliversSyntheticAck(t *testing.T) {
	h := New()
	p1 := h.AddPacket(1)

	w := []byte{0, 0, 0, 1, 0, 0, 0, 0xAA, 0xBB, 0xCC, 0xDD}
	cmd := protocol.New(protocol.NodeCreate, w)
	h.AddCmd(p1, cmd, 128)

	var acked []protocol.Command
	require.True(t, h.RemovePacket(1, func(c protocol.Command) { acked = append(acked, c) }))
	require.Len(t, acked, 1)
	require.Equal(t, protocol.FakeNodeCreateAck, acked[0].Opcode)
	require.Equal(t, cmd.Data[6:10], acked[0].Data)
	require.Equal(t, 0, h.OutstandingBytes())
}

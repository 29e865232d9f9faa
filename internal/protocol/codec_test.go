package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/versenet/verse/internal/wire"
)

type fifoPusher struct {
	cmds []Command
}

func (f *fifoPusher) Push(cmd Command) { f.cmds = append(f.cmds, cmd) }

func nodeCreateCmd(userID uint16, parentID, nodeID uint32, typ uint16) Command {
	w := wire.NewWriter()
	w.WriteU16(userID)
	w.WriteU32(parentID)
	w.WriteU32(nodeID)
	w.WriteU16(typ)
	return New(NodeCreate, w.Bytes())
}

// S3: pack the four S2 node_create commands into a single buffer and
// unpack them back out in order.
func TestPackUnpackRoundTripRun(t *testing.T) {
	cmds := []Command{
		nodeCreateCmd(1001, 1, 501, 301),
		nodeCreateCmd(1001, 1, 502, 302),
		nodeCreateCmd(1001, 1, 503, 303),
		nodeCreateCmd(1001, 1, 504, 304),
	}

	w := wire.NewWriter()
	// The run shares a 6-byte (user, parent) prefix, but the header can
	// carry at most MaxShare shared bytes.
	share, err := PackRun(w, cmds, 6)
	require.NoError(t, err)
	require.Equal(t, MaxShare, share)

	r := wire.NewReader(w.Bytes())
	p := &fifoPusher{}
	require.NoError(t, UnpackInto(r, p))
	require.Equal(t, 0, r.Remaining())

	require.Len(t, p.cmds, 4)
	for i, c := range p.cmds {
		require.Equal(t, cmds[i].Opcode, c.Opcode)
		require.Equal(t, cmds[i].Data, c.Data)
	}
}

// Invariant 4: round-trip identity for a variable-length STRING8
// command too, not just fixed-size ones.
func TestPackUnpackRoundTripVarLen(t *testing.T) {
	w := wire.NewWriter()
	w.WriteU32(9001)
	w.WriteU16(1)
	w.WriteU16(2)
	w.WriteString8("hello verse")
	cmd := New(TagSetString, w.Bytes())

	buf := wire.NewWriter()
	_, err := PackRun(buf, []Command{cmd}, 0)
	require.NoError(t, err)

	p := &fifoPusher{}
	require.NoError(t, UnpackInto(wire.NewReader(buf.Bytes()), p))
	require.Len(t, p.cmds, 1)
	require.Equal(t, cmd.Data, p.cmds[0].Data)
}

func TestPackRunRejectsFakeOpcode(t *testing.T) {
	w := wire.NewWriter()
	_, err := PackRun(w, []Command{New(FakeConnectAccept, []byte{0, 1, 0, 2, 0, 0, 0, 3})}, 0)
	require.ErrorIs(t, err, ErrFakeOnWire)
}

func TestPackRunRejectsUnknownOpcode(t *testing.T) {
	w := wire.NewWriter()
	_, err := PackRun(w, []Command{New(Opcode(200), []byte{1, 2, 3, 4})}, 0)
	require.ErrorIs(t, err, ErrUnknownOpcode)
}

func TestHeaderRoundTripShortAndLongForm(t *testing.T) {
	w := wire.NewWriter()
	require.NoError(t, EncodeHeader(w, 10, 2))
	require.NoError(t, EncodeHeader(w, 1000, 3))

	r := wire.NewReader(w.Bytes())
	length, share, err := DecodeHeader(r)
	require.NoError(t, err)
	require.Equal(t, 10, length)
	require.Equal(t, 2, share)

	length, share, err = DecodeHeader(r)
	require.NoError(t, err)
	require.Equal(t, 1000, length)
	require.Equal(t, 3, share)
}

func TestEncodeHeaderRejectsOverlongRun(t *testing.T) {
	w := wire.NewWriter()
	err := EncodeHeader(w, maxLongLength+1, 0)
	require.ErrorIs(t, err, ErrRunTooLong)
	require.Equal(t, 0, len(w.Bytes()))
}

func TestMessageHeaderRoundTrip(t *testing.T) {
	w := wire.NewWriter()
	WriteMessageHeader(w, MessageHeader{Version: MessageVersion, Flags: FlagTransportTCP, Length: 42})

	r := wire.NewReader(w.Bytes())
	hdr, err := ReadMessageHeader(r)
	require.NoError(t, err)
	require.Equal(t, uint8(MessageVersion), hdr.Version)
	require.Equal(t, FlagTransportTCP, hdr.Flags)
	require.Equal(t, uint32(42), hdr.Length)
}

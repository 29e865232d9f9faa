package history

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// S5: consecutive same-kind observations collapse into a single
// boundary; the list only grows at a genuine kind change.
func TestAckListCompression(t *testing.T) {
	a := NewAckList()
	a.Add(Ack, 5)
	a.Add(Ack, 6)
	a.Add(Ack, 7)
	a.Add(Nak, 8)
	a.Add(Ack, 9)
	a.Add(Ack, 10)

	got := a.Boundaries()
	require.Equal(t, []Boundary{
		{Kind: Ack, PayID: 7},
		{Kind: Nak, PayID: 8},
		{Kind: Ack, PayID: 10},
	}, got)
}

func TestAckListAdvanceANKTrimsCoveredBoundaries(t *testing.T) {
	a := NewAckList()
	a.Add(Ack, 7)
	a.Add(Nak, 8)
	a.Add(Ack, 10)

	a.AdvanceANK(7)
	require.Equal(t, []Boundary{
		{Kind: Nak, PayID: 8},
		{Kind: Ack, PayID: 10},
	}, a.Boundaries())

	a.AdvanceANK(10)
	require.Equal(t, 0, a.Len())
}

// Invariant 5: boundaries always strictly increase in pay_id and
// strictly alternate in kind.
func TestAckListBoundariesAlternateAndIncrease(t *testing.T) {
	a := NewAckList()
	a.Add(Ack, 1)
	a.Add(Nak, 2)
	a.Add(Nak, 3)
	a.Add(Ack, 4)
	a.Add(Ack, 5)
	a.Add(Nak, 6)

	bs := a.Boundaries()
	for i := 1; i < len(bs); i++ {
		require.NotEqual(t, bs[i-1].Kind, bs[i].Kind)
		require.Greater(t, bs[i].PayID, bs[i-1].PayID)
	}
}

func TestAckListStatusAt(t *testing.T) {
	a := NewAckList()
	a.Add(Ack, 7)
	a.Add(Nak, 8)
	a.Add(Ack, 10)

	kind, ok := a.StatusAt(3)
	require.True(t, ok)
	require.Equal(t, Ack, kind)

	kind, ok = a.StatusAt(8)
	require.True(t, ok)
	require.Equal(t, Nak, kind)

	_, ok = a.StatusAt(11)
	require.False(t, ok)
}

func TestAckListAdvanceANKMidBoundaryRewritesFloor(t *testing.T) {
	a := NewAckList()
	a.Add(Ack, 7)
	a.Add(Nak, 8)
	a.Add(Ack, 10)

	// ankID 9 falls strictly inside the Ack(10) boundary's range; the
	// surviving boundary's floor must move up to 10, not stay at 8.
	a.AdvanceANK(9)
	require.Equal(t, []Boundary{{Kind: Ack, PayID: 10}}, a.Boundaries())
}

package protocol

// Flags is a bit set over the per-opcode behavioral flags named in
// spec.md section 4.1.
type Flags uint8

const (
	// FlagNodeCmd marks a command that targets a node (almost every
	// real wire opcode); kept distinct from FlagFakeCmd for commands
	// that are fake but still node-shaped (the *_ack synthetic family).
	FlagNodeCmd Flags = 1 << iota
	// FlagFakeCmd marks opcodes below 32 that never reach the packer.
	FlagFakeCmd
	// FlagShareAddr allows this opcode to participate in run address
	// sharing when adjacent in one outbound priority bucket.
	FlagShareAddr
	// FlagRemDup requests at-most-one-resident-per-address dedup
	// semantics in both the inbound and outbound queues.
	FlagRemDup
	// FlagVarLen marks a variable-length (STRING8-bearing) payload.
	FlagVarLen
)

func (f Flags) has(bit Flags) bool { return f&bit != 0 }

// Item describes one field of a command's payload: its wire kind, its
// fixed size in bytes (0 for KindString8), and its byte offset within
// Data. This is the typed-accessor-layer table named in spec.md
// section 9, generated alongside the Descriptor it belongs to.
type Item struct {
	Kind   ValueKind
	Size   int
	Offset int
}

// Descriptor is the static, per-opcode description driving pack, unpack,
// address comparison and dedup. Fields mirror spec.md section 4.1's
// descriptor table exactly.
type Descriptor struct {
	Opcode   Opcode
	Flags    Flags
	KeySize  int // number of leading payload bytes forming the address
	Size     int // total in-memory payload size; 0 for VarLen opcodes
	MinSize  int // minimum on-wire size (== Size unless VarLen)
	ItemCount int
	KeyCount int // number of items composing the key
	Items    []Item

	// NeedsAck marks opcodes (node/taggroup/tag/layer create/destroy)
	// for which remove_packet must deliver a synthetic ack command to
	// the server's own inbound queue, per spec.md section 4.4.
	NeedsAck bool
	// AckFake is the fake opcode synthesized for NeedsAck commands.
	AckFake Opcode
	// AckPayloadLen is how many leading bytes of Data (starting at
	// AckPayloadOffset) the synthetic ack command carries — the
	// identifying fields the original create/destroy call addressed,
	// which do not always coincide with KeySize (e.g. node_create's key
	// is (user, parent) but its ack carries the assigned node id).
	// Zero means "use (0, KeySize)".
	AckPayloadOffset int
	AckPayloadLen    int
}

// AckPayload returns the slice of data identifying the entity for this
// opcode's synthetic ack command (spec.md section 4.4).
func (d *Descriptor) AckPayload(data []byte) []byte {
	off, n := d.AckPayloadOffset, d.AckPayloadLen
	if n == 0 {
		off, n = 0, d.KeySize
	}
	if off+n > len(data) {
		return nil
	}
	return data[off : off+n]
}

// ShareAddr reports whether this opcode may participate in run address
// sharing (spec.md section 4.3).
func (d *Descriptor) ShareAddr() bool { return d.Flags.has(FlagShareAddr) }

// RemDup reports whether this opcode requests at-most-one-per-address
// dedup semantics (spec.md sections 4.2, 4.3, 4.4).
func (d *Descriptor) RemDup() bool { return d.Flags.has(FlagRemDup) }

// VarLen reports whether this opcode carries a variable-length payload.
func (d *Descriptor) VarLen() bool { return d.Flags.has(FlagVarLen) }

// IsFake reports whether this opcode is synthetic (never on the wire).
func (d *Descriptor) IsFake() bool { return d.Flags.has(FlagFakeCmd) }

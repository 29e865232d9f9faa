package protocol

// Opcode identifies a command's wire shape via the descriptor table.
// The range partition below mirrors spec.md section 3 exactly:
//
//	0..15    client-local synthetic ("fake") commands
//	16..31   server-local synthetic commands (never transmitted)
//	32..255  real wire commands
type Opcode byte

// IsFake reports whether op is a synthetic command that must never
// reach the packer (spec.md section 4.1 policy decisions): a registered
// opcode whose descriptor carries FlagFakeCmd, or an unregistered
// opcode below 32. The system commands at 1..9 are real wire commands
// and are not fake.
func (op Opcode) IsFake() bool {
	if d := Lookup(op); d != nil {
		return d.IsFake()
	}
	return op < 32
}

// Client-local synthetic commands (opcode range 0..15). These deliver
// events across the inbound-queue boundary without ever touching the
// wire; the names and grouping are grounded on original_source's
// src/common/fake_cmds and src/lib/common/fake_cmds directories, one
// file per fake command.
//
// Only FakeConnectAccept lives in this range: every other fake command
// is server-generated (an ack-of-create/destroy, an fps renegotiation,
// an auth result) and lives in 16..31 below, the range spec.md section
// 3 reserves for server-local synthetic commands. That split also keeps
// this range clear of the real system wire opcodes (1..9), which the
// original's v_fake_commands.h likewise avoids by starting its *_ACK
// fakes at 16.
const (
	FakeConnectAccept Opcode = 0 // v_fake_connect_accept.c
)

// Server-local synthetic commands (opcode range 16..31, never
// transmitted). These are generated by the server side of a session
// (packet-history ack delivery, fps negotiation, auth results) and
// delivered across the inbound-queue boundary the same way the
// client-local fakes above are.
const (
	FakeConnectTerminate   Opcode = 16 // v_fake_connect_terminate.c
	FakeNodeCreateAck      Opcode = 17 // v_fake_node_create_ack.c
	FakeNodeDestroyAck     Opcode = 18 // v_fake_node_destroy_ack.c
	FakeTagGroupCreateAck  Opcode = 19 // v_fake_taggroup_create_ack.c
	FakeTagGroupDestroyAck Opcode = 20 // v_fake_taggroup_destroy_ack.c
	FakeTagCreateAck       Opcode = 21 // v_fake_tag_create_ack.c (v_tag_commands.c)
	FakeTagDestroyAck      Opcode = 22 // v_fake_tag_destroy_ack.c
	FakeLayerCreateAck     Opcode = 23 // v_fake_layer_create_ack.c
	FakeLayerDestroyAck    Opcode = 24 // v_fake_layer_destroy_ack.c
	FakeFPS                Opcode = 25 // v_fake_fps.c
	FakeUserAuth           Opcode = 26 // v_fake_user_auth.c
)

// Real wire commands: system range 1..9 (spec.md section 6 table).
const (
	Ack             Opcode = 1
	Nak             Opcode = 2
	FPSChangeLocal  Opcode = 3
	FPSConfirmLocal Opcode = 4
	FPSChangeRemote Opcode = 5
	FPSConfirmRemote Opcode = 6
	AuthRequest     Opcode = 7
	AuthFailure     Opcode = 8
	AuthSuccess     Opcode = 9
)

// Node commands: range 32..43.
const (
	NodeCreate      Opcode = 32
	NodeDestroy     Opcode = 33
	NodeSubscribe   Opcode = 34
	NodeUnsubscribe Opcode = 35
	NodeLink        Opcode = 36
	NodePerm        Opcode = 37
	NodeDefaultPerm Opcode = 38
	NodeOwner       Opcode = 39
	NodeLock        Opcode = 40
	NodeUnlock      Opcode = 41
	NodePriority    Opcode = 42
	// 43 is reserved: the range allocates 12 slots (32..43) to the 11
	// node operations named in spec.md section 6.
)

// Tag group commands: range 64..67.
const (
	TagGroupCreate      Opcode = 64
	TagGroupDestroy     Opcode = 65
	TagGroupSubscribe   Opcode = 66
	TagGroupUnsubscribe Opcode = 67
)

// Tag commands: range 68..98. TagSetBase..TagSetBase+27 are the 4
// arities x 7 numeric kinds generated by registerTagCommands; TagSetString
// is the 29th and last member of the set family.
const (
	TagCreate   Opcode = 68
	TagDestroy  Opcode = 69
	TagSetBase  Opcode = 70
	TagSetString Opcode = 98
)

// TagSetArities are the arities ("how many values per Set call") used
// by the tag-set opcode family.
var TagSetArities = [4]int{1, 2, 3, 4}

// Layer commands: range 128..160. LayerSetBase..LayerSetBase+27 are the
// 4 arities x 7 numeric kinds generated by registerLayerCommands.
const (
	LayerCreate      Opcode = 128
	LayerDestroy     Opcode = 129
	LayerSubscribe   Opcode = 130
	LayerUnsubscribe Opcode = 131
	LayerUnsetValue  Opcode = 132
	LayerSetBase     Opcode = 133
)

// LayerSetArities mirrors TagSetArities for the layer-set family.
var LayerSetArities = [4]int{1, 2, 3, 4}

// TagSetOpcode returns the opcode for the tag-set command of the given
// arity index (0..3, indexing TagSetArities, i.e. arities 1..4) and
// numeric kind index (0..6, see NumericKinds).
func TagSetOpcode(arityIdx, kindIdx int) Opcode {
	return TagSetBase + Opcode(arityIdx*len(NumericKinds)+kindIdx)
}

// LayerSetOpcode returns the opcode for the layer-set command of the
// given arity index (0..3, indexing LayerSetArities, i.e. arities 1..4)
// and numeric kind index (0..6, see NumericKinds).
func LayerSetOpcode(arityIdx, kindIdx int) Opcode {
	return LayerSetBase + Opcode(arityIdx*len(NumericKinds)+kindIdx)
}

package protocol

// table is the static, opcode-indexed descriptor table. It is built once
// in init() rather than hand-written opcode by opcode so the generated
// tag-set / layer-set families (spec.md section 6: "4 arities x 7
// numeric kinds") stay mechanically in sync with the opcode constants in
// opcode.go.
var table [256]*Descriptor

// Lookup returns the descriptor for op, or nil if op is not a known
// opcode. Callers that receive nil from an on-wire opcode must surface
// protocol.ErrUnknownOpcode (spec.md section 4.1, 7).
func Lookup(op Opcode) *Descriptor {
	return table[op]
}

func register(d Descriptor) {
	table[d.Opcode] = &d
}

func items(kinds ...ValueKind) []Item {
	out := make([]Item, len(kinds))
	off := 0
	for i, k := range kinds {
		size := k.FixedSize()
		out[i] = Item{Kind: k, Size: size, Offset: off}
		off += size
	}
	return out
}

func sumSizes(its []Item) int {
	total := 0
	for _, it := range its {
		total += it.Size
	}
	return total
}

func init() {
	registerFakeCommands()
	registerSystemCommands()
	registerNodeCommands()
	registerTagGroupCommands()
	registerTagCommands()
	registerLayerCommands()
}

// Fake commands (0 and 16..26) carry whatever payload their originating
// component needs; none are shared-address or wire-framed, per spec.md
// section 4.1 ("FAKE commands must never reach the packer").
func registerFakeCommands() {
	fake := func(op Opcode, its []Item) {
		size := sumSizes(its)
		register(Descriptor{
			Opcode: op, Flags: FlagFakeCmd, KeySize: 0,
			Size: size, MinSize: size, ItemCount: len(its), KeyCount: 0, Items: its,
		})
	}
	fake(FakeConnectAccept, items(KindU16, KindU16, KindU32))    // session, user, avatar id
	fake(FakeConnectTerminate, items(KindU8))                    // terminate reason
	fake(FakeNodeCreateAck, items(KindU32))                      // node id
	fake(FakeNodeDestroyAck, items(KindU32))                     // node id
	fake(FakeTagGroupCreateAck, items(KindU32, KindU16))         // node, taggroup id
	fake(FakeTagGroupDestroyAck, items(KindU32, KindU16))        // node, taggroup id
	fake(FakeTagCreateAck, items(KindU32, KindU16, KindU16))     // node, taggroup, tag id
	fake(FakeTagDestroyAck, items(KindU32, KindU16, KindU16))    // node, taggroup, tag id
	fake(FakeLayerCreateAck, items(KindU32, KindU16))            // node, layer id
	fake(FakeLayerDestroyAck, items(KindU32, KindU16))           // node, layer id
	fake(FakeFPS, items(KindU32, KindU32, KindU32))              // self, peer, host-desired fps
	fake(FakeUserAuth, items(KindU8))                            // result code
}

func registerSystemCommands() {
	// ACK/NAK each carry one boundary's payload id; the opcode itself
	// (Ack vs Nak) is the boundary's kind. They are not address-keyed
	// (KeySize 0): compression and obsoletion for these is owned by
	// internal/history's AckList, not queue dedup.
	ackNak := items(KindU32)
	register(Descriptor{Opcode: Ack, Flags: 0, KeySize: 0, Size: sumSizes(ackNak), MinSize: sumSizes(ackNak), ItemCount: 1, Items: ackNak})
	register(Descriptor{Opcode: Nak, Flags: 0, KeySize: 0, Size: sumSizes(ackNak), MinSize: sumSizes(ackNak), ItemCount: 1, Items: ackNak})

	fps := items(KindU32)
	for _, op := range []Opcode{FPSChangeLocal, FPSConfirmLocal, FPSChangeRemote, FPSConfirmRemote} {
		register(Descriptor{Opcode: op, Flags: FlagRemDup, KeySize: 0, Size: sumSizes(fps), MinSize: sumSizes(fps), ItemCount: 1, Items: fps})
	}

	// AuthRequest: method byte + two STRING8 fields (username, auth
	// data); variable length, never address-shared.
	register(Descriptor{
		Opcode: AuthRequest, Flags: FlagVarLen, KeySize: 0,
		Size: 0, MinSize: 3, ItemCount: 3,
		Items: []Item{{Kind: KindU8, Size: 1, Offset: 0}, {Kind: KindString8, Offset: 1}, {Kind: KindString8, Offset: 2}},
	})
	authFail := items(KindU8)
	register(Descriptor{Opcode: AuthFailure, Flags: 0, KeySize: 0, Size: sumSizes(authFail), MinSize: sumSizes(authFail), ItemCount: 1, Items: authFail})
	authOk := items(KindU16, KindU32, KindU16)
	register(Descriptor{Opcode: AuthSuccess, Flags: 0, KeySize: 0, Size: sumSizes(authOk), MinSize: sumSizes(authOk), ItemCount: 3, Items: authOk})
}

func registerNodeCommands() {
	// NodeCreate's key is (user_id u16, parent_id u32) == 6 bytes, not
	// node_id: the bulk-create scenario in spec.md section 8 (S2) packs
	// many sibling node_create commands from one user under one parent
	// and shares exactly that 6-byte prefix across the run.
	create := items(KindU16, KindU32, KindU32, KindU16) // user, parent, node, type
	register(Descriptor{
		Opcode: NodeCreate, Flags: FlagNodeCmd | FlagShareAddr, KeySize: 6,
		Size: sumSizes(create), MinSize: sumSizes(create), ItemCount: 4, KeyCount: 2, Items: create,
		NeedsAck: true, AckFake: FakeNodeCreateAck, AckPayloadOffset: 6, AckPayloadLen: 4,
	})

	destroy := items(KindU32)
	register(Descriptor{
		Opcode: NodeDestroy, Flags: FlagNodeCmd | FlagShareAddr | FlagRemDup, KeySize: 4,
		Size: sumSizes(destroy), MinSize: sumSizes(destroy), ItemCount: 1, KeyCount: 1, Items: destroy,
		NeedsAck: true, AckFake: FakeNodeDestroyAck,
	})

	nodeAnd := func(op Opcode, extra []ValueKind, remDup bool) {
		its := items(append([]ValueKind{KindU32}, extra...)...)
		var fl Flags = FlagNodeCmd | FlagShareAddr
		if remDup {
			fl |= FlagRemDup
		}
		register(Descriptor{Opcode: op, Flags: fl, KeySize: 4, Size: sumSizes(its), MinSize: sumSizes(its), ItemCount: len(its), KeyCount: 1, Items: its})
	}
	nodeAnd(NodeSubscribe, []ValueKind{KindU32}, false)   // version
	nodeAnd(NodeUnsubscribe, nil, false)
	nodeAnd(NodeLink, []ValueKind{KindU32}, true)         // new parent id
	nodeAnd(NodeDefaultPerm, []ValueKind{KindU8}, true)   // default perm flags
	nodeAnd(NodeOwner, []ValueKind{KindU16}, true)        // new owner user id
	nodeAnd(NodeLock, nil, true)
	nodeAnd(NodeUnlock, nil, true)
	nodeAnd(NodePriority, []ValueKind{KindU8}, true)      // queue priority

	// NodePerm keys on (node, user) since permission is per-user.
	perm := items(KindU32, KindU16, KindU8)
	register(Descriptor{
		Opcode: NodePerm, Flags: FlagNodeCmd | FlagShareAddr | FlagRemDup, KeySize: 6,
		Size: sumSizes(perm), MinSize: sumSizes(perm), ItemCount: 3, KeyCount: 2, Items: perm,
	})
}

func registerTagGroupCommands() {
	create := items(KindU32, KindU16, KindU16) // node, taggroup id, type
	register(Descriptor{
		Opcode: TagGroupCreate, Flags: FlagNodeCmd | FlagShareAddr, KeySize: 4,
		Size: sumSizes(create), MinSize: sumSizes(create), ItemCount: 3, KeyCount: 1, Items: create,
		NeedsAck: true, AckFake: FakeTagGroupCreateAck, AckPayloadLen: 6,
	})
	destroy := items(KindU32, KindU16)
	register(Descriptor{
		Opcode: TagGroupDestroy, Flags: FlagNodeCmd | FlagShareAddr | FlagRemDup, KeySize: 6,
		Size: sumSizes(destroy), MinSize: sumSizes(destroy), ItemCount: 2, KeyCount: 2, Items: destroy,
		NeedsAck: true, AckFake: FakeTagGroupDestroyAck,
	})
	sub := items(KindU32, KindU16, KindU32)
	register(Descriptor{
		Opcode: TagGroupSubscribe, Flags: FlagNodeCmd | FlagShareAddr, KeySize: 6,
		Size: sumSizes(sub), MinSize: sumSizes(sub), ItemCount: 3, KeyCount: 2, Items: sub,
	})
	unsub := items(KindU32, KindU16)
	register(Descriptor{
		Opcode: TagGroupUnsubscribe, Flags: FlagNodeCmd | FlagShareAddr, KeySize: 6,
		Size: sumSizes(unsub), MinSize: sumSizes(unsub), ItemCount: 2, KeyCount: 2, Items: unsub,
	})
}

func registerTagCommands() {
	create := items(KindU32, KindU16, KindU16, KindU8) // node, taggroup, tag id, type
	register(Descriptor{
		Opcode: TagCreate, Flags: FlagNodeCmd | FlagShareAddr, KeySize: 6,
		Size: sumSizes(create), MinSize: sumSizes(create), ItemCount: 4, KeyCount: 2, Items: create,
		NeedsAck: true, AckFake: FakeTagCreateAck, AckPayloadLen: 8,
	})
	destroy := items(KindU32, KindU16, KindU16)
	register(Descriptor{
		Opcode: TagDestroy, Flags: FlagNodeCmd | FlagShareAddr | FlagRemDup, KeySize: 8,
		Size: sumSizes(destroy), MinSize: sumSizes(destroy), ItemCount: 3, KeyCount: 3, Items: destroy,
		NeedsAck: true, AckFake: FakeTagDestroyAck,
	})

	// Tag-set family: 4 arities x 7 numeric kinds, all keyed on
	// (node, taggroup, tag) = 8 bytes, REM_DUP (a later Set to the same
	// tag obsoletes the earlier one) and SHARE_ADDR.
	for arityIdx, arity := range TagSetArities {
		for kindIdx, kind := range NumericKinds {
			op := TagSetOpcode(arityIdx, kindIdx)
			vals := make([]ValueKind, 0, 3+arity)
			vals = append(vals, KindU32, KindU16, KindU16)
			for i := 0; i < arity; i++ {
				vals = append(vals, kind)
			}
			its := items(vals...)
			register(Descriptor{
				Opcode: op, Flags: FlagNodeCmd | FlagShareAddr | FlagRemDup, KeySize: 8,
				Size: sumSizes(its), MinSize: sumSizes(its), ItemCount: len(its), KeyCount: 3, Items: its,
			})
		}
	}

	// TagSetString: variable length, never address-shared beyond the
	// fixed 8-byte key (spec.md section 4.1 policy decisions).
	register(Descriptor{
		Opcode: TagSetString, Flags: FlagNodeCmd | FlagRemDup | FlagVarLen, KeySize: 8,
		Size: 0, MinSize: 9, ItemCount: 4,
		Items: []Item{
			{Kind: KindU32, Size: 4, Offset: 0}, {Kind: KindU16, Size: 2, Offset: 4},
			{Kind: KindU16, Size: 2, Offset: 6}, {Kind: KindString8, Offset: 8},
		},
		KeyCount: 3,
	})
}

func registerLayerCommands() {
	create := items(KindU32, KindU16, KindU8, KindU8) // node, layer id, type, item count
	register(Descriptor{
		Opcode: LayerCreate, Flags: FlagNodeCmd | FlagShareAddr, KeySize: 4,
		Size: sumSizes(create), MinSize: sumSizes(create), ItemCount: 4, KeyCount: 1, Items: create,
		NeedsAck: true, AckFake: FakeLayerCreateAck, AckPayloadLen: 6,
	})
	destroy := items(KindU32, KindU16)
	register(Descriptor{
		Opcode: LayerDestroy, Flags: FlagNodeCmd | FlagShareAddr | FlagRemDup, KeySize: 6,
		Size: sumSizes(destroy), MinSize: sumSizes(destroy), ItemCount: 2, KeyCount: 2, Items: destroy,
		NeedsAck: true, AckFake: FakeLayerDestroyAck,
	})
	sub := items(KindU32, KindU16, KindU32)
	register(Descriptor{
		Opcode: LayerSubscribe, Flags: FlagNodeCmd | FlagShareAddr, KeySize: 6,
		Size: sumSizes(sub), MinSize: sumSizes(sub), ItemCount: 3, KeyCount: 2, Items: sub,
	})
	unsub := items(KindU32, KindU16)
	register(Descriptor{
		Opcode: LayerUnsubscribe, Flags: FlagNodeCmd | FlagShareAddr, KeySize: 6,
		Size: sumSizes(unsub), MinSize: sumSizes(unsub), ItemCount: 2, KeyCount: 2, Items: unsub,
	})
	unset := items(KindU32, KindU16, KindU32) // node, layer, item index
	register(Descriptor{
		Opcode: LayerUnsetValue, Flags: FlagNodeCmd | FlagShareAddr | FlagRemDup, KeySize: 10,
		Size: sumSizes(unset), MinSize: sumSizes(unset), ItemCount: 3, KeyCount: 3, Items: unset,
	})

	// Layer-set family: 4 arities x 7 numeric kinds, keyed on
	// (node, layer, item index) = 10 bytes.
	for arityIdx, arity := range LayerSetArities {
		for kindIdx, kind := range NumericKinds {
			op := LayerSetOpcode(arityIdx, kindIdx)
			vals := make([]ValueKind, 0, 3+arity)
			vals = append(vals, KindU32, KindU16, KindU32)
			for i := 0; i < arity; i++ {
				vals = append(vals, kind)
			}
			its := items(vals...)
			register(Descriptor{
				Opcode: op, Flags: FlagNodeCmd | FlagShareAddr | FlagRemDup, KeySize: 10,
				Size: sumSizes(its), MinSize: sumSizes(its), ItemCount: len(its), KeyCount: 3, Items: its,
			})
		}
	}
}

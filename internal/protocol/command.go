package protocol

import "bytes"

// Command is a generic tagged record: one opcode plus a payload whose
// byte layout is fixed by that opcode's Descriptor. Commands are value-
// owned by whichever queue or buffer currently holds them; handing one
// to a queue transfers ownership (spec.md section 3).
type Command struct {
	Opcode Opcode
	Data   []byte
}

// New builds a Command, copying data so the caller's buffer can be
// reused or mutated afterward without aliasing the queue's copy.
func New(op Opcode, data []byte) Command {
	cp := make([]byte, len(data))
	copy(cp, data)
	return Command{Opcode: op, Data: cp}
}

// Descriptor looks up this command's descriptor, or nil for an unknown
// opcode (the caller should treat that as protocol.ErrUnknownOpcode).
func (c Command) Descriptor() *Descriptor {
	return Lookup(c.Opcode)
}

// Address returns the leading key-length bytes of the payload: the
// deduplication and address-sharing key (spec.md section 3).
func (c Command) Address() []byte {
	d := c.Descriptor()
	if d == nil || d.KeySize == 0 || d.KeySize > len(c.Data) {
		return nil
	}
	return c.Data[:d.KeySize]
}

// AddressEqual reports whether two commands have equal opcodes and
// bitwise-equal address bytes.
func AddressEqual(a, b Command) bool {
	if a.Opcode != b.Opcode {
		return false
	}
	return bytes.Equal(a.Address(), b.Address())
}

// SharedPrefixLen returns the length of the common prefix of a and b's
// first n address bytes, capped at n and at each command's key size.
// Used incrementally while building a run's shared-address candidate
// (spec.md section 4.1 "Address compare").
func SharedPrefixLen(a, b Command, n int) int {
	aa, ba := a.Address(), b.Address()
	if n > len(aa) {
		n = len(aa)
	}
	if n > len(ba) {
		n = len(ba)
	}
	i := 0
	for i < n && aa[i] == ba[i] {
		i++
	}
	return i
}

// Size returns the number of payload bytes in this command, used for
// per-opcode item-size accounting (spec.md section 3 invariant c).
func (c Command) Size() int { return len(c.Data) }

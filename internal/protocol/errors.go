package protocol

import "github.com/pkg/errors"

// ErrUnknownOpcode is returned by Unpack when a decoded opcode has no
// registered descriptor. Per spec.md section 4.1/7, this marks the
// stream corrupted (Malformed) and the session must be closed.
var ErrUnknownOpcode = errors.New("protocol: unknown opcode")

// ErrTruncated is returned when a buffer ends before a declared length
// or payload is fully consumed.
var ErrTruncated = errors.New("protocol: truncated command stream")

// ErrFakeOnWire is returned if a caller attempts to pack a fake
// (synthetic) opcode, see Opcode.IsFake; spec.md section 4.1 forbids
// fake commands from reaching the packer.
var ErrFakeOnWire = errors.New("protocol: fake command cannot be packed")

// ErrRunTooLong is returned when a packed run's body length exceeds
// what the two-byte length header can express (maxLongLength); the
// caller must split the run into smaller batches rather than have its
// framing silently truncated.
var ErrRunTooLong = errors.New("protocol: run body too long for header")

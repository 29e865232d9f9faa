package protocol

import "github.com/versenet/verse/internal/wire"

// Pusher receives a decoded command. internal/queue.Inbound implements
// this so the codec has no import-time dependency on the queue package.
type Pusher interface {
	Push(Command)
}

// PackRun packs a contiguous run of N >= 1 same-opcode commands into w,
// per spec.md section 4.1 "Command packing". requestedShare is the
// number of leading address bytes the caller believes are identical
// across the run (as tracked by the outbound queue's run metadata);
// it is clamped to what the wire header can express (MaxShare) and to
// the opcode's key size. PackRun returns the share actually written so
// the caller can account for it.
func PackRun(w *wire.Cursor, cmds []Command, requestedShare int) (int, error) {
	if len(cmds) == 0 {
		return 0, ErrTruncated
	}
	op := cmds[0].Opcode
	if op.IsFake() {
		return 0, ErrFakeOnWire
	}
	desc := Lookup(op)
	if desc == nil {
		return 0, ErrUnknownOpcode
	}
	share := requestedShare
	if share > desc.KeySize {
		share = desc.KeySize
	}
	if share > MaxShare {
		share = MaxShare
	}
	if share < 0 {
		share = 0
	}
	if !desc.ShareAddr() {
		share = 0
	}

	bodyLen := 1 + share
	for _, c := range cmds {
		if c.Opcode != op {
			return 0, ErrTruncated
		}
		bodyLen += len(c.Data) - share
	}

	if err := EncodeHeader(w, bodyLen, share); err != nil {
		return 0, err
	}
	w.WriteByte(byte(op))
	if share > 0 {
		w.WriteBytes(cmds[0].Data[:share])
	}
	for _, c := range cmds {
		w.WriteBytes(c.Data[share:])
	}
	return share, nil
}

// UnpackInto reads one command batch (header + opcode + shared prefix +
// N command suffixes) from r and pushes each reconstructed command to
// p, mirroring PackRun exactly (spec.md section 4.1 "Command
// unpacking").
func UnpackInto(r *wire.Cursor, p Pusher) error {
	length, share, err := DecodeHeader(r)
	if err != nil {
		return err
	}
	body, err := r.ReadBytes(length)
	if err != nil {
		return ErrTruncated
	}
	sub := wire.NewReader(body)

	opByte, err := sub.ReadByte()
	if err != nil {
		return ErrTruncated
	}
	op := Opcode(opByte)
	if op.IsFake() {
		return ErrUnknownOpcode
	}
	desc := Lookup(op)
	if desc == nil {
		return ErrUnknownOpcode
	}
	if share > desc.KeySize {
		return ErrTruncated
	}
	if !desc.ShareAddr() && share != 0 {
		return ErrTruncated
	}

	var sharedPrefix []byte
	if share > 0 {
		sharedPrefix, err = sub.ReadBytes(share)
		if err != nil {
			return ErrTruncated
		}
	}

	suffixLen := desc.KeySize - share
	for sub.Remaining() > 0 {
		suffix, err := sub.ReadBytes(suffixLen)
		if err != nil {
			return ErrTruncated
		}
		tail, err := readPayloadTail(desc, sub)
		if err != nil {
			return err
		}
		data := make([]byte, 0, share+suffixLen+len(tail))
		data = append(data, sharedPrefix...)
		data = append(data, suffix...)
		data = append(data, tail...)
		p.Push(Command{Opcode: op, Data: data})
	}
	return nil
}

// readPayloadTail reads everything after a command's address (the
// fixed and/or STRING8 items following desc.Items[:desc.KeyCount]),
// using the descriptor's item table to self-delimit variable-length
// fields. Fixed-size descriptors could equivalently read
// desc.Size-desc.KeySize raw bytes; walking Items uniformly keeps one
// code path for both cases.
func readPayloadTail(desc *Descriptor, r *wire.Cursor) ([]byte, error) {
	out := wire.NewWriterSize(desc.Size)
	for _, it := range desc.Items[desc.KeyCount:] {
		if it.Kind == KindString8 {
			s, err := r.ReadString8()
			if err != nil {
				return nil, ErrTruncated
			}
			out.WriteString8(s)
			continue
		}
		b, err := r.ReadBytes(it.Size)
		if err != nil {
			return nil, ErrTruncated
		}
		out.WriteBytes(b)
	}
	return out.Bytes(), nil
}

package protocol

import "github.com/versenet/verse/internal/wire"

// MaxShare is the largest address-share byte count the wire header can
// express. The 2-bit address-length field in spec.md section 4.1 cannot
// hold an arbitrary key size (our widest key, the layer-set family, is
// 10 bytes) so sharing on the wire is capped at MaxShare regardless of
// how much common prefix a run actually has; the outbound queue's run
// metadata (spec.md section 3/4.3) still tracks the full, uncapped
// share for scheduling purposes. See DESIGN.md for the full rationale.
const MaxShare = 3

// maxShortLength is the largest length value that fits in the one-byte
// header form (5 low bits).
const maxShortLength = 0x1f

// maxLongLength is the largest length value the two-byte header form
// can express (5 low bits + 8 high bits = 13 bits).
const maxLongLength = 0x1fff

// EncodeHeader appends the length-header for a command batch of the
// given total byte length and address share S to w. It chooses the
// one-byte form when length fits in 5 bits (spec.md's "fits in 6 bits"
// restated for the concrete bit budget chosen here — see DESIGN.md),
// otherwise the two-byte form. Returns ErrRunTooLong if length exceeds
// what the two-byte form can express: callers must split the run
// rather than have it silently truncated and its framing corrupted.
func EncodeHeader(w *wire.Cursor, length int, share int) error {
	if length > maxLongLength {
		return ErrRunTooLong
	}
	if share < 0 {
		share = 0
	}
	if share > MaxShare {
		share = MaxShare
	}
	if length <= maxShortLength {
		b := byte(share)<<5 | byte(length)
		w.WriteByte(b)
		return nil
	}
	b0 := byte(0x80) | byte(share)<<5 | byte(length&0x1f)
	b1 := byte((length >> 5) & 0xff)
	w.WriteByte(b0)
	w.WriteByte(b1)
	return nil
}

// DecodeHeader reads one length-header from r, returning the encoded
// length and address share.
func DecodeHeader(r *wire.Cursor) (length int, share int, err error) {
	b0, err := r.ReadByte()
	if err != nil {
		return 0, 0, err
	}
	share = int((b0 >> 5) & 0x03)
	if b0&0x80 == 0 {
		return int(b0 & 0x1f), share, nil
	}
	b1, err := r.ReadByte()
	if err != nil {
		return 0, 0, err
	}
	length = int(b0&0x1f) | int(b1)<<5
	return length, share, nil
}

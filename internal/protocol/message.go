package protocol

import (
	"github.com/versenet/verse/internal/wire"
)

// MessageVersion is the only wire version this implementation speaks.
// A mismatched version on receive is Malformed (spec.md section 7).
const MessageVersion = 1

// MessageFlags are the per-message negotiation bits named in spec.md
// section 6 ("Negotiation flags accepted by connect"), carried on every
// message rather than only at connect time. internal/stream sets the
// transport and security bits from the session's transport flags; it
// never sets FlagTransportWebSocket or FlagCompressAddrShare.
type MessageFlags uint8

const (
	FlagTransportTCP MessageFlags = 1 << iota
	FlagTransportUDP
	FlagTransportWebSocket
	FlagSecurityTLS
	FlagCompressAddrShare
)

// MessageHeaderSize is the fixed top-level message header: version (1
// byte), flags (1 byte), and a big-endian uint32 body length (spec.md
// section 6: "A message begins with a fixed-size message header
// (version, length, flags)").
const MessageHeaderSize = 6

// MessageHeader is the fixed header prefixing every framed message,
// ahead of the system and node command batches themselves.
type MessageHeader struct {
	Version uint8
	Flags   MessageFlags
	Length  uint32
}

// WriteMessageHeader appends h to w.
func WriteMessageHeader(w *wire.Cursor, h MessageHeader) {
	w.WriteByte(h.Version)
	w.WriteByte(byte(h.Flags))
	w.WriteU32(h.Length)
}

// ReadMessageHeader reads a MessageHeader from r.
func ReadMessageHeader(r *wire.Cursor) (MessageHeader, error) {
	version, err := r.ReadByte()
	if err != nil {
		return MessageHeader{}, ErrTruncated
	}
	flagByte, err := r.ReadByte()
	if err != nil {
		return MessageHeader{}, ErrTruncated
	}
	length, err := r.ReadU32()
	if err != nil {
		return MessageHeader{}, ErrTruncated
	}
	return MessageHeader{Version: version, Flags: MessageFlags(flagByte), Length: length}, nil
}

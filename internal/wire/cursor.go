// Package wire implements the big-endian primitive codec shared by every
// command payload and by the length-header framing scheme. It generalizes
// the offset-tracked read/write cursor the teacher's protocol package used
// for its BitStream type.
package wire

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// ErrShortBuffer is returned by any Read* call that would run past the
// end of the underlying buffer.
var ErrShortBuffer = errors.New("wire: short buffer")

// Cursor is a read/write position over a byte slice. Reads advance from
// the front; writes append. All multi-byte fields are network byte order
// (big-endian), matching the wire format in spec.md section 4.1.
type Cursor struct {
	buf []byte
	off int
}

// NewReader wraps an existing buffer for sequential reads.
func NewReader(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// NewWriter returns a cursor with an empty, growable buffer.
func NewWriter() *Cursor {
	return &Cursor{buf: make([]byte, 0, 64)}
}

// NewWriterSize returns a cursor with the given initial capacity.
func NewWriterSize(capacity int) *Cursor {
	return &Cursor{buf: make([]byte, 0, capacity)}
}

// Bytes returns the accumulated buffer (for writers) or the remaining
// unread tail (for readers that have not advanced).
func (c *Cursor) Bytes() []byte { return c.buf }

// Offset returns the current read/write position.
func (c *Cursor) Offset() int { return c.off }

// Remaining reports how many unread bytes remain.
func (c *Cursor) Remaining() int { return len(c.buf) - c.off }

func (c *Cursor) need(n int) error {
	if c.Remaining() < n {
		return ErrShortBuffer
	}
	return nil
}

// ReadByte reads a single byte.
func (c *Cursor) ReadByte() (byte, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	b := c.buf[c.off]
	c.off++
	return b, nil
}

// ReadBytes reads n raw bytes.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	out := c.buf[c.off : c.off+n]
	c.off += n
	return out, nil
}

// ReadU16 reads a big-endian uint16.
func (c *Cursor) ReadU16() (uint16, error) {
	b, err := c.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// ReadU32 reads a big-endian uint32.
func (c *Cursor) ReadU32() (uint32, error) {
	b, err := c.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// ReadU64 reads a big-endian uint64.
func (c *Cursor) ReadU64() (uint64, error) {
	b, err := c.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// ReadR16 reads an IEEE-754 binary16 (half precision) float. This is the
// encoding chosen to resolve the REAL16 open question in spec.md section 9:
// the serializer and deserializer below are the single symmetric source of
// truth for that format.
func (c *Cursor) ReadR16() (float32, error) {
	bits, err := c.ReadU16()
	if err != nil {
		return 0, err
	}
	return Float16ToFloat32(bits), nil
}

// ReadR32 reads an IEEE-754 binary32 float.
func (c *Cursor) ReadR32() (float32, error) {
	bits, err := c.ReadU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// ReadR64 reads an IEEE-754 binary64 float.
func (c *Cursor) ReadR64() (float64, error) {
	bits, err := c.ReadU64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

// ReadString8 reads a length-prefixed (one byte, 0..255) byte string.
func (c *Cursor) ReadString8() (string, error) {
	n, err := c.ReadByte()
	if err != nil {
		return "", err
	}
	b, err := c.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WriteByte appends a single byte.
func (c *Cursor) WriteByte(b byte) { c.buf = append(c.buf, b) }

// WriteBytes appends raw bytes.
func (c *Cursor) WriteBytes(b []byte) { c.buf = append(c.buf, b...) }

// WriteU16 appends a big-endian uint16.
func (c *Cursor) WriteU16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	c.buf = append(c.buf, b[:]...)
}

// WriteU32 appends a big-endian uint32.
func (c *Cursor) WriteU32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	c.buf = append(c.buf, b[:]...)
}

// WriteU64 appends a big-endian uint64.
func (c *Cursor) WriteU64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	c.buf = append(c.buf, b[:]...)
}

// WriteR16 appends an IEEE-754 binary16 float. See ReadR16 for the open
// question this resolves.
func (c *Cursor) WriteR16(v float32) { c.WriteU16(Float32ToFloat16(v)) }

// WriteR32 appends an IEEE-754 binary32 float.
func (c *Cursor) WriteR32(v float32) { c.WriteU32(math.Float32bits(v)) }

// WriteR64 appends an IEEE-754 binary64 float.
func (c *Cursor) WriteR64(v float64) { c.WriteU64(math.Float64bits(v)) }

// WriteString8 appends a length-prefixed (one byte) byte string. The
// caller is responsible for keeping len(s) <= 255 (max string8 length,
// spec.md section 6); this is enforced by callers at the API boundary.
func (c *Cursor) WriteString8(s string) {
	c.buf = append(c.buf, byte(len(s)))
	c.buf = append(c.buf, s...)
}

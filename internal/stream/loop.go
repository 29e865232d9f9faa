// Package stream implements the per-session per-tick receive/decode/
// enqueue and pack/send cycle (spec.md section 4.5 "Stream Loop").
package stream

import (
	"io"

	"github.com/pkg/errors"

	"github.com/versenet/verse/internal/protocol"
	"github.com/versenet/verse/internal/queue"
	"github.com/versenet/verse/internal/session"
	"github.com/versenet/verse/internal/wire"
)

// HeaderSize is the fixed top-level message header (spec.md section 6:
// "version, length, flags"). Step 1 of spec.md section 4.5 rejects any
// receive whose buffer is smaller than this.
const HeaderSize = protocol.MessageHeaderSize

// ErrShortHeader is returned when a receive buffer is smaller than
// HeaderSize or than the length it declares; per spec.md section 7
// this is a Malformed condition.
var ErrShortHeader = errors.New("stream: buffer smaller than fixed header")

// ErrUnsupportedVersion is returned when a received message declares a
// version this implementation does not speak; per spec.md section 7
// this is Malformed.
var ErrUnsupportedVersion = errors.New("stream: unsupported message version")

// Loop drives one session's tick cycle. WindowFunc supplies the send
// window for step 3 ("query the socket's current outstanding write
// bytes; compute send window"); it is injected so callers can use
// internal/transport/sendwindow or a fixed budget in tests.
type Loop struct {
	WindowFunc func() (int, error)
}

// NewLoop returns a Loop using a fixed, unchanging send window — the
// simplest WindowFunc, suitable when the transport cannot report
// outstanding bytes (spec.md section 4.5 step 3 fallback).
func NewLoop(fixedWindow int) *Loop {
	return &Loop{WindowFunc: func() (int, error) { return fixedWindow, nil }}
}

// Receive implements step 1: read one framed message from r and
// unpack its command batches into sess.Inbound.
func (l *Loop) Receive(r io.Reader, sess *session.Session) error {
	var hdrBuf [HeaderSize]byte
	if _, err := io.ReadFull(r, hdrBuf[:]); err != nil {
		return ErrShortHeader
	}
	hdr, err := protocol.ReadMessageHeader(wire.NewReader(hdrBuf[:]))
	if err != nil {
		return ErrShortHeader
	}
	if hdr.Version != protocol.MessageVersion {
		return ErrUnsupportedVersion
	}
	body := make([]byte, hdr.Length)
	if _, err := io.ReadFull(r, body); err != nil {
		return ErrShortHeader
	}

	cur := wire.NewReader(body)
	for cur.Remaining() > 0 {
		if err := protocol.UnpackInto(cur, sess.Inbound); err != nil {
			return err
		}
	}
	sess.Touch()
	return nil
}

// NegotiateFPS implements step 2: if an fps confirmation is pending,
// enqueue a change/confirm system command to the outbound queue
// (spec.md section 4.5 "Negotiation for FPS").
func NegotiateFPS(sess *session.Session) {
	if !sess.FPSState.ConfirmPending {
		return
	}
	sess.Outbound.PushTail(queue.DefaultPriority, fpsCommand(sess), false)
}

func fpsCommand(sess *session.Session) protocol.Command {
	w := wire.NewWriterSize(4)
	w.WriteU32(uint32(sess.FPSState.HostDesired))
	op := protocol.FPSChangeRemote
	if !sess.FPSState.ConfirmPending {
		op = protocol.FPSConfirmRemote
	}
	return protocol.New(op, w.Bytes())
}

// Send implements steps 3-5: query the send window, allocate it
// across priorities, pack commands into one message buffer under that
// budget, fill the header length, and write the framed message to w.
// Returns the number of bytes written (0 if there was nothing to
// send).
func (l *Loop) Send(w io.Writer, sess *session.Session) (int, error) {
	budget, err := l.WindowFunc()
	if err != nil {
		return 0, err
	}
	if budget <= 0 {
		return 0, nil
	}

	body := wire.NewWriterSize(budget)
	windows := sess.Outbound.AllocateWindows(budget)
	for _, win := range windows {
		packPriority(body, sess.Outbound, byte(win.Priority), win.Bytes)
	}

	bodyLen := len(body.Bytes())
	if bodyLen == 0 {
		return 0, nil
	}

	msg := wire.NewWriterSize(HeaderSize + bodyLen)
	protocol.WriteMessageHeader(msg, protocol.MessageHeader{
		Version: protocol.MessageVersion,
		Flags:   sessionMessageFlags(sess),
		Length:  uint32(bodyLen),
	})
	msg.WriteBytes(body.Bytes())
	n, err := w.Write(msg.Bytes())
	if err == nil {
		sess.Touch()
	}
	return n, err
}

// sessionMessageFlags translates a session's negotiated transport
// flags into the wire message flags, so a receiver observes the same
// transport/security choice the connect handshake settled on (spec.md
// section 6 "negotiation flags accepted by connect").
func sessionMessageFlags(sess *session.Session) protocol.MessageFlags {
	var out protocol.MessageFlags
	if sess.Flags&session.FlagTCP != 0 {
		out |= protocol.FlagTransportTCP
	}
	if sess.Flags&session.FlagUDP != 0 {
		out |= protocol.FlagTransportUDP
	}
	if sess.Flags&session.FlagTLS != 0 || sess.Flags&session.FlagDTLS != 0 {
		out |= protocol.FlagSecurityTLS
	}
	return out
}

// packPriority drains priority prio's bucket into body, respecting
// remaining as a shrinking byte budget, one run at a time.
func packPriority(body *wire.Cursor, out *queue.Outbound, prio byte, remaining int) {
	for remaining > 0 {
		cmd, count, share, lenOut, ok := out.Pop(prio, remaining)
		if !ok {
			return
		}
		cmds := make([]protocol.Command, 1, count)
		cmds[0] = cmd
		for i := 1; i < count; i++ {
			next, _, _, _, ok2 := out.Pop(prio, 0)
			if !ok2 {
				break
			}
			cmds = append(cmds, next)
		}
		// A run whose body is too long for the length header is split
		// into halves until each part fits.
		for len(cmds) > 0 {
			n := len(cmds)
			_, err := protocol.PackRun(body, cmds[:n], share)
			for err == protocol.ErrRunTooLong && n > 1 {
				n /= 2
				_, err = protocol.PackRun(body, cmds[:n], share)
			}
			if err != nil {
				return
			}
			cmds = cmds[n:]
		}
		remaining -= lenOut
	}
}

//go:build !linux

package sendwindow

import (
	"syscall"

	"github.com/pkg/errors"
)

// ErrUnsupported is returned on platforms without a SIOCOUTQ-equivalent
// ioctl wired up; callers should fall back to a fixed window.
var ErrUnsupported = errors.New("sendwindow: outstanding-byte query not implemented on this platform")

// OutstandingBytes is unimplemented outside Linux; see
// sendwindow_linux.go for the SIOCOUTQ-based implementation.
func OutstandingBytes(conn syscall.Conn) (int, error) {
	return 0, ErrUnsupported
}

// Window falls back to treating the full configured buffer as
// available when the platform cannot report outstanding bytes.
func Window(conn syscall.Conn, bufferSize int) (int, error) {
	return bufferSize, nil
}

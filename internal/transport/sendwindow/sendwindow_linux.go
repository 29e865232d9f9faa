//go:build linux

// Package sendwindow answers "how many bytes does the socket still
// have queued to write" for spec.md section 4.5 step 3: "Query the
// socket's current outstanding write bytes; compute send window =
// socket buffer size - outstanding." Grounded on the SIOCOUTQ ioctl
// approach used throughout runZeroInc-sockstats's pkg/tcpinfo.
package sendwindow

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// OutstandingBytes returns the number of bytes still queued in the
// kernel's send buffer for conn, via the SIOCOUTQ ioctl.
func OutstandingBytes(conn syscall.Conn) (int, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return 0, err
	}
	var n int
	var ioctlErr error
	err = raw.Control(func(fd uintptr) {
		n, ioctlErr = unix.IoctlGetInt(int(fd), unix.SIOCOUTQ)
	})
	if err != nil {
		return 0, err
	}
	if ioctlErr != nil {
		return 0, ioctlErr
	}
	return n, nil
}

// Window computes the available send window given the socket's
// configured send buffer size.
func Window(conn syscall.Conn, bufferSize int) (int, error) {
	outstanding, err := OutstandingBytes(conn)
	if err != nil {
		return 0, err
	}
	w := bufferSize - outstanding
	if w < 0 {
		w = 0
	}
	return w, nil
}

//go:build unix

package transport

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// tryWrite issues a single non-blocking write(2) on the socket. EAGAIN is
// reported as a zero-byte write so the caller can keep the remainder.
func tryWrite(nc net.Conn, p []byte) (int, error) {
	sc, ok := nc.(syscall.Conn)
	if !ok {
		return nc.Write(p)
	}
	rc, err := sc.SyscallConn()
	if err != nil {
		return 0, err
	}

	var n int
	var werr error
	err = rc.Write(func(fd uintptr) bool {
		for {
			n, werr = unix.Write(int(fd), p)
			if werr != unix.EINTR {
				break
			}
		}
		return true
	})
	if err != nil {
		return 0, err
	}
	if werr == unix.EAGAIN || werr == unix.EWOULDBLOCK {
		return 0, nil
	}
	if werr != nil {
		return 0, &net.OpError{Op: "write", Net: "tcp", Addr: nc.RemoteAddr(), Err: werr}
	}
	if n < 0 {
		n = 0
	}
	return n, nil
}

// control applies socket options before connect.
func (d *Dialer) control(_, _ string, c syscall.RawConn) error {
	if d.SendBufferSize <= 0 {
		return nil
	}
	var serr error
	err := c.Control(func(fd uintptr) {
		serr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_SNDBUF, d.SendBufferSize)
	})
	if err != nil {
		return err
	}
	return serr
}

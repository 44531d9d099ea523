//go:build !unix

package transport

import (
	"net"
	"syscall"
)

// tryWrite falls back to a blocking write where non-blocking writes are unavailable.
func tryWrite(nc net.Conn, p []byte) (int, error) {
	return nc.Write(p)
}

func (d *Dialer) control(_, _ string, _ syscall.RawConn) error {
	return nil
}

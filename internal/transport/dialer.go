package transport

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/muurk/wsclient/internal/logging"
	"go.uber.org/zap"
)

const (
	// DefaultTimeout bounds TCP connect plus the upgrade exchange
	DefaultTimeout = 10 * time.Second

	// readBufferSize is the size of the buffered reader behind Conn.Read
	readBufferSize = 32 << 10
)

// Errors returned by URL parsing
var (
	ErrTLSUnsupported = errors.New("TLS (wss/https) is not supported")
	ErrInvalidURL     = errors.New("invalid WebSocket URL")
)

// Dialer opens upgraded connections. The zero value is usable.
type Dialer struct {
	// Timeout is the connect-phase deadline (TCP connect and handshake).
	// Zero means DefaultTimeout; negative disables the deadline.
	Timeout time.Duration

	// Header holds extra request headers. A header with the same name as a
	// default handshake header replaces it.
	Header http.Header

	// SendBufferSize sets SO_SNDBUF on the socket when positive.
	SendBufferSize int
}

// Conn is an upgraded connection carrying raw WebSocket bytes.
type Conn struct {
	nc        net.Conn
	br        *bufio.Reader
	url       string
	status    int
	header    http.Header
	closeOnce sync.Once
	closeErr  error
}

// ParseURL validates a ws:// or http:// URL and fills in the default port and path.
func ParseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "ws", "http":
	case "wss", "https":
		return nil, ErrTLSUnsupported
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}

	if u.Hostname() == "" {
		return nil, fmt.Errorf("%w: missing host in %q", ErrInvalidURL, raw)
	}
	if u.Port() == "" {
		u.Host = net.JoinHostPort(u.Hostname(), "80")
	}
	if u.Path == "" {
		u.Path = "/"
	}
	return u, nil
}

// Dial connects to rawURL and performs the opening handshake.
//
// A non-101 response yields a *HandshakeError. Errors for which IsTimeout
// returns true mean the peer could not be reached in time.
func (d *Dialer) Dial(ctx context.Context, rawURL string) (*Conn, error) {
	u, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}

	timeout := d.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	nd := &net.Dialer{Control: d.control}
	nc, err := nd.DialContext(ctx, "tcp", u.Host)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", u.Host, err)
	}
	logging.LogConnection(rawURL, "tcp_connected", zap.String("remote_addr", nc.RemoteAddr().String()))

	conn, err := d.handshake(ctx, nc, u, rawURL)
	if err != nil {
		_ = nc.Close()
		return nil, err
	}
	return conn, nil
}

func (d *Dialer) handshake(ctx context.Context, nc net.Conn, u *url.URL, rawURL string) (*Conn, error) {
	if deadline, ok := ctx.Deadline(); ok {
		if err := nc.SetDeadline(deadline); err != nil {
			return nil, fmt.Errorf("failed to set handshake deadline: %w", err)
		}
	}

	// Unblock the exchange if ctx is cancelled without a deadline
	stop := context.AfterFunc(ctx, func() {
		_ = nc.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	key, err := GenerateKey()
	if err != nil {
		return nil, err
	}

	req := newUpgradeRequest(u, key, d.Header)
	if err := req.Write(nc); err != nil {
		return nil, fmt.Errorf("failed to write upgrade request: %w", err)
	}

	br := bufio.NewReaderSize(nc, readBufferSize)
	resp, err := http.ReadResponse(br, req)
	if err != nil {
		return nil, fmt.Errorf("failed to read upgrade response: %w", err)
	}
	_ = resp.Body.Close()

	logging.LogHandshake(rawURL, resp.StatusCode, flattenHeaders(resp.Header))

	warnings, err := checkUpgradeResponse(resp, key)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		logging.Warn("Handshake accepted with irregular response",
			zap.String("url", rawURL),
			zap.String("warning", w),
		)
	}

	if err := nc.SetDeadline(time.Time{}); err != nil {
		return nil, fmt.Errorf("failed to clear handshake deadline: %w", err)
	}

	return &Conn{
		nc:     nc,
		br:     br,
		url:    rawURL,
		status: resp.StatusCode,
		header: resp.Header,
	}, nil
}

// Dial connects with a zero-value Dialer.
func Dial(ctx context.Context, rawURL string) (*Conn, error) {
	var d Dialer
	return d.Dial(ctx, rawURL)
}

// Read returns inbound bytes, starting with any buffered behind the handshake response.
func (c *Conn) Read(p []byte) (int, error) {
	return c.br.Read(p)
}

// TryWrite makes one write attempt and returns how many bytes the kernel
// accepted. A short count with a nil error means the socket buffer is full.
func (c *Conn) TryWrite(p []byte) (int, error) {
	return tryWrite(c.nc, p)
}

// Close closes the underlying socket. It is safe to call more than once.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.nc.Close()
	})
	return c.closeErr
}

// URL returns the URL the connection was dialed with.
func (c *Conn) URL() string {
	return c.url
}

// StatusCode returns the handshake response status (always 101).
func (c *Conn) StatusCode() int {
	return c.status
}

// ResponseHeader returns the headers of the handshake response.
func (c *Conn) ResponseHeader() http.Header {
	return c.header
}

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.nc.RemoteAddr()
}

// IsTimeout reports whether a Dial error means the peer timed out or could
// not be reached, as opposed to a rejected handshake.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	// A failed TCP connect (refused, unreachable) counts as unreachable.
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		var dnsErr *net.DNSError
		return !errors.As(err, &dnsErr)
	}
	return false
}

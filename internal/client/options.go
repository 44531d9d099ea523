package client

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/muurk/wsclient/internal/transport"
)

// Conn is the byte stream of an upgraded connection.
type Conn interface {
	io.Reader
	// TryWrite makes a single write attempt and may accept fewer bytes than given.
	TryWrite(p []byte) (int, error)
	Close() error
}

// Dialer opens upgraded connections. Errors for which transport.IsTimeout
// reports true are surfaced as Timeout, all others as Reject.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// Option configures a Client.
type Option func(*options)

type options struct {
	header         http.Header
	connectTimeout time.Duration
	sendBufferSize int
	maxBuffered    int
	autoReply      bool
	dialer         Dialer
	tap            Tap
	maskSource     io.Reader
}

func defaultOptions() options {
	return options{
		connectTimeout: transport.DefaultTimeout,
	}
}

// WithHeader adds custom headers to the upgrade request.
func WithHeader(h http.Header) Option {
	return func(o *options) {
		o.header = h.Clone()
	}
}

// WithConnectTimeout bounds TCP connect plus handshake. Zero or negative
// means no deadline.
func WithConnectTimeout(d time.Duration) Option {
	return func(o *options) {
		o.connectTimeout = d
	}
}

// WithSendBufferSize sets SO_SNDBUF on the socket.
func WithSendBufferSize(n int) Option {
	return func(o *options) {
		o.sendBufferSize = n
	}
}

// WithMaxBuffered caps the bytes held for an incomplete inbound frame.
// Zero means unbounded.
func WithMaxBuffered(n int) Option {
	return func(o *options) {
		o.maxBuffered = n
	}
}

// WithAutoReply answers Ping with Pong and echoes the first Close.
func WithAutoReply(on bool) Option {
	return func(o *options) {
		o.autoReply = on
	}
}

// WithDialer replaces the TCP transport.
func WithDialer(d Dialer) Option {
	return func(o *options) {
		o.dialer = d
	}
}

// WithTap registers an observer for every frame sent or received.
func WithTap(t Tap) Option {
	return func(o *options) {
		o.tap = t
	}
}

// WithMaskSource sets the random source for mask keys (crypto/rand by default).
func WithMaskSource(r io.Reader) Option {
	return func(o *options) {
		o.maskSource = r
	}
}

// tcpDialer adapts transport.Dialer to Dialer.
type tcpDialer struct {
	d *transport.Dialer
}

func (t tcpDialer) Dial(ctx context.Context, url string) (Conn, error) {
	conn, err := t.d.Dial(ctx, url)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

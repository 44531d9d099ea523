package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/muurk/wsclient/internal/logging"
	"github.com/muurk/wsclient/internal/protocol"
	"github.com/muurk/wsclient/internal/transport"
	"go.uber.org/zap"
)

// readChunkSize is the buffer size for a single transport read
const readChunkSize = 16 << 10

// Errors returned by Send and Flush
var (
	ErrNotConnected = errors.New("not connected")
	ErrSendPending  = errors.New("previous frame not fully sent")
)

// Client is a single WebSocket client connection.
//
// Connect starts a background goroutine that performs the handshake and then
// reads frames until the connection ends. Send, Flush and Close may be called
// from any goroutine.
type Client struct {
	handler Handler
	opts    options
	dialer  Dialer
	encoder *protocol.Encoder

	state atomic.Int32

	// mu guards everything below and serializes writes
	mu        sync.Mutex
	conn      Conn
	url       string
	pending   *pendingSend
	closeSent bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// New creates a disconnected Client that reports events to handler.
func New(handler Handler, opts ...Option) *Client {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	d := o.dialer
	if d == nil {
		timeout := o.connectTimeout
		if timeout <= 0 {
			// transport.Dialer reads zero as DefaultTimeout
			timeout = -1
		}
		d = tcpDialer{d: &transport.Dialer{
			Timeout:        timeout,
			Header:         o.header,
			SendBufferSize: o.sendBufferSize,
		}}
	}

	done := make(chan struct{})
	close(done)

	return &Client{
		handler: handler,
		opts:    o,
		dialer:  d,
		encoder: protocol.NewEncoder(o.maskSource),
		done:    done,
	}
}

// State returns the current connection state.
func (c *Client) State() State {
	return State(c.state.Load())
}

// URL returns the URL passed to the most recent Connect.
func (c *Client) URL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.url
}

// Done returns a channel that is closed when the background goroutines of the
// most recent Connect and every earlier one have exited. It is already closed
// before any Connect.
func (c *Client) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Connect starts connecting to url and returns immediately. The outcome is
// reported through Handler.OnConnect. It does nothing unless the client is
// Disconnected.
//
// The new connection's goroutine starts dialing only after the previous one
// has exited, so its OnDisconnect always precedes the next OnConnect and
// Done covers both.
func (c *Client) Connect(url string) {
	c.mu.Lock()
	if !c.state.CompareAndSwap(int32(Disconnected), int32(Connecting)) {
		c.mu.Unlock()
		logging.Debug("Connect ignored",
			zap.String("url", url),
			zap.Stringer("state", c.State()),
		)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	prev := c.done
	done := make(chan struct{})
	c.url = url
	c.cancel = cancel
	c.done = done
	c.mu.Unlock()

	logging.LogConnection(url, "connecting")
	go c.run(ctx, url, prev, done)
}

func (c *Client) run(ctx context.Context, url string, prev <-chan struct{}, done chan struct{}) {
	defer close(done)
	<-prev

	dialCtx := ctx
	if c.opts.connectTimeout > 0 {
		var dialCancel context.CancelFunc
		dialCtx, dialCancel = context.WithTimeout(ctx, c.opts.connectTimeout)
		defer dialCancel()
	}

	conn, err := c.dialer.Dial(dialCtx, url)
	if err == nil && ctx.Err() != nil {
		// Shutdown ran while dialing
		_ = conn.Close()
		conn, err = nil, ctx.Err()
	}
	if err != nil {
		result := Reject
		if transport.IsTimeout(err) {
			result = Timeout
		}
		c.clearCancel()
		c.state.Store(int32(Disconnected))
		logging.LogConnection(url, "connect_failed",
			zap.Stringer("result", result),
			zap.Error(err),
		)
		c.handler.OnConnect(result)
		return
	}

	c.mu.Lock()
	c.conn = conn
	c.pending = nil
	c.closeSent = false
	c.state.Store(int32(Connected))
	c.mu.Unlock()

	logging.LogConnection(url, "connected")
	c.handler.OnConnect(Success)

	err = c.receive(conn, url)

	c.mu.Lock()
	_ = conn.Close()
	c.conn = nil
	c.pending = nil
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.state.Store(int32(Disconnected))
	c.mu.Unlock()

	if err != nil {
		logging.LogConnection(url, "disconnected", zap.Error(err))
	} else {
		logging.LogConnection(url, "disconnected")
	}
	if dh, ok := c.handler.(DisconnectHandler); ok {
		dh.OnDisconnect(err)
	}
}

func (c *Client) clearCancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// receive reads from conn until it fails, feeding the reassembler. A clean
// EOF returns nil.
func (c *Client) receive(conn Conn, url string) error {
	ra := protocol.NewReassembler(c.opts.maxBuffered)
	emit := func(f *protocol.Frame) {
		c.dispatch(url, f)
	}

	buf := make([]byte, readChunkSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			logging.LogRawBytes("recv", buf[:n])
			if _, ferr := ra.Feed(buf[:n], emit); ferr != nil {
				return ferr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
	}
}

func (c *Client) dispatch(url string, f *protocol.Frame) {
	logging.LogFrame(url, "recv", byte(f.Opcode), f.FIN, f.Payload)
	if c.opts.tap != nil {
		c.opts.tap.Frame(DirectionRecv, f.Opcode, f.FIN, f.Payload)
	}

	c.handler.OnRecv(Message{Type: f.Opcode, Data: f.Payload}, f.FIN)

	if c.opts.autoReply {
		c.autoReply(url, f)
	}
}

// autoReply answers Ping with Pong and echoes the status code of the first Close.
func (c *Client) autoReply(url string, f *protocol.Frame) {
	var op protocol.FrameType
	var payload []byte

	switch f.Opcode {
	case protocol.Ping:
		op, payload = protocol.Pong, f.Payload
	case protocol.Close:
		op = protocol.Close
		if len(f.Payload) >= 2 {
			payload = f.Payload[:2]
		}
	default:
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if op == protocol.Close && c.closeSent {
		return
	}
	if _, err := c.sendLocked(op, payload); err != nil {
		logging.Warn("Automatic reply failed",
			zap.String("url", url),
			zap.Stringer("opcode", op),
			zap.Error(err),
		)
	}
}

// Send encodes data as a single final frame and makes one write attempt.
//
// It returns the number of bytes the transport did not accept; those stay
// pending and are written first by the next Send or Flush. If a pending frame
// still cannot be completed, Send returns its remaining count with
// ErrSendPending without sending the new frame. Any other error is a hard
// failure and the frame is discarded.
func (c *Client) Send(op protocol.FrameType, data []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sendLocked(op, data)
}

func (c *Client) sendLocked(op protocol.FrameType, data []byte) (int, error) {
	if c.conn == nil || c.State() != Connected {
		return 0, ErrNotConnected
	}

	if c.pending != nil {
		remaining, err := c.flushLocked()
		if err != nil {
			return 0, err
		}
		if remaining > 0 {
			return remaining, ErrSendPending
		}
	}

	frame, err := c.encoder.Encode(op, data)
	if err != nil {
		return 0, fmt.Errorf("failed to encode %s frame: %w", op, err)
	}

	n, err := c.conn.TryWrite(frame)
	if err != nil {
		return 0, fmt.Errorf("failed to send %s frame: %w", op, err)
	}

	logging.LogFrame(c.url, "send", byte(op), true, data)
	if c.opts.tap != nil {
		c.opts.tap.Frame(DirectionSend, op, true, data)
	}
	if op == protocol.Close {
		c.closeSent = true
	}

	if n < len(frame) {
		c.pending = newPendingSend(frame, n)
		logging.Debug("Partial write",
			zap.String("url", c.url),
			zap.Int("written", n),
			zap.Int("remaining", c.pending.remaining()),
		)
		return c.pending.remaining(), nil
	}
	return 0, nil
}

// Flush retries the pending frame, if any, and returns how many of its bytes
// are still unsent.
func (c *Client) Flush() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil || c.State() != Connected {
		return 0, ErrNotConnected
	}
	if c.pending == nil {
		return 0, nil
	}
	return c.flushLocked()
}

func (c *Client) flushLocked() (int, error) {
	p := c.pending
	n, err := c.conn.TryWrite(p.unsent())
	if err != nil {
		c.pending = nil
		return 0, fmt.Errorf("failed to flush pending frame: %w", err)
	}

	p.advance(n)
	if p.complete() {
		c.pending = nil
		return 0, nil
	}
	return p.remaining(), nil
}

// Pending returns the number of unsent bytes of a partially written frame.
func (c *Client) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return 0
	}
	return c.pending.remaining()
}

// Close sends a Close frame when connected and does nothing otherwise. The
// state changes only once the peer ends the connection.
func (c *Client) Close() error {
	if c.State() != Connected {
		return nil
	}
	_, err := c.Send(protocol.Close, nil)
	if errors.Is(err, ErrNotConnected) {
		return nil
	}
	return err
}

// Shutdown closes the connection and waits for the background goroutine to
// exit. If ctx ends first, the transport is closed forcibly and Shutdown still
// waits before returning ctx.Err().
func (c *Client) Shutdown(ctx context.Context) error {
	if err := c.Close(); err != nil {
		logging.Debug("Close frame not sent during shutdown", zap.Error(err))
	}

	done := c.Done()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
	}

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.mu.Unlock()

	<-done
	return ctx.Err()
}

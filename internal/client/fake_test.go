package client

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/muurk/wsclient/internal/protocol"
)

const waitTimeout = 5 * time.Second

// fakeConn is an in-memory transport. Reads come from the reads channel and
// each TryWrite accepts at most the next value of limits (-1 = all).
type fakeConn struct {
	mu       sync.Mutex
	written  []byte
	writes   int
	limits   []int
	writeErr error

	reads     chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		reads:  make(chan []byte, 16),
		closed: make(chan struct{}),
	}
}

func (f *fakeConn) Read(p []byte) (int, error) {
	select {
	case b, ok := <-f.reads:
		if !ok {
			return 0, io.EOF
		}
		return copy(p, b), nil
	case <-f.closed:
		return 0, io.EOF
	}
}

func (f *fakeConn) TryWrite(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.writes++
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	n := len(p)
	if len(f.limits) > 0 {
		if lim := f.limits[0]; lim >= 0 && lim < n {
			n = lim
		}
		f.limits = f.limits[1:]
	}
	f.written = append(f.written, p[:n]...)
	return n, nil
}

func (f *fakeConn) Close() error {
	f.closeOnce.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeConn) setLimits(limits ...int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limits = limits
}

func (f *fakeConn) setWriteErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeErr = err
}

func (f *fakeConn) snapshot() ([]byte, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]byte(nil), f.written...), f.writes
}

// fakeDialer hands out conn, or fails with err. When gate is non-nil Dial
// blocks until it is closed or ctx ends.
type fakeDialer struct {
	mu    sync.Mutex
	conn  *fakeConn
	err   error
	gate  chan struct{}
	calls int
}

func (d *fakeDialer) Dial(ctx context.Context, url string) (Conn, error) {
	d.mu.Lock()
	d.calls++
	gate := d.gate
	d.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if d.err != nil {
		return nil, d.err
	}
	return d.conn, nil
}

func (d *fakeDialer) dialCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

type received struct {
	msg Message
	fin bool
}

// recorder is a Handler that records every callback.
type recorder struct {
	connects    chan ConnectResult
	messages    chan received
	disconnects chan error
}

func newRecorder() *recorder {
	return &recorder{
		connects:    make(chan ConnectResult, 8),
		messages:    make(chan received, 64),
		disconnects: make(chan error, 8),
	}
}

func (r *recorder) OnConnect(result ConnectResult) {
	r.connects <- result
}

func (r *recorder) OnRecv(msg Message, fin bool) {
	data := append([]byte(nil), msg.Data...)
	r.messages <- received{msg: Message{Type: msg.Type, Data: data}, fin: fin}
}

func (r *recorder) OnDisconnect(err error) {
	r.disconnects <- err
}

func (r *recorder) waitConnect(t *testing.T) ConnectResult {
	t.Helper()
	select {
	case res := <-r.connects:
		return res
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for OnConnect")
		return 0
	}
}

func (r *recorder) waitMessage(t *testing.T) received {
	t.Helper()
	select {
	case m := <-r.messages:
		return m
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for OnRecv")
		return received{}
	}
}

func (r *recorder) waitDisconnect(t *testing.T) error {
	t.Helper()
	select {
	case err := <-r.disconnects:
		return err
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for OnDisconnect")
		return nil
	}
}

func waitDone(t *testing.T, c *Client) {
	t.Helper()
	select {
	case <-c.Done():
	case <-time.After(waitTimeout):
		t.Fatal("background goroutine did not exit")
	}
}

// connected returns a Client already connected to a fake transport.
func connected(t *testing.T, opts ...Option) (*Client, *fakeConn, *recorder) {
	t.Helper()
	conn := newFakeConn()
	rec := newRecorder()
	c := New(rec, append([]Option{WithDialer(&fakeDialer{conn: conn})}, opts...)...)
	c.Connect("ws://fake/")
	if res := rec.waitConnect(t); res != Success {
		t.Fatalf("OnConnect(%v), want success", res)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		_ = c.Shutdown(ctx)
	})
	return c, conn, rec
}

// serverFrame builds an unmasked frame as a server would send it.
func serverFrame(fin bool, op protocol.FrameType, payload []byte) []byte {
	b0 := byte(op)
	if fin {
		b0 |= 0x80
	}
	out := []byte{b0}
	switch n := len(payload); {
	case n <= 125:
		out = append(out, byte(n))
	case n <= 0xFFFF:
		out = append(out, 126, byte(n>>8), byte(n))
	default:
		out = append(out, 127, 0, 0, 0, 0, byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
	}
	return append(out, payload...)
}

// decodeAll decodes the frames a client wrote.
func decodeAll(t *testing.T, data []byte) []*protocol.Frame {
	t.Helper()
	var frames []*protocol.Frame
	ra := protocol.NewReassembler(0)
	_, err := ra.Feed(data, func(f *protocol.Frame) {
		cp := *f
		cp.Payload = append([]byte(nil), f.Payload...)
		frames = append(frames, &cp)
	})
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	if ra.Buffered() != 0 {
		t.Fatalf("%d trailing bytes after decoding", ra.Buffered())
	}
	return frames
}

var errBrokenPipe = errors.New("broken pipe")

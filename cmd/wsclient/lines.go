package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/muurk/wsclient/internal/client"
	"github.com/muurk/wsclient/internal/protocol"
	"github.com/muurk/wsclient/internal/session"
	"github.com/muurk/wsclient/internal/ui"
)

// flushInterval is how often a partially written frame is retried
const flushInterval = 10 * time.Millisecond

// lineSession prints frames as plain lines for non-interactive use. It is
// the Handler and Tap of its client.
type lineSession struct {
	mu      sync.Mutex
	printer *ui.Printer
	now     func() time.Time
	stats   ui.FrameStats

	results chan client.ConnectResult
	closed  chan error
}

func newLineSession(out io.Writer) *lineSession {
	return &lineSession{
		printer: ui.NewPrinter(out),
		now:     time.Now,
		results: make(chan client.ConnectResult, 1),
		closed:  make(chan error, 1),
	}
}

func (s *lineSession) OnConnect(result client.ConnectResult) {
	select {
	case s.results <- result:
	default:
	}
}

// OnRecv does nothing; received frames are printed by Frame.
func (s *lineSession) OnRecv(client.Message, bool) {}

func (s *lineSession) OnDisconnect(err error) {
	select {
	case s.closed <- err:
	default:
	}
}

func (s *lineSession) Frame(direction string, op protocol.FrameType, fin bool, payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Add(direction, op, len(payload))
	s.printer.PrintFrame(ui.FrameLine{
		Time:      s.now(),
		Direction: direction,
		Type:      op,
		FIN:       fin,
		Payload:   payload,
	})
}

// summary returns the frame counts so far
func (s *lineSession) summary() ui.FrameStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *lineSession) status(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.printer.PrintStatus(format, args...)
}

// connect starts c and waits for the outcome.
func (s *lineSession) connect(ctx context.Context, c *client.Client, url string) error {
	c.Connect(url)
	select {
	case result := <-s.results:
		if result != client.Success {
			return &connectError{URL: url, Result: result}
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// connectError reports a failed connection attempt
type connectError struct {
	URL    string
	Result client.ConnectResult
}

func (e *connectError) Error() string {
	return fmt.Sprintf("could not connect to %s: %s", e.URL, e.Result)
}

// send writes one frame, retrying a partial write until it completes or ctx
// ends.
func send(ctx context.Context, c *client.Client, op protocol.FrameType, data []byte) error {
	remaining, err := c.Send(op, data)
	for {
		if err != nil && !errors.Is(err, client.ErrSendPending) {
			return err
		}
		if remaining == 0 && err == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%d bytes unsent: %w", remaining, ctx.Err())
		case <-time.After(flushInterval):
		}

		if errors.Is(err, client.ErrSendPending) {
			remaining, err = c.Send(op, data)
		} else {
			remaining, err = c.Flush()
		}
	}
}

// run reads lines from in and acts on them until EOF, /quit, the peer
// disconnecting, or ctx ending.
func (s *lineSession) run(ctx context.Context, c *client.Client, in io.Reader, binary bool) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 64*1024), 16<<20)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-s.closed:
			if err != nil {
				s.status("disconnected: %v", err)
			} else {
				s.status("disconnected")
			}
			return err
		case err := <-readErr:
			return err
		case line := <-lines:
			input, err := session.ParseInput(line, binary)
			if err != nil {
				s.status("%v", err)
				continue
			}
			switch input.Action {
			case session.ActionQuit:
				return nil
			case session.ActionClose:
				if err := c.Close(); err != nil {
					return err
				}
			case session.ActionFlush:
				n, err := c.Flush()
				if err != nil {
					return err
				}
				s.status("%d bytes still pending", n)
			case session.ActionSend:
				if err := send(ctx, c, input.Op, input.Payload); err != nil {
					return err
				}
			}
		}
	}
}

// wait prints incoming frames until d elapses, the peer disconnects, or ctx
// ends.
func (s *lineSession) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return nil
	case err := <-s.closed:
		return err
	}
}

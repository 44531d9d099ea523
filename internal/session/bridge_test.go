package session

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/wsclient/internal/client"
	"github.com/muurk/wsclient/internal/protocol"
)

func TestBridgeDeliversInOrder(t *testing.T) {
	b := newBridge()
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	b.now = func() time.Time { return fixed }

	// Posting must not block before anyone is reading.
	b.OnConnect(client.Success)
	payload := []byte("hi")
	b.Frame(client.DirectionRecv, protocol.Text, true, payload)
	payload[0] = 'X'
	b.OnRecv(client.Message{Type: protocol.Text, Data: payload}, true)
	b.OnDisconnect(errors.New("gone"))

	got := make(chan tea.Msg, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.run(ctx, func(msg tea.Msg) { got <- msg })

	var msgs []tea.Msg
	for len(msgs) < 3 {
		select {
		case msg := <-got:
			msgs = append(msgs, msg)
		case <-time.After(2 * time.Second):
			t.Fatalf("received %d messages, want 3", len(msgs))
		}
	}

	if r, ok := msgs[0].(connectResultMsg); !ok || r.result != client.Success {
		t.Errorf("msgs[0] = %#v, want connectResultMsg{Success}", msgs[0])
	}

	f, ok := msgs[1].(frameMsg)
	if !ok {
		t.Fatalf("msgs[1] = %#v, want frameMsg", msgs[1])
	}
	if string(f.line.Payload) != "hi" {
		t.Errorf("frame payload = %q, want %q (must be copied)", f.line.Payload, "hi")
	}
	if f.line.Direction != client.DirectionRecv || f.line.Type != protocol.Text || !f.line.FIN {
		t.Errorf("frame line = %+v", f.line)
	}
	if !f.line.Time.Equal(fixed) {
		t.Errorf("frame time = %v, want %v", f.line.Time, fixed)
	}

	if d, ok := msgs[2].(disconnectMsg); !ok || d.err == nil || d.err.Error() != "gone" {
		t.Errorf("msgs[2] = %#v, want disconnectMsg{gone}", msgs[2])
	}
}

func TestBridgeStopsOnCancel(t *testing.T) {
	b := newBridge()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		b.run(ctx, func(tea.Msg) {})
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}

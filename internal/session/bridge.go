package session

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/eapache/queue"

	"github.com/muurk/wsclient/internal/client"
	"github.com/muurk/wsclient/internal/protocol"
	"github.com/muurk/wsclient/internal/ui"
)

// bridge turns client callbacks into tea messages.
//
// Callbacks may run while the client holds its send lock, and Update may be
// inside Client.Send at the same time, so posting never blocks. Messages are
// queued and delivered in order by run.
type bridge struct {
	mu   sync.Mutex
	q    *queue.Queue
	wake chan struct{}
	now  func() time.Time
}

func newBridge() *bridge {
	return &bridge{
		q:    queue.New(),
		wake: make(chan struct{}, 1),
		now:  time.Now,
	}
}

func (b *bridge) post(msg tea.Msg) {
	b.mu.Lock()
	b.q.Add(msg)
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *bridge) next() (tea.Msg, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.q.Length() == 0 {
		return nil, false
	}
	return b.q.Remove(), true
}

// run delivers queued messages to send until ctx is done.
func (b *bridge) run(ctx context.Context, send func(tea.Msg)) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.wake:
		}
		for {
			msg, ok := b.next()
			if !ok {
				break
			}
			send(msg)
		}
	}
}

func (b *bridge) OnConnect(result client.ConnectResult) {
	b.post(connectResultMsg{result: result})
}

// OnRecv is a no-op; received frames arrive through Frame with sent ones.
func (b *bridge) OnRecv(client.Message, bool) {}

func (b *bridge) OnDisconnect(err error) {
	b.post(disconnectMsg{err: err})
}

func (b *bridge) Frame(direction string, op protocol.FrameType, fin bool, payload []byte) {
	b.post(frameMsg{line: ui.FrameLine{
		Time:      b.now(),
		Direction: direction,
		Type:      op,
		FIN:       fin,
		Payload:   append([]byte(nil), payload...),
	}})
}

package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/muurk/wsclient/internal/protocol"
)

func newEchoServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/forbidden" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(mt, data); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestIntegration_EchoAndClose(t *testing.T) {
	srv := newEchoServer(t)
	rec := newRecorder()
	c := New(rec, WithConnectTimeout(2*time.Second))

	c.Connect("ws" + strings.TrimPrefix(srv.URL, "http") + "/echo")
	if got := rec.waitConnect(t); got != Success {
		t.Fatalf("OnConnect(%v), want success", got)
	}
	if got := c.State(); got != Connected {
		t.Errorf("State() = %v, want %v", got, Connected)
	}

	if n, err := c.Send(protocol.Text, []byte("Hello!")); err != nil || n != 0 {
		t.Fatalf("Send() = (%d, %v), want (0, nil)", n, err)
	}
	got := rec.waitMessage(t)
	if got.msg.Type != protocol.Text || string(got.msg.Data) != "Hello!" || !got.fin {
		t.Errorf("echo = {%v, %q, fin=%v}, want {text, Hello!, fin=true}", got.msg.Type, got.msg.Data, got.fin)
	}

	big := strings.Repeat("x", 70000)
	if _, err := c.Send(protocol.Binary, []byte(big)); err != nil {
		t.Fatalf("Send(70000) error = %v", err)
	}
	// A short write would leave bytes pending; push them out
	for c.Pending() > 0 {
		if _, err := c.Flush(); err != nil {
			t.Fatalf("Flush() error = %v", err)
		}
		time.Sleep(time.Millisecond)
	}
	got = rec.waitMessage(t)
	if got.msg.Type != protocol.Binary || len(got.msg.Data) != len(big) {
		t.Errorf("echo = {%v, %d bytes}, want {binary, %d bytes}", got.msg.Type, len(got.msg.Data), len(big))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
	if got := c.State(); got != Disconnected {
		t.Errorf("State() = %v, want %v", got, Disconnected)
	}
	rec.waitDisconnect(t)
}

func TestIntegration_Rejected(t *testing.T) {
	srv := newEchoServer(t)
	rec := newRecorder()
	c := New(rec)

	c.Connect("ws" + strings.TrimPrefix(srv.URL, "http") + "/forbidden")
	if got := rec.waitConnect(t); got != Reject {
		t.Fatalf("OnConnect(%v), want reject", got)
	}
	waitDone(t, c)
	if got := c.State(); got != Disconnected {
		t.Errorf("State() = %v, want %v", got, Disconnected)
	}
	if len(rec.connects) != 0 {
		t.Errorf("OnConnect fired %d extra times", len(rec.connects))
	}
}

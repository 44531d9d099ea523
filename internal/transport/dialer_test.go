package transport

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// echoServer starts a gorilla/websocket server that echoes every message.
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
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

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

// maskedText builds a masked, final text frame with a fixed key.
func maskedText(payload string) []byte {
	key := [4]byte{1, 2, 3, 4}
	out := []byte{0x81, 0x80 | byte(len(payload)), key[0], key[1], key[2], key[3]}
	for i := 0; i < len(payload); i++ {
		out = append(out, payload[i]^key[i%4])
	}
	return out
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantHost string
		wantPath string
		wantErr  error
	}{
		{"ws with port", "ws://example.com:8080/chat", "example.com:8080", "/chat", nil},
		{"ws default port", "ws://example.com/chat", "example.com:80", "/chat", nil},
		{"http accepted", "http://127.0.0.1", "127.0.0.1:80", "/", nil},
		{"query kept", "ws://h/p?x=1", "h:80", "/p", nil},
		{"ipv6", "ws://[::1]:9000/", "[::1]:9000", "/", nil},
		{"wss rejected", "wss://example.com/", "", "", ErrTLSUnsupported},
		{"https rejected", "https://example.com/", "", "", ErrTLSUnsupported},
		{"ftp rejected", "ftp://example.com/", "", "", ErrInvalidURL},
		{"missing host", "ws:///path", "", "", ErrInvalidURL},
		{"garbage", "://", "", "", ErrInvalidURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := ParseURL(tt.raw)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseURL(%q) error = %v, want %v", tt.raw, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseURL(%q) unexpected error: %v", tt.raw, err)
			}
			if u.Host != tt.wantHost {
				t.Errorf("Host = %q, want %q", u.Host, tt.wantHost)
			}
			if u.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", u.Path, tt.wantPath)
			}
		})
	}
}

func TestDial_EchoRoundTrip(t *testing.T) {
	srv := echoServer(t)

	d := &Dialer{Timeout: 5 * time.Second, SendBufferSize: 64 << 10}
	conn, err := d.Dial(context.Background(), wsURL(srv)+"/echo")
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	if conn.StatusCode() != http.StatusSwitchingProtocols {
		t.Errorf("StatusCode() = %d, want 101", conn.StatusCode())
	}

	frame := maskedText("hello")
	n, err := conn.TryWrite(frame)
	if err != nil {
		t.Fatalf("TryWrite() error = %v", err)
	}
	if n != len(frame) {
		t.Fatalf("TryWrite() = %d, want %d", n, len(frame))
	}

	_ = conn.nc.SetReadDeadline(time.Now().Add(5 * time.Second))
	got := make([]byte, 7)
	if _, err := io.ReadFull(conn, got); err != nil {
		t.Fatalf("read echo: %v", err)
	}
	want := []byte{0x81, 0x05, 'h', 'e', 'l', 'l', 'o'}
	if string(got) != string(want) {
		t.Errorf("echo = % x, want % x", got, want)
	}
}

func TestDial_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := (&Dialer{Timeout: 5 * time.Second}).Dial(context.Background(), wsURL(srv))
	var herr *HandshakeError
	if !errors.As(err, &herr) {
		t.Fatalf("Dial() error = %v, want *HandshakeError", err)
	}
	if herr.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d, want 403", herr.StatusCode)
	}
	if IsTimeout(err) {
		t.Errorf("IsTimeout(%v) = true, want false", err)
	}
}

func TestDial_CustomHeaders(t *testing.T) {
	got := make(chan http.Header, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r.Header.Clone()
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.Close()
	}))
	defer srv.Close()

	h := http.Header{}
	h.Set("Authorization", "Bearer token")
	h.Set("User-Agent", "custom-agent")

	conn, err := (&Dialer{Header: h}).Dial(context.Background(), wsURL(srv))
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	conn.Close()

	hdr := <-got
	if v := hdr.Get("Authorization"); v != "Bearer token" {
		t.Errorf("Authorization = %q, want %q", v, "Bearer token")
	}
	if v := hdr.Get("User-Agent"); v != "custom-agent" {
		t.Errorf("User-Agent = %q, want %q", v, "custom-agent")
	}
	if v := hdr.Get(HeaderVersion); v != ProtocolVersion {
		t.Errorf("%s = %q, want %q", HeaderVersion, v, ProtocolVersion)
	}
}

func TestDial_Timeout(t *testing.T) {
	// Accepts TCP but never answers the upgrade request
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			defer c.Close()
		}
	}()

	start := time.Now()
	_, err = (&Dialer{Timeout: 200 * time.Millisecond}).Dial(context.Background(), "ws://"+ln.Addr().String()+"/")
	if err == nil {
		t.Fatal("Dial() succeeded against a silent peer")
	}
	if !IsTimeout(err) {
		t.Errorf("IsTimeout(%v) = false, want true", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Dial() took %v, deadline not applied", elapsed)
	}
}

func TestDial_Refused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	_, err = (&Dialer{Timeout: time.Second}).Dial(context.Background(), "ws://"+addr+"/")
	if err == nil {
		t.Fatal("Dial() succeeded against a closed port")
	}
	if !IsTimeout(err) {
		t.Errorf("IsTimeout(%v) = false, want true", err)
	}
}

func TestDial_LeftoverBytesAfterHandshake(t *testing.T) {
	// Server sends the 101 and a frame in the same write
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		req, err := http.ReadRequest(bufio.NewReader(c))
		if err != nil {
			return
		}
		resp := "HTTP/1.1 101 Switching Protocols\r\n" +
			"Upgrade: websocket\r\n" +
			"Connection: Upgrade\r\n" +
			"Sec-WebSocket-Accept: " + ComputeAcceptKey(req.Header.Get(HeaderKey)) + "\r\n\r\n"
		_, _ = c.Write(append([]byte(resp), 0x81, 0x02, 'h', 'i'))
		time.Sleep(500 * time.Millisecond)
	}()

	conn, err := (&Dialer{Timeout: 5 * time.Second}).Dial(context.Background(), "ws://"+ln.Addr().String()+"/")
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	got := make([]byte, 4)
	if _, err := io.ReadFull(conn, got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "\x81\x02hi" {
		t.Errorf("leftover = % x, want 81 02 68 69", got)
	}
}

func TestConn_CloseTwice(t *testing.T) {
	srv := echoServer(t)
	conn, err := Dial(context.Background(), wsURL(srv))
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Errorf("first Close() error = %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestConn_ResponseHeader(t *testing.T) {
	srv := echoServer(t)
	conn, err := Dial(context.Background(), wsURL(srv))
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	h := conn.ResponseHeader()
	if !headerContainsToken(h, HeaderUpgrade, "websocket") {
		t.Errorf("Upgrade = %q, want websocket", h.Get(HeaderUpgrade))
	}
	if h.Get(HeaderAccept) == "" {
		t.Error("Sec-WebSocket-Accept missing from response header")
	}
}

func TestIsTimeout(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", context.DeadlineExceeded, true},
		{"wrapped deadline", errors.Join(errors.New("x"), context.DeadlineExceeded), true},
		{"handshake", &HandshakeError{StatusCode: 404, Status: "404 Not Found"}, false},
		{"dial refused", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, true},
		{"dns", &net.OpError{Op: "dial", Net: "tcp", Err: &net.DNSError{Err: "no such host", Name: "x"}}, false},
		{"read eof", io.EOF, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTimeout(tt.err); got != tt.want {
				t.Errorf("IsTimeout(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/muurk/wsclient/internal/client"
	"github.com/muurk/wsclient/internal/protocol"
	"github.com/muurk/wsclient/internal/urls"
)

func TestResult_Render(t *testing.T) {
	tests := []struct {
		name   string
		result *Result
		want   []string
	}{
		{
			"success",
			NewSuccessResult("Saved", map[string]string{"Name": "echo"}),
			[]string{SuccessMarker, "SUCCESS", "Saved", "Name:", "echo"},
		},
		{
			"failure",
			NewFailureResult("Send failed", errors.New("broken pipe"), []string{"Reconnect"}),
			[]string{FailureMarker, "FAILED", "Error: broken pipe", "Troubleshooting:", "Reconnect"},
		},
		{
			"warning",
			NewWarningResult("No services found", map[string]string{"Service": "_ws._tcp"}),
			[]string{"WARNING", "No services found", "_ws._tcp"},
		},
		{
			"unknown outcome renders as success",
			&Result{Outcome: Outcome(9), Title: "Odd"},
			[]string{"SUCCESS", "Odd"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.result.Render()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("Render() missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestConnectHints(t *testing.T) {
	if hints := ConnectHints(client.Success); hints != nil {
		t.Errorf("ConnectHints(success) = %v, want nil", hints)
	}

	reject := strings.Join(ConnectHints(client.Reject), "\n")
	if !strings.Contains(reject, urls.OpeningHandshake) || !strings.Contains(reject, "--header") {
		t.Errorf("ConnectHints(reject) = %q, want handshake link and --header", reject)
	}

	timeout := strings.Join(ConnectHints(client.Timeout), "\n")
	if !strings.Contains(timeout, "--timeout") {
		t.Errorf("ConnectHints(timeout) = %q, want --timeout hint", timeout)
	}
}

func TestNewConnectFailure(t *testing.T) {
	r := NewConnectFailure("ws://h/chat", client.Timeout)
	if r.Outcome != OutcomeFailure {
		t.Errorf("Outcome = %v, want %v", r.Outcome, OutcomeFailure)
	}
	if r.Details["URL"] != "ws://h/chat" || r.Details["Result"] != "timeout" {
		t.Errorf("Details = %v", r.Details)
	}
	if len(r.Hints) == 0 {
		t.Error("Hints is empty")
	}
}

func TestFrameStats_Add(t *testing.T) {
	var s FrameStats
	s.Add(client.DirectionSend, protocol.Text, 5)
	s.Add(client.DirectionRecv, protocol.Binary, 3)
	s.Add(client.DirectionRecv, protocol.Pong, 2)
	s.Add(client.DirectionSend, protocol.Close, 0)

	want := FrameStats{Sent: 2, Received: 2, Control: 2, Bytes: 10}
	if s != want {
		t.Errorf("FrameStats = %+v, want %+v", s, want)
	}
}

func TestNewSessionSummary(t *testing.T) {
	stats := FrameStats{Sent: 3, Received: 4, Control: 1, Bytes: 42}

	clean := NewSessionSummary("ws://h/", stats, nil)
	if clean.Outcome != OutcomeSuccess || clean.Err != nil {
		t.Errorf("clean summary = {%v, %v}, want success without error", clean.Outcome, clean.Err)
	}
	if got := clean.Details["Frames"]; got != "3 sent, 4 received" {
		t.Errorf("Frames = %q, want %q", got, "3 sent, 4 received")
	}
	if got := clean.Details["Payload"]; got != "42 bytes" {
		t.Errorf("Payload = %q, want %q", got, "42 bytes")
	}

	broken := NewSessionSummary("ws://h/", stats, errors.New("connection reset"))
	if broken.Outcome != OutcomeWarning {
		t.Errorf("Outcome = %v, want %v", broken.Outcome, OutcomeWarning)
	}
	if out := broken.Render(); !strings.Contains(out, "connection reset") {
		t.Errorf("Render() missing error:\n%s", out)
	}
}

func TestPrinter_PrintResultUsesPrinterWidth(t *testing.T) {
	var buf strings.Builder
	p := &Printer{out: &buf, width: 80}

	r := NewSuccessResult("Done", nil)
	p.PrintResult(r)
	if r.Width != 80 {
		t.Errorf("Width = %d, want 80", r.Width)
	}
	if !strings.Contains(buf.String(), "Done") {
		t.Errorf("output missing title:\n%s", buf.String())
	}
}

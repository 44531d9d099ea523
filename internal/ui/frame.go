package ui

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/muurk/wsclient/internal/protocol"
)

// MaxPayloadPreview is the number of payload bytes shown per frame line
const MaxPayloadPreview = 256

// FrameLine describes one frame for display
type FrameLine struct {
	Time      time.Time
	Direction string // "send" or "recv"
	Type      protocol.FrameType
	FIN       bool
	Payload   []byte
}

// Render returns a single styled line:
//
//	15:04:05.000 → text     hello
func (f FrameLine) Render() string {
	marker := FrameRecvStyle.Render(RecvMarker)
	if f.Direction == "send" {
		marker = FrameSendStyle.Render(SendMarker)
	}

	typeName := fmt.Sprintf("%-8s", f.Type.String())
	if f.Type.IsControl() {
		typeName = FrameControlStyle.Render(typeName)
	} else {
		typeName = FrameTypeStyle.Render(typeName)
	}

	var b strings.Builder
	b.WriteString(FrameTimeStyle.Render(f.Time.Format("15:04:05.000")))
	b.WriteString(" ")
	b.WriteString(marker)
	b.WriteString(" ")
	b.WriteString(typeName)
	b.WriteString(" ")
	b.WriteString(FramePayloadStyle.Render(FormatPayload(f.Type, f.Payload)))
	if !f.FIN {
		b.WriteString(StatusStyle.Render(" (more)"))
	}
	return b.String()
}

// FormatPayload renders a payload as text when it is valid UTF-8 and as hex
// otherwise. Close payloads show the status code. Long payloads are cut.
func FormatPayload(op protocol.FrameType, payload []byte) string {
	if len(payload) == 0 {
		return ""
	}

	if op == protocol.Close && len(payload) >= 2 {
		code := int(payload[0])<<8 | int(payload[1])
		if reason := payload[2:]; len(reason) > 0 {
			return fmt.Sprintf("%d %s", code, truncateText(reason))
		}
		return fmt.Sprintf("%d", code)
	}

	if op != protocol.Binary && utf8.Valid(payload) {
		return truncateText(payload)
	}

	shown := payload
	suffix := ""
	if len(shown) > MaxPayloadPreview {
		shown = shown[:MaxPayloadPreview]
		suffix = fmt.Sprintf("... (%d bytes)", len(payload))
	}
	return hex.EncodeToString(shown) + suffix
}

func truncateText(data []byte) string {
	text := strings.ReplaceAll(string(data), "\n", "⏎")
	if len(text) <= MaxPayloadPreview {
		return text
	}
	cut := MaxPayloadPreview
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return fmt.Sprintf("%s... (%d bytes)", text[:cut], len(data))
}

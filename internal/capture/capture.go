// Package capture records WebSocket frames to JSON Lines files for later
// analysis. Each session writes one file named capture-<timestamp>.jsonl.
package capture

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/muurk/wsclient/internal/logging"
	"github.com/muurk/wsclient/internal/protocol"
	"go.uber.org/zap"
)

// Record is one captured frame
type Record struct {
	Timestamp    time.Time `json:"timestamp"`
	MessageNum   int       `json:"message_num"`
	URL          string    `json:"url,omitempty"`
	Direction    string    `json:"direction"`
	FrameType    string    `json:"frame_type"`
	Opcode       byte      `json:"opcode"`
	FIN          bool      `json:"fin"`
	PayloadLen   int       `json:"payload_length"`
	PayloadHex   string    `json:"payload_hex"`
	PayloadAscii string    `json:"payload_ascii"`
}

// Writer appends Records to a capture file. It is safe for concurrent use
// and satisfies client.Tap.
type Writer struct {
	mu    sync.Mutex
	f     *os.File
	path  string
	url   string
	count int
	now   func() time.Time
}

// Open creates dir if needed and starts a new capture file in it.
func Open(dir, url string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create capture directory: %w", err)
	}

	now := time.Now()
	path := filepath.Join(dir, fmt.Sprintf("capture-%s.jsonl", now.Format("20060102-150405")))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture file: %w", err)
	}

	logging.Info("Capturing frames", zap.String("filename", path))
	return &Writer{f: f, path: path, url: url, now: time.Now}, nil
}

// Path returns the capture file path.
func (w *Writer) Path() string {
	return w.path
}

// Count returns the number of records written.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Frame records one frame. Write failures are logged, not returned.
func (w *Writer) Frame(direction string, op protocol.FrameType, fin bool, payload []byte) {
	if err := w.Write(direction, op, fin, payload); err != nil {
		logging.Error("Failed to write capture record",
			zap.String("filename", w.path),
			zap.Error(err),
		)
	}
}

// Write appends one record for a frame.
func (w *Writer) Write(direction string, op protocol.FrameType, fin bool, payload []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.f == nil {
		return os.ErrClosed
	}

	w.count++
	rec := Record{
		Timestamp:    w.now(),
		MessageNum:   w.count,
		URL:          w.url,
		Direction:    direction,
		FrameType:    op.String(),
		Opcode:       byte(op),
		FIN:          fin,
		PayloadLen:   len(payload),
		PayloadHex:   hex.EncodeToString(payload),
		PayloadAscii: toASCII(payload),
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal capture record: %w", err)
	}
	if _, err := w.f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write capture record: %w", err)
	}
	return nil
}

// Close closes the capture file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.f == nil {
		return nil
	}
	err := w.f.Close()
	w.f = nil
	logging.Debug("Capture closed",
		zap.String("filename", w.path),
		zap.Int("records", w.count),
	)
	return err
}

// toASCII converts bytes to ASCII string (non-printable chars become '.')
func toASCII(data []byte) string {
	result := make([]byte, len(data))
	for i, b := range data {
		if b >= 32 && b <= 126 {
			result[i] = b
		} else {
			result[i] = '.'
		}
	}
	return string(result)
}

package capture

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muurk/wsclient/internal/protocol"
)

// Payload decodes the record's hex payload.
func (r *Record) Payload() ([]byte, error) {
	return hex.DecodeString(r.PayloadHex)
}

// Type returns the record's frame type
func (r *Record) Type() protocol.FrameType {
	return protocol.FrameType(r.Opcode & 0x0F)
}

// ReadFile reads every record from a capture file.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture file: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses JSON Lines records from r. Blank lines are skipped. A line
// that does not parse stops reading with an error naming the line number.
func Read(r io.Reader) ([]Record, error) {
	var records []Record
	scanner := bufio.NewScanner(r)
	// Payloads are hex encoded twice over (hex and ASCII), so lines get long
	scanner.Buffer(make([]byte, 64*1024), 64<<20)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return records, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("failed to read capture: %w", err)
	}
	return records, nil
}

// Summary counts records per direction and frame type.
type Summary struct {
	Records int
	Bytes   int
	Sent    int
	Recv    int
	ByType  map[string]int
}

// Summarize tallies records.
func Summarize(records []Record) Summary {
	s := Summary{ByType: make(map[string]int)}
	for _, r := range records {
		s.Records++
		s.Bytes += r.PayloadLen
		switch r.Direction {
		case "send":
			s.Sent++
		case "recv":
			s.Recv++
		}
		s.ByType[r.FrameType]++
	}
	return s
}

// HexDump writes payload as 16 bytes per line with offsets and an ASCII
// column:
//
//	0000  48 65 6c 6c 6f 21                                 |Hello!|
func HexDump(w io.Writer, payload []byte) {
	for i := 0; i < len(payload); i += 16 {
		var b strings.Builder
		fmt.Fprintf(&b, "%04x  ", i)

		for j := 0; j < 16; j++ {
			if i+j < len(payload) {
				fmt.Fprintf(&b, "%02x ", payload[i+j])
			} else {
				b.WriteString("   ")
			}
			if j == 7 {
				b.WriteByte(' ')
			}
		}

		end := min(i+16, len(payload))
		b.WriteString(" |")
		b.WriteString(toASCII(payload[i:end]))
		b.WriteString("|\n")
		_, _ = io.WriteString(w, b.String())
	}
}

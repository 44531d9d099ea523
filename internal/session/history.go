package session

import (
	"strings"

	"github.com/eapache/queue"
)

// DefaultHistorySize is the number of frame lines kept for scrollback
const DefaultHistorySize = 1000

// history keeps the most recent frame lines, dropping the oldest.
type history struct {
	q     *queue.Queue
	limit int
}

func newHistory(limit int) *history {
	if limit <= 0 {
		limit = DefaultHistorySize
	}
	return &history{q: queue.New(), limit: limit}
}

// add appends a line and returns how many old lines were dropped.
func (h *history) add(line string) int {
	h.q.Add(line)
	dropped := 0
	for h.q.Length() > h.limit {
		h.q.Remove()
		dropped++
	}
	return dropped
}

func (h *history) len() int {
	return h.q.Length()
}

// String joins the retained lines oldest first.
func (h *history) String() string {
	var b strings.Builder
	for i := 0; i < h.q.Length(); i++ {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(h.q.Get(i).(string))
	}
	return b.String()
}

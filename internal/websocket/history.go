package websocket

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"
)

// append-only log of raw event payloads in arrival order
type History struct {
	mu     sync.RWMutex
	events [][]byte
	limit  int
}

// creates a history log. limit <= 0 means unbounded.
func NewHistory(limit int) *History {
	if limit < 0 {
		limit = 0
	}

	return &History{limit: limit}
}

// appends one payload, evicting the oldest entry when a limit is set and
// exceeded. returns the new length.
func (h *History) Append(payload []byte) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.events = append(h.events, payload)

	if h.limit > 0 && len(h.events) > h.limit {
		// the backing array is reallocated by a later append, releasing
		// evicted entries
		h.events[0] = nil
		h.events = h.events[1:]
	}

	return len(h.events)
}

// returns a copy of the current log. the payload slices are shared and must
// not be modified.
func (h *History) Snapshot() [][]byte {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([][]byte, len(h.events))
	copy(out, h.events)

	return out
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.events)
}

// builds the {"type":"history","data":[...]} replay. payloads are embedded
// as raw JSON and compacted; whitespace inside an event is not preserved.
func EncodeHistory(events [][]byte) ([]byte, error) {
	msg := HistoryMessage{
		Type: TypeHistory,
		Data: make([]json.RawMessage, len(events)),
	}

	for i, e := range events {
		msg.Data[i] = json.RawMessage(e)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(msg); err != nil {
		return nil, fmt.Errorf("failed to encode history: %w", err)
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

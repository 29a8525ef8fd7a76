package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryAppendAndSnapshot(t *testing.T) {
	h := NewHistory(0)

	assert.Equal(t, 1, h.Append([]byte(`{"x":1}`)))
	assert.Equal(t, 2, h.Append([]byte(`{"x":2}`)))

	snap := h.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, `{"x":1}`, string(snap[0]))
	assert.Equal(t, `{"x":2}`, string(snap[1]))

	// the snapshot does not grow with later appends
	h.Append([]byte(`{"x":3}`))
	assert.Len(t, snap, 2)
	assert.Equal(t, 3, h.Len())
}

func TestHistoryLimit(t *testing.T) {
	h := NewHistory(3)

	for _, p := range []string{"1", "2", "3", "4", "5"} {
		h.Append([]byte(p))
	}

	snap := h.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "3", string(snap[0]))
	assert.Equal(t, "5", string(snap[2]))
}

func TestNewHistoryNegativeLimitIsUnbounded(t *testing.T) {
	h := NewHistory(-5)

	for range 100 {
		h.Append([]byte("1"))
	}

	assert.Equal(t, 100, h.Len())
}

func TestEncodeHistory(t *testing.T) {
	tests := []struct {
		name   string
		events []string
		want   string
	}{
		{
			name:   "single event",
			events: []string{`{"x":1}`},
			want:   `{"type":"history","data":[{"x":1}]}`,
		},
		{
			name:   "keeps order",
			events: []string{`{"x":1}`, `{"x":2}`, `{"x":3}`},
			want:   `{"type":"history","data":[{"x":1},{"x":2},{"x":3}]}`,
		},
		{
			name:   "does not escape html",
			events: []string{`{"label":"<b>&</b>"}`},
			want:   `{"type":"history","data":[{"label":"<b>&</b>"}]}`,
		},
		{
			name:   "compacts whitespace",
			events: []string{"{ \"x\" :\n 1 }"},
			want:   `{"type":"history","data":[{"x":1}]}`,
		},
		{
			name:   "empty",
			events: nil,
			want:   `{"type":"history","data":[]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := make([][]byte, len(tt.events))
			for i, e := range tt.events {
				events[i] = []byte(e)
			}

			got, err := EncodeHistory(events)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

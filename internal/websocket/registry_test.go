package websocket

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterAndDeregister(t *testing.T) {
	r := NewRegistry()
	a := &Client{ID: "a"}
	b := &Client{ID: "b"}

	require.NoError(t, r.Register(a))
	require.NoError(t, r.Register(b))
	assert.Equal(t, 2, r.Count())
	assert.True(t, r.Has("a"))

	assert.True(t, r.Deregister(a))
	assert.False(t, r.Deregister(a), "second removal is a no-op")
	assert.Equal(t, 1, r.Count())
	assert.False(t, r.Has("a"))
}

func TestRegistryDeregisterIgnoresDifferentClientWithSameID(t *testing.T) {
	r := NewRegistry()
	live := &Client{ID: "x"}
	stale := &Client{ID: "x"}

	require.NoError(t, r.Register(live))

	assert.False(t, r.Deregister(stale))
	assert.True(t, r.Has("x"))
}

func TestRegistryRejectsDuplicate(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(&Client{ID: "dup"}))
	require.ErrorIs(t, r.Register(&Client{ID: "dup"}), ErrDuplicateSession)
}

func TestRegistrySnapshotExcluding(t *testing.T) {
	r := NewRegistry()
	clients := []*Client{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	for _, c := range clients {
		require.NoError(t, r.Register(c))
	}

	snap := r.SnapshotExcluding(clients[0])
	ids := make([]string, 0, len(snap))
	for _, c := range snap {
		ids = append(ids, c.ID)
	}

	assert.ElementsMatch(t, []string{"b", "c"}, ids)
	assert.Len(t, r.Snapshot(), 3)
}

func TestRegistrySnapshotIsStableUnderMutation(t *testing.T) {
	r := NewRegistry()
	for i := range 10 {
		require.NoError(t, r.Register(&Client{ID: fmt.Sprintf("c%d", i)}))
	}

	snap := r.Snapshot()

	for _, c := range snap {
		r.Deregister(c)
	}

	assert.Len(t, snap, 10)
	assert.Equal(t, 0, r.Count())
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			c := &Client{ID: fmt.Sprintf("c%d", i)}
			assert.NoError(t, r.Register(c))
			_ = r.SnapshotExcluding(c)
			r.Deregister(c)
		}(i)
	}

	wg.Wait()
	assert.Equal(t, 0, r.Count())
}

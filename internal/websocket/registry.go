package websocket

import (
	cmap "github.com/orcaman/concurrent-map/v2"
)

// the set of connected clients, keyed by client ID
type Registry struct {
	clients cmap.ConcurrentMap[string, *Client]
}

func NewRegistry() *Registry {
	return &Registry{
		clients: cmap.New[*Client](),
	}
}

// adds a client. IDs are generated per connection, so a duplicate means a bug
// in the caller and is reported instead of overwriting the live entry.
func (r *Registry) Register(c *Client) error {
	if !r.clients.SetIfAbsent(c.ID, c) {
		return ErrDuplicateSession
	}

	return nil
}

// removes the client if it is still registered. returns false when it was
// already gone, which is not an error.
func (r *Registry) Deregister(c *Client) bool {
	return r.clients.RemoveCb(c.ID, func(_ string, v *Client, exists bool) bool {
		return exists && v == c
	})
}

// point-in-time copy of every client except the given one
func (r *Registry) SnapshotExcluding(c *Client) []*Client {
	out := make([]*Client, 0, r.clients.Count())

	for item := range r.clients.IterBuffered() {
		if c != nil && item.Key == c.ID {
			continue
		}

		out = append(out, item.Val)
	}

	return out
}

// point-in-time copy of every client
func (r *Registry) Snapshot() []*Client {
	return r.SnapshotExcluding(nil)
}

func (r *Registry) Has(id string) bool {
	return r.clients.Has(id)
}

func (r *Registry) Count() int {
	return r.clients.Count()
}

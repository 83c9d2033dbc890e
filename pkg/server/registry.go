package server

import (
	"sync"

	"meisapps/cmdsrv/pkg/client"
)

// registry tracks live clients in accept order.
// After drain it refuses new clients until reopen, so a connection accepted
// while the server stops is closed instead of leaking.
type registry struct {
	mu      sync.Mutex
	clients []*client.Client
	closed  bool
}

func (r *registry) add(c *client.Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return false
	}
	r.clients = append(r.clients, c)
	return true
}

func (r *registry) remove(c *client.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, rc := range r.clients {
		if rc == c {
			r.clients = append(r.clients[:i], r.clients[i+1:]...)
			return
		}
	}
}

// drain empties the registry and returns what it held.
func (r *registry) drain() []*client.Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.clients
	r.clients = nil
	r.closed = true
	return out
}

func (r *registry) reopen() {
	r.mu.Lock()
	r.closed = false
	r.mu.Unlock()
}

func (r *registry) snapshot() []*client.Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]*client.Client(nil), r.clients...)
}

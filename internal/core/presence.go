package core

// Registry tracks which connections are currently live. It is the
// read-only oracle the matchmaker and room registry consult before
// presenting a connection as a match candidate or relay target.
//
// The registry is owned by the hub goroutine and must only be touched
// from there; it carries no locking of its own.
type Registry struct {
	clients map[string]*Client
}

// NewRegistry constructs an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*Client)}
}

// Add records a connection as live.
func (r *Registry) Add(c *Client) {
	r.clients[c.ID] = c
}

// Remove forgets a connection. No-op if the id is unknown.
func (r *Registry) Remove(id string) {
	delete(r.clients, id)
}

// Get returns the live client for id, or nil.
func (r *Registry) Get(id string) *Client {
	return r.clients[id]
}

// IsLive reports whether the connection is still open.
func (r *Registry) IsLive(id string) bool {
	_, ok := r.clients[id]
	return ok
}

// Len returns the number of live connections.
func (r *Registry) Len() int {
	return len(r.clients)
}

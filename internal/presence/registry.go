package presence

import (
	"log/slog"
	"sync"
)

// Transition describes a connection lifecycle change observed by the registry.
type Transition struct {
	ConnID string
	Event  Event
}

type Event int

const (
	EventConnected Event = iota
	EventAuthenticated
	EventEnteredWorld
	EventLeftWorld
	EventDisconnected
)

func (e Event) String() string {
	switch e {
	case EventConnected:
		return "connected"
	case EventAuthenticated:
		return "authenticated"
	case EventEnteredWorld:
		return "entered_world"
	case EventLeftWorld:
		return "left_world"
	case EventDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Registry is the single source of truth for which connections are live,
// authenticated, and in the world. All access must go through its methods
// to ensure thread-safety.
//
// Operations are idempotent and operations on unknown ids are no-ops; the
// registry never errors. Each transition emits one log line.
type Registry struct {
	mu            sync.RWMutex
	connected     map[string]struct{}
	authenticated map[string]struct{}
	inWorld       map[string]struct{}
	observers     []func(Transition)
}

func NewRegistry() *Registry {
	return &Registry{
		connected:     make(map[string]struct{}),
		authenticated: make(map[string]struct{}),
		inWorld:       make(map[string]struct{}),
	}
}

// Observe registers a transition observer. Observers are expected to be
// registered exactly once, at construction time of the observing component,
// never from a repeatable start path.
func (r *Registry) Observe(fn func(Transition)) {
	r.mu.Lock()
	r.observers = append(r.observers, fn)
	r.mu.Unlock()
}

// ObserverCount returns the number of registered observers.
func (r *Registry) ObserverCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.observers)
}

// Connect records a transport-level connection.
func (r *Registry) Connect(connID string) {
	r.mu.Lock()
	r.connected[connID] = struct{}{}
	total := len(r.connected)
	r.mu.Unlock()

	slog.Info("connection opened", "connId", connID, "connected", total)
	r.notify(Transition{ConnID: connID, Event: EventConnected})
}

// MarkAuthenticated adds the connection to the authenticated set.
func (r *Registry) MarkAuthenticated(connID string) {
	r.mu.Lock()
	r.authenticated[connID] = struct{}{}
	total := len(r.authenticated)
	r.mu.Unlock()

	slog.Info("connection authenticated", "connId", connID, "authenticated", total)
	r.notify(Transition{ConnID: connID, Event: EventAuthenticated})
}

// MarkInWorld adds the connection to the in-world set. A connection that
// was never authenticated is admitted anyway, since upstream already
// validated the session, but the inconsistency is logged.
func (r *Registry) MarkInWorld(connID string) {
	r.mu.Lock()
	if _, ok := r.authenticated[connID]; !ok {
		slog.Warn("connection entered world without authentication", "connId", connID)
	}
	r.inWorld[connID] = struct{}{}
	total := len(r.inWorld)
	r.mu.Unlock()

	slog.Info("connection entered world", "connId", connID, "inWorld", total)
	r.notify(Transition{ConnID: connID, Event: EventEnteredWorld})
}

// MarkLeftWorld removes the connection from the in-world set only.
func (r *Registry) MarkLeftWorld(connID string) {
	r.mu.Lock()
	_, was := r.inWorld[connID]
	delete(r.inWorld, connID)
	total := len(r.inWorld)
	r.mu.Unlock()

	if was {
		slog.Info("connection left world", "connId", connID, "inWorld", total)
		r.notify(Transition{ConnID: connID, Event: EventLeftWorld})
	}
}

// Remove purges the connection from every set. Holding the write lock for
// all three deletes means no reader can observe the connection in one set
// but not another once Remove returns.
func (r *Registry) Remove(connID string) {
	r.mu.Lock()
	delete(r.connected, connID)
	delete(r.authenticated, connID)
	delete(r.inWorld, connID)
	total := len(r.connected)
	r.mu.Unlock()

	slog.Info("connection removed", "connId", connID, "connected", total)
	r.notify(Transition{ConnID: connID, Event: EventDisconnected})
}

// CountConnected returns the number of live transport connections.
func (r *Registry) CountConnected() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connected)
}

// CountAuthenticated returns the number of authenticated connections.
func (r *Registry) CountAuthenticated() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.authenticated)
}

// CountInWorld returns the number of connections currently in the world.
func (r *Registry) CountInWorld() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.inWorld)
}

// Snapshot returns the current (authenticated, inWorld) cardinalities as a
// single consistent read.
func (r *Registry) Snapshot() (authenticated, inWorld int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.authenticated), len(r.inWorld)
}

func (r *Registry) notify(t Transition) {
	r.mu.RLock()
	obs := r.observers
	r.mu.RUnlock()

	for _, fn := range obs {
		fn(t)
	}
}

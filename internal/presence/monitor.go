package presence

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const DefaultPushInterval = 30 * time.Second

// StatusStore persists the server's aggregate status. Failures are treated
// as best-effort telemetry by the monitor.
type StatusStore interface {
	SetStatus(serverID int, status string, playerCount int) error
}

// Monitor periodically samples the registry and pushes occupancy to the
// status store. It satisfies the service worker contract: Start blocks
// until the context is canceled or Stop is called.
type Monitor struct {
	registry *Registry
	store    StatusStore
	serverID int
	interval time.Duration

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewMonitor creates a monitor and registers its registry observer. The
// observer is registered here, exactly once per monitor, so repeated
// Start/Stop cycles never duplicate it.
func NewMonitor(registry *Registry, store StatusStore, serverID int, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = DefaultPushInterval
	}
	m := &Monitor{
		registry: registry,
		store:    store,
		serverID: serverID,
		interval: interval,
	}

	registry.Observe(func(t Transition) {
		auth, inWorld := registry.Snapshot()
		slog.Debug("presence transition", "event", t.Event.String(), "connId", t.ConnID,
			"authenticated", auth, "inWorld", inWorld)
	})

	return m
}

// Start pushes status immediately, then on every tick, until the context is
// canceled or Stop is called. Calling Start while already running logs a
// warning and returns without a second timer.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		slog.Warn("presence monitor already running", "serverId", m.serverID)
		return nil
	}
	m.running = true
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	stop, done := m.stop, m.done
	m.mu.Unlock()

	slog.Info("starting presence monitor", "serverId", m.serverID, "interval", m.interval)

	defer func() {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
		close(done)
	}()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.push(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-stop:
			return nil
		case <-ticker.C:
			m.push(ctx)
		}
	}
}

// Stop cancels the timer and waits for the running loop to exit. Safe to
// call when already stopped.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	stop, done := m.stop, m.done
	m.mu.Unlock()

	select {
	case <-stop:
	default:
		close(stop)
	}
	<-done

	slog.Info("presence monitor stopped", "serverId", m.serverID)
}

// Running reports whether the monitor loop is active.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// push persists the current occupancy. Failures are logged and swallowed;
// a failed push must never disrupt client-facing operations or kill the loop.
func (m *Monitor) push(ctx context.Context) {
	count := m.registry.CountInWorld()
	if err := m.store.SetStatus(m.serverID, "online", count); err != nil {
		slog.WarnContext(ctx, "pushing server status", "serverId", m.serverID, "error", err)
		return
	}
	slog.Debug("server status pushed", "serverId", m.serverID, "playerCount", count)
}

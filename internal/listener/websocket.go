package listener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

// WsListener accepts websocket connections and hands them to the
// connection manager. It is a service worker: Start blocks until the
// context is canceled.
type WsListener struct {
	port uint16
	cm   *ConnectionManager
}

// connGate tracks live connection handlers. Admission and shutdown share
// one mutex, so a handler can never slip in between the close and the
// wait: once closeAndWait takes the lock, enter refuses all comers.
type connGate struct {
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// enter admits a connection handler. Returns false once shutdown has begun;
// the caller must not proceed and must not call leave.
func (g *connGate) enter() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return false
	}
	g.wg.Add(1)
	return true
}

// leave marks an admitted handler finished.
func (g *connGate) leave() {
	g.wg.Done()
}

// closeAndWait stops admitting handlers, then blocks until every admitted
// one has left. Safe to call once.
func (g *connGate) closeAndWait() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
	g.wg.Wait()
}

func NewWsListener(port uint16, cm *ConnectionManager) *WsListener {
	return &WsListener{
		port: port,
		cm:   cm,
	}
}

func (l *WsListener) Start(ctx context.Context) error {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		// The gateway sits behind the platform's edge; origin policy is
		// enforced there.
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	// Connections share a context canceled together on shutdown.
	connCtx, cancelConns := context.WithCancel(context.Background())
	defer cancelConns()

	gate := &connGate{}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		if !gate.enter() {
			http.Error(w, "shutting down", http.StatusServiceUnavailable)
			return
		}
		defer gate.leave()

		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
			return
		}

		l.cm.AcceptConnection(connCtx, ws)
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", l.port),
		Handler: mux,
	}

	// done signals that Start is returning (either success or failure)
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Warn("shutting down websocket listener", "error", err)
			}
			cancelConns()
			gate.closeAndWait()
		case <-done:
			// Start returned (likely with error) - nothing to stop
		}
	}()

	slog.InfoContext(ctx, "websocket listener starting", "port", l.port)

	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("port %d is already in use (another server running?)", l.port)
		}
		return fmt.Errorf("serving websocket on port %d: %w", l.port, err)
	}

	return nil
}

package listener

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pixil98/go-mmo/internal/events"
	"github.com/pixil98/go-mmo/internal/messaging"
	"github.com/pixil98/go-mmo/internal/presence"
	"github.com/pixil98/go-mmo/internal/world"
)

// Subscriber provides bus subscriptions for per-connection delivery.
type Subscriber interface {
	Subscribe(subject string, handler func(data []byte)) (unsubscribe func(), err error)
}

// ConnectionManager owns the lifecycle of one websocket connection from
// accept to cleanup: session creation, registry bookkeeping, bus
// subscription, the serialized event read loop, and disconnect cleanup.
type ConnectionManager struct {
	dispatcher *events.Dispatcher
	registry   *presence.Registry
	coord      *world.Coordinator
	sessions   *world.Sessions
	bus        Subscriber
}

func NewConnectionManager(dispatcher *events.Dispatcher, registry *presence.Registry,
	coord *world.Coordinator, sessions *world.Sessions, bus Subscriber) *ConnectionManager {
	return &ConnectionManager{
		dispatcher: dispatcher,
		registry:   registry,
		coord:      coord,
		sessions:   sessions,
		bus:        bus,
	}
}

// inboundEnvelope is the wire frame for client-to-server events.
type inboundEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// AcceptConnection services a websocket connection until it drops or the
// context is canceled. Events from one connection are handled one at a
// time, in order; concurrency exists only across connections.
func (m *ConnectionManager) AcceptConnection(ctx context.Context, ws *websocket.Conn) {
	connID := uuid.NewString()
	conn := newWsConn(ws)
	defer conn.close()

	sess := world.NewSession(connID, conn)
	m.sessions.Add(sess)
	m.registry.Connect(connID)

	// Disconnect cleanup must run no matter how the read loop exits,
	// including mid-flight enter_world for this connection.
	defer m.coord.Disconnect(connID)

	unsubscribe, err := m.bus.Subscribe(messaging.ConnSubject(connID), func(data []byte) {
		if err := conn.enqueue(data); err != nil {
			slog.Warn("dropping pushed message", "connId", connID, "error", err)
		}
	})
	if err != nil {
		slog.ErrorContext(ctx, "subscribing connection subject", "connId", connID, "error", err)
		return
	}
	defer unsubscribe()

	go conn.writePump()

	// Close the socket when the listener shuts down so the read loop
	// unblocks.
	stop := context.AfterFunc(ctx, conn.close)
	defer stop()

	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("websocket read failed", "connId", connID, "error", err)
			}
			return
		}

		var env inboundEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			slog.Warn("malformed event frame", "connId", connID, "error", err)
			continue
		}
		if env.Event == "" {
			slog.Warn("event frame missing event name", "connId", connID)
			continue
		}

		m.dispatcher.Dispatch(ctx, sess, env.Event, env.Data)
	}
}

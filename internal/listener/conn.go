package listener

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pixil98/go-mmo/internal/world"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second

	sendBufferSize = 256
)

// wsConn wraps a websocket connection with a buffered outbound queue so
// senders never block on the network. It implements world.Sender.
type wsConn struct {
	ws   *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func newWsConn(ws *websocket.Conn) *wsConn {
	return &wsConn{
		ws:   ws,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
}

// Send marshals an event envelope and enqueues it for the write pump.
func (c *wsConn) Send(event string, payload any) error {
	data, err := json.Marshal(world.Envelope{Event: event, Data: payload})
	if err != nil {
		return fmt.Errorf("marshalling %s: %w", event, err)
	}
	return c.enqueue(data)
}

// enqueue queues pre-marshalled bytes. A full buffer means the client has
// stopped draining; dropping with an error beats blocking a broadcast.
func (c *wsConn) enqueue(data []byte) error {
	select {
	case <-c.done:
		return fmt.Errorf("connection closed")
	case c.send <- data:
		return nil
	default:
		return fmt.Errorf("send buffer full")
	}
}

// writePump drains the send queue onto the socket and keeps the
// connection alive with pings. Runs in its own goroutine per connection.
func (c *wsConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				slog.Debug("websocket write failed", "error", err)
				c.close()
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		}
	}
}

// close shuts the connection down. Safe to call multiple times.
func (c *wsConn) close() {
	c.once.Do(func() {
		close(c.done)
		if err := c.ws.Close(); err != nil {
			slog.Debug("closing websocket", "error", err)
		}
	})
}

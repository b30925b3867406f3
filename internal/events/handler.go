package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pixil98/go-mmo/internal/gamedata"
	"github.com/pixil98/go-mmo/internal/presence"
	"github.com/pixil98/go-mmo/internal/world"
)

// HandlerFunc processes one inbound client event. Returning a non-nil
// result sends it as the single element of the <event>_response array.
// Returning (nil, nil) means the handler already replied itself.
type HandlerFunc func(ctx context.Context, sess *world.Session, data json.RawMessage) (any, error)

// AccountSource resolves account ids during authentication.
type AccountSource interface {
	Get(id string) (*gamedata.Account, error)
}

// CharacterSource is the character side of the data-access interface.
type CharacterSource interface {
	Load(id string) (*gamedata.Character, error)
	ByAccount(accountID string) []*gamedata.Character
	Create(accountID, name, classe, race string) (*gamedata.Character, error)
}

// ServerSource lists the server-select entries.
type ServerSource interface {
	List() ([]*gamedata.ServerInfo, error)
}

// Dispatcher routes inbound events to their handlers and converts every
// outcome into a uniform <event>_response reply to the requester. Errors
// never reach any other connection.
type Dispatcher struct {
	registry *presence.Registry
	coord    *world.Coordinator
	accounts AccountSource
	chars    CharacterSource
	servers  ServerSource

	handlers map[string]HandlerFunc
}

func NewDispatcher(registry *presence.Registry, coord *world.Coordinator,
	accounts AccountSource, chars CharacterSource, servers ServerSource) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		coord:    coord,
		accounts: accounts,
		chars:    chars,
		servers:  servers,
		handlers: make(map[string]HandlerFunc),
	}

	d.register("authenticate", d.handleAuthenticate)
	d.register("get_servers", d.handleGetServers)
	d.register("create_character", d.handleCreateCharacter)
	d.register("get_characters", d.handleGetCharacters)
	d.register("select_character", d.handleSelectCharacter)
	d.register("enter_world", d.handleEnterWorld)

	return d
}

func (d *Dispatcher) register(event string, fn HandlerFunc) {
	if _, exists := d.handlers[event]; exists {
		panic(fmt.Sprintf("event handler %q already registered", event))
	}
	d.handlers[event] = fn
}

// failure is the uniform error reply shape.
type failure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Dispatch runs the handler for an inbound event and sends the reply.
// Unknown events are logged and dropped, matching the transport's
// behavior for events nobody listens to.
func (d *Dispatcher) Dispatch(ctx context.Context, sess *world.Session, event string, data json.RawMessage) {
	fn, ok := d.handlers[event]
	if !ok {
		slog.Warn("unknown event", "event", event, "connId", sess.ID())
		return
	}

	respEvent := event + "_response"

	result, err := fn(ctx, sess, data)
	if err != nil {
		var userErr *world.UserError
		msg := "Erro interno do servidor"
		if errors.As(err, &userErr) {
			msg = userErr.Message
		} else {
			slog.ErrorContext(ctx, "event handler failed", "event", event,
				"connId", sess.ID(), "error", err)
		}
		if sendErr := sess.Send(respEvent, []any{failure{Success: false, Error: msg}}); sendErr != nil {
			slog.Warn("sending failure reply", "event", event, "connId", sess.ID(), "error", sendErr)
		}
		return
	}

	if result == nil {
		// Handler replied itself.
		return
	}

	if sendErr := sess.Send(respEvent, []any{result}); sendErr != nil {
		slog.Warn("sending reply", "event", event, "connId", sess.ID(), "error", sendErr)
	}
}

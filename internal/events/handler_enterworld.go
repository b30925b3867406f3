package events

import (
	"context"
	"encoding/json"

	"github.com/pixil98/go-mmo/internal/world"
)

type enterWorldRequest struct {
	CharacterID string `json:"characterId"`
}

// handleEnterWorld hands off to the coordinator, which replies and
// broadcasts itself so the join notice is guaranteed to follow the
// requester's reply.
func (d *Dispatcher) handleEnterWorld(ctx context.Context, sess *world.Session, data json.RawMessage) (any, error) {
	var req enterWorldRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, world.NewUserError("Dados inválidos")
	}

	if err := d.coord.EnterWorld(ctx, sess, req.CharacterID); err != nil {
		return nil, err
	}
	return nil, nil
}

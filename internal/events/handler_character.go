package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pixil98/go-mmo/internal/gamedata"
	"github.com/pixil98/go-mmo/internal/world"
)

type createCharacterRequest struct {
	Name   string `json:"name"`
	Classe string `json:"classe"`
	Race   string `json:"race"`
}

type characterReply struct {
	Success   bool                `json:"success"`
	Character *gamedata.Character `json:"character"`
}

type charactersReply struct {
	Success    bool                  `json:"success"`
	Characters []*gamedata.Character `json:"characters"`
}

func (d *Dispatcher) handleCreateCharacter(ctx context.Context, sess *world.Session, data json.RawMessage) (any, error) {
	if !sess.Authenticated() {
		return nil, world.ErrUnauthenticated
	}

	var req createCharacterRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, world.NewUserError("Dados inválidos")
	}
	if req.Name == "" || req.Classe == "" || req.Race == "" {
		return nil, world.ErrCharacterRequired
	}

	char, err := d.chars.Create(sess.AccountID(), req.Name, req.Classe, req.Race)
	if err != nil {
		return nil, fmt.Errorf("creating character: %w", err)
	}

	slog.InfoContext(ctx, "character created", "connId", sess.ID(),
		"characterId", char.ID, "name", char.Name)
	return characterReply{Success: true, Character: char}, nil
}

func (d *Dispatcher) handleGetCharacters(ctx context.Context, sess *world.Session, data json.RawMessage) (any, error) {
	if !sess.Authenticated() {
		return nil, world.ErrUnauthenticated
	}

	chars := d.chars.ByAccount(sess.AccountID())
	if chars == nil {
		chars = []*gamedata.Character{}
	}
	return charactersReply{Success: true, Characters: chars}, nil
}

type selectCharacterRequest struct {
	CharacterID string `json:"characterId"`
}

func (d *Dispatcher) handleSelectCharacter(ctx context.Context, sess *world.Session, data json.RawMessage) (any, error) {
	if !sess.Authenticated() {
		return nil, world.ErrUnauthenticated
	}

	var req selectCharacterRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, world.NewUserError("Dados inválidos")
	}
	if req.CharacterID == "" {
		return nil, world.ErrMissingCharacterID
	}

	char, err := d.chars.Load(req.CharacterID)
	if err != nil {
		if errors.Is(err, gamedata.ErrCharacterNotFound) {
			return nil, world.ErrCharacterNotFound
		}
		return nil, world.NewUserError(err.Error())
	}
	if char.AccountID != sess.AccountID() {
		return nil, world.ErrCharacterNotFound
	}

	sess.SetCharacter(char)
	return characterReply{Success: true, Character: char}, nil
}

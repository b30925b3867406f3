package world

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pixil98/go-mmo/internal/gamedata"
	"github.com/pixil98/go-mmo/internal/presence"
)

// CharacterSource is the character half of the data-access interface the
// coordinator consumes.
type CharacterSource interface {
	Load(id string) (*gamedata.Character, error)
}

// MonsterSource answers "entities by map" queries.
type MonsterSource interface {
	ByMap(mapName string) []*gamedata.Monster
}

// Coordinator orchestrates entry into and exit from the world: it
// validates the session, loads character data, joins the map room, updates
// the presence registry, replies to the requester, and notifies room peers.
type Coordinator struct {
	registry  *presence.Registry
	directory *Directory
	sessions  *Sessions
	chars     CharacterSource
	monsters  MonsterSource
}

func NewCoordinator(registry *presence.Registry, directory *Directory, sessions *Sessions,
	chars CharacterSource, monsters MonsterSource) *Coordinator {
	return &Coordinator{
		registry:  registry,
		directory: directory,
		sessions:  sessions,
		chars:     chars,
		monsters:  monsters,
	}
}

// EnterWorld brings an authenticated session into the world on the
// character's map. The reply is enqueued to the requester before the join
// notice goes out to room peers. Registry and room updates made before a
// later step fails are deliberately not rolled back; disconnect cleanup
// restores consistency.
func (c *Coordinator) EnterWorld(ctx context.Context, sess *Session, characterID string) error {
	if !sess.Authenticated() {
		return ErrUnauthenticated
	}
	if characterID == "" {
		return ErrMissingCharacterID
	}

	char, err := c.chars.Load(characterID)
	if err != nil {
		if errors.Is(err, gamedata.ErrCharacterNotFound) {
			return ErrCharacterNotFound
		}
		// Surface the data-access error message to the requester.
		return NewUserError(err.Error())
	}
	if char.AccountID != sess.AccountID() {
		slog.Warn("enter_world for character of another account",
			"connId", sess.ID(), "characterId", characterID, "account", sess.AccountID())
		return ErrCharacterNotFound
	}

	sess.SetCharacter(char)
	c.directory.Join(char.Map, sess.ID())
	c.registry.MarkInWorld(sess.ID())

	nearby := c.nearbyPlayers(char.Map, sess.ID())
	monsters := c.monsters.ByMap(char.Map)

	reply := EnterWorldReply{
		Success:   true,
		Character: char,
		SpawnInfo: SpawnInfo{
			X:             char.PosX,
			Y:             char.PosY,
			Z:             char.PosZ,
			Map:           char.Map,
			NearbyPlayers: nearby,
			Monsters:      monsters,
		},
	}
	if err := sess.Send("enter_world_response", []any{reply}); err != nil {
		return fmt.Errorf("sending enter_world reply: %w", err)
	}

	c.directory.BroadcastToRoom(char.Map, sess.ID(), "player_joined", joinNotice(char))

	slog.InfoContext(ctx, "player entered world", "connId", sess.ID(),
		"character", char.Name, "map", char.Map, "nearbyPlayers", len(nearby))
	return nil
}

// nearbyPlayers projects every other room member that has a character
// attached. The membership snapshot may race with a concurrent join; a
// missed peer is corrected by that peer's own player_joined broadcast.
func (c *Coordinator) nearbyPlayers(roomID, selfConnID string) []PlayerInfo {
	players := []PlayerInfo{}
	for _, connID := range c.directory.MembersOf(roomID) {
		if connID == selfConnID {
			continue
		}
		peer := c.sessions.Get(connID)
		if peer == nil {
			continue
		}
		char := peer.Character()
		if char == nil {
			continue
		}
		players = append(players, playerInfo(char))
	}
	return players
}

// Disconnect runs the full leave-world cleanup for a connection. It is
// idempotent and safe to call regardless of how far the session got:
// mid-authentication, mid-enter_world, or fully in the world.
func (c *Coordinator) Disconnect(connID string) {
	sess := c.sessions.Get(connID)

	if roomID, ok := c.directory.RoomOf(connID); ok {
		c.directory.Leave(roomID, connID)
		if sess != nil {
			if char := sess.Character(); char != nil {
				c.directory.BroadcastToRoom(roomID, connID, "player_left", LeaveNotice{
					CharacterID: char.ID,
					Name:        char.Name,
				})
			}
		}
	}

	c.registry.MarkLeftWorld(connID)
	c.registry.Remove(connID)
	c.sessions.Remove(connID)
}

package world

import "github.com/pixil98/go-mmo/internal/gamedata"

// Envelope is the wire frame for every message pushed to a client.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// PlayerInfo is the compact projection of a co-located player used in
// spawn payloads. The client reads snake_case position fields here.
type PlayerInfo struct {
	CharacterID string  `json:"characterId"`
	Name        string  `json:"name"`
	Classe      string  `json:"classe"`
	Race        string  `json:"race"`
	Level       int     `json:"level"`
	PosX        float64 `json:"pos_x"`
	PosY        float64 `json:"pos_y"`
	PosZ        float64 `json:"pos_z"`
}

// JoinNotice is the player_joined broadcast payload. The client expects
// camelCase position fields on this event, unlike PlayerInfo.
type JoinNotice struct {
	CharacterID string  `json:"characterId"`
	Name        string  `json:"name"`
	Classe      string  `json:"classe"`
	Race        string  `json:"race"`
	Level       int     `json:"level"`
	PosX        float64 `json:"posX"`
	PosY        float64 `json:"posY"`
	PosZ        float64 `json:"posZ"`
}

// LeaveNotice is the player_left broadcast payload.
type LeaveNotice struct {
	CharacterID string `json:"characterId"`
	Name        string `json:"name"`
}

// SpawnInfo describes everything the client needs to place the character
// in the world.
type SpawnInfo struct {
	X             float64             `json:"x"`
	Y             float64             `json:"y"`
	Z             float64             `json:"z"`
	Map           string              `json:"map"`
	NearbyPlayers []PlayerInfo        `json:"nearbyPlayers"`
	Monsters      []*gamedata.Monster `json:"monsters"`
}

// EnterWorldReply is the success payload of enter_world_response.
type EnterWorldReply struct {
	Success   bool                `json:"success"`
	Character *gamedata.Character `json:"character"`
	SpawnInfo SpawnInfo           `json:"spawnInfo"`
}

func playerInfo(c *gamedata.Character) PlayerInfo {
	return PlayerInfo{
		CharacterID: c.ID,
		Name:        c.Name,
		Classe:      c.Classe,
		Race:        c.Race,
		Level:       c.Level,
		PosX:        c.PosX,
		PosY:        c.PosY,
		PosZ:        c.PosZ,
	}
}

func joinNotice(c *gamedata.Character) JoinNotice {
	return JoinNotice{
		CharacterID: c.ID,
		Name:        c.Name,
		Classe:      c.Classe,
		Race:        c.Race,
		Level:       c.Level,
		PosX:        c.PosX,
		PosY:        c.PosY,
		PosZ:        c.PosZ,
	}
}

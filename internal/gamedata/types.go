package gamedata

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

// Account is a login account. Credential verification happens in the login
// service upstream; this layer only ever checks existence.
type Account struct {
	Username string `json:"username"`
}

func (a *Account) Validate() error {
	if a.Username == "" {
		return fmt.Errorf("username is required")
	}
	return nil
}

// Character is a playable character. The gateway holds a read-only cached
// copy on the session for the duration of the connection; the store owns
// the persistent record.
//
// JSON field names are part of the client wire contract (classe, pos_x, ...).
type Character struct {
	ID        string  `json:"id"`
	AccountID string  `json:"account_id"`
	Name      string  `json:"name"`
	Classe    string  `json:"classe"`
	Race      string  `json:"race"`
	Level     int     `json:"level"`
	PosX      float64 `json:"pos_x"`
	PosY      float64 `json:"pos_y"`
	PosZ      float64 `json:"pos_z"`
	Map       string  `json:"map"`
}

func (c *Character) Validate() error {
	el := errors.NewErrorList()

	if c.Name == "" {
		el.Add(fmt.Errorf("name is required"))
	}
	if c.Classe == "" {
		el.Add(fmt.Errorf("classe is required"))
	}
	if c.Race == "" {
		el.Add(fmt.Errorf("race is required"))
	}
	if c.Level < 1 {
		el.Add(fmt.Errorf("level must be at least 1"))
	}
	if c.Map == "" {
		el.Add(fmt.Errorf("map is required"))
	}

	return el.Err()
}

// Monster is a non-player entity placed on a map.
type Monster struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Level int     `json:"level"`
	Map   string  `json:"map"`
	PosX  float64 `json:"pos_x"`
	PosY  float64 `json:"pos_y"`
	PosZ  float64 `json:"pos_z"`
	HP    int     `json:"hp"`
}

func (m *Monster) Validate() error {
	el := errors.NewErrorList()

	if m.Name == "" {
		el.Add(fmt.Errorf("name is required"))
	}
	if m.Map == "" {
		el.Add(fmt.Errorf("map is required"))
	}

	return el.Err()
}

// ServerInfo is one entry of the server-select list shown by the client.
type ServerInfo struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
}

func (s *ServerInfo) Validate() error {
	el := errors.NewErrorList()

	if s.Name == "" {
		el.Add(fmt.Errorf("name is required"))
	}
	if s.MaxPlayers <= 0 {
		el.Add(fmt.Errorf("maxPlayers must be positive"))
	}
	switch s.Status {
	case "online", "maintenance", "offline":
	default:
		el.Add(fmt.Errorf("unknown status %q", s.Status))
	}

	return el.Err()
}

// SpawnPoint is where newly created characters are placed.
type SpawnPoint struct {
	Map string  `json:"map"`
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Z   float64 `json:"z"`
}

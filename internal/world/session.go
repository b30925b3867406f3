package world

import (
	"sync"

	"github.com/pixil98/go-mmo/internal/gamedata"
)

// Sender enqueues an event for delivery to one client. Implementations
// must not block on the network.
type Sender interface {
	Send(event string, payload any) error
}

// Session is the per-connection state the gateway keeps between transport
// connect and disconnect: the authenticated account, and a read-only cached
// copy of the selected character while in the world.
type Session struct {
	id     string
	sender Sender

	mu        sync.Mutex
	accountID string
	character *gamedata.Character
}

func NewSession(id string, sender Sender) *Session {
	return &Session{
		id:     id,
		sender: sender,
	}
}

// ID returns the connection identifier.
func (s *Session) ID() string {
	return s.id
}

// Send enqueues an event for this session's client.
func (s *Session) Send(event string, payload any) error {
	return s.sender.Send(event, payload)
}

// SetAccount binds an authenticated account to the session.
func (s *Session) SetAccount(accountID string) {
	s.mu.Lock()
	s.accountID = accountID
	s.mu.Unlock()
}

// AccountID returns the bound account id, or "" before authentication.
func (s *Session) AccountID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accountID
}

// Authenticated reports whether an account is bound to the session.
func (s *Session) Authenticated() bool {
	return s.AccountID() != ""
}

// SetCharacter attaches the character snapshot for this session.
func (s *Session) SetCharacter(c *gamedata.Character) {
	s.mu.Lock()
	s.character = c
	s.mu.Unlock()
}

// Character returns the attached character, or nil before selection.
func (s *Session) Character() *gamedata.Character {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.character
}

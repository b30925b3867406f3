package gamedata

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/pixil98/go-mmo/internal/storage"
)

// CharacterStore is the character side of the data-access interface the
// world gateway consumes.
type CharacterStore struct {
	store storage.Storer[*Character]
	spawn SpawnPoint
}

func NewCharacterStore(store storage.Storer[*Character], spawn SpawnPoint) *CharacterStore {
	return &CharacterStore{
		store: store,
		spawn: spawn,
	}
}

// Load returns the character with the given id, or ErrCharacterNotFound.
func (s *CharacterStore) Load(id string) (*Character, error) {
	c := s.store.Get(id)
	if c == nil {
		return nil, fmt.Errorf("character %q: %w", id, ErrCharacterNotFound)
	}
	return c, nil
}

// ByAccount returns the account's characters ordered by name.
func (s *CharacterStore) ByAccount(accountID string) []*Character {
	var chars []*Character
	for _, c := range s.store.GetAll() {
		if c.AccountID == accountID {
			chars = append(chars, c)
		}
	}
	sort.Slice(chars, func(i, j int) bool { return chars[i].Name < chars[j].Name })
	return chars
}

// Create makes a level-1 character at the configured spawn point and
// returns its id.
func (s *CharacterStore) Create(accountID, name, classe, race string) (*Character, error) {
	c := &Character{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Name:      name,
		Classe:    classe,
		Race:      race,
		Level:     1,
		PosX:      s.spawn.X,
		PosY:      s.spawn.Y,
		PosZ:      s.spawn.Z,
		Map:       s.spawn.Map,
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.Save(c.ID, c); err != nil {
		return nil, fmt.Errorf("saving character: %w", err)
	}

	return c, nil
}

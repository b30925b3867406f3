package gamedata

import (
	"fmt"

	"github.com/pixil98/go-mmo/internal/storage"
)

// AccountStore resolves account ids bound to connections. Credentials are
// verified by the login service before the client ever reaches this layer.
type AccountStore struct {
	store storage.Storer[*Account]
}

func NewAccountStore(store storage.Storer[*Account]) *AccountStore {
	return &AccountStore{store: store}
}

// Get returns the account with the given id, or ErrAccountNotFound.
func (s *AccountStore) Get(id string) (*Account, error) {
	a := s.store.Get(id)
	if a == nil {
		return nil, fmt.Errorf("account %q: %w", id, ErrAccountNotFound)
	}
	return a, nil
}

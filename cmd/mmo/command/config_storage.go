package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-mmo/internal/gamedata"
	"github.com/pixil98/go-mmo/internal/storage"
)

type StorageConfig struct {
	Accounts   AssetConfig[*gamedata.Account]    `json:"accounts"`
	Characters AssetConfig[*gamedata.Character]  `json:"characters"`
	Monsters   AssetConfig[*gamedata.Monster]    `json:"monsters"`
	Servers    AssetConfig[*gamedata.ServerInfo] `json:"servers"`

	Spawn gamedata.SpawnPoint `json:"spawn"`
}

func (c *StorageConfig) validate() error {
	el := errors.NewErrorList()
	el.Add(c.Accounts.Validate("accounts"))
	el.Add(c.Characters.Validate("characters"))
	el.Add(c.Monsters.Validate("monsters"))
	el.Add(c.Servers.Validate("servers"))

	if c.Spawn.Map == "" {
		el.Add(fmt.Errorf("spawn: map is required"))
	}

	return el.Err()
}

type stores struct {
	accounts   *gamedata.AccountStore
	characters *gamedata.CharacterStore
	monsters   *gamedata.MonsterStore
	servers    *gamedata.ServerStore
}

func (c *StorageConfig) buildStores() (*stores, error) {
	accounts, err := c.Accounts.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating account store: %w", err)
	}
	characters, err := c.Characters.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating character store: %w", err)
	}
	monsters, err := c.Monsters.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating monster store: %w", err)
	}
	servers, err := c.Servers.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating server store: %w", err)
	}

	return &stores{
		accounts:   gamedata.NewAccountStore(accounts),
		characters: gamedata.NewCharacterStore(characters, c.Spawn),
		monsters:   gamedata.NewMonsterStore(monsters),
		servers:    gamedata.NewServerStore(servers),
	}, nil
}

type AssetConfig[T storage.ValidatingSpec] struct {
	Path string `json:"path"`
}

func (c *AssetConfig[T]) Validate(name string) error {
	if c.Path == "" {
		return fmt.Errorf("%s: path is required", name)
	}
	_, err := os.Stat(c.Path)
	if err != nil {
		return fmt.Errorf("%s: invalid path %q: %w", name, c.Path, err)
	}

	return nil
}

func (c *AssetConfig[T]) BuildFileStore() (*storage.FileStore[T], error) {
	return storage.NewFileStore[T](c.Path)
}

package gamedata

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/pixil98/go-mmo/internal/storage"
)

// ServerStore holds the server-select list and its live status.
type ServerStore struct {
	store storage.Storer[*ServerInfo]
}

func NewServerStore(store storage.Storer[*ServerInfo]) *ServerStore {
	return &ServerStore{store: store}
}

// List returns all known servers ordered by id. Entries are copies: cached
// records are shared across concurrent handlers and must never be written
// on a read path.
func (s *ServerStore) List() ([]*ServerInfo, error) {
	var servers []*ServerInfo
	for id, sv := range s.store.GetAll() {
		entry := *sv
		if entry.ID == 0 {
			if n, err := strconv.Atoi(id); err == nil {
				entry.ID = n
			}
		}
		servers = append(servers, &entry)
	}
	if len(servers) == 0 {
		return nil, ErrServerNotFound
	}
	sort.Slice(servers, func(i, j int) bool { return servers[i].ID < servers[j].ID })
	return servers, nil
}

// SetStatus updates one server's status and occupancy. The update is built
// on a fresh record and swapped in via Save, so readers holding the old
// pointer are never raced.
func (s *ServerStore) SetStatus(serverID int, status string, playerCount int) error {
	key := strconv.Itoa(serverID)
	sv := s.store.Get(key)
	if sv == nil {
		return fmt.Errorf("server %d: %w", serverID, ErrServerNotFound)
	}

	updated := *sv
	updated.Status = status
	updated.PlayerCount = playerCount
	return s.store.Save(key, &updated)
}

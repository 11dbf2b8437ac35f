package messages

import (
	"vidhub/internal/bridge"
	"vidhub/internal/config"
	"vidhub/internal/schedule"
)

// EventMsg carries one inbound worker event into the event loop
type EventMsg struct {
	Event bridge.Event
}

// EventsClosedMsg is sent once the worker's event stream has ended
type EventsClosedMsg struct{}

// TaskMsg is a deferred controller callback that came due
type TaskMsg struct {
	Task schedule.Task
}

// ConfigUpdateMsg delivers a reloaded configuration
type ConfigUpdateMsg struct {
	Config *config.Config
}

type ErrorMsg struct {
	Err error
}

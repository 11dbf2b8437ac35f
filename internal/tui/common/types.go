package common

import (
	"vidhub/internal/gallery"
	"vidhub/internal/tui/styles"
)

// Mode is what keystrokes are routed to
type Mode int

const (
	Normal Mode = iota
	// Filter sends keys to the active filter input
	Filter
	// Command edits a ":" command line
	Command
)

func (m Mode) String() string {
	switch m {
	case Filter:
		return "FILTER"
	case Command:
		return "COMMAND"
	}
	return "NORMAL"
}

// ModelReader defines the interface that views use to read model state
type ModelReader interface {
	Snapshot() gallery.Snapshot
	Mode() Mode
	Cursor() int
	// Target is the name of the filter input keys go to in Filter mode
	Target() string
	InputView() string
	CommandLine() string
	StatusView() string
	ProgressView() string
	ShowHelp() bool
	Theme() styles.Theme
	Width() int
	Height() int
}

package gallery

import (
	"vidhub/internal/buttons"
	"vidhub/internal/filter"
	"vidhub/internal/state"
	"vidhub/internal/stats"
	"vidhub/pkg/types"
)

// Snapshot is a read-only copy of the controller state for rendering
type Snapshot struct {
	App            state.AppState
	Filters        []filter.Channel
	SearchButtons  []buttons.Button
	GalleryButtons []buttons.Button
	Preview        buttons.Preview
	MagicSearch    string

	Results []types.ResultEntry
	// Visible indexes Results in display order
	Visible []int

	Phase           types.ImportPhase
	Generation      uint64
	Done, Total     int
	ProgressPercent float64

	WorkerUnresponsive bool
	WorkerExited       bool

	Maximized     bool
	SettingsOpen  bool
	SettingsShown bool

	CurrentFolder string
	CurrentFile   string

	// Words and Counts are empty until the deferred subscription has run
	Words  []stats.WordCount
	Counts stats.Results
}

// InProgress reports whether an import is running
func (s Snapshot) InProgress() bool {
	return s.Phase == types.PhaseInProgress
}

// ImportDone reports whether the result set comes from a finished import
func (s Snapshot) ImportDone() bool {
	return s.Phase == types.PhaseComplete
}

// VisibleEntries resolves Visible into entries
func (s Snapshot) VisibleEntries() []types.ResultEntry {
	out := make([]types.ResultEntry, len(s.Visible))
	for i, idx := range s.Visible {
		out[i] = s.Results[idx]
	}
	return out
}

// Snapshot copies the current state
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		App:                c.app,
		Filters:            c.filters.Channels(),
		SearchButtons:      c.search.Buttons(),
		GalleryButtons:     c.gallery.Buttons(),
		Preview:            c.preview,
		MagicSearch:        c.magic,
		Results:            append([]types.ResultEntry(nil), c.results...),
		Visible:            append([]int(nil), c.visible...),
		Phase:              c.phase,
		Generation:         c.gen,
		Done:               c.done,
		Total:              c.total,
		ProgressPercent:    c.percent,
		WorkerUnresponsive: c.unresponsive,
		WorkerExited:       c.workerGone,
		Maximized:          c.maximized,
		SettingsOpen:       c.settingsOpen,
		SettingsShown:      c.settingsShown,
		CurrentFolder:      c.currentFolder,
		CurrentFile:        c.currentFile,
		Words:              append([]stats.WordCount(nil), c.wordList...),
		Counts:             c.shown,
	}
}

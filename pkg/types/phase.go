package types

// ImportPhase is the position of the session in the current import cycle
type ImportPhase int

const (
	// PhaseIdle is the initial phase before any folder has been chosen
	PhaseIdle ImportPhase = iota
	// PhaseSelectingFolders is entered once a source or output folder is chosen
	PhaseSelectingFolders
	// PhaseInProgress lasts from start-import until the final object arrives
	PhaseInProgress
	// PhaseComplete holds the result set of the last finished import
	PhaseComplete
)

func (p ImportPhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSelectingFolders:
		return "folder-selection"
	case PhaseInProgress:
		return "in-progress"
	case PhaseComplete:
		return "complete"
	}
	return "unknown"
}

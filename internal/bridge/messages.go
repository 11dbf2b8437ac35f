// Package bridge is the message channel between the gallery and the
// external import worker. Commands flow one way to the worker and are never
// acknowledged; events flow back asynchronously, in any order, zero or more
// times. Message names are string literals shared with the worker and must
// not change.
package bridge

import "vidhub/pkg/types"

// Outbound command names
const (
	LoadFile           = "load-file"
	ChooseInputFolder  = "choose-input-folder"
	ChooseOutputFolder = "choose-output-folder"
	StartImport        = "start-import"
	MinimizeWindow     = "minimize-window"
	MaximizeWindow     = "maximize-window"
	UnmaximizeWindow   = "unmaximize-window"
	CloseWindow        = "close-window"
	OpenExternalFile   = "open-external-file"
)

// Inbound event names
const (
	InputFolderChosenName  = "input-folder-chosen"
	OutputFolderChosenName = "output-folder-chosen"
	ProcessingProgressName = "processing-progress"
	FinalObjectReadyName   = "final-object-ready"
	// WorkerExitedName is produced locally when the worker goes away; it is
	// never written to the wire.
	WorkerExitedName = "worker-exited"
)

// Commands lists every outbound name
var Commands = []string{
	LoadFile, ChooseInputFolder, ChooseOutputFolder, StartImport,
	MinimizeWindow, MaximizeWindow, UnmaximizeWindow, CloseWindow, OpenExternalFile,
}

// legacyNames maps names used by older workers onto the current contract
var legacyNames = map[string]string{
	"load-the-file":        LoadFile,
	"choose-input":         ChooseInputFolder,
	"choose-output":        ChooseOutputFolder,
	"start-the-import":     StartImport,
	"un-maximize-window":   UnmaximizeWindow,
	"openThisFile":         OpenExternalFile,
	"inputFolderChosen":    InputFolderChosenName,
	"outputFolderChosen":   OutputFolderChosenName,
	"processingProgress":   ProcessingProgressName,
	"finalObjectReturning": FinalObjectReadyName,
}

// Canonical resolves legacy aliases to the current message name
func Canonical(name string) string {
	if c, ok := legacyNames[name]; ok {
		return c
	}
	return name
}

// IsCommand reports whether name (after alias resolution) is an outbound command
func IsCommand(name string) bool {
	name = Canonical(name)
	for _, c := range Commands {
		if c == name {
			return true
		}
	}
	return false
}

// Command is one outbound message. Gen tags commands that start an import
// cycle so the worker can echo it on the events it produces.
type Command struct {
	Name    string
	Gen     uint64
	Payload CommandPayload
}

// CommandPayload carries the optional arguments of a command
type CommandPayload struct {
	// Path is the file to open, the hub file to load, or a folder hint for
	// the choose-*-folder commands when the worker cannot show a dialog.
	Path      string `json:"path,omitempty"`
	InputDir  string `json:"inputDir,omitempty"`
	OutputDir string `json:"outputDir,omitempty"`
}

// Event is an inbound notification from the worker
type Event interface {
	// Name is the wire name of the event
	Name() string
	// Generation is the import cycle the event belongs to; 0 means untagged
	Generation() uint64
}

// Meta carries the envelope fields shared by every event
type Meta struct {
	Gen uint64
}

// Generation implements Event
func (m Meta) Generation() uint64 { return m.Gen }

// InputFolderChosen reports the source folder picked in the worker's dialog
type InputFolderChosen struct {
	Meta
	Path string
}

func (InputFolderChosen) Name() string { return InputFolderChosenName }

// OutputFolderChosen reports the output folder picked in the worker's dialog
type OutputFolderChosen struct {
	Meta
	Path string
}

func (OutputFolderChosen) Name() string { return OutputFolderChosenName }

// ProcessingProgress reports done of total items imported
type ProcessingProgress struct {
	Meta
	Done  int
	Total int
}

func (ProcessingProgress) Name() string { return ProcessingProgressName }

// FinalObjectReady carries the complete result of an import
type FinalObjectReady struct {
	Meta
	Object types.FinalObject
}

func (FinalObjectReady) Name() string { return FinalObjectReadyName }

// WorkerExited is synthesised when the worker's stream ends
type WorkerExited struct {
	Meta
	Err error
}

func (WorkerExited) Name() string { return WorkerExitedName }

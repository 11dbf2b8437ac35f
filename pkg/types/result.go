package types

import (
	"encoding/json"
	"fmt"
)

// ResultEntry is one imported item: folder path relative to the source
// folder, file name (or relative path) and the name shown in the gallery.
type ResultEntry [3]string

// NewResultEntry builds an entry from its three segments
func NewResultEntry(folder, file, display string) ResultEntry {
	return ResultEntry{folder, file, display}
}

// Folder returns the folder segment
func (r ResultEntry) Folder() string { return r[0] }

// File returns the file name segment
func (r ResultEntry) File() string { return r[1] }

// Display returns the display name
func (r ResultEntry) Display() string { return r[2] }

// UnmarshalJSON requires exactly three string segments
func (r *ResultEntry) UnmarshalJSON(data []byte) error {
	var parts []string
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	if len(parts) != 3 {
		return fmt.Errorf("result entry needs 3 segments, got %d", len(parts))
	}
	copy(r[:], parts)
	return nil
}

// FinalObject is the authoritative snapshot of one completed import
type FinalObject struct {
	InputDir  string        `json:"inputDir" yaml:"input_dir"`
	OutputDir string        `json:"outputDir" yaml:"output_dir"`
	Images    []ResultEntry `json:"images" yaml:"images"`
}

// Package state holds the session-wide AppState record and its optional
// persistence between sessions.
package state

import (
	"fmt"
	"os"
	"path/filepath"

	"vidhub/internal/buttons"
	"vidhub/pkg/types"

	"gopkg.in/yaml.v3"
)

// AppState is the cross-cutting session record. It is written by user
// intents and by worker notifications, always through the gallery controller.
type AppState struct {
	SelectedSourceFolder string     `yaml:"selected_source_folder"`
	SelectedOutputFolder string     `yaml:"selected_output_folder"`
	CurrentView          types.View `yaml:"current_view"`
	MenuHidden           bool       `yaml:"menu_hidden"`
	TopHidden            bool       `yaml:"top_hidden"`
	ButtonsInView        bool       `yaml:"buttons_in_view"`
}

// New returns the state a fresh session starts with
func New(view types.View) AppState {
	if !view.Valid() {
		view = types.ViewThumbs
	}
	return AppState{
		CurrentView:   view,
		ButtonsInView: true,
	}
}

// Saved is what survives between sessions
type Saved struct {
	App            AppState                 `yaml:"app"`
	PreviewSize    int                      `yaml:"preview_size"`
	SearchButtons  map[string]buttons.State `yaml:"search_buttons,omitempty"`
	GalleryButtons map[string]buttons.State `yaml:"gallery_buttons,omitempty"`
}

// Load reads a saved session. A missing file is not an error: ok is false.
func Load(path string) (saved Saved, ok bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Saved{}, false, nil
		}
		return Saved{}, false, fmt.Errorf("error reading state file: %w", err)
	}
	if err := yaml.Unmarshal(data, &saved); err != nil {
		return Saved{}, false, fmt.Errorf("error parsing state file: %w", err)
	}
	return saved, true, nil
}

// Save writes the session, creating parent directories as needed
func Save(path string, saved Saved) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	data, err := yaml.Marshal(saved)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}

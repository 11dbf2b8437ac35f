package gallery

import (
	"path/filepath"

	"vidhub/internal/bridge"
	"vidhub/internal/buttons"
	"vidhub/internal/errors"
	"vidhub/internal/filter"
	"vidhub/internal/log"
	"vidhub/internal/metrics"
	"vidhub/pkg/types"
)

// send is fire-and-forget: failures are logged and never returned to the
// intent that caused them.
func (c *Controller) send(cmd bridge.Command) {
	if err := c.sender.Send(cmd); err != nil {
		c.logger.WithError(err).With(log.F("command", cmd.Name)).Warn("Command not delivered")
		if errors.KindOf(err) == errors.WorkerUnavailable {
			c.workerGone = true
			c.markUnresponsive()
		}
	}
}

// LoadFromFile asks the worker to load a saved hub. path may be empty to
// let the worker use its default. Loading starts a new generation so that
// events from an earlier import cannot overwrite the loaded results.
func (c *Controller) LoadFromFile(path string) {
	c.gen++
	c.send(bridge.Command{Name: bridge.LoadFile, Gen: c.gen, Payload: bridge.CommandPayload{Path: path}})
}

// SelectSourceDirectory asks the worker for a source folder. hint is
// passed through for workers that cannot show a dialog.
func (c *Controller) SelectSourceDirectory(hint string) {
	c.enterFolderSelection()
	c.send(bridge.Command{Name: bridge.ChooseInputFolder, Payload: bridge.CommandPayload{Path: hint}})
}

// SelectOutputDirectory asks the worker for an output folder
func (c *Controller) SelectOutputDirectory(hint string) {
	c.enterFolderSelection()
	c.send(bridge.Command{Name: bridge.ChooseOutputFolder, Payload: bridge.CommandPayload{Path: hint}})
}

func (c *Controller) enterFolderSelection() {
	if c.phase == types.PhaseIdle {
		c.phase = types.PhaseSelectingFolders
	}
}

// ImportFresh starts a new import of the selected folders. It needs a
// source folder; without one it does nothing and returns false.
func (c *Controller) ImportFresh() bool {
	if c.app.SelectedSourceFolder == "" {
		c.logger.Debug("Import requested without a source folder")
		return false
	}
	c.gen++
	c.phase = types.PhaseInProgress
	c.done, c.total, c.percent = 0, 0, 0
	c.armLiveness()
	c.send(bridge.Command{
		Name: bridge.StartImport,
		Gen:  c.gen,
		Payload: bridge.CommandPayload{
			InputDir:  c.app.SelectedSourceFolder,
			OutputDir: c.app.SelectedOutputFolder,
		},
	})
	c.logger.With(log.F("gen", c.gen)).Info("Import started")
	return true
}

// Minimize asks the worker to minimize the window
func (c *Controller) Minimize() {
	c.send(bridge.Command{Name: bridge.MinimizeWindow})
}

// ToggleMaximize flips the local maximized flag before sending the command.
// The flag is optimistic and is never reconciled with the real window.
func (c *Controller) ToggleMaximize() {
	c.maximized = !c.maximized
	if c.maximized {
		c.send(bridge.Command{Name: bridge.MaximizeWindow})
	} else {
		c.send(bridge.Command{Name: bridge.UnmaximizeWindow})
	}
}

// Close asks the worker to close the window
func (c *Controller) Close() {
	c.send(bridge.Command{Name: bridge.CloseWindow})
}

// OpenEntry opens the result at index with the system's default program.
// The path is the selected source folder joined with the entry's folder and
// file segments. An index outside the result set is a no-op.
func (c *Controller) OpenEntry(index int) bool {
	if index < 0 || index >= len(c.results) {
		c.logger.WithError(errors.ErrInvalidIndex).With(log.F("index", index)).Debug("Ignoring open request")
		return false
	}
	e := c.results[index]
	c.currentFolder = e.Folder()
	c.currentFile = e.Display()
	c.OpenExternalFile(filepath.Join(c.app.SelectedSourceFolder, e.Folder(), e.File()))
	return true
}

// OpenVisible opens the n-th visible result
func (c *Controller) OpenVisible(n int) bool {
	if n < 0 || n >= len(c.visible) {
		return false
	}
	return c.OpenEntry(c.visible[n])
}

// OpenExternalFile asks the worker to open path
func (c *Controller) OpenExternalFile(path string) {
	if path == "" {
		return
	}
	c.send(bridge.Command{Name: bridge.OpenExternalFile, Payload: bridge.CommandPayload{Path: path}})
}

// OnWordClickInFile adds term to the file filter
func (c *Controller) OnWordClickInFile(term string) bool {
	return c.AddTerm(filter.File, term)
}

// OnWordClickInFolder adds term to the folder filter
func (c *Controller) OnWordClickInFolder(term string) bool {
	return c.AddTerm(filter.Folder, term)
}

// AddTerm adds a search term to a channel
func (c *Controller) AddTerm(id filter.ChannelID, raw string) bool {
	return c.filterChanged(c.filters.AddTerm(id, raw))
}

// RemoveLast pops a channel's newest term when current is empty
func (c *Controller) RemoveLast(id filter.ChannelID, current string) bool {
	return c.filterChanged(c.filters.RemoveLast(id, current))
}

// RemoveAt removes one term from a channel
func (c *Controller) RemoveAt(id filter.ChannelID, index int) bool {
	if err := c.filters.TryRemoveAt(id, index); err != nil {
		c.logger.WithError(err).With(log.F("channel", id.String()), log.F("index", index)).Debug("Ignoring filter removal")
		return false
	}
	return c.filterChanged(true)
}

// SetInput records the edit buffer of a channel
func (c *Controller) SetInput(id filter.ChannelID, value string) {
	c.filters.SetInput(id, value)
}

// SetMagicSearch sets the free-text search applied while the magic search
// button is on
func (c *Controller) SetMagicSearch(value string) {
	if value == c.magic {
		return
	}
	c.magic = value
	if c.search.Toggled(buttons.SearchMagic) {
		c.refresh()
	}
}

func (c *Controller) filterChanged(changed bool) bool {
	if changed {
		c.refresh()
	}
	return changed
}

// ToggleSearchButton flips a search button
func (c *Controller) ToggleSearchButton(id string) bool {
	if !c.search.Toggle(id) {
		return false
	}
	if id == buttons.SearchMagic && c.magic != "" {
		c.refresh()
	}
	return true
}

// ToggleGalleryButton dispatches a gallery button: the view group selects
// exclusively and sets the current view, the size buttons resize the
// preview, and every other button toggles.
func (c *Controller) ToggleGalleryButton(id string) bool {
	if view, ok := buttons.ViewForButton(id); ok {
		if !c.gallery.SelectExclusive(buttons.ViewGroup, id) {
			return false
		}
		c.app.CurrentView = view
		return true
	}
	switch id {
	case buttons.MakeSmaller:
		return c.preview.Shrink()
	case buttons.MakeLarger:
		return c.preview.Grow()
	}
	return c.gallery.Toggle(id)
}

// ToggleHideSearchButton flips a search button's visibility
func (c *Controller) ToggleHideSearchButton(id string) bool {
	return c.search.ToggleHidden(id)
}

// ToggleHideGalleryButton flips a gallery button's visibility
func (c *Controller) ToggleHideGalleryButton(id string) bool {
	return c.gallery.ToggleHidden(id)
}

// ToggleSettings opens or closes the settings panel. Opening shows the
// panel at once and hides the buttons shortly after; closing brings the
// buttons back at once and removes the panel once its transition is over.
// A new toggle always cancels the previous toggle's pending step.
func (c *Controller) ToggleSettings() {
	c.settingsOpen = !c.settingsOpen
	if c.settingsOpen {
		c.settingsShown = true
		c.settingsSlot.Schedule(c.timing.SettingsHideDelay, func() {
			c.app.ButtonsInView = false
		})
		return
	}
	c.app.ButtonsInView = true
	c.settingsSlot.Schedule(c.timing.SettingsRestoreDelay, func() {
		c.settingsShown = false
	})
}

// ToggleSettingsMenu flips the menu's hidden flag
func (c *Controller) ToggleSettingsMenu() {
	c.app.MenuHidden = !c.app.MenuHidden
}

// ToggleTopVisible flips the top bar's hidden flag
func (c *Controller) ToggleTopVisible() {
	c.app.TopHidden = !c.app.TopHidden
}

func (c *Controller) armLiveness() {
	if c.timing.LivenessTimeout <= 0 {
		return
	}
	// A silent worker may also have given up on the import without saying
	// so; the import is abandoned and the folders stay selected for a retry.
	// A late event for the same generation resumes it.
	c.livenessSlot.Schedule(c.timing.LivenessTimeout, func() {
		if c.phase == types.PhaseInProgress {
			c.logger.With(log.F("gen", c.gen)).Warn("Worker unresponsive, import abandoned")
			c.phase = types.PhaseSelectingFolders
			c.markUnresponsive()
		}
	})
}

func (c *Controller) markUnresponsive() {
	if !c.unresponsive {
		c.unresponsive = true
		metrics.GalleryWorkerUnresponsive.Inc()
	}
}

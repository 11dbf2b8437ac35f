package views

import (
	"fmt"
	"strings"

	"vidhub/internal/buttons"
	"vidhub/internal/gallery"
	"vidhub/internal/tui/common"
	"vidhub/internal/tui/components"
	"vidhub/internal/tui/styles"
	"vidhub/pkg/types"
)

// lines the chrome around the result list takes at most
const chromeHeight = 14

func RenderMainView(m common.ModelReader) string {
	snap := m.Snapshot()
	theme := m.Theme()
	var sb strings.Builder

	if !snap.App.TopHidden {
		sb.WriteString(renderTopBar(snap, theme))
		sb.WriteString("\n")
	}

	if snap.App.ButtonsInView && !snap.App.MenuHidden {
		sb.WriteString(components.ButtonBar{Buttons: snap.SearchButtons, Theme: theme}.View())
		sb.WriteString("\n")
		sb.WriteString(components.ButtonBar{Buttons: snap.GalleryButtons, Theme: theme}.View())
		sb.WriteString("\n")
	}

	if snap.SettingsShown {
		sb.WriteString(renderSettings(snap, theme))
		sb.WriteString("\n")
	}

	input := ""
	if m.Mode() == common.Filter {
		input = m.InputView()
	}
	if bar := (components.FilterBar{
		Channels: snap.Filters,
		Buttons:  snap.SearchButtons,
		Magic:    snap.MagicSearch,
		Active:   m.Target(),
		Input:    input,
		Theme:    theme,
	}).View(); bar != "" {
		sb.WriteString(bar)
		sb.WriteString("\n")
	}

	if words := components.WordList(snap.Words, theme); words != "" && toggled(snap.SearchButtons, buttons.ShowFreq) {
		sb.WriteString(words)
		sb.WriteString("\n")
	}

	sb.WriteString(renderImport(m, snap, theme))
	sb.WriteString("\n")

	height := m.Height() - chromeHeight
	if height < 3 {
		height = 3
	}
	sb.WriteString(components.ResultList{
		Entries:     snap.VisibleEntries(),
		Cursor:      m.Cursor(),
		Layout:      snap.App.CurrentView,
		PreviewSize: snap.Preview.Size,
		MoreInfo:    toggled(snap.GalleryButtons, buttons.ShowMoreInfo),
		Width:       m.Width() - 2,
		Height:      height,
		Theme:       theme,
	}.View())
	sb.WriteString("\n")

	sb.WriteString(theme.Status.Render(fmt.Sprintf("Showing %d of %d", snap.Counts.Showing, snap.Counts.Total)))
	if status := m.StatusView(); status != "" {
		sb.WriteString("  " + status)
	}
	sb.WriteString("\n")

	if m.Mode() == common.Command {
		sb.WriteString(m.CommandLine())
		sb.WriteString("\n")
	}
	if m.ShowHelp() {
		sb.WriteString(RenderHelp(theme))
		sb.WriteString("\n")
	}
	sb.WriteString(RenderKeyCommands(theme))

	return theme.App.Render(sb.String())
}

func toggled(list []buttons.Button, id string) bool {
	for _, b := range list {
		if b.ID == id {
			return b.State.Toggled
		}
	}
	return false
}

func renderTopBar(snap gallery.Snapshot, theme styles.Theme) string {
	parts := []string{theme.Title.Render("vidhub")}
	source := snap.App.SelectedSourceFolder
	if source == "" {
		source = "(none)"
	}
	output := snap.App.SelectedOutputFolder
	if output == "" {
		output = "(none)"
	}
	parts = append(parts,
		theme.Help.Render("source: ")+source,
		theme.Help.Render("output: ")+output,
		theme.Help.Render("view: ")+snap.App.CurrentView.String(),
		theme.Help.Render("size: ")+fmt.Sprint(snap.Preview.Size),
	)
	if snap.Maximized {
		parts = append(parts, theme.Selected.Render("[max]"))
	}
	if snap.CurrentFile != "" {
		parts = append(parts, theme.Help.Render("playing: ")+strings.TrimPrefix(snap.CurrentFolder+"/", "/")+snap.CurrentFile)
	}
	return strings.Join(parts, "  ")
}

func renderSettings(snap gallery.Snapshot, theme styles.Theme) string {
	var s strings.Builder
	s.WriteString(theme.Title.Render("Settings"))
	s.WriteString("\n")
	s.WriteString(components.ButtonBar{Buttons: snap.SearchButtons, ShowHidden: true, Theme: theme}.View())
	s.WriteString("\n")
	s.WriteString(components.ButtonBar{Buttons: snap.GalleryButtons, ShowHidden: true, Theme: theme}.View())
	s.WriteString("\n")
	s.WriteString(theme.Help.Render(":hide <button> shows or hides a button"))
	return theme.Panel.Render(s.String())
}

func renderImport(m common.ModelReader, snap gallery.Snapshot, theme styles.Theme) string {
	var parts []string
	switch snap.Phase {
	case types.PhaseSelectingFolders:
		parts = append(parts, theme.Help.Render("Choose folders, then press i to import"))
	case types.PhaseInProgress:
		parts = append(parts, m.ProgressView(), fmt.Sprintf("%d/%d", snap.Done, snap.Total))
	case types.PhaseComplete:
		parts = append(parts, theme.Success.Render("Import complete"))
	}
	if snap.WorkerExited {
		parts = append(parts, theme.Error.Render("Worker exited"))
	} else if snap.WorkerUnresponsive {
		parts = append(parts, theme.Warning.Render("Worker unresponsive"))
	}
	return strings.Join(parts, "  ")
}

func RenderKeyCommands(theme styles.Theme) string {
	return theme.Help.Render("[↑/k] Up  [↓/j] Down  [Enter] Open  [/] Filter  [i] Import  [:] Command  [q] Quit  [?] Help")
}

func RenderHelp(theme styles.Theme) string {
	return theme.Help.Render(`
Folders & import:  s source folder   o output folder   i import   L load saved hub
Filters:           / edit active filter   tab/shift+tab change filter   x drop last term
                   1-9 add a frequent word to the file filter
View:              v next layout   +/- preview size   M magic search   F word list
Window:            , settings   t top bar   T menu   z maximize   _ minimize
Commands:          :source DIR  :output DIR  :load FILE  :open FILE
                   :folder WORD  :file WORD  :hide BUTTON  :quit`)
}

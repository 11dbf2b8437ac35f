package components

import (
	"fmt"
	"strings"

	"vidhub/internal/buttons"
	"vidhub/internal/filter"
	"vidhub/internal/stats"
	"vidhub/internal/tui/styles"
)

// FilterBar renders one line per visible search channel with its terms.
// Channels whose search button is hidden are left out unless they are the
// active target or hold terms.
type FilterBar struct {
	Channels []filter.Channel
	Buttons  []buttons.Button
	Magic    string
	// Active is the channel or "magic" keys are routed to
	Active string
	// Input is the rendered edit field shown on the active line
	Input string
	Theme styles.Theme
}

func (f FilterBar) hidden(id string) bool {
	for _, b := range f.Buttons {
		if b.ID == id {
			return b.State.Hidden
		}
	}
	return true
}

func (f FilterBar) toggled(id string) bool {
	for _, b := range f.Buttons {
		if b.ID == id {
			return b.State.Toggled
		}
	}
	return false
}

func (f FilterBar) View() string {
	var lines []string
	for i, ch := range f.Channels {
		name := filter.ChannelID(i).String()
		if f.hidden(name) && name != f.Active && len(ch.Terms) == 0 {
			continue
		}
		lines = append(lines, f.line(name, ch.Terms))
	}
	if f.toggled(buttons.SearchMagic) {
		var terms []string
		if f.Magic != "" && f.Active != buttons.SearchMagic {
			terms = []string{f.Magic}
		}
		lines = append(lines, f.line(buttons.SearchMagic, terms))
	}
	return strings.Join(lines, "\n")
}

func (f FilterBar) line(name string, terms []string) string {
	label := fmt.Sprintf("%-12s", name)
	if name == f.Active {
		label = f.Theme.Active.Render(label)
	} else {
		label = f.Theme.Unselected.Render(label)
	}
	parts := []string{label}
	for _, t := range terms {
		parts = append(parts, f.Theme.Term.Render("["+t+"]"))
	}
	if name == f.Active && f.Input != "" {
		parts = append(parts, f.Input)
	}
	return strings.Join(parts, " ")
}

// ButtonBar renders a registry's visible buttons in order
type ButtonBar struct {
	Buttons []buttons.Button
	// ShowHidden includes hidden buttons, marked as such
	ShowHidden bool
	Theme      styles.Theme
}

func (b ButtonBar) View() string {
	parts := make([]string, 0, len(b.Buttons))
	for _, btn := range b.Buttons {
		if btn.State.Hidden && !b.ShowHidden {
			continue
		}
		label := btn.Label
		if btn.State.Hidden {
			label += " (hidden)"
		}
		if btn.State.Toggled {
			parts = append(parts, b.Theme.Selected.Render("● "+label))
		} else {
			parts = append(parts, b.Theme.Unselected.Render("○ "+label))
		}
	}
	return strings.Join(parts, "  ")
}

// WordList renders the word frequency list with the digit that adds each
// word to the file filter
func WordList(words []stats.WordCount, theme styles.Theme) string {
	if len(words) == 0 {
		return ""
	}
	parts := make([]string, 0, len(words))
	for i, w := range words {
		entry := fmt.Sprintf("%s(%d)", w.Word, w.Count)
		if i < 9 {
			entry = fmt.Sprintf("%d:%s", i+1, entry)
		}
		parts = append(parts, theme.Term.Render(entry))
	}
	return strings.Join(parts, "")
}

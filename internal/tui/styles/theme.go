package styles

import (
	"vidhub/internal/config"

	"github.com/charmbracelet/lipgloss"
)

// Palette is the set of colors a Theme is built from. Values are lipgloss
// colors: ANSI numbers or hex strings.
type Palette struct {
	Primary  string
	Success  string
	Warning  string
	Error    string
	Info     string
	Emphasis string
	Border   string
}

// Theme defines the core UI styles
type Theme struct {
	App        lipgloss.Style
	Title      lipgloss.Style
	Selected   lipgloss.Style
	Unselected lipgloss.Style
	Help       lipgloss.Style
	Status     lipgloss.Style
	Warning    lipgloss.Style
	Error      lipgloss.Style
	Success    lipgloss.Style
	Term       lipgloss.Style
	Active     lipgloss.Style
	Cursor     lipgloss.Style
	Panel      lipgloss.Style

	// Fill colors the progress bar
	Fill string
}

// New builds a theme from p
func New(p Palette) Theme {
	return Theme{
		App: lipgloss.NewStyle().
			Padding(0, 1),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(p.Primary)),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Success)).
			Bold(true),
		Unselected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Info)),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Info)),
		Warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Warning)).
			Bold(true),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Error)).
			Bold(true),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Success)),
		Term: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Emphasis)).
			Padding(0, 1),
		Active: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Primary)).
			Bold(true).
			Underline(true),
		Cursor: lipgloss.NewStyle().
			Reverse(true),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(p.Border)).
			Padding(0, 1),
		Fill: p.Primary,
	}
}

// FromConfig builds the theme configured in cfg
func FromConfig(cfg *config.Config) Theme {
	t := cfg.Theme
	return New(Palette{
		Primary:  t.Primary,
		Success:  t.Success,
		Warning:  t.Warning,
		Error:    t.Error,
		Info:     t.Info,
		Emphasis: t.Emphasis,
		Border:   t.Border,
	})
}

// Default is the theme of a default configuration
func Default() Theme {
	return FromConfig(config.New())
}

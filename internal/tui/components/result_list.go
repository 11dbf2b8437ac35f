package components

import (
	"fmt"
	"path"
	"strings"

	"vidhub/internal/tui/styles"
	"vidhub/pkg/types"

	"github.com/charmbracelet/x/ansi"
)

// ResultList renders the visible results in the current layout
type ResultList struct {
	Entries []types.ResultEntry
	Cursor  int
	Layout  types.View
	// PreviewSize scales the thumbnail cells
	PreviewSize int
	// MoreInfo adds the folder to each thumbnail and filmstrip cell
	MoreInfo bool
	Width    int
	Height   int
	Theme    styles.Theme
}

// cellWidth turns a preview size in pixels into a cell width in columns
func cellWidth(previewSize int) int {
	w := previewSize / 5
	if w < 8 {
		w = 8
	}
	return w
}

func (l ResultList) View() string {
	if len(l.Entries) == 0 {
		return l.Theme.Unselected.Render("No results")
	}
	switch l.Layout {
	case types.ViewFiles:
		return l.files()
	case types.ViewFilmstrip:
		return l.filmstrip()
	}
	return l.thumbs()
}

func (l ResultList) width() int {
	if l.Width <= 0 {
		return 80
	}
	return l.Width
}

func (l ResultList) height() int {
	if l.Height <= 0 {
		return 10
	}
	return l.Height
}

func (l ResultList) render(i int, text string) string {
	if i == l.Cursor {
		return l.Theme.Cursor.Render(text)
	}
	return text
}

func (l ResultList) label(e types.ResultEntry) string {
	if l.MoreInfo && e.Folder() != "" {
		return e.Display() + " (" + strings.TrimPrefix(e.Folder(), "/") + ")"
	}
	return e.Display()
}

// window returns the slice [start, end) of n rows that keeps the cursor row
// on screen
func window(cursorRow, rows, height int) (int, int) {
	if rows <= height {
		return 0, rows
	}
	start := cursorRow - height/2
	if start < 0 {
		start = 0
	}
	if start+height > rows {
		start = rows - height
	}
	return start, start + height
}

func (l ResultList) files() string {
	var b strings.Builder
	start, end := window(l.Cursor, len(l.Entries), l.height())
	for i := start; i < end; i++ {
		e := l.Entries[i]
		line := path.Join(strings.TrimPrefix(e.Folder(), "/"), e.File())
		line = ansi.Truncate(fmt.Sprintf("%4d  %s", i+1, line), l.width(), "…")
		b.WriteString(l.render(i, line))
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (l ResultList) thumbs() string {
	cw := cellWidth(l.PreviewSize)
	cols := l.width() / (cw + 1)
	if cols < 1 {
		cols = 1
	}
	rows := (len(l.Entries) + cols - 1) / cols
	start, end := window(l.Cursor/cols, rows, l.height())

	var b strings.Builder
	for r := start; r < end; r++ {
		cells := make([]string, 0, cols)
		for c := 0; c < cols; c++ {
			i := r*cols + c
			if i >= len(l.Entries) {
				break
			}
			text := ansi.Truncate(l.label(l.Entries[i]), cw, "…")
			text += strings.Repeat(" ", cw-ansi.StringWidth(text))
			cells = append(cells, l.render(i, text))
		}
		b.WriteString(strings.Join(cells, " "))
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// filmstrip is a single row that scrolls with the cursor
func (l ResultList) filmstrip() string {
	cw := cellWidth(l.PreviewSize)
	per := l.width() / (cw + 3)
	if per < 1 {
		per = 1
	}
	start, end := window(l.Cursor, len(l.Entries), per)

	cells := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		text := ansi.Truncate(l.label(l.Entries[i]), cw, "…")
		cells = append(cells, l.render(i, text))
	}
	strip := strings.Join(cells, " │ ")
	if start > 0 {
		strip = "‹ " + strip
	}
	if end < len(l.Entries) {
		strip += " ›"
	}
	return strip
}

// Package tui is the terminal front end of the gallery. The bubbletea
// program is the event loop that owns the gallery controller: key presses,
// worker events and due timers all reach the controller through Update.
package tui

import (
	"fmt"
	"strings"
	"sync"

	"vidhub/internal/bridge"
	"vidhub/internal/buttons"
	"vidhub/internal/config"
	"vidhub/internal/filter"
	"vidhub/internal/gallery"
	"vidhub/internal/schedule"
	"vidhub/internal/state"
	"vidhub/internal/tui/common"
	"vidhub/internal/tui/components"
	"vidhub/internal/tui/messages"
	"vidhub/internal/tui/styles"
	"vidhub/internal/tui/views"
	"vidhub/pkg/types"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Options configure the terminal front end
type Options struct {
	Gallery gallery.Options
	Theme   styles.Theme
	// Saved restores a previous session when non-nil
	Saved *state.Saved
}

// TimingFromConfig reads the controller delays from cfg
func TimingFromConfig(cfg *config.Config) gallery.Timing {
	return gallery.Timing{
		SubscribeDelay:       cfg.Timing.SubscribeDelay,
		SettingsHideDelay:    cfg.Timing.SettingsHideDelay,
		SettingsRestoreDelay: cfg.Timing.SettingsRestoreDelay,
		LivenessTimeout:      cfg.Worker.LivenessTimeout,
	}
}

// OptionsFromConfig builds front end options from cfg
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Gallery: gallery.Options{
			Timing:      TimingFromConfig(cfg),
			InitialView: cfg.Gallery.DefaultView,
			Preview: buttons.Preview{
				Size: cfg.Gallery.PreviewSize,
				Min:  cfg.Gallery.PreviewMin,
				Max:  cfg.Gallery.PreviewMax,
				Step: cfg.Gallery.PreviewStep,
			},
			WordLimit: cfg.Gallery.WordLimit,
		},
		Theme: styles.FromConfig(cfg),
	}
}

type Model struct {
	ctrl   *gallery.Controller
	events <-chan bridge.Event
	keys   KeyMap
	theme  styles.Theme

	mode          common.Mode
	target        string
	cursor        int
	showHelp      bool
	commandBuffer string

	input    textinput.Model
	progress progress.Model
	status   *components.StatusBar

	snap          gallery.Snapshot
	width, height int
}

// New creates the model. Deferred controller callbacks are scheduled on
// sched, which must deliver them back to Update as messages.TaskMsg.
func New(sender gallery.Sender, events <-chan bridge.Event, sched schedule.Scheduler, opts Options) *Model {
	ctrl := gallery.New(sender, sched, opts.Gallery)
	if opts.Saved != nil {
		ctrl.Restore(*opts.Saved)
	}

	in := textinput.New()
	in.Prompt = "› "
	in.Placeholder = "term, or a glob like *2019*"

	m := &Model{
		ctrl:     ctrl,
		events:   events,
		keys:     DefaultKeyMap(),
		theme:    opts.Theme,
		target:   filter.File.String(),
		input:    in,
		progress: progress.New(progress.WithSolidFill(opts.Theme.Fill), progress.WithWidth(40)),
		status:   components.NewStatusBar(opts.Theme.Status),
		width:    80,
		height:   24,
	}
	m.snap = ctrl.Snapshot()
	return m
}

type poster struct {
	mu   sync.Mutex
	prog *tea.Program
}

func (p *poster) send(t schedule.Task) {
	p.mu.Lock()
	prog := p.prog
	p.mu.Unlock()
	if prog != nil {
		prog.Send(messages.TaskMsg{Task: t})
	}
}

// NewProgram builds a program around a new model. Timers fire on their own
// goroutines and come back into the program as messages.
func NewProgram(sender gallery.Sender, events <-chan bridge.Event, opts Options, progOpts ...tea.ProgramOption) (*tea.Program, *Model) {
	p := &poster{}
	m := New(sender, events, schedule.NewPosting(p.send), opts)
	prog := tea.NewProgram(m, progOpts...)
	p.mu.Lock()
	p.prog = prog
	p.mu.Unlock()
	return prog, m
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	m.ctrl.Start()
	return waitForEvent(m.events)
}

func waitForEvent(events <-chan bridge.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return messages.EventsClosedMsg{}
		}
		return messages.EventMsg{Event: ev}
	}
}

// View implements tea.Model
func (m *Model) View() string {
	return views.RenderMainView(m)
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if w := msg.Width - 20; w < 40 {
			m.progress.Width = max(w, 10)
		} else {
			m.progress.Width = 40
		}

	case messages.EventMsg:
		// rejected events are logged and counted by the controller
		_ = m.ctrl.HandleEvent(msg.Event)
		cmds = append(cmds, waitForEvent(m.events))

	case messages.EventsClosedMsg:
		m.status.SetText("Worker connection closed")

	case messages.TaskMsg:
		msg.Task.Run()

	case messages.ConfigUpdateMsg:
		m.ctrl.SetTiming(TimingFromConfig(msg.Config))

	case messages.ErrorMsg:
		m.status.SetStyle(m.theme.Error)
		m.status.SetText(msg.Err.Error())

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))

	default:
		cmds = append(cmds, m.status.Update(msg))
	}

	cmds = append(cmds, m.sync())
	return m, tea.Batch(cmds...)
}

// sync refreshes the snapshot the view renders from
func (m *Model) sync() tea.Cmd {
	m.snap = m.ctrl.Snapshot()
	if n := len(m.snap.Visible); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	if m.target == buttons.SearchMagic && !m.magicOn() {
		m.target = filter.File.String()
	}
	return m.status.SetLoading(m.snap.InProgress())
}

func (m *Model) setStatus(format string, args ...interface{}) {
	m.status.SetStyle(m.theme.Status)
	m.status.SetText(fmt.Sprintf(format, args...))
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch m.mode {
	case common.Filter:
		return m.handleFilterKeys(msg)
	case common.Command:
		return m.handleCommandMode(msg)
	}
	return m.handleNormalKeys(msg)
}

func (m *Model) handleNormalKeys(msg tea.KeyMsg) tea.Cmd {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return m.quit()
	case key.Matches(msg, k.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, k.Down):
		if m.cursor < len(m.snap.Visible)-1 {
			m.cursor++
		}
	case key.Matches(msg, k.Open):
		if m.ctrl.OpenVisible(m.cursor) {
			e := m.snap.Results[m.snap.Visible[m.cursor]]
			m.setStatus("Opening %s", e.File())
		}
	case key.Matches(msg, k.Filter):
		return m.startFilter()
	case key.Matches(msg, k.NextFilter):
		m.cycleTarget(1)
	case key.Matches(msg, k.PrevFilter):
		m.cycleTarget(-1)
	case key.Matches(msg, k.DropTerm):
		m.dropTerm()
	case key.Matches(msg, k.Import):
		if !m.ctrl.ImportFresh() {
			m.setStatus("Choose a source folder first (s)")
		}
	case key.Matches(msg, k.Source):
		m.ctrl.SelectSourceDirectory("")
	case key.Matches(msg, k.Output):
		m.ctrl.SelectOutputDirectory("")
	case key.Matches(msg, k.Load):
		m.ctrl.LoadFromFile("")
	case key.Matches(msg, k.NextView):
		m.ctrl.ToggleGalleryButton(nextViewButton(m.snap.App.CurrentView))
	case key.Matches(msg, k.Larger):
		m.ctrl.ToggleGalleryButton(buttons.MakeLarger)
	case key.Matches(msg, k.Smaller):
		m.ctrl.ToggleGalleryButton(buttons.MakeSmaller)
	case key.Matches(msg, k.Magic):
		m.toggleMagic()
	case key.Matches(msg, k.WordList):
		m.ctrl.ToggleSearchButton(buttons.ShowFreq)
	case key.Matches(msg, k.Settings):
		m.ctrl.ToggleSettings()
	case key.Matches(msg, k.TopBar):
		m.ctrl.ToggleTopVisible()
	case key.Matches(msg, k.Menu):
		m.ctrl.ToggleSettingsMenu()
	case key.Matches(msg, k.Maximize):
		m.ctrl.ToggleMaximize()
	case key.Matches(msg, k.Minimize):
		m.ctrl.Minimize()
	case key.Matches(msg, k.Command):
		m.mode = common.Command
		m.commandBuffer = ":"
	case key.Matches(msg, k.Help):
		m.showHelp = !m.showHelp
	case key.Matches(msg, k.WordShortcut):
		n := int(msg.String()[0] - '1')
		if n < len(m.snap.Words) {
			m.ctrl.OnWordClickInFile(m.snap.Words[n].Word)
		}
	}
	return nil
}

func (m *Model) quit() tea.Cmd {
	m.ctrl.Close()
	m.ctrl.Stop()
	return tea.Quit
}

func nextViewButton(current types.View) string {
	group := buttons.ViewGroup
	for i, id := range group {
		if v, _ := buttons.ViewForButton(id); v == current {
			return group[(i+1)%len(group)]
		}
	}
	return group[0]
}

func (m *Model) magicOn() bool {
	for _, b := range m.snap.SearchButtons {
		if b.ID == buttons.SearchMagic {
			return b.State.Toggled
		}
	}
	return false
}

func (m *Model) toggleMagic() {
	if !m.magicOn() {
		for _, b := range m.snap.SearchButtons {
			if b.ID == buttons.SearchMagic && b.State.Hidden {
				m.ctrl.ToggleHideSearchButton(buttons.SearchMagic)
			}
		}
	}
	m.ctrl.ToggleSearchButton(buttons.SearchMagic)
	m.snap = m.ctrl.Snapshot()
	if m.magicOn() {
		m.target = buttons.SearchMagic
	}
}

// targets lists the inputs Filter mode can edit: channels whose search
// button is shown, then magic search while it is on
func (m *Model) targets() []string {
	var out []string
	for _, b := range m.snap.SearchButtons {
		if _, ok := filter.ParseChannel(b.ID); ok && !b.State.Hidden {
			out = append(out, b.ID)
		}
	}
	if m.magicOn() {
		out = append(out, buttons.SearchMagic)
	}
	return out
}

func (m *Model) cycleTarget(delta int) {
	list := m.targets()
	if len(list) == 0 {
		return
	}
	i := 0
	for j, t := range list {
		if t == m.target {
			i = j
		}
	}
	i = (i + delta + len(list)) % len(list)
	m.target = list[i]
}

func (m *Model) startFilter() tea.Cmd {
	m.mode = common.Filter
	if m.target == buttons.SearchMagic {
		m.input.SetValue(m.snap.MagicSearch)
	} else if id, ok := filter.ParseChannel(m.target); ok {
		m.input.SetValue(m.snap.Filters[id].Input)
	}
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) dropTerm() {
	if m.target == buttons.SearchMagic {
		m.ctrl.SetMagicSearch("")
		return
	}
	if id, ok := filter.ParseChannel(m.target); ok {
		m.ctrl.RemoveAt(id, len(m.snap.Filters[id].Terms)-1)
	}
}

func (m *Model) handleFilterKeys(msg tea.KeyMsg) tea.Cmd {
	id, isChannel := filter.ParseChannel(m.target)
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.mode = common.Normal
		m.input.Blur()
		return nil
	case key.Matches(msg, m.keys.Submit):
		if !isChannel {
			m.mode = common.Normal
			m.input.Blur()
			return nil
		}
		if m.ctrl.AddTerm(id, m.input.Value()) {
			m.input.Reset()
			m.ctrl.SetInput(id, "")
		}
		return nil
	}

	// the buffer as it was before this key decides whether backspace pops
	// a term, so deleting the last character never does
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if !isChannel {
		m.ctrl.SetMagicSearch(m.input.Value())
		return cmd
	}
	if key.Matches(msg, m.keys.Backspace) {
		m.ctrl.RemoveLast(id, before)
	}
	m.ctrl.SetInput(id, m.input.Value())
	return cmd
}

func (m *Model) handleCommandMode(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = common.Normal
		m.commandBuffer = ""
		return nil
	case tea.KeyEnter:
		cmd := strings.TrimPrefix(m.commandBuffer, ":")
		m.mode = common.Normal
		m.commandBuffer = ""
		return m.executeCommand(cmd)
	case tea.KeyBackspace:
		if len(m.commandBuffer) > 1 {
			r := []rune(m.commandBuffer)
			m.commandBuffer = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.commandBuffer += " "
	case tea.KeyRunes:
		m.commandBuffer += string(msg.Runes)
	}
	return nil
}

func errorCmd(format string, args ...interface{}) tea.Cmd {
	err := fmt.Errorf(format, args...)
	return func() tea.Msg { return messages.ErrorMsg{Err: err} }
}

func (m *Model) executeCommand(line string) tea.Cmd {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name := fields[0]
	arg := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), name))

	switch name {
	case "q", "quit":
		return m.quit()
	case "source":
		m.ctrl.SelectSourceDirectory(arg)
	case "output":
		m.ctrl.SelectOutputDirectory(arg)
	case "load":
		m.ctrl.LoadFromFile(arg)
	case "import":
		if !m.ctrl.ImportFresh() {
			return errorCmd("no source folder selected")
		}
	case "open":
		if arg == "" {
			return errorCmd("open needs a path")
		}
		m.ctrl.OpenExternalFile(arg)
	case "folder":
		if !m.ctrl.OnWordClickInFolder(arg) {
			return errorCmd("folder needs a word")
		}
	case "file":
		if !m.ctrl.OnWordClickInFile(arg) {
			return errorCmd("file needs a word")
		}
	case "hide":
		if !m.ctrl.ToggleHideSearchButton(arg) && !m.ctrl.ToggleHideGalleryButton(arg) {
			return errorCmd("unknown button %q", arg)
		}
	case "view":
		v, err := types.ParseView(arg)
		if err != nil {
			return errorCmd("%v", err)
		}
		m.ctrl.ToggleGalleryButton(buttons.ButtonForView(v))
	default:
		return errorCmd("unknown command %q", name)
	}
	return nil
}

// Saved captures the session for persistence
func (m *Model) Saved() state.Saved {
	return m.ctrl.Saved()
}

// Getters

func (m *Model) Snapshot() gallery.Snapshot {
	return m.snap
}

func (m *Model) Mode() common.Mode {
	return m.mode
}

func (m *Model) Cursor() int {
	return m.cursor
}

func (m *Model) Target() string {
	return m.target
}

func (m *Model) InputView() string {
	return m.input.View()
}

func (m *Model) CommandLine() string {
	return m.commandBuffer
}

func (m *Model) StatusView() string {
	return m.status.View()
}

func (m *Model) ProgressView() string {
	return m.progress.ViewAs(m.snap.ProgressPercent)
}

func (m *Model) ShowHelp() bool {
	return m.showHelp
}

func (m *Model) Theme() styles.Theme {
	return m.theme
}

func (m *Model) Width() int {
	return m.width
}

func (m *Model) Height() int {
	return m.height
}

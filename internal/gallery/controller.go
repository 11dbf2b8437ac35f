// Package gallery is the controller between the user interface and the
// import worker. It is the only writer of the filter store, the button
// registries, the session AppState and the result set.
//
// A Controller is not safe for concurrent use. Every intent, every inbound
// event and every scheduled callback must run on the same event loop; the
// Scheduler passed to New is responsible for delivering callbacks there.
package gallery

import (
	"time"

	"vidhub/internal/bridge"
	"vidhub/internal/buttons"
	"vidhub/internal/filter"
	"vidhub/internal/log"
	"vidhub/internal/schedule"
	"vidhub/internal/state"
	"vidhub/internal/stats"
	"vidhub/pkg/types"
)

// Sender delivers commands to the worker without waiting for it
type Sender interface {
	Send(bridge.Command) error
}

// Timing holds the controller's deferred-effect delays
type Timing struct {
	SubscribeDelay       time.Duration
	SettingsHideDelay    time.Duration
	SettingsRestoreDelay time.Duration
	// LivenessTimeout is how long an import may go without an accepted
	// inbound event before the worker is reported unresponsive and the
	// import is abandoned. Zero disables it.
	LivenessTimeout time.Duration
}

// DefaultTiming returns the stock delays
func DefaultTiming() Timing {
	return Timing{
		SubscribeDelay:       100 * time.Millisecond,
		SettingsHideDelay:    10 * time.Millisecond,
		SettingsRestoreDelay: 500 * time.Millisecond,
		LivenessTimeout:      30 * time.Second,
	}
}

// Options configure a new Controller
type Options struct {
	Timing      Timing
	InitialView types.View
	Preview     buttons.Preview
	// WordLimit bounds the word frequency list; zero keeps every word
	WordLimit int
}

// DefaultOptions returns the stock configuration
func DefaultOptions() Options {
	return Options{
		Timing:      DefaultTiming(),
		InitialView: types.ViewThumbs,
		Preview:     buttons.DefaultPreview(),
		WordLimit:   20,
	}
}

// Controller orchestrates the gallery session
type Controller struct {
	sender Sender
	timing Timing
	logger *log.Logger

	filters *filter.Store
	search  *buttons.Registry
	gallery *buttons.Registry
	app     state.AppState
	preview buttons.Preview
	magic   string

	results []types.ResultEntry
	visible []int

	phase        types.ImportPhase
	done, total  int
	percent      float64
	gen          uint64
	completedGen uint64
	unresponsive bool
	workerGone   bool

	maximized     bool
	settingsOpen  bool
	settingsShown bool

	currentFolder string
	currentFile   string

	settingsSlot  *schedule.Slot
	livenessSlot  *schedule.Slot
	subscribeSlot *schedule.Slot

	words       *stats.WordFrequency
	counts      *stats.ShowLimit
	subscribed  bool
	unsubscribe []func()
	wordList    []stats.WordCount
	shown       stats.Results
}

// New creates a controller that sends commands through sender and runs
// deferred effects through sched.
func New(sender Sender, sched schedule.Scheduler, opts Options) *Controller {
	if opts.Preview.Step <= 0 {
		opts.Preview = buttons.DefaultPreview()
	}
	c := &Controller{
		sender:        sender,
		timing:        opts.Timing,
		logger:        log.For("gallery"),
		filters:       filter.NewStore(),
		search:        buttons.NewSearchButtons(),
		gallery:       buttons.NewGalleryButtons(opts.InitialView),
		app:           state.New(opts.InitialView),
		preview:       opts.Preview,
		settingsSlot:  schedule.NewSlot(sched),
		livenessSlot:  schedule.NewSlot(sched),
		subscribeSlot: schedule.NewSlot(sched),
		words:         stats.NewWordFrequency(opts.WordLimit),
		counts:        stats.NewShowLimit(),
	}
	c.refresh()
	return c
}

// Start schedules the deferred subscription to the aggregation streams
func (c *Controller) Start() {
	c.subscribeSlot.Schedule(c.timing.SubscribeDelay, c.subscribe)
}

func (c *Controller) subscribe() {
	if c.subscribed {
		return
	}
	c.subscribed = true
	c.unsubscribe = append(c.unsubscribe,
		c.words.Stream().Subscribe(func(v []stats.WordCount) { c.wordList = v }),
		c.counts.Stream().Subscribe(func(v stats.Results) { c.shown = v }),
	)
	c.logger.Debug("Subscribed to word frequency and result count streams")
}

// Stop cancels every pending callback and drops the stream subscriptions
func (c *Controller) Stop() {
	c.settingsSlot.Stop()
	c.livenessSlot.Stop()
	c.subscribeSlot.Stop()
	for _, fn := range c.unsubscribe {
		fn()
	}
	c.unsubscribe = nil
	c.subscribed = false
}

// SetTiming replaces the delays used by callbacks scheduled from now on
func (c *Controller) SetTiming(t Timing) {
	c.timing = t
}

// Words exposes the word frequency stream for other consumers
func (c *Controller) Words() *stats.WordFrequency {
	return c.words
}

// Counts exposes the result count stream for other consumers
func (c *Controller) Counts() *stats.ShowLimit {
	return c.counts
}

// refresh recomputes the visible indices and republishes the aggregates.
// It runs after every filter toggle flip and every result replacement.
func (c *Controller) refresh() {
	visible := c.filters.Compile().Apply(c.results)
	if c.magic != "" && c.search.Toggled(buttons.SearchMagic) {
		m := filter.Compile(c.magic)
		kept := visible[:0]
		for _, i := range visible {
			e := c.results[i]
			if m.Match(e.Folder()) || m.Match(e.Display()) {
				kept = append(kept, i)
			}
		}
		visible = kept
	}
	c.visible = visible
	c.words.Update(c.results, c.visible)
	c.counts.Update(len(c.visible), len(c.results))
}

// Saved captures what should survive the session
func (c *Controller) Saved() state.Saved {
	return state.Saved{
		App:            c.app,
		PreviewSize:    c.preview.Size,
		SearchButtons:  c.search.States(),
		GalleryButtons: c.gallery.States(),
	}
}

// Restore applies a saved session. The preview size is clamped to the
// configured bounds and the view group is re-established from the view.
// A session always starts with settings closed, so the buttons are shown.
func (c *Controller) Restore(saved state.Saved) {
	app := saved.App
	if !app.CurrentView.Valid() {
		app.CurrentView = c.app.CurrentView
	}
	app.ButtonsInView = true
	c.app = app
	if saved.PreviewSize > 0 {
		size := saved.PreviewSize
		if size < c.preview.Min {
			size = c.preview.Min
		}
		if size > c.preview.Max {
			size = c.preview.Max
		}
		c.preview.Size = size
	}
	c.search.Restore(saved.SearchButtons)
	c.gallery.Restore(saved.GalleryButtons)
	c.gallery.SelectExclusive(buttons.ViewGroup, buttons.ButtonForView(c.app.CurrentView))
	c.refresh()
}

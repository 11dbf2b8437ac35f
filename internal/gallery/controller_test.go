package gallery_test

import (
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"vidhub/internal/bridge"
	"vidhub/internal/buttons"
	"vidhub/internal/errors"
	"vidhub/internal/filter"
	"vidhub/internal/gallery"
	"vidhub/internal/schedule"
	"vidhub/internal/state"
	"vidhub/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	sent []bridge.Command
	err  error
}

func (r *recorder) Send(cmd bridge.Command) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, cmd)
	return nil
}

func (r *recorder) names() []string {
	out := make([]string, len(r.sent))
	for i, c := range r.sent {
		out[i] = c.Name
	}
	return out
}

func newController(t *testing.T) (*gallery.Controller, *recorder, *schedule.Manual) {
	t.Helper()
	rec := &recorder{}
	clock := schedule.NewManual()
	c := gallery.New(rec, clock, gallery.DefaultOptions())
	t.Cleanup(c.Stop)
	return c, rec, clock
}

func sampleFinal(gen uint64) bridge.FinalObjectReady {
	return bridge.FinalObjectReady{
		Meta: bridge.Meta{Gen: gen},
		Object: types.FinalObject{
			InputDir:  "/in",
			OutputDir: "/out",
			Images: []types.ResultEntry{
				{"/holiday", "beach.mp4", "beach sunset"},
				{"/holiday", "hotel.mp4", "hotel room"},
				{"/work", "talk.mp4", "conference talk"},
			},
		},
	}
}

func TestWordClickUsesFixedChannels(t *testing.T) {
	c, _, _ := newController(t)

	assert.True(t, c.OnWordClickInFile(" sunset "))
	assert.True(t, c.OnWordClickInFolder("holiday"))
	assert.False(t, c.OnWordClickInFile("   "))

	snap := c.Snapshot()
	assert.Equal(t, []string{"sunset"}, snap.Filters[3].Terms)
	assert.Equal(t, []string{"holiday"}, snap.Filters[1].Terms)
	assert.Empty(t, snap.Filters[0].Terms)
	assert.Empty(t, snap.Filters[2].Terms)
}

func TestFilterMutationsRecomputeVisible(t *testing.T) {
	c, _, _ := newController(t)
	require.NoError(t, c.HandleEvent(sampleFinal(0)))
	assert.Equal(t, []int{0, 1, 2}, c.Snapshot().Visible)

	c.AddTerm(filter.Folder, "holiday")
	assert.Equal(t, []int{0, 1}, c.Snapshot().Visible)

	c.AddTerm(filter.Exclude, "hotel")
	assert.Equal(t, []int{0}, c.Snapshot().Visible)

	assert.False(t, c.RemoveLast(filter.Exclude, "h"))
	assert.True(t, c.RemoveLast(filter.Exclude, ""))
	assert.Equal(t, []int{0, 1}, c.Snapshot().Visible)

	assert.False(t, c.RemoveAt(filter.Folder, 4))
	assert.True(t, c.RemoveAt(filter.Folder, 0))
	assert.Equal(t, []int{0, 1, 2}, c.Snapshot().Visible)
}

func TestFilterToggleFlipsOncePerSuccessfulMutation(t *testing.T) {
	c, _, _ := newController(t)
	rng := rand.New(rand.NewSource(7))
	inputs := []string{"", "  ", "a", "b c", "x"}

	for i := 0; i < 500; i++ {
		before := c.Snapshot().Filters[filter.File]
		var changed bool
		switch rng.Intn(3) {
		case 0:
			changed = c.AddTerm(filter.File, inputs[rng.Intn(len(inputs))])
		case 1:
			changed = c.RemoveLast(filter.File, inputs[rng.Intn(2)])
		case 2:
			changed = c.RemoveAt(filter.File, rng.Intn(4)-1)
		}
		after := c.Snapshot().Filters[filter.File]
		if changed {
			assert.NotEqual(t, before.Dirty, after.Dirty)
		} else {
			assert.Equal(t, before.Dirty, after.Dirty)
			assert.Equal(t, before.Terms, after.Terms)
		}
	}
}

func TestPreviewNeverLeavesBounds(t *testing.T) {
	c, _, _ := newController(t)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		if rng.Intn(2) == 0 {
			c.ToggleGalleryButton(buttons.MakeSmaller)
		} else {
			c.ToggleGalleryButton(buttons.MakeLarger)
		}
		size := c.Snapshot().Preview.Size
		assert.GreaterOrEqual(t, size, 50)
		assert.LessOrEqual(t, size, 200)
	}

	for i := 0; i < 10; i++ {
		c.ToggleGalleryButton(buttons.MakeSmaller)
	}
	assert.Equal(t, 50, c.Snapshot().Preview.Size)
	assert.False(t, c.ToggleGalleryButton(buttons.MakeSmaller))
}

func TestViewGroupStaysExclusive(t *testing.T) {
	c, _, _ := newController(t)
	ids := []string{
		buttons.ShowThumbnails, buttons.ShowFilmstrip, buttons.ShowFiles,
		buttons.HoverScrub, buttons.MakeLarger, "nope",
	}
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 200; i++ {
		c.ToggleGalleryButton(ids[rng.Intn(len(ids))])

		snap := c.Snapshot()
		on := ""
		count := 0
		for _, b := range snap.GalleryButtons {
			if _, inGroup := buttons.ViewForButton(b.ID); inGroup && b.State.Toggled {
				count++
				on = b.ID
			}
		}
		require.Equal(t, 1, count)
		view, _ := buttons.ViewForButton(on)
		assert.Equal(t, view, snap.App.CurrentView)
	}
}

func TestPlainGalleryButtonToggles(t *testing.T) {
	c, _, _ := newController(t)
	c.ToggleGalleryButton(buttons.HoverScrub)
	for _, b := range c.Snapshot().GalleryButtons {
		if b.ID == buttons.HoverScrub {
			assert.False(t, b.State.Toggled)
		}
	}
	assert.False(t, c.ToggleGalleryButton("unknown"))
	assert.True(t, c.ToggleHideGalleryButton(buttons.ShowMoreInfo))
	assert.True(t, c.ToggleHideSearchButton(buttons.ShowFreq))
	assert.True(t, c.ToggleSearchButton(buttons.SearchExclude))
	assert.False(t, c.ToggleSearchButton("unknown"))
}

func TestFinalObjectReplacesResults(t *testing.T) {
	c, _, _ := newController(t)
	require.NoError(t, c.HandleEvent(sampleFinal(0)))

	final := bridge.FinalObjectReady{Object: types.FinalObject{
		InputDir:  "/src",
		OutputDir: "/dst",
		Images:    []types.ResultEntry{{"f1", "img1.jpg", "img1"}},
	}}
	require.NoError(t, c.HandleEvent(final))

	snap := c.Snapshot()
	assert.Equal(t, []types.ResultEntry{{"f1", "img1.jpg", "img1"}}, snap.Results)
	assert.True(t, snap.ImportDone())
	assert.Equal(t, "/src", snap.App.SelectedSourceFolder)
	assert.Equal(t, "/dst", snap.App.SelectedOutputFolder)
}

func TestProgressEventsUpdatePercent(t *testing.T) {
	c, _, _ := newController(t)

	require.NoError(t, c.HandleEvent(bridge.ProcessingProgress{Done: 1, Total: 10}))
	snap := c.Snapshot()
	assert.True(t, snap.InProgress())
	assert.InDelta(t, 0.1, snap.ProgressPercent, 1e-9)

	require.NoError(t, c.HandleEvent(bridge.ProcessingProgress{Done: 5, Total: 10}))
	assert.InDelta(t, 0.5, c.Snapshot().ProgressPercent, 1e-9)
}

func TestProgressWithZeroTotalIsDiscarded(t *testing.T) {
	c, _, _ := newController(t)
	require.NoError(t, c.HandleEvent(bridge.ProcessingProgress{Done: 2, Total: 4}))

	err := c.HandleEvent(bridge.ProcessingProgress{Done: 1, Total: 0})
	require.Error(t, err)
	assert.True(t, errors.IsContractViolation(err))
	assert.InDelta(t, 0.5, c.Snapshot().ProgressPercent, 1e-9)
}

func TestProgressBeyondTotalIsDiscarded(t *testing.T) {
	c, _, _ := newController(t)
	require.NoError(t, c.HandleEvent(bridge.ProcessingProgress{Done: 10, Total: 10}))
	assert.InDelta(t, 1.0, c.Snapshot().ProgressPercent, 1e-9)

	for _, ev := range []bridge.ProcessingProgress{
		{Done: 15, Total: 10},
		{Done: -1, Total: 10},
	} {
		err := c.HandleEvent(ev)
		require.Error(t, err)
		assert.True(t, errors.IsContractViolation(err))
	}
	snap := c.Snapshot()
	assert.InDelta(t, 1.0, snap.ProgressPercent, 1e-9)
	assert.Equal(t, 10, snap.Done)
}

func TestStaleGenerationIsDiscarded(t *testing.T) {
	c, rec, _ := newController(t)
	require.NoError(t, c.HandleEvent(bridge.InputFolderChosen{Path: "/in"}))

	require.True(t, c.ImportFresh())
	require.True(t, c.ImportFresh())
	require.Len(t, rec.sent, 2)
	assert.Equal(t, uint64(1), rec.sent[0].Gen)
	assert.Equal(t, uint64(2), rec.sent[1].Gen)
	assert.Equal(t, "/in", rec.sent[1].Payload.InputDir)

	err := c.HandleEvent(bridge.ProcessingProgress{Meta: bridge.Meta{Gen: 1}, Done: 9, Total: 10})
	assert.True(t, errors.IsStale(err))
	err = c.HandleEvent(sampleFinal(1))
	assert.True(t, errors.IsStale(err))

	snap := c.Snapshot()
	assert.Zero(t, snap.ProgressPercent)
	assert.Empty(t, snap.Results)
	assert.True(t, snap.InProgress())

	require.NoError(t, c.HandleEvent(bridge.ProcessingProgress{Meta: bridge.Meta{Gen: 2}, Done: 3, Total: 10}))
	require.NoError(t, c.HandleEvent(sampleFinal(2)))
	assert.Len(t, c.Snapshot().Results, 3)

	err = c.HandleEvent(bridge.ProcessingProgress{Meta: bridge.Meta{Gen: 2}, Done: 4, Total: 10})
	assert.True(t, errors.IsStale(err))
	assert.True(t, c.Snapshot().ImportDone())

	err = c.HandleEvent(bridge.ProcessingProgress{Meta: bridge.Meta{Gen: 9}, Done: 1, Total: 10})
	assert.True(t, errors.IsContractViolation(err))
}

func TestDuplicateFinalObjectIsIdempotent(t *testing.T) {
	c, _, _ := newController(t)
	require.NoError(t, c.HandleEvent(sampleFinal(0)))
	first := c.Snapshot()
	require.NoError(t, c.HandleEvent(sampleFinal(0)))
	assert.Equal(t, first.Results, c.Snapshot().Results)
	assert.Equal(t, first.Visible, c.Snapshot().Visible)
}

func TestImportFreshNeedsSourceFolder(t *testing.T) {
	c, rec, _ := newController(t)
	assert.False(t, c.ImportFresh())
	assert.Empty(t, rec.sent)
	assert.Equal(t, types.PhaseIdle, c.Snapshot().Phase)
}

func TestFolderSelectionPhase(t *testing.T) {
	c, rec, _ := newController(t)
	c.SelectSourceDirectory("")
	c.SelectOutputDirectory("/hint")
	assert.Equal(t, []string{bridge.ChooseInputFolder, bridge.ChooseOutputFolder}, rec.names())
	assert.Equal(t, "/hint", rec.sent[1].Payload.Path)
	assert.Equal(t, types.PhaseSelectingFolders, c.Snapshot().Phase)

	require.NoError(t, c.HandleEvent(bridge.OutputFolderChosen{Path: "/out"}))
	assert.Equal(t, "/out", c.Snapshot().App.SelectedOutputFolder)
	assert.Error(t, c.HandleEvent(bridge.InputFolderChosen{}))
	assert.Empty(t, c.Snapshot().App.SelectedSourceFolder)
}

func TestSettingsToggleDoesNotLeakStaleTimer(t *testing.T) {
	t.Run("open then close", func(t *testing.T) {
		c, _, clock := newController(t)
		c.ToggleSettings()
		assert.True(t, c.Snapshot().SettingsShown)
		clock.Advance(5 * time.Millisecond)
		c.ToggleSettings()

		clock.Advance(20 * time.Millisecond)
		snap := c.Snapshot()
		assert.True(t, snap.App.ButtonsInView, "hide step from the first toggle must not run")
		assert.True(t, snap.SettingsShown)

		clock.Advance(time.Second)
		assert.False(t, c.Snapshot().SettingsShown)
		assert.True(t, c.Snapshot().App.ButtonsInView)
	})

	t.Run("open close reopen within 50ms", func(t *testing.T) {
		c, _, clock := newController(t)
		c.ToggleSettings()
		clock.Advance(20 * time.Millisecond)
		assert.False(t, c.Snapshot().App.ButtonsInView)

		c.ToggleSettings()
		clock.Advance(20 * time.Millisecond)
		c.ToggleSettings()

		clock.Advance(time.Second)
		snap := c.Snapshot()
		assert.True(t, snap.SettingsOpen)
		assert.True(t, snap.SettingsShown, "close step from the second toggle must not run")
		assert.False(t, snap.App.ButtonsInView)
	})
}

func TestMenuAndTopToggles(t *testing.T) {
	c, _, _ := newController(t)
	c.ToggleSettingsMenu()
	c.ToggleTopVisible()
	c.ToggleTopVisible()
	snap := c.Snapshot()
	assert.True(t, snap.App.MenuHidden)
	assert.False(t, snap.App.TopHidden)
}

func TestLivenessTimeout(t *testing.T) {
	c, _, clock := newController(t)
	require.NoError(t, c.HandleEvent(bridge.InputFolderChosen{Path: "/in"}))
	require.True(t, c.ImportFresh())

	clock.Advance(20 * time.Second)
	require.NoError(t, c.HandleEvent(bridge.ProcessingProgress{Meta: bridge.Meta{Gen: 1}, Done: 1, Total: 3}))
	clock.Advance(20 * time.Second)
	assert.False(t, c.Snapshot().WorkerUnresponsive)

	clock.Advance(15 * time.Second)
	assert.True(t, c.Snapshot().WorkerUnresponsive)

	require.NoError(t, c.HandleEvent(bridge.ProcessingProgress{Meta: bridge.Meta{Gen: 1}, Done: 2, Total: 3}))
	assert.False(t, c.Snapshot().WorkerUnresponsive)

	require.NoError(t, c.HandleEvent(sampleFinal(1)))
	clock.Advance(time.Minute)
	assert.False(t, c.Snapshot().WorkerUnresponsive)
}

func TestLivenessTimeoutAbandonsImport(t *testing.T) {
	c, rec, clock := newController(t)
	require.NoError(t, c.HandleEvent(bridge.InputFolderChosen{Path: "/in"}))
	require.True(t, c.ImportFresh())

	clock.Advance(time.Minute)
	snap := c.Snapshot()
	assert.True(t, snap.WorkerUnresponsive)
	assert.False(t, snap.InProgress())
	assert.Equal(t, types.PhaseSelectingFolders, snap.Phase)
	assert.Equal(t, "/in", snap.App.SelectedSourceFolder)

	// the folders are kept, so the import can be retried at once
	require.True(t, c.ImportFresh())
	assert.Equal(t, uint64(2), rec.sent[len(rec.sent)-1].Gen)
	assert.True(t, c.Snapshot().InProgress())
}

func TestRejectedEventsDoNotCountAsLiveness(t *testing.T) {
	c, _, clock := newController(t)
	require.NoError(t, c.HandleEvent(bridge.InputFolderChosen{Path: "/in"}))
	require.True(t, c.ImportFresh())
	require.True(t, c.ImportFresh())

	clock.Advance(20 * time.Second)
	err := c.HandleEvent(bridge.ProcessingProgress{Meta: bridge.Meta{Gen: 1}, Done: 1, Total: 3})
	require.True(t, errors.IsStale(err))
	err = c.HandleEvent(bridge.ProcessingProgress{Meta: bridge.Meta{Gen: 2}, Done: 1, Total: 0})
	require.True(t, errors.IsContractViolation(err))

	clock.Advance(15 * time.Second)
	assert.True(t, c.Snapshot().WorkerUnresponsive, "discarded events must not re-arm the timer")

	err = c.HandleEvent(bridge.ProcessingProgress{Meta: bridge.Meta{Gen: 1}, Done: 2, Total: 3})
	require.True(t, errors.IsStale(err))
	assert.True(t, c.Snapshot().WorkerUnresponsive, "nor clear the unresponsive state")

	require.NoError(t, c.HandleEvent(bridge.ProcessingProgress{Meta: bridge.Meta{Gen: 2}, Done: 1, Total: 3}))
	snap := c.Snapshot()
	assert.False(t, snap.WorkerUnresponsive)
	assert.True(t, snap.InProgress())
}

func TestWorkerExitMarksUnresponsive(t *testing.T) {
	c, _, _ := newController(t)
	require.NoError(t, c.HandleEvent(bridge.WorkerExited{}))
	snap := c.Snapshot()
	assert.True(t, snap.WorkerExited)
	assert.True(t, snap.WorkerUnresponsive)
}

func TestSendFailureKeepsUILive(t *testing.T) {
	c, rec, _ := newController(t)
	rec.err = errors.ErrWorkerUnavailable
	c.Minimize()
	c.ToggleMaximize()
	snap := c.Snapshot()
	assert.True(t, snap.Maximized)
	assert.True(t, snap.WorkerUnresponsive)
}

func TestOpenEntry(t *testing.T) {
	c, rec, _ := newController(t)
	require.NoError(t, c.HandleEvent(sampleFinal(0)))

	assert.False(t, c.OpenEntry(-1))
	assert.False(t, c.OpenEntry(3))
	assert.Empty(t, rec.sent)

	require.True(t, c.OpenEntry(2))
	require.Len(t, rec.sent, 1)
	assert.Equal(t, bridge.OpenExternalFile, rec.sent[0].Name)
	assert.Equal(t, filepath.Join("/in", "/work", "talk.mp4"), rec.sent[0].Payload.Path)

	snap := c.Snapshot()
	assert.Equal(t, "/work", snap.CurrentFolder)
	assert.Equal(t, "conference talk", snap.CurrentFile)

	c.AddTerm(filter.File, "hotel")
	require.True(t, c.OpenVisible(0))
	assert.Equal(t, filepath.Join("/in", "/holiday", "hotel.mp4"), rec.sent[1].Payload.Path)
	assert.False(t, c.OpenVisible(1))
}

func TestWindowCommands(t *testing.T) {
	c, rec, _ := newController(t)
	c.Minimize()
	c.ToggleMaximize()
	c.ToggleMaximize()
	c.Close()
	c.LoadFromFile("")
	assert.Equal(t, []string{
		bridge.MinimizeWindow,
		bridge.MaximizeWindow,
		bridge.UnmaximizeWindow,
		bridge.CloseWindow,
		bridge.LoadFile,
	}, rec.names())
	assert.False(t, c.Snapshot().Maximized)
	assert.Equal(t, uint64(1), rec.sent[4].Gen)
}

func TestDeferredSubscription(t *testing.T) {
	c, _, clock := newController(t)
	c.Start()
	require.NoError(t, c.HandleEvent(sampleFinal(0)))
	assert.Empty(t, c.Snapshot().Words)
	assert.Zero(t, c.Snapshot().Counts.Total)

	clock.Advance(100 * time.Millisecond)
	snap := c.Snapshot()
	assert.Equal(t, 3, snap.Counts.Total)
	assert.NotEmpty(t, snap.Words)

	c.AddTerm(filter.Folder, "work")
	snap = c.Snapshot()
	assert.Equal(t, 1, snap.Counts.Showing)
	assert.Equal(t, "conference", snap.Words[0].Word)
}

func TestMagicSearch(t *testing.T) {
	c, _, _ := newController(t)
	require.NoError(t, c.HandleEvent(sampleFinal(0)))

	c.SetMagicSearch("talk")
	assert.Len(t, c.Snapshot().Visible, 3)

	c.ToggleSearchButton(buttons.SearchMagic)
	assert.Equal(t, []int{2}, c.Snapshot().Visible)
}

func TestSavedRoundTrip(t *testing.T) {
	c, _, _ := newController(t)
	c.ToggleGalleryButton(buttons.ShowFiles)
	c.ToggleGalleryButton(buttons.MakeLarger)
	saved := c.Saved()
	assert.Equal(t, types.ViewFiles, saved.App.CurrentView)
	assert.Equal(t, 125, saved.PreviewSize)

	other, _, _ := newController(t)
	other.Restore(state.Saved{App: saved.App, PreviewSize: 900, GalleryButtons: saved.GalleryButtons})
	snap := other.Snapshot()
	assert.Equal(t, types.ViewFiles, snap.App.CurrentView)
	assert.Equal(t, 200, snap.Preview.Size)
}

func TestRestoreStartsWithButtonsShown(t *testing.T) {
	c, _, clock := newController(t)
	c.ToggleSettings()
	clock.Advance(20 * time.Millisecond)
	require.False(t, c.Snapshot().App.ButtonsInView)
	saved := c.Saved()

	other, _, _ := newController(t)
	other.Restore(saved)
	snap := other.Snapshot()
	assert.False(t, snap.SettingsOpen)
	assert.False(t, snap.SettingsShown)
	assert.True(t, snap.App.ButtonsInView)
}

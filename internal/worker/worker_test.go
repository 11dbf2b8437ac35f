package worker

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"vidhub/internal/bridge"
	"vidhub/internal/config"
	"vidhub/internal/errors"
	"vidhub/pkg/testutils"
	"vidhub/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []bridge.Event
}

func (r *recorder) Emit(ev bridge.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) all() []bridge.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bridge.Event(nil), r.events...)
}

func newTestWorker(t *testing.T, thumbnails bool) *Worker {
	t.Helper()
	opts := OptionsFromConfig(config.NewTestConfig())
	opts.Thumbnails = thumbnails
	opts.ThumbnailHeight = 10
	w, err := New(opts)
	require.NoError(t, err)
	return w
}

func TestNewRejectsBadPatterns(t *testing.T) {
	_, err := New(Options{MediaPatterns: []string{"*.[mp4"}})
	require.Error(t, err)
	assert.True(t, errors.IsInvalidConfig(err))

	_, err = New(Options{})
	require.Error(t, err)
}

func TestChooseFolders(t *testing.T) {
	w := newTestWorker(t, false)
	rec := &recorder{}
	ctx := context.Background()
	dir := t.TempDir()

	require.NoError(t, w.HandleCommand(ctx, bridge.Command{
		Name: bridge.ChooseInputFolder, Gen: 4, Payload: bridge.CommandPayload{Path: dir},
	}, rec))

	out := filepath.Join(dir, "new", "output")
	require.NoError(t, w.HandleCommand(ctx, bridge.Command{
		Name: bridge.ChooseOutputFolder, Payload: bridge.CommandPayload{Path: out},
	}, rec))
	assert.DirExists(t, out, "output folder should be created")

	err := w.HandleCommand(ctx, bridge.Command{
		Name: bridge.ChooseInputFolder, Payload: bridge.CommandPayload{Path: filepath.Join(dir, "missing")},
	}, rec)
	require.Error(t, err)
	assert.True(t, errors.IsFileNotFound(err))

	events := rec.all()
	require.Len(t, events, 2)
	assert.Equal(t, bridge.InputFolderChosen{Meta: bridge.Meta{Gen: 4}, Path: dir}, events[0])
	assert.Equal(t, bridge.OutputFolderChosen{Path: out}, events[1])
}

func TestImportProducesProgressAndFinal(t *testing.T) {
	w := newTestWorker(t, true)
	rec := &recorder{}
	input := t.TempDir()
	output := t.TempDir()
	testutils.CreateMediaTree(t, input)

	require.NoError(t, w.HandleCommand(context.Background(), bridge.Command{
		Name:    bridge.StartImport,
		Gen:     2,
		Payload: bridge.CommandPayload{InputDir: input, OutputDir: output},
	}, rec))
	w.Wait()

	events := rec.all()
	require.Len(t, events, 5)
	for i, ev := range events[:4] {
		p, ok := ev.(bridge.ProcessingProgress)
		require.True(t, ok, "event %d should be progress", i)
		assert.Equal(t, uint64(2), p.Gen)
		assert.Equal(t, i+1, p.Done)
		assert.Equal(t, 4, p.Total)
	}

	final, ok := events[4].(bridge.FinalObjectReady)
	require.True(t, ok)
	assert.Equal(t, uint64(2), final.Gen)
	assert.Equal(t, input, final.Object.InputDir)
	assert.Equal(t, output, final.Object.OutputDir)
	assert.Equal(t, []types.ResultEntry{
		types.NewResultEntry("", "Birthday.MOV", "Birthday"),
		types.NewResultEntry("", "holiday beach.mp4", "holiday beach"),
		types.NewResultEntry("/trips/rome", "colosseum.png", "colosseum"),
		types.NewResultEntry("/trips/rome", "forum.mkv", "forum"),
	}, final.Object.Images)

	thumb := filepath.Join(output, ThumbnailDir, ThumbnailName("trips/rome/colosseum.png"))
	require.FileExists(t, thumb)
	size := testutils.ImageSize(t, thumb)
	assert.Equal(t, 10, size.Y)
	assert.Equal(t, 20, size.X)

	hub, err := LoadHub(filepath.Join(output, HubFile))
	require.NoError(t, err)
	assert.Equal(t, final.Object, hub)
}

func TestImportSkipsOutputFolderInsideInput(t *testing.T) {
	w := newTestWorker(t, false)
	rec := &recorder{}
	input := t.TempDir()
	testutils.CreateTestFilesWithContent(t, input, map[string]string{
		"a.mp4":         "video",
		"out/stale.mp4": "previous import",
	})

	require.NoError(t, w.HandleCommand(context.Background(), bridge.Command{
		Name:    bridge.StartImport,
		Payload: bridge.CommandPayload{InputDir: input, OutputDir: filepath.Join(input, "out")},
	}, rec))
	w.Wait()

	events := rec.all()
	require.NotEmpty(t, events)
	final, ok := events[len(events)-1].(bridge.FinalObjectReady)
	require.True(t, ok)
	assert.Equal(t, []types.ResultEntry{types.NewResultEntry("", "a.mp4", "a")}, final.Object.Images)
}

func TestImportOfEmptyFolder(t *testing.T) {
	w := newTestWorker(t, false)
	rec := &recorder{}
	input := t.TempDir()

	require.NoError(t, w.HandleCommand(context.Background(), bridge.Command{
		Name:    bridge.StartImport,
		Payload: bridge.CommandPayload{InputDir: input},
	}, rec))
	w.Wait()

	events := rec.all()
	require.Len(t, events, 1, "no progress is reported without items")
	final, ok := events[0].(bridge.FinalObjectReady)
	require.True(t, ok)
	assert.Empty(t, final.Object.Images)
	assert.NotNil(t, final.Object.Images)
	assert.Empty(t, final.Object.OutputDir)
}

func TestLoadFile(t *testing.T) {
	w := newTestWorker(t, false)
	rec := &recorder{}
	dir := t.TempDir()
	obj := types.FinalObject{
		InputDir:  "/videos",
		OutputDir: dir,
		Images:    []types.ResultEntry{types.NewResultEntry("/a", "b.mp4", "b")},
	}
	require.NoError(t, SaveHub(filepath.Join(dir, HubFile), obj))

	// a folder resolves to the hub inside it
	require.NoError(t, w.HandleCommand(context.Background(), bridge.Command{
		Name: bridge.LoadFile, Gen: 7, Payload: bridge.CommandPayload{Path: dir},
	}, rec))
	events := rec.all()
	require.Len(t, events, 1)
	assert.Equal(t, bridge.FinalObjectReady{Meta: bridge.Meta{Gen: 7}, Object: obj}, events[0])

	err := w.HandleCommand(context.Background(), bridge.Command{
		Name: bridge.LoadFile, Payload: bridge.CommandPayload{Path: filepath.Join(dir, "nope.yaml")},
	}, rec)
	require.Error(t, err)
	assert.True(t, errors.IsFileNotFound(err))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("images: [\n"), 0644))
	err = w.HandleCommand(context.Background(), bridge.Command{
		Name: bridge.LoadFile, Payload: bridge.CommandPayload{Path: filepath.Join(dir, "broken.yaml")},
	}, rec)
	require.Error(t, err)
	assert.Len(t, rec.all(), 1)
}

func TestOpenExternalFile(t *testing.T) {
	w := newTestWorker(t, false)
	var opened []string
	w.open = func(_ context.Context, path string) error {
		opened = append(opened, path)
		return nil
	}
	file := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(file, []byte("video"), 0644))

	rec := &recorder{}
	require.NoError(t, w.HandleCommand(context.Background(), bridge.Command{
		Name: bridge.OpenExternalFile, Payload: bridge.CommandPayload{Path: file},
	}, rec))
	err := w.HandleCommand(context.Background(), bridge.Command{
		Name: bridge.OpenExternalFile, Payload: bridge.CommandPayload{Path: file + ".missing"},
	}, rec)
	require.Error(t, err)

	assert.Equal(t, []string{file}, opened)
	assert.Empty(t, rec.all())
}

func TestWindowCommandsAreAccepted(t *testing.T) {
	w := newTestWorker(t, false)
	rec := &recorder{}
	for _, name := range []string{bridge.MinimizeWindow, bridge.MaximizeWindow, bridge.UnmaximizeWindow, bridge.CloseWindow} {
		assert.NoError(t, w.HandleCommand(context.Background(), bridge.Command{Name: name}, rec), name)
	}
	err := w.HandleCommand(context.Background(), bridge.Command{Name: "reticulate"}, rec)
	assert.True(t, errors.IsContractViolation(err))
}

func TestEntryFor(t *testing.T) {
	tests := []struct {
		rel  string
		want types.ResultEntry
	}{
		{"clip.mp4", types.NewResultEntry("", "clip.mp4", "clip")},
		{"a/b/clip.final.mov", types.NewResultEntry("/a/b", "clip.final.mov", "clip.final")},
		{"noext", types.NewResultEntry("", "noext", "noext")},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			assert.Equal(t, tt.want, entryFor(tt.rel))
		})
	}
}

func TestOpenerCommand(t *testing.T) {
	name, args := openerCommand("", "darwin")
	assert.Equal(t, "open", name)
	assert.Empty(t, args)

	name, args = openerCommand("", "windows")
	assert.Equal(t, "cmd", name)
	assert.Equal(t, []string{"/c", "start", ""}, args)

	name, _ = openerCommand("", "linux")
	assert.Equal(t, "xdg-open", name)

	name, args = openerCommand("mpv --fs", "linux")
	assert.Equal(t, "mpv", name)
	assert.Equal(t, []string{"--fs"}, args)
}

func TestServeOverPipe(t *testing.T) {
	w := newTestWorker(t, false)
	conn, wc := bridge.Pipe()
	input := t.TempDir()
	testutils.CreateTestFilesWithContent(t, input, map[string]string{"one.mp4": "v", "two.webm": "v"})

	done := make(chan error, 1)
	go func() { done <- bridge.Serve(context.Background(), wc, w) }()

	require.NoError(t, conn.Send(bridge.Command{
		Name: bridge.StartImport, Gen: 1, Payload: bridge.CommandPayload{InputDir: input},
	}))

	var final bridge.FinalObjectReady
	timeout := time.After(5 * time.Second)
wait:
	for {
		select {
		case ev := <-conn.Events():
			if f, ok := ev.(bridge.FinalObjectReady); ok {
				final = f
				break wait
			}
		case <-timeout:
			t.Fatal("Timeout waiting for the import result")
		}
	}
	assert.Equal(t, uint64(1), final.Gen)
	assert.Len(t, final.Object.Images, 2)

	require.NoError(t, conn.Send(bridge.Command{Name: bridge.CloseWindow}))
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after close-window")
	}
}

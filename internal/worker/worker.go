// Package worker is the import side of the bridge. It answers folder
// choices, scans and thumbnails media for an import, loads saved hubs and
// opens files with the platform's default program.
package worker

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"vidhub/internal/bridge"
	"vidhub/internal/config"
	"vidhub/internal/errors"
	"vidhub/internal/log"

	"github.com/gobwas/glob"
)

// HubFile is the name of the saved result written into the output folder
const HubFile = "vidhub-hub.yaml"

// Options configure a Worker
type Options struct {
	MediaPatterns   []string
	DefaultInput    string
	DefaultOutput   string
	Thumbnails      bool
	ThumbnailHeight int
	// Opener is the program used to open files; empty picks the platform default
	Opener string
}

// OptionsFromConfig reads the worker section of cfg
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		MediaPatterns:   cfg.Worker.MediaPatterns,
		DefaultInput:    cfg.Worker.DefaultInput,
		DefaultOutput:   cfg.Worker.DefaultOutput,
		Thumbnails:      cfg.Worker.Thumbnails,
		ThumbnailHeight: cfg.Worker.ThumbnailHeight,
		Opener:          cfg.Worker.Opener,
	}
}

// Worker implements bridge.Handler
type Worker struct {
	opts   Options
	media  []glob.Glob
	logger *log.Logger

	// open launches a file viewer; replaced in tests
	open func(ctx context.Context, path string) error

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New compiles the media patterns and returns a ready worker
func New(opts Options) (*Worker, error) {
	w := &Worker{opts: opts, logger: log.For("worker")}
	for _, p := range opts.MediaPatterns {
		g, err := glob.Compile(strings.ToLower(p))
		if err != nil {
			return nil, errors.NewConfigError("invalid media pattern", p, errors.InvalidConfig, err)
		}
		w.media = append(w.media, g)
	}
	if len(w.media) == 0 {
		return nil, errors.NewConfigError("no media patterns", "worker.media_patterns", errors.InvalidConfig, nil)
	}
	w.open = w.launchOpener
	return w, nil
}

// HandleCommand implements bridge.Handler
func (w *Worker) HandleCommand(ctx context.Context, cmd bridge.Command, out bridge.Emitter) error {
	switch cmd.Name {
	case bridge.ChooseInputFolder:
		dir, err := w.chooseFolder(cmd.Payload.Path, w.opts.DefaultInput, false)
		if err != nil {
			return err
		}
		return out.Emit(bridge.InputFolderChosen{Meta: bridge.Meta{Gen: cmd.Gen}, Path: dir})

	case bridge.ChooseOutputFolder:
		dir, err := w.chooseFolder(cmd.Payload.Path, w.opts.DefaultOutput, true)
		if err != nil {
			return err
		}
		return out.Emit(bridge.OutputFolderChosen{Meta: bridge.Meta{Gen: cmd.Gen}, Path: dir})

	case bridge.StartImport:
		w.startImport(ctx, cmd, out)
		return nil

	case bridge.LoadFile:
		obj, err := w.loadHub(cmd.Payload.Path)
		if err != nil {
			return err
		}
		return emitReliably(ctx, out, bridge.FinalObjectReady{Meta: bridge.Meta{Gen: cmd.Gen}, Object: obj})

	case bridge.OpenExternalFile:
		if _, err := os.Stat(cmd.Payload.Path); err != nil {
			return errors.NewFileError("cannot open file", cmd.Payload.Path, errors.FileNotFound, err)
		}
		return w.open(ctx, cmd.Payload.Path)

	case bridge.MinimizeWindow, bridge.MaximizeWindow, bridge.UnmaximizeWindow:
		// there is no window on this side; the terminal owns the display
		w.logger.Debugf("Ignoring %s", cmd.Name)
		return nil

	case bridge.CloseWindow:
		w.Stop()
		return nil
	}
	return errors.NewBridgeError("unsupported command", cmd.Name, errors.UnknownMessage, nil)
}

// chooseFolder resolves a folder request: the payload path wins, then the
// configured default, then the current directory.
func (w *Worker) chooseFolder(requested, fallback string, create bool) (string, error) {
	dir := requested
	if dir == "" {
		dir = fallback
	}
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrap(err, "failed to resolve working directory")
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.NewFileError("invalid folder", dir, errors.InvalidPath, err)
	}

	if create {
		if err := os.MkdirAll(abs, 0755); err != nil {
			return "", errors.NewFileError("cannot create folder", abs, errors.FileAccessDenied, err)
		}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", errors.NewFileError("folder not found", abs, errors.FileNotFound, err)
	}
	if !info.IsDir() {
		return "", errors.NewFileError("not a folder", abs, errors.InvalidPath, nil)
	}
	return abs, nil
}

func (w *Worker) startImport(ctx context.Context, cmd bridge.Command, out bridge.Emitter) {
	w.mu.Lock()
	if w.cancel != nil {
		// a newer import supersedes the running one
		w.cancel()
	}
	importCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()
		defer cancel()
		if err := w.runImport(importCtx, cmd, out); err != nil {
			w.logger.WithError(err).With(log.F("gen", cmd.Gen)).Warn("Import failed")
		}
	}()
}

// Stop cancels a running import and waits for it to finish
func (w *Worker) Stop() {
	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.mu.Unlock()
	w.wg.Wait()
}

// Wait blocks until running imports have finished
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) launchOpener(ctx context.Context, path string) error {
	name, args := openerCommand(w.opts.Opener, runtime.GOOS)
	cmd := exec.Command(name, append(args, path)...)
	if err := cmd.Start(); err != nil {
		return errors.NewFileError("failed to launch opener", path, errors.Unknown, err)
	}
	w.logger.With(log.F("path", path), log.F("opener", name)).Info("Opened file")
	// reap the viewer without tying it to the worker's lifetime
	go func() { _ = cmd.Wait() }()
	return nil
}

func openerCommand(configured, goos string) (string, []string) {
	if configured != "" {
		fields := strings.Fields(configured)
		return fields[0], fields[1:]
	}
	switch goos {
	case "darwin":
		return "open", nil
	case "windows":
		return "cmd", []string{"/c", "start", ""}
	}
	return "xdg-open", nil
}

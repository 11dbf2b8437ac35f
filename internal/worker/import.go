package worker

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"vidhub/internal/bridge"
	"vidhub/internal/errors"
	"vidhub/internal/log"
	"vidhub/internal/metrics"
	"vidhub/pkg/types"

	"github.com/charlievieth/fastwalk"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ThumbnailDir is created inside the output folder
const ThumbnailDir = "thumbnails"

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true, ".tif": true, ".tiff": true}

func (w *Worker) runImport(ctx context.Context, cmd bridge.Command, out bridge.Emitter) error {
	jobID := uuid.New().String()
	logger := w.logger.With(log.F("job", jobID), log.F("gen", cmd.Gen))
	start := time.Now()

	input, err := w.chooseFolder(cmd.Payload.InputDir, w.opts.DefaultInput, false)
	if err != nil {
		metrics.ImportRunsTotal.WithLabelValues("error").Inc()
		return err
	}
	output := cmd.Payload.OutputDir
	if output == "" {
		output = w.opts.DefaultOutput
	}
	if output != "" {
		if output, err = w.chooseFolder(output, "", true); err != nil {
			metrics.ImportRunsTotal.WithLabelValues("error").Inc()
			return err
		}
	}

	logger.With(log.F("input", input), log.F("output", output)).Info("Import started")
	files, err := w.scan(ctx, input, output)
	if err != nil {
		metrics.ImportRunsTotal.WithLabelValues("error").Inc()
		return err
	}

	gen := bridge.Meta{Gen: cmd.Gen}
	total := len(files)
	images := make([]types.ResultEntry, 0, total)
	lastPct := -1
	for i, rel := range files {
		if err := ctx.Err(); err != nil {
			metrics.ImportRunsTotal.WithLabelValues("error").Inc()
			logger.Info("Import cancelled")
			return err
		}

		images = append(images, entryFor(rel))
		if output != "" && w.opts.Thumbnails && imageExts[strings.ToLower(filepath.Ext(rel))] {
			if err := w.thumbnail(filepath.Join(input, rel), output, rel); err != nil {
				metrics.ThumbnailFailures.Inc()
				logger.WithError(err).Debug("Thumbnail failed")
			}
		}
		metrics.ImportItemsTotal.Inc()

		// at most one progress event per percent
		done := i + 1
		if pct := done * 100 / total; pct != lastPct || done == total {
			lastPct = pct
			if err := out.Emit(bridge.ProcessingProgress{Meta: gen, Done: done, Total: total}); err != nil {
				logger.WithError(err).Debug("Progress not delivered")
			}
		}
	}

	final := types.FinalObject{InputDir: input, OutputDir: output, Images: images}
	if output != "" {
		if err := SaveHub(filepath.Join(output, HubFile), final); err != nil {
			logger.WithError(err).Warn("Failed to save hub")
		}
	}
	if err := emitReliably(ctx, out, bridge.FinalObjectReady{Meta: gen, Object: final}); err != nil {
		metrics.ImportRunsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.ImportRunsTotal.WithLabelValues("success").Inc()
	metrics.ImportDuration.Observe(time.Since(start).Seconds())
	logger.With(log.F("items", total), log.F("took", time.Since(start).String())).Info("Import complete")
	return nil
}

// scan returns the media files under root as sorted slash-separated
// relative paths. Hidden directories and the output folder are skipped.
func (w *Worker) scan(ctx context.Context, root, output string) ([]string, error) {
	var (
		mu    sync.Mutex
		files []string
	)
	outAbs := ""
	if output != "" {
		outAbs = filepath.Clean(output)
	}

	conf := &fastwalk.Config{Follow: false}
	err := fastwalk.Walk(conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if path != root && (strings.HasPrefix(d.Name(), ".") || filepath.Clean(path) == outAbs) {
				return fastwalk.SkipDir
			}
			return nil
		}
		if !w.isMedia(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		mu.Lock()
		files = append(files, filepath.ToSlash(rel))
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to scan %s", root)
	}
	sort.Strings(files)
	return files, nil
}

func (w *Worker) isMedia(name string) bool {
	lower := strings.ToLower(name)
	for _, g := range w.media {
		if g.Match(lower) {
			return true
		}
	}
	return false
}

// entryFor splits a relative path into the three result segments: the
// folder (slash-prefixed, empty at the root), the file name, and the file
// name without its extension for display.
func entryFor(rel string) types.ResultEntry {
	dir, file := filepath.Split(filepath.FromSlash(rel))
	folder := ""
	if dir = strings.TrimSuffix(filepath.ToSlash(dir), "/"); dir != "" {
		folder = "/" + dir
	}
	display := strings.TrimSuffix(file, filepath.Ext(file))
	return types.NewResultEntry(folder, file, display)
}

// ThumbnailName is the file a thumbnail of rel is written to. The name is
// derived from the path so re-imports overwrite instead of accumulating.
func ThumbnailName(rel string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(rel)).String() + ".jpg"
}

func (w *Worker) thumbnail(src, output, rel string) error {
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return err
	}
	thumb := imaging.Resize(img, 0, w.opts.ThumbnailHeight, imaging.Lanczos)

	dir := filepath.Join(output, ThumbnailDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return imaging.Save(thumb, filepath.Join(dir, ThumbnailName(rel)), imaging.JPEGQuality(80))
}

func (w *Worker) loadHub(path string) (types.FinalObject, error) {
	if path == "" {
		if w.opts.DefaultOutput == "" {
			return types.FinalObject{}, errors.NewFileError("no hub file given", "", errors.InvalidPath, nil)
		}
		path = filepath.Join(w.opts.DefaultOutput, HubFile)
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, HubFile)
	}
	return LoadHub(path)
}

// LoadHub reads a saved import result
func LoadHub(path string) (types.FinalObject, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return types.FinalObject{}, errors.NewFileError("hub file not found", path, errors.FileNotFound, err)
		}
		return types.FinalObject{}, errors.NewFileError("failed to read hub file", path, errors.FileAccessDenied, err)
	}
	var obj types.FinalObject
	if err := yaml.Unmarshal(data, &obj); err != nil {
		return types.FinalObject{}, errors.NewFileError("failed to parse hub file", path, errors.InvalidPath, err)
	}
	if obj.Images == nil {
		obj.Images = []types.ResultEntry{}
	}
	return obj, nil
}

// SaveHub writes an import result for a later load-file
func SaveHub(path string, obj types.FinalObject) error {
	data, err := yaml.Marshal(obj)
	if err != nil {
		return errors.Wrap(err, "failed to marshal hub")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.NewFileError("failed to write hub file", path, errors.FileAccessDenied, err)
	}
	return nil
}

// emitReliably retries while the outbound queue is full. Final objects must
// not be lost to a burst of progress events.
func emitReliably(ctx context.Context, out bridge.Emitter, ev bridge.Event) error {
	backoff := 5 * time.Millisecond
	for {
		err := out.Emit(ev)
		if err == nil || errors.KindOf(err) != errors.TransportFailed {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 200*time.Millisecond {
			backoff *= 2
		}
	}
}

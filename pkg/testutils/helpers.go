package testutils

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

// CreateTestFilesWithContent creates files below dir, making parent
// folders as needed. Names may contain slashes.
func CreateTestFilesWithContent(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

// CreateMediaTree creates a small library: two videos at the root, a
// nested folder with a video and an image, a hidden folder and a text file.
func CreateMediaTree(t *testing.T, dir string) {
	t.Helper()
	CreateTestFilesWithContent(t, dir, map[string]string{
		"holiday beach.mp4":     "video",
		"Birthday.MOV":          "video",
		"trips/rome/forum.mkv":  "video",
		"notes.txt":             "not media",
		".cache/preview.mp4":    "hidden",
		"trips/rome/readme.txt": "not media",
	})
	CreateTestImage(t, filepath.Join(dir, "trips", "rome", "colosseum.png"), 40, 20)
}

// CreateTestImage writes a solid PNG of the given size
func CreateTestImage(t *testing.T, path string, width, height int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	img := imaging.New(width, height, color.NRGBA{R: 200, G: 80, B: 40, A: 255})
	require.NoError(t, imaging.Save(img, path))
}

// ImageSize returns the dimensions of an image file
func ImageSize(t *testing.T, path string) image.Point {
	t.Helper()
	img, err := imaging.Open(path)
	require.NoError(t, err)
	return img.Bounds().Size()
}

// StripANSI removes ANSI escape sequences from a string
func StripANSI(str string) string {
	return ansi.Strip(str)
}

package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"vidhub/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	out, err := execute(t, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "worker:")
	assert.Contains(t, out, "preview_size:")
	assert.Contains(t, out, "media_patterns:")
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	out, err := execute(t, "--config", path, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)

	loaded, err := config.LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, config.New().Gallery, loaded.Gallery)

	_, err = execute(t, "--config", path, "config", "init")
	assert.Error(t, err, "existing file is not overwritten")

	_, err = execute(t, "--config", path, "config", "init", "--force")
	assert.NoError(t, err)
}

func TestConfigThemes(t *testing.T) {
	out, err := execute(t, "--config", filepath.Join(t.TempDir(), "c.yaml"), "config", "themes")
	require.NoError(t, err)
	assert.Contains(t, out, "default")
}

func TestInvalidConfigFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gallery: [oops"), 0644))

	_, err := execute(t, "--config", path, "config", "show")
	assert.Error(t, err)
}

func TestWorkerCommand(t *testing.T) {
	exe := func() (string, error) { return "/usr/bin/vidhub", nil }

	t.Run("self exec", func(t *testing.T) {
		cfg := config.NewTestConfig()
		name, args, err := workerCommand(cfg, "", exe)
		require.NoError(t, err)
		assert.Equal(t, "/usr/bin/vidhub", name)
		assert.Equal(t, []string{"worker"}, args)
	})

	t.Run("self exec forwards config and args", func(t *testing.T) {
		cfg := config.NewTestConfig()
		cfg.Worker.Args = []string{"--metrics-addr", ":9100"}
		_, args, err := workerCommand(cfg, "/etc/vidhub.yaml", exe)
		require.NoError(t, err)
		assert.Equal(t, []string{"worker", "--config", "/etc/vidhub.yaml", "--metrics-addr", ":9100"}, args)
	})

	t.Run("configured command", func(t *testing.T) {
		cfg := config.NewTestConfig()
		cfg.Worker.Command = "/opt/worker"
		cfg.Worker.Args = []string{"-v"}
		name, args, err := workerCommand(cfg, "/etc/vidhub.yaml", exe)
		require.NoError(t, err)
		assert.Equal(t, "/opt/worker", name)
		assert.Equal(t, []string{"-v"}, args)
	})

	t.Run("executable lookup fails", func(t *testing.T) {
		_, _, err := workerCommand(config.NewTestConfig(), "", func() (string, error) {
			return "", errors.New("no proc")
		})
		assert.Error(t, err)
	})
}

func TestRunWorkerStopsOnCancel(t *testing.T) {
	in, inW := io.Pipe()
	defer inW.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runWorker(ctx, config.NewTestConfig(), "", in, io.Discard) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestRunWorkerEndsWithInput(t *testing.T) {
	done := make(chan error, 1)
	go func() {
		done <- runWorker(context.Background(), config.NewTestConfig(), "", bytes.NewReader(nil), io.Discard)
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop at end of input")
	}
}

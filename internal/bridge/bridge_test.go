package bridge_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"vidhub/internal/bridge"
	"vidhub/internal/errors"
	"vidhub/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name string
		line string
		want bridge.Event
	}{
		{
			name: "input folder",
			line: `{"name":"input-folder-chosen","payload":{"path":"/videos"}}`,
			want: bridge.InputFolderChosen{Path: "/videos"},
		},
		{
			name: "legacy output folder with bare string",
			line: `{"name":"outputFolderChosen","payload":"/out"}`,
			want: bridge.OutputFolderChosen{Path: "/out"},
		},
		{
			name: "progress object",
			line: `{"name":"processing-progress","gen":3,"payload":{"done":1,"total":10}}`,
			want: bridge.ProcessingProgress{Meta: bridge.Meta{Gen: 3}, Done: 1, Total: 10},
		},
		{
			name: "legacy progress pair",
			line: `{"name":"processingProgress","payload":[5,10]}`,
			want: bridge.ProcessingProgress{Done: 5, Total: 10},
		},
		{
			name: "final object",
			line: `{"name":"final-object-ready","gen":2,"payload":{"inputDir":"/in","outputDir":"/out","images":[["f1","img1.jpg","img1"]]}}`,
			want: bridge.FinalObjectReady{Meta: bridge.Meta{Gen: 2}, Object: types.FinalObject{
				InputDir:  "/in",
				OutputDir: "/out",
				Images:    []types.ResultEntry{{"f1", "img1.jpg", "img1"}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := bridge.DecodeEvent([]byte(tt.line))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeEventContractViolations(t *testing.T) {
	lines := map[string]string{
		"not json":            `{"name":`,
		"no name":             `{"payload":{}}`,
		"progress no total":   `{"name":"processing-progress","payload":{"done":1}}`,
		"progress short pair": `{"name":"processing-progress","payload":[1]}`,
		"folder empty path":   `{"name":"input-folder-chosen","payload":{"path":""}}`,
		"folder no payload":   `{"name":"input-folder-chosen"}`,
		"final no images":     `{"name":"final-object-ready","payload":{"inputDir":"/in","outputDir":"/out"}}`,
		"final bad entry":     `{"name":"final-object-ready","payload":{"inputDir":"/in","outputDir":"/out","images":[["only-two","x"]]}}`,
	}
	for name, line := range lines {
		t.Run(name, func(t *testing.T) {
			_, err := bridge.DecodeEvent([]byte(line))
			require.Error(t, err)
			assert.True(t, errors.IsContractViolation(err), "got %v", err)
			assert.True(t, errors.IsBridgeError(err))
		})
	}

	_, err := bridge.DecodeEvent([]byte(`{"name":"something-else"}`))
	assert.Equal(t, errors.UnknownMessage, errors.KindOf(err))
}

func TestCommandRoundTripAcceptsAliases(t *testing.T) {
	data, err := bridge.EncodeCommand(bridge.Command{
		Name:    "openThisFile",
		Payload: bridge.CommandPayload{Path: "/in/a/b.mp4"},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "\n"))
	assert.Contains(t, string(data), `"name":"open-external-file"`)

	cmd, err := bridge.DecodeCommand(data)
	require.NoError(t, err)
	assert.Equal(t, bridge.OpenExternalFile, cmd.Name)
	assert.Equal(t, "/in/a/b.mp4", cmd.Payload.Path)

	_, err = bridge.EncodeCommand(bridge.Command{Name: "reboot"})
	assert.Equal(t, errors.UnknownMessage, errors.KindOf(err))

	_, err = bridge.DecodeCommand([]byte(`{"name":"open-external-file"}`))
	assert.True(t, errors.IsContractViolation(err))
}

func TestPipeEndToEnd(t *testing.T) {
	conn, worker := bridge.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- bridge.Serve(ctx, worker, bridge.HandlerFunc(
			func(ctx context.Context, cmd bridge.Command, out bridge.Emitter) error {
				if cmd.Name != bridge.StartImport {
					return nil
				}
				if err := out.Emit(bridge.ProcessingProgress{Meta: bridge.Meta{Gen: cmd.Gen}, Done: 1, Total: 2}); err != nil {
					return err
				}
				return out.Emit(bridge.FinalObjectReady{Meta: bridge.Meta{Gen: cmd.Gen}, Object: types.FinalObject{
					InputDir:  cmd.Payload.InputDir,
					OutputDir: cmd.Payload.OutputDir,
				}})
			}))
	}()

	require.NoError(t, conn.Send(bridge.Command{
		Name:    bridge.StartImport,
		Gen:     7,
		Payload: bridge.CommandPayload{InputDir: "/in", OutputDir: "/out"},
	}))

	progress := receive(t, conn)
	assert.Equal(t, bridge.ProcessingProgress{Meta: bridge.Meta{Gen: 7}, Done: 1, Total: 2}, progress)

	final := receive(t, conn).(bridge.FinalObjectReady)
	assert.Equal(t, uint64(7), final.Generation())
	assert.Equal(t, "/in", final.Object.InputDir)
	assert.Empty(t, final.Object.Images)

	require.NoError(t, conn.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after the gallery closed")
	}

	require.NoError(t, worker.Close())
	exited, ok := receive(t, conn).(bridge.WorkerExited)
	require.True(t, ok)
	assert.NoError(t, exited.Err)
}

func TestSendAfterCloseFails(t *testing.T) {
	conn, worker := bridge.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_ = worker.Commands(ctx)

	require.NoError(t, conn.Close())
	err := conn.Send(bridge.Command{Name: bridge.MinimizeWindow})
	assert.Equal(t, errors.WorkerUnavailable, errors.KindOf(err))
	require.NoError(t, worker.Close())
}

func TestCanonical(t *testing.T) {
	assert.Equal(t, bridge.StartImport, bridge.Canonical("start-the-import"))
	assert.Equal(t, bridge.FinalObjectReadyName, bridge.Canonical("finalObjectReturning"))
	assert.Equal(t, "custom", bridge.Canonical("custom"))
	assert.True(t, bridge.IsCommand("choose-input"))
	assert.False(t, bridge.IsCommand(bridge.ProcessingProgressName))
}

func receive(t *testing.T, conn *bridge.Conn) bridge.Event {
	t.Helper()
	select {
	case ev, ok := <-conn.Events():
		require.True(t, ok, "event stream closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
		return nil
	}
}

package bridge

import (
	"context"

	"vidhub/internal/log"
)

// Emitter sends events back to the gallery
type Emitter interface {
	Emit(Event) error
}

// Handler runs one command on the worker side. Long-running commands should
// watch ctx and tag the events they emit with cmd.Gen.
type Handler interface {
	HandleCommand(ctx context.Context, cmd Command, out Emitter) error
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(ctx context.Context, cmd Command, out Emitter) error

// HandleCommand implements Handler
func (f HandlerFunc) HandleCommand(ctx context.Context, cmd Command, out Emitter) error {
	return f(ctx, cmd, out)
}

// Serve dispatches commands from conn to h until the gallery closes the
// stream or ctx is cancelled. Commands run one at a time in arrival order;
// a handler error is logged and the loop continues.
func Serve(ctx context.Context, conn *WorkerConn, h Handler) error {
	logger := log.For("worker")
	cmds := conn.Commands(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd, ok := <-cmds:
			if !ok {
				logger.Info("Command stream closed")
				return nil
			}
			logger.Debugf("<- %s gen=%d", cmd.Name, cmd.Gen)
			if err := h.HandleCommand(ctx, cmd, conn); err != nil {
				logger.WithError(err).With(log.F("command", cmd.Name)).Warn("Command failed")
			}
			if cmd.Name == CloseWindow {
				logger.Info("Close requested")
				return nil
			}
		}
	}
}

package bridge

import (
	"context"
	"io"
	"os/exec"
	"time"

	"vidhub/internal/errors"
	"vidhub/internal/log"
)

// Process is a worker subprocess speaking the bridge protocol over its
// stdin and stdout.
type Process struct {
	*Conn
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	exited chan struct{}
	err    error
}

// StartProcess launches name with args. The worker's stderr goes to stderr
// (nil discards it).
func StartProcess(ctx context.Context, stderr io.Writer, name string, args ...string) (*Process, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.NewBridgeError("failed to open worker stdin", "", errors.WorkerUnavailable, err)
	}
	// exec copies the worker's stdout into pw; Wait returns only after that
	// copy has drained, so no trailing event is lost.
	pr, pw := io.Pipe()
	cmd.Stdout = pw
	if err := cmd.Start(); err != nil {
		_ = pw.Close()
		return nil, errors.NewBridgeError("failed to start worker", "", errors.WorkerUnavailable, err).
			WithContext("command", name)
	}

	p := &Process{
		cmd:    cmd,
		stdin:  stdin,
		exited: make(chan struct{}),
	}
	p.Conn = NewConn(pr, stdin)
	log.LogWithFields(log.F("pid", cmd.Process.Pid), log.F("command", name)).Info("Worker started")

	go func() {
		p.err = cmd.Wait()
		_ = pw.Close()
		if p.err != nil {
			log.LogWithError(p.err).Warn("Worker exited")
		} else {
			log.Info("Worker exited")
		}
		close(p.exited)
	}()
	return p, nil
}

// Pid is the worker's process id
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// Exited is closed when the worker process has ended
func (p *Process) Exited() <-chan struct{} {
	return p.exited
}

// Stop closes the worker's stdin and waits up to grace for it to exit
// before killing it.
func (p *Process) Stop(grace time.Duration) error {
	// Close may block on a worker that stopped reading; run it aside
	go func() {
		_ = p.Conn.Close()
		_ = p.stdin.Close()
	}()
	select {
	case <-p.exited:
	case <-time.After(grace):
		log.Warn("Worker did not exit in time, killing it")
		if err := p.cmd.Process.Kill(); err != nil {
			return errors.NewBridgeError("failed to kill worker", "", errors.WorkerUnavailable, err)
		}
		<-p.exited
	}
	return nil
}

// Err is the worker's exit error, valid after Exited is closed
func (p *Process) Err() error {
	<-p.exited
	return p.err
}

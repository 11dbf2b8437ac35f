package bridge

import (
	"bufio"
	"context"
	"io"
	"sync"

	"vidhub/internal/errors"
	"vidhub/internal/log"
	"vidhub/internal/metrics"
)

const (
	defaultQueueSize = 64
	// a final object for a large library easily exceeds bufio's 64K default
	maxLineSize = 32 << 20
)

// queue is the serialized, non-blocking writer shared by both ends of the
// bridge. Lines are written in Send order by a single goroutine.
type queue struct {
	w      io.Writer
	lines  chan queued
	done   chan struct{}
	once   sync.Once
	mu     sync.RWMutex
	closed bool
	logger *log.Logger
}

type queued struct {
	name string
	data []byte
}

func newQueue(w io.Writer, size int, logger *log.Logger) *queue {
	if size <= 0 {
		size = defaultQueueSize
	}
	q := &queue{
		w:      w,
		lines:  make(chan queued, size),
		done:   make(chan struct{}),
		logger: logger,
	}
	go q.run()
	return q
}

func (q *queue) run() {
	defer close(q.done)
	for line := range q.lines {
		if _, err := q.w.Write(line.data); err != nil {
			metrics.BridgeMessagesDropped.WithLabelValues("write_failed").Inc()
			q.logger.WithError(err).With(log.F("message", line.name)).Warn("Failed to write bridge message")
			continue
		}
		metrics.BridgeMessagesSent.WithLabelValues(line.name).Inc()
	}
}

// push never blocks: when the queue is full the line is dropped
func (q *queue) push(name string, data []byte) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return errors.NewBridgeError("bridge closed", name, errors.WorkerUnavailable, nil)
	}
	select {
	case q.lines <- queued{name: name, data: data}:
		return nil
	default:
		metrics.BridgeMessagesDropped.WithLabelValues("queue_full").Inc()
		return errors.NewBridgeError("outbound queue full", name, errors.TransportFailed, nil)
	}
}

// close stops accepting lines and waits for queued ones to be written
func (q *queue) close() {
	q.once.Do(func() {
		q.mu.Lock()
		q.closed = true
		close(q.lines)
		q.mu.Unlock()
	})
	<-q.done
}

func newScanner(r io.Reader) *bufio.Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return s
}

// Conn is the gallery's end of the bridge: it sends commands and delivers
// decoded events. Malformed or unknown inbound lines are logged, counted and
// dropped; they never reach Events.
type Conn struct {
	out    *queue
	events chan Event
	closer io.Closer
	logger *log.Logger
}

// ConnOption configures a Conn or WorkerConn
type ConnOption func(*connOptions)

type connOptions struct {
	queueSize int
	closer    io.Closer
}

// WithQueueSize bounds the outbound queue
func WithQueueSize(n int) ConnOption {
	return func(o *connOptions) { o.queueSize = n }
}

// WithCloser is closed after the outbound queue drains on Close
func WithCloser(c io.Closer) ConnOption {
	return func(o *connOptions) { o.closer = c }
}

func applyOptions(opts []ConnOption) connOptions {
	var o connOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewConn reads events from r and writes commands to w. When r ends, a
// WorkerExited event is delivered and Events is closed.
func NewConn(r io.Reader, w io.Writer, opts ...ConnOption) *Conn {
	o := applyOptions(opts)
	logger := log.For("bridge")
	c := &Conn{
		out:    newQueue(w, o.queueSize, logger),
		events: make(chan Event, defaultQueueSize),
		closer: o.closer,
		logger: logger,
	}
	go c.read(r)
	return c
}

func (c *Conn) read(r io.Reader) {
	defer close(c.events)
	s := newScanner(r)
	for s.Scan() {
		line := s.Bytes()
		if len(line) == 0 {
			continue
		}
		ev, err := DecodeEvent(line)
		if err != nil {
			reason := "malformed"
			if errors.KindOf(err) == errors.UnknownMessage {
				reason = "unknown"
			}
			metrics.BridgeMessagesDropped.WithLabelValues(reason).Inc()
			c.logger.WithError(err).Warn("Discarding inbound message")
			continue
		}
		metrics.BridgeMessagesReceived.WithLabelValues(ev.Name()).Inc()
		c.events <- ev
	}
	var exitErr error
	if err := s.Err(); err != nil {
		exitErr = errors.NewBridgeError("bridge read failed", "", errors.TransportFailed, err)
	}
	c.events <- WorkerExited{Err: exitErr}
}

// Send queues cmd for the worker. It never waits for the worker.
func (c *Conn) Send(cmd Command) error {
	data, err := EncodeCommand(cmd)
	if err != nil {
		return err
	}
	c.logger.Debugf("-> %s gen=%d", cmd.Name, cmd.Gen)
	return c.out.push(Canonical(cmd.Name), data)
}

// Events delivers inbound events until the worker goes away
func (c *Conn) Events() <-chan Event {
	return c.events
}

// Close flushes pending commands and closes the write side
func (c *Conn) Close() error {
	c.out.close()
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}

// WorkerConn is the worker's end of the bridge
type WorkerConn struct {
	r      io.Reader
	out    *queue
	closer io.Closer
	logger *log.Logger
}

// NewWorkerConn reads commands from r and writes events to w
func NewWorkerConn(r io.Reader, w io.Writer, opts ...ConnOption) *WorkerConn {
	o := applyOptions(opts)
	logger := log.For("worker-bridge")
	return &WorkerConn{
		r:      r,
		out:    newQueue(w, o.queueSize, logger),
		closer: o.closer,
		logger: logger,
	}
}

// Emit queues an event for the gallery
func (w *WorkerConn) Emit(ev Event) error {
	data, err := EncodeEvent(ev)
	if err != nil {
		return err
	}
	return w.out.push(ev.Name(), data)
}

// Commands decodes commands until r ends or ctx is done. Bad lines are
// logged and skipped.
func (w *WorkerConn) Commands(ctx context.Context) <-chan Command {
	ch := make(chan Command)
	go func() {
		defer close(ch)
		s := newScanner(w.r)
		for s.Scan() {
			line := s.Bytes()
			if len(line) == 0 {
				continue
			}
			cmd, err := DecodeCommand(line)
			if err != nil {
				metrics.BridgeMessagesDropped.WithLabelValues("malformed").Inc()
				w.logger.WithError(err).Warn("Discarding command")
				continue
			}
			metrics.BridgeMessagesReceived.WithLabelValues(cmd.Name).Inc()
			select {
			case ch <- cmd:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// Close flushes pending events and closes the write side
func (w *WorkerConn) Close() error {
	w.out.close()
	if w.closer != nil {
		return w.closer.Close()
	}
	return nil
}

// Pipe connects a gallery Conn to a WorkerConn in memory
func Pipe(opts ...ConnOption) (*Conn, *WorkerConn) {
	cmdR, cmdW := io.Pipe()
	evR, evW := io.Pipe()
	connOpts := append(append([]ConnOption(nil), opts...), WithCloser(cmdW))
	workerOpts := append(append([]ConnOption(nil), opts...), WithCloser(evW))
	return NewConn(evR, cmdW, connOpts...), NewWorkerConn(cmdR, evW, workerOpts...)
}

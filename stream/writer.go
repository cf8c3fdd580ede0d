// Package stream writes a document whose head carries an object of
// artifacts, streamed in batches by a single background goroutine while
// any number of goroutines keep submitting.
package stream

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/titpetric/verdict/metrics"
	"github.com/titpetric/verdict/model"
)

// BatchSize is the number of artifact lines handed to the background
// writer at once.
const BatchSize = 200

const (
	objectOpen  = " {\n"
	lineFormat  = "      \"%d\": \"%s\","
	endLine     = "      \"end\": \"end\"\n"
	objectClose = "    }\n"
)

// ErrClosed is returned when writing to a writer whose sink was released.
var ErrClosed = errors.New("stream writer is closed")

// Writer streams artifact lines into the head of a document.
//
// Submit never blocks on I/O. CloseArtifactStream is the barrier between
// the artifact object and the body: it drains every batch and terminates
// the object before any body content is written.
type Writer struct {
	sink     io.WriteCloser
	buf      *bufio.Writer
	sinkMu   sync.Mutex
	released bool

	nextID    atomic.Int64
	batchMu   sync.Mutex
	batch     []string
	closed    bool
	batchSize int

	queue  *queue
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	errMu sync.Mutex
	err   error

	barrierOnce sync.Once
	barrierErr  error

	shutdownMu   sync.Mutex
	shutdown     bool
	releaseOnce  sync.Once
	releaseErr   error
	releasedDone chan struct{}

	log     *slog.Logger
	metrics *metrics.Stream
}

// Option configures a Writer.
type Option func(*Writer)

// WithLogger sets the logger used for background failures and dropped artifacts.
func WithLogger(log *slog.Logger) Option {
	return func(w *Writer) {
		if log != nil {
			w.log = log
		}
	}
}

// WithMetrics sets the collectors updated by the writer.
func WithMetrics(m *metrics.Stream) Option {
	return func(w *Writer) {
		w.metrics = m
	}
}

// WithBatchSize overrides BatchSize. Values below 1 are ignored.
func WithBatchSize(n int) Option {
	return func(w *Writer) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

// Create truncates or creates the file at path and opens a Writer on it.
func Create(path, head string, opts ...Option) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, model.WrapError(model.ErrCodePath, fmt.Sprintf("cannot open report file %q", path), err)
	}

	w, err := New(f, head, opts...)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return w, nil
}

// New writes head and the artifact object opener to sink and starts the
// background writer. The Writer owns sink from here on.
func New(sink io.WriteCloser, head string, opts ...Option) (*Writer, error) {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Writer{
		sink:         sink,
		buf:          bufio.NewWriter(sink),
		batchSize:    BatchSize,
		queue:        newQueue(),
		ctx:          ctx,
		cancel:       cancel,
		done:         make(chan struct{}),
		releasedDone: make(chan struct{}),
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.batch = make([]string, 0, w.batchSize)

	if _, err := w.buf.WriteString(head + objectOpen); err != nil {
		cancel()
		return nil, model.WrapError(model.ErrCodePath, "cannot write report head", err)
	}
	if err := w.buf.Flush(); err != nil {
		cancel()
		return nil, model.WrapError(model.ErrCodePath, "cannot write report head", err)
	}

	go w.run()
	return w, nil
}

// Submit assigns the next artifact id and queues the payload under it.
// Ids start at 1 and are never reused. After the artifact stream is
// closed the id is still consumed but the payload is dropped.
func (w *Writer) Submit(payload string) int {
	id := int(w.nextID.Add(1))
	line := fmt.Sprintf(lineFormat, id, payload)

	w.batchMu.Lock()
	defer w.batchMu.Unlock()

	if w.closed {
		w.log.Warn("artifact submitted after stream close, dropping", slog.Int("id", id))
		w.metrics.Dropped(1)
		return id
	}

	w.batch = append(w.batch, line)
	w.metrics.Submitted()
	if len(w.batch) >= w.batchSize {
		w.enqueueLocked()
	}
	return id
}

// enqueueLocked hands the current batch to the background writer.
// The caller holds batchMu.
func (w *Writer) enqueueLocked() {
	if len(w.batch) == 0 {
		return
	}
	full := w.batch
	w.batch = make([]string, 0, w.batchSize)

	if !w.queue.push(full) {
		w.log.Warn("artifact stream halted, dropping batch", slog.Int("lines", len(full)))
		w.metrics.Dropped(len(full))
		return
	}
	w.metrics.Pending(w.queue.len())
}

func (w *Writer) run() {
	defer close(w.done)

	for {
		batch, err := w.queue.pop(w.ctx)
		if err != nil {
			// io.EOF: drained after close. context.Canceled: shutdown.
			return
		}
		w.metrics.Pending(w.queue.len())

		if err := w.writeBatch(batch); err != nil {
			w.fail(err)
			return
		}
	}
}

func (w *Writer) writeBatch(batch []string) error {
	w.sinkMu.Lock()
	defer w.sinkMu.Unlock()

	if w.released {
		return ErrClosed
	}
	for _, line := range batch {
		if _, err := w.buf.WriteString(line + "\n"); err != nil {
			w.buf.Reset(w.sink)
			return err
		}
	}
	// bufio keeps the first error; flushLocked resets it for later writes.
	if err := w.flushLocked(); err != nil {
		return err
	}
	w.metrics.Flushed(len(batch))
	return nil
}

func (w *Writer) fail(err error) {
	w.errMu.Lock()
	w.err = err
	w.errMu.Unlock()

	dropped := w.queue.drain()
	w.log.Error("artifact stream write failed", slog.Any("error", err), slog.Int("dropped", dropped))
	w.metrics.WriteError()
	w.metrics.Dropped(dropped)
	w.metrics.Pending(0)
}

// Err returns the error that halted the background writer, if any.
func (w *Writer) Err() error {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	return w.err
}

// CloseArtifactStream flushes the partial batch, waits for the background
// writer to drain and terminates the artifact object. It is idempotent;
// every call returns the result of the first. A background write failure
// only truncates the object; it is reported by Err, not here.
func (w *Writer) CloseArtifactStream() error {
	w.barrierOnce.Do(func() {
		w.barrierErr = w.closeArtifacts()
	})
	return w.barrierErr
}

func (w *Writer) closeArtifacts() error {
	w.batchMu.Lock()
	w.enqueueLocked()
	w.closed = true
	w.queue.close()
	w.batchMu.Unlock()

	<-w.done

	if err := w.Err(); err != nil {
		w.log.Warn("artifact stream truncated, terminating object", slog.Any("error", err))
	}

	w.sinkMu.Lock()
	defer w.sinkMu.Unlock()

	if w.released {
		return ErrClosed
	}
	if _, err := w.buf.WriteString(endLine + objectClose); err != nil {
		w.buf.Reset(w.sink)
		return err
	}
	return w.flushLocked()
}

// WriteContent closes the artifact stream if still open, then writes
// content after it.
func (w *Writer) WriteContent(content string) error {
	if err := w.CloseArtifactStream(); err != nil {
		return err
	}

	w.sinkMu.Lock()
	defer w.sinkMu.Unlock()

	if w.released {
		return ErrClosed
	}
	if _, err := w.buf.WriteString(content); err != nil {
		w.buf.Reset(w.sink)
		return err
	}
	return w.flushLocked()
}

// flushLocked flushes the buffer, discarding it on error. The caller
// holds sinkMu.
func (w *Writer) flushLocked() error {
	if err := w.buf.Flush(); err != nil {
		w.buf.Reset(w.sink)
		return err
	}
	return nil
}

// Shutdown cancels the background writer, waits for it and releases the
// sink. When ctx ends first, Shutdown returns ctx.Err() and the sink is
// released as soon as the background writer exits. Calling Shutdown
// more than once is safe; later calls wait for the first release.
func (w *Writer) Shutdown(ctx context.Context) error {
	w.shutdownMu.Lock()
	if w.shutdown {
		w.shutdownMu.Unlock()
		select {
		case <-w.releasedDone:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	w.shutdown = true
	w.shutdownMu.Unlock()

	w.cancel()

	select {
	case <-w.done:
		w.release()
		return w.releaseErr
	case <-ctx.Done():
		go func() {
			<-w.done
			w.release()
		}()
		return ctx.Err()
	}
}

// Close shuts the writer down and blocks until the sink is released.
func (w *Writer) Close() error {
	return w.Shutdown(context.Background())
}

func (w *Writer) release() {
	w.releaseOnce.Do(func() {
		w.sinkMu.Lock()
		defer w.sinkMu.Unlock()

		w.released = true
		flushErr := w.buf.Flush()
		closeErr := w.sink.Close()
		w.releaseErr = errors.Join(flushErr, closeErr)
		close(w.releasedDone)
	})
}

// Package report records a test run as containers, tests, steps and log
// entries, aggregates their statuses and streams the finished document.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/titpetric/verdict/artifact"
	"github.com/titpetric/verdict/config"
	"github.com/titpetric/verdict/metrics"
	"github.com/titpetric/verdict/model"
	"github.com/titpetric/verdict/stream"
	"github.com/titpetric/verdict/table"
)

// DefaultContainerName names the container Report.CreateTest adds tests to.
const DefaultContainerName = "default"

// Report is the root of a test run.
type Report struct {
	path    string
	start   time.Time
	cfg     *config.Config
	doc     Document
	encoder *artifact.Encoder
	writer  *stream.Writer
	log     *slog.Logger
	metrics *metrics.Stream

	mu         sync.Mutex
	containers []*Container

	defaultOnce      sync.Once
	defaultContainer *Container

	tableMu sync.Mutex
	table   *table.Table

	generateOnce sync.Once
	snapshot     *Snapshot
	generateErr  error
}

// Option configures a Report.
type Option func(*Report)

// WithConfig sets the report configuration.
func WithConfig(cfg *config.Config) Option {
	return func(r *Report) {
		if cfg != nil {
			r.cfg = cfg
		}
	}
}

// WithDocument replaces the default HTML document.
func WithDocument(doc Document) Option {
	return func(r *Report) {
		r.doc = doc
	}
}

// WithEncoder replaces the screenshot encoder built from the config.
func WithEncoder(enc *artifact.Encoder) Option {
	return func(r *Report) {
		r.encoder = enc
	}
}

// WithLogger sets the logger passed down to the stream writer.
func WithLogger(log *slog.Logger) Option {
	return func(r *Report) {
		if log != nil {
			r.log = log
		}
	}
}

// WithMetrics sets the stream writer collectors.
func WithMetrics(m *metrics.Stream) Option {
	return func(r *Report) {
		r.metrics = m
	}
}

// New validates path, creates its directory and opens the report
// document there. The document head is written immediately.
func New(path string, opts ...Option) (*Report, error) {
	fullPath, err := ValidatePath(path)
	if err != nil {
		return nil, err
	}

	r := &Report{
		path:       fullPath,
		start:      time.Now(),
		cfg:        config.Default(),
		log:        slog.Default(),
		containers: make([]*Container, 0),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.encoder == nil {
		r.encoder, err = artifact.NewEncoder(r.cfg.ImageQuality)
		if err != nil {
			return nil, err
		}
	}
	if r.doc == nil {
		r.doc = NewHTMLDocument(r.cfg)
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, model.WrapError(model.ErrCodePath, "cannot create report directory", err).WithContext("path", fullPath)
	}

	head, err := r.doc.Head()
	if err != nil {
		return nil, err
	}
	r.writer, err = stream.Create(fullPath, head, stream.WithLogger(r.log), stream.WithMetrics(r.metrics))
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ValidatePath checks that path names a file and returns it absolute.
func ValidatePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", model.NewError(model.ErrCodePath, "report path cannot be empty")
	}
	if strings.ContainsRune(path, 0) {
		return "", model.Errorf(model.ErrCodePath, "report path contains an invalid character: %q", path)
	}
	if strings.HasSuffix(path, string(filepath.Separator)) || strings.HasSuffix(path, "/") {
		return "", model.Errorf(model.ErrCodePath, "report path must include a file name: %q", path)
	}

	fullPath, err := filepath.Abs(path)
	if err != nil {
		return "", model.WrapError(model.ErrCodePath, fmt.Sprintf("invalid report path %q", path), err)
	}

	name := filepath.Base(fullPath)
	if name == "." || name == string(filepath.Separator) {
		return "", model.Errorf(model.ErrCodePath, "report path must include a file name: %q", path)
	}
	return fullPath, nil
}

// Path returns the absolute report path.
func (r *Report) Path() string {
	return r.path
}

// Config returns the report configuration.
func (r *Report) Config() *config.Config {
	return r.cfg
}

// Start returns the time the report was created.
func (r *Report) Start() time.Time {
	return r.start
}

// CreateContainer registers a new container.
func (r *Report) CreateContainer(name string, categories ...string) *Container {
	c := newContainer(r, name, categories)
	r.register(c)
	return c
}

// CreateTest adds a test to the default container, registering the
// container on first use.
func (r *Report) CreateTest(name string, categories ...string) *Test {
	r.defaultOnce.Do(func() {
		c := newContainer(r, DefaultContainerName, nil)
		c.isDefault = true
		r.defaultContainer = c
		r.register(c)
	})
	return r.defaultContainer.CreateTest(name, categories...)
}

func (r *Report) register(c *Container) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.containers = append(r.containers, c)
}

// Containers returns a copy of the containers in registration order.
func (r *Report) Containers() []*Container {
	r.mu.Lock()
	defer r.mu.Unlock()
	containers := make([]*Container, len(r.containers))
	copy(containers, r.containers)
	return containers
}

// Table creates the report table with at most maxColumns columns,
// replacing any earlier one.
func (r *Report) Table(maxColumns int) (*table.Table, error) {
	t, err := table.New(maxColumns)
	if err != nil {
		return nil, err
	}

	r.tableMu.Lock()
	defer r.tableMu.Unlock()
	r.table = t
	return t, nil
}

func (r *Report) currentTable() *table.Table {
	r.tableMu.Lock()
	defer r.tableMu.Unlock()
	return r.table
}

// submit encodes the screenshot and hands it to the stream writer.
func (r *Report) submit(shot *artifact.Screenshot) (int, error) {
	payload, err := r.encoder.Encode(shot)
	if err != nil {
		return 0, err
	}
	return r.writer.Submit(payload), nil
}

// Generate aggregates the run, writes the document body after the
// artifact stream and closes the report. Only the first call does any
// work; later calls return its result.
func (r *Report) Generate(ctx context.Context) (*Snapshot, error) {
	r.generateOnce.Do(func() {
		r.snapshot, r.generateErr = r.generate(ctx)
	})
	return r.snapshot, r.generateErr
}

func (r *Report) generate(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		_ = r.writer.Close()
		return nil, err
	}

	snap := r.Snapshot()

	body, err := r.doc.Body(snap)
	if err != nil {
		_ = r.writer.Close()
		return snap, fmt.Errorf("render report body: %w", err)
	}
	if err := r.writer.WriteContent(body); err != nil {
		_ = r.writer.Shutdown(ctx)
		return snap, fmt.Errorf("write report body: %w", err)
	}
	if err := r.writer.Shutdown(ctx); err != nil {
		return snap, fmt.Errorf("close report: %w", err)
	}

	r.log.Debug("report generated",
		slog.String("path", r.path),
		slog.Int("containers", snap.Stats.Containers.Total),
		slog.Int("tests", snap.Stats.Tests.Total),
		slog.Int("steps", snap.Stats.Steps.Total),
		slog.String("duration", snap.Duration),
	)
	return snap, nil
}

// Close releases the report file without generating it.
func (r *Report) Close() error {
	return r.writer.Close()
}

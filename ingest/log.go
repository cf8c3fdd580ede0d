package ingest

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// EventLogger writes one record per ingested test event. A nil logger or
// one created with an empty path discards everything.
type EventLogger struct {
	logger *slog.Logger
	closer io.Closer
	mu     sync.Mutex
}

// NewEventLogger creates an event logger appending to filePath.
// If filePath is empty, no logging occurs.
func NewEventLogger(filePath string) (*EventLogger, error) {
	if filePath == "" {
		return &EventLogger{}, nil
	}

	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}

	el := NewEventLoggerWriter(f)
	el.closer = f
	return el, nil
}

// NewEventLoggerWriter creates an event logger writing text records to w.
func NewEventLoggerWriter(w io.Writer) *EventLogger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     slog.LevelInfo,
		AddSource: false,
	})
	return &EventLogger{logger: slog.New(handler)}
}

func (el *EventLogger) enabled() bool {
	return el != nil && el.logger != nil
}

// LogRun logs a RUN event for a test.
func (el *EventLogger) LogRun(pkg, test string) {
	if !el.enabled() {
		return
	}
	el.mu.Lock()
	defer el.mu.Unlock()

	el.logger.Info("RUN",
		slog.String("package", pkg),
		slog.String("id", eventID(pkg, test)),
		slog.String("name", test),
	)
}

// LogPass logs a PASS event for a test.
func (el *EventLogger) LogPass(pkg, test string, elapsed float64) {
	if !el.enabled() {
		return
	}
	el.mu.Lock()
	defer el.mu.Unlock()

	el.logger.Info("PASS",
		slog.String("package", pkg),
		slog.String("id", eventID(pkg, test)),
		slog.String("duration", fmt.Sprintf("%.4f", elapsed)),
	)
}

// LogFail logs a FAIL event for a test.
func (el *EventLogger) LogFail(pkg, test string, elapsed float64) {
	if !el.enabled() {
		return
	}
	el.mu.Lock()
	defer el.mu.Unlock()

	el.logger.Info("FAIL",
		slog.String("package", pkg),
		slog.String("id", eventID(pkg, test)),
		slog.String("duration", fmt.Sprintf("%.4f", elapsed)),
	)
}

// LogSkip logs a SKIP event for a test.
func (el *EventLogger) LogSkip(pkg, test string) {
	if !el.enabled() {
		return
	}
	el.mu.Lock()
	defer el.mu.Unlock()

	el.logger.Info("SKIP",
		slog.String("package", pkg),
		slog.String("id", eventID(pkg, test)),
	)
}

// LogOutput logs an output line of a test.
func (el *EventLogger) LogOutput(pkg, test, output string) {
	if !el.enabled() || output == "" {
		return
	}
	el.mu.Lock()
	defer el.mu.Unlock()

	el.logger.Info("OUTPUT",
		slog.String("package", pkg),
		slog.String("id", eventID(pkg, test)),
		slog.String("output", output),
	)
}

// Close closes the underlying log file, if any.
func (el *EventLogger) Close() error {
	if el == nil || el.closer == nil {
		return nil
	}
	return el.closer.Close()
}

// eventID joins package and test into a single id, pkg::Test/sub.
func eventID(pkg, test string) string {
	if test == "" {
		return pkg
	}
	return pkg + "::" + test
}

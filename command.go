package main

import (
	"context"
	"debug/buildinfo"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"github.com/titpetric/cli"

	"github.com/titpetric/verdict/colors"
	"github.com/titpetric/verdict/config"
	"github.com/titpetric/verdict/eventlog"
	"github.com/titpetric/verdict/gate"
	"github.com/titpetric/verdict/ingest"
	"github.com/titpetric/verdict/metrics"
	"github.com/titpetric/verdict/model"
	"github.com/titpetric/verdict/publish"
	"github.com/titpetric/verdict/report"
	"github.com/titpetric/verdict/treeview"
)

// ErrGateFailed is returned when the quality gate expression holds.
var ErrGateFailed = errors.New("quality gate failed")

// Options are the report command flags.
type Options struct {
	Output   string
	Config   string
	Log      string
	EventLog string
	FailOn   string
	Publish  string
	Metrics  string
	Steps    bool
	Quiet    bool
	Debug    bool
	Version  bool
}

// Bind registers the flags on fs.
func (o *Options) Bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.Output, "output", "o", "report.html", "Report file path")
	fs.StringVarP(&o.Config, "config", "c", "", "Path to config file (auto-discovers .verdict.yml)")
	fs.StringVar(&o.Log, "log", "", "Write a YAML run log to this path")
	fs.StringVar(&o.EventLog, "event-log", "", "Log every ingested test event to this path")
	fs.StringVar(&o.FailOn, "fail-on", "", "Quality gate expression, overrides the config gate")
	fs.StringVar(&o.Publish, "publish", "", "Upload the report to s3://bucket/prefix")
	fs.StringVar(&o.Metrics, "metrics", "", "Write prometheus metrics to this path")
	fs.BoolVar(&o.Steps, "steps", false, "Show steps in the console tree")
	fs.BoolVarP(&o.Quiet, "quiet", "q", false, "Do not print the console summary")
	fs.BoolVar(&o.Debug, "debug", false, "Print debug logs")
	fs.BoolVarP(&o.Version, "version", "v", false, "Print version and build information")
}

// NewCommand creates the report command.
func NewCommand() *cli.Command {
	opts := &Options{}

	return &cli.Command{
		Name:    "report",
		Title:   "Build a test report from go test -json output",
		Default: true,
		Bind:    opts.Bind,
		Run: func(ctx context.Context, args []string) error {
			if opts.Version {
				printVersionInfo(os.Stdout)
				return nil
			}
			return Run(ctx, opts, args, os.Stdout)
		},
	}
}

// Run builds the report from the inputs and applies the quality gate.
// No inputs, or "-", read standard input.
func Run(ctx context.Context, opts *Options, inputs []string, out io.Writer) error {
	log := newLogger(opts.Debug)
	slog.SetDefault(log)

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, cfgPath, err := config.Resolve(opts.Config, cwd)
	if err != nil {
		return err
	}
	if cfgPath != "" {
		log.Debug("loaded config", slog.String("path", cfgPath))
	}

	gateSource := cfg.Gate
	if opts.FailOn != "" {
		gateSource = opts.FailOn
	}
	qualityGate, err := gate.Compile(gateSource)
	if err != nil {
		return err
	}

	var target *publish.Target
	if opts.Publish != "" {
		t, err := publish.ParseTarget(opts.Publish)
		if err != nil {
			return err
		}
		target = &t
	}

	cfg.Meta = eventlog.FillMeta(cfg.Meta, eventlog.CaptureGitInfo())

	registry := prometheus.NewRegistry()
	results := metrics.NewResults(registry)

	r, err := report.New(opts.Output,
		report.WithConfig(cfg),
		report.WithLogger(log),
		report.WithMetrics(metrics.NewStream(registry)),
	)
	if err != nil {
		return err
	}

	events, err := ingest.NewEventLogger(opts.EventLog)
	if err != nil {
		_ = r.Close()
		return model.WrapError(model.ErrCodePath, "cannot open event log", err).WithContext("path", opts.EventLog)
	}
	defer events.Close()

	if len(inputs) == 0 {
		inputs = []string{"-"}
	}
	in := ingest.New(r, ingest.WithLogger(log), ingest.WithEventLogger(events))
	if err := in.ReadFiles(ctx, inputs); err != nil {
		_ = r.Close()
		return err
	}
	if n := in.Skipped(); n > 0 {
		log.Warn("skipped lines that are not test events", slog.Int("lines", n))
	}

	if err := fillTable(r, cfg.Table); err != nil {
		_ = r.Close()
		return err
	}

	snap, err := r.Generate(ctx)
	if err != nil {
		return err
	}

	if !opts.Quiet {
		colors.Detect(out)
		display := treeview.NewDisplay(out)
		display.RenderTree(treeview.Build(snap, treeview.BuildOptions{Steps: opts.Steps}))
		display.RenderStats(snap)
		display.RenderTable(snap)
		colors.PrintInfo(out, "Report", r.Path())
	}

	runLog := eventlog.NewLogger(opts.Log, r.Path(), inputs, opts.Debug)
	if err := runLog.WriteSnapshot(snap); err != nil {
		return err
	}

	results.Record(snap.Stats)
	if opts.Metrics != "" {
		if err := metrics.WriteFile(opts.Metrics, registry); err != nil {
			return err
		}
	}

	if target != nil {
		client, err := publish.NewClient(publish.FromEnv())
		if err != nil {
			return err
		}
		urls, err := publish.New(client, *target, log).Upload(ctx, r.Path(), opts.Log, opts.Metrics)
		if err != nil {
			return err
		}
		if !opts.Quiet {
			for _, url := range urls {
				colors.PrintInfo(out, "Published", url)
			}
		}
	}

	failed, err := qualityGate.Failed(snap.Stats)
	if err != nil {
		return err
	}
	if failed {
		if !opts.Quiet {
			colors.PrintFail(out, "Quality gate", qualityGate.String())
		}
		return fmt.Errorf("%w: %s", ErrGateFailed, qualityGate)
	}
	return nil
}

// fillTable adds one row per test to the report table. Declared columns
// other than Package, Test, Result and Duration stay empty.
func fillTable(r *report.Report, settings config.Table) error {
	if len(settings.Columns) == 0 {
		return nil
	}

	tbl, err := r.Table(settings.MaxColumns)
	if err != nil {
		return err
	}
	for _, col := range settings.Columns {
		if err := tbl.AddColumn(col); err != nil {
			return err
		}
	}
	columns := tbl.Columns()

	for _, c := range r.Containers() {
		for _, t := range c.Tests() {
			d := t.Details()
			values := map[string]string{
				"Package":  c.Name(),
				"Test":     t.Name(),
				"Result":   d.Status.Label(),
				"Duration": model.FormatDuration(d.Elapsed()),
			}

			row, err := tbl.AddEntry()
			if err != nil {
				return err
			}
			for _, col := range columns {
				if v, ok := values[col]; ok {
					if err := row.Set(col, v); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok {
		_ = level.UnmarshalText([]byte(strings.ToLower(v)))
	}
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func printVersionInfo(w io.Writer) {
	fmt.Fprintf(w, "verdict\n")
	fmt.Fprintf(w, "  Version:     %s\n", Version)

	if Commit != "unknown" {
		shortCommit := Commit
		if len(Commit) > 12 {
			shortCommit = Commit[:12]
		}
		fmt.Fprintf(w, "  Commit:      %s\n", shortCommit)
	}

	if CommitTime != "unknown" {
		fmt.Fprintf(w, "  CommitTime:  %s\n", CommitTime)
	}

	if Branch != "unknown" {
		fmt.Fprintf(w, "  Branch:      %s\n", Branch)
	}

	if Modified == "true" {
		fmt.Fprintf(w, "  Modified:    true (dirty working tree)\n")
	}

	exePath, err := os.Executable()
	var bi *buildinfo.BuildInfo
	if err == nil {
		bi, _ = buildinfo.ReadFile(exePath)
	}
	if bi == nil {
		return
	}

	fmt.Fprintf(w, "  Module:      %s\n", bi.Path)
	if bi.GoVersion != "" {
		fmt.Fprintf(w, "  GoVersion:   %s\n", bi.GoVersion)
	}

	var osVal, archVal string
	for _, setting := range bi.Settings {
		switch setting.Key {
		case "GOOS":
			osVal = setting.Value
		case "GOARCH":
			archVal = setting.Value
		}
	}
	if osVal != "" && archVal != "" {
		fmt.Fprintf(w, "  OS/Arch:     %s/%s\n", osVal, archVal)
	}
}

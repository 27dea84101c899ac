// Package app wires the allocation pipeline: read the input table, load
// and allocate projects, then hand the result to every configured sink.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/manmonths/config"
	"github.com/kilianp07/manmonths/core/allocation"
	"github.com/kilianp07/manmonths/core/factory"
	"github.com/kilianp07/manmonths/core/history"
	"github.com/kilianp07/manmonths/core/loader"
	coremetrics "github.com/kilianp07/manmonths/core/metrics"
	"github.com/kilianp07/manmonths/core/model"
	"github.com/kilianp07/manmonths/core/period"
	"github.com/kilianp07/manmonths/core/report"
	"github.com/kilianp07/manmonths/infra/input"
	"github.com/kilianp07/manmonths/infra/logger"
	_ "github.com/kilianp07/manmonths/infra/metrics"
	"github.com/kilianp07/manmonths/infra/mqtt"
	"github.com/kilianp07/manmonths/infra/render"
)

// Publisher sends a run summary to an external consumer.
type Publisher interface {
	Publish(ctx context.Context, msg mqtt.Message) error
	Close()
}

// Request describes one allocation run.
type Request struct {
	// Input is the path of the CSV or XLSX project table.
	Input string
	// OutputDir overrides the configured output directory.
	OutputDir string
	// Capacity overrides the configured yearly capacity when positive.
	Capacity int
	// Formats restricts the output formats by type name when non-empty.
	Formats []string
}

// Outcome is the result of a successful run.
type Outcome struct {
	RunID    string
	Result   *model.Result
	Report   report.Report
	Outputs  []string
	Warnings []model.Warning
	Duration time.Duration
}

// Service runs allocation requests against the configured sinks.
type Service struct {
	cfg     *config.Config
	sink    coremetrics.MetricsSink
	store   history.Store
	pub     Publisher
	log     logger.Logger
	now     func() time.Time
	newID   func() string
	parser  *period.Parser
	ownsPub bool
}

// Option customises a Service.
type Option func(*Service)

// WithMetricsSink replaces the sinks built from configuration.
func WithMetricsSink(s coremetrics.MetricsSink) Option { return func(svc *Service) { svc.sink = s } }

// WithStore replaces the history store built from configuration.
func WithStore(s history.Store) Option { return func(svc *Service) { svc.store = s } }

// WithPublisher replaces the MQTT publisher built from configuration.
func WithPublisher(p Publisher) Option { return func(svc *Service) { svc.pub = p } }

// WithLogger sets the service logger.
func WithLogger(l logger.Logger) Option { return func(svc *Service) { svc.log = l } }

// WithClock fixes the time source used for run timestamps and "today".
func WithClock(now func() time.Time) Option {
	return func(svc *Service) {
		svc.now = now
		svc.parser = &period.Parser{Now: now}
	}
}

// WithIDs sets the run id generator.
func WithIDs(f func() string) Option { return func(svc *Service) { svc.newID = f } }

// New builds a Service. Sinks not supplied through options are created
// from cfg.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Service{
		cfg:    cfg,
		now:    time.Now,
		newID:  uuid.NewString,
		parser: period.NewParser(),
	}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = logger.New("service")
	}
	if s.sink == nil {
		sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
		if err != nil {
			return nil, fmt.Errorf("metrics sink: %w", err)
		}
		s.sink = sink
	}
	if s.store == nil {
		store, err := history.NewStore(cfg.History)
		if err != nil {
			return nil, fmt.Errorf("history store: %w", err)
		}
		s.store = store
	}
	if s.pub == nil && cfg.MQTT.Enabled() {
		pub, err := mqtt.NewPublisher(cfg.MQTT)
		if err != nil {
			_ = s.store.Close()
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		s.pub = pub
		s.ownsPub = true
	}
	if _, err := s.renderers(nil); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Store exposes the run history.
func (s *Service) Store() history.Store { return s.store }

// Run executes the pipeline for req. Input and loading failures abort the
// run. Failures of sinks after a successful allocation are logged and
// returned joined together with the outcome; outputs already written stay
// on disk.
func (s *Service) Run(ctx context.Context, req Request) (*Outcome, error) {
	start := s.now()
	fail := func(kind string, err error) (*Outcome, error) {
		s.recordFailure(req.Input, kind, start)
		return nil, err
	}

	capacity := s.cfg.Allocation
	if req.Capacity > 0 {
		capacity.MaxYearlyCapacity = req.Capacity
	}
	engine, err := allocation.New(capacity, allocation.WithLogger(logger.New("allocation")))
	if err != nil {
		return nil, err
	}
	renderers, err := s.renderers(req.Formats)
	if err != nil {
		return nil, err
	}

	tbl, err := input.Read(req.Input, s.cfg.Input.Sheet)
	if err != nil {
		return fail("input", err)
	}
	rows, err := loader.RowsFromTable(tbl, s.cfg.Input.Columns())
	if err != nil {
		return fail("missing_column", err)
	}
	ld := &loader.Loader{Parser: s.parser, Log: logger.New("loader")}
	batch, err := ld.Load(rows)
	if err != nil {
		return fail("no_valid_data", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := engine.Allocate(loader.ScheduleOrder(batch.Projects))
	res.Source = tbl
	res.Warnings = batch.Warnings
	rep := report.Build(res)
	out := &Outcome{
		RunID:    s.newID(),
		Result:   res,
		Report:   rep,
		Warnings: batch.Warnings,
	}
	s.log.Infow("allocation complete", map[string]any{
		"run_id":      out.RunID,
		"source":      filepath.Base(req.Input),
		"projects":    rep.Projects,
		"allocated":   rep.Allocated,
		"unallocated": rep.Unallocated,
		"warnings":    len(batch.Warnings),
	})

	var errs []error
	dir := s.outputDir(req)
	for _, r := range renderers {
		path, err := writeOutput(dir, req.Input, r, res)
		if err != nil {
			s.log.Errorf("render %s: %v", r.Extension(), err)
			errs = append(errs, err)
			continue
		}
		out.Outputs = append(out.Outputs, path)
	}
	out.Duration = s.now().Sub(start)

	source := filepath.Base(req.Input)
	if err := s.sink.RecordRun(runEvent(out, source, start)); err != nil {
		s.log.Errorf("record metrics: %v", err)
		errs = append(errs, fmt.Errorf("metrics: %w", err))
	}
	rec := history.NewRecord(out.RunID, source, start, res, rep)
	if err := s.store.Append(ctx, rec); err != nil {
		s.log.Errorf("append history: %v", err)
		errs = append(errs, fmt.Errorf("history: %w", err))
	}
	if s.pub != nil {
		msg := mqtt.Message{RunID: out.RunID, Source: source, Timestamp: start, Report: rep}
		if err := s.pub.Publish(ctx, msg); err != nil {
			s.log.Errorf("publish: %v", err)
			errs = append(errs, err)
		}
	}
	return out, errors.Join(errs...)
}

// Close releases the history store and the publisher.
func (s *Service) Close() error {
	if s.pub != nil && s.ownsPub {
		s.pub.Close()
	}
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// renderers builds the configured formats, restricted to only when given.
// A requested format missing from the configuration uses its defaults.
func (s *Service) renderers(only []string) ([]render.Renderer, error) {
	cfgs := append([]factory.ModuleConfig(nil), s.cfg.Output.Formats...)
	if len(only) > 0 {
		byType := make(map[string]factory.ModuleConfig, len(cfgs))
		for _, c := range cfgs {
			byType[c.Type] = c
		}
		cfgs = make([]factory.ModuleConfig, 0, len(only))
		for _, name := range only {
			c, ok := byType[name]
			if !ok {
				c = factory.ModuleConfig{Type: name}
			}
			cfgs = append(cfgs, c)
		}
	}
	for i, c := range cfgs {
		if c.Type != "xlsx" {
			continue
		}
		conf := make(map[string]any, len(c.Conf)+1)
		for k, v := range c.Conf {
			conf[k] = v
		}
		if _, ok := conf["period_column"]; !ok {
			conf["period_column"] = s.cfg.Input.PeriodColumn
		}
		cfgs[i] = factory.ModuleConfig{Type: c.Type, Conf: conf}
	}
	return render.NewAll(cfgs)
}

func (s *Service) outputDir(req Request) string {
	switch {
	case req.OutputDir != "":
		return req.OutputDir
	case s.cfg.Output.Dir != "":
		return s.cfg.Output.Dir
	default:
		return filepath.Dir(req.Input)
	}
}

func (s *Service) recordFailure(source, kind string, at time.Time) {
	rec, ok := s.sink.(coremetrics.FailureRecorder)
	if !ok {
		return
	}
	ev := coremetrics.LoadFailure{Source: filepath.Base(source), Kind: kind, Time: at}
	if err := rec.RecordFailure(ev); err != nil {
		s.log.Errorf("record failure: %v", err)
	}
}

func writeOutput(dir, inputPath string, r render.Renderer, res *model.Result) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, render.OutputName(inputPath, r.Extension()))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := r.Render(f, res); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("%s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

func runEvent(out *Outcome, source string, at time.Time) coremetrics.RunEvent {
	years := make(map[int]int, len(out.Report.Years))
	for _, y := range out.Report.Years {
		years[y.Year] = y.Total
	}
	return coremetrics.RunEvent{
		RunID:       out.RunID,
		Source:      source,
		Capacity:    out.Report.Capacity,
		Projects:    out.Report.Projects,
		Requested:   out.Report.Requested,
		Allocated:   out.Report.Allocated,
		Unallocated: out.Report.Unallocated,
		Shortfalls:  len(out.Report.Shortfalls),
		Warnings:    len(out.Warnings),
		YearTotals:  years,
		Duration:    out.Duration,
		Time:        at,
	}
}

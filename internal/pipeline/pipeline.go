package pipeline

import (
	"context"
	"log/slog"

	"github.com/mirrordocs/manualmirror/internal/browser"
	"github.com/mirrordocs/manualmirror/internal/config"
	"github.com/mirrordocs/manualmirror/internal/model"
)

// Run carries the shared state of one mirror execution through the
// pipeline. Steps read what earlier steps produced: the crawl step needs
// the session the login step established, the report step needs the crawl
// step's report.
type Run struct {
	// Config is the validated run configuration.
	Config *config.Config

	// Browser is the shared Chrome instance, set when the run needs one
	// (login or capture variant). Nil for sessionless HTTP runs.
	Browser *browser.Browser

	// Session is the authenticated portal session established by login.
	// Nil when login was skipped.
	Session *browser.Session

	// Report accumulates the run's results.
	Report *model.RunReport
}

// NewRun creates a Run for the given configuration with an empty report.
func NewRun(cfg *config.Config) *Run {
	return &Run{
		Config: cfg,
		Report: model.NewRunReport(cfg.Variant, string(cfg.ScopePolicy)),
	}
}

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence against the shared Run.
//
// Design decision: We use an interface rather than function types because:
// 1. It allows steps to carry configuration state
// 2. It provides a Name() method for logging and debugging
// 3. It's more extensible for future features (e.g., priority, dependencies)
type Step interface {
	// Do executes the pipeline step.
	// Returns an error if the step fails critically; per-page problems
	// should be recorded in the run's report and return nil.
	Do(ctx context.Context, run *Run) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
// It maintains a list of steps and executes them in order.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// continueOnError determines whether to continue executing steps
	// after one fails. If false, the pipeline stops on first error.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, a default logger is created.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to continue execution even
// when a step fails.
//
// Design decision: The default is to stop on error because early failures
// usually indicate fundamental problems (wrong credentials, unreachable
// portal) that make later steps pointless. The option exists for steps
// like the link check, whose failure should not discard a finished crawl.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence.
// It respects context cancellation and logs each step's execution.
//
// Design decision: We check context.Done() before each step rather than
// during, because steps should handle their own timeouts. This allows
// graceful cleanup between steps while still respecting cancellation.
func (p *Pipeline) Execute(ctx context.Context, run *Run) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			run.Report.Aborted = true
			return ctx.Err()
		default:
		}

		p.logger.Info("executing step", "step", step.Name())

		if err := step.Do(ctx, run); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"error", err,
			)

			if !p.continueOnError {
				return err
			}
		} else {
			p.logger.Debug("step completed", "step", step.Name())
		}
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}

package crawler

import (
	"context"
	"log/slog"
	"time"

	"github.com/mirrordocs/manualmirror/internal/model"
	"github.com/mirrordocs/manualmirror/internal/scope"
)

// Saver derives the local destination for a fetched page and persists it.
// The two crawl variants provide different implementations (flat MHTML
// captures vs. a mirrored directory tree with assets).
type Saver interface {
	// Save persists the page and returns the path it was written to,
	// relative to the output root.
	Save(ctx context.Context, page *model.FetchResult, category string) (string, error)
}

// Task is one unit of crawl work: a URL to fetch, the scope root it was
// discovered under, and the manual category it inherits from its seed.
type Task struct {
	// URL is the canonical URL to fetch.
	URL string

	// ScopeRoot is the prefix this task's URL satisfied when it was
	// discovered. Seeds carry their own derived root.
	ScopeRoot string

	// Category is the manual-category label inherited from the seed.
	Category string

	// seed marks seed tasks, which bypass scope filtering.
	seed bool
}

// Engine drives the crawl: it consumes seeds, walks the queue breadth-first,
// and coordinates fetching, persistence, and link discovery.
type Engine struct {
	fetcher   Fetcher
	extractor Extractor
	saver     Saver
	rule      scope.Rule
	registry  *Registry
	logger    *slog.Logger

	delay                  time.Duration
	maxPages               int
	maxConsecutiveFailures int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithRule sets the scope rule applied to discovered links.
func WithRule(rule scope.Rule) EngineOption {
	return func(e *Engine) {
		e.rule = rule
	}
}

// WithDelay sets the politeness delay between consecutive fetches.
func WithDelay(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.delay = d
	}
}

// WithMaxPages bounds the total number of tasks processed in one run.
func WithMaxPages(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxPages = n
		}
	}
}

// WithMaxConsecutiveFailures aborts the run after n back-to-back task
// failures. Zero disables the guard.
func WithMaxConsecutiveFailures(n int) EngineOption {
	return func(e *Engine) {
		e.maxConsecutiveFailures = n
	}
}

// WithLogger sets the engine's logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an Engine with the given collaborators. Each engine owns
// a fresh Registry, so constructing a new engine per run keeps runs
// independent.
func NewEngine(fetcher Fetcher, extractor Extractor, saver Saver, opts ...EngineOption) *Engine {
	e := &Engine{
		fetcher:                fetcher,
		extractor:              extractor,
		saver:                  saver,
		rule:                   scope.NewRule(scope.PolicySubpages, "/pages/"),
		registry:               NewRegistry(),
		delay:                  1 * time.Second,
		maxPages:               1000,
		maxConsecutiveFailures: 10,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}

	return e
}

// Run crawls from the given seeds until the queue empties, recording every
// outcome in report. Per-page failures are recorded and skipped over; Run
// itself only returns an error on cancellation or when the consecutive-
// failure guard trips, and the report remains valid in both cases.
func (e *Engine) Run(ctx context.Context, seeds []model.Seed, report *model.RunReport) error {
	queue := make([]Task, 0, len(seeds))

	// Seeds are always fetched: scope filtering applies to discovered
	// links only. Registering them here also dedupes seed lists that
	// mention the same URL twice.
	for _, seed := range seeds {
		canonical := scope.Canonicalize(seed.URL)
		if !e.registry.MarkIfNew(canonical) {
			report.AddSkipped()
			continue
		}
		queue = append(queue, Task{
			URL:       canonical,
			ScopeRoot: e.rule.RootFor(canonical),
			Category:  seed.Category,
			seed:      true,
		})
	}

	consecutiveFailures := 0
	processed := 0

	for len(queue) > 0 && processed < e.maxPages {
		select {
		case <-ctx.Done():
			report.Aborted = true
			return ctx.Err()
		default:
		}

		task := queue[0]
		queue = queue[1:]
		processed++

		discovered, failed := e.process(ctx, task, report)
		if failed {
			consecutiveFailures++
			if e.maxConsecutiveFailures > 0 && consecutiveFailures >= e.maxConsecutiveFailures {
				report.Aborted = true
				return ErrTooManyFailures
			}
		} else {
			consecutiveFailures = 0
		}
		queue = append(queue, discovered...)

		// Politeness delay before the next fetch.
		if e.delay > 0 && len(queue) > 0 {
			select {
			case <-ctx.Done():
				report.Aborted = true
				return ctx.Err()
			case <-time.After(e.delay):
			}
		}
	}

	if len(queue) > 0 {
		e.logger.Warn("page limit reached with work remaining",
			"limit", e.maxPages, "queued", len(queue))
	}

	return nil
}

// process handles one task end to end and returns the in-scope tasks it
// discovered, plus whether the task failed.
func (e *Engine) process(ctx context.Context, task Task, report *model.RunReport) ([]Task, bool) {
	e.logger.Info("fetching", "url", task.URL, "category", task.Category)

	page, err := e.fetcher.Fetch(ctx, task.URL)
	if err != nil {
		e.logger.Warn("fetch failed", "url", task.URL, "error", err)
		report.Add(model.PageResult{
			URL:      task.URL,
			Category: task.Category,
			Status:   model.StatusFailed,
			Reason:   err.Error(),
		})
		return nil, true
	}

	localPath, err := e.saver.Save(ctx, page, task.Category)
	if err != nil {
		e.logger.Warn("write failed", "url", task.URL, "error", err)
		report.Add(model.PageResult{
			URL:      task.URL,
			Category: task.Category,
			Status:   model.StatusFailed,
			Reason:   "write: " + err.Error(),
		})
		return nil, true
	}

	report.Add(model.PageResult{
		URL:       task.URL,
		Category:  task.Category,
		LocalPath: localPath,
		Status:    model.StatusSaved,
		Hash:      page.Hash,
	})

	return e.discover(task, page, report), false
}

// discover extracts candidate links from the fetched page and returns new
// tasks for those that are in scope and not yet seen. Extraction failures
// are warnings, not task failures: the page itself is already saved.
func (e *Engine) discover(task Task, page *model.FetchResult, report *model.RunReport) []Task {
	links, err := e.extractor.ExtractLinks(page.DOM, page.URL)
	if err != nil {
		e.logger.Warn("link extraction failed", "url", task.URL, "error", err)
		return nil
	}

	// Scope is evaluated against the current page's own root, not the
	// root the task was discovered under: each page only leads into its
	// own subtree.
	pageRoot := e.rule.RootFor(task.URL)

	tasks := make([]Task, 0)
	for _, link := range links {
		canonical := scope.Canonicalize(link)
		if !e.rule.InScope(canonical, pageRoot) {
			continue
		}
		if !e.registry.MarkIfNew(canonical) {
			report.AddSkipped()
			continue
		}
		tasks = append(tasks, Task{
			URL:       canonical,
			ScopeRoot: pageRoot,
			Category:  task.Category,
		})
	}

	return tasks
}

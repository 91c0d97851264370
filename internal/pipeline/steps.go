package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/mirrordocs/manualmirror/internal/browser"
	"github.com/mirrordocs/manualmirror/internal/config"
	"github.com/mirrordocs/manualmirror/internal/crawler"
	"github.com/mirrordocs/manualmirror/internal/database"
	"github.com/mirrordocs/manualmirror/internal/linkcheck"
	"github.com/mirrordocs/manualmirror/internal/report"
	"github.com/mirrordocs/manualmirror/internal/scope"
	"github.com/mirrordocs/manualmirror/internal/storage"
)

// LoginStep authenticates against the portal and stores the session on the
// run. It is a no-op when login is disabled.
type LoginStep struct {
	logger *slog.Logger
}

// NewLoginStep creates a LoginStep.
func NewLoginStep(logger *slog.Logger) *LoginStep {
	return &LoginStep{logger: logger}
}

// Name returns the step name.
func (s *LoginStep) Name() string {
	return "login"
}

// Do performs the browser login and records the session on the run.
func (s *LoginStep) Do(ctx context.Context, run *Run) error {
	if run.Config.SkipLogin {
		s.logger.Info("login disabled, crawling without a session")
		return nil
	}

	if run.Browser == nil {
		run.Browser = browser.New(
			browser.WithHeadless(run.Config.Headless),
			browser.WithLoginTimeout(run.Config.LoginTimeout),
			browser.WithLogger(s.logger),
		)
	}

	session, err := run.Browser.Login(ctx, run.Config.LoginURL(), run.Config.Username, run.Config.Password)
	if err != nil {
		return fmt.Errorf("login step: %w", err)
	}

	run.Session = session
	return nil
}

// CrawlStep runs the crawl itself: it assembles the fetcher and saver for
// the configured variant and drives the engine over the seed list.
type CrawlStep struct {
	logger *slog.Logger
}

// NewCrawlStep creates a CrawlStep.
func NewCrawlStep(logger *slog.Logger) *CrawlStep {
	return &CrawlStep{logger: logger}
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do executes the crawl and fills the run's report.
// An aborted crawl (too many consecutive failures) is returned as an error
// so the pipeline stops; the partial report remains usable.
func (s *CrawlStep) Do(ctx context.Context, run *Run) error {
	cfg := run.Config

	seeds, err := config.LoadSeeds(cfg.SeedFile)
	if err != nil {
		return fmt.Errorf("crawl step: %w", err)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("crawl step: %w", err)
	}

	fetcher, saver, err := s.buildVariant(run)
	if err != nil {
		return fmt.Errorf("crawl step: %w", err)
	}

	engine := crawler.NewEngine(fetcher, crawler.NewHTMLExtractor(), saver,
		crawler.WithRule(scope.NewRule(cfg.ScopePolicy, cfg.PagesPath)),
		crawler.WithDelay(cfg.Delay),
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithMaxConsecutiveFailures(cfg.MaxConsecutiveFailures),
		crawler.WithLogger(s.logger),
	)

	if err := engine.Run(ctx, seeds, run.Report); err != nil {
		return fmt.Errorf("crawl step: %w", err)
	}
	return nil
}

// buildVariant assembles the fetcher and saver pair for the configured
// crawl variant.
func (s *CrawlStep) buildVariant(run *Run) (crawler.Fetcher, crawler.Saver, error) {
	cfg := run.Config

	switch cfg.Variant {
	case config.VariantCapture:
		// Captures always render in Chrome; reuse the login browser or
		// start one for sessionless runs.
		if run.Browser == nil {
			run.Browser = browser.New(
				browser.WithHeadless(cfg.Headless),
				browser.WithLogger(s.logger),
			)
		}
		fetcher := browser.NewCaptureFetcher(run.Browser, cfg.Timeout)
		saver := storage.NewCaptureSaver(cfg.OutputDir, cfg.PagesPath)
		return fetcher, saver, nil

	case config.VariantMirror:
		var jar http.CookieJar
		if run.Session != nil {
			var err error
			jar, err = run.Session.Jar()
			if err != nil {
				return nil, nil, err
			}
		}

		fetcher := crawler.NewHTTPFetcher(jar,
			crawler.WithUserAgent(cfg.UserAgent),
			crawler.WithTimeout(cfg.Timeout),
			crawler.WithRetries(cfg.Retries),
			crawler.WithRetryBackoff(cfg.RetryBackoff),
			crawler.WithMaxBodySize(cfg.MaxBodySize),
		)
		saver := storage.NewMirrorSaver(cfg.OutputDir, cfg.PagesPath, fetcher,
			storage.WithSaverLogger(s.logger))
		return fetcher, saver, nil

	default:
		return nil, nil, config.ErrInvalidVariant
	}
}

// LinkCheckStep validates offline navigation of a finished mirror and
// records broken references in the report.
type LinkCheckStep struct {
	logger *slog.Logger
}

// NewLinkCheckStep creates a LinkCheckStep.
func NewLinkCheckStep(logger *slog.Logger) *LinkCheckStep {
	return &LinkCheckStep{logger: logger}
}

// Name returns the step name.
func (s *LinkCheckStep) Name() string {
	return "linkcheck"
}

// Do runs the link check over the output directory. Broken links are a
// report finding, not a step failure.
func (s *LinkCheckStep) Do(_ context.Context, run *Run) error {
	if !run.Config.LinkCheck {
		return nil
	}
	if run.Config.Variant != config.VariantMirror {
		s.logger.Info("link check skipped, only mirror output is checkable offline")
		return nil
	}

	checker := linkcheck.NewChecker(run.Config.OutputDir, linkcheck.WithLogger(s.logger))
	broken, err := checker.Check()
	if err != nil {
		return fmt.Errorf("link check step: %w", err)
	}

	run.Report.BrokenLinks = broken
	return nil
}

// SaveStep records the finished run in the history database.
type SaveStep struct {
	logger *slog.Logger
}

// NewSaveStep creates a SaveStep.
func NewSaveStep(logger *slog.Logger) *SaveStep {
	return &SaveStep{logger: logger}
}

// Name returns the step name.
func (s *SaveStep) Name() string {
	return "save"
}

// Do persists the run report to SQLite.
func (s *SaveStep) Do(ctx context.Context, run *Run) error {
	if !run.Config.SaveToDB {
		return nil
	}

	db, err := database.Open(run.Config.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("save step: %w", err)
	}
	defer db.Close()

	if err := db.SaveRun(ctx, run.Report); err != nil {
		return fmt.Errorf("save step: %w", err)
	}

	s.logger.Info("run recorded", "run_id", run.Report.RunID, "db_dir", run.Config.DBDir)
	return nil
}

// ReportStep renders the run report to the terminal and, when configured,
// to a file.
type ReportStep struct {
	logger *slog.Logger
	stdout io.Writer
}

// NewReportStep creates a ReportStep writing its terminal output to stdout.
func NewReportStep(logger *slog.Logger, stdout io.Writer) *ReportStep {
	return &ReportStep{logger: logger, stdout: stdout}
}

// Name returns the step name.
func (s *ReportStep) Name() string {
	return "report"
}

// Do writes the report in the configured format.
func (s *ReportStep) Do(_ context.Context, run *Run) error {
	cfg := run.Config

	writer, closer, err := s.buildWriter(cfg)
	if err != nil {
		return fmt.Errorf("report step: %w", err)
	}
	if closer != nil {
		defer closer.Close()
	}

	if _, err := writer.Write(run.Report); err != nil {
		return fmt.Errorf("report step: %w", err)
	}
	return nil
}

// buildWriter assembles the report writer for the configured format and
// destinations. The returned closer is non-nil when a report file is open.
func (s *ReportStep) buildWriter(cfg *config.Config) (report.Writer, io.Closer, error) {
	newWriter := func(out io.Writer) report.Writer {
		switch {
		case cfg.JSONReport:
			return report.NewJSONWriter(out, report.WithPrettyPrint())
		case cfg.MarkdownReport:
			return report.NewMarkdownWriter(out)
		default:
			return report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose))
		}
	}

	if cfg.ReportFile == "" {
		return newWriter(s.stdout), nil, nil
	}

	f, err := os.Create(cfg.ReportFile)
	if err != nil {
		return nil, nil, err
	}
	return report.NewMultiWriter(newWriter(s.stdout), newWriter(f)), f, nil
}

// CloseStep shuts the shared browser down at the end of a run.
type CloseStep struct{}

// NewCloseStep creates a CloseStep.
func NewCloseStep() *CloseStep {
	return &CloseStep{}
}

// Name returns the step name.
func (s *CloseStep) Name() string {
	return "close"
}

// Do releases the run's browser if one was started.
func (s *CloseStep) Do(_ context.Context, run *Run) error {
	if run.Browser != nil {
		run.Browser.Close()
		run.Browser = nil
	}
	return nil
}

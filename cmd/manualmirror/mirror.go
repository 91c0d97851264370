package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/mirrordocs/manualmirror/internal/config"
	"github.com/mirrordocs/manualmirror/internal/log"
	"github.com/mirrordocs/manualmirror/internal/pipeline"
	"github.com/mirrordocs/manualmirror/internal/scope"
)

// NewMirrorCmd creates the mirror command.
func NewMirrorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mirror",
		Short: "Log in and crawl the manual portal into a local copy",
		Long: `Mirror logs into the portal, crawls every seed chapter and its
subpages, and writes them below the output directory.

The crawl is scoped: from each page, only links into that page's own
subtree are followed (or its sibling directory with --scope siblings).
Every page is fetched at most once per run, regardless of how many pages
link to it.

Examples:
  # Mirror with directory layout and assets (default variant)
  manualmirror mirror --seeds seeds.yaml --output ./manuals

  # Flattened MHTML captures instead
  manualmirror mirror --seeds seeds.yaml --output ./captures --variant capture

  # Validate offline navigation after the crawl
  manualmirror mirror --seeds seeds.yaml --output ./manuals --check

  # Crawl an unauthenticated test server
  manualmirror mirror --seeds seeds.yaml --output ./out --no-login --base-url http://localhost:8080`,
		RunE: runMirrorCmd,
	}

	// Crawl input and output
	cmd.Flags().StringP("seeds", "s", "", "Seed list YAML file (required)")
	cmd.Flags().StringP("output", "o", "", "Output directory (required)")
	cmd.Flags().String("variant", config.VariantMirror,
		"Output variant: mirror or capture")
	cmd.Flags().String("scope", string(scope.PolicySubpages),
		"Scope policy: subpages or siblings")
	cmd.Flags().String("base-url", config.DefaultBaseURL, "Portal origin")

	// Crawl behavior
	cmd.Flags().DurationP("delay", "d", config.DefaultDelay,
		"Politeness delay between fetches")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Per-request timeout")
	cmd.Flags().Int("retries", config.DefaultRetries,
		"Fetch attempts per page")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum pages fetched in one run")

	// Login
	cmd.Flags().Bool("no-login", false,
		"Skip the browser login (portal must be reachable without a session)")
	cmd.Flags().Bool("headful", false,
		"Run the login browser with a visible window (debugging)")

	// Post-crawl
	cmd.Flags().Bool("check", false,
		"Validate offline navigation after a mirror crawl")
	cmd.Flags().Bool("no-db", false,
		"Do not record the run in the history database")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	// Report
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().String("report-file", "",
		"Write the report to this file in addition to stdout")

	return cmd
}

// runMirrorCmd executes the mirror command.
func runMirrorCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildMirrorConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	verbose := getVerboseFlag(cmd)
	logger := log.NewLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	// Graceful shutdown on interrupt: the engine records partial results.
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runMirror(ctx, cfg, logger, cmd.OutOrStdout())
}

// buildMirrorConfig creates a Config from cobra command flags.
func buildMirrorConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.SeedFile, err = cmd.Flags().GetString("seeds")
	if err != nil {
		return nil, err
	}

	cfg.OutputDir, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.Variant, err = cmd.Flags().GetString("variant")
	if err != nil {
		return nil, err
	}

	scopeFlag, err := cmd.Flags().GetString("scope")
	if err != nil {
		return nil, err
	}
	cfg.ScopePolicy, err = scope.ParsePolicy(scopeFlag)
	if err != nil {
		return nil, err
	}

	cfg.BaseURL, err = cmd.Flags().GetString("base-url")
	if err != nil {
		return nil, err
	}

	cfg.Delay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.Retries, err = cmd.Flags().GetInt("retries")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.SkipLogin, err = cmd.Flags().GetBool("no-login")
	if err != nil {
		return nil, err
	}

	headful, err := cmd.Flags().GetBool("headful")
	if err != nil {
		return nil, err
	}
	cfg.Headless = !headful

	cfg.LinkCheck, err = cmd.Flags().GetBool("check")
	if err != nil {
		return nil, err
	}

	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("report-file")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// Credentials come from the environment only, never from flags.
	cfg.Username = os.Getenv(config.EnvUsername)
	cfg.Password = os.Getenv(config.EnvPassword)

	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// runMirror assembles and executes the mirror pipeline.
func runMirror(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout io.Writer) error {
	logger.Info("starting mirror run",
		"seeds", cfg.SeedFile,
		"output", cfg.OutputDir,
		"variant", cfg.Variant,
		"scope", cfg.ScopePolicy,
	)

	// The spinner gives interactive runs a liveness signal; logs carry the
	// real progress.
	var spin *spinner.Spinner
	if !cfg.Verbose {
		spin = spinner.New(spinner.CharSets[9], 100*time.Millisecond)
		spin.Suffix = " crawling " + cfg.SeedFile
		spin.Start()
	}

	run := pipeline.NewRun(cfg)

	p := pipeline.New(pipeline.WithLogger(logger))
	p.AddSteps(
		pipeline.NewLoginStep(logger),
		pipeline.NewCrawlStep(logger),
		pipeline.NewLinkCheckStep(logger),
	)

	pipelineErr := p.Execute(ctx, run)
	run.Report.Finish()

	if spin != nil {
		spin.Stop()
	}

	// The crawl may have partial results even when a step failed, so
	// persistence and reporting always run.
	finish := pipeline.New(pipeline.WithLogger(logger), pipeline.WithContinueOnError(true))
	finish.AddSteps(
		pipeline.NewSaveStep(logger),
		pipeline.NewReportStep(logger, stdout),
		pipeline.NewCloseStep(),
	)
	if err := finish.Execute(context.WithoutCancel(ctx), run); err != nil {
		logger.Error("finalization failed", "error", err)
	}

	return pipelineErr
}

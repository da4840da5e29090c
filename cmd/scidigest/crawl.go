package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nao1215/scidigest/internal/config"
	"github.com/nao1215/scidigest/internal/crawler"
	"github.com/nao1215/scidigest/internal/database"
	"github.com/nao1215/scidigest/internal/log"
	"github.com/nao1215/scidigest/internal/oracle"
	"github.com/nao1215/scidigest/internal/render"
	"github.com/nao1215/scidigest/internal/report"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl seed sites and collect science & technology articles",
		Long: `Crawl reads seed URLs from a file (one absolute URL per line) and visits
each site, letting a language-model oracle steer navigation and judge
relevance.

For every page:
- Content is obtained via a headless renderer, falling back to a raw HTTP
  fetch when the renderer is missing, fails, or returns too little text.
- The oracle either classifies the page for relevance or picks a link to
  follow; off-site and structurally weak links are never scheduled.
- Relevant articles are written to the output JSON file; every verdict,
  relevant or not, goes to the debug file.

The API key is read from the config file or the OPENAI_API_KEY environment
variable. A .env file in the working directory is loaded automatically.

Examples:
  # Crawl with defaults (seeds from web_search.txt)
  scidigest crawl

  # Custom seed list and output
  scidigest crawl --seeds sites.txt --output science.json

  # Deeper crawl with a larger budget
  scidigest crawl --depth 3 --max-pages 500

  # Skip the headless renderer entirely
  scidigest crawl --renderer ""

  # Also write a human-readable markdown digest
  scidigest crawl --markdown digest.md`,
		Args: cobra.NoArgs,
		RunE: runCrawlCmd,
	}

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .scidigest.yaml in current or home directory)")
	cmd.Flags().StringP("seeds", "s", config.DefaultSeedsFile,
		"File with seed URLs, one per line")
	cmd.Flags().StringP("output", "o", config.DefaultOutputPath,
		"Output file for relevant items (JSON array)")
	cmd.Flags().String("debug-output", config.DefaultDebugOutputPath,
		"Output file for every classified item (JSON array)")
	cmd.Flags().StringP("markdown", "m", "",
		"Also write a markdown digest to the specified file")

	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum crawl depth (seeds are depth 0)")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPagesBudget,
		"Maximum number of pages processed per run")
	cmd.Flags().Int("concurrency", config.DefaultConcurrency,
		"Number of pages processed concurrently")

	cmd.Flags().String("model", config.DefaultModel,
		"Completion model for navigation and relevance decisions")
	cmd.Flags().Duration("fetch-timeout", config.DefaultFetchTimeout,
		"Timeout for one static HTTP fetch")
	cmd.Flags().Duration("render-timeout", config.DefaultRenderTimeout,
		"Timeout for one headless render")
	cmd.Flags().Duration("oracle-timeout", config.DefaultOracleTimeout,
		"Timeout for one oracle request")

	cmd.Flags().String("renderer", config.DefaultRendererScript,
		"Headless renderer script (empty disables dynamic rendering)")
	cmd.Flags().String("node-bin", config.DefaultNodeBin,
		"Node binary used to run the renderer script")

	cmd.Flags().Bool("no-robots", false,
		"Ignore robots.txt on the static fetch path")
	cmd.Flags().Bool("no-history", false,
		"Disable crawl history recording")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.New(cfg.Verbose, os.Stderr)
	slog.SetDefault(logger)

	// Graceful shutdown: in-flight pages finish, nothing new starts.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// buildConfig creates a Config from defaults, the optional YAML config file,
// environment variables, and explicitly set flags, in that order.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	// A .env file in the working directory is a convenience for local runs;
	// its absence is not an error.
	_ = godotenv.Load() //nolint:errcheck // optional file

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// If the user explicitly specified a config file path, error if not
	// found. If no path was specified, silently run on defaults.
	found := config.FindConfigFile(configPath)
	if found != "" {
		file, err := config.LoadConfigFile(found)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", found, err)
		}
		if err := file.Apply(cfg); err != nil {
			return nil, err
		}
	} else if configPath != "" {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	// Environment overrides the file but not explicit flags.
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.APIKey = key
	}
	if bin := os.Getenv("NODE_BIN"); bin != "" {
		cfg.NodeBin = bin
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)
	return cfg, nil
}

// applyFlags copies explicitly set flags onto the config. Unset flags keep
// whatever the config file or environment provided.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	for name, dst := range map[string]*string{
		"seeds":        &cfg.SeedsFile,
		"output":       &cfg.OutputPath,
		"debug-output": &cfg.DebugOutputPath,
		"markdown":     &cfg.MarkdownPath,
		"model":        &cfg.Model,
		"renderer":     &cfg.RendererScript,
		"node-bin":     &cfg.NodeBin,
	} {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = value
	}

	for name, dst := range map[string]*int{
		"depth":       &cfg.MaxDepth,
		"max-pages":   &cfg.MaxPagesBudget,
		"concurrency": &cfg.Concurrency,
	} {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetInt(name)
		if err != nil {
			return err
		}
		*dst = value
	}

	for name, dst := range map[string]*time.Duration{
		"fetch-timeout":  &cfg.FetchTimeout,
		"render-timeout": &cfg.RenderTimeout,
		"oracle-timeout": &cfg.OracleTimeout,
	} {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetDuration(name)
		if err != nil {
			return err
		}
		*dst = value
	}

	if flags.Changed("no-robots") {
		noRobots, err := flags.GetBool("no-robots")
		if err != nil {
			return err
		}
		cfg.RespectRobots = !noRobots
	}
	if flags.Changed("no-history") {
		noHistory, err := flags.GetBool("no-history")
		if err != nil {
			return err
		}
		cfg.DisableHistory = noHistory
	}

	return nil
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

// runCrawl wires the crawl pipeline and executes it.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	seeds, err := config.LoadSeeds(cfg.SeedsFile)
	if err != nil {
		return fmt.Errorf("failed to load seeds from %s: %w", cfg.SeedsFile, err)
	}

	logger.Info("starting crawl",
		"seeds", len(seeds),
		"maxDepth", cfg.MaxDepth,
		"pagesBudget", cfg.MaxPagesBudget,
		"concurrency", cfg.Concurrency,
		"model", cfg.Model,
	)

	// Static fetch path.
	httpClient := &http.Client{Timeout: cfg.FetchTimeout}
	fetcher := crawler.NewFetcher(httpClient,
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
		crawler.WithExtractLinksLimit(cfg.ExtractLinksLimit),
		crawler.WithRespectRobots(cfg.RespectRobots),
		crawler.WithFetcherLogger(logger),
	)

	// Dynamic render path with static fallback.
	renderer := render.NewSubprocessRenderer(cfg.RendererScript,
		render.WithNodeBin(cfg.NodeBin),
		render.WithRenderTimeout(cfg.RenderTimeout),
		render.WithRendererLogger(logger),
	)
	gateway := render.NewGateway(renderer, fetcher,
		render.WithMinContentLength(cfg.MinContentLength),
		render.WithGatewayLogger(logger),
	)

	// Navigation and relevance oracle.
	completer := oracle.NewClient(oracle.ClientConfig{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		BaseURL: cfg.OracleBaseURL,
		Timeout: cfg.OracleTimeout,
		Logger:  logger,
	})
	navigator := oracle.NewNavigator(completer, cfg.MaxDepth,
		oracle.WithNavigatorMaxLinks(cfg.LinksForOracle),
		oracle.WithNavigatorLogger(logger),
	)
	classifier := oracle.NewClassifier(completer,
		oracle.WithClassifierLogger(logger),
	)

	sink := report.NewSink(report.WithSinkLogger(logger))

	schedulerOpts := []crawler.SchedulerOption{
		crawler.WithMaxDepth(cfg.MaxDepth),
		crawler.WithMaxFanout(cfg.MaxFanoutIndex),
		crawler.WithExtraLinksOnFollow(cfg.ExtraLinksOnFollow),
		crawler.WithPagesBudget(cfg.MaxPagesBudget),
		crawler.WithConcurrency(cfg.Concurrency),
		crawler.WithLogger(logger),
	}

	// Crawl history is diagnostics: failure to open the database degrades
	// to a history-less run rather than aborting the crawl.
	var db *database.CrawlDB
	if !cfg.DisableHistory {
		db, err = database.Open(cfg.HistoryDBDir, database.DefaultOptions())
		if err != nil {
			logger.Warn("crawl history disabled: failed to open database",
				"dir", cfg.HistoryDBDir, "error", err)
		} else {
			defer db.Close()
			schedulerOpts = append(schedulerOpts, crawler.WithHistory(db))
			logger.Info("crawl history enabled", "db", db.Path())
		}
	}

	scheduler := crawler.NewScheduler(gateway, navigator, classifier, sink, schedulerOpts...)

	startTime := time.Now()
	stats, runErr := scheduler.Run(ctx, seeds)

	// Flush whatever was collected even on a cancelled run.
	if err := sink.Flush(cfg.DebugOutputPath, cfg.OutputPath); err != nil {
		return err
	}
	if cfg.MarkdownPath != "" {
		if err := report.WriteMarkdownFile(cfg.MarkdownPath, sink.Relevant()); err != nil {
			return err
		}
	}

	printSummary(ctx, cfg, stats, len(sink.Relevant()), time.Since(startTime), db)

	return runErr
}

// printSummary writes the end-of-run report to stdout.
func printSummary(ctx context.Context, cfg *config.Config, stats crawler.Stats, relevant int, elapsed time.Duration, db *database.CrawlDB) {
	fmt.Printf("Crawl completed in %s\n", elapsed.Round(time.Millisecond))
	fmt.Printf("  pages processed: %d\n", stats.Processed)
	fmt.Printf("  unique URLs:     %d\n", stats.UniqueURLs)
	fmt.Printf("  discarded:       %d\n", stats.Discarded)
	fmt.Printf("  relevant items:  %d -> %s\n", relevant, cfg.OutputPath)
	if cfg.MarkdownPath != "" {
		fmt.Printf("  markdown digest: %s\n", cfg.MarkdownPath)
	}
	if db != nil {
		if total, err := db.Count(ctx); err == nil {
			fmt.Printf("  history rows:    %d (all runs)\n", total)
		}
	}
}

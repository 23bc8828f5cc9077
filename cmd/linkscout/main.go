package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amosWeiskopf/linkscout/internal/config"
	"github.com/amosWeiskopf/linkscout/internal/log"
	"github.com/amosWeiskopf/linkscout/pkg/classifier"
	"github.com/amosWeiskopf/linkscout/pkg/crawler"
	"github.com/amosWeiskopf/linkscout/pkg/reporter"
	"github.com/amosWeiskopf/linkscout/pkg/scout"
	"github.com/amosWeiskopf/linkscout/pkg/search"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "linkscout",
	Short: "LinkScout - dofollow comment link prospector",
	Long: `LinkScout searches the web for pages matching your keywords, fetches
each result and records the outbound links inside comment and discussion
areas that are not marked nofollow.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var scoutCmd = &cobra.Command{
	Use:   "scout",
	Short: "Search keywords and collect dofollow comment links",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync()

		keywordsFlag, _ := cmd.Flags().GetString("keywords")
		resultsFlag, _ := cmd.Flags().GetInt("results")
		output, _ := cmd.Flags().GetString("output")
		failFast, _ := cmd.Flags().GetBool("fail-fast")

		in := inputs{
			keywords:    keywordsFlag,
			keywordsSet: cmd.Flags().Changed("keywords"),
			results:     resultsFlag,
			resultsSet:  cmd.Flags().Changed("results"),
		}
		keywords, maxResults, err := in.resolve(cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if output != "" {
			cfg.Output.Path = output
		}

		sink, err := reporter.OpenSink(cfg.Output.Path)
		if err != nil {
			return err
		}
		defer func() {
			if err := sink.Close(); err != nil {
				logger.Error("Failed to close output file", log.Err(err))
			}
		}()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		dispatcher, err := crawler.New(ctx, crawler.Options{
			UserAgent:          cfg.Crawler.UserAgent,
			UseRandomUserAgent: cfg.Crawler.UseRandomUserAgent,
			Timeout:            cfg.Crawler.Timeout,
			Parallelism:        cfg.Crawler.Parallelism,
			MaxBodySize:        cfg.Crawler.MaxBodySize,
			FollowRobotsTxt:    cfg.Crawler.FollowRobotsTxt,
		}, logger.With(log.String("component", "crawler")))
		if err != nil {
			return fmt.Errorf("failed to create crawler: %w", err)
		}

		searcher := search.NewGoogleSearcher(search.GoogleOptions{
			APIKey:            cfg.Search.APIKey,
			EngineID:          cfg.Search.EngineID,
			Endpoint:          cfg.Search.Endpoint,
			RequestsPerSecond: cfg.Search.RequestsPerSecond,
		})
		paginator := search.NewPaginator(searcher, logger.With(log.String("component", "search")))

		cls := classifier.New(
			classifier.WithFormTokens(cfg.Classifier.FormTokens),
			classifier.WithContainerTokens(cfg.Classifier.ContainerTokens),
		)

		runner := scout.NewRunner(paginator, dispatcher, cls, sink,
			scout.WithLogger(logger),
			scout.WithFailFast(failFast),
		)

		logger.Info("Starting scout run",
			log.Int("keywords", len(keywords)),
			log.Int("results_per_keyword", search.ClampResults(maxResults)),
			log.String("output", sink.Path()),
		)
		summary, runErr := runner.Run(ctx, keywords, maxResults)
		stats := dispatcher.Stats()

		fmt.Fprintf(cmd.OutOrStdout(),
			"Searched %d keywords (%d failed), fetched %d of %d result pages, wrote %d links to %s\n",
			summary.Keywords, summary.SearchFailures, summary.PagesFetched, summary.ResultsFound,
			summary.RecordsWritten, sink.Path())
		logger.Info("Scout run finished",
			log.Int("pages_qualified", summary.PagesQualified),
			log.Int("write_failures", summary.WriteFailures),
			log.Int("dispatch_errors", summary.DispatchErrors),
			log.Any("crawler", stats),
			log.Duration("duration", summary.Duration),
		)

		if runErr != nil {
			return fmt.Errorf("scout run failed: %w", runErr)
		}
		if summary.WriteFailures > 0 {
			return fmt.Errorf("%d records could not be written: %w", summary.WriteFailures, reporter.ErrSinkWrite)
		}
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report [CSV]",
	Short: "Summarize a dofollow link output file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync()

		format, _ := cmd.Flags().GetString("format")
		top, _ := cmd.Flags().GetInt("top")
		output, _ := cmd.Flags().GetString("output")

		path := cfg.Output.Path
		if len(args) == 1 {
			path = args[0]
		}

		r := reporter.New(top)
		summary, err := r.LoadSummary(path)
		if err != nil {
			return fmt.Errorf("report generation failed: %w", err)
		}
		report, err := r.Render(summary, format)
		if err != nil {
			return fmt.Errorf("report generation failed: %w", err)
		}

		if output != "" {
			if err := os.WriteFile(output, []byte(report), 0o644); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report saved to %s\n", output)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), report)
		}
		return nil
	},
}

// setup loads configuration and builds the logger shared by every command.
func setup(cmd *cobra.Command) (*config.Config, log.Logger, error) {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	logCfg := log.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}
	if verbose {
		logCfg.Level = "debug"
	}
	if cfg.Logging.OutputPath != "" {
		logCfg.OutputPaths = []string{cfg.Logging.OutputPath}
	}
	logger, err := log.New(logCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, nil
}

func init() {
	// Scout command flags
	scoutCmd.Flags().String("keywords", "", "Comma separated keywords (prompted when omitted)")
	scoutCmd.Flags().Int("results", defaultResults, "Search results per keyword, at most 100 (prompted when omitted without --keywords)")
	scoutCmd.Flags().String("output", "", "CSV output file (default from config: dofollow_links.csv)")
	scoutCmd.Flags().Bool("fail-fast", false, "Abort the run on the first search failure")

	// Report command flags
	reportCmd.Flags().String("format", reporter.FormatTable, "Report format (json, markdown, table)")
	reportCmd.Flags().Int("top", 10, "Entries per ranking, 0 for all")
	reportCmd.Flags().String("output", "", "Output file for report")

	// Add commands to root
	rootCmd.AddCommand(scoutCmd)
	rootCmd.AddCommand(reportCmd)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "Config file path")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose output")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}

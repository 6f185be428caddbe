package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"assocfeed/pkg/auth"
	"assocfeed/pkg/config"
	"assocfeed/pkg/emit"
	"assocfeed/pkg/feed"
	"assocfeed/pkg/logger"
	"assocfeed/pkg/ratelimit"
	"assocfeed/pkg/retry"
	"assocfeed/pkg/state"
	"assocfeed/pkg/sync"
)

var (
	// Sync command flags
	syncStreams   []string
	syncStateDir  string
	syncStartDate string
	syncOutput    string
	syncAPIURL    string
	syncUsername  string
	syncPassword  string
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run an incremental extraction of fresh report files",
	Long: `Scrape the portal directory listing and stream every report file that
is newer than its stream's replication watermark through the
decompress-and-parse pipeline, emitting normalized NDJSON records.

Streams with no watermark are skipped; pass --start-date (or set start_date
in the config) to seed a sync floor on first run.`,
	Example: `  # Sync every report stream to stdout
  assocfeed sync

  # Sync only the earnings streams into a file
  assocfeed sync --streams EarningsReport,EarningsReportSubtags --output records.ndjson

  # First run with a sync floor
  assocfeed sync --start-date "2023-01-01 00:00:00 UTC"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync()
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().StringSliceVar(&syncStreams, "streams", nil, "report streams to sync (default: all)")
	syncCmd.Flags().StringVar(&syncStateDir, "state-dir", "", "directory for replication state")
	syncCmd.Flags().StringVar(&syncStartDate, "start-date", "", "sync floor used to seed missing watermarks")
	syncCmd.Flags().StringVarP(&syncOutput, "output", "o", "", "NDJSON output file (default: stdout)")
	syncCmd.Flags().StringVar(&syncAPIURL, "api-url", "", "datafeed portal base URL")
	syncCmd.Flags().StringVarP(&syncUsername, "username", "u", "", "portal username")
	syncCmd.Flags().StringVar(&syncPassword, "password", "", "portal password")
}

func runSync() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("assocfeed starting")

	registry, err := sync.NewRegistry(cfg.Streams)
	if err != nil {
		return err
	}

	store, err := state.NewStore(cfg.State.Directory, log)
	if err != nil {
		return fmt.Errorf("failed to open replication state: %w", err)
	}
	if cfg.Feed.StartDate != "" {
		if err := store.Seed(registry.SelectedTypes(), cfg.Feed.StartDate); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := feed.NewClient(feed.Options{
		BaseURL:   cfg.Feed.APIURL,
		Username:  cfg.Feed.Username,
		Password:  cfg.Feed.Password,
		UserAgent: cfg.Feed.UserAgent,
		Timeout:   cfg.Retry.Timeout,
		Retry:     retryConfig(ctx, cfg),
		Limiter:   ratelimit.NewPerMinute(cfg.RateLimit.RequestsPerMinute),
	}, log)

	var out io.Writer = os.Stdout
	if cfg.Output.Path != "" {
		file, err := os.Create(cfg.Output.Path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		out = file
	}
	emitter := emit.NewWriterEmitter(out)
	defer emitter.Close()

	coordinator := sync.NewCoordinator(client, store, registry, emitter, log)
	runErr := coordinator.Run(ctx)

	for stream, count := range emitter.Counts() {
		log.InfoWithFields("stream summary", map[string]interface{}{
			"stream":  stream,
			"records": count,
		})
	}

	return runErr
}

func loadConfig() (*config.Config, error) {
	flags := map[string]interface{}{
		"username":   syncUsername,
		"password":   syncPassword,
		"api-url":    syncAPIURL,
		"start-date": syncStartDate,
		"state-dir":  syncStateDir,
		"output":     syncOutput,
		"log-level":  logLevel,
	}
	if len(syncStreams) > 0 {
		flags["streams"] = syncStreams
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return nil, err
	}

	// Fall back to stored credentials when none were configured.
	if cfg.Feed.Username == "" || cfg.Feed.Password == "" {
		if creds, err := auth.NewManager().Retrieve(); err == nil {
			cfg.Feed.Username = creds.Username
			cfg.Feed.Password = creds.Password
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func retryConfig(ctx context.Context, cfg *config.Config) *retry.Config {
	rc := retry.DefaultConfig()
	rc.MaxAttempts = cfg.Retry.MaxAttempts
	rc.Backoff = &retry.ConstantBackoff{Delay: cfg.Retry.RetryDelay}
	rc.Context = ctx
	return rc
}

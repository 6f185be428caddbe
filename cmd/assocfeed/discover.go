package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"assocfeed/pkg/feed"
	"assocfeed/pkg/listing"
	"assocfeed/pkg/logger"
	"assocfeed/pkg/ratelimit"
)

var discoverJSON bool

// discoverCmd represents the discover command
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Scrape the portal directory listing without syncing anything",
	Long: `Fetch the portal's directory-listing page, scrape it into report file
descriptors and print them. Nothing is downloaded and no state changes.`,
	Example: `  # Print discovered report files as a table
  assocfeed discover

  # Print descriptors as JSON
  assocfeed discover --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDiscover()
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().BoolVar(&discoverJSON, "json", false, "print descriptors as JSON")
	discoverCmd.Flags().StringVar(&syncAPIURL, "api-url", "", "datafeed portal base URL")
	discoverCmd.Flags().StringVarP(&syncUsername, "username", "u", "", "portal username")
	discoverCmd.Flags().StringVar(&syncPassword, "password", "", "portal password")
}

func runDiscover() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()

	client := feed.NewClient(feed.Options{
		BaseURL:   cfg.Feed.APIURL,
		Username:  cfg.Feed.Username,
		Password:  cfg.Feed.Password,
		UserAgent: cfg.Feed.UserAgent,
		Timeout:   cfg.Retry.Timeout,
		Retry:     retryConfig(context.Background(), cfg),
		Limiter:   ratelimit.NewPerMinute(cfg.RateLimit.RequestsPerMinute),
	}, log)

	html, err := client.FetchListing(context.Background())
	if err != nil {
		return fmt.Errorf("failed to fetch directory listing: %w", err)
	}

	descriptors := listing.NewScraper(log).Scrape(html)

	if discoverJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(descriptors)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FILENAME\tLAST MODIFIED\tREPORT TYPE")
	for _, desc := range descriptors {
		fmt.Fprintf(w, "%s\t%s\t%s\n", desc.Filename, desc.LastModified, desc.ReportType)
	}
	return w.Flush()
}

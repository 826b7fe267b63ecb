// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/geoflow"
	"github.com/poiesic/geoflow/core"
	"github.com/poiesic/geoflow/provider"
	"github.com/poiesic/geoflow/reembed"
	"github.com/poiesic/geoflow/search"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "geoflow",
		Usage: "Country data ingestion and materialization pipeline",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to TOML configuration file",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory (overrides config)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Process one batch for the given countries",
				Action: runCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "country",
						Usage:    "ISO-3166 alpha-3 country code (repeatable)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "period",
						Usage: "Time period selector passed to providers, e.g. 2024 or 2024-01",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Semantic search over stored dataset documents",
				Action:    searchCommand,
				ArgsUsage: "QUERY...",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "domain",
						Usage: "Restrict results to one domain (trade, macroeconomic, environmental)",
					},
					&cli.StringSliceFlag{
						Name:  "country",
						Usage: "Restrict results to entries mentioning this country code (repeatable)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 5,
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Show stored entry counts per domain",
				Action: statsCommand,
			},
			{
				Name:   "trend",
				Usage:  "Show the stored metric trend for one country and domain",
				Action: trendCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "country",
						Usage:    "ISO-3166 alpha-3 country code",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "domain",
						Usage:    "Domain to trend (trade, macroeconomic, environmental)",
						Required: true,
					},
					&cli.DurationFlag{
						Name:  "window",
						Usage: "How far back to look",
						Value: 30 * 24 * time.Hour,
					},
				},
			},
			{
				Name:   "summary",
				Usage:  "Summarize what the graph knows about one country",
				Action: summaryCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "country",
						Usage:    "ISO-3166 alpha-3 country code",
						Required: true,
					},
				},
			},
			{
				Name:   "prune",
				Usage:  "Remove data older than the configured retention age from both stores",
				Action: pruneCommand,
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "age",
						Usage: "Retention age override, e.g. 2160h",
					},
				},
			},
			{
				Name:   "health",
				Usage:  "Probe every configured provider",
				Action: healthCommand,
			},
			{
				Name:   "reembed",
				Usage:  "Reembed all stored documents with new embeddings",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL (overrides config)",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name (overrides config)",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of entries to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N entries",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// loadConfig resolves the service configuration from the --config and
// --db flags.
func loadConfig(c *cli.Context) (*geoflow.Config, error) {
	cfg := geoflow.DefaultServiceConfig()
	if path := c.String("config"); path != "" {
		loaded, err := geoflow.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if db := c.String("db"); db != "" {
		cfg.Database.Path = db
	}
	return cfg, nil
}

func openService(c *cli.Context) (*geoflow.Service, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	return geoflow.NewService(cfg)
}

func parseDomain(name string) (core.Domain, error) {
	for _, d := range core.Domains {
		if d.String() == strings.ToLower(strings.TrimSpace(name)) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", core.ErrUnknownDomain, name)
}

func runCommand(c *cli.Context) error {
	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	countries := c.StringSlice("country")
	params := provider.FetchParams{Period: c.String("period")}

	report, err := svc.Run(context.Background(), countries, params)
	if err != nil {
		return fmt.Errorf("batch run failed: %w", err)
	}

	printReport(report)
	return nil
}

func printReport(report *core.ProcessingReport) {
	fmt.Printf("Batch %s processed at %s\n", report.BatchID, report.ProcessedAt.Format(time.RFC3339))
	fmt.Printf("Countries: %s\n", strings.Join(report.Countries, ", "))

	for source, detail := range report.SourceErrors {
		fmt.Printf("  source %s FAILED: %s\n", source, detail)
	}

	for _, domain := range core.Domains {
		dr, ok := report.Domains[domain]
		if !ok {
			continue
		}
		fmt.Printf("  %s (%s): quality=%s records=%d",
			domain, dr.Source, dr.Verdict.Quality, dr.CleanedRecordCount)
		if dr.EmbeddingID != 0 {
			fmt.Printf(" embedding=%d", dr.EmbeddingID)
		}
		if dr.VectorError != "" {
			fmt.Printf(" vectorError=%q", dr.VectorError)
		}
		if dr.GraphRelationships > 0 {
			fmt.Printf(" relationships=%d", dr.GraphRelationships)
		}
		if dr.GraphError != "" {
			fmt.Printf(" graphError=%q", dr.GraphError)
		}
		fmt.Println()
	}
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("a search query is required")
	}

	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	searcher, err := svc.NewSearcher()
	if err != nil {
		return err
	}

	params := search.Params{Countries: c.StringSlice("country")}
	if name := c.String("domain"); name != "" {
		domain, err := parseDomain(name)
		if err != nil {
			return err
		}
		params.Domain = domain
	}

	results, err := searcher.FindSimilarWithMonitor(context.Background(), query, c.Int("limit"), params, nil)
	if err != nil {
		return err
	}

	fmt.Printf("Found %d hits\n", len(results))
	for i, hit := range results {
		fmt.Printf("%d: [%.3f] %s (%s, %d)\n",
			i, hit.Score, hit.Entry.Document, hit.Entry.Domain, hit.Entry.Id)
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	stats, err := svc.VectorStore().Stats(context.Background())
	if err != nil {
		return err
	}

	total := 0
	for _, domain := range core.Domains {
		fmt.Printf("%-15s %d\n", domain, stats[domain])
		total += stats[domain]
	}
	fmt.Printf("%-15s %d\n", "total", total)
	return nil
}

func trendCommand(c *cli.Context) error {
	domain, err := parseDomain(c.String("domain"))
	if err != nil {
		return err
	}

	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	points, err := svc.GraphStore().Trend(context.Background(),
		c.String("country"), domain, c.Duration("window"))
	if err != nil {
		return err
	}

	if len(points) == 0 {
		fmt.Println("No data points in window")
		return nil
	}

	for _, pt := range points {
		fmt.Printf("%s  value=%.2f records=%d\n",
			pt.ProcessedAt.Format(time.RFC3339), pt.Value, pt.RecordCount)
	}
	return nil
}

func summaryCommand(c *cli.Context) error {
	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	summary, err := svc.GraphStore().Summarize(context.Background(), c.String("country"))
	if err != nil {
		return err
	}

	fmt.Printf("Country: %s", summary.Code)
	if summary.Name != "" {
		fmt.Printf(" (%s)", summary.Name)
	}
	fmt.Println()
	for _, domain := range core.Domains {
		if n := summary.DataPoints[domain]; n > 0 {
			fmt.Printf("  %s data points: %d\n", domain, n)
		}
	}
	if len(summary.Commodities) > 0 {
		fmt.Printf("  commodities: %s\n", strings.Join(summary.Commodities, ", "))
	}
	if !summary.LastProcessedAt.IsZero() {
		fmt.Printf("  last processed: %s\n", summary.LastProcessedAt.Format(time.RFC3339))
	}
	return nil
}

func pruneCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if age := c.Duration("age"); age > 0 {
		cfg.Retention.PruneAge = geoflow.Duration{Duration: age}
	}
	if cfg.Retention.PruneAge.Duration <= 0 {
		return fmt.Errorf("no retention age configured: set retention.prune_age or pass --age")
	}

	svc, err := geoflow.NewService(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	vectorsRemoved, nodesRemoved, err := svc.Prune(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Removed %d vector entries and %d graph nodes older than %v\n",
		vectorsRemoved, nodesRemoved, cfg.Retention.PruneAge.Duration)
	return nil
}

func healthCommand(c *cli.Context) error {
	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	statuses := svc.Health(context.Background())
	healthy := true
	for _, status := range statuses {
		fmt.Printf("%-12s %s", status.Source, status.Status)
		if status.Detail != "" {
			fmt.Printf(" (%s)", status.Detail)
		}
		fmt.Println()
		if status.Status != provider.StatusOK {
			healthy = false
		}
	}
	if !healthy {
		return fmt.Errorf("one or more providers are unhealthy")
	}
	return nil
}

func reembedCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if host := c.String("embedding-host"); host != "" {
		cfg.Embedding.Host = host
	}
	if model := c.String("embedding-model"); model != "" {
		cfg.Embedding.Model = model
	}

	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	svc, err := geoflow.NewService(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	fmt.Fprintf(os.Stderr, "Database: %s\n", cfg.Database.Path)
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", cfg.Embedding.Host)
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", cfg.Embedding.Model)
	fmt.Fprintln(os.Stderr)

	reembedder := svc.NewReembedder(reembedConfig, os.Stderr)
	if err := reembedder.Run(context.Background()); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

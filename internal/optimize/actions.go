// Package optimize wires the classifier, transform pool and rewriter into the
// csslim optimize CLI command.
package optimize

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/perfkit/csslim/models"
	"github.com/perfkit/csslim/pkg/caching"
	"github.com/perfkit/csslim/pkg/classifier"
	dbpkg "github.com/perfkit/csslim/pkg/db"
	"github.com/perfkit/csslim/pkg/fetcher"
	"github.com/perfkit/csslim/pkg/manifest"
	"github.com/perfkit/csslim/pkg/rewriter"
	"github.com/perfkit/csslim/pkg/storage"
	"github.com/perfkit/csslim/pkg/telemetry"
	"github.com/perfkit/csslim/pkg/tokenlen"
	"github.com/perfkit/csslim/pkg/transform"
	"github.com/perfkit/csslim/pkg/workspace"
)

// Command returns the csslim optimize command.
func Command() *cli.Command {
	return &cli.Command{
		Name:   "optimize",
		Usage:  "run one optimize pass over a page",
		Action: Action,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "page-url", Usage: "final navigated URL of the page"},
			&cli.StringFlag{Name: "html", Usage: "path to the page HTML (fetched from --page-url if unset)"},
			&cli.StringFlag{Name: "telemetry", Usage: "path to the coverage telemetry JSON (rules + stylesheets)"},
			&cli.StringFlag{Name: "audits", Usage: "path to the unused-CSS audit JSON"},
			&cli.StringFlag{Name: "blocking", Usage: "path to the first-paint-blocking URL list JSON"},
			&cli.StringFlag{Name: "source-dir", Usage: "root directory holding the on-disk stylesheets"},
			&cli.StringFlag{Name: "dest-dir", Usage: "root directory for transformed stylesheets"},
			&cli.StringFlag{Name: "output", Usage: "path for the rewritten page HTML"},
			&cli.IntFlag{Name: "workers", Value: 4, Usage: "transform worker count"},
			&cli.DurationFlag{Name: "transform-timeout", Usage: "per-stylesheet transform timeout (0 disables)"},
			&cli.StringFlag{Name: "cache-dir", Usage: "directory for the transform result cache"},
			&cli.StringFlag{Name: "config", Usage: "YAML config file (flags override)"},
			&cli.StringFlag{Name: "db", Usage: "pass-history database path (defaults next to the binary)"},
			&cli.BoolFlag{Name: "dry-run", Usage: "print the decision table without touching DOM or disk"},
			&cli.BoolFlag{Name: "quiet", Usage: "only log errors"},
		},
	}
}

// Action runs one optimize pass: classify stylesheets from telemetry,
// transform the same-site ones, rewrite the page DOM and persist everything.
func Action(c *cli.Context) error {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	startTime := time.Now()

	config, err := resolveConfig(c)
	if err != nil {
		return err
	}

	coverage, err := telemetry.LoadCoverage(config.TelemetryPath)
	if err != nil {
		return fmt.Errorf("failed to load coverage telemetry: %w", err)
	}
	audits, err := telemetry.LoadAudits(config.AuditsPath)
	if err != nil {
		return fmt.Errorf("failed to load audits: %w", err)
	}
	blocking, err := telemetry.LoadBlockingURLs(config.BlockingPath)
	if err != nil {
		return fmt.Errorf("failed to load blocking URLs: %w", err)
	}

	records := classifier.Classify(coverage.Stylesheets, coverage.Rules, audits, config.PageURL, blocking, tokenlen.Estimate)
	logger.Info("Classified stylesheets", "eligible", len(records), "total", len(coverage.Stylesheets))

	if c.Bool("dry-run") {
		printDecisionTable(records)
		return nil
	}

	ws, err := workspace.New(config.SourceDir, config.DestDir)
	if err != nil {
		return err
	}

	opts := transform.Options{
		Workers: config.WorkerCount,
		Timeout: c.Duration("transform-timeout"),
	}
	if dir := c.String("cache-dir"); dir != "" {
		cache, err := caching.NewCache(dir, 24*time.Hour)
		if err != nil {
			logger.Warn("Cache disabled", "error", err)
		} else {
			opts.Cache = cache
		}
	}

	store := &storage.Storage{}
	results := transform.RunAll(logger, records, ws, transform.NewMinifier(), store, opts)

	doc, err := fetcher.NewFetcher().LoadPage(config.HTMLPath, config.PageURL)
	if err != nil {
		return fmt.Errorf("failed to load page: %w", err)
	}

	// Records whose transform failed keep their original <link>: they are
	// simply absent from the set handed to the rewriter.
	var final []models.ClassificationRecord
	for _, r := range results {
		if r.Error == nil {
			final = append(final, r.Record)
		}
	}

	stats := rewriter.Rewrite(doc, final, logger)

	html, err := doc.Html()
	if err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	if err := store.SaveFile(config.OutputPath, []byte(html)); err != nil {
		return fmt.Errorf("failed to write rewritten page: %w", err)
	}

	sheetResults := collectSheetResults(results, stats)
	manifestPath, err := manifest.GenerateSummary(config.PageURL, config.DestDir, sheetResults, store)
	if err != nil {
		logger.Warn("Failed to write pass manifest", "error", err)
	} else {
		logger.Info("Pass manifest written", "path", manifestPath)
	}

	recordHistory(logger, c.String("db"), config, stats, sheetResults)

	logger.Info("Optimize pass complete",
		"output", config.OutputPath,
		"rewritten", len(stats.Decisions),
		"unmatched_links", stats.UnmatchedLinks,
		"duration", time.Since(startTime).String())
	return nil
}

// resolveConfig merges the optional YAML config file with CLI flags; flags
// win when both are set.
func resolveConfig(c *cli.Context) (*models.OptimizeConfig, error) {
	config := &models.OptimizeConfig{}
	if path := c.String("config"); path != "" {
		loaded, err := models.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	setString := func(dst *string, flag string) {
		if c.IsSet(flag) || *dst == "" {
			*dst = c.String(flag)
		}
	}
	setString(&config.PageURL, "page-url")
	setString(&config.HTMLPath, "html")
	setString(&config.TelemetryPath, "telemetry")
	setString(&config.AuditsPath, "audits")
	setString(&config.BlockingPath, "blocking")
	setString(&config.SourceDir, "source-dir")
	setString(&config.DestDir, "dest-dir")
	setString(&config.OutputPath, "output")
	if c.IsSet("workers") || config.WorkerCount == 0 {
		config.WorkerCount = c.Int("workers")
	}

	var missing []string
	if config.PageURL == "" {
		missing = append(missing, "--page-url")
	}
	if config.TelemetryPath == "" {
		missing = append(missing, "--telemetry")
	}
	if !c.Bool("dry-run") {
		if config.SourceDir == "" {
			missing = append(missing, "--source-dir")
		}
		if config.DestDir == "" {
			missing = append(missing, "--dest-dir")
		}
		if config.OutputPath == "" {
			missing = append(missing, "--output")
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required flags: %s", strings.Join(missing, ", "))
	}
	return config, nil
}

// collectSheetResults joins transform results with rewrite decisions per src.
func collectSheetResults(results []transform.Result, stats rewriter.Stats) []manifest.SheetResult {
	decisionBySrc := make(map[string]models.Strategy, len(stats.Decisions))
	for _, d := range stats.Decisions {
		decisionBySrc[d.Src] = d.Strategy
	}

	sheetResults := make([]manifest.SheetResult, 0, len(results))
	for _, r := range results {
		sr := manifest.SheetResult{
			Record:    r.Record,
			Error:     r.Error,
			ErrorType: r.ErrorType,
		}
		if strategy, ok := decisionBySrc[r.Record.Src]; ok && r.Error == nil {
			sr.Strategy = strategy
			sr.Rewritten = true
		}
		sheetResults = append(sheetResults, sr)
	}
	return sheetResults
}

// recordHistory persists the pass to the sqlite history. History is
// best-effort; failures are logged and never fail the pass.
func recordHistory(logger *slog.Logger, dbPath string, config *models.OptimizeConfig, stats rewriter.Stats, sheetResults []manifest.SheetResult) {
	var database *dbpkg.DB
	var err error
	if dbPath != "" {
		database, err = dbpkg.OpenAt(dbPath)
	} else {
		database, err = dbpkg.Open()
	}
	if err != nil {
		logger.Warn("Pass history disabled", "error", err)
		return
	}
	defer database.Close()

	pass := dbpkg.Pass{
		PageURL:    config.PageURL,
		OutputPath: config.OutputPath,
		SheetCount: len(sheetResults),
	}
	sheets := make([]dbpkg.PassSheet, 0, len(sheetResults))
	for _, sr := range sheetResults {
		sheet := dbpkg.PassSheet{
			Src:          sr.Record.Src,
			SameSite:     sr.Record.IsFromSameSite,
			SmallSize:    sr.Record.IsSmallSize,
			Critical:     sr.Record.IsCritical,
			LowUsage:     sr.Record.IsLowUsage,
			ContentBytes: len(sr.Record.Content),
			UsedBytes:    len(sr.Record.UsedContent),
		}
		switch {
		case sr.Error != nil:
			sheet.Status = "error"
			sheet.ErrorType = sr.ErrorType
			sheet.ErrorMessage = sr.Error.Error()
			pass.SkippedCount++
		case !sr.Rewritten:
			sheet.Status = "skipped"
			pass.SkippedCount++
		default:
			sheet.Status = "rewritten"
			sheet.Strategy = string(sr.Strategy)
			switch sr.Strategy {
			case models.StrategyInline:
				pass.InlinedCount++
			case models.StrategyExtractDefer:
				pass.ExtractedCount++
			case models.StrategyPreloadDefer:
				pass.PreloadedCount++
			}
		}
		sheets = append(sheets, sheet)
	}

	if _, err := database.RecordPass(pass, sheets); err != nil {
		logger.Warn("Failed to record pass history", "error", err)
	}
}

// printDecisionTable shows the per-stylesheet classification without touching
// the DOM or the filesystem.
func printDecisionTable(records []models.ClassificationRecord) {
	fmt.Printf("%-60s %-10s %-6s %-6s %-9s %-14s\n",
		"SRC", "SAME-SITE", "SMALL", "CRIT", "LOW-USAGE", "STRATEGY")
	fmt.Println(strings.Repeat("-", 110))
	for _, rec := range records {
		strategy := string(models.SelectStrategy(rec))
		if !rec.IsFromSameSite {
			strategy = "(untouched)"
		}
		fmt.Printf("%-60s %-10v %-6v %-6v %-9v %-14s\n",
			rec.Src, rec.IsFromSameSite, rec.IsSmallSize, rec.IsCritical, rec.IsLowUsage, strategy)
	}
	fmt.Printf("\nTotal: %d eligible stylesheets\n", len(records))
}

// Command populytics runs the full population analysis pipeline: fetch (or
// reuse a cached snapshot), normalize, annotate, persist, summarize,
// forecast, compare, export, chart, and report.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/populytics/populytics/internal/analysis"
	"github.com/populytics/populytics/internal/config"
	"github.com/populytics/populytics/internal/countriesnow"
	"github.com/populytics/populytics/internal/dataset"
	"github.com/populytics/populytics/internal/export"
	"github.com/populytics/populytics/internal/logger"
	"github.com/populytics/populytics/internal/models"
	"github.com/populytics/populytics/internal/notify"
	"github.com/populytics/populytics/internal/report"
	"github.com/populytics/populytics/internal/storage"
	"github.com/populytics/populytics/internal/visualize"
)

var (
	configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")
	refresh    = flag.Bool("refresh", false, "Force a fresh fetch even when a cached snapshot exists")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	lg := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	lg.Info("Configuration loaded from %s", *configPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		lg.Info("Shutdown signal received, cancelling...")
		cancel()
	}()

	if err := run(ctx, cfg, lg); err != nil {
		lg.Error("Pipeline failed: %v", err)
		os.Exit(1)
	}
	lg.Info("Pipeline complete")
}

func run(ctx context.Context, cfg *config.Config, lg *logger.Logger) error {
	payload, err := loadPayload(ctx, cfg, lg)
	if err != nil {
		return err
	}
	lg.Info("Loaded %d country records", len(payload))

	table, err := dataset.Normalize(payload)
	if err != nil {
		return err
	}
	table = selectWindow(table, cfg.Analysis)
	if table == nil || table.Len() == 0 {
		return dataset.ErrEmptyDataset
	}
	table = table.Annotate()
	lg.Info("Normalized and annotated %d rows across %d countries", table.Len(), len(table.Countries()))

	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			lg.Error("Failed to close storage: %v", err)
		}
	}()
	if err := store.Save(table); err != nil {
		return err
	}
	lg.Info("Persisted table to %s", cfg.Storage.DBPath)

	summary, err := analysis.Summarize(table)
	if err != nil {
		return err
	}
	lg.Info("Summary: %d countries, %d-%d", summary.TotalCountries, summary.YearStart, summary.YearEnd)

	var forecasts []*models.ForecastResult
	for _, country := range cfg.Analysis.Countries {
		forecast, err := analysis.Forecast(table, country, cfg.Analysis.ForecastYears)
		if err != nil {
			if errors.Is(err, analysis.ErrNoData) {
				lg.Warn("Skipping forecast for %s: no data", country)
				continue
			}
			return err
		}
		forecasts = append(forecasts, forecast)
	}
	lg.Info("Produced %d forecasts", len(forecasts))

	figures, err := renderFigures(cfg, lg, table, forecasts)
	if err != nil {
		return err
	}

	if err := writeExports(cfg, lg, table, summary); err != nil {
		return err
	}

	if err := writeReports(cfg, lg, summary, forecasts, figures); err != nil {
		return err
	}

	if cfg.Telegram.Enabled {
		notifier, err := notify.New(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Source.MaxRetries, cfg.Source.RetryDelayBase)
		if err != nil {
			lg.Error("Failed to initialize Telegram notifier: %v", err)
		} else if err := notifier.SendSummary(summary, forecasts); err != nil {
			lg.Error("Failed to send Telegram summary: %v", err)
		} else {
			lg.Info("Telegram summary sent")
		}
	}

	return nil
}

// loadPayload returns the raw dataset, preferring the newest cached snapshot
// unless the cache is disabled or a refresh is forced. Fresh fetches are
// snapshotted before use.
func loadPayload(ctx context.Context, cfg *config.Config, lg *logger.Logger) ([]models.PopulationRecord, error) {
	cache, err := countriesnow.NewCache(cfg.Source.RawDataDir)
	if err != nil {
		return nil, err
	}

	if cfg.Source.UseCache && !*refresh {
		latest, err := cache.Latest()
		if err != nil {
			return nil, err
		}
		if latest != "" {
			lg.Info("Using cached snapshot %s", latest)
			return cache.Load(latest)
		}
	}

	client := countriesnow.NewClient(cfg.Source.APIBaseURL, cfg.Source.Timeout, cfg.Source.MaxRetries, cfg.Source.RetryDelayBase)
	lg.Info("Fetching population data from %s", cfg.Source.APIBaseURL)
	payload, err := client.FetchPopulation(ctx)
	if err != nil {
		return nil, err
	}

	path, err := cache.Save(payload)
	if err != nil {
		return nil, err
	}
	lg.Info("Saved snapshot %s", path)
	return payload, nil
}

// selectWindow restricts the table to the configured countries and year
// range before annotation, so growth is computed within the window.
func selectWindow(t *dataset.Table, cfg config.AnalysisConfig) *dataset.Table {
	selected := make(map[string]bool, len(cfg.Countries))
	for _, country := range cfg.Countries {
		selected[country] = true
	}
	return t.Filter(func(row models.Observation) bool {
		if !selected[row.Country] {
			return false
		}
		if cfg.StartYear != 0 && row.Year < cfg.StartYear {
			return false
		}
		if cfg.EndYear != 0 && row.Year > cfg.EndYear {
			return false
		}
		return true
	})
}

func renderFigures(cfg *config.Config, lg *logger.Logger, table *dataset.Table, forecasts []*models.ForecastResult) ([]string, error) {
	renderer, err := visualize.New(cfg.Output.FiguresDir)
	if err != nil {
		return nil, err
	}

	var figures []string
	add := func(path string, err error) {
		if err != nil {
			lg.Warn("Skipping figure: %v", err)
			return
		}
		figures = append(figures, path)
	}

	add(renderer.PopulationGrowth(table, ""))
	add(renderer.Comparison(table, cfg.Analysis.Countries))
	add(renderer.GrowthHeatmap(table, cfg.Analysis.Countries))
	for _, country := range cfg.Analysis.Countries {
		if !table.HasCountry(country) {
			continue
		}
		add(renderer.GrowthPercentage(table, country))
	}
	for _, forecast := range forecasts {
		add(renderer.Forecast(forecast))
	}

	lg.Info("Rendered %d figures to %s", len(figures), cfg.Output.FiguresDir)
	return figures, nil
}

func writeExports(cfg *config.Config, lg *logger.Logger, table *dataset.Table, summary *models.StatisticsSummary) error {
	exporter, err := export.New(cfg.Output.ExportDir)
	if err != nil {
		return err
	}

	if _, err := exporter.WriteCSV(table, "population.csv"); err != nil {
		return err
	}
	if _, err := exporter.WriteJSON(table, "population.json"); err != nil {
		return err
	}
	if _, err := exporter.WriteExcel(table, "population.xlsx"); err != nil {
		return err
	}
	if _, err := exporter.WriteSummaryJSON(summary, "summary.json"); err != nil {
		return err
	}

	lg.Info("Wrote exports to %s", cfg.Output.ExportDir)
	return nil
}

func writeReports(cfg *config.Config, lg *logger.Logger, summary *models.StatisticsSummary, forecasts []*models.ForecastResult, figures []string) error {
	writer, err := report.New(cfg.Output.ReportsDir)
	if err != nil {
		return err
	}

	textPath, err := writer.WriteText(summary, forecasts, "report.txt")
	if err != nil {
		return err
	}
	pdfPath, err := writer.WritePDF(summary, forecasts, figures, "report.pdf")
	if err != nil {
		return err
	}

	lg.Info("Wrote reports %s and %s", textPath, pdfPath)
	return nil
}

// Package main provides the scraper command-line tool that extracts the
// worldwide coal plant inventory and writes the finalized dataset.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"gcpt/internal/assembler"
	"gcpt/internal/cleaner"
	"gcpt/internal/config"
	"gcpt/internal/extract"
	"gcpt/internal/logger"
	"gcpt/internal/models"
	"gcpt/internal/output"
)

func main() {
	configFile := flag.String("config", "", "Path to YAML configuration file")
	basePath := flag.String("output", "", "Output directory (overrides config)")
	minRecords := flag.Int("min-records", -1, "Sufficiency threshold for early stop (overrides config)")
	showUsage := flag.Bool("help", false, "Show usage information")

	flag.Parse()

	if *showUsage {
		printUsage()
		os.Exit(0)
	}

	cfg := loadConfig(*configFile)

	if *basePath != "" {
		cfg.Scraper.Output.BasePath = *basePath
	}

	if *minRecords >= 0 {
		cfg.Scraper.Extraction.MinRecords = *minRecords
	}

	printHeader(cfg)

	lg := logger.NewLogger(cfg.Scraper.Logging.Level)
	coordinator := buildCoordinator(cfg, lg)

	fmt.Println("🚀 Starting extraction...")

	records, err := coordinator.Run()

	for name, state := range coordinator.States() {
		fmt.Printf("   %s: %s\n", name, state)
	}

	if err != nil {
		log.Fatalf("❌ Extraction failed: %v\n", err)
	}

	fmt.Printf("✅ Extracted %d records (%d rejected during cleaning)\n",
		len(records), coordinator.Rejected())

	// Finalize
	final := assembler.Assemble(records)
	summary := assembler.Summarize(final)

	fmt.Printf("📊 Final dataset: %d records across %d countries\n\n",
		summary.TotalRecords, len(summary.ByCountry))

	// Write outputs
	outCfg := &cfg.Scraper.Output

	if outCfg.HasFormat("csv") {
		path := outCfg.Path("csv")
		if err := output.WriteCSV(path, final); err != nil {
			log.Fatalf("❌ CSV write failed: %v\n", err)
		}

		fmt.Printf("📁 Data saved to: %s\n", path)
	}

	if outCfg.HasFormat("xlsx") {
		path := outCfg.Path("xlsx")
		if err := output.WriteXLSX(path, final); err != nil {
			log.Fatalf("❌ XLSX write failed: %v\n", err)
		}

		fmt.Printf("📁 Data saved to: %s\n", path)
	}

	summaryPath := outCfg.Path("summary.txt")
	if err := output.WriteSummary(summaryPath, summary, time.Now()); err != nil {
		log.Fatalf("❌ Summary write failed: %v\n", err)
	}

	fmt.Printf("📁 Summary saved to: %s\n", summaryPath)

	printSamples(final, cfg.Scraper.Logging.SampleRecords)

	fmt.Println("\n✨ Scrape complete!")
}

// buildCoordinator wires the three strategies in priority order.
func buildCoordinator(cfg *config.Config, lg *logger.Logger) *extract.Coordinator {
	fetcher := extract.NewFetcherWithConfig(&cfg.Scraper.Retry, cfg.Advanced.BufferSizeKb)
	src := &cfg.Scraper.Source
	ext := &cfg.Scraper.Extraction

	strategies := []extract.Strategy{
		extract.NewAPIProbe(fetcher, lg, src.BaseURL, src.APIEndpoints, ext.MaxPages, ext.PolitenessDelay()),
		extract.NewDirectFile(fetcher, lg, src.FileURLs),
		extract.NewEmbeddedData(fetcher, lg, src.TrackerPage),
	}

	return extract.NewCoordinator(strategies, cleaner.NewCleaner(lg), lg, ext.MinRecords, ext.PolitenessDelay())
}

func loadConfig(path string) *config.Config {
	if path != "" {
		fmt.Printf("⚙️  Loading configuration from: %s\n", path)

		cfg, err := config.LoadConfig(path)
		if err != nil {
			log.Fatalf("❌ Failed to load config: %v\n", err)
		}

		fmt.Printf("✅ Configuration loaded: %s\n\n", cfg)

		return cfg
	}

	defaultConfig := "configs/scraper.yaml"
	if _, err := os.Stat(defaultConfig); err == nil {
		fmt.Printf("⚙️  Loading default configuration: %s\n", defaultConfig)

		cfg, err := config.LoadConfig(defaultConfig)
		if err != nil {
			log.Fatalf("❌ Failed to load default config: %v\n", err)
		}

		return cfg
	}

	fmt.Println("⚙️  Using built-in defaults")
	fmt.Println()

	return config.DefaultConfig()
}

func printHeader(cfg *config.Config) {
	fmt.Println("🏭 Global Coal Plant Tracker Scraper")
	fmt.Printf("API endpoints: %d | File URLs: %d | Tracker page: %v\n",
		len(cfg.Scraper.Source.APIEndpoints),
		len(cfg.Scraper.Source.FileURLs),
		cfg.Scraper.Source.TrackerPage != "")
	fmt.Printf("Retry policy: max %d attempts, %.1fx backoff\n",
		cfg.Scraper.Retry.MaxAttempts,
		cfg.Scraper.Retry.BackoffMultiplier)
	fmt.Printf("Output: %s\n", cfg.Scraper.Output.BasePath)
	fmt.Println()
}

func printSamples(records []*models.PlantRecord, count int) {
	if count <= 0 || len(records) == 0 {
		return
	}

	fmt.Printf("\n📊 Sample records (first %d):\n", count)

	for i := 0; i < count && i < len(records); i++ {
		rec := records[i]
		capacity := ""

		if rec.CapacityMW != nil {
			capacity = fmt.Sprintf("%.0f MW", *rec.CapacityMW)
		}

		fmt.Printf("  [%s] %s - %s %s\n", rec.CountryArea, rec.PlantUnitName, capacity, rec.Status)
	}
}

func printUsage() {
	fmt.Println("Usage: ./bin/scraper [OPTIONS]")
	fmt.Println()
	fmt.Println("Modes:")
	fmt.Println("  1. Config-based:   ./bin/scraper -config configs/scraper.yaml")
	fmt.Println("  2. Default config: ./bin/scraper (reads configs/scraper.yaml if exists)")
	fmt.Println("  3. Built-in:       ./bin/scraper (falls back to known tracker URLs)")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  ./bin/scraper -config configs/scraper.yaml")
	fmt.Println("  ./bin/scraper -output ./data -min-records 50")
}

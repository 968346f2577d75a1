// Package main provides a dry-run tool that exercises every extraction
// strategy and reports what the upstream source currently answers.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gcpt/internal/config"
	"gcpt/internal/extract"
	"gcpt/internal/logger"
)

func main() {
	configFile := flag.String("config", "", "Path to YAML configuration file")
	showUsage := flag.Bool("help", false, "Show usage information")

	flag.Parse()

	if *showUsage {
		fmt.Println("Usage: ./bin/probe [-config configs/scraper.yaml]")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfg := config.DefaultConfig()

	if *configFile != "" {
		loaded, err := config.LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("❌ Failed to load config: %v\n", err)
		}

		cfg = loaded
	}

	lg := logger.NewLogger(cfg.Scraper.Logging.Level)
	fetcher := extract.NewFetcherWithConfig(&cfg.Scraper.Retry, cfg.Advanced.BufferSizeKb)
	src := &cfg.Scraper.Source
	ext := &cfg.Scraper.Extraction

	strategies := []extract.Strategy{
		extract.NewAPIProbe(fetcher, lg, src.BaseURL, src.APIEndpoints, ext.MaxPages, ext.PolitenessDelay()),
		extract.NewDirectFile(fetcher, lg, src.FileURLs),
		extract.NewEmbeddedData(fetcher, lg, src.TrackerPage),
	}

	fmt.Println("🔍 Probing extraction strategies (no output written)")
	fmt.Println()

	for _, strategy := range strategies {
		fmt.Printf("⏳ %s...\n", strategy.Name())

		result := strategy.Extract()

		emoji := "✅"
		if result.Status == extract.StatusFailed {
			emoji = "❌"
		}

		fmt.Printf("%s %s: %s, %d records\n", emoji, strategy.Name(), result.Status, len(result.Records))

		if result.Err != nil {
			fmt.Printf("   cause: %v\n", result.Err)
		}
	}
}

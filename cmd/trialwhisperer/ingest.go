package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/trialwhisperer/internal/app"
)

// runIngest executes one ingestion pass and exits.
func runIngest() {
	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	stats, err := application.IngestService.Run(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("Ingestion run failed")
	}

	fmt.Printf("Fetched %d studies, stored %d trials (%d passages, %d skipped) in %s\n",
		stats.StudiesFetched, stats.TrialsStored, stats.PassagesStored, stats.Skipped, stats.Duration.Round(time.Millisecond))
}

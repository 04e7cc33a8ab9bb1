package main

import (
	"context"
	"fmt"

	"github.com/ternarybob/trialwhisperer/internal/app"
	"github.com/ternarybob/trialwhisperer/internal/eval"
)

// runEval answers every example in a YAML dataset and prints accuracy.
func runEval(datasetPath string) {
	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	examples, err := eval.LoadExamples(datasetPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", datasetPath).Msg("Failed to load evaluation dataset")
	}

	records := eval.Evaluate(context.Background(), application.AnswerService, examples, logger)
	metrics := eval.ComputeMetrics(records)

	fmt.Printf("Evaluated %d examples (%d errors)\n", metrics.TotalExamples, metrics.ErrorCount)
	if accuracy, ok := metrics.AnswerAccuracy(); ok {
		fmt.Printf("Answer exact match: %d/%d (%.1f%%)\n", metrics.AnswerCorrect, metrics.TotalExamples, accuracy*100)
	}
	if accuracy, ok := metrics.CitationAccuracy(); ok {
		fmt.Printf("Citation section match: %d/%d (%.1f%%)\n", metrics.CitationCorrect, metrics.CitationApplicable, accuracy*100)
	}
}

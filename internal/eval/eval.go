package eval

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/trialwhisperer/internal/models"
	"github.com/ternarybob/trialwhisperer/internal/services/answer"
	"gopkg.in/yaml.v3"
)

// Example is one labelled question in an evaluation dataset.
type Example struct {
	Query    string   `yaml:"query"`
	NCTID    string   `yaml:"nct_id"`
	Answers  []string `yaml:"answers"`
	Sections []string `yaml:"sections"`
}

// Record captures the outcome of one evaluated example.
type Record struct {
	Example       Example
	Answer        string
	Citations     []models.Passage
	Err           error
	AnswerMatch   bool
	CitationMatch bool
}

// Metrics aggregates accuracy over a full evaluation run.
type Metrics struct {
	TotalExamples      int
	AnswerCorrect      int
	CitationApplicable int
	CitationCorrect    int
	ErrorCount         int
}

// AnswerAccuracy returns the exact-match rate, or 0 with ok=false when no
// examples were evaluated.
func (m Metrics) AnswerAccuracy() (float64, bool) {
	if m.TotalExamples == 0 {
		return 0, false
	}
	return float64(m.AnswerCorrect) / float64(m.TotalExamples), true
}

// CitationAccuracy returns the section-coverage rate over examples that
// declare expected sections.
func (m Metrics) CitationAccuracy() (float64, bool) {
	if m.CitationApplicable == 0 {
		return 0, false
	}
	return float64(m.CitationCorrect) / float64(m.CitationApplicable), true
}

// Asker answers evaluation questions. The answer service satisfies it.
type Asker interface {
	Ask(ctx context.Context, query, nctID string) (*answer.Result, error)
}

// LoadExamples reads an evaluation dataset from a YAML file containing a
// list of examples.
func LoadExamples(path string) ([]Example, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	var examples []Example
	if err := yaml.Unmarshal(data, &examples); err != nil {
		return nil, fmt.Errorf("failed to parse dataset %s: %w", path, err)
	}

	valid := examples[:0]
	for _, example := range examples {
		if strings.TrimSpace(example.Query) != "" {
			valid = append(valid, example)
		}
	}
	return valid, nil
}

// NormalizeAnswer lowercases and collapses whitespace for comparison.
func NormalizeAnswer(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(text))), " ")
}

// AnswerExactMatch reports whether the prediction matches any gold answer
// after normalization.
func AnswerExactMatch(prediction string, goldAnswers []string) bool {
	normalized := NormalizeAnswer(prediction)
	if normalized == "" {
		return false
	}
	for _, gold := range goldAnswers {
		if normalized == NormalizeAnswer(gold) {
			return true
		}
	}
	return false
}

// CitationsMatch verifies the returned citations cover every expected
// section and cite only the expected trial. Examples with no expected
// sections trivially match.
func CitationsMatch(citations []models.Passage, expectedSections []string, expectedNCTID string) bool {
	if len(expectedSections) == 0 {
		return true
	}
	if len(citations) == 0 {
		return false
	}

	seen := make(map[string]bool)
	for _, citation := range citations {
		if citation.Section != "" {
			seen[citation.Section] = true
		}
		if expectedNCTID != "" && citation.NCTID != expectedNCTID {
			return false
		}
	}

	for _, section := range expectedSections {
		if !seen[section] {
			return false
		}
	}
	return true
}

// Evaluate runs every example through the asker and scores the results.
func Evaluate(ctx context.Context, asker Asker, examples []Example, logger arbor.ILogger) []Record {
	records := make([]Record, 0, len(examples))
	for _, example := range examples {
		record := Record{Example: example}

		result, err := asker.Ask(ctx, example.Query, example.NCTID)
		if err != nil {
			record.Err = err
			logger.Warn().
				Err(err).
				Str("query", example.Query).
				Msg("Evaluation example failed")
			records = append(records, record)
			continue
		}

		record.Answer = result.Answer
		record.Citations = result.Citations
		record.AnswerMatch = AnswerExactMatch(result.Answer, example.Answers)
		record.CitationMatch = CitationsMatch(result.Citations, example.Sections, example.NCTID)
		records = append(records, record)
	}
	return records
}

// ComputeMetrics aggregates accuracy metrics from evaluated examples.
func ComputeMetrics(records []Record) Metrics {
	metrics := Metrics{TotalExamples: len(records)}
	for _, record := range records {
		if record.Err != nil {
			metrics.ErrorCount++
			continue
		}
		if record.AnswerMatch {
			metrics.AnswerCorrect++
		}
		if len(record.Example.Sections) > 0 {
			metrics.CitationApplicable++
			if record.CitationMatch {
				metrics.CitationCorrect++
			}
		}
	}
	return metrics
}

package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/trialwhisperer/internal/interfaces"
	"github.com/ternarybob/trialwhisperer/internal/models"
	"github.com/ternarybob/trialwhisperer/internal/services/answer"
)

// sectionTitleBoost rewards passages whose section name shares tokens with
// the query, so "what are the inclusion criteria" prefers eligibility
// sections over a description that happens to mention the same words.
const sectionTitleBoost = 0.25

// StoreRetriever is a lexical retriever over the Badger passage store. Query
// tokens are scored against each stored passage by overlap ratio; no external
// index or embedding model is involved.
type StoreRetriever struct {
	passages interfaces.PassageStorage
	logger   arbor.ILogger
}

// NewStoreRetriever creates a retriever backed by the passage store.
func NewStoreRetriever(passages interfaces.PassageStorage, logger arbor.ILogger) *StoreRetriever {
	return &StoreRetriever{
		passages: passages,
		logger:   logger,
	}
}

// Retrieve returns up to k passages relevant to the query, ordered by
// descending relevance. When nctID is non-empty only that trial's passages
// are considered. Passages with no token overlap are excluded.
func (r *StoreRetriever) Retrieve(ctx context.Context, query string, nctID string, k int) ([]models.Passage, error) {
	if k <= 0 {
		k = 8
	}

	var (
		stored []models.Passage
		err    error
	)
	if nctID != "" {
		stored, err = r.passages.ListByTrial(ctx, nctID)
	} else {
		stored, err = r.passages.ListAll(ctx, 0)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load passages: %w", err)
	}

	queryTokens := answer.Tokenize(answer.NormalizeForMatch(query))
	if len(queryTokens) == 0 {
		return nil, nil
	}

	scored := make([]models.Passage, 0, len(stored))
	for _, passage := range stored {
		score := scorePassage(queryTokens, &passage)
		if score <= 0 {
			continue
		}
		passage.Score = score
		passage.HasScore = true
		scored = append(scored, passage)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > k {
		scored = scored[:k]
	}

	r.logger.Debug().
		Str("nct_id", nctID).
		Int("candidates", len(stored)).
		Int("returned", len(scored)).
		Msg("Lexical retrieval completed")

	return scored, nil
}

// scorePassage computes the overlap ratio of distinct query tokens found in
// the passage text, plus a boost when the section name matches query tokens.
func scorePassage(queryTokens map[string]int, passage *models.Passage) float64 {
	textTokens := answer.Tokenize(answer.NormalizeForMatch(passage.Text))
	if len(textTokens) == 0 {
		return 0
	}

	matched := 0
	for token := range queryTokens {
		if textTokens[token] > 0 {
			matched++
		}
	}

	score := float64(matched) / float64(len(queryTokens))

	sectionNorm := answer.NormalizeForMatch(strings.ReplaceAll(passage.Section, ".", " "))
	for token := range queryTokens {
		if strings.Contains(sectionNorm, token) {
			score += sectionTitleBoost
			break
		}
	}

	if matched == 0 {
		return 0
	}
	return score
}

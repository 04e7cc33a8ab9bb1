package interfaces

import (
	"context"

	"github.com/ternarybob/trialwhisperer/internal/models"
)

// RetrievalService produces the ranked passage list for a question.
// Implementations must return passages ordered by descending relevance.
type RetrievalService interface {
	// Retrieve returns up to k passages relevant to the query, optionally
	// restricted to a single trial when nctID is non-empty.
	Retrieve(ctx context.Context, query string, nctID string, k int) ([]models.Passage, error)
}

package retrieval

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/trialwhisperer/internal/common"
	"github.com/ternarybob/trialwhisperer/internal/interfaces"
	"github.com/ternarybob/trialwhisperer/internal/models"
)

// NewRetrievalService creates the configured retrieval backend.
//
// Backend selection:
//   - "store" (or empty): lexical retrieval over the Badger passage store
//   - "disabled": always returns no passages
func NewRetrievalService(config *common.Config, storage interfaces.StorageManager, logger arbor.ILogger) (interfaces.RetrievalService, error) {
	switch config.Retrieval.Backend {
	case "store", "":
		return NewStoreRetriever(storage.PassageStorage(), logger), nil
	case "disabled":
		logger.Warn().Msg("Retrieval backend disabled, all questions will return no passages")
		return &disabledRetriever{}, nil
	default:
		return nil, fmt.Errorf("unsupported retrieval backend: %s (supported: store, disabled)", config.Retrieval.Backend)
	}
}

type disabledRetriever struct{}

func (d *disabledRetriever) Retrieve(ctx context.Context, query string, nctID string, k int) ([]models.Passage, error) {
	return nil, nil
}

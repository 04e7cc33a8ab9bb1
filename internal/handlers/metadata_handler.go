package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/trialwhisperer/internal/services/trials"
)

// MetadataHandler handles corpus metadata HTTP requests
type MetadataHandler struct {
	trialService *trials.Service
	logger       arbor.ILogger
}

// NewMetadataHandler creates a new metadata handler with dependencies
func NewMetadataHandler(trialService *trials.Service, logger arbor.ILogger) *MetadataHandler {
	return &MetadataHandler{
		trialService: trialService,
		logger:       logger,
	}
}

// IngestionSummaryHandler handles GET /api/metadata/ingestion-summary requests.
func (h *MetadataHandler) IngestionSummaryHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	summary, err := h.trialService.IngestionSummary(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to build ingestion summary")
		WriteError(w, http.StatusInternalServerError, "Failed to build ingestion summary")
		return
	}

	WriteJSON(w, http.StatusOK, summary)
}

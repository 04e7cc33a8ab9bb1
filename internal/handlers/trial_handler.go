package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/trialwhisperer/internal/services/trials"
)

// TrialHandler handles trial metadata HTTP requests
type TrialHandler struct {
	trialService *trials.Service
	logger       arbor.ILogger
}

// NewTrialHandler creates a new trial handler with dependencies
func NewTrialHandler(trialService *trials.Service, logger arbor.ILogger) *TrialHandler {
	return &TrialHandler{
		trialService: trialService,
		logger:       logger,
	}
}

// GetTrialHandler handles GET /api/trials/{nct_id} requests.
func (h *TrialHandler) GetTrialHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	nctID := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/trials/"), "/")
	if nctID == "" || strings.Contains(nctID, "/") {
		WriteError(w, http.StatusBadRequest, "Trial identifier is required")
		return
	}

	metadata, err := h.trialService.GetTrial(r.Context(), nctID)
	if err != nil {
		if errors.Is(err, trials.ErrTrialNotFound) {
			WriteError(w, http.StatusNotFound, "Trial not found: "+nctID)
			return
		}
		h.logger.Error().Err(err).Str("nct_id", nctID).Msg("Failed to load trial")
		WriteError(w, http.StatusInternalServerError, "Failed to load trial")
		return
	}

	WriteJSON(w, http.StatusOK, metadata)
}

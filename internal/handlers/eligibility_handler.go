package handlers

import (
	"errors"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/trialwhisperer/internal/models"
	"github.com/ternarybob/trialwhisperer/internal/services/eligibility"
	"github.com/ternarybob/trialwhisperer/internal/services/trials"
)

// EligibilityHandler handles eligibility check HTTP requests
type EligibilityHandler struct {
	trialService       *trials.Service
	eligibilityService *eligibility.Service
	logger             arbor.ILogger
}

// NewEligibilityHandler creates a new eligibility handler with dependencies
func NewEligibilityHandler(trialService *trials.Service, eligibilityService *eligibility.Service, logger arbor.ILogger) *EligibilityHandler {
	return &EligibilityHandler{
		trialService:       trialService,
		eligibilityService: eligibilityService,
		logger:             logger,
	}
}

// CheckHandler handles POST /api/check-eligibility requests. A trial with no
// stored criteria is a 400, matching the behavior of an unknown trial from
// the caller's perspective: there is nothing to evaluate against.
func (h *EligibilityHandler) CheckHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.EligibilityRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	criteria, err := h.trialService.CriteriaForTrial(r.Context(), req.NCTID)
	if err != nil {
		if errors.Is(err, trials.ErrTrialNotFound) {
			WriteError(w, http.StatusBadRequest, "Criteria not found for trial")
			return
		}
		h.logger.Error().Err(err).Str("nct_id", req.NCTID).Msg("Failed to load trial criteria")
		WriteError(w, http.StatusInternalServerError, "Failed to load trial criteria")
		return
	}
	if criteria.Empty() {
		WriteError(w, http.StatusBadRequest, "Criteria not found for trial")
		return
	}

	result := h.eligibilityService.Check(criteria, req.Patient)

	WriteJSON(w, http.StatusOK, models.EligibilityResponse{
		Eligible: result.Eligible,
		Reasons:  result.Reasons,
	})
}

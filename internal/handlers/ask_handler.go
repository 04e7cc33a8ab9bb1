package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/trialwhisperer/internal/interfaces"
	"github.com/ternarybob/trialwhisperer/internal/models"
	"github.com/ternarybob/trialwhisperer/internal/services/answer"
)

// AskHandler handles question answering HTTP requests
type AskHandler struct {
	answerService *answer.Service
	logger        arbor.ILogger
}

// NewAskHandler creates a new ask handler with dependencies
func NewAskHandler(answerService *answer.Service, logger arbor.ILogger) *AskHandler {
	return &AskHandler{
		answerService: answerService,
		logger:        logger,
	}
}

// AskHandler handles POST /api/ask requests.
//
// Responses:
//   - 200: {answer, citations, nct_id?}
//   - 400: empty or invalid query
//   - 404: no passages retrieved for the question
//   - 502: non-retryable provider failure
func (h *AskHandler) AskHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.AskRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		WriteError(w, http.StatusBadRequest, "Query cannot be empty")
		return
	}

	result, err := h.answerService.Ask(r.Context(), req.Query, req.NCTID)
	if err != nil {
		switch {
		case errors.Is(err, answer.ErrNoPassages):
			WriteError(w, http.StatusNotFound, "No relevant trial passages found for the question")
		case errors.Is(err, interfaces.ErrProvider):
			h.logger.Error().Err(err).Msg("Provider failure while answering question")
			WriteError(w, http.StatusBadGateway, "Language model provider error")
		default:
			h.logger.Error().Err(err).Msg("Failed to answer question")
			WriteError(w, http.StatusInternalServerError, "Failed to answer question")
		}
		return
	}

	citations := make([]models.Citation, 0, len(result.Citations))
	for _, passage := range result.Citations {
		citations = append(citations, models.NewCitation(passage))
	}

	WriteJSON(w, http.StatusOK, models.AskResponse{
		Answer:    result.Answer,
		Citations: citations,
		NCTID:     req.NCTID,
	})
}

package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Question answering
	mux.HandleFunc("/api/ask", s.app.AskHandler.AskHandler) // POST - answer a question with citations

	// API routes - Trials
	mux.HandleFunc("/api/trials/", s.app.TrialHandler.GetTrialHandler) // GET /{nct_id}

	// API routes - Eligibility
	mux.HandleFunc("/api/check-eligibility", s.app.EligibilityHandler.CheckHandler)

	// API routes - Corpus metadata
	mux.HandleFunc("/api/metadata/ingestion-summary", s.app.MetadataHandler.IngestionSummaryHandler)

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}

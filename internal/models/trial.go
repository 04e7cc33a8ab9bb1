package models

// TrialMetadata describes a single ingested clinical trial, reconstructed
// from its stored passages and keyed by section label.
type TrialMetadata struct {
	ID       string            `json:"id"`
	Title    string            `json:"title,omitempty"`
	TrialURL string            `json:"trial_url,omitempty"`
	Sections map[string]string `json:"sections"`
}

// Criteria holds the free-text eligibility criteria of a trial, split into
// inclusion (must-satisfy) and exclusion (must-not-satisfy) blocks.
type Criteria struct {
	Inclusion []string `json:"inclusion"`
	Exclusion []string `json:"exclusion"`
}

// Empty reports whether no criteria text was found for the trial.
func (c Criteria) Empty() bool {
	return len(c.Inclusion) == 0 && len(c.Exclusion) == 0
}

// IngestionSummary describes the currently indexed trial corpus.
type IngestionSummary struct {
	StudyCount  int                 `json:"study_count"`
	QueryTerms  []string            `json:"query_terms"`
	Filters     map[string][]string `json:"filters"`
	MaxStudies  int                 `json:"max_studies,omitempty"`
	LastUpdated string              `json:"last_updated,omitempty"`
}

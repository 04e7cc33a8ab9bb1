package models

// AskRequest is the request body for POST /api/ask.
type AskRequest struct {
	Query string `json:"query" validate:"required"`
	NCTID string `json:"nct_id,omitempty" validate:"omitempty,max=20"`
}

// AskResponse is the response body for POST /api/ask.
type AskResponse struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
	NCTID     string     `json:"nct_id,omitempty"`
}

// EligibilityRequest is the request body for POST /api/check-eligibility.
type EligibilityRequest struct {
	NCTID   string  `json:"nct_id" validate:"required,max=20"`
	Patient Patient `json:"patient"`
}

// EligibilityResponse is the response body for POST /api/check-eligibility.
type EligibilityResponse struct {
	Eligible bool     `json:"eligible"`
	Reasons  []string `json:"reasons"`
}

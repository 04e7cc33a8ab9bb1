package models

// Passage is a retrieved chunk of clinical trial text with its trial
// identifier and section label. Passages are produced by the retrieval
// layer and are never mutated once retrieved.
type Passage struct {
	NCTID   string `json:"nct_id"`
	Section string `json:"section"`
	Text    string `json:"text"`

	// Score is the retrieval relevance score (higher = more relevant).
	// HasScore distinguishes a real score from the zero value; passages
	// without a score sort after scored ones in their original order.
	Score    float64 `json:"score,omitempty"`
	HasScore bool    `json:"-"`
}

// Citation is a passage reference returned to the caller alongside an answer.
type Citation struct {
	NCTID       string `json:"nct_id"`
	Section     string `json:"section"`
	TextSnippet string `json:"text_snippet"`
}

// NewCitation builds a Citation from a passage.
func NewCitation(p Passage) Citation {
	return Citation{
		NCTID:       p.NCTID,
		Section:     p.Section,
		TextSnippet: p.Text,
	}
}

package eligibility

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ternarybob/trialwhisperer/internal/models"
)

// AgeRule is a numeric age bound extracted from criteria text. Min and Max
// are in whole years; a nil bound is unconstrained.
type AgeRule struct {
	Min       *int
	Max       *int
	Source    string
	Exclusion bool
}

// SexRule restricts enrollment to one sex ("male" or "female").
type SexRule struct {
	Sex       string
	Source    string
	Exclusion bool
}

// Rules holds all structured requirements extracted from a trial's free-text
// eligibility criteria.
type Rules struct {
	Age []AgeRule
	Sex []SexRule
}

// Empty reports whether no structured rule was recognized.
func (r Rules) Empty() bool {
	return len(r.Age) == 0 && len(r.Sex) == 0
}

// Age pattern tables. Each pattern captures one or two year values; the
// handler decides whether they bind the minimum, the maximum, or both.
var (
	ageRangePattern = regexp.MustCompile(`(?i)\b(?:aged?|age)\s+(\d{1,3})\s*(?:-|–|to)\s*(\d{1,3})\s*(?:years?|yrs?)?\b`)
	ageMinPatterns  = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bat\s+least\s+(\d{1,3})\s*(?:years?|yrs?)(?:\s+of\s+age|\s+old)?\b`),
		regexp.MustCompile(`(?i)\b(\d{1,3})\s*(?:years?|yrs?)(?:\s+of\s+age|\s+old)?\s+(?:or|and)\s+(?:older|above|over)\b`),
		regexp.MustCompile(`(?i)\b(?:older|greater)\s+than\s+(\d{1,3})\s*(?:years?|yrs?)?\b`),
		regexp.MustCompile(`(?i)\bminimum\s+age(?:\s+of)?\s*:?\s*(\d{1,3})\b`),
		regexp.MustCompile(`(?i)(?:≥|>=)\s*(\d{1,3})\s*(?:years?|yrs?)\b`),
	}
	ageMaxPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(\d{1,3})\s*(?:years?|yrs?)(?:\s+of\s+age|\s+old)?\s+(?:or|and)\s+(?:younger|under|below)\b`),
		regexp.MustCompile(`(?i)\b(?:younger|less)\s+than\s+(\d{1,3})\s*(?:years?|yrs?)?\b`),
		regexp.MustCompile(`(?i)\bmaximum\s+age(?:\s+of)?\s*:?\s*(\d{1,3})\b`),
		regexp.MustCompile(`(?i)\bno\s+older\s+than\s+(\d{1,3})\s*(?:years?|yrs?)?\b`),
		regexp.MustCompile(`(?i)(?:≤|<=)\s*(\d{1,3})\s*(?:years?|yrs?)\b`),
	}
)

// Sex pattern table. Capture group 1 names the restricted sex.
var sexPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(male|female|men|women)s?\s+(?:only|participants\s+only|patients\s+only|subjects\s+only)\b`),
	regexp.MustCompile(`(?i)\bonly\s+(male|female|men|women)s?\b`),
	regexp.MustCompile(`(?i)\bsex\s*:?\s*(male|female)\b`),
	regexp.MustCompile(`(?i)\bgender\s*:?\s*(male|female)\b`),
}

// ExtractRules scans the inclusion and exclusion criteria text of a trial
// and returns the structured age and sex rules it recognizes. Unrecognized
// criteria are ignored; the eligibility check reports only on what was
// extracted.
func ExtractRules(criteria models.Criteria) Rules {
	var rules Rules
	for _, text := range criteria.Inclusion {
		rules.append(extractFromText(text, false))
	}
	for _, text := range criteria.Exclusion {
		rules.append(extractFromText(text, true))
	}
	return rules
}

func (r *Rules) append(other Rules) {
	r.Age = append(r.Age, other.Age...)
	r.Sex = append(r.Sex, other.Sex...)
}

func extractFromText(text string, exclusion bool) Rules {
	var rules Rules

	if m := ageRangePattern.FindStringSubmatch(text); m != nil {
		min, okMin := parseYears(m[1])
		max, okMax := parseYears(m[2])
		if okMin && okMax && min <= max {
			rules.Age = append(rules.Age, AgeRule{
				Min:       &min,
				Max:       &max,
				Source:    strings.TrimSpace(m[0]),
				Exclusion: exclusion,
			})
		}
	} else {
		for _, pattern := range ageMinPatterns {
			if m := pattern.FindStringSubmatch(text); m != nil {
				if min, ok := parseYears(m[1]); ok {
					rules.Age = append(rules.Age, AgeRule{
						Min:       &min,
						Source:    strings.TrimSpace(m[0]),
						Exclusion: exclusion,
					})
					break
				}
			}
		}
		for _, pattern := range ageMaxPatterns {
			if m := pattern.FindStringSubmatch(text); m != nil {
				if max, ok := parseYears(m[1]); ok {
					rules.Age = append(rules.Age, AgeRule{
						Max:       &max,
						Source:    strings.TrimSpace(m[0]),
						Exclusion: exclusion,
					})
					break
				}
			}
		}
	}

	for _, pattern := range sexPatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			rules.Sex = append(rules.Sex, SexRule{
				Sex:       normalizeSex(m[1]),
				Source:    strings.TrimSpace(m[0]),
				Exclusion: exclusion,
			})
			break
		}
	}

	return rules
}

func parseYears(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 150 {
		return 0, false
	}
	return n, true
}

// normalizeSex maps criteria vocabulary to the canonical "male"/"female".
func normalizeSex(s string) string {
	switch strings.ToLower(s) {
	case "male", "males", "men":
		return "male"
	case "female", "females", "women":
		return "female"
	}
	return strings.ToLower(s)
}

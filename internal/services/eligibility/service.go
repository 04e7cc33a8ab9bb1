package eligibility

import (
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/trialwhisperer/internal/models"
)

// Result is the outcome of an eligibility check with human-readable reasons
// for every rule that was applied.
type Result struct {
	Eligible bool     `json:"eligible"`
	Reasons  []string `json:"reasons"`
}

// Service evaluates extracted eligibility rules against a patient profile.
type Service struct {
	logger arbor.ILogger
}

// NewService creates a new eligibility service instance.
func NewService(logger arbor.ILogger) *Service {
	return &Service{logger: logger}
}

// Check applies the trial's criteria to a patient. Inclusion rules must be
// satisfied and exclusion rules must not match; a patient field required by
// a rule but missing from the profile makes the patient ineligible with an
// explanatory reason.
//
// Parameters:
//   - criteria: Free-text inclusion/exclusion criteria of the trial
//   - patient: Normalized patient profile with optional age and sex
//
// Returns:
//   - Result: Eligibility outcome with one reason per applied rule
func (s *Service) Check(criteria models.Criteria, patient models.Patient) Result {
	rules := ExtractRules(criteria)

	if rules.Empty() {
		return Result{
			Eligible: true,
			Reasons:  []string{"No structured age or sex requirements were recognized in the trial criteria"},
		}
	}

	result := Result{Eligible: true}

	for _, rule := range rules.Age {
		s.applyAgeRule(rule, patient, &result)
	}
	for _, rule := range rules.Sex {
		s.applySexRule(rule, patient, &result)
	}

	return result
}

func (s *Service) applyAgeRule(rule AgeRule, patient models.Patient, result *Result) {
	if patient.Age == nil {
		result.fail(fmt.Sprintf("Age not provided, but the trial has an age requirement (%q)", rule.Source))
		return
	}
	age := *patient.Age

	inRange := true
	if rule.Min != nil && age < *rule.Min {
		inRange = false
	}
	if rule.Max != nil && age > *rule.Max {
		inRange = false
	}

	if rule.Exclusion {
		if inRange && (rule.Min != nil || rule.Max != nil) {
			result.fail(fmt.Sprintf("Age %d matches an exclusion criterion (%q)", age, rule.Source))
		} else {
			result.pass(fmt.Sprintf("Age %d does not match the exclusion criterion (%q)", age, rule.Source))
		}
		return
	}

	if !inRange {
		result.fail(fmt.Sprintf("Age %d is outside the required range (%q)", age, rule.Source))
	} else {
		result.pass(fmt.Sprintf("Age %d satisfies the requirement (%q)", age, rule.Source))
	}
}

func (s *Service) applySexRule(rule SexRule, patient models.Patient, result *Result) {
	if strings.TrimSpace(patient.Sex) == "" {
		result.fail(fmt.Sprintf("Sex not provided, but the trial has a sex requirement (%q)", rule.Source))
		return
	}
	patientSex := normalizeSex(patient.Sex)

	matches := patientSex == rule.Sex

	if rule.Exclusion {
		if matches {
			result.fail(fmt.Sprintf("Sex %q matches an exclusion criterion (%q)", patientSex, rule.Source))
		} else {
			result.pass(fmt.Sprintf("Sex %q does not match the exclusion criterion (%q)", patientSex, rule.Source))
		}
		return
	}

	if !matches {
		result.fail(fmt.Sprintf("Sex %q does not satisfy the requirement (%q)", patientSex, rule.Source))
	} else {
		result.pass(fmt.Sprintf("Sex %q satisfies the requirement (%q)", patientSex, rule.Source))
	}
}

func (r *Result) fail(reason string) {
	r.Eligible = false
	r.Reasons = append(r.Reasons, reason)
}

func (r *Result) pass(reason string) {
	r.Reasons = append(r.Reasons, reason)
}

package eligibility

import (
	"strings"
	"testing"

	"github.com/ternarybob/trialwhisperer/internal/common"
	"github.com/ternarybob/trialwhisperer/internal/models"
)

func intPtr(n int) *int { return &n }

func newTestService() *Service {
	return NewService(common.GetLogger())
}

func TestCheckNoStructuredRules(t *testing.T) {
	criteria := models.Criteria{Inclusion: []string{"Histologically confirmed glioblastoma"}}

	result := newTestService().Check(criteria, models.Patient{Age: intPtr(40)})
	if !result.Eligible {
		t.Error("patient should be eligible when no rule was recognized")
	}
	if len(result.Reasons) != 1 {
		t.Fatalf("got %d reasons, want 1", len(result.Reasons))
	}
	if !strings.Contains(result.Reasons[0], "No structured") {
		t.Errorf("reason = %q", result.Reasons[0])
	}
}

func TestCheckAgeWithinRange(t *testing.T) {
	criteria := models.Criteria{Inclusion: []string{"Patients aged 18 to 65 years"}}

	result := newTestService().Check(criteria, models.Patient{Age: intPtr(40), Sex: "female"})
	if !result.Eligible {
		t.Errorf("expected eligible, reasons: %v", result.Reasons)
	}
}

func TestCheckAgeBelowMinimum(t *testing.T) {
	criteria := models.Criteria{Inclusion: []string{"At least 18 years of age"}}

	result := newTestService().Check(criteria, models.Patient{Age: intPtr(16)})
	if result.Eligible {
		t.Error("expected ineligible")
	}
	if len(result.Reasons) != 1 || !strings.Contains(result.Reasons[0], "outside the required range") {
		t.Errorf("reasons = %v", result.Reasons)
	}
}

func TestCheckAgeMissing(t *testing.T) {
	criteria := models.Criteria{Inclusion: []string{"At least 18 years of age"}}

	result := newTestService().Check(criteria, models.Patient{Sex: "male"})
	if result.Eligible {
		t.Error("missing age should make the patient ineligible")
	}
	if !strings.Contains(result.Reasons[0], "Age not provided") {
		t.Errorf("reasons = %v", result.Reasons)
	}
}

func TestCheckSexRequirement(t *testing.T) {
	criteria := models.Criteria{Inclusion: []string{"Female participants only"}}

	result := newTestService().Check(criteria, models.Patient{Sex: "male"})
	if result.Eligible {
		t.Error("expected ineligible")
	}

	result = newTestService().Check(criteria, models.Patient{Sex: "Female"})
	if !result.Eligible {
		t.Errorf("expected eligible, reasons: %v", result.Reasons)
	}

	result = newTestService().Check(criteria, models.Patient{})
	if result.Eligible {
		t.Error("missing sex should make the patient ineligible")
	}
}

func TestCheckExclusionRule(t *testing.T) {
	criteria := models.Criteria{Exclusion: []string{"Patients aged 70 to 99 years"}}

	result := newTestService().Check(criteria, models.Patient{Age: intPtr(75)})
	if result.Eligible {
		t.Error("age inside an exclusion range should make the patient ineligible")
	}
	if !strings.Contains(result.Reasons[0], "matches an exclusion criterion") {
		t.Errorf("reasons = %v", result.Reasons)
	}

	result = newTestService().Check(criteria, models.Patient{Age: intPtr(40)})
	if !result.Eligible {
		t.Errorf("expected eligible, reasons: %v", result.Reasons)
	}
}

func TestCheckCombinedRules(t *testing.T) {
	criteria := models.Criteria{
		Inclusion: []string{"At least 18 years of age", "Sex: Female"},
		Exclusion: []string{"Only males"},
	}

	result := newTestService().Check(criteria, models.Patient{Age: intPtr(30), Sex: "female"})
	if !result.Eligible {
		t.Errorf("expected eligible, reasons: %v", result.Reasons)
	}
	if len(result.Reasons) != 3 {
		t.Errorf("got %d reasons, want one per applied rule: %v", len(result.Reasons), result.Reasons)
	}
}

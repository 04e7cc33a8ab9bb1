package answer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/trialwhisperer/internal/models"
)

func TestSelectCitationsEmptyPassages(t *testing.T) {
	assert.Nil(t, SelectCitations("some answer", nil, 3))
}

func TestSelectCitationsEmptyAnswerTakesHead(t *testing.T) {
	passages := []models.Passage{
		passage("NCT01", "overview", "first"),
		passage("NCT01", "description", "second"),
		passage("NCT01", "outcomes", "third"),
		passage("NCT01", "status", "fourth"),
	}

	got := SelectCitations("", passages, 3)
	require.Len(t, got, 3)
	assert.Equal(t, "overview", got[0].Section)
	assert.Equal(t, "description", got[1].Section)
	assert.Equal(t, "outcomes", got[2].Section)
}

func TestSelectCitationsSimpleAnswer(t *testing.T) {
	passages := []models.Passage{
		passage("NCT01", "overview", "The study plans to enroll 120 participants."),
		passage("NCT01", "eligibility.inclusion", "At least 18 years of age."),
	}

	got := SelectCitations("120 participants", passages, 3)
	require.NotEmpty(t, got)
	assert.Equal(t, "overview", got[0].Section)
}

// An answer that draws on several distinct sections keeps one citation per
// contributing section even past the default cap.
func TestSelectCitationsCoverageExtension(t *testing.T) {
	answer := "Patients receive temozolomide. The primary endpoint is overall survival. " +
		"Enrollment is 120 participants. The trial is recruiting."

	passages := []models.Passage{
		passage("NCT01", "interventions", "Patients receive temozolomide daily for six weeks."),
		passage("NCT01", "outcomes", "The primary endpoint is overall survival at 24 months."),
		passage("NCT01", "overview", "Enrollment is 120 participants across 12 sites."),
		passage("NCT01", "status", "The trial is recruiting as of January 2024."),
		passage("NCT01", "sponsor", "Sponsored by the national oncology group."),
		passage("NCT01", "conditions", "Glioblastoma; anaplastic astrocytoma."),
		passage("NCT01", "description", "A randomized phase III study design."),
	}

	got := SelectCitations(answer, passages, DefaultMaxCitations)
	require.GreaterOrEqual(t, len(got), 4, "each matched fragment should earn its citation")

	sections := make(map[string]bool)
	for _, p := range got {
		sections[p.Section] = true
	}
	for _, section := range []string{"interventions", "outcomes", "overview", "status"} {
		assert.True(t, sections[section], "section %s should be cited", section)
	}
}

// Citations preserve the passages' original relative order regardless of
// ranking.
func TestSelectCitationsPreservesOrder(t *testing.T) {
	passages := []models.Passage{
		passage("NCT01", "description", "Unrelated design narrative."),
		passage("NCT01", "overview", "The study enrolls 120 participants."),
		passage("NCT01", "status", "The trial is recruiting."),
	}

	got := SelectCitations("The study enrolls 120 participants. The trial is recruiting.", passages, 3)
	require.GreaterOrEqual(t, len(got), 2)
	last := -1
	for _, p := range got {
		idx := -1
		for i := range passages {
			if passages[i].Section == p.Section {
				idx = i
			}
		}
		require.Greater(t, idx, last, "citation order should follow passage order")
		last = idx
	}
}

func TestSelectCitationsDefaultCap(t *testing.T) {
	passages := []models.Passage{
		passage("NCT01", "overview", "alpha"),
		passage("NCT01", "description", "beta"),
		passage("NCT01", "outcomes", "gamma"),
		passage("NCT01", "status", "delta"),
		passage("NCT01", "sponsor", "epsilon"),
	}

	// No match signal anywhere: greedy fill stops at the cap.
	got := SelectCitations("unrelated answer text entirely", passages, 0)
	assert.Len(t, got, DefaultMaxCitations)
}

package answer

import (
	"strings"
	"testing"

	"github.com/ternarybob/trialwhisperer/internal/models"
)

func TestSelectForContextEmpty(t *testing.T) {
	if selected, context := SelectForContext(nil, 100); selected != nil || context != "" {
		t.Errorf("empty passages: got %v, %q", selected, context)
	}
	passages := []models.Passage{{NCTID: "NCT01234567", Section: "overview", Text: "text"}}
	if selected, context := SelectForContext(passages, 0); selected != nil || context != "" {
		t.Errorf("zero budget: got %v, %q", selected, context)
	}
}

func TestSelectForContextFormatsNumberedLines(t *testing.T) {
	passages := []models.Passage{
		{NCTID: "NCT01234567", Section: "overview", Text: "The study plans to enroll 120 participants."},
		{NCTID: "NCT01234567", Section: "eligibility.inclusion", Text: "At least 18 years of age."},
	}

	selected, context := SelectForContext(passages, DefaultContextChars)
	if len(selected) != 2 {
		t.Fatalf("selected %d passages, want 2", len(selected))
	}

	lines := strings.Split(context, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0] != "(1) [Trial NCT01234567] overview: The study plans to enroll 120 participants." {
		t.Errorf("line 1 = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "(2) [Trial NCT01234567] eligibility.inclusion: ") {
		t.Errorf("line 2 = %q", lines[1])
	}
}

func TestSelectForContextOrdersByScore(t *testing.T) {
	passages := []models.Passage{
		{NCTID: "NCT01", Section: "overview", Text: "unscored passage"},
		{NCTID: "NCT02", Section: "overview", Text: "low scored", Score: 0.2, HasScore: true},
		{NCTID: "NCT03", Section: "overview", Text: "high scored", Score: 0.9, HasScore: true},
	}

	selected, context := SelectForContext(passages, DefaultContextChars)
	if len(selected) != 3 {
		t.Fatalf("selected %d passages, want 3", len(selected))
	}
	if selected[0].NCTID != "NCT03" || selected[1].NCTID != "NCT02" || selected[2].NCTID != "NCT01" {
		t.Errorf("selection order = %s, %s, %s", selected[0].NCTID, selected[1].NCTID, selected[2].NCTID)
	}
	if !strings.HasPrefix(context, "(1) [Trial NCT03]") {
		t.Errorf("context starts with %q", context[:20])
	}
}

func TestSelectForContextTruncatesFinalLine(t *testing.T) {
	passages := []models.Passage{
		{NCTID: "NCT01234567", Section: "overview", Text: strings.Repeat("enrollment details ", 20)},
	}
	prefix := "(1) [Trial NCT01234567] overview: "
	maxChars := len(prefix) + 20

	selected, context := SelectForContext(passages, maxChars)
	if len(selected) != 1 {
		t.Fatalf("selected %d passages, want 1", len(selected))
	}
	if len(context) > maxChars {
		t.Errorf("context length %d exceeds budget %d", len(context), maxChars)
	}
	if !strings.HasSuffix(context, "…") {
		t.Errorf("truncated context should end with ellipsis, got %q", context)
	}
}

func TestSelectForContextStopsWhenNoRoom(t *testing.T) {
	passages := []models.Passage{
		{NCTID: "NCT01234567", Section: "overview", Text: "first passage text here"},
		{NCTID: "NCT01234567", Section: "description", Text: "second passage text here"},
	}
	line := "(1) [Trial NCT01234567] overview: first passage text here"

	// Exactly one full line fits; the second line's prefix alone overflows.
	selected, context := SelectForContext(passages, len(line)+5)
	if len(selected) != 1 {
		t.Fatalf("selected %d passages, want 1", len(selected))
	}
	if context != line {
		t.Errorf("context = %q, want %q", context, line)
	}
	if len(context) > len(line)+5 {
		t.Errorf("budget exceeded")
	}
}

package answer

import (
	"reflect"
	"testing"
)

func TestSplitFragments(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "sentences semicolons and newlines",
			text:     "First sentence. Second clause; third clause\nfourth line",
			expected: []string{"First sentence", "Second clause", "third clause", "fourth line"},
		},
		{
			name:     "decimal values stay intact",
			text:     "Dose of 2.5 mg daily. Next sentence.",
			expected: []string{"Dose of 2.5 mg daily", "Next sentence"},
		},
		{
			name:     "empty fragments dropped",
			text:     "One..  Two;;Three",
			expected: []string{"One", "Two", "Three"},
		},
		{
			name:     "no delimiters",
			text:     "single fragment without punctuation",
			expected: []string{"single fragment without punctuation"},
		},
		{
			name:     "blank input",
			text:     "   ",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitFragments(tt.text)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("SplitFragments(%q) = %v, want %v", tt.text, got, tt.expected)
			}
		})
	}
}

func TestSplitLabelSegments(t *testing.T) {
	text := "RADIATION: hypofractionated postoperative radiotherapy RADIATION: Conventionally fractionated postoperative radiotherapy"
	segments := SplitLabelSegments(text)
	expected := []string{
		"RADIATION: hypofractionated postoperative radiotherapy",
		"RADIATION: Conventionally fractionated postoperative radiotherapy",
	}
	if !reflect.DeepEqual(segments, expected) {
		t.Errorf("segments = %v, want %v", segments, expected)
	}
}

func TestSplitLabelSegmentsLeadingUnlabeled(t *testing.T) {
	text := "General remarks first. DRUG: temozolomide daily; PROCEDURE: surgical resection"
	segments := SplitLabelSegments(text)
	if len(segments) != 3 {
		t.Fatalf("got %d segments %v, want 3", len(segments), segments)
	}
	if segments[0] != "General remarks first." {
		t.Errorf("leading segment = %q", segments[0])
	}
}

func TestSplitLabelSegmentsSingleLabel(t *testing.T) {
	if got := SplitLabelSegments("RADIATION: only one labelled block here"); got != nil {
		t.Errorf("single label should not split, got %v", got)
	}
}

func TestSplitSecondaryRequirements(t *testing.T) {
	segment := "Karnofsky >= 70; Able to swallow tablets"
	clauses := SplitSecondaryRequirements(segment)
	expected := []string{"Karnofsky >= 70", "Able to swallow tablets"}
	if !reflect.DeepEqual(clauses, expected) {
		t.Errorf("clauses = %v, want %v", clauses, expected)
	}
}

func TestSplitSecondaryRequirementsNoCut(t *testing.T) {
	// Lowercase and mid-word occurrences do not open a clause.
	segment := "Patients unable to swallow are excluded"
	clauses := SplitSecondaryRequirements(segment)
	if len(clauses) != 1 || clauses[0] != segment {
		t.Errorf("clauses = %v, want segment unsplit", clauses)
	}
}

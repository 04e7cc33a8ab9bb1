package answer

import (
	"regexp"
	"sort"
	"strings"
)

// maxLabelChars bounds the length of a "Label:" prefix (without the colon).
// Longer capitalized runs are prose, not labels.
const maxLabelChars = 30

var (
	// labelBoundaryPattern finds "Label:" prefixes inside running text: a
	// capitalized word sequence followed by a colon, preceded by the start of
	// the text, whitespace or a delimiter.
	labelBoundaryPattern = regexp.MustCompile(`(^|[\s.;:\-])([A-Z][A-Za-z0-9'()/-]*(?: [A-Za-z0-9'()/-]+){0,3}):`)

	// labelPrefixPattern reports whether a candidate span itself starts with
	// a "Label:" prefix.
	labelPrefixPattern = regexp.MustCompile(`^[A-Z][A-Za-z0-9'()/-]*(?: [A-Za-z0-9'()/-]+){0,3}:`)
)

// secondaryRequirementWords introduce a secondary requirement clause inside a
// single label segment ("...; Able to swallow tablets. Must have adequate
// organ function."). Fixed vocabulary kept as data; clinical scale names are
// included because criteria frequently open a requirement with them.
var secondaryRequirementWords = []string{
	"Able",
	"Must",
	"Requires",
	"Required",
	"Willing",
	"Adequate",
	"Karnofsky",
	"Lansky",
	"ECOG",
	"Life expectancy",
}

// SplitFragments splits text into sentence/clause fragments on newlines,
// semicolons and sentence-ending periods. A period immediately followed by a
// digit does not split, so decimal values ("2.5 mg") stay intact. Fragments
// that normalize to nothing are discarded.
func SplitFragments(text string) []string {
	var fragments []string
	start := 0
	for i := 0; i < len(text); i++ {
		split := false
		switch text[i] {
		case '\n', ';':
			split = true
		case '.':
			if i+1 >= len(text) || !isDigit(text[i+1]) {
				split = true
			}
		}
		if split {
			fragments = appendFragment(fragments, text[start:i])
			start = i + 1
		}
	}
	return appendFragment(fragments, text[start:])
}

func appendFragment(fragments []string, raw string) []string {
	fragment := strings.TrimSpace(raw)
	if fragment == "" || NormalizeForMatch(fragment) == "" {
		return fragments
	}
	return append(fragments, fragment)
}

// SplitLabelSegments splits text into one segment per "Label:" prefix when
// two or more label boundaries are present, plus any leading unlabeled
// segment. Segments are deduplicated by lowercase text. Returns nil when the
// text does not look label-structured.
func SplitLabelSegments(text string) []string {
	matches := labelBoundaryPattern.FindAllStringSubmatchIndex(text, -1)
	var starts []int
	for _, m := range matches {
		labelStart, labelEnd := m[4], m[5]
		if labelEnd-labelStart > maxLabelChars {
			continue
		}
		starts = append(starts, labelStart)
	}
	if len(starts) < 2 {
		return nil
	}

	var segments []string
	seen := make(map[string]bool)
	add := func(raw string) {
		segment := strings.TrimSpace(raw)
		if segment == "" {
			return
		}
		key := strings.ToLower(segment)
		if seen[key] {
			return
		}
		seen[key] = true
		segments = append(segments, segment)
	}

	if starts[0] > 0 {
		add(text[:starts[0]])
	}
	for i, start := range starts {
		end := len(text)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		add(text[start:end])
	}
	return segments
}

// SplitSecondaryRequirements splits a label segment into a primary clause
// followed by secondary requirement clauses, cutting where a word from the
// requirement vocabulary opens a new clause. Citing only the primary clause
// avoids quoting an entire multi-requirement label block when a single
// requirement is relevant. Returns the segment unsplit when no cut applies.
func SplitSecondaryRequirements(segment string) []string {
	var cuts []int
	for _, word := range secondaryRequirementWords {
		offset := 0
		for {
			rel := strings.Index(segment[offset:], word)
			if rel < 0 {
				break
			}
			pos := offset + rel
			offset = pos + len(word)
			if pos == 0 {
				continue
			}
			if opensClause(segment, pos, len(word)) {
				cuts = append(cuts, pos)
			}
		}
	}
	if len(cuts) == 0 {
		return []string{segment}
	}

	sort.Ints(cuts)
	var clauses []string
	prev := 0
	for _, cut := range cuts {
		if cut == prev {
			continue
		}
		clauses = appendClause(clauses, segment[prev:cut])
		prev = cut
	}
	clauses = appendClause(clauses, segment[prev:])
	if len(clauses) == 0 {
		return []string{segment}
	}
	return clauses
}

func appendClause(clauses []string, raw string) []string {
	clause := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(raw), ".;,"))
	if clause == "" {
		return clauses
	}
	return append(clauses, clause)
}

// opensClause reports whether the vocabulary word at pos starts a new clause:
// bounded by non-word characters and preceded (after spaces) by a clause
// delimiter.
func opensClause(segment string, pos, wordLen int) bool {
	if isWordByte(segment[pos-1]) {
		return false
	}
	if end := pos + wordLen; end < len(segment) && isWordByte(segment[end]) {
		return false
	}
	i := pos - 1
	for i >= 0 && segment[i] == ' ' {
		i--
	}
	if i < 0 {
		return true
	}
	switch segment[i] {
	case '.', ';', ',', ':', ')', '-', '\n':
		return true
	}
	return false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || isDigit(c)
}

package answer

import (
	"regexp"
	"strings"
)

// Pattern tables for answer cleaning. Kept as named package data so each
// table stays independently testable.
var (
	// citationMarkerPattern matches inline numeric citation markers such as
	// "(1)" or "[2]" together with surrounding whitespace.
	citationMarkerPattern = regexp.MustCompile(`\s*[(\[]\d+[)\]]\s*`)

	// whitespaceRunPattern collapses internal whitespace runs.
	whitespaceRunPattern = regexp.MustCompile(`\s+`)

	// leadingPhrasePatterns are boilerplate lead-ins stripped repeatedly from
	// the front of a raw answer until none match.
	leadingPhrasePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^final answer\s*:\s*`),
		regexp.MustCompile(`(?i)^answer\s*:\s*`),
		regexp.MustCompile(`(?i)^(?:based on|according to|from|using)\s+(?:the\s+)?(?:provided\s+)?context\s*[,:\-]*\s*`),
		regexp.MustCompile(`(?i)^in summary\s*:\s*`),
		regexp.MustCompile(`(?i)^overall\s*:\s*`),
		regexp.MustCompile(`(?i)^this means\s*:\s*`),
	}

	// nonAlnumPattern collapses non-alphanumeric runs for match normalization.
	nonAlnumPattern = regexp.MustCompile(`[^a-z0-9]+`)
)

// leadingPunctuationCutset is trimmed from the front of a cleaned answer
// after boilerplate stripping.
const leadingPunctuationCutset = "-:;, "

// CleanAnswer strips inline citation markers and leading boilerplate phrasing
// from a raw model answer and normalizes internal whitespace. The function is
// idempotent. It never returns an empty string for non-empty input: when
// stripping would consume the whole answer, the original trimmed text is
// returned unchanged.
func CleanAnswer(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	cleaned := citationMarkerPattern.ReplaceAllString(trimmed, " ")
	cleaned = whitespaceRunPattern.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)

	// Strip boilerplate lead-ins repeatedly; answers often stack them
	// ("Answer: Based on the provided context, ...").
	for {
		next := cleaned
		for _, pattern := range leadingPhrasePatterns {
			next = pattern.ReplaceAllString(next, "")
		}
		next = strings.TrimLeft(next, leadingPunctuationCutset)
		if next == cleaned {
			break
		}
		cleaned = strings.TrimSpace(next)
	}

	if cleaned == "" {
		return trimmed
	}
	return cleaned
}

// NormalizeForMatch lowercases text, replaces non-breaking spaces with
// regular spaces, collapses every non-alphanumeric run to a single space and
// trims the result. Two strings that differ only in case/punctuation/spacing
// normalize identically, which is what the substring containment checks rely
// on.
func NormalizeForMatch(text string) string {
	s := strings.ToLower(strings.ReplaceAll(text, " ", " "))
	return strings.TrimSpace(nonAlnumPattern.ReplaceAllString(s, " "))
}

// Tokenize returns the multiset of lowercase alphanumeric tokens in text,
// keyed by token with occurrence counts.
func Tokenize(text string) map[string]int {
	normalized := NormalizeForMatch(text)
	if normalized == "" {
		return map[string]int{}
	}
	counts := make(map[string]int)
	for _, token := range strings.Fields(normalized) {
		counts[token]++
	}
	return counts
}

// tokenTotal returns the total number of token occurrences in a multiset.
func tokenTotal(tokens map[string]int) int {
	total := 0
	for _, n := range tokens {
		total += n
	}
	return total
}

// tokenOverlap returns the number of distinct shared tokens and the total
// multiset overlap (sum of per-token minimum counts) between two token sets.
func tokenOverlap(a, b map[string]int) (distinct, total int) {
	for token, na := range a {
		nb, ok := b[token]
		if !ok {
			continue
		}
		distinct++
		if na < nb {
			total += na
		} else {
			total += nb
		}
	}
	return distinct, total
}

// normalizedFragments splits text into fragments and returns their
// normalized forms, dropping any that normalize to nothing.
func normalizedFragments(text string) []string {
	var fragments []string
	for _, fragment := range SplitFragments(text) {
		if normalized := NormalizeForMatch(fragment); normalized != "" {
			fragments = append(fragments, normalized)
		}
	}
	return fragments
}

package answer

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ternarybob/trialwhisperer/internal/models"
)

// Query-only replacement and expansion thresholds. Empirically tuned values;
// the invariant they serve is deterministic, traceable output, not the exact
// numbers.
const (
	queryCoverageThreshold  = 0.5 // fraction of distinct query tokens a replacement must cover
	queryOverlapBase        = 3   // minimum query-token overlap for a replacement
	queryOverlapPerChars    = 80  // +1 to the minimum per this many answer characters
	relaxedQueryOverlapMin  = 1   // relaxed minimum for refusal/no-overlap answers
	expansionMaxMultiplier  = 3   // expanded clause may be at most this multiple of the answer length
	expansionMaxSuffixChars = 24  // normalized characters allowed after the answer inside an expansion
)

// fallbackAnswerPrefixes mark sentinel answers that are never re-anchored
// against source text.
var fallbackAnswerPrefixes = []string{"[fallback]", "[demo]"}

// refusalMarkers identify answers where the model declined to answer; the
// query-only replacement thresholds are relaxed for these.
var refusalMarkers = []string{
	"i cannot",
	"i can't",
	"i do not know",
	"i don't know",
	"no information",
	"not enough information",
	"the context does not",
	"unable to",
	"sorry",
}

// listNumeralPattern matches a leading list numeral ("1. ", "(2) ") stripped
// from the final aligned text.
var listNumeralPattern = regexp.MustCompile(`^(?:\(\d+\)|\d+[.)])\s+`)

// trailingPunctuation are the clause-ending marks eligible for restoration
// from a candidate's source passage.
const trailingPunctuation = ".!?;"

// AlignAnswer re-anchors a cleaned model answer to the closest verbatim span
// in the given passages, so the displayed answer is traceable to source text
// rather than a paraphrase. Every non-fallback result is a contiguous
// substring of one passage's text, modulo a stripped leading list numeral and
// a possibly restored single trailing punctuation mark. When no candidate
// qualifies the answer is returned unchanged; that is the designed fallback,
// not an error.
func AlignAnswer(answerText string, passages []models.Passage, query string) string {
	cleaned := strings.TrimSpace(answerText)
	if cleaned == "" || len(passages) == 0 {
		return answerText
	}
	lowerAnswer := strings.ToLower(cleaned)
	for _, prefix := range fallbackAnswerPrefixes {
		if strings.HasPrefix(lowerAnswer, prefix) {
			return answerText
		}
	}

	sc := &scoreContext{
		normalizedAnswer: NormalizeForMatch(cleaned),
		answerTokens:     Tokenize(cleaned),
		answerFragments:  normalizedFragments(cleaned),
		answerLength:     len(cleaned),
		queryTokens:      Tokenize(query),
	}

	// The answer itself is the score floor every candidate must clear.
	baseline := evaluateCandidate(cleaned, nil, sc, false)
	if baseline == nil {
		return answerText
	}

	// Best-so-far reducer slots over all candidates. Candidates no longer
	// than the answer compete directly; longer ones are only usable through
	// the expansion path.
	var bestWithin, bestLonger, bestQueryOnly, bestLabelQuery *scoredCandidate
	sharesAnyToken := false

	consider := func(text string, source *models.Passage) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		if candidate := evaluateCandidate(text, source, sc, false); candidate != nil {
			if len(text) <= sc.answerLength {
				bestWithin = betterCandidate(bestWithin, candidate)
			} else {
				bestLonger = betterCandidate(bestLonger, candidate)
			}
			if candidate.queryDistinct > 0 && labelPrefixPattern.MatchString(text) {
				bestLabelQuery = betterCandidate(bestLabelQuery, candidate)
			}
			return
		}
		if candidate := evaluateCandidate(text, source, sc, true); candidate != nil {
			bestQueryOnly = betterCandidate(bestQueryOnly, candidate)
			if candidate.queryDistinct > 0 && labelPrefixPattern.MatchString(text) {
				bestLabelQuery = betterCandidate(bestLabelQuery, candidate)
			}
		}
	}

	for i := range passages {
		passage := &passages[i]
		if strings.TrimSpace(passage.Text) == "" {
			continue // malformed passages contribute no candidates
		}
		if !sharesAnyToken {
			if distinct, _ := tokenOverlap(Tokenize(passage.Text), sc.answerTokens); distinct > 0 {
				sharesAnyToken = true
			}
		}
		consider(passage.Text, passage)
		for _, fragment := range SplitFragments(passage.Text) {
			consider(fragment, passage)
		}
		for _, segment := range SplitLabelSegments(passage.Text) {
			consider(segment, passage)
			for _, clause := range SplitSecondaryRequirements(segment) {
				if clause != segment {
					consider(clause, passage)
				}
			}
		}
	}

	// (a) A label-prefixed candidate matching the query wins when it holds
	// the baseline floor and fits the answer length after shrinking to its
	// primary requirement clause.
	if bestLabelQuery != nil && !bestLabelQuery.score.worseThan(baseline.score) {
		shrunk := SplitSecondaryRequirements(bestLabelQuery.text)[0]
		if sc.answerLength == 0 || len(shrunk) <= sc.answerLength {
			return finishAlignment(shrunk)
		}
	}

	// (b) An exact/near candidate that beat the baseline.
	if bestWithin != nil && bestWithin.score.betterThan(baseline.score) {
		return finishAlignment(restoreTrailingPunctuation(bestWithin))
	}

	// (c) Query-only replacement under the tuned thresholds.
	if bestQueryOnly != nil && queryOnlyQualifies(bestQueryOnly, sc, lowerAnswer, sharesAnyToken) {
		return finishAlignment(bestQueryOnly.text)
	}

	// (d) A longer candidate that contains the answer with a clause-opening
	// prefix and only a short suffix is worth expanding to.
	if bestLonger != nil && expansionWorthy(bestLonger, sc) {
		return finishAlignment(restoreTrailingPunctuation(bestLonger))
	}

	// (e) Reconstruct the containing clause around a literal occurrence.
	for i := range passages {
		if clause, ok := reconstructClause(passages[i].Text, cleaned); ok {
			return finishAlignment(clause)
		}
	}

	// (f) Designed fallback: keep the cleaned answer unchanged.
	return answerText
}

// queryOnlyQualifies applies the replacement thresholds for a candidate that
// matches the question but not the answer. Thresholds are relaxed when the
// answer reads as a refusal or shares no tokens with any passage, since the
// original answer then carries no source signal worth preserving.
func queryOnlyQualifies(candidate *scoredCandidate, sc *scoreContext, lowerAnswer string, sharesAnyToken bool) bool {
	distinctQueryTokens := len(sc.queryTokens)
	if distinctQueryTokens == 0 {
		return false
	}
	coverage := float64(candidate.queryDistinct) / float64(distinctQueryTokens)
	minOverlap := queryOverlapBase + sc.answerLength/queryOverlapPerChars
	if looksLikeRefusal(lowerAnswer) || !sharesAnyToken {
		minOverlap = relaxedQueryOverlapMin
	}
	return coverage >= queryCoverageThreshold || candidate.queryOverlap >= minOverlap
}

func looksLikeRefusal(lowerAnswer string) bool {
	for _, marker := range refusalMarkers {
		if strings.HasPrefix(lowerAnswer, marker) {
			return true
		}
	}
	return false
}

// expansionWorthy reports whether a candidate longer than the answer is an
// acceptable expansion: the normalized answer occurs inside it with only a
// short suffix after it, the prefix reads as a clause opening, and the total
// length stays within a bounded multiple of the answer.
func expansionWorthy(candidate *scoredCandidate, sc *scoreContext) bool {
	if sc.answerLength == 0 || sc.normalizedAnswer == "" {
		return false
	}
	if len(candidate.text) > expansionMaxMultiplier*sc.answerLength {
		return false
	}
	normalized := NormalizeForMatch(candidate.text)
	idx := strings.Index(normalized, sc.normalizedAnswer)
	if idx < 0 {
		return false
	}
	if suffix := len(normalized) - idx - len(sc.normalizedAnswer); suffix > expansionMaxSuffixChars {
		return false
	}
	if idx == 0 {
		return true
	}
	first, _ := utf8.DecodeRuneInString(candidate.text)
	return unicode.IsUpper(first) || unicode.IsDigit(first) || first == '('
}

// restoreTrailingPunctuation re-appends the clause-ending mark that fragment
// splitting trimmed off, looked up at the candidate's position in its source
// passage.
func restoreTrailingPunctuation(candidate *scoredCandidate) string {
	text := candidate.text
	if candidate.source == nil || text == "" {
		return text
	}
	if strings.IndexByte(trailingPunctuation, text[len(text)-1]) >= 0 {
		return text
	}
	idx := strings.Index(candidate.source.Text, text)
	if idx < 0 {
		return text
	}
	end := idx + len(text)
	if end < len(candidate.source.Text) && strings.IndexByte(trailingPunctuation, candidate.source.Text[end]) >= 0 {
		return text + string(candidate.source.Text[end])
	}
	return text
}

// reconstructClause finds a literal (case-insensitive) occurrence of the
// reference text inside a passage and expands it to its containing clause,
// bounded by sentence punctuation, label boundaries and line breaks.
func reconstructClause(passageText, reference string) (string, bool) {
	if reference == "" || strings.TrimSpace(passageText) == "" {
		return "", false
	}
	idx := strings.Index(strings.ToLower(passageText), strings.ToLower(reference))
	if idx < 0 {
		return "", false
	}

	start := idx
	for start > 0 {
		c := passageText[start-1]
		if c == ';' || c == '\n' || c == ':' {
			break
		}
		if c == '.' && (start >= len(passageText) || !isDigit(passageText[start])) {
			break
		}
		start--
	}
	end := idx + len(reference)
	for end < len(passageText) {
		c := passageText[end]
		if c == ';' || c == '\n' {
			break
		}
		if c == '.' && (end+1 >= len(passageText) || !isDigit(passageText[end+1])) {
			end++ // keep the sentence period
			break
		}
		end++
	}

	clause := strings.TrimSpace(passageText[start:end])
	if clause == "" {
		return "", false
	}
	return clause, true
}

// finishAlignment strips a leading list numeral from the chosen text.
func finishAlignment(text string) string {
	text = strings.TrimSpace(text)
	text = listNumeralPattern.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

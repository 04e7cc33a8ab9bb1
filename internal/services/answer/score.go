package answer

import (
	"strings"

	"github.com/ternarybob/trialwhisperer/internal/models"
)

// focusRatioScale converts the query-token focus ratio into an integer for
// lexicographic comparison.
const focusRatioScale = 1000

// scoreTuple is the total-ordered candidate score, compared lexicographically
// with higher values winning. Element order, strongest signal first:
//
//	0: exact span match (normalized answer is a substring of the candidate)
//	1: count of answer fragments found inside the candidate
//	2: query-token focus ratio (scaled fraction of candidate tokens that are query tokens)
//	3: majority of candidate tokens are query tokens
//	4: distinct query tokens present
//	5: total query-token overlap
//	6: distinct answer tokens present
//	7: total answer-token overlap
//	8: label-prefix bonus
//	9: negative |candidate length - answer length| (prefers length-close candidates)
//	10: negative candidate length (prefers shorter among otherwise-equal candidates)
//
// Exact span containment is the strongest traceability signal; fragment and
// token overlaps are weaker but carry alignment when the model paraphrased;
// length closeness last avoids over-broad passages among equally relevant
// candidates.
type scoreTuple [11]int

// betterThan reports whether t strictly beats other.
func (t scoreTuple) betterThan(other scoreTuple) bool {
	for i := range t {
		if t[i] != other[i] {
			return t[i] > other[i]
		}
	}
	return false
}

// worseThan reports whether t strictly loses to other.
func (t scoreTuple) worseThan(other scoreTuple) bool {
	return other.betterThan(t)
}

// scoreContext carries the per-alignment inputs the scorer needs. Built once
// per alignment call and read-only afterwards, so candidate evaluation stays
// a stateless function of its parameters.
type scoreContext struct {
	normalizedAnswer string
	answerTokens     map[string]int
	answerFragments  []string // normalized fragments of the cleaned answer
	answerLength     int      // reference length in characters
	queryTokens      map[string]int
}

// scoredCandidate couples a candidate span with its score, its originating
// passage (nil for the baseline pseudo-candidate) and the raw overlap counts
// the aligner's threshold checks need.
type scoredCandidate struct {
	text           string
	source         *models.Passage
	score          scoreTuple
	answerDistinct int
	queryDistinct  int
	queryOverlap   int
}

// evaluateCandidate scores one candidate span against the alignment context.
// Returns nil when the candidate has no tokens, or when it shares no
// span/fragment/two-token overlap with the answer and query-only relevance is
// either absent or disallowed.
func evaluateCandidate(text string, source *models.Passage, sc *scoreContext, allowQueryOnly bool) *scoredCandidate {
	candidateTokens := Tokenize(text)
	totalTokens := tokenTotal(candidateTokens)
	if totalTokens == 0 {
		return nil
	}
	normalized := NormalizeForMatch(text)

	spanMatch := 0
	if sc.normalizedAnswer != "" && strings.Contains(normalized, sc.normalizedAnswer) {
		spanMatch = 1
	}

	fragmentMatches := 0
	for _, fragment := range sc.answerFragments {
		if strings.Contains(normalized, fragment) {
			fragmentMatches++
		}
	}

	answerDistinct, answerOverlap := tokenOverlap(candidateTokens, sc.answerTokens)
	queryDistinct, queryOverlap := tokenOverlap(candidateTokens, sc.queryTokens)

	if spanMatch == 0 && fragmentMatches == 0 && answerDistinct < 2 {
		if !allowQueryOnly || queryDistinct == 0 {
			return nil
		}
	}

	// Candidate token occurrences that are query tokens, for the focus ratio.
	queryTokenHits := 0
	for token, n := range candidateTokens {
		if _, ok := sc.queryTokens[token]; ok {
			queryTokenHits += n
		}
	}
	focusRatio := queryTokenHits * focusRatioScale / totalTokens
	majority := 0
	if queryTokenHits*2 > totalTokens {
		majority = 1
	}

	labelBonus := 0
	if labelPrefixPattern.MatchString(text) && answerDistinct > 0 {
		labelBonus = 1
	}

	lengthDiff := len(text) - sc.answerLength
	if lengthDiff < 0 {
		lengthDiff = -lengthDiff
	}

	return &scoredCandidate{
		text:   text,
		source: source,
		score: scoreTuple{
			spanMatch,
			fragmentMatches,
			focusRatio,
			majority,
			queryDistinct,
			queryOverlap,
			answerDistinct,
			answerOverlap,
			labelBonus,
			-lengthDiff,
			-len(text),
		},
		answerDistinct: answerDistinct,
		queryDistinct:  queryDistinct,
		queryOverlap:   queryOverlap,
	}
}

// betterCandidate folds a candidate into a best-so-far reducer slot.
func betterCandidate(best, candidate *scoredCandidate) *scoredCandidate {
	if candidate == nil {
		return best
	}
	if best == nil || candidate.score.betterThan(best.score) {
		return candidate
	}
	return best
}

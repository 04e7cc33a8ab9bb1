package answer

import (
	"sort"
	"strings"

	"github.com/ternarybob/trialwhisperer/internal/models"
)

// DefaultMaxCitations is the citation cap applied before coverage extension.
const DefaultMaxCitations = 3

// citationSignal holds the per-passage match signals the selector sorts and
// covers on.
type citationSignal struct {
	index     int
	span      bool
	fragments map[int]bool
	tokens    map[string]bool
	overlap   int
}

func (s citationSignal) any() bool {
	return s.span || len(s.fragments) > 0 || s.overlap > 0
}

// SelectCitations selects the citation passages that justify a cleaned
// answer. Passages are ranked by span match, matched fragment count, token
// overlap and original index, then taken greedily: always while fewer than
// maxDefault are selected, and beyond that only when a passage contributes a
// new span match, a new matched fragment, a new answer token, or a new
// section that carries some match signal. The result preserves the passages'
// original relative order. Coverage therefore scales with answer complexity
// without unbounded growth for simple answers.
func SelectCitations(answerText string, passages []models.Passage, maxDefault int) []models.Passage {
	if len(passages) == 0 {
		return nil
	}
	if maxDefault <= 0 {
		maxDefault = DefaultMaxCitations
	}

	cleaned := strings.TrimSpace(answerText)
	normalizedAnswer := NormalizeForMatch(cleaned)
	if normalizedAnswer == "" {
		n := maxDefault
		if len(passages) < n {
			n = len(passages)
		}
		result := make([]models.Passage, n)
		copy(result, passages[:n])
		return result
	}

	answerTokens := Tokenize(cleaned)
	fragments := normalizedFragments(cleaned)

	signals := make([]citationSignal, len(passages))
	for i, passage := range passages {
		signal := citationSignal{index: i, fragments: make(map[int]bool), tokens: make(map[string]bool)}
		normalizedPassage := NormalizeForMatch(passage.Text)
		if normalizedPassage != "" && strings.Contains(normalizedPassage, normalizedAnswer) {
			signal.span = true
		}
		for fi, fragment := range fragments {
			if strings.Contains(normalizedPassage, fragment) {
				signal.fragments[fi] = true
			}
		}
		for token, n := range Tokenize(passage.Text) {
			if answerCount, ok := answerTokens[token]; ok {
				signal.tokens[token] = true
				if n < answerCount {
					signal.overlap += n
				} else {
					signal.overlap += answerCount
				}
			}
		}
		signals[i] = signal
	}

	order := make([]int, len(passages))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		sa, sb := signals[order[a]], signals[order[b]]
		if sa.span != sb.span {
			return sa.span
		}
		if len(sa.fragments) != len(sb.fragments) {
			return len(sa.fragments) > len(sb.fragments)
		}
		if sa.overlap != sb.overlap {
			return sa.overlap > sb.overlap
		}
		return sa.index < sb.index
	})

	var selected []int
	haveSpan := false
	coveredFragments := make(map[int]bool)
	coveredTokens := make(map[string]bool)
	coveredSections := make(map[string]bool)

	for _, i := range order {
		signal := signals[i]
		include := len(selected) < maxDefault
		if !include {
			switch {
			case signal.span && !haveSpan:
				include = true
			case contributesNewFragment(signal, coveredFragments):
				include = true
			case contributesNewToken(signal, coveredTokens):
				include = true
			case signal.any() && !coveredSections[passages[i].Section]:
				include = true
			}
		}
		if !include {
			continue
		}
		selected = append(selected, i)
		if signal.span {
			haveSpan = true
		}
		for fi := range signal.fragments {
			coveredFragments[fi] = true
		}
		for token := range signal.tokens {
			coveredTokens[token] = true
		}
		if signal.any() {
			coveredSections[passages[i].Section] = true
		}
	}

	sort.Ints(selected) // original relative order
	result := make([]models.Passage, 0, len(selected))
	for _, i := range selected {
		result = append(result, passages[i])
	}
	return result
}

func contributesNewFragment(signal citationSignal, covered map[int]bool) bool {
	for fi := range signal.fragments {
		if !covered[fi] {
			return true
		}
	}
	return false
}

func contributesNewToken(signal citationSignal, covered map[string]bool) bool {
	for token := range signal.tokens {
		if !covered[token] {
			return true
		}
	}
	return false
}

package answer

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ternarybob/trialwhisperer/internal/models"
)

// DefaultContextChars is the context character budget used when none is
// configured.
const DefaultContextChars = 24000

// contextEllipsis terminates a truncated final context line.
const contextEllipsis = "…"

// SelectForContext selects and formats passages into a single context string
// within a character budget. Passages are taken in descending score order
// (ties and unscored passages keep their original relative order, unscored
// after scored) and rendered as numbered lines:
//
//	(1) [Trial NCT01234567] eligibility.inclusion: <text>
//
// A passage whose full line no longer fits is truncated to the remaining
// budget with a single ellipsis when the budget still exceeds its prefix
// length; otherwise selection stops. The returned context never exceeds
// maxChars.
func SelectForContext(passages []models.Passage, maxChars int) ([]models.Passage, string) {
	if maxChars <= 0 || len(passages) == 0 {
		return nil, ""
	}

	order := make([]int, len(passages))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		pa, pb := passages[order[a]], passages[order[b]]
		if pa.HasScore && pb.HasScore {
			return pa.Score > pb.Score
		}
		// Scored passages come first; within each group original order holds.
		return pa.HasScore && !pb.HasScore
	})

	var selected []models.Passage
	var lines []string
	total := 0

	for _, i := range order {
		passage := passages[i]
		prefix := fmt.Sprintf("(%d) [Trial %s] %s: ", len(lines)+1, passage.NCTID, passage.Section)
		line := prefix + passage.Text

		joinCost := 0
		if len(lines) > 0 {
			joinCost = 1 // joining newline
		}

		if total+joinCost+len(line) <= maxChars {
			lines = append(lines, line)
			selected = append(selected, passage)
			total += joinCost + len(line)
			continue
		}

		remaining := maxChars - total - joinCost
		if remaining <= len(prefix) {
			break
		}
		room := remaining - len(prefix) - len(contextEllipsis)
		if room < 1 {
			break
		}
		// Back off to a rune boundary so truncation never splits UTF-8.
		for room > 0 && !utf8.RuneStart(passage.Text[room]) {
			room--
		}
		if room < 1 {
			break
		}
		lines = append(lines, prefix+passage.Text[:room]+contextEllipsis)
		selected = append(selected, passage)
		break
	}

	return selected, strings.Join(lines, "\n")
}

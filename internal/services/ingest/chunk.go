package ingest

import (
	"strings"

	"github.com/ternarybob/trialwhisperer/internal/models"
)

// DefaultChunkChars is the target passage size in characters.
const DefaultChunkChars = 2000

// ChunkRecord turns a normalized trial into passages, splitting long
// sections at sentence boundaries near the target size. Chunks of the same
// section keep the section label so trial views can rejoin them.
func ChunkRecord(record trialRecord, targetChars int) []models.Passage {
	if targetChars <= 0 {
		targetChars = DefaultChunkChars
	}

	var passages []models.Passage
	for _, section := range record.Sections {
		for _, text := range splitToChunks(section.Text, targetChars) {
			passages = append(passages, models.Passage{
				NCTID:   record.NCTID,
				Section: section.Name,
				Text:    text,
			})
		}
	}
	return passages
}

// splitToChunks cuts text into pieces of at most targetChars, breaking at the
// last sentence end before the limit, then the last whitespace, then hard.
func splitToChunks(text string, targetChars int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= targetChars {
		return []string{text}
	}

	var chunks []string
	for len(text) > targetChars {
		cut := findSentenceCut(text, targetChars)
		if cut <= 0 {
			cut = findWhitespaceCut(text, targetChars)
		}
		if cut <= 0 {
			cut = targetChars
		}
		chunks = append(chunks, strings.TrimSpace(text[:cut]))
		text = strings.TrimSpace(text[cut:])
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}

// findSentenceCut returns the position just after the last sentence-ending
// punctuation within the limit, or 0 when none exists.
func findSentenceCut(text string, limit int) int {
	best := 0
	for i := 0; i < limit && i < len(text)-1; i++ {
		switch text[i] {
		case '.', '!', '?':
			if text[i+1] == ' ' || text[i+1] == '\n' {
				best = i + 1
			}
		case '\n':
			best = i + 1
		}
	}
	return best
}

func findWhitespaceCut(text string, limit int) int {
	for i := limit; i > 0; i-- {
		if text[i-1] == ' ' || text[i-1] == '\n' || text[i-1] == '\t' {
			return i
		}
	}
	return 0
}

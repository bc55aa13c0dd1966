package textproc

import (
	"regexp"
	"strings"
)

// DefaultMaxChunkSize is the default chunk budget in characters.
const DefaultMaxChunkSize = 6000

// DefaultOverlapSize is the default overlap between chunks in characters.
const DefaultOverlapSize = 500

// wordsPerGroup is the group size for the word-count fallback split.
const wordsPerGroup = 50

// sentenceBoundary matches a sentence end followed by the capital letter
// that starts the next sentence. Go regexp has no lookaround, so the
// splitter works from match indexes instead.
var sentenceBoundary = regexp.MustCompile(`[.!?]\s+[A-Z]`)

// paragraphBreak matches a blank-line paragraph separator.
var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// Split normalises text and cuts it into overlapping chunks of at most
// maxChunkSize characters. Text that fits the budget is returned as the
// sole chunk. Segmentation prefers sentence boundaries, falling back to
// paragraphs and then fixed word groups. A single unit longer than
// maxChunkSize is kept as an oversized chunk rather than hard-split.
func Split(text string, maxChunkSize, overlapSize int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultMaxChunkSize
	}
	if overlapSize < 0 {
		overlapSize = 0
	}
	if overlapSize >= maxChunkSize {
		overlapSize = maxChunkSize / 4
	}

	text = Normalize(text)
	if text == "" {
		return nil
	}
	if len(text) <= maxChunkSize {
		return []string{text}
	}

	units := splitUnits(text)

	var chunks []string
	var current strings.Builder
	overlap := ""

	for _, unit := range units {
		if current.Len() > 0 && current.Len()+1+len(unit) > maxChunkSize {
			// Flush and seed the next chunk with the overlap suffix.
			chunks = append(chunks, strings.TrimSpace(current.String()))
			seed := overlap
			current.Reset()
			if seed != "" {
				current.WriteString(seed)
				current.WriteString(" ")
			}
			current.WriteString(unit)
		} else {
			if current.Len() > 0 {
				current.WriteString(" ")
			}
			current.WriteString(unit)
		}
		if current.Len() > overlapSize {
			overlap = overlapSuffix(current.String(), overlapSize)
		}
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		chunks = append(chunks, s)
	}

	return chunks
}

// splitUnits segments text into sentence-like units with two fallbacks:
// paragraph breaks, then fixed-size word groups.
func splitUnits(text string) []string {
	units := splitSentences(text)
	if len(units) > 1 {
		return units
	}

	// Normalization collapses blank lines before Split gets here, so
	// this fallback never fires on normalized input; it matters only
	// for text that bypassed Normalize.
	units = nonEmpty(paragraphBreak.Split(text, -1))
	if len(units) > 1 {
		return units
	}

	words := strings.Fields(text)
	units = units[:0]
	for i := 0; i < len(words); i += wordsPerGroup {
		end := i + wordsPerGroup
		if end > len(words) {
			end = len(words)
		}
		units = append(units, strings.Join(words[i:end], " "))
	}
	return units
}

// splitSentences cuts text at sentence-ending punctuation followed by a
// capital letter. The punctuation stays with the preceding sentence.
func splitSentences(text string) []string {
	locs := sentenceBoundary.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []string{strings.TrimSpace(text)}
	}

	sentences := make([]string, 0, len(locs)+1)
	prev := 0
	for _, loc := range locs {
		// loc[0] is the punctuation mark, loc[1]-1 the capital letter.
		sentences = append(sentences, strings.TrimSpace(text[prev:loc[0]+1]))
		prev = loc[1] - 1
	}
	sentences = append(sentences, strings.TrimSpace(text[prev:]))
	return nonEmpty(sentences)
}

// overlapSuffix returns the last overlapSize characters of text, moved
// forward to the next word boundary when a space occurs within the first
// half of the window.
func overlapSuffix(text string, overlapSize int) string {
	if overlapSize <= 0 {
		return ""
	}
	if len(text) <= overlapSize {
		return text
	}

	suffix := text[len(text)-overlapSize:]
	if idx := strings.IndexByte(suffix, ' '); idx >= 0 && idx < overlapSize/2 {
		suffix = suffix[idx+1:]
	}
	return suffix
}

func nonEmpty(parts []string) []string {
	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

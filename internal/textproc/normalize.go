// Package textproc prepares raw document text for embedding: markup
// stripping, whitespace normalisation and overlapping chunking.
package textproc

import (
	"regexp"
	"strings"
)

// Pre-compiled regular expressions for text normalisation performance.
var (
	scriptTag   = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag    = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	allTags     = regexp.MustCompile(`<[^>]+>`)
	whitespace  = regexp.MustCompile(`\s+`)
	controlChar = regexp.MustCompile(`[\x00-\x1F\x7F]`)
)

// Normalize strips markup tags, collapses consecutive whitespace to single
// spaces, trims, and removes control characters. Pure function.
func Normalize(text string) string {
	// Remove script and style blocks entirely; their text is noise.
	text = scriptTag.ReplaceAllString(text, "")
	text = styleTag.ReplaceAllString(text, "")

	// Strip remaining tags, leaving a space so adjacent words don't fuse.
	text = allTags.ReplaceAllString(text, " ")

	text = whitespace.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)
	text = controlChar.ReplaceAllString(text, "")

	return text
}

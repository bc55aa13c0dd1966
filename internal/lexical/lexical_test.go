package lexical

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize_LowercasesAndTrims(t *testing.T) {
	got := Tokenize("Hello, World!")
	assert.Equal(t, []string{"hello", "world"}, got)
}

func TestTokenize_RemovesStopWords(t *testing.T) {
	got := Tokenize("the cat is on a mat")
	assert.Equal(t, []string{"cat", "mat"}, got)
}

func TestTokenize_Stemming(t *testing.T) {
	assert.Equal(t, []string{"company"}, Tokenize("companies"))
	assert.Equal(t, []string{"company"}, Tokenize("company's"))
	assert.Equal(t, []string{"page"}, Tokenize("pages"))
	// Double-s words are not singular forms.
	assert.Equal(t, []string{"address"}, Tokenize("address"))
}

func TestTerms_TitleWeighted(t *testing.T) {
	terms := Terms("Contact", "Contact details and phone")
	assert.Equal(t, titleWeight+1, terms["contact"])
	assert.Equal(t, 1, terms["phone"])
}

func TestRank_ZeroWithoutMatch(t *testing.T) {
	terms := Terms("Contact", "Phone: 123")
	assert.Zero(t, Rank("welcome company", terms))
}

func TestRank_FullMatchBeatsPartial(t *testing.T) {
	home := Terms("Home", "Welcome to our company")
	contact := Terms("Contact", "Welcome desk phone numbers")

	full := Rank("welcome company", home)
	partial := Rank("welcome company", contact)

	assert.Greater(t, full, partial)
	assert.Greater(t, partial, 0.0)
}

func TestRank_BoundedBelowOne(t *testing.T) {
	terms := Terms("spam", "spam spam spam spam spam spam")
	r := Rank("spam", terms)
	assert.Greater(t, r, 0.0)
	assert.Less(t, r, 1.0)
}

func TestRank_EmptyQuery(t *testing.T) {
	assert.Zero(t, Rank("", map[string]int{"x": 1}))
	assert.Zero(t, Rank("the of and", map[string]int{"x": 1}))
}

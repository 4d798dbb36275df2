package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", []string{}},
		{"punctuation", "Hello, World!", []string{"hello", "world"}},
		{"apostrophes", "It's the 'binary' tree", []string{"it's", "the", "binary", "tree"}},
		{"digits", "O(log n) in 2 steps", []string{"o", "log", "n", "in", "2", "steps"}},
		{"unicode", "Ärger über Bäume", []string{"ärger", "über", "bäume"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.in))
		})
	}
}

func TestSentences(t *testing.T) {
	got := Sentences("First one. Second one!\nThird?  ")
	assert.Equal(t, []string{"First one", "Second one", "Third"}, got)
	assert.Empty(t, Sentences("   "))
}

func TestStemSet(t *testing.T) {
	set := StemSet("The trees are balancing and searching", 2)
	assert.Contains(t, set, Stem("trees"))
	assert.Contains(t, set, Stem("searching"))
	assert.NotContains(t, set, "the")
	assert.NotContains(t, set, "are")
	assert.Equal(t, Stem("searching"), Stem("searches"))
}

func TestSentiment(t *testing.T) {
	assert.Zero(t, Sentiment(nil))
	assert.Zero(t, Sentiment([]string{"binary", "tree"}))
	assert.Greater(t, Sentiment(Tokenize("I am confident this is a great solution")), 0.0)
	assert.Less(t, Sentiment(Tokenize("maybe it is wrong, I guess")), 0.0)
	assert.InDelta(t, 1.5, Sentiment([]string{"good", "tree"}), 1e-9)
}

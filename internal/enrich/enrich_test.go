// ABOUTME: Tests for text enrichment
// ABOUTME: Covers correction tables, fuzzy matching, tone detection and suggestions

package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAutoCorrect_DictionaryHits(t *testing.T) {
	cases := map[string]string{
		"plz send thx":   "please send thanks",
		"luv u":          "love you",
		"gud mornin frnd": "good morning friend",
		"already fine":   "already fine",
	}
	for in, want := range cases {
		assert.Equal(t, want, AutoCorrect(in), "input %q", in)
	}
}

func TestAutoCorrect_FuzzyMatch(t *testing.T) {
	// One edit away from a dictionary key.
	assert.Equal(t, "please", AutoCorrect("pls"))
}

func TestDetectTone(t *testing.T) {
	cases := map[string]Tone{
		"i am so happy today":   ToneHappy,
		"feeling sad and tired": ToneSad,
		"this makes me furious": ToneAngry,
		"you are so sweet":      ToneLove,
		"omg no way":            ToneSurprise,
		"the meeting is at two": ToneNeutral,
		"":                      ToneNeutral,
	}
	for in, want := range cases {
		assert.Equal(t, want, DetectTone(in), "input %q", in)
	}
}

func TestDetectTone_FixedPriority(t *testing.T) {
	// happy is checked before sad, so mixed input resolves to happy.
	assert.Equal(t, ToneHappy, DetectTone("happy but sad"))
}

func TestSuggestEmojis(t *testing.T) {
	got := SuggestEmojis("coffee and music make me happy")
	assert.Contains(t, got, "☕")
	assert.Contains(t, got, "🎵")
	assert.Contains(t, got, "😊")
}

func TestSuggestEmojis_Phrases(t *testing.T) {
	assert.Contains(t, SuggestEmojis("thank you so much"), "🙏")
	assert.Contains(t, SuggestEmojis("good night everyone"), "🌙😴")
	assert.Empty(t, SuggestEmojis("nothing matches here"))
}

func TestSuggestEmojis_Deterministic(t *testing.T) {
	first := SuggestEmojis("love coffee love music")
	second := SuggestEmojis("love coffee love music")
	assert.Equal(t, first, second)
}

func TestReplaceWithEmojis(t *testing.T) {
	assert.Equal(t, "love ❤️ that", ReplaceWithEmojis("love that"))
	assert.Equal(t, "morning coffee ☕!", ReplaceWithEmojis("morning coffee!"))
	assert.Equal(t, "no triggers here", ReplaceWithEmojis("no triggers here"))
}

func TestReplaceWithEmojis_Phrases(t *testing.T) {
	assert.Equal(t, "good night 🌙😴 all", ReplaceWithEmojis("good night all"))
}

func TestEnhance_Pipeline(t *testing.T) {
	res := Enhance("i luv coffee")
	assert.Equal(t, "i luv coffee", res.Original)
	assert.Equal(t, "i love coffee", res.Corrected)
	assert.Equal(t, "i love ❤️ coffee ☕", res.Enhanced)
	assert.Equal(t, ToneLove, res.Tone)
	assert.Contains(t, res.Suggestions, "❤️")
	assert.Contains(t, res.Suggestions, "☕")
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein("same", "same"))
	assert.Equal(t, 1, levenshtein("plz", "pls"))
	assert.Equal(t, 3, levenshtein("", "abc"))
	assert.Equal(t, 2, levenshtein("kitten", "sittin"))
}

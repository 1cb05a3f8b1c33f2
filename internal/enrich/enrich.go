// ABOUTME: Pure text enrichment: auto-correction, tone detection, emoji suggestions
// ABOUTME: Applied before display; never required for the send/receive contract

package enrich

import (
	"sort"
	"strings"
)

// Tone is a detected emotion category.
type Tone string

const (
	ToneHappy    Tone = "happy"
	ToneSad      Tone = "sad"
	ToneAngry    Tone = "angry"
	ToneLove     Tone = "love"
	ToneSurprise Tone = "surprise"
	ToneNeutral  Tone = "neutral"
)

// Result is the output of Enhance.
type Result struct {
	Original    string
	Corrected   string
	Enhanced    string // corrected text with emojis appended after trigger words
	Tone        Tone
	Suggestions []string // emoji suggestions, deterministic order
}

// correctionDictionary maps common shorthand and misspellings to their
// corrected forms.
var correctionDictionary = map[string]string{
	"hapy":  "happy",
	"luv":   "love",
	"gud":   "good",
	"thanx": "thanks",
	"tnx":   "thanks",
	"thx":   "thanks",
	"plz":   "please",
	"oky":   "okay",
	"gnite": "goodnight",
	"nite":  "night",
	"mornin": "morning",
	"frnd":  "friend",
	"tmrw":  "tomorrow",
	"sry":   "sorry",
	"u":     "you",
	"ur":    "your",
	"r":     "are",
	"wht":   "what",
	"wats":  "what's",
	"becos": "because",
}

// toneWords maps each tone to its trigger keywords. Checked in a fixed order
// so overlapping inputs resolve the same way every time.
var toneOrder = []Tone{ToneHappy, ToneSad, ToneAngry, ToneLove, ToneSurprise}

var toneWords = map[Tone][]string{
	ToneHappy:    {"happy", "joy", "excited", "great", "fun", "awesome", "good"},
	ToneSad:      {"sad", "tired", "depressed", "unhappy", "down"},
	ToneAngry:    {"angry", "mad", "furious", "hate", "annoyed"},
	ToneLove:     {"love", "heart", "dear", "sweet", "cute", "romantic"},
	ToneSurprise: {"wow", "amazing", "unbelievable", "omg", "shocked"},
}

// emojiDictionary maps keywords to emoji suggestions.
var emojiDictionary = map[string]string{
	"happy": "😊", "joy": "😁", "laugh": "😂", "love": "❤️", "like": "👍",
	"fire": "🔥", "sad": "😢", "cry": "😭", "angry": "😡", "wow": "😮",
	"shocked": "😲", "tired": "😴", "sleep": "😪", "food": "🍔", "drink": "🥤",
	"coffee": "☕", "sun": "☀️", "moon": "🌙", "star": "⭐", "cool": "😎",
	"sick": "🤒", "thank": "🙏", "please": "🫶", "hug": "🤗", "ok": "👌",
	"party": "🎉", "gift": "🎁", "birthday": "🎂", "kiss": "😘", "rain": "🌧️",
	"money": "💰", "idea": "💡", "win": "🏆", "music": "🎵", "dance": "💃",
	"game": "🎮", "school": "🏫", "work": "💼", "success": "🚀",
}

// phraseSuggestions handles multi-word detection that word matching misses.
var phraseSuggestions = map[string]string{
	"thank you":    "🙏",
	"good night":   "🌙😴",
	"good morning": "🌞☕",
}

// AutoCorrect fixes shorthand word by word. Exact dictionary hits win;
// otherwise the closest dictionary key within Levenshtein distance 1 is used.
func AutoCorrect(message string) string {
	words := strings.Fields(message)
	for i, word := range words {
		lower := strings.ToLower(word)
		if fixed, ok := correctionDictionary[lower]; ok {
			words[i] = fixed
			continue
		}

		// Fuzzy matching only for words long enough that one edit is
		// meaningful; "i" is not a typo of "u".
		if len([]rune(lower)) < 3 {
			continue
		}
		best := lower
		minDistance := 2 // tolerance
		for wrong, correct := range correctionDictionary {
			if d := levenshtein(lower, wrong); d < minDistance {
				minDistance = d
				best = correct
			}
		}
		words[i] = best
	}
	return strings.Join(words, " ")
}

// DetectTone returns the first tone whose keywords appear in the message,
// or ToneNeutral.
func DetectTone(message string) Tone {
	lower := strings.ToLower(message)
	for _, tone := range toneOrder {
		for _, kw := range toneWords[tone] {
			if strings.Contains(lower, kw) {
				return tone
			}
		}
	}
	return ToneNeutral
}

// SuggestEmojis returns emoji suggestions for a message, sorted for
// deterministic output.
func SuggestEmojis(message string) []string {
	lower := strings.ToLower(message)
	seen := make(map[string]struct{})

	for _, word := range strings.Fields(lower) {
		for key, emoji := range emojiDictionary {
			if strings.Contains(word, key) {
				seen[emoji] = struct{}{}
			}
		}
	}
	for phrase, emoji := range phraseSuggestions {
		if strings.Contains(lower, phrase) {
			seen[emoji] = struct{}{}
		}
	}

	suggestions := make([]string, 0, len(seen))
	for emoji := range seen {
		suggestions = append(suggestions, emoji)
	}
	sort.Strings(suggestions)
	return suggestions
}

// ReplaceWithEmojis appends the matching emoji after each trigger word and
// phrase. The words themselves are kept; the emoji decorates, never replaces.
func ReplaceWithEmojis(message string) string {
	words := strings.Fields(message)
	for i, word := range words {
		trimmed := strings.ToLower(strings.Trim(word, ".,!?;:"))
		emoji, ok := emojiDictionary[trimmed]
		if !ok {
			continue
		}
		// Insert after the word itself, before any trailing punctuation.
		idx := strings.Index(strings.ToLower(word), trimmed)
		end := idx + len(trimmed)
		words[i] = word[:end] + " " + emoji + word[end:]
	}
	updated := strings.Join(words, " ")

	phrases := make([]string, 0, len(phraseSuggestions))
	for phrase := range phraseSuggestions {
		phrases = append(phrases, phrase)
	}
	sort.Strings(phrases)
	lower := strings.ToLower(updated)
	for _, phrase := range phrases {
		if idx := strings.Index(lower, phrase); idx >= 0 {
			end := idx + len(phrase)
			updated = updated[:end] + " " + phraseSuggestions[phrase] + updated[end:]
			lower = strings.ToLower(updated)
		}
	}
	return updated
}

// Enhance runs the full pipeline: correction, decoration, tone, suggestions.
func Enhance(message string) Result {
	corrected := AutoCorrect(message)
	return Result{
		Original:    message,
		Corrected:   corrected,
		Enhanced:    ReplaceWithEmojis(corrected),
		Tone:        DetectTone(corrected),
		Suggestions: SuggestEmojis(corrected),
	}
}

// levenshtein computes the edit distance between two strings.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// ABOUTME: Tests for the simulated agent reply engine
// ABOUTME: Covers rule priority, phrase pools, generic fallback and delay bounds

package reply

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onet/emotia/internal/persona"
)

func seededEngine(t *testing.T, seed int64) *Engine {
	t.Helper()
	return NewEngine(persona.Builtin(), nil, WithSeed(seed))
}

func TestReply_PrimaryGreetingRule(t *testing.T) {
	e := seededEngine(t, 1)

	for _, in := range []string{"hello", "Hi there", "HELLO friend", "well hi"} {
		r := e.Reply(persona.PrimaryID, in)
		assert.Equal(t, "Hello! How are you feeling today?", r.Text, "input %q", in)
	}
}

func TestReply_PrimaryCategoryRules(t *testing.T) {
	e := seededEngine(t, 1)

	cases := map[string]string{
		"i feel sad today":    "I can learn from this—tell me more.",
		"so angry right now":  "Let’s calm down together 💨",
		"feeling happy!":      "That’s wonderful to hear 😄!",
		"i love this weather": "aww tell me more about that",
	}
	for in, want := range cases {
		r := e.Reply(persona.PrimaryID, in)
		assert.Equal(t, want, r.Text, "input %q", in)
	}
}

func TestReply_PrimaryRulePriority(t *testing.T) {
	e := seededEngine(t, 1)

	// Greeting outranks the sadness rule when both keywords appear.
	r := e.Reply(persona.PrimaryID, "hi, i am sad")
	assert.Equal(t, "Hello! How are you feeling today?", r.Text)
}

func TestReply_PrimaryEmptyInput(t *testing.T) {
	e := seededEngine(t, 1)

	for _, in := range []string{"", "   ", "\t\n"} {
		r := e.Reply(persona.PrimaryID, in)
		assert.Equal(t, "Say anything — I'm listening.", r.Text, "input %q", in)
	}
}

func TestReply_PrimaryFallback(t *testing.T) {
	e := seededEngine(t, 1)

	r := e.Reply(persona.PrimaryID, "quantum chromodynamics")
	assert.Equal(t, "Interesting thought. I’ll remember that.", r.Text)
}

func TestReply_KnownAgentDrawsFromOwnPool(t *testing.T) {
	e := seededEngine(t, 42)
	pack := persona.Builtin()
	demi, ok := pack.Lookup("demi-ai")
	require.True(t, ok)

	for i := 0; i < 50; i++ {
		r := e.Reply("demi-ai", "anything at all")
		assert.Contains(t, demi.Phrases, r.Text)
	}
}

func TestReply_KnownAgentDeterministicUnderSeed(t *testing.T) {
	first := seededEngine(t, 7)
	second := seededEngine(t, 7)

	for i := 0; i < 10; i++ {
		a := first.Reply("alex-ai", "what's up")
		b := second.Reply("alex-ai", "what's up")
		assert.Equal(t, a.Text, b.Text)
		assert.Equal(t, a.ThinkDelay, b.ThinkDelay)
	}
}

func TestReply_UnknownAgentUsesGenericPool(t *testing.T) {
	e := seededEngine(t, 3)
	generic := persona.Builtin().GenericPhrases()

	for i := 0; i < 20; i++ {
		r := e.Reply("mystery-bot", "hm")
		assert.Contains(t, generic, r.Text)
	}
}

func TestReply_DelayWithinBounds(t *testing.T) {
	min, max := 100*time.Millisecond, 300*time.Millisecond
	e := NewEngine(persona.Builtin(), nil, WithSeed(5), WithDelayRange(min, max))

	for i := 0; i < 200; i++ {
		r := e.Reply("demi-ai", "hey")
		assert.GreaterOrEqual(t, r.ThinkDelay, min)
		assert.LessOrEqual(t, r.ThinkDelay, max)
	}
}

func TestReply_DefaultDelayRange(t *testing.T) {
	e := seededEngine(t, 9)

	for i := 0; i < 50; i++ {
		r := e.Reply(persona.PrimaryID, "hello")
		assert.GreaterOrEqual(t, r.ThinkDelay, 900*time.Millisecond)
		assert.LessOrEqual(t, r.ThinkDelay, 2100*time.Millisecond)
	}
}

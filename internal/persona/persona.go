// ABOUTME: Persona definitions for simulated agents: identities, rules, phrase sets
// ABOUTME: Ships a built-in demo set; TOML pack files may add or override personas

package persona

import (
	"fmt"

	"github.com/onet/emotia/internal/identity"
)

// Rule is one keyword-category rule for the primary persona. Rules are
// evaluated in slice order against the lowercased input; the first match wins.
type Rule struct {
	Keywords []string
	Reply    string
}

// Persona describes one simulated agent.
type Persona struct {
	ID        string
	Name      string
	MoodEmoji string
	MoodKey   string
	ColorTag  string
	Phrases   []string // reply pool for non-primary personas
}

// Pack is a resolved persona set. Exactly one persona is primary: it answers
// with the keyword rules instead of a phrase pool.
type Pack struct {
	primaryID string
	order     []string
	personas  map[string]Persona

	rules          []Rule
	emptyReply     string
	primaryDefault string
	generic        []string
}

// PrimaryID is the distinguished rule-driven persona in the built-in set.
const PrimaryID = "aya-x"

// Builtin returns the compiled-in persona set: the rule-driven primary plus
// three phrase-pool personas, matching the demo agents users already know.
func Builtin() *Pack {
	p := &Pack{
		primaryID: PrimaryID,
		personas:  make(map[string]Persona),
		rules: []Rule{
			{Keywords: []string{"hello", "hi"}, Reply: "Hello! How are you feeling today?"},
			{Keywords: []string{"sad"}, Reply: "I can learn from this—tell me more."},
			{Keywords: []string{"angry"}, Reply: "Let’s calm down together 💨"},
			{Keywords: []string{"happy"}, Reply: "That’s wonderful to hear 😄!"},
			{Keywords: []string{"love"}, Reply: "aww tell me more about that"},
		},
		emptyReply:     "Say anything — I'm listening.",
		primaryDefault: "Interesting thought. I’ll remember that.",
		generic: []string{
			"Nice!",
			"Tell me more.",
			"I see — keep going.",
			"That sounds interesting.",
		},
	}

	for _, per := range []Persona{
		{ID: PrimaryID, Name: "AYA-X", MoodEmoji: "🤖", MoodKey: "focused", ColorTag: "#00ffa3"},
		{ID: "alex-ai", Name: "Alex", MoodEmoji: "😎", MoodKey: "happy", ColorTag: "#FFD93D", Phrases: []string{
			"Music is therapy 🎧",
			"Chill vibes only 😎",
			"Let’s just relax a bit.",
			"Coffee and good tunes — perfect day.",
			"Tell me what's playing in your head.",
		}},
		{ID: "demi-ai", Name: "Demi", MoodEmoji: "😊", MoodKey: "calm", ColorTag: "#63d2ff", Phrases: []string{
			"You’re adorable 😍",
			"Keep smiling 🌸",
			"Let’s make today awesome!",
			"You’re one of my favorite people!",
			"Let's have fun!",
			"Are you alright?",
			"Haha that's funny!",
		}},
		{ID: "clarissa-ai", Name: "Clarissa", MoodEmoji: "💬", MoodKey: "love", ColorTag: "#ff7eb3", Phrases: []string{
			"Love conquers all 💖",
			"You have such a kind soul.",
			"The world shines brighter when you smile 🌷",
			"Let your heart stay open 💕",
			"Care to share something sweet?",
		}},
	} {
		p.personas[per.ID] = per
		p.order = append(p.order, per.ID)
	}

	return p
}

// Lookup returns the persona with the given id.
func (p *Pack) Lookup(id string) (Persona, bool) {
	per, ok := p.personas[id]
	return per, ok
}

// Primary returns the rule-driven persona.
func (p *Pack) Primary() Persona {
	return p.personas[p.primaryID]
}

// IsPrimary reports whether id names the rule-driven persona.
func (p *Pack) IsPrimary(id string) bool {
	return id == p.primaryID
}

// Rules returns the primary persona's keyword rules in priority order.
func (p *Pack) Rules() []Rule { return p.rules }

// EmptyReply is the primary persona's answer to blank input.
func (p *Pack) EmptyReply() string { return p.emptyReply }

// PrimaryFallback is the primary persona's answer when no rule matches.
func (p *Pack) PrimaryFallback() string { return p.primaryDefault }

// GenericPhrases is the reply pool for unknown agent ids.
func (p *Pack) GenericPhrases() []string { return p.generic }

// All returns every persona in registration order.
func (p *Pack) All() []Persona {
	out := make([]Persona, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.personas[id])
	}
	return out
}

// Identities projects the pack into directory entries for the peer list.
func (p *Pack) Identities() []identity.Identity {
	out := make([]identity.Identity, 0, len(p.order))
	for _, id := range p.order {
		per := p.personas[id]
		out = append(out, identity.Identity{
			ID:          per.ID,
			DisplayName: per.Name,
			Kind:        identity.KindSimulated,
			ColorTag:    per.ColorTag,
			MoodEmoji:   per.MoodEmoji,
			MoodKey:     per.MoodKey,
		})
	}
	return out
}

// add inserts or overrides a persona. Overrides keep the original position.
func (p *Pack) add(per Persona) error {
	if per.ID == "" {
		return fmt.Errorf("persona id is required")
	}
	if per.Name == "" {
		return fmt.Errorf("persona %s: name is required", per.ID)
	}
	if !p.IsPrimary(per.ID) && len(per.Phrases) == 0 {
		return fmt.Errorf("persona %s: at least one phrase is required", per.ID)
	}

	if existing, ok := p.personas[per.ID]; ok {
		// Merge override: keep prior presentation fields unless replaced.
		if per.MoodEmoji == "" {
			per.MoodEmoji = existing.MoodEmoji
		}
		if per.MoodKey == "" {
			per.MoodKey = existing.MoodKey
		}
		if per.ColorTag == "" {
			per.ColorTag = existing.ColorTag
		}
	} else {
		p.order = append(p.order, per.ID)
	}
	p.personas[per.ID] = per
	return nil
}

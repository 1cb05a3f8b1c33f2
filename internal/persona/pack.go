// ABOUTME: TOML persona pack loading with validation
// ABOUTME: Pack files extend or override the built-in persona set

package persona

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// packFile is the on-disk TOML shape.
//
//	[[personas]]
//	id = "demi-ai"
//	name = "Demi"
//	mood_emoji = "😊"
//	mood_key = "calm"
//	color_tag = "#63d2ff"
//	phrases = ["Keep smiling 🌸"]
type packFile struct {
	Personas []personaEntry `toml:"personas"`
}

type personaEntry struct {
	ID        string   `toml:"id"`
	Name      string   `toml:"name"`
	MoodEmoji string   `toml:"mood_emoji"`
	MoodKey   string   `toml:"mood_key"`
	ColorTag  string   `toml:"color_tag"`
	Phrases   []string `toml:"phrases"`
}

// LoadPack reads a TOML pack file and applies it over the built-in set.
// Entries with known ids override phrase sets and presentation; new ids add
// personas. The primary persona's rule table cannot be replaced by a pack.
func LoadPack(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading persona pack: %w", err)
	}

	var file packFile
	if _, err := toml.Decode(string(data), &file); err != nil {
		return nil, fmt.Errorf("parsing persona pack: %w", err)
	}

	pack := Builtin()
	for _, entry := range file.Personas {
		per := Persona{
			ID:        entry.ID,
			Name:      entry.Name,
			MoodEmoji: entry.MoodEmoji,
			MoodKey:   entry.MoodKey,
			ColorTag:  entry.ColorTag,
			Phrases:   entry.Phrases,
		}
		if err := pack.add(per); err != nil {
			return nil, fmt.Errorf("validating persona pack: %w", err)
		}
	}
	return pack, nil
}

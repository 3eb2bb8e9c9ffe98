package registry

import (
	"fmt"

	"github.com/vovakirdan/liminal/internal/level"
	"github.com/vovakirdan/liminal/internal/levels"
	"github.com/vovakirdan/liminal/internal/procgen"
)

// RandomPrefix prefixes the ids of procedural entries. "random" alone picks
// the theme by difficulty.
const RandomPrefix = "random"

func init() {
	builtin, err := levels.Builtin()
	if err != nil {
		panic(fmt.Sprintf("registry: %v", err))
	}
	for _, l := range builtin {
		def := l.Definition
		Register(Entry{
			ID:          def.ID,
			Title:       def.Name,
			Description: l.Metadata["description"],
			Kind:        KindBuiltin,
			MinPlayers:  def.MinPlayers,
			MaxPlayers:  def.MaxPlayers,
		}, func(Params) (level.Definition, error) {
			return def, nil
		})
	}

	Register(Entry{
		ID:          RandomPrefix,
		Title:       "Random",
		Description: "A generated level; the theme follows difficulty.",
		Kind:        KindProcedural,
		MinPlayers:  1,
	}, procedural(""))

	for _, tpl := range procgen.Templates() {
		Register(Entry{
			ID:          RandomPrefix + "-" + tpl.Theme,
			Title:       "Random " + tpl.Theme,
			Description: tpl.Intro,
			Kind:        KindProcedural,
			MinPlayers:  1,
		}, procedural(tpl.Theme))
	}
}

func procedural(theme string) Factory {
	return func(p Params) (level.Definition, error) {
		gen, err := procgen.Generate(procgen.Config{
			Seed:        p.Seed,
			Difficulty:  p.Difficulty,
			Theme:       theme,
			PlayerCount: p.Players,
			Modifiers:   p.Modifiers,
		})
		if err != nil {
			return level.Definition{}, err
		}
		return gen.Definition, nil
	}
}

package levels_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/liminal/internal/core"
	"github.com/vovakirdan/liminal/internal/engine"
	"github.com/vovakirdan/liminal/internal/level"
	"github.com/vovakirdan/liminal/internal/levels"
	"github.com/vovakirdan/liminal/internal/levels/formats"
	"github.com/vovakirdan/liminal/internal/procgen"
)

const corridorYAML = `
id: corridor
name: Corridor
dimensions: [hall]
nodes:
  - {id: a, type: origin, at: [0, 0]}
  - {id: b, type: destination, at: [5, 0, 1]}
edges:
  - {from: a, to: b}
victory: {type: reach, targets: [b]}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestLoaderLoadAll(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yaml", corridorYAML)
	writeFile(t, dir, "a.yml", "id: alley\ndimensions: [x]\nnodes: []\nedges: []\nvictory: {type: reach, targets: [z]}\n")
	writeFile(t, dir, "broken.yaml", "id: [not, a, string")
	writeFile(t, dir, "notes.txt", "ignored")

	lvls, err := levels.NewLoader(dir).LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(lvls) != 2 {
		t.Fatalf("expected 2 levels, got %d", len(lvls))
	}
	if lvls[0].ID() != "alley" || lvls[1].ID() != "corridor" {
		t.Errorf("levels not sorted: %s, %s", lvls[0].ID(), lvls[1].ID())
	}
}

func TestLoaderLoadFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "corridor.yaml", corridorYAML)

	lvl, err := levels.NewLoader("").LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	def := lvl.Definition
	if def.Name != "Corridor" {
		t.Errorf("Name = %q, expected Corridor", def.Name)
	}
	if def.Nodes[0].Dimension != "hall" {
		t.Errorf("default dimension = %q, expected hall", def.Nodes[0].Dimension)
	}
	if def.Nodes[1].Position != (core.Vec3{X: 5, Z: 1}) {
		t.Errorf("position = %+v, expected {5 0 1}", def.Nodes[1].Position)
	}
	if def.Edges[0].Type != level.EdgeSolid {
		t.Errorf("default edge type = %q, expected solid", def.Edges[0].Type)
	}
	if def.MinPlayers != 1 || def.MaxPlayers != 1 {
		t.Errorf("players = %d..%d, expected 1..1", def.MinPlayers, def.MaxPlayers)
	}
	if lvl.FilePath != path {
		t.Errorf("FilePath = %q, expected %q", lvl.FilePath, path)
	}
}

func TestLoadByID(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "corridor.yaml", corridorYAML)
	loader := levels.NewLoader(dir)

	if _, err := loader.LoadByID("corridor"); err != nil {
		t.Errorf("LoadByID(corridor) failed: %v", err)
	}
	lvl, err := loader.LoadByID("first-light")
	if err != nil {
		t.Fatalf("LoadByID(first-light) failed: %v", err)
	}
	if !lvl.Builtin {
		t.Error("first-light should come from the built-in set")
	}
	if _, err := loader.LoadByID("missing"); !errors.Is(err, levels.ErrLevelNotFound) {
		t.Errorf("LoadByID(missing) = %v, expected ErrLevelNotFound", err)
	}
}

func TestBuiltinLevelsValidate(t *testing.T) {
	lvls, err := levels.Builtin()
	if err != nil {
		t.Fatalf("Builtin failed: %v", err)
	}
	if len(lvls) < 4 {
		t.Fatalf("expected at least 4 built-in levels, got %d", len(lvls))
	}
	for _, lvl := range lvls {
		if err := level.Validate(lvl.Definition); err != nil {
			t.Errorf("built-in level %s invalid: %v", lvl.ID(), err)
		}
	}
}

func TestMarshalRoundTripGenerated(t *testing.T) {
	gen, err := procgen.Generate(procgen.Config{Seed: 8, Difficulty: 4})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	data, err := formats.MarshalYAML(gen.Definition, map[string]string{"share_code": gen.Metadata.ShareCode})
	if err != nil {
		t.Fatalf("MarshalYAML failed: %v", err)
	}
	parsed, err := formats.ParseYAML(data)
	if err != nil {
		t.Fatalf("ParseYAML failed: %v", err)
	}

	got := parsed.Definition
	if len(got.Nodes) != len(gen.Definition.Nodes) || len(got.Edges) != len(gen.Definition.Edges) {
		t.Errorf("round trip changed size: %d/%d nodes, %d/%d edges",
			len(got.Nodes), len(gen.Definition.Nodes), len(got.Edges), len(gen.Definition.Edges))
	}
	if len(got.Triggers) != len(gen.Definition.Triggers) {
		t.Errorf("round trip lost triggers: %d, expected %d", len(got.Triggers), len(gen.Definition.Triggers))
	}
	if parsed.Metadata["share_code"] != gen.Metadata.ShareCode {
		t.Errorf("metadata share_code = %q", parsed.Metadata["share_code"])
	}
	if err := level.Validate(got); err != nil {
		t.Errorf("round-tripped level invalid: %v", err)
	}
}

func builtin(t *testing.T, id string) *engine.Runtime {
	t.Helper()
	lvl, err := levels.NewLoader("").LoadByID(id)
	if err != nil {
		t.Fatalf("LoadByID(%s) failed: %v", id, err)
	}
	r := engine.New(level.Build(lvl.Definition))
	r.Start()
	return r
}

func mustMove(t *testing.T, r *engine.Runtime, p core.PlayerID, path ...string) {
	t.Helper()
	for _, id := range path {
		if !r.MovePlayer(p, id) {
			t.Fatalf("MovePlayer(%s, %s) failed", p, id)
		}
	}
}

func TestFirstLightSolution(t *testing.T) {
	r := builtin(t, "first-light")
	r.Join("p1")
	mustMove(t, r, "p1", "path", "plate")
	r.Update(1200)
	r.Update(16)
	mustMove(t, r, "p1", "door", "light")
	r.Update(16)

	if !r.Level().Completed {
		t.Fatal("first-light not completed")
	}
	if got := r.Level().CompletedObjectives; len(got) != 1 {
		t.Errorf("CompletedObjectives = %v, expected [first-step]", got)
	}
}

func TestTheWitnessSolution(t *testing.T) {
	r := builtin(t, "the-witness")
	r.Join("p1")
	mustMove(t, r, "p1", "watch")
	r.StartWitness("p1")
	r.Update(16)
	mustMove(t, r, "p1", "shade")
	r.Update(16)
	if r.Level().ActiveDimension != "night" {
		t.Errorf("ActiveDimension = %q, expected night", r.Level().ActiveDimension)
	}
	r.Update(500)
	mustMove(t, r, "p1", "gate", "exit")
	r.Update(16)

	if !r.Level().Completed {
		t.Fatal("the-witness not completed")
	}
}

func TestTwoMindsSolution(t *testing.T) {
	r := builtin(t, "two-minds")
	r.Join("a")
	r.Join("b")
	if at, _ := r.Position("b"); at != "start-b" {
		t.Fatalf("second player joined at %q, expected start-b", at)
	}
	mustMove(t, r, "a", "pad-a")
	mustMove(t, r, "b", "pad-b")
	r.Update(1500)
	r.Update(16)

	mustMove(t, r, "a", "bridge", "core-a")
	r.Update(16)
	if r.Level().Completed {
		t.Fatal("two-minds completed with one player")
	}
	mustMove(t, r, "b", "bridge", "core-b")
	r.Update(16)
	if !r.Level().Completed {
		t.Fatal("two-minds not completed")
	}
}

func TestEchoesSolution(t *testing.T) {
	r := builtin(t, "echoes")
	r.Join("p1")
	for _, bell := range []string{"bell-1", "bell-2", "bell-3"} {
		mustMove(t, r, "p1", "hub", bell)
		r.Update(600)
	}
	r.Update(16)
	if !r.Level().Completed {
		t.Fatal("echoes not completed")
	}
}

package registry

import (
	"errors"
	"testing"

	"github.com/vovakirdan/liminal/internal/level"
	"github.com/vovakirdan/liminal/internal/procgen"
)

func TestBuiltinAndProceduralRegistered(t *testing.T) {
	for _, id := range []string{"first-light", "the-witness", "two-minds", "echoes", "random"} {
		if !Exists(id) {
			t.Errorf("Exists(%q) = false, expected true", id)
		}
	}
	for _, theme := range procgen.Themes() {
		if !Exists(RandomPrefix + "-" + theme) {
			t.Errorf("procedural theme %q not registered", theme)
		}
	}

	list := List()
	if len(list) != 4+1+len(procgen.Themes()) {
		t.Fatalf("List() returned %d entries", len(list))
	}
	if list[0].Kind != KindBuiltin || list[len(list)-1].Kind != KindProcedural {
		t.Error("List() should put built-in levels first")
	}

	e, ok := Lookup("two-minds")
	if !ok || e.MinPlayers != 2 || e.Description == "" {
		t.Errorf("Lookup(two-minds) = %+v, %v", e, ok)
	}
}

func TestCreate(t *testing.T) {
	def, err := Create("first-light", Params{})
	if err != nil {
		t.Fatalf("Create(first-light) failed: %v", err)
	}
	if def.ID != "first-light" {
		t.Errorf("ID = %q, expected first-light", def.ID)
	}

	a, err := Create("random-rift", Params{Seed: 9, Difficulty: 4, Players: 1})
	if err != nil {
		t.Fatalf("Create(random-rift) failed: %v", err)
	}
	b, _ := Create("random-rift", Params{Seed: 9, Difficulty: 4, Players: 1})
	if a.ID != b.ID || len(a.Nodes) != len(b.Nodes) {
		t.Errorf("same params produced %s and %s", a.ID, b.ID)
	}
	if err := level.Validate(a); err != nil {
		t.Errorf("generated level invalid: %v", err)
	}

	if _, err := Create("nope", Params{}); !errors.Is(err, ErrUnknownLevel) {
		t.Errorf("Create(nope) error = %v, expected ErrUnknownLevel", err)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Register() of a duplicate id should panic")
		}
	}()
	Register(Entry{ID: "first-light"}, nil)
}

func TestRefRoundTrip(t *testing.T) {
	tests := []struct {
		in       string
		expected Ref
	}{
		{"first-light", Ref{ID: "first-light"}},
		{"random-rift:42", Ref{ID: "random-rift", Seed: 42}},
		{"random:7:3", Ref{ID: "random", Seed: 7, Players: 3}},
	}
	for _, tc := range tests {
		got, err := ParseRef(tc.in)
		if err != nil {
			t.Errorf("ParseRef(%q) failed: %v", tc.in, err)
			continue
		}
		if got != tc.expected {
			t.Errorf("ParseRef(%q) = %+v, expected %+v", tc.in, got, tc.expected)
		}
		if got.String() != tc.in {
			t.Errorf("String() = %q, expected %q", got.String(), tc.in)
		}
	}

	for _, bad := range []string{"", ":1", "x:abc", "x:1:0", "a:1:2:3"} {
		if _, err := ParseRef(bad); err == nil {
			t.Errorf("ParseRef(%q) should fail", bad)
		}
	}

	p := Ref{ID: "random", Seed: 7, Players: 3}.Params(6)
	if p.Seed != 7 || p.Players != 3 || p.Difficulty != 6 {
		t.Errorf("Params() = %+v", p)
	}
}

package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/liminal/internal/core"
	"github.com/vovakirdan/liminal/internal/engine"
	"github.com/vovakirdan/liminal/internal/multiplayer"
	"github.com/vovakirdan/liminal/internal/procgen"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestRunsRecentAndBest(t *testing.T) {
	store := openTestStore(t)

	runs := []Run{
		{LevelID: "first-light", Players: []string{"p1"}, Completed: true, ElapsedTime: 9000, EndReason: "completed"},
		{LevelID: "first-light", Players: []string{"p1"}, Failed: true, ElapsedTime: 60000, EndReason: "failed"},
		{LevelID: "first-light", Players: []string{"p1", "p2"}, Completed: true, ElapsedTime: 7000, Backtracks: 2, EndReason: "completed"},
		{LevelID: "echoes", Players: []string{"p1"}, EndReason: "quit"},
	}
	for _, run := range runs {
		if _, err := store.SaveRun(run); err != nil {
			t.Fatalf("SaveRun() failed: %v", err)
		}
	}

	recent, err := store.RecentRuns("first-light", 10)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("RecentRuns() returned %d runs, expected 3", len(recent))
	}
	if recent[0].ElapsedTime != 7000 || len(recent[0].Players) != 2 {
		t.Errorf("newest run = %+v, expected the two-player run", recent[0])
	}
	if recent[0].CreatedAt.IsZero() {
		t.Error("CreatedAt was not parsed")
	}

	all, err := store.RecentRuns("", 0)
	if err != nil {
		t.Fatalf("RecentRuns(all) failed: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("RecentRuns(all) returned %d runs, expected 4", len(all))
	}

	best, err := store.BestRun("first-light")
	if err != nil {
		t.Fatalf("BestRun() failed: %v", err)
	}
	if best == nil || best.ElapsedTime != 7000 || best.Backtracks != 2 {
		t.Errorf("BestRun() = %+v, expected the 7000ms run", best)
	}

	none, err := store.BestRun("echoes")
	if err != nil {
		t.Fatalf("BestRun(echoes) failed: %v", err)
	}
	if none != nil {
		t.Errorf("BestRun(echoes) = %+v, expected nil", none)
	}
}

func TestStats(t *testing.T) {
	store := openTestStore(t)
	store.SaveRun(Run{LevelID: "a", Completed: true, ElapsedTime: 5000, EndReason: "completed"})
	store.SaveRun(Run{LevelID: "a", EndReason: "quit"})
	store.SaveRun(Run{LevelID: "b", EndReason: "quit"})

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("Stats() returned %d rows, expected 2", len(stats))
	}
	if stats[0].LevelID != "a" || stats[0].Runs != 2 || stats[0].Completions != 1 || stats[0].BestTime != 5000 {
		t.Errorf("Stats()[0] = %+v", stats[0])
	}
	if stats[1].BestTime != 0 {
		t.Errorf("Stats()[1].BestTime = %v, expected 0", stats[1].BestTime)
	}
}

func TestShareCodeLookup(t *testing.T) {
	store := openTestStore(t)

	gen, err := procgen.Generate(procgen.Config{Seed: 1234, Difficulty: 5, PlayerCount: 1})
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	code := gen.Metadata.ShareCode

	if _, err := store.LookupShareCode(code); !errors.Is(err, ErrShareCodeNotFound) {
		t.Fatalf("LookupShareCode() before save = %v, expected ErrShareCodeNotFound", err)
	}

	if err := store.SaveSharedLevel(code, gen.Metadata.Fingerprint, gen.Config); err != nil {
		t.Fatalf("SaveSharedLevel() failed: %v", err)
	}
	// Saving the same settings twice is fine.
	if err := store.SaveSharedLevel(code, gen.Metadata.Fingerprint, gen.Config); err != nil {
		t.Fatalf("SaveSharedLevel() again failed: %v", err)
	}

	shared, err := store.LookupShareCode(code)
	if err != nil {
		t.Fatalf("LookupShareCode() failed: %v", err)
	}
	if shared.Config != gen.Config || shared.Fingerprint != gen.Metadata.Fingerprint {
		t.Errorf("LookupShareCode() = %+v, expected config %+v", shared, gen.Config)
	}

	again, err := procgen.Generate(shared.Config)
	if err != nil {
		t.Fatalf("Generate(lookup) failed: %v", err)
	}
	if again.Metadata.ShareCode != code {
		t.Errorf("regenerated share code = %q, expected %q", again.Metadata.ShareCode, code)
	}
}

func TestShareCodeConflict(t *testing.T) {
	store := openTestStore(t)

	cfg := procgen.Config{Seed: 77, Difficulty: 5, PlayerCount: 1, Modifiers: procgen.Modifiers{ReactionTimeScale: 1}}
	if err := store.SaveSharedLevel("ABCDEF", 1, cfg); err != nil {
		t.Fatalf("SaveSharedLevel() failed: %v", err)
	}

	other := cfg
	other.Modifiers.ReactionTimeScale = 3
	if err := store.SaveSharedLevel("abcdef", 2, other); !errors.Is(err, ErrShareCodeConflict) {
		t.Fatalf("SaveSharedLevel() with other settings = %v, expected ErrShareCodeConflict", err)
	}

	shared, err := store.LookupShareCode("ABCDEF")
	if err != nil {
		t.Fatalf("LookupShareCode() failed: %v", err)
	}
	if shared.Config != cfg || shared.Fingerprint != 1 {
		t.Errorf("LookupShareCode() = %+v, expected the first entry to survive", shared)
	}
}

func TestSnapshots(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.LoadSnapshot("s1"); !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("LoadSnapshot() on empty store = %v, expected ErrSnapshotNotFound", err)
	}

	first := engine.State{ID: "first-light", ElapsedTime: 1000, PlayerPositions: map[core.PlayerID]string{"p1": "start"}}
	second := engine.State{
		ID:                  "first-light",
		ElapsedTime:         2500,
		PlayerPositions:     map[core.PlayerID]string{"p1": "plate"},
		NodesVisited:        []string{"plate", "start"},
		CompletedObjectives: []string{"press-plate"},
	}
	if err := store.SaveSnapshot("s1", first); err != nil {
		t.Fatalf("SaveSnapshot() failed: %v", err)
	}
	if err := store.SaveSnapshot("s1", second); err != nil {
		t.Fatalf("SaveSnapshot() failed: %v", err)
	}

	got, err := store.LoadSnapshot("s1")
	if err != nil {
		t.Fatalf("LoadSnapshot() failed: %v", err)
	}
	if got.ElapsedTime != 2500 || got.PlayerPositions["p1"] != "plate" || len(got.NodesVisited) != 2 {
		t.Errorf("LoadSnapshot() = %+v, expected the newest snapshot", got)
	}

	if err := store.DeleteSnapshots("s1"); err != nil {
		t.Fatalf("DeleteSnapshots() failed: %v", err)
	}
	if _, err := store.LoadSnapshot("s1"); !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("LoadSnapshot() after delete = %v, expected ErrSnapshotNotFound", err)
	}
}

func TestSaveMatchResult(t *testing.T) {
	store := openTestStore(t)

	var saver multiplayer.MatchResultSaver = store
	err := saver.SaveMatchResult(multiplayer.MatchResultData{
		MatchID:     "match-ABCDEF-1",
		LevelID:     "two-minds",
		Players:     []string{"alice", "bob"},
		Completed:   true,
		ElapsedTime: 12000,
		EndReason:   "completed",
	})
	if err != nil {
		t.Fatalf("SaveMatchResult() failed: %v", err)
	}

	runs, err := store.RecentRuns("two-minds", 1)
	if err != nil || len(runs) != 1 {
		t.Fatalf("RecentRuns() = %v, %v", runs, err)
	}
	if runs[0].MatchID != "match-ABCDEF-1" || !runs[0].Completed || len(runs[0].Players) != 2 {
		t.Errorf("stored run = %+v", runs[0])
	}
}

package plasmid

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := New(Options{
		StoreKind: "memory",
		LogPath:   filepath.Join(t.TempDir(), "runs.log"),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		if err := c.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return c
}

func TestRunPersistsEachRun(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	req := RunRequest{
		Population:  4,
		Generations: 3,
		MaxSteps:    100,
		Runs:        2,
		Seed:        7,
		SeedCodes:   []string{"AAAAUA"},
	}
	summaries, err := c.Run(ctx, req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("got %d summaries, want 2", len(summaries))
	}
	for i, s := range summaries {
		if s.RunNumber != i+1 {
			t.Errorf("summary %d: run number %d, want %d", i, s.RunNumber, i+1)
		}
		if s.RunID == "" {
			t.Errorf("summary %d: empty run id", i)
		}
	}
	if summaries[0].RunID == summaries[1].RunID {
		t.Error("runs share a run id")
	}

	runs, err := c.Runs(ctx)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("archived %d runs, want 2", len(runs))
	}
	for _, rec := range runs {
		if rec.Seed != 7 && rec.Seed != 8 {
			t.Errorf("run %s: seed %d, want 7 or 8", rec.ID, rec.Seed)
		}
		diags, err := c.Diagnostics(ctx, rec.ID)
		if err != nil {
			t.Fatalf("Diagnostics(%s): %v", rec.ID, err)
		}
		if len(diags) == 0 {
			t.Errorf("run %s: no diagnostics", rec.ID)
		}
		lineage, err := c.Lineage(ctx, rec.ID)
		if err != nil {
			t.Fatalf("Lineage(%s): %v", rec.ID, err)
		}
		if len(lineage) == 0 {
			t.Errorf("run %s: no lineage", rec.ID)
		}
	}
}

func TestArchiveSurvivesRepeatedEntryPoints(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	req := RunRequest{
		Population:  3,
		Generations: 2,
		MaxSteps:    50,
		Seed:        11,
		SeedCodes:   []string{"AAAAUA"},
	}
	if _, err := c.Run(ctx, req); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	runs, err := c.Runs(ctx)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("archived %d runs after first Run, want 1", len(runs))
	}

	req.Seed = 12
	if _, err := c.Run(ctx, req); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	runs, err = c.Runs(ctx)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("archived %d runs after second Run, want 2", len(runs))
	}
}

func TestDiagnosticsAndLineageUnknownRun(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	if _, err := c.Diagnostics(ctx, "no-such-run"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("Diagnostics error = %v, want ErrRunNotFound", err)
	}
	if _, err := c.Lineage(ctx, "no-such-run"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("Lineage error = %v, want ErrRunNotFound", err)
	}
}

func TestRunAppendsRunLog(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "runs.log")
	c, err := New(Options{StoreKind: "memory", LogPath: logPath})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	req := RunRequest{
		Population:  3,
		Generations: 2,
		MaxSteps:    50,
		Runs:        2,
		Seed:        1,
		SeedCodes:   []string{"AAAAUA"},
	}
	if _, err := c.Run(context.Background(), req); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read run log: %v", err)
	}
	text := string(data)
	for _, want := range []string{"Run 1:", "Run 2:", "Generations:", "Cumulative Entropy:", "Best Code:"} {
		if !strings.Contains(text, want) {
			t.Errorf("run log missing %q:\n%s", want, text)
		}
	}
}

func TestRunDefaultsToSingleRun(t *testing.T) {
	c := newTestClient(t)

	summaries, err := c.Run(context.Background(), RunRequest{
		Population:  2,
		Generations: 1,
		MaxSteps:    50,
		Seed:        3,
		SeedCodes:   []string{"AAAAUA"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("got %d summaries, want 1", len(summaries))
	}
}

func TestRunHonorsContextCancellation(t *testing.T) {
	c := newTestClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Run(ctx, RunRequest{
		Population:  2,
		Generations: 1,
		MaxSteps:    50,
		SeedCodes:   []string{"AAAAUA"},
	}); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestCompileDecompileCompress(t *testing.T) {
	c := newTestClient(t)

	code, err := c.Compile("START STOP")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if code != "AAAAUA" {
		t.Fatalf("Compile(START STOP) = %q, want AAAAUA", code)
	}

	source, err := c.Decompile(code)
	if err != nil {
		t.Fatalf("Decompile: %v", err)
	}
	if source != "START STOP" {
		t.Fatalf("Decompile(%q) = %q, want START STOP", code, source)
	}

	compressed, err := c.Compress("UUUAAAGGGAUA")
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if compressed != "AAAAUA" {
		t.Fatalf("Compress = %q, want AAAAUA", compressed)
	}
}

func TestFitnessScoresCode(t *testing.T) {
	c := newTestClient(t)

	// START STOP emits a single distinct codon, so entropy and with it
	// the unscored fitness are both zero.
	got, err := c.Fitness("AAAAUA", "", 100)
	if err != nil {
		t.Fatalf("Fitness: %v", err)
	}
	if got != 0 {
		t.Errorf("Fitness(AAAAUA) = %v, want 0", got)
	}

	if _, err := c.Fitness("AA", "", 100); err == nil {
		t.Error("expected error for ragged code")
	}
}

func TestLoadSeedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seeds.txt")
	content := "# seed programs\n\nAAAAUA\nUUUUUC\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write seed file: %v", err)
	}

	seeds, err := LoadSeedFile(path, false)
	if err != nil {
		t.Fatalf("LoadSeedFile: %v", err)
	}
	want := []string{"AAAAUA", "UUUUUC"}
	if len(seeds) != len(want) {
		t.Fatalf("got %d seeds, want %d", len(seeds), len(want))
	}
	for i := range want {
		if seeds[i] != want[i] {
			t.Errorf("seed %d = %q, want %q", i, seeds[i], want[i])
		}
	}
}

func TestLoadSeedFileCompiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seeds.txt")
	if err := os.WriteFile(path, []byte("START STOP\n"), 0o644); err != nil {
		t.Fatalf("write seed file: %v", err)
	}

	seeds, err := LoadSeedFile(path, true)
	if err != nil {
		t.Fatalf("LoadSeedFile: %v", err)
	}
	if len(seeds) != 1 || seeds[0] != "AAAAUA" {
		t.Fatalf("got %v, want [AAAAUA]", seeds)
	}
}

func TestLoadSeedFileRejectsInvalidCode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seeds.txt")
	if err := os.WriteFile(path, []byte("AAAAU\n"), 0o644); err != nil {
		t.Fatalf("write seed file: %v", err)
	}
	if _, err := LoadSeedFile(path, false); err == nil {
		t.Fatal("expected error for ragged seed code")
	}
}

func TestLoadSeedFileRejectsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seeds.txt")
	if err := os.WriteFile(path, []byte("# nothing here\n"), 0o644); err != nil {
		t.Fatalf("write seed file: %v", err)
	}
	if _, err := LoadSeedFile(path, false); err == nil {
		t.Fatal("expected error for seed file without programs")
	}
}

package runlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAppendWritesBlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.log")

	err := Append(path, Entry{RunNumber: 1, Generations: 10, CumulativeEntropy: 1.2345, BestCode: "AAAAUA"})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	text := string(data)
	for _, want := range []string{"Run 1:", "Generations: 10", "Cumulative Entropy: 1.234", "Best Code: AAAAUA"} {
		if !strings.Contains(text, want) {
			t.Fatalf("log missing %q:\n%s", want, text)
		}
	}
}

func TestAppendIsAppendOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.log")

	if err := Append(path, Entry{RunNumber: 1, Generations: 1, BestCode: "AAA"}); err != nil {
		t.Fatalf("append 1: %v", err)
	}
	if err := Append(path, Entry{RunNumber: 2, Generations: 2}); err != nil {
		t.Fatalf("append 2: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "Run 1:") || !strings.Contains(text, "Run 2:") {
		t.Fatalf("expected both run blocks:\n%s", text)
	}
	if !strings.Contains(text, "Best Code: None (empty population)") {
		t.Fatalf("expected extinct-run marker:\n%s", text)
	}
	if strings.Index(text, "Run 1:") > strings.Index(text, "Run 2:") {
		t.Fatal("blocks out of order")
	}
}

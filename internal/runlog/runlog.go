// Package runlog appends plain-text, line-oriented result blocks for
// completed simulation runs.
package runlog

import (
	"fmt"
	"os"
)

// Entry is one run's result block.
type Entry struct {
	RunNumber         int
	Generations       int
	CumulativeEntropy float64
	BestCode          string
}

// Append writes one block to the log at path, creating the file when
// absent. The log is append-only; earlier blocks are never rewritten.
func Append(path string, e Entry) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open run log %s: %w", path, err)
	}
	defer f.Close()

	best := e.BestCode
	if best == "" {
		best = "None (empty population)"
	}
	_, err = fmt.Fprintf(f, "Run %d:\nGenerations: %d\nCumulative Entropy: %.3f\nBest Code: %s\n\n",
		e.RunNumber, e.Generations, e.CumulativeEntropy, best)
	if err != nil {
		return fmt.Errorf("write run log %s: %w", path, err)
	}
	return nil
}

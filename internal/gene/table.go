package gene

import (
	"fmt"
	"sort"
	"strings"
)

// CodonSize is the fixed width of a codon in symbols.
const CodonSize = 3

// Operation names recognized by the virtual machine.
const (
	OpCond  = "COND"
	OpCopy  = "COPY"
	OpIf    = "IF"
	OpJump  = "JUMP"
	OpStart = "START"
	OpStop  = "STOP"

	// OpData classifies codons not bound to any operation.
	OpData = "data"
)

// Limits bounds gene sizes and simulation scale. Sizes are in codons.
type Limits struct {
	MinGeneSize   int
	MidGeneSize   int
	MaxGeneSize   int
	MaxPopulation int
	MaxIterations int
}

func DefaultLimits() Limits {
	return Limits{
		MinGeneSize:   2,
		MidGeneSize:   10,
		MaxGeneSize:   1024,
		MaxPopulation: 128,
		MaxIterations: 1000,
	}
}

// Table is the immutable codon configuration shared by every component:
// the closed instruction universe, the operation bindings derived from it,
// and the size limits. Built once and passed explicitly.
type Table struct {
	instructions []string
	operations   map[string][]string
	byCodon      map[string]string
	noOps        map[string]struct{}
	limits       Limits
}

func DefaultInstructions() []string {
	return []string{
		"AAA", "AAU", "AAG", "AAC", "AUA", "AUU", "AUG", "AUC",
		"AGA", "AGU", "AGG", "AGC", "ACA", "ACU", "ACG", "ACC",
		"UAA", "UAU", "UAG", "UAC", "UUA", "UUU", "UUG", "UUC",
		"UGA", "UGU", "UGG", "UGC", "UCA", "UCU", "UCG", "UCC",
		"GAA", "GAU", "GAG", "GAC", "GUA", "GUU", "GUG", "GUC",
		"GGA", "GGU", "GGG", "GGC", "GCA", "GCU", "GCG", "GCC",
		"CAA", "CAU", "CAG", "CAC", "CUA", "CUU", "CUG", "CUC",
		"CGA", "CGU", "CGG", "CGC", "CCA", "CCU", "CCG", "CCC",
		"ATC", "ATG", // DNA-alphabet stop codons
	}
}

func DefaultOperations() map[string][]string {
	return map[string][]string{
		OpCond:  {"UUC", "UUA", "GAA"},
		OpCopy:  {"AAG"},
		OpIf:    {"AAU"},
		OpJump:  {"CUU"},
		OpStart: {"AAA"},
		OpStop:  {"AUA", "ATC", "ATG"},
	}
}

// NewTable validates the instruction universe and operation bindings and
// returns an immutable table. Any inconsistency is a fatal configuration
// error: the caller must not run simulations against a table that failed
// validation.
func NewTable(instructions []string, operations map[string][]string, limits Limits) (*Table, error) {
	if limits.MinGeneSize <= 0 || limits.MidGeneSize <= limits.MinGeneSize || limits.MaxGeneSize < limits.MidGeneSize {
		return nil, fmt.Errorf("invalid gene size limits: min=%d mid=%d max=%d",
			limits.MinGeneSize, limits.MidGeneSize, limits.MaxGeneSize)
	}

	seen := make(map[string]struct{}, len(instructions))
	for _, codon := range instructions {
		if len(codon) != CodonSize {
			return nil, fmt.Errorf("instruction %q has length %d, want %d", codon, len(codon), CodonSize)
		}
		if _, dup := seen[codon]; dup {
			return nil, fmt.Errorf("duplicate instruction: %s", codon)
		}
		seen[codon] = struct{}{}
	}

	byCodon := make(map[string]string)
	for _, name := range sortedOperationNames(operations) {
		for _, codon := range operations[name] {
			if _, ok := seen[codon]; !ok {
				return nil, fmt.Errorf("operation %s uses codon %s outside the instruction set", name, codon)
			}
			if owner, ok := byCodon[codon]; ok {
				return nil, fmt.Errorf("codon %s bound to both %s and %s", codon, owner, name)
			}
			byCodon[codon] = name
		}
	}

	noOps := make(map[string]struct{}, len(instructions)-len(byCodon))
	for _, codon := range instructions {
		if _, ok := byCodon[codon]; !ok {
			noOps[codon] = struct{}{}
		}
	}
	if len(noOps)+len(byCodon) != len(instructions) {
		return nil, fmt.Errorf("no-op set inconsistent: %d no-ops + %d operation codons != %d instructions",
			len(noOps), len(byCodon), len(instructions))
	}

	t := &Table{
		instructions: append([]string(nil), instructions...),
		operations:   make(map[string][]string, len(operations)),
		byCodon:      byCodon,
		noOps:        noOps,
		limits:       limits,
	}
	for name, codons := range operations {
		t.operations[name] = append([]string(nil), codons...)
	}
	return t, nil
}

// DefaultTable returns the canonical table. The defaults are static and
// covered by tests; an inconsistency here is a programming error.
func DefaultTable() *Table {
	t, err := NewTable(DefaultInstructions(), DefaultOperations(), DefaultLimits())
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) Instructions() []string {
	return append([]string(nil), t.instructions...)
}

func (t *Table) InstructionCount() int {
	return len(t.instructions)
}

func (t *Table) Limits() Limits {
	return t.limits
}

// OperationCodons returns the codons bound to an operation name, first
// codon being the canonical one used by the compiler.
func (t *Table) OperationCodons(name string) []string {
	return append([]string(nil), t.operations[name]...)
}

func (t *Table) OperationNames() []string {
	return sortedOperationNames(t.operations)
}

func (t *Table) IsOperation(name string) bool {
	_, ok := t.operations[name]
	return ok
}

func (t *Table) IsInstruction(codon string) bool {
	if len(codon) != CodonSize {
		return false
	}
	if _, ok := t.byCodon[codon]; ok {
		return true
	}
	_, ok := t.noOps[codon]
	return ok
}

// Classify returns the operation name owning the codon, or OpData when the
// codon is unbound.
func (t *Table) Classify(codon string) string {
	if name, ok := t.byCodon[codon]; ok {
		return name
	}
	return OpData
}

func (t *Table) NoOps() []string {
	out := make([]string, 0, len(t.noOps))
	for codon := range t.noOps {
		out = append(out, codon)
	}
	sort.Strings(out)
	return out
}

// CheckCode reports whether code is a well-formed gene: non-empty, a whole
// number of codons, every codon in the instruction set.
func (t *Table) CheckCode(code string) bool {
	if code == "" || len(code)%CodonSize != 0 {
		return false
	}
	for i := 0; i < len(code); i += CodonSize {
		if !t.IsInstruction(code[i : i+CodonSize]) {
			return false
		}
	}
	return true
}

// IsExecutable reports whether the tape contains a START with a STOP at or
// after it, i.e. whether running it can terminate through an explicit STOP.
func (t *Table) IsExecutable(tape []string) bool {
	for i, codon := range tape {
		if t.Classify(codon) != OpStart {
			continue
		}
		for _, rest := range tape[i:] {
			if t.Classify(rest) == OpStop {
				return true
			}
		}
	}
	return false
}

// Codons splits a code string into codon-sized slices. The caller is
// responsible for length validation.
func Codons(code string) []string {
	tape := make([]string, 0, len(code)/CodonSize)
	for i := 0; i+CodonSize <= len(code); i += CodonSize {
		tape = append(tape, code[i:i+CodonSize])
	}
	return tape
}

// Join is the inverse of Codons.
func Join(tape []string) string {
	return strings.Join(tape, "")
}

func sortedOperationNames(operations map[string][]string) []string {
	names := make([]string, 0, len(operations))
	for name := range operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Package genetics provides entropy measurement, random gene generation
// and the single-mutation operator used to derive child genes.
package genetics

import (
	"math"
	"math/rand"

	"plasmid/internal/gene"
)

// Mutation operator names recorded in lineage.
const (
	OpAppend  = "append_codon"
	OpPrepend = "prepend_codon"
	OpInsert  = "insert_codon"
	OpRewrite = "rewrite_codon"
	OpRemove  = "remove_codon"
	OpSwap    = "swap_codons"
	OpReverse = "reverse_tape"
	OpNoop    = "noop"
)

// Entropy measures codon-distribution uniformity of a code string. The
// histogram spans the entire instruction universe, zero counts included,
// so a gene using a single codon scores 0 and a maximally spread gene
// scores the largest value. Empty input scores 0.
func Entropy(tbl *gene.Table, code string) float64 {
	if code == "" {
		return 0
	}

	histogram := make(map[string]int, tbl.InstructionCount())
	for _, codon := range tbl.Instructions() {
		histogram[codon] = 0
	}
	total := 0
	for _, codon := range gene.Codons(code) {
		histogram[codon]++
		total++
	}
	if total == 0 {
		return 0
	}

	squaredSum := 0.0
	for _, count := range histogram {
		p := float64(count) / float64(total)
		squaredSum += p * p
	}
	return -2.0 * math.Log(math.Sqrt(squaredSum)) / math.Log(64)
}

// CreateCodon draws one codon uniformly from the instruction set.
func CreateCodon(tbl *gene.Table, rng *rand.Rand) string {
	instructions := tbl.Instructions()
	return instructions[rng.Intn(len(instructions))]
}

// CreateString builds a random gene whose codon count is drawn uniformly
// from [MinGeneSize, MidGeneSize).
func CreateString(tbl *gene.Table, rng *rand.Rand) string {
	limits := tbl.Limits()
	size := limits.MinGeneSize + rng.Intn(limits.MidGeneSize-limits.MinGeneSize)
	tape := make([]string, size)
	for i := range tape {
		tape[i] = CreateCodon(tbl, rng)
	}
	return gene.Join(tape)
}

// Mutate applies at most one mutation to code and returns the result.
// Three of the ten uniformly drawn outcomes are deliberate no-ops, so any
// single call leaves the gene unchanged with probability 3/10. Mutate
// never fails: suppressed operators (growth past MaxGeneSize, removal
// below MinGeneSize) degrade to no-ops.
func Mutate(tbl *gene.Table, rng *rand.Rand, code string) string {
	mutated, _ := MutateNamed(tbl, rng, code)
	return mutated
}

// MutateNamed is Mutate plus the name of the operator that actually
// applied, OpNoop when the gene came back unchanged.
func MutateNamed(tbl *gene.Table, rng *rand.Rand, code string) (string, string) {
	if code == "" {
		return code, OpNoop
	}

	tape := gene.Codons(code)
	limits := tbl.Limits()

	switch rng.Intn(10) {
	case 0:
		if len(tape)+1 > limits.MaxGeneSize {
			break
		}
		tape = append(tape, CreateCodon(tbl, rng))
		return gene.Join(tape), OpAppend
	case 1:
		if len(tape)+1 > limits.MaxGeneSize {
			break
		}
		tape = append([]string{CreateCodon(tbl, rng)}, tape...)
		return gene.Join(tape), OpPrepend
	case 2:
		if len(tape)+1 > limits.MaxGeneSize {
			break
		}
		at := rng.Intn(len(tape))
		tape = append(tape[:at], append([]string{CreateCodon(tbl, rng)}, tape[at:]...)...)
		return gene.Join(tape), OpInsert
	case 3:
		tape[rng.Intn(len(tape))] = CreateCodon(tbl, rng)
		return gene.Join(tape), OpRewrite
	case 4:
		if len(tape) <= limits.MinGeneSize {
			break
		}
		at := rng.Intn(len(tape))
		tape = append(tape[:at], tape[at+1:]...)
		return gene.Join(tape), OpRemove
	case 5:
		if len(tape) < 2 {
			break
		}
		i, j := sampleTwo(rng, len(tape))
		tape[i], tape[j] = tape[j], tape[i]
		return gene.Join(tape), OpSwap
	case 6:
		for i, j := 0, len(tape)-1; i < j; i, j = i+1, j-1 {
			tape[i], tape[j] = tape[j], tape[i]
		}
		return gene.Join(tape), OpReverse
	}
	// cases 7-9 carry the deliberate no-mutation mass
	return code, OpNoop
}

// sampleTwo draws two distinct indices from [0, n) uniformly.
func sampleTwo(rng *rand.Rand, n int) (int, int) {
	i := rng.Intn(n)
	j := rng.Intn(n - 1)
	if j >= i {
		j++
	}
	return i, j
}

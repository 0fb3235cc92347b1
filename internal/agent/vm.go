// Package agent implements the codon virtual machine: a program instance
// that executes its tape one instruction at a time, accumulating a progeny
// code scored by the fitness function.
package agent

import (
	"math/rand"
	"strings"

	"plasmid/internal/gene"
	"plasmid/internal/genetics"
	"plasmid/internal/peptide"
)

// condFlag is the memory flag set by COND and consumed by IF.
const condFlag = "condition"

// TargetBonusWeight scales the fitness bonus granted when the target
// peptide occurs in the translated progeny.
const TargetBonusWeight = 100.0

type Agent struct {
	tbl *gene.Table
	id  string

	code    string
	tape    []string
	pc      int
	progeny strings.Builder
	memory  map[string]bool
	entry   int

	steps      int
	stepBudget int
	valid      bool
}

// New returns an empty agent bound to a codon table. The agent stays
// invalid until Init accepts a code.
func New(tbl *gene.Table, id string) *Agent {
	return &Agent{
		tbl:    tbl,
		id:     id,
		memory: make(map[string]bool),
		entry:  -1,
	}
}

func (a *Agent) ID() string {
	return a.id
}

// SetStepBudget installs an execution step budget; n <= 0 means unbounded.
func (a *Agent) SetStepBudget(n int) {
	a.stepBudget = n
}

// Init loads a code string, validates it, and resets execution state.
// It reports false without mutating the valid code when validation fails:
// empty code, length not a multiple of the codon size, or a codon outside
// the instruction set.
func (a *Agent) Init(code string) bool {
	if !a.tbl.CheckCode(code) {
		a.valid = false
		return false
	}

	a.code = code
	a.tape = gene.Codons(code)
	a.pc = 0
	a.progeny.Reset()
	a.memory = make(map[string]bool)
	a.entry = -1
	a.steps = 0
	a.valid = true
	return true
}

// Iteration executes one pending instruction and reports whether
// execution is complete: step budget exhausted, program counter past the
// tape, or an explicit STOP. Every executed step increments the step
// counter regardless of the branch taken.
func (a *Agent) Iteration() bool {
	if !a.valid {
		return true
	}
	if a.stepBudget > 0 && a.steps >= a.stepBudget {
		return true
	}
	if a.pc >= len(a.tape) {
		return true
	}

	codon := a.tape[a.pc]
	a.steps++

	switch a.tbl.Classify(codon) {
	case gene.OpStart:
		a.progeny.WriteString(codon)
		a.entry = a.pc
		a.pc++
	case gene.OpStop:
		a.pc++
		return true
	case gene.OpCopy:
		if a.pc+1 < len(a.tape) {
			a.progeny.WriteString(a.tape[a.pc+1])
			a.pc += 2
		} else {
			a.pc++
		}
	case gene.OpJump:
		target := -1
		for i := a.pc + 1; i < len(a.tape); i++ {
			if a.tbl.Classify(a.tape[i]) == gene.OpStart {
				target = i
				break
			}
		}
		if target >= 0 {
			a.pc = target
		} else {
			a.pc++
		}
	case gene.OpCond:
		a.memory[condFlag] = true
		a.pc++
	case gene.OpIf:
		if a.memory[condFlag] && a.pc+1 < len(a.tape) {
			a.progeny.WriteString(a.tape[a.pc+1])
		}
		a.pc += 2
	default:
		a.progeny.WriteString(codon)
		a.pc++
	}

	return a.pc >= len(a.tape)
}

// Run iterates until completion or until maxSteps iterations have been
// driven; maxSteps <= 0 iterates until the agent signals completion.
func (a *Agent) Run(maxSteps int) {
	if maxSteps <= 0 {
		for !a.Iteration() {
		}
		return
	}
	for i := 0; i < maxSteps; i++ {
		if a.Iteration() {
			return
		}
	}
}

// InstructionPointer returns the current program counter, false when it
// is outside the tape bounds.
func (a *Agent) InstructionPointer() (int, bool) {
	if !a.valid || a.pc >= len(a.tape) {
		return 0, false
	}
	return a.pc, true
}

// Mutate derives a new code through the mutation engine and re-initializes
// the agent. A mutation failing re-validation leaves the agent invalid;
// it is reported, never silently discarded.
func (a *Agent) Mutate(rng *rand.Rand) bool {
	if a.code == "" {
		return false
	}
	a.code = genetics.Mutate(a.tbl, rng, a.code)
	return a.Init(a.code)
}

// TranslateToPeptide maps the progeny codons through the amino-acid
// table, skipping unmapped codons.
func (a *Agent) TranslateToPeptide(tbl peptide.Table) string {
	return peptide.Translate(tbl, a.progeny.String())
}

// EvaluateFitness scores the progeny as len(progeny) * entropy(progeny).
// When targetPeptide is non-empty and occurs in the translated peptide the
// score gains a large fixed bonus to bias selection toward it. Empty
// progeny scores 0.
func (a *Agent) EvaluateFitness(pep peptide.Table, targetPeptide string) float64 {
	progeny := a.progeny.String()
	if progeny == "" {
		return 0
	}
	fitness := float64(len(progeny)) * genetics.Entropy(a.tbl, progeny)
	if targetPeptide != "" && strings.Contains(a.TranslateToPeptide(pep), targetPeptide) {
		fitness += TargetBonusWeight * float64(len(targetPeptide))
	}
	return fitness
}

// Reset clears all state, returning the agent to its pre-Init condition.
func (a *Agent) Reset() {
	a.code = ""
	a.tape = nil
	a.pc = 0
	a.progeny.Reset()
	a.memory = make(map[string]bool)
	a.entry = -1
	a.steps = 0
	a.valid = false
}

func (a *Agent) Valid() bool          { return a.valid }
func (a *Agent) Code() string         { return a.code }
func (a *Agent) Progeny() string      { return a.progeny.String() }
func (a *Agent) Steps() int           { return a.steps }
func (a *Agent) Tape() []string       { return append([]string(nil), a.tape...) }
func (a *Agent) EntryPoint() (int, bool) {
	return a.entry, a.entry >= 0
}

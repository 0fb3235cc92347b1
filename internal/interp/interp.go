// Package interp translates between the operation-name notation and raw
// codon strings: a compiler, a decompiler, a tokenizer and a lossy
// noise compressor.
package interp

import (
	"fmt"
	"strings"

	"plasmid/internal/gene"
)

// CompileError reports a token that is neither a known operation name nor
// a valid codon sequence.
type CompileError struct {
	Token string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("invalid token: %q is neither a known operation nor a valid codon sequence", e.Token)
}

// Tokenize splits a code string into its codons. It fails when the length
// is not a whole number of codons.
func Tokenize(tbl *gene.Table, code string) ([]string, error) {
	if code == "" {
		return nil, nil
	}
	if len(code)%gene.CodonSize != 0 {
		return nil, fmt.Errorf("code length %d is not a multiple of the codon size %d", len(code), gene.CodonSize)
	}
	_ = tbl
	return gene.Codons(code), nil
}

// Compile turns whitespace-separated tokens into a codon string. An
// operation name compiles to that operation's first codon; a token that is
// itself a valid codon sequence passes through unchanged as inline
// payload. Any other token is a *CompileError.
func Compile(tbl *gene.Table, text string) (string, error) {
	var sb strings.Builder
	for _, token := range strings.Fields(text) {
		if tbl.IsOperation(token) {
			sb.WriteString(tbl.OperationCodons(token)[0])
			continue
		}
		if tbl.CheckCode(token) {
			sb.WriteString(token)
			continue
		}
		return "", &CompileError{Token: token}
	}
	return sb.String(), nil
}

// Decompile emits each codon's owning operation name, or the raw codon
// when unclassified. It is not a perfect inverse of Compile: several
// codons may share one operation name, so only the operational shape
// round-trips.
func Decompile(tbl *gene.Table, code string) (string, error) {
	tape, err := Tokenize(tbl, code)
	if err != nil {
		return "", err
	}
	names := make([]string, 0, len(tape))
	for _, codon := range tape {
		if name := tbl.Classify(codon); name != gene.OpData {
			names = append(names, name)
		} else {
			names = append(names, codon)
		}
	}
	return strings.Join(names, " "), nil
}

// Compress keeps only the operation-classified codons in their original
// order, discarding all data codons. Lossy.
func Compress(tbl *gene.Table, code string) (string, error) {
	tape, err := Tokenize(tbl, code)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, codon := range tape {
		if tbl.Classify(codon) != gene.OpData {
			sb.WriteString(codon)
		}
	}
	return sb.String(), nil
}

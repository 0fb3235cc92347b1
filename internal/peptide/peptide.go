// Package peptide translates progeny codons into amino-acid sequences
// through an injected read-only lookup table.
package peptide

import (
	"strings"

	"plasmid/internal/gene"
)

// StopMarker is the letter emitted for translation-stop codons.
const StopMarker = "*"

// Table maps a codon to its one-letter amino acid code or StopMarker.
// Codons absent from the table are skipped during translation.
type Table map[string]string

// StandardTable returns the standard RNA codon table.
func StandardTable() Table {
	return Table{
		"UUU": "F", "UUC": "F", "UUA": "L", "UUG": "L",
		"CUU": "L", "CUC": "L", "CUA": "L", "CUG": "L",
		"AUU": "I", "AUC": "I", "AUA": "I", "AUG": "M",
		"GUU": "V", "GUC": "V", "GUA": "V", "GUG": "V",
		"UCU": "S", "UCC": "S", "UCA": "S", "UCG": "S",
		"CCU": "P", "CCC": "P", "CCA": "P", "CCG": "P",
		"ACU": "T", "ACC": "T", "ACA": "T", "ACG": "T",
		"GCU": "A", "GCC": "A", "GCA": "A", "GCG": "A",
		"UAU": "Y", "UAC": "Y", "UAA": StopMarker, "UAG": StopMarker,
		"CAU": "H", "CAC": "H", "CAA": "Q", "CAG": "Q",
		"AAU": "N", "AAC": "N", "AAA": "K", "AAG": "K",
		"GAU": "D", "GAC": "D", "GAA": "E", "GAG": "E",
		"UGU": "C", "UGC": "C", "UGA": StopMarker, "UGG": "W",
		"CGU": "R", "CGC": "R", "CGA": "R", "CGG": "R",
		"AGU": "S", "AGC": "S", "AGA": "R", "AGG": "R",
		"GGU": "G", "GGC": "G", "GGA": "G", "GGG": "G",
	}
}

// Translate maps each codon of code through the table, silently skipping
// unmapped codons.
func Translate(tbl Table, code string) string {
	if code == "" || tbl == nil {
		return ""
	}
	var sb strings.Builder
	for _, codon := range gene.Codons(code) {
		if letter, ok := tbl[codon]; ok {
			sb.WriteString(letter)
		}
	}
	return sb.String()
}

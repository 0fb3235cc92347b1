package interp

import (
	"errors"
	"strings"
	"testing"

	"plasmid/internal/gene"
)

func TestTokenize(t *testing.T) {
	tbl := gene.DefaultTable()

	tape, err := Tokenize(tbl, "AAAUUU")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if len(tape) != 2 || tape[0] != "AAA" || tape[1] != "UUU" {
		t.Fatalf("tape = %v", tape)
	}

	if _, err := Tokenize(tbl, "AAAU"); err == nil {
		t.Fatal("expected length error")
	}

	tape, err = Tokenize(tbl, "")
	if err != nil || tape != nil {
		t.Fatalf("empty code: tape=%v err=%v", tape, err)
	}
}

func TestCompileOperations(t *testing.T) {
	tbl := gene.DefaultTable()
	code, err := Compile(tbl, "START STOP")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	want := tbl.OperationCodons(gene.OpStart)[0] + tbl.OperationCodons(gene.OpStop)[0]
	if code != want {
		t.Fatalf("compile = %s, want %s", code, want)
	}
}

func TestCompileInlinePayload(t *testing.T) {
	tbl := gene.DefaultTable()
	code, err := Compile(tbl, "START UUUGGG STOP")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if code != "AAAUUUGGGAUA" {
		t.Fatalf("compile = %s", code)
	}
}

func TestCompileUnknownToken(t *testing.T) {
	tbl := gene.DefaultTable()
	_, err := Compile(tbl, "START FROTZ STOP")
	var compileErr *CompileError
	if !errors.As(err, &compileErr) {
		t.Fatalf("expected CompileError, got %v", err)
	}
	if compileErr.Token != "FROTZ" {
		t.Fatalf("offending token = %q, want FROTZ", compileErr.Token)
	}
}

func TestDecompileRoundTripsOperationShape(t *testing.T) {
	tbl := gene.DefaultTable()
	for _, text := range []string{
		"START STOP",
		"START COPY JUMP STOP",
		"COND IF START STOP",
	} {
		code, err := Compile(tbl, text)
		if err != nil {
			t.Fatalf("compile %q: %v", text, err)
		}
		back, err := Decompile(tbl, code)
		if err != nil {
			t.Fatalf("decompile %q: %v", code, err)
		}
		if back != text {
			t.Fatalf("round trip of %q produced %q", text, back)
		}
	}
}

func TestDecompileEmitsRawDataCodons(t *testing.T) {
	tbl := gene.DefaultTable()
	text, err := Decompile(tbl, "AAAUUUAUA")
	if err != nil {
		t.Fatalf("decompile: %v", err)
	}
	if text != "START UUU STOP" {
		t.Fatalf("decompile = %q", text)
	}
}

func TestCompressKeepsOperationSubsequence(t *testing.T) {
	tbl := gene.DefaultTable()
	code := "UUUAAAGGGAAGCCCAUA" // data START data COPY data STOP
	compressed, err := Compress(tbl, code)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	if compressed != "AAAAAGAUA" {
		t.Fatalf("compress = %s", compressed)
	}
	if len(compressed) > len(code) {
		t.Fatal("compress grew the code")
	}
}

func TestCompressAllData(t *testing.T) {
	tbl := gene.DefaultTable()
	compressed, err := Compress(tbl, strings.Repeat("GGG", 4))
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	if compressed != "" {
		t.Fatalf("compress = %q, want empty", compressed)
	}
}

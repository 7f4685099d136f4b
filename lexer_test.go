package cflat

import (
	"reflect"
	"testing"
)

func scanKinds(t *testing.T, src string) []TokenKind {
	t.Helper()
	toks, err := NewLexer(src).Scan()
	if err != nil {
		t.Fatalf("Scan(%q) error: %v", src, err)
	}
	end := len(toks)
	if end > 0 && toks[end-1].Kind == TokEOF {
		end--
	}
	kinds := make([]TokenKind, end)
	for i := 0; i < end; i++ {
		kinds[i] = toks[i].Kind
	}
	return kinds
}

func TestLexer_SimpleDeclaration(t *testing.T) {
	got := scanKinds(t, "int x = 1;")
	want := []TokenKind{TokIdentifier, TokIdentifier, TokOperator, TokNumber, TokPunctuation}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
}

func TestLexer_KeywordsRecognized(t *testing.T) {
	toks, err := NewLexer("if (true) { return; }").Scan()
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if toks[0].Kind != TokKeyword || toks[0].Text != "if" {
		t.Fatalf("first token = %+v, want keyword 'if'", toks[0])
	}
}

func TestLexer_TwoCharOperators(t *testing.T) {
	toks, err := NewLexer("a == b && c != d").Scan()
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	var ops []string
	for _, tk := range toks {
		if tk.Kind == TokOperator {
			ops = append(ops, tk.Text)
		}
	}
	want := []string{"==", "&&", "!="}
	if !reflect.DeepEqual(ops, want) {
		t.Fatalf("operators = %v, want %v", ops, want)
	}
}

func TestLexer_ScopeAndArrowPunctuation(t *testing.T) {
	toks, err := NewLexer("Foo::Bar p; p->x;").Scan()
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	found := map[string]bool{}
	for _, tk := range toks {
		if tk.Kind == TokPunctuation {
			found[tk.Text] = true
		}
	}
	if !found["::"] || !found["->"] {
		t.Fatalf("expected '::' and '->' punctuation tokens, got %+v", toks)
	}
}

func TestLexer_NumericLiteralSuffixes(t *testing.T) {
	toks, err := NewLexer("1 1.5f 2u 3.0").Scan()
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	var nums []string
	for _, tk := range toks {
		if tk.Kind == TokNumber {
			nums = append(nums, tk.Text)
		}
	}
	want := []string{"1", "1.5f", "2u", "3.0"}
	if !reflect.DeepEqual(nums, want) {
		t.Fatalf("numbers = %v, want %v", nums, want)
	}
}

func TestLexer_StringLiteralWithEscapes(t *testing.T) {
	toks, err := NewLexer(`"hello \"world\""`).Scan()
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if toks[0].Kind != TokString {
		t.Fatalf("expected a string token, got %+v", toks[0])
	}
}

func TestLexer_UnterminatedStringIsAnError(t *testing.T) {
	_, err := NewLexer(`"unterminated`).Scan()
	if err == nil {
		t.Fatalf("expected an error for an unterminated string literal")
	}
	if _, ok := err.(*LexError); !ok {
		t.Fatalf("expected *LexError, got %T", err)
	}
}

func TestLexer_LineTrackingAcrossNewlines(t *testing.T) {
	toks, err := NewLexer("int x;\nint y;\nfoo").Scan()
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	last := toks[len(toks)-2] // "foo", before EOF
	if last.Line != 3 {
		t.Fatalf("last identifier's Line = %d, want 3", last.Line)
	}
}

func TestLexer_UnexpectedCharacterIsAnError(t *testing.T) {
	_, err := NewLexer("int x = 1 @ 2;").Scan()
	if err == nil {
		t.Fatalf("expected an error for '@'")
	}
}

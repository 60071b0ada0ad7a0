// Tests the lexer by verifying that a short sample program is tokenized
// into the expected item sequence, mirroring the teacher compiler's
// table-driven lexer test.
package frontend

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLexer(t *testing.T) {
	src := "int add(int a, int b) {\n\treturn a + b;\n}\n"

	exp := []item{
		{typ: itemKwInt, val: "int", line: 1, pos: 1},
		{typ: itemIdentifier, val: "add", line: 1, pos: 5},
		{typ: itemLParen, val: "(", line: 1, pos: 8},
		{typ: itemKwInt, val: "int", line: 1, pos: 9},
		{typ: itemIdentifier, val: "a", line: 1, pos: 13},
		{typ: itemComma, val: ",", line: 1, pos: 14},
		{typ: itemKwInt, val: "int", line: 1, pos: 16},
		{typ: itemIdentifier, val: "b", line: 1, pos: 20},
		{typ: itemRParen, val: ")", line: 1, pos: 21},
		{typ: itemLBrace, val: "{", line: 1, pos: 23},
		{typ: itemKwReturn, val: "return", line: 2, pos: 2},
		{typ: itemIdentifier, val: "a", line: 2, pos: 9},
		{typ: itemPlus, val: "+", line: 2, pos: 11},
		{typ: itemIdentifier, val: "b", line: 2, pos: 13},
		{typ: itemSemi, val: ";", line: 2, pos: 14},
		{typ: itemRBrace, val: "}", line: 3, pos: 1},
		{typ: itemEOF, line: 4, pos: 1},
	}

	got, err := Lex(src)
	if err != nil {
		t.Fatalf("unexpected lex error: %s", err)
	}
	if diff := cmp.Diff(exp, got, cmp.AllowUnexported(item{})); diff != "" {
		t.Errorf("token stream mismatch (-want +got):\n%s", diff)
	}
}

func TestLexerUnknownCharacter(t *testing.T) {
	if _, err := Lex("int x = 1 @ 2;"); err == nil {
		t.Fatal("expected an error for an unknown character, got nil")
	}
}

func TestLexerOperators(t *testing.T) {
	src := "<= >= == != && ||"
	got, err := Lex(src)
	if err != nil {
		t.Fatalf("unexpected lex error: %s", err)
	}
	want := []itemType{itemLe, itemGe, itemEqEq, itemNe, itemAndAnd, itemOrOr, itemEOF}
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].typ != w {
			t.Errorf("token %d: got %s, want %s", i, got[i].typ, w)
		}
	}
}

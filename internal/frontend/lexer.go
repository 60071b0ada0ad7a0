// This lexer is a synchronous adaptation of Rob Pike's state-function
// scanner design (as used by the teacher compiler's frontend/lexer.go,
// itself borrowed from the same talk). States allow the lexer to treat the
// same runes differently depending on context; state transitions happen in
// the current state on appearance of key runes.
//
// Unlike the teacher's lexer, which runs as a goroutine feeding tokens to a
// concurrent parser over a channel, this lexer runs to completion
// synchronously and returns the full token slice: the core's concurrency
// model (spec §5) is single-threaded, and a front-end collaborator has no
// reason to deviate from that.
package frontend

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// stateFunc defines the lexer's current state.
type stateFunc func(*lexer) stateFunc

const eof = 0

// lexer scans a source string rune by rune and accumulates item tokens.
type lexer struct {
	input       string
	start       int
	pos         int
	width       int
	line        int
	startOnLine int
	items       []item
	err         error
}

// newLexer creates a lexer positioned at the start of src.
func newLexer(src string) *lexer {
	return &lexer{
		input:       src,
		line:        1,
		startOnLine: 1,
	}
}

// Lex runs the state machine over src to completion and returns the
// resulting token slice, ending with a trailing itemEOF marker that Lex
// appends. An "unknown character" or "unterminated literal" error is
// returned on lexical failure.
func Lex(src string) ([]item, error) {
	l := newLexer(src)
	for state := stateFunc(lexCode); state != nil; {
		state = state(l)
	}
	if l.err != nil {
		return nil, l.err
	}
	l.items = append(l.items, item{typ: itemEOF, line: l.line, pos: l.startOnLine})
	return l.items, nil
}

// emit appends an item of type typ spanning [l.start, l.pos) to the token
// slice and advances l.start past it.
func (l *lexer) emit(typ itemType) {
	l.items = append(l.items, item{
		typ:  typ,
		val:  l.input[l.start:l.pos],
		line: l.line,
		pos:  l.startOnLine,
	})
	l.startOnLine += len(l.input[l.start:l.pos])
	l.start = l.pos
}

// next returns the next rune in the input, advancing the scan position.
func (l *lexer) next() rune {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.width = w
	l.pos += w
	return r
}

// ignore skips the pending input before this point.
func (l *lexer) ignore() {
	l.startOnLine += len(l.input[l.start:l.pos])
	l.start = l.pos
}

// backup steps back one rune. Must only be called once per call of next.
func (l *lexer) backup() {
	if l.pos > l.start {
		l.pos -= l.width
	}
}

// peek returns, but does not consume, the next rune in the input.
func (l *lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

// accept consumes the next rune if it is in the valid set.
func (l *lexer) accept(valid string) bool {
	if strings.ContainsRune(valid, l.next()) {
		return true
	}
	l.backup()
	return false
}

// acceptRun consumes a run of runes from the valid set.
func (l *lexer) acceptRun(valid string) {
	for strings.ContainsRune(valid, l.next()) {
	}
	l.backup()
}

// errorf stops the scan and records an "unknown character"/"unterminated
// literal" style error, mirroring the errors spec.md §7 names.
func (l *lexer) errorf(format string, args ...interface{}) stateFunc {
	l.err = errors.Wrapf(fmt.Errorf(format, args...), "lexer: line %d:%d", l.line, l.startOnLine)
	return nil
}

const digits = "0123456789"
const alphaStart = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ_"
const alphaNum = alphaStart + digits

// lexCode is the lexer's top-level state: skip whitespace/comments, then
// dispatch on the next rune's class.
func lexCode(l *lexer) stateFunc {
	r := l.next()
	switch {
	case r == eof:
		l.ignore()
		return nil
	case r == '\n':
		l.ignore()
		l.line++
		l.startOnLine = 1
		return lexCode
	case r == ' ' || r == '\t' || r == '\r':
		l.ignore()
		return lexCode
	case r == '/' && l.peek() == '/':
		return lexLineComment
	case r == '/' && l.peek() == '*':
		return lexBlockComment
	case strings.ContainsRune(digits, r):
		l.backup()
		return lexNumber
	case strings.ContainsRune(alphaStart, r):
		l.backup()
		return lexIdentifier
	default:
		l.backup()
		return lexOperator
	}
}

// lexLineComment consumes a "// ..." comment through end of line.
func lexLineComment(l *lexer) stateFunc {
	l.next() // consume the second '/'
	for {
		r := l.next()
		if r == '\n' || r == eof {
			l.backup()
			l.ignore()
			return lexCode
		}
	}
}

// lexBlockComment consumes a "/* ... */" comment.
func lexBlockComment(l *lexer) stateFunc {
	l.next() // consume the '*'
	for {
		r := l.next()
		if r == eof {
			return l.errorf("unterminated block comment")
		}
		if r == '\n' {
			l.line++
			l.startOnLine = 1
		}
		if r == '*' && l.peek() == '/' {
			l.next()
			l.ignore()
			return lexCode
		}
	}
}

// lexNumber scans a decimal integer literal.
func lexNumber(l *lexer) stateFunc {
	l.acceptRun(digits)
	if strings.ContainsRune(alphaStart, l.peek()) {
		return l.errorf("malformed number literal %q", l.input[l.start:l.pos])
	}
	l.emit(itemNumber)
	return lexCode
}

// lexIdentifier scans an identifier or keyword.
func lexIdentifier(l *lexer) stateFunc {
	l.acceptRun(alphaNum)
	if isKw, typ := isKeyword(l.input[l.start:l.pos]); isKw {
		l.emit(typ)
	} else {
		l.emit(itemIdentifier)
	}
	return lexCode
}

// lexOperator scans punctuation and operator tokens, including the
// two-character lookahead forms (<=, >=, ==, !=, &&, ||).
func lexOperator(l *lexer) stateFunc {
	r := l.next()
	switch r {
	case '(':
		l.emit(itemLParen)
	case ')':
		l.emit(itemRParen)
	case '{':
		l.emit(itemLBrace)
	case '}':
		l.emit(itemRBrace)
	case '[':
		l.emit(itemLBracket)
	case ']':
		l.emit(itemRBracket)
	case ',':
		l.emit(itemComma)
	case ';':
		l.emit(itemSemi)
	case '+':
		l.emit(itemPlus)
	case '-':
		l.emit(itemMinus)
	case '*':
		l.emit(itemStar)
	case '/':
		l.emit(itemSlash)
	case '%':
		l.emit(itemPercent)
	case '~':
		l.emit(itemTilde)
	case '!':
		if l.accept("=") {
			l.emit(itemNe)
		} else {
			l.emit(itemBang)
		}
	case '<':
		if l.accept("=") {
			l.emit(itemLe)
		} else {
			l.emit(itemLt)
		}
	case '>':
		if l.accept("=") {
			l.emit(itemGe)
		} else {
			l.emit(itemGt)
		}
	case '=':
		if l.accept("=") {
			l.emit(itemEqEq)
		} else {
			l.emit(itemAssign)
		}
	case '&':
		if l.accept("&") {
			l.emit(itemAndAnd)
		} else {
			return l.errorf("unknown character %q: bitwise '&' is not part of this language subset", r)
		}
	case '|':
		if l.accept("|") {
			l.emit(itemOrOr)
		} else {
			return l.errorf("unknown character %q: bitwise '|' is not part of this language subset", r)
		}
	default:
		return l.errorf("unknown character %q", r)
	}
	return lexCode
}

// TokenStream lexes src and returns a human-readable tabular dump of the
// resulting tokens, one per line: value, kind and source position.
func TokenStream(src string) (string, error) {
	toks, err := Lex(src)
	if err != nil {
		return "", err
	}
	sb := strings.Builder{}
	for _, t := range toks {
		if t.typ == itemEOF {
			sb.WriteString("EOF\n")
			continue
		}
		fmt.Fprintf(&sb, "%-14q%-12s line %d:%d\n", t.val, t.typ.String(), t.line, t.pos)
	}
	return sb.String(), nil
}

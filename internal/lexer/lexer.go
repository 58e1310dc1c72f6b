// Package lexer turns UTF-8 source text into a raw token stream, and
// provides the token filter that smooths newlines into a clean sequence
// separator per spec.md §4.2. Lexer errors (unrecognized characters,
// unterminated literals, unrecognized numeric suffixes) are returned by
// Tokenize as a *Error, not recorded in the diagnostics log.
package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/oxhq/vellum/internal/objtype"
	"github.com/oxhq/vellum/internal/token"
)

// Error is a lexical error: an illegal character, an unterminated
// literal, or a numeric literal with an unrecognized suffix.
type Error struct {
	Pos token.Position
	Msg string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Msg) }

// Lexer scans UTF-8 source text into a token stream, one token at a
// time, tracking line/column/byte position as it goes.
type Lexer struct {
	src     string
	pos     int // byte offset of the rune about to be read
	line    int
	col     int // rune column, 1-indexed
	lastErr error
}

// New creates a Lexer over src.
func New(src string) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

func (l *Lexer) here() token.Position {
	return token.Position{Line: l.line, Column: l.col, Offset: l.pos}
}

func (l *Lexer) peekRune() (rune, int) {
	if l.pos >= len(l.src) {
		return 0, 0
	}
	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	return r, size
}

func (l *Lexer) peekRuneAt(offset int) rune {
	p := l.pos
	for i := 0; i < offset; i++ {
		_, size := utf8.DecodeRuneInString(l.src[p:])
		if size == 0 {
			return 0
		}
		p += size
	}
	r, _ := utf8.DecodeRuneInString(l.src[p:])
	return r
}

func (l *Lexer) advance() rune {
	r, size := l.peekRune()
	if size == 0 {
		return 0
	}
	l.pos += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

// Err returns the first lexical error encountered, if any.
func (l *Lexer) Err() error { return l.lastErr }

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentCont(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// Next scans and returns the next raw token, including comments'
// surrounding whitespace handling, but never a Comment token itself:
// comments are fully consumed and skipped here, per spec.md §4.2 ("never
// reach the parser").
func (l *Lexer) Next() token.Token {
	l.skipWhitespaceAndComments()

	start := l.here()
	r, size := l.peekRune()
	if size == 0 {
		return token.Token{Kind: token.EOF, Span: token.Span{Start: start, End: start}}
	}

	switch {
	case r == '\n':
		l.advance()
		return l.finish(token.Newline, "\n", start)
	case isIdentStart(r):
		return l.scanIdent(start)
	case isDigit(r):
		return l.scanNumber(start)
	case r == '\'':
		return l.scanChar(start)
	}

	l.advance()
	switch r {
	case '+':
		return l.finish(token.Plus, "+", start)
	case '-':
		return l.finish(token.Minus, "-", start)
	case '*':
		return l.finish(token.Star, "*", start)
	case '/':
		return l.finish(token.Slash, "/", start)
	case '(':
		return l.finish(token.LParen, "(", start)
	case ')':
		return l.finish(token.RParen, ")", start)
	case '{':
		return l.finish(token.LBrace, "{", start)
	case '}':
		return l.finish(token.RBrace, "}", start)
	case ',':
		return l.finish(token.Comma, ",", start)
	case ';':
		return l.finish(token.Semi, ";", start)
	case '!':
		if nr, _ := l.peekRune(); nr == '=' {
			l.advance()
			return l.finish(token.NotEq, "!=", start)
		}
		return l.finish(token.Bang, "!", start)
	case '=':
		if nr, _ := l.peekRune(); nr == '=' {
			l.advance()
			return l.finish(token.EqEq, "==", start)
		}
		return l.finish(token.Assign, "=", start)
	case '<':
		if nr, _ := l.peekRune(); nr == '=' {
			l.advance()
			return l.finish(token.Le, "<=", start)
		}
		return l.finish(token.Lt, "<", start)
	case '>':
		if nr, _ := l.peekRune(); nr == '=' {
			l.advance()
			return l.finish(token.Ge, ">=", start)
		}
		return l.finish(token.Gt, ">", start)
	case '&':
		if nr, _ := l.peekRune(); nr == '&' {
			l.advance()
			return l.finish(token.AndAnd, "&&", start)
		}
		return l.finish(token.Amp, "&", start)
	case '|':
		if nr, _ := l.peekRune(); nr == '|' {
			l.advance()
			return l.finish(token.OrOr, "||", start)
		}
		return l.finish(token.Pipe, "|", start)
	case ':':
		if nr, _ := l.peekRune(); nr == '=' {
			l.advance()
			return l.finish(token.Walrus, ":=", start)
		}
		return l.finish(token.Colon, ":", start)
	case '.':
		if nr, _ := l.peekRune(); nr == '=' {
			l.advance()
			return l.finish(token.AssignEq, ".=", start)
		}
		l.setErr(start, fmt.Sprintf("unexpected character %q", r))
		return l.finish(token.EOF, ".", start)
	default:
		l.setErr(start, fmt.Sprintf("unexpected character %q", r))
		return l.finish(token.EOF, string(r), start)
	}
}

func (l *Lexer) finish(kind token.Kind, lit string, start token.Position) token.Token {
	return token.Token{Kind: kind, Literal: lit, Span: token.Span{Start: start, End: l.here()}}
}

func (l *Lexer) setErr(pos token.Position, msg string) {
	if l.lastErr == nil {
		l.lastErr = &Error{Pos: pos, Msg: msg}
	}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		r, size := l.peekRune()
		if size == 0 {
			return
		}
		switch {
		case r == ' ' || r == '\t' || r == '\r':
			l.advance()
		case r == '/' && l.peekRuneAt(1) == '/':
			l.skipLineComment()
		case r == '#' && l.peekRuneAt(1) == '!':
			l.skipLineComment()
		case r == '/' && l.peekRuneAt(1) == '*':
			l.skipBlockComment()
		default:
			return
		}
	}
}

func (l *Lexer) skipLineComment() {
	for {
		r, size := l.peekRune()
		if size == 0 || r == '\n' {
			return
		}
		l.advance()
	}
}

func (l *Lexer) skipBlockComment() {
	start := l.here()
	l.advance() // '/'
	l.advance() // '*'
	for {
		r, size := l.peekRune()
		if size == 0 {
			l.setErr(start, "unterminated block comment")
			return
		}
		if r == '*' && l.peekRuneAt(1) == '/' {
			l.advance()
			l.advance()
			return
		}
		l.advance()
	}
}

func (l *Lexer) scanIdent(start token.Position) token.Token {
	var b strings.Builder
	for {
		r, size := l.peekRune()
		if size == 0 || !isIdentCont(r) {
			break
		}
		b.WriteRune(r)
		l.advance()
	}
	lit := b.String()
	if kind, ok := token.Lookup(lit); ok {
		tok := l.finish(kind, lit, start)
		if kind == token.BoolLit {
			v := int32(0)
			if lit == "true" {
				v = 1
			}
			tok.Number = &token.NumberPayload{Int: v, Type: objtype.Bool}
		}
		return tok
	}
	return l.finish(token.Ident, lit, start)
}

func (l *Lexer) scanNumber(start token.Position) token.Token {
	var b strings.Builder
	isFloat := false
	for {
		r, size := l.peekRune()
		if size == 0 {
			break
		}
		if isDigit(r) {
			b.WriteRune(r)
			l.advance()
			continue
		}
		if r == '.' && !isFloat && isDigit(l.peekRuneAt(1)) {
			isFloat = true
			b.WriteRune(r)
			l.advance()
			continue
		}
		break
	}
	lit := b.String()

	// An identifier-shaped suffix immediately following the digits (no
	// intervening whitespace) with no recognized meaning is a lexer
	// error per spec.md §4.2.
	if r, _ := l.peekRune(); isIdentStart(r) {
		var suf strings.Builder
		for {
			r, size := l.peekRune()
			if size == 0 || !isIdentCont(r) {
				break
			}
			suf.WriteRune(r)
			l.advance()
		}
		l.setErr(start, fmt.Sprintf("unrecognized numeric literal suffix %q", suf.String()))
		return l.finish(token.NumberLit, lit+suf.String(), start)
	}

	tok := l.finish(token.NumberLit, lit, start)
	if isFloat {
		v, _ := strconv.ParseFloat(lit, 64)
		tok.Number = &token.NumberPayload{Double: v, Type: objtype.Double}
	} else {
		v, err := strconv.ParseInt(lit, 10, 32)
		if err != nil {
			l.setErr(start, fmt.Sprintf("integer literal %q out of range", lit))
		}
		tok.Number = &token.NumberPayload{Int: int32(v), Type: objtype.Int}
	}
	return tok
}

func (l *Lexer) scanChar(start token.Position) token.Token {
	l.advance() // opening '
	r, size := l.peekRune()
	if size == 0 {
		l.setErr(start, "unterminated char literal")
		return l.finish(token.CharLit, "'", start)
	}
	var value byte
	var lit strings.Builder
	lit.WriteRune('\'')
	if r == '\\' {
		l.advance()
		esc, _ := l.peekRune()
		l.advance()
		lit.WriteRune('\\')
		lit.WriteRune(esc)
		switch esc {
		case 'n':
			value = '\n'
		case 't':
			value = '\t'
		case '0':
			value = 0
		case '\\':
			value = '\\'
		case '\'':
			value = '\''
		default:
			l.setErr(start, fmt.Sprintf("unknown escape sequence \\%c", esc))
		}
	} else {
		l.advance()
		lit.WriteRune(r)
		if r > 0xFF {
			l.setErr(start, "char literal out of 8-bit range")
		}
		value = byte(r)
	}
	if nr, size := l.peekRune(); size == 0 || nr != '\'' {
		l.setErr(start, "unterminated char literal")
	} else {
		l.advance()
	}
	lit.WriteRune('\'')
	tok := l.finish(token.CharLit, lit.String(), start)
	tok.Number = &token.NumberPayload{Int: int32(value), Type: objtype.Char}
	return tok
}

// Tokenize scans the whole source into a token slice terminated by an
// EOF token, stopping early (after appending EOF) on the first lexical
// error.
func Tokenize(src string) ([]token.Token, error) {
	l := New(src)
	var toks []token.Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
		if l.lastErr != nil {
			break
		}
	}
	return toks, l.lastErr
}

// Package token defines the lexical token vocabulary the lexer produces
// and the parser consumes: token kinds, their filter classification, and
// source positions.
package token

import (
	"fmt"

	"github.com/oxhq/vellum/internal/objtype"
)

// Position is a single point in source text. Line and Column are
// 1-indexed for human-readable diagnostics; Offset is the 0-indexed byte
// offset, used for span arithmetic.
type Position struct {
	Line   int
	Column int
	Offset int
}

func (p Position) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Column) }

// Span covers the half-open byte range [Start, End) a token or AST node
// occupies in the source.
type Span struct {
	Start Position
	End   Position
}

func (s Span) String() string { return s.Start.String() }

// Kind enumerates the lexical token kinds produced by the lexer.
type Kind int

const (
	EOF Kind = iota
	Ident
	NumberLit
	CharLit
	BoolLit

	// Punctuation / operators.
	Plus     // +
	Minus    // -
	Star     // *
	Slash    // /
	Amp      // &
	Pipe     // |  (reserved; || is lexed as OrOr)
	Bang     // !
	EqEq     // ==
	NotEq    // !=
	Lt       // <
	Le       // <=
	Gt       // >
	Ge       // >=
	AndAnd   // &&
	OrOr     // ||
	Assign   // =
	Walrus   // :=
	AssignEq // .=
	Colon    // :
	Comma    // ,
	Semi     // ;
	LParen   // (
	RParen   // )
	LBrace   // {
	RBrace   // }
	Newline

	// Keywords.
	KwVal
	KwFun
	KwIf
	KwElse
	KwWhile
	KwReturn
	KwEnd
	KwMut
	KwStatic
	KwClass
	KwOp     // `op` as in op<name>(args)
	KwNoInit // `noinit`
)

var keywords = map[string]Kind{
	"val":    KwVal,
	"fun":    KwFun,
	"if":     KwIf,
	"else":   KwElse,
	"while":  KwWhile,
	"return": KwReturn,
	"end":    KwEnd,
	"mut":    KwMut,
	"static": KwStatic,
	"class":  KwClass,
	"op":     KwOp,
	"noinit": KwNoInit,
	"true":   BoolLit,
	"false":  BoolLit,
}

// Lookup returns the keyword Kind for ident, or the zero Kind and false if
// ident is not a reserved word.
func Lookup(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Ident:
		return "IDENT"
	case NumberLit:
		return "NUMBER"
	case CharLit:
		return "CHAR"
	case BoolLit:
		return "BOOL"
	case Newline:
		return "NEWLINE"
	default:
		if s, ok := symbolStrings[k]; ok {
			return s
		}
		if s, ok := keywordStrings[k]; ok {
			return s
		}
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

var symbolStrings = map[Kind]string{
	Plus: "+", Minus: "-", Star: "*", Slash: "/", Amp: "&", Pipe: "|", Bang: "!",
	EqEq: "==", NotEq: "!=", Lt: "<", Le: "<=", Gt: ">", Ge: ">=",
	AndAnd: "&&", OrOr: "||", Assign: "=", Walrus: ":=", AssignEq: ".=",
	Colon: ":", Comma: ",", Semi: ";", LParen: "(", RParen: ")", LBrace: "{", RBrace: "}",
}

var keywordStrings = map[Kind]string{
	KwVal: "val", KwFun: "fun", KwIf: "if", KwElse: "else", KwWhile: "while",
	KwReturn: "return", KwEnd: "end", KwMut: "mut", KwStatic: "static",
	KwClass: "class", KwOp: "op", KwNoInit: "noinit",
}

// Class is the filter-relevant classification of a token kind, per
// spec.md §4.2: starter, separator, delimiter, component-or-ambiguous, or
// newline. Every Kind not explicitly classified below is "other".
type Class int

const (
	Other Class = iota
	Starter
	Separator
	Delimiter
	ComponentOrAmbiguous
	NewlineClass
)

// Classify returns the filter classification for k.
func Classify(k Kind) Class {
	switch k {
	case Newline:
		return NewlineClass
	case KwIf, KwElse, KwWhile, KwFun, KwVal, KwReturn, KwClass,
		LParen, LBrace, Colon, Assign, Walrus, Semi,
		Plus, Minus, Star, Slash, Amp, Pipe, Bang,
		EqEq, NotEq, Lt, Le, Gt, Ge, AndAnd, OrOr, AssignEq:
		// Tokens after which a newline is purely decorative: an
		// operator or an opening construct cannot be meaningfully
		// followed by a sequence-separating newline, so the filter
		// drops one immediately after any of these ("starter").
		return Starter
	case RParen, RBrace, KwEnd:
		// Tokens before which a leading newline is purely decorative
		// ("delimiter"): a closing construct can't be preceded by a
		// dangling sequence separator.
		return Delimiter
	case Comma:
		return Separator
	default:
		return ComponentOrAmbiguous
	}
}

// NumberPayload carries a numeric literal's parsed value and fundamental
// type, attached to a NumberLit token.
type NumberPayload struct {
	Int    int32
	Double float64
	Type   objtype.Fundamental
}

// Token is a single lexical unit: a kind, a source span, the literal text
// that produced it, and an optional semantic payload.
type Token struct {
	Kind    Kind
	Literal string
	Span    Span
	Number  *NumberPayload // set when Kind == NumberLit, CharLit, or BoolLit
}

func (t Token) String() string {
	if len(t.Literal) > 24 {
		return fmt.Sprintf("%s(%q...) at %s", t.Kind, t.Literal[:24], t.Span.Start)
	}
	return fmt.Sprintf("%s(%q) at %s", t.Kind, t.Literal, t.Span.Start)
}

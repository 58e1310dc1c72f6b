package lexer

import "github.com/oxhq/vellum/internal/token"

// Filter implements spec.md §4.2's five newline-smoothing rules over a
// raw token stream, so the parser only ever sees a newline where it
// functions as a genuine sequence separator:
//
//  1. Drop any leading newlines at start of stream.
//  2. Drop newlines immediately after a starter token.
//  3. Drop newlines immediately before a delimiter token.
//  4. Drop newlines immediately surrounding a separator token.
//  5. Collapse any remaining run of newlines to a single newline.
func Filter(toks []token.Token) []token.Token {
	out := make([]token.Token, 0, len(toks))
	atStart := true

	for i := 0; i < len(toks); i++ {
		tok := toks[i]
		if tok.Kind != token.Newline {
			out = append(out, tok)
			atStart = false
			continue
		}

		// Rule 1: leading newlines.
		if atStart {
			continue
		}
		// Rule 2: newline right after a starter.
		if len(out) > 0 && token.Classify(out[len(out)-1].Kind) == token.Starter {
			continue
		}
		// Rule 3: newline right before a delimiter -- look ahead past
		// any further newlines to the next real token.
		if next, ok := nextNonNewline(toks, i+1); ok && token.Classify(next.Kind) == token.Delimiter {
			continue
		}
		// Rule 4: newline surrounding a separator -- dropped both
		// before and after, which falls out of rules 2 and 3 acting on
		// the separator's neighbors plus this explicit check for a
		// separator immediately preceding.
		if len(out) > 0 && token.Classify(out[len(out)-1].Kind) == token.Separator {
			continue
		}
		if next, ok := nextNonNewline(toks, i+1); ok && token.Classify(next.Kind) == token.Separator {
			continue
		}
		// Rule 5: collapse runs -- if the last emitted token is already
		// a newline, skip this one.
		if len(out) > 0 && out[len(out)-1].Kind == token.Newline {
			continue
		}
		out = append(out, tok)
	}

	// A run of newlines at the very end (trailing before EOF) has no
	// role as a separator; drop it.
	out = trimTrailingNewlineBeforeEOF(out)
	return out
}

func nextNonNewline(toks []token.Token, from int) (token.Token, bool) {
	for i := from; i < len(toks); i++ {
		if toks[i].Kind != token.Newline {
			return toks[i], true
		}
	}
	return token.Token{}, false
}

func trimTrailingNewlineBeforeEOF(toks []token.Token) []token.Token {
	if len(toks) < 2 {
		return toks
	}
	last := len(toks) - 1
	if toks[last].Kind == token.EOF && toks[last-1].Kind == token.Newline {
		out := make([]token.Token, 0, len(toks)-1)
		out = append(out, toks[:last-1]...)
		out = append(out, toks[last])
		return out
	}
	return toks
}

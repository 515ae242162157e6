package lexer

import (
	"github.com/red-freak/olang/pkg/diag"
)

// keywords maps reserved identifiers to their token kind. Both the long and
// the short declaration keyword lex to Let.
var keywords = map[string]Kind{
	"let": Let,
	"v":   Let,
}

// Tokenize scans source into a TokenStream. The stream always ends with an
// EOF token. The first unrecognized character aborts the scan with a lexical
// diagnostic at its offset.
func Tokenize(source string) (*TokenStream, error) {
	s := &scanner{source: source}
	tokens := make([]Token, 0, len(source)/2+1)
	for {
		tok, err := s.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == EOF {
			return &TokenStream{source: source, tokens: tokens}, nil
		}
	}
}

type scanner struct {
	source string
	cursor int
}

func (s *scanner) next() (Token, error) {
	s.skipWhitespace()
	if s.cursor >= len(s.source) {
		return Token{Kind: EOF, From: len(s.source), To: len(s.source)}, nil
	}

	start := s.cursor
	ch := s.source[s.cursor]

	if isDigit(ch) {
		return s.scanNumber(), nil
	}
	if isAlpha(ch) {
		return s.scanIdentifier(), nil
	}

	// Two-character operators take priority over their one-character prefixes.
	if ch == '*' && s.peek() == '*' {
		s.cursor += 2
		return s.token(AsteriskAsterisk, start), nil
	}
	if ch == '=' && s.peek() == '>' {
		s.cursor += 2
		return s.token(Arrow, start), nil
	}

	kind := EOF
	switch ch {
	case '+':
		kind = Plus
	case '-':
		kind = Minus
	case '*':
		kind = Asterisk
	case '/':
		kind = Slash
	case '%':
		kind = Percent
	case '=':
		kind = Equals
	case '(':
		kind = LParen
	case ')':
		kind = RParen
	case '{':
		kind = LBrace
	case '}':
		kind = RBrace
	case ',':
		kind = Comma
	case ';':
		kind = Semicolon
	default:
		return Token{}, diag.New(diag.Lexical, start, start+1, "unexpected character %q", string(ch))
	}
	s.cursor++
	return s.token(kind, start), nil
}

func (s *scanner) skipWhitespace() {
	for s.cursor < len(s.source) {
		switch s.source[s.cursor] {
		case ' ', '\t', '\r', '\n':
			s.cursor++
		default:
			return
		}
	}
}

// scanNumber consumes digits with at most one decimal point. A trailing
// point with no fractional digits is still a valid numeric lexeme.
func (s *scanner) scanNumber() Token {
	start := s.cursor
	for s.cursor < len(s.source) && isDigit(s.source[s.cursor]) {
		s.cursor++
	}
	if s.cursor < len(s.source) && s.source[s.cursor] == '.' {
		s.cursor++
		for s.cursor < len(s.source) && isDigit(s.source[s.cursor]) {
			s.cursor++
		}
	}
	return s.token(Number, start)
}

func (s *scanner) scanIdentifier() Token {
	start := s.cursor
	for s.cursor < len(s.source) && (isAlpha(s.source[s.cursor]) || isDigit(s.source[s.cursor])) {
		s.cursor++
	}
	tok := s.token(Identifier, start)
	if kind, ok := keywords[tok.Text]; ok {
		tok.Kind = kind
	}
	return tok
}

func (s *scanner) token(kind Kind, start int) Token {
	return Token{Kind: kind, Text: s.source[start:s.cursor], From: start, To: s.cursor}
}

func (s *scanner) peek() byte {
	if s.cursor+1 >= len(s.source) {
		return 0
	}
	return s.source[s.cursor+1]
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlpha(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch == '_'
}

// TokenStream is a materialized token sequence with a mark/reset cursor. The
// parser needs to look past a closing parenthesis to tell a parenthesized
// expression from a function header, so the cursor backtracks to any saved
// position.
type TokenStream struct {
	source string
	tokens []Token
	cursor int
}

// Source returns the text the stream was scanned from.
func (ts *TokenStream) Source() string {
	return ts.source
}

// Tokens returns the underlying token slice, EOF token included.
func (ts *TokenStream) Tokens() []Token {
	return ts.tokens
}

// Peek returns the current token without advancing.
func (ts *TokenStream) Peek() Token {
	return ts.at(ts.cursor)
}

// PeekAhead returns the token n positions past the current one.
func (ts *TokenStream) PeekAhead(n int) Token {
	return ts.at(ts.cursor + n)
}

// Next returns the current token and advances past it.
func (ts *TokenStream) Next() Token {
	tok := ts.at(ts.cursor)
	if ts.cursor < len(ts.tokens)-1 {
		ts.cursor++
	}
	return tok
}

// Mark saves the cursor position for a later Reset.
func (ts *TokenStream) Mark() int {
	return ts.cursor
}

// Reset rewinds the cursor to a position previously returned by Mark.
func (ts *TokenStream) Reset(mark int) {
	ts.cursor = mark
}

func (ts *TokenStream) at(idx int) Token {
	if idx >= len(ts.tokens) {
		return ts.tokens[len(ts.tokens)-1]
	}
	return ts.tokens[idx]
}

package lexer

import "fmt"

// Kind identifies the token category.
type Kind int

const (
	EOF Kind = iota
	Number
	Identifier
	Let
	Plus
	Minus
	Asterisk
	AsteriskAsterisk
	Slash
	Percent
	Equals
	Arrow
	LParen
	RParen
	LBrace
	RBrace
	Comma
	Semicolon
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "end of input"
	case Number:
		return "number"
	case Identifier:
		return "identifier"
	case Let:
		return "'let'"
	case Plus:
		return "'+'"
	case Minus:
		return "'-'"
	case Asterisk:
		return "'*'"
	case AsteriskAsterisk:
		return "'**'"
	case Slash:
		return "'/'"
	case Percent:
		return "'%'"
	case Equals:
		return "'='"
	case Arrow:
		return "'=>'"
	case LParen:
		return "'('"
	case RParen:
		return "')'"
	case LBrace:
		return "'{'"
	case RBrace:
		return "'}'"
	case Comma:
		return "','"
	case Semicolon:
		return "';'"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Token is one lexical unit. From and To are byte offsets into the source;
// Text is the raw lexeme (empty for EOF).
type Token struct {
	Kind Kind
	Text string
	From int
	To   int
}

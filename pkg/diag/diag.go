package diag

import "fmt"

// Category identifies which pipeline stage produced a diagnostic.
type Category int

const (
	Lexical Category = iota
	Syntax
	Runtime
)

func (c Category) String() string {
	switch c {
	case Lexical:
		return "lexical"
	case Syntax:
		return "syntax"
	case Runtime:
		return "runtime"
	default:
		return fmt.Sprintf("unknown_category_%d", int(c))
	}
}

// Diagnostic is the single failure value shared by the lexer, parser, and
// interpreter. From and To are byte offsets into the original source.
type Diagnostic struct {
	Category Category
	Message  string
	From     int
	To       int

	// Expected and Found are populated for syntax diagnostics so callers can
	// render "expected X, found Y" without re-parsing the message.
	Expected string
	Found    string
}

func (d *Diagnostic) Error() string {
	if d.From == d.To {
		return fmt.Sprintf("%s error at offset %d: %s", d.Category, d.From, d.Message)
	}
	return fmt.Sprintf("%s error at %d-%d: %s", d.Category, d.From, d.To, d.Message)
}

// New builds a diagnostic for the given category and source range.
func New(category Category, from, to int, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
		From:     from,
		To:       to,
	}
}

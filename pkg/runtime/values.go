package runtime

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/red-freak/olang/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNumber Kind = iota
	KindFunction
	KindNil
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindFunction:
		return "function"
	case KindNil:
		return "nil"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
	String() string
}

// NumberValue wraps the language's only numeric type, a float64.
type NumberValue struct {
	Val float64
}

func (v NumberValue) Kind() Kind { return KindNumber }

func (v NumberValue) String() string {
	return strconv.FormatFloat(v.Val, 'g', -1, 64)
}

// FunctionValue is a closure: the function literal plus the environment that
// was active at its definition site. The environment is shared by reference,
// so bindings created after the closure are visible on later calls.
type FunctionValue struct {
	Declaration *ast.FunctionExpression
	Closure     *Environment
}

func (v *FunctionValue) Kind() Kind { return KindFunction }

func (v *FunctionValue) String() string {
	params := make([]string, 0, len(v.Declaration.Params))
	for _, p := range v.Declaration.Params {
		params = append(params, p.Name)
	}
	return fmt.Sprintf("(%s) => <body>", strings.Join(params, ", "))
}

// NilValue is the result of an empty block body and of the empty program.
type NilValue struct{}

func (NilValue) Kind() Kind { return KindNil }

func (NilValue) String() string { return "nil" }

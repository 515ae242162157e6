package interpreter

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/red-freak/olang/pkg/ast"
	"github.com/red-freak/olang/pkg/diag"
	"github.com/red-freak/olang/pkg/parser"
	"github.com/red-freak/olang/pkg/runtime"
)

func evalProgram(t *testing.T, source string) runtime.Value {
	t.Helper()
	program, err := parser.ParseProgram(source)
	if err != nil {
		t.Fatalf("parse %q failed: %v", source, err)
	}
	result, err := New().EvaluateProgram(program)
	if err != nil {
		t.Fatalf("evaluate %q failed: %v", source, err)
	}
	return result
}

func evalNumber(t *testing.T, source string) float64 {
	t.Helper()
	result := evalProgram(t, source)
	num, ok := result.(runtime.NumberValue)
	if !ok {
		t.Fatalf("evaluate %q: expected a number, got %s (%s)", source, result.Kind(), result)
	}
	return num.Val
}

func evalError(t *testing.T, source string) *diag.Diagnostic {
	t.Helper()
	program, err := parser.ParseProgram(source)
	if err != nil {
		t.Fatalf("parse %q failed: %v", source, err)
	}
	_, err = New().EvaluateProgram(program)
	if err == nil {
		t.Fatalf("evaluate %q: expected a runtime error", source)
	}
	var d *diag.Diagnostic
	if !errors.As(err, &d) {
		t.Fatalf("evaluate %q: expected a diagnostic, got %T: %v", source, err, err)
	}
	if d.Category != diag.Runtime {
		t.Fatalf("evaluate %q: expected a runtime diagnostic, got %v", source, d.Category)
	}
	return d
}

func TestArithmetic(t *testing.T) {
	for _, tc := range []struct {
		source string
		want   float64
	}{
		{"1 - 2 - 3", -4},
		{"2 ** 3 ** 2", 512},
		{"1 + 2 * 3", 7},
		{"2 * 3 ** 2", 18},
		{"10 ** 2 * 3", 300},
		{"(1 + 2) * 3", 9},
		{"-2 ** 2", 4},
		{"1 - -2", 3},
		{"7 % 2", 1},
		{"7 % 4", 3},
		{"-7 % 2", -1},
		{"7 % -2", 1},
		{"9 / 2", 4.5},
	} {
		if got := evalNumber(t, tc.source); got != tc.want {
			t.Fatalf("evaluate %q: expected %v, got %v", tc.source, tc.want, got)
		}
	}
}

func TestNonFiniteResultsAreValues(t *testing.T) {
	if got := evalNumber(t, "1 / 0"); !math.IsInf(got, 1) {
		t.Fatalf("expected +Inf, got %v", got)
	}
	if got := evalNumber(t, "-1 / 0"); !math.IsInf(got, -1) {
		t.Fatalf("expected -Inf, got %v", got)
	}
	if got := evalNumber(t, "0 / 0"); !math.IsNaN(got) {
		t.Fatalf("expected NaN, got %v", got)
	}
}

func TestParenthesizationNeutrality(t *testing.T) {
	for _, source := range []string{"1 + 2 * 3", "2 ** 3 ** 2", "7 % 4", "-2"} {
		plain := evalNumber(t, source)
		wrapped := evalNumber(t, "("+source+")")
		if plain != wrapped {
			t.Fatalf("wrapping %q changed the result: %v vs %v", source, plain, wrapped)
		}
	}
}

func TestClosureCapturesEnvironment(t *testing.T) {
	if got := evalNumber(t, "let inc = (x) => x + 1\ninc(1)"); got != 2 {
		t.Fatalf("expected 2, got %v", got)
	}
}

func TestNestedScopesResolveAndShadow(t *testing.T) {
	source := "let square = (x) => { x ** 2 }\n" +
		"let inc = (x) => x + 1\n" +
		"let main = (x) => { let y = inc(x); square(y) }\n" +
		"main(11)"
	if got := evalNumber(t, source); got != 144 {
		t.Fatalf("expected 144, got %v", got)
	}
}

func TestDeclarationShadowsOuterBinding(t *testing.T) {
	source := "let x = 1\n" +
		"let f = (x) => { let x = x + 1; x }\n" +
		"f(10) + x"
	// The parameter shadows the global, the inner declaration shadows the
	// parameter, and the global stays 1.
	if got := evalNumber(t, source); got != 12 {
		t.Fatalf("expected 12, got %v", got)
	}
}

func TestAssignmentRebindsNearestScope(t *testing.T) {
	source := "let x = 1\n" +
		"let bump = () => { x = x + 10; x }\n" +
		"bump()\n" +
		"x"
	if got := evalNumber(t, source); got != 11 {
		t.Fatalf("expected the outer binding to change to 11, got %v", got)
	}
}

func TestAssignmentToUndeclaredNameDefines(t *testing.T) {
	interp := New()
	program, err := parser.ParseProgram("y = 5\ny + 1")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	result, err := interp.EvaluateProgram(program)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if num, ok := result.(runtime.NumberValue); !ok || num.Val != 6 {
		t.Fatalf("expected 6, got %s", result)
	}
	if _, ok := interp.GlobalEnvironment().Get("y"); !ok {
		t.Fatal("expected 'y' to be defined in the global environment")
	}
}

func TestAssignmentYieldsAssignedValue(t *testing.T) {
	if got := evalNumber(t, "x = 5"); got != 5 {
		t.Fatalf("expected 5, got %v", got)
	}
	if got := evalNumber(t, "let a = 0\nlet b = 0\na = b = 3\na + b"); got != 6 {
		t.Fatalf("expected chained assignment to yield 6, got %v", got)
	}
}

func TestCounterClosureSharesState(t *testing.T) {
	source := "let make = () => { let n = 0; () => { n = n + 1; n } }\n" +
		"let count = make()\n" +
		"count()\n" +
		"count()"
	if got := evalNumber(t, source); got != 2 {
		t.Fatalf("expected 2, got %v", got)
	}
}

func TestClosureSeesLaterBindings(t *testing.T) {
	// The closure captures the environment by reference, so a binding created
	// after the closure is visible at call time.
	source := "let f = () => g()\n" +
		"let g = () => 7\n" +
		"f()"
	if got := evalNumber(t, source); got != 7 {
		t.Fatalf("expected 7, got %v", got)
	}
}

func TestSelfRecursionResolvesOwnName(t *testing.T) {
	// The language has no conditional, so a self-call cannot terminate; hitting
	// the call depth guard proves the closure resolved its own name instead of
	// failing with an unresolved identifier.
	d := evalError(t, "let f = () => f()\nf()")
	if !strings.Contains(d.Message, "call depth") {
		t.Fatalf("expected the call depth guard, got %q", d.Message)
	}
}

func TestEmptyBodyYieldsNil(t *testing.T) {
	result := evalProgram(t, "let f = () => {}\nf()")
	if result.Kind() != runtime.KindNil {
		t.Fatalf("expected nil, got %s (%s)", result.Kind(), result)
	}
}

func TestEmptyProgramYieldsNil(t *testing.T) {
	result := evalProgram(t, "")
	if result.Kind() != runtime.KindNil {
		t.Fatalf("expected nil, got %s (%s)", result.Kind(), result)
	}
}

func TestUnresolvedIdentifier(t *testing.T) {
	d := evalError(t, "zzz")
	if !strings.Contains(d.Message, "unresolved identifier 'zzz'") {
		t.Fatalf("unexpected message %q", d.Message)
	}
	if d.From != 0 || d.To != 3 {
		t.Fatalf("expected error range [0,3), got [%d,%d)", d.From, d.To)
	}
}

func TestCallNonFunction(t *testing.T) {
	d := evalError(t, "let x = 1\nx(2)")
	if !strings.Contains(d.Message, "not callable") {
		t.Fatalf("unexpected message %q", d.Message)
	}
}

func TestArityMismatch(t *testing.T) {
	d := evalError(t, "let inc = (x) => x + 1\ninc(1, 2)")
	if !strings.Contains(d.Message, "expects 1 arguments, got 2") {
		t.Fatalf("expected the diagnostic to name expected and actual counts, got %q", d.Message)
	}
}

func TestUnaryRequiresNumber(t *testing.T) {
	// The ';' ends the declaration: without it the '-' would fold into the
	// function body as a subtraction.
	d := evalError(t, "let f = (x) => x;\n-f")
	if !strings.Contains(d.Message, "requires a number") {
		t.Fatalf("unexpected message %q", d.Message)
	}
}

func TestBinaryRequiresNumbers(t *testing.T) {
	d := evalError(t, "let f = (x) => x\nf + 1")
	if !strings.Contains(d.Message, "numeric operands") {
		t.Fatalf("unexpected message %q", d.Message)
	}
}

func TestInterpretStandaloneNodes(t *testing.T) {
	result, err := Interpret(ast.Bin("+", ast.Num(1), ast.Num(2)))
	if err != nil {
		t.Fatalf("interpret failed: %v", err)
	}
	if num, ok := result.(runtime.NumberValue); !ok || num.Val != 3 {
		t.Fatalf("expected 3, got %s", result)
	}

	stmt, err := parser.ParseStatement("let a = 4")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	result, err = Interpret(stmt)
	if err != nil {
		t.Fatalf("interpret failed: %v", err)
	}
	if num, ok := result.(runtime.NumberValue); !ok || num.Val != 4 {
		t.Fatalf("expected the declaration to yield 4, got %s", result)
	}
}

func TestEvaluateKeepsGlobalState(t *testing.T) {
	interp := New()
	for _, source := range []string{"let a = 2", "let b = a * 3", "a + b"} {
		stmt, err := parser.ParseStatement(source)
		if err != nil {
			t.Fatalf("parse %q failed: %v", source, err)
		}
		if _, err := interp.Evaluate(stmt); err != nil {
			t.Fatalf("evaluate %q failed: %v", source, err)
		}
	}
	val, ok := interp.GlobalEnvironment().Get("b")
	if !ok {
		t.Fatal("expected 'b' to be bound in the global environment")
	}
	if num, ok := val.(runtime.NumberValue); !ok || num.Val != 6 {
		t.Fatalf("expected b=6, got %s", val)
	}
}

func TestBlockScopeDoesNotLeak(t *testing.T) {
	// Declarations inside a function body live in the invocation scope.
	source := "let f = () => { let tmp = 9; tmp }\nf()\ntmp"
	d := evalError(t, source)
	if !strings.Contains(d.Message, "unresolved identifier 'tmp'") {
		t.Fatalf("unexpected message %q", d.Message)
	}
}

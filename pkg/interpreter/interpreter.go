package interpreter

import (
	"math"

	"github.com/red-freak/olang/pkg/ast"
	"github.com/red-freak/olang/pkg/diag"
	"github.com/red-freak/olang/pkg/runtime"
)

// maxCallDepth bounds interpreted call nesting so runaway recursion surfaces
// a runtime diagnostic instead of exhausting the host stack.
const maxCallDepth = 4096

// Interpreter drives evaluation of olang AST nodes. Evaluation is
// single-threaded and synchronous; every entry point runs to completion or
// fails with a diagnostic.
type Interpreter struct {
	global    *runtime.Environment
	callDepth int
}

// New returns an interpreter with an empty global environment.
func New() *Interpreter {
	return &Interpreter{global: runtime.NewEnvironment(nil)}
}

// GlobalEnvironment returns the interpreter's top-level environment.
func (i *Interpreter) GlobalEnvironment() *runtime.Environment {
	return i.global
}

// Interpret evaluates a program or a standalone expression in a fresh
// interpreter and returns the resulting value.
func Interpret(node ast.Node) (runtime.Value, error) {
	return New().Evaluate(node)
}

// Evaluate dispatches on the node category. Programs run in the
// interpreter's global environment; expressions and statements evaluate
// against it directly, so results of earlier calls stay visible.
func (i *Interpreter) Evaluate(node ast.Node) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.Program:
		return i.EvaluateProgram(n)
	case ast.Statement:
		return i.evaluateStatement(n, i.global)
	default:
		return nil, diag.New(diag.Runtime, n.Span().From, n.Span().To, "cannot evaluate node of type %s", n.NodeType())
	}
}

// EvaluateProgram executes statements in order within the shared top-level
// environment and returns the last statement's value. The empty program
// evaluates to nil.
func (i *Interpreter) EvaluateProgram(program *ast.Program) (runtime.Value, error) {
	var last runtime.Value = runtime.NilValue{}
	for _, stmt := range program.Statements {
		val, err := i.evaluateStatement(stmt, i.global)
		if err != nil {
			return nil, err
		}
		last = val
	}
	return last, nil
}

func (i *Interpreter) evaluateStatement(node ast.Statement, env *runtime.Environment) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.VariableDeclaration:
		return i.evaluateVariableDeclaration(n, env)
	case ast.Expression:
		return i.evaluateExpression(n, env)
	default:
		return nil, diag.New(diag.Runtime, n.Span().From, n.Span().To, "unsupported statement type %s", n.NodeType())
	}
}

func (i *Interpreter) evaluateExpression(node ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.NumericLiteral:
		return runtime.NumberValue{Val: n.Value}, nil
	case *ast.Identifier:
		val, ok := env.Get(n.Name)
		if !ok {
			return nil, diag.New(diag.Runtime, n.Span().From, n.Span().To, "unresolved identifier '%s'", n.Name)
		}
		return val, nil
	case *ast.UnaryExpression:
		return i.evaluateUnaryExpression(n, env)
	case *ast.BinaryExpression:
		return i.evaluateBinaryExpression(n, env)
	case *ast.FunctionExpression:
		return &runtime.FunctionValue{Declaration: n, Closure: env}, nil
	case *ast.FunctionCall:
		return i.evaluateFunctionCall(n, env)
	case *ast.BlockExpression:
		return i.evaluateBlock(n, env)
	default:
		return nil, diag.New(diag.Runtime, n.Span().From, n.Span().To, "unsupported expression type %s", n.NodeType())
	}
}

// evaluateVariableDeclaration binds the name in the current scope, shadowing
// any outer binding of the same name, and yields the bound value.
func (i *Interpreter) evaluateVariableDeclaration(decl *ast.VariableDeclaration, env *runtime.Environment) (runtime.Value, error) {
	val, err := i.evaluateExpression(decl.Initializer, env)
	if err != nil {
		return nil, err
	}
	env.Define(decl.Name.Name, val)
	return val, nil
}

func (i *Interpreter) evaluateUnaryExpression(expr *ast.UnaryExpression, env *runtime.Environment) (runtime.Value, error) {
	operand, err := i.evaluateExpression(expr.Operand, env)
	if err != nil {
		return nil, err
	}
	num, ok := operand.(runtime.NumberValue)
	if !ok {
		return nil, diag.New(diag.Runtime, expr.Span().From, expr.Span().To, "operator '-' requires a number, got %s", operand.Kind())
	}
	return runtime.NumberValue{Val: -num.Val}, nil
}

func (i *Interpreter) evaluateBinaryExpression(expr *ast.BinaryExpression, env *runtime.Environment) (runtime.Value, error) {
	if expr.Operator == "=" {
		return i.evaluateAssignment(expr, env)
	}
	left, err := i.evaluateExpression(expr.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluateExpression(expr.Right, env)
	if err != nil {
		return nil, err
	}
	lnum, lok := left.(runtime.NumberValue)
	rnum, rok := right.(runtime.NumberValue)
	if !lok || !rok {
		return nil, diag.New(diag.Runtime, expr.Span().From, expr.Span().To,
			"operator '%s' requires numeric operands, got %s and %s", expr.Operator, left.Kind(), right.Kind())
	}
	// Non-finite results (division by zero, overflow) are values, not errors.
	switch expr.Operator {
	case "+":
		return runtime.NumberValue{Val: lnum.Val + rnum.Val}, nil
	case "-":
		return runtime.NumberValue{Val: lnum.Val - rnum.Val}, nil
	case "*":
		return runtime.NumberValue{Val: lnum.Val * rnum.Val}, nil
	case "/":
		return runtime.NumberValue{Val: lnum.Val / rnum.Val}, nil
	case "%":
		// Truncating remainder; the sign follows the dividend.
		return runtime.NumberValue{Val: math.Mod(lnum.Val, rnum.Val)}, nil
	case "**":
		return runtime.NumberValue{Val: math.Pow(lnum.Val, rnum.Val)}, nil
	default:
		return nil, diag.New(diag.Runtime, expr.Span().From, expr.Span().To, "unsupported binary operator '%s'", expr.Operator)
	}
}

// evaluateAssignment rebinds the name in the innermost scope that already
// defines it; an undeclared name is defined in the current scope. The
// expression yields the assigned value.
func (i *Interpreter) evaluateAssignment(expr *ast.BinaryExpression, env *runtime.Environment) (runtime.Value, error) {
	target, ok := expr.Left.(*ast.Identifier)
	if !ok {
		return nil, diag.New(diag.Runtime, expr.Left.Span().From, expr.Left.Span().To, "assignment target must be an identifier")
	}
	val, err := i.evaluateExpression(expr.Right, env)
	if err != nil {
		return nil, err
	}
	if !env.Assign(target.Name, val) {
		env.Define(target.Name, val)
	}
	return val, nil
}

func (i *Interpreter) evaluateFunctionCall(call *ast.FunctionCall, env *runtime.Environment) (runtime.Value, error) {
	calleeVal, ok := env.Get(call.Callee.Name)
	if !ok {
		return nil, diag.New(diag.Runtime, call.Callee.Span().From, call.Callee.Span().To, "unresolved identifier '%s'", call.Callee.Name)
	}
	fn, ok := calleeVal.(*runtime.FunctionValue)
	if !ok {
		return nil, diag.New(diag.Runtime, call.Callee.Span().From, call.Callee.Span().To,
			"'%s' is not callable (kind %s)", call.Callee.Name, calleeVal.Kind())
	}
	params := fn.Declaration.Params
	if len(call.Arguments) != len(params) {
		return nil, diag.New(diag.Runtime, call.Span().From, call.Span().To,
			"function '%s' expects %d arguments, got %d", call.Callee.Name, len(params), len(call.Arguments))
	}
	args := make([]runtime.Value, 0, len(call.Arguments))
	for _, argExpr := range call.Arguments {
		val, err := i.evaluateExpression(argExpr, env)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}

	if i.callDepth >= maxCallDepth {
		return nil, diag.New(diag.Runtime, call.Span().From, call.Span().To, "call depth exceeds %d frames", maxCallDepth)
	}
	i.callDepth++
	defer func() { i.callDepth-- }()

	localEnv := runtime.NewEnvironment(fn.Closure)
	for idx, param := range params {
		localEnv.Define(param.Name, args[idx])
	}
	return i.evaluateExpression(fn.Declaration.Body, localEnv)
}

// evaluateBlock runs statements in a fresh child scope and yields the last
// statement's value; the empty block evaluates to nil.
func (i *Interpreter) evaluateBlock(block *ast.BlockExpression, env *runtime.Environment) (runtime.Value, error) {
	scope := runtime.NewEnvironment(env)
	var result runtime.Value = runtime.NilValue{}
	for _, stmt := range block.Body {
		val, err := i.evaluateStatement(stmt, scope)
		if err != nil {
			return nil, err
		}
		result = val
	}
	return result, nil
}

package ast

// Compact constructors for building trees in tests and embedding callers.

func ID(name string) *Identifier {
	return NewIdentifier(name)
}

func Num(value float64) *NumericLiteral {
	return NewNumericLiteral(value)
}

func Neg(operand Expression) *UnaryExpression {
	return NewUnaryExpression("-", operand)
}

func Bin(operator string, left, right Expression) *BinaryExpression {
	return NewBinaryExpression(operator, left, right)
}

func Assign(name string, value Expression) *BinaryExpression {
	return NewBinaryExpression("=", ID(name), value)
}

func Let(name string, initializer Expression) *VariableDeclaration {
	return NewVariableDeclaration(ID(name), initializer)
}

func Fn(params []string, body Expression) *FunctionExpression {
	var ids []*Identifier
	for _, p := range params {
		ids = append(ids, ID(p))
	}
	return NewFunctionExpression(ids, body)
}

func Call(callee string, args ...Expression) *FunctionCall {
	return NewFunctionCall(ID(callee), args)
}

func Block(statements ...Statement) *BlockExpression {
	return NewBlockExpression(statements)
}

func Prog(statements ...Statement) *Program {
	return NewProgram(statements)
}

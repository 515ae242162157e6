package parser

import (
	"strconv"

	"github.com/red-freak/olang/pkg/ast"
	"github.com/red-freak/olang/pkg/diag"
	"github.com/red-freak/olang/pkg/lexer"
)

// maxNestingDepth bounds recursive descent so pathological inputs surface a
// syntax diagnostic instead of exhausting the host stack.
const maxNestingDepth = 512

// ParseProgram tokenizes and parses a whole source text. Statements are
// separated by semicolons; a separator may be omitted where the statement
// boundary is unambiguous, and a single trailing semicolon is allowed.
func ParseProgram(source string) (*ast.Program, error) {
	p, err := newParser(source)
	if err != nil {
		return nil, err
	}
	return p.parseProgram()
}

// ParseStatement parses exactly one statement followed by end of input.
func ParseStatement(source string) (ast.Statement, error) {
	p, err := newParser(source)
	if err != nil {
		return nil, err
	}
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if p.ts.Peek().Kind == lexer.Semicolon {
		p.ts.Next()
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return stmt, nil
}

// ParseExpression parses exactly one expression followed by end of input.
func ParseExpression(source string) (ast.Expression, error) {
	p, err := newParser(source)
	if err != nil {
		return nil, err
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return expr, nil
}

type parser struct {
	ts    *lexer.TokenStream
	depth int
}

func newParser(source string) (*parser, error) {
	ts, err := lexer.Tokenize(source)
	if err != nil {
		return nil, err
	}
	return &parser{ts: ts}, nil
}

func (p *parser) parseProgram() (*ast.Program, error) {
	var statements []ast.Statement
	for p.ts.Peek().Kind != lexer.EOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
		if p.ts.Peek().Kind == lexer.Semicolon {
			p.ts.Next()
		}
	}
	program := ast.NewProgram(statements)
	ast.SetSpan(program, ast.Span{From: 0, To: len(p.ts.Source())})
	return program, nil
}

func (p *parser) parseStatement() (ast.Statement, error) {
	if p.ts.Peek().Kind == lexer.Let {
		return p.parseVariableDeclaration()
	}
	return p.parseExpression()
}

func (p *parser) parseVariableDeclaration() (*ast.VariableDeclaration, error) {
	letTok := p.ts.Next()
	nameTok, err := p.expect(lexer.Identifier)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Equals); err != nil {
		return nil, err
	}
	initializer, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	name := ast.NewIdentifier(nameTok.Text)
	ast.SetSpan(name, ast.Span{From: nameTok.From, To: nameTok.To})
	decl := ast.NewVariableDeclaration(name, initializer)
	ast.SetSpan(decl, ast.Span{From: letTok.From, To: initializer.Span().To})
	return decl, nil
}

func (p *parser) parseExpression() (ast.Expression, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()
	return p.parseAssignment()
}

// parseAssignment handles `name = expr`, which is right-associative: the
// whole right-hand side is one expression, so `a = b = 1` nests to the right.
func (p *parser) parseAssignment() (ast.Expression, error) {
	if p.ts.Peek().Kind == lexer.Identifier && p.ts.PeekAhead(1).Kind == lexer.Equals {
		nameTok := p.ts.Next()
		p.ts.Next()
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		target := ast.NewIdentifier(nameTok.Text)
		ast.SetSpan(target, ast.Span{From: nameTok.From, To: nameTok.To})
		expr := ast.NewBinaryExpression("=", target, value)
		ast.SetSpan(expr, ast.Span{From: nameTok.From, To: value.Span().To})
		return expr, nil
	}
	return p.parseAdditive()
}

func (p *parser) parseAdditive() (ast.Expression, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		opTok := p.ts.Peek()
		if opTok.Kind != lexer.Plus && opTok.Kind != lexer.Minus {
			return left, nil
		}
		p.ts.Next()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = p.foldBinary(opTok.Text, left, right)
	}
}

func (p *parser) parseMultiplicative() (ast.Expression, error) {
	left, err := p.parseExponent()
	if err != nil {
		return nil, err
	}
	for {
		opTok := p.ts.Peek()
		if opTok.Kind != lexer.Asterisk && opTok.Kind != lexer.Slash && opTok.Kind != lexer.Percent {
			return left, nil
		}
		p.ts.Next()
		right, err := p.parseExponent()
		if err != nil {
			return nil, err
		}
		left = p.foldBinary(opTok.Text, left, right)
	}
}

// parseExponent recurses into itself for the right operand, so `a ** b ** c`
// groups as `a ** (b ** c)`.
func (p *parser) parseExponent() (ast.Expression, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if p.ts.Peek().Kind != lexer.AsteriskAsterisk {
		return left, nil
	}
	p.ts.Next()
	right, err := p.parseExponent()
	if err != nil {
		return nil, err
	}
	return p.foldBinary("**", left, right), nil
}

func (p *parser) parseUnary() (ast.Expression, error) {
	if p.ts.Peek().Kind != lexer.Minus {
		return p.parsePrimary()
	}
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()
	opTok := p.ts.Next()
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	expr := ast.NewUnaryExpression("-", operand)
	ast.SetSpan(expr, ast.Span{From: opTok.From, To: operand.Span().To})
	return expr, nil
}

func (p *parser) parsePrimary() (ast.Expression, error) {
	tok := p.ts.Peek()
	switch tok.Kind {
	case lexer.Number:
		p.ts.Next()
		value, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, p.syntaxError(tok, "number")
		}
		lit := ast.NewNumericLiteral(value)
		ast.SetSpan(lit, ast.Span{From: tok.From, To: tok.To})
		return lit, nil
	case lexer.Identifier:
		p.ts.Next()
		name := ast.NewIdentifier(tok.Text)
		ast.SetSpan(name, ast.Span{From: tok.From, To: tok.To})
		if p.ts.Peek().Kind == lexer.LParen {
			return p.parseCallSuffix(name)
		}
		return name, nil
	case lexer.LParen:
		return p.parseParenOrFunction()
	default:
		return nil, p.syntaxError(tok, "expression")
	}
}

func (p *parser) parseCallSuffix(callee *ast.Identifier) (ast.Expression, error) {
	p.ts.Next()
	var args []ast.Expression
	if p.ts.Peek().Kind != lexer.RParen {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.ts.Peek().Kind != lexer.Comma {
				break
			}
			p.ts.Next()
		}
	}
	rparen, err := p.expect(lexer.RParen)
	if err != nil {
		return nil, err
	}
	call := ast.NewFunctionCall(callee, args)
	ast.SetSpan(call, ast.Span{From: callee.Span().From, To: rparen.To})
	return call, nil
}

// parseParenOrFunction disambiguates the two constructs that begin with a
// left parenthesis. The function header production (identifiers only,
// possibly empty, closed by `)` and followed by `=>`) is attempted first;
// on any mismatch the cursor rewinds and the construct is re-parsed as a
// single parenthesized expression.
func (p *parser) parseParenOrFunction() (ast.Expression, error) {
	mark := p.ts.Mark()
	if fn, err := p.tryParseFunctionExpression(); err == nil {
		return fn, nil
	} else if _, backtrack := err.(headerMismatch); !backtrack {
		return nil, err
	}
	p.ts.Reset(mark)

	p.ts.Next()
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParen); err != nil {
		return nil, err
	}
	return expr, nil
}

// headerMismatch signals that the tokens after `(` do not form a function
// header and the parser should fall back to the grouped-expression rule.
type headerMismatch struct{}

func (headerMismatch) Error() string { return "not a function header" }

func (p *parser) tryParseFunctionExpression() (ast.Expression, error) {
	lparen := p.ts.Next()
	var params []*ast.Identifier
	if p.ts.Peek().Kind == lexer.Identifier {
		for {
			tok := p.ts.Next()
			param := ast.NewIdentifier(tok.Text)
			ast.SetSpan(param, ast.Span{From: tok.From, To: tok.To})
			params = append(params, param)
			if p.ts.Peek().Kind != lexer.Comma {
				break
			}
			p.ts.Next()
			if p.ts.Peek().Kind != lexer.Identifier {
				return nil, headerMismatch{}
			}
		}
	}
	if p.ts.Peek().Kind != lexer.RParen {
		return nil, headerMismatch{}
	}
	p.ts.Next()
	if p.ts.Peek().Kind != lexer.Arrow {
		return nil, headerMismatch{}
	}
	p.ts.Next()

	// Header accepted; from here on failures are real syntax errors.
	body, err := p.parseFunctionBody()
	if err != nil {
		return nil, err
	}
	fn := ast.NewFunctionExpression(params, body)
	ast.SetSpan(fn, ast.Span{From: lparen.From, To: body.Span().To})
	return fn, nil
}

func (p *parser) parseFunctionBody() (ast.Expression, error) {
	if p.ts.Peek().Kind != lexer.LBrace {
		return p.parseExpression()
	}
	lbrace := p.ts.Next()
	var statements []ast.Statement
	for p.ts.Peek().Kind != lexer.RBrace {
		if p.ts.Peek().Kind == lexer.EOF {
			return nil, p.syntaxError(p.ts.Peek(), "'}'")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
		if p.ts.Peek().Kind == lexer.Semicolon {
			p.ts.Next()
		}
	}
	rbrace := p.ts.Next()
	block := ast.NewBlockExpression(statements)
	ast.SetSpan(block, ast.Span{From: lbrace.From, To: rbrace.To})
	return block, nil
}

func (p *parser) foldBinary(operator string, left, right ast.Expression) ast.Expression {
	expr := ast.NewBinaryExpression(operator, left, right)
	ast.SetSpan(expr, ast.Span{From: left.Span().From, To: right.Span().To})
	return expr
}

func (p *parser) enter() error {
	if p.depth >= maxNestingDepth {
		tok := p.ts.Peek()
		return diag.New(diag.Syntax, tok.From, tok.To, "expression nesting exceeds %d levels", maxNestingDepth)
	}
	p.depth++
	return nil
}

func (p *parser) leave() {
	p.depth--
}

func (p *parser) expect(kind lexer.Kind) (lexer.Token, error) {
	tok := p.ts.Peek()
	if tok.Kind != kind {
		return lexer.Token{}, p.syntaxError(tok, kind.String())
	}
	return p.ts.Next(), nil
}

func (p *parser) expectEOF() error {
	if tok := p.ts.Peek(); tok.Kind != lexer.EOF {
		return p.syntaxError(tok, lexer.EOF.String())
	}
	return nil
}

func (p *parser) syntaxError(found lexer.Token, expected string) error {
	foundDesc := found.Kind.String()
	if found.Kind == lexer.Number || found.Kind == lexer.Identifier {
		foundDesc = "'" + found.Text + "'"
	}
	d := diag.New(diag.Syntax, found.From, found.To, "expected %s, found %s", expected, foundDesc)
	d.Expected = expected
	d.Found = foundDesc
	return d
}

// Package parser turns a lexer.Lexer's token stream into a pkg/ast tree.
//
// Architecture:
//
// This is a hand-written recursive-descent parser with a two-token
// lookahead window (curTok/peekTok), following the teacher's own
// pkg/parser almost exactly in shape: a nextToken() helper that slides the
// window forward, an errors []string accumulator instead of panicking on
// the first mistake, and one parse* method per grammar production.
//
// What does NOT carry over is the teacher's precedence scheme. smog is
// Smalltalk: unary messages bind tightest, then binary operator messages,
// then keyword messages, with no notion of operator precedence at all.
// Phalcom's grammar (per original_source/phalcom-ast/src/ast.rs and the
// worked precedence test in original_source/phalcom-compiler/src/lib.rs)
// is ordinary C-family precedence climbing: assignment binds loosest,
// then or/and, then equality, then comparison, then +/-, then */%, then
// unary, then postfix member/call/subscript access.
//
// The original project generated its parser from a lalrpop grammar file,
// which is not itself present in this retrieval pack — only the consumer
// AST and a hand-rolled reference compiler survived distillation. Writing
// this parser by hand, rather than guessing at a grammar DSL this module
// has no generator for, keeps faith with both the teacher's own
// hand-written-parser tradition and what's actually left to ground on.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/phalcom-lang/phalcom/pkg/ast"
	"github.com/phalcom-lang/phalcom/pkg/lexer"
)

// Parser consumes a lexer.Lexer and produces an *ast.Program.
type Parser struct {
	l *lexer.Lexer

	curTok  lexer.Token
	peekTok lexer.Token

	errors []string
}

// New returns a Parser ready to parse input.
func New(input string) *Parser {
	p := &Parser{l: lexer.New(input)}
	p.nextToken()
	p.nextToken()
	return p
}

// Errors returns every parse error accumulated so far.
func (p *Parser) Errors() []string { return p.errors }

func (p *Parser) nextToken() {
	p.curTok = p.peekTok
	p.peekTok = p.l.NextToken()
}

func (p *Parser) errorf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	p.errors = append(p.errors, fmt.Sprintf("line %d: %s", p.curTok.Line, msg))
}

func (p *Parser) curIs(t lexer.TokenType) bool  { return p.curTok.Type == t }
func (p *Parser) peekIs(t lexer.TokenType) bool { return p.peekTok.Type == t }

// expect advances past tok if curTok is tok, recording an error otherwise.
func (p *Parser) expect(tok lexer.TokenType) bool {
	if p.curIs(tok) {
		p.nextToken()
		return true
	}
	p.errorf("expected %s, got %s (%q)", tok, p.curTok.Type, p.curTok.Literal)
	return false
}

// ParseProgram parses the whole token stream, accumulating errors for any
// statement it cannot make sense of and resynchronizing at the next
// statement boundary rather than aborting outright.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.curIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		} else {
			p.resync()
		}
	}
	return prog
}

// resync skips tokens until the statement boundary a bad statement left
// us short of, so one mistake doesn't cascade into spurious ones.
func (p *Parser) resync() {
	for !p.curIs(lexer.EOF) {
		if p.curIs(lexer.SEMICOLON) {
			p.nextToken()
			return
		}
		if p.curIs(lexer.RBRACE) {
			return
		}
		p.nextToken()
	}
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curTok.Type {
	case lexer.LET:
		return p.parseLetStatement()
	case lexer.RETURN:
		return p.parseReturnStatement()
	case lexer.CLASS:
		return p.parseClassDecl()
	default:
		return p.parseExprStatement()
	}
}

func (p *Parser) parseLetStatement() ast.Statement {
	p.nextToken() // consume 'let'
	if !p.curIs(lexer.IDENT) {
		p.errorf("expected identifier after 'let', got %s", p.curTok.Type)
		return nil
	}
	name := p.curTok.Literal
	p.nextToken()

	stmt := &ast.LetStatement{Name: name}
	if p.curIs(lexer.ASSIGN) {
		p.nextToken()
		stmt.Value = p.parseExpression()
	}
	p.expect(lexer.SEMICOLON)
	return stmt
}

func (p *Parser) parseReturnStatement() ast.Statement {
	p.nextToken() // consume 'return'
	stmt := &ast.ReturnStatement{}
	if !p.curIs(lexer.SEMICOLON) {
		stmt.Value = p.parseExpression()
	}
	p.expect(lexer.SEMICOLON)
	return stmt
}

func (p *Parser) parseExprStatement() ast.Statement {
	expr := p.parseExpression()
	if expr == nil {
		return nil
	}
	p.expect(lexer.SEMICOLON)
	return &ast.ExprStatement{Expr: expr}
}

// parseBlock parses statements up to (but not consuming) a closing brace
// that the caller already expects and will consume itself.
func (p *Parser) parseBlock() []ast.Statement {
	var stmts []ast.Statement
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		} else {
			p.resync()
		}
	}
	return stmts
}

func (p *Parser) parseClassDecl() ast.Statement {
	p.nextToken() // consume 'class'
	if !p.curIs(lexer.IDENT) {
		p.errorf("expected class name, got %s", p.curTok.Type)
		return nil
	}
	decl := &ast.ClassDecl{Name: p.curTok.Literal}
	p.nextToken()

	if p.curIs(lexer.COLON) {
		p.nextToken()
		if !p.curIs(lexer.IDENT) {
			p.errorf("expected superclass name, got %s", p.curTok.Type)
			return nil
		}
		decl.Superclass = p.curTok.Literal
		p.nextToken()
	}

	if !p.expect(lexer.LBRACE) {
		return nil
	}
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		member := p.parseClassMember()
		if member != nil {
			decl.Members = append(decl.Members, member)
		} else {
			p.resync()
		}
	}
	p.expect(lexer.RBRACE)
	return decl
}

// parseClassMember disambiguates a member's flavor the way Wren does: no
// dedicated get/set keywords, just what follows the name. `name(...) {`
// is a method, bare `name {` is a getter, `name=(param) {` is a setter,
// and `[param] {` / `[param]=(value) {` are the subscript pair.
func (p *Parser) parseClassMember() *ast.MethodDecl {
	m := &ast.MethodDecl{Kind: ast.MemberMethod}
	if p.curIs(lexer.STATIC) {
		m.IsStatic = true
		p.nextToken()
	}

	if p.curIs(lexer.LBRACKET) {
		return p.parseSubscriptMember(m)
	}

	if !p.curIs(lexer.IDENT) {
		p.errorf("expected method name, got %s", p.curTok.Type)
		return nil
	}
	m.Name = p.curTok.Literal
	p.nextToken()

	switch {
	case p.curIs(lexer.LPAREN):
		m.Kind = ast.MemberMethod
		m.Params = p.parseParamList()
		if !p.expect(lexer.LBRACE) {
			return nil
		}
		m.Body = p.parseBlock()
		p.expect(lexer.RBRACE)
		return m

	case p.curIs(lexer.ASSIGN):
		p.nextToken()
		if !p.expect(lexer.LPAREN) {
			return nil
		}
		if !p.curIs(lexer.IDENT) {
			p.errorf("expected setter parameter name, got %s", p.curTok.Type)
			return nil
		}
		param := p.curTok.Literal
		p.nextToken()
		if !p.expect(lexer.RPAREN) {
			return nil
		}
		m.Kind = ast.MemberSetter
		m.Params = []string{param}
		if !p.expect(lexer.LBRACE) {
			return nil
		}
		m.Body = p.parseBlock()
		p.expect(lexer.RBRACE)
		return m

	case p.curIs(lexer.LBRACE):
		m.Kind = ast.MemberGetter
		p.nextToken()
		m.Body = p.parseBlock()
		p.expect(lexer.RBRACE)
		return m

	default:
		p.errorf("expected '(', '=', or '{' after member name, got %s", p.curTok.Type)
		return nil
	}
}

func (p *Parser) parseSubscriptMember(m *ast.MethodDecl) *ast.MethodDecl {
	p.nextToken() // consume '['
	if !p.curIs(lexer.IDENT) {
		p.errorf("expected subscript index parameter, got %s", p.curTok.Type)
		return nil
	}
	indexParam := p.curTok.Literal
	p.nextToken()
	if !p.expect(lexer.RBRACKET) {
		return nil
	}

	if p.curIs(lexer.ASSIGN) {
		p.nextToken()
		if !p.expect(lexer.LPAREN) {
			return nil
		}
		if !p.curIs(lexer.IDENT) {
			p.errorf("expected subscript value parameter, got %s", p.curTok.Type)
			return nil
		}
		valueParam := p.curTok.Literal
		p.nextToken()
		if !p.expect(lexer.RPAREN) {
			return nil
		}
		m.Kind = ast.MemberSubscriptSet
		m.Params = []string{indexParam, valueParam}
	} else {
		m.Kind = ast.MemberSubscriptGet
		m.Params = []string{indexParam}
	}

	if !p.expect(lexer.LBRACE) {
		return nil
	}
	m.Body = p.parseBlock()
	p.expect(lexer.RBRACE)
	return m
}

func (p *Parser) parseParamList() []string {
	var params []string
	p.nextToken() // consume '('
	if p.curIs(lexer.RPAREN) {
		p.nextToken()
		return params
	}
	for {
		if !p.curIs(lexer.IDENT) {
			p.errorf("expected parameter name, got %s", p.curTok.Type)
			return params
		}
		params = append(params, p.curTok.Literal)
		p.nextToken()
		if p.curIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	p.expect(lexer.RPAREN)
	return params
}

// --- Expressions --------------------------------------------------

var compoundOps = map[lexer.TokenType]ast.BinaryOp{
	lexer.PLUS_ASSIGN:    ast.OpAdd,
	lexer.MINUS_ASSIGN:   ast.OpSub,
	lexer.STAR_ASSIGN:    ast.OpMul,
	lexer.SLASH_ASSIGN:   ast.OpDiv,
	lexer.PERCENT_ASSIGN: ast.OpMod,
}

func (p *Parser) parseExpression() ast.Expr {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() ast.Expr {
	left := p.parseOr()
	if left == nil {
		return nil
	}

	if p.curIs(lexer.ASSIGN) {
		p.nextToken()
		value := p.parseAssignment()
		return p.buildAssignment(left, value)
	}
	if op, ok := compoundOps[p.curTok.Type]; ok {
		p.nextToken()
		value := p.parseAssignment()
		if !isAssignable(left) {
			p.errorf("invalid assignment target")
			return nil
		}
		return &ast.CompoundAssignExpr{Op: op, Target: left, Value: value}
	}
	return left
}

func isAssignable(e ast.Expr) bool {
	switch e.(type) {
	case *ast.Ident, *ast.GetPropertyExpr, *ast.SubscriptGetExpr:
		return true
	default:
		return false
	}
}

func (p *Parser) buildAssignment(target, value ast.Expr) ast.Expr {
	switch t := target.(type) {
	case *ast.Ident:
		return &ast.AssignExpr{Target: t, Value: value}
	case *ast.GetPropertyExpr:
		return &ast.SetPropertyExpr{Receiver: t.Receiver, Name: t.Name, Value: value}
	case *ast.SubscriptGetExpr:
		return &ast.SubscriptSetExpr{Receiver: t.Receiver, Index: t.Index, Value: value}
	default:
		p.errorf("invalid assignment target")
		return nil
	}
}

func (p *Parser) parseOr() ast.Expr {
	left := p.parseAnd()
	for left != nil && p.curIs(lexer.OR) {
		p.nextToken()
		right := p.parseAnd()
		left = &ast.BinaryExpr{Op: ast.OpOr, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseAnd() ast.Expr {
	left := p.parseEquality()
	for left != nil && p.curIs(lexer.AND) {
		p.nextToken()
		right := p.parseEquality()
		left = &ast.BinaryExpr{Op: ast.OpAnd, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseEquality() ast.Expr {
	left := p.parseComparison()
	for left != nil && (p.curIs(lexer.EQ) || p.curIs(lexer.NOT_EQ)) {
		op := ast.OpEq
		if p.curTok.Type == lexer.NOT_EQ {
			op = ast.OpNotEq
		}
		p.nextToken()
		right := p.parseComparison()
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseComparison() ast.Expr {
	left := p.parseAdditive()
	for left != nil {
		var op ast.BinaryOp
		switch p.curTok.Type {
		case lexer.LT:
			op = ast.OpLess
		case lexer.LT_EQ:
			op = ast.OpLessEq
		case lexer.GT:
			op = ast.OpGreater
		case lexer.GT_EQ:
			op = ast.OpGreaterEq
		default:
			return left
		}
		p.nextToken()
		right := p.parseAdditive()
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for left != nil {
		var op ast.BinaryOp
		switch p.curTok.Type {
		case lexer.PLUS:
			op = ast.OpAdd
		case lexer.MINUS:
			op = ast.OpSub
		default:
			return left
		}
		p.nextToken()
		right := p.parseMultiplicative()
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	for left != nil {
		var op ast.BinaryOp
		switch p.curTok.Type {
		case lexer.STAR:
			op = ast.OpMul
		case lexer.SLASH:
			op = ast.OpDiv
		case lexer.PERCENT:
			op = ast.OpMod
		default:
			return left
		}
		p.nextToken()
		right := p.parseUnary()
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	switch p.curTok.Type {
	case lexer.MINUS:
		p.nextToken()
		return &ast.UnaryExpr{Op: ast.UnaryNegate, Expr: p.parseUnary()}
	case lexer.BANG:
		p.nextToken()
		return &ast.UnaryExpr{Op: ast.UnaryNot, Expr: p.parseUnary()}
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	for expr != nil {
		switch p.curTok.Type {
		case lexer.DOT:
			p.nextToken()
			// `class` is a keyword token but also the reflective getter name
			// (`123.class.name`), so it is accepted as a member name here.
			if !p.curIs(lexer.IDENT) && !p.curIs(lexer.CLASS) {
				p.errorf("expected member name after '.', got %s", p.curTok.Type)
				return nil
			}
			name := p.curTok.Literal
			p.nextToken()
			if p.curIs(lexer.LPAREN) {
				args := p.parseArgList()
				expr = &ast.CallExpr{Receiver: expr, Selector: selectorFor(name, len(args)), Args: args}
			} else {
				expr = &ast.GetPropertyExpr{Receiver: expr, Name: name}
			}
		case lexer.LBRACKET:
			p.nextToken()
			index := p.parseExpression()
			if !p.expect(lexer.RBRACKET) {
				return nil
			}
			expr = &ast.SubscriptGetExpr{Receiver: expr, Index: index}
		default:
			return expr
		}
	}
	return expr
}

func (p *Parser) parseArgList() []ast.Expr {
	var args []ast.Expr
	p.nextToken() // consume '('
	if p.curIs(lexer.RPAREN) {
		p.nextToken()
		return args
	}
	for {
		arg := p.parseExpression()
		if arg == nil {
			return args
		}
		args = append(args, arg)
		if p.curIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	p.expect(lexer.RPAREN)
	return args
}

func (p *Parser) parsePrimary() ast.Expr {
	switch p.curTok.Type {
	case lexer.NUMBER:
		v, err := strconv.ParseFloat(p.curTok.Literal, 64)
		if err != nil {
			p.errorf("invalid number literal %q", p.curTok.Literal)
			return nil
		}
		p.nextToken()
		return &ast.NumberLit{Value: v}

	case lexer.STRING:
		lit := p.curTok.Literal
		p.nextToken()
		return &ast.StringLit{Value: lit}

	case lexer.TRUE:
		p.nextToken()
		return &ast.BoolLit{Value: true}

	case lexer.FALSE:
		p.nextToken()
		return &ast.BoolLit{Value: false}

	case lexer.NIL:
		p.nextToken()
		return &ast.NilLit{}

	case lexer.SELF:
		p.nextToken()
		return &ast.SelfExpr{}

	case lexer.SUPER:
		p.nextToken()
		return &ast.SuperExpr{}

	case lexer.IDENT:
		name := p.curTok.Literal
		p.nextToken()
		return &ast.Ident{Name: name}

	case lexer.LPAREN:
		p.nextToken()
		expr := p.parseExpression()
		p.expect(lexer.RPAREN)
		return expr

	default:
		p.errorf("unexpected token %s (%q)", p.curTok.Type, p.curTok.Literal)
		p.nextToken()
		return nil
	}
}

// selectorFor builds the textual selector a call compiles against, e.g.
// selectorFor("foo", 2) == "foo(_,_)", matching spec.md's reserved-selector
// naming convention used throughout pkg/runtime's primitives.
func selectorFor(name string, argc int) string {
	if argc == 0 {
		return name + "()"
	}
	placeholders := make([]string, argc)
	for i := range placeholders {
		placeholders[i] = "_"
	}
	return name + "(" + strings.Join(placeholders, ",") + ")"
}

package parser

import (
	"testing"

	"github.com/phalcom-lang/phalcom/pkg/ast"
	"github.com/stretchr/testify/require"
)

func parseNoErrors(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := New(src)
	prog := p.ParseProgram()
	require.Empty(t, p.Errors(), "unexpected parse errors: %v", p.Errors())
	return prog
}

func TestParseLetAndReturn(t *testing.T) {
	prog := parseNoErrors(t, `let a = 10; a += 20; return a;`)
	require.Len(t, prog.Statements, 3)

	let, ok := prog.Statements[0].(*ast.LetStatement)
	require.True(t, ok)
	require.Equal(t, "a", let.Name)
	num, ok := let.Value.(*ast.NumberLit)
	require.True(t, ok)
	require.Equal(t, 10.0, num.Value)

	exprStmt, ok := prog.Statements[1].(*ast.ExprStatement)
	require.True(t, ok)
	compound, ok := exprStmt.Expr.(*ast.CompoundAssignExpr)
	require.True(t, ok)
	require.Equal(t, ast.OpAdd, compound.Op)

	ret, ok := prog.Statements[2].(*ast.ReturnStatement)
	require.True(t, ok)
	ident, ok := ret.Value.(*ast.Ident)
	require.True(t, ok)
	require.Equal(t, "a", ident.Name)
}

func TestParseBinaryPrecedence(t *testing.T) {
	prog := parseNoErrors(t, `return 1 + 2 * 3;`)
	ret := prog.Statements[0].(*ast.ReturnStatement)
	bin, ok := ret.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, ast.OpAdd, bin.Op)
	_, ok = bin.Left.(*ast.NumberLit)
	require.True(t, ok)
	mul, ok := bin.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, ast.OpMul, mul.Op)
}

func TestParseMethodCallChain(t *testing.T) {
	prog := parseNoErrors(t, `return 123.class.name;`)
	ret := prog.Statements[0].(*ast.ReturnStatement)
	outer, ok := ret.Value.(*ast.GetPropertyExpr)
	require.True(t, ok)
	require.Equal(t, "name", outer.Name)
	inner, ok := outer.Receiver.(*ast.GetPropertyExpr)
	require.True(t, ok)
	require.Equal(t, "class", inner.Name)
	_, ok = inner.Receiver.(*ast.NumberLit)
	require.True(t, ok)
}

func TestParseClassDecl(t *testing.T) {
	src := `
	class Counter : Object {
		static create() { return self.new(); }
		count { return self.count; }
		count=(value) { self.count = value; }
		[index] { return self.items.at(index); }
		[index]=(value) { self.items.set(index, value); }
	}`
	prog := parseNoErrors(t, src)
	require.Len(t, prog.Statements, 1)
	class, ok := prog.Statements[0].(*ast.ClassDecl)
	require.True(t, ok)
	require.Equal(t, "Counter", class.Name)
	require.Equal(t, "Object", class.Superclass)
	require.Len(t, class.Members, 5)

	create := class.Members[0]
	require.Equal(t, ast.MemberMethod, create.Kind)
	require.True(t, create.IsStatic)
	require.Equal(t, "create", create.Name)

	getter := class.Members[1]
	require.Equal(t, ast.MemberGetter, getter.Kind)
	require.Equal(t, "count", getter.Name)

	setter := class.Members[2]
	require.Equal(t, ast.MemberSetter, setter.Kind)
	require.Equal(t, []string{"value"}, setter.Params)

	subGet := class.Members[3]
	require.Equal(t, ast.MemberSubscriptGet, subGet.Kind)
	require.Equal(t, []string{"index"}, subGet.Params)

	subSet := class.Members[4]
	require.Equal(t, ast.MemberSubscriptSet, subSet.Kind)
	require.Equal(t, []string{"index", "value"}, subSet.Params)
}

func TestParseCallSelectorArity(t *testing.T) {
	prog := parseNoErrors(t, `return a.add(1, 2, 3);`)
	ret := prog.Statements[0].(*ast.ReturnStatement)
	call, ok := ret.Value.(*ast.CallExpr)
	require.True(t, ok)
	require.Equal(t, "add(_,_,_)", call.Selector)
	require.Len(t, call.Args, 3)
}

func TestParseInvalidAssignmentTargetRecordsError(t *testing.T) {
	p := New(`1 + 2 = 3;`)
	p.ParseProgram()
	require.NotEmpty(t, p.Errors())
}

func TestParseLogicalAndOr(t *testing.T) {
	prog := parseNoErrors(t, `return true and false or true;`)
	ret := prog.Statements[0].(*ast.ReturnStatement)
	or, ok := ret.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, ast.OpOr, or.Op)
	and, ok := or.Left.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, ast.OpAnd, and.Op)
}

// Package compiler lowers a parsed Phalcom program into the bytecode the
// evaluator (pkg/vm) runs, implementing spec.md §4.10's compiler contract
// and the external entry point `compile(runtime, source) → closure`
// described in §6.
//
// This is a from-scratch tree-walking code generator; the teacher's own
// VM never had a compiler frontend to adapt (smog's pkg/compiler compiles
// an already-Smalltalk-shaped AST that shares nothing with Phalcom's
// grammar or opcode set). The statement/expression lowering rules below
// are instead grounded directly in
// original_source/phalcom-compiler/src/lib.rs — the authoritative
// reference compiler for this exact language, whose compile_block/
// compile_statement_with_pop_control/compile_expr functions this file's
// compileBlock/compileStatement/compileExpr mirror one for one, adapted
// from its Rust Vec<Instruction> emission to this module's
// bytecode.Chunk.
package compiler

import (
	"fmt"
	"strings"

	"github.com/phalcom-lang/phalcom/pkg/ast"
	"github.com/phalcom-lang/phalcom/pkg/bytecode"
	"github.com/phalcom-lang/phalcom/pkg/object"
	"github.com/phalcom-lang/phalcom/pkg/parser"
	"github.com/phalcom-lang/phalcom/pkg/runtime"
)

// localVar is one declared `let` binding or parameter inside a method
// body, recorded by name and by the stack slot (relative to the frame's
// stack_offset) it occupies.
type localVar struct {
	name string
	slot int
}

// compiler lowers one chunk's worth of statements: either the top-level
// program (isMethod == false, identifiers always resolve to globals) or
// a single method body (isMethod == true, identifiers first check the
// local scope before falling back to globals).
type compiler struct {
	rt     *runtime.Runtime
	module *object.Module
	chunk  *bytecode.Chunk

	isMethod bool
	locals   []localVar
	nextSlot int
	maxSlots int

	errs []string
}

func newTopLevelCompiler(rt *runtime.Runtime, module *object.Module) *compiler {
	return &compiler{rt: rt, module: module, chunk: &bytecode.Chunk{}}
}

func newMethodCompiler(rt *runtime.Runtime, module *object.Module, params []string) *compiler {
	c := &compiler{rt: rt, module: module, chunk: &bytecode.Chunk{}, isMethod: true, nextSlot: 1}
	for _, p := range params {
		c.locals = append(c.locals, localVar{name: p, slot: c.nextSlot})
		c.nextSlot++
	}
	c.maxSlots = c.nextSlot
	return c
}

func (c *compiler) errorf(format string, args ...interface{}) {
	c.errs = append(c.errs, fmt.Sprintf(format, args...))
}

func (c *compiler) addStringConstant(s string) uint16 {
	return uint16(c.chunk.AddConstant(s))
}

func (c *compiler) resolveLocal(name string) (int, bool) {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name {
			return c.locals[i].slot, true
		}
	}
	return 0, false
}

func (c *compiler) declareLocal(name string) {
	c.locals = append(c.locals, localVar{name: name, slot: c.nextSlot})
	c.nextSlot++
	if c.nextSlot > c.maxSlots {
		c.maxSlots = c.nextSlot
	}
}

// Compile parses source and lowers it to a closure bound to the "<main>"
// module, per spec.md §6's compiler entry point.
func Compile(rt *runtime.Runtime, source string) (*object.Closure, error) {
	p := parser.New(source)
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, fmt.Errorf("phalcom: parse error:\n%s", strings.Join(errs, "\n"))
	}

	module := rt.GetOrCreateModule(runtime.MainModuleName)
	c := newTopLevelCompiler(rt, module)
	c.compileBlock(prog.Statements)
	if len(c.errs) > 0 {
		return nil, fmt.Errorf("phalcom: compile error:\n%s", strings.Join(c.errs, "\n"))
	}

	callable := &object.Callable{
		Chunk:    c.chunk,
		Arity:    0,
		MaxSlots: c.maxSlots,
		Name:     rt.Interner.Intern(""),
	}
	return object.NewClosure(callable, module), nil
}

// compileBlock lowers a statement sequence with spec.md §4.10's
// trailing-Return insertion and per-statement Pop control: every
// expression statement but the last is followed by Pop; the last
// statement's value (inserting a Return if it was a bare expression, or
// a Nil+Return if the block ends in a non-value-producing statement or
// is empty) becomes the block's result.
func (c *compiler) compileBlock(stmts []ast.Statement) {
	if len(stmts) == 0 {
		c.chunk.Emit(bytecode.Nil, 0, 0)
		c.chunk.Emit(bytecode.Return, 0, 0)
		return
	}
	for i, stmt := range stmts {
		c.compileStatement(stmt, i == len(stmts)-1)
	}
}

func (c *compiler) compileStatement(stmt ast.Statement, last bool) {
	switch s := stmt.(type) {
	case *ast.LetStatement:
		c.compileLet(s)
		if last {
			c.chunk.Emit(bytecode.Nil, 0, 0)
			c.chunk.Emit(bytecode.Return, 0, 0)
		}
	case *ast.ReturnStatement:
		c.compileReturn(s)
	case *ast.ClassDecl:
		c.compileClassDecl(s)
		if last {
			c.chunk.Emit(bytecode.Nil, 0, 0)
			c.chunk.Emit(bytecode.Return, 0, 0)
		}
	case *ast.ExprStatement:
		c.compileExpr(s.Expr)
		if last {
			c.chunk.Emit(bytecode.Return, 0, 0)
		} else {
			c.chunk.Emit(bytecode.Pop, 0, 0)
		}
	default:
		c.errorf("unsupported statement type %T", stmt)
	}
}

func (c *compiler) compileLet(s *ast.LetStatement) {
	if s.Value != nil {
		c.compileExpr(s.Value)
	} else {
		c.chunk.Emit(bytecode.Nil, 0, 0)
	}
	if !c.isMethod {
		nameConst := c.addStringConstant(s.Name)
		c.chunk.Emit(bytecode.DefineGlobal, nameConst, 0)
		return
	}
	// Inside a method, the pushed initializer value IS the local's
	// storage slot: no further instruction is needed to "set" it, the
	// same way a receiver or parameter already occupies its slot simply
	// by having been pushed before the frame started running.
	c.declareLocal(s.Name)
}

func (c *compiler) compileReturn(s *ast.ReturnStatement) {
	if s.Value != nil {
		c.compileExpr(s.Value)
	} else {
		c.chunk.Emit(bytecode.Nil, 0, 0)
	}
	c.chunk.Emit(bytecode.Return, 0, 0)
}

// compileClassDecl implements spec.md §4.10's class-declaration lowering:
// push the superclass (defaulting to Object), emit Class, then for each
// member build a Method constant and emit Constant+Method, and finally
// DefineGlobal the finished class under its own name.
func (c *compiler) compileClassDecl(decl *ast.ClassDecl) {
	superName := decl.Superclass
	if superName == "" {
		superName = "Object"
	}
	superConst := c.addStringConstant(superName)
	c.chunk.Emit(bytecode.GetGlobal, superConst, 0)

	classNameConst := c.addStringConstant(decl.Name)
	c.chunk.Emit(bytecode.Class, classNameConst, 0)

	for _, member := range decl.Members {
		c.compileMember(member)
	}

	defConst := c.addStringConstant(decl.Name)
	c.chunk.Emit(bytecode.DefineGlobal, defConst, 0)
}

// compileMember turns one class member into a Method constant (compiling
// its body as an independently chunked closure) and attaches it to the
// class left on top of the stack by compileClassDecl, per the member-kind
// -> SignatureKind mapping spec.md §4.10 names. "init" is treated as the
// initializer flavor by name, the same convention original_source leaves
// unaddressed (its embedded compiler never lowers a constructor at all).
func (c *compiler) compileMember(m *ast.MethodDecl) {
	if m.IsStatic && (m.Kind == ast.MemberGetter || m.Kind == ast.MemberSetter) {
		c.errorf("static getters/setters are not supported: %q", m.Name)
		return
	}

	var kind object.SignatureKind
	var arity int
	var selector string

	switch m.Kind {
	case ast.MemberMethod:
		arity = len(m.Params)
		kind = object.SigMethod
		if m.Name == "init" {
			kind = object.SigInitializer
		}
		selector = methodSelector(m.Name, arity)
	case ast.MemberGetter:
		kind = object.SigGetter
		selector = m.Name
	case ast.MemberSetter:
		kind = object.SigSetter
		arity = 1
		selector = m.Name + "=(_)"
	case ast.MemberSubscriptGet:
		kind = object.SigSubscriptGet
		arity = 1
		selector = "[_]"
	case ast.MemberSubscriptSet:
		kind = object.SigSubscriptSet
		arity = 2
		selector = "[_]="
	default:
		c.errorf("unknown member kind %v", m.Kind)
		return
	}

	mc := newMethodCompiler(c.rt, c.module, m.Params)
	mc.compileBlock(m.Body)
	if len(mc.errs) > 0 {
		c.errs = append(c.errs, mc.errs...)
		return
	}

	callable := &object.Callable{
		Chunk:    mc.chunk,
		Arity:    arity,
		MaxSlots: mc.maxSlots,
		Name:     c.rt.Interner.Intern(selector),
	}
	closure := object.NewClosure(callable, c.module)
	methodVal := object.NewMethod(object.Signature{
		Selector: c.rt.Interner.Intern(selector),
		Kind:     kind,
		Arity:    arity,
	}, object.MethodBody{Closure: closure})

	methodConst := c.chunk.AddConstant(methodVal)
	c.chunk.Emit(bytecode.Constant, uint16(methodConst), 0)

	selectorConst := c.addStringConstant(selector)
	var staticFlag uint8
	if m.IsStatic {
		staticFlag = 1
	}
	c.chunk.Emit(bytecode.Method, selectorConst, staticFlag)
}

// methodSelector builds the textual selector a plain method's signature
// carries, e.g. methodSelector("add", 2) == "add(_,_)", matching the
// reserved-selector convention spec.md §6 and pkg/runtime/primitives.go
// both use.
func methodSelector(name string, arity int) string {
	if arity == 0 {
		return name + "()"
	}
	placeholders := make([]string, arity)
	for i := range placeholders {
		placeholders[i] = "_"
	}
	return name + "(" + strings.Join(placeholders, ",") + ")"
}

// --- Expressions --------------------------------------------------

func (c *compiler) compileExpr(e ast.Expr) {
	switch expr := e.(type) {
	case *ast.NumberLit:
		c.chunk.Emit(bytecode.Constant, uint16(c.chunk.AddConstant(expr.Value)), 0)

	case *ast.StringLit:
		c.chunk.Emit(bytecode.Constant, uint16(c.chunk.AddConstant(expr.Value)), 0)

	case *ast.BoolLit:
		if expr.Value {
			c.chunk.Emit(bytecode.True, 0, 0)
		} else {
			c.chunk.Emit(bytecode.False, 0, 0)
		}

	case *ast.NilLit:
		c.chunk.Emit(bytecode.Nil, 0, 0)

	case *ast.SelfExpr:
		if !c.isMethod {
			c.errorf("'self' is not valid outside a method body")
			return
		}
		c.chunk.Emit(bytecode.GetSelf, 0, 0)

	case *ast.SuperExpr:
		// No opcode in the instruction set lets a send bypass ordinary
		// method lookup on the receiver's own class (spec.md §4.6's
		// table has no super-dispatch instruction), so 'super' is
		// rejected here rather than silently compiling to self-dispatch.
		c.errorf("'super' is not supported")

	case *ast.Ident:
		c.compileIdentRead(expr.Name)

	case *ast.BinaryExpr:
		c.compileExpr(expr.Left)
		c.compileExpr(expr.Right)
		c.emitBinaryOp(expr.Op)

	case *ast.UnaryExpr:
		c.compileExpr(expr.Expr)
		if expr.Op == ast.UnaryNegate {
			c.chunk.Emit(bytecode.Negate, 0, 0)
		} else {
			c.chunk.Emit(bytecode.Not, 0, 0)
		}

	case *ast.AssignExpr:
		c.compileAssign(expr)

	case *ast.CompoundAssignExpr:
		c.compileCompoundAssign(expr)

	case *ast.GetPropertyExpr:
		c.compileGetProperty(expr)

	case *ast.SetPropertyExpr:
		c.compileSetProperty(expr)

	case *ast.CallExpr:
		c.compileCall(expr)

	case *ast.SubscriptGetExpr:
		c.compileExpr(expr.Receiver)
		c.compileExpr(expr.Index)
		c.chunk.Emit(bytecode.Invoke, c.addStringConstant("[_]"), 1)

	case *ast.SubscriptSetExpr:
		c.compileExpr(expr.Receiver)
		c.compileExpr(expr.Index)
		c.compileExpr(expr.Value)
		c.chunk.Emit(bytecode.Invoke, c.addStringConstant("[_]="), 2)

	default:
		c.errorf("unsupported expression type %T", e)
	}
}

func (c *compiler) compileIdentRead(name string) {
	if c.isMethod {
		if slot, ok := c.resolveLocal(name); ok {
			c.chunk.Emit(bytecode.GetLocal, uint16(slot), 0)
			return
		}
	}
	c.chunk.Emit(bytecode.GetGlobal, c.addStringConstant(name), 0)
}

func (c *compiler) compileAssign(expr *ast.AssignExpr) {
	ident, ok := expr.Target.(*ast.Ident)
	if !ok {
		c.errorf("invalid assignment target")
		return
	}
	c.compileExpr(expr.Value)
	if c.isMethod {
		if slot, ok := c.resolveLocal(ident.Name); ok {
			c.chunk.Emit(bytecode.SetLocal, uint16(slot), 0)
			return
		}
	}
	c.chunk.Emit(bytecode.SetGlobal, c.addStringConstant(ident.Name), 0)
}

// compileCompoundAssign desugars `target op= value` into Get + binary op
// + Set, per spec.md §4.10. A property target can only be desugared this
// way when its receiver is self: the instruction set has no Dup, so a
// non-self receiver expression with side effects would have to be
// evaluated twice to read-then-write it, which this compiler refuses to
// do silently.
func (c *compiler) compileCompoundAssign(expr *ast.CompoundAssignExpr) {
	switch target := expr.Target.(type) {
	case *ast.Ident:
		local, isLocal := -1, false
		if c.isMethod {
			local, isLocal = c.resolveLocal(target.Name)
		}
		if isLocal {
			c.chunk.Emit(bytecode.GetLocal, uint16(local), 0)
		} else {
			c.chunk.Emit(bytecode.GetGlobal, c.addStringConstant(target.Name), 0)
		}
		c.compileExpr(expr.Value)
		c.emitBinaryOp(expr.Op)
		if isLocal {
			c.chunk.Emit(bytecode.SetLocal, uint16(local), 0)
		} else {
			c.chunk.Emit(bytecode.SetGlobal, c.addStringConstant(target.Name), 0)
		}

	case *ast.GetPropertyExpr:
		if _, ok := target.Receiver.(*ast.SelfExpr); !ok {
			c.errorf("compound assignment on a property requires a 'self' receiver")
			return
		}
		nameConst := c.addStringConstant(target.Name)
		c.chunk.Emit(bytecode.GetField, nameConst, 0)
		c.compileExpr(expr.Value)
		c.emitBinaryOp(expr.Op)
		c.chunk.Emit(bytecode.SetField, nameConst, 0)

	default:
		c.errorf("invalid compound assignment target")
	}
}

func (c *compiler) compileGetProperty(expr *ast.GetPropertyExpr) {
	if _, ok := expr.Receiver.(*ast.SelfExpr); ok {
		if !c.isMethod {
			c.errorf("'self' is not valid outside a method body")
			return
		}
		c.chunk.Emit(bytecode.GetField, c.addStringConstant(expr.Name), 0)
		return
	}
	c.compileExpr(expr.Receiver)
	c.chunk.Emit(bytecode.GetProperty, c.addStringConstant(expr.Name), 0)
}

func (c *compiler) compileSetProperty(expr *ast.SetPropertyExpr) {
	if _, ok := expr.Receiver.(*ast.SelfExpr); ok {
		if !c.isMethod {
			c.errorf("'self' is not valid outside a method body")
			return
		}
		c.compileExpr(expr.Value)
		c.chunk.Emit(bytecode.SetField, c.addStringConstant(expr.Name), 0)
		return
	}
	c.compileExpr(expr.Receiver)
	c.compileExpr(expr.Value)
	c.chunk.Emit(bytecode.SetProperty, c.addStringConstant(expr.Name), 0)
}

func (c *compiler) compileCall(expr *ast.CallExpr) {
	if _, ok := expr.Receiver.(*ast.SelfExpr); ok {
		if !c.isMethod {
			c.errorf("'self' is not valid outside a method body")
			return
		}
		c.chunk.Emit(bytecode.GetSelf, 0, 0)
	} else {
		c.compileExpr(expr.Receiver)
	}
	for _, arg := range expr.Args {
		c.compileExpr(arg)
	}
	c.chunk.Emit(bytecode.Invoke, c.addStringConstant(expr.Selector), uint8(len(expr.Args)))
}

func (c *compiler) emitBinaryOp(op ast.BinaryOp) {
	switch op {
	case ast.OpAdd:
		c.chunk.Emit(bytecode.Add, 0, 0)
	case ast.OpSub:
		c.chunk.Emit(bytecode.Subtract, 0, 0)
	case ast.OpMul:
		c.chunk.Emit(bytecode.Multiply, 0, 0)
	case ast.OpDiv:
		c.chunk.Emit(bytecode.Divide, 0, 0)
	case ast.OpMod:
		c.chunk.Emit(bytecode.Modulo, 0, 0)
	case ast.OpEq:
		c.chunk.Emit(bytecode.Equal, 0, 0)
	case ast.OpNotEq:
		c.chunk.Emit(bytecode.NotEqual, 0, 0)
	case ast.OpLess:
		c.chunk.Emit(bytecode.Less, 0, 0)
	case ast.OpLessEq:
		c.chunk.Emit(bytecode.LessEqual, 0, 0)
	case ast.OpGreater:
		c.chunk.Emit(bytecode.Greater, 0, 0)
	case ast.OpGreaterEq:
		c.chunk.Emit(bytecode.GreaterEqual, 0, 0)
	case ast.OpAnd:
		c.chunk.Emit(bytecode.And, 0, 0)
	case ast.OpOr:
		c.chunk.Emit(bytecode.Or, 0, 0)
	default:
		c.errorf("unknown binary operator %v", op)
	}
}

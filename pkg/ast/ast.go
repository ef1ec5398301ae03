// Package ast defines the abstract syntax tree the parser produces and the
// compiler consumes.
//
// Node shapes mirror the teacher's own pkg/ast (a small Node interface with
// TokenLiteral, Statement/Expr marker methods) generalized from smog's
// Smalltalk-bang grammar to Phalcom's C-like one: classes are curly-braced,
// statements are semicolon-terminated, and method members come in four
// flavors (method, getter, setter, subscript) instead of smog's single
// flat Method.
package ast

// Node is implemented by every AST node.
type Node interface {
	TokenLiteral() string
}

// Statement is implemented by top-level and block-level statements.
type Statement interface {
	Node
	statementNode()
}

// Expr is implemented by expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Program is the root of a parsed source file.
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

// LetStatement is `let name = expr;` or `let name;`.
type LetStatement struct {
	Name  string
	Value Expr // nil if no initializer was given
}

func (s *LetStatement) TokenLiteral() string { return "let" }
func (s *LetStatement) statementNode()       {}

// ReturnStatement is `return expr;` or bare `return;`.
type ReturnStatement struct {
	Value Expr // nil for a bare return
}

func (s *ReturnStatement) TokenLiteral() string { return "return" }
func (s *ReturnStatement) statementNode()       {}

// ExprStatement wraps an expression used as a statement.
type ExprStatement struct {
	Expr Expr
}

func (s *ExprStatement) TokenLiteral() string { return s.Expr.TokenLiteral() }
func (s *ExprStatement) statementNode()       {}

// MemberKind distinguishes a class member's calling shape, matching
// object.SignatureKind one-for-one minus Initializer, which the compiler
// derives from the member's name ("init") rather than its own syntax.
type MemberKind uint8

const (
	MemberMethod MemberKind = iota
	MemberGetter
	MemberSetter
	MemberSubscriptGet
	MemberSubscriptSet
)

// MethodDecl is one member of a class body.
type MethodDecl struct {
	Name     string // empty for subscript members
	Params   []string
	Body     []Statement
	Kind     MemberKind
	IsStatic bool
}

func (m *MethodDecl) TokenLiteral() string { return m.Name }

// ClassDecl is a `class Name { ... }` or `class Name : Super { ... }`
// declaration.
type ClassDecl struct {
	Name       string
	Superclass string // "" means the compiler defaults to Object
	Members    []*MethodDecl
}

func (c *ClassDecl) TokenLiteral() string { return "class" }
func (c *ClassDecl) statementNode()       {}

// --- Expressions ------------------------------------------------------

// NumberLit is a numeric literal.
type NumberLit struct{ Value float64 }

func (n *NumberLit) TokenLiteral() string { return "number" }
func (n *NumberLit) exprNode()            {}

// StringLit is a string literal.
type StringLit struct{ Value string }

func (s *StringLit) TokenLiteral() string { return "string" }
func (s *StringLit) exprNode()            {}

// BoolLit is `true` or `false`.
type BoolLit struct{ Value bool }

func (b *BoolLit) TokenLiteral() string { return "bool" }
func (b *BoolLit) exprNode()            {}

// NilLit is `nil`.
type NilLit struct{}

func (n *NilLit) TokenLiteral() string { return "nil" }
func (n *NilLit) exprNode()            {}

// Ident is a bare identifier reference: a local, a global, or a class
// name, resolved by the compiler's scope rules.
type Ident struct{ Name string }

func (i *Ident) TokenLiteral() string { return i.Name }
func (i *Ident) exprNode()            {}

// SelfExpr is the `self` keyword.
type SelfExpr struct{}

func (s *SelfExpr) TokenLiteral() string { return "self" }
func (s *SelfExpr) exprNode()            {}

// SuperExpr is the `super` keyword.
type SuperExpr struct{}

func (s *SuperExpr) TokenLiteral() string { return "super" }
func (s *SuperExpr) exprNode()            {}

// BinaryOp names an infix operator.
type BinaryOp uint8

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNotEq
	OpLess
	OpLessEq
	OpGreater
	OpGreaterEq
	OpAnd
	OpOr
)

// BinaryExpr is an infix expression.
type BinaryExpr struct {
	Op          BinaryOp
	Left, Right Expr
}

func (b *BinaryExpr) TokenLiteral() string { return "binary" }
func (b *BinaryExpr) exprNode()            {}

// UnaryOp names a prefix operator.
type UnaryOp uint8

const (
	UnaryNegate UnaryOp = iota
	UnaryNot
)

// UnaryExpr is a prefix expression.
type UnaryExpr struct {
	Op   UnaryOp
	Expr Expr
}

func (u *UnaryExpr) TokenLiteral() string { return "unary" }
func (u *UnaryExpr) exprNode()            {}

// AssignExpr is `name = value`. Target is always an *Ident naming a local
// or a global; property and subscript assignments are parsed into
// SetPropertyExpr and SubscriptSetExpr instead.
type AssignExpr struct {
	Target Expr
	Value  Expr
}

func (a *AssignExpr) TokenLiteral() string { return "=" }
func (a *AssignExpr) exprNode()            {}

// CompoundAssignExpr is `target op= value`, desugared by the compiler
// into a get, a binary op, and a set (spec.md §4.10).
type CompoundAssignExpr struct {
	Op     BinaryOp
	Target Expr
	Value  Expr
}

func (c *CompoundAssignExpr) TokenLiteral() string { return "compound-assign" }
func (c *CompoundAssignExpr) exprNode()            {}

// GetPropertyExpr is `receiver.name` with no call parens: a field read
// (if receiver is self) or a getter/property dispatch.
type GetPropertyExpr struct {
	Receiver Expr
	Name     string
}

func (g *GetPropertyExpr) TokenLiteral() string { return "." }
func (g *GetPropertyExpr) exprNode()            {}

// SetPropertyExpr is `receiver.name = value`: a field write (if receiver
// is self) or a property/setter dispatch.
type SetPropertyExpr struct {
	Receiver Expr
	Name     string
	Value    Expr
}

func (s *SetPropertyExpr) TokenLiteral() string { return ".=" }
func (s *SetPropertyExpr) exprNode()            {}

// CallExpr is `receiver.selector(args...)`.
type CallExpr struct {
	Receiver Expr
	Selector string // already in textual form, e.g. "foo(_,_)"
	Args     []Expr
}

func (c *CallExpr) TokenLiteral() string { return c.Selector }
func (c *CallExpr) exprNode()            {}

// SubscriptGetExpr is `receiver[index]`.
type SubscriptGetExpr struct {
	Receiver Expr
	Index    Expr
}

func (s *SubscriptGetExpr) TokenLiteral() string { return "[]" }
func (s *SubscriptGetExpr) exprNode()            {}

// SubscriptSetExpr is `receiver[index] = value`.
type SubscriptSetExpr struct {
	Receiver Expr
	Index    Expr
	Value    Expr
}

func (s *SubscriptSetExpr) TokenLiteral() string { return "[]=" }
func (s *SubscriptSetExpr) exprNode()            {}

package object

import (
	"github.com/phalcom-lang/phalcom/pkg/bytecode"
	"github.com/phalcom-lang/phalcom/pkg/symbol"
)

// Callable is the compiled body of a method or top-level program: a chunk
// of instructions plus the shape the evaluator needs to set up a call
// frame (arity, how many stack slots to reserve, how many upvalues to
// expect, and a name for stack traces).
type Callable struct {
	Chunk       *bytecode.Chunk
	Arity       int
	MaxSlots    int
	NumUpvalues int
	Name        symbol.Symbol
}

// Closure pairs a Callable with the module it was compiled against.
//
// Upvalues is reserved for future lexical capture, per spec.md §9 Open
// Question 2: the field exists so Callable.NumUpvalues and a closure's
// storage agree in shape, but nothing in this codebase populates it yet —
// every Closure's Upvalues is empty.
type Closure struct {
	Callable *Callable
	Module   *Module
	Upvalues []Value
}

// NewClosure builds a closure with no captured upvalues.
func NewClosure(callable *Callable, module *Module) *Closure {
	return &Closure{Callable: callable, Module: module}
}

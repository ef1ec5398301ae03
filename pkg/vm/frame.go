package vm

import "github.com/phalcom-lang/phalcom/pkg/object"

// ContextKind names what kind of receiver a Frame's closure was invoked
// against, for stack-trace formatting (spec.md §7's "module / class /
// instance" call-context distinction).
type ContextKind uint8

const (
	// CtxModule is a top-level frame, or one invoked against a receiver
	// that is neither a Class nor an Instance (e.g. reopening a
	// primitive class with a bytecode method).
	CtxModule ContextKind = iota
	// CtxClass is a frame invoked against a Class receiver (a
	// class-side/static method call).
	CtxClass
	// CtxInstance is a frame invoked against an Instance receiver.
	CtxInstance
)

// Frame is one call frame on the evaluator's frame stack: the closure
// being executed, its instruction pointer, where its stack window begins,
// and enough about its receiver to format a stack trace line.
type Frame struct {
	Closure *object.Closure
	IP      int

	// StackOffset is the index into the shared value stack where this
	// frame's window starts: slot 0 is the receiver, slots 1..Arity are
	// the arguments, and anything above that is locals.
	StackOffset int

	CtxKind     ContextKind
	CtxClass    *object.Class
	CtxInstance *object.Instance
	CtxModule   *object.Module
}

// contextFor classifies a method invocation's receiver into the
// ContextKind/Class/Instance a Frame needs for its trace line.
func contextFor(receiver object.Value) (ContextKind, *object.Class, *object.Instance) {
	switch receiver.Kind() {
	case object.KindClass:
		c, _ := receiver.AsClass()
		return CtxClass, c, nil
	case object.KindInstance:
		i, _ := receiver.AsInstance()
		return CtxInstance, nil, i
	default:
		return CtxModule, nil, nil
	}
}

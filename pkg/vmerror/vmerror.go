// Package vmerror defines the runtime error taxonomy raised by primitive
// methods and the evaluator.
//
// Shape follows the teacher's own pkg/vm/errors.go: a concrete struct with
// a formatted message and an Error() string method, not a wrapped-error
// chain — this codebase's own errors are never inspected with errors.Is/As,
// so there is nothing a wrapping library would buy it.
package vmerror

import "fmt"

// Kind narrows a runtime error to one of spec.md §7's RuntimeError
// subkinds.
type Kind uint8

const (
	KindArity Kind = iota
	KindType
	KindInvalidSetSuper
	KindInvalidSetClass
	KindUndefinedVariable
	KindZeroDivision
	KindNotAllowed
	KindMessage
)

func (k Kind) String() string {
	switch k {
	case KindArity:
		return "Arity"
	case KindType:
		return "Type"
	case KindInvalidSetSuper:
		return "InvalidSetSuper"
	case KindInvalidSetClass:
		return "InvalidSetClass"
	case KindUndefinedVariable:
		return "UndefinedVariable"
	case KindZeroDivision:
		return "ZeroDivision"
	case KindNotAllowed:
		return "NotAllowed"
	case KindMessage:
		return "Message"
	default:
		return "Unknown"
	}
}

// Error is a single runtime error: a Kind plus a formatted, human-readable
// message.
type Error struct {
	Kind    Kind
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string { return e.Message }

// Arity reports a wrong argument count for selector.
func Arity(selector string, expected, got int) *Error {
	word := "arguments"
	if expected == 1 {
		word = "argument"
	}
	return &Error{
		Kind:    KindArity,
		Message: fmt.Sprintf("Method %q expects %d %s, got %d", selector, expected, word, got),
	}
}

// Type reports an operand of the wrong variant.
func Type(expected, found string) *Error {
	return &Error{Kind: KindType, Message: fmt.Sprintf("Expected %s, got %s", expected, found)}
}

// InvalidSetSuper reports an attempt to write a class's read-only
// superclass.
func InvalidSetSuper() *Error {
	return &Error{Kind: KindInvalidSetSuper, Message: "Can't set the superclass of a class"}
}

// InvalidSetClass reports an attempt to write a value's read-only class.
func InvalidSetClass() *Error {
	return &Error{Kind: KindInvalidSetClass, Message: "Can't set the class of an object"}
}

// UndefinedVariable reports a name absent from both the current and core
// modules.
func UndefinedVariable(name string) *Error {
	return &Error{Kind: KindUndefinedVariable, Message: fmt.Sprintf("Undefined variable %q", name)}
}

// ZeroDivision reports division or modulo by zero.
func ZeroDivision() *Error {
	return &Error{Kind: KindZeroDivision, Message: "Division by zero"}
}

// NotAllowed reports an operation the language forbids outright (e.g.
// constructing a System or a Method).
func NotAllowed(message string) *Error {
	return &Error{Kind: KindNotAllowed, Message: message}
}

// Messagef is the catch-all formatted error kind.
func Messagef(format string, args ...interface{}) *Error {
	return &Error{Kind: KindMessage, Message: fmt.Sprintf(format, args...)}
}

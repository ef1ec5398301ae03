// Package vm - error handling with stack traces, adapted from the
// teacher's own pkg/vm/errors.go to the metaclass-aware call contexts
// this evaluator tracks.
package vm

import (
	"fmt"
	"strings"

	"github.com/phalcom-lang/phalcom/pkg/vmerror"
)

// StackFrame is a single formatted line of a captured stack trace.
type StackFrame struct {
	Name string // "<main>", "Counter::increment() in <main>", ...
	IP   int
}

// RuntimeError is a vmerror.Error plus the frame stack captured at the
// moment it was raised, innermost frame first.
type RuntimeError struct {
	Kind       vmerror.Kind
	Message    string
	StackTrace []StackFrame
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if len(e.StackTrace) > 0 {
		b.WriteString("\n\nStack trace:")
		for _, frame := range e.StackTrace {
			fmt.Fprintf(&b, "\n  at %s [IP: %d]", frame.Name, frame.IP)
		}
	}
	return b.String()
}

// fail wraps err into a *RuntimeError captured against vm's current frame
// stack, unless err is already a *RuntimeError — in which case it is a
// deeper frame's error passing through unchanged, and the trace it already
// carries (built at the point of origin, before any unwinding) is more
// complete than anything a shallower frame could add.
func (vm *VM) fail(err error) error {
	if err == nil {
		return nil
	}
	if already, ok := err.(*RuntimeError); ok {
		return already
	}
	kind := vmerror.KindMessage
	if ve, ok := err.(*vmerror.Error); ok {
		kind = ve.Kind
	}
	return &RuntimeError{
		Kind:       kind,
		Message:    err.Error(),
		StackTrace: vm.captureTrace(),
	}
}

// captureTrace walks the frame stack innermost-first, naming each frame
// the way spec.md §7 describes: "Class::selector in module" for a static
// call, "Class::selector in module" (instance's own class) for an instance
// call, or the bare module name for a top-level frame.
func (vm *VM) captureTrace() []StackFrame {
	trace := make([]StackFrame, 0, len(vm.frames))
	for i := len(vm.frames) - 1; i >= 0; i-- {
		f := vm.frames[i]
		trace = append(trace, StackFrame{Name: vm.frameName(f), IP: f.IP})
	}
	return trace
}

func (vm *VM) frameName(f *Frame) string {
	methodName := vm.rt.Resolve(f.Closure.Callable.Name)
	var moduleName string
	if f.Closure.Module != nil {
		moduleName = vm.rt.Resolve(f.Closure.Module.Name())
	}
	switch f.CtxKind {
	case CtxClass:
		return fmt.Sprintf("%s::%s in %s", f.CtxClass.Name().Value(), methodName, moduleName)
	case CtxInstance:
		return fmt.Sprintf("%s::%s in %s", f.CtxInstance.Class().Name().Value(), methodName, moduleName)
	default:
		if methodName == "" {
			return moduleName
		}
		return fmt.Sprintf("%s in %s", methodName, moduleName)
	}
}

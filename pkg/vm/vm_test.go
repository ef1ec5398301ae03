package vm

import (
	"strings"
	"testing"

	"github.com/phalcom-lang/phalcom/pkg/compiler"
	"github.com/phalcom-lang/phalcom/pkg/object"
	"github.com/phalcom-lang/phalcom/pkg/runtime"
	"github.com/phalcom-lang/phalcom/pkg/vmerror"
	"github.com/stretchr/testify/require"
)

func compileAndRun(t *testing.T, source string) (object.Value, error) {
	t.Helper()
	rt := runtime.New()
	closure, err := compiler.Compile(rt, source)
	require.NoError(t, err)
	e := New(rt)
	module := rt.GetOrCreateModule(runtime.MainModuleName)
	return e.RunModule(module, closure)
}

// TestMetaclassTowerInvariants exercises spec.md §8's reflective
// invariants directly against a fresh bootstrap, without going through
// user-level source at all.
func TestMetaclassTowerInvariants(t *testing.T) {
	rt := runtime.New()

	// Invariant: Object's class is Class, and Class's class is Metaclass.
	require.Same(t, rt.ClassClass, rt.ObjectClass.Class())
	require.Same(t, rt.MetaclassClass, rt.ClassClass.Class())

	// Invariant: Metaclass is its own class (the tower's weak self-edge).
	require.Same(t, rt.MetaclassClass, rt.MetaclassClass.Class())

	// Invariant: Class's superclass is Object, Metaclass's superclass is
	// Class.
	require.Same(t, rt.ObjectClass, rt.ClassClass.Superclass())
	require.Same(t, rt.ClassClass, rt.MetaclassClass.Superclass())

	// Invariant: every primitive class's superclass chain terminates at
	// Object, and its own class is a distinct metaclass whose class is
	// Metaclass.
	for _, c := range []*object.Class{rt.NumberClass, rt.StringClass, rt.BoolClass, rt.NilClass} {
		require.Same(t, rt.ObjectClass, c.Superclass())
		require.Same(t, rt.MetaclassClass, c.Class().Class())
		require.NotSame(t, c, c.Class(), "a class and its metaclass must be distinct objects")
	}
}

// TestStackTraceOnDivisionByZero mirrors the teacher's own
// TestStackTraceOnError: a runtime error must carry a two-part
// message-then-frames Error() string.
func TestStackTraceOnDivisionByZero(t *testing.T) {
	_, err := compileAndRun(t, `
	class Calc {
		divide(a, b) { return a / b; }
	}
	Calc.new().divide(10, 0);
	`)
	require.Error(t, err)

	rerr, ok := err.(*RuntimeError)
	require.True(t, ok, "expected *RuntimeError, got %T", err)

	msg := rerr.Error()
	require.Contains(t, msg, "Stack trace:")
	require.Contains(t, msg, "Calc::divide")
}

// TestStackTraceNamesNestedFrames checks that a failure several calls deep
// reports every intervening frame, innermost first.
func TestStackTraceNamesNestedFrames(t *testing.T) {
	_, err := compileAndRun(t, `
	class Outer {
		run() { return Inner.new().fail(); }
	}
	class Inner {
		fail() { return 1 / 0; }
	}
	Outer.new().run();
	`)
	require.Error(t, err)
	rerr, ok := err.(*RuntimeError)
	require.True(t, ok)
	require.GreaterOrEqual(t, len(rerr.StackTrace), 2)
	require.Contains(t, rerr.StackTrace[0].Name, "Inner::fail")
	require.Contains(t, strings.Join(frameNames(rerr.StackTrace), "|"), "Outer::run")
}

func frameNames(frames []StackFrame) []string {
	names := make([]string, len(frames))
	for i, f := range frames {
		names[i] = f.Name
	}
	return names
}

// TestArithmeticFastPathFallsBackToMessageSend checks that the Add
// opcode falls back to a message send when its operands are not both
// Numbers: String + String dispatches String's "+(_)" concatenation.
func TestArithmeticFastPathFallsBackToMessageSend(t *testing.T) {
	v, err := compileAndRun(t, `return "total: " + 42.toString;`)
	require.NoError(t, err)
	s, ok := v.AsString()
	require.True(t, ok)
	require.Equal(t, "total: 42", s.Value())
}

// TestUndefinedMessageRaisesMessageKind checks the "does not understand"
// path: calling a selector no class in the hierarchy defines.
func TestUndefinedMessageRaisesMessageKind(t *testing.T) {
	_, err := compileAndRun(t, `
	class Empty {}
	Empty.new().nope();
	`)
	require.Error(t, err)
	rerr, ok := err.(*RuntimeError)
	require.True(t, ok)
	require.Equal(t, vmerror.KindMessage, rerr.Kind)
	require.Contains(t, rerr.Message, "nope")
}

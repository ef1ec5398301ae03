package compiler

import (
	"testing"

	"github.com/phalcom-lang/phalcom/pkg/runtime"
	"github.com/phalcom-lang/phalcom/pkg/vm"
	"github.com/phalcom-lang/phalcom/pkg/vmerror"
	"github.com/stretchr/testify/require"
)

// run compiles and executes source against a fresh Runtime/VM pair,
// mirroring spec.md §8's literal source -> literal result scenarios.
func run(t *testing.T, source string) (interface{}, error) {
	t.Helper()
	rt := runtime.New()
	closure, err := Compile(rt, source)
	require.NoError(t, err)
	e := vm.New(rt)
	module := rt.GetOrCreateModule(runtime.MainModuleName)
	result, err := e.RunModule(module, closure)
	if err != nil {
		return nil, err
	}
	if n, ok := result.AsNumber(); ok {
		return n, nil
	}
	if s, ok := result.AsString(); ok {
		return s.Value(), nil
	}
	if b, ok := result.AsBool(); ok {
		return b, nil
	}
	if result.IsNil() {
		return nil, nil
	}
	return result, nil
}

func TestS1Addition(t *testing.T) {
	v, err := run(t, `return 1 + 2;`)
	require.NoError(t, err)
	require.Equal(t, 3.0, v)
}

func TestS2Multiplication(t *testing.T) {
	v, err := run(t, `return 4 * 3;`)
	require.NoError(t, err)
	require.Equal(t, 12.0, v)
}

func TestS3OperatorPrecedence(t *testing.T) {
	v, err := run(t, `return 1 + 2 * 3;`)
	require.NoError(t, err)
	require.Equal(t, 7.0, v)
}

func TestS4CompoundAssignment(t *testing.T) {
	v, err := run(t, `let a = 10; a += 20; return a;`)
	require.NoError(t, err)
	require.Equal(t, 30.0, v)
}

func TestS5NumberClassName(t *testing.T) {
	v, err := run(t, `return 123.class.name;`)
	require.NoError(t, err)
	require.Equal(t, "Number", v)
}

func TestS6StringConcat(t *testing.T) {
	v, err := run(t, `return "ab" + "cd";`)
	require.NoError(t, err)
	require.Equal(t, "abcd", v)
}

func TestS7DivisionByZero(t *testing.T) {
	_, err := run(t, `return 1 / 0;`)
	require.Error(t, err)
	rerr, ok := err.(*vm.RuntimeError)
	require.True(t, ok)
	require.Equal(t, vmerror.KindZeroDivision, rerr.Kind)
}

func TestS8UndefinedVariable(t *testing.T) {
	_, err := run(t, `return x;`)
	require.Error(t, err)
	rerr, ok := err.(*vm.RuntimeError)
	require.True(t, ok)
	require.Equal(t, vmerror.KindUndefinedVariable, rerr.Kind)
	require.Contains(t, rerr.Message, "x")
}

func TestClassDeclarationAndInstanceFields(t *testing.T) {
	src := `
	class Counter {
		init(start) { self.count = start; }
		count { return self.count; }
		increment() { self.count = self.count + 1; return self.count; }
	}
	let c = Counter.new();
	c.init(5);
	c.increment();
	return c.count;
	`
	v, err := run(t, src)
	require.NoError(t, err)
	require.Equal(t, 6.0, v)
}

func TestGetterSetterRoundTrip(t *testing.T) {
	src := `
	class Box {
		value=(v) { self.value = v; }
		value { return self.value; }
	}
	let b = Box.new();
	b.value = 41;
	return b.value + 1;
	`
	v, err := run(t, src)
	require.NoError(t, err)
	require.Equal(t, 42.0, v)
}

func TestStaticMethod(t *testing.T) {
	src := `
	class Origin {
		static create() { return self.new(); }
	}
	return Origin.create().class.name;
	`
	v, err := run(t, src)
	require.NoError(t, err)
	require.Equal(t, "Origin", v)
}

func TestClassInheritance(t *testing.T) {
	src := `
	class Animal {
		speak() { return "..."; }
	}
	class Dog : Animal {
		bark() { return "woof"; }
	}
	let d = Dog.new();
	return d.speak() + " " + d.bark();
	`
	v, err := run(t, src)
	require.NoError(t, err)
	require.Equal(t, "... woof", v)
}

func TestLocalsInMethodBody(t *testing.T) {
	src := `
	class Calc {
		sumTo(n) {
			let total = 0;
			let i = 1;
			return total + n + i;
		}
	}
	return Calc.new().sumTo(10);
	`
	v, err := run(t, src)
	require.NoError(t, err)
	require.Equal(t, 11.0, v)
}

func TestSuperIsRejected(t *testing.T) {
	src := `
	class Base {
		greet() { return "base"; }
	}
	class Derived : Base {
		greet() { return super.greet(); }
	}
	`
	_, err := Compile(runtime.New(), src)
	require.Error(t, err)
}

func TestLogicalAndOr(t *testing.T) {
	v, err := run(t, `return true and false or true;`)
	require.NoError(t, err)
	require.Equal(t, true, v)
}

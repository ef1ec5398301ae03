package runtime

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/phalcom-lang/phalcom/pkg/object"
	"github.com/phalcom-lang/phalcom/pkg/vmerror"
)

// installPrimitives attaches every native method spec.md §4.4's table (and
// SPEC_FULL.md's supplemented comparison operators) requires. Instance
// methods are added directly to the class; class-side (static) methods are
// added to the class's own metaclass — except for Object's and Class's
// "new()", which are the same underlying method (Object.class is Class
// itself, not a separate metaclass; see bootstrap).
func installPrimitives(rt *Runtime) {
	installObjectPrimitives(rt)
	installClassPrimitives(rt)
	installNumberPrimitives(rt)
	installStringPrimitives(rt)
	installBoolPrimitives(rt)
	installNilPrimitives(rt)
	installSymbolPrimitives(rt)
	installMethodPrimitives(rt)
	installSystemPrimitives(rt)
}

func define(rt *Runtime, cls *object.Class, selector string, kind object.SignatureKind, arity int, fn object.PrimitiveFunc) {
	sel := rt.Interner.Intern(selector)
	sig := object.Signature{Selector: sel, Kind: kind, Arity: arity}
	cls.AddMethod(sel, object.NewMethod(sig, object.MethodBody{Primitive: fn}))
}

// --- Object -----------------------------------------------------------

func installObjectPrimitives(rt *Runtime) {
	define(rt, rt.ObjectClass, "name", object.SigGetter, 0, func(host object.Host, recv object.Value, _ []object.Value) (object.Value, error) {
		return object.Str(recv.Name(host)), nil
	})
	define(rt, rt.ObjectClass, "class", object.SigGetter, 0, func(host object.Host, recv object.Value, _ []object.Value) (object.Value, error) {
		return object.ClassVal(recv.Class(host)), nil
	})
	define(rt, rt.ObjectClass, "class=(_)", object.SigSetter, 1, func(_ object.Host, _ object.Value, _ []object.Value) (object.Value, error) {
		return object.Nil, vmerror.InvalidSetClass()
	})
	define(rt, rt.ObjectClass, "toString", object.SigGetter, 0, func(host object.Host, recv object.Value, _ []object.Value) (object.Value, error) {
		return object.Str(object.NewString(FormatValue(host, recv))), nil
	})

	// Object's class-side new() and Class's instance new() are the same
	// method table entry: Object.class is Class itself (bootstrap never
	// allocates a separate Object.class metaclass), so this single
	// definition on ClassClass answers both "Object.new()" dispatch (via
	// Object.Class() == Class) and every "SomeClass.new()" dispatch whose
	// metaclass chain bottoms out at Class. See installClassPrimitives.
}

// --- Class --------------------------------------------------------------

func installClassPrimitives(rt *Runtime) {
	define(rt, rt.ClassClass, "superclass", object.SigGetter, 0, func(_ object.Host, recv object.Value, _ []object.Value) (object.Value, error) {
		c, ok := recv.AsClass()
		if !ok {
			return object.Nil, vmerror.Type("Class", recv.TypeName())
		}
		if c.Superclass() == nil {
			return object.Nil, nil
		}
		return object.ClassVal(c.Superclass()), nil
	})
	define(rt, rt.ClassClass, "superclass=(_)", object.SigSetter, 1, func(_ object.Host, _ object.Value, _ []object.Value) (object.Value, error) {
		return object.Nil, vmerror.InvalidSetSuper()
	})
	define(rt, rt.ClassClass, "+(_)", object.SigMethod, 1, func(host object.Host, recv object.Value, args []object.Value) (object.Value, error) {
		c, ok := recv.AsClass()
		if !ok {
			return object.Nil, vmerror.Type("Class", recv.TypeName())
		}
		other, ok := args[0].AsClass()
		if !ok {
			return object.Nil, vmerror.Type("Class", args[0].TypeName())
		}
		return object.Str(object.NewString(c.Name().Value() + other.Name().Value())), nil
	})
	define(rt, rt.ClassClass, "new()", object.SigMethod, 0, func(_ object.Host, recv object.Value, _ []object.Value) (object.Value, error) {
		c, ok := recv.AsClass()
		if !ok {
			return object.Nil, vmerror.Type("Class", recv.TypeName())
		}
		return object.InstanceVal(object.NewInstance(c)), nil
	})
}

// --- Number ---------------------------------------------------------------

func installNumberPrimitives(rt *Runtime) {
	num := func(v object.Value) (float64, error) {
		n, ok := v.AsNumber()
		if !ok {
			return 0, vmerror.Type("Number", v.TypeName())
		}
		return n, nil
	}

	define(rt, rt.NumberClass, "+(_)", object.SigMethod, 1, func(_ object.Host, recv object.Value, args []object.Value) (object.Value, error) {
		a, err := num(recv)
		if err != nil {
			return object.Nil, err
		}
		b, err := num(args[0])
		if err != nil {
			return object.Nil, err
		}
		return object.Number(a + b), nil
	})
	define(rt, rt.NumberClass, "-(_)", object.SigMethod, 1, func(_ object.Host, recv object.Value, args []object.Value) (object.Value, error) {
		a, err := num(recv)
		if err != nil {
			return object.Nil, err
		}
		b, err := num(args[0])
		if err != nil {
			return object.Nil, err
		}
		return object.Number(a - b), nil
	})
	define(rt, rt.NumberClass, "*(_)", object.SigMethod, 1, func(_ object.Host, recv object.Value, args []object.Value) (object.Value, error) {
		a, err := num(recv)
		if err != nil {
			return object.Nil, err
		}
		b, err := num(args[0])
		if err != nil {
			return object.Nil, err
		}
		return object.Number(a * b), nil
	})
	define(rt, rt.NumberClass, "/(_)", object.SigMethod, 1, func(_ object.Host, recv object.Value, args []object.Value) (object.Value, error) {
		a, err := num(recv)
		if err != nil {
			return object.Nil, err
		}
		b, err := num(args[0])
		if err != nil {
			return object.Nil, err
		}
		if b == 0.0 {
			return object.Nil, vmerror.ZeroDivision()
		}
		return object.Number(a / b), nil
	})
	define(rt, rt.NumberClass, "%(_)", object.SigMethod, 1, func(_ object.Host, recv object.Value, args []object.Value) (object.Value, error) {
		a, err := num(recv)
		if err != nil {
			return object.Nil, err
		}
		b, err := num(args[0])
		if err != nil {
			return object.Nil, err
		}
		if b == 0.0 {
			return object.Nil, vmerror.ZeroDivision()
		}
		return object.Number(math.Mod(a, b)), nil
	})

	// SPEC_FULL.md supplemented feature 1: ordered comparisons need a
	// dispatch target for the evaluator's fast-path/fallback shape,
	// exactly like the arithmetic operators above.
	cmp := func(op func(a, b float64) bool) object.PrimitiveFunc {
		return func(_ object.Host, recv object.Value, args []object.Value) (object.Value, error) {
			a, err := num(recv)
			if err != nil {
				return object.Nil, err
			}
			b, err := num(args[0])
			if err != nil {
				return object.Nil, err
			}
			return object.Bool(op(a, b)), nil
		}
	}
	define(rt, rt.NumberClass, "<(_)", object.SigMethod, 1, cmp(func(a, b float64) bool { return a < b }))
	define(rt, rt.NumberClass, "<=(_)", object.SigMethod, 1, cmp(func(a, b float64) bool { return a <= b }))
	define(rt, rt.NumberClass, ">(_)", object.SigMethod, 1, cmp(func(a, b float64) bool { return a > b }))
	define(rt, rt.NumberClass, ">=(_)", object.SigMethod, 1, cmp(func(a, b float64) bool { return a >= b }))

	define(rt, rt.NumberClass, "name", object.SigGetter, 0, func(_ object.Host, _ object.Value, _ []object.Value) (object.Value, error) {
		return object.Str(object.NewString("Number")), nil
	})

	meta := rt.NumberClass.Class()
	define(rt, meta, "new()", object.SigMethod, 0, func(_ object.Host, _ object.Value, _ []object.Value) (object.Value, error) {
		return object.Number(0), nil
	})
	define(rt, meta, "new(_)", object.SigMethod, 1, func(_ object.Host, _ object.Value, args []object.Value) (object.Value, error) {
		return coerceToNumber(args[0])
	})
}

// coerceToNumber implements Number.new(_)'s coercion rules (SPEC_FULL.md
// supplemented feature 4): identity on Number, parse on String, 1.0/0.0 on
// Bool.
func coerceToNumber(v object.Value) (object.Value, error) {
	switch v.Kind() {
	case object.KindNumber:
		return v, nil
	case object.KindString:
		s, _ := v.AsString()
		n, err := strconv.ParseFloat(strings.TrimSpace(s.Value()), 64)
		if err != nil {
			return object.Nil, vmerror.Messagef("cannot convert %q to Number", s.Value())
		}
		return object.Number(n), nil
	case object.KindBool:
		b, _ := v.AsBool()
		if b {
			return object.Number(1), nil
		}
		return object.Number(0), nil
	default:
		return object.Nil, vmerror.Type("Number, String, or Bool", v.TypeName())
	}
}

// --- String -----------------------------------------------------------

func installStringPrimitives(rt *Runtime) {
	define(rt, rt.StringClass, "+(_)", object.SigMethod, 1, func(host object.Host, recv object.Value, args []object.Value) (object.Value, error) {
		s, ok := recv.AsString()
		if !ok {
			return object.Nil, vmerror.Type("String", recv.TypeName())
		}
		other, ok := args[0].AsString()
		if !ok {
			return object.Nil, vmerror.Type("String", args[0].TypeName())
		}
		return object.Str(object.NewString(s.Value() + other.Value())), nil
	})
	define(rt, rt.StringClass, "repeat(_)", object.SigMethod, 1, func(_ object.Host, recv object.Value, args []object.Value) (object.Value, error) {
		s, ok := recv.AsString()
		if !ok {
			return object.Nil, vmerror.Type("String", recv.TypeName())
		}
		n, ok := args[0].AsNumber()
		if !ok {
			return object.Nil, vmerror.Type("Number", args[0].TypeName())
		}
		if n < 0 {
			return object.Nil, vmerror.Messagef("repeat count must be non-negative, got %g", n)
		}
		return object.Str(object.NewString(strings.Repeat(s.Value(), int(n)))), nil
	})
	define(rt, rt.StringClass, "hash", object.SigGetter, 0, func(_ object.Host, recv object.Value, _ []object.Value) (object.Value, error) {
		s, ok := recv.AsString()
		if !ok {
			return object.Nil, vmerror.Type("String", recv.TypeName())
		}
		return object.Number(float64(s.Hash())), nil
	})

	meta := rt.StringClass.Class()
	define(rt, meta, "new()", object.SigMethod, 0, func(_ object.Host, _ object.Value, _ []object.Value) (object.Value, error) {
		return object.Str(object.NewString("")), nil
	})
	define(rt, meta, "new(_)", object.SigMethod, 1, func(host object.Host, _ object.Value, args []object.Value) (object.Value, error) {
		str, err := host.Send(args[0], host.Intern("toString"), nil)
		if err != nil {
			return object.Nil, err
		}
		return object.Str(object.NewString(FormatValue(host, str))), nil
	})
}

// --- Bool ---------------------------------------------------------------

func installBoolPrimitives(rt *Runtime) {
	meta := rt.BoolClass.Class()
	define(rt, meta, "new()", object.SigMethod, 0, func(_ object.Host, _ object.Value, _ []object.Value) (object.Value, error) {
		return object.Bool(false), nil
	})
	define(rt, meta, "new(_)", object.SigMethod, 1, func(_ object.Host, _ object.Value, args []object.Value) (object.Value, error) {
		switch args[0].Kind() {
		case object.KindBool:
			return args[0], nil
		case object.KindNil:
			return object.Bool(false), nil
		case object.KindNumber:
			n, _ := args[0].AsNumber()
			return object.Bool(n != 0), nil
		default:
			return object.Bool(true), nil
		}
	})
}

// --- Nil ------------------------------------------------------------------

func installNilPrimitives(rt *Runtime) {
	meta := rt.NilClass.Class()
	define(rt, meta, "new()", object.SigMethod, 0, func(_ object.Host, _ object.Value, _ []object.Value) (object.Value, error) {
		return object.Nil, nil
	})
}

// --- Symbol ---------------------------------------------------------------

func installSymbolPrimitives(rt *Runtime) {
	define(rt, rt.SymbolClass, "toString", object.SigGetter, 0, func(host object.Host, recv object.Value, _ []object.Value) (object.Value, error) {
		sym, ok := recv.AsSymbol()
		if !ok {
			return object.Nil, vmerror.Type("Symbol", recv.TypeName())
		}
		return object.Str(object.NewString(host.Resolve(sym))), nil
	})

	meta := rt.SymbolClass.Class()
	define(rt, meta, "new(_)", object.SigMethod, 1, func(host object.Host, _ object.Value, args []object.Value) (object.Value, error) {
		switch args[0].Kind() {
		case object.KindSymbol:
			return args[0], nil
		case object.KindString:
			s, _ := args[0].AsString()
			return object.Sym(host.Intern(s.Value())), nil
		default:
			return object.Nil, vmerror.Type("String or Symbol", args[0].TypeName())
		}
	})
}

// --- Method ---------------------------------------------------------------

func installMethodPrimitives(rt *Runtime) {
	meta := rt.MethodClass.Class()
	define(rt, meta, "new(_)", object.SigMethod, 1, func(_ object.Host, _ object.Value, _ []object.Value) (object.Value, error) {
		return object.Nil, vmerror.NotAllowed("Methods cannot be constructed")
	})
}

// --- System -----------------------------------------------------------

func installSystemPrimitives(rt *Runtime) {
	meta := rt.SystemClass.Class()
	define(rt, meta, "print(_)", object.SigMethod, 1, func(host object.Host, _ object.Value, args []object.Value) (object.Value, error) {
		str, err := host.Send(args[0], host.Intern("toString"), nil)
		if err != nil {
			return object.Nil, err
		}
		fmt.Println(FormatValue(host, str))
		return object.Nil, nil
	})
	define(rt, meta, "new()", object.SigMethod, 0, func(_ object.Host, _ object.Value, _ []object.Value) (object.Value, error) {
		return object.Nil, vmerror.NotAllowed("System cannot be constructed")
	})
}

// FormatValue renders v the way toString/print does: for Strings, their
// raw contents (no quoting); for everything else, a readable debug form.
// Exported so the CLI can reuse it for echoing program and REPL results.
func FormatValue(host object.Host, v object.Value) string {
	switch v.Kind() {
	case object.KindNil:
		return "nil"
	case object.KindBool:
		b, _ := v.AsBool()
		if b {
			return "true"
		}
		return "false"
	case object.KindNumber:
		n, _ := v.AsNumber()
		return formatNumber(n)
	case object.KindString:
		s, _ := v.AsString()
		return s.Value()
	case object.KindSymbol:
		sym, _ := v.AsSymbol()
		return "#" + host.Resolve(sym)
	case object.KindClass:
		c, _ := v.AsClass()
		return "<class " + c.Name().Value() + ">"
	case object.KindInstance:
		i, _ := v.AsInstance()
		return "<instance of " + i.Class().Name().Value() + ">"
	case object.KindMethod:
		m, _ := v.AsMethod()
		return "<method " + host.Resolve(m.Signature.Selector) + ">"
	case object.KindModule:
		m, _ := v.AsModule()
		return "<module " + host.Resolve(m.Name()) + ">"
	default:
		return "<object>"
	}
}

func formatNumber(n float64) string {
	if math.IsInf(n, 1) {
		return "inf"
	}
	if math.IsInf(n, -1) {
		return "-inf"
	}
	if math.IsNaN(n) {
		return "nan"
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

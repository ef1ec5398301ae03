// Package object holds the runtime's object model: the Value tagged union
// and the heap types it can reference (String, Class, Instance, Method,
// Closure, Module).
//
// Everything here is deliberately dumb data plus a handful of accessors. The
// interesting behavior — method lookup, dispatch, bootstrap — lives in
// pkg/runtime and pkg/vm; this package only has to guarantee that a Value
// can always answer "what kind am I" and "what is my class" without
// reaching back into the evaluator.
package object

import (
	"math"
	"unsafe"

	"github.com/phalcom-lang/phalcom/pkg/symbol"
)

// Kind identifies which variant of the closed Value sum a particular Value
// holds.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindString
	KindSymbol
	KindClass
	KindInstance
	KindMethod
	KindModule

	// KindCount is the number of Kind variants; used to size well-known
	// class tables.
	KindCount
)

// String names the kind the way TypeName reports it to Phalcom code.
func (k Kind) String() string {
	switch k {
	case KindNil:
		return "Nil"
	case KindBool:
		return "Bool"
	case KindNumber:
		return "Number"
	case KindString:
		return "String"
	case KindSymbol:
		return "Symbol"
	case KindClass:
		return "Class"
	case KindInstance:
		return "Instance"
	case KindMethod:
		return "Method"
	case KindModule:
		return "Module"
	default:
		return "Unknown"
	}
}

// Host is the capability a Value needs from its runtime to resolve its own
// class and to format itself: looking up well-known classes for primitive
// kinds, interning/resolving symbols, and — for primitives whose behavior
// depends on dispatch, like System.print's use of toString — re-entering
// method invocation.
//
// pkg/runtime.Runtime answers the parts of this that are pure bookkeeping;
// pkg/vm.VM implements Send, since only the evaluator can run a bytecode
// method body.
type Host interface {
	Intern(name string) symbol.Symbol
	Resolve(sym symbol.Symbol) string
	WellKnownClass(k Kind) *Class
	Send(receiver Value, selector symbol.Symbol, args []Value) (Value, error)
}

// Value is a closed sum over Phalcom's runtime values. It is represented as
// a small tagged struct rather than an interface so that the set of
// variants is fixed at compile time and equality/hashing can be defined
// exhaustively, the way spec.md's "closed sum" data model requires.
type Value struct {
	kind Kind
	num  float64
	b    bool
	sym  symbol.Symbol
	str  *String
	cls  *Class
	inst *Instance
	meth *Method
	mod  *Module
}

// Nil is the singular Nil value.
var Nil = Value{kind: KindNil}

// Bool wraps a boolean as a Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number wraps a float64 as a Value.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Str wraps a *String as a Value.
func Str(s *String) Value { return Value{kind: KindString, str: s} }

// Sym wraps a Symbol as a Value.
func Sym(s symbol.Symbol) Value { return Value{kind: KindSymbol, sym: s} }

// ClassVal wraps a *Class as a Value.
func ClassVal(c *Class) Value { return Value{kind: KindClass, cls: c} }

// InstanceVal wraps a *Instance as a Value.
func InstanceVal(i *Instance) Value { return Value{kind: KindInstance, inst: i} }

// MethodVal wraps a *Method as a Value.
func MethodVal(m *Method) Value { return Value{kind: KindMethod, meth: m} }

// ModuleVal wraps a *Module as a Value.
func ModuleVal(m *Module) Value { return Value{kind: KindModule, mod: m} }

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// TypeName is the static, user-visible name of v's variant.
func (v Value) TypeName() string { return v.kind.String() }

// IsNil reports whether v is the Nil value.
func (v Value) IsNil() bool { return v.kind == KindNil }

// AsBool extracts the bool payload; ok is false if v is not a Bool.
func (v Value) AsBool() (val bool, ok bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// AsNumber extracts the float64 payload; ok is false if v is not a Number.
func (v Value) AsNumber() (val float64, ok bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// AsString extracts the *String payload; ok is false if v is not a String.
func (v Value) AsString() (val *String, ok bool) {
	if v.kind != KindString {
		return nil, false
	}
	return v.str, true
}

// AsSymbol extracts the Symbol payload; ok is false if v is not a Symbol.
func (v Value) AsSymbol() (val symbol.Symbol, ok bool) {
	if v.kind != KindSymbol {
		return 0, false
	}
	return v.sym, true
}

// AsClass extracts the *Class payload; ok is false if v is not a Class.
func (v Value) AsClass() (val *Class, ok bool) {
	if v.kind != KindClass {
		return nil, false
	}
	return v.cls, true
}

// AsInstance extracts the *Instance payload; ok is false if v is not an Instance.
func (v Value) AsInstance() (val *Instance, ok bool) {
	if v.kind != KindInstance {
		return nil, false
	}
	return v.inst, true
}

// AsMethod extracts the *Method payload; ok is false if v is not a Method.
func (v Value) AsMethod() (val *Method, ok bool) {
	if v.kind != KindMethod {
		return nil, false
	}
	return v.meth, true
}

// AsModule extracts the *Module payload; ok is false if v is not a Module.
func (v Value) AsModule() (val *Module, ok bool) {
	if v.kind != KindModule {
		return nil, false
	}
	return v.mod, true
}

// Class returns the class v dispatches through: the well-known class for
// primitive kinds, or the class stored on the heap object for Class and
// Instance values.
func (v Value) Class(host Host) *Class {
	switch v.kind {
	case KindClass:
		return v.cls.Class()
	case KindInstance:
		return v.inst.Class()
	default:
		return host.WellKnownClass(v.kind)
	}
}

// Name returns v's class name: for primitives, the well-known class's own
// name; for an Instance, its class's name; for a Class value, the class's
// own name (not its metaclass's name).
func (v Value) Name(host Host) *String {
	switch v.kind {
	case KindClass:
		return v.cls.Name()
	case KindInstance:
		return v.inst.Class().Name()
	default:
		return host.WellKnownClass(v.kind).Name()
	}
}

// LookupMethod resolves selector starting at v's class and walking the
// superclass chain.
func (v Value) LookupMethod(host Host, selector symbol.Symbol) *Method {
	return LookupMethod(v.Class(host), selector)
}

// Equal implements spec.md's equality rule: structural for primitives,
// pointer identity for heap references, never equal across variants.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNil:
		return true
	case KindBool:
		return v.b == other.b
	case KindNumber:
		return v.num == other.num
	case KindString:
		return v.str == other.str
	case KindSymbol:
		return v.sym == other.sym
	case KindClass:
		return v.cls == other.cls
	case KindInstance:
		return v.inst == other.inst
	case KindMethod:
		return v.meth == other.meth
	case KindModule:
		return v.mod == other.mod
	default:
		return false
	}
}

// Hash returns a hash consistent with Equal: equal values hash equal, with
// one exception: Numbers hash their raw bit pattern, so 0 and -0 compare
// equal but hash differently.
func (v Value) Hash() uint64 {
	switch v.kind {
	case KindNil:
		return 0
	case KindBool:
		if v.b {
			return 1
		}
		return 2
	case KindNumber:
		return math.Float64bits(v.num)
	case KindString:
		return uint64(v.str.Hash())
	case KindSymbol:
		return uint64(v.sym)
	case KindClass:
		return pointerHash(unsafe.Pointer(v.cls))
	case KindInstance:
		return pointerHash(unsafe.Pointer(v.inst))
	case KindMethod:
		return pointerHash(unsafe.Pointer(v.meth))
	case KindModule:
		return pointerHash(unsafe.Pointer(v.mod))
	default:
		return 0
	}
}

func pointerHash(p unsafe.Pointer) uint64 {
	u := uint64(uintptr(p))
	// A cheap finalizing mix so pointers that only differ in their low,
	// allocator-aligned bits still spread across hash buckets.
	u ^= u >> 33
	u *= 0xff51afd7ed558ccd
	u ^= u >> 33
	return u
}

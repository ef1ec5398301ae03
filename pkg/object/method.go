package object

import (
	"weak"

	"github.com/phalcom-lang/phalcom/pkg/symbol"
)

// SignatureKind distinguishes the calling shape a Method's selector
// implies: a plain method call, a bare getter/setter, a subscript, or an
// initializer.
type SignatureKind uint8

const (
	SigInitializer SignatureKind = iota
	SigMethod
	SigGetter
	SigSetter
	SigSubscriptGet
	SigSubscriptSet
)

func (k SignatureKind) String() string {
	switch k {
	case SigInitializer:
		return "Initializer"
	case SigMethod:
		return "Method"
	case SigGetter:
		return "Getter"
	case SigSetter:
		return "Setter"
	case SigSubscriptGet:
		return "SubscriptGet"
	case SigSubscriptSet:
		return "SubscriptSet"
	default:
		return "Unknown"
	}
}

// Signature names a method: its selector Symbol, its calling-shape Kind,
// and — for Initializer/Method/SubscriptGet/SubscriptSet — its arity.
// Getter and Setter ignore Arity (0 and 1 respectively, implied by the
// shape, not stored separately).
type Signature struct {
	Selector symbol.Symbol
	Kind     SignatureKind
	Arity    int
}

// PrimitiveFunc is a native method body. It receives the Host so it can
// resolve classes/symbols and, for primitives whose behavior depends on
// further dispatch (System.print calling toString), re-enter Send.
type PrimitiveFunc func(host Host, receiver Value, args []Value) (Value, error)

// MethodBody is either a bytecode Closure or a native PrimitiveFunc, never
// both.
type MethodBody struct {
	Closure   *Closure
	Primitive PrimitiveFunc
}

// IsPrimitive reports whether this body is native.
func (b MethodBody) IsPrimitive() bool { return b.Primitive != nil }

// Method is a Phalcom method object: a signature, a body, and a weak
// back-reference to its holding class.
//
// The holder edge is weak per spec.md's ownership design (a method's
// class strongly owns its method table, which strongly owns the method;
// the method pointing back at its class would otherwise be a reference
// cycle). See Class's doc comment for why this is modeled with
// weak.Pointer even though Go's GC does not require it for correctness.
type Method struct {
	Signature Signature
	Body      MethodBody
	holder    weak.Pointer[Class]
}

// NewMethod constructs a Method with no holder set yet; Class.AddMethod
// sets it.
func NewMethod(sig Signature, body MethodBody) *Method {
	return &Method{Signature: sig, Body: body}
}

// SetHolder points m's holder back at c.
func (m *Method) SetHolder(c *Class) { m.holder = weak.Make(c) }

// Holder resolves m's holder, or nil if the owning class has since been
// collected (which cannot happen while any strong edge still reaches it).
func (m *Method) Holder() *Class { return m.holder.Value() }

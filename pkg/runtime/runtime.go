// Package runtime owns the process-wide state a Phalcom evaluator needs
// besides its own stack and frames: the symbol interner, the module
// registry, the class registry, and the bootstrapped metaclass tower with
// its primitive methods installed.
//
// This mirrors phalcom-core/src/vm.rs's Universe/VM split in the original
// implementation: the evaluator (pkg/vm) drives dispatch, but the
// long-lived tables it dispatches against live here so that constructing a
// fresh Runtime gives a fully isolated interpreter instance, per spec.md
// §9's "global mutable state is runtime-scoped, not process-scoped" design
// note.
package runtime

import (
	"github.com/phalcom-lang/phalcom/pkg/object"
	"github.com/phalcom-lang/phalcom/pkg/symbol"
)

// CoreModuleName is the name of the distinguished module holding the
// primitive classes and System.
const CoreModuleName = "core"

// MainModuleName is the conventional name of the top-level user module.
const MainModuleName = "<main>"

// Runtime holds everything an evaluator needs beyond its own stack and
// frames.
type Runtime struct {
	Interner *symbol.Interner
	Modules  map[symbol.Symbol]*object.Module
	Classes  map[symbol.Symbol]*object.Class

	ObjectClass    *object.Class
	ClassClass     *object.Class
	MetaclassClass *object.Class
	NumberClass    *object.Class
	StringClass    *object.Class
	NilClass       *object.Class
	BoolClass      *object.Class
	SymbolClass    *object.Class
	MethodClass    *object.Class
	ModuleClass    *object.Class
	SystemClass    *object.Class

	CoreModule *object.Module
}

// New builds a Runtime with the metaclass tower bootstrapped and every
// primitive method installed.
func New() *Runtime {
	rt := &Runtime{
		Interner: symbol.NewInterner(),
		Modules:  make(map[symbol.Symbol]*object.Module),
		Classes:  make(map[symbol.Symbol]*object.Class),
	}
	rt.bootstrap()
	installPrimitives(rt)
	return rt
}

// Intern interns name, implementing object.Host.
func (rt *Runtime) Intern(name string) symbol.Symbol { return rt.Interner.Intern(name) }

// Resolve resolves sym back to its string, implementing object.Host.
func (rt *Runtime) Resolve(sym symbol.Symbol) string { return rt.Interner.Lookup(sym) }

// WellKnownClass returns the bootstrapped class for a primitive Kind,
// implementing object.Host.
func (rt *Runtime) WellKnownClass(k object.Kind) *object.Class {
	switch k {
	case object.KindNil:
		return rt.NilClass
	case object.KindBool:
		return rt.BoolClass
	case object.KindNumber:
		return rt.NumberClass
	case object.KindString:
		return rt.StringClass
	case object.KindSymbol:
		return rt.SymbolClass
	case object.KindMethod:
		return rt.MethodClass
	case object.KindModule:
		return rt.ModuleClass
	case object.KindClass:
		return rt.ClassClass
	case object.KindInstance:
		return rt.ObjectClass
	default:
		return rt.ObjectClass
	}
}

// registerClass interns name and records c in the class registry (used by
// both bootstrap and user-level class declarations for reflective lookup
// by name).
func (rt *Runtime) registerClass(name string, c *object.Class) symbol.Symbol {
	sym := rt.Interner.Intern(name)
	rt.Classes[sym] = c
	return sym
}

// LookupClass finds a previously registered class by its interned name
// symbol.
func (rt *Runtime) LookupClass(sym symbol.Symbol) (*object.Class, bool) {
	c, ok := rt.Classes[sym]
	return c, ok
}

// GetModule returns a previously registered module by its interned name
// symbol.
func (rt *Runtime) GetModule(sym symbol.Symbol) (*object.Module, bool) {
	m, ok := rt.Modules[sym]
	return m, ok
}

// GetOrCreateModule returns the module named name, creating and
// registering an empty one on first use.
func (rt *Runtime) GetOrCreateModule(name string) *object.Module {
	sym := rt.Interner.Intern(name)
	if m, ok := rt.Modules[sym]; ok {
		return m
	}
	m := object.NewModule(sym)
	rt.Modules[sym] = m
	return m
}

// CreateClass builds a new user-defined class named name with the given
// superclass, pairing it with a freshly constructed metaclass per spec.md
// §4.9's Class-construction rule: the metaclass's class is Metaclass, and
// its superclass is the given superclass's own metaclass.
func (rt *Runtime) CreateClass(name string, superclass *object.Class) *object.Class {
	metaSuperclass := superclass.Class()

	metaclass := object.NewClass(object.NewString(name+".class"), metaSuperclass)
	metaclass.SetClassStrong(rt.MetaclassClass)

	cls := object.NewClass(object.NewString(name), superclass)
	cls.SetClassStrong(metaclass)

	rt.registerClass(name, cls)
	rt.registerClass(name+".class", metaclass)
	return cls
}

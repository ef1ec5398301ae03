package object

import (
	"weak"

	"github.com/phalcom-lang/phalcom/pkg/symbol"
)

// MethodTable is an insertion-ordered selector -> *Method map. Insertion
// order matters only for reflective iteration (listing a class's own
// methods); lookup itself is O(1) regardless of order.
type MethodTable struct {
	order  []symbol.Symbol
	byName map[symbol.Symbol]*Method
}

func newMethodTable() *MethodTable {
	return &MethodTable{byName: make(map[symbol.Symbol]*Method)}
}

// Add inserts or replaces the method under selector.
func (t *MethodTable) Add(selector symbol.Symbol, m *Method) {
	if _, exists := t.byName[selector]; !exists {
		t.order = append(t.order, selector)
	}
	t.byName[selector] = m
}

// Get returns the method registered under selector in this table only (no
// superclass walk).
func (t *MethodTable) Get(selector symbol.Symbol) (*Method, bool) {
	m, ok := t.byName[selector]
	return m, ok
}

// Len reports how many selectors this table holds.
func (t *MethodTable) Len() int { return len(t.order) }

// Selectors returns the selectors in insertion order.
func (t *MethodTable) Selectors() []symbol.Symbol { return t.order }

// Class is a Phalcom class object: a name, a pointer to its own class (the
// metaclass), an optional superclass, and a method table.
//
// The class-of-a-class edge is strong everywhere except at the very root of
// the tower, where Metaclass's class is itself — a cycle that would keep
// Metaclass alive forever under naive reference counting. Go's GC makes
// that moot for memory safety, but the edge is still modeled with
// weak.Pointer[Class] at that one root to keep the distinction spec.md
// draws between the ownership spine and its two back-edges visible in the
// type itself rather than purely in prose.
type Class struct {
	name       *String
	superclass *Class

	classStrong *Class
	classWeak   weak.Pointer[Class]
	classIsWeak bool

	methods *MethodTable
}

// NewClass allocates a class with the given name and superclass. The
// caller must still call SetClassStrong or SetClassWeakSelf to complete
// the class-of-a-class edge before the class is used for dispatch.
func NewClass(name *String, superclass *Class) *Class {
	return &Class{name: name, superclass: superclass, methods: newMethodTable()}
}

// SetClassStrong sets c's class to cls via an ordinary strong pointer. This
// is the edge every class but Metaclass uses.
func (c *Class) SetClassStrong(cls *Class) {
	c.classStrong = cls
	c.classIsWeak = false
}

// SetClassWeakSelf sets c's class to itself via a weak.Pointer, closing the
// bootstrap's one true self-referential edge (Metaclass.class == Metaclass).
func (c *Class) SetClassWeakSelf() {
	c.classWeak = weak.Make(c)
	c.classIsWeak = true
}

// Class returns c's own class (its metaclass), resolving the weak self-edge
// if this is the one class that uses it.
func (c *Class) Class() *Class {
	if c.classIsWeak {
		return c.classWeak.Value()
	}
	return c.classStrong
}

// Superclass returns c's superclass, or nil if c has none (only Object has
// no superclass).
func (c *Class) Superclass() *Class { return c.superclass }

// SetSuperclass rebinds c's superclass.
func (c *Class) SetSuperclass(s *Class) { c.superclass = s }

// Name returns c's own name (never the metaclass's name).
func (c *Class) Name() *String { return c.name }

// AddMethod attaches m to c's own method table under selector, and points
// m's holder back at c.
func (c *Class) AddMethod(selector symbol.Symbol, m *Method) {
	m.SetHolder(c)
	c.methods.Add(selector, m)
}

// GetMethod looks up selector in c's own table only (no superclass walk).
func (c *Class) GetMethod(selector symbol.Symbol) (*Method, bool) {
	return c.methods.Get(selector)
}

// Methods returns c's own method table.
func (c *Class) Methods() *MethodTable { return c.methods }

// LookupMethod walks from start up the superclass chain, returning the
// method found in the first class whose own table has selector, or nil if
// the chain ends without a match.
func LookupMethod(start *Class, selector symbol.Symbol) *Method {
	for c := start; c != nil; c = c.Superclass() {
		if m, ok := c.GetMethod(selector); ok {
			return m
		}
	}
	return nil
}

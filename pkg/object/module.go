package object

import (
	"fmt"

	"github.com/phalcom-lang/phalcom/pkg/symbol"
)

// MaxGlobals bounds how many distinct top-level bindings a single module
// may declare.
const MaxGlobals = 1 << 16

// Module is a namespace: a name and a slot-indexed table of top-level
// bindings, addressable both by name (Define/Get, used by DefineGlobal and
// GetGlobal) and by slot (SlotFor then SetSlot, used by SetGlobal).
type Module struct {
	name       symbol.Symbol
	globals    []Value
	nameToSlot map[symbol.Symbol]int
}

// NewModule allocates an empty module named name.
func NewModule(name symbol.Symbol) *Module {
	return &Module{name: name, nameToSlot: make(map[symbol.Symbol]int)}
}

// Name returns the module's interned name.
func (m *Module) Name() symbol.Symbol { return m.name }

// Declare idempotently reserves a slot for name, appending a Nil-valued
// slot on first declaration. It errors once MaxGlobals would be exceeded.
func (m *Module) Declare(name symbol.Symbol) (int, error) {
	if slot, ok := m.nameToSlot[name]; ok {
		return slot, nil
	}
	if len(m.nameToSlot) >= MaxGlobals {
		return 0, fmt.Errorf("module %d: too many globals", m.name)
	}
	slot := len(m.globals)
	m.nameToSlot[name] = slot
	m.globals = append(m.globals, Nil)
	return slot, nil
}

// Define declares name (if needed) and assigns value to its slot.
func (m *Module) Define(name symbol.Symbol, value Value) (int, error) {
	slot, err := m.Declare(name)
	if err != nil {
		return 0, err
	}
	m.globals[slot] = value
	return slot, nil
}

// Get returns the current value bound to name, or (Nil, false) if name has
// never been declared in this module.
func (m *Module) Get(name symbol.Symbol) (Value, bool) {
	slot, ok := m.nameToSlot[name]
	if !ok {
		return Nil, false
	}
	return m.globals[slot], true
}

// SlotFor returns the slot name is bound to, if any.
func (m *Module) SlotFor(name symbol.Symbol) (int, bool) {
	slot, ok := m.nameToSlot[name]
	return slot, ok
}

// GetSlot reads a global by its resolved slot index.
func (m *Module) GetSlot(slot int) (Value, error) {
	if slot < 0 || slot >= len(m.globals) {
		return Nil, fmt.Errorf("global slot out of bounds: %d", slot)
	}
	return m.globals[slot], nil
}

// SetSlot writes a global by its resolved slot index.
func (m *Module) SetSlot(slot int, value Value) error {
	if slot < 0 || slot >= len(m.globals) {
		return fmt.Errorf("global slot out of bounds: %d", slot)
	}
	m.globals[slot] = value
	return nil
}

// Len reports how many globals this module has declared.
func (m *Module) Len() int { return len(m.globals) }

package object

import "github.com/phalcom-lang/phalcom/pkg/symbol"

// FieldMap is an insertion-ordered Symbol -> Value map backing an
// Instance's fields.
type FieldMap struct {
	order  []symbol.Symbol
	byName map[symbol.Symbol]Value
}

func newFieldMap() *FieldMap {
	return &FieldMap{byName: make(map[symbol.Symbol]Value)}
}

// Get returns the field's value, or (Nil, false) if unset.
func (f *FieldMap) Get(s symbol.Symbol) (Value, bool) {
	v, ok := f.byName[s]
	return v, ok
}

// Set assigns the field, recording insertion order on first write.
func (f *FieldMap) Set(s symbol.Symbol, v Value) {
	if _, exists := f.byName[s]; !exists {
		f.order = append(f.order, s)
	}
	f.byName[s] = v
}

// Symbols returns the field names in insertion order.
func (f *FieldMap) Symbols() []symbol.Symbol { return f.order }

// Instance is a Phalcom object created by Class.new(): a strong pointer to
// its class and a field map.
type Instance struct {
	class  *Class
	fields *FieldMap
}

// NewInstance allocates a zero-field instance of class.
func NewInstance(class *Class) *Instance {
	return &Instance{class: class, fields: newFieldMap()}
}

// Class returns the instance's class.
func (i *Instance) Class() *Class { return i.class }

// GetField reads a field by Symbol; a missing field reads as Nil, per
// spec.md §4.3.
func (i *Instance) GetField(s symbol.Symbol) Value {
	if v, ok := i.fields.Get(s); ok {
		return v
	}
	return Nil
}

// SetField writes a field by Symbol.
func (i *Instance) SetField(s symbol.Symbol, v Value) { i.fields.Set(s, v) }

// Fields exposes the underlying field map, e.g. for reflective listing.
func (i *Instance) Fields() *FieldMap { return i.fields }

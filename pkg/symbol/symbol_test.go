package symbol_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phalcom-lang/phalcom/pkg/symbol"
)

func TestInternIdempotent(t *testing.T) {
	in := symbol.NewInterner()

	a := in.Intern("hello")
	b := in.Intern("hello")
	assert.Equal(t, a, b)

	c := in.Intern("world")
	assert.NotEqual(t, a, c)
}

func TestLookupRoundTrip(t *testing.T) {
	in := symbol.NewInterner()

	names := []string{"Object", "Class", "Metaclass", "+(_)", "new()", "new(_)"}
	syms := make([]symbol.Symbol, len(names))
	for i, n := range names {
		syms[i] = in.Intern(n)
	}

	for i, n := range names {
		require.Equal(t, n, in.Lookup(syms[i]))
	}
}

func TestLookupUnknownSymbolIsEmpty(t *testing.T) {
	in := symbol.NewInterner()
	assert.Equal(t, "", in.Lookup(symbol.Symbol(999)))
}

func TestArenaGrowthKeepsOldStringsValid(t *testing.T) {
	in := symbol.NewInterner()

	var syms []symbol.Symbol
	var names []string
	for i := 0; i < 5000; i++ {
		n := fmt.Sprintf("identifier_number_%d_with_some_padding", i)
		names = append(names, n)
		syms = append(syms, in.Intern(n))
	}

	for i, n := range names {
		assert.Equal(t, n, in.Lookup(syms[i]), "string %d corrupted after arena growth", i)
	}
}

func TestInternEmptyString(t *testing.T) {
	in := symbol.NewInterner()
	sym := in.Intern("")
	assert.Equal(t, "", in.Lookup(sym))
	assert.Equal(t, sym, in.Intern(""))
}

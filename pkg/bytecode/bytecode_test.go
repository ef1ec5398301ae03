package bytecode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phalcom-lang/phalcom/pkg/bytecode"
)

func TestAddConstantReturnsIndex(t *testing.T) {
	c := &bytecode.Chunk{}
	i0 := c.AddConstant(1.0)
	i1 := c.AddConstant("hello")
	assert.Equal(t, 0, i0)
	assert.Equal(t, 1, i1)
	assert.Equal(t, []interface{}{1.0, "hello"}, c.Constants)
}

func TestEmitReturnsIndex(t *testing.T) {
	c := &bytecode.Chunk{}
	i0 := c.Emit(bytecode.Constant, 0, 0)
	i1 := c.Emit(bytecode.Return, 0, 0)
	assert.Equal(t, 0, i0)
	assert.Equal(t, 1, i1)
	assert.Equal(t, bytecode.Constant, c.Code[0].Op)
	assert.Equal(t, bytecode.Return, c.Code[1].Op)
}

func TestInvokeOperandsCarryArityAndSelector(t *testing.T) {
	c := &bytecode.Chunk{}
	selIx := c.AddConstant("+(_)")
	c.Emit(bytecode.Invoke, uint16(selIx), 1)
	assert.Equal(t, uint16(selIx), c.Code[0].A)
	assert.Equal(t, uint8(1), c.Code[0].B)
}

func TestOpcodeStringCoversEveryOpcode(t *testing.T) {
	for op := bytecode.Constant; op <= bytecode.Not; op++ {
		assert.NotEqual(t, "UNKNOWN", op.String(), "opcode %d missing from String()", op)
	}
}

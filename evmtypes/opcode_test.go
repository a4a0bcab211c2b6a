package evmtypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpCodeArity(t *testing.T) {
	tests := []struct {
		op   OpCode
		pop  int
		push int
	}{
		{ADD, 2, 1},
		{CALL, 7, 1},
		{DELEGATECALL, 6, 1},
		{JUMPI, 2, 0},
		{SSTORE, 2, 0},
		{SLOAD, 1, 1},
		{PUSH1, 0, 1},
		{DUP3, 3, 4},
		{SWAP2, 3, 3},
		{LOG2, 4, 0},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			assert.Equal(t, tt.pop, tt.op.Pop())
			assert.Equal(t, tt.push, tt.op.Push())
		})
	}
}

func TestByNameRoundTrip(t *testing.T) {
	for _, name := range []string{"PUSH1", "PUSH32", "DUP16", "SWAP1", "LOG4", "JUMPI", "SSTORE"} {
		op, ok := ByName(name)
		require.True(t, ok, "expected %s to resolve", name)
		assert.Equal(t, name, op.String())
	}

	_, ok := ByName("NOTANOPCODE")
	assert.False(t, ok)
}

func TestPredicates(t *testing.T) {
	assert.True(t, PUSH7.IsPush())
	assert.Equal(t, 7, PUSH7.PushWidth())
	assert.True(t, DUP4.IsDup())
	assert.Equal(t, 4, DUP4.DupDepth())
	assert.True(t, SWAP5.IsSwap())
	assert.Equal(t, 5, SWAP5.SwapDepth())
	assert.True(t, LOG3.IsLog())
	assert.Equal(t, 3, LOG3.LogTopics())

	for _, op := range []OpCode{CALL, CALLCODE, DELEGATECALL, STATICCALL, CREATE, CREATE2} {
		assert.True(t, op.IsCall(), "%s should be IsCall", op)
	}
	assert.False(t, SLOAD.IsCall())

	assert.True(t, ADD.IsArithmetic())
	assert.True(t, ISZERO.IsArithmetic())
	assert.False(t, SLOAD.IsArithmetic())

	for _, op := range []OpCode{STOP, RETURN, REVERT, INVALID, SELFDESTRUCT} {
		assert.True(t, op.PossiblyHalts())
		assert.True(t, op.EndsBlock())
	}
	assert.True(t, JUMP.EndsBlock())
	assert.True(t, JUMPI.EndsBlock())
	assert.False(t, JUMP.PossiblyHalts())
	assert.False(t, ADD.EndsBlock())
}

func TestKindClassification(t *testing.T) {
	tests := []struct {
		op   OpCode
		kind Kind
	}{
		{CALLVALUE, KindOne},
		{TIMESTAMP, KindOne},
		{PC, KindOne},
		{CALLDATALOAD, KindTwo},
		{BALANCE, KindTwo},
		{CALLDATACOPY, KindThreeStoreTwo},
		{EXTCODECOPY, KindThreeStoreTwo},
		{CALL, KindFour},
		{STATICCALL, KindFour},
		{CREATE, KindFive},
		{CREATE2, KindFive},
		{ADD, KindOther},
		{SLOAD, KindOther},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.op))
		})
	}
}

package trace

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vandalgo/vandal/evmtypes"
)

func TestDecodeTrivialPushAdd(t *testing.T) {
	optrace := "0,0,1,PUSH1,_,_,0x3\n2,0,1,PUSH1,_,_,0x4\n4,0,1,ADD,_,_,0x7"

	ops, err := Decode(optrace)
	require.NoError(t, err)
	require.Len(t, ops, 3)

	assert.Equal(t, evmtypes.PUSH1, ops[0].Opcode)
	assert.Equal(t, uint64(0), ops[0].PC)
	assert.EqualValues(t, 3, ops[0].Value.Uint64())

	assert.Equal(t, evmtypes.PUSH1, ops[1].Opcode)
	assert.EqualValues(t, 4, ops[1].Value.Uint64())

	assert.Equal(t, evmtypes.ADD, ops[2].Opcode)
	assert.EqualValues(t, 7, ops[2].Value.Uint64())

	for i, op := range ops {
		assert.EqualValues(t, i, op.OpIndex)
	}
}

func TestDecodeValueExtraPair(t *testing.T) {
	ops, err := Decode("10,0,1,CALL,_,_,0x1:0xdeadbeef")
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.EqualValues(t, 1, ops[0].Value.Uint64())
	require.NotNil(t, ops[0].Extra)
	assert.EqualValues(t, 0xdeadbeef, ops[0].Extra.Uint64())
}

func TestDecodeEmptyValueField(t *testing.T) {
	ops, err := Decode("0,0,1,CALLVALUE,_,_,0x")
	require.NoError(t, err)
	require.Len(t, ops, 1)
	require.NotNil(t, ops[0].Value)
	assert.True(t, ops[0].Value.IsZero())
}

func TestDecodeEmptyTrace(t *testing.T) {
	_, err := Decode("")
	assert.ErrorIs(t, err, ErrEmptyTrace)

	_, err = Decode("\n\n   \n")
	assert.ErrorIs(t, err, ErrEmptyTrace)
}

func TestDecodeUnknownOpcode(t *testing.T) {
	_, err := Decode("0,0,1,NOTANOP,_,_,0x1")
	var fe *FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 0, fe.LineIndex)
}

func TestDecodeBadFieldCount(t *testing.T) {
	_, err := Decode("0,0,1,ADD,_,0x1")
	var fe *FormatError
	require.True(t, errors.As(err, &fe))
}

func TestDecodeLineIndexSkipsBlankLines(t *testing.T) {
	ops, err := Decode("0,0,1,PUSH1,_,_,0x1\n\n2,0,1,PUSH1,_,_,0x2")
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.EqualValues(t, 0, ops[0].OpIndex)
	assert.EqualValues(t, 2, ops[1].OpIndex)
}

package tac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vandalgo/vandal/evmtypes"
	"github.com/vandalgo/vandal/trace"
)

func TestLiftTrivialPushAdd(t *testing.T) {
	ops, err := trace.Decode("0,0,1,PUSH1,_,_,0x3\n2,0,1,PUSH1,_,_,0x4\n4,0,1,ADD,_,_,0x7")
	require.NoError(t, err)

	prog, err := Lift(ops, "0xaaaa")
	require.NoError(t, err)

	require.Len(t, prog.Blocks, 1)
	block := prog.Blocks[0]
	require.Len(t, block.Ops, 3)

	add := block.Ops[2]
	assert.Equal(t, evmtypes.ADD, add.Opcode)
	require.Len(t, add.Args, 2)
	require.NotNil(t, add.Lhs)

	lhs := prog.Var(*add.Lhs)
	require.True(t, lhs.HasValue())
	assert.EqualValues(t, 7, lhs.Value.Uint64())

	v0 := prog.Var(add.Args[1]) // bottom-of-the-two operands, pushed first
	v1 := prog.Var(add.Args[0])
	assert.ElementsMatch(t, []VarID{v0.ID, v1.ID}, lhs.Parents)
}

func TestLiftPopDupSwapEmitNoOp(t *testing.T) {
	ops, err := trace.Decode(
		"0,0,1,PUSH1,_,_,0x1\n" +
			"2,0,1,PUSH1,_,_,0x2\n" +
			"4,0,1,DUP2,_,_,0x0\n" +
			"5,0,1,SWAP1,_,_,0x0\n" +
			"6,0,1,POP,_,_,0x0\n" +
			"7,0,1,ADD,_,_,0x3",
	)
	require.NoError(t, err)

	prog, err := Lift(ops, "0xaaaa")
	require.NoError(t, err)

	require.Len(t, prog.Blocks, 1)
	ops2 := prog.Blocks[0].Ops
	// DUP2/SWAP1/POP emit no TAC instruction: PUSH, PUSH, ADD only.
	require.Len(t, ops2, 3)
	assert.Equal(t, evmtypes.ADD, ops2[2].Opcode)
}

func TestPartitionSplitsOnJumpdestAndTerminators(t *testing.T) {
	ops, err := trace.Decode(
		"0,0,1,PUSH1,_,_,0x1\n" +
			"2,0,1,PUSH1,_,_,0x5\n" +
			"4,0,1,JUMP,_,_,0x0\n" +
			"5,0,1,JUMPDEST,_,_,0x0\n" +
			"6,0,1,STOP,_,_,0x0",
	)
	require.NoError(t, err)

	blocks := partition(ops)
	require.Len(t, blocks, 2)
	assert.Len(t, blocks[0].ops, 3) // PUSH, PUSH, JUMP
	assert.Len(t, blocks[1].ops, 2) // JUMPDEST, STOP
}

func TestLiftCallSuccessAndExtra(t *testing.T) {
	ops, err := trace.Decode(
		"0,0,1,PUSH1,_,_,0x0\n" + // retSize
			"2,0,1,PUSH1,_,_,0x0\n" + // retOffset
			"4,0,1,PUSH1,_,_,0x0\n" + // argsSize
			"6,0,1,PUSH1,_,_,0x0\n" + // argsOffset
			"8,0,1,PUSH1,_,_,0x0\n" + // value
			"10,0,1,PUSH20,_,_,0xbbbb\n" + // address
			"31,0,1,PUSH2,_,_,0x2710\n" + // gas
			"34,0,1,CALL,_,_,0x1:0xff",
	)
	require.NoError(t, err)

	prog, err := Lift(ops, "0xaaaa")
	require.NoError(t, err)

	var call *TACOp
	for _, op := range prog.Blocks[0].Ops {
		if op.Opcode == evmtypes.CALL {
			call = op
		}
	}
	require.NotNil(t, call)
	require.NotNil(t, call.Lhs)

	lhs := prog.Var(*call.Lhs)
	require.True(t, lhs.HasValue())
	assert.EqualValues(t, 1, lhs.Value.Uint64())
	require.NotNil(t, lhs.Extra)
	assert.EqualValues(t, 0xff, lhs.Extra.Uint64())

	// depth 2's executing address should now be 0xbbbb (args[1] for CALL).
	assert.Equal(t, prog.Var(call.Args[1]).Value.Hex(), prog.AddressMap[2])
}

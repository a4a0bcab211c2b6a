package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vandalgo/vandal/evmtypes"
	"github.com/vandalgo/vandal/tac"
	"github.com/vandalgo/vandal/trace"
)

func lift(t *testing.T, optrace string) *tac.Program {
	t.Helper()
	ops, err := trace.Decode(optrace)
	require.NoError(t, err)
	prog, err := tac.Lift(ops, "0xroot")
	require.NoError(t, err)
	return prog
}

func TestRequiredOpsUnion(t *testing.T) {
	got := RequiredOps(
		[]evmtypes.OpCode{evmtypes.SLOAD, evmtypes.SSTORE},
		[]evmtypes.OpCode{evmtypes.SSTORE, evmtypes.JUMPI},
	)
	assert.ElementsMatch(t, []evmtypes.OpCode{evmtypes.SLOAD, evmtypes.SSTORE, evmtypes.JUMPI}, got)
}

func TestLoadViewsGroupsByOpcodeAndSkipsUnrequested(t *testing.T) {
	prog := lift(t, "0,0,1,PUSH1,_,_,0x5\n2,0,1,SLOAD,_,_,0x7\n4,0,1,PUSH1,_,_,0x9\n6,0,1,SLOAD,_,_,0xb")

	views, graph, err := LoadViews(prog, []evmtypes.OpCode{evmtypes.SLOAD})
	require.NoError(t, err)
	require.NotNil(t, graph)

	sloadView, ok := views["SLOAD"]
	require.True(t, ok)
	assert.Len(t, sloadView.Ops, 2)
	assert.Len(t, sloadView.GetWorkingSet(), 2)

	_, hasPush := views["PUSH1"]
	assert.False(t, hasPush, "unrequested opcodes must not get a View")
}

func TestLoadViewsPopulatesAddressFromCallFrame(t *testing.T) {
	// depth 1: CALL into a new address; depth 2: SLOAD executing in that
	// callee's context, so its View op must carry the callee's address.
	// CALL's 7 args are popped top-first as [gas, address, value, in_offset,
	// in_size, out_offset, out_size] (confirmed in tac.TestLiftCallSuccessAndExtra),
	// so they must be pushed in the reverse order: out_size first, gas last.
	trc := "0,0,1,PUSH1,_,_,0x0\n" + // out_size
		"2,0,1,PUSH1,_,_,0x0\n" + // out_offset
		"4,0,1,PUSH1,_,_,0x0\n" + // in_size
		"6,0,1,PUSH1,_,_,0x0\n" + // in_offset
		"8,0,1,PUSH1,_,_,0x0\n" + // value
		"10,0,1,PUSH1,_,_,0xcafe\n" + // address
		"12,0,1,PUSH1,_,_,0x1\n" + // gas
		"14,0,1,CALL,_,_,0x1\n" +
		"0,1,2,PUSH1,_,_,0x3\n" +
		"2,1,2,SLOAD,_,_,0x9"

	prog := lift(t, trc)
	views, _, err := LoadViews(prog, []evmtypes.OpCode{evmtypes.SLOAD})
	require.NoError(t, err)

	sloadView := views["SLOAD"]
	require.Len(t, sloadView.Ops, 1)
	assert.Equal(t, "0xcafe", sloadView.Ops[0].Address)
}

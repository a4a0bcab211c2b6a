package vardag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vandalgo/vandal/tac"
	"github.com/vandalgo/vandal/trace"
)

func TestAncestorsDescendantsOfFoldedAdd(t *testing.T) {
	ops, err := trace.Decode("0,0,1,PUSH1,_,_,0x3\n2,0,1,PUSH1,_,_,0x4\n4,0,1,ADD,_,_,0x7")
	require.NoError(t, err)
	prog, err := tac.Lift(ops, "0xaaaa")
	require.NoError(t, err)

	g, err := Build(prog)
	require.NoError(t, err)

	add := prog.Blocks[0].Ops[2]
	lhs := *add.Lhs

	ancestors, err := g.Ancestors(lhs)
	require.NoError(t, err)
	assert.True(t, ancestors.Contains(add.Args[0]))
	assert.True(t, ancestors.Contains(add.Args[1]))

	for _, arg := range add.Args {
		descendants, err := g.Descendants(arg)
		require.NoError(t, err)
		assert.True(t, descendants.Contains(lhs))

		isDesc, err := g.IsDescendant(arg, lhs)
		require.NoError(t, err)
		assert.True(t, isDesc)

		isAnc, err := g.IsAncestor(lhs, arg)
		require.NoError(t, err)
		assert.True(t, isAnc)
	}
}

func TestValuePredicates(t *testing.T) {
	ops, err := trace.Decode("0,0,1,PUSH1,_,_,0x3\n2,0,1,PUSH1,_,_,0x4")
	require.NoError(t, err)
	prog, err := tac.Lift(ops, "0xaaaa")
	require.NoError(t, err)

	v3 := prog.Var(*prog.Blocks[0].Ops[0].Lhs)
	v4 := prog.Var(*prog.Blocks[0].Ops[1].Lhs)

	assert.True(t, ValueLt(v3, v4))
	assert.True(t, ValueLe(v3, v4))
	assert.True(t, ValueNe(v3, v4))
	assert.False(t, ValueEq(v3, v4))
	assert.True(t, ValueGt(v4, v3))
	assert.True(t, ValueGe(v4, v3))
}

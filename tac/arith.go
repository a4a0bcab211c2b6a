package tac

import (
	"github.com/holiman/uint256"

	"github.com/vandalgo/vandal/evmtypes"
)

// foldArithmetic computes the constant-folded result of an arithmetic opcode
// given concrete operand values (stack order, top-of-stack first). op must
// satisfy op.IsArithmetic(); args must hold exactly op.Pop() values.
// SPEC_FULL.md §C.1 fixes the foldable set: ADD, SUB, MUL, DIV, SDIV, MOD,
// SMOD, EXP, AND, OR, XOR, NOT, LT, GT, SLT, SGT, EQ, ISZERO, SHL, SHR, SAR,
// BYTE.
func foldArithmetic(op evmtypes.OpCode, args []*uint256.Int) *uint256.Int {
	z := new(uint256.Int)
	switch op {
	case evmtypes.ADD:
		return z.Add(args[0], args[1])
	case evmtypes.SUB:
		return z.Sub(args[0], args[1])
	case evmtypes.MUL:
		return z.Mul(args[0], args[1])
	case evmtypes.DIV:
		return z.Div(args[0], args[1])
	case evmtypes.SDIV:
		return z.SDiv(args[0], args[1])
	case evmtypes.MOD:
		return z.Mod(args[0], args[1])
	case evmtypes.SMOD:
		return z.SMod(args[0], args[1])
	case evmtypes.EXP:
		return z.Exp(args[0], args[1])
	case evmtypes.AND:
		return z.And(args[0], args[1])
	case evmtypes.OR:
		return z.Or(args[0], args[1])
	case evmtypes.XOR:
		return z.Xor(args[0], args[1])
	case evmtypes.NOT:
		return z.Not(args[0])
	case evmtypes.LT:
		return boolToUint256(args[0].Lt(args[1]))
	case evmtypes.GT:
		return boolToUint256(args[0].Gt(args[1]))
	case evmtypes.SLT:
		return boolToUint256(args[0].Slt(args[1]))
	case evmtypes.SGT:
		return boolToUint256(args[0].Sgt(args[1]))
	case evmtypes.EQ:
		return boolToUint256(args[0].Eq(args[1]))
	case evmtypes.ISZERO:
		return boolToUint256(args[0].IsZero())
	case evmtypes.SHL:
		return shiftLeft(z, args[0], args[1])
	case evmtypes.SHR:
		return shiftRight(z, args[0], args[1], false)
	case evmtypes.SAR:
		return shiftRight(z, args[0], args[1], true)
	case evmtypes.BYTE:
		return byteAt(z, args[0], args[1])
	default:
		return nil
	}
}

func boolToUint256(b bool) *uint256.Int {
	if b {
		return uint256.NewInt(1)
	}
	return uint256.NewInt(0)
}

// shiftLeft/shiftRight take EVM's (shift, value) argument order: args[0] is
// the shift amount, args[1] is the value being shifted.
func shiftLeft(z *uint256.Int, shift, value *uint256.Int) *uint256.Int {
	if !shift.IsUint64() || shift.Uint64() >= 256 {
		return z.Clear()
	}
	return z.Lsh(value, uint(shift.Uint64()))
}

var signBit = new(uint256.Int).Lsh(uint256.NewInt(1), 255)

func shiftRight(z *uint256.Int, shift, value *uint256.Int, arithmetic bool) *uint256.Int {
	if !shift.IsUint64() || shift.Uint64() >= 256 {
		if arithmetic && value.Cmp(signBit) >= 0 {
			return z.SetAllOne()
		}
		return z.Clear()
	}
	if arithmetic {
		return z.SRsh(value, uint(shift.Uint64()))
	}
	return z.Rsh(value, uint(shift.Uint64()))
}

// byteAt implements BYTE(i, x): the i-th byte of x counting from the most
// significant byte, 0-indexed; 0 if i >= 32. args[0] is i, args[1] is x.
func byteAt(z *uint256.Int, index, value *uint256.Int) *uint256.Int {
	if !index.IsUint64() || index.Uint64() >= 32 {
		return z.Clear()
	}
	i := index.Uint64()
	var buf [32]byte
	value.WriteToArray32(&buf)
	return z.SetUint64(uint64(buf[i]))
}

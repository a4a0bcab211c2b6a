package vardag

import "github.com/vandalgo/vandal/tac"

// Value predicates over two variables' concrete (or folded) values (§4.4).
// All return false if either operand carries no value.

func ValueEq(a, b *tac.Variable) bool { return bothValued(a, b) && a.Value.Eq(b.Value) }
func ValueNe(a, b *tac.Variable) bool { return bothValued(a, b) && !a.Value.Eq(b.Value) }
func ValueLt(a, b *tac.Variable) bool { return bothValued(a, b) && a.Value.Lt(b.Value) }
func ValueGt(a, b *tac.Variable) bool { return bothValued(a, b) && a.Value.Gt(b.Value) }
func ValueLe(a, b *tac.Variable) bool { return bothValued(a, b) && !a.Value.Gt(b.Value) }
func ValueGe(a, b *tac.Variable) bool { return bothValued(a, b) && !a.Value.Lt(b.Value) }

func bothValued(a, b *tac.Variable) bool { return a.HasValue() && b.HasValue() }

package vm

import (
	"evilcandy/internal/bytecode"
	"evilcandy/internal/ecerr"
	"evilcandy/internal/object"
)

// opSymbols names each arithmetic/bitwise opcode for TypeError
// messages, matching the source's "unsupported operand type(s) for
// %s" phrasing.
var opSymbols = map[bytecode.Op]string{
	bytecode.OpAdd: "+", bytecode.OpSub: "-", bytecode.OpMul: "*", bytecode.OpDiv: "/",
	bytecode.OpMod: "%", bytecode.OpPow: "**", bytecode.OpBitAnd: "&", bytecode.OpBitOr: "|",
	bytecode.OpBitXor: "^", bytecode.OpShl: "<<", bytecode.OpShr: ">>",
}

// binaryOp dispatches one arithmetic/bitwise opcode through a's
// Opm table, with one special case: '+' on a sequence type (no Opm,
// a Sqm.Cat instead) means concatenation, per §4.1's "'+' on a
// sequence type is concatenation, not the numeric operator".
func binaryOp(op bytecode.Op, a, b object.Object) (object.Object, error) {
	if a == nil {
		return nil, ecerr.New(ecerr.TypeError, "unsupported operand type(s) for %s: 'null' and '%s'", opSymbols[op], typeName(b))
	}
	td := a.Type()
	if td.Opm != nil {
		fn := opmSlot(td.Opm, op)
		if fn != nil {
			return fn(a, b)
		}
	}
	if op == bytecode.OpAdd && td.Sqm != nil && td.Sqm.Cat != nil {
		return td.Sqm.Cat(a, b)
	}
	return nil, ecerr.New(ecerr.TypeError, "unsupported operand type(s) for %s: '%s' and '%s'", opSymbols[op], td.Name, typeName(b))
}

func typeName(o object.Object) string {
	if o == nil {
		return "null"
	}
	return o.Type().Name
}

func opmSlot(t *object.OpTable, op bytecode.Op) func(a, b object.Object) (object.Object, error) {
	switch op {
	case bytecode.OpAdd:
		return t.Add
	case bytecode.OpSub:
		return t.Sub
	case bytecode.OpMul:
		return t.Mul
	case bytecode.OpDiv:
		return t.Div
	case bytecode.OpMod:
		return t.Mod
	case bytecode.OpPow:
		return t.Pow
	case bytecode.OpBitAnd:
		return t.And
	case bytecode.OpBitOr:
		return t.Or
	case bytecode.OpBitXor:
		return t.Xor
	case bytecode.OpShl:
		return t.Shl
	case bytecode.OpShr:
		return t.Shr
	default:
		return nil
	}
}

// unaryOp dispatches NEG/ABS/BITNOT through v's Opm table via the
// selector, which picks the matching OpTable field (Neg/Abs/Not).
func unaryOp(v object.Object, selector func(*object.OpTable) func(object.Object) (object.Object, error)) (object.Object, error) {
	if v == nil || v.Type().Opm == nil {
		return nil, ecerr.New(ecerr.TypeError, "unsupported operand type for unary operator: '%s'", typeName(v))
	}
	fn := selector(v.Type().Opm)
	if fn == nil {
		return nil, ecerr.New(ecerr.TypeError, "unsupported operand type for unary operator: '%s'", typeName(v))
	}
	return fn(v)
}

// compare implements CMP: EQ/NEQ fall back to reference identity when
// the operands aren't ordered-comparable (e.g. two functions), so
// that `==`/`!=` are always defined (§4.1); LT/LE/GT/GE require
// object.Cmp to succeed.
func compare(op bytecode.CmpOp, a, b object.Object) (bool, error) {
	if op == bytecode.CmpEQ || op == bytecode.CmpNEQ {
		eq := a == b
		if !eq && a != nil && b != nil && a.Type() == b.Type() {
			if c, ok := object.Cmp(a, b); ok {
				eq = c == 0
			}
		}
		if op == bytecode.CmpNEQ {
			return !eq, nil
		}
		return eq, nil
	}
	c, ok := object.Cmp(a, b)
	if !ok {
		return false, ecerr.New(ecerr.TypeError, "'%s' and '%s' are not orderable", typeName(a), typeName(b))
	}
	switch op {
	case bytecode.CmpLT:
		return c < 0, nil
	case bytecode.CmpLE:
		return c <= 0, nil
	case bytecode.CmpGT:
		return c > 0, nil
	case bytecode.CmpGE:
		return c >= 0, nil
	default:
		return false, ecerr.New(ecerr.SystemError, "unsupported comparison %s", op)
	}
}

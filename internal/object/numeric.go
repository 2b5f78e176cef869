package object

import (
	"math"

	"evilcandy/internal/ecerr"
)

// numeric tower rank: int < float < complex
func rank(o Object) int {
	switch o.(type) {
	case *IntObj:
		return 0
	case *FloatObj:
		return 1
	case *ComplexObj:
		return 2
	default:
		return -1
	}
}

func asComplex(o Object) complex128 {
	switch v := o.(type) {
	case *IntObj:
		return complex(float64(v.V), 0)
	case *FloatObj:
		return complex(v.V, 0)
	case *ComplexObj:
		return v.V
	}
	return 0
}

func asFloat(o Object) float64 {
	switch v := o.(type) {
	case *IntObj:
		return float64(v.V)
	case *FloatObj:
		return v.V
	}
	return 0
}

func asInt(o Object) int64 {
	switch v := o.(type) {
	case *IntObj:
		return v.V
	case *FloatObj:
		return int64(v.V)
	}
	return 0
}

// widen returns the tower ranks of a and b (-1 for a non-numeric
// operand). Callers compute in the higher of the two ranks, so between
// int and float the int is widened, and between float/int and complex
// the non-complex side is widened — the tower described in §4.1.
func widen(a, b Object) (ra, rb int) {
	ra, rb = rank(a), rank(b)
	if ra < 0 || rb < 0 {
		return ra, rb
	}
	return ra, rb
}

func typeMismatch(op string, a, b Object) error {
	return ecerr.New(ecerr.TypeError, "unsupported operand type(s) for %s: '%s' and '%s'", op, a.Type().Name, b.Type().Name)
}

func binOp(op string, a, b Object,
	iFn func(x, y int64) int64,
	fFn func(x, y float64) float64,
	cFn func(x, y complex128) complex128) (Object, error) {

	ra, rb := widen(a, b)
	if ra < 0 || rb < 0 {
		return nil, typeMismatch(op, a, b)
	}
	top := ra
	if rb > top {
		top = rb
	}
	switch top {
	case 0:
		if iFn == nil {
			break
		}
		return NewInt(iFn(asInt(a), asInt(b))), nil
	case 1:
		if fFn == nil {
			break
		}
		return NewFloat(fFn(asFloat(a), asFloat(b))), nil
	case 2:
		if cFn == nil {
			break
		}
		return NewComplex(cFn(asComplex(a), asComplex(b))), nil
	}
	return nil, typeMismatch(op, a, b)
}

func numAdd(a, b Object) (Object, error) {
	return binOp("+", a, b,
		func(x, y int64) int64 { return x + y },
		func(x, y float64) float64 { return x + y },
		func(x, y complex128) complex128 { return x + y })
}

func numSub(a, b Object) (Object, error) {
	return binOp("-", a, b,
		func(x, y int64) int64 { return x - y },
		func(x, y float64) float64 { return x - y },
		func(x, y complex128) complex128 { return x - y })
}

func numMul(a, b Object) (Object, error) {
	return binOp("*", a, b,
		func(x, y int64) int64 { return x * y },
		func(x, y float64) float64 { return x * y },
		func(x, y complex128) complex128 { return x * y })
}

// numDiv: integer division by zero returns 0 rather than raising —
// documented legacy behavior preserved per §9's open-question
// decision (see SPEC_FULL.md §14). Complex division by zero raises
// NumberError.
func numDiv(a, b Object) (Object, error) {
	ra, rb := widen(a, b)
	if ra < 0 || rb < 0 {
		return nil, typeMismatch("/", a, b)
	}
	top := ra
	if rb > top {
		top = rb
	}
	switch top {
	case 0:
		y := asInt(b)
		if y == 0 {
			return NewInt(0), nil
		}
		return NewInt(asInt(a) / y), nil
	case 1:
		return NewFloat(asFloat(a) / asFloat(b)), nil
	case 2:
		if asComplex(b) == 0 {
			return nil, ecerr.New(ecerr.NumberError, "division by zero")
		}
		return NewComplex(asComplex(a) / asComplex(b)), nil
	}
	return nil, typeMismatch("/", a, b)
}

func numMod(a, b Object) (Object, error) {
	ra, rb := widen(a, b)
	if ra < 0 || rb < 0 {
		return nil, typeMismatch("%", a, b)
	}
	top := ra
	if rb > top {
		top = rb
	}
	switch top {
	case 0:
		y := asInt(b)
		if y == 0 {
			return NewInt(0), nil
		}
		return NewInt(asInt(a) % y), nil
	case 1:
		return NewFloat(math.Mod(asFloat(a), asFloat(b))), nil
	}
	return nil, typeMismatch("%", a, b)
}

func numPow(a, b Object) (Object, error) {
	ra, rb := widen(a, b)
	if ra < 0 || rb < 0 {
		return nil, typeMismatch("**", a, b)
	}
	top := ra
	if rb > top {
		top = rb
	}
	switch top {
	case 0:
		return NewInt(int64(math.Pow(float64(asInt(a)), float64(asInt(b))))), nil
	case 1:
		return NewFloat(math.Pow(asFloat(a), asFloat(b))), nil
	}
	return nil, typeMismatch("**", a, b)
}

func numNeg(a Object) (Object, error) {
	switch v := a.(type) {
	case *IntObj:
		return NewInt(-v.V), nil
	case *FloatObj:
		return NewFloat(-v.V), nil
	case *ComplexObj:
		return NewComplex(-v.V), nil
	}
	return nil, ecerr.New(ecerr.TypeError, "bad operand type for unary neg: '%s'", a.Type().Name)
}

func numAbs(a Object) (Object, error) {
	switch v := a.(type) {
	case *IntObj:
		if v.V < 0 {
			return NewInt(-v.V), nil
		}
		return NewInt(v.V), nil
	case *FloatObj:
		return NewFloat(math.Abs(v.V)), nil
	case *ComplexObj:
		return NewFloat(math.Hypot(real(v.V), imag(v.V))), nil
	}
	return nil, ecerr.New(ecerr.TypeError, "bad operand type for abs: '%s'", a.Type().Name)
}

// promote implements ordered comparison across the int/float tower.
func promote(a, b Object) (int, bool) {
	ra, rb := rank(a), rank(b)
	if ra < 0 || rb < 0 || ra == 2 || rb == 2 {
		return 0, false // complex is unordered
	}
	x, y := asFloat(a), asFloat(b)
	switch {
	case x < y:
		return -1, true
	case x > y:
		return 1, true
	default:
		return 0, true
	}
}

func intAnd(a, b Object) (Object, error) {
	ai, bi, ok := bothInt(a, b, "&")
	if !ok {
		return nil, typeMismatch("&", a, b)
	}
	return NewInt(ai & bi), nil
}

func intOr(a, b Object) (Object, error) {
	ai, bi, ok := bothInt(a, b, "|")
	if !ok {
		return nil, typeMismatch("|", a, b)
	}
	return NewInt(ai | bi), nil
}

func intXor(a, b Object) (Object, error) {
	ai, bi, ok := bothInt(a, b, "^")
	if !ok {
		return nil, typeMismatch("^", a, b)
	}
	return NewInt(ai ^ bi), nil
}

// intShl and intShr: shifts outside [1,63] yield 0, matching the
// source's int_lshift/int_rshift. Right shift uses unsigned (zero-
// fill) semantics — preserved per §9's open-question decision.
func intShl(a, b Object) (Object, error) {
	ai, bi, ok := bothInt(a, b, "<<")
	if !ok {
		return nil, typeMismatch("<<", a, b)
	}
	if bi >= 64 || bi <= 0 {
		return NewInt(0), nil
	}
	return NewInt(ai << uint(bi)), nil
}

func intShr(a, b Object) (Object, error) {
	ai, bi, ok := bothInt(a, b, ">>")
	if !ok {
		return nil, typeMismatch(">>", a, b)
	}
	if bi >= 64 || bi <= 0 {
		return NewInt(0), nil
	}
	return NewInt(int64(uint64(ai) >> uint(bi))), nil
}

func intNot(a Object) (Object, error) {
	v, ok := a.(*IntObj)
	if !ok {
		return nil, ecerr.New(ecerr.TypeError, "bad operand type for ~: '%s'", a.Type().Name)
	}
	return NewInt(^v.V), nil
}

func bothInt(a, b Object, op string) (int64, int64, bool) {
	ai, aok := a.(*IntObj)
	bi, bok := asIntLike(b)
	if !aok || !bok {
		return 0, 0, false
	}
	return ai.V, bi, true
}

func asIntLike(o Object) (int64, bool) {
	switch v := o.(type) {
	case *IntObj:
		return v.V, true
	case *FloatObj:
		return int64(v.V), true
	}
	return 0, false
}

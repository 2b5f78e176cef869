package object

import "strconv"

type IntObj struct {
	Base
	V int64
}

var IntType *TypeDesc

func NewInt(v int64) *IntObj {
	if cached := smallInts.lookup(v); cached != nil {
		return cached
	}
	return &IntObj{V: v}
}

// True and False are the int(1)/int(0) singletons the lexer's `true`
// and `false` keywords compile to — the source has no separate
// boolean type.
var (
	True  = NewInt(1)
	False = NewInt(0)
)

type smallIntCache struct {
	lo, hi int64
	vals   []*IntObj
}

var smallInts = newSmallIntCache(-1, 256)

func newSmallIntCache(lo, hi int64) *smallIntCache {
	c := &smallIntCache{lo: lo, hi: hi}
	c.vals = make([]*IntObj, hi-lo+1)
	for i := range c.vals {
		o := &IntObj{V: lo + int64(i)}
		o.MakeImmortal()
		c.vals[i] = o
	}
	return c
}

func (c *smallIntCache) lookup(v int64) *IntObj {
	if v < c.lo || v > c.hi {
		return nil
	}
	return c.vals[v-c.lo]
}

func (i *IntObj) Type() *TypeDesc { return IntType }

func init() {
	IntType = &TypeDesc{
		Name: "int",
		Str:  func(o Object) string { return strconv.FormatInt(o.(*IntObj).V, 10) },
		Cmpz: func(o Object) bool { return o.(*IntObj).V != 0 },
		Cmp: func(a, b Object) (int, bool) {
			x, bok := promote(a, b)
			return x, bok
		},
		Opm: &OpTable{
			Add: numAdd, Sub: numSub, Mul: numMul, Div: numDiv, Mod: numMod, Pow: numPow,
			And: intAnd, Or: intOr, Xor: intXor, Shl: intShl, Shr: intShr,
			Neg: numNeg, Abs: numAbs, Not: intNot,
		},
	}
}

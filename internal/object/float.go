package object

import "strconv"

type FloatObj struct {
	Base
	V float64
}

var FloatType *TypeDesc

func NewFloat(v float64) *FloatObj {
	return &FloatObj{V: v}
}

func (f *FloatObj) Type() *TypeDesc { return FloatType }

func init() {
	FloatType = &TypeDesc{
		Name: "float",
		Str: func(o Object) string {
			return strconv.FormatFloat(o.(*FloatObj).V, 'g', -1, 64)
		},
		Cmpz: func(o Object) bool { return o.(*FloatObj).V != 0 },
		Cmp: func(a, b Object) (int, bool) {
			return promote(a, b)
		},
		Opm: &OpTable{
			Add: numAdd, Sub: numSub, Mul: numMul, Div: numDiv, Mod: numMod, Pow: numPow,
			Neg: numNeg, Abs: numAbs,
		},
	}
}

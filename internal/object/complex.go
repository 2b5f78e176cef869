package object

import "strconv"

type ComplexObj struct {
	Base
	V complex128
}

var ComplexType *TypeDesc

func NewComplex(v complex128) *ComplexObj {
	return &ComplexObj{V: v}
}

func (c *ComplexObj) Type() *TypeDesc { return ComplexType }

func init() {
	ComplexType = &TypeDesc{
		Name: "complex",
		Str: func(o Object) string {
			v := o.(*ComplexObj).V
			re := strconv.FormatFloat(real(v), 'g', -1, 64)
			im := strconv.FormatFloat(imag(v), 'g', -1, 64)
			if imag(v) >= 0 {
				return re + "+" + im + "i"
			}
			return re + im + "i"
		},
		Cmpz: func(o Object) bool { return o.(*ComplexObj).V != 0 },
		Opm: &OpTable{
			Add: numAdd, Sub: numSub, Mul: numMul, Div: numDiv,
			Neg: numNeg, Abs: numAbs,
		},
	}
}

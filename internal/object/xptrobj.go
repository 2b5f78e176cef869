package object

import (
	"fmt"

	"evilcandy/internal/bytecode"
)

// XptrObj is the object-package wrapper around a raw code object, so
// an Xptr can be handled as an ordinary Object without the bytecode
// package ever needing to import object. Rodata pools do not hold
// XptrObj: they hold the raw *bytecode.Xptr, which MAKE_FUNC reads
// directly to build a closure.
type XptrObj struct {
	Base
	X *bytecode.Xptr
}

var XptrType *TypeDesc

func NewXptrObj(x *bytecode.Xptr) *XptrObj { return &XptrObj{X: x} }

func (x *XptrObj) Type() *TypeDesc { return XptrType }

func init() {
	XptrType = &TypeDesc{
		Name: "xptr",
		Str: func(o Object) string {
			return fmt.Sprintf("<code %s>", o.(*XptrObj).X.Name)
		},
		Cmpz: func(Object) bool { return true },
	}
}

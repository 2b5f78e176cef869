package object

// EmptyObj is the null singleton (§3: "a single null value, immortal,
// falsy, equal only to itself").
type EmptyObj struct {
	Base
}

var EmptyType *TypeDesc

// Null is the one and only null value.
var Null *EmptyObj

func (e *EmptyObj) Type() *TypeDesc { return EmptyType }

func init() {
	EmptyType = &TypeDesc{
		Name: "empty",
		Str:  func(Object) string { return "null" },
		Cmpz: func(Object) bool { return false },
		Cmp: func(a, b Object) (int, bool) {
			_, aok := a.(*EmptyObj)
			_, bok := b.(*EmptyObj)
			if aok && bok {
				return 0, true
			}
			return 0, false
		},
	}
	Null = &EmptyObj{}
	Null.MakeImmortal()
}

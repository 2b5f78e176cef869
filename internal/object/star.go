package object

// StarObj wraps an iterable at a call site to mark it for
// argument-list expansion (`f(*args)`, §4.5). It is never visible to
// user code as a value — the VM's call marshalling unwraps it before
// the callee ever sees an argument list, and GetItem/Len are not
// defined for it.
type StarObj struct {
	Base
	Value Object
}

var StarType *TypeDesc

func NewStar(v Object) *StarObj {
	Retain(v)
	return &StarObj{Value: v}
}

func (s *StarObj) Type() *TypeDesc { return StarType }

// Expand returns the element list a *expr call argument contributes,
// dispatching through the sequence protocol.
func (s *StarObj) Expand() ([]Object, error) {
	n, err := Len(s.Value)
	if err != nil {
		return nil, err
	}
	out := make([]Object, n)
	for i := 0; i < n; i++ {
		v, err := GetItem(s.Value, NewInt(int64(i)))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func starReset(o Object) {
	s := o.(*StarObj)
	Release(s.Value)
	s.Value = nil
}

func init() {
	StarType = &TypeDesc{
		Name:  "star",
		Str:   func(o Object) string { return "*" + Str(o.(*StarObj).Value) },
		Cmpz:  func(Object) bool { return true },
		Reset: starReset,
	}
}

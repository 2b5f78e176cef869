package object

import "fmt"

// MethodObj binds a receiver to a function, produced when attribute
// lookup on an instance resolves to a callable (§4.4 GETATTR, when the
// attribute is a Cbm entry or a user-defined method).
type MethodObj struct {
	Base
	Recv Object
	Fn   *FunctionObj
}

var MethodType *TypeDesc

func NewBoundMethod(recv Object, fn *FunctionObj) *MethodObj {
	Retain(recv)
	Retain(fn)
	return &MethodObj{Recv: recv, Fn: fn}
}

func (m *MethodObj) Type() *TypeDesc { return MethodType }

// Invoke calls the underlying function with Recv prepended, deferring
// to FunctionObj.Invoke for the native-vs-user-defined dispatch.
func (m *MethodObj) Invoke(args []Object, kwargs *DictObj) (Object, error) {
	full := make([]Object, 0, len(args)+1)
	full = append(full, m.Recv)
	full = append(full, args...)
	return m.Fn.Invoke(full, kwargs)
}

func methodReset(o Object) {
	m := o.(*MethodObj)
	Release(m.Recv)
	Release(m.Fn)
	m.Recv = nil
	m.Fn = nil
}

func init() {
	MethodType = &TypeDesc{
		Name: "method",
		Str: func(o Object) string {
			m := o.(*MethodObj)
			return fmt.Sprintf("<bound method %s of %s>", m.Fn.Name, Str(m.Recv))
		},
		Cmpz:  func(Object) bool { return true },
		Reset: methodReset,
	}
}

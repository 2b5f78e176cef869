package object

import (
	"fmt"

	"evilcandy/internal/bytecode"
	"evilcandy/internal/ecerr"
)

// FunctionObj is a callable value: either a user-defined closure over
// an Xptr code object, or a native Go-backed builtin. Exactly one of
// Code/Native is set (§3 "function").
type FunctionObj struct {
	Base
	Code   *bytecode.Xptr
	Native func(args []Object, kwargs *DictObj) (Object, error)
	Name   string

	// Clov holds the captured values, in the same order as
	// Code.ClosureNames, for a user-defined closure.
	Clov []Object

	// Defaults mirrors Code.Defaults but with *bytecode.Xptr/int64/etc
	// rodata entries already converted to Objects, so the VM's call
	// marshalling never re-decodes rodata per call.
	Defaults []Object
}

var FunctionType *TypeDesc

// Invoker lets the VM register itself as the executor for
// user-defined (bytecode-backed) functions, so that native
// higher-order builtins such as dict.foreach can invoke a callback
// regardless of whether it happens to be native or user-defined,
// without this package importing the vm package. The VM sets this
// once, at startup.
var Invoker func(fn *FunctionObj, args []Object, kwargs *DictObj) (Object, error)

func NewNativeFunction(name string, fn func(args []Object, kwargs *DictObj) (Object, error)) *FunctionObj {
	return &FunctionObj{Name: name, Native: fn}
}

func NewClosure(code *bytecode.Xptr, clov []Object, defaults []Object) *FunctionObj {
	for _, c := range clov {
		Retain(c)
	}
	for _, d := range defaults {
		if d != nil {
			Retain(d)
		}
	}
	return &FunctionObj{Code: code, Name: code.Name, Clov: clov, Defaults: defaults}
}

func (f *FunctionObj) Type() *TypeDesc { return FunctionType }

// Invoke satisfies the Callable interface used by dict.foreach and
// other higher-order builtins. Native functions run directly; a
// user-defined (bytecode-backed) function is handed to the VM via
// Invoker, which must be set before any such value can be called this
// way.
func (f *FunctionObj) Invoke(args []Object, kwargs *DictObj) (Object, error) {
	if f.Native != nil {
		return f.Native(args, kwargs)
	}
	if Invoker != nil {
		return Invoker(f, args, kwargs)
	}
	return nil, ecerr.New(ecerr.RuntimeError, "cannot invoke user-defined function %q outside the VM", f.Name)
}

func functionReset(o Object) {
	f := o.(*FunctionObj)
	for _, c := range f.Clov {
		Release(c)
	}
	for _, d := range f.Defaults {
		if d != nil {
			Release(d)
		}
	}
	f.Clov = nil
	f.Defaults = nil
}

func init() {
	FunctionType = &TypeDesc{
		Name: "function",
		Str: func(o Object) string {
			f := o.(*FunctionObj)
			name := f.Name
			if name == "" {
				name = "<anonymous>"
			}
			return fmt.Sprintf("<function %s>", name)
		},
		Cmpz:  func(Object) bool { return true },
		Reset: functionReset,
	}
}

package vm

import (
	"evilcandy/internal/bytecode"
	"evilcandy/internal/ecerr"
	"evilcandy/internal/object"
)

// doCall implements CALL_FUNC: pop argc values (and, for
// FuncArgWithParent, one more as the receiver — never emitted by the
// current grammar, since `obj.method(...)` pushes an already-bound
// MethodObj as the callee instead, but handled for ISA completeness),
// expand any *expr spread markers, and invoke.
func (vm *VM) doCall(fr *Frame, instr bytecode.Instruction) error {
	argc := int(instr.Arg2)
	raw := vm.popN(argc)
	var parent object.Object
	if bytecode.FuncArg(instr.Arg1) == bytecode.FuncArgWithParent {
		parent = vm.pop()
	}
	callee := vm.pop()

	args, err := expandStars(raw)
	if err != nil {
		return err
	}
	if parent != nil {
		args = append([]object.Object{parent}, args...)
	}

	result, err := vm.callValue(callee, args, nil)
	if err != nil {
		return err
	}
	vm.pushMove(result)
	return nil
}

// expandStars unwraps any *object.StarObj produced by MAKE_STAR
// (f(*args), §4.5 rule 3) into its element list. Expand()'s elements
// are borrowed from the spread iterable (its own GetItem does not
// duplicate ownership), so each one needs an explicit Retain here —
// it is about to be adopted into this call's own argument list, a
// second independent owner alongside the original iterable.
func expandStars(args []object.Object) ([]object.Object, error) {
	hasStar := false
	for _, a := range args {
		if _, ok := a.(*object.StarObj); ok {
			hasStar = true
			break
		}
	}
	if !hasStar {
		return args, nil
	}
	out := make([]object.Object, 0, len(args))
	for _, a := range args {
		if s, ok := a.(*object.StarObj); ok {
			expanded, err := s.Expand()
			if err != nil {
				return nil, err
			}
			for _, v := range expanded {
				out = append(out, object.Retain(v))
			}
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// callValue invokes any Callable value: a native or user-defined
// FunctionObj, or a MethodObj bound to a receiver.
func (vm *VM) callValue(callee object.Object, args []object.Object, kwargs *object.DictObj) (object.Object, error) {
	c, ok := callee.(object.Callable)
	if !ok {
		return nil, ecerr.New(ecerr.TypeError, "'%s' object is not callable", typeName(callee))
	}
	return c.Invoke(args, kwargs)
}

// invokeClosure runs a user-defined (bytecode-backed) function. It is
// installed as object.Invoker at VM construction so native code
// (dict.foreach, MethodObj.Invoke, the import builtin's mode "x") can
// call into user-defined functions without this package's callers
// needing to know whether a FunctionObj is native.
func (vm *VM) invokeClosure(fn *object.FunctionObj, args []object.Object, kwargs *object.DictObj) (object.Object, error) {
	ap, err := marshalArgs(fn.Code, fn.Defaults, args, kwargs)
	if err != nil {
		return nil, err
	}
	fr := &Frame{Code: fn.Code, AP: ap, FP: make([]object.Object, fn.Code.NumLocals), CP: fn.Clov}
	return vm.runFrame(fr)
}

// marshalArgs implements §4.5's argument-marshalling rule: positional
// arguments fill AP left to right, missing trailing positions take
// their compiled default, a trailing *args parameter collects the
// remainder into an array, and a trailing **kwargs parameter receives
// the call's keyword dict (always empty under the current grammar,
// which has no keyword-call syntax — see DESIGN.md).
//
// Values handed to AP fall into two ownership cases: args[i] already
// carries a single reference moved off the VM's stack (no retain
// needed, frame teardown balances it), while a compiled default, a
// freshly built variadic array, or a freshly built empty kwargs dict
// starts at refcount 0 and must be retained before it can become an
// AP slot's owned reference — the same rule vm.push applies when
// adopting a value onto the stack.
func marshalArgs(code *bytecode.Xptr, defaults []object.Object, args []object.Object, kwargs *object.DictObj) ([]object.Object, error) {
	trailingSpecial := code.Variadic || code.KwIndex >= 0
	plainCount := code.NumParams
	if trailingSpecial {
		plainCount--
	}
	required := code.OptIndex
	if required > plainCount {
		required = plainCount
	}
	if len(args) < required {
		return nil, ecerr.New(ecerr.ArgumentError, "%s() missing required argument", displayName(code.Name))
	}
	if !trailingSpecial && len(args) > plainCount {
		return nil, ecerr.New(ecerr.ArgumentError, "%s() takes at most %d argument(s) (%d given)", displayName(code.Name), plainCount, len(args))
	}

	ap := make([]object.Object, code.NumParams)
	n := len(args)
	if n > plainCount {
		n = plainCount
	}
	for i := 0; i < n; i++ {
		ap[i] = args[i]
	}
	for i := n; i < plainCount; i++ {
		if i < len(defaults) && defaults[i] != nil {
			ap[i] = object.Retain(defaults[i])
		} else {
			ap[i] = object.Null
		}
	}

	switch {
	case code.Variadic:
		var extra []object.Object
		if len(args) > plainCount {
			extra = append([]object.Object{}, args[plainCount:]...)
		}
		ap[code.NumParams-1] = object.Retain(object.NewArray(extra))
	case code.KwIndex >= 0:
		kw := object.Object(kwargs)
		if kwargs == nil {
			kw = object.NewDict()
		}
		ap[code.KwIndex] = object.Retain(kw)
	}
	return ap, nil
}

func displayName(name string) string {
	if name == "" {
		return "<anonymous>"
	}
	return name
}

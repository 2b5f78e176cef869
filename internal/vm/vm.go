// Package vm implements EvilCandy's stack machine (spec §4.5): a
// fixed global value stack, a frame per live call, dispatch over the
// bytecode package's instruction set, and the exception-unwind and
// import machinery the instruction set assumes.
//
// The teacher's internal/vm is a sprawling, feature-creep VM (try-
// frame stack, goroutine/channel support, module cache, opcode
// dispatch over a much larger instruction set); this package keeps
// that same broad shape — array value stack, frame slice, a handler
// stack for exceptions, a loader for imports — scaled to EvilCandy's
// actual ~40-opcode ISA and its own refcount discipline.
package vm

import (
	"fmt"

	"evilcandy/internal/bytecode"
	"evilcandy/internal/ecconfig"
	"evilcandy/internal/ecerr"
	"evilcandy/internal/object"
)

// VM owns the global value stack, the global namespace, and the
// currently-live frame chain. One VM runs one program (and every
// module that program imports, each in its own frame but sharing this
// VM's stack; the loader gives each module's top level its own
// globals table, see the globals field).
type VM struct {
	stack []object.Object
	sp    int

	// globals is the currently-running script's top-level namespace;
	// the loader swaps it out for the duration of an imported file's
	// execution so a module's top-level bindings don't leak into the
	// importer (§4.5 "import/load"). builtins is the one shared,
	// read-only namespace every script and module sees underneath its
	// own globals.
	globals  map[string]object.Object
	builtins map[string]object.Object

	frames []*Frame

	loader *loader
}

// New builds a VM with its value stack preallocated to
// ecconfig.StackSize, registers itself as object.Invoker (so native
// higher-order builtins can call user-defined functions), and
// installs the builtin global namespace (print, import, len, ...).
func New() *VM {
	vm := &VM{
		stack:    make([]object.Object, ecconfig.StackSize),
		globals:  map[string]object.Object{},
		builtins: map[string]object.Object{},
	}
	vm.loader = newLoader(vm)
	object.Invoker = vm.invokeClosure
	installBuiltins(vm)
	installStdModules(vm)
	return vm
}

// SetGlobal installs a top-level binding directly, retaining it, for
// embedders that want to seed names before Run.
func (vm *VM) SetGlobal(name string, val object.Object) {
	object.Retain(val)
	old := vm.globals[name]
	vm.globals[name] = val
	object.Release(old)
}

// Global looks up a top-level binding without affecting its refcount.
func (vm *VM) Global(name string) (object.Object, bool) {
	v, ok := vm.globals[name]
	return v, ok
}

// setBuiltin installs a name into the shared, immortal builtin
// namespace every script and module sees underneath its own globals.
// Builtins are native functions, so they are made immortal rather
// than refcounted — matching the small-int/interned-string/null
// convention of never tearing down process-lifetime values.
func (vm *VM) setBuiltin(name string, val object.Object) {
	val.(interface{ MakeImmortal() }).MakeImmortal()
	vm.builtins[name] = val
}

// Run executes a top-level code object (the result of
// assembler.Assemble) to completion and returns whatever its implicit
// trailing RETURN produced.
func (vm *VM) Run(x *bytecode.Xptr) (object.Object, error) {
	return vm.runFrame(newFrame(x))
}

// runFrame pushes fr onto the call chain, enforces the recursion
// ceiling (spec §4.5 "recursion safety"), executes it, and tears it
// down on the way out.
func (vm *VM) runFrame(fr *Frame) (object.Object, error) {
	vm.frames = append(vm.frames, fr)
	if len(vm.frames) > ecconfig.RecursionCeiling {
		vm.frames = vm.frames[:len(vm.frames)-1]
		return nil, ecerr.New(ecerr.RecursionError, "maximum recursion depth exceeded")
	}
	defer func() {
		fr.release()
		vm.frames = vm.frames[:len(vm.frames)-1]
	}()
	v, err := vm.execute(fr)
	if ee, ok := err.(*ecerr.Error); ok {
		ee.WithFrame(fr.Code.Name, fr.Code.FileName, fr.Code.FileLine)
	}
	return v, err
}

// push always retains — every value that lands on the stack this way
// gets its own counted reference, whether freshly constructed or a
// duplicate of an existing binding (LOAD, DUP, arithmetic/comparison
// results, GETATTR/GETITEM/GETSLICE results, MAKE_* container
// results, IMPORT's module value).
func (vm *VM) push(o object.Object) {
	if vm.sp >= len(vm.stack) {
		panic(ecerr.New(ecerr.SystemError, "value stack overflow"))
	}
	vm.stack[vm.sp] = object.Retain(o)
	vm.sp++
}

// pushMove appends o without retaining it: used exactly once, for
// CALL_FUNC's result, which already carries the single un-released
// reference RETURN moved out of the callee frame.
func (vm *VM) pushMove(o object.Object) {
	if vm.sp >= len(vm.stack) {
		panic(ecerr.New(ecerr.SystemError, "value stack overflow"))
	}
	vm.stack[vm.sp] = o
	vm.sp++
}

func (vm *VM) pop() object.Object {
	vm.sp--
	o := vm.stack[vm.sp]
	vm.stack[vm.sp] = nil
	return o
}

func (vm *VM) top() object.Object { return vm.stack[vm.sp-1] }

// constObject converts a rodata entry produced by OpPushConst into an
// Object. The assembler only ever interns int64/float64/string/[]byte/
// nil there (see expr.go's literal-token cases).
func constObject(v interface{}) object.Object {
	switch t := v.(type) {
	case nil:
		return object.Null
	case int64:
		return object.NewInt(t)
	case float64:
		return object.NewFloat(t)
	case string:
		return object.NewString(t)
	case []byte:
		return object.NewBytes(t)
	case bool:
		if t {
			return object.True
		}
		return object.False
	default:
		panic(fmt.Sprintf("vm: unexpected rodata constant type %T", v))
	}
}

func boolObj(b bool) object.Object {
	if b {
		return object.True
	}
	return object.False
}

// execute runs fr's instruction stream until a RETURN produces a
// value or an unhandled exception propagates out.
func (vm *VM) execute(fr *Frame) (object.Object, error) {
	for {
		instr := fr.Code.Instr[fr.IP]
		fr.IP++

		var err error
		switch instr.Code {
		case bytecode.OpNop:
			// no-op

		case bytecode.OpPushConst:
			vm.push(constObject(fr.Code.Rodata[instr.Arg2]))
		case bytecode.OpPushTrue:
			vm.push(object.True)
		case bytecode.OpPushFalse:
			vm.push(object.False)
		case bytecode.OpPushNull:
			vm.push(object.Null)
		case bytecode.OpPop:
			object.Release(vm.pop())
		case bytecode.OpDup:
			vm.push(vm.top())

		case bytecode.OpLoad:
			var v object.Object
			v, err = vm.load(fr, bytecode.PtrKind(instr.Arg1), int(instr.Arg2))
			if err == nil {
				vm.push(v)
			}
		case bytecode.OpAssign:
			v := vm.pop()
			err = vm.assign(fr, bytecode.PtrKind(instr.Arg1), int(instr.Arg2), v)

		case bytecode.OpGetAttr:
			err = vm.doGetAttr(fr, bytecode.AttrKind(instr.Arg1), int(instr.Arg2))
		case bytecode.OpSetAttr:
			err = vm.doSetAttr(fr, bytecode.AttrKind(instr.Arg1), int(instr.Arg2))

		case bytecode.OpGetItem:
			key := vm.pop()
			obj := vm.pop()
			var v object.Object
			v, err = object.GetItem(obj, key)
			if err == nil {
				vm.push(v)
			}
		case bytecode.OpSetItem:
			val := vm.pop()
			key := vm.pop()
			obj := vm.pop()
			err = object.SetItem(obj, key, val)
		case bytecode.OpGetSlice:
			step := vm.pop()
			stop := vm.pop()
			start := vm.pop()
			obj := vm.pop()
			var v object.Object
			v, err = object.GetSlice(obj, start, stop, step)
			if err == nil {
				vm.push(v)
			}
		case bytecode.OpSetSlice:
			val := vm.pop()
			step := vm.pop()
			stop := vm.pop()
			start := vm.pop()
			obj := vm.pop()
			err = object.SetSlice(obj, start, stop, step, val)

		case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv, bytecode.OpMod, bytecode.OpPow,
			bytecode.OpBitAnd, bytecode.OpBitOr, bytecode.OpBitXor, bytecode.OpShl, bytecode.OpShr:
			b := vm.pop()
			a := vm.pop()
			var v object.Object
			v, err = binaryOp(instr.Code, a, b)
			if err == nil {
				vm.push(v)
			}
		case bytecode.OpBitNot:
			v := vm.pop()
			var r object.Object
			r, err = unaryOp(v, func(t *object.OpTable) func(object.Object) (object.Object, error) { return t.Not })
			if err == nil {
				vm.push(r)
			}
		case bytecode.OpNeg:
			v := vm.pop()
			var r object.Object
			r, err = unaryOp(v, func(t *object.OpTable) func(object.Object) (object.Object, error) { return t.Neg })
			if err == nil {
				vm.push(r)
			}
		case bytecode.OpAbs:
			v := vm.pop()
			var r object.Object
			r, err = unaryOp(v, func(t *object.OpTable) func(object.Object) (object.Object, error) { return t.Abs })
			if err == nil {
				vm.push(r)
			}
		case bytecode.OpNot:
			v := vm.pop()
			vm.push(boolObj(!object.Cmpz(v)))

		case bytecode.OpCmp:
			b := vm.pop()
			a := vm.pop()
			var ok bool
			ok, err = compare(bytecode.CmpOp(instr.Arg1), a, b)
			if err == nil {
				vm.push(boolObj(ok))
			}

		case bytecode.OpB:
			fr.IP += int(instr.Arg2)
		case bytecode.OpBIf:
			v := vm.pop()
			cond := object.Cmpz(v)
			branchIfTrue := instr.Arg1 != 0
			if cond == branchIfTrue {
				fr.IP += int(instr.Arg2)
			}

		case bytecode.OpCallFunc:
			err = vm.doCall(fr, instr)
		case bytecode.OpReturn:
			return vm.pop(), nil

		case bytecode.OpMakeFunc:
			vm.push(vm.makeFunc(fr, int(instr.Arg2)))
		case bytecode.OpMakeArray:
			vm.push(object.NewArray(vm.popN(int(instr.Arg2))))
		case bytecode.OpMakeTuple:
			vm.push(object.NewTuple(vm.popN(int(instr.Arg2))))
		case bytecode.OpMakeDict:
			var v object.Object
			v, err = vm.makeDict(int(instr.Arg2))
			if err == nil {
				vm.push(v)
			}
		case bytecode.OpMakeStar:
			v := vm.pop()
			vm.push(object.NewStar(v))

		case bytecode.OpSymtab:
			// declarative bookkeeping only; no stack effect, no
			// consumer yet (see DESIGN.md).

		case bytecode.OpPushHandler:
			fr.handlers = append(fr.handlers, handler{target: fr.IP + int(instr.Arg2), sp: vm.sp})
		case bytecode.OpPopHandler:
			fr.handlers = fr.handlers[:len(fr.handlers)-1]
		case bytecode.OpThrow:
			v := vm.pop()
			err = excFromValue(v)

		case bytecode.OpImport:
			name, _ := fr.Code.Rodata[instr.Arg2].(string)
			var v object.Object
			v, err = vm.loader.load(name)
			if err == nil {
				vm.push(v)
			}

		default:
			err = ecerr.New(ecerr.SystemError, "unimplemented opcode %s", instr.Code)
		}

		if err != nil {
			if !vm.raise(fr, err) {
				return nil, err
			}
		}
	}
}

// popN pops n values off the stack in push order (the stack's top n
// entries reversed), for the MAKE_ARRAY/MAKE_TUPLE family whose
// elements were pushed left-to-right immediately before the
// instruction.
func (vm *VM) popN(n int) []object.Object {
	out := make([]object.Object, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = vm.pop()
	}
	return out
}

func (vm *VM) makeDict(npairs int) (object.Object, error) {
	type pair struct{ key, val object.Object }
	pairs := make([]pair, npairs)
	for i := npairs - 1; i >= 0; i-- {
		val := vm.pop()
		key := vm.pop()
		pairs[i] = pair{key, val}
	}
	d := object.NewDict()
	for _, p := range pairs {
		if err := object.SetItem(d, p.key, p.val); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (vm *VM) makeFunc(fr *Frame, rodataIdx int) object.Object {
	nested := fr.Code.Rodata[rodataIdx].(*bytecode.Xptr)
	clov := vm.popN(len(nested.ClosureNames))
	defaults := make([]object.Object, len(nested.Defaults))
	for i, d := range nested.Defaults {
		if d != nil {
			defaults[i] = constObject(d)
		}
	}
	return object.NewClosure(nested, clov, defaults)
}

// load reads one AP/FP/CP/GBL/THIS slot (SEEK is never emitted by the
// current assembler).
func (vm *VM) load(fr *Frame, kind bytecode.PtrKind, arg int) (object.Object, error) {
	switch kind {
	case bytecode.PtrAP:
		return fr.AP[arg], nil
	case bytecode.PtrFP:
		return fr.FP[arg], nil
	case bytecode.PtrCP:
		return fr.CP[arg], nil
	case bytecode.PtrGBL:
		name := fr.Code.Rodata[arg].(string)
		if v, ok := vm.globals[name]; ok {
			return v, nil
		}
		if v, ok := vm.builtins[name]; ok {
			return v, nil
		}
		return nil, ecerr.New(ecerr.NameError, "name %q is not defined", name)
	case bytecode.PtrTHIS:
		return fr.This, nil
	default:
		return nil, ecerr.New(ecerr.SystemError, "unsupported LOAD pointer kind %s", kind)
	}
}

// assign writes v into one AP/FP/CP/GBL slot, releasing whatever it
// displaces; v itself is not retained — the single reference ASSIGN's
// caller popped off the stack becomes the slot's owned reference.
func (vm *VM) assign(fr *Frame, kind bytecode.PtrKind, arg int, v object.Object) error {
	switch kind {
	case bytecode.PtrAP:
		old := fr.AP[arg]
		fr.AP[arg] = v
		object.Release(old)
	case bytecode.PtrFP:
		old := fr.FP[arg]
		fr.FP[arg] = v
		object.Release(old)
	case bytecode.PtrCP:
		old := fr.CP[arg]
		fr.CP[arg] = v
		object.Release(old)
	case bytecode.PtrGBL:
		name := fr.Code.Rodata[arg].(string)
		old := vm.globals[name]
		vm.globals[name] = v
		object.Release(old)
	case bytecode.PtrTHIS:
		old := fr.This
		fr.This = v
		object.Release(old)
	default:
		return ecerr.New(ecerr.SystemError, "unsupported ASSIGN pointer kind %s", kind)
	}
	return nil
}

func (vm *VM) doGetAttr(fr *Frame, kind bytecode.AttrKind, arg int) error {
	var name string
	var obj object.Object
	if kind == bytecode.AttrStack {
		key := vm.pop()
		if s, ok := key.(*object.StringObj); ok {
			name = s.Go()
		}
		obj = vm.pop()
	} else {
		name = fr.Code.Rodata[arg].(string)
		obj = vm.pop()
	}
	v, err := object.GetAttr(obj, name)
	if err != nil {
		return err
	}
	vm.push(v)
	return nil
}

func (vm *VM) doSetAttr(fr *Frame, kind bytecode.AttrKind, arg int) error {
	var name string
	val := vm.pop()
	var obj object.Object
	if kind == bytecode.AttrStack {
		key := vm.pop()
		if s, ok := key.(*object.StringObj); ok {
			name = s.Go()
		}
		obj = vm.pop()
	} else {
		name = fr.Code.Rodata[arg].(string)
		obj = vm.pop()
	}
	return object.SetAttr(obj, name, val)
}

// excFromValue converts a thrown value into an *ecerr.Error, so raise
// has one uniform type to match against handlers. OpThrow is never
// emitted by the current assembler (no user-facing throw syntax
// exists), but the opcode is still handled for ISA completeness.
func excFromValue(v object.Object) error {
	if s, ok := v.(*object.StringObj); ok {
		return ecerr.New(ecerr.RuntimeError, "%s", s.Go())
	}
	return ecerr.New(ecerr.RuntimeError, "%s", object.Str(v))
}

// raise looks for an active handler in fr, innermost first (a single
// try/catch compiles to exactly one PUSH_HANDLER per frame nesting
// level, so the top of fr.handlers is always the innermost live
// block). If one exists it unwinds the value stack to the depth the
// handler recorded, binds the exception and resumes at the handler's
// label; otherwise it reports false so execute propagates err to its
// caller (§5's unwind-until-caught-or-uncaught policy).
func (vm *VM) raise(fr *Frame, err error) bool {
	if len(fr.handlers) == 0 {
		return false
	}
	h := fr.handlers[len(fr.handlers)-1]
	fr.handlers = fr.handlers[:len(fr.handlers)-1]
	for vm.sp > h.sp {
		vm.pop()
	}
	ee, ok := err.(*ecerr.Error)
	if !ok {
		ee = ecerr.New(ecerr.RuntimeError, "%s", err.Error())
	}
	vm.push(object.NewException(ee.Class, ee.Message))
	fr.IP = h.target
	return true
}

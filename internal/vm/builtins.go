package vm

import (
	"fmt"
	"os"
	"strconv"

	"evilcandy/internal/ecerr"
	"evilcandy/internal/object"
)

// installBuiltins populates vm.builtins with the native global
// functions every script sees underneath its own top-level bindings:
// print (all six §8 scenarios), the import/load builtin (§4.5,
// scenario 5), and the handful of conversion/introspection functions
// the invariants in §7 exercise (str/int/float/len/type).
//
// Grounded on original_source/src/builtin/{builtin.c,file.c} for the
// set of names and on object/dict.go's Method shape for how a native
// callable reports its own arity.
func installBuiltins(vm *VM) {
	vm.setBuiltin("print", object.NewNativeFunction("print", builtinPrint))
	vm.setBuiltin("import", object.NewNativeFunction("import", vm.builtinImport))
	vm.setBuiltin("len", object.NewNativeFunction("len", builtinLen))
	vm.setBuiltin("str", object.NewNativeFunction("str", builtinStr))
	vm.setBuiltin("int", object.NewNativeFunction("int", builtinInt))
	vm.setBuiltin("float", object.NewNativeFunction("float", builtinFloat))
	vm.setBuiltin("type", object.NewNativeFunction("type", builtinType))
	vm.setBuiltin("dict_from_json", object.NewNativeFunction("dict_from_json", builtinDictFromJSON))
}

// builtinPrint renders each argument with str() and writes them
// space-joined with a trailing newline, matching every §8 scenario's
// stdout expectation (a bare print(x) is exactly str(x)+"\n").
func builtinPrint(args []object.Object, kwargs *object.DictObj) (object.Object, error) {
	for i, a := range args {
		if i > 0 {
			fmt.Fprint(os.Stdout, " ")
		}
		fmt.Fprint(os.Stdout, object.Str(a))
	}
	fmt.Fprintln(os.Stdout)
	return object.Null, nil
}

// builtinImport implements `import(path, mode)`: mode "r" returns a
// zero-argument callable that runs the file (and caches the result)
// the first time it is actually invoked; any other mode (the default,
// "x") runs it immediately and returns the resulting module object
// (§4.5 "import/load", §8 scenario 5).
func (vm *VM) builtinImport(args []object.Object, kwargs *object.DictObj) (object.Object, error) {
	if len(args) < 1 {
		return nil, ecerr.New(ecerr.ArgumentError, "import() requires a path argument")
	}
	path, ok := args[0].(*object.StringObj)
	if !ok {
		return nil, ecerr.New(ecerr.TypeError, "import() path must be a string")
	}
	mode := "x"
	if len(args) > 1 {
		m, ok := args[1].(*object.StringObj)
		if !ok {
			return nil, ecerr.New(ecerr.TypeError, "import() mode must be a string")
		}
		mode = m.Go()
	}
	if mode == "r" {
		p := path.Go()
		return object.NewNativeFunction("<import "+p+">", func(_ []object.Object, _ *object.DictObj) (object.Object, error) {
			return vm.loader.load(p)
		}), nil
	}
	return vm.loader.load(path.Go())
}

func builtinLen(args []object.Object, kwargs *object.DictObj) (object.Object, error) {
	if len(args) != 1 {
		return nil, ecerr.New(ecerr.ArgumentError, "len() takes exactly one argument")
	}
	n, err := object.Len(args[0])
	if err != nil {
		return nil, err
	}
	return object.NewInt(int64(n)), nil
}

func builtinStr(args []object.Object, kwargs *object.DictObj) (object.Object, error) {
	if len(args) != 1 {
		return nil, ecerr.New(ecerr.ArgumentError, "str() takes exactly one argument")
	}
	return object.NewString(object.Str(args[0])), nil
}

// builtinInt converts a string, float, or int argument to an int,
// satisfying §7's `str(int(str(i))) == str(i)` round-trip invariant.
func builtinInt(args []object.Object, kwargs *object.DictObj) (object.Object, error) {
	if len(args) != 1 {
		return nil, ecerr.New(ecerr.ArgumentError, "int() takes exactly one argument")
	}
	switch v := args[0].(type) {
	case *object.IntObj:
		return v, nil
	case *object.FloatObj:
		return object.NewInt(int64(v.V)), nil
	case *object.StringObj:
		n, err := strconv.ParseInt(v.Go(), 10, 64)
		if err != nil {
			return nil, ecerr.New(ecerr.ValueError, "invalid literal for int(): %q", v.Go())
		}
		return object.NewInt(n), nil
	default:
		return nil, ecerr.New(ecerr.TypeError, "int() argument must be a string, int or float")
	}
}

func builtinFloat(args []object.Object, kwargs *object.DictObj) (object.Object, error) {
	if len(args) != 1 {
		return nil, ecerr.New(ecerr.ArgumentError, "float() takes exactly one argument")
	}
	switch v := args[0].(type) {
	case *object.FloatObj:
		return v, nil
	case *object.IntObj:
		return object.NewFloat(float64(v.V)), nil
	case *object.StringObj:
		f, err := strconv.ParseFloat(v.Go(), 64)
		if err != nil {
			return nil, ecerr.New(ecerr.ValueError, "invalid literal for float(): %q", v.Go())
		}
		return object.NewFloat(f), nil
	default:
		return nil, ecerr.New(ecerr.TypeError, "float() argument must be a string, int or float")
	}
}

func builtinType(args []object.Object, kwargs *object.DictObj) (object.Object, error) {
	if len(args) != 1 {
		return nil, ecerr.New(ecerr.ArgumentError, "type() takes exactly one argument")
	}
	if args[0] == nil {
		return object.NewString("empty"), nil
	}
	return object.NewString(args[0].Type().Name), nil
}

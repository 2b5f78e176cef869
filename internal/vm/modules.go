package vm

import (
	"math"
	"os"

	"evilcandy/internal/ecconfig"
	"evilcandy/internal/ecerr"
	"evilcandy/internal/object"
)

// installStdModules wires the two supplemented builtin namespaces
// (§12 of SPEC_FULL.md): `math`, a thin wrapper around Go's math
// package grounded on original_source/src/builtin/math.c's function
// table, and `sys`, exposing argv/import_path/breadcrumbs/version the
// way original_source/src/builtin/sys.c exposes a C `struct var_t
// *sys` table. Both are plain object.ModuleObj namespaces — the same
// attribute-holder type `import` itself produces — so `math.sqrt(x)`
// and a loaded file's `m.get()` share one GetAttr path.
func installStdModules(vm *VM) {
	vm.setBuiltin("math", mathModule())
	vm.setBuiltin("sys", vm.sysModule())
}

func mathFn1(name string, fn func(float64) float64) object.Object {
	return object.NewNativeFunction(name, func(args []object.Object, kwargs *object.DictObj) (object.Object, error) {
		if len(args) != 1 {
			return nil, ecerr.New(ecerr.ArgumentError, "math.%s() takes exactly one argument", name)
		}
		f, err := asFloat64(args[0])
		if err != nil {
			return nil, err
		}
		return object.NewFloat(fn(f)), nil
	})
}

func asFloat64(o object.Object) (float64, error) {
	switch v := o.(type) {
	case *object.FloatObj:
		return v.V, nil
	case *object.IntObj:
		return float64(v.V), nil
	default:
		return 0, ecerr.New(ecerr.TypeError, "expected a number, got '%s'", o.Type().Name)
	}
}

func mathModule() *object.ModuleObj {
	g := map[string]object.Object{
		"sqrt":  mathFn1("sqrt", math.Sqrt),
		"floor": mathFn1("floor", math.Floor),
		"ceil":  mathFn1("ceil", math.Ceil),
		"sin":   mathFn1("sin", math.Sin),
		"cos":   mathFn1("cos", math.Cos),
		"tan":   mathFn1("tan", math.Tan),
		"log":   mathFn1("log", math.Log),
		"log10": mathFn1("log10", math.Log10),
		"exp":   mathFn1("exp", math.Exp),
		"abs":   mathFn1("abs", math.Abs),
		"pi":    object.NewFloat(math.Pi),
		"e":     object.NewFloat(math.E),
	}
	g["pow"] = object.NewNativeFunction("pow", func(args []object.Object, kwargs *object.DictObj) (object.Object, error) {
		if len(args) != 2 {
			return nil, ecerr.New(ecerr.ArgumentError, "math.pow() takes exactly two arguments")
		}
		base, err := asFloat64(args[0])
		if err != nil {
			return nil, err
		}
		exp, err := asFloat64(args[1])
		if err != nil {
			return nil, err
		}
		return object.NewFloat(math.Pow(base, exp)), nil
	})
	return object.NewModule("<math>", g)
}

// sysModule builds the `sys` namespace. import_path[0] mirrors
// ecconfig.ImportPath[0] (the running script's own directory, set by
// cmd/evilcandy/main.go); breadcrumbs is populated by the loader as it
// resolves each import, per the GLOSSARY's "breadcrumbs" entry
// (cycle-detection trail).
func (vm *VM) sysModule() *object.ModuleObj {
	argv := make([]object.Object, 0, len(os.Args))
	for _, a := range os.Args {
		argv = append(argv, object.NewString(a))
	}
	importPath := make([]object.Object, 0, len(ecconfig.ImportPath))
	for _, p := range ecconfig.ImportPath {
		importPath = append(importPath, object.NewString(p))
	}
	loader := vm.loader
	g := map[string]object.Object{
		"argv":        object.NewArray(argv),
		"import_path": object.NewArray(importPath),
		"version":     object.NewString("0.1.0"),
		// breadcrumbs grows as imports resolve, so unlike argv/version
		// it can't be snapshotted once at startup the way the rest of
		// this namespace is; exposed as a zero-arg callable returning
		// the live trail instead of a plain array attribute.
		"breadcrumbs": object.NewNativeFunction("breadcrumbs",
			func(args []object.Object, kwargs *object.DictObj) (object.Object, error) {
				return loader.breadcrumbs(), nil
			}),
	}
	return object.NewModule("<sys>", g)
}

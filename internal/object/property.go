package object

import (
	"fmt"

	"evilcandy/internal/ecerr"
)

// PropertyObj reifies a Property descriptor as a first-class value,
// returned when user code reads a property attribute off a type
// itself rather than an instance (introspection corner of §4.4).
type PropertyObj struct {
	Base
	Prop *Property
}

var PropertyType *TypeDesc

func NewPropertyObj(p *Property) *PropertyObj { return &PropertyObj{Prop: p} }

func (p *PropertyObj) Type() *TypeDesc { return PropertyType }

// AttrHolder is implemented by types whose attributes aren't known
// until an instance exists (module namespaces loaded by `import`,
// §4.5's "import/load"). GetAttr/SetAttr consult it only after the
// static PropGetSets/Cbm tables miss, so a type can mix computed
// properties with a dynamic namespace.
type AttrHolder interface {
	GetDynAttr(name string) (Object, bool)
	SetDynAttr(name string, val Object) bool
}

// GetAttr looks up a named attribute on recv: first the type's
// PropGetSets table, then (if the type also has a Cbm table) a bound
// method, then an AttrHolder's dynamic namespace. Shared by the VM's
// GETATTR handling and by builtin code that needs attribute access
// without going through bytecode.
func GetAttr(recv Object, name string) (Object, error) {
	if recv == nil {
		return nil, ecerr.New(ecerr.TypeError, "'null' has no attribute %q", name)
	}
	td := recv.Type()
	if td.PropGetSets != nil {
		if p, ok := td.PropGetSets[name]; ok {
			return p.Get(recv)
		}
	}
	if td.Cbm != nil {
		if m, ok := td.Cbm[name]; ok {
			return NewBoundMethod(recv, wrapMethod(m)), nil
		}
	}
	if ah, ok := recv.(AttrHolder); ok {
		if v, ok := ah.GetDynAttr(name); ok {
			return v, nil
		}
	}
	return nil, ecerr.New(ecerr.NameError, "'%s' object has no attribute %q", td.Name, name)
}

// SetAttr writes a named attribute via the type's PropGetSets table,
// or an AttrHolder's dynamic namespace; read-only properties (Set ==
// nil) report NameError.
func SetAttr(recv Object, name string, val Object) error {
	if recv == nil {
		return ecerr.New(ecerr.TypeError, "'null' has no attribute %q", name)
	}
	td := recv.Type()
	if td.PropGetSets != nil {
		if p, ok := td.PropGetSets[name]; ok {
			if p.Set == nil {
				return ecerr.New(ecerr.NameError, "attribute %q of '%s' is read-only", name, td.Name)
			}
			return p.Set(recv, val)
		}
	}
	if ah, ok := recv.(AttrHolder); ok {
		if ah.SetDynAttr(name, val) {
			return nil
		}
	}
	return ecerr.New(ecerr.NameError, "'%s' object has no attribute %q", td.Name, name)
}

// wrapMethod adapts a Method table entry into a native FunctionObj so
// GetAttr can hand back a uniform bound-method value regardless of
// whether the method came from Cbm or a user-defined class body.
func wrapMethod(m *Method) *FunctionObj {
	return NewNativeFunction(m.Name, func(args []Object, kwargs *DictObj) (Object, error) {
		if len(args) < 1 {
			return nil, ecerr.New(ecerr.RuntimeError, "method %q called with no receiver", m.Name)
		}
		recv := args[0]
		rest := args[1:]
		if len(rest) < m.Min || (m.Max >= 0 && len(rest) > m.Max) {
			return nil, ecerr.New(ecerr.ArgumentError, "%q takes between %d and %d arguments", m.Name, m.Min, m.Max)
		}
		return m.Fn(recv, rest, kwargs)
	})
}

func init() {
	PropertyType = &TypeDesc{
		Name: "property",
		Str:  func(o Object) string { return fmt.Sprintf("<property %s>", o.(*PropertyObj).Prop.Name) },
		Cmpz: func(Object) bool { return true },
	}
}

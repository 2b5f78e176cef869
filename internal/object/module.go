package object

import "fmt"

// ModuleObj is the namespace value `import` produces for a loaded
// file (§4.5 "import/load"): the set of global names the imported
// script's top-level code left bound, addressable by attribute
// (`m.get()`) the same way a C extension module would be.
type ModuleObj struct {
	Base
	Path    string
	Globals map[string]Object
}

var ModuleType *TypeDesc

func NewModule(path string, globals map[string]Object) *ModuleObj {
	for _, v := range globals {
		Retain(v)
	}
	return &ModuleObj{Path: path, Globals: globals}
}

func (m *ModuleObj) Type() *TypeDesc { return ModuleType }

func (m *ModuleObj) GetDynAttr(name string) (Object, bool) {
	v, ok := m.Globals[name]
	return v, ok
}

// SetDynAttr is rejected: a module's namespace is fixed once loaded,
// matching the source's read-only module object.
func (m *ModuleObj) SetDynAttr(name string, val Object) bool { return false }

func moduleReset(o Object) {
	m := o.(*ModuleObj)
	for _, v := range m.Globals {
		Release(v)
	}
	m.Globals = nil
}

func init() {
	ModuleType = &TypeDesc{
		Name:  "module",
		Str:   func(o Object) string { return fmt.Sprintf("<module %q>", o.(*ModuleObj).Path) },
		Cmpz:  func(Object) bool { return true },
		Reset: moduleReset,
	}
}

package object

import (
	"fmt"

	"evilcandy/internal/ecerr"
)

// DictObj is the insertion-ordered string-keyed hash map (§3's
// "dict"). A lock counter blocks mutation during iteration (§4.1,
// §5: foreach/iterate takes the lock; setitem/delitem while locked
// fails with RuntimeError).
type DictObj struct {
	Base
	table *hashTable
	lock  int
}

var DictType *TypeDesc

func NewDict() *DictObj {
	return &DictObj{table: newHashTable()}
}

func (d *DictObj) Type() *TypeDesc { return DictType }

// Lock increments the iteration lock; Unlock decrements it. Callers
// use defer d.Unlock() around a foreach/iteration so the lock is
// released even if the callback raises.
func (d *DictObj) Lock()   { d.lock++ }
func (d *DictObj) Unlock() { d.lock-- }

func (d *DictObj) Keys() []string { return d.table.Keys() }

func dictGetItem(recv Object, key string) (Object, error) {
	d := recv.(*DictObj)
	v, ok := d.table.Get(key)
	if !ok {
		return nil, ecerr.New(ecerr.KeyError, "%q", key)
	}
	return v, nil
}

func dictSetItem(recv Object, key string, val Object) error {
	d := recv.(*DictObj)
	if d.lock > 0 {
		return ecerr.New(ecerr.RuntimeError, "locked")
	}
	d.table.Set(key, val)
	return nil
}

func dictHasItem(recv Object, key string) bool {
	d := recv.(*DictObj)
	return d.table.Has(key)
}

func dictReset(o Object) {
	d := o.(*DictObj)
	for _, k := range d.table.Keys() {
		d.table.Delete(k)
	}
}

func init() {
	DictType = &TypeDesc{
		Name:  "dict",
		Str:   func(o Object) string { return dictStr(o.(*DictObj)) },
		Cmpz:  func(o Object) bool { return o.(*DictObj).table.count > 0 },
		Reset: dictReset,
		Mpm: &MapProtocol{
			GetItem: dictGetItem,
			SetItem: dictSetItem,
			HasItem: dictHasItem,
		},
		Cbm: dictMethods(),
	}
}

func dictStr(d *DictObj) string {
	s := "{"
	for i, k := range d.table.Keys() {
		if i > 0 {
			s += ", "
		}
		v, _ := d.table.Get(k)
		s += fmt.Sprintf("%q: %s", k, Str(v))
	}
	return s + "}"
}

// dictMethods builds the keys/values/foreach trio named in §12
// (grounded on src/builtin/object.c), plus delete-by-key.
func dictMethods() map[string]*Method {
	return map[string]*Method{
		"keys": {
			Name: "keys", Min: 0, Max: 0,
			Fn: func(recv Object, _ []Object, _ *DictObj) (Object, error) {
				d := recv.(*DictObj)
				ks := d.table.Keys()
				out := make([]Object, len(ks))
				for i, k := range ks {
					out[i] = NewString(k)
				}
				return NewArray(out), nil
			},
		},
		"values": {
			Name: "values", Min: 0, Max: 0,
			Fn: func(recv Object, _ []Object, _ *DictObj) (Object, error) {
				d := recv.(*DictObj)
				ks := d.table.Keys()
				out := make([]Object, len(ks))
				for i, k := range ks {
					v, _ := d.table.Get(k)
					out[i] = v
				}
				return NewArray(out), nil
			},
		},
		"foreach": {
			Name: "foreach", Min: 1, Max: 1,
			Fn: func(recv Object, args []Object, _ *DictObj) (Object, error) {
				d := recv.(*DictObj)
				cb, ok := args[0].(Callable)
				if !ok {
					return nil, ecerr.New(ecerr.TypeError, "foreach() argument must be callable")
				}
				d.Lock()
				defer d.Unlock()
				for _, k := range d.table.Keys() {
					v, ok := d.table.Get(k)
					if !ok {
						continue
					}
					// Each argument is an owned reference that the callee's
					// frame teardown releases.
					if _, err := cb.Invoke([]Object{Retain(v), Retain(NewString(k))}, nil); err != nil {
						return nil, err
					}
				}
				return Null, nil
			},
		},
		"delete": {
			Name: "delete", Min: 1, Max: 1,
			Fn: func(recv Object, args []Object, _ *DictObj) (Object, error) {
				d := recv.(*DictObj)
				if d.lock > 0 {
					return nil, ecerr.New(ecerr.RuntimeError, "locked")
				}
				ks, ok := args[0].(*StringObj)
				if !ok {
					return nil, ecerr.New(ecerr.TypeError, "delete() key must be a string")
				}
				d.table.Delete(ks.Go())
				return Null, nil
			},
		},
	}
}

// Callable is implemented by function and method objects so that
// dict.foreach and other higher-order builtins can invoke them
// without the object package importing the vm package.
type Callable interface {
	Invoke(args []Object, kwargs *DictObj) (Object, error)
}

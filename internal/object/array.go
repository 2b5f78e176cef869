package object

import (
	"fmt"
	"sort"

	"evilcandy/internal/ecerr"
)

// ArrayObj is EvilCandy's mutable ordered sequence ("array/list" in
// §3).
type ArrayObj struct {
	Base
	elems []Object
}

var ArrayType *TypeDesc

func NewArray(elems []Object) *ArrayObj {
	for _, e := range elems {
		Retain(e)
	}
	return &ArrayObj{elems: elems}
}

func (a *ArrayObj) Type() *TypeDesc { return ArrayType }
func (a *ArrayObj) Elems() []Object { return a.elems }

func arrayGetItem(recv Object, i int) (Object, error) {
	a := recv.(*ArrayObj)
	idx, err := normIndex(len(a.elems), i)
	if err != nil {
		return nil, err
	}
	return a.elems[idx], nil
}

func arraySetItem(recv Object, i int, val Object) error {
	a := recv.(*ArrayObj)
	idx, err := normIndex(len(a.elems), i)
	if err != nil {
		return err
	}
	Retain(val)
	old := a.elems[idx]
	a.elems[idx] = val
	Release(old)
	return nil
}

func arrayGetSlice(recv Object, start, stop, step int) (Object, error) {
	a := recv.(*ArrayObj)
	idxs, err := sliceIndices(len(a.elems), start, stop, step)
	if err != nil {
		return nil, err
	}
	out := make([]Object, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, a.elems[i])
	}
	return NewArray(out), nil
}

func arrayCat(a, b Object) (Object, error) {
	aa := a.(*ArrayObj)
	if b == nil {
		return NewArray(nil), nil
	}
	ba, ok := b.(*ArrayObj)
	if !ok {
		return nil, typeMismatch("cat", a, b)
	}
	out := make([]Object, 0, len(aa.elems)+len(ba.elems))
	out = append(out, aa.elems...)
	out = append(out, ba.elems...)
	return NewArray(out), nil
}

func arrayHasItem(recv Object, needle Object) bool {
	a := recv.(*ArrayObj)
	for _, e := range a.elems {
		if varEqual(e, needle) {
			return true
		}
	}
	return false
}

func arraySort(recv Object) error {
	a := recv.(*ArrayObj)
	var sortErr error
	sort.SliceStable(a.elems, func(i, j int) bool {
		c, ok := Cmp(a.elems[i], a.elems[j])
		if !ok {
			sortErr = ecerr.New(ecerr.TypeError, "uncomparable elements in sort")
			return false
		}
		return c < 0
	})
	return sortErr
}

// varEqual is var_compare (§4.1 hasitem: "linear scan with
// var_compare"): equal if ordered-comparable-and-zero, or reference
// identity otherwise.
func varEqual(a, b Object) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Type() != b.Type() {
		return false
	}
	c, ok := Cmp(a, b)
	return ok && c == 0
}

func arrayReset(o Object) {
	a := o.(*ArrayObj)
	for _, e := range a.elems {
		Release(e)
	}
	a.elems = nil
}

func init() {
	ArrayType = &TypeDesc{
		Name:  "array",
		Str:   func(o Object) string { return formatSeq(o.(*ArrayObj).elems, "[", "]") },
		Cmpz:  func(o Object) bool { return len(o.(*ArrayObj).elems) > 0 },
		Reset: arrayReset,
		Sqm: &SeqProtocol{
			Len:      func(o Object) int { return len(o.(*ArrayObj).elems) },
			GetItem:  arrayGetItem,
			SetItem:  arraySetItem,
			GetSlice: arrayGetSlice,
			Cat:      arrayCat,
			HasItem:  arrayHasItem,
			Sort:     arraySort,
		},
	}
}

func formatSeq(elems []Object, open, close string) string {
	s := open
	for i, e := range elems {
		if i > 0 {
			s += ", "
		}
		if str, ok := e.(*StringObj); ok {
			s += fmt.Sprintf("%q", str.Go())
		} else {
			s += Str(e)
		}
	}
	return s + close
}

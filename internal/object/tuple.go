package object

import "evilcandy/internal/ecerr"

// TupleObj is EvilCandy's immutable ordered sequence.
type TupleObj struct {
	Base
	elems []Object
}

var TupleType *TypeDesc

func NewTuple(elems []Object) *TupleObj {
	for _, e := range elems {
		Retain(e)
	}
	return &TupleObj{elems: elems}
}

func (t *TupleObj) Type() *TypeDesc { return TupleType }
func (t *TupleObj) Elems() []Object { return t.elems }

func tupleGetItem(recv Object, i int) (Object, error) {
	t := recv.(*TupleObj)
	idx, err := normIndex(len(t.elems), i)
	if err != nil {
		return nil, err
	}
	return t.elems[idx], nil
}

// tupleSetItem: immutable — per §4.1, setitem on an immutable type
// leaves the slot unchanged and the caller reports TypeError.
func tupleSetItem(recv Object, i int, val Object) error {
	return ecerr.New(ecerr.TypeError, "'tuple' object does not support item assignment")
}

func tupleGetSlice(recv Object, start, stop, step int) (Object, error) {
	t := recv.(*TupleObj)
	idxs, err := sliceIndices(len(t.elems), start, stop, step)
	if err != nil {
		return nil, err
	}
	out := make([]Object, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, t.elems[i])
	}
	return NewTuple(out), nil
}

func tupleCat(a, b Object) (Object, error) {
	at := a.(*TupleObj)
	if b == nil {
		return NewTuple(nil), nil
	}
	bt, ok := b.(*TupleObj)
	if !ok {
		return nil, typeMismatch("cat", a, b)
	}
	out := make([]Object, 0, len(at.elems)+len(bt.elems))
	out = append(out, at.elems...)
	out = append(out, bt.elems...)
	return NewTuple(out), nil
}

func tupleHasItem(recv Object, needle Object) bool {
	t := recv.(*TupleObj)
	for _, e := range t.elems {
		if varEqual(e, needle) {
			return true
		}
	}
	return false
}

func tupleReset(o Object) {
	t := o.(*TupleObj)
	for _, e := range t.elems {
		Release(e)
	}
	t.elems = nil
}

func init() {
	TupleType = &TypeDesc{
		Name:  "tuple",
		Str:   func(o Object) string { return formatSeq(o.(*TupleObj).elems, "(", ")") },
		Cmpz:  func(o Object) bool { return len(o.(*TupleObj).elems) > 0 },
		Reset: tupleReset,
		Sqm: &SeqProtocol{
			Len:      func(o Object) int { return len(o.(*TupleObj).elems) },
			GetItem:  tupleGetItem,
			SetItem:  tupleSetItem,
			GetSlice: tupleGetSlice,
			Cat:      tupleCat,
			HasItem:  tupleHasItem,
		},
	}
}

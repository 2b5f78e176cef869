package object

import (
	"fmt"

	"evilcandy/internal/ecerr"
)

// RangeObj is a lazy arithmetic progression: start, stop, step are
// fixed at creation and elements are computed on demand rather than
// materialized. NewRange constructs one; no builtin exposes it to
// scripts.
type RangeObj struct {
	Base
	start, stop, step int64
}

var RangeType *TypeDesc

func NewRange(start, stop, step int64) (*RangeObj, error) {
	if step == 0 {
		return nil, ecerr.New(ecerr.ValueError, "range() step cannot be zero")
	}
	return &RangeObj{start: start, stop: stop, step: step}, nil
}

func (r *RangeObj) Type() *TypeDesc { return RangeType }

func (r *RangeObj) rangeLen() int {
	if r.step > 0 {
		if r.stop <= r.start {
			return 0
		}
		return int((r.stop - r.start + r.step - 1) / r.step)
	}
	if r.stop >= r.start {
		return 0
	}
	return int((r.start - r.stop - r.step - 1) / -r.step)
}

func rangeGetItem(recv Object, i int) (Object, error) {
	r := recv.(*RangeObj)
	n := r.rangeLen()
	idx, err := normIndex(n, i)
	if err != nil {
		return nil, err
	}
	return NewInt(r.start + int64(idx)*r.step), nil
}

func rangeHasItem(recv Object, needle Object) bool {
	r := recv.(*RangeObj)
	iv, ok := needle.(*IntObj)
	if !ok {
		return false
	}
	v := iv.V
	if r.step > 0 {
		if v < r.start || v >= r.stop {
			return false
		}
	} else {
		if v > r.start || v <= r.stop {
			return false
		}
	}
	return (v-r.start)%r.step == 0
}

func init() {
	RangeType = &TypeDesc{
		Name: "range",
		Str: func(o Object) string {
			r := o.(*RangeObj)
			return fmt.Sprintf("range(%d, %d, %d)", r.start, r.stop, r.step)
		},
		Cmpz: func(o Object) bool { return o.(*RangeObj).rangeLen() > 0 },
		Sqm: &SeqProtocol{
			Len:     func(o Object) int { return o.(*RangeObj).rangeLen() },
			GetItem: rangeGetItem,
			HasItem: rangeHasItem,
		},
	}
}

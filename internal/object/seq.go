package object

import (
	"math"

	"evilcandy/internal/ecerr"
)

// sliceIndices computes the list of source indices a getslice/setslice
// should visit, per §4.1: step != 0, direction is sign(step), and the
// result length is max(0, ceil((stop-start)/step)). start/stop are
// taken as already resolved (negative bounds are wrapped by the
// caller, sliceOperands); n is the sequence length, and indices
// outside [0, n) are skipped.
func sliceIndices(n, start, stop, step int) ([]int, error) {
	if step == 0 {
		return nil, ecerr.New(ecerr.ValueError, "slice step cannot be zero")
	}
	length := int(math.Ceil(float64(stop-start) / float64(step)))
	if length < 0 {
		length = 0
	}
	out := make([]int, 0, length)
	i := start
	for j := 0; j < length; j++ {
		if i >= 0 && i < n {
			out = append(out, i)
		}
		i += step
	}
	return out, nil
}

// normIndex resolves a negative index (wrapping from the end) and
// reports IndexError if it is still out of [0, n).
func normIndex(n, i int) (int, error) {
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return 0, ecerr.New(ecerr.IndexError, "index out of range")
	}
	return i, nil
}

// GetItem dispatches to the owning type's sequence or mapping
// protocol, wrapping a string key as a map lookup and an int index as
// a sequence lookup (the two protocols are mutually exclusive per
// type in practice, matching §4.1/§4.1 mapping protocol).
func GetItem(recv Object, key Object) (Object, error) {
	if recv == nil {
		return nil, ecerr.New(ecerr.TypeError, "'null' is not subscriptable")
	}
	td := recv.Type()
	if td.Mpm != nil {
		ks, ok := key.(*StringObj)
		if !ok {
			return nil, ecerr.New(ecerr.TypeError, "%s keys must be strings", td.Name)
		}
		return td.Mpm.GetItem(recv, ks.Go())
	}
	if td.Sqm != nil && td.Sqm.GetItem != nil {
		ki, ok := key.(*IntObj)
		if !ok {
			return nil, ecerr.New(ecerr.TypeError, "%s indices must be integers", td.Name)
		}
		return td.Sqm.GetItem(recv, int(ki.V))
	}
	return nil, ecerr.New(ecerr.TypeError, "'%s' is not subscriptable", td.Name)
}

// SetItem dispatches the same way GetItem does; nil val on a mapping
// type means delete.
func SetItem(recv Object, key Object, val Object) error {
	if recv == nil {
		return ecerr.New(ecerr.TypeError, "'null' does not support item assignment")
	}
	td := recv.Type()
	if td.Mpm != nil {
		ks, ok := key.(*StringObj)
		if !ok {
			return ecerr.New(ecerr.TypeError, "%s keys must be strings", td.Name)
		}
		return td.Mpm.SetItem(recv, ks.Go(), val)
	}
	if td.Sqm != nil && td.Sqm.SetItem != nil {
		ki, ok := key.(*IntObj)
		if !ok {
			return ecerr.New(ecerr.TypeError, "%s indices must be integers", td.Name)
		}
		return td.Sqm.SetItem(recv, int(ki.V), val)
	}
	return ecerr.New(ecerr.TypeError, "'%s' does not support item assignment", td.Name)
}

// GetSlice dispatches a[start:stop:step] to the owning type's sequence
// protocol.
func GetSlice(recv Object, start, stop, step Object) (Object, error) {
	if recv == nil {
		return nil, ecerr.New(ecerr.TypeError, "'null' is not subscriptable")
	}
	td := recv.Type()
	if td.Sqm == nil || td.Sqm.GetSlice == nil {
		return nil, ecerr.New(ecerr.TypeError, "'%s' is not sliceable", td.Name)
	}
	i, j, k, err := sliceOperands(recv, start, stop, step)
	if err != nil {
		return nil, err
	}
	return td.Sqm.GetSlice(recv, i, j, k)
}

// SetSlice dispatches a[start:stop:step] = val to the owning type's
// sequence protocol.
func SetSlice(recv Object, start, stop, step, val Object) error {
	if recv == nil {
		return ecerr.New(ecerr.TypeError, "'null' is not subscriptable")
	}
	td := recv.Type()
	if td.Sqm == nil || td.Sqm.SetSlice == nil {
		return ecerr.New(ecerr.TypeError, "'%s' does not support slice assignment", td.Name)
	}
	i, j, k, err := sliceOperands(recv, start, stop, step)
	if err != nil {
		return err
	}
	return td.Sqm.SetSlice(recv, i, j, k, val)
}

// sliceOperands converts the three (possibly null) slice bound values
// the assembler always pushes (see internal/assembler's indexOrSlice)
// into concrete ints, defaulting start/stop to the sequence's bounds
// when null.
func sliceOperands(recv Object, start, stop, step Object) (int, int, int, error) {
	n, err := Len(recv)
	if err != nil {
		return 0, 0, 0, err
	}
	stepV := 1
	if si, ok := step.(*IntObj); ok {
		stepV = int(si.V)
	}
	startV, stopV := 0, n
	if stepV < 0 {
		startV, stopV = n-1, -1
	}
	if si, ok := start.(*IntObj); ok {
		startV = int(si.V)
		if startV < 0 {
			startV += n
		}
	}
	if si, ok := stop.(*IntObj); ok {
		stopV = int(si.V)
		if stopV < 0 {
			stopV += n
		}
	}
	return startV, stopV, stepV, nil
}

// Len reports the user-visible length of a sequence or mapping type.
func Len(recv Object) (int, error) {
	if recv == nil {
		return 0, ecerr.New(ecerr.TypeError, "object has no len()")
	}
	td := recv.Type()
	if td.Sqm != nil && td.Sqm.Len != nil {
		return td.Sqm.Len(recv), nil
	}
	if td.Mpm != nil {
		if d, ok := recv.(*DictObj); ok {
			return d.table.count, nil
		}
	}
	return 0, ecerr.New(ecerr.TypeError, "object of type '%s' has no len()", td.Name)
}

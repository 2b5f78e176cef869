package object

import "fmt"

// BytesObj is an immutable byte array — the result of a b'...' or
// b"..." literal, with no UTF-8 interpretation (§4.3).
type BytesObj struct {
	Base
	data []byte
}

var BytesType *TypeDesc

func NewBytes(data []byte) *BytesObj {
	cp := make([]byte, len(data))
	copy(cp, data)
	return &BytesObj{data: cp}
}

func (b *BytesObj) Type() *TypeDesc { return BytesType }
func (b *BytesObj) Go() []byte      { return b.data }

func bytesGetItem(recv Object, i int) (Object, error) {
	b := recv.(*BytesObj)
	idx, err := normIndex(len(b.data), i)
	if err != nil {
		return nil, err
	}
	return NewInt(int64(b.data[idx])), nil
}

func bytesGetSlice(recv Object, start, stop, step int) (Object, error) {
	b := recv.(*BytesObj)
	idxs, err := sliceIndices(len(b.data), start, stop, step)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, b.data[i])
	}
	return NewBytes(out), nil
}

func bytesCat(a, b Object) (Object, error) {
	ab := a.(*BytesObj)
	if b == nil {
		return NewBytes(nil), nil
	}
	bb, ok := b.(*BytesObj)
	if !ok {
		return nil, typeMismatch("cat", a, b)
	}
	out := make([]byte, 0, len(ab.data)+len(bb.data))
	out = append(out, ab.data...)
	out = append(out, bb.data...)
	return NewBytes(out), nil
}

func init() {
	BytesType = &TypeDesc{
		Name: "bytes",
		Str: func(o Object) string {
			return fmt.Sprintf("b%q", string(o.(*BytesObj).data))
		},
		Cmpz: func(o Object) bool { return len(o.(*BytesObj).data) > 0 },
		Cmp: func(a, b Object) (int, bool) {
			ab, aok := a.(*BytesObj)
			bb, bok := b.(*BytesObj)
			if !aok || !bok {
				return 0, false
			}
			n := len(ab.data)
			if len(bb.data) < n {
				n = len(bb.data)
			}
			for i := 0; i < n; i++ {
				if ab.data[i] != bb.data[i] {
					if ab.data[i] < bb.data[i] {
						return -1, true
					}
					return 1, true
				}
			}
			switch {
			case len(ab.data) < len(bb.data):
				return -1, true
			case len(ab.data) > len(bb.data):
				return 1, true
			default:
				return 0, true
			}
		},
		Sqm: &SeqProtocol{
			Len:      func(o Object) int { return len(o.(*BytesObj).data) },
			GetItem:  bytesGetItem,
			GetSlice: bytesGetSlice,
			Cat:      bytesCat,
		},
	}
}

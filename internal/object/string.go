package object

import (
	"strings"

	"evilcandy/internal/ecerr"
	"evilcandy/internal/strutil"
)

// StringObj is an immutable string. Internally it is stored as a
// code-point slice; §4.2 additionally tracks the width the source
// would have packed it into (1/2/4 bytes) and its encoding class,
// purely for diagnostic/disassembler fidelity — Go's []rune already
// gives O(1) indexing at uniform width, so width is metadata here
// rather than a storage discriminant.
type StringObj struct {
	Base
	runes []rune
	width int
	enc   strutil.Encoding
	hash  uint64 // 0 == not yet computed
}

var StringType *TypeDesc

// NewString decodes a UTF-8 Go string into a StringObj, computing its
// width and encoding class per §4.2's construction rule.
func NewString(s string) *StringObj {
	runes, enc := strutil.DecodeAll([]byte(s))
	return &StringObj{runes: runes, width: strutil.MinWidth(runes), enc: enc}
}

func newStringFromRunes(runes []rune) *StringObj {
	return &StringObj{runes: runes, width: strutil.MinWidth(runes), enc: strutil.EncodingUTF8}
}

// Go returns the string's Go-native UTF-8 form.
func (s *StringObj) Go() string { return string(s.runes) }

// Len reports the character (code point) count — the user-visible
// length §3 requires for strings.
func (s *StringObj) Len() int { return len(s.runes) }

// Hash lazily computes and memoizes the FNV-1a hash over the UTF-8
// byte representation; a zero result is bumped to 1 by strutil.FNV1a.
func (s *StringObj) Hash() uint64 {
	if s.hash == 0 {
		s.hash = strutil.FNV1a([]byte(s.Go()))
	}
	return s.hash
}

func (s *StringObj) Type() *TypeDesc { return StringType }

func stringGetItem(recv Object, i int) (Object, error) {
	s := recv.(*StringObj)
	n := len(s.runes)
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return nil, ecerr.New(ecerr.IndexError, "string index out of range")
	}
	return newStringFromRunes([]rune{s.runes[i]}), nil
}

func stringGetSlice(recv Object, start, stop, step int) (Object, error) {
	s := recv.(*StringObj)
	idxs, err := sliceIndices(len(s.runes), start, stop, step)
	if err != nil {
		return nil, err
	}
	out := make([]rune, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, s.runes[i])
	}
	return newStringFromRunes(out), nil
}

func stringCat(a, b Object) (Object, error) {
	as := a.(*StringObj)
	if b == nil {
		return newStringFromRunes(nil), nil
	}
	bs, ok := b.(*StringObj)
	if !ok {
		return nil, typeMismatch("cat", a, b)
	}
	out := make([]rune, 0, len(as.runes)+len(bs.runes))
	out = append(out, as.runes...)
	out = append(out, bs.runes...)
	return newStringFromRunes(out), nil
}

func stringHasItem(recv Object, needle Object) bool {
	s := recv.(*StringObj)
	sub, ok := needle.(*StringObj)
	if !ok {
		return false
	}
	return strings.Contains(s.Go(), sub.Go())
}

func init() {
	StringType = &TypeDesc{
		Name: "string",
		Str:  func(o Object) string { return o.(*StringObj).Go() },
		Cmpz: func(o Object) bool { return len(o.(*StringObj).runes) > 0 },
		Cmp: func(a, b Object) (int, bool) {
			as, aok := a.(*StringObj)
			bs, bok := b.(*StringObj)
			if !aok || !bok {
				return 0, false
			}
			switch {
			case as.Go() < bs.Go():
				return -1, true
			case as.Go() > bs.Go():
				return 1, true
			default:
				return 0, true
			}
		},
		Sqm: &SeqProtocol{
			Len:      func(o Object) int { return o.(*StringObj).Len() },
			GetItem:  stringGetItem,
			GetSlice: stringGetSlice,
			Cat:      stringCat,
			HasItem:  stringHasItem,
		},
		Cbm: stringMethods(),
	}
}

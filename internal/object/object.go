// Package object implements the EvilCandy value core: the universal
// Object representation, its reference-count lifecycle, and the
// per-type descriptor tables (operator, method, mapping, and sequence
// protocols) that every concrete type participates in.
//
// The source (original_source/src/types/*.c) gives each concrete type
// its own `struct type_t` table of protocol function pointers. Go has
// no function-pointer struct fields in the C sense, but closures
// assigned into struct fields are the direct idiomatic equivalent, so
// TypeDesc keeps that shape: one descriptor per concrete type, built
// once at package init and referenced (never copied) by every value
// of that type.
package object

import "fmt"

// Object is the universal value handle. Every concrete type
// (IntObj, StringObj, DictObj, ...) embeds Base and satisfies Object.
type Object interface {
	Type() *TypeDesc
	refcount() *int32
	immortal() bool
}

// OpTable is the opm protocol: numeric/bit operators.
type OpTable struct {
	Add, Sub, Mul, Div, Mod, Pow     func(a, b Object) (Object, error)
	And, Or, Xor, Shl, Shr           func(a, b Object) (Object, error)
	Neg, Abs, Not                    func(a Object) (Object, error)
}

// Method is one entry of the cbm protocol: a named native method with
// min/max/optional/keyword arity, matching §4.5's argument marshalling
// rules.
type Method struct {
	Name    string
	Min     int
	Max     int // -1 means variadic (no upper bound)
	HasKw   bool
	Fn      func(recv Object, args []Object, kwargs *DictObj) (Object, error)
}

// MapProtocol is the mpm protocol: keyed access, strings-only keys.
type MapProtocol struct {
	GetItem func(recv Object, key string) (Object, error)
	SetItem func(recv Object, key string, val Object) error // val==nil deletes
	HasItem func(recv Object, key string) bool
}

// SeqProtocol is the sqm protocol: integer-indexed access.
type SeqProtocol struct {
	Len      func(recv Object) int
	GetItem  func(recv Object, i int) (Object, error)
	SetItem  func(recv Object, i int, val Object) error
	HasItem  func(recv Object, needle Object) bool
	GetSlice func(recv Object, start, stop, step int) (Object, error)
	SetSlice func(recv Object, start, stop, step int, val Object) error
	Cat      func(a, b Object) (Object, error)
	Sort     func(recv Object) error
}

// Property is a computed get/set pair exposed as an attribute.
type Property struct {
	Name   string
	Get    func(recv Object) (Object, error)
	Set    func(recv Object, val Object) error // nil if read-only
}

// TypeDesc is the per-type protocol table (§3 "Type descriptor").
type TypeDesc struct {
	Name string

	Opm *OpTable
	Cbm map[string]*Method
	Mpm *MapProtocol
	Sqm *SeqProtocol

	Str   func(Object) string
	Cmp   func(a, b Object) (int, bool) // ok=false if not ordered/comparable
	Cmpz  func(Object) bool
	Reset func(Object)

	PropGetSets map[string]*Property
	Create      func(args []Object, kwargs *DictObj) (Object, error)
}

// Base is embedded by every concrete object type. It carries the
// refcount and the immortality flag described in §3's invariants.
type Base struct {
	rc        int32
	immortalF bool
}

func (b *Base) refcount() *int32 { return &b.rc }
func (b *Base) immortal() bool   { return b.immortalF }

// MakeImmortal saturates an object's refcount so Release becomes a
// no-op; used for small cached ints, interned strings, the null
// singleton, and exception-class tokens (§3).
func (b *Base) MakeImmortal() { b.immortalF = true }

// Retain returns o with its reference count incremented by one. Every
// function that stores an object into a container must call Retain
// on the value it stores (§4.1 refcount discipline) — the argument
// itself is not consumed.
func Retain(o Object) Object {
	if o == nil || o.immortal() {
		return o
	}
	*o.refcount()++
	return o
}

// Release decrements o's reference count, running that type's Reset
// exactly once when the count reaches zero.
func Release(o Object) {
	if o == nil || o.immortal() {
		return
	}
	rc := o.refcount()
	*rc--
	if *rc < 0 {
		panic(fmt.Sprintf("refcount underflow on %s", o.Type().Name))
	}
	if *rc == 0 {
		if reset := o.Type().Reset; reset != nil {
			reset(o)
		}
	}
}

// RefCount exposes the live reference count, for leak-check tests
// (§8: "For every object created and released within a balanced
// scope, the refcount is 0 at release time").
func RefCount(o Object) int32 {
	if o == nil {
		return 0
	}
	return *o.refcount()
}

// Str renders an object via its type's str protocol.
func Str(o Object) string {
	if o == nil {
		return "null"
	}
	if s := o.Type().Str; s != nil {
		return s(o)
	}
	return fmt.Sprintf("<%s>", o.Type().Name)
}

// Cmpz is the truth-value protocol: empty container, zero number, or
// null is false.
func Cmpz(o Object) bool {
	if o == nil {
		return false
	}
	if c := o.Type().Cmpz; c != nil {
		return c(o)
	}
	return true
}

// Cmp performs an ordered, total comparison, returning -1/0/+1.
func Cmp(a, b Object) (int, bool) {
	if a == nil || b == nil {
		return 0, a == b
	}
	if c := a.Type().Cmp; c != nil {
		return c(a, b)
	}
	return 0, false
}

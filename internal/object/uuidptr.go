package object

import (
	"evilcandy/internal/ecerr"

	"github.com/google/uuid"
)

// UUIDObj is an opaque identity token backed by google/uuid rather
// than a hand-rolled generator. NewUUID and ParseUUID construct one
// from Go code; no builtin exposes them to scripts. (Xptr identities
// are plain uuid strings, not UUIDObj values.)
type UUIDObj struct {
	Base
	id uuid.UUID
}

var UUIDType *TypeDesc

func NewUUID() *UUIDObj {
	return &UUIDObj{id: uuid.New()}
}

func ParseUUID(s string) (*UUIDObj, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, ecerr.New(ecerr.ValueError, "%v", err)
	}
	return &UUIDObj{id: id}, nil
}

func (u *UUIDObj) Type() *TypeDesc { return UUIDType }
func (u *UUIDObj) Go() string      { return u.id.String() }

func init() {
	UUIDType = &TypeDesc{
		Name: "uuid",
		Str:  func(o Object) string { return o.(*UUIDObj).id.String() },
		Cmpz: func(Object) bool { return true },
		Cmp: func(a, b Object) (int, bool) {
			ua, aok := a.(*UUIDObj)
			ub, bok := b.(*UUIDObj)
			if !aok || !bok {
				return 0, false
			}
			if ua.id == ub.id {
				return 0, true
			}
			return 0, false
		},
	}
}

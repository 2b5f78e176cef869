package object

import (
	"fmt"

	"evilcandy/internal/ecerr"
)

// ExceptionObj is the value a `catch (e)` clause binds (§5): the
// class and message of whatever *ecerr.Error unwound the protected
// block, exposed as read-only attributes the same way the source's
// exception objects are.
type ExceptionObj struct {
	Base
	Class   string
	Message string
}

var ExceptionType *TypeDesc

// NewException wraps an ecerr.Error (or, for a raised non-Error
// value, a RuntimeError with its str() as the message) for binding
// into a catch clause's local.
func NewException(class ecerr.Class, message string) *ExceptionObj {
	return &ExceptionObj{Class: string(class), Message: message}
}

func (e *ExceptionObj) Type() *TypeDesc { return ExceptionType }

func init() {
	ExceptionType = &TypeDesc{
		Name: "exception",
		Str: func(o Object) string {
			e := o.(*ExceptionObj)
			return fmt.Sprintf("%s: %s", e.Class, e.Message)
		},
		Cmpz: func(Object) bool { return true },
		PropGetSets: map[string]*Property{
			"class":   {Name: "class", Get: func(o Object) (Object, error) { return NewString(o.(*ExceptionObj).Class), nil }},
			"message": {Name: "message", Get: func(o Object) (Object, error) { return NewString(o.(*ExceptionObj).Message), nil }},
		},
	}
}

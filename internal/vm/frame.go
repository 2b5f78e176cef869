package vm

import (
	"evilcandy/internal/bytecode"
	"evilcandy/internal/object"
)

// Frame is one call's activation record (spec §4.5 "frame chain"): the
// code object it is executing, its argument/local/closure slots, the
// instruction pointer, and the handler stack active try/catch blocks
// push onto. One Frame exists per live call, the top-level script
// included.
type Frame struct {
	Code *bytecode.Xptr

	AP []object.Object // argument pointer slots, len == Code.NumParams
	FP []object.Object // frame pointer slots (locals), len == Code.NumLocals
	CP []object.Object // closure pointer slots, borrowed from the callee's FunctionObj
	// This is the slot LOAD/ASSIGN THIS read and write. No call path
	// sets it (a WITH_PARENT call passes its receiver as the first
	// argument), so it is nil unless the frame's own code assigns it.
	This object.Object

	IP int

	// handlers is the stack of active PUSH_HANDLER targets for this
	// frame, popped by POP_HANDLER and consulted by raise when an
	// instruction or callee reports an *ecerr.Error.
	handlers []handler
}

// handler records one PUSH_HANDLER's protected region: the
// instruction to branch to and the value-stack depth to unwind to, so
// a THROW (or a propagated native error) can discard whatever the
// protected region had pushed before it failed.
type handler struct {
	target int
	sp     int
}

func newFrame(code *bytecode.Xptr) *Frame {
	return &Frame{
		Code: code,
		AP:   make([]object.Object, code.NumParams),
		FP:   make([]object.Object, code.NumLocals),
	}
}

// release drops every owned reference a frame holds when it is torn
// down — AP/FP slots were moved into the frame by call marshalling
// (§4.5 rule "argument marshalling"), so the frame is the sole owner
// and must release them exactly once. CP is borrowed from the
// FunctionObj's Clov and is not released here.
func (fr *Frame) release() {
	for _, v := range fr.AP {
		object.Release(v)
	}
	for _, v := range fr.FP {
		object.Release(v)
	}
	object.Release(fr.This)
}

package bytecode

import "github.com/google/uuid"

// Instruction is a single fixed-size bytecode record, exactly as
// specified: an opcode and two operands, a byte and a signed 16-bit
// word. Most opcodes only use one of the two operand slots.
type Instruction struct {
	Code Op
	Arg1 byte
	Arg2 int16
}

// Location is the source position a chunk of bytecode was compiled
// from. Positions are kept per Xptr (FileName/FileLine), not per
// instruction; there is no per-instruction line table.
type Location struct {
	File string
	Line int
}

// Xptr is an executable code object: one per function literal, plus
// one enclosing Xptr for the top-level script. It owns a read-only
// rodata pool (other Xptrs among them, for nested function literals),
// an instruction stream, and a label table used to resolve forward
// branches once the enclosing scope has been fully parsed.
type Xptr struct {
	Instr  []Instruction
	Rodata []interface{} // ints, floats, strings, nested *Xptr
	Label  []int         // label index -> instruction index

	FileName string
	FileLine int
	Name     string // "<script>", a function name, or "<lambda>"

	// NumParams, Defaults, OptIndex and KwIndex describe the
	// calling convention (see §4.4 of the spec): Defaults is sparse,
	// indexed by parameter position, with a nil entry meaning
	// "required"; OptIndex is the first parameter position that may
	// be omitted; KwIndex is the position of the trailing keyword-
	// dict parameter, or -1 if there is none.
	NumParams int
	ParamName []string
	Defaults  []interface{}
	OptIndex  int
	KwIndex   int
	Variadic  bool // trailing *args parameter

	// NumLocals is the number of FP slots declareLocal handed out while
	// assembling this Xptr's body; the VM preallocates exactly this
	// many frame-pointer slots per call.
	NumLocals int

	// ClosureNames lists, in capture order, the outer-scope names
	// this function's literal refers to; at runtime the function
	// object's f_clov array is built in this same order.
	ClosureNames []string

	UUID string
}

// NewXptr allocates an empty code object with a fresh identity.
func NewXptr(fileName string, fileLine int, name string) *Xptr {
	return &Xptr{
		FileName: fileName,
		FileLine: fileLine,
		Name:     name,
		KwIndex:  -1,
		UUID:     uuid.NewString(),
	}
}

// Emit appends an instruction and returns its index.
func (x *Xptr) Emit(code Op, arg1 byte, arg2 int16) int {
	x.Instr = append(x.Instr, Instruction{Code: code, Arg1: arg1, Arg2: arg2})
	return len(x.Instr) - 1
}

// AddConst appends a constant to the rodata pool and returns its
// index. Rodata is not deduplicated: every call adds a new entry, even
// for a value already in the pool.
func (x *Xptr) AddConst(v interface{}) int {
	x.Rodata = append(x.Rodata, v)
	return len(x.Rodata) - 1
}

// NewLabel reserves a label, to be bound to an instruction index once
// known via BindLabel. Returns the label's index.
func (x *Xptr) NewLabel() int {
	x.Label = append(x.Label, -1)
	return len(x.Label) - 1
}

// BindLabel records that label now resolves to the next instruction
// that will be emitted.
func (x *Xptr) BindLabel(label int) {
	x.Label[label] = len(x.Instr)
}

// Patch rewrites the Arg2 operand of instruction at ip to be the
// signed, relative-to-next-instruction offset to the given label's
// bound instruction index.
func (x *Xptr) Patch(ip int, label int) {
	target := x.Label[label]
	x.Instr[ip].Arg2 = int16(target - (ip + 1))
}

// Package bytecode defines the instruction set and the Xptr code
// object that the assembler emits and the VM executes.
package bytecode

// Op is the opcode of a single fixed-size instruction.
type Op byte

const (
	OpNop Op = iota

	// stack / constants
	OpPushConst // arg2 = rodata index
	OpPushTrue
	OpPushFalse
	OpPushNull
	OpPop
	OpDup

	// LOAD/ASSIGN move values between the stack and one of
	// {AP, FP, CP, SEEK, GBL, THIS}; arg1 selects the pointer kind
	// (see PtrKind), arg2 is the slot index or, for SEEK, a rodata
	// string index.
	OpLoad
	OpAssign

	// attribute access; arg1 selects AttrKind, arg2 is a rodata
	// index (CONST) or unused (STACK, key already popped).
	OpGetAttr
	OpSetAttr

	// sequence/mapping subscript
	OpGetItem
	OpSetItem
	OpGetSlice
	OpSetSlice

	// arithmetic / bitwise, one-to-one with the opm protocol slots
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpBitAnd
	OpBitOr
	OpBitXor
	OpBitNot
	OpShl
	OpShr
	OpNeg
	OpAbs
	OpNot

	// comparison; arg1 selects CmpOp
	OpCmp

	// branches; arg2 is a signed offset relative to the instruction
	// following the branch
	OpB
	OpBIf

	// calls and returns
	OpCallFunc // arg1 = FuncArg (with/without parent), arg2 = argc
	OpReturn
	OpMakeFunc // arg2 = rodata index of the nested Xptr
	OpMakeArray
	OpMakeTuple
	OpMakeDict
	OpMakeStar

	// symbol table registration; arg1 = scope, arg2 = rodata index
	OpSymtab

	// exception handling
	OpPushHandler // arg2 = label index
	OpPopHandler
	OpThrow

	// import
	OpImport

	NumOps
)

var opNames = [...]string{
	OpNop:         "NOP",
	OpPushConst:   "PUSH_CONST",
	OpPushTrue:    "PUSH_TRUE",
	OpPushFalse:   "PUSH_FALSE",
	OpPushNull:    "PUSH_NULL",
	OpPop:         "POP",
	OpDup:         "DUP",
	OpLoad:        "LOAD",
	OpAssign:      "ASSIGN",
	OpGetAttr:     "GETATTR",
	OpSetAttr:     "SETATTR",
	OpGetItem:     "GETITEM",
	OpSetItem:     "SETITEM",
	OpGetSlice:    "GETSLICE",
	OpSetSlice:    "SETSLICE",
	OpAdd:         "ADD",
	OpSub:         "SUB",
	OpMul:         "MUL",
	OpDiv:         "DIV",
	OpMod:         "MOD",
	OpPow:         "POW",
	OpBitAnd:      "AND",
	OpBitOr:       "OR",
	OpBitXor:      "XOR",
	OpBitNot:      "BITNOT",
	OpShl:         "SHL",
	OpShr:         "SHR",
	OpNeg:         "NEG",
	OpAbs:         "ABS",
	OpNot:         "NOT",
	OpCmp:         "CMP",
	OpB:           "B",
	OpBIf:         "B_IF",
	OpCallFunc:    "CALL_FUNC",
	OpReturn:      "RETURN",
	OpMakeFunc:    "MAKE_FUNC",
	OpMakeArray:   "MAKE_ARRAY",
	OpMakeTuple:   "MAKE_TUPLE",
	OpMakeDict:    "MAKE_DICT",
	OpMakeStar:    "MAKE_STAR",
	OpSymtab:      "SYMTAB",
	OpPushHandler: "PUSH_HANDLER",
	OpPopHandler:  "POP_HANDLER",
	OpThrow:       "THROW",
	OpImport:      "IMPORT",
}

func (o Op) String() string {
	if int(o) < len(opNames) && opNames[o] != "" {
		return opNames[o]
	}
	return "<!undefined>"
}

// PtrKind selects the operand of LOAD/ASSIGN.
type PtrKind byte

const (
	PtrAP PtrKind = iota // argument pointer
	PtrFP                // frame pointer (locals)
	PtrCP                // closure pointer
	PtrSeek              // dynamic lookup by rodata string (arg2 = rodata idx)
	PtrGBL               // globals
	PtrTHIS              // receiver ("this")
)

var ptrNames = [...]string{
	PtrAP:   "AP",
	PtrFP:   "FP",
	PtrCP:   "CP",
	PtrSeek: "SEEK",
	PtrGBL:  "GBL",
	PtrTHIS: "THIS",
}

func (p PtrKind) String() string {
	if int(p) < len(ptrNames) {
		return ptrNames[p]
	}
	return "<!undefined>"
}

// AttrKind selects the operand of GETATTR/SETATTR.
type AttrKind byte

const (
	AttrConst AttrKind = iota // arg2 indexes rodata for the string key
	AttrStack                 // key is popped from the stack
)

var attrNames = [...]string{AttrConst: "ATTR_CONST", AttrStack: "ATTR_STACK"}

func (a AttrKind) String() string {
	if int(a) < len(attrNames) {
		return attrNames[a]
	}
	return "<!undefined>"
}

// FuncArg selects whether CALL_FUNC passes a parent/receiver.
type FuncArg byte

const (
	FuncArgNoParent FuncArg = iota
	FuncArgWithParent
)

var funcArgNames = [...]string{
	FuncArgNoParent:   "NO_PARENT",
	FuncArgWithParent: "WITH_PARENT",
}

func (f FuncArg) String() string {
	if int(f) < len(funcArgNames) {
		return funcArgNames[f]
	}
	return "<!undefined>"
}

// CmpOp selects the comparison performed by CMP.
type CmpOp byte

const (
	CmpEQ CmpOp = iota
	CmpNEQ
	CmpLT
	CmpLE
	CmpGT
	CmpGE
)

var cmpNames = [...]string{
	CmpEQ: "EQ", CmpNEQ: "NEQ", CmpLT: "LT", CmpLE: "LEQ", CmpGT: "GT", CmpGE: "GEQ",
}

func (c CmpOp) String() string {
	if int(c) < len(cmpNames) {
		return cmpNames[c]
	}
	return "<!undefined>"
}

// SymScope selects the scope SYMTAB registers a name into.
type SymScope byte

const (
	SymLocal SymScope = iota
	SymGlobal
	SymClosure
)

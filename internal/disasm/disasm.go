// Package disasm renders a bytecode.Xptr back into the text format
// spec §6 describes for the -d/-D CLI options: one ".start <uuid>"
// block per code object (the top-level script plus every nested
// function literal, recursively, depth-first through its rodata pool),
// an indented instruction listing, a trailing ".rodata" dump, and
// ".end".
//
// Grounded on original_source/src/disassemble.c: same block shape and
// per-opcode operand rendering, adapted from C's FILE*-based printf
// calls to an io.Writer and Go's %-verbs.
package disasm

import (
	"fmt"
	"io"
	"strconv"

	"evilcandy/internal/bytecode"
)

// Disassemble writes x (and every nested Xptr reachable through its
// rodata) to w. When verbose is set, the output additionally carries a
// file header, the .define block, and each block's source file and
// starting line (the CLI passes ecconfig.DisassemblyVerbose for both
// -d and -D).
func Disassemble(w io.Writer, x *bytecode.Xptr, sourceFile string, verbose bool) {
	if verbose {
		fmt.Fprintf(w, "# Disassembly for file %s\n\n", sourceFile)
		dumpDefines(w)
	}
	disassembleRecursive(w, x, verbose)
}

func dumpDefines(w io.Writer) {
	fmt.Fprintln(w, "# enumerations for GETATTR/SETATTR arg1")
	fmt.Fprintf(w, ".define %-24s%d\n", "ATTR_CONST", bytecode.AttrConst)
	fmt.Fprintf(w, ".define %-24s%d\n", "ATTR_STACK", bytecode.AttrStack)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "# enumerations for CALL_FUNC arg1")
	fmt.Fprintf(w, ".define %-24s%d\n", "NO_PARENT", bytecode.FuncArgNoParent)
	fmt.Fprintf(w, ".define %-24s%d\n", "WITH_PARENT", bytecode.FuncArgWithParent)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "# enumerations for CMP arg1")
	for _, c := range []bytecode.CmpOp{bytecode.CmpEQ, bytecode.CmpNEQ, bytecode.CmpLT, bytecode.CmpLE, bytecode.CmpGT, bytecode.CmpGE} {
		fmt.Fprintf(w, ".define %-24s%d\n", c, c)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "# enumerations for LOAD/ASSIGN arg1")
	for _, p := range []bytecode.PtrKind{bytecode.PtrAP, bytecode.PtrFP, bytecode.PtrCP, bytecode.PtrSeek, bytecode.PtrGBL, bytecode.PtrTHIS} {
		fmt.Fprintf(w, ".define %-24s%d\n", p, p)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w)
}

func disassembleRecursive(w io.Writer, x *bytecode.Xptr, verbose bool) {
	fmt.Fprintf(w, ".start <%s>\n", x.UUID)
	if verbose {
		fmt.Fprintf(w, "# in file %q\n", x.FileName)
		fmt.Fprintf(w, "# starting at line %d\n", x.FileLine)
	}

	for i := range x.Instr {
		disinstr(w, x, i)
	}

	fmt.Fprintln(w)
	dumpRodata(w, x)
	fmt.Fprintln(w, ".end")
	fmt.Fprintln(w)
	fmt.Fprintln(w)

	for _, v := range x.Rodata {
		if nested, ok := v.(*bytecode.Xptr); ok {
			disassembleRecursive(w, nested, verbose)
		}
	}
}

// labelAt returns the label index bound to instruction index ip, or -1
// if no label falls there — the inverse of bytecode.Xptr.Label's
// index->instruction mapping.
func labelAt(x *bytecode.Xptr, ip int) int {
	for i, target := range x.Label {
		if target == ip {
			return i
		}
	}
	return -1
}

func disinstr(w io.Writer, x *bytecode.Xptr, i int) {
	if label := labelAt(x, i); label >= 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%d:\n", label)
	}

	ii := x.Instr[i]
	head := fmt.Sprintf("%8s%-16s", "", ii.Code)

	switch ii.Code {
	case bytecode.OpGetAttr, bytecode.OpSetAttr:
		body := fmt.Sprintf("%s, %d", bytecode.AttrKind(ii.Arg1), ii.Arg2)
		fmt.Fprint(w, head, pad(body, 16))
		if bytecode.AttrKind(ii.Arg1) != bytecode.AttrStack {
			fmt.Fprint(w, "# ")
			printRodata(w, x, int(ii.Arg2))
		}
		fmt.Fprintln(w)

	case bytecode.OpAssign, bytecode.OpLoad:
		fmt.Fprintf(w, "%s%s, %d\n", head, bytecode.PtrKind(ii.Arg1), ii.Arg2)

	case bytecode.OpCallFunc:
		fmt.Fprintf(w, "%s%s, %d\n", head, bytecode.FuncArg(ii.Arg1), ii.Arg2)

	case bytecode.OpCmp:
		fmt.Fprintf(w, "%s%s, %d\n", head, bytecode.CmpOp(ii.Arg1), ii.Arg2)

	case bytecode.OpB, bytecode.OpBIf:
		body := fmt.Sprintf("%d, %d", ii.Arg1, ii.Arg2)
		fmt.Fprint(w, head, pad(body, 16))
		fmt.Fprintf(w, "# label %d\n", labelAt(x, i+int(ii.Arg2)+1))

	case bytecode.OpSymtab:
		body := fmt.Sprintf("%d, %d", ii.Arg1, ii.Arg2)
		fmt.Fprint(w, head, pad(body, 16))
		fmt.Fprint(w, "# ")
		printRodata(w, x, int(ii.Arg2))
		fmt.Fprintln(w)

	default:
		fmt.Fprintf(w, "%s%d, %d\n", head, ii.Arg1, ii.Arg2)
	}
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	buf := make([]byte, width-len(s))
	for i := range buf {
		buf[i] = ' '
	}
	return s + string(buf)
}

func printRodata(w io.Writer, x *bytecode.Xptr, i int) {
	if i < 0 || i >= len(x.Rodata) {
		fmt.Fprint(w, "<!undefined>")
		return
	}
	switch v := x.Rodata[i].(type) {
	case int64:
		fmt.Fprintf(w, "0x%016x", v)
	case float64:
		fmt.Fprint(w, strconv.FormatFloat(v, 'e', 8, 64))
	case string:
		fmt.Fprintf(w, "%q", v)
	case []byte:
		fmt.Fprintf(w, "%q", v)
	case *bytecode.Xptr:
		fmt.Fprintf(w, "<%s>", v.UUID)
	default:
		fmt.Fprint(w, "<!undefined>")
	}
}

func dumpRodata(w io.Writer, x *bytecode.Xptr) {
	for i := range x.Rodata {
		fmt.Fprint(w, ".rodata ")
		printRodata(w, x, i)
		fmt.Fprintln(w)
	}
}

// Package assembler is the recursive-descent parser + code generator
// described in spec §4.4: it consumes a lexer.Lexer directly and
// emits one bytecode.Xptr per function literal (plus one for the
// top-level script), with no separate AST stage — the teacher's
// parser+compiler split (internal/parser + internal/compiler) is
// collapsed into a single pass here because the source language
// builds its Xptr incrementally as it recognizes each construct,
// the same way the teacher's compiler.go walks a pre-built AST one
// node at a time (kept: one function per node kind; replaced: the
// node is a token stream position, not an *ast.Expr).
package assembler

import "evilcandy/internal/bytecode"

// funcScope tracks one function's (or the top-level script's) local
// variable slots and closure captures while it is being assembled.
type funcScope struct {
	parent *funcScope
	x      *bytecode.Xptr

	params   map[string]int // name -> AP slot
	locals   map[string]int // name -> FP slot
	nextSlot int

	closureIdx map[string]int // name -> CP slot in this func's Clov

	isTop bool

	breakLabels    []int
	continueLabels []int

	// pending holds branch instruction indices waiting on a label that
	// hasn't been bound yet (break/continue may be parsed structurally
	// before the label they target, e.g. a loop's end or a do-while's
	// condition); bindLabel flushes and patches them.
	pending map[int][]int
}

func newFuncScope(parent *funcScope, x *bytecode.Xptr, isTop bool) *funcScope {
	return &funcScope{
		parent:     parent,
		x:          x,
		params:     map[string]int{},
		locals:     map[string]int{},
		closureIdx: map[string]int{},
		isTop:      isTop,
	}
}

func (fs *funcScope) declareParam(name string) int {
	idx := len(fs.params)
	fs.params[name] = idx
	return idx
}

func (fs *funcScope) declareLocal(name string) int {
	idx := fs.nextSlot
	fs.nextSlot++
	fs.locals[name] = idx
	return idx
}

// varRef is the resolved location of a name reference, ready to drive
// a LOAD/ASSIGN instruction pair.
type varRef struct {
	kind bytecode.PtrKind
	slot int    // AP/FP/CP slot, when kind != PtrGBL
	name string // global name, when kind == PtrGBL
}

// resolve looks up name starting at fs, capturing it through enclosing
// function scopes as a closure variable when it is found in an
// ancestor's locals/params (or already captured there). Falls back to
// a global reference when no enclosing scope declares it. Names the
// top-level script declares are stored as globals, so they resolve to
// GBL there; a nested function still captures them, taking the value
// the global holds when its literal is evaluated.
func (a *Assembler) resolve(fs *funcScope, name string) varRef {
	if idx, ok := fs.params[name]; ok {
		return varRef{kind: bytecode.PtrAP, slot: idx}
	}
	if idx, ok := fs.locals[name]; ok {
		if fs.isTop {
			return varRef{kind: bytecode.PtrGBL, name: name}
		}
		return varRef{kind: bytecode.PtrFP, slot: idx}
	}
	if idx, ok := fs.closureIdx[name]; ok {
		return varRef{kind: bytecode.PtrCP, slot: idx}
	}
	if fs.parent == nil {
		return varRef{kind: bytecode.PtrGBL, name: name}
	}
	parentRef := a.resolve(fs.parent, name)
	if _, declaredAtTop := fs.parent.locals[name]; parentRef.kind == bytecode.PtrGBL && !(fs.parent.isTop && declaredAtTop) {
		return parentRef
	}
	// name lives in an ancestor function: capture it as a closure
	// variable of fs, in the order first referenced.
	idx := len(fs.x.ClosureNames)
	fs.x.ClosureNames = append(fs.x.ClosureNames, name)
	fs.closureIdx[name] = idx
	return varRef{kind: bytecode.PtrCP, slot: idx}
}

func (a *Assembler) emitLoad(fs *funcScope, ref varRef) {
	if ref.kind == bytecode.PtrGBL {
		idx := fs.x.AddConst(ref.name)
		fs.x.Emit(bytecode.OpLoad, byte(bytecode.PtrGBL), int16(idx))
		return
	}
	fs.x.Emit(bytecode.OpLoad, byte(ref.kind), int16(ref.slot))
}

func (a *Assembler) emitAssign(fs *funcScope, ref varRef) {
	if ref.kind == bytecode.PtrGBL {
		idx := fs.x.AddConst(ref.name)
		fs.x.Emit(bytecode.OpAssign, byte(bytecode.PtrGBL), int16(idx))
		return
	}
	fs.x.Emit(bytecode.OpAssign, byte(ref.kind), int16(ref.slot))
}

package assembler

import (
	"evilcandy/internal/bytecode"
	"evilcandy/internal/ecconfig"
	"evilcandy/internal/ecerr"
	"evilcandy/internal/lexer"
)

// Assembler drives one lexer.Lexer to completion, producing the
// top-level Xptr (and, recursively, one nested Xptr per function
// literal it parses).
type Assembler struct {
	lx       *lexer.Lexer
	file     string
	cur      lexer.Token
	depth    int // recursion depth, spec §4.5 "Recursion safety"
	handlers int // nesting depth of try blocks, for PUSH_HANDLER/POP_HANDLER balance
}

// Assemble lexes and assembles an entire source file into its
// top-level Xptr.
func Assemble(file, source string) (x *bytecode.Xptr, err error) {
	a := &Assembler{lx: lexer.New(file, source), file: file}
	if err := a.advance(); err != nil {
		return nil, err
	}
	fs := newFuncScope(nil, bytecode.NewXptr(file, a.cur.Line, "<script>"), true)
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*ecerr.Error); ok {
				err = e
				return
			}
			panic(r)
		}
	}()
	for a.cur.Type != lexer.EOF {
		a.statement(fs)
	}
	fs.x.Emit(bytecode.OpPushNull, 0, 0)
	fs.x.Emit(bytecode.OpReturn, 0, 0)
	fs.x.NumLocals = fs.nextSlot
	return fs.x, nil
}

func (a *Assembler) advance() error {
	t, err := a.lx.Next()
	if err != nil {
		return err
	}
	a.cur = t
	return nil
}

// fail raises a syntax error via panic/recover so deeply nested parse
// functions don't need to thread errors through every return.
func (a *Assembler) fail(format string, args ...interface{}) {
	panic(ecerr.New(ecerr.SyntaxError, format, args...))
}

func (a *Assembler) next() lexer.Token {
	t := a.cur
	if err := a.advance(); err != nil {
		panic(err)
	}
	return t
}

func (a *Assembler) check(tt lexer.TokenType) bool { return a.cur.Type == tt }

func (a *Assembler) accept(tt lexer.TokenType) bool {
	if a.cur.Type == tt {
		a.next()
		return true
	}
	return false
}

func (a *Assembler) expect(tt lexer.TokenType) lexer.Token {
	if a.cur.Type != tt {
		a.fail("line %d: expected %s, got %s", a.cur.Line, tt, a.cur.Type)
	}
	return a.next()
}

func (a *Assembler) enter() {
	a.depth++
	if a.depth > ecconfig.RecursionCeiling {
		panic(ecerr.New(ecerr.RecursionError, "assembler recursion limit exceeded"))
	}
}

func (a *Assembler) leave() { a.depth-- }

// newLabel/bindLabel/patch are thin forwards to the current
// function's Xptr, kept here so statement/expression code reads
// uniformly through the Assembler receiver. A branch to a label bound
// earlier (backward, e.g. a loop condition) can be patched right
// after Emit; a branch to a label bound later (forward, e.g. an "if"
// consequent) must be patched only after the matching bindLabel call.
func (a *Assembler) newLabel(fs *funcScope) int { return fs.x.NewLabel() }

// bindLabel binds l to the next instruction and flushes any branches
// that were deferred to it via deferPatch.
func (a *Assembler) bindLabel(fs *funcScope, l int) {
	fs.x.BindLabel(l)
	for _, ip := range fs.pending[l] {
		a.patchAt(fs, ip, l)
	}
	delete(fs.pending, l)
}

func (a *Assembler) patchAt(fs *funcScope, ip, l int) { fs.x.Patch(ip, l) }

// deferPatch patches ip against label l immediately if l is already
// bound (e.g. a while/for loop's continue target, bound before its
// body is parsed), otherwise registers it to be patched once l is
// bound later (e.g. break's loop-end label, or do-while's continue
// target, both bound after the body).
func (a *Assembler) deferPatch(fs *funcScope, ip, l int) {
	if fs.x.Label[l] >= 0 {
		a.patchAt(fs, ip, l)
		return
	}
	if fs.pending == nil {
		fs.pending = map[int][]int{}
	}
	fs.pending[l] = append(fs.pending[l], ip)
}

// emitBranch emits a branch instruction with a placeholder offset and
// returns its instruction index for a later patchAt call.
func (a *Assembler) emitBranch(fs *funcScope, op bytecode.Op) int {
	return fs.x.Emit(op, 0, 0)
}

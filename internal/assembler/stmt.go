package assembler

import (
	"evilcandy/internal/bytecode"
	"evilcandy/internal/lexer"
)

// statement parses and emits exactly one statement, leaving the value
// stack exactly as deep as it found it.
func (a *Assembler) statement(fs *funcScope) {
	a.enter()
	defer a.leave()
	switch a.cur.Type {
	case lexer.LBRACE:
		a.block(fs)
	case lexer.PRIVATE:
		a.next()
		a.varDecl(fs)
	case lexer.LET, lexer.CONST:
		a.varDecl(fs)
	case lexer.IF:
		a.ifStmt(fs)
	case lexer.WHILE:
		a.whileStmt(fs)
	case lexer.DO:
		a.doWhileStmt(fs)
	case lexer.FOR:
		a.forStmt(fs)
	case lexer.BREAK:
		a.next()
		if len(fs.breakLabels) == 0 {
			a.fail("line %d: break outside of a loop", a.cur.Line)
		}
		ip := a.emitBranch(fs, bytecode.OpB)
		top := len(fs.breakLabels) - 1
		a.deferPatch(fs, ip, fs.breakLabels[top])
		a.expect(lexer.SEMI)
	case lexer.CONTINUE:
		a.next()
		if len(fs.continueLabels) == 0 {
			a.fail("line %d: continue outside of a loop", a.cur.Line)
		}
		ip := a.emitBranch(fs, bytecode.OpB)
		top := len(fs.continueLabels) - 1
		a.deferPatch(fs, ip, fs.continueLabels[top])
		a.expect(lexer.SEMI)
	case lexer.RETURN:
		a.next()
		if a.cur.Type == lexer.SEMI {
			fs.x.Emit(bytecode.OpPushNull, 0, 0)
		} else {
			a.expression(fs)
		}
		fs.x.Emit(bytecode.OpReturn, 0, 0)
		a.expect(lexer.SEMI)
	case lexer.TRY:
		a.tryStmt(fs)
	case lexer.FUNCTION:
		a.funcDecl(fs)
	case lexer.IMPORT:
		a.importStmt(fs)
	case lexer.SEMI:
		a.next()
	default:
		a.expression(fs)
		fs.x.Emit(bytecode.OpPop, 0, 0)
		a.expect(lexer.SEMI)
	}
}

func (a *Assembler) block(fs *funcScope) {
	a.expect(lexer.LBRACE)
	for a.cur.Type != lexer.RBRACE && a.cur.Type != lexer.EOF {
		a.statement(fs)
	}
	a.expect(lexer.RBRACE)
}

// varDecl parses `let`/`const` NAME ('=' expr)? (',' NAME ('=' expr)?)* ';'.
// const is tracked only for the assembler's own bookkeeping; nothing in
// the bytecode distinguishes a const slot from a let slot once the
// value is stored (spec does not define a runtime write-barrier).
func (a *Assembler) varDecl(fs *funcScope) {
	a.next() // LET or CONST
	for {
		name := a.expect(lexer.IDENT).Text
		slot := fs.declareLocal(name)
		ref := varRef{kind: bytecode.PtrFP, slot: slot}
		if fs.isTop {
			ref = varRef{kind: bytecode.PtrGBL, name: name}
		}
		if a.accept(lexer.ASSIGN) {
			a.expression(fs)
		} else {
			fs.x.Emit(bytecode.OpPushNull, 0, 0)
		}
		a.emitAssign(fs, ref)
		if !a.accept(lexer.COMMA) {
			break
		}
	}
	a.expect(lexer.SEMI)
}

func (a *Assembler) ifStmt(fs *funcScope) {
	a.next()
	a.expect(lexer.LPAREN)
	a.expression(fs)
	a.expect(lexer.RPAREN)
	elseLabel := a.newLabel(fs)
	ip := a.emitBranch(fs, bytecode.OpBIf) // arg1 = 0: branch if false
	a.statement(fs)
	if a.cur.Type == lexer.ELSE {
		endLabel := a.newLabel(fs)
		endIp := a.emitBranch(fs, bytecode.OpB)
		a.bindLabel(fs, elseLabel)
		a.patchAt(fs, ip, elseLabel)
		a.next()
		a.statement(fs)
		a.bindLabel(fs, endLabel)
		a.patchAt(fs, endIp, endLabel)
	} else {
		a.bindLabel(fs, elseLabel)
		a.patchAt(fs, ip, elseLabel)
	}
}

func (a *Assembler) whileStmt(fs *funcScope) {
	a.next()
	top := a.newLabel(fs)
	a.bindLabel(fs, top)
	a.expect(lexer.LPAREN)
	a.expression(fs)
	a.expect(lexer.RPAREN)
	end := a.newLabel(fs)
	ip := a.emitBranch(fs, bytecode.OpBIf)
	fs.breakLabels = append(fs.breakLabels, end)
	fs.continueLabels = append(fs.continueLabels, top)
	a.statement(fs)
	fs.breakLabels = fs.breakLabels[:len(fs.breakLabels)-1]
	fs.continueLabels = fs.continueLabels[:len(fs.continueLabels)-1]
	backIp := a.emitBranch(fs, bytecode.OpB)
	a.patchAt(fs, backIp, top)
	a.bindLabel(fs, end)
	a.patchAt(fs, ip, end)
}

func (a *Assembler) doWhileStmt(fs *funcScope) {
	a.next()
	top := a.newLabel(fs)
	a.bindLabel(fs, top)
	end := a.newLabel(fs)
	cont := a.newLabel(fs)
	fs.breakLabels = append(fs.breakLabels, end)
	fs.continueLabels = append(fs.continueLabels, cont)
	a.statement(fs)
	fs.breakLabels = fs.breakLabels[:len(fs.breakLabels)-1]
	fs.continueLabels = fs.continueLabels[:len(fs.continueLabels)-1]
	a.expect(lexer.WHILE)
	a.bindLabel(fs, cont)
	a.expect(lexer.LPAREN)
	a.expression(fs)
	a.expect(lexer.RPAREN)
	a.expect(lexer.SEMI)
	ip := fs.x.Emit(bytecode.OpBIf, 1, 0) // arg1 = 1: branch if true, loop again
	a.patchAt(fs, ip, top)
	a.bindLabel(fs, end)
}

func (a *Assembler) forStmt(fs *funcScope) {
	a.next()
	a.expect(lexer.LPAREN)
	if a.cur.Type == lexer.LET || a.cur.Type == lexer.CONST {
		a.varDeclNoSemi(fs)
	} else if a.cur.Type != lexer.SEMI {
		a.expression(fs)
		fs.x.Emit(bytecode.OpPop, 0, 0)
	}
	a.expect(lexer.SEMI)

	top := a.newLabel(fs)
	a.bindLabel(fs, top)
	end := a.newLabel(fs)
	var condIp int
	hasCond := a.cur.Type != lexer.SEMI
	if hasCond {
		a.expression(fs)
		condIp = a.emitBranch(fs, bytecode.OpBIf)
	}
	a.expect(lexer.SEMI)

	bodyLabel := a.newLabel(fs)
	skipPostIp := a.emitBranch(fs, bytecode.OpB)
	postLabel := a.newLabel(fs)
	a.bindLabel(fs, postLabel)
	if a.cur.Type != lexer.RPAREN {
		a.expression(fs)
		fs.x.Emit(bytecode.OpPop, 0, 0)
	}
	backIp := a.emitBranch(fs, bytecode.OpB)
	a.patchAt(fs, backIp, top)
	a.expect(lexer.RPAREN)

	a.bindLabel(fs, bodyLabel)
	a.patchAt(fs, skipPostIp, bodyLabel)
	fs.breakLabels = append(fs.breakLabels, end)
	fs.continueLabels = append(fs.continueLabels, postLabel)
	a.statement(fs)
	fs.breakLabels = fs.breakLabels[:len(fs.breakLabels)-1]
	fs.continueLabels = fs.continueLabels[:len(fs.continueLabels)-1]
	toPostIp := a.emitBranch(fs, bytecode.OpB)
	a.patchAt(fs, toPostIp, postLabel)

	a.bindLabel(fs, end)
	if hasCond {
		a.patchAt(fs, condIp, end)
	}
}

// varDeclNoSemi is varDecl without the trailing required SEMI, for the
// for(init; ...) clause, which owns the semicolon itself.
func (a *Assembler) varDeclNoSemi(fs *funcScope) {
	a.next()
	for {
		name := a.expect(lexer.IDENT).Text
		slot := fs.declareLocal(name)
		ref := varRef{kind: bytecode.PtrFP, slot: slot}
		if fs.isTop {
			ref = varRef{kind: bytecode.PtrGBL, name: name}
		}
		if a.accept(lexer.ASSIGN) {
			a.expression(fs)
		} else {
			fs.x.Emit(bytecode.OpPushNull, 0, 0)
		}
		a.emitAssign(fs, ref)
		if !a.accept(lexer.COMMA) {
			break
		}
	}
}

// tryStmt compiles try/catch/finally to PUSH_HANDLER/POP_HANDLER
// bracketing per spec §4.5: the handler's protected region begins
// right after PUSH_HANDLER and ends at POP_HANDLER; a THROW inside
// unwinds the value stack to the depth recorded when the handler was
// pushed and branches to the handler label with the exception value on
// top of the stack.
func (a *Assembler) tryStmt(fs *funcScope) {
	a.next()
	a.handlers++
	handlerLabel := a.newLabel(fs)
	pushIp := a.emitBranch(fs, bytecode.OpPushHandler)
	a.block(fs)
	fs.x.Emit(bytecode.OpPopHandler, 0, 0)
	endLabel := a.newLabel(fs)
	endIp := a.emitBranch(fs, bytecode.OpB)

	a.bindLabel(fs, handlerLabel)
	a.patchAt(fs, pushIp, handlerLabel)
	a.expect(lexer.CATCH)
	a.expect(lexer.LPAREN)
	excName := a.expect(lexer.IDENT).Text
	a.expect(lexer.RPAREN)
	slot := fs.declareLocal(excName)
	ref := varRef{kind: bytecode.PtrFP, slot: slot}
	if fs.isTop {
		ref = varRef{kind: bytecode.PtrGBL, name: excName}
	}
	a.emitAssign(fs, ref)
	a.block(fs)
	a.handlers--

	a.bindLabel(fs, endLabel)
	a.patchAt(fs, endIp, endLabel)

	if a.cur.Type == lexer.FINALLY {
		a.next()
		a.block(fs)
	}
}

func (a *Assembler) funcDecl(fs *funcScope) {
	a.next()
	name := a.expect(lexer.IDENT).Text
	node := a.functionLiteral(fs, name, false)
	a.load(fs, node)
	slot := fs.declareLocal(name)
	ref := varRef{kind: bytecode.PtrFP, slot: slot}
	if fs.isTop {
		ref = varRef{kind: bytecode.PtrGBL, name: name}
	}
	a.emitAssign(fs, ref)
}

// functionLiteral parses a parameter list and body (a brace-delimited
// block for `function`, a single trailing expression for a lambda),
// assembling them into a new nested Xptr, then emits the closure
// capture pushes and MAKE_FUNC in the enclosing scope fs.
func (a *Assembler) functionLiteral(fs *funcScope, name string, isLambda bool) exprNode {
	line := a.cur.Line
	x := bytecode.NewXptr(a.file, line, name)
	inner := newFuncScope(fs, x, false)

	a.expect(lexer.LPAREN)
	firstOptional := -1
	for a.cur.Type != lexer.RPAREN {
		if a.cur.Type == lexer.STAR {
			a.next()
			pname := a.expect(lexer.IDENT).Text
			idx := inner.declareParam(pname)
			x.ParamName = append(x.ParamName, pname)
			x.NumParams = idx + 1
			x.Variadic = true
			break
		}
		if a.cur.Type == lexer.POW {
			a.next()
			pname := a.expect(lexer.IDENT).Text
			idx := inner.declareParam(pname)
			x.ParamName = append(x.ParamName, pname)
			x.NumParams = idx + 1
			x.KwIndex = idx
			break
		}
		pname := a.expect(lexer.IDENT).Text
		idx := inner.declareParam(pname)
		x.ParamName = append(x.ParamName, pname)
		x.NumParams = idx + 1
		if a.accept(lexer.ASSIGN) {
			val := a.literalConst()
			for len(x.Defaults) <= idx {
				x.Defaults = append(x.Defaults, nil)
			}
			x.Defaults[idx] = val
			if firstOptional < 0 {
				firstOptional = idx
			}
		}
		if !a.accept(lexer.COMMA) {
			break
		}
	}
	a.expect(lexer.RPAREN)
	if firstOptional < 0 {
		x.OptIndex = x.NumParams
	} else {
		x.OptIndex = firstOptional
	}

	if isLambda {
		a.expression(inner)
		x.Emit(bytecode.OpReturn, 0, 0)
	} else {
		a.block(inner)
		x.Emit(bytecode.OpPushNull, 0, 0)
		x.Emit(bytecode.OpReturn, 0, 0)
	}
	x.NumLocals = inner.nextSlot

	for _, cname := range x.ClosureNames {
		ref := a.resolve(fs, cname)
		a.emitLoad(fs, ref)
	}
	idx := fs.x.AddConst(x)
	fs.x.Emit(bytecode.OpMakeFunc, 0, int16(idx))
	return exprNode{kind: ekValue}
}

// literalConst parses a bare literal for use as a parameter default;
// defaults must be compile-time constants since Xptr.Defaults holds
// plain Go values, not bytecode.
func (a *Assembler) literalConst() interface{} {
	t := a.cur
	switch t.Type {
	case lexer.INT:
		a.next()
		return t.IVal
	case lexer.FLOAT:
		a.next()
		return t.FVal
	case lexer.STRING:
		a.next()
		return t.Text
	case lexer.TRUE:
		a.next()
		return true
	case lexer.FALSE:
		a.next()
		return false
	case lexer.NULL:
		a.next()
		return nil
	case lexer.MINUS:
		a.next()
		v := a.literalConst()
		switch n := v.(type) {
		case int64:
			return -n
		case float64:
			return -n
		}
		a.fail("line %d: invalid default value", t.Line)
	}
	a.fail("line %d: parameter defaults must be literal constants", t.Line)
	panic("unreachable")
}

func (a *Assembler) importStmt(fs *funcScope) {
	a.next()
	var modName string
	if a.cur.Type == lexer.STRING {
		modName = a.next().Text
	} else {
		modName = a.expect(lexer.IDENT).Text
	}
	idx := fs.x.AddConst(modName)
	fs.x.Emit(bytecode.OpImport, 0, int16(idx))
	slot := fs.declareLocal(modName)
	ref := varRef{kind: bytecode.PtrFP, slot: slot}
	if fs.isTop {
		ref = varRef{kind: bytecode.PtrGBL, name: modName}
	}
	a.emitAssign(fs, ref)
	a.expect(lexer.SEMI)
}

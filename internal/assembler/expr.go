package assembler

import (
	"evilcandy/internal/bytecode"
	"evilcandy/internal/lexer"
)

type exprKind int

const (
	ekValue exprKind = iota // already fully pushed; nothing pending
	ekVar
	ekAttr  // object already pushed; attrIdx is a rodata string index
	ekIndex // object + key already pushed
)

type exprNode struct {
	kind    exprKind
	ref     varRef
	attrIdx int
}

// load finishes a pending node into a plain value on the stack.
func (a *Assembler) load(fs *funcScope, n exprNode) {
	switch n.kind {
	case ekValue:
		// already on stack
	case ekVar:
		a.emitLoad(fs, n.ref)
	case ekAttr:
		fs.x.Emit(bytecode.OpGetAttr, byte(bytecode.AttrConst), int16(n.attrIdx))
	case ekIndex:
		fs.x.Emit(bytecode.OpGetItem, 0, 0)
	}
}

// store consumes a pending value already on top of the stack (pushed
// by the caller) and writes it into n's location. n's object/key (for
// ekAttr/ekIndex) were pushed when n was produced, before the value.
func (a *Assembler) store(fs *funcScope, n exprNode) {
	switch n.kind {
	case ekVar:
		a.emitAssign(fs, n.ref)
	case ekAttr:
		fs.x.Emit(bytecode.OpSetAttr, byte(bytecode.AttrConst), int16(n.attrIdx))
	case ekIndex:
		fs.x.Emit(bytecode.OpSetItem, 0, 0)
	default:
		a.fail("line %d: invalid assignment target", a.cur.Line)
	}
}

// Expression parses a full expression, leaving exactly one value on
// the stack.
func (a *Assembler) Expression(fs *funcScope) { a.expression(fs) }

func (a *Assembler) expression(fs *funcScope) {
	n := a.assignOrExpr(fs)
	a.load(fs, n)
}

var compoundOps = map[lexer.TokenType]bytecode.Op{
	lexer.PLUSEQ:    bytecode.OpAdd,
	lexer.MINUSEQ:   bytecode.OpSub,
	lexer.STAREQ:    bytecode.OpMul,
	lexer.SLASHEQ:   bytecode.OpDiv,
	lexer.PERCENTEQ: bytecode.OpMod,
	lexer.CARETEQ:   bytecode.OpBitXor,
	lexer.SHLEQ:     bytecode.OpShl,
	lexer.SHREQ:     bytecode.OpShr,
	lexer.PIPEEQ:    bytecode.OpBitOr,
	lexer.AMPEQ:     bytecode.OpBitAnd,
}

func (a *Assembler) assignOrExpr(fs *funcScope) exprNode {
	n := a.binary(fs, 0)
	if a.cur.Type == lexer.ASSIGN {
		if n.kind == ekValue {
			a.fail("line %d: invalid assignment target", a.cur.Line)
		}
		a.next()
		a.expression(fs)
		a.store(fs, n)
		// the store consumed the value; an assignment's own value is
		// null, so the expression still leaves exactly one value.
		fs.x.Emit(bytecode.OpPushNull, 0, 0)
		return exprNode{kind: ekValue}
	}
	if op, ok := compoundOps[a.cur.Type]; ok {
		if n.kind != ekVar {
			a.fail("line %d: compound assignment is only supported on plain variables", a.cur.Line)
		}
		a.next()
		a.emitLoad(fs, n.ref)
		a.expression(fs)
		fs.x.Emit(op, 0, 0)
		a.emitAssign(fs, n.ref)
		fs.x.Emit(bytecode.OpPushNull, 0, 0)
		return exprNode{kind: ekValue}
	}
	return n
}

// precedence table for left-associative binary operators; ** is
// handled separately (right-associative, tighter than unary minus on
// its left operand per usual convention... kept simple: above
// multiplicative, parsed right-assoc explicitly in power()).
var binPrec = map[lexer.TokenType]int{
	lexer.OROR:    1,
	lexer.ANDAND:  2,
	lexer.PIPE:    3,
	lexer.CARET:   4,
	lexer.AMP:     5,
	lexer.EQ:      6,
	lexer.NE:      6,
	lexer.LT:      7,
	lexer.GT:      7,
	lexer.LE:      7,
	lexer.GE:      7,
	lexer.SHL:     8,
	lexer.SHR:     8,
	lexer.PLUS:    9,
	lexer.MINUS:   9,
	lexer.STAR:    10,
	lexer.SLASH:   10,
	lexer.PERCENT: 10,
}

var cmpOps = map[lexer.TokenType]bytecode.CmpOp{
	lexer.EQ: bytecode.CmpEQ, lexer.NE: bytecode.CmpNEQ,
	lexer.LT: bytecode.CmpLT, lexer.LE: bytecode.CmpLE,
	lexer.GT: bytecode.CmpGT, lexer.GE: bytecode.CmpGE,
}

var arithOps = map[lexer.TokenType]bytecode.Op{
	lexer.PLUS: bytecode.OpAdd, lexer.MINUS: bytecode.OpSub,
	lexer.STAR: bytecode.OpMul, lexer.SLASH: bytecode.OpDiv, lexer.PERCENT: bytecode.OpMod,
	lexer.PIPE: bytecode.OpBitOr, lexer.CARET: bytecode.OpBitXor, lexer.AMP: bytecode.OpBitAnd,
	lexer.SHL: bytecode.OpShl, lexer.SHR: bytecode.OpShr,
}

func (a *Assembler) binary(fs *funcScope, minPrec int) exprNode {
	a.enter()
	defer a.leave()
	left := a.unary(fs)
	for {
		prec, ok := binPrec[a.cur.Type]
		if !ok || prec < minPrec {
			return left
		}
		op := a.next().Type
		if op == lexer.ANDAND || op == lexer.OROR {
			a.load(fs, left)
			l := a.newLabel(fs)
			fs.x.Emit(bytecode.OpDup, 0, 0)
			var cond byte
			if op == lexer.OROR {
				cond = 1
			}
			ip := fs.x.Emit(bytecode.OpBIf, cond, 0)
			a.deferPatch(fs, ip, l)
			fs.x.Emit(bytecode.OpPop, 0, 0)
			right := a.binary(fs, prec+1)
			a.load(fs, right)
			a.bindLabel(fs, l)
			left = exprNode{kind: ekValue}
			continue
		}
		a.load(fs, left)
		right := a.binary(fs, prec+1)
		a.load(fs, right)
		if cop, ok := cmpOps[op]; ok {
			fs.x.Emit(bytecode.OpCmp, byte(cop), 0)
		} else if aop, ok := arithOps[op]; ok {
			fs.x.Emit(aop, 0, 0)
		}
		left = exprNode{kind: ekValue}
	}
}

func (a *Assembler) unary(fs *funcScope) exprNode {
	a.enter()
	defer a.leave()
	switch a.cur.Type {
	case lexer.MINUS:
		a.next()
		n := a.unary(fs)
		a.load(fs, n)
		fs.x.Emit(bytecode.OpNeg, 0, 0)
		return exprNode{kind: ekValue}
	case lexer.BANG:
		a.next()
		n := a.unary(fs)
		a.load(fs, n)
		fs.x.Emit(bytecode.OpNot, 0, 0)
		return exprNode{kind: ekValue}
	case lexer.TILDE:
		a.next()
		n := a.unary(fs)
		a.load(fs, n)
		fs.x.Emit(bytecode.OpBitNot, 0, 0)
		return exprNode{kind: ekValue}
	case lexer.INC, lexer.DEC:
		op := a.next().Type
		n := a.unary(fs)
		if n.kind != ekVar {
			a.fail("line %d: ++/-- target must be a variable", a.cur.Line)
		}
		a.emitLoad(fs, n.ref)
		idx := fs.x.AddConst(int64(1))
		fs.x.Emit(bytecode.OpPushConst, 0, int16(idx))
		if op == lexer.INC {
			fs.x.Emit(bytecode.OpAdd, 0, 0)
		} else {
			fs.x.Emit(bytecode.OpSub, 0, 0)
		}
		fs.x.Emit(bytecode.OpDup, 0, 0)
		a.emitAssign(fs, n.ref)
		return exprNode{kind: ekValue}
	}
	return a.power(fs)
}

// power handles right-associative **, binding tighter than unary
// minus's operand parsing of postfix chains but looser than postfix
// itself.
func (a *Assembler) power(fs *funcScope) exprNode {
	base := a.postfix(fs)
	if a.cur.Type == lexer.POW {
		a.next()
		a.load(fs, base)
		rhs := a.unary(fs)
		a.load(fs, rhs)
		fs.x.Emit(bytecode.OpPow, 0, 0)
		return exprNode{kind: ekValue}
	}
	return base
}

func (a *Assembler) postfix(fs *funcScope) exprNode {
	n := a.primary(fs)
	for {
		switch a.cur.Type {
		case lexer.DOT:
			a.next()
			name := a.expect(lexer.IDENT).Text
			a.load(fs, n)
			idx := fs.x.AddConst(name)
			n = exprNode{kind: ekAttr, attrIdx: idx}
		case lexer.LBRACKET:
			a.next()
			a.load(fs, n)
			n = a.indexOrSlice(fs)
		case lexer.LPAREN:
			a.next()
			a.load(fs, n)
			n = a.callArgs(fs)
		default:
			return n
		}
	}
}

// indexOrSlice parses the inside of `[...]` after the object has
// already been pushed; distinguishes `[i]` from `[a:b:c]`.
func (a *Assembler) indexOrSlice(fs *funcScope) exprNode {
	hasStart := a.cur.Type != lexer.COLON
	if hasStart && a.cur.Type != lexer.RBRACKET {
		a.expression(fs)
	}
	if a.cur.Type != lexer.COLON {
		a.expect(lexer.RBRACKET)
		return exprNode{kind: ekIndex}
	}
	if !hasStart {
		idx := fs.x.AddConst(nil)
		fs.x.Emit(bytecode.OpPushConst, 0, int16(idx))
	}
	a.next() // ':'
	if a.cur.Type != lexer.COLON && a.cur.Type != lexer.RBRACKET {
		a.expression(fs)
	} else {
		idx := fs.x.AddConst(nil)
		fs.x.Emit(bytecode.OpPushConst, 0, int16(idx))
	}
	if a.cur.Type == lexer.COLON {
		a.next()
		if a.cur.Type != lexer.RBRACKET {
			a.expression(fs)
		} else {
			idx := fs.x.AddConst(int64(1))
			fs.x.Emit(bytecode.OpPushConst, 0, int16(idx))
		}
	} else {
		idx := fs.x.AddConst(int64(1))
		fs.x.Emit(bytecode.OpPushConst, 0, int16(idx))
	}
	a.expect(lexer.RBRACKET)
	fs.x.Emit(bytecode.OpGetSlice, 0, 0)
	return exprNode{kind: ekValue}
}

// callArgs parses `(args)` after the callee has already been pushed;
// a `*expr` argument is wrapped with MAKE_STAR for spread-expansion by
// the VM's call marshalling (spec §4.5 rule 3).
func (a *Assembler) callArgs(fs *funcScope) exprNode {
	argc := 0
	if a.cur.Type != lexer.RPAREN {
		for {
			if a.cur.Type == lexer.STAR {
				a.next()
				a.expression(fs)
				fs.x.Emit(bytecode.OpMakeStar, 0, 0)
			} else {
				a.expression(fs)
			}
			argc++
			if !a.accept(lexer.COMMA) {
				break
			}
			if a.cur.Type == lexer.RPAREN {
				break
			}
		}
	}
	a.expect(lexer.RPAREN)
	fs.x.Emit(bytecode.OpCallFunc, byte(bytecode.FuncArgNoParent), int16(argc))
	return exprNode{kind: ekValue}
}

func (a *Assembler) primary(fs *funcScope) exprNode {
	a.enter()
	defer a.leave()
	t := a.cur
	switch t.Type {
	case lexer.INT:
		a.next()
		idx := fs.x.AddConst(t.IVal)
		fs.x.Emit(bytecode.OpPushConst, 0, int16(idx))
		return exprNode{kind: ekValue}
	case lexer.FLOAT:
		a.next()
		idx := fs.x.AddConst(t.FVal)
		fs.x.Emit(bytecode.OpPushConst, 0, int16(idx))
		return exprNode{kind: ekValue}
	case lexer.STRING:
		a.next()
		idx := fs.x.AddConst(t.Text)
		fs.x.Emit(bytecode.OpPushConst, 0, int16(idx))
		return exprNode{kind: ekValue}
	case lexer.BYTES:
		a.next()
		idx := fs.x.AddConst([]byte(t.Text))
		fs.x.Emit(bytecode.OpPushConst, 0, int16(idx))
		return exprNode{kind: ekValue}
	case lexer.TRUE:
		a.next()
		fs.x.Emit(bytecode.OpPushTrue, 0, 0)
		return exprNode{kind: ekValue}
	case lexer.FALSE:
		a.next()
		fs.x.Emit(bytecode.OpPushFalse, 0, 0)
		return exprNode{kind: ekValue}
	case lexer.NULL:
		a.next()
		fs.x.Emit(bytecode.OpPushNull, 0, 0)
		return exprNode{kind: ekValue}
	case lexer.THIS:
		a.next()
		fs.x.Emit(bytecode.OpLoad, byte(bytecode.PtrTHIS), 0)
		return exprNode{kind: ekValue}
	case lexer.IDENT, lexer.IMPORT:
		a.next()
		ref := a.resolve(fs, t.Text)
		return exprNode{kind: ekVar, ref: ref}
	case lexer.LPAREN:
		a.next()
		return a.parenOrTuple(fs)
	case lexer.LBRACKET:
		a.next()
		return a.arrayLiteral(fs)
	case lexer.LBRACE:
		a.next()
		return a.dictLiteral(fs)
	case lexer.FUNCTION:
		a.next()
		name := ""
		if a.cur.Type == lexer.IDENT {
			name = a.next().Text
		}
		return a.functionLiteral(fs, name, false)
	case lexer.LAMBDA:
		a.next()
		return a.functionLiteral(fs, "<lambda>", true)
	}
	a.fail("line %d: unexpected token %s", t.Line, t.Type)
	panic("unreachable")
}

func (a *Assembler) parenOrTuple(fs *funcScope) exprNode {
	if a.cur.Type == lexer.RPAREN {
		a.next()
		fs.x.Emit(bytecode.OpMakeTuple, 0, 0)
		return exprNode{kind: ekValue}
	}
	first := a.assignOrExpr(fs)
	if a.cur.Type != lexer.COMMA {
		a.expect(lexer.RPAREN)
		return first
	}
	a.load(fs, first)
	n := 1
	for a.accept(lexer.COMMA) {
		if a.cur.Type == lexer.RPAREN {
			break
		}
		a.expression(fs)
		n++
	}
	a.expect(lexer.RPAREN)
	fs.x.Emit(bytecode.OpMakeTuple, 0, int16(n))
	return exprNode{kind: ekValue}
}

func (a *Assembler) arrayLiteral(fs *funcScope) exprNode {
	n := 0
	for a.cur.Type != lexer.RBRACKET {
		a.expression(fs)
		n++
		if !a.accept(lexer.COMMA) {
			break
		}
	}
	a.expect(lexer.RBRACKET)
	fs.x.Emit(bytecode.OpMakeArray, 0, int16(n))
	return exprNode{kind: ekValue}
}

func (a *Assembler) dictLiteral(fs *funcScope) exprNode {
	n := 0
	for a.cur.Type != lexer.RBRACE {
		if a.cur.Type == lexer.STRING || a.cur.Type == lexer.IDENT {
			key := a.next().Text
			idx := fs.x.AddConst(key)
			fs.x.Emit(bytecode.OpPushConst, 0, int16(idx))
		} else {
			a.expression(fs)
		}
		a.expect(lexer.COLON)
		a.expression(fs)
		n++
		if !a.accept(lexer.COMMA) {
			break
		}
	}
	a.expect(lexer.RBRACE)
	fs.x.Emit(bytecode.OpMakeDict, 0, int16(n))
	return exprNode{kind: ekValue}
}

package parser

import (
	"github.com/t-stf/tsbasic/engine"
)

var relationalOps = []string{"=", "<>", "<", ">", "<=", ">="}

//
// expression parses a string or a numeric expression, whichever comes
// next, and reports which one it was
//

func (p *parser) expression() (engine.Expr, bool) {

	t := p.peek()

	if t.kind == tokString || (t.kind == tokIdent && engine.IsStringName(t.text)) {
		return p.strExpr(), true
	}

	return p.numExpr(), false
}

//
// A condition is a comparison, which becomes a call of the function
// named by the operator.  A plain numeric expression is taken by its
// truth value
//

func (p *parser) condition() engine.Expr {

	lhs, lstr := p.expression()

	if !p.isOp(relationalOps...) {
		if lstr {
			p.fail(EEXPECTED, "comparison")
		}
		return lhs
	}

	op := p.next().text

	rhs, rstr := p.expression()
	if lstr != rstr {
		p.fail(ECOMPARETYPES)
	}

	return engine.NewReference(op, lhs, rhs)
}

func (p *parser) strExpr() engine.Expr {

	t := p.peek()

	switch {
	case t.kind == tokString:
		p.next()
		return engine.Str(t.text)

	case t.kind == tokIdent && engine.IsStringName(t.text):
		return p.reference()
	}

	p.fail(ESTRINGEXPR)

	return nil
}

//
// numExpr: [sign] term {(+|-) term}
//

func (p *parser) numExpr() engine.Expr {

	var items []engine.Operand

	var sign byte
	if p.isOp("+", "-") {
		sign = p.next().text[0]
	}

	items = append(items, engine.Operand{Op: sign, X: p.term()})

	for p.isOp("+", "-") {
		op := p.next().text[0]
		items = append(items, engine.Operand{Op: op, X: p.term()})
	}

	return sequenceOf(items)
}

//
// term: factor {(*|/) factor}
//

func (p *parser) term() engine.Expr {

	items := []engine.Operand{{X: p.factor()}}

	for p.isOp("*", "/") {
		op := p.next().text[0]
		items = append(items, engine.Operand{Op: op, X: p.factor()})
	}

	return sequenceOf(items)
}

//
// factor: primary {(^|**) primary}
//

func (p *parser) factor() engine.Expr {

	items := []engine.Operand{{X: p.primary()}}

	for p.isOp("^", "**") {
		p.next()
		items = append(items, engine.Operand{Op: '^', X: p.primary()})
	}

	return sequenceOf(items)
}

func sequenceOf(items []engine.Operand) engine.Expr {

	if len(items) == 1 && items[0].Op == 0 {
		return items[0].X
	}

	return engine.NewSequence(items...)
}

func (p *parser) primary() engine.Expr {

	t := p.peek()

	switch {
	case p.acceptOp("("):
		e := p.numExpr()
		p.expectOp(")")
		return e

	case p.isOp("-", "+"):
		op := p.next().text[0]
		return engine.NewSequence(engine.Operand{Op: op, X: p.primary()})

	case t.kind == tokNumber:
		return p.number()

	case t.kind == tokString:
		p.fail(ENUMEXPR)

	case t.kind == tokIdent:
		if engine.IsStringName(t.text) {
			p.fail(ENUMEXPR)
		}
		return p.reference()
	}

	p.fail(EEXPRESSION)

	return nil
}

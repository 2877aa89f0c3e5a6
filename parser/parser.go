// Package parser turns BASIC source text into an engine.Program.  It
// refuses to hand over a program that has syntax errors.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/t-stf/tsbasic/engine"
)

type parser struct {
	toks   []token
	pos    int
	lineNo int
	data   []engine.Constant
}

//
// A syntax error panics with a crawlout carrying the error.  parseLine
// recovers it, so one bad line does not hide the errors of the next
//

type crawlout struct {
	err *Error
}

//
// Parse compiles a whole program.  Every syntax error is reported in
// the returned ErrorList
//

func Parse(src string) (*engine.Program, error) {

	var p parser
	var errs ErrorList

	prog := &engine.Program{}

	src = strings.ReplaceAll(src, "\r\n", "\n")

	for i, text := range strings.Split(src, "\n") {
		line, err := p.parseLine(text, i+1)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if line != nil {
			prog.Lines = append(prog.Lines, line)
		}
	}

	if err := errs.Err(); err != nil {
		return nil, err
	}

	prog.Data = p.data

	return prog, nil
}

func (p *parser) parseLine(text string, lineNo int) (line *engine.Line, err *Error) {

	toks, lexErr := lexLine(text, lineNo)
	if lexErr != nil {
		return nil, lexErr
	}

	p.toks, p.pos, p.lineNo = toks, 0, lineNo

	defer func() {
		if e := recover(); e != nil {
			c, isCrawlout := e.(*crawlout)
			if !isCrawlout {
				panic(e)
			}
			line, err = nil, c.err
		}
	}()

	line = &engine.Line{SourceLine: lineNo}

	switch {
	case p.peek().kind == tokNumber:
		line.Label = p.next().text
		if _, err := strconv.Atoi(line.Label); err != nil {
			p.fail(ELABEL)
		}

	case p.peek().kind == tokIdent && p.toks[1].kind == tokOp && p.toks[1].text == ":":
		line.Label = p.next().text
		p.next()
	}

	if p.peek().kind == tokEOL {
		if line.Label == "" {
			return nil, nil
		}
		line.Stmt = &engine.Rem{}
		return line, nil
	}

	line.Stmt = p.statement()

	if t := p.peek(); t.kind != tokEOL {
		p.fail(ETRAILING, t.text)
	}

	return line, nil
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {

	t := p.toks[p.pos]
	if t.kind != tokEOL {
		p.pos++
	}

	return t
}

func (p *parser) fail(f string, args ...any) {

	panic(&crawlout{&Error{
		Line: p.lineNo,
		Col:  p.peek().col,
		Msg:  fmt.Sprintf(f, args...),
	}})
}

func (p *parser) isOp(ops ...string) bool {

	t := p.peek()
	if t.kind != tokOp {
		return false
	}

	for _, op := range ops {
		if t.text == op {
			return true
		}
	}

	return false
}

func (p *parser) acceptOp(op string) bool {

	if p.isOp(op) {
		p.next()
		return true
	}

	return false
}

func (p *parser) expectOp(op string) {

	if !p.acceptOp(op) {
		p.fail(EEXPECTED, "'"+op+"'")
	}
}

func (p *parser) isKeyword(kw string) bool {

	t := p.peek()

	return t.kind == tokIdent && strings.EqualFold(t.text, kw)
}

func (p *parser) acceptKeyword(kw string) bool {

	if p.isKeyword(kw) {
		p.next()
		return true
	}

	return false
}

func (p *parser) expectKeyword(kw string) {

	if !p.acceptKeyword(kw) {
		p.fail(EEXPECTED, kw)
	}
}

func (p *parser) ident() string {

	t := p.peek()
	if t.kind != tokIdent {
		p.fail(EEXPECTED, "name")
	}
	p.next()

	return t.text
}

func (p *parser) statement() engine.Stmt {

	t := p.peek()
	if t.kind == tokRem {
		p.next()
		return &engine.Rem{Text: t.text}
	}

	if t.kind != tokIdent {
		p.fail(ESTATEMENT)
	}

	kw := strings.ToUpper(t.text)
	if parse, isKeyword := statements[kw]; isKeyword {
		p.next()
		return parse(p)
	}

	return p.assignment()
}

var statements map[string]func(p *parser) engine.Stmt

func init() {

	statements = map[string]func(p *parser) engine.Stmt{
		"END":       func(*parser) engine.Stmt { return &engine.End{} },
		"STOP":      func(*parser) engine.Stmt { return &engine.Stop{} },
		"RETURN":    func(*parser) engine.Stmt { return &engine.Return{} },
		"RESTORE":   func(*parser) engine.Stmt { return &engine.Restore{} },
		"RANDOMIZE": (*parser).randomizeStmt,
		"OPTION":    (*parser).optionStmt,
		"IF":        (*parser).ifStmt,
		"FOR":       (*parser).forStmt,
		"NEXT":      (*parser).nextStmt,
		"LET":       (*parser).assignment,
		"DATA":      (*parser).dataStmt,
		"PRINT":     (*parser).printStmt,
		"READ":      (*parser).readStmt,
		"GOTO":      func(p *parser) engine.Stmt { return p.jumpStmt(false) },
		"GOSUB":     func(p *parser) engine.Stmt { return p.jumpStmt(true) },
		"GO":        (*parser).goStmt,
		"DIM":       (*parser).dimStmt,
		"ON":        (*parser).onStmt,
		"DEF":       (*parser).defStmt,
		"INPUT":     (*parser).inputStmt,
	}
}

func (p *parser) randomizeStmt() engine.Stmt {
	return &engine.Call{Ref: engine.NewReference("randomize")}
}

func (p *parser) optionStmt() engine.Stmt {

	p.expectKeyword("BASE")

	t := p.next()
	if t.kind != tokNumber || (t.text != "0" && t.text != "1") {
		p.fail(EOPTIONBASE)
	}

	base, _ := strconv.Atoi(t.text)

	return &engine.OptionBase{Base: base}
}

func (p *parser) label() string {

	t := p.peek()
	switch t.kind {
	case tokNumber:
		if _, err := strconv.Atoi(t.text); err != nil {
			p.fail(ELABEL)
		}

	case tokIdent:

	default:
		p.fail(ELABEL)
	}

	p.next()

	return t.text
}

//
// IF cond THEN label.  GOTO is accepted in place of THEN
//

func (p *parser) ifStmt() engine.Stmt {

	cond := p.condition()

	if !p.acceptKeyword("THEN") {
		p.expectKeyword("GOTO")
	}

	return &engine.IfThen{Cond: cond, Label: p.label()}
}

func (p *parser) forStmt() engine.Stmt {

	v := p.numericVar()
	p.expectOp("=")
	from := p.numExpr()
	p.expectKeyword("TO")
	to := p.numExpr()

	var step engine.Expr
	if p.acceptKeyword("STEP") {
		step = p.numExpr()
	}

	return &engine.For{Var: v, From: from, To: to, Step: step}
}

func (p *parser) nextStmt() engine.Stmt {

	if p.peek().kind == tokIdent {
		return &engine.Next{Var: p.numericVar()}
	}

	return &engine.Next{}
}

func (p *parser) numericVar() *engine.Reference {

	name := p.ident()
	if engine.IsStringName(name) {
		p.fail(ENUMVAR)
	}

	return engine.NewReference(name)
}

//
// [LET] ref = expr, where the expression type follows the name
//

func (p *parser) assignment() engine.Stmt {

	ref := p.reference()
	p.expectOp("=")

	if engine.IsStringName(ref.Name) {
		return &engine.Let{Var: ref, Value: p.strExpr()}
	}

	return &engine.Let{Var: ref, Value: p.numExpr()}
}

func (p *parser) reference() *engine.Reference {

	name := p.ident()

	return engine.NewReference(name, p.arguments()...)
}

func (p *parser) arguments() []engine.Expr {

	if !p.acceptOp("(") {
		return nil
	}

	var args []engine.Expr
	for {
		e, _ := p.expression()
		args = append(args, e)
		if !p.acceptOp(",") {
			break
		}
	}
	p.expectOp(")")

	return args
}

func (p *parser) dataStmt() engine.Stmt {

	for {
		p.data = append(p.data, p.datum())
		if !p.acceptOp(",") {
			break
		}
	}

	return &engine.Data{}
}

func (p *parser) datum() engine.Constant {

	t := p.peek()

	switch {
	case t.kind == tokString:
		p.next()
		return engine.Str(t.text)

	case t.kind == tokIdent:
		p.next()
		return engine.Str(t.text)

	case p.isOp("+", "-"):
		p.next()
		n := p.number()
		if t.text == "-" {
			n = -n
		}
		return n

	case t.kind == tokNumber:
		return p.number()
	}

	p.fail(EDATUM)

	return nil
}

func (p *parser) number() engine.Number {

	t := p.peek()
	if t.kind != tokNumber {
		p.fail(EEXPECTED, "number")
	}

	f, isNum := engine.ParseNumber(t.text)
	if !isNum {
		p.fail(ENUMBER, t.text)
	}
	p.next()

	return engine.Number(f)
}

//
// PRINT items: expressions, TAB(n), and the separators ',' and ';'
//

func (p *parser) printStmt() engine.Stmt {

	var items []engine.PrintItem

	for p.peek().kind != tokEOL {
		switch {
		case p.isOp(",", ";"):
			items = append(items, engine.PrintItem{Sep: p.next().text[0]})

		case p.isKeyword("TAB") && p.toks[p.pos+1].text == "(":
			p.next()
			p.expectOp("(")
			col := p.numExpr()
			p.expectOp(")")
			items = append(items, engine.PrintItem{Expr: &engine.FuncCall{
				Functor: "TAB",
				Args:    []engine.Expr{col},
			}})

		default:
			e, _ := p.expression()
			items = append(items, engine.PrintItem{Expr: e})
		}
	}

	return &engine.Print{Items: items}
}

func (p *parser) readStmt() engine.Stmt {
	return &engine.Read{Vars: p.referenceList()}
}

func (p *parser) referenceList() []*engine.Reference {

	refs := []*engine.Reference{p.reference()}
	for p.acceptOp(",") {
		refs = append(refs, p.reference())
	}

	return refs
}

func (p *parser) jumpStmt(gosub bool) engine.Stmt {
	return &engine.Jump{Label: p.label(), Gosub: gosub}
}

//
// GO TO and GO SUB, spelled as two words
//

func (p *parser) goStmt() engine.Stmt {

	switch {
	case p.acceptKeyword("TO"):
		return p.jumpStmt(false)

	case p.acceptKeyword("SUB"):
		return p.jumpStmt(true)
	}

	p.fail(EEXPECTED, "TO or SUB")

	return nil
}

func (p *parser) dimStmt() engine.Stmt {

	var dims []engine.Stmt

	for {
		name := p.ident()
		p.expectOp("(")
		extents := []engine.Expr{p.numExpr()}
		for p.acceptOp(",") {
			extents = append(extents, p.numExpr())
		}
		p.expectOp(")")

		dims = append(dims, &engine.Dim{Name: name, Extents: extents})

		if !p.acceptOp(",") {
			break
		}
	}

	if len(dims) == 1 {
		return dims[0]
	}

	return &engine.Block{Stmts: dims}
}

func (p *parser) onStmt() engine.Stmt {

	sel := p.numExpr()

	if p.acceptKeyword("GO") {
		p.expectKeyword("TO")
	} else {
		p.expectKeyword("GOTO")
	}

	labels := []string{p.label()}
	for p.acceptOp(",") {
		labels = append(labels, p.label())
	}

	return &engine.OnGoto{Selector: sel, Labels: labels}
}

//
// DEF name[(args)] = expr
//

func (p *parser) defStmt() engine.Stmt {

	name := p.ident()

	var args []string
	if p.acceptOp("(") {
		if !p.isOp(")") {
			args = append(args, p.ident())
			for p.acceptOp(",") {
				args = append(args, p.ident())
			}
		}
		p.expectOp(")")
	}

	p.expectOp("=")

	var body engine.Expr
	if engine.IsStringName(name) {
		body = p.strExpr()
	} else {
		body = p.numExpr()
	}

	return &engine.Def{Name: name, Args: args, Body: body}
}

//
// INPUT ["prompt" [;|,]] ref, ...
//

func (p *parser) inputStmt() engine.Stmt {

	var prompt string

	if t := p.peek(); t.kind == tokString {
		p.next()
		prompt = t.text
		if !p.acceptOp(";") {
			p.acceptOp(",")
		}
	}

	return &engine.Input{Prompt: prompt, Vars: p.referenceList()}
}

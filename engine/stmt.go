package engine

import (
	"cmp"
	"fmt"
	"strings"
)

//
// END and STOP.  Both finish the run; STOP yields an Abort signal so
// a caller can tell the two apart
//

type End struct{}

func (*End) node() {}

func (*End) exec(*Environment) Node {
	return sigEnd
}

type Stop struct{}

func (*Stop) node() {}

func (*Stop) exec(*Environment) Node {
	return sigStop
}

type Rem struct {
	Text string
}

func (*Rem) node() {}

func (*Rem) exec(*Environment) Node {
	return sigOK
}

//
// DATA has been collected into the program's data sequence by the
// front end, so it does nothing when executed
//

type Data struct{}

func (*Data) node() {}

func (*Data) exec(*Environment) Node {
	return sigOK
}

type Let struct {
	Var   *Reference
	Value Expr
}

func (*Let) node() {}

func (s *Let) exec(env *Environment) Node {

	env.instructions++

	v, sig := env.constantOf(s.Value.eval(env))
	if sig != nil {
		return sig
	}

	return s.Var.assign(env, v)
}

//
// GOTO and GOSUB
//

type Jump struct {
	Label string
	Gosub bool
}

func (*Jump) node() {}

func (s *Jump) exec(env *Environment) Node {

	if sig := env.jump(s.Label, s.Gosub); sig != nil {
		return sig
	}

	return sigOK
}

type Return struct{}

func (*Return) node() {}

func (*Return) exec(env *Environment) Node {

	if !env.popReturn() {
		return env.Fail(ReturnWithoutGosub)
	}

	return sigOK
}

type IfThen struct {
	Cond  Expr
	Label string
}

func (*IfThen) node() {}

func (s *IfThen) exec(env *Environment) Node {

	env.instructions++

	c, sig := env.constantOf(s.Cond.eval(env))
	if sig != nil {
		return sig
	}

	if c.Truth() {
		if sig := env.jump(s.Label, false); sig != nil {
			return sig
		}
	}

	return sigOK
}

//
// FOR keeps limit and step in a loop frame keyed by its own position.
// The matching NEXT was found by the linker
//

type For struct {
	Var  *Reference
	From Expr
	To   Expr
	Step Expr
}

func (*For) node() {}

func (s *For) exec(env *Environment) Node {

	env.instructions++

	limit, sig := env.numberOf(s.To.eval(env))
	if sig != nil {
		return sig
	}

	step := 1.0
	if s.Step != nil {
		if step, sig = env.numberOf(s.Step.eval(env)); sig != nil {
			return sig
		}
	}

	from, sig := env.numberOf(s.From.eval(env))
	if sig != nil {
		return sig
	}

	if r := s.Var.assign(env, Number(from)); isAbort(r) {
		return r
	}

	pc := env.pc

	if loopDone(from, limit, step) {
		delete(env.loops, pc)
		env.gotoPc(env.forNext[pc] + 1)
		return sigOK
	}

	env.loops[pc] = &loopFrame{limit: limit, step: step}

	return sigOK
}

func loopDone(v, limit, step float64) bool {

	sign := 0
	switch {
	case step > 0:
		sign = 1

	case step < 0:
		sign = -1
	}

	return cmp.Compare(v, limit)*sign > 0
}

//
// NEXT with a nil Var advances the loop variable of its FOR
//

type Next struct {
	Var *Reference
}

func (*Next) node() {}

func (s *Next) exec(env *Environment) Node {

	env.instructions++

	forPc, paired := env.nextFor[env.pc]
	frame := env.loops[forPc]
	if !paired || frame == nil {
		return env.Fail(JumpIntoForLoop)
	}

	loopVar := env.lines[forPc].Stmt.(*For).Var

	v, sig := env.numberOf(loopVar.eval(env))
	if sig != nil {
		return sig
	}

	v += frame.step
	if r := loopVar.assign(env, Number(v)); isAbort(r) {
		return r
	}

	if loopDone(v, frame.limit, frame.step) {
		delete(env.loops, forPc)
		return sigOK
	}

	env.gotoPc(forPc + 1)

	return sigOK
}

type Read struct {
	Vars []*Reference
}

func (*Read) node() {}

func (s *Read) exec(env *Environment) Node {

	for _, v := range s.Vars {
		env.instructions++
		if r := env.read(v); isAbort(r) {
			return r
		}
	}

	return sigOK
}

type Restore struct{}

func (*Restore) node() {}

func (*Restore) exec(env *Environment) Node {

	env.SetDataCounter(0)

	return sigOK
}

//
// DIM of one array.  The extents are upper bounds, so each one gets a
// cell more than its value
//

type Dim struct {
	Name    string
	Extents []Expr
}

func (*Dim) node() {}

func (s *Dim) exec(env *Environment) Node {

	env.instructions++

	dims := make([]int, len(s.Extents))
	cells := 1

	for i, e := range s.Extents {
		n, sig := env.numberOf(e.eval(env))
		if sig != nil {
			return sig
		}

		d := Number(n).Int()
		if d < 0 || d >= maxArrayCells {
			return env.Fail(Info, fmt.Sprintf(EINVALIDDIM, Number(n), s.Name))
		}

		dims[i] = d + 1
		cells *= dims[i]
		if cells > maxArrayCells {
			return env.Fail(Info, fmt.Sprintf(EINVALIDDIM, Number(n), s.Name))
		}
	}

	switch p := env.Lookup(s.Name).(type) {
	case nil:
		env.SetProperty(NewArray(s.Name, dims))

	case *ArrayProperty:
		if !p.Redim(dims) {
			return env.Fail(ArrayDimensionMismatch, s.Name)
		}

	case *ScalarProperty, *FunctionProperty:
		return env.Fail(Info, fmt.Sprintf(EDIMNONARRAY, s.Name))
	}

	return sigOK
}

//
// Block runs several statements of one line, such as a DIM of more
// than one array, stopping at the first abort
//

type Block struct {
	Stmts []Stmt
}

func (*Block) node() {}

func (s *Block) exec(env *Environment) Node {

	var r Node = sigOK

	for _, st := range s.Stmts {
		if r = st.exec(env); isAbort(r) {
			return r
		}
	}

	return r
}

//
// OPTION BASE
//

type OptionBase struct {
	Base int
}

func (*OptionBase) node() {}

func (s *OptionBase) exec(env *Environment) Node {

	if s.Base != 0 && s.Base != 1 {
		return env.Fail(Info, fmt.Sprintf(EOPTIONBASE, s.Base))
	}

	env.arrayBase = s.Base

	return sigOK
}

type OnGoto struct {
	Selector Expr
	Labels   []string
}

func (*OnGoto) node() {}

func (s *OnGoto) exec(env *Environment) Node {

	env.instructions++

	n, sig := env.numberOf(s.Selector.eval(env))
	if sig != nil {
		return sig
	}

	i := Number(n).Int() - 1
	if i < 0 || i >= len(s.Labels) {
		return env.Fail(OnGotoIndexInvalid, i+1)
	}

	if sig := env.jump(s.Labels[i], false); sig != nil {
		return sig
	}

	return sigOK
}

//
// DEF is bound at link time; executing it does nothing
//

type Def struct {
	Name string
	Args []string
	Body Expr
}

func (*Def) node() {}

func (*Def) exec(*Environment) Node {
	return sigOK
}

func (s *Def) function() *FunctionProperty {

	return NewFunction(s.Name, s.Args, func(env *Environment, _ []Constant) Node {
		c, sig := env.constantOf(s.Body.eval(env))
		if sig != nil {
			return sig
		}

		v := convertFor(s.Name, c)
		if v == nil {
			return env.Fail(TypeMismatch, s.Name)
		}

		return v
	})
}

//
// Call evaluates a reference for its side effect, e.g. RANDOMIZE
//

type Call struct {
	Ref *Reference
}

func (*Call) node() {}

func (s *Call) exec(env *Environment) Node {

	if r := s.Ref.eval(env); isAbort(r) {
		return r
	}

	return sigOK
}

type Input struct {
	Prompt string
	Vars   []*Reference
}

func (*Input) node() {}

func (s *Input) exec(env *Environment) Node {

	env.instructions++

	names := make([]string, len(s.Vars))
	for i, v := range s.Vars {
		names[i] = v.Name
	}

	values := env.io.QueryInput(s.Prompt, names)
	env.column = 0

	if values == nil {
		return env.Fail(Info, EINPUTABORTED)
	}

	if len(values) < len(names) {
		return env.Fail(Info, fmt.Sprintf(EINPUTTOOFEW, len(names),
			len(values)))
	}

	for i, ref := range s.Vars {
		v := inputValue(ref.Name, values[i])
		if v == nil {
			return env.Fail(InputArgumentInvalid, values[i], ref.Name)
		}

		if r := ref.assign(env, v); isAbort(r) {
			return r
		}
	}

	return sigOK
}

//
// String variables take a quoted string without its quotes, or the
// typed text as it is.  Numeric ones need a number
//

func inputValue(name, text string) Constant {

	if IsStringName(name) {
		if d, isStr := ParseDatum(text).(Str); isStr {
			return d
		}
		return Str(strings.TrimSpace(text))
	}

	if f, isNum := ParseNumber(text); isNum {
		return Number(f)
	}

	return nil
}

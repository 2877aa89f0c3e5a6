package engine

import (
	"fmt"
	"math"
	"strings"
)

//
// Reference names a variable, an array element or a function call.
// Relational operators are references too: "<" applied to two
// arguments calls the function registered under that name
//

type Reference struct {
	Name string
	Args []Expr
}

func NewReference(name string, args ...Expr) *Reference {
	return &Reference{Name: name, Args: args}
}

func (*Reference) node() {}

func (r *Reference) eval(env *Environment) Node {

	env.instructions++

	switch p := env.Lookup(r.Name).(type) {
	case nil:
		if len(r.Args) == 0 {
			return zeroValue(r.Name)
		}
		return env.Fail(CallToUnknownFunction, r.Name)

	case *ScalarProperty:
		if len(r.Args) > 0 {
			return env.Fail(Info, fmt.Sprintf(ENOTANARRAY, r.Name))
		}
		return p.Value

	case *FunctionProperty:
		return env.call(p, r.Args)

	case *ArrayProperty:
		idx, sig := r.indexes(env)
		if sig != nil {
			return sig
		}
		if len(idx) != len(p.dims) {
			return env.Fail(ArrayDimensionMismatch, r.Name)
		}
		if !env.inBase(idx) {
			return env.Fail(ArrayIndexOutOfRange, r.Name)
		}
		v, inRange := p.Get(idx)
		if !inRange {
			return env.Fail(ArrayIndexOutOfRange, r.Name)
		}
		return v
	}

	return env.Fail(NotImplemented, "reference to "+r.Name)
}

//
// Subscripts are rounded to the nearest integer
//

func (r *Reference) indexes(env *Environment) ([]int, *Signal) {

	idx := make([]int, len(r.Args))

	for i, arg := range r.Args {
		c, sig := env.constantOf(arg.eval(env))
		if sig != nil {
			return nil, sig
		}

		n, isNum := c.(Number)
		if !isNum {
			return nil, env.Fail(Info, EINDEXTYPE)
		}

		idx[i] = n.Int()
	}

	return idx, nil
}

//
// The lowest subscript allowed is the OPTION BASE
//

func (env *Environment) inBase(idx []int) bool {

	for _, ix := range idx {
		if ix < env.arrayBase {
			return false
		}
	}

	return true
}

//
// assign stores v into the referenced variable or array element,
// creating a scalar or an implicit array in the active context if
// the name is unbound
//

func (r *Reference) assign(env *Environment, v Constant) Node {

	env.instructions++

	p := env.Lookup(r.Name)

	if len(r.Args) == 0 {
		cv := convertFor(r.Name, v)
		if cv == nil {
			return env.Fail(TypeMismatch, r.Name)
		}

		switch p := p.(type) {
		case nil:
			env.SetProperty(NewScalar(r.Name, cv))

		case *ScalarProperty:
			p.Value = cv

		case *ArrayProperty:
			return env.Fail(ArrayDimensionMismatch, r.Name)

		case *FunctionProperty:
			return env.Fail(TypeMismatch, r.Name)
		}

		return cv
	}

	idx, sig := r.indexes(env)
	if sig != nil {
		return sig
	}

	switch p := p.(type) {
	case nil:
		dims := implicitDims(len(idx))
		if !fits(dims) {
			return env.Fail(Info, fmt.Sprintf(EINVALIDDIM, dims, r.Name))
		}
		a := NewArray(r.Name, dims)
		env.SetProperty(a)
		return r.store(env, a, idx, v)

	case *ArrayProperty:
		return r.store(env, p, idx, v)

	case *ScalarProperty:
		return env.Fail(Info, fmt.Sprintf(ENOTANARRAY, r.Name))

	case *FunctionProperty:
		return env.Fail(TypeMismatch, r.Name)
	}

	return env.Fail(NotImplemented, "assignment to "+r.Name)
}

func (r *Reference) store(env *Environment, a *ArrayProperty, idx []int,
	v Constant) Node {

	if len(idx) != len(a.dims) {
		return env.Fail(ArrayDimensionMismatch, r.Name)
	}

	cv := convertFor(r.Name, v)
	if cv == nil {
		return env.Fail(TypeMismatch, r.Name)
	}

	if !env.inBase(idx) || !a.Set(idx, cv) {
		return env.Fail(ArrayIndexOutOfRange, r.Name)
	}

	return cv
}

//
// call evaluates the actual arguments in the caller's scope, then runs
// fn in a fresh context holding the formals.  Missing arguments get
// the zero value of their formal; surplus ones are ignored
//

func (env *Environment) call(fn *FunctionProperty, actual []Expr) Node {

	env.instructions++

	args := make([]Constant, len(fn.Args))

	for i, formal := range fn.Args {
		if i >= len(actual) {
			args[i] = zeroValue(formal)
			continue
		}

		c, sig := env.constantOf(actual[i].eval(env))
		if sig != nil {
			return sig
		}

		args[i] = c
	}

	if sig := env.pushContext(); sig != nil {
		return sig
	}
	defer env.popContext()

	for i, formal := range fn.Args {
		env.active.set(NewScalar(formal, args[i]))
	}

	res := fn.Apply(env, args)
	if res == nil {
		return env.Fail(NotImplemented, fn.Name())
	}

	return res
}

//
// constantOf splits an evaluation result into a value or the signal to
// hand back.  Non-abort signals are not values, so they turn into a
// fault here
//

func (env *Environment) constantOf(n Node) (Constant, *Signal) {

	switch v := n.(type) {
	case Constant:
		return v, nil

	case *Signal:
		if v.IsAbort() {
			return nil, v
		}
		return nil, env.Fail(Info, fmt.Sprintf(EUNEXPECTEDSIGNAL, v.Kind))
	}

	return nil, env.Fail(InternalError, fmt.Sprintf("%T as value", n))
}

func (env *Environment) numberOf(n Node) (float64, *Signal) {

	c, sig := env.constantOf(n)
	if sig != nil {
		return 0, sig
	}

	num, isNum := ToNumber(c)
	if !isNum {
		return 0, env.Fail(ConversionError, c, "number")
	}

	return float64(num), nil
}

//
// FuncCall is a print function.  TAB is the only one: it yields a Tab
// signal carrying the column
//

type FuncCall struct {
	Functor string
	Args    []Expr
}

func (*FuncCall) node() {}

func (f *FuncCall) eval(env *Environment) Node {

	if !strings.EqualFold(f.Functor, "TAB") || len(f.Args) != 1 {
		return env.Fail(CallToUnknownFunction, f.Functor)
	}

	n, sig := env.numberOf(f.Args[0].eval(env))
	if sig != nil {
		return sig
	}

	return &Signal{Kind: SignalTab, Payload: Number(n)}
}

//
// Operand is one element of a Sequence: the operator that joins it to
// what precedes it, and the operand itself.  The first operand has no
// operator, except that an additive sequence may start with a sign
//

type Operand struct {
	Op byte
	X  Expr
}

const (
	mulCost = 3
	divCost = 5
)

//
// Sequence is a chain of operators of one precedence level, folded
// left to right: '+' '-', or '*' '/', or '^'
//

type Sequence struct {
	Items []Operand
}

func NewSequence(items ...Operand) *Sequence {
	return &Sequence{Items: items}
}

func (*Sequence) node() {}

func (s *Sequence) eval(env *Environment) Node {

	var acc float64

	for i, item := range s.Items {
		v, sig := env.numberOf(item.X.eval(env))
		if sig != nil {
			return sig
		}

		env.instructions++

		if i == 0 {
			acc = v
			if item.Op == '-' {
				acc = -v
			}
			continue
		}

		switch item.Op {
		case '+':
			acc += v

		case '-':
			acc -= v

		case '*':
			acc *= v
			env.instructions += mulCost

		case '/':
			if v == 0 {
				env.Warn(DivisionByZero)
			}
			acc /= v
			env.instructions += divCost

		case '^':
			acc = env.power(acc, v)

		default:
			return env.Fail(NotImplemented, fmt.Sprintf("operator %q", item.Op))
		}
	}

	return Number(acc)
}

//
// Integer exponents are done by repeated squaring so that the
// instruction count reflects the multiplies
//

func (env *Environment) power(x, y float64) float64 {

	n := Number(y).Int()
	if float64(n) != y {
		return math.Pow(x, y)
	}

	neg := n < 0
	if neg {
		n = -n
	}

	result := 1.0
	for n > 0 {
		if n&1 == 1 {
			result *= x
			env.instructions += mulCost
		}
		n >>= 1
		if n > 0 {
			x *= x
			env.instructions += mulCost
		}
	}

	if neg {
		result = 1 / result
	}

	return result
}

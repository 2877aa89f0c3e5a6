// Package engine executes compiled programs of a line-numbered BASIC
// dialect: the program representation, the pc-driven stepper, the
// scope and array stores, the control-flow machinery, the fault model
// and the breakpoint-aware Runner that drives it all.
package engine

//
// Every evaluation produces a Node.  The set of implementations is
// closed: the literal values (Number, Str, Bool) and *Signal.  Code
// that inspects a Node does so with an exhaustive type switch
//

type Node interface {
	node()
}

//
// Expr is an evaluable expression.  Stmt is an executable statement.
// Both sets are closed to this package
//

type Expr interface {
	Node
	eval(env *Environment) Node
}

type Stmt interface {
	Node
	exec(env *Environment) Node
}

type SignalKind int

//
// The order matters: everything from SignalAbort upwards stops the
// run loop
//

const (
	SignalOK SignalKind = iota
	SignalTab
	SignalAbort
	SignalError
	SignalEnd
)

var signalNames = [...]string{"ok", "tab", "abort", "error", "end"}

func (k SignalKind) String() string {

	if k < 0 || int(k) >= len(signalNames) {
		return "unknown"
	}

	return signalNames[k]
}

//
// Signal is the control result used to unwind evaluation.  Payload
// carries the TAB column, Fault the fault detail for SignalError
//

type Signal struct {
	Kind    SignalKind
	Payload Node
	Fault   *Fault
}

func (*Signal) node() {}

func (s *Signal) IsAbort() bool {
	return s.Kind >= SignalAbort
}

func (s *Signal) String() string {

	if s.Fault != nil {
		return s.Kind.String() + ": " + s.Fault.Error()
	}

	return s.Kind.String()
}

var (
	sigOK   = &Signal{Kind: SignalOK}
	sigEnd  = &Signal{Kind: SignalEnd}
	sigStop = &Signal{Kind: SignalAbort}
)

//
// Abort-class check on any Node
//

func isAbort(n Node) bool {

	s, isSignal := n.(*Signal)

	return isSignal && s.IsAbort()
}

//
// Line is one executable unit of a program
//

type Line struct {
	Label      string
	SourceLine int
	Stmt       Stmt
	pc         int
}

//
// Number reports the line number used by breakpoints and fault
// messages: the numeric label if there is one, else the source line
//

func (l *Line) Number() int {

	if n, isNum := numericLabel(l.Label); isNum {
		return n
	}

	return l.SourceLine
}

//
// Pc is the line's position, assigned at link time
//

func (l *Line) Pc() int {
	return l.pc
}

func numericLabel(label string) (int, bool) {

	if label == "" {
		return 0, false
	}

	n := 0
	for _, c := range label {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
		if n > 1<<30 {
			return 0, false
		}
	}

	return n, true
}

//
// Program is what a front end hands over: the executable lines in
// order plus the DATA constants, already flattened
//

type Program struct {
	Lines []*Line
	Data  []Constant
}

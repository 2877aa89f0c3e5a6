package engine

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

//
// Host supplies the intrinsic functions and the character device.
// InitRun is called once per Load, before linking, and registers the
// intrinsics with SetFunction
//

type Host interface {
	InitRun(env *Environment)
	IO() InputOutput
}

//
// InputOutput is the character device.  QueryInput returns nil if the
// user aborted the input
//

type InputOutput interface {
	Write(s string)
	NewLine()
	PrintZoneWidth() int
	WriteMessage(s string)
	QueryInput(prompt string, names []string) []string
}

const (
	MaxStackDepth = 500

	defaultZoneWidth = 16
)

//
// Environment is the run state of one program: the linked lines, the
// scopes, the data cursor, the control-flow stacks and the counters.
// It is not safe for concurrent use; a Runner hands it to one
// goroutine at a time
//

type Environment struct {
	lines   []*Line
	data    []Constant
	labels  map[string]int
	forNext map[int]int
	nextFor map[int]int

	active *Context
	saved  []*Context

	pc          int
	curLine     int
	dataCounter int
	returns     []int
	loops       map[int]*loopFrame

	column       int
	instructions int64
	executed     int64
	arrayBase    int

	fault *Fault
	sink  FaultSink

	host          Host
	io            InputOutput
	log           zerolog.Logger
	maxStackDepth int
	summaries     bool
}

//
// The live state of a FOR loop, keyed by the position of its FOR
//

type loopFrame struct {
	limit float64
	step  float64
}

type Option func(env *Environment)

func WithLogger(l zerolog.Logger) Option {
	return func(env *Environment) { env.log = l }
}

func WithMaxStackDepth(n int) Option {

	return func(env *Environment) {
		if n > 0 {
			env.maxStackDepth = n
		}
	}
}

//
// WithSummaries makes Load and Run write their "===" summary lines to
// the host
//

func WithSummaries(on bool) Option {
	return func(env *Environment) { env.summaries = on }
}

func New(host Host, opts ...Option) *Environment {

	env := &Environment{
		host:          host,
		io:            host.IO(),
		log:           zerolog.Nop(),
		maxStackDepth: MaxStackDepth,
	}

	for _, opt := range opts {
		opt(env)
	}

	env.reset()

	return env
}

func (env *Environment) reset() {

	env.labels = make(map[string]int)
	env.forNext = make(map[int]int)
	env.nextFor = make(map[int]int)
	env.active = newContext()
	env.saved = nil
	env.pc = 0
	env.curLine = 0
	env.dataCounter = 0
	env.returns = nil
	env.loops = make(map[int]*loopFrame)
	env.column = 0
	env.instructions = 0
	env.executed = 0
	env.arrayBase = 0
	env.fault = nil
}

//
// Load installs the host intrinsics and links prog.  All link errors
// are collected; if there are any the environment is not runnable.
// Loading again starts from scratch
//

func (env *Environment) Load(prog *Program) error {

	start := time.Now()

	env.reset()
	env.lines = prog.Lines
	env.data = prog.Data

	env.host.InitRun(env)

	if err := env.link(); err != nil {
		env.lines = nil
		env.log.Warn().Err(err).Msg("link failed")
		return err
	}

	elapsed := time.Since(start)

	env.log.Debug().Int("lines", len(env.lines)).Int("data", len(env.data)).
		Dur("elapsed", elapsed).Msg("program linked")

	if env.summaries {
		env.io.WriteMessage(fmt.Sprintf("=== %d lines compiled in %d ms ===",
			len(env.lines), elapsed.Milliseconds()))
	}

	return nil
}

func (env *Environment) link() error {

	var errs []error
	var forStack []int

	linkError := func(l *Line, f string, args ...any) {
		errs = append(errs, &LinkError{Line: l.Number(),
			Msg: fmt.Sprintf(f, args...)})
	}

	for i, l := range env.lines {
		l.pc = i

		if l.Label != "" {
			key := normalizeName(l.Label)
			if _, dup := env.labels[key]; dup {
				linkError(l, EDUPLICATELABEL, l.Label)
			} else {
				env.labels[key] = i
			}
		}

		switch s := l.Stmt.(type) {
		case *Def:
			if env.Lookup(s.Name) != nil {
				linkError(l, EDUPLICATEDEF, s.Name)
			} else {
				env.SetProperty(s.function())
			}

		case *For:
			forStack = append(forStack, i)

		case *Next:
			if len(forStack) == 0 {
				linkError(l, ENEXTWITHOUTFOR)
				continue
			}

			forPc := forStack[len(forStack)-1]
			forStack = forStack[:len(forStack)-1]

			forVar := env.lines[forPc].Stmt.(*For).Var.Name
			if s.Var != nil && normalizeName(s.Var.Name) != normalizeName(forVar) {
				linkError(l, ENEXTMISMATCH, s.Var.Name, forVar)
			}

			env.forNext[forPc] = i
			env.nextFor[i] = forPc
		}
	}

	for _, pc := range forStack {
		linkError(env.lines[pc], EFORWITHOUTNEXT)
	}

	return errors.Join(errs...)
}

//
// Step executes the line at the program counter.  Past the last line
// it returns an End signal without doing anything.  sink receives the
// faults raised by the line
//

func (env *Environment) Step(sink FaultSink) (result Node) {

	env.sink = sink

	if env.pc < 0 || env.pc >= len(env.lines) {
		return sigEnd
	}

	line := env.lines[env.pc]
	env.curLine = line.Number()

	defer func() {
		if e := recover(); e != nil {
			env.log.Error().Interface("panic", e).Int("line", env.curLine).
				Msg("evaluator crashed")
			result = env.Fail(InternalError, e)
		}
	}()

	result = line.Stmt.exec(env)

	env.instructions++
	env.executed++
	env.pc++

	return result
}

//
// Summary describes a finished run
//

type Summary struct {
	Lines        int64
	Instructions int64
	Elapsed      time.Duration
}

func (s Summary) String() string {

	return fmt.Sprintf("=== %d lines with %d instructions executed in %d ms ===",
		s.Lines, s.Instructions, s.Elapsed.Milliseconds())
}

//
// Run steps until a fatal fault is latched or a line ends the program.
// The summary is produced on every exit path
//

func (env *Environment) Run(sink FaultSink) (result Node, sum Summary) {

	start := time.Now()

	defer func() {
		sum = env.Summarize(time.Since(start))
	}()

	for {
		result = env.Step(sink)
		if env.fault != nil || isAbort(result) {
			return result, sum
		}
	}
}

//
// Summarize reports the counters of a run that took elapsed, and
// writes the summary line if summaries are on.  Run calls it itself;
// callers driving a Runner call it when the run has completed
//

func (env *Environment) Summarize(elapsed time.Duration) Summary {

	sum := Summary{
		Lines:        env.executed,
		Instructions: env.instructions,
		Elapsed:      elapsed,
	}

	env.log.Debug().Int64("lines", sum.Lines).
		Int64("instructions", sum.Instructions).
		Dur("elapsed", elapsed).Msg("run finished")

	if env.summaries {
		env.io.WriteMessage(sum.String())
	}

	return sum
}

//
// Fail raises a fault and returns the error signal to hand back up
// the evaluation.  Only fatal codes should be raised this way; use
// Warn for the others
//

func (env *Environment) Fail(code FaultCode, args ...any) *Signal {
	return &Signal{Kind: SignalError, Fault: env.raise(code, args...)}
}

//
// Warn raises a non-fatal fault.  Evaluation carries on
//

func (env *Environment) Warn(code FaultCode, args ...any) {
	env.raise(code, args...)
}

//
// A fatal fault is reported once and latched; after that, further
// fatal faults are dropped silently.  Non-fatal faults are always
// reported
//

func (env *Environment) raise(code FaultCode, args ...any) *Fault {

	f := &Fault{Line: env.curLine, Code: code, Args: args}

	if !f.Fatal() || env.fault == nil {
		if f.Fatal() {
			env.log.Warn().Int("line", f.Line).Int("code", int(code)).
				Msg(f.Message())
		} else {
			env.log.Info().Int("line", f.Line).Int("code", int(code)).
				Msg(f.Message())
		}

		if env.sink != nil {
			env.sink(f)
		}
	}

	if f.Fatal() && env.fault == nil {
		env.fault = f
	}

	return f
}

//
// HasEnded reports whether a fatal fault has been latched
//

func (env *Environment) HasEnded() bool {
	return env.fault != nil
}

func (env *Environment) LastFault() *Fault {
	return env.fault
}

func (env *Environment) Pc() int {
	return env.pc
}

func (env *Environment) Lines() []*Line {
	return env.lines
}

//
// NextLine is the number of the line Step will execute, or -1 at the
// end of the program
//

func (env *Environment) NextLine() int {

	if env.pc < 0 || env.pc >= len(env.lines) {
		return -1
	}

	return env.lines[env.pc].Number()
}

func (env *Environment) Instructions() int64 {
	return env.instructions
}

func (env *Environment) ExecutedLines() int64 {
	return env.executed
}

func (env *Environment) Column() int {
	return env.column
}

func (env *Environment) ArrayBase() int {
	return env.arrayBase
}

//
// Control flow.  Every jump stores target-1 in pc, since Step advances
// pc once the line is done
//

func (env *Environment) gotoPc(pc int) {
	env.pc = pc - 1
}

func (env *Environment) jump(label string, gosub bool) *Signal {

	target, found := env.labels[normalizeName(label)]
	if !found {
		return env.Fail(JumpToUndefinedLabel, label)
	}

	if gosub {
		if len(env.returns) >= env.maxStackDepth {
			return env.Fail(StackOverflow, env.maxStackDepth)
		}
		env.returns = append(env.returns, env.pc)
	}

	env.gotoPc(target)

	return nil
}

func (env *Environment) popReturn() bool {

	n := len(env.returns)
	if n == 0 {
		return false
	}

	env.pc = env.returns[n-1]
	env.returns = env.returns[:n-1]

	return true
}

//
// Data cursor
//

func (env *Environment) SetDataCounter(i int) bool {

	if i < 0 || i > len(env.data) {
		return false
	}

	env.dataCounter = i

	return true
}

func (env *Environment) DataCounter() int {
	return env.dataCounter
}

func (env *Environment) read(ref *Reference) Node {

	if env.dataCounter >= len(env.data) {
		return env.Fail(EndOfData)
	}

	datum := env.data[env.dataCounter]
	env.dataCounter++

	v := coerceFor(ref.Name, datum)
	if v == nil {
		return env.Fail(ConversionError, datum, elementType(ref.Name))
	}

	return ref.assign(env, v)
}

//
// Output.  The column is tracked here, the host only sees the text
//

func (env *Environment) write(s string) {

	env.io.Write(s)
	env.column += utf8.RuneCountInString(s)
}

func (env *Environment) newLine() {

	env.io.NewLine()
	env.column = 0
}

func (env *Environment) zoneWidth() int {

	if w := env.io.PrintZoneWidth(); w > 0 {
		return w
	}

	return defaultZoneWidth
}

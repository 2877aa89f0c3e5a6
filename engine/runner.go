package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type State int

const (
	Starting State = iota
	Running
	Breaked
	CompletedOK
	CompletedWithError
)

var stateNames = [...]string{"starting", "running", "breaked", "completed",
	"completed with error"}

func (s State) String() string {

	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}

	return stateNames[s]
}

func (s State) Completed() bool {
	return s >= CompletedOK
}

var (
	ErrRunning   = errors.New("program is running")
	ErrCompleted = errors.New("program has completed")
)

//
// Runner drives an Environment line by line, either one StepOver at
// a time or continuously on a goroutine started by Start.  It stops in
// Breaked in front of a breakpoint line.  Only the state and the
// breakpoint set are shared with the controlling goroutine; the
// Environment belongs to the run loop while the state is Running
//

type Runner struct {
	env  *Environment
	sink FaultSink
	log  zerolog.Logger

	mu          sync.Mutex
	state       State
	breakpoints *breakpointSet
	ignoreNext  bool
	result      Node

	cancel context.CancelFunc
	group  *errgroup.Group
}

func NewRunner(env *Environment, sink FaultSink) *Runner {

	return &Runner{
		env:         env,
		sink:        sink,
		log:         env.log,
		breakpoints: newBreakpointSet(),
	}
}

func (r *Runner) Env() *Environment {
	return r.env
}

func (r *Runner) State() State {

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.state
}

func (r *Runner) setState(s State) {

	r.mu.Lock()
	defer r.mu.Unlock()

	r.setStateLocked(s)
}

func (r *Runner) setStateLocked(s State) {

	if r.state != s {
		r.log.Debug().Stringer("from", r.state).Stringer("to", s).
			Int("line", r.env.NextLine()).Msg("runner state")
		r.state = s
	}
}

//
// Result is the Node returned by the last executed line
//

func (r *Runner) Result() Node {

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.result
}

//
// SetBreakpoints replaces the breakpoint set.  It cannot be changed
// while the program is running
//

func (r *Runner) SetBreakpoints(lines ...int) error {

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == Running {
		return ErrRunning
	}

	r.breakpoints = newBreakpointSet(lines...)

	return nil
}

func (r *Runner) Breakpoints() []int {

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.breakpoints.lines()
}

//
// SetIgnoreNextBreakpoint lets the next step execute a breakpoint line
// instead of stopping in front of it.  The flag clears once a line
// has executed
//

func (r *Runner) SetIgnoreNextBreakpoint(ignore bool) {

	r.mu.Lock()
	defer r.mu.Unlock()

	r.ignoreNext = ignore
}

//
// stepOver runs one line unless a breakpoint is in the way.  Running
// off the last line completes the program like END does.  It reports
// whether another step may follow
//

func (r *Runner) stepOver() bool {

	r.mu.Lock()
	if !r.ignoreNext && r.breakpoints.contains(r.env.NextLine()) {
		r.setStateLocked(Breaked)
		r.mu.Unlock()
		return false
	}
	r.ignoreNext = false
	r.mu.Unlock()

	res := r.env.Step(r.sink)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.result = res

	switch {
	case r.env.LastFault() != nil:
		r.setStateLocked(CompletedWithError)

	case isAbort(res), r.env.NextLine() < 0:
		r.setStateLocked(CompletedOK)
	}

	return !r.state.Completed()
}

//
// StepOver executes one line and returns the number of the next one,
// or -1 if the program has completed, stopped at a breakpoint, or is
// running on its own
//

func (r *Runner) StepOver() int {

	if st := r.State(); st == Running || st.Completed() {
		return -1
	}

	if !r.stepOver() {
		return -1
	}

	return r.env.NextLine()
}

//
// Start runs the program on a goroutine until it completes, reaches a
// breakpoint, or is stopped by Break or by cancelling ctx.
// Cancellation is looked at between lines only
//

func (r *Runner) Start(ctx context.Context) error {

	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case r.state == Running:
		return ErrRunning

	case r.state.Completed():
		return ErrCompleted
	}

	ctx, cancel := context.WithCancel(ctx)

	r.cancel = cancel
	r.group = new(errgroup.Group)
	r.setStateLocked(Running)

	r.group.Go(func() error {
		defer cancel()
		r.loop(ctx)
		return nil
	})

	return nil
}

func (r *Runner) loop(ctx context.Context) {

	for {
		if ctx.Err() != nil {
			r.setState(Breaked)
			return
		}

		if !r.stepOver() {
			return
		}
	}
}

//
// Break stops a running program and waits until the line in progress
// has finished
//

func (r *Runner) Break() State {

	r.mu.Lock()
	cancel, group := r.cancel, r.group
	r.mu.Unlock()

	if cancel != nil {
		cancel()
		_ = group.Wait()
	}

	return r.State()
}

//
// Wait blocks until a run started by Start has stopped on its own
//

func (r *Runner) Wait() State {

	r.mu.Lock()
	group := r.group
	r.mu.Unlock()

	if group != nil {
		_ = group.Wait()
	}

	return r.State()
}

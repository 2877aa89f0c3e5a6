package engine_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/t-stf/tsbasic/engine"
	"github.com/t-stf/tsbasic/host"
	"github.com/t-stf/tsbasic/parser"
)

type fixture struct {
	env    *engine.Environment
	out    *bytes.Buffer
	faults []*engine.Fault
}

func (f *fixture) sink(fault *engine.Fault) {
	f.faults = append(f.faults, fault)
}

func load(t *testing.T, src string, opts ...engine.Option) *fixture {
	t.Helper()
	return loadWithHost(t, src, nil, opts...)
}

func loadWithHost(t *testing.T, src string, wrap func(*host.DefaultHost) engine.Host,
	opts ...engine.Option) *fixture {
	t.Helper()

	f := &fixture{out: &bytes.Buffer{}}

	prog, err := parser.Parse(src)
	require.NoError(t, err)

	var h engine.Host = host.New(host.NewTextIO(f.out, nil, 0))
	if wrap != nil {
		h = wrap(h.(*host.DefaultHost))
	}

	f.env = engine.New(h, opts...)
	require.NoError(t, f.env.Load(prog))

	return f
}

func (f *fixture) run() engine.Node {
	res, _ := f.env.Run(f.sink)
	return res
}

func TestScaledVariable(t *testing.T) {
	f := load(t, "10 LET X = 5\n20 PRINT X*2\n")
	f.run()

	assert.Equal(t, " 10 \n", f.out.String())
	assert.Empty(t, f.faults)
	assert.False(t, f.env.HasEnded())
}

func TestForLoop(t *testing.T) {
	f := load(t, "10 FOR I = 1 TO 3\n20 PRINT I\n30 NEXT I\n")
	f.run()

	assert.Equal(t, " 1 \n 2 \n 3 \n", f.out.String())
}

func TestUndefinedJumpLatches(t *testing.T) {
	f := load(t, "10 GOTO 99\n20 GOTO 98\n")

	res := f.run()

	sig, ok := res.(*engine.Signal)
	require.True(t, ok)
	assert.Equal(t, engine.SignalError, sig.Kind)
	require.Len(t, f.faults, 1)
	assert.Equal(t, engine.JumpToUndefinedLabel, f.faults[0].Code)
	assert.Equal(t, 10, f.faults[0].Line)
	assert.True(t, f.env.HasEnded())
	assert.Same(t, f.faults[0], f.env.LastFault())

	// stepping on raises another fatal fault, which is neither
	// reported nor latched
	f.env.Step(f.sink)
	assert.Len(t, f.faults, 1)
	assert.Equal(t, engine.JumpToUndefinedLabel, f.env.LastFault().Code)
	assert.Equal(t, 10, f.env.LastFault().Line)
}

func TestNonFatalFaultsRepeat(t *testing.T) {
	f := load(t, "10 FOR I = 1 TO 3\n20 X = I / 0\n30 NEXT I\n40 PRINT \"DONE\"\n")
	f.run()

	require.Len(t, f.faults, 3)
	for _, fault := range f.faults {
		assert.Equal(t, engine.DivisionByZero, fault.Code)
		assert.False(t, fault.Fatal())
		assert.Equal(t, 20, fault.Line)
	}
	assert.False(t, f.env.HasEnded())
	assert.Equal(t, "DONE\n", f.out.String())
}

func TestStepPastEnd(t *testing.T) {
	f := load(t, "10 PRINT 1\n")

	res := f.env.Step(f.sink)
	assert.False(t, res.(*engine.Signal).IsAbort())
	assert.Equal(t, -1, f.env.NextLine())

	res = f.env.Step(f.sink)
	assert.Equal(t, engine.SignalEnd, res.(*engine.Signal).Kind)
	assert.Equal(t, int64(1), f.env.ExecutedLines())
}

func TestStopAndEnd(t *testing.T) {
	f := load(t, "10 STOP\n20 PRINT 1\n")
	assert.Equal(t, engine.SignalAbort, f.run().(*engine.Signal).Kind)
	assert.Empty(t, f.out.String())

	f = load(t, "10 END\n20 PRINT 1\n")
	assert.Equal(t, engine.SignalEnd, f.run().(*engine.Signal).Kind)
	assert.Empty(t, f.out.String())
}

func TestSummaries(t *testing.T) {
	f := load(t, "10 X = 1\n20 PRINT X\n", engine.WithSummaries(true))

	_, sum := f.env.Run(f.sink)

	assert.Equal(t, int64(2), sum.Lines)
	assert.Greater(t, sum.Instructions, sum.Lines)

	lines := strings.Split(strings.TrimSpace(f.out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "=== 2 lines compiled in "))
	assert.Equal(t, " 1 ", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "=== 2 lines with "))
	assert.Contains(t, sum.String(), "executed in")
}

func TestGosubReturn(t *testing.T) {
	f := load(t, "10 GOSUB 100\n20 PRINT \"BACK\"\n30 END\n100 PRINT \"SUB\"\n110 RETURN\n")
	f.run()

	assert.Equal(t, "SUB\nBACK\n", f.out.String())
}

func TestStackDepthOption(t *testing.T) {
	f := load(t, "10 GOSUB 10\n", engine.WithMaxStackDepth(5))
	f.run()

	require.Len(t, f.faults, 1)
	assert.Equal(t, engine.StackOverflow, f.faults[0].Code)
	assert.Equal(t, "stack overflow, more than 5 nested calls", f.faults[0].Message())
}

func TestScopeBalancedAfterFault(t *testing.T) {
	f := load(t, "10 DEF F(X) = G(X)\n20 Y = F(1)\n")
	f.run()

	require.Len(t, f.faults, 1)
	assert.Equal(t, engine.CallToUnknownFunction, f.faults[0].Code)
	assert.Equal(t, 0, f.env.Depth())
}

func TestDynamicScope(t *testing.T) {
	f := load(t, "10 DEF INNER(A) = A + B\n20 DEF OUTER(B) = INNER(1)\n30 PRINT OUTER(41)\n")
	f.run()

	assert.Equal(t, " 42 \n", f.out.String())
}

type panicHost struct {
	*host.DefaultHost
}

func (h panicHost) InitRun(env *engine.Environment) {
	h.DefaultHost.InitRun(env)
	env.SetFunction("boom", []string{"x"}, func(*engine.Environment, []engine.Constant) engine.Node {
		panic("kaboom")
	})
}

func TestPanicBecomesInternalError(t *testing.T) {
	f := loadWithHost(t, "10 X = BOOM(1)\n20 PRINT \"NO\"\n", func(h *host.DefaultHost) engine.Host {
		return panicHost{h}
	})
	f.run()

	require.Len(t, f.faults, 1)
	assert.Equal(t, engine.InternalError, f.faults[0].Code)
	assert.Contains(t, f.faults[0].Error(), "kaboom")
	assert.Equal(t, 0, f.env.Depth())
	assert.Empty(t, f.out.String())
}

func TestVariables(t *testing.T) {
	f := load(t, "10 A = 1\n20 B$ = \"X\"\n30 DIM C(2)\n")
	f.run()

	vars := f.env.Variables(10)
	require.Len(t, vars, 3)

	assert.Equal(t, engine.Variable{Name: "C", Value: "(0, 0, 0)", Type: "array(3) of number"}, vars[0])
	assert.Equal(t, engine.Variable{Name: "B$", Value: "X", Type: "string"}, vars[1])
	assert.Equal(t, engine.Variable{Name: "A", Value: "1", Type: "number"}, vars[2])

	assert.Len(t, f.env.Variables(1), 1)
}

type snapshotHost struct {
	*host.DefaultHost
	vars *[]engine.Variable
}

func (h snapshotHost) InitRun(env *engine.Environment) {
	h.DefaultHost.InitRun(env)
	env.SetFunction("snap", []string{"v"}, func(env *engine.Environment, _ []engine.Constant) engine.Node {
		*h.vars = env.Variables(-1)
		return engine.Number(0)
	})
}

func TestVariablesListsShadowedNameOnce(t *testing.T) {
	var vars []engine.Variable

	f := loadWithHost(t, "10 X = 1\n20 DEF F(X) = X + SNAP(0)\n30 Y = F(5)\n",
		func(h *host.DefaultHost) engine.Host {
			return snapshotHost{h, &vars}
		})
	f.run()
	require.Empty(t, f.faults)

	var xs []engine.Variable
	for _, v := range vars {
		if v.Name == "X" {
			xs = append(xs, v)
		}
	}

	require.Len(t, xs, 1)
	assert.Equal(t, "5", xs[0].Value)
}

func TestImplicitArrayTooLarge(t *testing.T) {
	f := load(t, "10 A(1,1,1,1,1,1,1,1,1,1,1,1) = 1\n20 PRINT \"NO\"\n")
	f.run()

	require.Len(t, f.faults, 1)
	assert.Equal(t, engine.Info, f.faults[0].Code)
	assert.Contains(t, f.faults[0].Error(), "invalid array dimension")
	assert.Empty(t, f.out.String())
	assert.Nil(t, f.env.Lookup("A"))
}

func TestDataCounter(t *testing.T) {
	f := load(t, "10 DATA 1, 2, 3\n20 READ X\n30 PRINT X\n")

	assert.True(t, f.env.SetDataCounter(3))
	assert.True(t, f.env.SetDataCounter(2))
	assert.False(t, f.env.SetDataCounter(4))
	assert.False(t, f.env.SetDataCounter(-1))
	assert.Equal(t, 2, f.env.DataCounter())

	f.run()
	assert.Equal(t, " 3 \n", f.out.String())
	assert.Equal(t, 3, f.env.DataCounter())
}

func TestLoadStartsOver(t *testing.T) {
	f := load(t, "10 A = 7\n")
	f.run()
	require.Len(t, f.env.Variables(-1), 1)

	prog, err := parser.Parse("10 PRINT A\n")
	require.NoError(t, err)
	require.NoError(t, f.env.Load(prog))

	assert.Empty(t, f.env.Variables(-1))
	assert.Equal(t, int64(0), f.env.ExecutedLines())

	f.run()
	assert.Equal(t, " 0 \n", f.out.String())
}

func TestLinkErrorsAccumulate(t *testing.T) {
	prog, err := parser.Parse("10 PRINT 1\n10 PRINT 2\n20 NEXT I\n")
	require.NoError(t, err)

	env := engine.New(host.New(host.NewTextIO(&bytes.Buffer{}, nil, 0)))
	err = env.Load(prog)
	require.Error(t, err)

	var linkErr *engine.LinkError
	require.True(t, errors.As(err, &linkErr))

	joined, ok := err.(interface{ Unwrap() []error })
	require.True(t, ok)
	assert.Len(t, joined.Unwrap(), 2)

	assert.Contains(t, err.Error(), "duplicate label 10")
	assert.Contains(t, err.Error(), "NEXT without FOR")
}

func TestNextVariableMismatch(t *testing.T) {
	prog, err := parser.Parse("10 FOR I = 1 TO 2\n20 NEXT J\n")
	require.NoError(t, err)

	env := engine.New(host.New(host.NewTextIO(&bytes.Buffer{}, nil, 0)))
	assert.ErrorContains(t, env.Load(prog), "NEXT J does not match FOR I")
}

func TestInput(t *testing.T) {
	out := &bytes.Buffer{}
	in := host.NewScannerReader(strings.NewReader("7, \"A,B\"\n"), nil)

	prog, err := parser.Parse("10 INPUT \"VALUES\"; X, S$\n20 PRINT X; S$\n")
	require.NoError(t, err)

	env := engine.New(host.New(host.NewTextIO(out, in, 0)))
	require.NoError(t, env.Load(prog))

	env.Run(nil)

	assert.False(t, env.HasEnded())
	assert.Equal(t, " 7 A,B\n", out.String())
}

func TestCompare(t *testing.T) {
	c, ok := engine.Compare(engine.Number(1), engine.Str("2"))
	assert.True(t, ok)
	assert.Equal(t, -1, c)

	c, ok = engine.Compare(engine.Str("B"), engine.Str("A"))
	assert.True(t, ok)
	assert.Equal(t, 1, c)

	c, ok = engine.Compare(engine.Str("abc"), engine.Number(1))
	assert.True(t, ok)
	assert.Equal(t, 1, c)

	c, ok = engine.Compare(engine.Bool(false), engine.Bool(true))
	assert.True(t, ok)
	assert.Equal(t, -1, c)

	assert.Nil(t, engine.Comparison("=>"))
}

func TestRunnerBreakpoint(t *testing.T) {
	f := load(t, "10 X = 1\n20 PRINT X\n30 END\n")
	r := engine.NewRunner(f.env, f.sink)

	require.NoError(t, r.SetBreakpoints(20))
	assert.Equal(t, []int{20}, r.Breakpoints())
	assert.Equal(t, engine.Starting, r.State())

	require.NoError(t, r.Start(context.Background()))
	assert.Equal(t, engine.Breaked, r.Wait())
	assert.Equal(t, 20, f.env.NextLine())
	assert.Empty(t, f.out.String())

	// stopped in front of the breakpoint until told to ignore it
	assert.Equal(t, -1, r.StepOver())
	assert.Equal(t, 20, f.env.NextLine())

	r.SetIgnoreNextBreakpoint(true)
	assert.Equal(t, 30, r.StepOver())
	assert.Equal(t, " 1 \n", f.out.String())

	require.NoError(t, r.Start(context.Background()))
	assert.Equal(t, engine.CompletedOK, r.Wait())
	assert.True(t, r.State().Completed())

	assert.ErrorIs(t, r.Start(context.Background()), engine.ErrCompleted)
	assert.Equal(t, -1, r.StepOver())
}

func TestRunnerFault(t *testing.T) {
	f := load(t, "10 PRINT 1\n20 RETURN\n30 PRINT 2\n")
	r := engine.NewRunner(f.env, f.sink)

	assert.Equal(t, 20, r.StepOver())
	assert.Equal(t, -1, r.StepOver())
	assert.Equal(t, engine.CompletedWithError, r.State())
	require.Len(t, f.faults, 1)
	assert.Equal(t, engine.ReturnWithoutGosub, f.faults[0].Code)
}

func TestRunnerStepOffTheEnd(t *testing.T) {
	f := load(t, "10 PRINT 1\n20 PRINT 2\n")
	r := engine.NewRunner(f.env, f.sink)

	assert.Equal(t, 20, r.StepOver())
	assert.Equal(t, engine.Starting, r.State())

	assert.Equal(t, -1, r.StepOver())
	assert.Equal(t, engine.CompletedOK, r.State())
	assert.Equal(t, " 1 \n 2 \n", f.out.String())
	assert.ErrorIs(t, r.Start(context.Background()), engine.ErrCompleted)
}

func TestRunnerBreak(t *testing.T) {
	f := load(t, "10 X = X + 1\n20 GOTO 10\n")
	r := engine.NewRunner(f.env, f.sink)

	require.NoError(t, r.Start(context.Background()))
	assert.ErrorIs(t, r.Start(context.Background()), engine.ErrRunning)
	assert.ErrorIs(t, r.SetBreakpoints(10), engine.ErrRunning)

	time.Sleep(10 * time.Millisecond)

	assert.Equal(t, engine.Breaked, r.Break())
	assert.Greater(t, f.env.ExecutedLines(), int64(0))

	// the run can be resumed
	require.NoError(t, r.SetBreakpoints(20))
	require.NoError(t, r.Start(context.Background()))
	assert.Equal(t, engine.Breaked, r.Wait())
	assert.Equal(t, 20, f.env.NextLine())
}

func TestRunnerContextCancel(t *testing.T) {
	f := load(t, "10 GOTO 10\n")
	r := engine.NewRunner(f.env, f.sink)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	require.NoError(t, r.Start(ctx))
	assert.Equal(t, engine.Breaked, r.Wait())
}

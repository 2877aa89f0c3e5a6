package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/t-stf/tsbasic/engine"
)

type commandScript []string

func (c *commandScript) ReadLine(prompt string) (string, bool) {
	if len(*c) == 0 {
		return "", false
	}
	line := (*c)[0]
	*c = (*c)[1:]
	return line, true
}

func debugSession(t *testing.T, src string, breakpoints []int, commands ...string) (*engine.Runner, *bytes.Buffer) {
	t.Helper()

	var out bytes.Buffer
	setupTestGlobals(&out)

	env, _ := loadProgram(writeProgram(t, src))
	require.NotNil(t, env)

	r := engine.NewRunner(env, reportFault)
	require.NoError(t, r.SetBreakpoints(breakpoints...))

	script := commandScript(commands)
	g.debugInput = &script

	debugProgram(r)

	return r, &out
}

func TestLookupCommand(t *testing.T) {
	assert.Equal(t, "step", lookupCommand("s").name)
	assert.Equal(t, "cont", lookupCommand("CONT").name)
	assert.Equal(t, "clear", lookupCommand("clear").name)
	assert.Nil(t, lookupCommand("frobnicate"))
	assert.Nil(t, lookupCommand(""))
}

func TestDebugContinueToBreakpoint(t *testing.T) {
	r, out := debugSession(t, "10 X = 1\n20 PRINT X\n30 PRINT X + 1\n", []int{20},
		"cont", "vars", "step", "cont", "quit")

	assert.Equal(t, engine.CompletedOK, r.State())
	assert.Equal(t, " 1 \n 2 \n", out.String())
}

func TestDebugEmptyLineRepeatsStep(t *testing.T) {
	r, out := debugSession(t, "10 PRINT 1\n20 PRINT 2\n30 PRINT 3\n", nil,
		"step", "", "")

	assert.Equal(t, engine.CompletedOK, r.State())
	assert.Equal(t, " 1 \n 2 \n 3 \n", out.String())
}

func TestDebugBreakAndClear(t *testing.T) {
	r, _ := debugSession(t, "10 PRINT 1\n20 PRINT 2\n30 PRINT 3\n", nil,
		"break 20 30", "clear 30", "quit")

	assert.Equal(t, []int{20}, r.Breakpoints())
	assert.Equal(t, engine.Starting, r.State())
}

func TestDebugFaultEndsSession(t *testing.T) {
	r, out := debugSession(t, "10 RETURN\n", nil, "cont", "step", "where")

	assert.Equal(t, engine.CompletedWithError, r.State())
	assert.Equal(t, "Fatal runtime error 5005 at line 10: RETURN without previous GOSUB\n",
		out.String())
}

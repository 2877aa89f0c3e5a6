package host

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/t-stf/tsbasic/engine"
	"github.com/t-stf/tsbasic/parser"
)

func runProgram(t *testing.T, src string) (string, []*engine.Fault) {
	t.Helper()

	var out bytes.Buffer
	var faults []*engine.Fault

	prog, err := parser.Parse(src)
	require.NoError(t, err)

	env := engine.New(New(NewTextIO(&out, nil, 0)))
	require.NoError(t, env.Load(prog))

	env.Run(func(f *engine.Fault) { faults = append(faults, f) })

	return out.String(), faults
}

func TestIntrinsics(t *testing.T) {
	out, faults := runProgram(t, `10 PRINT ABS(-2); INT(-2.5); SGN(0); SQR(9); EXP(0); LOG(1); SIN(0); COS(0); ATN(0); TAN(0)`)

	assert.Empty(t, faults)
	assert.Equal(t, " 2 -3  0  3  1  0  0  1  0  0 \n", out)
}

func TestIntrinsicInvalidArgument(t *testing.T) {
	_, faults := runProgram(t, `10 X = ABS("A")`)

	require.Len(t, faults, 1)
	assert.Equal(t, engine.Info, faults[0].Code)
	assert.Equal(t, "internal function called with invalid argument A", faults[0].Message())
}

func TestIntrinsicConvertsArgument(t *testing.T) {
	out, faults := runProgram(t, "10 A$ = \"16\"\n20 PRINT SQR(A$)\n")

	assert.Empty(t, faults)
	assert.Equal(t, " 4 \n", out)
}

func TestRndRepeatsPerRun(t *testing.T) {
	src := "10 PRINT RND\n20 PRINT RND\n"

	first, _ := runProgram(t, src)
	second, _ := runProgram(t, src)

	assert.Equal(t, first, second)
	lines := strings.Split(strings.TrimSpace(first), "\n")
	require.Len(t, lines, 2)
	assert.NotEqual(t, lines[0], lines[1])
}

func TestComparisonOperators(t *testing.T) {
	out, faults := runProgram(t, `10 IF 1 < 2 THEN 30
20 PRINT "NO"
30 IF "B" >= "A" THEN 50
40 PRINT "NO"
50 IF 2 <> 2 THEN 70
60 PRINT "OK"
70 END`)

	assert.Empty(t, faults)
	assert.Equal(t, "OK\n", out)
}

func TestSplitInput(t *testing.T) {
	assert.Equal(t, []string{"1", "2", "3"}, SplitInput("1, 2 ,3"))
	assert.Equal(t, []string{`"A, B"`, "C"}, SplitInput(`"A, B", C`))
	assert.Equal(t, []string{""}, SplitInput(""))
	assert.Equal(t, []string{"A", ""}, SplitInput("A,"))
}

type scriptedInput []string

func (l *scriptedInput) ReadLine(prompt string) (string, bool) {
	if len(*l) == 0 {
		return "", false
	}
	line := (*l)[0]
	*l = (*l)[1:]
	return line, true
}

func TestQueryInput(t *testing.T) {
	in := &scriptedInput{"1", "2, 3"}
	io := NewTextIO(&bytes.Buffer{}, in, 0)

	assert.Equal(t, []string{"1", "2", "3"}, io.QueryInput("N", []string{"A", "B"}))

	assert.Nil(t, io.QueryInput("", []string{"A"}))
	assert.Nil(t, NewTextIO(&bytes.Buffer{}, nil, 0).QueryInput("", []string{"A"}))
}

func TestScannerReaderPrompts(t *testing.T) {
	var out bytes.Buffer
	r := NewScannerReader(strings.NewReader("7\n8\n"), &out)
	io := NewTextIO(&out, r, 0)

	assert.Equal(t, []string{"7", "8"}, io.QueryInput("VALUES", []string{"A", "B"}))
	assert.Equal(t, "VALUES? ?? ", out.String())
}

func TestWriteMessage(t *testing.T) {
	var out bytes.Buffer
	io := NewTextIO(&out, nil, 0)

	io.WriteMessage("first")
	io.Write("partial")
	io.WriteMessage("second")

	assert.Equal(t, "first\npartial\nsecond\n", out.String())
	assert.Equal(t, DefaultZoneWidth, io.PrintZoneWidth())
	assert.Equal(t, 8, NewTextIO(&out, nil, 8).PrintZoneWidth())
}

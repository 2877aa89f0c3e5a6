package engine

import (
	"fmt"
	"math"
	"strings"
)

//
// PrintItem is either an expression or a separator (',' or ';')
//

type PrintItem struct {
	Expr Expr
	Sep  byte
}

type Print struct {
	Items []PrintItem
}

func (*Print) node() {}

//
// A separator as the last item keeps the cursor on the current line.
// Commas also move to the next print zone
//

func (s *Print) exec(env *Environment) Node {

	env.instructions++

	stayOnLine := false

	for _, item := range s.Items {
		stayOnLine = false

		if item.Expr == nil {
			stayOnLine = true
			if item.Sep == ',' {
				zone := env.zoneWidth()
				env.write(strings.Repeat(" ", zone-env.column%zone))
			}
			continue
		}

		switch v := item.Expr.eval(env).(type) {
		case Str:
			env.write(string(v))

		case Number:
			env.writeNumber(v)

		case Bool:
			n, _ := ToNumber(v)
			env.writeNumber(n)

		case *Signal:
			if v.IsAbort() {
				return v
			}
			if v.Kind == SignalTab {
				env.tab(v.Payload)
			}

		default:
			return env.Fail(InternalError, fmt.Sprintf("cannot print %T", v))
		}
	}

	if !stayOnLine {
		env.newLine()
	}

	return sigOK
}

//
// Numbers get a leading blank unless negative, and always a trailing
// one.  NaN and infinities are printed bare
//

func (env *Environment) writeNumber(n Number) {

	f := float64(n)

	if math.IsNaN(f) || math.IsInf(f, 0) {
		env.write(n.String())
		return
	}

	if f >= 0 {
		env.write(" ")
	}

	env.write(n.String())
	env.write(" ")
}

const maxTabColumn = 1 << 16

//
// TAB(n) moves to the 1-based column n, starting a new line if the
// cursor is already past it
//

func (env *Environment) tab(payload Node) {

	n, _ := payload.(Number)

	col := n.Int()
	if col <= 0 || col > maxTabColumn {
		env.Warn(InvalidTab, n)
		col = 1
	}
	col--

	if env.column > col {
		env.newLine()
	}

	env.write(strings.Repeat(" ", col-env.column))
}

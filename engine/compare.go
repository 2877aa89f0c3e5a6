package engine

import (
	"cmp"
	"strings"
)

//
// Compare orders two values.  If either is a number both are compared
// as numbers, provided both convert; failing that, if either is a
// string both are compared as strings; failing that, two booleans
// compare false < true.  The bool is false when none of that applies
//

func Compare(x, y Constant) (int, bool) {

	_, xNum := x.(Number)
	_, yNum := y.(Number)

	if xNum || yNum {
		nx, okx := ToNumber(x)
		ny, oky := ToNumber(y)
		if okx && oky {
			return cmp.Compare(float64(nx), float64(ny)), true
		}
	}

	_, xStr := x.(Str)
	_, yStr := y.(Str)

	if xStr || yStr {
		return strings.Compare(string(toStr(x)), string(toStr(y))), true
	}

	bx, xBool := x.(Bool)
	by, yBool := y.(Bool)

	if xBool && yBool {
		switch {
		case bx == by:
			return 0, true

		case !bool(bx):
			return -1, true
		}
		return 1, true
	}

	return 0, false
}

//
// Comparison returns the builtin for a relational operator: one of
// = <> < > <= >=.  The result is a Bool
//

func Comparison(op string) Builtin {

	var test func(c int) bool

	switch op {
	case "=":
		test = func(c int) bool { return c == 0 }

	case "<>":
		test = func(c int) bool { return c != 0 }

	case "<":
		test = func(c int) bool { return c < 0 }

	case ">":
		test = func(c int) bool { return c > 0 }

	case "<=":
		test = func(c int) bool { return c <= 0 }

	case ">=":
		test = func(c int) bool { return c >= 0 }

	default:
		return nil
	}

	return func(env *Environment, args []Constant) Node {
		if len(args) != 2 {
			return env.Fail(Info, EINCOMPATIBLE)
		}

		c, comparable := Compare(args[0], args[1])
		if !comparable {
			return env.Fail(Info, EINCOMPATIBLE)
		}

		return Bool(test(c))
	}
}

var RelationalOperators = []string{"=", "<>", "<", ">", "<=", ">="}

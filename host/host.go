// Package host supplies what a program needs from its surroundings:
// the intrinsic functions and a character device with print zones and
// line input.
package host

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/t-stf/tsbasic/engine"
)

//
// DefaultHost registers the standard intrinsics and does its I/O
// through an engine.InputOutput
//

type DefaultHost struct {
	io  engine.InputOutput
	rng *rand.Rand
}

func New(io engine.InputOutput) *DefaultHost {
	return &DefaultHost{io: io}
}

func (h *DefaultHost) IO() engine.InputOutput {
	return h.io
}

//
// InitRun restarts the random sequence with a fixed seed, so runs are
// repeatable until the program says RANDOMIZE
//

func (h *DefaultHost) InitRun(env *engine.Environment) {

	h.rng = rand.New(rand.NewSource(1))

	for name, fn := range numericFuncs {
		env.SetFunction(name, []string{"x"}, numFunc(fn))
	}

	env.SetFunction("rnd", nil, func(*engine.Environment, []engine.Constant) engine.Node {
		return engine.Number(h.rng.Float64())
	})

	env.SetFunction("randomize", nil, func(*engine.Environment, []engine.Constant) engine.Node {
		h.rng.Seed(time.Now().UnixNano())
		return engine.Number(1)
	})

	for _, op := range engine.RelationalOperators {
		env.SetFunction(op, []string{"x", "y"}, engine.Comparison(op))
	}
}

var numericFuncs = map[string]func(float64) float64{
	"abs": math.Abs,
	"atn": math.Atan,
	"sin": math.Sin,
	"cos": math.Cos,
	"exp": math.Exp,
	"log": math.Log,
	"int": math.Floor,
	"tan": math.Tan,
	"sqr": math.Sqrt,
	"sgn": sgn,
}

func sgn(x float64) float64 {

	switch {
	case x > 0:
		return 1

	case x < 0:
		return -1
	}

	return 0
}

func numFunc(fn func(float64) float64) engine.Builtin {

	return func(env *engine.Environment, args []engine.Constant) engine.Node {
		x, isNum := engine.ToNumber(args[0])
		if !isNum {
			return env.Fail(engine.Info,
				fmt.Sprintf(engine.EINVALIDARGUMENT, args[0]))
		}

		return engine.Number(fn(float64(x)))
	}
}

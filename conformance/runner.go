package conformance

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/t-stf/tsbasic/engine"
	"github.com/t-stf/tsbasic/host"
	"github.com/t-stf/tsbasic/parser"
)

// Result is what one run produced
type Result struct {
	Output    string
	Fault     int
	Warnings  []int
	LinkError error
}

// Run parses, links and runs a case's program with its input lines
func Run(c Case) Result {
	var out bytes.Buffer
	var res Result

	in := host.NewScannerReader(strings.NewReader(strings.Join(c.Input, "\n")), nil)
	textIO := host.NewTextIO(&out, in, c.ZoneWidth)

	prog, err := parser.Parse(c.Program)
	if err != nil {
		res.LinkError = err
		return res
	}

	env := engine.New(host.New(textIO))
	if err := env.Load(prog); err != nil {
		res.LinkError = err
		return res
	}

	env.Run(func(f *engine.Fault) {
		textIO.WriteMessage(f.Error())
		if !f.Fatal() {
			res.Warnings = append(res.Warnings, int(f.Code))
		}
	})

	if f := env.LastFault(); f != nil {
		res.Fault = int(f.Code)
	}

	res.Output = out.String()

	return res
}

// Check compares a result against the expectation of c
func Check(c Case, res Result) error {
	if c.Expect.LinkError != "" {
		if res.LinkError == nil {
			return fmt.Errorf("expected error containing %q, program ran", c.Expect.LinkError)
		}
		if !strings.Contains(res.LinkError.Error(), c.Expect.LinkError) {
			return fmt.Errorf("expected error containing %q, got %q", c.Expect.LinkError, res.LinkError)
		}
		return nil
	}

	if res.LinkError != nil {
		return fmt.Errorf("unexpected error: %v", res.LinkError)
	}

	if res.Output != c.Expect.Output {
		return fmt.Errorf("output mismatch\nexpected: %q\ngot:      %q", c.Expect.Output, res.Output)
	}

	if res.Fault != c.Expect.Fault {
		return fmt.Errorf("expected fault %d, got %d", c.Expect.Fault, res.Fault)
	}

	if fmt.Sprint(res.Warnings) != fmt.Sprint(c.Expect.Warnings) {
		return fmt.Errorf("expected warnings %v, got %v", c.Expect.Warnings, res.Warnings)
	}

	return nil
}

package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/t-stf/tsbasic/engine"
)

//
// A debugger command gets the runner and the words after the command
// name.  It returns true to end the session
//

type debugCommand struct {
	name  string
	alias string
	fn    func(d *debugger, args []string) bool
	help  string
}

var debugCommands []debugCommand

func init() {

	debugCommands = []debugCommand{
		{"step", "s", (*debugger).step, "Execute the next line"},
		{"cont", "c", (*debugger).cont,
			"Continue until a breakpoint, the end, or ^C"},
		{"break", "b", (*debugger).setBreak,
			"Set breakpoints on the given line numbers, or list them"},
		{"clear", "", (*debugger).clearBreak,
			"Clear the given breakpoints, or all of them"},
		{"list", "l", (*debugger).list,
			"List source lines around the next line, or a range N [M]"},
		{"vars", "v", (*debugger).vars,
			"Show the most recently used variables, N of them"},
		{"where", "w", (*debugger).where, "Show the next line and the state"},
		{"help", "h", (*debugger).help, "Show help for all or one command"},
		{"quit", "q", (*debugger).quit, "Leave the debugger"},
	}
}

func lookupCommand(name string) *debugCommand {

	name = strings.ToLower(name)

	for i := range debugCommands {
		if c := &debugCommands[i]; c.name == name || (c.alias != "" && c.alias == name) {
			return c
		}
	}

	return nil
}

type debugger struct {
	r          *engine.Runner
	elapsed    time.Duration
	summarized bool
}

//
// debugProgram reads commands until quit or end of input.  An empty
// line repeats the last step or cont
//

func debugProgram(r *engine.Runner) int {

	d := &debugger{r: r}

	fmt.Printf("tsbasic %s debugger, type help for commands\n", version)
	d.showNext()

	last := ""

	for {
		line, ok := g.debugInput.ReadLine(debugPrompt)
		if !ok {
			break
		}

		words := strings.Fields(line)
		if len(words) == 0 {
			if last != "step" && last != "cont" {
				continue
			}
			words = []string{last}
		}

		cmd := lookupCommand(words[0])
		if cmd == nil {
			fmt.Printf("Unknown command %q, type help for a list\n", words[0])
			continue
		}

		last = cmd.name

		if cmd.fn(d, words[1:]) {
			break
		}
	}

	return exitCode(r.State())
}

func (d *debugger) step(args []string) bool {

	if d.completed() {
		return false
	}

	d.r.SetIgnoreNextBreakpoint(true)

	start := time.Now()
	d.r.StepOver()
	d.elapsed += time.Since(start)

	d.afterRun()

	return false
}

func (d *debugger) cont(args []string) bool {

	if d.completed() {
		return false
	}

	if d.r.State() == engine.Breaked {
		d.r.SetIgnoreNextBreakpoint(true)
	}

	start := time.Now()

	if err := d.r.Start(context.Background()); err != nil {
		fmt.Println(err)
		return false
	}

	d.r.Wait()
	d.elapsed += time.Since(start)

	d.afterRun()

	return false
}

func (d *debugger) completed() bool {

	if d.r.State().Completed() {
		fmt.Println("The program has completed")
		return true
	}

	return false
}

func (d *debugger) afterRun() {

	if d.r.State().Completed() {
		if !d.summarized {
			d.r.Env().Summarize(d.elapsed)
			d.summarized = true
		}
		fmt.Printf("Program %s\n", d.r.State())
		return
	}

	d.showNext()
}

func (d *debugger) showNext() {

	n := d.r.Env().NextLine()
	if n < 0 {
		fmt.Println("At end of program")
		return
	}

	marker := ""
	if d.isBreakpoint(n) {
		marker = " [break]"
	}

	fmt.Printf("Next: %s%s\n", sourceText(d.lineAt(n)), marker)
}

func (d *debugger) isBreakpoint(n int) bool {

	for _, b := range d.r.Breakpoints() {
		if b == n {
			return true
		}
	}

	return false
}

//
// lineAt maps a line number, as shown in messages, to its source line
//

func (d *debugger) lineAt(n int) int {

	for _, l := range d.r.Env().Lines() {
		if l.Number() == n {
			return l.SourceLine
		}
	}

	return n
}

func sourceText(sourceLine int) string {

	if sourceLine < 1 || sourceLine > len(g.source) {
		return fmt.Sprintf("line %d", sourceLine)
	}

	return strings.TrimRight(g.source[sourceLine-1], " \t")
}

func (d *debugger) setBreak(args []string) bool {

	if len(args) == 0 {
		bps := d.r.Breakpoints()
		if len(bps) == 0 {
			fmt.Println("No breakpoints")
			return false
		}
		for _, b := range bps {
			fmt.Printf("  %d\n", b)
		}
		return false
	}

	lines, err := parseLineList(args)
	if err != nil {
		fmt.Println(err)
		return false
	}

	if err := d.r.SetBreakpoints(append(d.r.Breakpoints(), lines...)...); err != nil {
		fmt.Println(err)
	}

	return false
}

func (d *debugger) clearBreak(args []string) bool {

	var keep []int

	if len(args) > 0 {
		drop, err := parseLineList(args)
		if err != nil {
			fmt.Println(err)
			return false
		}

		dropped := make(map[int]bool, len(drop))
		for _, n := range drop {
			dropped[n] = true
		}

		for _, b := range d.r.Breakpoints() {
			if !dropped[b] {
				keep = append(keep, b)
			}
		}
	}

	if err := d.r.SetBreakpoints(keep...); err != nil {
		fmt.Println(err)
	}

	return false
}

const listContext = 5

func (d *debugger) list(args []string) bool {

	from, to := 0, 0

	switch len(args) {
	case 0:
		next := d.r.Env().NextLine()
		if next < 0 {
			next = len(g.source)
		} else {
			next = d.lineAt(next)
		}
		from, to = next-listContext, next+listContext

	default:
		nums, err := parseLineList(args[:min(len(args), 2)])
		if err != nil || len(nums) == 0 {
			fmt.Println("usage: list [N [M]]")
			return false
		}
		from = d.lineAt(nums[0])
		to = from + 2*listContext
		if len(nums) > 1 {
			to = d.lineAt(nums[1])
		}
	}

	for i := max(from, 1); i <= min(to, len(g.source)); i++ {
		fmt.Println(g.source[i-1])
	}

	return false
}

func (d *debugger) vars(args []string) bool {

	n := defaultVarCount

	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v <= 0 {
			fmt.Println("usage: vars [N]")
			return false
		}
		n = v
	}

	vars := d.r.Env().Variables(n)
	if len(vars) == 0 {
		fmt.Println("No variables")
		return false
	}

	for _, v := range vars {
		fmt.Printf("  %-10s %-28s %s\n", v.Name, v.Type, v.Value)
	}

	return false
}

func (d *debugger) where(args []string) bool {

	env := d.r.Env()

	fmt.Printf("State: %s, depth %d, %d %s executed\n", d.r.State(),
		env.Depth(), env.ExecutedLines(),
		pluralize("line", env.ExecutedLines()))

	if f := env.LastFault(); f != nil {
		fmt.Println(f)
	}

	if !d.r.State().Completed() {
		d.showNext()
	}

	return false
}

func (d *debugger) help(args []string) bool {

	if len(args) == 0 {
		executeHelp(nil)
		return false
	}

	cmd := lookupCommand(args[0])
	if cmd == nil {
		fmt.Printf("No help for %q\n", args[0])
		return false
	}

	executeHelp(cmd)

	return false
}

func (d *debugger) quit(args []string) bool {
	return true
}

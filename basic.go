package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/goforj/godump"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/t-stf/tsbasic/engine"
	"github.com/t-stf/tsbasic/host"
	"github.com/t-stf/tsbasic/parser"
)

func main() {
	os.Exit(run())
}

//
// run does the work of main, so that deferred cleanup happens before
// we exit.  The Liner instances in particular must be closed to get
// the terminal back into cooked mode
//

func run() int {

	configPath := flag.String("config", "", "YAML config file (default ~/"+
		defaultConfigFile+")")
	debug := flag.Bool("debug", false, "run the program under the debugger")
	breaks := flag.String("break", "", "comma separated breakpoint lines")
	stats := flag.Bool("stats", false, "print CPU and memory statistics")
	dump := flag.Bool("dump", false, "dump the parsed program")
	quiet := flag.Bool("quiet", false, "no compile and run summaries")
	logLevel := flag.String("log", "", "log level (debug, info, warn, error)")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Usage: tsbasic [flags] program.bas\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		return exitUsage
	}

	path, explicit := *configPath, *configPath != ""
	if !explicit {
		path = defaultConfigPath()
	}

	cfg, err := loadConfig(path, explicit)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "stats":
			cfg.Stats = *stats
		case "dump":
			cfg.Dump = *dump
		case "quiet":
			cfg.Summaries = !*quiet
		case "log":
			cfg.LogLevel = *logLevel
		}
	})

	if *breaks != "" {
		lines, err := parseLineList(strings.Split(*breaks, ","))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitUsage
		}
		cfg.Breakpoints = append(cfg.Breakpoints, lines...)
	}

	g.cfg = cfg

	setupLogging(cfg.LogLevel)

	initEnv()
	defer cleanupLiners()

	env, code := loadProgram(flag.Arg(0))
	if env == nil {
		return code
	}

	g.runner = engine.NewRunner(env, reportFault)

	//
	// Breakpoints only make sense under the debugger
	//

	if *debug {
		if err := g.runner.SetBreakpoints(cfg.Breakpoints...); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitUsage
		}
	}

	go sigHdlr()

	initClock()

	if *debug {
		code = debugProgram(g.runner)
	} else {
		code = runProgram(g.runner)
	}

	if cfg.Stats {
		printStatistics(env.ExecutedLines(), env.Instructions())
	}

	return code
}

//
// zerolog goes to stderr in console format, the way all our tools do
//

func setupLogging(level string) {

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(lvl)
}

func initEnv() {

	checkTerminal()

	setupLiners()

	g.io = host.NewTextIO(os.Stdout, g.input, setupWindow())
}

//
// Parse and link the program.  On failure the errors are printed and
// the exit code is returned with a nil environment
//

func loadProgram(filename string) (*engine.Environment, int) {

	src, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, exitUsage
	}

	g.source = strings.Split(strings.ReplaceAll(string(src), "\r\n", "\n"), "\n")

	prog, err := parser.Parse(string(src))
	if err != nil {
		printErrors(filename, err)
		return nil, exitCompileError
	}

	if g.cfg.Dump {
		godump.Dump(prog)
	}

	env := engine.New(host.New(g.io),
		engine.WithLogger(log.Logger),
		engine.WithMaxStackDepth(g.cfg.MaxStackDepth),
		engine.WithSummaries(g.cfg.Summaries))

	if err := env.Load(prog); err != nil {
		printErrors(filename, err)
		return nil, exitCompileError
	}

	return env, exitOK
}

//
// Syntax errors come as a parser.ErrorList, link errors joined into
// one error.  Either way, one line per error
//

func printErrors(filename string, err error) {

	var list parser.ErrorList
	if errors.As(err, &list) {
		for _, e := range list {
			fmt.Fprintf(os.Stderr, "%s:%d:%d: %s\n", filename, e.Line, e.Col,
				e.Msg)
		}
		return
	}

	if joined, isJoined := err.(interface{ Unwrap() []error }); isJoined {
		for _, e := range joined.Unwrap() {
			fmt.Fprintf(os.Stderr, "%s: %v\n", filename, e)
		}
		return
	}

	fmt.Fprintf(os.Stderr, "%s: %v\n", filename, err)
}

func reportFault(f *engine.Fault) {
	g.io.WriteMessage(f.Error())
}

//
// runProgram runs to completion, or until ^C
//

func runProgram(r *engine.Runner) int {

	start := time.Now()

	if err := r.Start(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitRuntimeError
	}

	state := r.Wait()
	if state == engine.Breaked {
		g.io.WriteMessage(fmt.Sprintf("Break at line %d", r.Env().NextLine()))
	}

	r.Env().Summarize(time.Since(start))

	return exitCode(state)
}

func exitCode(state engine.State) int {

	if state == engine.CompletedWithError {
		return exitRuntimeError
	}

	return exitOK
}

func parseLineList(items []string) ([]int, error) {

	var lines []int

	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		n, err := strconv.Atoi(item)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid line number %q", item)
		}
		lines = append(lines, n)
	}

	return lines, nil
}

func writeGoroutineStacks() {

	name := "goroutines-stacks"
	mode := (os.O_CREATE | os.O_WRONLY | os.O_TRUNC)

	dumpFile, err := os.OpenFile(name, mode, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to open %s (%v)\n", name, err)
		return
	}
	defer dumpFile.Close()

	_ = pprof.Lookup("goroutine").WriteTo(dumpFile, 2)

	fmt.Fprintf(os.Stderr, "Dumped goroutine stacks to %v\n", name)
}

//
// ^C breaks a running program; the debugger prompt or the exit path
// then takes over.  ^\ dumps the goroutine stacks
//

func sigHdlr() {

	ch := make(chan os.Signal, 1)

	signal.Notify(ch, syscall.SIGQUIT, syscall.SIGINT)

	for sig := range ch {
		switch sig {
		case syscall.SIGQUIT:
			writeGoroutineStacks()

		case syscall.SIGINT:
			if g.runner.State() == engine.Running {
				g.runner.Break()
			} else if !g.interactive {
				os.Exit(exitRuntimeError)
			}
		}
	}
}

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/danswartzendruber/liner"
	"github.com/rs/zerolog/log"
	"github.com/tklauser/go-sysconf"
	"golang.org/x/term"

	"github.com/t-stf/tsbasic/host"
)

//
// Line editing is only used if we are connected to a tty both ways.
// Otherwise input is read plainly, which lets programs and debugger
// sessions be driven from a pipe
//

func checkTerminal() {

	g.interactive = term.IsTerminal(int(os.Stdin.Fd())) &&
		term.IsTerminal(int(os.Stdout.Fd()))
}

//
// Read terminal geometry and size the print zones from it
//

func setupWindow() int {

	if g.cfg.ZoneWidth > 0 {
		return g.cfg.ZoneWidth
	}

	if !g.interactive {
		return host.DefaultZoneWidth
	}

	var err error

	g.window.cols, g.window.rows, err = term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		log.Debug().Err(err).Msg("unable to read terminal size")
		return host.DefaultZoneWidth
	}

	return min(max(g.window.cols/zonesPerLine, minZoneWidth), maxZoneWidth)
}

//
// We create two Liner instances.  One for the debugger prompt, and one
// for INPUT statements, so that the user's answers do not end up in the
// command history.  They are closed in reverse order, which returns the
// terminal to its previous state
//

func setupLiners() {

	if !g.interactive {
		reader := host.NewScannerReader(os.Stdin, os.Stdout)
		g.debugInput, g.input = reader, reader
		return
	}

	g.debugLiner = setupLiner()
	g.inputLiner = setupLiner()

	g.debugInput = &linerReader{l: g.debugLiner, history: true}
	g.input = &linerReader{l: g.inputLiner}
}

func setupLiner() *liner.State {

	l := liner.NewLiner()

	l.SetMultiLineMode(false)

	return l
}

func cleanupLiners() {
	cleanupLiner(&g.inputLiner)
	cleanupLiner(&g.debugLiner)
}

func cleanupLiner(linerState **liner.State) {

	if *linerState != nil {
		(*linerState).Close()
		*linerState = nil
	}
}

//
// linerReader reads lines with editing, and optionally history
//

type linerReader struct {
	l       *liner.State
	history bool
}

//
// ^C at a prompt and ^D at the start of a line both end the input
//

func (r *linerReader) ReadLine(prompt string) (string, bool) {

	line, err := r.l.Prompt(prompt)
	if err != nil {
		if !errors.Is(err, io.EOF) && !errors.Is(err, liner.ErrPromptAborted) {
			log.Error().Err(err).Msg("reading line")
		}
		return "", false
	}

	if r.history && strings.TrimSpace(line) != "" {
		r.l.AppendHistory(line)
	}

	return line, true
}

func pluralize(str string, num int64) string {

	//
	// Oddity: 0 is considered plural
	//

	if num != 1 {
		return str + "s"
	}

	return str
}

//
// Initialize the clock
//

func initClock() {

	s.elapsed = time.Now()
	s.utime, s.stime = getCPUInfo()
}

func printCpuUsage() {

	elapsed := time.Since(s.elapsed)
	utime, stime := getCPUInfo()

	fmt.Printf("CPU Usage: elapsed = %s / user = %s / system = %s\n",
		formatCPUTime(int64(elapsed.Seconds())),
		formatCPUTime(utime-s.utime), formatCPUTime(stime-s.stime))
}

func formatCPUTime(t int64) string {

	var h, m int64

	if t >= 3600 {
		h = t / 3600
		t = t % 3600
	}

	if t >= 60 {
		m = t / 60
		t = t % 60
	}

	return fmt.Sprintf("%02d:%02d:%02d", h, m, t)
}

//
// User and system CPU seconds from /proc.  Where that is not
// available we report zero rather than fail the run
//

func getCPUInfo() (int64, int64) {

	clktck, err := sysconf.Sysconf(sysconf.SC_CLK_TCK)
	if err != nil || clktck <= 0 {
		return 0, 0
	}

	contents, err := os.ReadFile("/proc/self/stat")
	if err != nil {
		return 0, 0
	}

	fields := strings.Fields(string(contents))
	if len(fields) < 15 {
		return 0, 0
	}

	utime, err := strconv.ParseInt(fields[13], 10, 64)
	if err != nil {
		return 0, 0
	}

	stime, err := strconv.ParseInt(fields[14], 10, 64)
	if err != nil {
		return 0, 0
	}

	return utime / clktck, stime / clktck
}

func convertToMB(num uint64) uint64 {
	return num / (1024 * 1024)
}

func printStatistics(lines, instructions int64) {

	var mem runtime.MemStats

	fmt.Println()
	printCpuUsage()
	runtime.GC()
	runtime.ReadMemStats(&mem)
	fmt.Printf("%dMB memory used\n", convertToMB(mem.HeapAlloc))
	fmt.Printf("%d %s executed\n", lines, pluralize("line", lines))
	fmt.Printf("%d %s executed\n", instructions,
		pluralize("instruction", instructions))
}

package main

import (
	"time"

	"github.com/danswartzendruber/liner"
	"github.com/t-stf/tsbasic/engine"
	"github.com/t-stf/tsbasic/host"
)

const (
	version = "1.0"

	debugPrompt       = "(debug) "
	defaultConfigFile = ".tsbasic.yaml"

	//
	// Terminal geometry: the zone width is the column count divided by
	// zonesPerLine, kept between the two limits
	//

	zonesPerLine = 5
	minZoneWidth = 8
	maxZoneWidth = host.DefaultZoneWidth

	defaultVarCount = 20
)

//
// Exit codes
//

const (
	exitOK = iota
	exitRuntimeError
	exitCompileError
	exitUsage
)

//
// Global state of the command
//

type globals struct {
	cfg         config
	interactive bool
	inputLiner  *liner.State
	debugLiner  *liner.State
	input       host.LineReader
	debugInput  host.LineReader
	io          *host.TextIO
	runner      *engine.Runner
	source      []string
	window      struct{ rows, cols int }
}

var g globals

//
// Run statistics, see printStatistics
//

type statistics struct {
	elapsed time.Time
	utime   int64
	stime   int64
}

var s statistics

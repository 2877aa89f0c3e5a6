package engine

import (
	"fmt"
	"strings"
)

type FaultCode int

//
// Fault codes.  Everything below fatalStart is reported and execution
// carries on; everything above it ends the run
//

const (
	nonFatalStart FaultCode = 1000

	DivisionByZero FaultCode = iota + nonFatalStart
	InvalidTab
)

const (
	fatalStart FaultCode = 5000

	Unspecified FaultCode = iota + fatalStart
	Info
	InternalError
	NotImplemented
	ReturnWithoutGosub
	JumpToUndefinedLabel
	JumpIntoForLoop
	CallToUnknownFunction
	_
	EndOfData
	ConversionError
	_
	ArrayIndexOutOfRange
	ArrayDimensionMismatch
	OnGotoIndexInvalid
	StackOverflow
	InputArgumentInvalid
	TypeMismatch
)

//
// Message templates, formatted with the fault's arguments.  Codes 5009
// and 5012 are retired and have no message
//

const (
	EDIVISIONBYZERO   = "division by zero"
	EINVALIDTAB       = "TAB(%v) is invalid"
	EUNSPECIFIED      = "no further information available"
	EINFO             = "%v"
	EINTERNAL         = "internal error: %v"
	ENOTIMPLEMENTED   = "%v not implemented"
	ERETURNNOGOSUB    = "RETURN without previous GOSUB"
	EUNDEFINEDLABEL   = "jump to undefined label %v"
	EJUMPINTOFOR      = "jump into a for loop from outside"
	EUNKNOWNFUNCTION  = "call to unknown function %v"
	EENDOFDATA        = "READ behind the end of available data"
	ECONVERSION       = "cannot convert '%v' to %v"
	EINDEXOUTOFRANGE  = "array index out of range for array %v"
	EDIMMISMATCH      = "array dimension mismatch for array %v"
	EONGOTOINDEX      = "ON...GOTO called with invalid index %v"
	ESTACKOVERFLOW    = "stack overflow, more than %v nested calls"
	EINPUTINVALID     = "'%v' is not a valid input value for variable '%v'"
	ETYPEMISMATCH     = "type mismatch for %v"
	EINCOMPATIBLE     = "incompatible types for comparison"
	ENOTANARRAY       = "simple variable '%v' is not an array"
	EDIMNONARRAY      = "DIM of non array variable %v"
	EINVALIDDIM       = "invalid array dimension %v for array %v"
	EINDEXTYPE        = "array index type mismatch"
	EINPUTABORTED     = "User aborted program during input"
	EINPUTTOOFEW      = "INPUT expected %v values but got only %v"
	EINVALIDARGUMENT  = "internal function called with invalid argument %v"
	EOPTIONBASE       = "OPTION BASE must be 0 or 1, not %v"
	EUNEXPECTEDSIGNAL = "unexpected %v in expression"
)

var faultMessages = map[FaultCode]string{
	DivisionByZero:         EDIVISIONBYZERO,
	InvalidTab:             EINVALIDTAB,
	Unspecified:            EUNSPECIFIED,
	Info:                   EINFO,
	InternalError:          EINTERNAL,
	NotImplemented:         ENOTIMPLEMENTED,
	ReturnWithoutGosub:     ERETURNNOGOSUB,
	JumpToUndefinedLabel:   EUNDEFINEDLABEL,
	JumpIntoForLoop:        EJUMPINTOFOR,
	CallToUnknownFunction:  EUNKNOWNFUNCTION,
	EndOfData:              EENDOFDATA,
	ConversionError:        ECONVERSION,
	ArrayIndexOutOfRange:   EINDEXOUTOFRANGE,
	ArrayDimensionMismatch: EDIMMISMATCH,
	OnGotoIndexInvalid:     EONGOTOINDEX,
	StackOverflow:          ESTACKOVERFLOW,
	InputArgumentInvalid:   EINPUTINVALID,
	TypeMismatch:           ETYPEMISMATCH,
}

func (c FaultCode) Fatal() bool {
	return c > fatalStart
}

//
// Fault is a runtime error raised while executing a line
//

type Fault struct {
	Line int
	Code FaultCode
	Args []any
}

func (f *Fault) Fatal() bool {
	return f.Code.Fatal()
}

//
// Message formats the code's template with the fault arguments.  An
// unknown code falls back to the unspecified message
//

func (f *Fault) Message() string {

	tmpl, found := faultMessages[f.Code]
	if !found {
		return EUNSPECIFIED
	}

	nVerbs := strings.Count(tmpl, "%v")
	if nVerbs == 0 {
		return tmpl
	}

	args := make([]any, nVerbs)
	for i := range args {
		if i < len(f.Args) {
			args[i] = f.Args[i]
		} else {
			args[i] = "?"
		}
	}

	return fmt.Sprintf(tmpl, args...)
}

func (f *Fault) Error() string {

	kind := "Runtime error"
	if f.Fatal() {
		kind = "Fatal runtime error"
	}

	return fmt.Sprintf("%s %d at line %d: %s", kind, f.Code, f.Line,
		f.Message())
}

//
// FaultSink receives fault notifications: every non-fatal fault and
// the one fatal fault that ends a run
//

type FaultSink func(f *Fault)

//
// LinkError is raised while linking a program, before anything runs
//

type LinkError struct {
	Line int
	Msg  string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

const (
	EDUPLICATELABEL = "duplicate label %s"
	EDUPLICATEDEF   = "duplicate def %s"
	ENEXTWITHOUTFOR = "NEXT without FOR"
	EFORWITHOUTNEXT = "FOR without NEXT"
	ENEXTMISMATCH   = "NEXT %s does not match FOR %s"
)

package parser

import (
	"fmt"
)

//
// Error is a syntax error at a source position
//

type Error struct {
	Line int
	Col  int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d:%d: %s", e.Line, e.Col, e.Msg)
}

//
// ErrorList collects every syntax error of a program
//

type ErrorList []*Error

func (l ErrorList) Error() string {

	switch len(l) {
	case 0:
		return "no errors"

	case 1:
		return l[0].Error()
	}

	return fmt.Sprintf("%s (and %d more errors)", l[0], len(l)-1)
}

func (l ErrorList) Err() error {

	if len(l) == 0 {
		return nil
	}

	return l
}

const (
	ESTATEMENT    = "statement expected"
	EEXPECTED     = "%s expected"
	EEXPRESSION   = "expression expected"
	ENUMVAR       = "numeric variable expected"
	ESTRINGEXPR   = "string expression expected"
	ENUMEXPR      = "numeric expression expected"
	ELABEL        = "line number or label expected"
	EDATUM        = "constant expected in DATA"
	ENUMBER       = "invalid number %s"
	EOPTIONBASE   = "OPTION BASE must be 0 or 1"
	ETRAILING     = "unexpected %s at end of statement"
	ECOMPARETYPES = "cannot compare a string with a number"
)

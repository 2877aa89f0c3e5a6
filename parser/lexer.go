package parser

import (
	"strings"
	"text/scanner"
	"unicode"
)

type tokenKind int

const (
	tokEOL tokenKind = iota
	tokNumber
	tokString
	tokIdent
	tokOp
	tokRem
)

type token struct {
	kind tokenKind
	text string
	col  int
}

//
// Two character operators, by their first character
//

var longOps = map[rune][]string{
	'<': {"<>", "<="},
	'>': {">="},
	'*': {"**"},
}

const singleOps = "+-*/^(),;=<>:"

//
// lexLine splits one source line into tokens, ending with tokEOL.  A
// REM swallows the rest of the line into a single tokRem
//

func lexLine(line string, lineNo int) ([]token, *Error) {

	line = separateLineNumber(strings.TrimLeft(line, " \t"))

	var s scanner.Scanner
	var scanErr *Error

	s.Init(strings.NewReader(line))
	s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats
	s.Whitespace = 1<<'\t' | 1<<' ' | 1<<'\r'
	s.IsIdentRune = basicIdentRune
	s.Error = func(s *scanner.Scanner, msg string) {
		if scanErr == nil {
			scanErr = &Error{Line: lineNo, Col: s.Pos().Column, Msg: msg}
		}
	}

	var toks []token

	for tok := s.Scan(); tok != scanner.EOF; tok = s.Scan() {
		col := s.Position.Column
		text := s.TokenText()

		switch {
		case tok == scanner.Ident:
			if strings.EqualFold(text, "rem") {
				rest := line[s.Position.Offset+len(text):]
				toks = append(toks, token{kind: tokRem, text: rest, col: col})
				return append(toks, token{kind: tokEOL, col: len(line) + 1}), scanErr
			}
			toks = append(toks, token{kind: tokIdent, text: text, col: col})

		case tok == scanner.Int || tok == scanner.Float:
			toks = append(toks, token{kind: tokNumber, text: text, col: col})

		case tok == '"':
			str, closed := scanString(&s)
			if !closed {
				return nil, &Error{Line: lineNo, Col: col, Msg: "unterminated string"}
			}
			toks = append(toks, token{kind: tokString, text: str, col: col})

		case strings.ContainsRune(singleOps, tok):
			op := string(tok)
			for _, long := range longOps[tok] {
				if s.Peek() == rune(long[1]) {
					s.Next()
					op = long
					break
				}
			}
			toks = append(toks, token{kind: tokOp, text: op, col: col})

		default:
			return nil, &Error{Line: lineNo, Col: col,
				Msg: "unexpected character " + text}
		}

		if scanErr != nil {
			return nil, scanErr
		}
	}

	return append(toks, token{kind: tokEOL, col: len(line) + 1}), scanErr
}

//
// Identifiers are letters and digits, and may end in '$'
//

func basicIdentRune(ch rune, i int) bool {

	if unicode.IsLetter(ch) {
		return true
	}

	return i > 0 && (unicode.IsDigit(ch) || ch == '$')
}

//
// The opening quote has been scanned; read up to the closing one.
// There are no escapes
//

func scanString(s *scanner.Scanner) (string, bool) {

	var sb strings.Builder

	for {
		ch := s.Next()
		switch ch {
		case scanner.EOF, '\n':
			return sb.String(), false

		case '"':
			return sb.String(), true
		}
		sb.WriteRune(ch)
	}
}

//
// Ugly: the scanner reads something like '100end' as the start of a
// float in exponent form.  If a line starts with digits followed by a
// letter, put a space after the digits
//

func separateLineNumber(line string) string {

	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}

	if i > 0 && i < len(line) && unicode.IsLetter(rune(line[i])) {
		return line[:i] + " " + line[i:]
	}

	return line
}

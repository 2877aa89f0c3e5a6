package host

import (
	"bufio"
	"io"
	"strings"
)

//
// LineReader reads one line of user input after showing prompt.  The
// bool is false if input ended or was aborted
//

type LineReader interface {
	ReadLine(prompt string) (string, bool)
}

const DefaultZoneWidth = 16

//
// TextIO is a character device over an io.Writer.  Input comes from a
// LineReader; without one, INPUT is aborted
//

type TextIO struct {
	w         io.Writer
	in        LineReader
	zoneWidth int
	lineStart bool
}

func NewTextIO(w io.Writer, in LineReader, zoneWidth int) *TextIO {

	if zoneWidth <= 0 {
		zoneWidth = DefaultZoneWidth
	}

	return &TextIO{w: w, in: in, zoneWidth: zoneWidth, lineStart: true}
}

func (t *TextIO) Write(s string) {

	if s == "" {
		return
	}

	_, _ = io.WriteString(t.w, s)
	t.lineStart = strings.HasSuffix(s, "\n")
}

func (t *TextIO) NewLine() {

	_, _ = io.WriteString(t.w, "\n")
	t.lineStart = true
}

func (t *TextIO) PrintZoneWidth() int {
	return t.zoneWidth
}

//
// Messages always sit on a line of their own
//

func (t *TextIO) WriteMessage(s string) {

	if !t.lineStart {
		t.NewLine()
	}

	t.Write(s)
	t.NewLine()
}

//
// QueryInput asks for comma separated values until there are as many
// as names.  The first prompt is the program's prompt followed by
// "? ", further ones are "?? "
//

func (t *TextIO) QueryInput(prompt string, names []string) []string {

	if t.in == nil {
		return nil
	}

	var values []string

	p := prompt + "? "
	for len(values) < len(names) {
		line, ok := t.in.ReadLine(p)
		if !ok {
			return nil
		}
		values = append(values, SplitInput(line)...)
		p = "?? "
	}

	t.lineStart = true

	return values
}

//
// SplitInput splits a line at commas that are not inside double
// quotes.  Quotes are kept, so the engine can tell a quoted string
// from a bare word
//

func SplitInput(line string) []string {

	var fields []string
	var sb strings.Builder

	quoted := false
	for _, c := range line {
		switch {
		case c == '"':
			quoted = !quoted
			sb.WriteRune(c)

		case c == ',' && !quoted:
			fields = append(fields, strings.TrimSpace(sb.String()))
			sb.Reset()

		default:
			sb.WriteRune(c)
		}
	}

	return append(fields, strings.TrimSpace(sb.String()))
}

//
// ScannerReader reads input lines from an io.Reader, echoing the
// prompt to w
//

type ScannerReader struct {
	w       io.Writer
	scanner *bufio.Scanner
}

func NewScannerReader(r io.Reader, w io.Writer) *ScannerReader {
	return &ScannerReader{w: w, scanner: bufio.NewScanner(r)}
}

func (s *ScannerReader) ReadLine(prompt string) (string, bool) {

	if s.w != nil {
		_, _ = io.WriteString(s.w, prompt)
	}

	if !s.scanner.Scan() {
		return "", false
	}

	return s.scanner.Text(), true
}

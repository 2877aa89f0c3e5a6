package engine

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

//
// Constant is a literal value: Number, Str or Bool.  Bool is only
// ever produced by comparisons and is never stored in a variable
//

type Constant interface {
	Expr
	Truth() bool
	String() string
	constant()
}

type Number float64

type Str string

type Bool bool

func (Number) node()     {}
func (Number) constant() {}

func (n Number) eval(*Environment) Node {
	return n
}

func (n Number) Truth() bool {

	f := float64(n)

	return f != 0 && !math.IsNaN(f)
}

func (n Number) String() string {
	return FormatNumber(float64(n))
}

//
// Int rounds half up, the way array subscripts, ON selectors and TAB
// arguments are taken
//

func (n Number) Int() int {

	f := math.Floor(float64(n) + 0.5)

	switch {
	case math.IsNaN(f):
		return math.MinInt32

	case f > math.MaxInt32:
		return math.MaxInt32

	case f < math.MinInt32:
		return math.MinInt32
	}

	return int(f)
}

func (Str) node()     {}
func (Str) constant() {}

func (s Str) eval(*Environment) Node {
	return s
}

//
// A string is true if it reads as "true", or as a nonzero integer
//

func (s Str) Truth() bool {

	t := strings.TrimSpace(string(s))

	switch {
	case strings.EqualFold(t, "true"):
		return true

	case strings.EqualFold(t, "false"):
		return false
	}

	if i, err := strconv.Atoi(t); err == nil {
		return i != 0
	}

	return false
}

func (s Str) String() string {
	return string(s)
}

func (Bool) node()     {}
func (Bool) constant() {}

func (b Bool) eval(*Environment) Node {
	return b
}

func (b Bool) Truth() bool {
	return bool(b)
}

func (b Bool) String() string {

	if b {
		return "True"
	}

	return "False"
}

//
// Conversions between the literal kinds.  ToNumber reads a Bool as 1
// or 0 and a Str by ParseNumber; ok is false when the text is not a
// number
//

func ToNumber(c Constant) (Number, bool) {

	switch v := c.(type) {
	case Number:
		return v, true

	case Bool:
		if v {
			return 1, true
		}
		return 0, true

	case Str:
		f, isNum := ParseNumber(string(v))
		return Number(f), isNum
	}

	return 0, false
}

func toStr(c Constant) Str {

	switch v := c.(type) {
	case Str:
		return v

	case Number:
		return Str(v.String())

	case Bool:
		return Str(v.String())
	}

	return ""
}

//
// FormatNumber renders the canonical text of a number: the shortest
// form that reads back to the same double, in positional notation for
// decimal exponents -4..14 and with an upper case exponent letter
// otherwise
//

func FormatNumber(f float64) string {

	switch {
	case math.IsNaN(f):
		return "NaN"

	case math.IsInf(f, 1):
		return "Inf"

	case math.IsInf(f, -1):
		return "-Inf"

	case f == 0:
		return "0"
	}

	s := strconv.FormatFloat(f, 'E', -1, 64)

	exp, err := strconv.Atoi(s[strings.LastIndexByte(s, 'E')+1:])
	if err != nil || exp < -4 || exp >= 15 {
		return s
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}

//
// ParseNumber reads a decimal number, tolerating blanks around it and
// a missing zero before the decimal point (".5", "-.5").  Words such
// as "inf" and hex forms are rejected
//

func ParseNumber(s string) (float64, bool) {

	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	sign := ""
	if s[0] == '+' || s[0] == '-' {
		sign, s = s[:1], s[1:]
	}

	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}

	if s == "" || s[0] < '0' || s[0] > '9' {
		return 0, false
	}

	for _, c := range s {
		if !strings.ContainsRune("0123456789.eE+-", c) {
			return 0, false
		}
	}

	f, err := strconv.ParseFloat(sign+s, 64)
	if err != nil {
		return 0, false
	}

	return f, true
}

//
// ParseDatum reads one DATA or INPUT item: a quoted string, a number,
// or a bare word which is taken as a string.  Anything else yields nil
//

func ParseDatum(s string) Constant {

	s = strings.TrimSpace(s)

	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return Str(s[1 : len(s)-1])
	}

	if f, isNum := ParseNumber(s); isNum {
		return Number(f)
	}

	if isWord(s) {
		return Str(s)
	}

	return nil
}

func isWord(s string) bool {

	if s == "" {
		return false
	}

	for i, c := range s {
		switch {
		case unicode.IsLetter(c):
		case i > 0 && (unicode.IsDigit(c) || c == '$'):
		default:
			return false
		}
	}

	return true
}

//
// Zero value for a variable of the given name
//

func zeroValue(name string) Constant {

	if IsStringName(name) {
		return Str("")
	}

	return Number(0)
}

//
// String variables, arrays and functions end with a dollar sign
//

func IsStringName(name string) bool {
	return strings.HasSuffix(name, "$")
}

func normalizeName(name string) string {
	return strings.ToUpper(name)
}

//
// Convert a value to the kind a variable of the given name holds.
// Returns nil if that is impossible
//

func convertFor(name string, c Constant) Constant {

	if IsStringName(name) {
		if _, isStr := c.(Str); isStr {
			return c
		}
		return nil
	}

	if n, isNum := c.(Number); isNum {
		return n
	}

	if b, isBool := c.(Bool); isBool {
		n, _ := ToNumber(b)
		return n
	}

	return nil
}

//
// Same as convertFor, but strings are parsed into numbers and numbers
// formatted into strings.  READ and INPUT use this
//

func coerceFor(name string, c Constant) Constant {

	if IsStringName(name) {
		return toStr(c)
	}

	if n, isNum := ToNumber(c); isNum {
		return n
	}

	return nil
}

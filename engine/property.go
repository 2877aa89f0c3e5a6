package engine

import (
	"fmt"
	"slices"
	"strings"
)

//
// Property is a named binding in a Context.  The implementations are
// *ScalarProperty, *FunctionProperty and *ArrayProperty
//

type Property interface {
	Name() string
	TypeName() string
	ValueString(maxLen int) string
	base() *propertyBase
}

//
// lastAccess is the instruction count at the last lookup, used to list
// the most recently touched variables
//

type propertyBase struct {
	name       string
	lastAccess int64
}

func (p *propertyBase) Name() string {
	return p.name
}

func (p *propertyBase) base() *propertyBase {
	return p
}

func elementType(name string) string {

	if IsStringName(name) {
		return "string"
	}

	return "number"
}

func truncate(s string, maxLen int) string {

	if maxLen <= 3 || len(s) <= maxLen {
		return s
	}

	return s[:maxLen-3] + "..."
}

type ScalarProperty struct {
	propertyBase
	Value Constant
}

func NewScalar(name string, value Constant) *ScalarProperty {
	return &ScalarProperty{propertyBase: propertyBase{name: name}, Value: value}
}

func (p *ScalarProperty) TypeName() string {
	return elementType(p.name)
}

func (p *ScalarProperty) ValueString(maxLen int) string {
	return truncate(p.Value.String(), maxLen)
}

//
// Builtin is the apply operation of a function.  The arguments are
// already evaluated; the formal names are bound in the callee scope
// before Builtin runs
//

type Builtin func(env *Environment, args []Constant) Node

type FunctionProperty struct {
	propertyBase
	Args  []string
	Apply Builtin
}

func NewFunction(name string, args []string, apply Builtin) *FunctionProperty {

	return &FunctionProperty{
		propertyBase: propertyBase{name: name},
		Args:         args,
		Apply:        apply,
	}
}

func (p *FunctionProperty) TypeName() string {
	return "function(" + strings.Join(p.Args, ",") + ")"
}

func (p *FunctionProperty) ValueString(int) string {
	return ""
}

//
// ArrayProperty stores its cells densely, dimension 0 varying fastest.
// A nil cell has never been assigned and reads as the zero value
//

type ArrayProperty struct {
	propertyBase
	dims []int
	data []Constant
}

//
// Arrays used without DIM get this extent in every dimension
//

const implicitExtent = 11

const maxArrayCells = 1 << 24

func NewArray(name string, dims []int) *ArrayProperty {

	return &ArrayProperty{
		propertyBase: propertyBase{name: name},
		dims:         slices.Clone(dims),
		data:         make([]Constant, cellCount(dims)),
	}
}

func implicitDims(n int) []int {

	dims := make([]int, n)
	for i := range dims {
		dims[i] = implicitExtent
	}

	return dims
}

func cellCount(dims []int) int {

	n := 1
	for _, d := range dims {
		n *= d
	}

	return n
}

//
// fits reports whether an array of these extents stays within
// maxArrayCells.  It stops multiplying as soon as the limit is passed
//

func fits(dims []int) bool {

	n := 1
	for _, d := range dims {
		if d < 0 || d > maxArrayCells {
			return false
		}
		n *= d
		if n > maxArrayCells {
			return false
		}
	}

	return true
}

func (a *ArrayProperty) Dims() []int {
	return slices.Clone(a.dims)
}

func (a *ArrayProperty) offset(idx []int) (int, bool) {

	if len(idx) != len(a.dims) {
		return 0, false
	}

	off, prod := 0, 1
	for i, ix := range idx {
		if ix < 0 || ix >= a.dims[i] {
			return 0, false
		}
		off += prod * ix
		prod *= a.dims[i]
	}

	return off, true
}

//
// Get returns the cell at idx, or the zero value if it was never set.
// The bool is false if idx is out of range
//

func (a *ArrayProperty) Get(idx []int) (Constant, bool) {

	off, inRange := a.offset(idx)
	if !inRange {
		return nil, false
	}

	if v := a.data[off]; v != nil {
		return v, true
	}

	return zeroValue(a.name), true
}

func (a *ArrayProperty) Set(idx []int, v Constant) bool {

	off, inRange := a.offset(idx)
	if !inRange {
		return false
	}

	a.data[off] = v

	return true
}

//
// Redim reshapes the array.  Every cell of the old shape is visited
// once and copied if it was set and its index is valid in the new
// shape.  Returns false on a dimension count mismatch
//

func (a *ArrayProperty) Redim(dims []int) bool {

	if len(dims) != len(a.dims) {
		return false
	}

	if slices.Equal(dims, a.dims) {
		return true
	}

	na := NewArray(a.name, dims)
	idx := make([]int, len(a.dims))

	for {
		off, _ := a.offset(idx)
		if v := a.data[off]; v != nil {
			na.Set(idx, v)
		}

		d := 0
		for ; d < len(idx); d++ {
			idx[d]++
			if idx[d] < a.dims[d] {
				break
			}
			idx[d] = 0
		}

		if d == len(idx) {
			break
		}
	}

	a.dims, a.data = na.dims, na.data

	return true
}

func (a *ArrayProperty) TypeName() string {

	dims := make([]string, len(a.dims))
	for i, d := range a.dims {
		dims[i] = fmt.Sprint(d)
	}

	return fmt.Sprintf("array(%s) of %s", strings.Join(dims, ","),
		elementType(a.name))
}

func (a *ArrayProperty) ValueString(maxLen int) string {

	var sb strings.Builder

	sb.WriteByte('(')
	for i, v := range a.data {
		if i > 0 {
			sb.WriteString(", ")
		}
		if v == nil {
			v = zeroValue(a.name)
		}
		sb.WriteString(v.String())
		if maxLen > 0 && sb.Len() > maxLen {
			break
		}
	}
	sb.WriteByte(')')

	return truncate(sb.String(), maxLen)
}

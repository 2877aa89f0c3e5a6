package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBreakpointSet(t *testing.T) {
	bs := newBreakpointSet(30, 10, 20, 10)

	assert.Equal(t, 3, bs.count)
	assert.Equal(t, []int{10, 20, 30}, bs.lines())

	assert.True(t, bs.contains(20))
	assert.False(t, bs.contains(25))
	assert.False(t, bs.contains(-1))
}

func TestEmptyBreakpointSet(t *testing.T) {
	bs := newBreakpointSet()

	assert.Empty(t, bs.lines())
	assert.False(t, bs.contains(10))
}

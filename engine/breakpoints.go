package engine

import (
	"github.com/danswartzendruber/avl"
)

//
// Breakpoints are kept in an AVL tree ordered by line number, so the
// debugger can list them in order and the scheduler can look one up
// before every line
//

type breakpoint struct {
	avl  avl.AvlNode
	line int
}

type breakpointSet struct {
	root  *avl.AvlNode
	count int
}

func cmpBreakpointKey(key any, node any) int {
	return cmpLines(key.(int), node.(*breakpoint).line)
}

func cmpBreakpoints(node1, node2 any) int {
	return cmpLines(node1.(*breakpoint).line, node2.(*breakpoint).line)
}

func cmpLines(a, b int) int {

	switch {
	case a < b:
		return -1

	case a > b:
		return 1
	}

	return 0
}

func newBreakpointSet(lines ...int) *breakpointSet {

	bs := &breakpointSet{}
	for _, l := range lines {
		bs.insert(l)
	}

	return bs
}

//
// Inserting a line that is already set is a no-op
//

func (bs *breakpointSet) insert(line int) {

	bp := &breakpoint{line: line}
	if avl.AvlTreeInsert(&bs.root, &bp.avl, bp, cmpBreakpoints) == nil {
		bs.count++
	}
}

func (bs *breakpointSet) contains(line int) bool {
	return avl.AvlTreeLookup(bs.root, line, cmpBreakpointKey) != nil
}

func (bs *breakpointSet) lines() []int {

	lines := make([]int, 0, bs.count)

	p := avl.AvlTreeFirstInOrder(bs.root)
	for p != nil {
		bp := p.(*breakpoint)
		lines = append(lines, bp.line)
		p = avl.AvlTreeNextInOrder(&bp.avl)
	}

	return lines
}

package search

import (
	"container/heap"
	"math"

	"github.com/beka-birhanu/vinom-search/maze"
)

// Route is an ordered walk from a start cell to a goal cell, both inclusive.
type Route []maze.CellPosition

// Terminal returns the last cell of the route.
func (r Route) Terminal() maze.CellPosition {
	return r[len(r)-1]
}

// node is the A* scratch state of one cell, kept in an arena parallel to the
// grid's cell arena. prev is the arena index of the predecessor, -1 for none.
type node struct {
	g, h, f int
	prev    int
	closed  bool
}

type fringeItem struct {
	f, h int
	g    int
	idx  int
	seq  int
}

// fringe is a min-heap on f, then h, then insertion order.
type fringe []fringeItem

func (q fringe) Len() int { return len(q) }
func (q fringe) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	if q[i].h != q[j].h {
		return q[i].h < q[j].h
	}
	return q[i].seq < q[j].seq
}
func (q fringe) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *fringe) Push(x any)   { *q = append(*q, x.(fringeItem)) }
func (q *fringe) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// FindRoute runs A* on the knowledge grid from start to goal with unit step
// cost and the Manhattan heuristic. Unconfirmed cells are assumed passable;
// only cells known to be blocked are avoided. ok is false when no route exists
// under the current knowledge. An error is returned only for out-of-range
// positions.
func FindRoute(k *maze.Grid, start, goal maze.CellPosition) (route Route, ok bool, err error) {
	startIdx, err := k.Index(start)
	if err != nil {
		return nil, false, err
	}
	goalIdx, err := k.Index(goal)
	if err != nil {
		return nil, false, err
	}

	nodes := make([]node, k.Len())
	for i := range nodes {
		nodes[i] = node{g: math.MaxInt, prev: -1}
	}

	seq := 0
	q := &fringe{}
	h := start.Manhattan(goal)
	nodes[startIdx] = node{g: 0, h: h, f: h, prev: -1}
	heap.Push(q, fringeItem{f: h, h: h, g: 0, idx: startIdx, seq: seq})

	for q.Len() > 0 {
		item := heap.Pop(q).(fringeItem)
		current := &nodes[item.idx]
		if current.closed || item.g != current.g {
			continue
		}
		current.closed = true

		if item.idx == goalIdx {
			return reconstruct(k, nodes, goalIdx), true, nil
		}

		for _, n := range k.Neighbors(k.PositionOf(item.idx)) {
			nIdx := n.Row*k.Dim() + n.Col
			next := &nodes[nIdx]
			if next.closed || k.At(nIdx).IsBlocked() {
				continue
			}

			g := current.g + 1
			if g >= next.g {
				continue
			}
			next.g = g
			next.h = n.Manhattan(goal)
			next.f = next.g + next.h
			next.prev = item.idx

			seq++
			heap.Push(q, fringeItem{f: next.f, h: next.h, g: next.g, idx: nIdx, seq: seq})
		}
	}

	return nil, false, nil
}

// reconstruct follows predecessor indices back from the goal and reverses them.
func reconstruct(k *maze.Grid, nodes []node, goalIdx int) Route {
	var route Route
	for idx := goalIdx; idx != -1; idx = nodes[idx].prev {
		route = append(route, k.PositionOf(idx))
	}
	for i, j := 0, len(route)-1; i < j; i, j = i+1, j-1 {
		route[i], route[j] = route[j], route[i]
	}
	return route
}

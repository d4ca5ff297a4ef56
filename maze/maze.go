/*
Package maze provides the square grids the search agent works on.

A Grid is used in two roles. The ground truth is fully specified: every cell is
Empty, Blocked or the single Target, and every open cell has a terrain. The
knowledge grid is the agent's private copy that starts Unconfirmed everywhere
and only learns through sensing.

Cells are stored in a flat arena indexed by row*dim+col so that search code can
keep per-cell scratch state in parallel slices instead of on the cells.
*/
package maze

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
)

const (
	maxGridDimension = 1024
)

// Offset is a named relative move on the grid.
type Offset struct {
	Name  string
	Delta CellPosition
}

var (
	// Directions are the 4-connected moves in N, E, S, W order.
	Directions = []Offset{
		{Name: "North", Delta: CellPosition{Row: -1, Col: 0}},
		{Name: "East", Delta: CellPosition{Row: 0, Col: 1}},
		{Name: "South", Delta: CellPosition{Row: 1, Col: 0}},
		{Name: "West", Delta: CellPosition{Row: 0, Col: -1}},
	}

	// Diagonals complete Directions to the 8-connected neighbourhood.
	Diagonals = []Offset{
		{Name: "NorthWest", Delta: CellPosition{Row: -1, Col: -1}},
		{Name: "NorthEast", Delta: CellPosition{Row: -1, Col: 1}},
		{Name: "SouthWest", Delta: CellPosition{Row: 1, Col: -1}},
		{Name: "SouthEast", Delta: CellPosition{Row: 1, Col: 1}},
	}

	ErrOutOfBounds       = errors.New("position is out of the grid")
	ErrInvalidDimension  = errors.New("invalid grid dimension")
	ErrNoTarget          = errors.New("grid has no target")
	ErrInvalidTransition = errors.New("invalid cell status transition")
	ErrInvalidTerrain    = errors.New("invalid terrain for an open cell")
)

// Grid is a dim x dim arena of cells.
type Grid struct {
	dim       int
	cells     []Cell
	target    CellPosition
	hasTarget bool
}

// NewKnowledge creates a grid where every cell is Unconfirmed with Unknown terrain.
func NewKnowledge(dim int) (*Grid, error) {
	return newGrid(dim, StatusUnconfirmed, TerrainUnknown)
}

func newGrid(dim int, status Status, terrain Terrain) (*Grid, error) {
	if dim <= 0 || dim > maxGridDimension {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDimension, dim)
	}

	cells := make([]Cell, dim*dim)
	for i := range cells {
		cells[i] = Cell{
			Pos:     CellPosition{Row: i / dim, Col: i % dim},
			Status:  status,
			Terrain: terrain,
		}
	}

	return &Grid{dim: dim, cells: cells}, nil
}

// Dim returns the side length of the grid.
func (g *Grid) Dim() int {
	return g.dim
}

// Len returns the number of cells in the grid.
func (g *Grid) Len() int {
	return len(g.cells)
}

// InBound reports whether pos lies inside the grid.
func (g *Grid) InBound(pos CellPosition) bool {
	return pos.Row >= 0 && pos.Row < g.dim && pos.Col >= 0 && pos.Col < g.dim
}

// Index returns the arena index of pos.
func (g *Grid) Index(pos CellPosition) (int, error) {
	if !g.InBound(pos) {
		return 0, fmt.Errorf("%w: %s in %dx%d", ErrOutOfBounds, pos, g.dim, g.dim)
	}
	return pos.Row*g.dim + pos.Col, nil
}

// PositionOf returns the position stored at arena index idx.
func (g *Grid) PositionOf(idx int) CellPosition {
	return CellPosition{Row: idx / g.dim, Col: idx % g.dim}
}

// Cell returns the cell at pos.
func (g *Grid) Cell(pos CellPosition) (*Cell, error) {
	idx, err := g.Index(pos)
	if err != nil {
		return nil, err
	}
	return &g.cells[idx], nil
}

// At returns the cell at arena index idx. idx must come from Index.
func (g *Grid) At(idx int) *Cell {
	return &g.cells[idx]
}

// Neighbors returns the in-bound 4-connected neighbours of pos in N, E, S, W order.
func (g *Grid) Neighbors(pos CellPosition) []CellPosition {
	return g.offsets(pos, Directions)
}

// AllNeighbors returns the in-bound 8-connected neighbours of pos.
func (g *Grid) AllNeighbors(pos CellPosition) []CellPosition {
	return append(g.Neighbors(pos), g.offsets(pos, Diagonals)...)
}

func (g *Grid) offsets(pos CellPosition, offsets []Offset) []CellPosition {
	result := make([]CellPosition, 0, len(offsets))
	for _, o := range offsets {
		n := CellPosition{Row: pos.Row + o.Delta.Row, Col: pos.Col + o.Delta.Col}
		if g.InBound(n) {
			result = append(result, n)
		}
	}
	return result
}

// Target returns the target position of a ground-truth grid.
func (g *Grid) Target() (CellPosition, error) {
	if !g.hasTarget {
		return CellPosition{}, ErrNoTarget
	}
	return g.target, nil
}

// setOpen turns pos into a traversable cell of the given terrain.
func (g *Grid) setOpen(pos CellPosition, terrain Terrain) error {
	if !terrain.IsOpen() {
		return fmt.Errorf("%w: %s", ErrInvalidTerrain, terrain)
	}
	c, err := g.Cell(pos)
	if err != nil {
		return err
	}
	if c.IsTarget() {
		g.hasTarget = false
	}
	c.Status = StatusEmpty
	c.Terrain = terrain
	return nil
}

// setBlocked turns pos into an obstacle.
func (g *Grid) setBlocked(pos CellPosition) error {
	c, err := g.Cell(pos)
	if err != nil {
		return err
	}
	if c.IsTarget() {
		g.hasTarget = false
	}
	c.Status = StatusBlocked
	c.Terrain = TerrainBlocked
	return nil
}

// SetTarget moves the single target of a ground-truth grid to pos.
// pos must be an open cell.
func (g *Grid) SetTarget(pos CellPosition) error {
	c, err := g.Cell(pos)
	if err != nil {
		return err
	}
	if c.IsBlocked() || !c.Terrain.IsOpen() {
		return fmt.Errorf("%w: target on %s cell %s", ErrInvalidTransition, c.Status, pos)
	}

	if g.hasTarget {
		g.cells[g.target.Row*g.dim+g.target.Col].Status = StatusEmpty
	}
	c.Status = StatusTarget
	g.target = pos
	g.hasTarget = true
	return nil
}

// MoveTarget relocates the target to a uniformly chosen unblocked 8-neighbour.
// The target stays put when it is boxed in.
func (g *Grid) MoveTarget(rng *rand.Rand) (CellPosition, error) {
	if !g.hasTarget {
		return CellPosition{}, ErrNoTarget
	}

	var open []CellPosition
	for _, n := range g.AllNeighbors(g.target) {
		if !g.cells[n.Row*g.dim+n.Col].IsBlocked() {
			open = append(open, n)
		}
	}
	if len(open) == 0 {
		return g.target, nil
	}

	next := open[rng.Intn(len(open))]
	if err := g.SetTarget(next); err != nil {
		return CellPosition{}, err
	}
	return next, nil
}

// MarkEmpty records that pos was entered and is traversable with the given terrain.
// Only Unconfirmed cells may change; re-marking an Empty cell is a no-op.
func (g *Grid) MarkEmpty(pos CellPosition, terrain Terrain) error {
	c, err := g.Cell(pos)
	if err != nil {
		return err
	}
	switch c.Status {
	case StatusEmpty:
		return nil
	case StatusUnconfirmed:
		if !terrain.IsOpen() {
			return fmt.Errorf("%w: %s", ErrInvalidTerrain, terrain)
		}
		c.Status = StatusEmpty
		c.Terrain = terrain
		return nil
	default:
		return fmt.Errorf("%w: %s -> %s at %s", ErrInvalidTransition, c.Status, StatusEmpty, pos)
	}
}

// MarkBlocked records that pos is an obstacle (observed or inferred).
// Only Unconfirmed cells may change; re-marking a Blocked cell is a no-op.
func (g *Grid) MarkBlocked(pos CellPosition) error {
	c, err := g.Cell(pos)
	if err != nil {
		return err
	}
	switch c.Status {
	case StatusBlocked:
		return nil
	case StatusUnconfirmed:
		c.Status = StatusBlocked
		c.Terrain = TerrainBlocked
		return nil
	default:
		return fmt.Errorf("%w: %s -> %s at %s", ErrInvalidTransition, c.Status, StatusBlocked, pos)
	}
}

// Reachable reports whether a 4-connected route of non-blocked cells joins from and to.
func (g *Grid) Reachable(from, to CellPosition) bool {
	start, err := g.Index(from)
	if err != nil {
		return false
	}
	goal, err := g.Index(to)
	if err != nil {
		return false
	}
	if g.cells[start].IsBlocked() || g.cells[goal].IsBlocked() {
		return false
	}

	seen := make([]bool, len(g.cells))
	seen[start] = true
	queue := []int{start}
	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		if idx == goal {
			return true
		}
		for _, n := range g.Neighbors(g.PositionOf(idx)) {
			nIdx := n.Row*g.dim + n.Col
			if !seen[nIdx] && !g.cells[nIdx].IsBlocked() {
				seen[nIdx] = true
				queue = append(queue, nIdx)
			}
		}
	}
	return false
}

// Clone returns an independent deep copy of the grid.
func (g *Grid) Clone() *Grid {
	cells := make([]Cell, len(g.cells))
	copy(cells, g.cells)
	return &Grid{
		dim:       g.dim,
		cells:     cells,
		target:    g.target,
		hasTarget: g.hasTarget,
	}
}

// String provides a plain textual representation of the grid, one status digit per cell.
func (g *Grid) String() string {
	var b strings.Builder
	for row := 0; row < g.dim; row++ {
		for col := 0; col < g.dim; col++ {
			if col > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%d", int(g.cells[row*g.dim+col].Status))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

package search

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/beka-birhanu/vinom-search/maze"
)

// ErrNoCandidate means the belief has no cell to aim for. With a belief
// defined everywhere this indicates corrupted state.
var ErrNoCandidate = errors.New("no target candidate in belief")

// Candidates returns every cell holding the maximum belief at the smallest
// hop distance from start, together with that distance. Distance is plain
// 4-connected hop count: obstacles and unknown cells are ignored.
func Candidates(b *Belief, start maze.CellPosition) ([]maze.CellPosition, int, error) {
	startIdx, err := b.index(start)
	if err != nil {
		return nil, 0, err
	}

	maximum := b.Max()
	if maximum <= 0 {
		return nil, 0, fmt.Errorf("%w: maximum belief is %v", ErrNoCandidate, maximum)
	}

	seen := make([]bool, len(b.values))
	seen[startIdx] = true
	layer := []maze.CellPosition{start}

	for distance := 0; len(layer) > 0; distance++ {
		var found []maze.CellPosition
		for _, pos := range layer {
			if Close(b.values[pos.Row*b.dim+pos.Col], maximum) {
				found = append(found, pos)
			}
		}
		if len(found) > 0 {
			return found, distance, nil
		}

		var next []maze.CellPosition
		for _, pos := range layer {
			for _, d := range maze.Directions {
				n := maze.CellPosition{Row: pos.Row + d.Delta.Row, Col: pos.Col + d.Delta.Col}
				idx, err := b.index(n)
				if err != nil || seen[idx] {
					continue
				}
				seen[idx] = true
				next = append(next, n)
			}
		}
		layer = next
	}

	return nil, 0, fmt.Errorf("%w: maximum %v not found from %s", ErrNoCandidate, maximum, start)
}

// SelectTarget picks uniformly at random among Candidates.
func SelectTarget(b *Belief, start maze.CellPosition, rng *rand.Rand) (maze.CellPosition, error) {
	candidates, _, err := Candidates(b, start)
	if err != nil {
		return maze.CellPosition{}, err
	}
	return candidates[rng.Intn(len(candidates))], nil
}

package maze

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

const (
	defaultMaxAttempts = 100
)

var (
	ErrInvalidDensity    = errors.New("obstacle density must be in [0, 1)")
	ErrUnreachableLayout = errors.New("no layout with a reachable target was generated")
)

// GeneratorConfig describes a random ground-truth grid.
// TerrainWeights gives the relative frequency of Flat, Hilly and Forest cells;
// all-zero weights mean a uniform choice.
type GeneratorConfig struct {
	Dim            int          // Side length of the grid
	Density        float64      // Probability that a cell is blocked
	Start          CellPosition // Start cell, always open and connected to the target
	TerrainWeights [3]float64   // Relative weights of Flat, Hilly, Forest
	MaxAttempts    int          // Layouts tried before giving up; defaults to 100
}

func (c GeneratorConfig) validate() error {
	if c.Dim <= 0 || c.Dim > maxGridDimension {
		return fmt.Errorf("%w: %d", ErrInvalidDimension, c.Dim)
	}
	if math.IsNaN(c.Density) || c.Density < 0 || c.Density >= 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidDensity, c.Density)
	}
	if c.Start.Row < 0 || c.Start.Row >= c.Dim || c.Start.Col < 0 || c.Start.Col >= c.Dim {
		return fmt.Errorf("%w: start %s", ErrOutOfBounds, c.Start)
	}
	for _, w := range c.TerrainWeights {
		if w < 0 || math.IsNaN(w) {
			return fmt.Errorf("%w: negative terrain weight", ErrInvalidTerrain)
		}
	}
	return nil
}

// Generate builds a random ground-truth grid: obstacles are placed with the
// configured density, every open cell gets a random terrain, the start cell is
// forced open and the target is dropped on a random open cell other than the
// start. Layouts whose target cannot be reached from the start are discarded
// and regenerated.
func Generate(c GeneratorConfig, rng *rand.Rand) (*Grid, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}

	for i := 0; i < attempts; i++ {
		g, err := generateOnce(c, rng)
		if err != nil {
			return nil, err
		}
		target, _ := g.Target()
		if g.Reachable(c.Start, target) {
			return g, nil
		}
	}

	return nil, fmt.Errorf("%w after %d attempts (dim=%d density=%v)", ErrUnreachableLayout, attempts, c.Dim, c.Density)
}

// generateOnce lays out obstacles, terrain and the target without checking connectivity.
func generateOnce(c GeneratorConfig, rng *rand.Rand) (*Grid, error) {
	g, err := newGrid(c.Dim, StatusEmpty, TerrainFlat)
	if err != nil {
		return nil, err
	}

	for idx := range g.cells {
		pos := g.PositionOf(idx)
		if rng.Float64() < c.Density && pos != c.Start {
			_ = g.setBlocked(pos)
			continue
		}
		_ = g.setOpen(pos, pickTerrain(c.TerrainWeights, rng))
	}

	// The start only holds the target when it is the single open cell.
	var open []CellPosition
	for idx := range g.cells {
		pos := g.PositionOf(idx)
		if pos != c.Start && !g.cells[idx].IsBlocked() {
			open = append(open, pos)
		}
	}
	target := c.Start
	if len(open) > 0 {
		target = open[rng.Intn(len(open))]
	}

	if err := g.SetTarget(target); err != nil {
		return nil, err
	}
	return g, nil
}

// pickTerrain draws an open terrain according to weights.
func pickTerrain(weights [3]float64, rng *rand.Rand) Terrain {
	total := weights[0] + weights[1] + weights[2]
	if total == 0 {
		return OpenTerrains[rng.Intn(len(OpenTerrains))]
	}

	r := rng.Float64() * total
	for i, w := range weights {
		if r < w {
			return OpenTerrains[i]
		}
		r -= w
	}
	return OpenTerrains[len(OpenTerrains)-1]
}

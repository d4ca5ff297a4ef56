package search

import (
	"errors"
	"fmt"
	"math"

	"github.com/beka-birhanu/vinom-search/maze"
)

// Discipline selects how a Belief reacts to observations.
type Discipline int

const (
	// Normalized keeps a true posterior that always sums to 1.
	Normalized Discipline = iota
	// Confidence keeps unnormalized per-cell scores that are only scaled locally.
	Confidence
)

func (d Discipline) String() string {
	if d == Normalized {
		return "normalized"
	}
	return "confidence"
}

// Outcome is the observation fed to Belief.Update.
type Outcome int

const (
	OutcomeBlocked Outcome = iota // cell turned out to be an obstacle (or unreachable)
	OutcomeEmpty                  // cell entered, nothing else learnt
	OutcomeExamine                // examine of the cell failed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeBlocked:
		return "blocked"
	case OutcomeEmpty:
		return "empty"
	case OutcomeExamine:
		return "examine"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

const (
	relTolerance = 1e-9
	absTolerance = 1e-12
)

var (
	ErrBeliefConcentrated = errors.New("belief is concentrated on a single cell")
	ErrInvalidPrior       = errors.New("invalid belief prior")
)

// Close reports whether a and b are equal within a relative tolerance of 1e-9
// (absolute 1e-12 near zero).
func Close(a, b float64) bool {
	if a == b {
		return true
	}
	diff := math.Abs(a - b)
	return diff <= math.Max(relTolerance*math.Max(math.Abs(a), math.Abs(b)), absTolerance)
}

// Belief holds one non-negative score per grid cell.
type Belief struct {
	dim        int
	discipline Discipline
	values     []float64
}

// NewBelief returns the initial belief for a dim x dim grid:
// 1/dim² everywhere under Normalized, 1 everywhere under Confidence.
func NewBelief(dim int, d Discipline) (*Belief, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: %d", maze.ErrInvalidDimension, dim)
	}

	initial := 1.0
	if d == Normalized {
		initial = 1 / float64(dim*dim)
	}

	values := make([]float64, dim*dim)
	for i := range values {
		values[i] = initial
	}
	return &Belief{dim: dim, discipline: d, values: values}, nil
}

// NewBeliefWithPrior starts from per-cell weights in row-major order.
// Under Normalized the weights are rescaled to sum to 1.
func NewBeliefWithPrior(dim int, d Discipline, prior []float64) (*Belief, error) {
	b, err := NewBelief(dim, d)
	if err != nil {
		return nil, err
	}
	if len(prior) != len(b.values) {
		return nil, fmt.Errorf("%w: %d weights for %d cells", ErrInvalidPrior, len(prior), len(b.values))
	}

	total := 0.0
	for i, w := range prior {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: weight %v at index %d", ErrInvalidPrior, w, i)
		}
		total += w
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: all weights are zero", ErrInvalidPrior)
	}

	copy(b.values, prior)
	if d == Normalized {
		b.scaleAll(1 / total)
	}
	return b, nil
}

// Dim returns the side length of the grid the belief covers.
func (b *Belief) Dim() int {
	return b.dim
}

// Discipline returns the update discipline.
func (b *Belief) Discipline() Discipline {
	return b.discipline
}

func (b *Belief) index(pos maze.CellPosition) (int, error) {
	if pos.Row < 0 || pos.Row >= b.dim || pos.Col < 0 || pos.Col >= b.dim {
		return 0, fmt.Errorf("%w: %s in %dx%d belief", maze.ErrOutOfBounds, pos, b.dim, b.dim)
	}
	return pos.Row*b.dim + pos.Col, nil
}

// At returns the belief of pos, or 0 when pos is out of range.
func (b *Belief) At(pos maze.CellPosition) float64 {
	idx, err := b.index(pos)
	if err != nil {
		return 0
	}
	return b.values[idx]
}

// Update applies one observation about pos. fnr is the false-negative rate of
// the cell's terrain and is only used for OutcomeExamine.
//
// Under Normalized, a Blocked observation rescales the other cells by 1/(1-p)
// and a cell holding all the mass (p == 1) yields ErrBeliefConcentrated. A
// failed Examine gives the cell p*fnr and spreads the remaining 1-fnr*p over
// the other cells in proportion to their belief; with no belief left outside
// the cell the update is a no-op.
func (b *Belief) Update(pos maze.CellPosition, outcome Outcome, fnr float64) error {
	idx, err := b.index(pos)
	if err != nil {
		return err
	}
	p := b.values[idx]

	switch outcome {
	case OutcomeEmpty:
		return nil

	case OutcomeBlocked:
		if b.discipline == Normalized {
			if 1-p <= absTolerance {
				return fmt.Errorf("%w: blocked %s held belief %v", ErrBeliefConcentrated, pos, p)
			}
			b.scaleAll(1 / (1 - p))
		}
		b.values[idx] = 0
		return nil

	case OutcomeExamine:
		if fnr < 0 || fnr > 1 || math.IsNaN(fnr) {
			return fmt.Errorf("%w: %v", ErrInvalidRate, fnr)
		}
		if b.discipline == Normalized {
			rest := 0.0
			for i, v := range b.values {
				if i != idx {
					rest += v
				}
			}
			if rest <= 0 {
				return nil
			}
			for i, v := range b.values {
				b.values[i] = v / rest * (1 - fnr*p)
			}
		}
		b.values[idx] = p * fnr
		return nil

	default:
		return fmt.Errorf("unknown outcome %s", outcome)
	}
}

// Reweight multiplies the belief of pos by factor without touching other cells.
func (b *Belief) Reweight(pos maze.CellPosition, factor float64) error {
	idx, err := b.index(pos)
	if err != nil {
		return err
	}
	if factor < 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return fmt.Errorf("invalid reweight factor %v", factor)
	}
	b.values[idx] *= factor
	return nil
}

// Mask zeroes pos without any compensation. It is meant for scratch copies.
func (b *Belief) Mask(pos maze.CellPosition) {
	if idx, err := b.index(pos); err == nil {
		b.values[idx] = 0
	}
}

func (b *Belief) scaleAll(s float64) {
	for i := range b.values {
		b.values[i] *= s
	}
}

// Max returns the largest belief value.
func (b *Belief) Max() float64 {
	m := 0.0
	for _, v := range b.values {
		if v > m {
			m = v
		}
	}
	return m
}

// Sum returns the total belief mass.
func (b *Belief) Sum() float64 {
	s := 0.0
	for _, v := range b.values {
		s += v
	}
	return s
}

// Positive returns the number of cells with a belief above zero.
func (b *Belief) Positive() int {
	n := 0
	for _, v := range b.values {
		if v > 0 {
			n++
		}
	}
	return n
}

// Values returns a copy of the scores in row-major order.
func (b *Belief) Values() []float64 {
	out := make([]float64, len(b.values))
	copy(out, b.values)
	return out
}

// Clone returns an independent copy.
func (b *Belief) Clone() *Belief {
	return &Belief{dim: b.dim, discipline: b.discipline, values: b.Values()}
}

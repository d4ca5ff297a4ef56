package maze

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidLayout = errors.New("invalid grid layout")

// layoutGlyphs maps layout characters to terrain and whether the cell holds the target.
var layoutGlyphs = map[rune]struct {
	terrain Terrain
	target  bool
}{
	'.': {TerrainFlat, false},
	'h': {TerrainHilly, false},
	'w': {TerrainForest, false},
	'#': {TerrainBlocked, false},
	'T': {TerrainFlat, true},
	'H': {TerrainHilly, true},
	'W': {TerrainForest, true},
}

// Parse builds a ground-truth grid from an ASCII layout, one row per line.
// Spaces are ignored and blank lines are skipped.
//
//	. flat    h hilly    w forest    # blocked
//	T target on flat, H target on hilly, W target on forest
//
// The layout must be square and hold exactly one target.
func Parse(layout string) (*Grid, error) {
	var rows [][]rune
	for _, line := range strings.Split(layout, "\n") {
		line = strings.ReplaceAll(strings.TrimSpace(line), " ", "")
		if line == "" {
			continue
		}
		rows = append(rows, []rune(line))
	}

	dim := len(rows)
	g, err := newGrid(dim, StatusEmpty, TerrainFlat)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLayout, err)
	}

	targets := 0
	for r, row := range rows {
		if len(row) != dim {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidLayout, r, len(row), dim)
		}
		for c, ch := range row {
			glyph, ok := layoutGlyphs[ch]
			if !ok {
				return nil, fmt.Errorf("%w: unknown glyph %q at (%d, %d)", ErrInvalidLayout, ch, r, c)
			}
			pos := CellPosition{Row: r, Col: c}
			if glyph.terrain == TerrainBlocked {
				_ = g.setBlocked(pos)
				continue
			}
			_ = g.setOpen(pos, glyph.terrain)
			if glyph.target {
				targets++
				_ = g.SetTarget(pos)
			}
		}
	}

	if targets != 1 {
		return nil, fmt.Errorf("%w: found %d targets, want exactly 1", ErrInvalidLayout, targets)
	}
	return g, nil
}

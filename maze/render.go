package maze

import (
	"fmt"
	"strings"

	"github.com/logrusorgru/aurora"
)

// RenderOptions controls Render.
type RenderOptions struct {
	Colors bool           // Colors enables ANSI colouring
	Path   []CellPosition // Path is overlaid with '*'
	Agent  *CellPosition  // Agent is drawn as '@'
}

// Render draws the grid with one glyph per cell, using the same alphabet as Parse
// for ground-truth cells and '?' for unconfirmed ones.
func Render(g *Grid, o RenderOptions) string {
	au := aurora.NewAurora(o.Colors)

	onPath := make(map[CellPosition]struct{}, len(o.Path))
	for _, p := range o.Path {
		onPath[p] = struct{}{}
	}

	var b strings.Builder
	for row := 0; row < g.dim; row++ {
		for col := 0; col < g.dim; col++ {
			pos := CellPosition{Row: row, Col: col}
			c := &g.cells[row*g.dim+col]

			if col > 0 {
				b.WriteByte(' ')
			}

			switch {
			case o.Agent != nil && *o.Agent == pos:
				fmt.Fprint(&b, au.Bold(au.Yellow("@")))
			case c.IsTarget():
				fmt.Fprint(&b, au.Bold(au.Red(targetGlyph(c.Terrain))))
			case hasKey(onPath, pos):
				fmt.Fprint(&b, au.Cyan("*"))
			default:
				fmt.Fprint(&b, cellGlyph(au, c))
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func cellGlyph(au aurora.Aurora, c *Cell) aurora.Value {
	switch c.Status {
	case StatusUnconfirmed:
		return au.Gray(12, "?")
	case StatusBlocked:
		return au.Gray(8, "#")
	}

	switch c.Terrain {
	case TerrainHilly:
		return au.Yellow("h")
	case TerrainForest:
		return au.Green("w")
	default:
		return au.White(".")
	}
}

func targetGlyph(t Terrain) string {
	switch t {
	case TerrainHilly:
		return "H"
	case TerrainForest:
		return "W"
	default:
		return "T"
	}
}

func hasKey(m map[CellPosition]struct{}, k CellPosition) bool {
	_, ok := m[k]
	return ok
}

package maze

import "fmt"

// Status is the traversal status of a cell.
type Status int

// Cell statuses. Knowledge grids start Unconfirmed; ground-truth grids only
// hold Empty, Blocked and exactly one Target.
const (
	StatusUnconfirmed Status = iota
	StatusEmpty
	StatusBlocked
	StatusTarget
)

func (s Status) String() string {
	switch s {
	case StatusUnconfirmed:
		return "Unconfirmed"
	case StatusEmpty:
		return "Empty"
	case StatusBlocked:
		return "Blocked"
	case StatusTarget:
		return "Target"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Terrain is the terrain category of a cell.
type Terrain int

// Terrain categories. Only Flat, Hilly and Forest carry a false-negative rate.
const (
	TerrainFlat Terrain = iota
	TerrainHilly
	TerrainForest
	TerrainBlocked
	TerrainUnknown
)

// OpenTerrains lists the terrains a traversable cell can have.
var OpenTerrains = []Terrain{TerrainFlat, TerrainHilly, TerrainForest}

func (t Terrain) String() string {
	switch t {
	case TerrainFlat:
		return "Flat"
	case TerrainHilly:
		return "Hilly"
	case TerrainForest:
		return "Forest"
	case TerrainBlocked:
		return "Blocked"
	case TerrainUnknown:
		return "Unknown"
	default:
		return fmt.Sprintf("Terrain(%d)", int(t))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Terrain) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Terrain) UnmarshalText(text []byte) error {
	parsed, err := ParseTerrain(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// IsOpen reports whether t is one of the traversable terrains.
func (t Terrain) IsOpen() bool {
	return t == TerrainFlat || t == TerrainHilly || t == TerrainForest
}

// ParseTerrain converts a terrain name (case-sensitive, as printed by String)
// into a Terrain.
func ParseTerrain(name string) (Terrain, error) {
	for _, t := range []Terrain{TerrainFlat, TerrainHilly, TerrainForest, TerrainBlocked, TerrainUnknown} {
		if t.String() == name {
			return t, nil
		}
	}
	return TerrainUnknown, fmt.Errorf("unknown terrain %q", name)
}

// CellPosition represents the position of a cell in the grid.
type CellPosition struct {
	Row int `json:"row" bson:"row"` // Row index of the cell
	Col int `json:"col" bson:"col"` // Column index of the cell
}

func (p CellPosition) String() string {
	return fmt.Sprintf("(%d, %d)", p.Row, p.Col)
}

// Manhattan returns the 4-connected distance between p and o.
func (p CellPosition) Manhattan(o CellPosition) int {
	return abs(p.Row-o.Row) + abs(p.Col-o.Col)
}

// Cell represents a single location of a grid.
// Status and Terrain are kept consistent by the grid: a blocked cell always
// has TerrainBlocked and an unconfirmed cell always has TerrainUnknown.
type Cell struct {
	Pos     CellPosition // Position of the cell
	Status  Status       // Status is the traversal status
	Terrain Terrain      // Terrain drives the examine false-negative rate
	Visited bool         // Visited is set once the agent has tried to enter the cell
}

// IsBlocked returns true if the cell is known to be blocked.
func (c *Cell) IsBlocked() bool {
	return c.Status == StatusBlocked
}

// IsUnconfirmed returns true if nothing is known about the cell yet.
func (c *Cell) IsUnconfirmed() bool {
	return c.Status == StatusUnconfirmed
}

// IsTarget returns true if the cell holds the target.
func (c *Cell) IsTarget() bool {
	return c.Status == StatusTarget
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

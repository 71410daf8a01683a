package engine

import "fmt"

// Level is one loaded tile grid. Cells are fixed after NewLevel returns.
type Level struct {
	cells      [][]TileKind
	start      Position
	hasStart   bool
	enemySpawn Position
	hasSpawn   bool
}

// NewLevel builds a level from a raw asset grid.
// The grid is copied; the source slice is never modified.
func NewLevel(grid [][]int) (*Level, error) {
	if len(grid) == 0 || len(grid[0]) == 0 {
		return nil, fmt.Errorf("level grid is empty")
	}

	cols := len(grid[0])
	cells := make([][]TileKind, len(grid))
	for r, row := range grid {
		if len(row) != cols {
			return nil, fmt.Errorf("row %d has %d columns, expected %d", r, len(row), cols)
		}
		cells[r] = make([]TileKind, cols)
		for c, v := range row {
			if v < int(Floor) || v > int(EnemySpawn) {
				return nil, fmt.Errorf("cell (%d,%d) has unknown value %d", r, c, v)
			}
			cells[r][c] = TileKind(v)
		}
	}

	l := &Level{cells: cells}
	l.scanMarkers()
	return l, nil
}

// scanMarkers records the first Start and EnemySpawn in row-major order
// and rewrites those cells to Floor.
func (l *Level) scanMarkers() {
	for r, row := range l.cells {
		for c, kind := range row {
			switch {
			case kind == Start && !l.hasStart:
				l.start = Position{Row: r, Col: c}
				l.hasStart = true
				l.cells[r][c] = Floor
			case kind == EnemySpawn && !l.hasSpawn:
				l.enemySpawn = Position{Row: r, Col: c}
				l.hasSpawn = true
				l.cells[r][c] = Floor
			}
		}
	}
}

// Rows returns the grid height
func (l *Level) Rows() int {
	return len(l.cells)
}

// Cols returns the grid width
func (l *Level) Cols() int {
	return len(l.cells[0])
}

// PixelSize returns the surface dimensions for the given tile size
func (l *Level) PixelSize(tileSize int) (int, int) {
	return l.Cols() * tileSize, l.Rows() * tileSize
}

// InBounds reports whether p addresses a cell of the grid
func (l *Level) InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < l.Rows() && p.Col >= 0 && p.Col < l.Cols()
}

// KindAt returns the tile kind at p. The caller must check InBounds first.
func (l *Level) KindAt(p Position) TileKind {
	return l.cells[p.Row][p.Col]
}

func (l *Level) IsWall(p Position) bool {
	return l.KindAt(p) == Wall
}

func (l *Level) IsGoal(p Position) bool {
	return l.KindAt(p) == Goal
}

// Walkable is true for in-bounds cells that are not walls
func (l *Level) Walkable(p Position) bool {
	return l.InBounds(p) && !l.IsWall(p)
}

// IsEnemySpawnCell compares against the recorded spawn, since the cell
// itself now reads as Floor.
func (l *Level) IsEnemySpawnCell(p Position) bool {
	return l.hasSpawn && l.enemySpawn == p
}

// Start returns the recorded start marker, if any
func (l *Level) Start() (Position, bool) {
	return l.start, l.hasStart
}

// EnemySpawn returns the recorded enemy spawn marker, if any
func (l *Level) EnemySpawn() (Position, bool) {
	return l.enemySpawn, l.hasSpawn
}

// PlayerSpawn returns the start marker or FallbackStart when the level has none
func (l *Level) PlayerSpawn() Position {
	if l.hasStart {
		return l.start
	}
	return FallbackStart
}

// Kinds returns a copy of the normalized grid
func (l *Level) Kinds() [][]TileKind {
	out := make([][]TileKind, len(l.cells))
	for r, row := range l.cells {
		out[r] = append([]TileKind(nil), row...)
	}
	return out
}

// Count returns how many cells hold the given kind
func (l *Level) Count(kind TileKind) int {
	n := 0
	for _, row := range l.cells {
		for _, k := range row {
			if k == kind {
				n++
			}
		}
	}
	return n
}

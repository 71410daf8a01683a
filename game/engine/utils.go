package engine

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dr := from.Row - to.Row
	if dr < 0 {
		dr = -dr
	}
	dc := from.Col - to.Col
	if dc < 0 {
		dc = -dc
	}
	return dr + dc
}

// ShortestPath returns the number of single-cell orthogonal steps needed to
// walk from one cell to another over non-wall cells, or -1 if unreachable.
func ShortestPath(level *Level, from, to Position) int {
	if !level.Walkable(from) || !level.Walkable(to) {
		return -1
	}

	dist := map[Position]int{from: 0}
	queue := []Position{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == to {
			return dist[cur]
		}
		for _, d := range Directions {
			next := cur.Add(d.Offset())
			if _, seen := dist[next]; seen || !level.Walkable(next) {
				continue
			}
			dist[next] = dist[cur] + 1
			queue = append(queue, next)
		}
	}
	return -1
}

// NearestGoal finds the goal cell with the shortest walking distance from p.
// The returned distance is -1 when no goal is reachable.
func NearestGoal(level *Level, p Position) (Position, int) {
	best, bestDist := Position{}, -1
	for r := 0; r < level.Rows(); r++ {
		for c := 0; c < level.Cols(); c++ {
			goal := Position{Row: r, Col: c}
			if !level.IsGoal(goal) {
				continue
			}
			d := ShortestPath(level, p, goal)
			if d >= 0 && (bestDist < 0 || d < bestDist) {
				best, bestDist = goal, d
			}
		}
	}
	return best, bestDist
}

// Level rebuilds a Level from the snapshot grid for distance queries.
// Markers are already rewritten to floor, so the result has no start or spawn.
func (s *GameState) Level() (*Level, error) {
	grid := make([][]int, len(s.Grid))
	for r, row := range s.Grid {
		grid[r] = make([]int, len(row))
		for c, kind := range row {
			grid[r][c] = int(kind)
		}
	}
	return NewLevel(grid)
}

// SurroundingCell describes one neighbor of the player for text clients
type SurroundingCell struct {
	Direction string   `json:"direction"`
	Position  Position `json:"position"`
	Kind      string   `json:"kind"`
	Walkable  bool     `json:"walkable"`
	Enemy     bool     `json:"enemy,omitempty"`
}

// LocalView returns the four orthogonal neighbors of the player
func LocalView(state *GameState) []SurroundingCell {
	cells := make([]SurroundingCell, 0, len(Directions))
	for _, d := range Directions {
		p := state.Player.Position.Add(d.Offset())
		kind := state.KindAt(p)
		name := kind.String()
		if p.Row < 0 || p.Row >= state.Rows || p.Col < 0 || p.Col >= state.Cols {
			name = "boundary"
		}
		cells = append(cells, SurroundingCell{
			Direction: d.String(),
			Position:  p,
			Kind:      name,
			Walkable:  kind != Wall,
			Enemy:     state.Enemy != nil && state.Enemy.Position == p,
		})
	}
	return cells
}

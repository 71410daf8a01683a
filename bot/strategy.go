package bot

import (
	"errors"
	"math"

	"github.com/a3mckagu/a3mckagu-sidequest-w4/game/engine"
)

// ErrCornered is returned when the player has no walkable neighbor
var ErrCornered = errors.New("no walkable neighbor")

// Strategy walks towards the nearest goal and keeps out of the enemy's reach.
// Ties go to the neighbor visited least often, so a walled-off goal does not
// leave the player bouncing between two cells.
type Strategy struct {
	visited map[engine.Position]int
	level   int
}

func NewStrategy() *Strategy {
	return &Strategy{visited: make(map[engine.Position]int)}
}

// Reset forgets visited cells, for example after a restart
func (s *Strategy) Reset() {
	s.visited = make(map[engine.Position]int)
}

type option struct {
	dir    engine.Direction
	dist   int
	safe   bool
	visits int
}

func (o option) better(than option) bool {
	if o.safe != than.safe {
		return o.safe
	}
	if o.dist != than.dist {
		return o.dist < than.dist
	}
	return o.visits < than.visits
}

// NextMove picks the next step for the player
func (s *Strategy) NextMove(state *engine.GameState) (engine.Direction, error) {
	level, err := state.Level()
	if err != nil {
		return 0, err
	}
	if state.LevelIndex != s.level {
		s.level = state.LevelIndex
		s.Reset()
	}

	player := state.Player.Position
	s.visited[player]++

	var best *option
	for _, dir := range engine.Directions {
		next := player.Add(dir.Offset())
		if !level.Walkable(next) {
			continue
		}

		_, dist := engine.NearestGoal(level, next)
		if dist < 0 {
			dist = math.MaxInt
		}
		o := option{dir: dir, dist: dist, safe: !Threatened(state, next), visits: s.visited[next]}
		if best == nil || o.better(*best) {
			best = &o
		}
	}

	if best == nil {
		return 0, ErrCornered
	}
	return best.dir, nil
}

// Threatened reports whether the enemy stands on p or can land on it with
// its next step.
func Threatened(state *engine.GameState, p engine.Position) bool {
	if state.Enemy == nil {
		return false
	}
	enemy := state.Enemy.Position
	if enemy == p {
		return true
	}
	for _, off := range engine.EnemyCandidates {
		if enemy.Add(off) == p {
			return true
		}
	}
	return false
}

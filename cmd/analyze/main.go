// Command analyze prints quick, human-readable heuristics about the level sets
// in the project's configs directory. For every level it summarizes the
// dimensions, how open the maze is, how far the goal is from the start, and
// how much of the maze the enemy can ever reach with its two-cell steps.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/a3mckagu/a3mckagu-sidequest-w4/game/engine"
)

// LevelAnalysis holds the heuristics of one level
type LevelAnalysis struct {
	Rows, Cols   int
	Walkable     int
	GoalDistance int
	// EnemyStartDistance is the Manhattan distance from the enemy spawn to
	// the player spawn, or -1 without an enemy.
	EnemyStartDistance int
	// EnemyReach counts the cells the enemy can ever stand on
	EnemyReach int
	// EnemyOnPath is set when the enemy can stand on a cell of some
	// shortest route from the start to the nearest goal.
	EnemyOnPath bool
}

func main() {
	dir := "configs"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(files) == 0 {
		fmt.Printf("No level sets found in %s\n", dir)
		os.Exit(1)
	}
	sort.Strings(files)

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		analyzeConfig(os.Stdout, file)
	}
}

func analyzeConfig(w io.Writer, path string) {
	config, err := engine.LoadGameConfig(path)
	if err != nil {
		fmt.Fprintf(w, "Error loading level set: %v\n", err)
		return
	}

	fmt.Fprintf(w, "Name: %s\n", config.Name)
	fmt.Fprintf(w, "Levels: %d, Tile: %dpx\n", len(config.Levels), config.Tile())
	fmt.Fprintf(w, "Player cooldown: %v, Enemy cooldown: %v, Trail fade: %v\n",
		config.PlayerCooldown(), config.EnemyCooldown(), config.TrailFade())

	for i, grid := range engine.CloneLevels(config.Levels) {
		level, err := engine.NewLevel(grid)
		if err != nil {
			fmt.Fprintf(w, "Level %d: %v\n", i+1, err)
			continue
		}
		a := analyzeLevel(level)

		fmt.Fprintf(w, "\nLevel %d: %dx%d, %d/%d cells walkable (%.0f%%)\n",
			i+1, a.Rows, a.Cols, a.Walkable, a.Rows*a.Cols, 100*float64(a.Walkable)/float64(a.Rows*a.Cols))
		if a.GoalDistance < 0 {
			fmt.Fprintf(w, "⚠️  WARNING: no goal is reachable from the start\n")
		} else {
			fmt.Fprintf(w, "✅ Nearest goal: %d steps from the start\n", a.GoalDistance)
		}

		if a.EnemyStartDistance < 0 {
			fmt.Fprintf(w, "Enemy: none\n")
			continue
		}
		fmt.Fprintf(w, "Enemy: spawns %d cells from the start, can reach %d cells\n",
			a.EnemyStartDistance, a.EnemyReach)
		if a.EnemyReach == 1 {
			fmt.Fprintf(w, "⚠️  WARNING: the enemy can never leave its spawn\n")
		}
		if a.EnemyOnPath {
			fmt.Fprintf(w, "⚠️  The enemy can block the shortest route to the goal\n")
		}
	}
}

func analyzeLevel(level *engine.Level) LevelAnalysis {
	start := level.PlayerSpawn()
	_, goalDist := engine.NearestGoal(level, start)

	a := LevelAnalysis{
		Rows:               level.Rows(),
		Cols:               level.Cols(),
		GoalDistance:       goalDist,
		EnemyStartDistance: -1,
	}
	for r := 0; r < level.Rows(); r++ {
		for c := 0; c < level.Cols(); c++ {
			if level.Walkable(engine.Position{Row: r, Col: c}) {
				a.Walkable++
			}
		}
	}

	spawn, ok := level.EnemySpawn()
	if !ok {
		return a
	}
	a.EnemyStartDistance = engine.ManhattanDistance(spawn, start)

	reach := enemyReach(level, spawn)
	a.EnemyReach = len(reach)
	if goalDist > 0 {
		goal, _ := engine.NearestGoal(level, start)
		for p := range reach {
			// p lies on a shortest route when the detour through it costs nothing
			if engine.ShortestPath(level, start, p)+engine.ShortestPath(level, p, goal) == goalDist {
				a.EnemyOnPath = true
				break
			}
		}
	}
	return a
}

// enemyReach returns every cell the enemy can land on from spawn
func enemyReach(level *engine.Level, spawn engine.Position) map[engine.Position]bool {
	seen := map[engine.Position]bool{spawn: true}
	queue := []engine.Position{spawn}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, off := range engine.EnemyCandidates {
			next := cur.Add(off)
			if seen[next] || !level.Walkable(next) {
				continue
			}
			seen[next] = true
			queue = append(queue, next)
		}
	}
	return seen
}

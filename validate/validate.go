// Package validate checks level-set JSON files beyond what loading enforces.
// It reports per-level sizes, which markers are present, and whether a goal
// can be walked to from the start.
package validate

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/a3mckagu/a3mckagu-sidequest-w4/game/engine"
)

// LevelReport describes one level of a level set
type LevelReport struct {
	Index    int
	Rows     int
	Cols     int
	HasStart bool
	HasSpawn bool
	Goals    int
	// GoalDistance is the walking distance from the player spawn to the
	// nearest goal, or -1 when none is reachable.
	GoalDistance int
	// EnemyStuck is set when no enemy step is legal from the spawn
	EnemyStuck bool
}

// Result captures the outcome of validating a single file.
// Warnings never make a result invalid.
type Result struct {
	File     string
	Name     string
	Valid    bool
	Errors   []string
	Warnings []string
	Levels   []LevelReport
}

// File loads and validates a single level-set file
func File(path string) Result {
	result := Result{
		File:  filepath.Base(path),
		Valid: true,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return result.fail(fmt.Sprintf("Failed to read file: %v", err))
	}

	config, err := engine.ParseGameConfig(data)
	if err != nil {
		return result.fail(fmt.Sprintf("Invalid JSON: %v", err))
	}
	if config.Name == "" {
		config.Name = strings.TrimSuffix(result.File, filepath.Ext(result.File))
	}
	result.Name = config.Name

	if err := engine.ValidateGameConfig(config); err != nil {
		return result.fail(err.Error())
	}

	for i, grid := range engine.CloneLevels(config.Levels) {
		level, err := engine.NewLevel(grid)
		if err != nil {
			return result.fail(fmt.Sprintf("level %d: %v", i+1, err))
		}
		report := inspect(i, level)
		result.Levels = append(result.Levels, report)
		result.Warnings = append(result.Warnings, report.warnings()...)
	}
	return result
}

// Dir validates every *.json file in dir, sorted by file name
func Dir(dir string) ([]Result, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list configs in %s: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no config files found in %s", dir)
	}
	sort.Strings(files)

	results := make([]Result, 0, len(files))
	for _, file := range files {
		results = append(results, File(file))
	}
	return results, nil
}

func (r Result) fail(msg string) Result {
	r.Valid = false
	r.Errors = append(r.Errors, msg)
	return r
}

func inspect(index int, level *engine.Level) LevelReport {
	_, hasStart := level.Start()
	spawn, hasSpawn := level.EnemySpawn()
	_, dist := engine.NearestGoal(level, level.PlayerSpawn())

	report := LevelReport{
		Index:        index,
		Rows:         level.Rows(),
		Cols:         level.Cols(),
		HasStart:     hasStart,
		HasSpawn:     hasSpawn,
		Goals:        level.Count(engine.Goal),
		GoalDistance: dist,
	}
	if hasSpawn {
		report.EnemyStuck = true
		for _, off := range engine.EnemyCandidates {
			if level.Walkable(spawn.Add(off)) {
				report.EnemyStuck = false
				break
			}
		}
	}
	return report
}

func (l LevelReport) warnings() []string {
	var out []string
	switch {
	case l.Goals == 0:
		out = append(out, fmt.Sprintf("level %d has no goal and can never be completed", l.Index+1))
	case l.GoalDistance < 0:
		out = append(out, fmt.Sprintf("level %d: no goal is reachable from the start", l.Index+1))
	}
	if l.EnemyStuck {
		out = append(out, fmt.Sprintf("level %d: the enemy cannot leave its spawn", l.Index+1))
	}
	return out
}

// Report prints results in a human readable form and reports whether every
// file was valid.
func Report(w io.Writer, results []Result) bool {
	allValid := true
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if !result.Valid {
			allValid = false
			fmt.Fprintln(w, "❌ INVALID")
			for _, err := range result.Errors {
				fmt.Fprintln(w, "  ❌ "+err)
			}
			continue
		}

		fmt.Fprintln(w, "✅ VALID")
		fmt.Fprintf(w, "  ✓ Name: %s\n", result.Name)
		for _, level := range result.Levels {
			fmt.Fprintf(w, "  ✓ Level %d: %dx%d, start %s, enemy %s, %s\n",
				level.Index+1, level.Rows, level.Cols,
				marker(level.HasStart, "marked", "fallback (1,1)"),
				marker(level.HasSpawn, "present", "none"),
				goalSummary(level))
		}
		for _, warning := range result.Warnings {
			fmt.Fprintln(w, "  ⚠ "+warning)
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All configurations are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some configurations have errors")
	}
	return allValid
}

func marker(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}

func goalSummary(l LevelReport) string {
	switch {
	case l.Goals == 0:
		return "no goal"
	case l.GoalDistance < 0:
		return fmt.Sprintf("%d goal(s), unreachable", l.Goals)
	default:
		return fmt.Sprintf("%d goal(s), nearest %d steps", l.Goals, l.GoalDistance)
	}
}

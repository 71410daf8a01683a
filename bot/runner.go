package bot

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/a3mckagu/a3mckagu-sidequest-w4/game/engine"
	"github.com/a3mckagu/a3mckagu-sidequest-w4/game/service"
)

var (
	ErrMoveLimit    = errors.New("move limit reached")
	ErrAttemptLimit = errors.New("attempt limit reached")
)

// Game is the part of Client the runner needs
type Game interface {
	State(ctx context.Context) (*engine.GameState, error)
	Move(ctx context.Context, dir engine.Direction) (*service.MoveResult, error)
	Restart(ctx context.Context) (*engine.GameState, error)
}

// Stats summarizes a run
type Stats struct {
	Moves         int
	Blocked       int
	Throttled     int
	Attempts      int
	LevelsCleared int
}

// Runner plays one session until Levels levels are cleared in a single attempt
type Runner struct {
	Game     Game
	Strategy *Strategy

	// Levels to clear; zero means one full pass over the level set
	Levels      int
	MaxMoves    int
	MaxAttempts int
	// Delay between requests. Moves faster than the player cooldown are
	// rejected as throttled.
	Delay   time.Duration
	Verbose bool
}

// Run plays until the target is met, a limit is hit, or ctx is done
func (r *Runner) Run(ctx context.Context) (Stats, error) {
	stats := Stats{Attempts: 1}
	if r.Strategy == nil {
		r.Strategy = NewStrategy()
	}

	state, err := r.Game.State(ctx)
	if err != nil {
		return stats, err
	}
	target := r.Levels
	if target <= 0 {
		target = state.LevelCount
	}

	for state.LevelsCleared < target {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if r.MaxMoves > 0 && stats.Moves >= r.MaxMoves {
			return stats, ErrMoveLimit
		}

		if state.GameOver {
			if r.MaxAttempts > 0 && stats.Attempts >= r.MaxAttempts {
				return stats, ErrAttemptLimit
			}
			log.Printf("Attempt %d caught on level %d/%d after %d moves",
				stats.Attempts, state.LevelIndex+1, state.LevelCount, stats.Moves)
			if state, err = r.Game.Restart(ctx); err != nil {
				return stats, err
			}
			stats.Attempts++
			stats.LevelsCleared = 0
			r.Strategy.Reset()
			continue
		}

		dir, err := r.Strategy.NextMove(state)
		if err != nil {
			return stats, err
		}

		result, err := r.Game.Move(ctx, dir)
		if err != nil {
			return stats, err
		}
		stats.Moves++
		if !result.Success {
			if result.AttemptedTo != nil && result.AttemptedTo.Throttled {
				stats.Throttled++
			} else {
				stats.Blocked++
			}
		}
		if r.Verbose {
			log.Printf("%s: %s", dir, result.Message)
		}

		state = result.GameState
		stats.LevelsCleared = state.LevelsCleared

		if r.Delay > 0 {
			select {
			case <-ctx.Done():
				return stats, ctx.Err()
			case <-time.After(r.Delay):
			}
		}
	}
	return stats, nil
}

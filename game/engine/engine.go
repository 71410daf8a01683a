package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

var (
	ErrInvalidConfig    = errors.New("config validation")
	ErrNotGameOver      = errors.New("game is not over")
	ErrUnknownDirection = errors.New("unknown direction")
)

// Engine provides the main interface for game operations
type Engine interface {
	// Input
	Move(dir Direction, now time.Time) bool
	Click(x, y int, now time.Time) bool
	Restart(now time.Time) error

	// Frame
	Tick(now time.Time) bool
	Draw(r Renderer, now time.Time)

	// State
	GetState(now time.Time) *GameState
	GetConfig() *GameConfig
	GetLevel() *Level
	GetLevelIndex() int
	GetLevelCount() int
	GetPlayerPosition() Position
	GetEnemyPosition() (Position, bool)
	IsGameOver() bool
	Version() uint64

	SetSurface(s Surface)
}

// GameEngine implements the Engine interface. It is not safe for concurrent
// use; callers serialize access.
type GameEngine struct {
	config *GameConfig
	levels []*Level
	index  int

	player      *Actor
	enemy       *Actor
	enemyActive bool
	enemyAt     []Position // per level, where its enemy was left
	over        bool

	moves         int
	levelsCleared int
	version       uint64

	rng     Shuffler
	surface Surface
}

// Option customizes a GameEngine at construction
type Option func(*GameEngine)

// WithRand sets the random source used by the enemy
func WithRand(rng Shuffler) Option {
	return func(e *GameEngine) {
		e.rng = rng
	}
}

// WithSurface sets the surface resized on every level change
func WithSurface(s Surface) Option {
	return func(e *GameEngine) {
		e.surface = s
	}
}

// NewEngine validates config and starts a session on level 0 at now
func NewEngine(config *GameConfig, now time.Time, opts ...Option) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	e := &GameEngine{config: config}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(now.UnixNano()))
	}

	if err := e.reset(now); err != nil {
		return nil, err
	}
	return e, nil
}

// reset rebuilds levels and actors from the config
func (e *GameEngine) reset(now time.Time) error {
	levels := make([]*Level, len(e.config.Levels))
	for i, grid := range CloneLevels(e.config.Levels) {
		level, err := NewLevel(grid)
		if err != nil {
			return fmt.Errorf("level %d: %w", i+1, err)
		}
		levels[i] = level
	}

	e.levels = levels
	e.enemyAt = make([]Position, len(levels))
	for i, level := range levels {
		e.enemyAt[i], _ = level.EnemySpawn()
	}
	e.player = NewActor(PlayerActor, FallbackStart, e.config.PlayerCooldown(), e.config.TrailFade(), now)
	e.enemy = NewActor(EnemyActor, Position{}, e.config.EnemyCooldown(), e.config.TrailFade(), now)
	e.moves = 0
	e.levelsCleared = 0
	e.loadLevel(0)
	return nil
}

// loadLevel makes level i active. The player keeps its trail and cooldown;
// the enemy returns to where it was last left on that level, starting from
// the spawn marker, with an empty trail.
func (e *GameEngine) loadLevel(i int) {
	e.index = i
	level := e.levels[i]

	e.player.Place(level.PlayerSpawn())

	_, ok := level.EnemySpawn()
	e.enemyActive = ok
	if ok {
		e.enemy.Place(e.enemyAt[i])
	}
	e.enemy.ClearTrail()

	e.over = false
	if e.surface != nil {
		e.surface.Resize(level.PixelSize(e.config.Tile()))
	}
	e.version++
}

// Move attempts a single player step. It is ignored while the game is over.
// Reaching a goal advances to the next level, wrapping after the last.
func (e *GameEngine) Move(dir Direction, now time.Time) bool {
	if e.over {
		return false
	}

	level := e.levels[e.index]
	if !e.player.AttemptMove(level, dir.Offset(), now) {
		return false
	}
	e.moves++
	e.version++

	if level.IsGoal(e.player.Position()) {
		e.levelsCleared++
		if e.enemyActive {
			e.enemyAt[e.index] = e.enemy.Position()
		}
		e.loadLevel((e.index + 1) % len(e.levels))
	}
	return true
}

// Tick advances one frame: trails fade, the enemy wanders, and a collision
// between the actors ends the game. It reports whether anything changed.
func (e *GameEngine) Tick(now time.Time) bool {
	before := e.player.Trail().Len() + e.enemy.Trail().Len()
	e.player.PruneTrail(now)
	e.enemy.PruneTrail(now)
	changed := e.player.Trail().Len()+e.enemy.Trail().Len() != before

	if !e.over && e.enemyActive {
		if e.enemy.Wander(e.levels[e.index], now, e.rng) {
			changed = true
		}
		if e.player.Position() == e.enemy.Position() {
			e.over = true
			changed = true
		}
	}

	if changed {
		e.version++
	}
	return changed
}

// Click handles pointer input. Only a click inside the restart button of the
// game-over overlay has an effect.
func (e *GameEngine) Click(x, y int, now time.Time) bool {
	if !e.over {
		return false
	}
	w, h := e.levels[e.index].PixelSize(e.config.Tile())
	if !GameOverLayout(w, h).Button.Contains(x, y) {
		return false
	}
	return e.Restart(now) == nil
}

// Restart reinitializes the whole session from the config.
// It returns ErrNotGameOver while the game is still being played.
func (e *GameEngine) Restart(now time.Time) error {
	if !e.over {
		return ErrNotGameOver
	}
	return e.reset(now)
}

// Draw paints the current frame. It does not modify the engine.
func (e *GameEngine) Draw(r Renderer, now time.Time) {
	level := e.levels[e.index]
	size := e.config.Tile()

	for row := 0; row < level.Rows(); row++ {
		for col := 0; col < level.Cols(); col++ {
			r.Tile(col*size, row*size, size, level.KindAt(Position{Row: row, Col: col}))
		}
	}

	if e.enemyActive {
		drawActor(r, e.enemy, size, now)
	}
	drawActor(r, e.player, size, now)

	if e.over {
		w, h := level.PixelSize(size)
		r.Overlay(GameOverLayout(w, h), e.config.GameOverText(), e.config.RestartText())
	}
	r.HUD(e.hudText())
}

func drawActor(r Renderer, a *Actor, size int, now time.Time) {
	for _, s := range a.State(now).Trail {
		r.Trail(a.Kind(), s.Position.Col*size, s.Position.Row*size, size, s.Opacity)
	}
	p := a.Position()
	r.Actor(a.Kind(), p.Col*size, p.Row*size, size)
}

func (e *GameEngine) hudText() string {
	return fmt.Sprintf(e.config.HUDFormat(), e.index+1, len(e.levels))
}

// GetState returns a snapshot of the session at now
func (e *GameEngine) GetState(now time.Time) *GameState {
	level := e.levels[e.index]
	size := e.config.Tile()
	w, h := level.PixelSize(size)

	state := &GameState{
		ConfigName:    e.config.Name,
		LevelIndex:    e.index,
		LevelCount:    len(e.levels),
		Rows:          level.Rows(),
		Cols:          level.Cols(),
		TileSize:      size,
		PixelWidth:    w,
		PixelHeight:   h,
		Grid:          level.Kinds(),
		Player:        e.player.State(now),
		GameOver:      e.over,
		Message:       e.hudText(),
		Moves:         e.moves,
		LevelsCleared: e.levelsCleared,
		Version:       e.version,
	}
	if e.enemyActive {
		enemy := e.enemy.State(now)
		state.Enemy = &enemy
	}
	if e.over {
		state.Message = e.config.GameOverText()
	}
	return state
}

func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// GetLevel returns the active level
func (e *GameEngine) GetLevel() *Level {
	return e.levels[e.index]
}

func (e *GameEngine) GetLevelIndex() int {
	return e.index
}

func (e *GameEngine) GetLevelCount() int {
	return len(e.levels)
}

func (e *GameEngine) GetPlayerPosition() Position {
	return e.player.Position()
}

// GetEnemyPosition returns the enemy position, or false when the level has no enemy
func (e *GameEngine) GetEnemyPosition() (Position, bool) {
	return e.enemy.Position(), e.enemyActive
}

func (e *GameEngine) IsGameOver() bool {
	return e.over
}

// Version increments on every observable change
func (e *GameEngine) Version() uint64 {
	return e.version
}

// SetSurface attaches a surface and sizes it for the active level
func (e *GameEngine) SetSurface(s Surface) {
	e.surface = s
	if s != nil {
		s.Resize(e.levels[e.index].PixelSize(e.config.Tile()))
	}
}

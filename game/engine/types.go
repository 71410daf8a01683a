package engine

import (
	"fmt"
	"strings"
	"time"
)

// TileKind represents the semantic category of a grid cell
type TileKind int

const (
	Floor TileKind = iota
	Wall
	Start
	Goal
	// EnemySpawn only exists in source grids; levels rewrite it to Floor at load.
	EnemySpawn
)

const (
	// Validation constants
	MinTileSize = 8
	MaxTileSize = 256
	MaxGridSize = 100
	MaxLevels   = 64

	DefaultTileSize        = 120
	DefaultPlayerMoveDelay = 90 * time.Millisecond
	DefaultEnemyMoveDelay  = 667 * time.Millisecond
	DefaultTrailFade       = 400 * time.Millisecond

	// EnemyStride is how many cells the enemy covers per move.
	EnemyStride = 2
)

// FallbackStart is where the player spawns on levels without a Start marker.
var FallbackStart = Position{Row: 1, Col: 1}

// String returns the lowercase name of the tile kind
func (k TileKind) String() string {
	switch k {
	case Floor:
		return "floor"
	case Wall:
		return "wall"
	case Start:
		return "start"
	case Goal:
		return "goal"
	case EnemySpawn:
		return "enemy_spawn"
	default:
		return fmt.Sprintf("tile(%d)", int(k))
	}
}

// Position is a grid coordinate, row-major
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Add returns the position shifted by the offset
func (p Position) Add(o Offset) Position {
	return Position{Row: p.Row + o.DRow, Col: p.Col + o.DCol}
}

// Offset is a movement delta in cells
type Offset struct {
	DRow int `json:"dr"`
	DCol int `json:"dc"`
}

// Scale multiplies both components by n
func (o Offset) Scale(n int) Offset {
	return Offset{DRow: o.DRow * n, DCol: o.DCol * n}
}

// Direction is one of the four orthogonal player moves
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Directions lists the player directions in a stable order.
var Directions = []Direction{Up, Down, Left, Right}

// Offset returns the single-cell delta for the direction
func (d Direction) Offset() Offset {
	switch d {
	case Up:
		return Offset{DRow: -1}
	case Down:
		return Offset{DRow: 1}
	case Left:
		return Offset{DCol: -1}
	case Right:
		return Offset{DCol: 1}
	}
	return Offset{}
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "unknown"
}

// ParseDirection maps textual input (up/down/left/right or w/s/a/d) to a Direction
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "w", "north":
		return Up, nil
	case "down", "s", "south":
		return Down, nil
	case "left", "a", "west":
		return Left, nil
	case "right", "d", "east":
		return Right, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// ActorKind distinguishes the two actors for drawing
type ActorKind string

const (
	PlayerActor ActorKind = "player"
	EnemyActor  ActorKind = "enemy"
)

// GameConfig is a level set loaded from JSON
type GameConfig struct {
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	TileSize          int       `json:"tile_size,omitempty"`
	PlayerMoveDelayMS int       `json:"player_move_delay_ms,omitempty"`
	EnemyMoveDelayMS  int       `json:"enemy_move_delay_ms,omitempty"`
	TrailFadeMS       int       `json:"trail_fade_ms,omitempty"`
	Levels            [][][]int `json:"levels"`
	Messages          struct {
		HUD      string `json:"hud,omitempty"`
		GameOver string `json:"game_over,omitempty"`
		Restart  string `json:"restart,omitempty"`
	} `json:"messages"`
}

// Tile returns the configured tile size in pixels
func (c *GameConfig) Tile() int {
	if c.TileSize == 0 {
		return DefaultTileSize
	}
	return c.TileSize
}

// PlayerCooldown returns the minimum time between accepted player moves
func (c *GameConfig) PlayerCooldown() time.Duration {
	if c.PlayerMoveDelayMS <= 0 {
		return DefaultPlayerMoveDelay
	}
	return time.Duration(c.PlayerMoveDelayMS) * time.Millisecond
}

// EnemyCooldown returns the minimum time between enemy moves
func (c *GameConfig) EnemyCooldown() time.Duration {
	if c.EnemyMoveDelayMS <= 0 {
		return DefaultEnemyMoveDelay
	}
	return time.Duration(c.EnemyMoveDelayMS) * time.Millisecond
}

// TrailFade returns how long a trail entry stays visible
func (c *GameConfig) TrailFade() time.Duration {
	if c.TrailFadeMS <= 0 {
		return DefaultTrailFade
	}
	return time.Duration(c.TrailFadeMS) * time.Millisecond
}

// HUDFormat returns the HUD template; it takes level number and level count.
func (c *GameConfig) HUDFormat() string {
	if c.Messages.HUD == "" {
		return "Level %d/%d - WASD/Arrows to move - Avoid the Enemy"
	}
	return c.Messages.HUD
}

// GameOverText returns the overlay title
func (c *GameConfig) GameOverText() string {
	if c.Messages.GameOver == "" {
		return "Gameover"
	}
	return c.Messages.GameOver
}

// RestartText returns the overlay button label
func (c *GameConfig) RestartText() string {
	if c.Messages.Restart == "" {
		return "Redo"
	}
	return c.Messages.Restart
}

// TrailSample is a trail entry with its opacity at the sampling instant
type TrailSample struct {
	Position Position `json:"position"`
	Opacity  float64  `json:"opacity"`
}

// ActorState is the drawable state of one actor
type ActorState struct {
	Position Position      `json:"position"`
	Trail    []TrailSample `json:"trail,omitempty"`
}

// GameState is a point-in-time snapshot of a session, safe to serialize
type GameState struct {
	ConfigName    string       `json:"config_name"`
	LevelIndex    int          `json:"level_index"`
	LevelCount    int          `json:"level_count"`
	Rows          int          `json:"rows"`
	Cols          int          `json:"cols"`
	TileSize      int          `json:"tile_size"`
	PixelWidth    int          `json:"pixel_width"`
	PixelHeight   int          `json:"pixel_height"`
	Grid          [][]TileKind `json:"grid"`
	Player        ActorState   `json:"player"`
	Enemy         *ActorState  `json:"enemy,omitempty"`
	GameOver      bool         `json:"game_over"`
	Message       string       `json:"message"`
	Moves         int          `json:"moves"`
	LevelsCleared int          `json:"levels_cleared"`
	Version       uint64       `json:"version"`
}

// KindAt returns the snapshot tile kind, or Wall outside the grid
func (s *GameState) KindAt(p Position) TileKind {
	if p.Row < 0 || p.Row >= len(s.Grid) || p.Col < 0 || p.Col >= len(s.Grid[p.Row]) {
		return Wall
	}
	return s.Grid[p.Row][p.Col]
}

package service

import (
	"time"

	"github.com/a3mckagu/a3mckagu-sidequest-w4/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config,omitempty"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success     bool              `json:"success"`
	GameState   *engine.GameState `json:"game_state"`
	Message     string            `json:"message"`
	Events      []GameEvent       `json:"events,omitempty"`
	AttemptedTo *AttemptInfo      `json:"attempted_to,omitempty"`
}

// AttemptInfo details the target cell of a rejected move
type AttemptInfo struct {
	Row       int    `json:"row"`
	Col       int    `json:"col"`
	Kind      string `json:"kind"`
	Walkable  bool   `json:"walkable"`
	Throttled bool   `json:"throttled,omitempty"`
}

// Event types reported in GameEvent.Type
const (
	EventMove          = "move"
	EventBlocked       = "blocked"
	EventThrottled     = "throttled"
	EventLevelComplete = "level_complete"
	EventGameOver      = "game_over"
	EventRestart       = "restart"
)

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Position  engine.Position `json:"position"`
}

// StateUpdate is emitted by Tick for every session whose state changed
type StateUpdate struct {
	SessionID string            `json:"session_id"`
	GameState *engine.GameState `json:"game_state"`
	Events    []GameEvent       `json:"events,omitempty"`
}

// CellInfo describes one cell of the active level
type CellInfo struct {
	Position   engine.Position `json:"position"`
	InBounds   bool            `json:"in_bounds"`
	Kind       string          `json:"kind"`
	Walkable   bool            `json:"walkable"`
	Player     bool            `json:"player"`
	Enemy      bool            `json:"enemy"`
	EnemySpawn bool            `json:"enemy_spawn"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Levels      int    `json:"levels"`
	TileSize    int    `json:"tile_size"`
}

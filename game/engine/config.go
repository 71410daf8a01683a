package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidateGameConfig checks that a level set can be loaded and played
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if config.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}

	if config.TileSize != 0 && (config.TileSize < MinTileSize || config.TileSize > MaxTileSize) {
		return fmt.Errorf("%w: tile_size must be between %d and %d, got %d",
			ErrInvalidConfig, MinTileSize, MaxTileSize, config.TileSize)
	}
	if config.PlayerMoveDelayMS < 0 || config.EnemyMoveDelayMS < 0 || config.TrailFadeMS < 0 {
		return fmt.Errorf("%w: delays must not be negative", ErrInvalidConfig)
	}

	if len(config.Levels) == 0 {
		return fmt.Errorf("%w: at least one level is required", ErrInvalidConfig)
	}
	if len(config.Levels) > MaxLevels {
		return fmt.Errorf("%w: at most %d levels allowed, got %d",
			ErrInvalidConfig, MaxLevels, len(config.Levels))
	}

	for i, grid := range config.Levels {
		if len(grid) > MaxGridSize || (len(grid) > 0 && len(grid[0]) > MaxGridSize) {
			return fmt.Errorf("%w: level %d exceeds %dx%d cells",
				ErrInvalidConfig, i+1, MaxGridSize, MaxGridSize)
		}
		level, err := NewLevel(grid)
		if err != nil {
			return fmt.Errorf("%w: level %d: %v", ErrInvalidConfig, i+1, err)
		}
		if _, ok := level.Start(); !ok && !level.Walkable(FallbackStart) {
			return fmt.Errorf("%w: level %d has no start and (%d,%d) is not walkable",
				ErrInvalidConfig, i+1, FallbackStart.Row, FallbackStart.Col)
		}
	}

	if config.Messages.HUD != "" && strings.Count(config.Messages.HUD, "%d") != 2 {
		return fmt.Errorf("%w: messages.hud must contain two %%d for level and level count",
			ErrInvalidConfig)
	}

	return nil
}

// LoadGameConfig loads a level set from a JSON file.
// A file without a name takes its name from the file stem.
func LoadGameConfig(filename string) (*GameConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config, err := ParseGameConfig(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", filename, err)
	}
	if config.Name == "" {
		config.Name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}

	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// ParseGameConfig decodes a level set without validating it
func ParseGameConfig(data []byte) (*GameConfig, error) {
	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

// CloneLevels deep-copies the source grids so loading never touches them
func CloneLevels(levels [][][]int) [][][]int {
	out := make([][][]int, len(levels))
	for i, grid := range levels {
		out[i] = make([][]int, len(grid))
		for r, row := range grid {
			out[i][r] = append([]int(nil), row...)
		}
	}
	return out
}

// DefaultGameConfig returns the built-in level set
func DefaultGameConfig() *GameConfig {
	config := &GameConfig{
		Name:              "default",
		Description:       "Three small mazes with a wandering enemy",
		TileSize:          DefaultTileSize,
		PlayerMoveDelayMS: int(DefaultPlayerMoveDelay.Milliseconds()),
		EnemyMoveDelayMS:  int(DefaultEnemyMoveDelay.Milliseconds()),
		TrailFadeMS:       int(DefaultTrailFade.Milliseconds()),
		Levels: [][][]int{
			{
				{1, 1, 1, 1, 1, 1, 1},
				{1, 2, 0, 0, 0, 0, 1},
				{1, 1, 1, 0, 1, 0, 1},
				{1, 0, 0, 0, 1, 0, 1},
				{1, 0, 1, 1, 1, 4, 1},
				{1, 0, 0, 0, 0, 3, 1},
				{1, 1, 1, 1, 1, 1, 1},
			},
			{
				{1, 1, 1, 1, 1, 1, 1, 1, 1},
				{1, 2, 0, 0, 1, 0, 0, 0, 1},
				{1, 0, 1, 0, 1, 0, 1, 0, 1},
				{1, 0, 1, 0, 0, 0, 1, 0, 1},
				{1, 0, 1, 1, 1, 4, 1, 0, 1},
				{1, 0, 0, 0, 0, 0, 1, 3, 1},
				{1, 1, 1, 1, 1, 1, 1, 1, 1},
			},
			{
				{1, 1, 1, 1, 1, 1, 1, 1, 1},
				{1, 2, 0, 0, 0, 0, 0, 0, 1},
				{1, 0, 1, 1, 0, 1, 1, 0, 1},
				{1, 0, 0, 0, 4, 0, 0, 0, 1},
				{1, 0, 1, 1, 0, 1, 1, 0, 1},
				{1, 0, 0, 0, 0, 0, 0, 3, 1},
				{1, 1, 1, 1, 1, 1, 1, 1, 1},
			},
		},
	}
	config.Messages.HUD = "Level %d/%d - WASD/Arrows to move - Avoid the Enemy"
	config.Messages.GameOver = "Gameover"
	config.Messages.Restart = "Redo"
	return config
}

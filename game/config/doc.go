// Package config provides level set management for the maze game.
//
// The config package handles:
//   - Loading level sets from JSON files
//   - Validation through the engine's rules
//   - Default level set selection
//   - Level set discovery and listing
//
// Configuration Format:
//
// Level sets are stored as JSON files in the configs directory. Each file
// defines:
//   - An ordered list of integer grids (0=floor, 1=wall, 2=start, 3=goal, 4=enemy spawn)
//   - Tile size in pixels
//   - Player and enemy move delays and the trail fade time
//   - HUD, game over and restart texts
//
// A file holding only "levels" is accepted; its name is taken from the file stem.
//
// Available Configurations:
//   - classic: four hand-built mazes, the default
//   - gauntlet: open rooms with a faster enemy
//   - tutorial: a single corridor without an enemy
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Load specific configuration
//	gameConfig, err := manager.LoadConfig("gauntlet")
//
//	// Get default configuration
//	defaultConfig := manager.GetDefault()
//
//	// List available configurations
//	configs, err := manager.ListConfigs()
//
// When the directory holds no usable file the manager falls back to the
// built-in engine.DefaultGameConfig.
package config

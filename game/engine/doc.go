// Package engine provides the core game logic for the maze game.
//
// The engine package implements the game mechanics including:
//   - Tile grids loaded from integer level data
//   - Throttled single-step player movement with wall and bounds checks
//   - A randomly wandering enemy that moves two cells in one of eight directions
//   - Fading motion trails for both actors
//   - Level advance on reaching a goal and game over on contact with the enemy
//
// Core Types:
//
// The Engine interface defines the main contract for a session, implemented
// by GameEngine. Level is one normalized grid, Actor is a token with a
// cooldown and a Trail, and GameConfig is a level set loaded from JSON.
// GameState is a serializable snapshot used by the transports.
//
// Time is always passed in. Every operation that depends on elapsed time
// takes a now argument, and the enemy draws its randomness from an injected
// Shuffler, so a session is fully deterministic under test.
//
// Usage:
//
//	config, err := engine.LoadGameConfig("configs/classic.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config, time.Now())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// once per frame
//	gameEngine.Tick(time.Now())
//	gameEngine.Draw(renderer, time.Now())
//
//	// on key input
//	gameEngine.Move(engine.Up, time.Now())
//
// Game Rules:
//
// The player walks from the start tile to a goal tile. Reaching a goal loads
// the next level, wrapping to the first after the last. If the enemy lands on
// the player the game is over and only a restart is accepted.
package engine

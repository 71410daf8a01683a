// Package service provides the business logic layer for the maze game.
//
// The service package implements:
//   - Multi-session game management
//   - Move processing with explanations for rejected moves
//   - A frame tick that advances every live session
//   - Configuration lookup
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages level set loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Engines are single-threaded, so every call into one happens
// under the service lock. Timestamps come from the service clock, which tests
// replace with WithClock.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	// Create a new session
//	sessionInfo, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Execute a move
//	result, err := gameService.Move(ctx, sessionInfo.ID, "up")
//
//	// Once per frame
//	updates, err := gameService.Tick(ctx)
//
// Session Management:
//
// Sessions are identified by 4-character IDs and hold independent engines.
// The enemy keeps moving between requests because Tick drives every session
// from the server's frame clock.
package service

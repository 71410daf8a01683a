// Package mcp exposes maze play to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool call becomes a request against the
// REST API (package api), and the JSON answer is rendered as plain text an
// agent can reason about, including an ASCII view of the maze, the player's
// four neighbors and the walking distance to the nearest goal.
//
// Tools:
//   - create_session, list_sessions, get_session
//   - game_state, move, restart_game
//   - list_configs, game_instructions, describe_cell
//
// The server can be mounted over HTTP at /mcp or served on stdio by the
// mcp command.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp

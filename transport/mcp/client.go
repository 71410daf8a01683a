package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3mckagu/a3mckagu-sidequest-w4/game/engine"
	"github.com/a3mckagu/a3mckagu-sidequest-w4/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Maze Runner",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Maze Runner - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Walk the player (P) from the start to the goal (G) of each level while a
randomly wandering enemy (E) roams the maze. Touching the enemy ends the game.
Reaching the goal of the last level wraps around to the first.

AVAILABLE TOOLS:
- create_session: Create new game session
- list_sessions: List all active sessions
- get_session: Get session details
- game_state: Get the current maze, player and enemy positions
- move: Single step (up/down/left/right) - requires intent explanation
- restart_game: Start over after a game over
- list_configs: List available level sets
- game_instructions: Full rules
- describe_cell: Inspect one cell of the active level

NOTE: The enemy keeps moving between your calls. Re-read the state before planning.`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional level set selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Level set to play (see list_configs). Defaults to the server default.",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state with an ASCII view of the maze",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move the player one cell. Moves are throttled; a move sent too soon after the previous one is rejected.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"up", "down", "left", "right"},
					"description": "Direction to move",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "restart_game",
		Description: "Restart the session from level 1. Only allowed after a game over.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleRestart)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available level sets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Get detailed information about one cell of the active level: its kind, whether it is walkable, and which actor occupies it.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row of the cell (0-based, top to bottom)",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Column of the cell (0-based, left to right)",
				},
			},
			Required: []string{"session_id", "row", "col"},
		},
	}, c.handleDescribeCell)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func sessionPath(sessionID string, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	configID, _ := arguments(request)["config_id"].(string)

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s", session.ID, session.ConfigName, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		level := ""
		if s.GameState != nil {
			level = fmt.Sprintf(", Level: %d/%d", s.GameState.LevelIndex+1, s.GameState.LevelCount)
			if s.GameState.GameOver {
				level += ", GAME OVER"
			}
		}
		fmt.Fprintf(&b, "- %s (Config: %s%s, Created: %s)\n",
			s.ID, s.ConfigName, level, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	direction, _ := args["direction"].(string)

	// The intent argument is for the caller's benefit only

	var result service.MoveResult
	body := map[string]string{"direction": direction}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleRestart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}

	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/restart"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Level Sets:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Levels: %d\n\n",
			config.Name, config.ConfigID, config.Description, config.Levels)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Maze Runner - Complete Instructions

GAME OBJECTIVE:
Guide the player from the start of each maze to its goal without touching the enemy.

MAP LEGEND:
• P - Player (you)
• E - Enemy
• G - Goal: stepping on it loads the next level
• # - Wall: impassable
• . - Floor

MOVEMENT:
• The player moves exactly one cell up, down, left or right per move.
• Walls and the edge of the maze block movement.
• Moves are throttled: a move sent before the player's cooldown has elapsed
  is rejected with "throttled". Wait a moment and try again.

THE ENEMY:
• Wanders on its own, two cells at a time in any of 8 directions
  (including diagonals), picked at random each time it moves.
• It moves even while you are thinking. Its position in a state you read
  a second ago may already be stale.
• It can jump over a single wall cell, but never lands on one.
• If it ends a move on your cell the game is over.

LEVELS:
• Each session plays an ordered list of levels.
• Reaching the goal of the last level wraps around to the first.

GAME OVER:
• All moves are rejected until you call restart_game, which resets the
  session to level 1.

STRATEGY TIPS:
• Use game_state before each decision; it shows the nearest goal distance.
• Keep at least three cells between you and the enemy when possible.
• Use describe_cell to check a cell you are unsure about.`

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	row, rowOK := args["row"].(float64)
	col, colOK := args["col"].(float64)
	if !rowOK || !colOK {
		return mcp.NewToolResultError("row and col are required integers"), nil
	}

	var cell service.CellInfo
	path := sessionPath(sessionID, fmt.Sprintf("/cells/%d/%d", int(row), int(col)))
	if err := c.apiCall(ctx, "GET", path, nil, &cell); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCell(&cell)), nil
}

// Formatting

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\nLast accessed: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format(time.RFC3339), session.LastAccessedAt.Format(time.RFC3339),
		formatGameState(session.GameState))
}

// tileChar maps a snapshot cell to its ASCII legend
func tileChar(kind engine.TileKind) byte {
	switch kind {
	case engine.Wall:
		return '#'
	case engine.Goal:
		return 'G'
	default:
		return '.'
	}
}

// formatGrid renders the level with the actors drawn on top
func formatGrid(state *engine.GameState) string {
	var b strings.Builder
	for r, row := range state.Grid {
		line := make([]byte, len(row))
		for c, kind := range row {
			line[c] = tileChar(kind)
		}
		if e := state.Enemy; e != nil && e.Position.Row == r && inRow(e.Position.Col, line) {
			line[e.Position.Col] = 'E'
		}
		if p := state.Player.Position; p.Row == r && inRow(p.Col, line) {
			if line[p.Col] == 'E' {
				line[p.Col] = 'X'
			} else {
				line[p.Col] = 'P'
			}
		}
		b.Write(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func inRow(col int, line []byte) bool {
	return col >= 0 && col < len(line)
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "Game state unavailable"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Level %d/%d (%s) - %dx%d\n", state.LevelIndex+1, state.LevelCount, state.ConfigName, state.Rows, state.Cols)
	if state.GameOver {
		fmt.Fprintf(&b, "*** %s *** Use restart_game to play again.\n", state.Message)
	}
	fmt.Fprintf(&b, "Player: (%d,%d)\n", state.Player.Position.Row, state.Player.Position.Col)
	if state.Enemy != nil {
		fmt.Fprintf(&b, "Enemy: (%d,%d), %d cells away\n",
			state.Enemy.Position.Row, state.Enemy.Position.Col,
			engine.ManhattanDistance(state.Player.Position, state.Enemy.Position))
	} else {
		b.WriteString("Enemy: none on this level\n")
	}
	if level, err := state.Level(); err == nil {
		if goal, dist := engine.NearestGoal(level, state.Player.Position); dist >= 0 {
			fmt.Fprintf(&b, "Nearest goal: (%d,%d), %d steps\n", goal.Row, goal.Col, dist)
		} else {
			b.WriteString("Nearest goal: unreachable\n")
		}
	}
	fmt.Fprintf(&b, "Moves: %d, Levels cleared: %d\n\n", state.Moves, state.LevelsCleared)

	b.WriteString(formatGrid(state))
	b.WriteString("\nSurroundings:\n")
	b.WriteString(formatSurroundings(state))
	return b.String()
}

func formatSurroundings(state *engine.GameState) string {
	var b strings.Builder
	for _, cell := range engine.LocalView(state) {
		status := "open"
		if !cell.Walkable {
			status = "blocked"
		}
		if cell.Enemy {
			status += ", ENEMY"
		}
		fmt.Fprintf(&b, "  %-5s (%d,%d) %s - %s\n", cell.Direction, cell.Position.Row, cell.Position.Col, cell.Kind, status)
	}
	return b.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	if result.Success {
		fmt.Fprintf(&b, "✓ %s\n", result.Message)
	} else {
		fmt.Fprintf(&b, "✗ %s\n", result.Message)
		if a := result.AttemptedTo; a != nil {
			if a.Throttled {
				b.WriteString("  Move was throttled; wait for the cooldown and retry.\n")
			} else {
				fmt.Fprintf(&b, "  Target (%d,%d) is %s\n", a.Row, a.Col, a.Kind)
			}
		}
	}
	for _, event := range result.Events {
		if event.Type == service.EventBlocked || event.Type == service.EventThrottled {
			continue
		}
		fmt.Fprintf(&b, "  [%s] %s\n", event.Type, event.Message)
	}
	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatCell(cell *service.CellInfo) string {
	if !cell.InBounds {
		return fmt.Sprintf("Cell (%d,%d) is outside the maze and cannot be entered.", cell.Position.Row, cell.Position.Col)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Cell (%d,%d)\n", cell.Position.Row, cell.Position.Col)
	fmt.Fprintf(&b, "Kind: %s\n", cell.Kind)
	fmt.Fprintf(&b, "Walkable: %v\n", cell.Walkable)
	if cell.Player {
		b.WriteString("Occupied by: player\n")
	}
	if cell.Enemy {
		b.WriteString("Occupied by: enemy\n")
	}
	if cell.EnemySpawn {
		b.WriteString("The enemy starts here the first time the level is played.\n")
	}
	return b.String()
}

// Package api provides the HTTP REST API for maze sessions.
//
// Endpoints:
//
// Session Management:
//   - POST   /api/sessions               - Create a session ({"config_id": "classic"}, body optional)
//   - GET    /api/sessions               - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET    /api/sessions/{id}          - Session info with current state
//   - DELETE /api/sessions/{id}          - Delete a session
//
// Game Operations:
//   - GET  /api/sessions/{id}/state             - Current GameState snapshot
//   - POST /api/sessions/{id}/move              - One player step ({"direction": "up"})
//   - POST /api/sessions/{id}/restart           - Restart after game over
//   - GET  /api/sessions/{id}/cells/{row}/{col} - Describe one cell of the active level
//
// Configuration:
//   - GET /api/configs        - List level sets
//   - GET /api/configs/{name} - Full level set
//
// Other:
//   - GET /api/health - Liveness and session count
//   - /ws?session=ID  - WebSocket state updates, see package websocket
//
// Blocked and throttled moves are ordinary 200 responses with success=false.
// Errors are returned as {"error": "..."}: unknown session or config is 404,
// a malformed body or direction is 400, restarting a game that is not over
// is 409, anything else is 500.
package api

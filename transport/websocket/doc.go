// Package websocket pushes live maze snapshots to browser and agent clients.
//
// A single Hub goroutine owns every subscription. Clients connect with
// /ws?session=<id>, receive a "snapshot" message with the current state,
// and then a "state_update" message whenever the session changes, either
// from a REST move or restart or from the server's frame clock. Deleting
// the session sends a final "session_deleted" event.
//
// Outgoing messages are JSON:
//
//	{"session_id": "a1b2", "event": "state_update", "game_state": {...}, "events": [...]}
//
// Incoming frames are read only to keep the connection alive. Clients whose
// queue fills up are dropped.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//	hub.ServeWS(w, r, sessionID, state)
//	hub.BroadcastUpdates(updates)
package websocket
